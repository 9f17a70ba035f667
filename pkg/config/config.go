package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Provider types.
const (
	ProviderYahoo     = "yahoo"
	ProviderFinnhub   = "finnhub"
	ProviderFinnhubWS = "finnhub_ws"
)

// Config is loaded once at startup and passed explicitly to every component.
// Threshold is the minimum absolute percent change that raises an alert.
type Config struct {
	Environment string           `yaml:"environment" default:"local"`
	Stocks      []string         `yaml:"stocks" validate:"min=1,dive,required"`
	Threshold   float64          `yaml:"threshold" validate:"gt=0"`
	CSVFile     string           `yaml:"csv_file" default:"stock_prices.csv" validate:"required"`
	PlotFolder  string           `yaml:"plot_folder" default:"plots" validate:"required"`
	Schedule    ScheduleConfig   `yaml:"schedule"`
	Email       EmailConfig      `yaml:"email"`
	Provider    ProviderConfig   `yaml:"provider"`
	Finnhub     FinnhubConfig    `yaml:"finnhub"`
	Log         LogConfig        `yaml:"log"`
	Server      ServerConfig     `yaml:"server"`
	Cache       CacheConfig      `yaml:"cache"`
	Kafka       KafkaConfig      `yaml:"kafka"`
	ClickHouse  ClickHouseConfig `yaml:"clickhouse"`
}

type ScheduleConfig struct {
	Interval time.Duration `yaml:"interval" default:"1m" validate:"gt=0"`
}

// EmailConfig configures SMTP alerts. Email is sent only when SMTPServer is set.
type EmailConfig struct {
	Sender     string `yaml:"sender" validate:"required_with=SMTPServer,omitempty,email"`
	Receiver   string `yaml:"receiver" validate:"required_with=SMTPServer,omitempty,email"`
	SMTPServer string `yaml:"smtp_server"`
	Port       int    `yaml:"port" default:"465" validate:"gte=1,lte=65535"`
	Password   string `yaml:"password" validate:"required_with=SMTPServer"`
}

// Enabled reports whether email alerts are configured.
func (e EmailConfig) Enabled() bool { return e.SMTPServer != "" }

type ProviderConfig struct {
	Type    string        `yaml:"type" default:"yahoo" validate:"oneof=yahoo finnhub finnhub_ws"`
	Timeout time.Duration `yaml:"timeout" default:"10s"`
}

type FinnhubConfig struct {
	APIKey          string        `yaml:"api_key"`
	BaseURL         string        `yaml:"base_url" default:"https://finnhub.io/api/v1"`
	WebSocketURL    string        `yaml:"websocket_url" default:"wss://ws.finnhub.io"`
	ReconnectDelay  time.Duration `yaml:"reconnect_delay" default:"5s"`
	PingInterval    time.Duration `yaml:"ping_interval" default:"30s"`
	RateLimitPerMin int           `yaml:"rate_limit_per_min" default:"60" validate:"gt=0"`
	MaxTradeAge     time.Duration `yaml:"max_trade_age"`
}

type LogConfig struct {
	Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" default:"console" validate:"oneof=console json"`
	Output string `yaml:"output" default:"stdout"`
}

type ServerConfig struct {
	Enabled         bool          `yaml:"enabled"`
	Port            int           `yaml:"port" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
}

type CacheConfig struct {
	TTL   time.Duration `yaml:"ttl" default:"24h"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Host     string `yaml:"host" default:"localhost"`
		Port     int    `yaml:"port" default:"6379"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix" default:"pricewatch"`
	} `yaml:"redis"`
}

type KafkaConfig struct {
	Enabled      bool     `yaml:"enabled"`
	Brokers      []string `yaml:"brokers" validate:"required_if=Enabled true"`
	Topic        string   `yaml:"topic" default:"pricewatch.alerts"`
	RequiredAcks int      `yaml:"required_acks" default:"-1"`
	Compression  string   `yaml:"compression" default:"gzip" validate:"oneof=gzip snappy lz4 zstd"`
	Producer     struct {
		MaxAttempts  int           `yaml:"max_attempts" default:"3"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
		ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
	} `yaml:"producer"`
}

type ClickHouseConfig struct {
	Enabled          bool          `yaml:"enabled"`
	Host             string        `yaml:"host" validate:"required_if=Enabled true"`
	Port             int           `yaml:"port" default:"9000"`
	Database         string        `yaml:"database" default:"pricewatch"`
	Table            string        `yaml:"table" default:"price_history"`
	User             string        `yaml:"user" default:"default"`
	Password         string        `yaml:"password"`
	UseHTTP          bool          `yaml:"use_http"`
	DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
	ReadTimeout      time.Duration `yaml:"read_timeout" default:"10s"`
	MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"30s"`
}

// envOverrides lists the variables that may override the YAML file, all prefixed with PRICEWATCH_.
type envOverrides struct {
	Stocks        []string `envconfig:"STOCKS"`
	Threshold     float64  `envconfig:"THRESHOLD"`
	SMTPPassword  string   `envconfig:"SMTP_PASSWORD"`
	FinnhubAPIKey string   `envconfig:"FINNHUB_API_KEY"`
	Provider      string   `envconfig:"PROVIDER"`
	KafkaBrokers  []string `envconfig:"KAFKA_BROKERS"`
}

const envPrefix = "PRICEWATCH"

var validate = validator.New()

// ThresholdPercent returns the alert threshold as a decimal.
func (c *Config) ThresholdPercent() decimal.Decimal {
	return decimal.NewFromFloat(c.Threshold)
}

// Load reads, defaults and validates a YAML configuration file.
func Load(path string) (*Config, error) {
	c, err := parse(path)
	if err != nil {
		return nil, err
	}
	if err := c.finalize(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides it with environment variables
// (a .env file in the working directory is honored when present).
func LoadWithEnv(path string) (*Config, error) {
	c, err := parse(path)
	if err != nil {
		return nil, err
	}

	_ = godotenv.Load()

	var o envOverrides
	if err := envconfig.Process(envPrefix, &o); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	c.applyOverrides(o)

	if err := c.finalize(); err != nil {
		return nil, err
	}
	return c, nil
}

func parse(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &c, nil
}

func (c *Config) applyOverrides(o envOverrides) {
	if len(o.Stocks) > 0 {
		c.Stocks = o.Stocks
	}
	if o.Threshold > 0 {
		c.Threshold = o.Threshold
	}
	if o.SMTPPassword != "" {
		c.Email.Password = o.SMTPPassword
	}
	if o.FinnhubAPIKey != "" {
		c.Finnhub.APIKey = o.FinnhubAPIKey
	}
	if o.Provider != "" {
		c.Provider.Type = o.Provider
	}
	if len(o.KafkaBrokers) > 0 {
		c.Kafka.Brokers = o.KafkaBrokers
	}
}

func (c *Config) finalize() error {
	if err := defaults.Set(c); err != nil {
		return fmt.Errorf("apply defaults: %w", err)
	}
	for i, s := range c.Stocks {
		c.Stocks[i] = strings.ToUpper(strings.TrimSpace(s))
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%s failed on %q", fe.Namespace(), fe.Tag())
		}
		return err
	}
	if (c.Provider.Type == ProviderFinnhub || c.Provider.Type == ProviderFinnhubWS) && c.Finnhub.APIKey == "" {
		return fmt.Errorf("finnhub.api_key is required for provider %q", c.Provider.Type)
	}
	return nil
}
