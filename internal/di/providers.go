package di

import (
	"context"
	"fmt"
	"time"

	"PriceWatch/internal/domain/repository"
	"PriceWatch/internal/handler/api"
	internalrepo "PriceWatch/internal/repository"
	"PriceWatch/internal/service/chart"
	"PriceWatch/internal/service/finnhub"
	"PriceWatch/internal/service/notifier"
	"PriceWatch/internal/service/yahoo"
	"PriceWatch/internal/services/threshold"
	"PriceWatch/internal/usecase"
	"PriceWatch/pkg/cache"
	pkgch "PriceWatch/pkg/clickhouse"
	"PriceWatch/pkg/config"
	xhttp "PriceWatch/pkg/http"
	pkgkafka "PriceWatch/pkg/kafka"
	applogger "PriceWatch/pkg/logger"
	"PriceWatch/pkg/metrics"
	"PriceWatch/pkg/server"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// ProvideLogger builds the process logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideRegistry creates the Prometheus registry served on /metrics.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(reg *prometheus.Registry) repository.Metrics {
	return metrics.NewWithRegistry(reg)
}

// ProvideFinnhubStream returns the websocket provider, or nil for polling providers.
func ProvideFinnhubStream(cfg *config.Config, l *applogger.Logger) *finnhub.Stream {
	if cfg.Provider.Type != config.ProviderFinnhubWS {
		return nil
	}
	return finnhub.NewStream(
		cfg.Finnhub.APIKey,
		cfg.Finnhub.WebSocketURL,
		cfg.Stocks,
		cfg.Finnhub.ReconnectDelay,
		cfg.Finnhub.PingInterval,
		cfg.Finnhub.MaxTradeAge,
		l,
	)
}

// ProvideQuoteProvider selects the market data source.
func ProvideQuoteProvider(cfg *config.Config, stream *finnhub.Stream) (repository.QuoteProvider, error) {
	switch cfg.Provider.Type {
	case config.ProviderYahoo:
		return yahoo.New(cfg.Provider.Timeout), nil
	case config.ProviderFinnhub:
		return finnhub.NewQuoteClient(cfg.Finnhub.APIKey, cfg.Finnhub.BaseURL, cfg.Provider.Timeout, cfg.Finnhub.RateLimitPerMin), nil
	case config.ProviderFinnhubWS:
		return stream, nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider.Type)
	}
}

// ProvideClickHouseClient connects to ClickHouse when the mirror is enabled, else returns nil.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithAddress(cfg.ClickHouse.Host, cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvidePriceStore opens the CSV log, mirrored into ClickHouse when a client is present.
func ProvidePriceStore(cfg *config.Config, ch *pkgch.Client, l *applogger.Logger) (repository.PriceStore, error) {
	csv := internalrepo.NewCSVPriceStore(cfg.CSVFile, internalrepo.WithStoreLogger(l))
	if ch == nil {
		return csv, nil
	}

	archive := internalrepo.NewCHPriceArchive(ch, cfg.ClickHouse.Table)
	archive.SetLogger(l)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := archive.Init(ctx, ch); err != nil {
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return internalrepo.NewMirroredStore(csv, archive, l), nil
}

// ProvideCache returns Redis when enabled, else an in-process cache.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if !cfg.Cache.Redis.Enabled {
		return cache.NewMemoryCache(), nil
	}
	rc, err := cache.NewRedisCache(
		cache.WithRedisAddr(cfg.Cache.Redis.Host, cfg.Cache.Redis.Port),
		cache.WithRedisAuth(cfg.Cache.Redis.Password, cfg.Cache.Redis.DB),
		cache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return rc, nil
}

// ProvideSnapshotCache stores the latest record per symbol.
func ProvideSnapshotCache(c cache.Service, cfg *config.Config) repository.SnapshotCache {
	return internalrepo.NewCacheSnapshots(c, cfg.Cache.TTL)
}

// ProvideKafkaProducer creates the alert producer when Kafka is enabled, else returns nil.
func ProvideKafkaProducer(cfg *config.Config, reg *prometheus.Registry) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithTopic(cfg.Kafka.Topic),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithRegisterer(reg),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideNotifier fans out to every configured channel, or logs alerts when none is.
func ProvideNotifier(cfg *config.Config, producer *pkgkafka.Producer, l *applogger.Logger) repository.Notifier {
	var ns notifier.Multi
	if cfg.Email.Enabled() {
		ns = append(ns, notifier.NewEmailNotifier(
			cfg.Email.SMTPServer, cfg.Email.Port, cfg.Email.Sender, cfg.Email.Password, cfg.Email.Receiver,
		))
	}
	if producer != nil {
		ns = append(ns, notifier.NewKafkaNotifier(producer))
	}
	if len(ns) == 0 {
		l.Warn("no alert channel configured, alerts are logged only")
		return notifier.NewLogNotifier(l)
	}
	return ns
}

// ProvideChartRenderer writes PNG charts into the plot folder.
func ProvideChartRenderer(cfg *config.Config) *chart.PNGRenderer {
	return chart.NewPNGRenderer(cfg.PlotFolder)
}

// ProvideEvaluator builds the threshold evaluator.
func ProvideEvaluator(cfg *config.Config) *threshold.Evaluator {
	return threshold.New(cfg.ThresholdPercent())
}

// ProvideMonitorCycle assembles one monitoring pass.
func ProvideMonitorCycle(
	cfg *config.Config,
	provider repository.QuoteProvider,
	store repository.PriceStore,
	evaluator *threshold.Evaluator,
	n repository.Notifier,
	renderer *chart.PNGRenderer,
	snapshots repository.SnapshotCache,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.MonitorCycle {
	return usecase.NewMonitorCycle(cfg.Stocks, provider, store, evaluator, n, renderer, m, l,
		usecase.WithSnapshots(snapshots))
}

// ProvideScheduler runs the cycle on the configured interval.
func ProvideScheduler(cfg *config.Config, mc *usecase.MonitorCycle, l *applogger.Logger) *usecase.Scheduler {
	return usecase.NewScheduler(mc, cfg.Schedule.Interval, l)
}

// ProvideHTTPServer builds the read API, or returns nil when the server is disabled.
func ProvideHTTPServer(
	cfg *config.Config,
	l *applogger.Logger,
	reg *prometheus.Registry,
	store repository.PriceStore,
	snapshots repository.SnapshotCache,
	sched *usecase.Scheduler,
	renderer *chart.PNGRenderer,
) *xhttp.Server {
	if !cfg.Server.Enabled {
		return nil
	}
	h := api.NewPricesEchoHandler(l, cfg.Stocks, cfg.ThresholdPercent(), store, snapshots, sched, renderer)
	opts := []xhttp.ServerOption{
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithLogger(l),
		xhttp.WithRegistry(reg),
	}
	if ms, ok := store.(*internalrepo.MirroredStore); ok {
		opts = append(opts, xhttp.WithHealthCheck("archive", ms.Health))
	}
	return xhttp.NewServer(h, opts...)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	sched *usecase.Scheduler,
	httpServer *xhttp.Server,
	stream *finnhub.Stream,
	provider repository.QuoteProvider,
	store repository.PriceStore,
	snapshots repository.SnapshotCache,
	ch *pkgch.Client,
	producer *pkgkafka.Producer,
) *server.App {
	var bg []server.Background
	if stream != nil {
		bg = append(bg, stream)
	}

	closers := []server.Closer{
		{Name: "provider", Close: provider.Close},
		{Name: "store", Close: store.Close},
		{Name: "snapshots", Close: snapshots.Close},
	}
	if producer != nil {
		closers = append(closers, server.Closer{Name: "kafka", Close: producer.Close})
	}
	if ch != nil {
		closers = append(closers, server.Closer{Name: "clickhouse", Close: ch.Close})
	}
	return server.New(cfg, l, sched, httpServer, bg, closers)
}
