package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimal = `
stocks: ["aapl", " googl "]
threshold: 2.5
`

func TestLoadAppliesDefaults(t *testing.T) {
	c, err := Load(writeConfig(t, minimal))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.CSVFile != "stock_prices.csv" {
		t.Fatalf("csv_file default not applied: %q", c.CSVFile)
	}
	if c.PlotFolder != "plots" {
		t.Fatalf("plot_folder default not applied: %q", c.PlotFolder)
	}
	if c.Schedule.Interval != time.Minute {
		t.Fatalf("interval default not applied: %v", c.Schedule.Interval)
	}
	if c.Provider.Type != ProviderYahoo {
		t.Fatalf("provider default not applied: %q", c.Provider.Type)
	}
	if c.Email.Enabled() {
		t.Fatalf("email should be disabled without smtp_server")
	}
	if strings.Join(c.Stocks, ",") != "AAPL,GOOGL" {
		t.Fatalf("stocks not normalized: %v", c.Stocks)
	}
	if c.ThresholdPercent().String() != "2.5" {
		t.Fatalf("unexpected threshold %s", c.ThresholdPercent())
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"no stocks":      "threshold: 5\n",
		"zero threshold": "stocks: [AAPL]\nthreshold: 0\n",
		"email partial":  "stocks: [AAPL]\nthreshold: 5\nemail:\n  smtp_server: smtp.example.com\n",
		"bad provider":   "stocks: [AAPL]\nthreshold: 5\nprovider:\n  type: bloomberg\n",
		"finnhub no key": "stocks: [AAPL]\nthreshold: 5\nprovider:\n  type: finnhub\n",
		"kafka brokers":  "stocks: [AAPL]\nthreshold: 5\nkafka:\n  enabled: true\n",
		"negative rate":  "stocks: [AAPL]\nthreshold: 5\nfinnhub:\n  rate_limit_per_min: -5\n",
	}
	for name, body := range cases {
		if _, err := Load(writeConfig(t, body)); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestLoadEmail(t *testing.T) {
	body := minimal + `
email:
  sender: a@example.com
  receiver: b@example.com
  smtp_server: smtp.example.com
  password: secret
`
	c, err := Load(writeConfig(t, body))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !c.Email.Enabled() || c.Email.Port != 465 {
		t.Fatalf("unexpected email config %+v", c.Email)
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("PRICEWATCH_STOCKS", "TSLA,NVDA")
	t.Setenv("PRICEWATCH_THRESHOLD", "7")
	t.Setenv("PRICEWATCH_PROVIDER", "finnhub")
	t.Setenv("PRICEWATCH_FINNHUB_API_KEY", "key")

	c, err := LoadWithEnv(writeConfig(t, minimal))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if strings.Join(c.Stocks, ",") != "TSLA,NVDA" {
		t.Fatalf("stocks override not applied: %v", c.Stocks)
	}
	if c.Threshold != 7 {
		t.Fatalf("threshold override not applied: %v", c.Threshold)
	}
	if c.Provider.Type != ProviderFinnhub || c.Finnhub.APIKey != "key" {
		t.Fatalf("provider override not applied: %+v %+v", c.Provider, c.Finnhub)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
