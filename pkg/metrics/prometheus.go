package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	cycles        prometheus.Counter
	cycleDuration prometheus.Histogram
	fetches       *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	lastPrice     *prometheus.GaugeVec
	percentChange *prometheus.GaugeVec
	alerts        *prometheus.CounterVec
	latency       *prometheus.HistogramVec
}

// New creates a recorder registered on the default Prometheus registry.
func New() *Recorder {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a recorder registered on reg.
func NewWithRegistry(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		cycles: f.NewCounter(prometheus.CounterOpts{
			Name: "pricewatch_cycles_total",
			Help: "Total number of completed monitoring cycles",
		}),
		cycleDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "pricewatch_cycle_duration_seconds",
			Help:    "Duration of monitoring cycles in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		fetches: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pricewatch_fetches_total",
			Help: "Price fetches by symbol and outcome",
		}, []string{"symbol", "ok"}),
		errorsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pricewatch_errors_total",
			Help: "Total number of errors encountered",
		}, []string{"type"}),
		lastPrice: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pricewatch_last_price",
			Help: "Last recorded price for a symbol",
		}, []string{"symbol"}),
		percentChange: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pricewatch_percent_change",
			Help: "Last percent change versus the previous record",
		}, []string{"symbol"}),
		alerts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pricewatch_alerts_total",
			Help: "Threshold alerts raised per symbol",
		}, []string{"symbol"}),
		latency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pricewatch_operation_duration_seconds",
			Help:    "Duration of operations in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}
}

// RecordCycle records a completed cycle and its duration.
func (r *Recorder) RecordCycle(seconds float64) {
	r.cycles.Inc()
	r.cycleDuration.Observe(seconds)
}

// RecordFetch records a fetch outcome for a symbol.
func (r *Recorder) RecordFetch(symbol string, ok bool) {
	r.fetches.WithLabelValues(symbol, strconv.FormatBool(ok)).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordPercentChange records the last computed percent change for a symbol.
func (r *Recorder) RecordPercentChange(symbol string, pct float64) {
	r.percentChange.WithLabelValues(symbol).Set(pct)
}

// RecordAlert records a raised alert.
func (r *Recorder) RecordAlert(symbol string) {
	r.alerts.WithLabelValues(symbol).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// Nop discards all measurements.
type Nop struct{}

func (Nop) RecordCycle(float64)                 {}
func (Nop) RecordFetch(string, bool)            {}
func (Nop) RecordError(string)                  {}
func (Nop) RecordLastPrice(string, float64)     {}
func (Nop) RecordPercentChange(string, float64) {}
func (Nop) RecordAlert(string)                  {}
func (Nop) RecordLatency(string, float64)       {}
