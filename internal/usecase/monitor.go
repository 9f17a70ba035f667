package usecase

import (
	"context"
	"fmt"
	"time"

	"PriceWatch/internal/domain/models"
	drepo "PriceWatch/internal/domain/repository"
	"PriceWatch/internal/services/threshold"
	applogger "PriceWatch/pkg/logger"
	"PriceWatch/pkg/util"

	"github.com/google/uuid"
)

// MonitorCycle runs one pass over the configured symbols:
// fetch, append, compare with the previous record, alert, render.
type MonitorCycle struct {
	symbols   []string
	provider  drepo.QuoteProvider
	store     drepo.PriceStore
	evaluator *threshold.Evaluator
	notifier  drepo.Notifier
	renderer  drepo.ChartRenderer
	snapshots drepo.SnapshotCache
	metrics   drepo.Metrics
	l         *applogger.Logger
	now       func() time.Time
}

// MonitorOption configures MonitorCycle.
type MonitorOption func(*MonitorCycle)

// WithSnapshots publishes every appended record to c. Failures are logged only.
func WithSnapshots(c drepo.SnapshotCache) MonitorOption {
	return func(m *MonitorCycle) { m.snapshots = c }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) MonitorOption {
	return func(m *MonitorCycle) { m.now = now }
}

// NewMonitorCycle creates a new MonitorCycle instance.
func NewMonitorCycle(
	symbols []string,
	provider drepo.QuoteProvider,
	store drepo.PriceStore,
	evaluator *threshold.Evaluator,
	notifier drepo.Notifier,
	renderer drepo.ChartRenderer,
	metrics drepo.Metrics,
	l *applogger.Logger,
	opts ...MonitorOption,
) *MonitorCycle {
	m := &MonitorCycle{
		symbols:   symbols,
		provider:  provider,
		store:     store,
		evaluator: evaluator,
		notifier:  notifier,
		renderer:  renderer,
		metrics:   metrics,
		l:         l,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RunCycle processes every symbol in order. It never fails as a whole:
// per-symbol problems are logged and reported in the returned report.
func (m *MonitorCycle) RunCycle(ctx context.Context) *models.CycleReport {
	report := &models.CycleReport{
		ID:        uuid.New(),
		StartedAt: m.now(),
		Results:   make([]models.SymbolResult, 0, len(m.symbols)),
	}
	l := m.l.With(applogger.String("cycle_id", report.ID.String()))
	l.Debug("monitor cycle started", applogger.Int("symbols", len(m.symbols)))

	for _, sym := range m.symbols {
		report.Results = append(report.Results, m.processSymbol(ctx, l, sym))
	}

	report.FinishedAt = m.now()
	m.metrics.RecordCycle(report.Duration().Seconds())

	var ok, skipped, failed int
	for _, r := range report.Results {
		switch r.Status {
		case models.SymbolOK:
			ok++
		case models.SymbolSkipped:
			skipped++
		default:
			failed++
		}
	}
	l.Info("monitor cycle finished",
		applogger.Duration("duration_ms", report.Duration()),
		applogger.Int("ok", ok),
		applogger.Int("skipped", skipped),
		applogger.Int("failed", failed),
	)
	return report
}

func (m *MonitorCycle) processSymbol(ctx context.Context, l *applogger.Logger, sym string) models.SymbolResult {
	res := models.SymbolResult{Symbol: sym, Status: models.SymbolOK}
	l = l.With(applogger.String("symbol", sym))

	start := time.Now()
	quote, err := m.provider.LastPrice(ctx, sym)
	m.metrics.RecordLatency("fetch", time.Since(start).Seconds())
	m.metrics.RecordFetch(sym, err == nil)
	if err != nil {
		m.metrics.RecordError(models.ErrorKind(err))
		l.Warn("no price data, skipping symbol", applogger.Error(err))
		res.Status = models.SymbolSkipped
		res.Errors = append(res.Errors, err.Error())
		return res
	}

	rec := models.PriceRecord{
		Timestamp: m.now().Truncate(time.Second),
		Symbol:    sym,
		Price:     quote.Price,
	}
	res.Price = &rec.Price
	l.Info(fmt.Sprintf("%s: $%s at %s", sym, rec.Price.StringFixed(2), util.FormatStamp(rec.Timestamp, time.Local)))
	m.metrics.RecordLastPrice(sym, rec.Price.InexactFloat64())

	start = time.Now()
	if err := m.store.Append(ctx, rec); err != nil {
		m.fail(l, &res, "append price", err)
		return res
	}
	m.metrics.RecordLatency("append", time.Since(start).Seconds())

	if m.snapshots != nil {
		if err := m.snapshots.SetLatest(ctx, rec); err != nil {
			l.Warn("snapshot cache update failed", applogger.Error(err))
		}
	}

	prev, err := m.store.MostRecentBefore(ctx, sym, rec.Timestamp)
	if err != nil {
		m.fail(l, &res, "lookup previous price", err)
		return res
	}

	if prev == nil {
		l.Debug("first observation, nothing to compare")
	} else {
		m.compare(ctx, l, &res, rec, prev)
	}

	series, err := m.store.Series(ctx, sym)
	if err != nil {
		m.fail(l, &res, "read series", err)
		return res
	}
	start = time.Now()
	path, err := m.renderer.Render(ctx, sym, series)
	if err != nil {
		m.fail(l, &res, "render chart", err)
		return res
	}
	m.metrics.RecordLatency("render", time.Since(start).Seconds())
	res.ChartPath = path
	l.Debug("chart rendered", applogger.String("path", path), applogger.Int("points", len(series)))
	return res
}

// compare evaluates rec against prev and notifies on a trigger. Errors are
// recorded in res; the caller continues to rendering either way.
func (m *MonitorCycle) compare(ctx context.Context, l *applogger.Logger, res *models.SymbolResult, rec models.PriceRecord, prev *models.PriceRecord) {
	decision, err := m.evaluator.Evaluate(rec.Price, &prev.Price)
	if err != nil {
		m.fail(l, res, "evaluate threshold", err)
		return
	}
	pct := decision.PercentChange
	res.PercentChange = &pct
	m.metrics.RecordPercentChange(rec.Symbol, pct.InexactFloat64())
	l.Info(fmt.Sprintf("%s: percent change %s%%", rec.Symbol, pct.StringFixed(2)),
		applogger.Decimal("previous_price", prev.Price),
		applogger.Bool("trigger", decision.Trigger),
	)
	if !decision.Trigger {
		return
	}

	alert := &models.Alert{
		ID:            uuid.New(),
		Symbol:        rec.Symbol,
		PercentChange: pct,
		Price:         rec.Price,
		PreviousPrice: prev.Price,
		Threshold:     m.evaluator.Threshold(),
		TriggeredAt:   rec.Timestamp,
	}
	start := time.Now()
	if err := m.notifier.Notify(ctx, alert); err != nil {
		m.fail(l, res, "send alert", err)
		return
	}
	m.metrics.RecordLatency("notify", time.Since(start).Seconds())
	m.metrics.RecordAlert(rec.Symbol)
	res.Alerted = true
	l.Info("alert sent", applogger.String("alert_id", alert.ID.String()))
}

func (m *MonitorCycle) fail(l *applogger.Logger, res *models.SymbolResult, step string, err error) {
	kind := models.ErrorKind(err)
	m.metrics.RecordError(kind)
	l.Error(step+" failed", applogger.String("kind", kind), applogger.Error(err))
	res.Status = models.SymbolFailed
	res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", step, err))
}
