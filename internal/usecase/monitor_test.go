package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"PriceWatch/internal/domain/models"
	drepo "PriceWatch/internal/domain/repository"
	"PriceWatch/internal/repository"
	"PriceWatch/internal/services/threshold"
	applogger "PriceWatch/pkg/logger"
	"PriceWatch/pkg/metrics"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var cycleTime = time.Date(2025, 1, 2, 9, 31, 0, 0, time.Local)

type monitorFixture struct {
	provider *mockProvider
	notifier *mockNotifier
	renderer *mockRenderer
	store    drepo.PriceStore
	metrics  drepo.Metrics
}

func newFixture(t *testing.T) *monitorFixture {
	t.Helper()
	return &monitorFixture{
		provider: &mockProvider{},
		notifier: &mockNotifier{},
		renderer: &mockRenderer{},
		store:    repository.NewCSVPriceStore(filepath.Join(t.TempDir(), "stock_prices.csv")),
		metrics:  metrics.Nop{},
	}
}

func (f *monitorFixture) monitor(symbols ...string) *MonitorCycle {
	return NewMonitorCycle(
		symbols,
		f.provider,
		f.store,
		threshold.New(decimal.NewFromInt(5)),
		f.notifier,
		f.renderer,
		f.metrics,
		applogger.Nop(),
		WithClock(func() time.Time { return cycleTime }),
	)
}

func (f *monitorFixture) seed(t *testing.T, symbol, price string) {
	t.Helper()
	require.NoError(t, f.store.Append(context.Background(), models.PriceRecord{
		Timestamp: cycleTime.Add(-time.Minute),
		Symbol:    symbol,
		Price:     decimal.RequireFromString(price),
	}))
}

func (f *monitorFixture) quote(symbol, price string) {
	f.provider.On("LastPrice", mock.Anything, symbol).
		Return(models.Quote{Symbol: symbol, Price: decimal.RequireFromString(price)}, nil)
}

func (f *monitorFixture) renders(symbol string, points int) {
	f.renderer.On("Render", mock.Anything, symbol, mock.MatchedBy(func(s []models.PriceRecord) bool {
		return len(s) == points
	})).Return(fmt.Sprintf("plots/%s_history.png", symbol), nil).Once()
}

func TestRunCycleAlertsAboveThreshold(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "AAPL", "100")
	f.quote("AAPL", "106")
	f.notifier.On("Notify", mock.Anything, mock.MatchedBy(func(a *models.Alert) bool {
		return a.Subject() == "Stock Alert: AAPL" &&
			a.PercentChange.Equal(decimal.NewFromInt(6)) &&
			strings.Contains(a.Body(), "changed by 6.00%") &&
			a.PreviousPrice.Equal(decimal.NewFromInt(100))
	})).Return(nil).Once()
	f.renders("AAPL", 2)

	report := f.monitor("AAPL").RunCycle(context.Background())

	res, ok := report.Result("AAPL")
	require.True(t, ok)
	assert.Equal(t, models.SymbolOK, res.Status)
	assert.True(t, res.Alerted)
	require.NotNil(t, res.PercentChange)
	assert.Equal(t, "6", res.PercentChange.String())
	assert.Equal(t, "plots/AAPL_history.png", res.ChartPath)
	f.notifier.AssertNumberOfCalls(t, "Notify", 1)
	f.renderer.AssertExpectations(t)
}

func TestRunCycleBelowThresholdStillRenders(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "AAPL", "100")
	f.quote("AAPL", "102")
	f.renders("AAPL", 2)

	report := f.monitor("AAPL").RunCycle(context.Background())

	res, _ := report.Result("AAPL")
	assert.Equal(t, models.SymbolOK, res.Status)
	assert.False(t, res.Alerted)
	assert.Equal(t, "2", res.PercentChange.String())
	f.notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
	f.renderer.AssertExpectations(t)
}

func TestRunCycleFetchFailureSkipsOnlyThatSymbol(t *testing.T) {
	f := newFixture(t)
	f.provider.On("LastPrice", mock.Anything, "A").
		Return(models.Quote{}, fmt.Errorf("%w: delisted", models.ErrNoPrice))
	f.seed(t, "B", "50")
	f.quote("B", "60")
	f.notifier.On("Notify", mock.Anything, mock.Anything).Return(nil).Once()
	f.renders("B", 2)

	report := f.monitor("A", "B").RunCycle(context.Background())

	require.Len(t, report.Results, 2)
	a, _ := report.Result("A")
	assert.Equal(t, models.SymbolSkipped, a.Status)
	assert.Empty(t, a.ChartPath)
	b, _ := report.Result("B")
	assert.Equal(t, models.SymbolOK, b.Status)
	assert.True(t, b.Alerted)

	series, err := f.store.Series(context.Background(), "A")
	require.NoError(t, err)
	assert.Empty(t, series)
	f.renderer.AssertNotCalled(t, "Render", mock.Anything, "A", mock.Anything)
}

func TestRunCycleFirstObservationNeverAlerts(t *testing.T) {
	f := newFixture(t)
	f.quote("NEW", "10")
	f.renders("NEW", 1)

	report := f.monitor("NEW").RunCycle(context.Background())

	res, _ := report.Result("NEW")
	assert.Equal(t, models.SymbolOK, res.Status)
	assert.Nil(t, res.PercentChange)
	f.notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)

	series, err := f.store.Series(context.Background(), "NEW")
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.True(t, series[0].Timestamp.Equal(cycleTime))
}

func TestRunCycleZeroPreviousDoesNotAlert(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "AAPL", "0")
	f.quote("AAPL", "100")
	f.renders("AAPL", 2)

	report := f.monitor("AAPL").RunCycle(context.Background())

	res, _ := report.Result("AAPL")
	assert.Equal(t, models.SymbolFailed, res.Status)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "previous price is zero")
	assert.Equal(t, "plots/AAPL_history.png", res.ChartPath)
	f.notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
}

func TestRunCycleNotifyFailureStillRenders(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "AAPL", "100")
	f.quote("AAPL", "90")
	f.notifier.On("Notify", mock.Anything, mock.Anything).
		Return(fmt.Errorf("%w: smtp refused", models.ErrNotify))
	f.renders("AAPL", 2)

	report := f.monitor("AAPL").RunCycle(context.Background())

	res, _ := report.Result("AAPL")
	assert.Equal(t, models.SymbolFailed, res.Status)
	assert.False(t, res.Alerted)
	assert.Equal(t, "-10", res.PercentChange.String())
	assert.NotEmpty(t, res.ChartPath)
	f.renderer.AssertExpectations(t)
}

func TestRunCycleStorageFailureAbortsSymbol(t *testing.T) {
	provider := &mockProvider{}
	renderer := &mockRenderer{}
	store := &mockStore{}
	for _, sym := range []string{"A", "B"} {
		provider.On("LastPrice", mock.Anything, sym).
			Return(models.Quote{Symbol: sym, Price: decimal.NewFromInt(1)}, nil)
	}
	store.On("Append", mock.Anything, mock.MatchedBy(func(r models.PriceRecord) bool { return r.Symbol == "A" })).
		Return(fmt.Errorf("%w: disk full", models.ErrStorage))
	store.On("Append", mock.Anything, mock.MatchedBy(func(r models.PriceRecord) bool { return r.Symbol == "B" })).
		Return(nil)
	store.On("MostRecentBefore", mock.Anything, "B", mock.Anything).Return(nil, nil)
	store.On("Series", mock.Anything, "B").
		Return([]models.PriceRecord{{Timestamp: cycleTime, Symbol: "B", Price: decimal.NewFromInt(1)}}, nil)
	renderer.On("Render", mock.Anything, "B", mock.Anything).Return("plots/B_history.png", nil)

	m := NewMonitorCycle([]string{"A", "B"}, provider, store, threshold.New(decimal.NewFromInt(5)),
		&mockNotifier{}, renderer, metrics.Nop{}, applogger.Nop(),
		WithClock(func() time.Time { return cycleTime }))
	report := m.RunCycle(context.Background())

	a, _ := report.Result("A")
	assert.Equal(t, models.SymbolFailed, a.Status)
	assert.Contains(t, a.Errors[0], "append price")
	b, _ := report.Result("B")
	assert.Equal(t, models.SymbolOK, b.Status)
	store.AssertNotCalled(t, "MostRecentBefore", mock.Anything, "A", mock.Anything)
	renderer.AssertNotCalled(t, "Render", mock.Anything, "A", mock.Anything)
}

func TestRunCycleTruncatesTimestamp(t *testing.T) {
	f := newFixture(t)
	f.quote("AAPL", "100")
	f.renders("AAPL", 1)
	m := f.monitor("AAPL")
	m.now = func() time.Time { return cycleTime.Add(750 * time.Millisecond) }

	m.RunCycle(context.Background())

	series, err := f.store.Series(context.Background(), "AAPL")
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.True(t, series[0].Timestamp.Equal(cycleTime))
}

// errorKinds records the kinds passed to RecordError.
type errorKinds struct {
	metrics.Nop
	kinds []string
}

func (e *errorKinds) RecordError(kind string) { e.kinds = append(e.kinds, kind) }

func TestRunCycleRenderFailureDoesNotBlockOthers(t *testing.T) {
	f := newFixture(t)
	kinds := &errorKinds{}
	f.metrics = kinds
	f.seed(t, "A", "100")
	f.seed(t, "B", "50")
	f.quote("A", "101")
	f.quote("B", "60")
	f.renderer.On("Render", mock.Anything, "A", mock.Anything).
		Return("", fmt.Errorf("%w: disk full", models.ErrRender)).Once()
	f.notifier.On("Notify", mock.Anything, mock.MatchedBy(func(a *models.Alert) bool {
		return a.Symbol == "B"
	})).Return(nil).Once()
	f.renders("B", 2)

	report := f.monitor("A", "B").RunCycle(context.Background())

	require.Len(t, report.Results, 2)
	a, _ := report.Result("A")
	assert.Equal(t, models.SymbolFailed, a.Status)
	assert.Empty(t, a.ChartPath)
	require.Len(t, a.Errors, 1)
	assert.Contains(t, a.Errors[0], "render chart")
	assert.Equal(t, []string{"render"}, kinds.kinds)

	b, _ := report.Result("B")
	assert.Equal(t, models.SymbolOK, b.Status)
	assert.True(t, b.Alerted)
	assert.Equal(t, "plots/B_history.png", b.ChartPath)

	series, err := f.store.Series(context.Background(), "A")
	require.NoError(t, err)
	assert.Len(t, series, 2)
	f.renderer.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}
