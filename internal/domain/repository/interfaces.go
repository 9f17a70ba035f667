package repository

import (
	"context"
	"time"

	"PriceWatch/internal/domain/models"
)

// QuoteProvider returns the last traded price for a symbol.
// Implementations return an error wrapping models.ErrNoPrice when nothing usable is available.
type QuoteProvider interface {
	LastPrice(ctx context.Context, symbol string) (models.Quote, error)
	Close() error
}

// PriceStore is the append-only price log.
type PriceStore interface {
	Append(ctx context.Context, rec models.PriceRecord) error
	// MostRecentBefore returns the latest record for symbol with a timestamp strictly
	// before the given time, or nil when there is none.
	MostRecentBefore(ctx context.Context, symbol string, before time.Time) (*models.PriceRecord, error)
	Series(ctx context.Context, symbol string) ([]models.PriceRecord, error)
	Close() error
}

// PriceArchive mirrors appended records into a secondary store.
type PriceArchive interface {
	Archive(ctx context.Context, rec models.PriceRecord) error
	Health(ctx context.Context) error
}

// SnapshotCache keeps the latest observed record per symbol for readers.
type SnapshotCache interface {
	SetLatest(ctx context.Context, rec models.PriceRecord) error
	GetLatest(ctx context.Context, symbol string) (*models.PriceRecord, error)
	Close() error
}

// Notifier delivers an alert to its audience.
type Notifier interface {
	Notify(ctx context.Context, alert *models.Alert) error
}

// ChartRenderer turns a symbol's series into an artifact and returns its location.
type ChartRenderer interface {
	Render(ctx context.Context, symbol string, series []models.PriceRecord) (string, error)
}

// Metrics records monitoring activity.
type Metrics interface {
	RecordCycle(seconds float64)
	RecordFetch(symbol string, ok bool)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordPercentChange(symbol string, pct float64)
	RecordAlert(symbol string)
	RecordLatency(op string, seconds float64)
}
