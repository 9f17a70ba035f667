package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceRecord is one persisted observation. Records are never mutated once appended.
type PriceRecord struct {
	Timestamp time.Time       `json:"timestamp"`
	Symbol    string          `json:"symbol"`
	Price     decimal.Decimal `json:"price"`
}

// Quote is the last price reported by a market data provider.
type Quote struct {
	Symbol string
	Price  decimal.Decimal
	Time   time.Time // provider time, zero when unknown
}

// Decision is the outcome of comparing a price against its predecessor.
type Decision struct {
	PercentChange decimal.Decimal
	Trigger       bool
}

// Alert describes a threshold crossing for one symbol.
type Alert struct {
	ID            uuid.UUID       `json:"id"`
	Symbol        string          `json:"symbol"`
	PercentChange decimal.Decimal `json:"percent_change"`
	Price         decimal.Decimal `json:"price"`
	PreviousPrice decimal.Decimal `json:"previous_price"`
	Threshold     decimal.Decimal `json:"threshold"`
	TriggeredAt   time.Time       `json:"triggered_at"`
}

// Subject returns the notification subject line.
func (a *Alert) Subject() string {
	return fmt.Sprintf("Stock Alert: %s", a.Symbol)
}

// Body returns the plain-text notification body.
func (a *Alert) Body() string {
	return fmt.Sprintf("%s price changed by %s%%.\nCurrent Price: $%s",
		a.Symbol, a.PercentChange.StringFixed(2), a.Price.StringFixed(2))
}
