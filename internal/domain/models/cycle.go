package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SymbolStatus is the terminal state of one symbol within a cycle.
type SymbolStatus string

const (
	SymbolOK      SymbolStatus = "ok"
	SymbolSkipped SymbolStatus = "skipped" // no usable price
	SymbolFailed  SymbolStatus = "failed"
)

// SymbolResult summarizes what a cycle did for one symbol.
type SymbolResult struct {
	Symbol        string           `json:"symbol"`
	Status        SymbolStatus     `json:"status"`
	Price         *decimal.Decimal `json:"price,omitempty"`
	PercentChange *decimal.Decimal `json:"percent_change,omitempty"`
	Alerted       bool             `json:"alerted"`
	ChartPath     string           `json:"chart_path,omitempty"`
	Errors        []string         `json:"errors,omitempty"`
}

// CycleReport is returned by every monitoring cycle.
type CycleReport struct {
	ID         uuid.UUID      `json:"id"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Results    []SymbolResult `json:"results"`
}

// Duration reports how long the cycle took.
func (r *CycleReport) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Result returns the result recorded for symbol, if any.
func (r *CycleReport) Result(symbol string) (SymbolResult, bool) {
	for _, res := range r.Results {
		if res.Symbol == symbol {
			return res, true
		}
	}
	return SymbolResult{}, false
}
