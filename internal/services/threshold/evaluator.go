// Package threshold decides whether a price move is large enough to alert on.
package threshold

import (
	"fmt"

	"PriceWatch/internal/domain/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Evaluator compares a price with its predecessor against a fixed percent threshold.
type Evaluator struct {
	percent decimal.Decimal
}

// New creates an Evaluator for the given absolute percent threshold.
func New(percent decimal.Decimal) *Evaluator {
	return &Evaluator{percent: percent}
}

// Threshold returns the configured percent.
func (e *Evaluator) Threshold() decimal.Decimal { return e.percent }

// Evaluate returns nil when there is no previous price. A zero previous price
// yields models.ErrDivideByZero rather than a zero or infinite change.
func (e *Evaluator) Evaluate(current decimal.Decimal, previous *decimal.Decimal) (*models.Decision, error) {
	if previous == nil {
		return nil, nil
	}
	if previous.IsZero() {
		return nil, fmt.Errorf("%w: current=%s", models.ErrDivideByZero, current)
	}

	pct := current.Sub(*previous).Div(*previous).Mul(hundred)
	return &models.Decision{
		PercentChange: pct,
		Trigger:       pct.Abs().GreaterThanOrEqual(e.percent),
	}, nil
}
