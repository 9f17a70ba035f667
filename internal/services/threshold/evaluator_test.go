package threshold

import (
	"errors"
	"testing"

	"PriceWatch/internal/domain/models"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr(d decimal.Decimal) *decimal.Decimal { return &d }

func TestEvaluateNoPrevious(t *testing.T) {
	d, err := New(dec("5")).Evaluate(dec("100"), nil)
	if err != nil || d != nil {
		t.Fatalf("expected no decision, got %v %v", d, err)
	}
}

func TestEvaluateDrop(t *testing.T) {
	cases := []struct {
		threshold string
		trigger   bool
	}{
		{"4.7619", true},
		{"4", true},
		{"5", false},
	}
	for _, tc := range cases {
		d, err := New(dec(tc.threshold)).Evaluate(dec("100"), ptr(dec("105")))
		if err != nil {
			t.Fatalf("evaluate: %v", err)
		}
		if got := d.PercentChange.Round(4).String(); got != "-4.7619" {
			t.Fatalf("percent change = %s", got)
		}
		if d.Trigger != tc.trigger {
			t.Fatalf("threshold %s: trigger = %v, want %v", tc.threshold, d.Trigger, tc.trigger)
		}
	}
}

func TestEvaluateUnchanged(t *testing.T) {
	d, err := New(dec("5")).Evaluate(dec("100"), ptr(dec("100")))
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !d.PercentChange.IsZero() || d.Trigger {
		t.Fatalf("unexpected decision %+v", d)
	}
}

func TestEvaluateThresholdIsInclusive(t *testing.T) {
	d, err := New(dec("6")).Evaluate(dec("106"), ptr(dec("100")))
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !d.PercentChange.Equal(dec("6")) || !d.Trigger {
		t.Fatalf("unexpected decision %+v", d)
	}
}

func TestEvaluateZeroPrevious(t *testing.T) {
	d, err := New(dec("5")).Evaluate(dec("100"), ptr(decimal.Zero))
	if !errors.Is(err, models.ErrDivideByZero) {
		t.Fatalf("expected ErrDivideByZero, got %v", err)
	}
	if d != nil {
		t.Fatalf("expected no decision, got %+v", d)
	}
}
