package models

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestErrorKind(t *testing.T) {
	cases := map[string]error{
		"":               nil,
		"fetch":          fmt.Errorf("%w: AAPL", ErrNoPrice),
		"storage":        fmt.Errorf("%w: disk full", ErrStorage),
		"divide_by_zero": ErrDivideByZero,
		"notify":         fmt.Errorf("%w: smtp", ErrNotify),
		"render":         fmt.Errorf("%w: png", ErrRender),
		"unknown":        errors.New("boom"),
	}
	for want, err := range cases {
		if got := ErrorKind(err); got != want {
			t.Fatalf("ErrorKind(%v) = %q, want %q", err, got, want)
		}
	}
}

func TestAlertMessage(t *testing.T) {
	a := &Alert{
		Symbol:        "AAPL",
		PercentChange: decimal.RequireFromString("-4.761904"),
		Price:         decimal.NewFromInt(100),
		TriggeredAt:   time.Now(),
	}
	if a.Subject() != "Stock Alert: AAPL" {
		t.Fatalf("unexpected subject %q", a.Subject())
	}
	want := "AAPL price changed by -4.76%.\nCurrent Price: $100.00"
	if a.Body() != want {
		t.Fatalf("unexpected body %q", a.Body())
	}
}
