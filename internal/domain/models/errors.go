package models

import "errors"

var (
	// ErrNoPrice means the provider returned no usable price for a symbol.
	ErrNoPrice = errors.New("no price data")
	// ErrStorage wraps read/write failures of the price log.
	ErrStorage = errors.New("storage failure")
	// ErrDivideByZero means the previous price was zero; usually a corrupt row.
	ErrDivideByZero = errors.New("previous price is zero")
	// ErrNotify wraps notification transport failures.
	ErrNotify = errors.New("notify failure")
	// ErrRender wraps chart rendering failures.
	ErrRender = errors.New("render failure")
)

// ErrorKind maps err to a stable label used in logs and metrics.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoPrice):
		return "fetch"
	case errors.Is(err, ErrStorage):
		return "storage"
	case errors.Is(err, ErrDivideByZero):
		return "divide_by_zero"
	case errors.Is(err, ErrNotify):
		return "notify"
	case errors.Is(err, ErrRender):
		return "render"
	default:
		return "unknown"
	}
}
