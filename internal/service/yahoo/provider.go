package yahoo

import (
	"context"
	"fmt"
	"time"

	"PriceWatch/internal/domain/models"
	drepo "PriceWatch/internal/domain/repository"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/quote"
	"github.com/shopspring/decimal"
)

// Provider reads the regular market price from Yahoo Finance.
type Provider struct {
	get     func(symbol string) (*finance.Quote, error)
	timeout time.Duration
}

func New(timeout time.Duration) *Provider {
	return &Provider{get: quote.Get, timeout: timeout}
}

var _ drepo.QuoteProvider = (*Provider)(nil)

type result struct {
	q   *finance.Quote
	err error
}

// LastPrice returns the latest regular-session price. The underlying client
// takes no context, so the call is abandoned (not cancelled) on timeout.
func (p *Provider) LastPrice(ctx context.Context, symbol string) (models.Quote, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	ch := make(chan result, 1)
	go func() {
		q, err := p.get(symbol)
		ch <- result{q, err}
	}()

	var r result
	select {
	case <-ctx.Done():
		return models.Quote{}, fmt.Errorf("%w: yahoo %s: %v", models.ErrNoPrice, symbol, ctx.Err())
	case r = <-ch:
	}

	if r.err != nil {
		return models.Quote{}, fmt.Errorf("%w: yahoo %s: %v", models.ErrNoPrice, symbol, r.err)
	}
	if r.q == nil || r.q.RegularMarketPrice <= 0 {
		return models.Quote{}, fmt.Errorf("%w: yahoo %s: no market price", models.ErrNoPrice, symbol)
	}
	out := models.Quote{Symbol: symbol, Price: decimal.NewFromFloat(r.q.RegularMarketPrice)}
	if r.q.RegularMarketTime > 0 {
		out.Time = time.Unix(int64(r.q.RegularMarketTime), 0)
	}
	return out, nil
}

func (p *Provider) Close() error { return nil }
