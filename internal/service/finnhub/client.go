package finnhub

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"PriceWatch/internal/domain/models"
	drepo "PriceWatch/internal/domain/repository"
	"PriceWatch/internal/service/ratelimit"
	xhttp "PriceWatch/pkg/http"

	"github.com/shopspring/decimal"
)

// QuoteClient polls the Finnhub REST quote endpoint.
type QuoteClient struct {
	apiKey   string
	baseURL  string
	http     *xhttp.Client
	limiter  *ratelimit.Limiter
	capacity float64
	refill   float64
	timeout  time.Duration
}

// NewQuoteClient builds a REST provider allowed perMinute requests per minute.
func NewQuoteClient(apiKey, baseURL string, timeout time.Duration, perMinute int) *QuoteClient {
	c, r := ratelimit.PerMinute(perMinute)
	return &QuoteClient{
		apiKey:   apiKey,
		baseURL:  baseURL,
		http:     xhttp.NewClient(xhttp.WithTimeout(timeout)),
		limiter:  ratelimit.New(),
		capacity: c,
		refill:   r,
		timeout:  timeout,
	}
}

var _ drepo.QuoteProvider = (*QuoteClient)(nil)

// quoteResponse mirrors GET /quote. C is the current price, T the unix time of the last trade.
type quoteResponse struct {
	C  float64 `json:"c"`
	PC float64 `json:"pc"`
	T  int64   `json:"t"`
}

func (c *QuoteClient) LastPrice(ctx context.Context, symbol string) (models.Quote, error) {
	if err := c.wait(ctx); err != nil {
		return models.Quote{}, fmt.Errorf("%w: finnhub %s: rate limit: %v", models.ErrNoPrice, symbol, err)
	}

	var q quoteResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: http.MethodGet,
		URL:    c.baseURL + "/quote",
		QueryParams: map[string][]string{
			"symbol": {symbol},
			"token":  {c.apiKey},
		},
	}, &q)
	if err != nil {
		var se *xhttp.StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusTooManyRequests {
			return models.Quote{}, fmt.Errorf("%w: finnhub %s: rate limited", models.ErrNoPrice, symbol)
		}
		return models.Quote{}, fmt.Errorf("%w: finnhub %s: %v", models.ErrNoPrice, symbol, err)
	}

	// Finnhub answers unknown symbols with an all-zero quote.
	if q.C <= 0 {
		return models.Quote{}, fmt.Errorf("%w: finnhub %s: empty quote", models.ErrNoPrice, symbol)
	}
	quote := models.Quote{Symbol: symbol, Price: decimal.NewFromFloat(q.C)}
	if q.T > 0 {
		quote.Time = time.Unix(q.T, 0)
	}
	return quote, nil
}

// wait blocks for a request token, for at most the request timeout.
func (c *QuoteClient) wait(ctx context.Context) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return c.limiter.Wait(ctx, "quote", c.capacity, c.refill)
}

func (c *QuoteClient) Close() error { return nil }
