package finnhub

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"PriceWatch/internal/domain/models"
	drepo "PriceWatch/internal/domain/repository"
	applogger "PriceWatch/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
)

// Stream keeps the last trade per symbol from the Finnhub WebSocket feed and
// serves it as a QuoteProvider. Start must be running for prices to arrive.
type Stream struct {
	apiKey         string
	websocketURL   string
	symbols        []string
	reconnectDelay time.Duration
	pingInterval   time.Duration
	maxAge         time.Duration
	l              *applogger.Logger

	mu     sync.RWMutex
	conn   *websocket.Conn
	latest map[string]models.Quote
}

// NewStream creates a stream provider. Trades older than maxAge are not served; zero disables the check.
func NewStream(apiKey, websocketURL string, symbols []string, reconnectDelay, pingInterval, maxAge time.Duration, l *applogger.Logger) *Stream {
	if l == nil {
		l = applogger.Nop()
	}
	return &Stream{
		apiKey:         apiKey,
		websocketURL:   websocketURL,
		symbols:        symbols,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
		maxAge:         maxAge,
		l:              l,
		latest:         make(map[string]models.Quote),
	}
}

var _ drepo.QuoteProvider = (*Stream)(nil)

// LastPrice returns the most recent trade seen for symbol.
func (s *Stream) LastPrice(_ context.Context, symbol string) (models.Quote, error) {
	s.mu.RLock()
	q, ok := s.latest[symbol]
	s.mu.RUnlock()
	if !ok {
		return models.Quote{}, fmt.Errorf("%w: no trade received for %s", models.ErrNoPrice, symbol)
	}
	if s.maxAge > 0 && time.Since(q.Time) > s.maxAge {
		return models.Quote{}, fmt.Errorf("%w: last trade for %s is stale (%s)", models.ErrNoPrice, symbol, q.Time.Format(time.RFC3339))
	}
	return q, nil
}

// Start connects and keeps reading until ctx is done, reconnecting after failures.
func (s *Stream) Start(ctx context.Context) error {
	for {
		err := s.session(ctx)
		if ctx.Err() != nil {
			return nil
		}
		s.l.Warn("finnhub stream disconnected",
			applogger.Error(err),
			applogger.Duration("retry_in_ms", s.reconnectDelay),
		)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(s.reconnectDelay):
		}
	}
}

func (s *Stream) session(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, fmt.Sprintf("%s?token=%s", s.websocketURL, s.apiKey), nil)
	if err != nil {
		return fmt.Errorf("finnhub connect: %w", err)
	}
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
	defer s.closeConn()

	for _, sym := range s.symbols {
		if err := conn.WriteJSON(map[string]string{"type": "subscribe", "symbol": sym}); err != nil {
			return fmt.Errorf("subscribe %s: %w", sym, err)
		}
	}
	s.l.Info("finnhub stream connected", applogger.Strings("symbols", s.symbols))

	done := make(chan struct{})
	defer close(done)
	go s.pingLoop(ctx, conn, done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		_, b, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("finnhub read: %w", err)
		}
		s.handle(b)
	}
}

type fhTrade struct {
	S string  `json:"s"`
	P float64 `json:"p"`
	T int64   `json:"t"` // ms
}

type fhMessage struct {
	Type string    `json:"type"`
	Data []fhTrade `json:"data"`
}

// handle applies one frame. Non-trade frames (ping, errors) are ignored.
func (s *Stream) handle(b []byte) {
	var m fhMessage
	if err := json.Unmarshal(b, &m); err != nil || m.Type != "trade" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range m.Data {
		if d.P <= 0 {
			continue
		}
		ts := time.UnixMilli(d.T)
		if prev, ok := s.latest[d.S]; ok && prev.Time.After(ts) {
			continue
		}
		s.latest[d.S] = models.Quote{Symbol: d.S, Price: decimal.NewFromFloat(d.P), Time: ts}
	}
}

func (s *Stream) pingLoop(ctx context.Context, conn *websocket.Conn, done <-chan struct{}) {
	if s.pingInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		}
	}
}

func (s *Stream) closeConn() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
}

// Close drops the current connection. Start reconnects unless its context is done.
func (s *Stream) Close() error {
	s.closeConn()
	return nil
}
