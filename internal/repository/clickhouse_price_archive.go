package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"PriceWatch/internal/domain/models"
	domrepo "PriceWatch/internal/domain/repository"
	pkgch "PriceWatch/pkg/clickhouse"
	applogger "PriceWatch/pkg/logger"
)

// CHPriceArchive mirrors price records into a ClickHouse MergeTree table.
type CHPriceArchive struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewCHPriceArchive(ch *pkgch.Client, table string) *CHPriceArchive {
	return &CHPriceArchive{db: ch.DB(), table: table}
}

var _ domrepo.PriceArchive = (*CHPriceArchive)(nil)

// SetLogger injects a structured logger.
func (s *CHPriceArchive) SetLogger(l *applogger.Logger) { s.l = l }

// SchemaStatements returns the DDL for the archive table.
func SchemaStatements(table string) []string {
	return []string{fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s (
            ts     DateTime,
            symbol LowCardinality(String),
            price  Decimal(18, 6)
        ) ENGINE = MergeTree
        ORDER BY (symbol, ts)`, table)}
}

// Init creates the archive table if needed.
func (s *CHPriceArchive) Init(ctx context.Context, ch *pkgch.Client) error {
	return ch.InitSchema(ctx, SchemaStatements(s.table))
}

func (s *CHPriceArchive) Archive(ctx context.Context, rec models.PriceRecord) error {
	start := time.Now()
	q := fmt.Sprintf("INSERT INTO %s (ts, symbol, price) VALUES (?, ?, ?)", s.table)
	// price goes over as text so the Decimal column keeps every digit
	if _, err := s.db.ExecContext(ctx, q, rec.Timestamp, rec.Symbol, rec.Price.String()); err != nil {
		if s.l != nil {
			s.l.Error("clickhouse archive insert error",
				applogger.String("table", s.table),
				applogger.String("symbol", rec.Symbol),
				applogger.Error(err),
			)
		}
		return fmt.Errorf("archive insert: %w", err)
	}
	if s.l != nil {
		s.l.Debug("clickhouse archive insert",
			applogger.String("symbol", rec.Symbol),
			applogger.Duration("took_ms", time.Since(start)),
		)
	}
	return nil
}

func (s *CHPriceArchive) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
