package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"PriceWatch/internal/domain/models"
	"PriceWatch/internal/domain/repository"
	applogger "PriceWatch/pkg/logger"
	"PriceWatch/pkg/util"

	"github.com/shopspring/decimal"
)

var csvHeader = []string{"Timestamp", "Symbol", "Price"}

// CSVPriceStore implements PriceStore as a flat CSV log.
// Lookups rescan the whole file; fine for one row per symbol per interval.
// Rows that do not parse (a write torn by a crash) are skipped on read.
type CSVPriceStore struct {
	path   string
	loc    *time.Location
	l      *applogger.Logger
	mu     sync.Mutex
	warned map[int]struct{}
}

// CSVOption configures CSVPriceStore.
type CSVOption func(*CSVPriceStore)

// WithLocation sets the zone timestamps are written and read in (default time.Local).
func WithLocation(loc *time.Location) CSVOption {
	return func(s *CSVPriceStore) {
		s.loc = loc
	}
}

// WithStoreLogger sets the logger used to report skipped rows.
func WithStoreLogger(l *applogger.Logger) CSVOption {
	return func(s *CSVPriceStore) {
		s.l = l
	}
}

// NewCSVPriceStore creates a store backed by the file at path. The file is created on first append.
func NewCSVPriceStore(path string, opts ...CSVOption) *CSVPriceStore {
	s := &CSVPriceStore{path: path, loc: time.Local, l: applogger.Nop(), warned: make(map[int]struct{})}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ repository.PriceStore = (*CSVPriceStore)(nil)

// Append writes one row and syncs the file before returning.
func (s *CSVPriceStore) Append(_ context.Context, rec models.PriceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: create dir: %v", models.ErrStorage, err)
		}
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", models.ErrStorage, s.path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("%w: stat %s: %v", models.ErrStorage, s.path, err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(csvHeader); err != nil {
			return fmt.Errorf("%w: write header: %v", models.ErrStorage, err)
		}
	} else if err := terminateLastLine(f, info.Size()); err != nil {
		return fmt.Errorf("%w: %v", models.ErrStorage, err)
	}
	row := []string{util.FormatStamp(rec.Timestamp, s.loc), rec.Symbol, rec.Price.String()}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("%w: write row: %v", models.ErrStorage, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("%w: flush: %v", models.ErrStorage, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("%w: sync: %v", models.ErrStorage, err)
	}
	return nil
}

// MostRecentBefore scans from the end of the log backward.
func (s *CSVPriceStore) MostRecentBefore(_ context.Context, symbol string, before time.Time) (*models.PriceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.read(symbol)
	if err != nil {
		return nil, err
	}
	for i := len(recs) - 1; i >= 0; i-- {
		if recs[i].Timestamp.Before(before) {
			return &recs[i], nil
		}
	}
	return nil, nil
}

// Series returns every record for symbol in file order.
func (s *CSVPriceStore) Series(_ context.Context, symbol string) ([]models.PriceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.read(symbol)
}

func (s *CSVPriceStore) Close() error { return nil }

// terminateLastLine appends a newline when the file does not end with one,
// so the next row starts on its own line.
func terminateLastLine(f *os.File, size int64) error {
	last := make([]byte, 1)
	if _, err := f.ReadAt(last, size-1); err != nil {
		return fmt.Errorf("read last byte: %v", err)
	}
	if last[0] == '\n' {
		return nil
	}
	if _, err := f.Write([]byte{'\n'}); err != nil {
		return fmt.Errorf("terminate torn row: %v", err)
	}
	return nil
}

// read returns the parsed records for symbol. A missing file is an empty log.
func (s *CSVPriceStore) read(symbol string) ([]models.PriceRecord, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: open %s: %v", models.ErrStorage, s.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", models.ErrStorage, err)
	}
	if len(header) != len(csvHeader) || header[0] != csvHeader[0] || header[1] != csvHeader[1] || header[2] != csvHeader[2] {
		return nil, fmt.Errorf("%w: unexpected header %v", models.ErrStorage, header)
	}

	var out []models.PriceRecord
	for {
		row, err := r.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			var perr *csv.ParseError
			if !errors.As(err, &perr) {
				return nil, fmt.Errorf("%w: read rows: %v", models.ErrStorage, err)
			}
			s.skip(perr.Line, err)
			continue
		}
		line, _ := r.FieldPos(0)
		if len(row) != len(csvHeader) {
			s.skip(line, fmt.Errorf("want %d fields, got %d", len(csvHeader), len(row)))
			continue
		}
		if row[1] != symbol {
			continue
		}
		rec, err := s.parseRow(row)
		if err != nil {
			s.skip(line, err)
			continue
		}
		out = append(out, rec)
	}
}

// skip reports a malformed row once per line.
func (s *CSVPriceStore) skip(line int, err error) {
	if _, ok := s.warned[line]; ok {
		return
	}
	s.warned[line] = struct{}{}
	s.l.Warn("skipping malformed price row",
		applogger.String("path", s.path),
		applogger.Int("line", line),
		applogger.Error(err),
	)
}

func (s *CSVPriceStore) parseRow(row []string) (models.PriceRecord, error) {
	ts, err := util.ParseStamp(row[0], s.loc)
	if err != nil {
		return models.PriceRecord{}, fmt.Errorf("timestamp: %v", err)
	}
	price, err := decimal.NewFromString(row[2])
	if err != nil {
		return models.PriceRecord{}, fmt.Errorf("price: %v", err)
	}
	return models.PriceRecord{Timestamp: ts, Symbol: row[1], Price: price}, nil
}
