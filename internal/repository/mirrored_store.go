package repository

import (
	"context"
	"time"

	"PriceWatch/internal/domain/models"
	domrepo "PriceWatch/internal/domain/repository"
	applogger "PriceWatch/pkg/logger"
)

// MirroredStore writes to a primary PriceStore and copies each successful
// append into an archive. Archive failures are logged and never returned;
// reads always come from the primary.
type MirroredStore struct {
	domrepo.PriceStore
	archive domrepo.PriceArchive
	timeout time.Duration
	l       *applogger.Logger
}

func NewMirroredStore(primary domrepo.PriceStore, archive domrepo.PriceArchive, l *applogger.Logger) *MirroredStore {
	if l == nil {
		l = applogger.Nop()
	}
	return &MirroredStore{PriceStore: primary, archive: archive, timeout: 5 * time.Second, l: l}
}

func (s *MirroredStore) Append(ctx context.Context, rec models.PriceRecord) error {
	if err := s.PriceStore.Append(ctx, rec); err != nil {
		return err
	}
	actx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.archive.Archive(actx, rec); err != nil {
		s.l.Warn("archive mirror failed",
			applogger.String("symbol", rec.Symbol),
			applogger.Error(err),
		)
	}
	return nil
}

// Health reports whether the archive is reachable.
func (s *MirroredStore) Health(ctx context.Context) error {
	return s.archive.Health(ctx)
}
