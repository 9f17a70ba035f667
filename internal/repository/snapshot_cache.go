package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"PriceWatch/internal/domain/models"
	domrepo "PriceWatch/internal/domain/repository"
	"PriceWatch/pkg/cache"
)

const latestKeyPrefix = "latest"

// CacheSnapshots stores the latest record per symbol in a cache.Service.
type CacheSnapshots struct {
	c   cache.Service
	ttl time.Duration
}

func NewCacheSnapshots(c cache.Service, ttl time.Duration) *CacheSnapshots {
	return &CacheSnapshots{c: c, ttl: ttl}
}

var _ domrepo.SnapshotCache = (*CacheSnapshots)(nil)

func (s *CacheSnapshots) SetLatest(ctx context.Context, rec models.PriceRecord) error {
	if err := s.c.Set(ctx, cache.GenerateKey(latestKeyPrefix, rec.Symbol), rec, s.ttl); err != nil {
		return fmt.Errorf("cache set latest %s: %w", rec.Symbol, err)
	}
	return nil
}

// GetLatest returns nil without error on a cache miss.
func (s *CacheSnapshots) GetLatest(ctx context.Context, symbol string) (*models.PriceRecord, error) {
	var rec models.PriceRecord
	if err := s.c.Get(ctx, cache.GenerateKey(latestKeyPrefix, symbol), &rec); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, nil
		}
		return nil, fmt.Errorf("cache get latest %s: %w", symbol, err)
	}
	return &rec, nil
}

func (s *CacheSnapshots) Close() error { return s.c.Close() }
