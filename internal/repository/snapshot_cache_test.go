package repository

import (
	"context"
	"testing"
	"time"

	"PriceWatch/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheSnapshotsLatest(t *testing.T) {
	ctx := context.Background()
	s := NewCacheSnapshots(cache.NewMemoryCache(), time.Hour)
	defer s.Close()

	got, err := s.GetLatest(ctx, "AAPL")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, s.SetLatest(ctx, rec(0, "AAPL", "100.5")))
	require.NoError(t, s.SetLatest(ctx, rec(time.Minute, "AAPL", "101.25")))

	got, err = s.GetLatest(ctx, "AAPL")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "101.25", got.Price.String())
	assert.True(t, got.Timestamp.Equal(base.Add(time.Minute)))
}
