package chart

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"PriceWatch/internal/domain/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func series(prices ...string) []models.PriceRecord {
	t0 := time.Date(2025, 1, 2, 9, 30, 0, 0, time.UTC)
	out := make([]models.PriceRecord, len(prices))
	for i, p := range prices {
		out[i] = models.PriceRecord{
			Timestamp: t0.Add(time.Duration(i) * time.Minute),
			Symbol:    "AAPL",
			Price:     decimal.RequireFromString(p),
		}
	}
	return out
}

func TestPNGRendererWritesChart(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "plots")
	r := NewPNGRenderer(dir)

	path, err := r.Render(context.Background(), "AAPL", series("100", "101.5", "99.25"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "AAPL_history.png"), path)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, pngMagic))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestPNGRendererSinglePoint(t *testing.T) {
	r := NewPNGRenderer(t.TempDir())
	path, err := r.Render(context.Background(), "AAPL", series("100"))
	require.NoError(t, err)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, pngMagic))
}

func TestPNGRendererOverwrites(t *testing.T) {
	r := NewPNGRenderer(t.TempDir())
	ctx := context.Background()
	_, err := r.Render(ctx, "AAPL", series("100"))
	require.NoError(t, err)
	path, err := r.Render(ctx, "AAPL", series("100", "105"))
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestPNGRendererEmptySeries(t *testing.T) {
	_, err := NewPNGRenderer(t.TempDir()).Render(context.Background(), "AAPL", nil)
	assert.ErrorIs(t, err, models.ErrRender)
}
