package chart

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"PriceWatch/internal/domain/models"
	drepo "PriceWatch/internal/domain/repository"

	gochart "github.com/wcharczuk/go-chart/v2"
)

// PNGRenderer draws a symbol's price history as a line chart and writes it to
// <dir>/<SYMBOL>_history.png, replacing the previous file.
type PNGRenderer struct {
	dir    string
	width  int
	height int
}

func NewPNGRenderer(dir string) *PNGRenderer {
	return &PNGRenderer{dir: dir, width: 1000, height: 500}
}

var _ drepo.ChartRenderer = (*PNGRenderer)(nil)

// Path returns where the chart for symbol is written.
func (r *PNGRenderer) Path(symbol string) string {
	return filepath.Join(r.dir, symbol+"_history.png")
}

func (r *PNGRenderer) Render(_ context.Context, symbol string, series []models.PriceRecord) (string, error) {
	if len(series) == 0 {
		return "", fmt.Errorf("%w: %s: empty series", models.ErrRender, symbol)
	}

	xs := make([]time.Time, len(series))
	ys := make([]float64, len(series))
	for i, rec := range series {
		xs[i] = rec.Timestamp
		ys[i] = rec.Price.InexactFloat64()
	}
	xr, yr := timeRange(xs), valueRange(ys)

	graph := gochart.Chart{
		Title:  symbol + " Price History",
		Width:  r.width,
		Height: r.height,
		XAxis: gochart.XAxis{
			Name:           "Time",
			ValueFormatter: gochart.TimeMinuteValueFormatter,
			Range:          &gochart.ContinuousRange{Min: xr[0], Max: xr[1]},
		},
		YAxis: gochart.YAxis{
			Name:  "Price",
			Range: &gochart.ContinuousRange{Min: yr[0], Max: yr[1]},
		},
		Series: []gochart.Series{
			gochart.TimeSeries{
				Name:    symbol,
				XValues: xs,
				YValues: ys,
				Style: gochart.Style{
					StrokeColor: gochart.ColorBlue,
					StrokeWidth: 2,
					DotColor:    gochart.ColorBlue,
					DotWidth:    3,
				},
			},
		},
	}

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: %s: create dir: %v", models.ErrRender, symbol, err)
	}
	tmp, err := os.CreateTemp(r.dir, symbol+"_*.png.tmp")
	if err != nil {
		return "", fmt.Errorf("%w: %s: temp file: %v", models.ErrRender, symbol, err)
	}
	defer os.Remove(tmp.Name())

	if err := graph.Render(gochart.PNG, tmp); err != nil {
		tmp.Close()
		return "", fmt.Errorf("%w: %s: draw: %v", models.ErrRender, symbol, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("%w: %s: close: %v", models.ErrRender, symbol, err)
	}

	out := r.Path(symbol)
	if err := os.Rename(tmp.Name(), out); err != nil {
		return "", fmt.Errorf("%w: %s: rename: %v", models.ErrRender, symbol, err)
	}
	return out, nil
}

// timeRange pads a single instant by a minute on each side; go-chart rejects zero-width ranges.
func timeRange(xs []time.Time) [2]float64 {
	lo, hi := xs[0], xs[0]
	for _, x := range xs[1:] {
		if x.Before(lo) {
			lo = x
		}
		if x.After(hi) {
			hi = x
		}
	}
	if !hi.After(lo) {
		lo, hi = lo.Add(-time.Minute), hi.Add(time.Minute)
	}
	return [2]float64{gochart.TimeToFloat64(lo), gochart.TimeToFloat64(hi)}
}

func valueRange(ys []float64) [2]float64 {
	lo, hi := ys[0], ys[0]
	for _, y := range ys[1:] {
		lo, hi = min(lo, y), max(hi, y)
	}
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = max(hi*0.01, 1)
	}
	return [2]float64{lo - pad, hi + pad}
}
