package api

import (
	"errors"
	"os"
	"slices"
	"strings"
	"time"

	"PriceWatch/internal/domain/models"
	domrepo "PriceWatch/internal/domain/repository"
	xhttp "PriceWatch/pkg/http"
	xlogger "PriceWatch/pkg/logger"
	"PriceWatch/pkg/util"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// SchedulerStatus exposes scheduler state to the API.
type SchedulerStatus interface {
	State() string
	Interval() time.Duration
	LastReport() *models.CycleReport
}

// ChartLocator maps a symbol to its rendered chart file.
type ChartLocator interface {
	Path(symbol string) string
}

// PricesEchoHandler serves read-only views of the monitor's state.
type PricesEchoHandler struct {
	logger    *xlogger.Logger
	symbols   []string
	threshold decimal.Decimal
	store     domrepo.PriceStore
	snapshots domrepo.SnapshotCache
	status    SchedulerStatus
	charts    ChartLocator
}

// NewPricesEchoHandler creates the handler. snapshots may be nil.
func NewPricesEchoHandler(
	logger *xlogger.Logger,
	symbols []string,
	threshold decimal.Decimal,
	store domrepo.PriceStore,
	snapshots domrepo.SnapshotCache,
	status SchedulerStatus,
	charts ChartLocator,
) *PricesEchoHandler {
	return &PricesEchoHandler{
		logger:    logger,
		symbols:   symbols,
		threshold: threshold,
		store:     store,
		snapshots: snapshots,
		status:    status,
		charts:    charts,
	}
}

func (h *PricesEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/status", h.Status)
	g.GET("/prices/:symbol", h.Series)
	g.GET("/prices/:symbol/latest", h.Latest)
	g.GET("/charts/:symbol", h.Chart)
}

func (h *PricesEchoHandler) Status(c echo.Context) error {
	return xhttp.SuccessResponse(c, models.StatusResponse{
		State:     h.status.State(),
		Interval:  h.status.Interval().String(),
		Symbols:   h.symbols,
		Threshold: h.threshold.String(),
		LastCycle: h.status.LastReport(),
	})
}

func (h *PricesEchoHandler) Series(c echo.Context) error {
	req := &models.SeriesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	sym, err := h.tracked(req.Symbol)
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}

	var from, to time.Time
	if req.From != "" {
		t, ok := util.ParseTime(req.From)
		if !ok {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("invalid from %q", req.From))
		}
		from = t
	}
	if req.To != "" {
		t, ok := util.ParseTime(req.To)
		if !ok {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("invalid to %q", req.To))
		}
		to = t
	}

	series, err := h.store.Series(c.Request().Context(), sym)
	if err != nil {
		h.logger.Error("series read error", xlogger.String("symbol", sym), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalErrorf("read series").WithError(err))
	}

	out := make([]models.PriceRecord, 0, len(series))
	for _, rec := range series {
		if !from.IsZero() && rec.Timestamp.Before(from) {
			continue
		}
		if !to.IsZero() && rec.Timestamp.After(to) {
			continue
		}
		out = append(out, rec)
	}
	if len(out) > req.Limit {
		out = out[len(out)-req.Limit:]
	}
	return xhttp.SuccessResponse(c, models.SeriesResponse{Symbol: sym, Count: len(out), Records: out})
}

// Latest prefers the snapshot cache and falls back to the store.
func (h *PricesEchoHandler) Latest(c echo.Context) error {
	req := &models.SymbolRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	sym, err := h.tracked(req.Symbol)
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}
	ctx := c.Request().Context()

	if h.snapshots != nil {
		rec, err := h.snapshots.GetLatest(ctx, sym)
		if err != nil {
			h.logger.Warn("snapshot cache read error", xlogger.String("symbol", sym), xlogger.Error(err))
		} else if rec != nil {
			return xhttp.SuccessResponse(c, rec)
		}
	}

	series, err := h.store.Series(ctx, sym)
	if err != nil {
		h.logger.Error("latest read error", xlogger.String("symbol", sym), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalErrorf("read series").WithError(err))
	}
	if len(series) == 0 {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("no prices recorded for %s", sym))
	}
	return xhttp.SuccessResponse(c, series[len(series)-1])
}

func (h *PricesEchoHandler) Chart(c echo.Context) error {
	req := &models.SymbolRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	sym, err := h.tracked(req.Symbol)
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}

	path := h.charts.Path(sym)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("no chart rendered yet for %s", sym))
		}
		return xhttp.AppErrorResponse(c, xhttp.InternalErrorf("stat chart").WithError(err))
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "no-cache")
	return c.File(path)
}

func (h *PricesEchoHandler) tracked(symbol string) (string, error) {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	if !slices.Contains(h.symbols, sym) {
		return "", xhttp.NotFoundErrorf("symbol %s is not monitored", sym)
	}
	return sym, nil
}
