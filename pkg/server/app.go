package server

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"PriceWatch/internal/usecase"
	"PriceWatch/pkg/config"
	xhttp "PriceWatch/pkg/http"
	applogger "PriceWatch/pkg/logger"
)

// Background is a long-running service started before the scheduler.
type Background interface {
	Start(ctx context.Context) error
}

// Closer releases an infrastructure client on shutdown.
type Closer struct {
	Name  string
	Close func() error
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	l          *applogger.Logger
	scheduler  *usecase.Scheduler
	httpServer *xhttp.Server
	background []Background
	closers    []Closer
}

// New creates an App. httpServer may be nil; background services run until shutdown.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	scheduler *usecase.Scheduler,
	httpServer *xhttp.Server,
	background []Background,
	closers []Closer,
) *App {
	return &App{
		cfg:        cfg,
		l:          l,
		scheduler:  scheduler,
		httpServer: httpServer,
		background: background,
		closers:    closers,
	}
}

// Run blocks until SIGINT or SIGTERM.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext starts everything and blocks until ctx is done and the
// in-flight cycle, if any, has finished.
func (a *App) RunContext(ctx context.Context) error {
	bgCtx, cancelBg := context.WithCancel(ctx)
	defer cancelBg()

	var wg sync.WaitGroup
	for _, b := range a.background {
		wg.Add(1)
		go func(b Background) {
			defer wg.Done()
			if err := b.Start(bgCtx); err != nil {
				a.l.Error("background service error", applogger.Error(err))
			}
		}(b)
	}

	if a.httpServer != nil {
		if err := a.httpServer.Start(); err != nil {
			a.l.Error("http server start error", applogger.Error(err))
			return err
		}
	}

	a.l.Info("monitoring started",
		applogger.Strings("symbols", a.cfg.Stocks),
		applogger.Float64("threshold_pct", a.cfg.Threshold),
		applogger.String("provider", a.cfg.Provider.Type),
	)
	err := a.scheduler.Run(ctx)

	a.l.Info("shutdown signal received")
	cancelBg()
	wg.Wait()
	a.shutdown()
	return err
}

// shutdown gracefully stops all services.
func (a *App) shutdown() {
	if a.httpServer != nil {
		if err := a.httpServer.Stop(context.Background()); err != nil {
			a.l.Error("http shutdown error", applogger.Error(err))
		}
	}
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.l.Warn("close error", applogger.String("resource", c.Name), applogger.Error(err))
		}
	}
	a.l.Info("shutdown complete")
}
