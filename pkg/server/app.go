package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	mid "AutoTrade/internal/middleware"
	"AutoTrade/internal/service/ratelimit"
	"AutoTrade/internal/usecase"
	"AutoTrade/pkg/config"
	xhttp "AutoTrade/pkg/http"
	applogger "AutoTrade/pkg/logger"
)

const limiterIdle = 10 * time.Minute

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	l          *applogger.Logger
	httpServer *xhttp.Server
	pipe       *mid.EventPipeline // nil when publishing is disabled
	warmer     *usecase.Warmer    // nil when warm-up is disabled
	rl         *ratelimit.Limiter // nil when rate limiting is disabled
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	httpServer *xhttp.Server,
	pipe *mid.EventPipeline,
	warmer *usecase.Warmer,
	rl *ratelimit.Limiter,
) *App {
	if l == nil {
		l = applogger.Nop()
	}
	return &App{cfg: cfg, l: l, httpServer: httpServer, pipe: pipe, warmer: warmer, rl: rl}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext starts every component and blocks until ctx is done.
func (a *App) RunContext(ctx context.Context) error {
	bg, cancel := context.WithCancel(context.Background())
	defer cancel()

	if a.pipe != nil {
		a.pipe.Start(bg)
		a.l.Info("prediction event pipeline started", applogger.String("topic", a.cfg.Kafka.Topic))
	}
	if a.warmer != nil {
		a.warmer.Start()
		go a.warmer.RunOnce(bg)
	}
	if a.rl != nil {
		go a.sweepLimiter(bg)
	}

	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return err
	}
	a.l.Info("autotrade started",
		applogger.String("env", a.cfg.Environment),
		applogger.String("data_source", a.cfg.Data.Source),
		applogger.String("predictor", a.cfg.Predictor.Kind),
		applogger.String("cache", a.cfg.Cache.Backend),
	)

	<-ctx.Done()
	a.l.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(ctx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
	}
	if a.warmer != nil {
		a.warmer.Stop(ctx)
	}
	// flush buffered events after the last request has finished
	if a.pipe != nil {
		if err := a.pipe.Stop(ctx); err != nil {
			a.l.Warn("event pipeline stop error", applogger.Error(err))
		}
	}

	a.l.Info("shutdown complete")
	return nil
}

func (a *App) sweepLimiter(ctx context.Context) {
	t := time.NewTicker(time.Minute)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := a.rl.Sweep(limiterIdle); n > 0 {
				a.l.Debug("rate limiter swept", applogger.Int("buckets", n))
			}
		}
	}
}
