package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/TeapotSmashers/keypad-calculator/internal/config"
	"github.com/TeapotSmashers/keypad-calculator/internal/keypad"
	"github.com/TeapotSmashers/keypad-calculator/internal/observability"
	"github.com/TeapotSmashers/keypad-calculator/internal/server"

	"go.uber.org/zap"
)

func main() {

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Config
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	// Logger
	err = observability.InitLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer observability.SyncLogger()

	// Tracing
	traceShutdown, err := observability.InitTracing(ctx)
	if err != nil {
		panic(err)
	}
	defer traceShutdown(context.Background())

	// Metrics
	metricShutdown, err := initMetrics(ctx)
	if err != nil {
		panic(err)
	}
	defer metricShutdown(context.Background())

	// OTLP log export
	if cfg.OTLPLogs {
		logShutdown, err := observability.InitLogging(ctx)
		if err != nil {
			panic(err)
		}
		defer logShutdown(context.Background())
	}

	// Sessions
	store := keypad.NewStore(cfg.SessionTTL, keypad.Theme(cfg.DefaultTheme))
	go store.Run(ctx, cfg.SweepInterval)

	// Router
	router := server.NewRouter(keypad.NewHandler(store))

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: router,
	}

	go func() {
		observability.Logger.Info("server started",
			zap.String("addr", cfg.Addr),
			zap.Duration("session_ttl", cfg.SessionTTL),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			panic(err)
		}
	}()

	waitForShutdown(srv, cfg.ShutdownTimeout)
}

func waitForShutdown(srv *http.Server, timeout time.Duration) {

	stop := make(chan os.Signal, 1)

	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		observability.Logger.Error("shutdown failed", zap.Error(err))
		return
	}
	observability.Logger.Info("server stopped")
}
