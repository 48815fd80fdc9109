// Command web serves the plant-study dashboard API: normalized experiment
// tables and per-group aggregate views over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/202510804-cloud/polar-plant-dashboard/internal/config"
	"github.com/202510804-cloud/polar-plant-dashboard/internal/dataprocessing"
	"github.com/202510804-cloud/polar-plant-dashboard/internal/infrastructure"
	transport "github.com/202510804-cloud/polar-plant-dashboard/internal/transport/http"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer infrastructure.CloseLogFile()

	loader := dataprocessing.NewLoader(cfg, logger)

	// Warm the cache up front so the first request doesn't pay for the
	// disk read. A halting failure is logged but the server still starts:
	// /api/status keeps reporting the failure until the data appears and a
	// reload is requested.
	if snap, err := loader.Load(context.Background()); err != nil {
		logger.Warn("initial ingestion failed", slog.String("error", err.Error()))
	} else {
		logger.Info("initial ingestion complete",
			slog.String("run_id", snap.RunID),
			slog.Int("env_rows", len(snap.Env.Rows)),
			slog.Int("growth_rows", len(snap.Growth.Rows)))
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      transport.NewRouter(loader, cfg, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", slog.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("shutting down", slog.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(ctx)
}
