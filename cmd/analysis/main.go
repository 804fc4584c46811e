// Command analysis runs the wildlife park pipeline once over the configured
// input, then serves the dashboard until interrupted or, with
// PARK_SERVE_DASHBOARD=false, prints the text report and exits.
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

	"github.com/couchcryptid/wildlife-park-etl/internal/adapter/csvfile"
	httpadapter "github.com/couchcryptid/wildlife-park-etl/internal/adapter/http"
	"github.com/couchcryptid/wildlife-park-etl/internal/adapter/xlsxfile"
	"github.com/couchcryptid/wildlife-park-etl/internal/config"
	"github.com/couchcryptid/wildlife-park-etl/internal/dashboard"
	"github.com/couchcryptid/wildlife-park-etl/internal/observability"
	"github.com/couchcryptid/wildlife-park-etl/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	if err := run(cfg, logger); err != nil {
		logger.Error("analysis failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	metrics := observability.NewMetrics()

	variant, err := cfg.Variant()
	if err != nil {
		return err
	}

	var extractor pipeline.Extractor
	switch cfg.InputFormat() {
	case config.FormatXLSX:
		extractor = xlsxfile.NewReader(cfg.DataPath, cfg.DataSheet, logger)
	default:
		extractor = csvfile.NewReader(cfg.DataPath, logger)
	}
	logger.Info("analysis configured",
		"input", cfg.DataPath,
		"format", cfg.InputFormat(),
		"variant", variant.Name,
		"serve_dashboard", cfg.ServeDashboard,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p := pipeline.New(extractor, variant, logger, metrics)
	report, err := p.Run(ctx)
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	if !cfg.ServeDashboard {
		return dashboard.WriteText(os.Stdout, report)
	}

	dash := dashboard.New(variant.AirTemperatureReduction(), cfg.ChartCacheSize, logger, metrics)
	srv := httpadapter.NewServer(cfg.HTTPAddr, p, dash, logger)

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}
