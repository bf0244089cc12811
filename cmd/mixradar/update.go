package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/couchcryptid/mixradar/internal/adapter/charts"
	"github.com/couchcryptid/mixradar/internal/adapter/httpadapter"
	"github.com/couchcryptid/mixradar/internal/config"
	"github.com/couchcryptid/mixradar/internal/observability"
)

// runUpdate downloads the latest charts into the simradar and pcptype
// directories, creating them if needed.
func runUpdate(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics, args []string) error {
	if len(args) > 2 {
		return errUsage
	}
	dirs := []string{"simradar", "pcptype"}
	copy(dirs, args)

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create chart directory: %w", err)
		}
	}

	var srv *httpadapter.Server
	if cfg.HTTPAddr != "" {
		srv = httpadapter.NewServer(cfg.HTTPAddr, readyFunc(func(context.Context) error { return nil }), logger)
	}
	shutdown := startServer(cfg, srv, logger)
	defer shutdown()

	logger.Info("fetching charts", "base_url", cfg.ChartBaseURL, "slots", cfg.ChartSlots)
	client := charts.NewClient(cfg.ChartBaseURL, cfg.ChartTimeout, cfg.ChartSlots, logger, metrics)
	return client.FetchAll(ctx, dirs[0], dirs[1])
}
