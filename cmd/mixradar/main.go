// Command mixradar combines simulated radar charts with precipitation type
// charts into one colourised chart per forecast slot.
//
// Usage:
//
//	mixradar <typeDir> <intensityDir> <outDir>
//	mixradar update [simradarDir] [pcptypeDir]
//	mixradar comparecolors <colorName> <index>
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/mixradar/internal/adapter/httpadapter"
	"github.com/couchcryptid/mixradar/internal/calibration"
	"github.com/couchcryptid/mixradar/internal/config"
	"github.com/couchcryptid/mixradar/internal/observability"
)

const usage = `usage:
  mixradar <typeDir> <intensityDir> <outDir>
  mixradar update [simradarDir] [pcptypeDir]
  mixradar comparecolors <colorName> <index>`

var errUsage = errors.New(usage)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg, logger, os.Args[1:], os.Stdout)
	stop()

	if errors.Is(err, errUsage) {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		logger.Error("mixradar failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	switch args[0] {
	case "comparecolors":
		cal, err := loadCalibration(cfg)
		if err != nil {
			return err
		}
		return compareColors(stdout, cal.Blender, args[1:])
	case "update":
		return runUpdate(ctx, cfg, logger, observability.NewMetrics(), args[1:])
	default:
		return runMerge(ctx, cfg, logger, observability.NewMetrics(), args, stdout)
	}
}

func loadCalibration(cfg *config.Config) (*calibration.Calibration, error) {
	table, err := calibration.Load(cfg.CalibrationFile)
	if err != nil {
		return nil, err
	}
	return table.Build()
}

// readyFunc adapts a function to the readiness checker interface.
type readyFunc func(ctx context.Context) error

func (f readyFunc) CheckReadiness(ctx context.Context) error { return f(ctx) }

// startServer serves health and metrics for the duration of a run when
// HTTP_ADDR is set. The returned function drains it.
func startServer(cfg *config.Config, srv *httpadapter.Server, logger *slog.Logger) func() {
	if srv == nil {
		return func() {}
	}

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
	}
}
