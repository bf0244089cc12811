package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/couchcryptid/mixradar/internal/adapter/httpadapter"
	"github.com/couchcryptid/mixradar/internal/adapter/kafka"
	"github.com/couchcryptid/mixradar/internal/config"
	"github.com/couchcryptid/mixradar/internal/domain"
	"github.com/couchcryptid/mixradar/internal/observability"
	"github.com/couchcryptid/mixradar/internal/pipeline"
	"github.com/couchcryptid/mixradar/internal/raster"
)

// runMerge pairs the charts of typeDir and intensityDir by listing order and
// writes the merged charts to outDir.
func runMerge(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics, args []string, stdout io.Writer) error {
	if len(args) != 3 {
		return errUsage
	}
	typeDir, intensityDir, outDir := args[0], args[1], args[2]

	cal, err := loadCalibration(cfg)
	if err != nil {
		return err
	}

	typeFiles, err := raster.ListDir(typeDir)
	if err != nil {
		return fmt.Errorf("list type charts: %w", err)
	}
	intensityFiles, err := raster.ListDir(intensityDir)
	if err != nil {
		return fmt.Errorf("list intensity charts: %w", err)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	observers := pipeline.Observers{consoleObserver(stdout)}

	if cfg.KafkaEnabled {
		notifier := kafka.NewNotifier(cfg, logger)
		defer func() {
			if err := notifier.Close(); err != nil {
				logger.Error("kafka notifier close error", "error", err)
			}
		}()
		observers = append(observers, notifier)
		logger.Info("progress notifications enabled", "topic", cfg.KafkaTopic, "run_id", notifier.RunID())
	}

	var (
		batch *pipeline.Batch
		srv   *httpadapter.Server
	)
	if cfg.HTTPAddr != "" {
		srv = httpadapter.NewServer(cfg.HTTPAddr, readyFunc(func(ctx context.Context) error {
			return batch.CheckReadiness(ctx)
		}), logger)
		observers = append(observers, srv)
	}

	output := pipeline.Output{Dir: outDir, Prefix: cfg.OutputPrefix, Format: cfg.OutputFormat}
	merger := pipeline.NewMerger(cal.Palettes, cal.Blender, output, logger, metrics)
	batch = pipeline.NewBatch(merger, observers, cfg.Workers, logger, metrics)

	shutdown := startServer(cfg, srv, logger)
	defer shutdown()

	return batch.ProcessAll(ctx, intensityFiles, typeFiles)
}

// consoleObserver prints dispatch and completion messages with the running
// percentage.
func consoleObserver(w io.Writer) pipeline.ObserverFunc {
	return func(_ context.Context, p domain.Progress) {
		switch p.Kind {
		case domain.ProgressDispatched, domain.ProgressCompleted:
			fmt.Fprintf(w, "%s   [%v%%]\n", p.Message, p.Percent)
		}
	}
}
