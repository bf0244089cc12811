package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/couchcryptid/mixradar/internal/domain"
	"github.com/couchcryptid/mixradar/internal/observability"
	"github.com/couchcryptid/mixradar/internal/raster"
)

// Output describes where merged charts are written.
type Output struct {
	Dir    string
	Prefix string
	Format raster.Format
}

// Path returns the output file for a pair index, e.g. out/mixradar_3.png.
func (o Output) Path(index int) string {
	format := o.Format
	if format == "" {
		format = raster.FormatPNG
	}
	return filepath.Join(o.Dir, fmt.Sprintf("%s_%d.%s", o.Prefix, index, format.Ext()))
}

// ChartMerger implements PairMerger by decoding both charts from disk,
// recolouring the intensity chart and publishing it to Output.
type ChartMerger struct {
	palettes *domain.PaletteTable
	blender  domain.Blender
	output   Output
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewMerger creates a ChartMerger.
func NewMerger(palettes *domain.PaletteTable, blender domain.Blender, output Output, logger *slog.Logger, metrics *observability.Metrics) *ChartMerger {
	return &ChartMerger{
		palettes: palettes,
		blender:  blender,
		output:   output,
		logger:   logger,
		metrics:  metrics,
	}
}

// Merge processes one pair and returns the written output path.
func (m *ChartMerger) Merge(ctx context.Context, pair domain.Pair) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	start := time.Now()

	intensity, err := raster.DecodeFile(pair.IntensityFile)
	if err != nil {
		m.metrics.PairFailures.WithLabelValues("decode").Inc()
		return "", fmt.Errorf("read intensity chart: %w", err)
	}
	types, err := raster.DecodeFile(pair.TypeFile)
	if err != nil {
		m.metrics.PairFailures.WithLabelValues("decode").Inc()
		return "", fmt.Errorf("read type chart: %w", err)
	}

	stats, err := domain.Merge(m.palettes, m.blender, intensity, types)
	if err != nil {
		reason := "merge"
		if errors.Is(err, domain.ErrDimensionMismatch) {
			reason = "dimensions"
		}
		m.metrics.PairFailures.WithLabelValues(reason).Inc()
		return "", err
	}

	path := m.output.Path(pair.Index)
	if err := raster.WriteFile(path, intensity.Image(), m.output.Format); err != nil {
		m.metrics.PairFailures.WithLabelValues("write").Inc()
		return "", err
	}

	m.metrics.PairsMerged.Inc()
	m.metrics.PixelsBlended.Add(float64(stats.Blended))
	m.metrics.MergeDuration.Observe(time.Since(start).Seconds())
	m.logger.Debug("pair merged",
		"pair_index", pair.Index,
		"output", path,
		"width", stats.Width,
		"height", stats.Height,
		"blended", stats.Blended,
	)
	return path, nil
}
