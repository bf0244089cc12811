package charts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/couchcryptid/mixradar/internal/observability"
	"github.com/couchcryptid/mixradar/internal/raster"
)

// Chart kinds published by the model run.
const (
	KindSimradar = "simradar"
	KindPcptype  = "pcptype"
)

// FileName returns the published chart name for a kind and time slot,
// e.g. simradar_00300.png for slot 3.
func FileName(kind string, slot int) string {
	return fmt.Sprintf("%s_0%02d00.png", kind, slot)
}

// Client downloads the simulated radar and precipitation type charts for
// every forecast slot.
type Client struct {
	httpClient *http.Client
	baseURL    string
	slots      int
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates a chart download client.
func NewClient(baseURL string, timeout time.Duration, slots int, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		slots:   slots,
		logger:  logger,
		metrics: metrics,
	}
}

// FetchAll downloads every slot into simradarDir and pcptypeDir. The type
// chart published for slot i is stored under slot i-1, so slot 0 has no
// remote pcptype counterpart. A failed download is logged and skipped; the
// joined error of all failures is returned once every slot was attempted.
func (c *Client) FetchAll(ctx context.Context, simradarDir, pcptypeDir string) error {
	var errs []error
	for i := range c.slots {
		if err := ctx.Err(); err != nil {
			return errors.Join(append(errs, err)...)
		}

		if err := c.fetch(ctx, KindSimradar, FileName(KindSimradar, i), filepath.Join(simradarDir, FileName(KindSimradar, i))); err != nil {
			errs = append(errs, err)
		}
		if i > 0 {
			if err := c.fetch(ctx, KindPcptype, FileName(KindPcptype, i), filepath.Join(pcptypeDir, FileName(KindPcptype, i-1))); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (c *Client) fetch(ctx context.Context, kind, name, dest string) error {
	start := time.Now()
	err := c.download(ctx, c.baseURL+"/"+name, dest)
	c.metrics.ChartFetchDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		c.metrics.ChartsFetched.WithLabelValues(kind, "error").Inc()
		c.logger.Warn("chart download failed", "kind", kind, "chart", name, "error", err)
		return fmt.Errorf("fetch %s: %w", name, err)
	}
	c.metrics.ChartsFetched.WithLabelValues(kind, "success").Inc()
	c.logger.Info("chart saved", "kind", kind, "chart", name, "path", dest)
	return nil
}

func (c *Client) download(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("chart request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("chart server error: status %d: %s", resp.StatusCode, body)
	}

	grid, err := raster.Decode(resp.Body)
	if err != nil {
		return err
	}
	return raster.WriteFile(dest, grid.Image(), raster.FormatPNG)
}
