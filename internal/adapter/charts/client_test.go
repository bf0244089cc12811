package charts

import (
	"bytes"
	"context"
	"image/color"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/couchcryptid/mixradar/internal/domain"
	"github.com/couchcryptid/mixradar/internal/observability"
	"github.com/couchcryptid/mixradar/internal/raster"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var chartColor = domain.RGB(0x5e, 0xa7, 0xdc)

func testClient(baseURL string, slots int) *Client {
	return NewClient(baseURL, 5*time.Second, slots,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		observability.NewMetricsForTesting())
}

func pngBytes(t *testing.T, c color.NRGBA) []byte {
	t.Helper()
	g := domain.NewGrid(2, 2)
	g.Fill(c)
	var buf bytes.Buffer
	require.NoError(t, raster.Encode(&buf, g.Image(), raster.FormatPNG))
	return buf.Bytes()
}

func dirNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "simradar_00000.png", FileName(KindSimradar, 0))
	assert.Equal(t, "pcptype_00300.png", FileName(KindPcptype, 3))
	assert.Equal(t, "simradar_04800.png", FileName(KindSimradar, 48))
}

func TestClient_FetchAll_ShiftsTypeCharts(t *testing.T) {
	body := pngBytes(t, chartColor)
	var (
		mu       sync.Mutex
		requests []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requests = append(requests, r.URL.Path)
		mu.Unlock()
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	simDir, typeDir := t.TempDir(), t.TempDir()
	c := testClient(srv.URL, 3)
	require.NoError(t, c.FetchAll(context.Background(), simDir, typeDir))

	assert.Equal(t, []string{
		"/simradar_00000.png",
		"/simradar_00100.png",
		"/pcptype_00100.png",
		"/simradar_00200.png",
		"/pcptype_00200.png",
	}, requests)

	assert.Equal(t, []string{"simradar_00000.png", "simradar_00100.png", "simradar_00200.png"}, dirNames(t, simDir))
	assert.Equal(t, []string{"pcptype_00000.png", "pcptype_00100.png"}, dirNames(t, typeDir))

	g, err := raster.DecodeFile(filepath.Join(typeDir, "pcptype_00000.png"))
	require.NoError(t, err)
	assert.Equal(t, chartColor, g.At(1, 1))

	assert.InDelta(t, 3.0, testutil.ToFloat64(c.metrics.ChartsFetched.WithLabelValues(KindSimradar, "success")), 0)
	assert.InDelta(t, 2.0, testutil.ToFloat64(c.metrics.ChartsFetched.WithLabelValues(KindPcptype, "success")), 0)
}

func TestClient_FetchAll_ContinuesAfterFailure(t *testing.T) {
	body := pngBytes(t, chartColor)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/simradar_00100.png":
			http.Error(w, "not published", http.StatusNotFound)
		case strings.HasPrefix(r.URL.Path, "/pcptype_002"):
			_, _ = w.Write([]byte("not an image"))
		default:
			_, _ = w.Write(body)
		}
	}))
	defer srv.Close()

	simDir, typeDir := t.TempDir(), t.TempDir()
	c := testClient(srv.URL, 3)
	err := c.FetchAll(context.Background(), simDir, typeDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "simradar_00100.png")
	assert.Contains(t, err.Error(), "status 404")
	assert.Contains(t, err.Error(), "pcptype_00200.png")

	assert.Equal(t, []string{"simradar_00000.png", "simradar_00200.png"}, dirNames(t, simDir))
	assert.Equal(t, []string{"pcptype_00000.png"}, dirNames(t, typeDir))
	assert.InDelta(t, 1.0, testutil.ToFloat64(c.metrics.ChartsFetched.WithLabelValues(KindSimradar, "error")), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(c.metrics.ChartsFetched.WithLabelValues(KindPcptype, "error")), 0)
}

func TestClient_FetchAll_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Error("no request expected after cancellation")
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := testClient(srv.URL, 5).FetchAll(ctx, t.TempDir(), t.TempDir())
	require.ErrorIs(t, err, context.Canceled)
}
