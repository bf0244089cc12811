package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "mixradar"

// Metrics holds the Prometheus counters, histograms, and gauges for merge runs
// and chart downloads.
type Metrics struct {
	PairsDispatched prometheus.Counter
	PairsMerged     prometheus.Counter
	PairFailures    *prometheus.CounterVec // labels: reason={decode,dimensions,write}
	PixelsBlended   prometheus.Counter
	MergeDuration   prometheus.Histogram
	BatchRunning    prometheus.Gauge

	// Chart download metrics.
	ChartsFetched      *prometheus.CounterVec // labels: kind={simradar,pcptype}, outcome={success,error}
	ChartFetchDuration prometheus.Histogram
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.PairsDispatched,
		m.PairsMerged,
		m.PairFailures,
		m.PixelsBlended,
		m.MergeDuration,
		m.BatchRunning,
		m.ChartsFetched,
		m.ChartFetchDuration,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		PairsDispatched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pairs_dispatched_total",
			Help:      "Chart pairs handed to a merge worker.",
		}),
		PairsMerged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pairs_merged_total",
			Help:      "Chart pairs merged and written to output.",
		}),
		PairFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pair_failures_total",
			Help:      "Chart pairs that could not be merged, by reason.",
		}, []string{"reason"}),
		PixelsBlended: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pixels_blended_total",
			Help:      "Intensity pixels recoloured by precipitation type.",
		}),
		MergeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "merge_duration_seconds",
			Help:      "Duration of decoding, merging and writing one chart pair.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		BatchRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "batch_running",
			Help:      "1 while a merge batch is in progress, 0 otherwise.",
		}),
		ChartsFetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "charts_fetched_total",
			Help:      "Chart downloads by kind and outcome.",
		}, []string{"kind", "outcome"}),
		ChartFetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chart_fetch_duration_seconds",
			Help:      "Chart download duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}
}
