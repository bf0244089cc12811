package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/couchcryptid/mixradar/internal/domain"
	"github.com/couchcryptid/mixradar/internal/observability"
)

// PairMerger merges one chart pair and returns the output path.
type PairMerger interface {
	Merge(ctx context.Context, pair domain.Pair) (string, error)
}

// ProgressObserver receives batch notifications. Calls are serialized.
type ProgressObserver interface {
	OnProgress(ctx context.Context, p domain.Progress)
}

// ObserverFunc adapts a function to ProgressObserver.
type ObserverFunc func(ctx context.Context, p domain.Progress)

func (f ObserverFunc) OnProgress(ctx context.Context, p domain.Progress) { f(ctx, p) }

// Observers fans a notification out to every observer in order.
type Observers []ProgressObserver

func (o Observers) OnProgress(ctx context.Context, p domain.Progress) {
	for _, obs := range o {
		obs.OnProgress(ctx, p)
	}
}

// Batch merges positionally paired chart listings on a bounded worker pool.
type Batch struct {
	merger   PairMerger
	observer ProgressObserver
	workers  int
	logger   *slog.Logger
	metrics  *observability.Metrics

	emitMu  sync.Mutex
	percent float64 // share of the latest dispatched event; guarded by emitMu
	started atomic.Bool
}

// job is a pair handed to a worker. The worker starts merging only after
// announced is closed, so a pair's outcome is never reported before its
// dispatch.
type job struct {
	pair      domain.Pair
	announced <-chan struct{}
}

// NewBatch creates a Batch. A nil observer discards progress.
func NewBatch(m PairMerger, observer ProgressObserver, workers int, logger *slog.Logger, metrics *observability.Metrics) *Batch {
	if workers < 1 {
		workers = 1
	}
	if observer == nil {
		observer = Observers(nil)
	}
	return &Batch{
		merger:   m,
		observer: observer,
		workers:  workers,
		logger:   logger,
		metrics:  metrics,
	}
}

// CheckReadiness returns nil once a batch has started dispatching.
func (b *Batch) CheckReadiness(_ context.Context) error {
	if !b.started.Load() {
		return errors.New("batch has not started yet")
	}
	return nil
}

// ProcessAll merges intensityFiles[i] with typeFiles[i] for every i, writing
// output index i. A dispatched notification follows each hand-off to a worker,
// in index order, and precedes that pair's merged or failed notification.
// Percentages never decrease; a completed notification at 100% follows the
// last merge.
// Failed pairs are reported and skipped. The returned error joins every
// PairError, ordered by index, or is the context error if the run was
// interrupted.
func (b *Batch) ProcessAll(ctx context.Context, intensityFiles, typeFiles []string) error {
	pairs, err := domain.PairFiles(intensityFiles, typeFiles)
	if err != nil {
		return err
	}

	b.started.Store(true)
	b.emitMu.Lock()
	b.percent = 0
	b.emitMu.Unlock()
	b.metrics.BatchRunning.Set(1)
	defer b.metrics.BatchRunning.Set(0)

	workers := min(b.workers, max(len(pairs), 1))
	b.logger.Info("batch started", "pairs", len(pairs), "workers", workers)

	var (
		wg       sync.WaitGroup
		errMu    sync.Mutex
		failures []*domain.PairError
	)
	jobs := make(chan job)

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				<-j.announced
				if perr := b.runPair(ctx, j.pair); perr != nil {
					errMu.Lock()
					failures = append(failures, perr)
					errMu.Unlock()
				}
			}
		}()
	}

	dispatched := 0
dispatch:
	for _, pair := range pairs {
		announced := make(chan struct{})
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- job{pair: pair, announced: announced}:
		}
		dispatched++
		b.metrics.PairsDispatched.Inc()
		b.emit(ctx, domain.DispatchedProgress(pair, len(pairs)))
		close(announced)
	}
	close(jobs)
	wg.Wait()

	sort.Slice(failures, func(i, j int) bool { return failures[i].Pair.Index < failures[j].Pair.Index })
	errs := make([]error, 0, len(failures)+1)
	for _, f := range failures {
		errs = append(errs, f)
	}

	if err := ctx.Err(); err != nil {
		b.logger.Warn("batch interrupted", "dispatched", dispatched, "pairs", len(pairs), "error", err)
		return errors.Join(append([]error{err}, errs...)...)
	}

	b.emit(ctx, domain.CompletedProgress(len(pairs)))
	b.logger.Info("batch complete", "pairs", len(pairs), "failed", len(failures))
	return errors.Join(errs...)
}

func (b *Batch) runPair(ctx context.Context, pair domain.Pair) *domain.PairError {
	out, err := b.merger.Merge(ctx, pair)
	if err != nil {
		b.logger.Error("merge failed",
			"pair_index", pair.Index,
			"intensity_file", pair.IntensityFile,
			"type_file", pair.TypeFile,
			"error", err,
		)
		b.emitOutcome(ctx, func(percent float64) domain.Progress {
			return domain.FailedProgress(pair, err, percent)
		})
		return &domain.PairError{Pair: pair, Err: err}
	}
	b.emitOutcome(ctx, func(percent float64) domain.Progress {
		return domain.MergedProgress(pair, out, percent)
	})
	return nil
}

func (b *Batch) emit(ctx context.Context, p domain.Progress) {
	b.emitMu.Lock()
	defer b.emitMu.Unlock()
	if p.Kind == domain.ProgressDispatched {
		b.percent = p.Percent
	}
	b.observer.OnProgress(ctx, p)
}

// emitOutcome reports a finished pair at the running dispatched share.
func (b *Batch) emitOutcome(ctx context.Context, build func(percent float64) domain.Progress) {
	b.emitMu.Lock()
	defer b.emitMu.Unlock()
	b.observer.OnProgress(ctx, build(b.percent))
}
