package domain

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrPairCountMismatch is returned when the two input lists differ in length.
var ErrPairCountMismatch = errors.New("intensity and type file counts differ")

// Pair is one timestep: the charts at position Index of both input listings.
type Pair struct {
	Index         int
	IntensityFile string
	TypeFile      string
}

// PairFiles pairs the two listings by position.
func PairFiles(intensityFiles, typeFiles []string) ([]Pair, error) {
	if len(intensityFiles) != len(typeFiles) {
		return nil, fmt.Errorf("%w: %d intensity, %d type",
			ErrPairCountMismatch, len(intensityFiles), len(typeFiles))
	}
	pairs := make([]Pair, len(intensityFiles))
	for i := range intensityFiles {
		pairs[i] = Pair{Index: i, IntensityFile: intensityFiles[i], TypeFile: typeFiles[i]}
	}
	return pairs, nil
}

// PairError records why one pair could not be merged.
type PairError struct {
	Pair Pair
	Err  error
}

func (e *PairError) Error() string {
	return fmt.Sprintf("pair %d (%s, %s): %v", e.Pair.Index, e.Pair.IntensityFile, e.Pair.TypeFile, e.Err)
}

func (e *PairError) Unwrap() error { return e.Err }

// ProgressKind distinguishes progress notifications.
type ProgressKind string

const (
	ProgressDispatched ProgressKind = "dispatched"
	ProgressMerged     ProgressKind = "merged"
	ProgressFailed     ProgressKind = "failed"
	ProgressCompleted  ProgressKind = "completed"
)

// Progress is an informational notification emitted while a batch runs.
type Progress struct {
	Kind      ProgressKind `json:"kind"`
	Index     int          `json:"index"`
	Message   string       `json:"message"`
	Percent   float64      `json:"percent"`
	Output    string       `json:"output,omitempty"`
	Error     string       `json:"error,omitempty"`
	EmittedAt time.Time    `json:"emitted_at"`
}

// DispatchedProgress reports that pair was handed to a worker. The percentage
// is the share of pairs dispatched before this one.
func DispatchedProgress(pair Pair, total int) Progress {
	now := clock.Now()
	return Progress{
		Kind:      ProgressDispatched,
		Index:     pair.Index,
		Message:   fmt.Sprintf("[%s]   Merging %s and %s...", stamp(now), pair.IntensityFile, pair.TypeFile),
		Percent:   percentOf(pair.Index, total),
		EmittedAt: now,
	}
}

// MergedProgress reports that pair was written to output. percent is the
// batch's running dispatched share, so outcomes never move progress backwards.
func MergedProgress(pair Pair, output string, percent float64) Progress {
	now := clock.Now()
	return Progress{
		Kind:      ProgressMerged,
		Index:     pair.Index,
		Message:   fmt.Sprintf("[%s]   Wrote %s", stamp(now), output),
		Percent:   percent,
		Output:    output,
		EmittedAt: now,
	}
}

// FailedProgress reports that pair could not be merged, at the running
// dispatched share.
func FailedProgress(pair Pair, err error, percent float64) Progress {
	now := clock.Now()
	return Progress{
		Kind:      ProgressFailed,
		Index:     pair.Index,
		Message:   fmt.Sprintf("[%s]   Failed to merge %s and %s: %v", stamp(now), pair.IntensityFile, pair.TypeFile, err),
		Percent:   percent,
		Error:     err.Error(),
		EmittedAt: now,
	}
}

// CompletedProgress is the final notification of a batch.
func CompletedProgress(total int) Progress {
	now := clock.Now()
	return Progress{
		Kind:      ProgressCompleted,
		Index:     total,
		Message:   fmt.Sprintf("[%s]   Merging complete", stamp(now)),
		Percent:   100,
		EmittedAt: now,
	}
}

func percentOf(n, total int) float64 {
	if total <= 0 {
		return 100
	}
	return math.Round(float64(n)/float64(total)*1000) / 10
}

func stamp(t time.Time) string {
	return t.Format(time.DateTime)
}
