// Package delta converts cumulative interface counters into per-interval
// values by comparing the current sample with the one saved by the previous
// run.
//
// A run with no saved sample is a bootstrap: the current sample is saved,
// nothing is reported, and the caller is asked to run again after the
// configured interval. Every other run is steady: values are computed and the
// saved sample is replaced.
package delta

import (
	"context"
	"math"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/HerbHall/netsampler/internal/catalog"
	"github.com/HerbHall/netsampler/internal/store"
	"github.com/HerbHall/netsampler/pkg/models"
)

// DefaultInterval is the wait between a bootstrap run and its re-run.
const DefaultInterval = time.Second

// unmatchedValue is reported for readings with no baseline.
const unmatchedValue = "0"

// State identifies which branch a run took.
type State int

const (
	// Bootstrap means no previous sample existed.
	Bootstrap State = iota + 1
	// Steady means values were computed against a previous sample.
	Steady
)

func (s State) String() string {
	switch s {
	case Bootstrap:
		return "bootstrap"
	case Steady:
		return "steady"
	default:
		return "unknown"
	}
}

// Counts summarizes how readings were matched in a steady run.
type Counts struct {
	Matched   int
	Unmatched int
	Resets    int
}

// Result is the outcome of one Process call.
type Result struct {
	State   State
	Outputs []models.OutputRecord
	Counts  Counts

	// RerunAfter is set on bootstrap: the caller should run the whole
	// pipeline once more after this delay.
	RerunAfter time.Duration
}

// Engine computes output records and maintains the saved sample.
type Engine struct {
	store    store.SnapshotStore
	catalog  *catalog.Catalog
	interval time.Duration
	logger   *zap.Logger
}

// New creates an engine. A non-positive interval falls back to
// DefaultInterval.
func New(st store.SnapshotStore, cat *catalog.Catalog, interval time.Duration, logger *zap.Logger) *Engine {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Engine{
		store:    st,
		catalog:  cat,
		interval: interval,
		logger:   logger,
	}
}

// Process runs one bootstrap or steady step for current. The current sample
// is always saved, replacing any previous one; a save failure is returned and
// no outputs are produced.
func (e *Engine) Process(ctx context.Context, current models.Sample) (Result, error) {
	previous, ok := e.store.Load(ctx)
	if !ok {
		if err := e.store.Save(ctx, current); err != nil {
			return Result{}, err
		}
		e.logger.Info("no previous sample, scheduling re-run",
			zap.Int("records", len(current)),
			zap.Duration("rerun_after", e.interval),
		)
		return Result{State: Bootstrap, RerunAfter: e.interval}, nil
	}

	outputs, counts := e.compute(previous, current)

	if err := e.store.Save(ctx, current); err != nil {
		return Result{}, err
	}

	e.logger.Debug("computed interval values",
		zap.Int("records", len(outputs)),
		zap.Int("matched", counts.Matched),
		zap.Int("unmatched", counts.Unmatched),
		zap.Int("resets", counts.Resets),
	)
	return Result{State: Steady, Outputs: outputs, Counts: counts}, nil
}

func (e *Engine) compute(previous, current models.Sample) ([]models.OutputRecord, Counts) {
	var counts Counts
	prevIdx := previous.Index()
	outputs := make([]models.OutputRecord, 0, len(current))

	for _, cur := range current {
		kind := catalog.RateKind(0)
		if def, ok := e.catalog.Lookup(cur.Metric); ok {
			kind = def.Kind
		}

		prev, matched := prevIdx[cur.Key()]
		if matched {
			counts.Matched++
			if kind != catalog.Instantaneous && isReset(prev, cur) {
				counts.Resets++
			}
		} else {
			counts.Unmatched++
		}

		var value string
		if matched {
			value = Compute(kind, &prev, cur)
		} else {
			value = Compute(kind, nil, cur)
		}

		outputs = append(outputs, models.OutputRecord{
			Metric:    cur.Metric,
			ID:        cur.ID,
			Timestamp: cur.Timestamp,
			Value:     value,
			Object:    cur.Object,
		})
	}
	return outputs, counts
}

// Compute returns the reported value for cur given its previous reading, or
// nil when there is none.
//
//   - Instantaneous readings are reported as read.
//   - Without a previous reading the value is 0.
//   - A reading lower than the previous one means the counter restarted;
//     the current reading is reported.
//   - Throughput reports the increase per second between the two timestamps.
//   - PlainDelta reports the increase.
//
// Computed values carry exactly two decimals.
func Compute(kind catalog.RateKind, prev *models.Record, cur models.Record) string {
	if kind == catalog.Instantaneous {
		return cur.Value
	}
	if prev == nil {
		return unmatchedValue
	}

	p, okP := parseValue(prev.Value)
	c, okC := parseValue(cur.Value)
	if !okP || !okC {
		return unmatchedValue
	}

	if c < p {
		return format(c)
	}

	switch kind {
	case catalog.Throughput:
		elapsed := cur.Timestamp.Sub(prev.Timestamp).Seconds()
		if elapsed <= 0 {
			return format(0)
		}
		return format((c - p) / elapsed)
	case catalog.PlainDelta:
		return format(c - p)
	default:
		return unmatchedValue
	}
}

func isReset(prev, cur models.Record) bool {
	p, okP := parseValue(prev.Value)
	c, okC := parseValue(cur.Value)
	return okP && okC && c < p
}

func parseValue(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// format renders v with two decimals, rounding halves away from zero
// (0.125 -> "0.13").
func format(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', 2, 64)
}
