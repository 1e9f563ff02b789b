// Package sampler runs one sampling pass end to end: collect, parse, compute
// against the previous sample, and print.
package sampler

import (
	"context"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/HerbHall/netsampler/internal/collect"
	"github.com/HerbHall/netsampler/internal/delta"
	"github.com/HerbHall/netsampler/internal/failure"
	"github.com/HerbHall/netsampler/internal/output"
	"github.com/HerbHall/netsampler/internal/parser"
	"github.com/HerbHall/netsampler/internal/telemetry"
)

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the real Sleeper.
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Sampler wires the pipeline stages together.
type Sampler struct {
	runner    collect.Runner
	parser    *parser.Parser
	engine    *delta.Engine
	formatter *output.Formatter
	out       io.Writer
	logger    *zap.Logger
	metrics   *telemetry.Metrics
	now       func() time.Time
	passes    int
}

// Option configures a Sampler.
type Option func(*Sampler)

// WithTelemetry records self-metrics for every pass.
func WithTelemetry(m *telemetry.Metrics) Option {
	return func(s *Sampler) { s.metrics = m }
}

// WithClock overrides the time source used for pass timing.
func WithClock(now func() time.Time) Option {
	return func(s *Sampler) { s.now = now }
}

// New creates a sampler writing metric lines to out.
func New(runner collect.Runner, p *parser.Parser, e *delta.Engine, f *output.Formatter, out io.Writer, logger *zap.Logger, opts ...Option) *Sampler {
	s := &Sampler{
		runner:    runner,
		parser:    p,
		engine:    e,
		formatter: f,
		out:       out,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes a single pass. On bootstrap nothing is printed and the
// result's RerunAfter tells the caller when to run again.
func (s *Sampler) Run(ctx context.Context) (delta.Result, error) {
	s.passes++
	log := s.logger.With(zap.Int("pass", s.passes))
	started := s.now()

	raw, err := s.runner.Run(ctx)
	if err != nil {
		return delta.Result{}, err
	}

	sample, stats := s.parser.Parse(raw)
	log.Debug("parsed statistics",
		zap.Int("lines", stats.Lines),
		zap.Int("rows", stats.Rows),
		zap.Int("skipped", stats.Skipped),
		zap.Int("inactive", stats.Inactive),
		zap.Int("records", len(sample)),
	)

	res, err := s.engine.Process(ctx, sample)
	if err != nil {
		return delta.Result{}, err
	}

	lines := 0
	if res.State == delta.Steady {
		lines, err = s.formatter.Write(s.out, res.Outputs)
		if err != nil {
			return res, failure.New(failure.Unclassified, "write output", err)
		}
	}

	finished := s.now()
	log.Debug("pass complete",
		zap.Stringer("state", res.State),
		zap.Int("lines", lines),
		zap.Duration("elapsed", finished.Sub(started)),
	)

	if s.metrics != nil {
		s.metrics.RowsParsed.Set(float64(stats.Rows))
		s.metrics.RowsSkipped.WithLabelValues("malformed").Set(float64(stats.Skipped))
		s.metrics.RowsSkipped.WithLabelValues("inactive").Set(float64(stats.Inactive))
		s.metrics.Records.Set(float64(len(sample)))
		s.metrics.LinesEmitted.Set(float64(lines))
		s.metrics.CounterResets.Set(float64(res.Counts.Resets))
		s.metrics.Unmatched.Set(float64(res.Counts.Unmatched))
		s.metrics.ObserveRun(res.State.String(), started, finished)
	}
	return res, nil
}

// RunWithBootstrap runs a pass and, if it was a bootstrap, waits the
// requested delay and runs exactly once more. A second bootstrap is returned
// as is; it does not trigger a third pass.
func (s *Sampler) RunWithBootstrap(ctx context.Context, sleep Sleeper) (delta.Result, error) {
	res, err := s.Run(ctx)
	if err != nil || res.State != delta.Bootstrap {
		return res, err
	}

	s.logger.Info("bootstrap pass stored baseline, re-running",
		zap.Duration("after", res.RerunAfter),
	)
	if err := sleep(ctx, res.RerunAfter); err != nil {
		return res, err
	}

	res, err = s.Run(ctx)
	if err == nil && res.State == delta.Bootstrap {
		s.logger.Warn("re-run found no previous sample; snapshot may not be persisting")
	}
	return res, err
}
