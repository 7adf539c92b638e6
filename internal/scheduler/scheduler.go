package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"k8s.io/utils/clock"

	"github.com/aniketwaliyan/dwh-etl/internal/pipeline"
)

// AfterRunFunc observes every scheduled run.
type AfterRunFunc func(ctx context.Context, name string, res pipeline.Result, err error)

type entry struct {
	runner   pipeline.Runner
	spec     string
	schedule cron.Schedule
}

// Scheduler triggers pipelines on standard five-field cron schedules. A
// failed run is logged and the pipeline waits for its next slot.
type Scheduler struct {
	clock   clock.Clock
	log     *zap.Logger
	entries []entry

	// AfterRun, when set, is called after each run.
	AfterRun AfterRunFunc
}

func New(clk clock.Clock, log *zap.Logger) *Scheduler {
	if clk == nil {
		clk = clock.RealClock{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{clock: clk, log: log}
}

// Add registers runner under spec.
func (s *Scheduler) Add(runner pipeline.Runner, spec string) error {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return fmt.Errorf("schedule %s: %w", runner.Name(), err)
	}
	s.entries = append(s.entries, entry{runner: runner, spec: spec, schedule: schedule})
	return nil
}

// Run blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	if len(s.entries) == 0 {
		return errors.New("no pipelines scheduled")
	}
	eg, ctx := errgroup.WithContext(ctx)
	for _, e := range s.entries {
		eg.Go(func() error { return s.loop(ctx, e) })
	}
	return eg.Wait()
}

func (s *Scheduler) loop(ctx context.Context, e entry) error {
	log := s.log.With(zap.String("pipeline", e.runner.Name()), zap.String("schedule", e.spec))
	last := s.clock.Now()
	for {
		next := e.schedule.Next(last)
		log.Info("next run scheduled", zap.Time("at", next))
		if err := waitUntil(ctx, s.clock, next); err != nil {
			return nil
		}

		res, err := e.runner.Run(ctx)
		if errors.Is(err, pipeline.ErrRunInProgress) {
			log.Warn("skipping slot, previous run still in progress")
		} else if err != nil {
			log.Error("scheduled run failed", zap.Error(err))
		}
		if s.AfterRun != nil {
			s.AfterRun(ctx, e.runner.Name(), res, err)
		}
		last = s.clock.Now()
	}
}

func waitUntil(ctx context.Context, clk clock.Clock, until time.Time) error {
	d := until.Sub(clk.Now())
	if d <= 0 {
		return ctx.Err()
	}

	t := clk.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C():
		return nil
	}
}
