package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"k8s.io/utils/clock"

	"github.com/aniketwaliyan/dwh-etl/internal/fact"
	"github.com/aniketwaliyan/dwh-etl/internal/metrics"
	"github.com/aniketwaliyan/dwh-etl/internal/runlock"
	"github.com/aniketwaliyan/dwh-etl/internal/watermark"
)

// ErrRunInProgress is returned when another run of the same pipeline holds
// the run lock.
var ErrRunInProgress = errors.New("pipeline run already in progress")

// State is the lifecycle state of an Orchestrator.
type State int

const (
	Idle State = iota
	Running
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Options identify a pipeline and bound its runs.
type Options struct {
	// Name keys the run lock and labels logs and metrics.
	Name string
	// Description keys the run log.
	Description string
	// Timeout bounds watermark read, extraction and load. Zero disables it.
	Timeout time.Duration
	// StrictDates fails runs whose transform rejected a source value.
	StrictDates bool
}

// Deps are the collaborators shared by every pipeline.
type Deps struct {
	Store  watermark.Store
	Locker runlock.Locker
	Clock  clock.PassiveClock
	Log    *zap.Logger
}

// Result summarizes one run.
type Result struct {
	RunID  string
	Since  time.Time
	Groups int
	Rows   int
	Loaded int
	// Issues counts source values emitted as null after being rejected.
	Issues  int
	Status  string
	Elapsed time.Duration
}

// Orchestrator manages the execution of one pipeline
type Orchestrator[G any] struct {
	opts        Options
	extractor   Extractor[G]
	transformer Transformer[G]
	loader      Loader
	deps        Deps

	mu    sync.Mutex
	state State
}

// NewOrchestrator creates a new pipeline orchestrator
func NewOrchestrator[G any](opts Options, ext Extractor[G], trans Transformer[G], load Loader, deps Deps) *Orchestrator[G] {
	if deps.Clock == nil {
		deps.Clock = clock.RealClock{}
	}
	if deps.Locker == nil {
		deps.Locker = runlock.NewMemory()
	}
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	return &Orchestrator[G]{
		opts:        opts,
		extractor:   ext,
		transformer: trans,
		loader:      load,
		deps:        deps,
	}
}

func (o *Orchestrator[G]) Name() string { return o.opts.Name }

// State returns the state of the latest run.
func (o *Orchestrator[G]) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator[G]) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}

// Run executes one run: watermark read, extract, transform and load. The
// outcome is written to the run log and the run's error is returned.
func (o *Orchestrator[G]) Run(ctx context.Context) (Result, error) {
	res := Result{RunID: uuid.NewString()}
	log := o.deps.Log.With(zap.String("pipeline", o.opts.Name), zap.String("run_id", res.RunID))

	if err := o.deps.Locker.Acquire(ctx, o.opts.Name, res.RunID); err != nil {
		if errors.Is(err, runlock.ErrLocked) {
			return res, fmt.Errorf("%w: %s", ErrRunInProgress, o.opts.Name)
		}
		return res, fmt.Errorf("acquire run lock: %w", err)
	}
	defer func() {
		if err := o.deps.Locker.Release(context.WithoutCancel(ctx), o.opts.Name, res.RunID); err != nil {
			log.Error("failed to release run lock", zap.Error(err))
		}
	}()

	o.setState(Running)
	start := o.deps.Clock.Now()
	run := watermark.Run{RunID: res.RunID, Description: o.opts.Description, Start: start}
	if err := o.deps.Store.RecordRunStart(ctx, run); err != nil {
		log.Error("failed to record run start", zap.Error(err))
	}
	log.Info("run started")

	err := o.execute(ctx, log, &res)

	finish := o.deps.Clock.Now()
	res.Elapsed = finish.Sub(start)
	res.Status = watermark.StatusSuccessful
	if err != nil {
		res.Status = err.Error()
	}
	if rerr := o.deps.Store.RecordRunOutcome(context.WithoutCancel(ctx), run.Finished(finish, res.Status)); rerr != nil {
		log.Error("failed to record run outcome", zap.Error(rerr))
	}

	metrics.RunDuration.WithLabelValues(o.opts.Name).Observe(res.Elapsed.Seconds())
	if err != nil {
		o.setState(Failed)
		metrics.Runs.WithLabelValues(o.opts.Name, "failed").Inc()
		log.Error("run failed", zap.Duration("elapsed", res.Elapsed), zap.Error(err))
		return res, err
	}
	o.setState(Succeeded)
	metrics.Runs.WithLabelValues(o.opts.Name, "succeeded").Inc()
	metrics.LastSuccess.WithLabelValues(o.opts.Name).Set(float64(finish.Unix()))
	log.Info("run succeeded",
		zap.Int("groups", res.Groups),
		zap.Int("rows", res.Loaded),
		zap.Duration("elapsed", res.Elapsed))
	return res, nil
}

func (o *Orchestrator[G]) execute(ctx context.Context, log *zap.Logger, res *Result) error {
	if o.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.opts.Timeout)
		defer cancel()
	}

	since, err := o.deps.Store.LastSuccessfulRun(ctx, o.opts.Description)
	if err != nil {
		return fmt.Errorf("read watermark: %w", err)
	}
	res.Since = since
	log.Info("extracting", zap.Time("since", since))

	groups, err := o.extractor.Extract(ctx, since)
	if err != nil {
		return fmt.Errorf("extraction error: %w", err)
	}
	res.Groups = len(groups)
	metrics.GroupsExtracted.WithLabelValues(o.opts.Name).Add(float64(len(groups)))

	rows, err := o.transformer.Transform(groups)
	if err != nil {
		if !errors.Is(err, fact.ErrDataQuality) {
			return fmt.Errorf("transformation error: %w", err)
		}
		res.Issues = issueCount(err)
		metrics.DataQualityIssues.WithLabelValues(o.opts.Name).Add(float64(res.Issues))
		if o.opts.StrictDates {
			return fmt.Errorf("transformation error: %w", err)
		}
		log.Warn("source values rejected", zap.Int("issues", res.Issues), zap.Error(err))
	}
	res.Rows = len(rows)

	loaded, err := o.loader.Load(ctx, rows)
	if err != nil {
		return fmt.Errorf("loading error: %w", err)
	}
	res.Loaded = loaded
	return nil
}

func issueCount(err error) int {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return len(j.Unwrap())
	}
	return 1
}
