package suite

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-logr/logr"
	"github.com/gobwas/glob"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/gotrs-io/kanban-e2e/internal/browser"
	"github.com/gotrs-io/kanban-e2e/internal/fixture"
	"github.com/gotrs-io/kanban-e2e/internal/session"
)

// DefaultTimeout is the per-scenario ceiling when none is configured.
const DefaultTimeout = 30 * time.Second

// ErrSkipped is recorded for scenarios whose stage did not start because a
// stage it needs failed.
var ErrSkipped = errors.New("skipped: a stage this one needs failed")

// Options configure a Runner.
type Options struct {
	// Workers bounds how many scenarios run at once. Defaults to GOMAXPROCS.
	Workers int
	// Retries is how many extra attempts a failing scenario gets.
	Retries int
	// RetryDelay is the pause between attempts.
	RetryDelay time.Duration
	// Timeout is the ceiling for a single attempt.
	Timeout       time.Duration
	ExpectTimeout time.Duration
	// Filter is a glob over scenario names; empty runs everything.
	Filter string
	// ArtifactsDir receives screenshots and traces. Empty disables both.
	ArtifactsDir string
	Metrics      *Metrics
	Logger       logr.Logger
	// OnResult is called as each scenario finishes. It may be called
	// concurrently.
	OnResult func(Result)
}

// Opener opens the fixture for one scenario attempt.
type Opener func(ctx context.Context, opts fixture.Options) (*fixture.Fixture, error)

// Runner executes a stage graph against a browser pool.
type Runner struct {
	open   Opener
	opts   Options
	filter glob.Glob
	logger logr.Logger
}

// New returns a runner opening its fixtures from pool.
func New(pool *browser.Pool, opts Options) (*Runner, error) {
	return NewWithOpener(func(ctx context.Context, fopts fixture.Options) (*fixture.Fixture, error) {
		return fixture.Open(ctx, pool, fopts)
	}, opts)
}

// NewWithOpener returns a runner using open for every scenario attempt.
func NewWithOpener(open Opener, opts Options) (*Runner, error) {
	if opts.Workers < 1 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.RetryDelay < 0 {
		opts.RetryDelay = 0
	}
	r := &Runner{open: open, opts: opts, logger: opts.Logger}
	if opts.Filter != "" {
		g, err := glob.Compile(opts.Filter)
		if err != nil {
			return nil, fmt.Errorf("invalid filter %q: %w", opts.Filter, err)
		}
		r.filter = g
	}
	return r, nil
}

// Selected reports whether the runner's filter admits a scenario name.
func (r *Runner) Selected(name string) bool {
	return r.filter == nil || r.filter.Match(name)
}

type stageState struct {
	passed   bool
	snapshot *session.Snapshot
}

// Run executes g level by level. Within a level every selected scenario of
// every stage runs concurrently, bounded by Workers. A stage whose needs did
// not all pass is skipped. Run only returns an error when ctx ends; failed
// scenarios are reported in the Report.
func (r *Runner) Run(ctx context.Context, g *Graph) (*Report, error) {
	report := &Report{RunID: uuid.NewString(), Started: time.Now()}
	logger := r.logger.WithValues("run", report.RunID)
	logger.Info("starting run", "stages", len(g.stages), "scenarios", g.Len(), "workers", r.opts.Workers, "retries", r.opts.Retries)

	states := make(map[string]*stageState, len(g.stages))
	for _, level := range g.levels {
		results := make([][]Result, len(level))

		eg := new(errgroup.Group)
		eg.SetLimit(r.opts.Workers)
		var mu sync.Mutex

		for li, si := range level {
			stage := g.stages[si]
			state := &stageState{passed: true}
			states[stage.Name] = state

			var snapshot *session.Snapshot
			blocked := false
			for _, need := range stage.Needs {
				ns := states[need]
				if !ns.passed {
					blocked = true
				}
				if ns.snapshot != nil {
					snapshot = ns.snapshot
				}
			}

			if blocked {
				state.passed = false
				for _, sc := range stage.Scenarios {
					if !r.Selected(sc.Name) {
						continue
					}
					res := Result{Stage: stage.Name, Scenario: sc.Name, Status: StatusSkipped, Err: ErrSkipped}
					results[li] = append(results[li], res)
					r.record(res)
				}
				if stage.Setup != nil {
					res := Result{Stage: stage.Name, Scenario: stage.Name, Status: StatusSkipped, Err: ErrSkipped}
					results[li] = append(results[li], res)
					r.record(res)
				}
				logger.Info("skipping stage", "stage", stage.Name)
				continue
			}

			if stage.Setup != nil {
				eg.Go(func() error {
					res, snap := r.runSetup(ctx, logger, stage)
					mu.Lock()
					results[li] = append(results[li], res)
					if res.Status != StatusPassed {
						state.passed = false
					}
					state.snapshot = snap
					mu.Unlock()
					r.record(res)
					return nil
				})
				continue
			}

			var selected []Scenario
			for _, sc := range stage.Scenarios {
				if r.Selected(sc.Name) {
					selected = append(selected, sc)
				}
			}
			results[li] = make([]Result, len(selected))
			for i, sc := range selected {
				eg.Go(func() error {
					res := r.runScenario(ctx, logger, stage, sc, snapshot)
					mu.Lock()
					results[li][i] = res
					if res.Status != StatusPassed {
						state.passed = false
					}
					mu.Unlock()
					r.record(res)
					return nil
				})
			}
		}
		_ = eg.Wait()

		for _, rs := range results {
			report.Results = append(report.Results, rs...)
		}
		if err := ctx.Err(); err != nil {
			report.Finished = time.Now()
			return report, fmt.Errorf("run interrupted: %w", err)
		}
	}

	report.Finished = time.Now()
	logger.Info("finished run",
		"passed", report.Count(StatusPassed),
		"failed", report.Count(StatusFailed),
		"skipped", report.Count(StatusSkipped),
		"duration", report.Duration().Round(time.Millisecond))
	return report, nil
}

func (r *Runner) record(res Result) {
	if r.opts.Metrics != nil {
		r.opts.Metrics.observe(res)
	}
	if r.opts.OnResult != nil {
		r.opts.OnResult(res)
	}
}

// runSetup runs a setup stage once. Setup is never retried: a broken login
// should stop the run, not be masked.
func (r *Runner) runSetup(ctx context.Context, logger logr.Logger, stage Stage) (Result, *session.Snapshot) {
	start := time.Now()
	res := Result{Stage: stage.Name, Scenario: stage.Name, Attempts: 1}

	snap, err := stage.Setup(ctx)
	res.Duration = time.Since(start)
	if err != nil {
		res.Status = StatusFailed
		res.Err = err
		logger.Error(err, "setup failed", "stage", stage.Name)
		return res, nil
	}
	res.Status = StatusPassed
	logger.V(1).Info("setup passed", "stage", stage.Name, "snapshot", snap.Path)
	return res, &snap
}

// RunScenario runs sc outside a graph with the runner's retry, timeout and
// artifact policy. snapshot is restored when stage is authenticated.
func (r *Runner) RunScenario(ctx context.Context, stage Stage, sc Scenario, snapshot *session.Snapshot) Result {
	res := r.runScenario(ctx, r.logger, stage, sc, snapshot)
	r.record(res)
	return res
}

// runScenario runs sc until an attempt passes or the retries run out.
func (r *Runner) runScenario(ctx context.Context, logger logr.Logger, stage Stage, sc Scenario, snapshot *session.Snapshot) Result {
	logger = logger.WithValues("stage", stage.Name, "scenario", sc.Name)
	start := time.Now()
	res := Result{Stage: stage.Name, Scenario: sc.Name}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(r.opts.RetryDelay), uint64(r.opts.Retries)),
		ctx,
	)
	err := backoff.Retry(func() error {
		res.Attempts++
		err := r.attempt(ctx, logger, stage, sc, snapshot, &res)
		if err != nil && ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		if err != nil && res.Attempts <= r.opts.Retries {
			logger.Info("attempt failed, retrying", "attempt", res.Attempts, "err", err.Error())
		}
		return err
	}, policy)

	res.Duration = time.Since(start)
	if err != nil {
		res.Status = StatusFailed
		res.Err = err
		logger.Error(err, "scenario failed", "attempts", res.Attempts)
		return res
	}
	res.Status = StatusPassed
	logger.V(1).Info("scenario passed", "attempts", res.Attempts, "duration", res.Duration.Round(time.Millisecond))
	return res
}

// attempt runs sc once in a fresh fixture. Retries record a trace. When the
// attempt outlives its timeout the fixture's context is closed, which fails
// whatever browser call the scenario is blocked in.
func (r *Runner) attempt(ctx context.Context, logger logr.Logger, stage Stage, sc Scenario, snapshot *session.Snapshot, res *Result) error {
	actx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	var fopts fixture.Options
	fopts.ExpectTimeout = r.opts.ExpectTimeout
	fopts.Trace = res.Attempts > 1 && r.opts.ArtifactsDir != ""
	if stage.Authenticated {
		fopts.Snapshot = snapshot
	}

	f, err := r.open(actx, fopts)
	if err != nil {
		return err
	}
	stop := context.AfterFunc(actx, f.Abort)

	err = sc.Run(actx, f)
	aborted := !stop()
	if aborted {
		if err == nil {
			err = actx.Err()
		} else {
			err = fmt.Errorf("%w: %v", actx.Err(), err)
		}
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("scenario exceeded %s: %w", r.opts.Timeout, err)
		}
	}

	if err != nil && !aborted && r.opts.ArtifactsDir != "" {
		path := browser.ScreenshotPath(r.opts.ArtifactsDir, sc.Name, res.Attempts)
		if serr := f.Screenshot(path); serr != nil {
			logger.Error(serr, "capturing screenshot")
		} else {
			res.Screenshots = append(res.Screenshots, path)
		}
	}

	var tracePath string
	if fopts.Trace {
		tracePath = browser.TracePath(r.opts.ArtifactsDir, sc.Name)
	}
	if cerr := f.Close(tracePath); cerr != nil {
		logger.Error(cerr, "closing fixture")
	} else if tracePath != "" && !aborted {
		res.Trace = tracePath
	}
	return err
}
