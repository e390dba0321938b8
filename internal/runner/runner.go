// Package runner fires tasks on cron schedules. The watch command uses it to
// run the suite repeatedly against a live board.
package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/robfig/cron/v3"
)

// parser accepts standard five-field expressions, an optional leading
// seconds field and descriptors such as @hourly or @every 30m.
var parser = cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ParseSchedule validates a schedule expression.
func ParseSchedule(spec string) (cron.Schedule, error) {
	s, err := parser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return s, nil
}

// Runner manages and executes scheduled tasks
type Runner struct {
	cron   *cron.Cron
	tasks  []Task
	logger logr.Logger
	wg     sync.WaitGroup
}

// New creates a runner for tasks. A task still running when its next
// tick comes is skipped for that tick.
func New(logger logr.Logger, tasks ...Task) *Runner {
	return &Runner{
		cron: cron.New(
			cron.WithParser(parser),
			cron.WithLogger(logger.V(2)),
			cron.WithChain(cron.SkipIfStillRunning(logger.V(1))),
		),
		tasks:  tasks,
		logger: logger,
	}
}

// Start schedules every task and blocks until ctx is done, then waits for
// running tasks to finish.
func (r *Runner) Start(ctx context.Context) error {
	for _, task := range r.tasks {
		r.logger.Info("registering task", "task", task.Name(), "schedule", task.Schedule())

		_, err := r.cron.AddFunc(task.Schedule(), func() {
			r.executeTask(ctx, task)
		})
		if err != nil {
			return fmt.Errorf("failed to schedule task %s: %w", task.Name(), err)
		}
	}

	r.cron.Start()
	r.logger.Info("task runner started", "tasks", len(r.tasks))

	<-ctx.Done()
	r.Stop()
	return ctx.Err()
}

// Next returns when each task is next due, keyed by task name. It is only
// meaningful after Start.
func (r *Runner) Next() map[string]time.Time {
	next := make(map[string]time.Time, len(r.tasks))
	for i, e := range r.cron.Entries() {
		if i < len(r.tasks) {
			next[r.tasks[i].Name()] = e.Next
		}
	}
	return next
}

// executeTask runs a single task with timeout and error handling
func (r *Runner) executeTask(ctx context.Context, task Task) {
	r.wg.Add(1)
	defer r.wg.Done()

	taskCtx := ctx
	if task.Timeout() > 0 {
		var cancel context.CancelFunc
		taskCtx, cancel = context.WithTimeout(ctx, task.Timeout())
		defer cancel()
	}

	logger := r.logger.WithValues("task", task.Name())
	logger.V(1).Info("executing task")

	start := time.Now()
	err := task.Run(taskCtx)
	duration := time.Since(start)

	if err != nil {
		logger.Error(err, "task failed", "duration", duration)
	} else {
		logger.Info("task completed", "duration", duration)
	}
}

// Stop stops scheduling and waits for running tasks to complete.
func (r *Runner) Stop() {
	r.logger.V(1).Info("stopping task runner")

	ctx := r.cron.Stop()
	r.wg.Wait()
	<-ctx.Done()

	r.logger.Info("task runner stopped")
}
