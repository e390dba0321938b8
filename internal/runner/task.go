package runner

import (
	"context"
	"time"
)

// Task is a job the runner fires on a schedule.
type Task interface {
	// Name returns the unique name of the task
	Name() string

	// Schedule returns the cron expression or descriptor (e.g. "@every 30m")
	Schedule() string

	// Run executes the task
	Run(ctx context.Context) error

	// Timeout returns the maximum time this task should run
	Timeout() time.Duration
}

// FuncTask adapts a function to a Task.
type FuncTask struct {
	TaskName     string
	TaskSchedule string
	TaskTimeout  time.Duration
	Fn           func(ctx context.Context) error
}

func (t FuncTask) Name() string                  { return t.TaskName }
func (t FuncTask) Schedule() string              { return t.TaskSchedule }
func (t FuncTask) Timeout() time.Duration        { return t.TaskTimeout }
func (t FuncTask) Run(ctx context.Context) error { return t.Fn(ctx) }
