package runner

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSchedule(t *testing.T) {
	for _, spec := range []string{"@every 30m", "@hourly", "*/5 * * * *", "0 */5 * * * *"} {
		_, err := ParseSchedule(spec)
		assert.NoError(t, err, spec)
	}
	for _, spec := range []string{"", "every 30m", "* * *", "@every"} {
		_, err := ParseSchedule(spec)
		assert.Error(t, err, spec)
	}
}

func TestRunnerFiresTasks(t *testing.T) {
	var runs atomic.Int32
	task := FuncTask{
		TaskName:     "suite",
		TaskSchedule: "@every 1s",
		TaskTimeout:  time.Second,
		Fn: func(ctx context.Context) error {
			runs.Add(1)
			_, ok := ctx.Deadline()
			if !ok {
				return errors.New("task context has no deadline")
			}
			return nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	r := New(logr.Discard(), task)
	done := make(chan error, 1)
	go func() { done <- r.Start(ctx) }()

	require.Eventually(t, func() bool { return runs.Load() >= 1 }, 5*time.Second, 50*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not stop")
	}
}

func TestRunnerRejectsBadSchedule(t *testing.T) {
	r := New(logr.Discard(), FuncTask{TaskName: "bad", TaskSchedule: "sometimes", Fn: func(context.Context) error { return nil }})
	err := r.Start(context.Background())
	assert.ErrorContains(t, err, "failed to schedule task bad")
}
