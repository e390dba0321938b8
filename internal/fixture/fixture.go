// Package fixture hands page objects to scenarios. Each fixture owns one
// isolated browser context; board pages come from a context restored from the
// session snapshot and are checked for a live session before use.
package fixture

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/gotrs-io/kanban-e2e/internal/browser"
	"github.com/gotrs-io/kanban-e2e/internal/pages"
	"github.com/gotrs-io/kanban-e2e/internal/session"
)

// AuthStateError means the restored session did not reach an authenticated
// board. The snapshot is stale or was written for another app.
type AuthStateError struct {
	Snapshot string
	Err      error
}

func (e *AuthStateError) Error() string {
	if e.Snapshot == "" {
		return fmt.Sprintf("authentication state invalid: no session snapshot; run bootstrap first: %v", e.Err)
	}
	return fmt.Sprintf("authentication state invalid: re-run bootstrap to refresh %s: %v", e.Snapshot, e.Err)
}

func (e *AuthStateError) Unwrap() error { return e.Err }

// Options tune a fixture.
type Options struct {
	// Snapshot restores an authenticated session. Nil opens a fresh context,
	// as needed by login scenarios.
	Snapshot *session.Snapshot
	// Trace records a playwright trace for the fixture's lifetime.
	Trace         bool
	ExpectTimeout time.Duration
}

// Lease is the browser context a fixture runs on.
type Lease interface {
	Page() playwright.Page
	Screenshot(path string) error
	// Abort closes the context at once, failing calls in flight.
	Abort()
	Close(tracePath string) error
}

// Fixture is the per-scenario set of page objects over one browser context.
type Fixture struct {
	lease Lease
	opts  Options
	board *pages.BoardPage
}

// New wraps lease in a fixture.
func New(lease Lease, opts Options) *Fixture {
	return &Fixture{lease: lease, opts: opts}
}

// Open leases a context from pool and wraps it in a fixture.
func Open(ctx context.Context, pool *browser.Pool, opts Options) (*Fixture, error) {
	var copts browser.ContextOptions
	copts.Trace = opts.Trace
	if opts.Snapshot != nil {
		copts.StorageStatePath = opts.Snapshot.Path
	}
	lease, err := pool.Acquire(ctx, copts)
	if err != nil {
		return nil, fmt.Errorf("opening fixture: %w", err)
	}
	return New(lease, opts), nil
}

func (f *Fixture) pageOptions() pages.Options {
	return pages.Options{ExpectTimeout: f.opts.ExpectTimeout}
}

// Page is the fixture's browser page.
func (f *Fixture) Page() playwright.Page { return f.lease.Page() }

// Abort closes the browser context immediately. Scenario code blocked in a
// browser call returns with an error.
func (f *Fixture) Abort() { f.lease.Abort() }

// Login returns a login page. It needs no session and does not navigate.
func (f *Fixture) Login() *pages.LoginPage {
	return pages.NewLoginPage(f.lease.Page(), f.pageOptions())
}

// Board opens the app root with the restored session and checks that the
// board rendered for an authenticated user. The page is built once per
// fixture.
func (f *Fixture) Board() (*pages.BoardPage, error) {
	if f.board != nil {
		return f.board, nil
	}
	board := pages.NewBoardPage(f.lease.Page(), f.pageOptions())
	if err := board.Navigate(); err != nil {
		return nil, err
	}
	if err := board.VerifyPageLoaded(); err != nil {
		var path string
		if f.opts.Snapshot != nil {
			path = f.opts.Snapshot.Path
		}
		return nil, &AuthStateError{Snapshot: path, Err: err}
	}
	f.board = board
	return board, nil
}

// Screenshot captures the page to path.
func (f *Fixture) Screenshot(path string) error {
	return f.lease.Screenshot(path)
}

// Close releases the browser context, saving the trace to tracePath if
// tracing was on.
func (f *Fixture) Close(tracePath string) error {
	return f.lease.Close(tracePath)
}

// With opens a fixture for the duration of a test. A screenshot goes to
// artifactsDir when the test fails, and the fixture is closed on cleanup.
func With(t *testing.T, pool *browser.Pool, opts Options, artifactsDir string, fn func(t *testing.T, f *Fixture)) {
	t.Helper()

	f, err := Open(context.Background(), pool, opts)
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
	t.Cleanup(func() {
		if t.Failed() && artifactsDir != "" {
			path := browser.ScreenshotPath(artifactsDir, t.Name(), 1)
			if err := f.Screenshot(path); err != nil {
				t.Logf("failed to take screenshot: %s", err.Error())
			} else {
				t.Logf("screenshot: %s", path)
			}
		}
		var tracePath string
		if f.opts.Trace && artifactsDir != "" {
			tracePath = browser.TracePath(artifactsDir, t.Name())
		}
		if err := f.Close(tracePath); err != nil {
			t.Logf("closing fixture: %s", err.Error())
		}
	})

	fn(t, f)
}
