package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-logr/logr"
	"github.com/gofrs/flock"
	"github.com/playwright-community/playwright-go"

	"github.com/gotrs-io/kanban-e2e/internal/browser"
	"github.com/gotrs-io/kanban-e2e/internal/pages"
)

// Bootstrap steps, as reported by BootstrapError.
const (
	StepLock     = "lock snapshot"
	StepContext  = "open browser context"
	StepNavigate = "navigate to login page"
	StepLogin    = "enter credentials and submit"
	StepVerify   = "verify login successful"
	StepSave     = "save authentication state"
)

// BootstrapError aborts the whole run: without a session no board scenario
// can give a meaningful result.
type BootstrapError struct {
	Step string
	Err  error
}

func (e *BootstrapError) Error() string {
	return fmt.Sprintf("authentication bootstrap failed at %q: %v", e.Step, e.Err)
}

func (e *BootstrapError) Unwrap() error { return e.Err }

// ContextFactory opens fresh, unauthenticated browser contexts.
type ContextFactory interface {
	NewContext(opts browser.ContextOptions) (playwright.BrowserContext, playwright.Page, error)
}

// BootstrapOptions configure Bootstrap.
type BootstrapOptions struct {
	Browser  ContextFactory
	Path     string
	Username string
	Password string
	// MaxAge lets an existing snapshot younger than this be reused instead
	// of logging in again. Zero always logs in.
	MaxAge        time.Duration
	ExpectTimeout time.Duration
	Logger        logr.Logger
}

// Bootstrap logs in once with the configured credentials and persists the
// resulting session to opts.Path. The file is written under an exclusive lock
// and renamed into place, so a process reading it concurrently sees either the
// previous snapshot or the complete new one.
func Bootstrap(ctx context.Context, opts BootstrapOptions) (Snapshot, error) {
	if opts.Path == "" {
		opts.Path = DefaultPath
	}
	logger := opts.Logger.WithValues("snapshot", opts.Path)

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return Snapshot{}, &BootstrapError{Step: StepLock, Err: err}
	}
	lock := lockFor(opts.Path)
	locked, err := lock.TryLockContext(ctx, 100*time.Millisecond)
	if err != nil {
		return Snapshot{}, &BootstrapError{Step: StepLock, Err: err}
	}
	if !locked {
		return Snapshot{}, &BootstrapError{Step: StepLock, Err: errors.New("lock not acquired")}
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Error(err, "releasing snapshot lock")
		}
	}()

	if existing, err := Load(opts.Path); err == nil && existing.Fresh(time.Now(), opts.MaxAge) {
		logger.Info("reusing session snapshot", "age", existing.Age(time.Now()).Round(time.Second))
		return existing, nil
	}

	bctx, page, err := opts.Browser.NewContext(browser.ContextOptions{})
	if err != nil {
		return Snapshot{}, &BootstrapError{Step: StepContext, Err: err}
	}
	// Closing the context makes any browser call in flight return, so a
	// cancelled ctx ends the bootstrap promptly.
	stop := context.AfterFunc(ctx, func() { _ = bctx.Close() })
	defer func() {
		if stop() {
			_ = bctx.Close()
		}
	}()

	login := pages.NewLoginPage(page, pages.Options{ExpectTimeout: opts.ExpectTimeout})

	logger.V(1).Info("bootstrap step", "step", StepNavigate)
	if err := login.Navigate(); err != nil {
		return Snapshot{}, &BootstrapError{Step: StepNavigate, Err: ctxErr(ctx, err)}
	}
	logger.V(1).Info("bootstrap step", "step", StepLogin, "username", opts.Username)
	if err := login.Login(opts.Username, opts.Password); err != nil {
		return Snapshot{}, &BootstrapError{Step: StepLogin, Err: ctxErr(ctx, err)}
	}
	logger.V(1).Info("bootstrap step", "step", StepVerify)
	if err := login.VerifyLoginSuccessful(); err != nil {
		return Snapshot{}, &BootstrapError{Step: StepVerify, Err: ctxErr(ctx, err)}
	}

	logger.V(1).Info("bootstrap step", "step", StepSave)
	tmp := opts.Path + ".tmp"
	if _, err := bctx.StorageState(tmp); err != nil {
		_ = os.Remove(tmp)
		return Snapshot{}, &BootstrapError{Step: StepSave, Err: ctxErr(ctx, err)}
	}
	if err := os.Rename(tmp, opts.Path); err != nil {
		_ = os.Remove(tmp)
		return Snapshot{}, &BootstrapError{Step: StepSave, Err: err}
	}

	snap, err := Load(opts.Path)
	if err != nil {
		return Snapshot{}, &BootstrapError{Step: StepSave, Err: err}
	}
	logger.Info("saved session snapshot")
	return snap, nil
}

// lockFor guards writes to the snapshot at path across processes.
func lockFor(path string) *flock.Flock {
	return flock.New(path + ".lock")
}

// ctxErr prefers the context's error over the browser error it caused.
func ctxErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("%w: %v", ctx.Err(), err)
	}
	return err
}
