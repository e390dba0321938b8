package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/playwright-community/playwright-go"
)

// Pool bounds how many browser contexts are open at once. Every context has
// its own cookie jar and storage, so scenarios holding leases cannot see each
// other's state.
type Pool struct {
	launcher *Launcher
	// one token per context that may be open
	slots chan struct{}
}

// NewPool returns a pool of size contexts over l.
func NewPool(l *Launcher, size int) *Pool {
	if size < 1 {
		size = 1
	}
	p := &Pool{
		launcher: l,
		slots:    make(chan struct{}, size),
	}
	for i := 0; i < size; i++ {
		p.slots <- struct{}{}
	}
	return p
}

// Size is the number of contexts the pool allows at once.
func (p *Pool) Size() int { return cap(p.slots) }

// Launcher is the browser the pool opens contexts on.
func (p *Pool) Launcher() *Launcher { return p.launcher }

// Reserve waits for a free slot without opening a context, for callers
// that open their own on the pool's launcher. The returned func gives the
// slot back and may be called more than once.
func (p *Pool) Reserve(ctx context.Context) (func(), error) {
	select {
	case <-p.slots:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	var once sync.Once
	return func() {
		once.Do(func() { p.slots <- struct{}{} })
	}, nil
}

// Acquire waits for a free slot and opens a context with one page. The lease
// must be closed to give the slot back.
func (p *Pool) Acquire(ctx context.Context, opts ContextOptions) (*Lease, error) {
	release, err := p.Reserve(ctx)
	if err != nil {
		return nil, err
	}
	bctx, page, err := p.launcher.NewContext(opts)
	if err != nil {
		release()
		return nil, err
	}
	return &Lease{
		bctx:    bctx,
		page:    page,
		tracing: opts.Trace,
		release: release,
	}, nil
}

// Lease is a browser context and its page, on loan from a pool.
type Lease struct {
	bctx    playwright.BrowserContext
	page    playwright.Page
	tracing bool
	release func()
	once    sync.Once
	mu      sync.Mutex
	closed  bool
}

// Page is the lease's only page.
func (l *Lease) Page() playwright.Page { return l.page }

// Context is the lease's browser context.
func (l *Lease) Context() playwright.BrowserContext { return l.bctx }

// Screenshot captures the full page to path, creating its directory.
func (l *Lease) Screenshot(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to make screenshots directory: %w", err)
	}
	_, err := l.page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("failed to take screenshot: %w", err)
	}
	return nil
}

// Abort closes the context without saving anything. Browser calls still in
// flight on the lease's page fail promptly, which is how a scenario that ran
// past its deadline is cancelled.
func (l *Lease) Abort() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	_ = l.bctx.Close()
}

// Close stops tracing, writing the trace to tracePath when one is given and
// tracing was on, closes the context and returns the slot to the pool. It is
// safe to call more than once.
func (l *Lease) Close(tracePath string) error {
	defer l.once.Do(l.release)

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true

	var errs []error
	if l.tracing {
		if tracePath != "" {
			if err := os.MkdirAll(filepath.Dir(tracePath), 0o755); err != nil {
				errs = append(errs, fmt.Errorf("failed to make traces directory: %w", err))
				tracePath = ""
			}
		}
		var err error
		if tracePath != "" {
			err = l.bctx.Tracing().Stop(tracePath)
		} else {
			err = l.bctx.Tracing().Stop()
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to stop tracing: %w", err))
		}
	}
	if err := l.bctx.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close context: %w", err))
	}
	return errors.Join(errs...)
}
