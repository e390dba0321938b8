// Package browser owns the playwright driver and the browser it launches, and
// hands out isolated browser contexts to scenarios.
package browser

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"github.com/playwright-community/playwright-go"
)

// Options configure the launched browser and every context created from it.
type Options struct {
	// Browser is one of chromium, firefox or webkit.
	Browser  string
	Headless bool
	SlowMo   time.Duration
	// BaseURL is prefixed to relative navigations.
	BaseURL string
	// DefaultTimeout bounds every playwright call that sets no timeout of
	// its own.
	DefaultTimeout time.Duration
	ViewportWidth  int
	ViewportHeight int
	// Install downloads the driver and browser before starting. Images with
	// browsers baked in turn it off.
	Install bool
	// IgnoreHTTPSErrors accepts self-signed certificates on the app.
	IgnoreHTTPSErrors bool
}

// Launcher is a running playwright driver with one launched browser.
type Launcher struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	opts    Options
	logger  logr.Logger
}

// Launch starts playwright and the configured browser.
func Launch(opts Options, logger logr.Logger) (*Launcher, error) {
	if opts.Browser == "" {
		opts.Browser = "chromium"
	}
	if opts.Install {
		logger.V(1).Info("installing playwright", "browser", opts.Browser)
		if err := playwright.Install(&playwright.RunOptions{Browsers: []string{opts.Browser}}); err != nil {
			return nil, fmt.Errorf("could not install playwright browsers: %w", err)
		}
	}
	pw, err := playwright.Run()
	if err != nil {
		// The driver may not match the library version; install once and retry.
		_ = playwright.Install(&playwright.RunOptions{Browsers: []string{opts.Browser}})
		pw, err = playwright.Run()
		if err != nil {
			return nil, fmt.Errorf("could not start playwright after retry: %w", err)
		}
	}

	var browserType playwright.BrowserType
	switch opts.Browser {
	case "chromium":
		browserType = pw.Chromium
	case "firefox":
		browserType = pw.Firefox
	case "webkit":
		browserType = pw.WebKit
	default:
		_ = pw.Stop()
		return nil, fmt.Errorf("unknown browser: %s", opts.Browser)
	}

	b, err := browserType.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		SlowMo:   playwright.Float(float64(opts.SlowMo.Milliseconds())),
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("could not launch %s: %w", opts.Browser, err)
	}
	logger.V(1).Info("launched browser", "browser", opts.Browser, "version", b.Version(), "headless", opts.Headless)

	return &Launcher{pw: pw, browser: b, opts: opts, logger: logger}, nil
}

// ContextOptions tune one browser context.
type ContextOptions struct {
	// StorageStatePath restores cookies and storage from a session snapshot.
	// Empty means a fresh, unauthenticated context.
	StorageStatePath string
	// Trace records a playwright trace until the lease is closed.
	Trace bool
}

// NewContext creates an isolated context with a single page.
func (l *Launcher) NewContext(opts ContextOptions) (playwright.BrowserContext, playwright.Page, error) {
	ctxOpts := playwright.BrowserNewContextOptions{
		IgnoreHttpsErrors: playwright.Bool(l.opts.IgnoreHTTPSErrors),
	}
	if l.opts.BaseURL != "" {
		ctxOpts.BaseURL = playwright.String(l.opts.BaseURL)
	}
	if l.opts.ViewportWidth > 0 && l.opts.ViewportHeight > 0 {
		ctxOpts.Viewport = &playwright.Size{
			Width:  l.opts.ViewportWidth,
			Height: l.opts.ViewportHeight,
		}
	}
	if opts.StorageStatePath != "" {
		ctxOpts.StorageStatePath = playwright.String(opts.StorageStatePath)
	}

	bctx, err := l.browser.NewContext(ctxOpts)
	if err != nil {
		return nil, nil, fmt.Errorf("could not create context: %w", err)
	}
	if l.opts.DefaultTimeout > 0 {
		bctx.SetDefaultTimeout(float64(l.opts.DefaultTimeout.Milliseconds()))
	}
	if opts.Trace {
		err := bctx.Tracing().Start(playwright.TracingStartOptions{
			Screenshots: playwright.Bool(true),
			Snapshots:   playwright.Bool(true),
		})
		if err != nil {
			_ = bctx.Close()
			return nil, nil, fmt.Errorf("could not start tracing: %w", err)
		}
	}

	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		return nil, nil, fmt.Errorf("could not create page: %w", err)
	}
	// Accept any javascript dialog so it cannot block a scenario.
	page.OnDialog(func(dialog playwright.Dialog) {
		_ = dialog.Accept()
	})
	return bctx, page, nil
}

// WithBaseURL returns a launcher sharing l's browser whose contexts resolve
// relative URLs against baseURL. Closing either closes both.
func (l *Launcher) WithBaseURL(baseURL string) *Launcher {
	c := *l
	c.opts.BaseURL = baseURL
	return &c
}

// Options returns the options the launcher was started with.
func (l *Launcher) Options() Options { return l.opts }

// Close shuts down the browser and the driver.
func (l *Launcher) Close() error {
	var errs []error
	if err := l.browser.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing browser: %w", err))
	}
	if err := l.pw.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("stopping playwright: %w", err))
	}
	return errors.Join(errs...)
}
