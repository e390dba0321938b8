// Package pages models the board application as page objects. Scenarios
// talk to pages in terms of capabilities (log in, open a project, verify a
// task) and never touch raw selectors; the selectors themselves come from the
// locator package.
package pages

import (
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
)

const (
	// LongWait covers content that may still be rendering after navigation.
	LongWait = 10 * time.Second
	// ShortWait bounds the login form disappearing after a successful login.
	ShortWait = 5 * time.Second

	defaultExpectTimeout = 5 * time.Second
)

// Options tune page behaviour.
type Options struct {
	// ExpectTimeout is the bounded wait applied to visibility and text
	// assertions that do not override it.
	ExpectTimeout time.Duration
}

// Base carries what every page needs: the browser page, an assertion helper
// and the route the page represents.
type Base struct {
	page    playwright.Page
	expect  playwright.PlaywrightAssertions
	timeout time.Duration
	path    string
}

func newBase(page playwright.Page, path string, opts Options) Base {
	timeout := opts.ExpectTimeout
	if timeout <= 0 {
		timeout = defaultExpectTimeout
	}
	return Base{
		page:    page,
		expect:  playwright.NewPlaywrightAssertions(float64(timeout.Milliseconds())),
		timeout: timeout,
		path:    path,
	}
}

// Path is the route of this page relative to the base URL.
func (b *Base) Path() string { return b.path }

// Page exposes the underlying browser page.
func (b *Base) Page() playwright.Page { return b.page }

// Navigate loads the page's route and waits for the DOM to be ready.
func (b *Base) Navigate() error {
	if _, err := b.page.Goto(b.path); err != nil {
		return fmt.Errorf("navigating to %s: %w", b.path, err)
	}
	return b.WaitForPageLoad()
}

// WaitForPageLoad waits for the load-complete signal.
func (b *Base) WaitForPageLoad() error {
	err := b.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State: playwright.LoadStateDomcontentloaded,
	})
	if err != nil {
		return fmt.Errorf("waiting for page load: %w", err)
	}
	return nil
}

// root is the document element every locator chain resolves under.
func (b *Base) root() playwright.Locator {
	return b.page.Locator("html")
}

func (b *Base) clickElement(l playwright.Locator, element string) error {
	if err := b.waitVisible(l, element, "clicking", 0); err != nil {
		return err
	}
	if err := l.Click(); err != nil {
		return fmt.Errorf("clicking %q: %w", element, err)
	}
	return nil
}

func (b *Base) fillInput(l playwright.Locator, value, element string) error {
	if err := b.waitVisible(l, element, "filling", 0); err != nil {
		return err
	}
	if err := l.Fill(value); err != nil {
		return fmt.Errorf("filling %q: %w", element, err)
	}
	return nil
}

// getText returns the element's text content, or "" when it has none.
func (b *Base) getText(l playwright.Locator) (string, error) {
	return l.TextContent()
}

func (b *Base) assertVisible(l playwright.Locator, element string) error {
	return b.waitVisible(l, element, "continuing", 0)
}

func (b *Base) assertContainsText(l playwright.Locator, expected, element string) error {
	if err := b.expect.Locator(l).ToContainText(expected); err != nil {
		actual, _ := l.First().TextContent(playwright.LocatorTextContentOptions{Timeout: playwright.Float(1000)})
		return &AssertionError{
			Subject:  fmt.Sprintf("%q should contain text", element),
			Expected: fmt.Sprintf("%q", expected),
			Actual:   fmt.Sprintf("%q", actual),
			Err:      err,
		}
	}
	return nil
}

// waitVisible waits up to timeout (the default expect timeout when zero) for
// l to be visible.
func (b *Base) waitVisible(l playwright.Locator, element, action string, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = b.timeout
	}
	err := b.expect.Locator(l).ToBeVisible(playwright.LocatorAssertionsToBeVisibleOptions{
		Timeout: millis(timeout),
	})
	if err != nil {
		return &PreconditionError{Element: element, Action: action, Err: err}
	}
	return nil
}

func millis(d time.Duration) *float64 {
	return playwright.Float(float64(d.Milliseconds()))
}
