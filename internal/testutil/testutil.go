// Package testutil provides the shared browser and stub app for tests that
// drive real pages.
package testutil

import (
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/go-logr/logr"

	"github.com/gotrs-io/kanban-e2e/internal/browser"
	"github.com/gotrs-io/kanban-e2e/internal/kanbanstub"
)

// Credentials accepted by the stub app.
const (
	Username = "admin"
	Password = "password123"
)

var (
	launchOnce sync.Once
	launcher   *browser.Launcher
	launchErr  error
)

// Stub starts the stub app and stops it when the test ends.
func Stub(t *testing.T) *httptest.Server {
	t.Helper()
	s, err := kanbanstub.New(kanbanstub.Options{
		Username: Username,
		Password: Password,
		Logger:   logr.Discard(),
	})
	if err != nil {
		t.Fatalf("starting stub: %v", err)
	}
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

// RequireBrowserEnv makes a missing browser fail browser tests instead of
// skipping them.
const RequireBrowserEnv = "E2E_REQUIRE_BROWSER"

// Pool returns a browser pool whose contexts resolve relative URLs against
// baseURL. The test is skipped when no browser can be started, e.g. on a
// machine without playwright's driver, unless RequireBrowserEnv is set.
func Pool(t *testing.T, baseURL string, size int) *browser.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	launchOnce.Do(func() {
		launcher, launchErr = browser.Launch(browser.Options{
			Browser:        "chromium",
			Headless:       true,
			DefaultTimeout: 15 * time.Second,
			Install:        os.Getenv("PLAYWRIGHT_PREINSTALLED") != "1",
		}, logr.Discard())
	})
	if launchErr != nil {
		unavailable(t, launchErr)
	}
	return browser.NewPool(launcher.WithBaseURL(baseURL), size)
}

// unavailable skips t, or fails it when a browser is required.
func unavailable(t testing.TB, err error) {
	t.Helper()
	if os.Getenv(RequireBrowserEnv) == "1" {
		t.Fatalf("browser unavailable and %s=1: %v", RequireBrowserEnv, err)
	}
	t.Skipf("browser unavailable: %v", err)
}
