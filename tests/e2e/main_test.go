// Package e2e runs the suite under go test: one subtest per scenario,
// after a single login whose session every board scenario restores.
//
// Set E2E_STUB=1 to run against an in-process stub of the board instead of
// BASE_URL, and E2E_REQUIRE_BROWSER=1 to fail rather than skip when no
// browser can start.
package e2e

import (
	"context"
	"flag"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-logr/logr"

	"github.com/gotrs-io/kanban-e2e/internal/browser"
	"github.com/gotrs-io/kanban-e2e/internal/config"
	"github.com/gotrs-io/kanban-e2e/internal/dataset"
	"github.com/gotrs-io/kanban-e2e/internal/kanbanstub"
	"github.com/gotrs-io/kanban-e2e/internal/logging"
	"github.com/gotrs-io/kanban-e2e/internal/session"
	"github.com/gotrs-io/kanban-e2e/internal/testutil"
)

// repoRoot is where relative paths from the configuration resolve.
const repoRoot = "../.."

var (
	cfg      *config.Config
	logger   logr.Logger
	cases    []dataset.TestCase
	pool     *browser.Pool
	snapshot session.Snapshot
)

func TestMain(m *testing.M) {
	flag.Parse()
	os.Exit(setup(m))
}

func setup(m *testing.M) int {
	var err error
	cfg, err = config.GetConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}
	logger, err = logging.New(logging.Config{Format: cfg.LogFormat, Verbosity: cfg.LogVerbosity})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		return 1
	}

	ds, err := dataset.Load(fromRoot(cfg.DatasetPath))
	if err != nil {
		fmt.Fprintf(os.Stderr, "dataset: %v\n", err)
		return 1
	}
	cases = ds.TestCases

	if testing.Short() {
		fmt.Println("skipping e2e suite in short mode")
		return 0
	}

	if os.Getenv("E2E_STUB") == "1" {
		stub, err := kanbanstub.New(kanbanstub.Options{Username: cfg.Username, Password: cfg.Password, Logger: logger})
		if err != nil {
			fmt.Fprintf(os.Stderr, "stub: %v\n", err)
			return 1
		}
		srv := httptest.NewServer(stub.Handler())
		defer srv.Close()
		cfg.BaseURL = srv.URL
	}

	launcher, err := browser.Launch(browser.Options{
		Browser:        cfg.Browser,
		Headless:       cfg.Headless,
		SlowMo:         cfg.SlowMo,
		BaseURL:        cfg.BaseURL,
		DefaultTimeout: cfg.DefaultTimeout,
		ViewportWidth:  cfg.ViewportWidth,
		ViewportHeight: cfg.ViewportHeight,
		Install:        cfg.InstallBrowsers,
	}, logger)
	if err != nil {
		if os.Getenv(testutil.RequireBrowserEnv) == "1" {
			logger.Error(err, "launching browser")
			return 1
		}
		// no browser on this machine; nothing here can run
		fmt.Printf("skipping e2e suite: %v\n", err)
		return 0
	}
	defer func() {
		if err := launcher.Close(); err != nil {
			logger.Error(err, "closing browser")
		}
	}()
	pool = browser.NewPool(launcher, cfg.Workers)

	snapshot, err = session.Bootstrap(context.Background(), session.BootstrapOptions{
		Browser:       launcher,
		Path:          fromRoot(cfg.StorageStatePath),
		Username:      cfg.Username,
		Password:      cfg.Password,
		MaxAge:        cfg.SessionMaxAge,
		ExpectTimeout: cfg.ExpectTimeout,
		Logger:        logger,
	})
	if err != nil {
		logger.Error(err, "bootstrap failed", "snapshot", fromRoot(cfg.StorageStatePath))
		return 1
	}

	return m.Run()
}

func fromRoot(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(repoRoot, path)
}
