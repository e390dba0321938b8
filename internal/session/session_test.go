package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gotrs-io/kanban-e2e/internal/browser"
)

const stateJSON = `{
  "cookies": [
    {"name": "kanban_session", "value": "x", "domain": "127.0.0.1", "path": "/", "expires": -1, "httpOnly": true, "secure": false, "sameSite": "Lax"}
  ],
  "origins": [
    {"origin": "http://127.0.0.1:8081", "localStorage": [{"name": "theme", "value": "light"}]}
  ]
}`

func writeState(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".auth", "user.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		path := writeState(t, stateJSON)
		snap, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, path, snap.Path)
		assert.WithinDuration(t, time.Now(), snap.CreatedAt, time.Minute)

		n, err := snap.Cookies()
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		origins, err := snap.Origins()
		require.NoError(t, err)
		assert.Equal(t, []string{"http://127.0.0.1:8081"}, origins)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "user.json"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("corrupt", func(t *testing.T) {
		path := writeState(t, "{not json")
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "corrupt")
	})
}

func TestFresh(t *testing.T) {
	now := time.Date(2024, 3, 24, 12, 0, 0, 0, time.UTC)
	snap := Snapshot{Path: "user.json", CreatedAt: now.Add(-10 * time.Minute)}

	assert.Equal(t, 10*time.Minute, snap.Age(now))
	assert.True(t, snap.Fresh(now, 15*time.Minute))
	assert.False(t, snap.Fresh(now, 5*time.Minute))
	assert.False(t, snap.Fresh(now, 0), "zero max age never reuses")
}

type failingFactory struct{ err error }

func (f failingFactory) NewContext(browser.ContextOptions) (playwright.BrowserContext, playwright.Page, error) {
	return nil, nil, f.err
}

func TestBootstrapContextFailure(t *testing.T) {
	cause := errors.New("browser has been closed")
	_, err := Bootstrap(context.Background(), BootstrapOptions{
		Browser: failingFactory{err: cause},
		Path:    filepath.Join(t.TempDir(), "user.json"),
		Logger:  logr.Discard(),
	})
	require.Error(t, err)

	var berr *BootstrapError
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, StepContext, berr.Step)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, `authentication bootstrap failed at "open browser context": browser has been closed`, err.Error())
}

func TestBootstrapReusesFreshSnapshot(t *testing.T) {
	path := writeState(t, stateJSON)

	// A fresh snapshot is returned before any browser is needed.
	snap, err := Bootstrap(context.Background(), BootstrapOptions{
		Browser: failingFactory{err: errors.New("must not be called")},
		Path:    path,
		MaxAge:  time.Hour,
		Logger:  logr.Discard(),
	})
	require.NoError(t, err)
	assert.Equal(t, path, snap.Path)
}

func TestBootstrapIgnoresStaleSnapshot(t *testing.T) {
	path := writeState(t, stateJSON)
	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(path, old, old))

	_, err := Bootstrap(context.Background(), BootstrapOptions{
		Browser: failingFactory{err: errors.New("login required")},
		Path:    path,
		MaxAge:  time.Hour,
		Logger:  logr.Discard(),
	})
	var berr *BootstrapError
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, StepContext, berr.Step)
}

func TestBootstrapCancelledWhileLocked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user.json")
	holder := lockFor(path)
	locked, err := holder.TryLock()
	require.NoError(t, err)
	require.True(t, locked)
	defer holder.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	_, err = Bootstrap(ctx, BootstrapOptions{
		Browser: failingFactory{err: errors.New("unreachable")},
		Path:    path,
		Logger:  logr.Discard(),
	})
	var berr *BootstrapError
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, StepLock, berr.Step)
}
