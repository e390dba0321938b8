package fixture_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gotrs-io/kanban-e2e/internal/fixture"
	"github.com/gotrs-io/kanban-e2e/internal/session"
	"github.com/gotrs-io/kanban-e2e/internal/testutil"
)

func TestAuthStateError(t *testing.T) {
	cause := errors.New("Projects header not visible")

	err := &fixture.AuthStateError{Snapshot: ".auth/user.json", Err: cause}
	assert.Equal(t, "authentication state invalid: re-run bootstrap to refresh .auth/user.json: Projects header not visible", err.Error())
	assert.ErrorIs(t, err, cause)

	err = &fixture.AuthStateError{Err: cause}
	assert.Equal(t, "authentication state invalid: no session snapshot; run bootstrap first: Projects header not visible", err.Error())
}

func TestBoardWithoutSession(t *testing.T) {
	srv := testutil.Stub(t)
	pool := testutil.Pool(t, srv.URL, 1)

	fixture.With(t, pool, fixture.Options{ExpectTimeout: time.Second}, "", func(t *testing.T, f *fixture.Fixture) {
		_, err := f.Board()
		var authErr *fixture.AuthStateError
		require.True(t, errors.As(err, &authErr), "got %v", err)
		assert.Empty(t, authErr.Snapshot)

		// The login form is what an unauthenticated visitor gets instead.
		assert.True(t, f.Login().IsSubmitVisible())
	})
}

func TestBoardWithSession(t *testing.T) {
	srv := testutil.Stub(t)
	pool := testutil.Pool(t, srv.URL, 2)

	snap, err := session.Bootstrap(context.Background(), session.BootstrapOptions{
		Browser:  pool.Launcher(),
		Path:     filepath.Join(t.TempDir(), "user.json"),
		Username: testutil.Username,
		Password: testutil.Password,
		Logger:   logr.Discard(),
	})
	require.NoError(t, err)

	fixture.With(t, pool, fixture.Options{Snapshot: &snap}, t.TempDir(), func(t *testing.T, f *fixture.Fixture) {
		board, err := f.Board()
		require.NoError(t, err)

		again, err := f.Board()
		require.NoError(t, err)
		assert.Same(t, board, again)

		name, err := board.CurrentProjectName()
		require.NoError(t, err)
		assert.Equal(t, "Web Application", name)
	})
}
