package pages_test

import (
	"context"
	"errors"
	"testing"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gotrs-io/kanban-e2e/internal/browser"
	"github.com/gotrs-io/kanban-e2e/internal/kanbanstub"
	"github.com/gotrs-io/kanban-e2e/internal/pages"
	"github.com/gotrs-io/kanban-e2e/internal/testutil"
)

var opts = pages.Options{ExpectTimeout: pages.ShortWait}

func newPage(t *testing.T) playwright.Page {
	t.Helper()
	srv := testutil.Stub(t)
	pool := testutil.Pool(t, srv.URL, 1)
	lease, err := pool.Acquire(context.Background(), browser.ContextOptions{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = lease.Close("") })
	return lease.Page()
}

func loggedIn(t *testing.T) *pages.BoardPage {
	t.Helper()
	page := newPage(t)
	login := pages.NewLoginPage(page, opts)
	require.NoError(t, login.Navigate())
	require.NoError(t, login.Login(testutil.Username, testutil.Password))
	require.NoError(t, login.VerifyLoginSuccessful())

	board := pages.NewBoardPage(page, opts)
	require.NoError(t, board.VerifyPageLoaded())
	return board
}

func TestLoginPage(t *testing.T) {
	t.Run("valid credentials", func(t *testing.T) {
		loggedIn(t)
	})

	t.Run("invalid password", func(t *testing.T) {
		login := pages.NewLoginPage(newPage(t), opts)
		require.NoError(t, login.Navigate())
		require.NoError(t, login.Login(testutil.Username, "wrongpassword"))

		assert.NoError(t, login.VerifyRejected())
		assert.True(t, login.IsSubmitVisible())
		assert.True(t, login.HasError())
		assert.NoError(t, login.VerifyLoginError(kanbanstub.LoginError))

		err := login.VerifyLoginSuccessful()
		var assertion *pages.AssertionError
		assert.True(t, errors.As(err, &assertion), "got %v", err)
	})

	t.Run("invalid username", func(t *testing.T) {
		login := pages.NewLoginPage(newPage(t), opts)
		require.NoError(t, login.Navigate())
		require.NoError(t, login.Login("nobody", testutil.Password))
		assert.NoError(t, login.VerifyRejected())
	})

	t.Run("empty credentials", func(t *testing.T) {
		login := pages.NewLoginPage(newPage(t), opts)
		require.NoError(t, login.Navigate())
		require.NoError(t, login.Login("", ""))
		assert.NoError(t, login.VerifyStillOnLogin())
		assert.False(t, login.HasError())
	})
}

func TestBoardStructure(t *testing.T) {
	board := loggedIn(t)

	projects, err := board.VisibleProjects()
	require.NoError(t, err)
	assert.Equal(t, []string{"Web Application", "Mobile Application", "Marketing Campaign"}, projects)

	// The stub renders lanes out of order; names come back in board order.
	columns, err := board.ColumnNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"To Do", "In Progress", "Review", "Done"}, columns)

	name, err := board.CurrentProjectName()
	require.NoError(t, err)
	assert.Equal(t, "Web Application", name)

	first, err := board.ColumnTaskCount("To Do")
	require.NoError(t, err)
	second, err := board.ColumnTaskCount("To Do")
	require.NoError(t, err)
	assert.Equal(t, 2, first)
	assert.Equal(t, first, second, "counting is idempotent")

	_, err = board.ColumnTaskCount("Backlog")
	var pre *pages.PreconditionError
	assert.True(t, errors.As(err, &pre), "got %v", err)
}

func TestBoardNavigation(t *testing.T) {
	board := loggedIn(t)

	require.NoError(t, board.NavigateToProject("Mobile Application"))
	name, err := board.CurrentProjectName()
	require.NoError(t, err)
	assert.Equal(t, "Mobile Application", name)

	review, err := board.ColumnTaskCount("Review")
	require.NoError(t, err)
	assert.Equal(t, 0, review)

	require.NoError(t, board.NavigateToProject("Marketing Campaign"))
	require.NoError(t, board.NavigateToProject("Web Application"))
	todo, err := board.ColumnTaskCount("To Do")
	require.NoError(t, err)
	assert.Equal(t, 2, todo)

	err = board.NavigateToProject("Intranet")
	var pre *pages.PreconditionError
	assert.True(t, errors.As(err, &pre), "got %v", err)
}

func TestBoardTasks(t *testing.T) {
	board := loggedIn(t)

	const task = "Implement user authentication"

	assert.NoError(t, board.VerifyTaskInColumn(task, "To Do"))
	assert.NoError(t, board.VerifyTaskNotInColumn(task, "Done"))

	err := board.VerifyTaskInColumn(task, "Done")
	var assertion *pages.AssertionError
	require.True(t, errors.As(err, &assertion), "got %v", err)
	assert.Contains(t, err.Error(), `task "Implement user authentication" should be in column "Done"`)

	tags, err := board.TaskTagNames(task, "To Do")
	require.NoError(t, err)
	assert.Equal(t, []string{"Feature", "High Priority"}, tags, "the due date is not a tag")

	assert.NoError(t, board.VerifyTaskTags(task, []string{"high priority", "FEATURE"}, "To Do"))
	assert.Error(t, board.VerifyTaskTags(task, []string{"Feature"}, "To Do"), "extra tag")
	assert.Error(t, board.VerifyTaskTags(task, []string{"Feature", "High Priority", "Bug"}, "To Do"), "missing tag")

	noTags, err := board.TaskTagNames("Update documentation", "Done")
	require.NoError(t, err)
	assert.Empty(t, noTags)
}
