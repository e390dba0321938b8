// Package scenarios builds the suite: one scenario per dataset entry plus the
// fixed checks of board structure, navigation and rejected logins.
package scenarios

import (
	"context"
	"fmt"
	"strings"

	"github.com/gotrs-io/kanban-e2e/internal/dataset"
	"github.com/gotrs-io/kanban-e2e/internal/fixture"
	"github.com/gotrs-io/kanban-e2e/internal/kanban"
	"github.com/gotrs-io/kanban-e2e/internal/pages"
	"github.com/gotrs-io/kanban-e2e/internal/suite"
)

// Stage names.
const (
	StageSetup      = "setup"
	StageAuth       = "auth"
	StageStructure  = "structure"
	StageNavigation = "navigation"
	StageTasks      = "tasks"
)

// ExpectedCounts is the number of cards each project shows per column.
var ExpectedCounts = map[kanban.Project]map[kanban.Column]int{
	kanban.ProjectWebApplication: {
		kanban.ColumnToDo: 2, kanban.ColumnInProgress: 1, kanban.ColumnReview: 1, kanban.ColumnDone: 1,
	},
	kanban.ProjectMobileApplication: {
		kanban.ColumnToDo: 1, kanban.ColumnInProgress: 1, kanban.ColumnReview: 0, kanban.ColumnDone: 1,
	},
	kanban.ProjectMarketingCampaign: {
		kanban.ColumnToDo: 1, kanban.ColumnInProgress: 1, kanban.ColumnReview: 1, kanban.ColumnDone: 0,
	},
}

// Options select what goes into the suite.
type Options struct {
	// Cases become the tasks stage, one scenario each, in order.
	Cases []dataset.TestCase
	// Setup produces the session snapshot the authenticated stages restore.
	Setup suite.SetupFunc
	// Username is a valid account name. The invalid password scenario pairs
	// it with a wrong password.
	Username string
	// Password is the valid password, paired with an unknown user.
	Password string
}

// Build assembles the stage graph: setup first, the authenticated stages
// after it, and the rejected-login stage alongside setup since it needs no
// session.
func Build(opts Options) (*suite.Graph, error) {
	return suite.NewGraph(
		suite.Stage{Name: StageSetup, Setup: opts.Setup},
		suite.Stage{Name: StageAuth, Scenarios: NegativeAuth(opts.Username, opts.Password)},
		suite.Stage{Name: StageStructure, Needs: []string{StageSetup}, Authenticated: true, Scenarios: Structure()},
		suite.Stage{Name: StageNavigation, Needs: []string{StageSetup}, Authenticated: true, Scenarios: Navigation()},
		suite.Stage{Name: StageTasks, Needs: []string{StageSetup}, Authenticated: true, Scenarios: FromDataset(opts.Cases)},
	)
}

// Name is the scenario name of a test case: its id and name, verbatim.
func Name(tc dataset.TestCase) string {
	return fmt.Sprintf("%s: %s", tc.ID, tc.Name)
}

// FromDataset returns one scenario per test case, in dataset order.
func FromDataset(cases []dataset.TestCase) []suite.Scenario {
	scenarios := make([]suite.Scenario, 0, len(cases))
	for _, tc := range cases {
		scenarios = append(scenarios, suite.Scenario{
			Name: Name(tc),
			Run:  verifyTask(tc),
		})
	}
	return scenarios
}

func verifyTask(tc dataset.TestCase) suite.ScenarioFunc {
	return func(ctx context.Context, f *fixture.Fixture) error {
		board, err := f.Board()
		if err != nil {
			return err
		}
		if err := board.NavigateToProject(string(tc.Project)); err != nil {
			return err
		}
		if err := board.VerifyTaskInColumn(tc.TaskName, string(tc.ExpectedColumn)); err != nil {
			return err
		}
		return board.VerifyTaskTags(tc.TaskName, tc.ExpectedTags, string(tc.ExpectedColumn))
	}
}

// boardScenario wraps a check that only needs the authenticated board.
func boardScenario(name string, check func(ctx context.Context, board *pages.BoardPage) error) suite.Scenario {
	return suite.Scenario{
		Name: name,
		Run: func(ctx context.Context, f *fixture.Fixture) error {
			board, err := f.Board()
			if err != nil {
				return err
			}
			return check(ctx, board)
		},
	}
}

// Structure checks the sidebar, then each project's columns and counts.
func Structure() []suite.Scenario {
	scenarios := []suite.Scenario{
		boardScenario("all projects are visible in sidebar", verifySidebar),
	}
	for _, project := range kanban.Projects() {
		scenarios = append(scenarios,
			boardScenario(fmt.Sprintf("%s - all 4 columns are visible", project), func(_ context.Context, board *pages.BoardPage) error {
				return verifyColumns(board, project)
			}),
			boardScenario(fmt.Sprintf("%s - column task counts are correct", project), func(_ context.Context, board *pages.BoardPage) error {
				return verifyCounts(board, project)
			}),
		)
	}
	return scenarios
}

func verifySidebar(_ context.Context, board *pages.BoardPage) error {
	visible, err := board.VisibleProjects()
	if err != nil {
		return err
	}
	for _, project := range kanban.Projects() {
		if !containsFuzzy(visible, string(project)) {
			return pages.Assertf(project, fmt.Sprintf("[%s]", strings.Join(visible, ", ")),
				"project %q should be visible in sidebar", project)
		}
	}
	return nil
}

// containsFuzzy reports whether some entry contains want or is contained in
// it. Sidebar buttons may carry more text than the project name, or less.
func containsFuzzy(entries []string, want string) bool {
	for _, e := range entries {
		if e != "" && (strings.Contains(e, want) || strings.Contains(want, e)) {
			return true
		}
	}
	return false
}

func verifyColumns(board *pages.BoardPage, project kanban.Project) error {
	if err := board.NavigateToProject(string(project)); err != nil {
		return err
	}
	columns, err := board.ColumnNames()
	if err != nil {
		return err
	}
	want := kanban.ColumnNames()
	if strings.Join(columns, "\x00") != strings.Join(want, "\x00") {
		return pages.Assertf(fmt.Sprintf("[%s]", strings.Join(want, ", ")), fmt.Sprintf("[%s]", strings.Join(columns, ", ")),
			"%s should show every column in board order", project)
	}
	return nil
}

func verifyCounts(board *pages.BoardPage, project kanban.Project) error {
	if err := board.NavigateToProject(string(project)); err != nil {
		return err
	}
	for _, column := range kanban.Columns() {
		want := ExpectedCounts[project][column]
		got, err := board.ColumnTaskCount(string(column))
		if err != nil {
			return err
		}
		if got != want {
			return pages.Assertf(want, got, "%s > %q should have %d task(s)", project, column, want)
		}
	}
	return nil
}

// Navigation checks that switching projects changes what the board shows
// and that coming back shows the same thing again.
func Navigation() []suite.Scenario {
	return []suite.Scenario{
		boardScenario("switching projects updates the header", verifyHeaderFollows),
		boardScenario("navigating away and back preserves board content", verifyRoundTrip),
		boardScenario("each project shows distinct task content", verifyDistinct),
		boardScenario("a task is not found in another column", verifyWrongColumn),
	}
}

func verifyHeaderFollows(_ context.Context, board *pages.BoardPage) error {
	for _, project := range kanban.Projects() {
		if err := board.NavigateToProject(string(project)); err != nil {
			return err
		}
		name, err := board.CurrentProjectName()
		if err != nil {
			return err
		}
		if name != string(project) {
			return pages.Assertf(fmt.Sprintf("%q", project), fmt.Sprintf("%q", name),
				"header should show %q after navigation", project)
		}
	}
	return nil
}

func verifyRoundTrip(_ context.Context, board *pages.BoardPage) error {
	if err := board.NavigateToProject(string(kanban.ProjectWebApplication)); err != nil {
		return err
	}
	before, err := board.ColumnTaskCount(string(kanban.ColumnToDo))
	if err != nil {
		return err
	}

	if err := board.NavigateToProject(string(kanban.ProjectMarketingCampaign)); err != nil {
		return err
	}
	name, err := board.CurrentProjectName()
	if err != nil {
		return err
	}
	if name != string(kanban.ProjectMarketingCampaign) {
		return pages.Assertf(fmt.Sprintf("%q", kanban.ProjectMarketingCampaign), fmt.Sprintf("%q", name),
			"header should follow the selected project")
	}

	if err := board.NavigateToProject(string(kanban.ProjectWebApplication)); err != nil {
		return err
	}
	after, err := board.ColumnTaskCount(string(kanban.ColumnToDo))
	if err != nil {
		return err
	}
	if after != before {
		return pages.Assertf(before, after, "%q count should be consistent after navigation", kanban.ColumnToDo)
	}
	return nil
}

func verifyDistinct(_ context.Context, board *pages.BoardPage) error {
	if err := board.NavigateToProject(string(kanban.ProjectWebApplication)); err != nil {
		return err
	}
	if err := board.VerifyTaskInColumn("Implement user authentication", string(kanban.ColumnToDo)); err != nil {
		return err
	}
	if err := board.NavigateToProject(string(kanban.ProjectMarketingCampaign)); err != nil {
		return err
	}
	if err := board.VerifyTaskNotInColumn("Implement user authentication", string(kanban.ColumnToDo)); err != nil {
		return err
	}
	return board.VerifyTaskInColumn("Social media calendar", string(kanban.ColumnToDo))
}

func verifyWrongColumn(_ context.Context, board *pages.BoardPage) error {
	if err := board.NavigateToProject(string(kanban.ProjectWebApplication)); err != nil {
		return err
	}
	if err := board.VerifyTaskInColumn("Implement user authentication", string(kanban.ColumnToDo)); err != nil {
		return err
	}
	return board.VerifyTaskNotInColumn("Implement user authentication", string(kanban.ColumnDone))
}

// NegativeAuth checks that bad credentials do not get past the login page.
// These scenarios start without a session.
func NegativeAuth(username, password string) []suite.Scenario {
	return []suite.Scenario{
		loginScenario("invalid password is rejected", username, "wrongpassword", (*pages.LoginPage).VerifyRejected),
		loginScenario("invalid username is rejected", "nonexistentuser", password, (*pages.LoginPage).VerifyRejected),
		loginScenario("empty credentials are handled", "", "", (*pages.LoginPage).VerifyStillOnLogin),
	}
}

func loginScenario(name, username, password string, verify func(*pages.LoginPage) error) suite.Scenario {
	return suite.Scenario{
		Name: name,
		Run: func(_ context.Context, f *fixture.Fixture) error {
			login := f.Login()
			if err := login.Navigate(); err != nil {
				return err
			}
			if err := login.Login(username, password); err != nil {
				return err
			}
			return verify(login)
		},
	}
}
