package pages

import (
	"fmt"
	"strings"

	"github.com/gotrs-io/kanban-e2e/internal/kanban"
	"github.com/gotrs-io/kanban-e2e/internal/locator"
	"github.com/playwright-community/playwright-go"
)

// BoardPage is the Kanban board: a sidebar of projects and, for the selected
// project, four columns of task cards.
type BoardPage struct {
	Base
}

// NewBoardPage returns the board page object for page.
func NewBoardPage(page playwright.Page, opts Options) *BoardPage {
	return &BoardPage{Base: newBase(page, "/", opts)}
}

func (p *BoardPage) sidebar() playwright.Locator {
	return locator.Sidebar().Resolve(p.root()).First()
}

func (p *BoardPage) mainContent() playwright.Locator {
	return locator.MainContent().Resolve(p.root()).First()
}

func (p *BoardPage) projectButton(project string) playwright.Locator {
	return p.sidebar().Locator("button").Filter(playwright.LocatorFilterOptions{
		HasText: project,
	}).First()
}

func (p *BoardPage) columnHeader(column string) playwright.Locator {
	return locator.ColumnHeader(column).Resolve(p.root())
}

// column is the container of one column: the outermost element holding that
// column's header and no other column's header. Scoping cards to it makes the
// column check structural rather than textual.
func (p *BoardPage) column(column string) playwright.Locator {
	var others []string
	for _, c := range kanban.ColumnNames() {
		if c != column {
			others = append(others, c)
		}
	}
	return p.mainContent().Locator("div").
		Filter(playwright.LocatorFilterOptions{Has: p.columnHeader(column)}).
		Filter(playwright.LocatorFilterOptions{HasNot: p.page.GetByText(locator.AnyColumnHeaderPattern(others...))}).
		First()
}

func (p *BoardPage) taskInColumn(task, column string) playwright.Locator {
	title := p.column(column).GetByText(task, playwright.LocatorGetByTextOptions{Exact: playwright.Bool(true)})
	return title.Locator(locator.TaskCardContainer)
}

func (p *BoardPage) taskTags(card playwright.Locator) playwright.Locator {
	return locator.TagCandidates().Resolve(card).Filter(playwright.LocatorFilterOptions{
		HasNotText: locator.DatePattern,
	})
}

// VisibleProjects lists the project names in the sidebar in DOM order. A
// button's nested heading or label is preferred over its full text, which
// also carries the project's subtitle.
func (p *BoardPage) VisibleProjects() ([]string, error) {
	buttons, err := p.sidebar().Locator("button").All()
	if err != nil {
		return nil, fmt.Errorf("listing sidebar buttons: %w", err)
	}
	var projects []string
	for _, button := range buttons {
		name := button.Locator("h2, span, div").First()
		n, err := name.Count()
		if err != nil {
			return nil, fmt.Errorf("inspecting sidebar button: %w", err)
		}
		var text string
		if n > 0 {
			text, err = p.getText(name)
		} else {
			text, err = p.getText(button)
		}
		if err != nil {
			return nil, fmt.Errorf("reading sidebar button: %w", err)
		}
		if t := strings.TrimSpace(text); t != "" {
			projects = append(projects, t)
		}
	}
	return projects, nil
}

// ColumnNames returns the known columns whose header is rendered and
// visible, in canonical board order rather than DOM order.
func (p *BoardPage) ColumnNames() ([]string, error) {
	var columns []string
	for _, name := range kanban.ColumnNames() {
		header := p.columnHeader(name)
		n, err := header.Count()
		if err != nil {
			return nil, fmt.Errorf("counting %q headers: %w", name, err)
		}
		if n == 0 {
			continue
		}
		visible, err := header.First().IsVisible()
		if err != nil {
			return nil, fmt.Errorf("checking %q header: %w", name, err)
		}
		if visible {
			columns = append(columns, name)
		}
	}
	return columns, nil
}

// ColumnTaskCount reads the count from a column header, e.g. 2 for
// "To Do (2)". It returns -1 if the header carries no number, which the
// header pattern should make impossible.
func (p *BoardPage) ColumnTaskCount(column string) (int, error) {
	header := p.columnHeader(column)
	if err := p.waitVisible(header, fmt.Sprintf("column %q header", column), "reading its task count", 0); err != nil {
		return 0, err
	}
	text, err := p.getText(header)
	if err != nil {
		return 0, fmt.Errorf("reading column %q header: %w", column, err)
	}
	return locator.ParseColumnCount(text), nil
}

// CurrentProjectName returns the trimmed text of the project heading, or ""
// when there is none.
func (p *BoardPage) CurrentProjectName() (string, error) {
	heading := p.page.Locator(locator.ProjectHeading).First()
	n, err := heading.Count()
	if err != nil {
		return "", fmt.Errorf("looking up project heading: %w", err)
	}
	if n == 0 {
		return "", nil
	}
	text, err := p.getText(heading)
	if err != nil {
		return "", fmt.Errorf("reading project heading: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// VerifyPageLoaded is a cheap check that the session is authenticated: the
// sidebar's "Projects" label only renders for a logged-in user.
func (p *BoardPage) VerifyPageLoaded() error {
	if err := p.WaitForPageLoad(); err != nil {
		return err
	}
	return p.waitVisible(p.page.GetByText("Projects"), "Projects header", "using the board", LongWait)
}

// NavigateToProject selects project in the sidebar. The click alone proves
// nothing; the project's heading showing up in the main content does.
func (p *BoardPage) NavigateToProject(project string) error {
	button := p.projectButton(project)
	if err := p.clickElement(button, fmt.Sprintf("project button %q", project)); err != nil {
		return err
	}
	if err := p.WaitForPageLoad(); err != nil {
		return err
	}
	heading := p.mainContent().Locator("h1, h2").Filter(playwright.LocatorFilterOptions{
		HasText: project,
	}).First()
	if err := p.waitVisible(heading, fmt.Sprintf("project %q heading", project), "verifying navigation", 0); err != nil {
		return &AssertionError{
			Subject:  fmt.Sprintf("project %q should be displayed as header", project),
			Expected: fmt.Sprintf("%q", project),
			Actual:   p.currentProjectOrUnknown(),
			Err:      err,
		}
	}
	return nil
}

// VerifyTaskInColumn requires a card titled exactly task inside column.
func (p *BoardPage) VerifyTaskInColumn(task, column string) error {
	if err := p.waitVisible(p.columnHeader(column), fmt.Sprintf("column %q", column), "looking for tasks in it", 0); err != nil {
		return err
	}
	if err := p.waitVisible(p.taskInColumn(task, column), fmt.Sprintf("task %q", task), "verifying its column", LongWait); err != nil {
		return &AssertionError{
			Subject:  fmt.Sprintf("task %q should be in column %q", task, column),
			Expected: fmt.Sprintf("card in %q", column),
			Actual:   "not found in that column",
			Err:      err,
		}
	}
	return nil
}

// VerifyTaskNotInColumn requires that no card titled task sits inside column.
func (p *BoardPage) VerifyTaskNotInColumn(task, column string) error {
	if err := p.waitVisible(p.columnHeader(column), fmt.Sprintf("column %q", column), "looking for tasks in it", 0); err != nil {
		return err
	}
	n, err := p.taskInColumn(task, column).Count()
	if err != nil {
		return fmt.Errorf("counting task %q in column %q: %w", task, column, err)
	}
	if n > 0 {
		return Assertf(0, n, "task %q should not be in column %q", task, column)
	}
	return nil
}

// TaskTagNames returns the tags on a task card in DOM order. Duplicates are
// kept.
func (p *BoardPage) TaskTagNames(task, column string) ([]string, error) {
	card := p.taskInColumn(task, column)
	if err := p.waitVisible(card, fmt.Sprintf("task card %q", task), "reading its tags", 0); err != nil {
		return nil, err
	}
	tags, err := p.taskTags(card).All()
	if err != nil {
		return nil, fmt.Errorf("listing tags of %q: %w", task, err)
	}
	texts := make([]string, 0, len(tags))
	for _, tag := range tags {
		text, err := p.getText(tag)
		if err != nil {
			return nil, fmt.Errorf("reading tag of %q: %w", task, err)
		}
		texts = append(texts, text)
	}
	return locator.FilterTags(texts), nil
}

// VerifyTaskTags requires the task's tags to equal expectedTags as a
// case-insensitive set: a missing tag fails, and so does an extra one.
func (p *BoardPage) VerifyTaskTags(task string, expectedTags []string, column string) error {
	actual, err := p.TaskTagNames(task, column)
	if err != nil {
		return err
	}
	return CompareTags(task, actual, expectedTags)
}

func (p *BoardPage) currentProjectOrUnknown() string {
	name, err := p.CurrentProjectName()
	if err != nil || name == "" {
		return "unknown"
	}
	return fmt.Sprintf("%q", name)
}
