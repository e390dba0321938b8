// Package kanbanstub serves a small stand-in for the board application. It
// renders the same DOM shapes the page objects rely on, so the suite and its
// own tests can run without the hosted demo.
package kanbanstub

import (
	"github.com/gotrs-io/kanban-e2e/internal/kanban"
)

// Task is one card on a board.
type Task struct {
	Title       string
	Description string
	Column      kanban.Column
	Tags        []kanban.Tag
	// Due renders as a date on the card, e.g. 3/24/2024.
	Due string
}

// Project is one board and its tasks.
type Project struct {
	Name     kanban.Project
	Subtitle string
	Tasks    []Task
}

// Board is everything the stub serves.
type Board struct {
	Projects []Project
}

// Project looks up a project by name.
func (b Board) Project(name kanban.Project) (Project, bool) {
	for _, p := range b.Projects {
		if p.Name == name {
			return p, true
		}
	}
	return Project{}, false
}

// TasksIn returns the project's tasks in column, in board order.
func (p Project) TasksIn(column kanban.Column) []Task {
	var tasks []Task
	for _, t := range p.Tasks {
		if t.Column == column {
			tasks = append(tasks, t)
		}
	}
	return tasks
}

// Counts returns the number of tasks per column.
func (p Project) Counts() map[kanban.Column]int {
	counts := make(map[kanban.Column]int, len(kanban.Columns()))
	for _, c := range kanban.Columns() {
		counts[c] = 0
	}
	for _, t := range p.Tasks {
		counts[t.Column]++
	}
	return counts
}

// DefaultBoard mirrors the hosted demo: three projects whose tasks match the
// repository dataset.
func DefaultBoard() Board {
	return Board{Projects: []Project{
		{
			Name:     kanban.ProjectWebApplication,
			Subtitle: "Main web platform",
			Tasks: []Task{
				{
					Title:       "Implement user authentication",
					Description: "Add login and signup functionality",
					Column:      kanban.ColumnToDo,
					Tags:        []kanban.Tag{kanban.TagFeature, kanban.TagHighPriority},
					Due:         "3/24/2024",
				},
				{
					Title:       "Fix navigation bug",
					Description: "Menu does not close on mobile",
					Column:      kanban.ColumnToDo,
					Tags:        []kanban.Tag{kanban.TagBug},
					Due:         "3/20/2024",
				},
				{
					Title:       "Design system updates",
					Description: "Update component library",
					Column:      kanban.ColumnInProgress,
					Tags:        []kanban.Tag{kanban.TagDesign},
					Due:         "3/28/2024",
				},
				{
					Title:       "API integration",
					Description: "Connect to payment gateway",
					Column:      kanban.ColumnReview,
					Tags:        []kanban.Tag{kanban.TagFeature, kanban.TagHighPriority},
					Due:         "3/22/2024",
				},
				{
					Title:       "Update documentation",
					Description: "Refresh API reference pages",
					Column:      kanban.ColumnDone,
					Due:         "3/15/2024",
				},
			},
		},
		{
			Name:     kanban.ProjectMobileApplication,
			Subtitle: "Native mobile app",
			Tasks: []Task{
				{
					Title:       "Push notification system",
					Description: "Implement push notifications",
					Column:      kanban.ColumnToDo,
					Tags:        []kanban.Tag{kanban.TagFeature},
					Due:         "3/30/2024",
				},
				{
					Title:       "Offline mode",
					Description: "Cache data for offline use",
					Column:      kanban.ColumnInProgress,
					Tags:        []kanban.Tag{kanban.TagFeature, kanban.TagHighPriority},
					Due:         "4/2/2024",
				},
				{
					Title:       "App icon design",
					Description: "Create app icons for stores",
					Column:      kanban.ColumnDone,
					Tags:        []kanban.Tag{kanban.TagDesign},
					Due:         "3/10/2024",
				},
			},
		},
		{
			Name:     kanban.ProjectMarketingCampaign,
			Subtitle: "Q2 launch campaign",
			Tasks: []Task{
				{
					Title:       "Social media calendar",
					Description: "Plan posts for the launch month",
					Column:      kanban.ColumnToDo,
					Tags:        []kanban.Tag{kanban.TagMarketing},
					Due:         "4/1/2024",
				},
				{
					Title:       "Email campaign",
					Description: "Draft the launch newsletter",
					Column:      kanban.ColumnInProgress,
					Tags:        []kanban.Tag{kanban.TagMarketing, kanban.TagHighPriority},
					Due:         "3/27/2024",
				},
				{
					Title:       "Landing page copy",
					Description: "Final review of launch copy",
					Column:      kanban.ColumnReview,
					Tags:        []kanban.Tag{kanban.TagMarketing, kanban.TagDesign},
					Due:         "3/25/2024",
				},
			},
		},
	}}
}
