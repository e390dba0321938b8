// Package kanban holds the fixed vocabulary of the board under test: the
// projects listed in the sidebar, the four columns every project renders and
// the tag labels that may appear on a task card.
package kanban

// Project is the name of a board as shown in the sidebar.
type Project string

const (
	ProjectWebApplication    Project = "Web Application"
	ProjectMobileApplication Project = "Mobile Application"
	ProjectMarketingCampaign Project = "Marketing Campaign"
)

// Column is the name of a task lane on a board.
type Column string

const (
	ColumnToDo       Column = "To Do"
	ColumnInProgress Column = "In Progress"
	ColumnReview     Column = "Review"
	ColumnDone       Column = "Done"
)

// Tag is a categorical label rendered on a task card.
type Tag string

const (
	TagFeature      Tag = "Feature"
	TagBug          Tag = "Bug"
	TagDesign       Tag = "Design"
	TagHighPriority Tag = "High Priority"
	TagMarketing    Tag = "Marketing"
)

// Projects returns the projects in sidebar order.
func Projects() []Project {
	return []Project{ProjectWebApplication, ProjectMobileApplication, ProjectMarketingCampaign}
}

// Columns returns the columns in canonical board order.
func Columns() []Column {
	return []Column{ColumnToDo, ColumnInProgress, ColumnReview, ColumnDone}
}

// Tags returns every known tag label.
func Tags() []Tag {
	return []Tag{TagFeature, TagBug, TagDesign, TagHighPriority, TagMarketing}
}

// ColumnNames returns the canonical column order as plain strings.
func ColumnNames() []string {
	cols := Columns()
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = string(c)
	}
	return names
}

func (p Project) Valid() bool {
	for _, known := range Projects() {
		if p == known {
			return true
		}
	}
	return false
}

func (c Column) Valid() bool {
	for _, known := range Columns() {
		if c == known {
			return true
		}
	}
	return false
}

func (t Tag) Valid() bool {
	for _, known := range Tags() {
		if t == known {
			return true
		}
	}
	return false
}
