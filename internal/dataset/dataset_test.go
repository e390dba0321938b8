package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gotrs-io/kanban-e2e/internal/kanban"
)

const validJSON = `{
  "testCases": [
    {
      "id": "TC001",
      "name": "Verify user authentication task",
      "project": "Web Application",
      "taskName": "Implement user authentication",
      "expectedColumn": "To Do",
      "expectedTags": ["Feature", "High Priority"]
    },
    {
      "id": "TC002",
      "name": "Verify calendar task",
      "project": "Marketing Campaign",
      "taskName": "Social media calendar",
      "expectedColumn": "To Do",
      "expectedTags": []
    }
  ]
}`

const validYAML = `testCases:
  - id: TC001
    name: Verify user authentication task
    project: Web Application
    taskName: Implement user authentication
    expectedColumn: To Do
    expectedTags: [Feature, High Priority]
`

func TestParse(t *testing.T) {
	ds, err := Parse("inline", []byte(validJSON), FormatJSON)
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())

	first := ds.TestCases[0]
	assert.Equal(t, "TC001", first.ID)
	assert.Equal(t, kanban.ProjectWebApplication, first.Project)
	assert.Equal(t, kanban.ColumnToDo, first.ExpectedColumn)
	assert.Equal(t, []string{"Feature", "High Priority"}, first.ExpectedTags)
	assert.Equal(t, "TC002", ds.TestCases[1].ID, "order is preserved")
	assert.Empty(t, ds.TestCases[1].ExpectedTags)
}

func TestParseYAML(t *testing.T) {
	fromYAML, err := Parse("inline.yaml", []byte(validYAML), FormatYAML)
	require.NoError(t, err)
	fromJSON, err := Parse("inline.json", []byte(validJSON), FormatJSON)
	require.NoError(t, err)

	assert.Equal(t, fromJSON.TestCases[0], fromYAML.TestCases[0])
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		problem string
	}{
		{
			"missing collection",
			`{"cases": []}`,
			"testCases",
		},
		{
			"bad id",
			`{"testCases": [{"id": "T1", "name": "n", "project": "Web Application", "taskName": "t", "expectedColumn": "Done", "expectedTags": []}]}`,
			"testCases.0.id",
		},
		{
			"unknown project",
			`{"testCases": [{"id": "TC001", "name": "n", "project": "Intranet", "taskName": "t", "expectedColumn": "Done", "expectedTags": []}]}`,
			"testCases.0.project",
		},
		{
			"unknown column",
			`{"testCases": [{"id": "TC001", "name": "n", "project": "Web Application", "taskName": "t", "expectedColumn": "Backlog", "expectedTags": []}]}`,
			"testCases.0.expectedColumn",
		},
		{
			"unknown tag",
			`{"testCases": [{"id": "TC001", "name": "n", "project": "Web Application", "taskName": "t", "expectedColumn": "Done", "expectedTags": ["Critical"]}]}`,
			"testCases.0.expectedTags.0",
		},
		{
			"missing field",
			`{"testCases": [{"id": "TC001", "name": "n", "project": "Web Application", "expectedColumn": "Done", "expectedTags": []}]}`,
			"taskName",
		},
		{
			"duplicate id",
			`{"testCases": [
				{"id": "TC001", "name": "a", "project": "Web Application", "taskName": "t", "expectedColumn": "Done", "expectedTags": []},
				{"id": "TC001", "name": "b", "project": "Web Application", "taskName": "u", "expectedColumn": "Done", "expectedTags": []}
			]}`,
			"testCases.1: id TC001 already used by testCases.0",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("inline", []byte(tt.doc), FormatJSON)
			require.Error(t, err)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %T: %v", err, err)
			assert.Contains(t, verr.Error(), tt.problem)
		})
	}
}

func TestParseDuplicateTagsIgnoringCase(t *testing.T) {
	// The schema enum is case sensitive, so the duplicate check is exercised
	// on a decoded dataset directly.
	ds := &Dataset{TestCases: []TestCase{
		{ID: "TC001", ExpectedTags: []string{"Feature", "feature"}},
	}}
	problems := ds.check()
	require.Len(t, problems, 1)
	assert.Equal(t, `testCases.0: tag "feature" duplicates "Feature"`, problems[0])
}

func TestParseMalformed(t *testing.T) {
	_, err := Parse("broken", []byte(`{"testCases": [`), FormatJSON)
	require.Error(t, err)
	var verr *ValidationError
	assert.False(t, errors.As(err, &verr))

	_, err = Parse("broken", []byte("testCases: [\n"), FormatYAML)
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "cases.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(validJSON), 0o644))
	ds, err := Load(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Len())

	yamlPath := filepath.Join(dir, "cases.yml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(validYAML), 0o644))
	ds, err = Load(yamlPath)
	require.NoError(t, err)
	tc, ok := ds.Find("TC001")
	require.True(t, ok)
	assert.Equal(t, "Implement user authentication", tc.TaskName)

	_, err = Load(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRepositoryDataset(t *testing.T) {
	ds, err := Load(filepath.Join("..", "..", "data", "test-cases.json"))
	require.NoError(t, err)
	require.NotZero(t, ds.Len())

	tc, ok := ds.Find("TC001")
	require.True(t, ok)
	assert.Equal(t, kanban.ProjectWebApplication, tc.Project)
	assert.Equal(t, "Implement user authentication", tc.TaskName)
	assert.Equal(t, kanban.ColumnToDo, tc.ExpectedColumn)
	assert.ElementsMatch(t, []string{"Feature", "High Priority"}, tc.ExpectedTags)
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatFromPath("cases.YAML"))
	assert.Equal(t, FormatYAML, FormatFromPath("cases.yml"))
	assert.Equal(t, FormatJSON, FormatFromPath("cases.json"))
	assert.Equal(t, FormatJSON, FormatFromPath("cases"))
}
