// Package dataset loads the declarative task verification cases. A dataset is
// read once when the suite is built and never changes afterwards.
package dataset

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"

	"github.com/gotrs-io/kanban-e2e/internal/kanban"
)

//go:embed schema.json
var schemaJSON []byte

var schemaLoader = gojsonschema.NewBytesLoader(schemaJSON)

// Format is the encoding of a dataset document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// TestCase is one task verification: open Project, find TaskName in
// ExpectedColumn and compare its tags with ExpectedTags.
type TestCase struct {
	ID             string         `json:"id" yaml:"id"`
	Name           string         `json:"name" yaml:"name"`
	Project        kanban.Project `json:"project" yaml:"project"`
	TaskName       string         `json:"taskName" yaml:"taskName"`
	ExpectedColumn kanban.Column  `json:"expectedColumn" yaml:"expectedColumn"`
	ExpectedTags   []string       `json:"expectedTags" yaml:"expectedTags"`
}

// Dataset is the document root.
type Dataset struct {
	TestCases []TestCase `json:"testCases" yaml:"testCases"`
}

// ValidationError lists every problem found in a dataset document.
type ValidationError struct {
	Source   string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid dataset %s: %s", e.Source, strings.Join(e.Problems, "; "))
}

// FormatFromPath picks the format from a file extension. Anything that is
// not .yaml or .yml is treated as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Load reads and validates the dataset at path.
func Load(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	return Parse(path, data, FormatFromPath(path))
}

// Parse validates data against the dataset schema, then decodes it and checks
// the constraints a schema cannot express: unique ids and tags that are
// unique regardless of case. source names the document in errors.
func Parse(source string, data []byte, format Format) (*Dataset, error) {
	var raw any
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse dataset %s: %w", source, err)
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse dataset %s: %w", source, err)
		}
	default:
		return nil, fmt.Errorf("unsupported dataset format: %s", format)
	}

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to validate dataset %s: %w", source, err)
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			problems = append(problems, e.String())
		}
		return nil, &ValidationError{Source: source, Problems: problems}
	}

	// The schema has already vetted the shape, so a round trip through JSON
	// decodes YAML and JSON input the same way.
	normalized, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize dataset %s: %w", source, err)
	}
	var ds Dataset
	if err := json.Unmarshal(normalized, &ds); err != nil {
		return nil, fmt.Errorf("failed to decode dataset %s: %w", source, err)
	}

	if problems := ds.check(); len(problems) > 0 {
		return nil, &ValidationError{Source: source, Problems: problems}
	}
	return &ds, nil
}

func (d *Dataset) check() []string {
	var problems []string
	seen := make(map[string]int, len(d.TestCases))
	for i, tc := range d.TestCases {
		if prev, ok := seen[tc.ID]; ok {
			problems = append(problems, fmt.Sprintf("testCases.%d: id %s already used by testCases.%d", i, tc.ID, prev))
		} else {
			seen[tc.ID] = i
		}
		tags := make(map[string]string, len(tc.ExpectedTags))
		for _, tag := range tc.ExpectedTags {
			key := cases.Fold().String(tag)
			if first, ok := tags[key]; ok {
				problems = append(problems, fmt.Sprintf("testCases.%d: tag %q duplicates %q", i, tag, first))
				continue
			}
			tags[key] = tag
		}
	}
	return problems
}

// Len returns the number of test cases.
func (d *Dataset) Len() int { return len(d.TestCases) }

// Find returns the test case with the given id.
func (d *Dataset) Find(id string) (TestCase, bool) {
	for _, tc := range d.TestCases {
		if tc.ID == id {
			return tc, true
		}
	}
	return TestCase{}, false
}
