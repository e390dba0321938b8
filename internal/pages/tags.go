package pages

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

// NormalizeTag maps a tag label to the form used for comparison: trimmed and
// case folded.
func NormalizeTag(tag string) string {
	return cases.Fold().String(strings.TrimSpace(tag))
}

func tagSet(tags []string) map[string]string {
	set := make(map[string]string, len(tags))
	for _, t := range tags {
		n := NormalizeTag(t)
		if _, ok := set[n]; !ok {
			set[n] = strings.TrimSpace(t)
		}
	}
	return set
}

// CompareTags checks that actual and expected hold the same tags, ignoring
// case and order. Any expected tag that is missing fails first; otherwise any
// extra tag fails. Both lists are embedded in the error.
func CompareTags(task string, actual, expected []string) error {
	have := tagSet(actual)
	want := tagSet(expected)

	var missing, extra []string
	for n, label := range want {
		if _, ok := have[n]; !ok {
			missing = append(missing, label)
		}
	}
	for n, label := range have {
		if _, ok := want[n]; !ok {
			extra = append(extra, label)
		}
	}
	sort.Strings(missing)
	sort.Strings(extra)

	switch {
	case len(missing) > 0:
		return &AssertionError{
			Subject:  fmt.Sprintf("task %q is missing tags %s", task, listString(missing)),
			Expected: listString(expected),
			Actual:   listString(actual),
		}
	case len(extra) > 0:
		return &AssertionError{
			Subject:  fmt.Sprintf("task %q has unexpected tags %s", task, listString(extra)),
			Expected: listString(expected),
			Actual:   listString(actual),
		}
	}
	return nil
}
