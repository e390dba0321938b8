package locator

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// TagMaxLength is the length at which text stops being treated as a tag.
const TagMaxLength = 20

// DatePattern matches due dates rendered on cards, e.g. 3/24/2024.
var DatePattern = regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{4}`)

var countPattern = regexp.MustCompile(`\((\d+)\)`)

// ColumnHeaderPattern matches a header reading "<name> (<count>)" exactly.
func ColumnHeaderPattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`^` + regexp.QuoteMeta(name) + `\s+\(\d+\)$`)
}

// AnyColumnHeaderPattern matches the header of any of the given columns.
func AnyColumnHeaderPattern(names ...string) *regexp.Regexp {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = regexp.QuoteMeta(n)
	}
	return regexp.MustCompile(`^(?:` + strings.Join(quoted, "|") + `)\s+\(\d+\)$`)
}

// ParseColumnCount extracts the parenthesised count from header text. It
// returns -1 when the text carries no count.
func ParseColumnCount(text string) int {
	m := countPattern.FindStringSubmatch(text)
	if m == nil {
		return -1
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return -1
	}
	return n
}

// IsTagText reports whether text looks like a tag label: non-empty, shorter
// than TagMaxLength and free of anything date-like.
func IsTagText(text string) bool {
	t := strings.TrimSpace(text)
	if t == "" {
		return false
	}
	if utf8.RuneCountInString(t) >= TagMaxLength {
		return false
	}
	if DatePattern.MatchString(t) || strings.Contains(t, "/") {
		return false
	}
	return true
}

// FilterTags trims texts and keeps those that pass IsTagText, in order.
func FilterTags(texts []string) []string {
	tags := make([]string, 0, len(texts))
	for _, t := range texts {
		if IsTagText(t) {
			tags = append(tags, strings.TrimSpace(t))
		}
	}
	return tags
}
