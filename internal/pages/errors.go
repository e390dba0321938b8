package pages

import (
	"fmt"
	"strings"
)

// PreconditionError reports an element that was not visible within the
// bounded wait before an action was attempted on it.
type PreconditionError struct {
	Element string
	Action  string
	Err     error
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%q should be visible before %s: %v", e.Element, e.Action, e.Err)
}

func (e *PreconditionError) Unwrap() error { return e.Err }

// AssertionError reports page content that does not match what was expected.
// Both sides are embedded so a failure can be read without re-running.
type AssertionError struct {
	Subject  string
	Expected string
	Actual   string
	Err      error
}

func (e *AssertionError) Error() string {
	var b strings.Builder
	b.WriteString(e.Subject)
	if e.Expected != "" || e.Actual != "" {
		fmt.Fprintf(&b, ": expected %s, actual %s", e.Expected, e.Actual)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *AssertionError) Unwrap() error { return e.Err }

// Assertf builds an AssertionError comparing two rendered values.
func Assertf(expected, actual any, format string, args ...any) *AssertionError {
	return &AssertionError{
		Subject:  fmt.Sprintf(format, args...),
		Expected: fmt.Sprintf("%v", expected),
		Actual:   fmt.Sprintf("%v", actual),
	}
}

// listString renders a string slice as [a, b, c].
func listString(items []string) string {
	return "[" + strings.Join(items, ", ") + "]"
}
