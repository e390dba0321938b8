package browser

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SafeName turns a scenario name into something usable as a file name.
func SafeName(name string) string {
	s := unsafeChars.ReplaceAllString(name, "_")
	s = strings.Trim(s, "_")
	if s == "" {
		return "scenario"
	}
	return s
}

// ScreenshotPath is where the screenshot of a failed attempt is written.
func ScreenshotPath(dir, scenario string, attempt int) string {
	return filepath.Join(dir, "screenshots", fmt.Sprintf("%s_%d.png", SafeName(scenario), attempt))
}

// TracePath is where the trace of a retried scenario is written.
func TracePath(dir, scenario string) string {
	return filepath.Join(dir, "traces", SafeName(scenario)+".zip")
}
