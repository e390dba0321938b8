// Package version provides build-time version information for kanban-e2e.
// These variables are set at build time via -ldflags.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Build-time variables set via ldflags
var (
	// Version is the semantic version or branch name if not a tagged build
	Version = "dev"

	// GitCommit is the short git commit SHA
	GitCommit = "unknown"

	// BuildDate is the build timestamp
	BuildDate = "unknown"
)

// Info contains structured version information.
type Info struct {
	Version    string `json:"version"`
	GitCommit  string `json:"git_commit"`
	BuildDate  string `json:"build_date"`
	GoVersion  string `json:"go_version"`
	Playwright string `json:"playwright"`
}

// playwrightModule is the driver binding whose version decides which
// browser builds are installed.
const playwrightModule = "github.com/playwright-community/playwright-go"

// GetInfo returns the current version info.
func GetInfo() Info {
	info := Info{
		Version:    Version,
		GitCommit:  GitCommit,
		BuildDate:  BuildDate,
		GoVersion:  runtime.Version(),
		Playwright: "unknown",
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, dep := range bi.Deps {
			if dep.Path == playwrightModule {
				info.Playwright = dep.Version
			}
		}
	}
	return info
}

// String returns a human-readable version string, e.g. "v0.2.0 (abc1234)".
func String() string {
	return fmt.Sprintf("%s (%s)", Version, GitCommit)
}

// Full returns the full version string with all details.
func Full() string {
	i := GetInfo()
	return fmt.Sprintf("%s (%s) built %s with %s, playwright-go %s", i.Version, i.GitCommit, i.BuildDate, i.GoVersion, i.Playwright)
}
