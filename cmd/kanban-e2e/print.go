package main

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/gotrs-io/kanban-e2e/internal/suite"
)

var (
	passMark = color.GreenString("✓")
	failMark = color.RedString("✗")
	skipMark = color.YellowString("-")
)

// printer writes one line per result as scenarios finish, which may be
// concurrently.
type printer struct {
	mu  sync.Mutex
	out io.Writer
}

func newPrinter(out io.Writer) *printer {
	return &printer{out: out}
}

func (p *printer) result(r suite.Result) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch r.Status {
	case suite.StatusPassed:
		fmt.Fprintf(p.out, "%s %s/%s %s\n", passMark, r.Stage, r.Scenario, faint(r))
	case suite.StatusSkipped:
		fmt.Fprintf(p.out, "%s %s/%s %s\n", skipMark, r.Stage, r.Scenario, color.YellowString("skipped"))
	default:
		fmt.Fprintf(p.out, "%s %s/%s %s\n", failMark, r.Stage, r.Scenario, faint(r))
		fmt.Fprintf(p.out, "    %s\n", color.RedString(r.Err.Error()))
		for _, s := range r.Screenshots {
			fmt.Fprintf(p.out, "    screenshot: %s\n", s)
		}
		if r.Trace != "" {
			fmt.Fprintf(p.out, "    trace: %s\n", r.Trace)
		}
	}
}

func faint(r suite.Result) string {
	s := r.Duration.Round(time.Millisecond).String()
	if r.Attempts > 1 {
		s = fmt.Sprintf("%s, %d attempts", s, r.Attempts)
	}
	return color.HiBlackString("(%s)", s)
}

func (p *printer) summary(report *suite.Report) {
	p.mu.Lock()
	defer p.mu.Unlock()

	passed := report.Count(suite.StatusPassed)
	failed := report.Count(suite.StatusFailed)
	skipped := report.Count(suite.StatusSkipped)

	status := color.GreenString("PASS")
	if !report.OK() {
		status = color.RedString("FAIL")
	}
	fmt.Fprintf(p.out, "\n%s %d passed, %d failed, %d skipped in %s (run %s)\n",
		status, passed, failed, skipped, report.Duration().Round(time.Millisecond), report.RunID)
}
