package suite

import (
	"time"
)

// Status is the outcome of a scenario or setup stage.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Result records one scenario, or one setup stage, after all attempts.
type Result struct {
	Stage    string
	Scenario string
	Status   Status
	Attempts int
	Duration time.Duration
	Err      error
	// Screenshots taken for failed attempts, in attempt order.
	Screenshots []string
	// Trace recorded during the retry, if any.
	Trace string
}

// Report is the outcome of a run.
type Report struct {
	RunID    string
	Started  time.Time
	Finished time.Time
	Results  []Result
}

// Count returns how many results have status s.
func (r *Report) Count(s Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == s {
			n++
		}
	}
	return n
}

// Failures returns the failed results in run order.
func (r *Report) Failures() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Status == StatusFailed {
			out = append(out, res)
		}
	}
	return out
}

// OK reports whether nothing failed. Skipped scenarios only happen downstream
// of a failure, so a run with skips is never OK.
func (r *Report) OK() bool {
	return r.Count(StatusFailed) == 0 && r.Count(StatusSkipped) == 0
}

// Duration is the wall time of the run.
func (r *Report) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}
