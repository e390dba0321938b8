package testutil

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

// recorder captures how unavailable ended a test.
type recorder struct {
	testing.TB
	skipped bool
	fatal   bool
}

func (r *recorder) Helper() {}
func (r *recorder) Skipf(string, ...any) { r.skipped = true }
func (r *recorder) Fatalf(string, ...any) { r.fatal = true }

func TestUnavailableSkipsByDefault(t *testing.T) {
	t.Setenv(RequireBrowserEnv, "")
	r := &recorder{TB: t}
	unavailable(r, errors.New("driver not installed"))
	assert.True(t, r.skipped)
	assert.False(t, r.fatal)
}

func TestUnavailableFailsWhenRequired(t *testing.T) {
	t.Setenv(RequireBrowserEnv, "1")
	r := &recorder{TB: t}
	unavailable(r, errors.New("driver not installed"))
	assert.True(t, r.fatal)
	assert.False(t, r.skipped)
}
