// Package session produces and reads the authenticated session snapshot that
// every board scenario starts from. The snapshot is written once per run by
// Bootstrap and only read afterwards.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// DefaultPath is where the snapshot lives unless configured otherwise.
const DefaultPath = ".auth/user.json"

// Snapshot is a persisted browser session. It is a plain value: scenarios get
// it passed in and hand its Path to the browser when creating a context.
type Snapshot struct {
	Path      string
	CreatedAt time.Time
}

// storageState is the subset of playwright's storage state file that is
// inspected here. Everything else in the file is left to playwright.
type storageState struct {
	Cookies []struct {
		Name    string  `json:"name"`
		Domain  string  `json:"domain"`
		Expires float64 `json:"expires"`
	} `json:"cookies"`
	Origins []struct {
		Origin string `json:"origin"`
	} `json:"origins"`
}

// Load returns the snapshot stored at path. It fails if the file is missing
// or is not a storage state document.
func Load(path string) (Snapshot, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("session snapshot: %w", err)
	}
	if _, err := readState(path); err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Path: path, CreatedAt: info.ModTime()}, nil
}

func readState(path string) (*storageState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("session snapshot: %w", err)
	}
	var state storageState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("session snapshot %s is corrupt: %w", path, err)
	}
	return &state, nil
}

// Age is how long ago the snapshot was written.
func (s Snapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.CreatedAt)
}

// Fresh reports whether the snapshot is younger than maxAge. A non-positive
// maxAge means no snapshot is ever fresh.
func (s Snapshot) Fresh(now time.Time, maxAge time.Duration) bool {
	return maxAge > 0 && s.Age(now) < maxAge
}

// Cookies counts the cookies held by the snapshot.
func (s Snapshot) Cookies() (int, error) {
	state, err := readState(s.Path)
	if err != nil {
		return 0, err
	}
	return len(state.Cookies), nil
}

// Origins lists the origins the snapshot holds local storage for.
func (s Snapshot) Origins() ([]string, error) {
	state, err := readState(s.Path)
	if err != nil {
		return nil, err
	}
	origins := make([]string, 0, len(state.Origins))
	for _, o := range state.Origins {
		origins = append(origins, o.Origin)
	}
	return origins, nil
}
