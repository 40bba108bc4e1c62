// Package buildcache records what each build wrote so unchanged output files
// are not rewritten, and keeps a history of builds.
package buildcache

import "time"

// Status is the outcome of a build.
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Build is one row of the build history.
type Build struct {
	ID          string    `json:"id"`
	Environment string    `json:"environment"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at,omitzero"`
	Status      Status    `json:"status"`
	Pages       int       `json:"pages"`
	Written     int       `json:"written"`
	Skipped     int       `json:"skipped"`
	Error       string    `json:"error,omitempty"`
}

// Duration is the wall time of a finished build, or zero.
func (b Build) Duration() time.Duration {
	if b.FinishedAt.IsZero() {
		return 0
	}
	return b.FinishedAt.Sub(b.StartedAt)
}

// Output is the recorded state of one output file.
type Output struct {
	Path      string
	Hash      string
	Size      int64
	BuildID   string
	UpdatedAt time.Time
}
