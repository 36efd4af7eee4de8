package ledger

import "time"

// Status represents the lifecycle of a run or stage.
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// Run is one build invocation.
type Run struct {
	ID           string
	Species      string
	Release      int
	GTFRelease   int
	Assembly     string
	AssemblyKind string
	BundleDir    string
	Status       Status
	ErrorMessage string
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Duration returns the elapsed time of a finished run, or zero.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() || r.StartedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// StageRecord captures the outcome of one pipeline stage.
type StageRecord struct {
	RunID      string
	Name       string
	Position   int
	Status     Status
	Detail     string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Artifact is a file produced by a run.
type Artifact struct {
	RunID      string
	Stage      string
	Path       string
	Bytes      int64
	SHA256     string
	RecordedAt time.Time
}

// RunFilter narrows ListRuns.
type RunFilter struct {
	Species string
	Limit   int
}
