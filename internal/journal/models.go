package journal

import "time"

// RunStatus is the lifecycle state of a run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// EntryStatus is the outcome recorded for one file.
type EntryStatus string

const (
	EntryLinked  EntryStatus = "linked"
	EntrySkipped EntryStatus = "skipped"
	EntryFailed  EntryStatus = "failed"
	EntryIndexed EntryStatus = "indexed"
)

// Run is one invocation of the organizer.
type Run struct {
	ID          string    `json:"id"`
	Mode        string    `json:"mode"`
	SourceRoot  string    `json:"source_root"`
	DestRoot    string    `json:"dest_root,omitempty"`
	IndexPath   string    `json:"index_path,omitempty"`
	Status      RunStatus `json:"status"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at,omitzero"`
	NewFiles    int       `json:"new_files"`
	Linked      int       `json:"linked"`
	Skipped     int       `json:"skipped"`
	Failed      int       `json:"failed"`
	BytesLinked int64     `json:"bytes_linked"`
	Error       string    `json:"error,omitempty"`
}

// Summary carries the final counters of a run.
type Summary struct {
	Status      RunStatus
	NewFiles    int
	Linked      int
	Skipped     int
	Failed      int
	BytesLinked int64
	Error       string
}

// Entry is the recorded outcome for one source file.
type Entry struct {
	ID          int64       `json:"id"`
	RunID       string      `json:"run_id"`
	Source      string      `json:"source"`
	Destination string      `json:"destination"`
	Renamed     bool        `json:"renamed"`
	Status      EntryStatus `json:"status"`
	Size        int64       `json:"size"`
	Error       string      `json:"error,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}
