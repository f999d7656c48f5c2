package organizer

import (
	"time"

	"strikeout/internal/journal"
)

// Mode selects what a run does with new files.
type Mode string

const (
	ModeLink      Mode = "link"
	ModeDryRun    Mode = "dry_run"
	ModeIndexOnly Mode = "index"
)

// Status is the outcome for one file.
type Status string

const (
	StatusLinked  Status = "linked"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
	StatusDryRun  Status = "dry_run"
	StatusIndexed Status = "indexed"
)

// FileResult describes what happened to one new source file.
type FileResult struct {
	Source      string `json:"source"`
	Destination string `json:"destination,omitempty"`
	Renamed     bool   `json:"renamed"`
	Status      Status `json:"status"`
	Size        int64  `json:"size"`
	Error       string `json:"error,omitempty"`
}

// Report summarizes a run.
type Report struct {
	RunID       string       `json:"run_id"`
	Mode        Mode         `json:"mode"`
	Source      string       `json:"source"`
	Destination string       `json:"destination,omitempty"`
	IndexPath   string       `json:"index_path"`
	StartedAt   time.Time    `json:"started_at"`
	FinishedAt  time.Time    `json:"finished_at"`
	Files       []FileResult `json:"files"`
	NewFiles    int          `json:"new_files"`
	Linked      int          `json:"linked"`
	Skipped     int          `json:"skipped"`
	Failed      int          `json:"failed"`
	Planned     int          `json:"planned"`
	Indexed     int          `json:"indexed"`
	BytesLinked int64        `json:"bytes_linked"`
}

// Duration returns the wall time of the run.
func (r Report) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

func (r *Report) add(result FileResult) {
	r.Files = append(r.Files, result)
	switch result.Status {
	case StatusLinked:
		r.Linked++
		r.BytesLinked += result.Size
	case StatusSkipped:
		r.Skipped++
	case StatusFailed:
		r.Failed++
	case StatusDryRun:
		r.Planned++
	case StatusIndexed:
		r.Indexed++
	}
}

func (r Report) summary(status journal.RunStatus, runErr error) journal.Summary {
	s := journal.Summary{
		Status:      status,
		NewFiles:    r.NewFiles,
		Linked:      r.Linked,
		Skipped:     r.Skipped,
		Failed:      r.Failed,
		BytesLinked: r.BytesLinked,
	}
	if runErr != nil {
		s.Error = runErr.Error()
	}
	return s
}

func entryStatus(s Status) journal.EntryStatus {
	switch s {
	case StatusLinked:
		return journal.EntryLinked
	case StatusSkipped:
		return journal.EntrySkipped
	case StatusIndexed:
		return journal.EntryIndexed
	default:
		return journal.EntryFailed
	}
}
