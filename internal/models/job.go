package models

import "time"

// JobStatus is the lifecycle state of an asynchronous solve job.
type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
)

// SolveJob tracks one queued solve through its lifecycle. Failed jobs keep
// the error code so callers can tell infeasible from aborted from invalid.
type SolveJob struct {
	ID           string        `json:"id"`
	Status       JobStatus     `json:"status"`
	SubmittedAt  time.Time     `json:"submitted_at"`
	StartedAt    *time.Time    `json:"started_at,omitempty"`
	FinishedAt   *time.Time    `json:"finished_at,omitempty"`
	ErrorCode    string        `json:"error_code,omitempty"`
	ErrorMessage string        `json:"error_message,omitempty"`
	Summary      *SolveSummary `json:"summary,omitempty"`
}
