package dto

import "github.com/noah-isme/sma-timetable/internal/models"

// JobEnqueuedResponse acknowledges an accepted asynchronous solve.
type JobEnqueuedResponse struct {
	JobID  string           `json:"job_id"`
	Status models.JobStatus `json:"status"`
}
