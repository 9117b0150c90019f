package dto

import (
	"time"

	"github.com/noah-isme/sma-timetable/internal/models"
)

// SolveRequest tunes one solve run. Omitted limits fall back to the
// configured defaults; zero never reaches the solver.
type SolveRequest struct {
	TimeLimitSeconds *int   `json:"time_limit_seconds" validate:"omitempty,min=1,max=600"`
	NodeLimit        *int64 `json:"node_limit" validate:"omitempty,min=1,max=1000000000"`
}

// SolveResponse reports a finished synchronous solve.
type SolveResponse struct {
	GeneratedAt time.Time           `json:"generated_at"`
	Summary     models.SolveSummary `json:"summary"`
}
