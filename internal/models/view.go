package models

import "time"

// AssignmentRow is one scheduled session flattened for listing and export,
// with names resolved for display.
type AssignmentRow struct {
	LineID      string `json:"line_id"`
	Occurrence  int    `json:"occurrence"`
	ClassID     string `json:"class_id"`
	ClassName   string `json:"class_name"`
	SubjectID   string `json:"subject_id"`
	SubjectName string `json:"subject_name"`
	TeacherID   string `json:"teacher_id"`
	TeacherName string `json:"teacher_name"`
	Day         int    `json:"day"`
	Period      int    `json:"period"`
	RoomID      string `json:"room_id"`
}

// GridCell is one occupied cell of a timetable grid. Class views fill
// TeacherName, teacher views fill ClassName.
type GridCell struct {
	SubjectID   string `json:"subject_id"`
	SubjectName string `json:"subject_name"`
	TeacherID   string `json:"teacher_id,omitempty"`
	TeacherName string `json:"teacher_name,omitempty"`
	ClassID     string `json:"class_id,omitempty"`
	ClassName   string `json:"class_name,omitempty"`
	RoomID      string `json:"room_id"`
}

// TimetableGrid is a day-by-period matrix for one class or teacher.
// Cells[i][j] corresponds to Days[i] and Periods[j]; empty cells are nil.
type TimetableGrid struct {
	OwnerID   string       `json:"owner_id"`
	OwnerName string       `json:"owner_name"`
	Days      []int        `json:"days"`
	Periods   []int        `json:"periods"`
	Cells     [][]*GridCell `json:"cells"`
}

// SolveSummary captures the outcome and search effort of one solve.
type SolveSummary struct {
	Outcome       string `json:"outcome"`
	Sessions      int    `json:"sessions"`
	Nodes         int64  `json:"nodes"`
	Backtracks    int64  `json:"backtracks"`
	ElapsedMillis int64  `json:"elapsed_ms"`
}

// Solve outcomes as recorded in summaries, job results and metrics.
const (
	OutcomeSuccess       = "success"
	OutcomeInfeasible    = "infeasible"
	OutcomeConfigInvalid = "config_invalid"
	OutcomeAborted       = "aborted"
	OutcomeError         = "error"
)

// TimetableView is the retained result of the latest successful solve.
type TimetableView struct {
	GeneratedAt time.Time       `json:"generated_at"`
	Summary     SolveSummary    `json:"summary"`
	Rows        []AssignmentRow `json:"rows"`
}
