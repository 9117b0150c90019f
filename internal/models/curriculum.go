package models

// CurriculumLine states that a class takes a subject with a teacher for a
// number of periods per week. An empty FixedRoomID leaves room choice to
// the solver; a non-empty one pins every occurrence to that room and
// bypasses the capacity check.
type CurriculumLine struct {
	ID             string `json:"id"`
	ClassID        string `json:"class_id"`
	SubjectID      string `json:"subject_id"`
	TeacherID      string `json:"teacher_id"`
	PeriodsPerWeek int    `json:"periods_per_week"`
	FixedRoomID    string `json:"fixed_room_id,omitempty"`
}
