package store

// Row structs mirror one parsed CSV record each. Constraints live in
// validate tags and are checked right after parsing, so a bad record is
// reported with its file and line before it can reach the solver.

type teacherRow struct {
	ID   string `validate:"required"`
	Name string `validate:"required"`
}

type classRow struct {
	ID   string `validate:"required"`
	Name string `validate:"required"`
	Size int    `validate:"gte=1"`
}

type roomRow struct {
	ID       string `validate:"required"`
	Name     string `validate:"required"`
	Capacity int    `validate:"gte=1"`
}

type subjectRow struct {
	ID   string `validate:"required"`
	Name string `validate:"required"`
}

type curriculumRow struct {
	LineID         string `validate:"required"`
	ClassID        string `validate:"required"`
	SubjectID      string `validate:"required"`
	TeacherID      string `validate:"required"`
	PeriodsPerWeek int    `validate:"gte=1"`
	RoomID         string
}

type timeslotRow struct {
	Day    int `validate:"gte=1"`
	Period int `validate:"gte=1"`
}

type unavailabilityRow struct {
	TeacherID string `validate:"required"`
	Day       int    `validate:"gte=1"`
	Period    int    `validate:"gte=1"`
}
