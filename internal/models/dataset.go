package models

// UnavailableSlot marks one grid slot a teacher cannot teach in.
type UnavailableSlot struct {
	TeacherID string   `json:"teacher_id"`
	Slot      Timeslot `json:"slot"`
}

// Dataset bundles the seven reference tables in file order. It is loaded
// once by the store, validated at the boundary, and treated as immutable
// for the duration of a solve.
type Dataset struct {
	Teachers       []Teacher         `json:"teachers"`
	Classes        []Class           `json:"classes"`
	Rooms          []Room            `json:"rooms"`
	Subjects       []Subject         `json:"subjects"`
	Curriculum     []CurriculumLine  `json:"curriculum"`
	Timeslots      []Timeslot        `json:"timeslots"`
	Unavailability []UnavailableSlot `json:"unavailability"`
}

// DatasetIndex holds lookup maps derived from a Dataset. Building it once
// keeps the solver and the materializer free of repeated scans.
type DatasetIndex struct {
	Teachers    map[string]Teacher
	Classes     map[string]Class
	Rooms       map[string]Room
	Subjects    map[string]Subject
	Lines       map[string]CurriculumLine
	SlotSet     map[Timeslot]bool
	Unavailable map[string]map[Timeslot]bool
}

// Index derives the lookup maps for the dataset.
func (d *Dataset) Index() *DatasetIndex {
	idx := &DatasetIndex{
		Teachers:    make(map[string]Teacher, len(d.Teachers)),
		Classes:     make(map[string]Class, len(d.Classes)),
		Rooms:       make(map[string]Room, len(d.Rooms)),
		Subjects:    make(map[string]Subject, len(d.Subjects)),
		Lines:       make(map[string]CurriculumLine, len(d.Curriculum)),
		SlotSet:     make(map[Timeslot]bool, len(d.Timeslots)),
		Unavailable: make(map[string]map[Timeslot]bool),
	}
	for _, t := range d.Teachers {
		idx.Teachers[t.ID] = t
	}
	for _, c := range d.Classes {
		idx.Classes[c.ID] = c
	}
	for _, r := range d.Rooms {
		idx.Rooms[r.ID] = r
	}
	for _, s := range d.Subjects {
		idx.Subjects[s.ID] = s
	}
	for _, l := range d.Curriculum {
		idx.Lines[l.ID] = l
	}
	for _, t := range d.Timeslots {
		idx.SlotSet[t] = true
	}
	for _, u := range d.Unavailability {
		set := idx.Unavailable[u.TeacherID]
		if set == nil {
			set = make(map[Timeslot]bool)
			idx.Unavailable[u.TeacherID] = set
		}
		set[u.Slot] = true
	}
	return idx
}

// ValidationIssue points at one offending record.
type ValidationIssue struct {
	Table    string `json:"table"`
	RecordID string `json:"record_id,omitempty"`
	Message  string `json:"message"`
}

// ValidationReport separates hard errors (the solve cannot start) from
// warnings (suspicious but schedulable data).
type ValidationReport struct {
	Errors   []ValidationIssue `json:"errors"`
	Warnings []ValidationIssue `json:"warnings"`
}

// OK reports whether the dataset passed without hard errors.
func (r *ValidationReport) OK() bool {
	return r == nil || len(r.Errors) == 0
}
