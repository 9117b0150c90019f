package store

import (
	"fmt"

	"github.com/noah-isme/sma-timetable/internal/models"
)

// Validate runs the referential and plausibility checks over a loaded
// dataset. Errors make the instance unsolvable as configured (dangling
// references, duplicate ids, demand that cannot fit the grid); warnings
// flag suspicious but schedulable data. Loading already enforces types and
// per-field bounds, so this layer is about cross-table consistency.
func Validate(ds *models.Dataset) *models.ValidationReport {
	report := &models.ValidationReport{}
	fail := func(table, id, format string, args ...any) {
		report.Errors = append(report.Errors, models.ValidationIssue{
			Table: table, RecordID: id, Message: fmt.Sprintf(format, args...),
		})
	}
	warn := func(table, id, format string, args ...any) {
		report.Warnings = append(report.Warnings, models.ValidationIssue{
			Table: table, RecordID: id, Message: fmt.Sprintf(format, args...),
		})
	}

	checkDuplicates(ds, fail)

	idx := ds.Index()
	gridSize := len(ds.Timeslots)
	if gridSize == 0 {
		fail("timeslots", "", "timeslot grid is empty")
	}

	for _, line := range ds.Curriculum {
		if _, ok := idx.Classes[line.ClassID]; !ok {
			fail("curriculum", line.ID, "class_id %q not found in classes.csv", line.ClassID)
		}
		if _, ok := idx.Subjects[line.SubjectID]; !ok {
			fail("curriculum", line.ID, "subject_id %q not found in subjects.csv", line.SubjectID)
		}
		if _, ok := idx.Teachers[line.TeacherID]; !ok {
			fail("curriculum", line.ID, "teacher_id %q not found in teachers.csv", line.TeacherID)
		}
		if line.FixedRoomID != "" {
			if _, ok := idx.Rooms[line.FixedRoomID]; !ok {
				fail("curriculum", line.ID, "room_id %q not found in rooms.csv", line.FixedRoomID)
			}
		}
		if line.PeriodsPerWeek < 1 {
			fail("curriculum", line.ID, "periods_per_week must be at least 1, got %d", line.PeriodsPerWeek)
		}
	}

	for _, u := range ds.Unavailability {
		if _, ok := idx.Teachers[u.TeacherID]; !ok {
			fail("teacher_unavailability", u.TeacherID, "teacher_id %q not found in teachers.csv", u.TeacherID)
		}
		if gridSize > 0 && !idx.SlotSet[u.Slot] {
			fail("teacher_unavailability", u.TeacherID, "slot %s is not in timeslots.csv", u.Slot)
		}
	}

	checkDemand(ds, idx, gridSize, fail)
	checkUnused(ds, idx, warn)

	return report
}

func checkDuplicates(ds *models.Dataset, fail func(table, id, format string, args ...any)) {
	seen := make(map[string]bool)
	dup := func(table, id string) {
		key := table + "\x00" + id
		if seen[key] {
			fail(table, id, "duplicate id %q", id)
		}
		seen[key] = true
	}
	for _, t := range ds.Teachers {
		dup("teachers", t.ID)
	}
	for _, c := range ds.Classes {
		dup("classes", c.ID)
	}
	for _, r := range ds.Rooms {
		dup("rooms", r.ID)
	}
	for _, s := range ds.Subjects {
		dup("subjects", s.ID)
	}
	for _, l := range ds.Curriculum {
		dup("curriculum", l.ID)
	}

	slotSeen := make(map[models.Timeslot]bool)
	for _, slot := range ds.Timeslots {
		if slotSeen[slot] {
			fail("timeslots", slot.String(), "duplicate timeslot %s", slot)
		}
		slotSeen[slot] = true
	}
}

// checkDemand compares total weekly demand against available slots per
// teacher (grid minus their unavailable slots) and per class (full grid).
// Exceeding either makes the instance infeasible before any search runs.
func checkDemand(ds *models.Dataset, idx *models.DatasetIndex, gridSize int, fail func(table, id, format string, args ...any)) {
	if gridSize == 0 {
		return
	}
	teacherDemand := make(map[string]int)
	classDemand := make(map[string]int)
	for _, line := range ds.Curriculum {
		teacherDemand[line.TeacherID] += line.PeriodsPerWeek
		classDemand[line.ClassID] += line.PeriodsPerWeek
	}
	for _, t := range ds.Teachers {
		available := gridSize - len(idx.Unavailable[t.ID])
		if demand := teacherDemand[t.ID]; demand > available {
			fail("teachers", t.ID, "teacher %s needs %d periods but only %d slots are available", t.ID, demand, available)
		}
	}
	for _, c := range ds.Classes {
		if demand := classDemand[c.ID]; demand > gridSize {
			fail("classes", c.ID, "class %s needs %d periods but the grid has %d slots", c.ID, demand, gridSize)
		}
	}
}

func checkUnused(ds *models.Dataset, idx *models.DatasetIndex, warn func(table, id, format string, args ...any)) {
	taught := make(map[string]bool)
	assigned := make(map[string]bool)
	fixed := make(map[string]bool)
	for _, line := range ds.Curriculum {
		taught[line.SubjectID] = true
		assigned[line.TeacherID] = true
		if line.FixedRoomID != "" {
			fixed[line.FixedRoomID] = true
		}
	}

	minSize := 0
	for i, c := range ds.Classes {
		if i == 0 || c.Size < minSize {
			minSize = c.Size
		}
	}

	for _, t := range ds.Teachers {
		if !assigned[t.ID] {
			warn("teachers", t.ID, "teacher %s has no curriculum lines", t.ID)
		}
	}
	for _, s := range ds.Subjects {
		if !taught[s.ID] {
			warn("subjects", s.ID, "subject %s is never taught", s.ID)
		}
	}
	for _, r := range ds.Rooms {
		if !fixed[r.ID] && len(ds.Classes) > 0 && r.Capacity < minSize {
			warn("rooms", r.ID, "room %s (capacity %d) is too small for every class", r.ID, r.Capacity)
		}
	}
}
