package solver

import (
	"fmt"
	"sort"

	"github.com/noah-isme/sma-timetable/internal/models"
)

// Violation dimensions, one per hard constraint.
const (
	DimensionTeacher      = "TEACHER"
	DimensionClass        = "CLASS"
	DimensionRoom         = "ROOM"
	DimensionAvailability = "AVAILABILITY"
	DimensionCapacity     = "CAPACITY"
	DimensionCoverage     = "COVERAGE"
)

// Violation describes one broken constraint in a candidate solution.
type Violation struct {
	Dimension string `json:"dimension"`
	Message   string `json:"message"`
}

// VerifySolution checks a candidate solution against every hard constraint
// independently of the search: exact coverage (each session placed exactly
// once, nothing extra), placements inside the grid, teacher availability,
// fixed rooms honoured, room capacity for free-room sessions, and no
// teacher, class or room claimed twice in one slot. It returns all
// violations found, in session order, so callers can audit an exported
// timetable end to end.
func VerifySolution(ds *models.Dataset, sessions []models.Session, sol *models.Solution) []Violation {
	var violations []Violation
	add := func(dim, format string, args ...any) {
		violations = append(violations, Violation{Dimension: dim, Message: fmt.Sprintf(format, args...)})
	}

	if sol == nil || sol.Assignments == nil {
		add(DimensionCoverage, "no solution to verify")
		return violations
	}

	idx := ds.Index()
	teacherSeen := make(map[occupancy]models.SessionKey)
	classSeen := make(map[occupancy]models.SessionKey)
	roomSeen := make(map[occupancy]models.SessionKey)

	matched := 0
	for _, sess := range sessions {
		p, ok := sol.Assignments[sess.Key]
		if !ok {
			add(DimensionCoverage, "session %s has no placement", sess.Key)
			continue
		}
		matched++

		if !idx.SlotSet[p.Slot] {
			add(DimensionCoverage, "session %s placed at %s, which is outside the grid", sess.Key, p.Slot)
		}
		if idx.Unavailable[sess.TeacherID][p.Slot] {
			add(DimensionAvailability, "teacher %s is unavailable at %s but session %s is placed there",
				sess.TeacherID, p.Slot, sess.Key)
		}

		room, roomKnown := idx.Rooms[p.RoomID]
		if !roomKnown {
			add(DimensionRoom, "session %s placed in unknown room %s", sess.Key, p.RoomID)
		}
		if sess.FixedRoomID != "" {
			if p.RoomID != sess.FixedRoomID {
				add(DimensionRoom, "session %s must use room %s, got %s", sess.Key, sess.FixedRoomID, p.RoomID)
			}
		} else if roomKnown {
			class := idx.Classes[sess.ClassID]
			if room.Capacity < class.Size {
				add(DimensionCapacity, "room %s (capacity %d) cannot hold class %s (size %d) for session %s",
					room.ID, room.Capacity, class.ID, class.Size, sess.Key)
			}
		}

		if prev, dup := teacherSeen[occupancy{sess.TeacherID, p.Slot}]; dup {
			add(DimensionTeacher, "teacher %s booked twice at %s (sessions %s and %s)",
				sess.TeacherID, p.Slot, prev, sess.Key)
		} else {
			teacherSeen[occupancy{sess.TeacherID, p.Slot}] = sess.Key
		}
		if prev, dup := classSeen[occupancy{sess.ClassID, p.Slot}]; dup {
			add(DimensionClass, "class %s booked twice at %s (sessions %s and %s)",
				sess.ClassID, p.Slot, prev, sess.Key)
		} else {
			classSeen[occupancy{sess.ClassID, p.Slot}] = sess.Key
		}
		if prev, dup := roomSeen[occupancy{p.RoomID, p.Slot}]; dup {
			add(DimensionRoom, "room %s booked twice at %s (sessions %s and %s)",
				p.RoomID, p.Slot, prev, sess.Key)
		} else {
			roomSeen[occupancy{p.RoomID, p.Slot}] = sess.Key
		}
	}

	if len(sol.Assignments) > matched {
		known := make(map[models.SessionKey]bool, len(sessions))
		for _, sess := range sessions {
			known[sess.Key] = true
		}
		var extras []models.SessionKey
		for key := range sol.Assignments {
			if !known[key] {
				extras = append(extras, key)
			}
		}
		sort.Slice(extras, func(i, j int) bool { return extras[i].Less(extras[j]) })
		for _, key := range extras {
			add(DimensionCoverage, "placement for unknown session %s", key)
		}
	}

	return violations
}
