package models

import "fmt"

// SessionKey identifies one occurrence of a curriculum line. A line with
// periods_per_week = k expands into occurrences 0..k-1.
type SessionKey struct {
	LineID     string `json:"line_id"`
	Occurrence int    `json:"occurrence"`
}

// String renders the key as "lineID#occurrence".
func (k SessionKey) String() string {
	return fmt.Sprintf("%s#%d", k.LineID, k.Occurrence)
}

// Less orders keys by line id, then occurrence. This is the MRV tie-break
// order, so it must stay a total order over all sessions.
func (k SessionKey) Less(o SessionKey) bool {
	if k.LineID != o.LineID {
		return k.LineID < o.LineID
	}
	return k.Occurrence < o.Occurrence
}

// Session is one required occurrence of a curriculum line, needing exactly
// one timeslot and one room.
type Session struct {
	Key         SessionKey `json:"key"`
	ClassID     string     `json:"class_id"`
	SubjectID   string     `json:"subject_id"`
	TeacherID   string     `json:"teacher_id"`
	FixedRoomID string     `json:"fixed_room_id,omitempty"`
}

// Domain holds a session's static candidates: the timeslots its teacher can
// attend and the rooms it may use. Both slices are sorted ascending; the
// candidate value set is their cross product.
type Domain struct {
	Slots   []Timeslot `json:"slots"`
	RoomIDs []string   `json:"room_ids"`
}

// Size returns the number of (slot, room) pairs in the static domain.
func (d Domain) Size() int {
	return len(d.Slots) * len(d.RoomIDs)
}

// Placement is the value assigned to a session: one slot and one room.
type Placement struct {
	Slot   Timeslot `json:"slot"`
	RoomID string   `json:"room_id"`
}

// Solution maps every session to its placement. It is only ever complete:
// a failed search returns no Solution at all.
type Solution struct {
	Assignments map[SessionKey]Placement `json:"-"`
}
