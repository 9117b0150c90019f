package solver

import (
	"fmt"
	"sort"

	"github.com/noah-isme/sma-timetable/internal/models"
	appErrors "github.com/noah-isme/sma-timetable/pkg/errors"
)

// ExpandAndComputeDomains expands the curriculum into sessions and computes
// each session's static domain:
//
//   - timeslot domain: the full grid minus the teacher's unavailable slots,
//     sorted ascending by (day, period);
//   - room domain: the fixed room alone when the line pins one (capacity is
//     not checked for fixed rooms), otherwise every room whose capacity
//     covers the class size, sorted ascending by id.
//
// It fails fast with CONFIG_INVALID when the grid is empty, a line has
// periods_per_week < 1, a reference does not resolve, or any session's slot
// or room domain comes out empty. The returned domains slice is parallel to
// the sessions slice.
func ExpandAndComputeDomains(ds *models.Dataset) ([]models.Session, []models.Domain, error) {
	if ds == nil || len(ds.Timeslots) == 0 {
		return nil, nil, appErrors.Clone(appErrors.ErrConfigInvalid, "timeslot grid is empty")
	}

	idx := ds.Index()
	if err := checkReferences(ds, idx); err != nil {
		return nil, nil, err
	}

	gridSlots := make([]models.Timeslot, len(ds.Timeslots))
	copy(gridSlots, ds.Timeslots)
	sort.Slice(gridSlots, func(i, j int) bool { return gridSlots[i].Less(gridSlots[j]) })

	sortedRooms := make([]models.Room, len(ds.Rooms))
	copy(sortedRooms, ds.Rooms)
	sort.Slice(sortedRooms, func(i, j int) bool { return sortedRooms[i].ID < sortedRooms[j].ID })

	sessions := Expand(ds.Curriculum)

	// Sessions from the same line share one domain.
	lineDomains := make(map[string]models.Domain, len(ds.Curriculum))
	for _, line := range ds.Curriculum {
		slots := make([]models.Timeslot, 0, len(gridSlots))
		unavailable := idx.Unavailable[line.TeacherID]
		for _, slot := range gridSlots {
			if unavailable[slot] {
				continue
			}
			slots = append(slots, slot)
		}
		if len(slots) == 0 {
			return nil, nil, appErrors.Clone(appErrors.ErrConfigInvalid,
				fmt.Sprintf("curriculum line %s: teacher %s has no available timeslot", line.ID, line.TeacherID))
		}

		var roomIDs []string
		if line.FixedRoomID != "" {
			roomIDs = []string{line.FixedRoomID}
		} else {
			size := idx.Classes[line.ClassID].Size
			for _, room := range sortedRooms {
				if room.Capacity >= size {
					roomIDs = append(roomIDs, room.ID)
				}
			}
			if len(roomIDs) == 0 {
				return nil, nil, appErrors.Clone(appErrors.ErrConfigInvalid,
					fmt.Sprintf("curriculum line %s: no room holds class %s (size %d)", line.ID, line.ClassID, size))
			}
		}

		lineDomains[line.ID] = models.Domain{Slots: slots, RoomIDs: roomIDs}
	}

	domains := make([]models.Domain, len(sessions))
	for i, s := range sessions {
		domains[i] = lineDomains[s.Key.LineID]
	}
	return sessions, domains, nil
}

func checkReferences(ds *models.Dataset, idx *models.DatasetIndex) error {
	for _, line := range ds.Curriculum {
		if line.PeriodsPerWeek < 1 {
			return appErrors.Clone(appErrors.ErrConfigInvalid,
				fmt.Sprintf("curriculum line %s: periods_per_week must be at least 1, got %d", line.ID, line.PeriodsPerWeek))
		}
		if _, ok := idx.Teachers[line.TeacherID]; !ok {
			return appErrors.Clone(appErrors.ErrConfigInvalid,
				fmt.Sprintf("curriculum line %s: unknown teacher %s", line.ID, line.TeacherID))
		}
		if _, ok := idx.Classes[line.ClassID]; !ok {
			return appErrors.Clone(appErrors.ErrConfigInvalid,
				fmt.Sprintf("curriculum line %s: unknown class %s", line.ID, line.ClassID))
		}
		if _, ok := idx.Subjects[line.SubjectID]; !ok {
			return appErrors.Clone(appErrors.ErrConfigInvalid,
				fmt.Sprintf("curriculum line %s: unknown subject %s", line.ID, line.SubjectID))
		}
		if line.FixedRoomID != "" {
			if _, ok := idx.Rooms[line.FixedRoomID]; !ok {
				return appErrors.Clone(appErrors.ErrConfigInvalid,
					fmt.Sprintf("curriculum line %s: unknown fixed room %s", line.ID, line.FixedRoomID))
			}
		}
	}
	return nil
}
