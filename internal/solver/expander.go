// Package solver implements the timetable core: session expansion, domain
// computation and a deterministic backtracking search with MRV selection.
// The package is pure; it performs no I/O and never mutates its inputs.
package solver

import (
	"github.com/noah-isme/sma-timetable/internal/models"
)

// Expand turns curriculum lines into atomic sessions. A line with
// periods_per_week = k yields exactly k sessions keyed (line id, 0..k-1).
// Order is stable: lines in input order, occurrences ascending. Input is
// assumed validated; lines with periods_per_week < 1 are rejected by
// ExpandAndComputeDomains before expansion.
func Expand(lines []models.CurriculumLine) []models.Session {
	total := 0
	for _, line := range lines {
		if line.PeriodsPerWeek > 0 {
			total += line.PeriodsPerWeek
		}
	}

	sessions := make([]models.Session, 0, total)
	for _, line := range lines {
		for occ := 0; occ < line.PeriodsPerWeek; occ++ {
			sessions = append(sessions, models.Session{
				Key:         models.SessionKey{LineID: line.ID, Occurrence: occ},
				ClassID:     line.ClassID,
				SubjectID:   line.SubjectID,
				TeacherID:   line.TeacherID,
				FixedRoomID: line.FixedRoomID,
			})
		}
	}
	return sessions
}
