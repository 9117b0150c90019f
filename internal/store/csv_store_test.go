package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable/internal/models"
	appErrors "github.com/noah-isme/sma-timetable/pkg/errors"
)

func TestCSVStoreSeedAndLoad(t *testing.T) {
	s := NewCSVStore(t.TempDir(), nil, nil)
	written, err := s.Seed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, written)

	ds, err := s.Load(context.Background())
	require.NoError(t, err)

	assert.Len(t, ds.Teachers, 3)
	assert.Len(t, ds.Classes, 2)
	assert.Len(t, ds.Rooms, 3)
	assert.Len(t, ds.Subjects, 3)
	assert.Len(t, ds.Curriculum, 6)
	assert.Len(t, ds.Timeslots, 30)
	assert.Len(t, ds.Unavailability, 1)

	assert.Equal(t, models.Teacher{ID: "T1", Name: "Rahman"}, ds.Teachers[0])
	assert.Equal(t, models.Class{ID: "C7A", Name: "Class 7A", Size: 28}, ds.Classes[0])
	assert.Equal(t, models.CurriculumLine{
		ID: "L2", ClassID: "C7A", SubjectID: "Sci", TeacherID: "T2", PeriodsPerWeek: 3, FixedRoomID: "Lab",
	}, ds.Curriculum[1])
	assert.Equal(t, models.UnavailableSlot{
		TeacherID: "T2", Slot: models.Timeslot{Day: 5, Period: 6},
	}, ds.Unavailability[0])
}

func TestCSVStoreSeedNeverOverwrites(t *testing.T) {
	dir := t.TempDir()
	writeRaw(t, dir, teachersFile, "teacher_id,name\nT9,Custom\n")

	s := NewCSVStore(dir, nil, nil)
	written, err := s.Seed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, written)

	ds, err := s.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, ds.Teachers, 1)
	assert.Equal(t, "T9", ds.Teachers[0].ID)
}

func TestCSVStoreLoadOrSeedFillsMissingFiles(t *testing.T) {
	dir := t.TempDir()
	s := NewCSVStore(dir, nil, nil)

	_, seeded, err := s.LoadOrSeed(context.Background())
	require.NoError(t, err)
	assert.True(t, seeded)

	_, seeded, err = s.LoadOrSeed(context.Background())
	require.NoError(t, err)
	assert.False(t, seeded)

	require.NoError(t, os.Remove(filepath.Join(dir, curriculumFile)))
	ds, seeded, err := s.LoadOrSeed(context.Background())
	require.NoError(t, err)
	assert.True(t, seeded)
	assert.Len(t, ds.Curriculum, 6)
}

func TestCSVStoreLoadMissingFile(t *testing.T) {
	s := NewCSVStore(t.TempDir(), nil, nil)

	_, err := s.Load(context.Background())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConfigInvalid.Code, appErr.Code)
	assert.Contains(t, appErr.Message, teachersFile)
}

func TestCSVStoreLoadWithoutUnavailability(t *testing.T) {
	dir := t.TempDir()
	s := NewCSVStore(dir, nil, nil)
	mustSeed(t, s)
	require.NoError(t, os.Remove(filepath.Join(dir, unavailabilityFile)))

	ds, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ds.Unavailability)
}

func TestCSVStoreLoadBadNumber(t *testing.T) {
	dir := t.TempDir()
	s := NewCSVStore(dir, nil, nil)
	mustSeed(t, s)
	writeRaw(t, dir, classesFile, "class_id,name,size\nC7A,Class 7A,abc\n")

	_, err := s.Load(context.Background())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConfigInvalid.Code, appErr.Code)
	assert.Contains(t, appErr.Message, classesFile)
	assert.Contains(t, appErr.Message, "line 2")
}

func TestCSVStoreLoadRejectsNonPositiveSize(t *testing.T) {
	dir := t.TempDir()
	s := NewCSVStore(dir, nil, nil)
	mustSeed(t, s)
	writeRaw(t, dir, classesFile, "class_id,name,size\nC7A,Class 7A,0\n")

	_, err := s.Load(context.Background())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConfigInvalid.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "line 2")
}

func TestCSVStoreLoadMissingColumn(t *testing.T) {
	dir := t.TempDir()
	s := NewCSVStore(dir, nil, nil)
	mustSeed(t, s)
	writeRaw(t, dir, teachersFile, "teacher_id\nT1\n")

	_, err := s.Load(context.Background())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConfigInvalid.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "missing required columns")
	assert.Contains(t, appErr.Message, "name")
}

func TestCSVStoreResolvesColumnsByName(t *testing.T) {
	dir := t.TempDir()
	s := NewCSVStore(dir, nil, nil)
	mustSeed(t, s)
	writeRaw(t, dir, teachersFile, "name,teacher_id,notes\nRahman,T1,senior\n")

	ds, err := s.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, ds.Teachers, 1)
	assert.Equal(t, models.Teacher{ID: "T1", Name: "Rahman"}, ds.Teachers[0])
}

func TestValidateCleanDataset(t *testing.T) {
	s := NewCSVStore(t.TempDir(), nil, nil)
	mustSeed(t, s)
	ds, err := s.Load(context.Background())
	require.NoError(t, err)

	report := Validate(ds)
	assert.True(t, report.OK())
	assert.Empty(t, report.Errors)
	assert.Empty(t, report.Warnings)
}

func TestValidateFindsCrossTableProblems(t *testing.T) {
	ds := &models.Dataset{
		Teachers: []models.Teacher{{ID: "T1", Name: "Rahman"}, {ID: "T2", Name: "Akter"}},
		Classes: []models.Class{
			{ID: "C1", Name: "Class 1", Size: 20},
			{ID: "C1", Name: "Class 1 again", Size: 22},
		},
		Rooms:    []models.Room{{ID: "R1", Name: "Room 1", Capacity: 30}},
		Subjects: []models.Subject{{ID: "Math", Name: "Mathematics"}, {ID: "Art", Name: "Art"}},
		Curriculum: []models.CurriculumLine{
			// T9 does not exist; five periods in a four-slot grid.
			{ID: "L1", ClassID: "C1", SubjectID: "Math", TeacherID: "T9", PeriodsPerWeek: 5},
		},
		Timeslots: []models.Timeslot{
			{Day: 1, Period: 1}, {Day: 1, Period: 2}, {Day: 2, Period: 1}, {Day: 2, Period: 2},
		},
		Unavailability: []models.UnavailableSlot{
			{TeacherID: "T2", Slot: models.Timeslot{Day: 9, Period: 9}},
		},
	}

	report := Validate(ds)
	require.False(t, report.OK())

	assert.True(t, hasIssue(report.Errors, "curriculum", "T9"), "dangling teacher reference")
	assert.True(t, hasIssue(report.Errors, "classes", "duplicate id"), "duplicate class id")
	assert.True(t, hasIssue(report.Errors, "teacher_unavailability", "(9,9)"), "slot outside grid")
	assert.True(t, hasIssue(report.Errors, "classes", "needs 5 periods"), "class demand over grid")
	assert.True(t, hasIssue(report.Warnings, "subjects", "never taught"), "unused subject")
	assert.True(t, hasIssue(report.Warnings, "teachers", "no curriculum lines"), "idle teacher")
}

func TestValidateTeacherDemandMinusUnavailability(t *testing.T) {
	ds := &models.Dataset{
		Teachers: []models.Teacher{{ID: "T1", Name: "Rahman"}},
		Classes:  []models.Class{{ID: "C1", Name: "Class 1", Size: 10}},
		Rooms:    []models.Room{{ID: "R1", Name: "Room 1", Capacity: 20}},
		Subjects: []models.Subject{{ID: "Math", Name: "Mathematics"}},
		Curriculum: []models.CurriculumLine{
			{ID: "L1", ClassID: "C1", SubjectID: "Math", TeacherID: "T1", PeriodsPerWeek: 2},
		},
		Timeslots: []models.Timeslot{{Day: 1, Period: 1}, {Day: 1, Period: 2}},
		Unavailability: []models.UnavailableSlot{
			{TeacherID: "T1", Slot: models.Timeslot{Day: 1, Period: 1}},
		},
	}

	report := Validate(ds)
	require.False(t, report.OK())
	assert.True(t, hasIssue(report.Errors, "teachers", "only 1 slots are available"))
}

// --- Fixtures ---

func mustSeed(t *testing.T, s *CSVStore) {
	t.Helper()
	_, err := s.Seed(context.Background())
	require.NoError(t, err)
}

func writeRaw(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func hasIssue(issues []models.ValidationIssue, table, substr string) bool {
	for _, issue := range issues {
		if issue.Table == table && strings.Contains(issue.Message, substr) {
			return true
		}
	}
	return false
}
