// Package store reads, seeds and validates the CSV dataset the solver runs
// on. All seven tables live in one directory; loading is strict (typed
// columns, validate tags, file and line in every error) while seeding only
// ever fills in missing files.
package store

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable/internal/models"
	appErrors "github.com/noah-isme/sma-timetable/pkg/errors"
)

const (
	teachersFile       = "teachers.csv"
	classesFile        = "classes.csv"
	roomsFile          = "rooms.csv"
	subjectsFile       = "subjects.csv"
	curriculumFile     = "curriculum.csv"
	timeslotsFile      = "timeslots.csv"
	unavailabilityFile = "teacher_unavailability.csv"
)

// CSVStore is the dataset backend. It is safe for sequential use; callers
// that reload concurrently must serialize themselves.
type CSVStore struct {
	dir       string
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCSVStore creates a store rooted at dir.
func NewCSVStore(dir string, v *validator.Validate, logger *zap.Logger) *CSVStore {
	if v == nil {
		v = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CSVStore{dir: dir, validator: v, logger: logger}
}

// Dir returns the dataset directory.
func (s *CSVStore) Dir() string {
	return s.dir
}

// Load reads all tables into a Dataset, preserving file order.
// teacher_unavailability.csv may be absent; every other file is required.
func (s *CSVStore) Load(ctx context.Context) (*models.Dataset, error) {
	ds := &models.Dataset{}
	steps := []func(*models.Dataset) error{
		s.loadTeachers,
		s.loadClasses,
		s.loadRooms,
		s.loadSubjects,
		s.loadCurriculum,
		s.loadTimeslots,
		s.loadUnavailability,
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "dataset load canceled")
		}
		if err := step(ds); err != nil {
			return nil, err
		}
	}
	s.logger.Info("dataset loaded",
		zap.String("dir", s.dir),
		zap.Int("teachers", len(ds.Teachers)),
		zap.Int("classes", len(ds.Classes)),
		zap.Int("rooms", len(ds.Rooms)),
		zap.Int("subjects", len(ds.Subjects)),
		zap.Int("curriculum_lines", len(ds.Curriculum)),
		zap.Int("timeslots", len(ds.Timeslots)),
		zap.Int("unavailable_slots", len(ds.Unavailability)),
	)
	return ds, nil
}

// Seed writes the bundled sample dataset, skipping any file that already
// exists. Existing data is never overwritten. It returns the number of
// files written.
func (s *CSVStore) Seed(ctx context.Context) (int, error) {
	return s.seedMissing(ctx)
}

// LoadOrSeed seeds any missing files first, then loads. The boolean reports
// whether seeding wrote anything.
func (s *CSVStore) LoadOrSeed(ctx context.Context) (*models.Dataset, bool, error) {
	written, err := s.seedMissing(ctx)
	if err != nil {
		return nil, false, err
	}
	ds, err := s.Load(ctx)
	if err != nil {
		return nil, written > 0, err
	}
	return ds, written > 0, nil
}

func (s *CSVStore) seedMissing(ctx context.Context) (int, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status,
			fmt.Sprintf("create data dir %s", s.dir))
	}
	written := 0
	for _, file := range seedFiles() {
		if err := ctx.Err(); err != nil {
			return written, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "seeding canceled")
		}
		path := filepath.Join(s.dir, file.name)
		if _, err := os.Stat(path); err == nil {
			continue
		} else if !os.IsNotExist(err) {
			return written, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status,
				fmt.Sprintf("stat %s", file.name))
		}
		if err := writeCSV(path, file.header, file.rows); err != nil {
			return written, err
		}
		written++
		s.logger.Info("seeded dataset file", zap.String("file", file.name))
	}
	return written, nil
}

func (s *CSVStore) loadTeachers(ds *models.Dataset) error {
	return s.readTable(teachersFile, []string{"teacher_id", "name"}, func(line int, rec []string) error {
		row := teacherRow{ID: rec[0], Name: rec[1]}
		if err := s.checkRow(teachersFile, line, row); err != nil {
			return err
		}
		ds.Teachers = append(ds.Teachers, models.Teacher{ID: row.ID, Name: row.Name})
		return nil
	})
}

func (s *CSVStore) loadClasses(ds *models.Dataset) error {
	return s.readTable(classesFile, []string{"class_id", "name", "size"}, func(line int, rec []string) error {
		size, err := intField(classesFile, line, "size", rec[2])
		if err != nil {
			return err
		}
		row := classRow{ID: rec[0], Name: rec[1], Size: size}
		if err := s.checkRow(classesFile, line, row); err != nil {
			return err
		}
		ds.Classes = append(ds.Classes, models.Class{ID: row.ID, Name: row.Name, Size: row.Size})
		return nil
	})
}

func (s *CSVStore) loadRooms(ds *models.Dataset) error {
	return s.readTable(roomsFile, []string{"room_id", "name", "capacity"}, func(line int, rec []string) error {
		capacity, err := intField(roomsFile, line, "capacity", rec[2])
		if err != nil {
			return err
		}
		row := roomRow{ID: rec[0], Name: rec[1], Capacity: capacity}
		if err := s.checkRow(roomsFile, line, row); err != nil {
			return err
		}
		ds.Rooms = append(ds.Rooms, models.Room{ID: row.ID, Name: row.Name, Capacity: row.Capacity})
		return nil
	})
}

func (s *CSVStore) loadSubjects(ds *models.Dataset) error {
	return s.readTable(subjectsFile, []string{"subject_id", "name"}, func(line int, rec []string) error {
		row := subjectRow{ID: rec[0], Name: rec[1]}
		if err := s.checkRow(subjectsFile, line, row); err != nil {
			return err
		}
		ds.Subjects = append(ds.Subjects, models.Subject{ID: row.ID, Name: row.Name})
		return nil
	})
}

func (s *CSVStore) loadCurriculum(ds *models.Dataset) error {
	want := []string{"line_id", "class_id", "subject_id", "teacher_id", "periods_per_week", "room_id"}
	return s.readTable(curriculumFile, want, func(line int, rec []string) error {
		periods, err := intField(curriculumFile, line, "periods_per_week", rec[4])
		if err != nil {
			return err
		}
		row := curriculumRow{
			LineID:         rec[0],
			ClassID:        rec[1],
			SubjectID:      rec[2],
			TeacherID:      rec[3],
			PeriodsPerWeek: periods,
			RoomID:         rec[5],
		}
		if err := s.checkRow(curriculumFile, line, row); err != nil {
			return err
		}
		ds.Curriculum = append(ds.Curriculum, models.CurriculumLine{
			ID:             row.LineID,
			ClassID:        row.ClassID,
			SubjectID:      row.SubjectID,
			TeacherID:      row.TeacherID,
			PeriodsPerWeek: row.PeriodsPerWeek,
			FixedRoomID:    row.RoomID,
		})
		return nil
	})
}

func (s *CSVStore) loadTimeslots(ds *models.Dataset) error {
	return s.readTable(timeslotsFile, []string{"day", "period"}, func(line int, rec []string) error {
		day, err := intField(timeslotsFile, line, "day", rec[0])
		if err != nil {
			return err
		}
		period, err := intField(timeslotsFile, line, "period", rec[1])
		if err != nil {
			return err
		}
		row := timeslotRow{Day: day, Period: period}
		if err := s.checkRow(timeslotsFile, line, row); err != nil {
			return err
		}
		ds.Timeslots = append(ds.Timeslots, models.Timeslot{Day: row.Day, Period: row.Period})
		return nil
	})
}

func (s *CSVStore) loadUnavailability(ds *models.Dataset) error {
	if _, err := os.Stat(filepath.Join(s.dir, unavailabilityFile)); os.IsNotExist(err) {
		return nil
	}
	return s.readTable(unavailabilityFile, []string{"teacher_id", "day", "period"}, func(line int, rec []string) error {
		day, err := intField(unavailabilityFile, line, "day", rec[1])
		if err != nil {
			return err
		}
		period, err := intField(unavailabilityFile, line, "period", rec[2])
		if err != nil {
			return err
		}
		row := unavailabilityRow{TeacherID: rec[0], Day: day, Period: period}
		if err := s.checkRow(unavailabilityFile, line, row); err != nil {
			return err
		}
		ds.Unavailability = append(ds.Unavailability, models.UnavailableSlot{
			TeacherID: row.TeacherID,
			Slot:      models.Timeslot{Day: row.Day, Period: row.Period},
		})
		return nil
	})
}

// readTable streams one CSV file. Columns are resolved by header name, so
// extra columns and reordering are tolerated; missing columns are not.
// The parse callback receives fields projected into the requested order,
// whitespace-trimmed, with a 1-based line number for error reports.
func (s *CSVStore) readTable(name string, want []string, parse func(line int, rec []string) error) error {
	path := filepath.Join(s.dir, name)
	f, err := os.Open(path)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrConfigInvalid.Code, appErrors.ErrConfigInvalid.Status,
			fmt.Sprintf("open %s", name))
	}
	defer f.Close()

	r := csv.NewReader(bufio.NewReader(f))
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrConfigInvalid.Code, appErrors.ErrConfigInvalid.Status,
			fmt.Sprintf("%s: missing header", name))
	}
	cols, err := columnIndex(name, header, want)
	if err != nil {
		return err
	}

	projected := make([]string, len(want))
	line := 1
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		line++
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrConfigInvalid.Code, appErrors.ErrConfigInvalid.Status,
				fmt.Sprintf("%q line %d", name, line))
		}
		for i, idx := range cols {
			projected[i] = strings.TrimSpace(rec[idx])
		}
		if err := parse(line, projected); err != nil {
			return err
		}
	}
}

// columnIndex maps wanted column names to their positions in the header.
func columnIndex(name string, header, want []string) ([]int, error) {
	pos := make(map[string]int, len(header))
	for i, col := range header {
		pos[strings.TrimSpace(col)] = i
	}
	cols := make([]int, len(want))
	var missing []string
	for i, col := range want {
		idx, ok := pos[col]
		if !ok {
			missing = append(missing, col)
			continue
		}
		cols[i] = idx
	}
	if len(missing) > 0 {
		return nil, appErrors.Clone(appErrors.ErrConfigInvalid,
			fmt.Sprintf("%s: missing required columns %v", name, missing))
	}
	return cols, nil
}

func intField(file string, line int, col, val string) (int, error) {
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, appErrors.Clone(appErrors.ErrConfigInvalid,
			fmt.Sprintf("%q line %d: %s %q is not a number", file, line, col, val))
	}
	return n, nil
}

func (s *CSVStore) checkRow(file string, line int, row any) error {
	if err := s.validator.Struct(row); err != nil {
		return appErrors.Wrap(err, appErrors.ErrConfigInvalid.Code, appErrors.ErrConfigInvalid.Status,
			fmt.Sprintf("%q line %d: invalid record", file, line))
	}
	return nil
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status,
			fmt.Sprintf("create %s", filepath.Base(path)))
	}
	w := csv.NewWriter(f)
	err = w.Write(header)
	if err == nil {
		err = w.WriteAll(rows) // WriteAll flushes
	}
	if err != nil {
		f.Close()
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status,
			fmt.Sprintf("write %s", filepath.Base(path)))
	}
	if err := f.Close(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status,
			fmt.Sprintf("close %s", filepath.Base(path)))
	}
	return nil
}
