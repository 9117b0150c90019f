package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable/internal/dto"
	"github.com/noah-isme/sma-timetable/internal/models"
	appErrors "github.com/noah-isme/sma-timetable/pkg/errors"
	"github.com/noah-isme/sma-timetable/pkg/jobs"
)

func TestScheduleSolveBuildsSortedView(t *testing.T) {
	svc := newScheduleFixture(scheduleFixtureConfig{})

	resp, err := svc.Solve(context.Background(), dto.SolveRequest{})
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeSuccess, resp.Summary.Outcome)
	assert.Equal(t, 8, resp.Summary.Sessions)

	view, err := svc.Assignments(context.Background())
	require.NoError(t, err)
	require.Len(t, view.Rows, 8)
	for i := 1; i < len(view.Rows); i++ {
		a, b := view.Rows[i-1], view.Rows[i]
		before := a.Day < b.Day ||
			(a.Day == b.Day && a.Period < b.Period) ||
			(a.Day == b.Day && a.Period == b.Period && a.LineID < b.LineID)
		assert.True(t, before, "rows must be sorted by day, period, line")
	}

	first := view.Rows[0]
	assert.NotEmpty(t, first.ClassName)
	assert.NotEmpty(t, first.SubjectName)
	assert.NotEmpty(t, first.TeacherName)
	assert.NotEmpty(t, first.RoomID)
}

func TestScheduleSolveValidatesRequest(t *testing.T) {
	svc := newScheduleFixture(scheduleFixtureConfig{})

	_, err := svc.Solve(context.Background(), dto.SolveRequest{TimeLimitSeconds: lo.ToPtr(0)})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestScheduleSolveInfeasibleLeavesNoTimetable(t *testing.T) {
	ds := demoDataset()
	ds.Curriculum[0].PeriodsPerWeek = 5 // class C1 now needs 7 of 6 slots
	svc := newScheduleFixture(scheduleFixtureConfig{dataset: ds})

	_, err := svc.Solve(context.Background(), dto.SolveRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInfeasible.Code, appErrors.FromError(err).Code)

	_, err = svc.Assignments(context.Background())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNoTimetable.Code, appErrors.FromError(err).Code)
}

func TestScheduleSolveAbortedIsNotInfeasible(t *testing.T) {
	svc := newScheduleFixture(scheduleFixtureConfig{})

	_, err := svc.Solve(context.Background(), dto.SolveRequest{NodeLimit: lo.ToPtr(int64(1))})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSearchAborted.Code, appErrors.FromError(err).Code)
}

func TestScheduleSolveFailureKeepsPreviousTimetable(t *testing.T) {
	svc := newScheduleFixture(scheduleFixtureConfig{})

	_, err := svc.Solve(context.Background(), dto.SolveRequest{})
	require.NoError(t, err)
	before, err := svc.Assignments(context.Background())
	require.NoError(t, err)

	_, err = svc.Solve(context.Background(), dto.SolveRequest{NodeLimit: lo.ToPtr(int64(1))})
	require.Error(t, err)

	after, err := svc.Assignments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, before.GeneratedAt, after.GeneratedAt)
}

func TestScheduleClassTimetable(t *testing.T) {
	svc := newScheduleFixture(scheduleFixtureConfig{})
	_, err := svc.Solve(context.Background(), dto.SolveRequest{})
	require.NoError(t, err)

	grid, err := svc.ClassTimetable(context.Background(), "C1")
	require.NoError(t, err)
	assert.Equal(t, "Class 7A", grid.OwnerName)
	assert.Equal(t, []int{1, 2}, grid.Days)
	assert.Equal(t, []int{1, 2, 3}, grid.Periods)

	filled := 0
	for _, row := range grid.Cells {
		for _, cell := range row {
			if cell == nil {
				continue
			}
			filled++
			assert.NotEmpty(t, cell.TeacherName)
			assert.Empty(t, cell.ClassName)
		}
	}
	assert.Equal(t, 4, filled)

	_, err = svc.ClassTimetable(context.Background(), "C9")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestScheduleTeacherTimetable(t *testing.T) {
	svc := newScheduleFixture(scheduleFixtureConfig{})
	_, err := svc.Solve(context.Background(), dto.SolveRequest{})
	require.NoError(t, err)

	grid, err := svc.TeacherTimetable(context.Background(), "T2")
	require.NoError(t, err)
	assert.Equal(t, "Akter", grid.OwnerName)

	filled := 0
	for i, row := range grid.Cells {
		for j, cell := range row {
			if cell == nil {
				continue
			}
			filled++
			assert.NotEmpty(t, cell.ClassName)
			assert.Empty(t, cell.TeacherName)
			slot := models.Timeslot{Day: grid.Days[i], Period: grid.Periods[j]}
			assert.NotEqual(t, models.Timeslot{Day: 2, Period: 3}, slot, "blocked slot must stay empty")
		}
	}
	assert.Equal(t, 4, filled)
}

func TestScheduleViewsBeforeFirstSolve(t *testing.T) {
	svc := newScheduleFixture(scheduleFixtureConfig{})

	_, err := svc.Assignments(context.Background())
	assert.Equal(t, appErrors.ErrNoTimetable.Code, appErrors.FromError(err).Code)
	_, err = svc.ClassTimetable(context.Background(), "C1")
	assert.Equal(t, appErrors.ErrNoTimetable.Code, appErrors.FromError(err).Code)
	_, err = svc.TeacherTimetable(context.Background(), "T1")
	assert.Equal(t, appErrors.ErrNoTimetable.Code, appErrors.FromError(err).Code)
}

func TestScheduleEnqueueAndHandleJob(t *testing.T) {
	queue := &stubQueue{}
	svc := newScheduleFixture(scheduleFixtureConfig{queue: queue})

	resp, err := svc.EnqueueSolve(context.Background(), dto.SolveRequest{})
	require.NoError(t, err)
	assert.Equal(t, models.JobQueued, resp.Status)
	require.Len(t, queue.jobs, 1)

	job, err := svc.Job(context.Background(), resp.JobID)
	require.NoError(t, err)
	assert.Equal(t, models.JobQueued, job.Status)

	require.NoError(t, svc.HandleSolveJob(context.Background(), queue.jobs[0]))

	job, err = svc.Job(context.Background(), resp.JobID)
	require.NoError(t, err)
	assert.Equal(t, models.JobSucceeded, job.Status)
	require.NotNil(t, job.Summary)
	assert.Equal(t, 8, job.Summary.Sessions)
	assert.NotNil(t, job.StartedAt)
	assert.NotNil(t, job.FinishedAt)
}

func TestScheduleHandleJobRecordsFailure(t *testing.T) {
	ds := demoDataset()
	ds.Curriculum[0].PeriodsPerWeek = 5
	queue := &stubQueue{}
	svc := newScheduleFixture(scheduleFixtureConfig{dataset: ds, queue: queue})

	resp, err := svc.EnqueueSolve(context.Background(), dto.SolveRequest{})
	require.NoError(t, err)
	require.Error(t, svc.HandleSolveJob(context.Background(), queue.jobs[0]))

	job, err := svc.Job(context.Background(), resp.JobID)
	require.NoError(t, err)
	assert.Equal(t, models.JobFailed, job.Status)
	assert.Equal(t, appErrors.ErrInfeasible.Code, job.ErrorCode)
}

func TestScheduleEnqueueFailsWhenQueueFull(t *testing.T) {
	queue := &stubQueue{err: assert.AnError}
	svc := newScheduleFixture(scheduleFixtureConfig{queue: queue})

	_, err := svc.EnqueueSolve(context.Background(), dto.SolveRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}

func TestScheduleJobNotFound(t *testing.T) {
	svc := newScheduleFixture(scheduleFixtureConfig{})

	_, err := svc.Job(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrJobNotFound.Code, appErrors.FromError(err).Code)
}

func TestScheduleSolveInvalidatesCache(t *testing.T) {
	repo := &stubCacheRepo{}
	cache := NewCacheService(repo, nil, time.Minute, nil, true)
	svc := newScheduleFixture(scheduleFixtureConfig{cache: cache})

	_, err := svc.Solve(context.Background(), dto.SolveRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{CacheKeyPrefix + "*"}, repo.deleted)

	// First read computes and stores the grid, the second is a cache hit.
	first, err := svc.ClassTimetable(context.Background(), "C1")
	require.NoError(t, err)
	second, err := svc.ClassTimetable(context.Background(), "C1")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.sets[CacheKeyPrefix+"class:C1"])
	assert.Equal(t, first, second)

	// A new solution drops the cached grids.
	_, err = svc.Solve(context.Background(), dto.SolveRequest{})
	require.NoError(t, err)
	_, err = svc.ClassTimetable(context.Background(), "C1")
	require.NoError(t, err)
	assert.Equal(t, 2, repo.sets[CacheKeyPrefix+"class:C1"])
}

// --- Fixtures ---

type scheduleFixtureConfig struct {
	dataset *models.Dataset
	queue   solveDispatcher
	cache   *CacheService
	cfg     ScheduleConfig
}

func newScheduleFixture(cfg scheduleFixtureConfig) *ScheduleService {
	if cfg.dataset == nil {
		cfg.dataset = demoDataset()
	}
	return NewScheduleService(&stubDatasetProvider{ds: cfg.dataset}, cfg.queue, cfg.cache, nil, nil, nil, cfg.cfg)
}

// demoDataset is small and feasible: 8 sessions onto a 2x3 grid, one fixed
// room line, one blocked slot for T2.
func demoDataset() *models.Dataset {
	return &models.Dataset{
		Teachers: []models.Teacher{{ID: "T1", Name: "Rahman"}, {ID: "T2", Name: "Akter"}},
		Classes:  []models.Class{{ID: "C1", Name: "Class 7A", Size: 28}, {ID: "C2", Name: "Class 7B", Size: 26}},
		Rooms: []models.Room{
			{ID: "R1", Name: "Room 1", Capacity: 30},
			{ID: "R2", Name: "Room 2", Capacity: 30},
			{ID: "Lab", Name: "Science Lab", Capacity: 28},
		},
		Subjects: []models.Subject{{ID: "Math", Name: "Math"}, {ID: "Sci", Name: "Science"}},
		Curriculum: []models.CurriculumLine{
			{ID: "L1", ClassID: "C1", SubjectID: "Math", TeacherID: "T1", PeriodsPerWeek: 2},
			{ID: "L2", ClassID: "C1", SubjectID: "Sci", TeacherID: "T2", PeriodsPerWeek: 2, FixedRoomID: "Lab"},
			{ID: "L3", ClassID: "C2", SubjectID: "Math", TeacherID: "T1", PeriodsPerWeek: 2},
			{ID: "L4", ClassID: "C2", SubjectID: "Sci", TeacherID: "T2", PeriodsPerWeek: 2},
		},
		Timeslots: timeslotGrid(2, 3),
		Unavailability: []models.UnavailableSlot{
			{TeacherID: "T2", Slot: models.Timeslot{Day: 2, Period: 3}},
		},
	}
}

func timeslotGrid(days, periods int) []models.Timeslot {
	slots := make([]models.Timeslot, 0, days*periods)
	for d := 1; d <= days; d++ {
		for p := 1; p <= periods; p++ {
			slots = append(slots, models.Timeslot{Day: d, Period: p})
		}
	}
	return slots
}

type stubDatasetProvider struct {
	ds *models.Dataset
}

func (s *stubDatasetProvider) Dataset(ctx context.Context) (*models.Dataset, error) {
	if s.ds == nil {
		return nil, appErrors.ErrDatasetMissing
	}
	return s.ds, nil
}

type stubQueue struct {
	jobs []jobs.Job
	err  error
}

func (q *stubQueue) Enqueue(job jobs.Job) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

type stubCacheRepo struct {
	mu      sync.Mutex
	data    map[string][]byte
	sets    map[string]int
	deleted []string
}

func (r *stubCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	payload, ok := r.data[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (r *stubCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.data == nil {
		r.data = make(map[string][]byte)
	}
	if r.sets == nil {
		r.sets = make(map[string]int)
	}
	r.data[key] = payload
	r.sets[key]++
	return nil
}

func (r *stubCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range r.data {
		if strings.HasPrefix(key, prefix) {
			delete(r.data, key)
		}
	}
	return nil
}
