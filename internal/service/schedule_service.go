package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable/internal/dto"
	"github.com/noah-isme/sma-timetable/internal/models"
	"github.com/noah-isme/sma-timetable/internal/solver"
	appErrors "github.com/noah-isme/sma-timetable/pkg/errors"
	"github.com/noah-isme/sma-timetable/pkg/jobs"
)

// CacheKeyPrefix namespaces every response cache entry; a new solution
// invalidates the whole namespace.
const CacheKeyPrefix = "timetable:"

const jobTypeSolve = "solve"

type datasetProvider interface {
	Dataset(ctx context.Context) (*models.Dataset, error)
}

type solveDispatcher interface {
	Enqueue(job jobs.Job) error
}

// ScheduleConfig carries the default search cutoffs applied when a request
// does not override them.
type ScheduleConfig struct {
	DefaultTimeLimit time.Duration
	DefaultNodeLimit int64
}

// scheduleResult is everything retained from the latest successful solve.
// The dataset is the snapshot the solve ran against, so views and reports
// stay consistent even if the CSVs are reloaded afterwards.
type scheduleResult struct {
	dataset  *models.Dataset
	index    *models.DatasetIndex
	sessions []models.Session
	solution *models.Solution
	view     *models.TimetableView
}

// ScheduleService orchestrates solves and retains the latest timetable.
// Failed solves leave the previous timetable untouched.
type ScheduleService struct {
	datasets  datasetProvider
	queue     solveDispatcher
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ScheduleConfig

	mu     sync.RWMutex
	latest *scheduleResult

	jobsMu   sync.RWMutex
	jobsByID map[string]*models.SolveJob
}

// NewScheduleService wires the solve orchestrator.
func NewScheduleService(
	datasets datasetProvider,
	queue solveDispatcher,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg ScheduleConfig,
) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultTimeLimit <= 0 {
		cfg.DefaultTimeLimit = 20 * time.Second
	}
	return &ScheduleService{
		datasets:  datasets,
		queue:     queue,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		jobsByID:  make(map[string]*models.SolveJob),
	}
}

// Solve runs one synchronous solve against the current dataset. On success
// the resulting timetable replaces the retained one and cached views are
// invalidated; on failure nothing is replaced and the error carries the
// outcome code.
func (s *ScheduleService) Solve(ctx context.Context, req dto.SolveRequest) (*dto.SolveResponse, error) {
	if err := s.validator.Struct(&req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid solve request")
	}
	ds, err := s.datasets.Dataset(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	sessions, domains, err := solver.ExpandAndComputeDomains(ds)
	if err != nil {
		s.metrics.RecordSolve(models.OutcomeConfigInvalid, time.Since(start))
		return nil, err
	}

	res, err := solver.Solve(ctx, sessions, domains, s.options(req))
	if err != nil {
		outcome := outcomeFromError(err)
		s.metrics.RecordSolve(outcome, time.Since(start))
		s.logger.Sugar().Warnw("solve failed",
			"outcome", outcome, "sessions", len(sessions), "error", err)
		return nil, err
	}

	if violations := solver.VerifySolution(ds, sessions, res.Solution); len(violations) > 0 {
		s.metrics.RecordSolve(models.OutcomeError, time.Since(start))
		s.logger.Sugar().Errorw("solution failed self-check",
			"violations", len(violations), "first", violations[0].Message)
		return nil, appErrors.Clone(appErrors.ErrInternal, "solver produced an inconsistent timetable")
	}

	view := buildView(ds, sessions, res)
	s.mu.Lock()
	s.latest = &scheduleResult{
		dataset:  ds,
		index:    ds.Index(),
		sessions: sessions,
		solution: res.Solution,
		view:     view,
	}
	s.mu.Unlock()

	s.metrics.RecordSolve(models.OutcomeSuccess, res.Elapsed)
	s.metrics.ObserveSearchEffort(res.Nodes, res.Backtracks)
	_ = s.cache.Invalidate(ctx, CacheKeyPrefix+"*")

	s.logger.Sugar().Infow("timetable solved",
		"sessions", len(sessions),
		"nodes", res.Nodes,
		"backtracks", res.Backtracks,
		"elapsed_ms", res.Elapsed.Milliseconds())

	return &dto.SolveResponse{GeneratedAt: view.GeneratedAt, Summary: view.Summary}, nil
}

// EnqueueSolve submits an asynchronous solve and returns its job id.
func (s *ScheduleService) EnqueueSolve(ctx context.Context, req dto.SolveRequest) (*dto.JobEnqueuedResponse, error) {
	if err := s.validator.Struct(&req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid solve request")
	}
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "solve queue is not running")
	}

	job := &models.SolveJob{
		ID:          uuid.NewString(),
		Status:      models.JobQueued,
		SubmittedAt: time.Now().UTC(),
	}
	s.jobsMu.Lock()
	s.jobsByID[job.ID] = job
	s.jobsMu.Unlock()

	s.metrics.IncJobsInflight()
	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: jobTypeSolve, Payload: req}); err != nil {
		wrapped := appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue solve job")
		s.markFailed(job.ID, wrapped)
		return nil, wrapped
	}
	return &dto.JobEnqueuedResponse{JobID: job.ID, Status: job.Status}, nil
}

// HandleSolveJob is the queue handler for asynchronous solves.
func (s *ScheduleService) HandleSolveJob(ctx context.Context, job jobs.Job) error {
	req, _ := job.Payload.(dto.SolveRequest)
	s.markRunning(job.ID)
	if _, err := s.Solve(ctx, req); err != nil {
		s.markFailed(job.ID, err)
		return err
	}
	s.markSucceeded(job.ID)
	return nil
}

// Job reports the state of one solve job.
func (s *ScheduleService) Job(ctx context.Context, id string) (*models.SolveJob, error) {
	s.jobsMu.RLock()
	defer s.jobsMu.RUnlock()
	job, ok := s.jobsByID[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrJobNotFound, fmt.Sprintf("solve job %s not found", id))
	}
	snapshot := *job
	return &snapshot, nil
}

// Assignments returns the flat rows of the latest timetable.
func (s *ScheduleService) Assignments(ctx context.Context) (*models.TimetableView, error) {
	r, err := s.latestResult()
	if err != nil {
		return nil, err
	}
	return r.view, nil
}

// ClassTimetable returns the weekly grid for one class. Grids are cut from
// the retained view on demand and cached until the next solution.
func (s *ScheduleService) ClassTimetable(ctx context.Context, classID string) (*models.TimetableGrid, error) {
	r, err := s.latestResult()
	if err != nil {
		return nil, err
	}
	cls, ok := r.index.Classes[classID]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("class %s not found", classID))
	}

	cacheKey := CacheKeyPrefix + "class:" + cls.ID
	var cached models.TimetableGrid
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, nil
	}

	grid := buildGrid(r, cls.ID, cls.Name, func(row models.AssignmentRow) *models.GridCell {
		if row.ClassID != cls.ID {
			return nil
		}
		return &models.GridCell{
			SubjectID:   row.SubjectID,
			SubjectName: row.SubjectName,
			TeacherID:   row.TeacherID,
			TeacherName: row.TeacherName,
			RoomID:      row.RoomID,
		}
	})
	_ = s.cache.Set(ctx, cacheKey, grid, 0)
	return grid, nil
}

// TeacherTimetable returns the weekly grid for one teacher.
func (s *ScheduleService) TeacherTimetable(ctx context.Context, teacherID string) (*models.TimetableGrid, error) {
	r, err := s.latestResult()
	if err != nil {
		return nil, err
	}
	teacher, ok := r.index.Teachers[teacherID]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("teacher %s not found", teacherID))
	}

	cacheKey := CacheKeyPrefix + "teacher:" + teacher.ID
	var cached models.TimetableGrid
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, nil
	}

	grid := buildGrid(r, teacher.ID, teacher.Name, func(row models.AssignmentRow) *models.GridCell {
		if row.TeacherID != teacher.ID {
			return nil
		}
		return &models.GridCell{
			SubjectID:   row.SubjectID,
			SubjectName: row.SubjectName,
			ClassID:     row.ClassID,
			ClassName:   row.ClassName,
			RoomID:      row.RoomID,
		}
	})
	_ = s.cache.Set(ctx, cacheKey, grid, 0)
	return grid, nil
}

// latestResult hands out the retained solve artifacts, ErrNoTimetable before
// the first successful solve.
func (s *ScheduleService) latestResult() (*scheduleResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return nil, appErrors.ErrNoTimetable
	}
	return s.latest, nil
}

func (s *ScheduleService) options(req dto.SolveRequest) solver.Options {
	opts := solver.Options{TimeLimit: s.cfg.DefaultTimeLimit, NodeLimit: s.cfg.DefaultNodeLimit}
	if req.TimeLimitSeconds != nil {
		opts.TimeLimit = time.Duration(*req.TimeLimitSeconds) * time.Second
	}
	if req.NodeLimit != nil {
		opts.NodeLimit = *req.NodeLimit
	}
	return opts
}

func (s *ScheduleService) markRunning(id string) {
	now := time.Now().UTC()
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()
	if job, ok := s.jobsByID[id]; ok {
		job.Status = models.JobRunning
		job.StartedAt = &now
	}
}

func (s *ScheduleService) markSucceeded(id string) {
	var summary *models.SolveSummary
	if r, err := s.latestResult(); err == nil {
		copied := r.view.Summary
		summary = &copied
	}
	now := time.Now().UTC()
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()
	if job, ok := s.jobsByID[id]; ok {
		job.Status = models.JobSucceeded
		job.FinishedAt = &now
		job.Summary = summary
		s.metrics.DecJobsInflight()
	}
}

func (s *ScheduleService) markFailed(id string, err error) {
	appErr := appErrors.FromError(err)
	now := time.Now().UTC()
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()
	if job, ok := s.jobsByID[id]; ok {
		job.Status = models.JobFailed
		job.FinishedAt = &now
		job.ErrorCode = appErr.Code
		job.ErrorMessage = appErr.Message
		s.metrics.DecJobsInflight()
	}
}

// outcomeFromError maps a solve error onto the metric outcome label.
func outcomeFromError(err error) string {
	switch appErrors.FromError(err).Code {
	case appErrors.ErrInfeasible.Code:
		return models.OutcomeInfeasible
	case appErrors.ErrConfigInvalid.Code:
		return models.OutcomeConfigInvalid
	case appErrors.ErrSearchAborted.Code:
		return models.OutcomeAborted
	default:
		return models.OutcomeError
	}
}

// buildView flattens a solution into display rows sorted by
// (day, period, line id, occurrence).
func buildView(ds *models.Dataset, sessions []models.Session, res *solver.Result) *models.TimetableView {
	idx := ds.Index()
	rows := make([]models.AssignmentRow, 0, len(sessions))
	for _, sess := range sessions {
		p := res.Solution.Assignments[sess.Key]
		rows = append(rows, models.AssignmentRow{
			LineID:      sess.Key.LineID,
			Occurrence:  sess.Key.Occurrence,
			ClassID:     sess.ClassID,
			ClassName:   idx.Classes[sess.ClassID].Name,
			SubjectID:   sess.SubjectID,
			SubjectName: idx.Subjects[sess.SubjectID].Name,
			TeacherID:   sess.TeacherID,
			TeacherName: idx.Teachers[sess.TeacherID].Name,
			Day:         p.Slot.Day,
			Period:      p.Slot.Period,
			RoomID:      p.RoomID,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Day != b.Day {
			return a.Day < b.Day
		}
		if a.Period != b.Period {
			return a.Period < b.Period
		}
		if a.LineID != b.LineID {
			return a.LineID < b.LineID
		}
		return a.Occurrence < b.Occurrence
	})

	return &models.TimetableView{
		GeneratedAt: time.Now().UTC(),
		Summary: models.SolveSummary{
			Outcome:       models.OutcomeSuccess,
			Sessions:      len(sessions),
			Nodes:         res.Nodes,
			Backtracks:    res.Backtracks,
			ElapsedMillis: res.Elapsed.Milliseconds(),
		},
		Rows: rows,
	}
}

// gridAxes extracts the sorted distinct days and periods of the grid.
func gridAxes(ds *models.Dataset) ([]int, []int) {
	days := lo.Uniq(lo.Map(ds.Timeslots, func(t models.Timeslot, _ int) int { return t.Day }))
	periods := lo.Uniq(lo.Map(ds.Timeslots, func(t models.Timeslot, _ int) int { return t.Period }))
	sort.Ints(days)
	sort.Ints(periods)
	return days, periods
}

// buildGrid lays rows onto a day-by-period matrix. cellFor returns nil for
// rows that do not belong to the grid owner.
func buildGrid(r *scheduleResult, ownerID, ownerName string, cellFor func(models.AssignmentRow) *models.GridCell) *models.TimetableGrid {
	days, periods := gridAxes(r.dataset)
	dayAt := make(map[int]int, len(days))
	for i, d := range days {
		dayAt[d] = i
	}
	periodAt := make(map[int]int, len(periods))
	for i, p := range periods {
		periodAt[p] = i
	}

	cells := make([][]*models.GridCell, len(days))
	for i := range cells {
		cells[i] = make([]*models.GridCell, len(periods))
	}
	for _, row := range r.view.Rows {
		if cell := cellFor(row); cell != nil {
			cells[dayAt[row.Day]][periodAt[row.Period]] = cell
		}
	}

	return &models.TimetableGrid{
		OwnerID:   ownerID,
		OwnerName: ownerName,
		Days:      days,
		Periods:   periods,
		Cells:     cells,
	}
}
