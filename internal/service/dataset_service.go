package service

import (
	"context"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable/internal/dto"
	"github.com/noah-isme/sma-timetable/internal/models"
	"github.com/noah-isme/sma-timetable/internal/store"
	appErrors "github.com/noah-isme/sma-timetable/pkg/errors"
)

// datasetStore is the slice of the CSV store this service consumes.
type datasetStore interface {
	Load(ctx context.Context) (*models.Dataset, error)
	LoadOrSeed(ctx context.Context) (*models.Dataset, bool, error)
	Seed(ctx context.Context) (int, error)
	Dir() string
}

// DatasetService owns the in-memory copy of the CSV dataset. Loads replace
// the copy atomically, so readers always see a complete dataset and a solve
// in flight keeps the snapshot it started with.
type DatasetService struct {
	store  datasetStore
	logger *zap.Logger

	mu     sync.RWMutex
	ds     *models.Dataset
	seeded bool
}

// NewDatasetService constructs the dataset service.
func NewDatasetService(st datasetStore, logger *zap.Logger) *DatasetService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DatasetService{store: st, logger: logger}
}

// LoadOrSeed fills any missing CSV files with the sample dataset and loads
// everything into memory. Called once at startup.
func (s *DatasetService) LoadOrSeed(ctx context.Context) error {
	ds, seeded, err := s.store.LoadOrSeed(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.ds = ds
	s.seeded = seeded
	s.mu.Unlock()
	s.logger.Sugar().Infow("dataset ready", "dir", s.store.Dir(), "seeded", seeded)
	return nil
}

// Reload re-reads the CSV files from disk and replaces the in-memory copy.
// On failure the previous copy stays in place.
func (s *DatasetService) Reload(ctx context.Context) error {
	ds, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.ds = ds
	s.mu.Unlock()
	s.logger.Sugar().Infow("dataset reloaded", "dir", s.store.Dir())
	return nil
}

// Seed writes the sample dataset into any missing CSV files, then reloads.
func (s *DatasetService) Seed(ctx context.Context) (*dto.SeedResponse, error) {
	written, err := s.store.Seed(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	if written > 0 {
		s.mu.Lock()
		s.seeded = true
		s.mu.Unlock()
	}
	return &dto.SeedResponse{FilesWritten: written}, nil
}

// Dataset hands out the current in-memory dataset. Callers must treat it as
// read-only.
func (s *DatasetService) Dataset(ctx context.Context) (*models.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ds == nil {
		return nil, appErrors.ErrDatasetMissing
	}
	return s.ds, nil
}

// Summary reports table counts and the grid shape of the current dataset.
func (s *DatasetService) Summary(ctx context.Context) (*dto.DatasetSummaryResponse, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	seeded := s.seeded
	s.mu.RUnlock()

	days := lo.Uniq(lo.Map(ds.Timeslots, func(t models.Timeslot, _ int) int { return t.Day }))
	periods := lo.Uniq(lo.Map(ds.Timeslots, func(t models.Timeslot, _ int) int { return t.Period }))
	sessions := lo.SumBy(ds.Curriculum, func(l models.CurriculumLine) int { return l.PeriodsPerWeek })

	return &dto.DatasetSummaryResponse{
		DataDir:         s.store.Dir(),
		Seeded:          seeded,
		Teachers:        len(ds.Teachers),
		Classes:         len(ds.Classes),
		Rooms:           len(ds.Rooms),
		Subjects:        len(ds.Subjects),
		CurriculumLines: len(ds.Curriculum),
		SessionsPerWeek: sessions,
		Days:            len(days),
		Periods:         len(periods),
		Timeslots:       len(ds.Timeslots),
		Unavailability:  len(ds.Unavailability),
	}, nil
}

// Validation runs the cross-table checks against the current dataset.
func (s *DatasetService) Validation(ctx context.Context) (*models.ValidationReport, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	return store.Validate(ds), nil
}
