package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable/internal/dto"
	"github.com/noah-isme/sma-timetable/internal/models"
	appErrors "github.com/noah-isme/sma-timetable/pkg/errors"
)

func TestDatasetHandlerSummary(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &datasetManagerMock{
		summary: &dto.DatasetSummaryResponse{Teachers: 2, Classes: 2, SessionsPerWeek: 8},
	}
	handler := &DatasetHandler{service: mockSvc}

	c, w := newGinContext(http.MethodGet, "/dataset/summary", nil)
	handler.Summary(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"sessions_per_week":8`)
}

func TestDatasetHandlerSummaryBeforeLoad(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &DatasetHandler{service: &datasetManagerMock{err: appErrors.ErrDatasetMissing}}

	c, w := newGinContext(http.MethodGet, "/dataset/summary", nil)
	handler.Summary(c)

	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "DATASET_MISSING", envelopeErrorCode(t, w))
}

func TestDatasetHandlerSeed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &datasetManagerMock{
		summary: &dto.DatasetSummaryResponse{},
		seeded:  &dto.SeedResponse{FilesWritten: 7},
	}
	handler := &DatasetHandler{service: mockSvc}

	c, w := newGinContext(http.MethodPost, "/dataset/seed", nil)
	handler.Seed(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"files_written":7`)
}

func TestDatasetHandlerReloadReturnsSummary(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &datasetManagerMock{summary: &dto.DatasetSummaryResponse{Classes: 3}}
	handler := &DatasetHandler{service: mockSvc}

	c, w := newGinContext(http.MethodPost, "/dataset/reload", nil)
	handler.Reload(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, mockSvc.reloaded)
	require.Contains(t, w.Body.String(), `"classes":3`)
}

func TestDatasetHandlerReloadFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &datasetManagerMock{
		reloadErr: appErrors.Clone(appErrors.ErrConfigInvalid, "teachers.csv: malformed row"),
	}
	handler := &DatasetHandler{service: mockSvc}

	c, w := newGinContext(http.MethodPost, "/dataset/reload", nil)
	handler.Reload(c)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.Equal(t, "CONFIG_INVALID", envelopeErrorCode(t, w))
}

func TestDatasetHandlerValidation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &datasetManagerMock{
		report: &models.ValidationReport{
			Errors: []models.ValidationIssue{{Table: "curriculum", RecordID: "L9", Message: "unknown teacher T9"}},
		},
	}
	handler := &DatasetHandler{service: mockSvc}

	c, w := newGinContext(http.MethodGet, "/dataset/validation", nil)
	handler.Validation(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "unknown teacher T9")
}

// --- Fixtures ---

type datasetManagerMock struct {
	summary   *dto.DatasetSummaryResponse
	seeded    *dto.SeedResponse
	report    *models.ValidationReport
	err       error
	reloadErr error
	reloaded  bool
}

func (m *datasetManagerMock) Summary(ctx context.Context) (*dto.DatasetSummaryResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.summary, nil
}

func (m *datasetManagerMock) Seed(ctx context.Context) (*dto.SeedResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.seeded, nil
}

func (m *datasetManagerMock) Reload(ctx context.Context) error {
	if m.reloadErr != nil {
		return m.reloadErr
	}
	m.reloaded = true
	return nil
}

func (m *datasetManagerMock) Validation(ctx context.Context) (*models.ValidationReport, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.report, nil
}
