package handler

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable/internal/dto"
	"github.com/noah-isme/sma-timetable/internal/service"
	appErrors "github.com/noah-isme/sma-timetable/pkg/errors"
)

func TestReportHandlerGenerate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &reportManagerMock{
		manifest: &dto.ReportManifestResponse{
			ReportID: "r-1",
			Files:    []dto.ReportFileResponse{{Name: "all_assignments.csv", SizeBytes: 42}},
		},
	}
	handler := &ReportHandler{service: mockSvc}

	c, w := newGinContext(http.MethodPost, "/reports", nil)
	handler.Generate(c)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Contains(t, w.Body.String(), "all_assignments.csv")
}

func TestReportHandlerGenerateWithoutTimetable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &ReportHandler{service: &reportManagerMock{err: appErrors.ErrNoTimetable}}

	c, w := newGinContext(http.MethodPost, "/reports", nil)
	handler.Generate(c)

	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "TIMETABLE_NOT_READY", envelopeErrorCode(t, w))
}

func TestReportHandlerManifest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &reportManagerMock{manifest: &dto.ReportManifestResponse{ReportID: "r-2"}}
	handler := &ReportHandler{service: mockSvc}

	c, w := newGinContext(http.MethodGet, "/reports", nil)
	handler.Manifest(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "r-2")
}

func TestReportHandlerDownload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	path := filepath.Join(t.TempDir(), "class_C1_timetable.csv")
	require.NoError(t, os.WriteFile(path, []byte("Day/Period,1,2\n"), 0o644))
	file, err := os.Open(path)
	require.NoError(t, err)

	mockSvc := &reportManagerMock{
		download: &service.ReportDownload{
			File:      file,
			Filename:  "class_C1_timetable.csv",
			SizeBytes: 15,
			MimeType:  "text/csv",
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}
	handler := &ReportHandler{service: mockSvc}

	c, w := newGinContext(http.MethodGet, "/reports/download?token=tok", nil)
	handler.Download(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Day/Period,1,2\n", w.Body.String())
	require.Equal(t, `attachment; filename="class_C1_timetable.csv"`, w.Header().Get("Content-Disposition"))
	require.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	require.Equal(t, "text/csv", w.Header().Get("Content-Type"))
}

func TestReportHandlerDownloadRequiresToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &ReportHandler{service: &reportManagerMock{}}

	c, w := newGinContext(http.MethodGet, "/reports/download", nil)
	handler.Download(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "VALIDATION_ERROR", envelopeErrorCode(t, w))
}

func TestReportHandlerDownloadDenied(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &ReportHandler{service: &reportManagerMock{err: appErrors.ErrDownloadDenied}}

	c, w := newGinContext(http.MethodGet, "/reports/download?token=stale", nil)
	handler.Download(c)

	require.Equal(t, http.StatusForbidden, w.Code)
	require.Equal(t, "DOWNLOAD_DENIED", envelopeErrorCode(t, w))
}

// --- Fixtures ---

type reportManagerMock struct {
	manifest *dto.ReportManifestResponse
	download *service.ReportDownload
	err      error
}

func (m *reportManagerMock) GenerateAll(ctx context.Context) (*dto.ReportManifestResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.manifest, nil
}

func (m *reportManagerMock) Manifest(ctx context.Context) (*dto.ReportManifestResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.manifest, nil
}

func (m *reportManagerMock) ResolveDownload(ctx context.Context, token string) (*service.ReportDownload, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.download, nil
}
