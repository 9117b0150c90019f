package service

import (
	"context"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable/internal/dto"
	appErrors "github.com/noah-isme/sma-timetable/pkg/errors"
	"github.com/noah-isme/sma-timetable/pkg/storage"
)

func TestReportGenerateAllWritesArtifacts(t *testing.T) {
	fx := newReportFixture(t, true)

	resp, err := fx.reports.GenerateAll(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, resp.ReportID)

	// 2 classes and 2 teachers, each as CSV and HTML, plus the flat
	// listing and the PDF summary.
	require.Len(t, resp.Files, 10)
	names := lo.Map(resp.Files, func(f dto.ReportFileResponse, _ int) string { return f.Name })
	assert.Contains(t, names, "class_C1_timetable.csv")
	assert.Contains(t, names, "class_C2_timetable.html")
	assert.Contains(t, names, "teacher_T1_timetable.csv")
	assert.Contains(t, names, "teacher_T2_timetable.html")
	assert.Contains(t, names, "all_assignments.csv")
	assert.Contains(t, names, "timetable_summary.pdf")

	for _, f := range resp.Files {
		assert.Greater(t, f.SizeBytes, int64(0), f.Name)
		assert.True(t, strings.HasPrefix(f.DownloadURL, "/api/v1/reports/download?token="), f.DownloadURL)
		assert.True(t, f.ExpiresAt.After(time.Now()), f.Name)
	}
}

func TestReportGenerateAllRequiresTimetable(t *testing.T) {
	fx := newReportFixture(t, false)

	_, err := fx.reports.GenerateAll(context.Background())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNoTimetable.Code, appErrors.FromError(err).Code)
}

func TestReportManifestBeforeGenerate(t *testing.T) {
	fx := newReportFixture(t, true)

	_, err := fx.reports.Manifest(context.Background())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestReportManifestReissuesLinks(t *testing.T) {
	fx := newReportFixture(t, true)

	generated, err := fx.reports.GenerateAll(context.Background())
	require.NoError(t, err)

	manifest, err := fx.reports.Manifest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, generated.ReportID, manifest.ReportID)
	assert.Len(t, manifest.Files, len(generated.Files))

	token := tokenFromURL(t, manifest.Files[0].DownloadURL)
	dl, err := fx.reports.ResolveDownload(context.Background(), token)
	require.NoError(t, err)
	require.NoError(t, dl.File.Close())
}

func TestReportResolveDownload(t *testing.T) {
	fx := newReportFixture(t, true)

	resp, err := fx.reports.GenerateAll(context.Background())
	require.NoError(t, err)

	file := findFile(t, resp, "class_C1_timetable.csv")
	dl, err := fx.reports.ResolveDownload(context.Background(), tokenFromURL(t, file.DownloadURL))
	require.NoError(t, err)
	defer dl.File.Close()

	assert.Equal(t, "class_C1_timetable.csv", dl.Filename)
	assert.Equal(t, "text/csv", dl.MimeType)
	assert.Equal(t, file.SizeBytes, dl.SizeBytes)

	payload, err := io.ReadAll(dl.File)
	require.NoError(t, err)
	content := string(payload)
	assert.Contains(t, content, "Day/Period")
	assert.Contains(t, content, "(Rahman) @ ")
	assert.Contains(t, content, "(Akter) @ Lab")
}

func TestReportTeacherViewNamesClasses(t *testing.T) {
	fx := newReportFixture(t, true)

	resp, err := fx.reports.GenerateAll(context.Background())
	require.NoError(t, err)

	file := findFile(t, resp, "teacher_T1_timetable.csv")
	dl, err := fx.reports.ResolveDownload(context.Background(), tokenFromURL(t, file.DownloadURL))
	require.NoError(t, err)
	defer dl.File.Close()

	payload, err := io.ReadAll(dl.File)
	require.NoError(t, err)
	content := string(payload)
	assert.Contains(t, content, "Class 7A @ ")
	assert.Contains(t, content, "Class 7B @ ")
	assert.NotContains(t, content, "(Rahman)")
}

func TestReportResolveDownloadRejectsBadTokens(t *testing.T) {
	fx := newReportFixture(t, true)

	resp, err := fx.reports.GenerateAll(context.Background())
	require.NoError(t, err)
	token := tokenFromURL(t, resp.Files[0].DownloadURL)

	_, err = fx.reports.ResolveDownload(context.Background(), "not-a-token")
	assert.Equal(t, appErrors.ErrDownloadDenied.Code, appErrors.FromError(err).Code)

	foreign := storage.NewSignedURLSigner("another-secret", time.Minute)
	forged, _, err := foreign.Generate(resp.ReportID, "all_assignments.csv")
	require.NoError(t, err)
	_, err = fx.reports.ResolveDownload(context.Background(), forged)
	assert.Equal(t, appErrors.ErrDownloadDenied.Code, appErrors.FromError(err).Code)

	// Regenerating wipes the files the old token pointed at.
	_, err = fx.reports.GenerateAll(context.Background())
	require.NoError(t, err)
	_, err = fx.reports.ResolveDownload(context.Background(), token)
	assert.Equal(t, appErrors.ErrDownloadDenied.Code, appErrors.FromError(err).Code)
}

func TestReportRegenerationWipesOldFiles(t *testing.T) {
	fx := newReportFixture(t, true)

	_, err := fx.reports.GenerateAll(context.Background())
	require.NoError(t, err)
	resp, err := fx.reports.GenerateAll(context.Background())
	require.NoError(t, err)

	entries, err := os.ReadDir(fx.dir)
	require.NoError(t, err)
	assert.Len(t, entries, len(resp.Files))
}

// --- Fixtures ---

type reportFixture struct {
	reports  *ReportService
	schedule *ScheduleService
	dir      string
}

func newReportFixture(t *testing.T, solved bool) reportFixture {
	t.Helper()
	dir := t.TempDir()
	files, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)

	schedule := newScheduleFixture(scheduleFixtureConfig{})
	if solved {
		_, err := schedule.Solve(context.Background(), dto.SolveRequest{})
		require.NoError(t, err)
	}

	signer := storage.NewSignedURLSigner("report-test-secret", time.Minute)
	reports := NewReportService(schedule, files, signer, ReportConfig{}, nil, nil, nil, nil)
	return reportFixture{reports: reports, schedule: schedule, dir: dir}
}

func tokenFromURL(t *testing.T, url string) string {
	t.Helper()
	_, token, ok := strings.Cut(url, "token=")
	require.True(t, ok, "download url %s has no token", url)
	return token
}

func findFile(t *testing.T, resp *dto.ReportManifestResponse, name string) dto.ReportFileResponse {
	t.Helper()
	file, ok := lo.Find(resp.Files, func(f dto.ReportFileResponse) bool { return f.Name == name })
	require.True(t, ok, "manifest should list %s", name)
	return file
}
