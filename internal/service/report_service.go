package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable/internal/dto"
	"github.com/noah-isme/sma-timetable/internal/models"
	appErrors "github.com/noah-isme/sma-timetable/pkg/errors"
	"github.com/noah-isme/sma-timetable/pkg/export"
)

type reportSolutionSource interface {
	latestResult() (*scheduleResult, error)
}

type reportStorage interface {
	Save(filename string, data []byte) error
	Open(filename string) (*os.File, int64, error)
	Reset() error
}

type tokenSigner interface {
	Generate(reportID, relPath string) (string, time.Time, error)
	Parse(token string) (reportID, relPath string, expiresAt time.Time, err error)
}

type csvRenderer interface {
	Render(table export.Table) ([]byte, error)
}

type htmlRenderer interface {
	Render(grid export.Grid) ([]byte, error)
}

type pdfRenderer interface {
	Render(info export.SummaryInfo, grids []export.Grid) ([]byte, error)
}

// ReportConfig tunes download link construction.
type ReportConfig struct {
	APIPrefix string
}

// ReportDownload aggregates a resolved download stream.
type ReportDownload struct {
	File      *os.File
	Filename  string
	SizeBytes int64
	MimeType  string
	ExpiresAt time.Time
}

// ReportService materializes the artifact set for the latest timetable and
// serves signed downloads. Artifacts are regenerated wholesale: the output
// directory is emptied first, so the manifest always matches the disk and a
// failed solve can never leave stale files behind.
type ReportService struct {
	source  reportSolutionSource
	storage reportStorage
	signer  tokenSigner
	csv     csvRenderer
	html    htmlRenderer
	pdf     pdfRenderer
	logger  *zap.Logger
	cfg     ReportConfig

	mu       sync.RWMutex
	reportID string
	manifest *models.ReportManifest
}

// NewReportService constructs the report service. Nil renderers default to
// the package exporters.
func NewReportService(
	source reportSolutionSource,
	storage reportStorage,
	signer tokenSigner,
	cfg ReportConfig,
	logger *zap.Logger,
	csv csvRenderer,
	html htmlRenderer,
	pdf pdfRenderer,
) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/v1"
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if html == nil {
		html = export.NewHTMLExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ReportService{
		source:  source,
		storage: storage,
		signer:  signer,
		csv:     csv,
		html:    html,
		pdf:     pdf,
		logger:  logger,
		cfg:     cfg,
	}
}

// GenerateAll renders every artifact for the latest timetable: per-class and
// per-teacher grids as CSV and HTML, the flat assignment listing, and the
// PDF summary. It returns the signed manifest.
func (s *ReportService) GenerateAll(ctx context.Context) (*dto.ReportManifestResponse, error) {
	r, err := s.source.latestResult()
	if err != nil {
		return nil, err
	}
	if err := s.storage.Reset(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reset output directory")
	}

	manifest := &models.ReportManifest{GeneratedAt: time.Now().UTC()}
	write := func(name string, payload []byte) error {
		if err := s.storage.Save(name, payload); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("failed to write %s", name))
		}
		manifest.Files = append(manifest.Files, models.ReportFile{
			Name:    name,
			RelPath: name,
			Size:    int64(len(payload)),
		})
		return nil
	}

	days, periods := gridAxes(r.dataset)

	classGrids := make([]export.Grid, 0, len(r.dataset.Classes))
	for _, cls := range sortedByID(r.dataset.Classes, func(c models.Class) string { return c.ID }) {
		grid := classGrid(r, days, periods, cls)
		if err := s.writeGrid(write, fmt.Sprintf("class_%s_timetable", sanitizeName(cls.ID)), grid); err != nil {
			return nil, err
		}
		classGrids = append(classGrids, grid)
	}

	for _, teacher := range sortedByID(r.dataset.Teachers, func(t models.Teacher) string { return t.ID }) {
		grid := teacherGrid(r, days, periods, teacher)
		if err := s.writeGrid(write, fmt.Sprintf("teacher_%s_timetable", sanitizeName(teacher.ID)), grid); err != nil {
			return nil, err
		}
	}

	assignments, err := s.csv.Render(assignmentTable(r.view))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render assignment listing")
	}
	if err := write("all_assignments.csv", assignments); err != nil {
		return nil, err
	}

	summary, err := s.pdf.Render(summaryInfo(r, manifest.GeneratedAt), classGrids)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render summary pdf")
	}
	if err := write("timetable_summary.pdf", summary); err != nil {
		return nil, err
	}

	reportID := uuid.NewString()
	s.mu.Lock()
	s.reportID = reportID
	s.manifest = manifest
	s.mu.Unlock()

	s.logger.Sugar().Infow("reports generated",
		"report_id", reportID,
		"files", len(manifest.Files),
		"classes", len(r.dataset.Classes),
		"teachers", len(r.dataset.Teachers))

	return s.manifestResponse(reportID, manifest)
}

// Manifest returns the current artifact set with fresh signed links.
func (s *ReportService) Manifest(ctx context.Context) (*dto.ReportManifestResponse, error) {
	s.mu.RLock()
	reportID, manifest := s.reportID, s.manifest
	s.mu.RUnlock()
	if manifest == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no reports have been generated")
	}
	return s.manifestResponse(reportID, manifest)
}

// ResolveDownload validates the token and opens the artifact for streaming.
// Tokens minted for an older report set are rejected: their files were
// wiped when the set was regenerated.
func (s *ReportService) ResolveDownload(ctx context.Context, token string) (*ReportDownload, error) {
	reportID, relPath, expiresAt, err := s.signer.Parse(token)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrDownloadDenied, "invalid or expired download token")
	}
	s.mu.RLock()
	current := s.reportID
	s.mu.RUnlock()
	if current == "" || reportID != current {
		return nil, appErrors.Clone(appErrors.ErrDownloadDenied, "token does not match the current report set")
	}
	file, size, err := s.storage.Open(relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "report file missing")
	}
	return &ReportDownload{
		File:      file,
		Filename:  filepath.Base(relPath),
		SizeBytes: size,
		MimeType:  mimeForFile(relPath),
		ExpiresAt: expiresAt,
	}, nil
}

func (s *ReportService) writeGrid(write func(string, []byte) error, base string, grid export.Grid) error {
	csvPayload, err := s.csv.Render(grid.Table())
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("failed to render %s.csv", base))
	}
	if err := write(base+".csv", csvPayload); err != nil {
		return err
	}
	htmlPayload, err := s.html.Render(grid)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("failed to render %s.html", base))
	}
	return write(base+".html", htmlPayload)
}

func (s *ReportService) manifestResponse(reportID string, manifest *models.ReportManifest) (*dto.ReportManifestResponse, error) {
	files := make([]dto.ReportFileResponse, 0, len(manifest.Files))
	for _, f := range manifest.Files {
		token, expiresAt, err := s.signer.Generate(reportID, f.RelPath)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download link")
		}
		files = append(files, dto.ReportFileResponse{
			Name:        f.Name,
			SizeBytes:   f.Size,
			DownloadURL: fmt.Sprintf("%s/reports/download?token=%s", strings.TrimRight(s.cfg.APIPrefix, "/"), token),
			ExpiresAt:   expiresAt,
		})
	}
	return &dto.ReportManifestResponse{
		ReportID:    reportID,
		GeneratedAt: manifest.GeneratedAt,
		Files:       files,
	}, nil
}

// classGrid renders the class view: who teaches the subject and where.
func classGrid(r *scheduleResult, days, periods []int, cls models.Class) export.Grid {
	cells := emptyCells(len(days), len(periods))
	dayAt, periodAt := axisIndex(days), axisIndex(periods)
	for _, row := range r.view.Rows {
		if row.ClassID != cls.ID {
			continue
		}
		cells[dayAt[row.Day]][periodAt[row.Period]] = fmt.Sprintf("%s\n(%s) @ %s", row.SubjectName, row.TeacherName, row.RoomID)
	}
	return export.Grid{Title: cls.Name, Days: days, Periods: periods, Cells: cells}
}

// teacherGrid renders the teacher view: which class is taught and where.
func teacherGrid(r *scheduleResult, days, periods []int, teacher models.Teacher) export.Grid {
	cells := emptyCells(len(days), len(periods))
	dayAt, periodAt := axisIndex(days), axisIndex(periods)
	for _, row := range r.view.Rows {
		if row.TeacherID != teacher.ID {
			continue
		}
		cells[dayAt[row.Day]][periodAt[row.Period]] = fmt.Sprintf("%s\n%s @ %s", row.SubjectName, row.ClassName, row.RoomID)
	}
	return export.Grid{Title: "Teacher " + teacher.Name, Days: days, Periods: periods, Cells: cells}
}

func assignmentTable(view *models.TimetableView) export.Table {
	rows := lo.Map(view.Rows, func(r models.AssignmentRow, _ int) []string {
		return []string{
			r.LineID,
			strconv.Itoa(r.Occurrence),
			r.ClassName,
			r.SubjectName,
			r.TeacherName,
			strconv.Itoa(r.Day),
			strconv.Itoa(r.Period),
			r.RoomID,
		}
	})
	return export.Table{
		Headers: []string{"line_id", "occurrence", "class", "subject", "teacher", "day", "period", "room"},
		Rows:    rows,
	}
}

func summaryInfo(r *scheduleResult, generatedAt time.Time) export.SummaryInfo {
	sum := r.view.Summary
	return export.SummaryInfo{
		Title: "Timetable Summary",
		Lines: []string{
			fmt.Sprintf("Generated: %s", generatedAt.Format(time.RFC3339)),
			fmt.Sprintf("Classes: %d   Teachers: %d   Rooms: %d   Subjects: %d",
				len(r.dataset.Classes), len(r.dataset.Teachers), len(r.dataset.Rooms), len(r.dataset.Subjects)),
			fmt.Sprintf("Sessions: %d   Nodes: %d   Backtracks: %d   Elapsed: %d ms",
				sum.Sessions, sum.Nodes, sum.Backtracks, sum.ElapsedMillis),
		},
	}
}

func sortedByID[T any](items []T, id func(T) string) []T {
	out := make([]T, len(items))
	copy(out, items)
	sort.Slice(out, func(i, j int) bool { return id(out[i]) < id(out[j]) })
	return out
}

func axisIndex(values []int) map[int]int {
	at := make(map[int]int, len(values))
	for i, v := range values {
		at[v] = i
	}
	return at
}

func emptyCells(days, periods int) [][]string {
	cells := make([][]string, days)
	for i := range cells {
		cells[i] = make([]string, periods)
	}
	return cells
}

// sanitizeName keeps ids safe for use inside a filename.
func sanitizeName(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".")
	out := replacer.Replace(raw)
	if len(out) > 100 {
		return out[:100]
	}
	return out
}

func mimeForFile(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return "text/csv"
	case ".html":
		return "text/html; charset=utf-8"
	case ".pdf":
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}
