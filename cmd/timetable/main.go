// Command timetable runs one scheduling pass from the command line: load the
// CSV dataset, validate it, solve, and write the report artifacts.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/noah-isme/sma-timetable/internal/dto"
	"github.com/noah-isme/sma-timetable/internal/service"
	"github.com/noah-isme/sma-timetable/internal/store"
	"github.com/noah-isme/sma-timetable/pkg/config"
	appErrors "github.com/noah-isme/sma-timetable/pkg/errors"
	"github.com/noah-isme/sma-timetable/pkg/logger"
	"github.com/noah-isme/sma-timetable/pkg/storage"
)

// Exit codes keep the three failure outcomes distinguishable for wrappers
// and cron jobs.
const (
	exitOK = iota
	exitInfeasible
	exitConfigInvalid
	exitAborted
	exitError
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	var (
		dataDir      string
		outDir       string
		seedOnly     bool
		validateOnly bool
		timeLimit    time.Duration
		nodeLimit    int64
	)
	flag.StringVar(&dataDir, "data", cfg.Dataset.DataDir, "directory holding the CSV dataset")
	flag.StringVar(&outDir, "out", cfg.Reports.OutputDir, "directory for generated report files")
	flag.BoolVar(&seedOnly, "seed-only", false, "write missing sample CSV files and exit")
	flag.BoolVar(&validateOnly, "validate-only", false, "validate the dataset and exit without solving")
	flag.DurationVar(&timeLimit, "time-limit", cfg.Solver.TimeLimit, "search wall-clock cutoff, 0 disables")
	flag.Int64Var(&nodeLimit, "node-limit", cfg.Solver.NodeLimit, "search node cutoff, 0 disables")
	flag.Parse()

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to initialise logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck
	sugar := logr.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	datasets := service.NewDatasetService(store.NewCSVStore(dataDir, nil, logr), logr)

	if seedOnly {
		seeded, err := datasets.Seed(ctx)
		if err != nil {
			sugar.Errorw("seeding failed", "dir", dataDir, "error", err)
			return exitCodeFor(err)
		}
		sugar.Infow("dataset seeded", "dir", dataDir, "files_written", seeded.FilesWritten)
		return exitOK
	}

	if err := datasets.LoadOrSeed(ctx); err != nil {
		sugar.Errorw("dataset load failed", "dir", dataDir, "error", err)
		return exitCodeFor(err)
	}

	report, err := datasets.Validation(ctx)
	if err != nil {
		sugar.Errorw("validation failed", "error", err)
		return exitCodeFor(err)
	}
	for _, issue := range report.Warnings {
		sugar.Warnw("dataset warning", "table", issue.Table, "record", issue.RecordID, "message", issue.Message)
	}
	for _, issue := range report.Errors {
		sugar.Errorw("dataset error", "table", issue.Table, "record", issue.RecordID, "message", issue.Message)
	}
	if !report.OK() {
		sugar.Errorw("dataset invalid", "errors", len(report.Errors))
		return exitConfigInvalid
	}
	if validateOnly {
		sugar.Infow("dataset valid", "warnings", len(report.Warnings))
		return exitOK
	}

	schedule := service.NewScheduleService(datasets, nil, nil, nil, nil, logr, service.ScheduleConfig{
		DefaultTimeLimit: timeLimit,
		DefaultNodeLimit: nodeLimit,
	})

	resp, err := schedule.Solve(ctx, dto.SolveRequest{})
	if err != nil {
		sugar.Errorw("solve failed", "code", appErrors.FromError(err).Code, "error", err)
		return exitCodeFor(err)
	}

	files, err := storage.NewLocalStorage(outDir)
	if err != nil {
		sugar.Errorw("output directory unavailable", "dir", outDir, "error", err)
		return exitError
	}
	signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
	reports := service.NewReportService(schedule, files, signer, service.ReportConfig{APIPrefix: cfg.APIPrefix}, logr, nil, nil, nil)

	manifest, err := reports.GenerateAll(ctx)
	if err != nil {
		sugar.Errorw("report generation failed", "error", err)
		return exitCodeFor(err)
	}

	sugar.Infow("timetable written",
		"outcome", resp.Summary.Outcome,
		"sessions", resp.Summary.Sessions,
		"nodes", resp.Summary.Nodes,
		"backtracks", resp.Summary.Backtracks,
		"elapsed_ms", resp.Summary.ElapsedMillis,
		"files", len(manifest.Files),
		"output_dir", outDir)
	return exitOK
}

func exitCodeFor(err error) int {
	switch appErrors.FromError(err).Code {
	case appErrors.ErrInfeasible.Code:
		return exitInfeasible
	case appErrors.ErrConfigInvalid.Code, appErrors.ErrValidation.Code:
		return exitConfigInvalid
	case appErrors.ErrSearchAborted.Code:
		return exitAborted
	default:
		return exitError
	}
}
