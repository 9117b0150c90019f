// Command schedule_verify re-checks an exported assignment listing against
// the dataset it was generated from, independently of the solver's own
// bookkeeping.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/noah-isme/sma-timetable/internal/models"
	"github.com/noah-isme/sma-timetable/internal/solver"
	"github.com/noah-isme/sma-timetable/internal/store"
)

func main() {
	var (
		dataDir     string
		assignments string
	)
	flag.StringVar(&dataDir, "data", "./data", "directory holding the CSV dataset")
	flag.StringVar(&assignments, "assignments", filepath.Join("output", "all_assignments.csv"), "path to the exported assignment listing")
	flag.Parse()

	ds, err := store.NewCSVStore(dataDir, nil, nil).Load(context.Background())
	if err != nil {
		log.Fatalf("failed to load dataset: %v", err)
	}

	sol, rows, err := loadSolution(assignments)
	if err != nil {
		log.Fatalf("failed to read assignments: %v", err)
	}

	sessions, _, err := solver.ExpandAndComputeDomains(ds)
	if err != nil {
		log.Fatalf("failed to expand sessions: %v", err)
	}

	violations := solver.VerifySolution(ds, sessions, sol)

	fmt.Println("Schedule Verify Report")
	fmt.Println("======================")
	fmt.Printf("Dataset: %s\n", dataDir)
	fmt.Printf("Assignments: %s (%d rows)\n", assignments, rows)
	fmt.Printf("Sessions expected: %d\n", len(sessions))
	if len(violations) == 0 {
		fmt.Println("OK: every constraint holds")
		return
	}
	for _, v := range violations {
		fmt.Printf("[%s] %s\n", v.Dimension, v.Message)
	}
	fmt.Printf("Violations: %d\n", len(violations))
	os.Exit(1)
}

// loadSolution parses an all_assignments.csv back into a solution. Only the
// key and placement columns matter; the name columns are display text the
// verifier does not trust.
func loadSolution(path string) (*models.Solution, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, 0, err
	}
	if len(records) == 0 {
		return nil, 0, fmt.Errorf("%s is empty", path)
	}

	col := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		col[name] = i
	}
	for _, name := range []string{"line_id", "occurrence", "day", "period", "room"} {
		if _, ok := col[name]; !ok {
			return nil, 0, fmt.Errorf("%s is missing column %q", path, name)
		}
	}

	sol := &models.Solution{Assignments: make(map[models.SessionKey]models.Placement, len(records)-1)}
	for i, rec := range records[1:] {
		occurrence, err := strconv.Atoi(rec[col["occurrence"]])
		if err != nil {
			return nil, 0, fmt.Errorf("row %d: bad occurrence: %w", i+2, err)
		}
		day, err := strconv.Atoi(rec[col["day"]])
		if err != nil {
			return nil, 0, fmt.Errorf("row %d: bad day: %w", i+2, err)
		}
		period, err := strconv.Atoi(rec[col["period"]])
		if err != nil {
			return nil, 0, fmt.Errorf("row %d: bad period: %w", i+2, err)
		}
		key := models.SessionKey{LineID: rec[col["line_id"]], Occurrence: occurrence}
		if _, dup := sol.Assignments[key]; dup {
			return nil, 0, fmt.Errorf("row %d: duplicate session %s", i+2, key)
		}
		sol.Assignments[key] = models.Placement{
			Slot:   models.Timeslot{Day: day, Period: period},
			RoomID: rec[col["room"]],
		}
	}
	return sol, len(records) - 1, nil
}
