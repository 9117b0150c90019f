package solver

import (
	"context"
	"fmt"
	"time"

	"github.com/noah-isme/sma-timetable/internal/models"
	appErrors "github.com/noah-isme/sma-timetable/pkg/errors"
)

// Options bounds a solve. Zero values mean unbounded.
type Options struct {
	TimeLimit time.Duration
	NodeLimit int64
}

// Result carries the first solution found plus search statistics.
type Result struct {
	Solution   *models.Solution
	Nodes      int64
	Backtracks int64
	Elapsed    time.Duration
}

type outcome int

const (
	outcomeFound outcome = iota
	outcomeExhausted
	outcomeAborted
)

// occupancy keys the busy maps: one resource claimed at one slot.
type occupancy struct {
	resourceID string
	slot       models.Timeslot
}

type searcher struct {
	sessions []models.Session
	domains  []models.Domain

	placements []models.Placement
	assigned   []bool
	unassigned int

	teacherBusy map[occupancy]bool
	classBusy   map[occupancy]bool
	roomBusy    map[occupancy]bool

	nodes      int64
	backtracks int64

	ctx         context.Context
	deadline    time.Time
	hasDeadline bool
	nodeLimit   int64
}

// Solve assigns every session a (timeslot, room) pair such that no teacher,
// class or room is claimed twice in the same slot. It returns the first
// solution found and is fully deterministic: the next session is the
// unassigned one with the fewest remaining consistent values, ties broken by
// lowest (line id, occurrence); values are tried slot by slot ascending by
// (day, period), rooms ascending by id within each slot.
//
// On failure the error separates the two causes: SCHEDULE_INFEASIBLE when
// the search space was exhausted, SEARCH_ABORTED when a time limit, node
// limit or context cancellation stopped the search first. Neither case
// returns a Result; partial assignments are never exposed.
func Solve(ctx context.Context, sessions []models.Session, domains []models.Domain, opts Options) (*Result, error) {
	if len(sessions) != len(domains) {
		return nil, appErrors.Clone(appErrors.ErrConfigInvalid,
			fmt.Sprintf("got %d sessions but %d domains", len(sessions), len(domains)))
	}
	if ctx == nil {
		ctx = context.Background()
	}

	start := time.Now()
	s := &searcher{
		sessions:    sessions,
		domains:     domains,
		placements:  make([]models.Placement, len(sessions)),
		assigned:    make([]bool, len(sessions)),
		unassigned:  len(sessions),
		teacherBusy: make(map[occupancy]bool),
		classBusy:   make(map[occupancy]bool),
		roomBusy:    make(map[occupancy]bool),
		ctx:         ctx,
		nodeLimit:   opts.NodeLimit,
	}
	if opts.TimeLimit > 0 {
		s.deadline = start.Add(opts.TimeLimit)
		s.hasDeadline = true
	}

	out := s.backtrack()
	elapsed := time.Since(start)

	switch out {
	case outcomeFound:
		assignments := make(map[models.SessionKey]models.Placement, len(sessions))
		for i, sess := range sessions {
			assignments[sess.Key] = s.placements[i]
		}
		return &Result{
			Solution:   &models.Solution{Assignments: assignments},
			Nodes:      s.nodes,
			Backtracks: s.backtracks,
			Elapsed:    elapsed,
		}, nil
	case outcomeAborted:
		return nil, appErrors.Clone(appErrors.ErrSearchAborted,
			fmt.Sprintf("search aborted after %d nodes in %s", s.nodes, elapsed.Round(time.Millisecond)))
	default:
		return nil, appErrors.Clone(appErrors.ErrInfeasible,
			fmt.Sprintf("search space exhausted after %d nodes", s.nodes))
	}
}

// backtrack runs the depth-first search. The abort check sits after the
// completeness check so a solution completed exactly at the cutoff is still
// reported as found.
func (s *searcher) backtrack() outcome {
	if s.unassigned == 0 {
		return outcomeFound
	}
	if s.cutoff() {
		return outcomeAborted
	}
	s.nodes++

	i, remaining := s.selectNext()
	if remaining == 0 {
		return outcomeExhausted
	}

	sess := s.sessions[i]
	d := s.domains[i]
	for _, slot := range d.Slots {
		if s.teacherBusy[occupancy{sess.TeacherID, slot}] || s.classBusy[occupancy{sess.ClassID, slot}] {
			continue
		}
		for _, roomID := range d.RoomIDs {
			if s.roomBusy[occupancy{roomID, slot}] {
				continue
			}
			s.place(i, slot, roomID)
			out := s.backtrack()
			if out == outcomeFound || out == outcomeAborted {
				return out
			}
			s.unplace(i, slot, roomID)
			s.backtracks++
		}
	}
	return outcomeExhausted
}

// selectNext picks the unassigned session with the fewest remaining
// consistent values. Ties go to the lowest session key, which keeps the
// search order independent of input file order.
func (s *searcher) selectNext() (int, int) {
	best := -1
	bestCount := 0
	for i := range s.sessions {
		if s.assigned[i] {
			continue
		}
		count := s.remainingValues(i)
		if best == -1 || count < bestCount ||
			(count == bestCount && s.sessions[i].Key.Less(s.sessions[best].Key)) {
			best = i
			bestCount = count
		}
	}
	return best, bestCount
}

// remainingValues counts the (slot, room) pairs of session i still
// consistent with the current partial assignment. Teacher availability and
// room capacity are already baked into the static domain, so only the busy
// maps matter here.
func (s *searcher) remainingValues(i int) int {
	sess := s.sessions[i]
	count := 0
	for _, slot := range s.domains[i].Slots {
		if s.teacherBusy[occupancy{sess.TeacherID, slot}] || s.classBusy[occupancy{sess.ClassID, slot}] {
			continue
		}
		for _, roomID := range s.domains[i].RoomIDs {
			if !s.roomBusy[occupancy{roomID, slot}] {
				count++
			}
		}
	}
	return count
}

func (s *searcher) place(i int, slot models.Timeslot, roomID string) {
	sess := s.sessions[i]
	s.teacherBusy[occupancy{sess.TeacherID, slot}] = true
	s.classBusy[occupancy{sess.ClassID, slot}] = true
	s.roomBusy[occupancy{roomID, slot}] = true
	s.placements[i] = models.Placement{Slot: slot, RoomID: roomID}
	s.assigned[i] = true
	s.unassigned--
}

func (s *searcher) unplace(i int, slot models.Timeslot, roomID string) {
	sess := s.sessions[i]
	delete(s.teacherBusy, occupancy{sess.TeacherID, slot})
	delete(s.classBusy, occupancy{sess.ClassID, slot})
	delete(s.roomBusy, occupancy{roomID, slot})
	s.assigned[i] = false
	s.unassigned++
}

func (s *searcher) cutoff() bool {
	if s.nodeLimit > 0 && s.nodes >= s.nodeLimit {
		return true
	}
	if s.hasDeadline && time.Now().After(s.deadline) {
		return true
	}
	select {
	case <-s.ctx.Done():
		return true
	default:
		return false
	}
}
