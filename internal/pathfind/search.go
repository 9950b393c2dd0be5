// Package pathfind implements a resumable best-first grid search.
//
// A Search owns all of its bookkeeping, so a caller can advance it one
// expansion at a time across simulation ticks, throw it away at any point,
// or run several sessions side by side over the same read-only grid.
package pathfind

import (
	"fmt"
	"strings"

	"github.com/christian-post/NPC-Escort-Mission/internal/grid"
)

// Pattern selects which neighbours a cell expands to.
type Pattern int

const (
	// Straight moves along the four axis directions only.
	Straight Pattern = iota
	// Diagonal adds the four diagonal moves to Straight.
	Diagonal
)

// String returns the pattern name.
func (p Pattern) String() string {
	switch p {
	case Straight:
		return "straight"
	case Diagonal:
		return "diagonal"
	default:
		return fmt.Sprintf("pattern(%d)", int(p))
	}
}

// ParsePattern converts a pattern name to a Pattern.
func ParsePattern(s string) (Pattern, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "straight", "4", "+":
		return Straight, nil
	case "diagonal", "8", "*", "":
		return Diagonal, nil
	default:
		return Straight, fmt.Errorf("pathfind: unknown pattern %q", s)
	}
}

// Grid is the read-only view of an occupancy grid the search needs.
type Grid interface {
	Width() int
	Height() int
	Value(c grid.Cell) int
}

// Phase is the lifecycle stage of a search session.
type Phase int

const (
	Initialized Phase = iota
	Stepping
	Done
)

// Status is the outcome of a search session.
type Status int

const (
	Searching Status = iota
	Found
	NoPath
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case Searching:
		return "searching"
	case Found:
		return "found"
	case NoPath:
		return "no path"
	default:
		return "unknown"
	}
}

var (
	straightMoves = [4]grid.Cell{{X: 0, Y: 1}, {X: 0, Y: -1}, {X: 1, Y: 0}, {X: -1, Y: 0}}
	diagonalMoves = [4]grid.Cell{{X: 1, Y: 1}, {X: -1, Y: -1}, {X: 1, Y: -1}, {X: -1, Y: 1}}
)

// Search is one in-flight shortest path query from Start to Goal.
type Search struct {
	start   grid.Cell
	goal    grid.Cell
	grid    Grid
	pattern Pattern
	block   int

	open     []grid.Cell // insertion ordered, duplicates allowed
	g        map[grid.Cell]float64
	f        map[grid.Cell]float64
	cameFrom map[grid.Cell]grid.Cell

	phase    Phase
	status   Status
	path     []grid.Cell
	expanded int
}

// New creates a search session. The open list starts as [start] with
// g(start) = 0 and f(start) = h(start).
func New(start, goal grid.Cell, g Grid, pattern Pattern, blockValue int) *Search {
	s := &Search{
		start:    start,
		goal:     goal,
		grid:     g,
		pattern:  pattern,
		block:    blockValue,
		open:     []grid.Cell{start},
		g:        map[grid.Cell]float64{start: 0},
		f:        map[grid.Cell]float64{start: start.DistanceTo(goal)},
		cameFrom: make(map[grid.Cell]grid.Cell),
	}
	return s
}

// Start returns the start cell.
func (s *Search) Start() grid.Cell { return s.start }

// Goal returns the goal cell.
func (s *Search) Goal() grid.Cell { return s.goal }

// Phase returns the lifecycle stage.
func (s *Search) Phase() Phase { return s.phase }

// Status returns the search outcome so far.
func (s *Search) Status() Status { return s.status }

// OpenLen returns the open list length, duplicates included.
func (s *Search) OpenLen() int { return len(s.open) }

// Expanded returns how many cells have been expanded.
func (s *Search) Expanded() int { return s.expanded }

// GScore returns the best known cost from start to c.
func (s *Search) GScore(c grid.Cell) (float64, bool) {
	v, ok := s.g[c]
	return v, ok
}

// FScore returns g(c) + h(c) as recorded when c was last improved.
func (s *Search) FScore(c grid.Cell) (float64, bool) {
	v, ok := s.f[c]
	return v, ok
}

// Step performs a single expansion.
//
// It returns done=true once the session is finished; path is then the
// reconstructed route in goal-to-start order including both ends, or empty
// when the goal is unreachable. Calling Step after completion returns the
// same terminal result.
func (s *Search) Step() (path []grid.Cell, done bool) {
	if s.phase == Done {
		return s.path, true
	}
	s.phase = Stepping

	if len(s.open) == 0 {
		s.finish(NoPath, nil)
		return s.path, true
	}

	idx := s.lowest()
	current := s.open[idx]

	if current == s.goal {
		s.finish(Found, s.reconstruct(current))
		return s.path, true
	}

	s.open = append(s.open[:idx], s.open[idx+1:]...)
	s.expanded++

	for _, n := range s.neighbours(current) {
		tentative := s.g[current] + n.DistanceTo(current)
		if old, seen := s.g[n]; seen && tentative >= old {
			continue
		}
		s.cameFrom[n] = current
		s.g[n] = tentative
		s.f[n] = tentative + n.DistanceTo(s.goal)
		s.open = append(s.open, n)
	}

	return nil, false
}

// StepN performs at most n expansions and stops early when the session ends.
func (s *Search) StepN(n int) (path []grid.Cell, done bool) {
	for i := 0; i < n; i++ {
		if path, done = s.Step(); done {
			return path, true
		}
	}
	return nil, false
}

// Solve runs the session to completion.
func (s *Search) Solve() []grid.Cell {
	for {
		if path, done := s.Step(); done {
			return path
		}
	}
}

func (s *Search) finish(status Status, path []grid.Cell) {
	s.phase = Done
	s.status = status
	if path == nil {
		path = []grid.Cell{}
	}
	s.path = path
}

// lowest returns the index of the open entry with the smallest f.
// On ties the earliest entry wins.
func (s *Search) lowest() int {
	best := 0
	bestF := s.f[s.open[0]]
	for i := 1; i < len(s.open); i++ {
		if f := s.f[s.open[i]]; f < bestF {
			best, bestF = i, f
		}
	}
	return best
}

func (s *Search) reconstruct(c grid.Cell) []grid.Cell {
	path := []grid.Cell{c}
	for c != s.start {
		prev, ok := s.cameFrom[c]
		if !ok {
			break
		}
		path = append(path, prev)
		c = prev
	}
	return path
}

func (s *Search) free(c grid.Cell) bool {
	if c.X < 0 || c.Y < 0 || c.X >= s.grid.Width() || c.Y >= s.grid.Height() {
		return false
	}
	return s.grid.Value(c) < s.block
}

func (s *Search) neighbours(c grid.Cell) []grid.Cell {
	out := make([]grid.Cell, 0, 8)
	for _, d := range straightMoves {
		if n := c.Add(d.X, d.Y); s.free(n) {
			out = append(out, n)
		}
	}
	if s.pattern != Diagonal {
		return out
	}
	for _, d := range diagonalMoves {
		n := c.Add(d.X, d.Y)
		// Both orthogonal cells shared with the move must be open too.
		if s.free(n) && s.free(grid.C(n.X, c.Y)) && s.free(grid.C(c.X, n.Y)) {
			out = append(out, n)
		}
	}
	return out
}
