package pathfind

import (
	"testing"

	"github.com/christian-post/NPC-Escort-Mission/internal/geom"
	"github.com/christian-post/NPC-Escort-Mission/internal/grid"
)

// parseGrid builds an occupancy grid from rows of '#' (wall) and '.' (free).
func parseGrid(t *testing.T, rows ...string) *grid.Occupancy {
	t.Helper()
	if len(rows) == 0 {
		t.Fatal("parseGrid: no rows")
	}
	cols := len(rows[0])
	values := make([][]int, cols)
	for x := range values {
		values[x] = make([]int, len(rows))
	}
	for y, row := range rows {
		if len(row) != cols {
			t.Fatalf("parseGrid: row %d has %d columns, expected %d", y, len(row), cols)
		}
		for x, ch := range row {
			if ch == '#' {
				values[x][y] = grid.Wall
			} else {
				values[x][y] = grid.Free
			}
		}
	}
	return grid.NewOccupancy(values)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func TestFreeGridPathLength(t *testing.T) {
	occ := grid.NewFree(10, 10)

	tests := []struct {
		name    string
		start   grid.Cell
		goal    grid.Cell
		pattern Pattern
	}{
		{"diagonal long axis x", grid.C(0, 0), grid.C(6, 3), Diagonal},
		{"diagonal long axis y", grid.C(8, 1), grid.C(5, 9), Diagonal},
		{"diagonal pure", grid.C(0, 0), grid.C(9, 9), Diagonal},
		{"straight", grid.C(0, 0), grid.C(6, 3), Straight},
		{"straight reversed", grid.C(9, 9), grid.C(2, 4), Straight},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := New(tc.start, tc.goal, occ, tc.pattern, grid.DefaultBlockValue).Solve()

			dx, dy := abs(tc.goal.X-tc.start.X), abs(tc.goal.Y-tc.start.Y)
			moves := dx + dy
			if tc.pattern == Diagonal {
				moves = max(dx, dy)
			}
			if len(path) != moves+1 {
				t.Fatalf("path has %d cells, expected %d: %v", len(path), moves+1, path)
			}
			if path[0] != tc.goal || path[len(path)-1] != tc.start {
				t.Errorf("path must run goal to start, got %v .. %v", path[0], path[len(path)-1])
			}
		})
	}
}

func TestFiveByFiveDiagonal(t *testing.T) {
	occ := grid.NewFree(5, 5)
	s := New(grid.C(0, 0), grid.C(4, 4), occ, Diagonal, grid.DefaultBlockValue)

	path := s.Solve()
	expected := []grid.Cell{grid.C(4, 4), grid.C(3, 3), grid.C(2, 2), grid.C(1, 1), grid.C(0, 0)}
	if len(path) != len(expected) {
		t.Fatalf("path = %v, expected %v", path, expected)
	}
	for i := range expected {
		if path[i] != expected[i] {
			t.Errorf("path[%d] = %v, expected %v", i, path[i], expected[i])
		}
	}
	if s.Status() != Found || s.Phase() != Done {
		t.Errorf("status/phase = %v/%v, expected found/done", s.Status(), s.Phase())
	}
}

// On a symmetric grid both L-shaped routes cost the same. The first
// neighbour generated (down) is expanded first and the goal is reached
// through it; the later tie at (1,0) never improves the goal.
func TestEqualCostTieBreak(t *testing.T) {
	occ := grid.NewFree(2, 2)
	s := New(grid.C(0, 0), grid.C(1, 1), occ, Straight, grid.DefaultBlockValue)

	path := s.Solve()
	expected := []grid.Cell{grid.C(1, 1), grid.C(0, 1), grid.C(0, 0)}
	if len(path) != len(expected) {
		t.Fatalf("path = %v, expected %v", path, expected)
	}
	for i := range expected {
		if path[i] != expected[i] {
			t.Errorf("path[%d] = %v, expected %v", i, path[i], expected[i])
		}
	}
	if s.Expanded() != 3 {
		t.Errorf("expanded %d cells, expected 3", s.Expanded())
	}
}

func TestWallColumnStraight(t *testing.T) {
	occ := parseGrid(t,
		"..#..",
		"..#..",
		"..#..",
		"..#..",
		"..#..",
	)
	s := New(grid.C(0, 0), grid.C(4, 4), occ, Straight, grid.DefaultBlockValue)

	path := s.Solve()
	if len(path) != 0 {
		t.Errorf("expected no path through a full wall column, got %v", path)
	}
	if s.Status() != NoPath {
		t.Errorf("Status() = %v, expected no path", s.Status())
	}
}

func TestEnclosedGoal(t *testing.T) {
	occ := parseGrid(t,
		".......",
		".......",
		"..###..",
		"..#.#..",
		"..###..",
		".......",
		".......",
	)

	for _, p := range []Pattern{Straight, Diagonal} {
		t.Run(p.String(), func(t *testing.T) {
			s := New(grid.C(0, 0), grid.C(3, 3), occ, p, grid.DefaultBlockValue)
			steps := 0
			for {
				path, done := s.Step()
				steps++
				if done {
					if len(path) != 0 {
						t.Fatalf("expected empty path, got %v", path)
					}
					break
				}
				if steps > 7*7*8 {
					t.Fatal("search did not terminate")
				}
			}
			if s.Status() != NoPath {
				t.Errorf("Status() = %v, expected no path", s.Status())
			}
		})
	}
}

func TestNoCornerCutting(t *testing.T) {
	occ := parseGrid(t,
		".#.",
		"...",
		"...",
	)
	path := New(grid.C(0, 0), grid.C(1, 1), occ, Diagonal, grid.DefaultBlockValue).Solve()
	if len(path) != 3 {
		t.Fatalf("path = %v, expected 3 cells going around the corner", path)
	}
	for i := 1; i < len(path); i++ {
		a, b := path[i-1], path[i]
		if abs(a.X-b.X) == 1 && abs(a.Y-b.Y) == 1 {
			if occ.Blocked(grid.C(a.X, b.Y), grid.DefaultBlockValue) ||
				occ.Blocked(grid.C(b.X, a.Y), grid.DefaultBlockValue) {
				t.Errorf("diagonal move %v -> %v cuts a blocked corner", a, b)
			}
		}
	}
}

func TestGScoreMonotonic(t *testing.T) {
	occ := parseGrid(t,
		"........",
		".####...",
		"....#...",
		"..#.#.##",
		"..#.....",
		"..####..",
		"........",
	)
	s := New(grid.C(0, 6), grid.C(7, 0), occ, Diagonal, grid.DefaultBlockValue)

	seen := make(map[grid.Cell]float64)
	for {
		_, done := s.Step()
		for x := 0; x < occ.Width(); x++ {
			for y := 0; y < occ.Height(); y++ {
				c := grid.C(x, y)
				g, ok := s.GScore(c)
				if !ok {
					continue
				}
				if prev, had := seen[c]; had && g > prev {
					t.Fatalf("g(%v) increased from %v to %v", c, prev, g)
				}
				seen[c] = g
			}
		}
		if done {
			break
		}
	}
	if s.Status() != Found {
		t.Fatalf("Status() = %v, expected found", s.Status())
	}
}

func TestStartIsGoal(t *testing.T) {
	s := New(grid.C(2, 2), grid.C(2, 2), grid.NewFree(5, 5), Diagonal, grid.DefaultBlockValue)
	path, done := s.Step()
	if !done {
		t.Fatal("expected the first step to finish")
	}
	if len(path) != 1 || path[0] != grid.C(2, 2) {
		t.Errorf("path = %v, expected [(2,2)]", path)
	}
	if s.Status() != Found {
		t.Errorf("Status() = %v, expected found", s.Status())
	}
}

func TestStepAfterDone(t *testing.T) {
	s := New(grid.C(0, 0), grid.C(3, 0), grid.NewFree(4, 1), Straight, grid.DefaultBlockValue)
	first := s.Solve()
	again, done := s.Step()
	if !done {
		t.Fatal("Step after completion should stay done")
	}
	if len(again) != len(first) {
		t.Errorf("terminal result changed: %v vs %v", again, first)
	}
}

func TestStepNMatchesSolve(t *testing.T) {
	occ := parseGrid(t,
		"......",
		"..##..",
		"..#...",
		"......",
	)
	want := New(grid.C(0, 0), grid.C(5, 3), occ, Diagonal, grid.DefaultBlockValue).Solve()

	s := New(grid.C(0, 0), grid.C(5, 3), occ, Diagonal, grid.DefaultBlockValue)
	var got []grid.Cell
	batches := 0
	for {
		path, done := s.StepN(2)
		batches++
		if done {
			got = path
			break
		}
		if s.Phase() != Stepping {
			t.Fatalf("Phase() = %v while stepping", s.Phase())
		}
	}

	if batches < 2 {
		t.Errorf("expected the search to span several batches, took %d", batches)
	}
	if len(got) != len(want) {
		t.Fatalf("StepN path = %v, Solve path = %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("path[%d] = %v, expected %v", i, got[i], want[i])
		}
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	occ := grid.NewFree(6, 6)
	a := New(grid.C(0, 0), grid.C(5, 5), occ, Diagonal, grid.DefaultBlockValue)
	b := New(grid.C(5, 0), grid.C(0, 5), occ, Diagonal, grid.DefaultBlockValue)

	a.StepN(3)
	pb := b.Solve()
	pa := a.Solve()

	if len(pa) != 6 || len(pb) != 6 {
		t.Errorf("path lengths = %d, %d, expected 6, 6", len(pa), len(pb))
	}
	if occ.Count(grid.DefaultBlockValue) != 0 {
		t.Error("search must not modify the grid")
	}
}

func TestParsePattern(t *testing.T) {
	tests := []struct {
		in       string
		expected Pattern
		wantErr  bool
	}{
		{"straight", Straight, false},
		{"+", Straight, false},
		{"4", Straight, false},
		{"Diagonal", Diagonal, false},
		{"*", Diagonal, false},
		{"8", Diagonal, false},
		{"hex", Straight, true},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParsePattern(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ParsePattern(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			}
			if !tc.wantErr && got != tc.expected {
				t.Errorf("ParsePattern(%q) = %v, expected %v", tc.in, got, tc.expected)
			}
		})
	}
}

func TestPlanPath(t *testing.T) {
	m := grid.NewMapper(8)
	walls := []geom.Rect{geom.R(32, 0, 8, 48)}
	occ := grid.BuildForBounds(walls, 80, 64, m)

	start := geom.V(4, 4)
	goal := geom.V(76, 4)
	path := PlanPath(start, goal, occ, m, Diagonal, grid.DefaultBlockValue)
	if len(path) == 0 {
		t.Fatal("expected a path around the wall")
	}
	if path[0] != m.ToWorld(m.ToGrid(start)) {
		t.Errorf("first waypoint = %v, expected start anchor", path[0])
	}
	if path[len(path)-1] != m.ToWorld(m.ToGrid(goal)) {
		t.Errorf("last waypoint = %v, expected goal anchor", path[len(path)-1])
	}
	for _, p := range path {
		if occ.Blocked(m.ToGrid(p), grid.DefaultBlockValue) {
			t.Errorf("waypoint %v lies on a blocked cell", p)
		}
	}

	if got := PlanPath(geom.V(-50, 4), goal, occ, m, Diagonal, grid.DefaultBlockValue); len(got) != 0 {
		t.Errorf("out-of-bounds start should give no path, got %v", got)
	}
	if got := PlanPath(start, geom.V(36, 4), occ, m, Diagonal, grid.DefaultBlockValue); len(got) != 0 {
		t.Errorf("goal inside a wall should give no path, got %v", got)
	}
}
