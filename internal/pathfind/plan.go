package pathfind

import (
	"slices"

	"github.com/christian-post/NPC-Escort-Mission/internal/geom"
	"github.com/christian-post/NPC-Escort-Mission/internal/grid"
)

// PlanPath runs a complete search between two world positions and returns
// the route as world waypoints in start-to-goal order, both ends included.
// The result is empty when the goal cannot be reached, including when either
// end maps outside the grid or the goal cell is blocked.
func PlanPath(start, goal geom.Vec, occ *grid.Occupancy, m grid.Mapper, p Pattern, blockValue int) []geom.Vec {
	from := m.ToGrid(start)
	to := m.ToGrid(goal)
	if !occ.InBounds(from) || occ.Blocked(to, blockValue) {
		return []geom.Vec{}
	}

	cells := New(from, to, occ, p, blockValue).Solve()
	slices.Reverse(cells)
	return CellsToWorld(cells, m)
}

// CellsToWorld maps every cell to its world anchor, keeping order.
func CellsToWorld(cells []grid.Cell, m grid.Mapper) []geom.Vec {
	out := make([]geom.Vec, len(cells))
	for i, c := range cells {
		out[i] = m.ToWorld(c)
	}
	return out
}
