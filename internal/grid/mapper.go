// Package grid maps continuous world positions onto a discrete cell grid and
// holds the binary occupancy grid the pathfinder searches.
package grid

import (
	"fmt"
	"math"

	"github.com/christian-post/NPC-Escort-Mission/internal/geom"
)

// Cell is a discrete grid coordinate (column, row).
// It is the only key type used by search state; world positions are never
// used as map keys.
type Cell struct {
	X int
	Y int
}

// C is a convenience constructor for Cell.
func C(x, y int) Cell {
	return Cell{X: x, Y: y}
}

// Add returns a new Cell offset by (dx, dy).
func (c Cell) Add(dx, dy int) Cell {
	return Cell{X: c.X + dx, Y: c.Y + dy}
}

// DistanceTo returns the Euclidean distance between two cells.
func (c Cell) DistanceTo(o Cell) float64 {
	return math.Hypot(float64(c.X-o.X), float64(c.Y-o.Y))
}

// String returns a string representation of the cell.
func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Mapper converts between world positions and cells.
type Mapper struct {
	CellSize float64
	Offset   geom.Vec
}

// NewMapper creates a mapper whose cell anchors sit at the cell centres,
// i.e. the offset is half a cell on both axes.
func NewMapper(cellSize float64) Mapper {
	return Mapper{
		CellSize: cellSize,
		Offset:   geom.V(cellSize/2, cellSize/2),
	}
}

// ToGrid returns the cell containing p.
func (m Mapper) ToGrid(p geom.Vec) Cell {
	return ToGrid(p, m.CellSize, m.Offset)
}

// ToWorld returns the world anchor of c.
func (m Mapper) ToWorld(c Cell) geom.Vec {
	return ToWorld(c, m.CellSize, m.Offset)
}

// ToGrid computes floor((p - offset) / cellSize) on both axes.
func ToGrid(p geom.Vec, cellSize float64, offset geom.Vec) Cell {
	return Cell{
		X: int(math.Floor((p.X - offset.X) / cellSize)),
		Y: int(math.Floor((p.Y - offset.Y) / cellSize)),
	}
}

// ToWorld computes cell * cellSize + offset.
//
// ToWorld(ToGrid(p)) is generally not p: ToGrid quantizes, so the round trip
// lands on the cell anchor.
func ToWorld(c Cell, cellSize float64, offset geom.Vec) geom.Vec {
	return geom.Vec{
		X: float64(c.X)*cellSize + offset.X,
		Y: float64(c.Y)*cellSize + offset.Y,
	}
}
