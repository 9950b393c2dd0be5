package grid

import (
	"strings"

	"github.com/christian-post/NPC-Escort-Mission/internal/geom"
)

// Cell values written by Build.
const (
	Free = -1
	Wall = 1

	// DefaultBlockValue is the threshold at or above which a cell is blocked.
	DefaultBlockValue = 1
)

// Occupancy is a 2D array of cell values indexed [column][row].
// It is built once per level and never mutated afterwards, so any number of
// search sessions may read it concurrently.
type Occupancy struct {
	cols  int
	rows  int
	cells [][]int
}

// NewOccupancy creates a grid from column-major values. The slices are
// copied; later changes to values do not affect the grid.
func NewOccupancy(values [][]int) *Occupancy {
	o := &Occupancy{cols: len(values)}
	if o.cols > 0 {
		o.rows = len(values[0])
	}
	o.cells = make([][]int, o.cols)
	for x := range values {
		col := make([]int, o.rows)
		copy(col, values[x])
		o.cells[x] = col
	}
	return o
}

// NewFree creates a cols*rows grid with every cell free.
func NewFree(cols, rows int) *Occupancy {
	values := make([][]int, cols)
	for x := range values {
		values[x] = make([]int, rows)
		for y := range values[x] {
			values[x][y] = Free
		}
	}
	return &Occupancy{cols: cols, rows: rows, cells: values}
}

// Build derives the occupancy grid from static obstacle rectangles.
//
// A cell is a Wall when its world anchor lies inside any obstacle inflated by
// one cell (half a cell on every side), which keeps paths clear of wall faces.
func Build(obstacles []geom.Rect, cols, rows int, m Mapper) *Occupancy {
	inflated := make([]geom.Rect, len(obstacles))
	for i, r := range obstacles {
		inflated[i] = r.Inflate(m.CellSize, m.CellSize)
	}

	o := NewFree(cols, rows)
	for x := 0; x < cols; x++ {
		for y := 0; y < rows; y++ {
			p := m.ToWorld(Cell{X: x, Y: y})
			for _, r := range inflated {
				if r.ContainsPoint(p) {
					o.cells[x][y] = Wall
					break
				}
			}
		}
	}
	return o
}

// BuildForBounds is Build with the grid size derived from the world size.
func BuildForBounds(obstacles []geom.Rect, worldW, worldH float64, m Mapper) *Occupancy {
	cols := int(worldW / m.CellSize)
	rows := int(worldH / m.CellSize)
	return Build(obstacles, cols, rows, m)
}

// Width returns the number of columns.
func (o *Occupancy) Width() int {
	return o.cols
}

// Height returns the number of rows.
func (o *Occupancy) Height() int {
	return o.rows
}

// InBounds reports whether c addresses a cell of the grid.
func (o *Occupancy) InBounds(c Cell) bool {
	return c.X >= 0 && c.X < o.cols && c.Y >= 0 && c.Y < o.rows
}

// Value returns the value stored at c. Cells outside the grid read as Wall.
func (o *Occupancy) Value(c Cell) int {
	if !o.InBounds(c) {
		return Wall
	}
	return o.cells[c.X][c.Y]
}

// Blocked reports whether c is at or above the block threshold.
// Out-of-bounds cells are always blocked.
func (o *Occupancy) Blocked(c Cell, blockValue int) bool {
	return o.Value(c) >= blockValue
}

// Count returns how many cells are blocked under blockValue.
func (o *Occupancy) Count(blockValue int) int {
	n := 0
	for x := range o.cells {
		for _, v := range o.cells[x] {
			if v >= blockValue {
				n++
			}
		}
	}
	return n
}

// String renders the grid row by row, '#' for walls and '.' for free cells.
func (o *Occupancy) String() string {
	var sb strings.Builder
	for y := 0; y < o.rows; y++ {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for x := 0; x < o.cols; x++ {
			if o.cells[x][y] >= DefaultBlockValue {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
	}
	return sb.String()
}
