package core

import "math"

// Camera maps world pixels onto screen cells.
//
// A terminal cell is roughly twice as tall as it is wide, so one cell covers
// CellW world pixels horizontally and CellH vertically.
type Camera struct {
	CellW float64
	CellH float64

	// Top-left corner of the view in world pixels.
	X, Y float64

	// View size in cells.
	ViewW, ViewH int
}

// NewCamera creates a camera with the given pixel-per-cell scale and view size.
func NewCamera(cellW, cellH float64, viewW, viewH int) Camera {
	return Camera{CellW: cellW, CellH: cellH, ViewW: viewW, ViewH: viewH}
}

// Follow centres the view on (wx, wy) and keeps it inside a mapW*mapH world.
// Maps smaller than the view are pinned to the top-left corner.
func (c *Camera) Follow(wx, wy, mapW, mapH float64) {
	spanW := float64(c.ViewW) * c.CellW
	spanH := float64(c.ViewH) * c.CellH

	c.X = ClampF(wx-spanW/2, 0, mapW-spanW)
	c.Y = ClampF(wy-spanH/2, 0, mapH-spanH)
}

// ToScreen converts a world position to a screen cell.
func (c Camera) ToScreen(wx, wy float64) (int, int) {
	return int(math.Floor((wx - c.X) / c.CellW)), int(math.Floor((wy - c.Y) / c.CellH))
}

// ToWorld returns the world position at the centre of screen cell (sx, sy).
func (c Camera) ToWorld(sx, sy int) (float64, float64) {
	return c.X + (float64(sx)+0.5)*c.CellW, c.Y + (float64(sy)+0.5)*c.CellH
}

// Visible reports whether the world position falls inside the view.
func (c Camera) Visible(wx, wy float64) bool {
	sx, sy := c.ToScreen(wx, wy)
	return sx >= 0 && sx < c.ViewW && sy >= 0 && sy < c.ViewH
}
