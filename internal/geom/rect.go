package geom

// Rect is an axis-aligned rectangle in world space.
// X, Y is the top-left corner; Y grows downward.
type Rect struct {
	X, Y float64
	W, H float64
}

// R is a convenience constructor for Rect.
func R(x, y, w, h float64) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// RectFromCenter builds a w*h rectangle centred on c.
func RectFromCenter(c Vec, w, h float64) Rect {
	return Rect{X: c.X - w/2, Y: c.Y - h/2, W: w, H: h}
}

// Left returns the x-coordinate of the left edge.
func (r Rect) Left() float64 { return r.X }

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Top returns the y-coordinate of the top edge.
func (r Rect) Top() float64 { return r.Y }

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Center returns the centre point of the rectangle.
func (r Rect) Center() Vec {
	return Vec{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// Inflate grows the rectangle by dx in total width and dy in total height,
// keeping it centred.
func (r Rect) Inflate(dx, dy float64) Rect {
	return Rect{X: r.X - dx/2, Y: r.Y - dy/2, W: r.W + dx, H: r.H + dy}
}

// ContainsPoint reports whether p lies inside r.
// Left and top edges are inclusive, right and bottom exclusive.
func (r Rect) ContainsPoint(p Vec) bool {
	return p.X >= r.X && p.X < r.Right() && p.Y >= r.Y && p.Y < r.Bottom()
}

// Intersects reports whether two rectangles overlap.
// Rectangles that only share an edge do not overlap.
func (r Rect) Intersects(o Rect) bool {
	if r.X >= o.Right() || o.X >= r.Right() {
		return false
	}
	if r.Y >= o.Bottom() || o.Y >= r.Bottom() {
		return false
	}
	return true
}

// Corners returns top-left, top-right, bottom-right and bottom-left.
func (r Rect) Corners() [4]Vec {
	return [4]Vec{
		{X: r.X, Y: r.Y},
		{X: r.Right(), Y: r.Y},
		{X: r.Right(), Y: r.Bottom()},
		{X: r.X, Y: r.Bottom()},
	}
}

// Edges decomposes the rectangle into its boundary segments in the order
// top, right, bottom, left.
func (r Rect) Edges() [4]Segment {
	c := r.Corners()
	return [4]Segment{
		{Start: c[0], End: c[1]},
		{Start: c[1], End: c[2]},
		{Start: c[2], End: c[3]},
		{Start: c[3], End: c[0]},
	}
}
