// Package geom provides continuous-space geometry for the simulation:
// vectors, axis-aligned rectangles and line segments with intersection tests.
// It has no dependencies outside the standard library so it can be shared by
// the pathfinding, physics and pursuit packages.
package geom

import (
	"fmt"
	"math"
)

// Vec is a point or direction in world space (pixels).
type Vec struct {
	X, Y float64
}

// V is a convenience constructor for Vec.
func V(x, y float64) Vec {
	return Vec{X: x, Y: y}
}

// Add returns v + o.
func (v Vec) Add(o Vec) Vec {
	return Vec{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub returns v - o.
func (v Vec) Sub(o Vec) Vec {
	return Vec{X: v.X - o.X, Y: v.Y - o.Y}
}

// Scale returns v multiplied by s.
func (v Vec) Scale(s float64) Vec {
	return Vec{X: v.X * s, Y: v.Y * s}
}

// Len returns the Euclidean length of v.
func (v Vec) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// DistanceTo returns the Euclidean distance between v and o.
func (v Vec) DistanceTo(o Vec) float64 {
	return v.Sub(o).Len()
}

// IsZero reports whether both components are zero.
func (v Vec) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

// Normalize returns the unit vector pointing along v.
// The zero vector normalizes to itself.
func (v Vec) Normalize() Vec {
	l := v.Len()
	if l == 0 {
		return Vec{}
	}
	return Vec{X: v.X / l, Y: v.Y / l}
}

// ClampLen shortens v to at most max while keeping its direction.
func (v Vec) ClampLen(max float64) Vec {
	l := v.Len()
	if l <= max || l == 0 {
		return v
	}
	return v.Scale(max / l)
}

// String returns a compact representation, e.g. "(12.0,4.5)".
func (v Vec) String() string {
	return fmt.Sprintf("(%.1f,%.1f)", v.X, v.Y)
}
