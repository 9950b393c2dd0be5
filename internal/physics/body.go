// Package physics moves actors with a simple accelerate/friction model and
// keeps their hitboxes out of static walls.
package physics

import "github.com/christian-post/NPC-Escort-Mission/internal/geom"

// Direction is the horizontal facing of a body.
type Direction int

const (
	FacingRight Direction = iota
	FacingLeft
)

// DefaultMinSpeed is the velocity length below which a body stops.
const DefaultMinSpeed = 0.05

// Body is a moving actor. Pos is the hitbox centre.
type Body struct {
	Pos geom.Vec
	Vel geom.Vec
	Acc geom.Vec

	Speed    float64 // acceleration gain in units per second
	Friction float64 // velocity multiplier applied every tick
	MinSpeed float64 // velocities shorter than this snap to zero

	HitW, HitH float64

	prev   geom.Vec
	facing Direction
}

// NewBody creates a body at pos with the given motion parameters.
func NewBody(pos geom.Vec, speed, friction, hitW, hitH float64) *Body {
	return &Body{
		Pos:      pos,
		Speed:    speed,
		Friction: friction,
		MinSpeed: DefaultMinSpeed,
		HitW:     hitW,
		HitH:     hitH,
		prev:     pos,
	}
}

// Hitbox returns the body's collision rectangle centred on Pos.
func (b *Body) Hitbox() geom.Rect {
	return geom.RectFromCenter(b.Pos, b.HitW, b.HitH)
}

// Facing returns the last horizontal direction the body accelerated in.
func (b *Body) Facing() Direction {
	return b.facing
}

// Moving reports whether the body has a non-zero velocity.
func (b *Body) Moving() bool {
	return !b.Vel.IsZero()
}

// Integrate advances velocity and position by one tick.
//
// Acc is clamped to unit length so diagonal input is not faster, then
// Vel += Acc*Speed*dt, Vel *= Friction, and Pos += Vel. Position is advanced
// by the per-tick velocity, not scaled by dt again.
func (b *Body) Integrate(dt float64) {
	b.Acc = b.Acc.ClampLen(1)
	b.Vel = b.Vel.Add(b.Acc.Scale(b.Speed * dt)).Scale(b.Friction)

	if b.Vel.Len() < b.MinSpeed {
		b.Vel = geom.Vec{}
	} else if b.Acc.X > 0 {
		b.facing = FacingRight
	} else if b.Acc.X < 0 {
		b.facing = FacingLeft
	}

	b.prev = b.Pos
	b.Pos = b.Pos.Add(b.Vel)
}

// ResolveWalls pushes the body out of walls it overlaps after Integrate.
//
// The x axis is resolved first with the hitbox still at the previous y, then
// the y axis at the corrected x. Each pass only considers the first
// overlapping wall and zeroes the velocity component it blocks.
// It reports whether any wall was hit.
func (b *Body) ResolveWalls(walls []geom.Rect) bool {
	hitX := b.resolveX(walls)
	hitY := b.resolveY(walls)
	return hitX || hitY
}

// Step is Integrate followed by ResolveWalls.
func (b *Body) Step(dt float64, walls []geom.Rect) {
	b.Integrate(dt)
	b.ResolveWalls(walls)
}

// Teleport moves the body without any motion history.
func (b *Body) Teleport(pos geom.Vec) {
	b.Pos = pos
	b.prev = pos
	b.Vel = geom.Vec{}
	b.Acc = geom.Vec{}
}

func (b *Body) resolveX(walls []geom.Rect) bool {
	box := geom.RectFromCenter(geom.V(b.Pos.X, b.prev.Y), b.HitW, b.HitH)
	w, ok := firstHit(box, walls)
	if !ok {
		return false
	}

	wc := w.Center().X
	switch {
	case wc > b.Pos.X:
		b.Pos.X = w.Left() - b.HitW/2
	case wc < b.Pos.X:
		b.Pos.X = w.Right() + b.HitW/2
	}
	b.Vel.X = 0
	return true
}

func (b *Body) resolveY(walls []geom.Rect) bool {
	w, ok := firstHit(b.Hitbox(), walls)
	if !ok {
		return false
	}

	wc := w.Center().Y
	switch {
	case wc > b.Pos.Y:
		b.Pos.Y = w.Top() - b.HitH/2
	case wc < b.Pos.Y:
		b.Pos.Y = w.Bottom() + b.HitH/2
	}
	b.Vel.Y = 0
	return true
}

func firstHit(box geom.Rect, walls []geom.Rect) (geom.Rect, bool) {
	for _, w := range walls {
		if box.Intersects(w) {
			return w, true
		}
	}
	return geom.Rect{}, false
}
