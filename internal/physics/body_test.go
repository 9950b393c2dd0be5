package physics

import (
	"math"
	"testing"

	"github.com/christian-post/NPC-Escort-Mission/internal/geom"
)

func TestIntegrate(t *testing.T) {
	b := NewBody(geom.V(100, 100), 20, 0.8, 12, 12)
	b.Acc = geom.V(1, 0)
	b.Integrate(1.0 / 60)

	// vel = (0 + 20/60) * 0.8
	wantVX := 20.0 / 60 * 0.8
	if math.Abs(b.Vel.X-wantVX) > 1e-9 || b.Vel.Y != 0 {
		t.Errorf("Vel = %v, expected (%v,0)", b.Vel, wantVX)
	}
	if math.Abs(b.Pos.X-(100+wantVX)) > 1e-9 {
		t.Errorf("Pos.X = %v, expected %v", b.Pos.X, 100+wantVX)
	}
	if b.Facing() != FacingRight {
		t.Error("expected to face right")
	}
}

func TestIntegrateClampsDiagonal(t *testing.T) {
	straight := NewBody(geom.V(0, 0), 20, 0.8, 12, 12)
	straight.Acc = geom.V(1, 0)
	straight.Integrate(1.0 / 60)

	diag := NewBody(geom.V(0, 0), 20, 0.8, 12, 12)
	diag.Acc = geom.V(1, 1)
	diag.Integrate(1.0 / 60)

	if math.Abs(diag.Vel.Len()-straight.Vel.Len()) > 1e-9 {
		t.Errorf("diagonal speed %v differs from straight speed %v", diag.Vel.Len(), straight.Vel.Len())
	}
}

func TestIntegrateSnapsToRest(t *testing.T) {
	b := NewBody(geom.V(0, 0), 20, 0.8, 12, 12)
	b.Vel = geom.V(0.05, 0)
	b.Integrate(1.0 / 60)

	if b.Moving() {
		t.Errorf("expected body to stop, Vel = %v", b.Vel)
	}
	if b.Pos != geom.V(0, 0) {
		t.Errorf("resting body moved to %v", b.Pos)
	}
}

func TestFrictionBringsBodyToRest(t *testing.T) {
	b := NewBody(geom.V(0, 0), 20, 0.8, 12, 12)
	b.Vel = geom.V(3, -2)
	for i := 0; i < 60; i++ {
		b.Integrate(1.0 / 60)
	}
	if b.Moving() {
		t.Errorf("expected body at rest after a second without input, Vel = %v", b.Vel)
	}
}

func TestResolveWalls(t *testing.T) {
	wall := geom.R(20, 0, 16, 64)

	tests := []struct {
		name    string
		start   geom.Vec
		vel     geom.Vec
		wantPos geom.Vec
		wantVel geom.Vec
	}{
		{
			name:    "hit from the left",
			start:   geom.V(10, 30),
			vel:     geom.V(5, 0),
			wantPos: geom.V(14, 30),
			wantVel: geom.V(0, 0),
		},
		{
			name:    "hit from the right",
			start:   geom.V(46, 30),
			vel:     geom.V(-5, 0),
			wantPos: geom.V(42, 30),
			wantVel: geom.V(0, 0),
		},
		{
			name:    "slides along wall",
			start:   geom.V(10, 30),
			vel:     geom.V(5, 2),
			wantPos: geom.V(14, 32),
			wantVel: geom.V(0, 2),
		},
		{
			name:    "no contact",
			start:   geom.V(0, 30),
			vel:     geom.V(2, 0),
			wantPos: geom.V(2, 30),
			wantVel: geom.V(2, 0),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := NewBody(tc.start, 20, 1, 12, 12)
			b.MinSpeed = 0
			b.Vel = tc.vel
			b.Integrate(0)
			b.ResolveWalls([]geom.Rect{wall})

			if b.Pos != tc.wantPos {
				t.Errorf("Pos = %v, expected %v", b.Pos, tc.wantPos)
			}
			if b.Vel != tc.wantVel {
				t.Errorf("Vel = %v, expected %v", b.Vel, tc.wantVel)
			}
		})
	}
}

func TestResolveWallsFloor(t *testing.T) {
	floor := geom.R(0, 40, 100, 16)
	b := NewBody(geom.V(50, 30), 20, 1, 12, 12)
	b.MinSpeed = 0
	b.Vel = geom.V(0, 8)
	b.Integrate(0)

	if !b.ResolveWalls([]geom.Rect{floor}) {
		t.Fatal("expected a wall hit")
	}
	if b.Pos.Y != 34 || b.Vel.Y != 0 {
		t.Errorf("Pos.Y, Vel.Y = %v, %v, expected 34, 0", b.Pos.Y, b.Vel.Y)
	}
	if b.Hitbox().Intersects(floor) {
		t.Error("hitbox still overlaps the floor")
	}
}
