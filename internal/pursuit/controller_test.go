package pursuit

import (
	"math"
	"testing"

	"github.com/christian-post/NPC-Escort-Mission/internal/geom"
	"github.com/christian-post/NPC-Escort-Mission/internal/grid"
)

// wallWorld is a 12x8 cell map (96x64 px) with a wall spanning the top six
// rows around columns 4 to 6.
func wallWorld() World {
	m := grid.NewMapper(8)
	walls := []geom.Rect{geom.R(40, 0, 16, 48)}
	return World{
		Obstacles: walls,
		Grid:      grid.BuildForBounds(walls, 96, 64, m),
		Mapper:    m,
	}
}

func openWorld() World {
	m := grid.NewMapper(8)
	return World{Grid: grid.BuildForBounds(nil, 96, 64, m), Mapper: m}
}

func targetAt(w World, p geom.Vec) Target {
	return Target{Pos: p, LastCell: w.Mapper.ToGrid(p)}
}

var (
	agentBehindWall = Agent{Pos: geom.V(20, 20)}
	targetPos       = geom.V(80, 20)
)

func TestDirectChase(t *testing.T) {
	w := openWorld()
	c := NewController(DefaultSettings())

	d := c.Update(Agent{Pos: geom.V(10, 10)}, targetAt(w, geom.V(90, 10)), w, 1.0/60)
	if !d.Sight || d.Mode != DirectChase {
		t.Fatalf("Sight, Mode = %v, %v, expected true, chase", d.Sight, d.Mode)
	}
	if d.Accel != geom.V(1, 0) {
		t.Errorf("Accel = %v, expected (1,0)", d.Accel)
	}
	if d.Line.Tag != geom.TagClear {
		t.Error("clear sight line should be tagged clear")
	}
}

func TestDeadZone(t *testing.T) {
	w := openWorld()
	c := NewController(DefaultSettings())

	tests := []struct {
		name   string
		target geom.Vec
	}{
		{"on top of agent", geom.V(50, 30)},
		{"inside dead zone", geom.V(70, 30)},
		{"exactly at dead zone", geom.V(82, 30)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := c.Update(Agent{Pos: geom.V(50, 30)}, targetAt(w, tc.target), w, 1.0/60)
			if !d.Accel.IsZero() {
				t.Errorf("Accel = %v, expected zero", d.Accel)
			}
		})
	}
}

func TestPathFollowWhenOccluded(t *testing.T) {
	w := wallWorld()
	c := NewController(DefaultSettings())

	d := c.Update(agentBehindWall, targetAt(w, targetPos), w, 1.0/60)
	if d.Sight {
		t.Fatal("wall should block the sight line")
	}
	if d.Line.Tag != geom.TagBlocked {
		t.Error("blocked sight line should be tagged blocked")
	}
	if d.Mode != PathFollow || d.Lost {
		t.Fatalf("Mode, Lost = %v, %v, expected path, false", d.Mode, d.Lost)
	}
	if !d.Replanned || c.Requests() != 1 {
		t.Errorf("Replanned, Requests = %v, %d, expected true, 1", d.Replanned, c.Requests())
	}
	if len(d.Path) == 0 || len(d.Waypoints) == 0 || len(d.Waypoints) > len(d.Path) {
		t.Fatalf("Path = %v, Waypoints = %v", d.Path, d.Waypoints)
	}
	for _, cell := range d.Path {
		if w.Grid.Blocked(cell, grid.DefaultBlockValue) {
			t.Errorf("path cell %v is blocked", cell)
		}
	}
	if !d.Accel.IsZero() && math.Abs(d.Accel.Len()-1) > 1e-9 {
		t.Errorf("|Accel| = %v, expected 0 or 1", d.Accel.Len())
	}

	// Away from the path the follower steers at the waypoint at the tail of
	// the queue.
	away := Agent{Pos: geom.V(4, 60)}
	next := d.Waypoints[len(d.Waypoints)-1]
	d = c.Update(away, targetAt(w, targetPos), w, 1.0/60)
	if d.Replanned {
		t.Fatal("cooldown should prevent a second search")
	}
	want := next.Sub(away.Pos).Normalize()
	if math.Abs(d.Accel.X-want.X) > 1e-9 || math.Abs(d.Accel.Y-want.Y) > 1e-9 {
		t.Errorf("Accel = %v, expected %v", d.Accel, want)
	}
}

func TestWaypointPoppedWithinRadius(t *testing.T) {
	w := wallWorld()
	c := NewController(DefaultSettings())

	d := c.Update(agentBehindWall, targetAt(w, targetPos), w, 1.0/60)
	before := len(d.Waypoints)

	// Standing on the next waypoint consumes it and emits no acceleration.
	onWaypoint := Agent{Pos: d.Waypoints[before-1]}
	d = c.Update(onWaypoint, targetAt(w, targetPos), w, 1.0/60)
	if d.Replanned {
		t.Fatal("second tick should not re-plan")
	}
	if len(d.Waypoints) != before-1 {
		t.Errorf("waypoints = %d, expected %d", len(d.Waypoints), before-1)
	}
	if !d.Accel.IsZero() {
		t.Errorf("Accel = %v, expected zero on the pop tick", d.Accel)
	}
}

func TestReplanThrottle(t *testing.T) {
	w := wallWorld()
	s := DefaultSettings()
	s.ReplanInterval = 0.5
	c := NewController(s)

	const dt = 0.125
	tgt := targetAt(w, targetPos)

	replans := 0
	for i := 0; i < 9; i++ {
		if d := c.Update(agentBehindWall, tgt, w, dt); d.Replanned {
			replans++
		}
	}
	// Ticks 0, 4 and 8.
	if replans != 3 || c.Requests() != 3 {
		t.Errorf("replans, requests = %d, %d, expected 3, 3", replans, c.Requests())
	}
}

func TestSightResetsCooldown(t *testing.T) {
	w := wallWorld()
	c := NewController(DefaultSettings())
	tgt := targetAt(w, targetPos)

	c.Update(agentBehindWall, tgt, w, 1.0/60)
	c.Update(agentBehindWall, tgt, w, 1.0/60)
	if c.Requests() != 1 {
		t.Fatalf("Requests() = %d, expected 1", c.Requests())
	}

	// Sight regained below the wall, then lost again.
	d := c.Update(Agent{Pos: geom.V(20, 60)}, targetAt(w, geom.V(80, 60)), w, 1.0/60)
	if !d.Sight || len(d.Path) != 0 || len(d.Waypoints) != 0 {
		t.Fatalf("clear sight should discard the path: %+v", d)
	}

	d = c.Update(agentBehindWall, tgt, w, 1.0/60)
	if !d.Replanned || c.Requests() != 2 {
		t.Errorf("expected an immediate re-plan after sight was lost again")
	}
}

func TestLostOnLongPath(t *testing.T) {
	w := wallWorld()
	s := DefaultSettings()
	s.MaxPathLength = 3
	c := NewController(s)
	tgt := targetAt(w, targetPos)

	d := c.Update(agentBehindWall, tgt, w, 1.0/60)
	if !d.Lost || d.Mode != Lost {
		t.Fatalf("Lost, Mode = %v, %v, expected true, lost", d.Lost, d.Mode)
	}
	if len(d.Waypoints) != 0 {
		t.Errorf("waypoints should be cleared, got %d", len(d.Waypoints))
	}
	if !d.Accel.IsZero() {
		t.Errorf("Accel = %v, expected zero", d.Accel)
	}

	// Stays lost and does not search while occluded.
	for i := 0; i < 60; i++ {
		d = c.Update(agentBehindWall, tgt, w, 1.0/60)
	}
	if !d.Lost || !d.Accel.IsZero() || c.Requests() != 1 {
		t.Errorf("lost follower must idle: Lost=%v Accel=%v Requests=%d", d.Lost, d.Accel, c.Requests())
	}

	// Regaining sight clears the state.
	d = c.Update(Agent{Pos: geom.V(20, 60)}, targetAt(w, geom.V(80, 60)), w, 1.0/60)
	if d.Lost || c.Lost() {
		t.Error("sight should clear the lost state")
	}
}

func TestLostWhenUnreachable(t *testing.T) {
	w := wallWorld()
	c := NewController(DefaultSettings())

	// Last known cell sits inside the inflated wall.
	tgt := Target{Pos: targetPos, LastCell: grid.C(5, 2)}
	d := c.Update(agentBehindWall, tgt, w, 1.0/60)
	if !d.Lost {
		t.Fatal("unreachable goal should put the follower into the lost state")
	}
	if !d.Accel.IsZero() || len(d.Waypoints) != 0 {
		t.Errorf("Accel = %v, Waypoints = %v, expected zero and none", d.Accel, d.Waypoints)
	}
}

func TestSearchBudget(t *testing.T) {
	w := wallWorld()
	s := DefaultSettings()
	s.SearchBudget = 2
	c := NewController(s)
	tgt := targetAt(w, targetPos)

	// A small dt keeps the re-plan cooldown from expiring mid-search.
	const dt = 1.0 / 600
	d := c.Update(agentBehindWall, tgt, w, dt)
	if d.Replanned || !c.Pending() {
		t.Fatal("a small budget should leave the search in flight after one tick")
	}

	ticks := 1
	for !d.Replanned {
		d = c.Update(agentBehindWall, tgt, w, dt)
		ticks++
		if ticks > 250 {
			t.Fatal("budgeted search never finished")
		}
	}
	if c.Pending() || len(d.Path) == 0 {
		t.Errorf("finished search should be adopted: Pending=%v Path=%v", c.Pending(), d.Path)
	}
	if c.Requests() != 1 {
		t.Errorf("Requests() = %d, expected a single session", c.Requests())
	}

	full := NewController(DefaultSettings())
	want := full.Update(agentBehindWall, tgt, w, 1.0/60)
	if len(want.Path) != len(d.Path) {
		t.Errorf("budgeted path length %d differs from full solve %d", len(d.Path), len(want.Path))
	}
}

func TestReset(t *testing.T) {
	w := wallWorld()
	s := DefaultSettings()
	s.MaxPathLength = 1
	c := NewController(s)

	c.Update(agentBehindWall, targetAt(w, targetPos), w, 1.0/60)
	if !c.Lost() {
		t.Fatal("expected lost state")
	}
	c.Reset()
	if c.Lost() || c.Requests() != 0 || c.Settings().MaxPathLength != 1 {
		t.Error("Reset should clear state and keep settings")
	}
}
