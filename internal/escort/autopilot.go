package escort

import (
	"math/rand"

	"github.com/christian-post/NPC-Escort-Mission/internal/geom"
	"github.com/christian-post/NPC-Escort-Mission/internal/pathfind"
)

// Autopilot walks the player along the level's patrol route and finally
// onto the exit. It waits when the NPC falls behind and walks back to it
// when the NPC has lost track.
type Autopilot struct {
	route     []geom.Vec
	next      int
	waypoints []geom.Vec // start to goal
	leash     float64
	reach     float64
	fetching  bool

	rng  *rand.Rand
	idle int
}

// A seeded autopilot now and then stands still for a moment, so runs
// with different seeds play out differently.
const (
	dawdleChance = 1.0 / 300
	dawdleMin    = 20
	dawdleMax    = 60
)

// NewAutopilot builds the route for w: patrol tile centres, then the exit.
func NewAutopilot(w *World, leash float64) *Autopilot {
	a := &Autopilot{leash: leash, reach: w.Mapper.CellSize}
	for _, c := range w.Level.Patrol {
		a.route = append(a.route, w.Level.TileCenter(c))
	}
	if w.HasExit() {
		a.route = append(a.route, w.Exit.Center())
	}
	return a
}

// Seed enables dawdling driven by seed. Zero disables it.
func (a *Autopilot) Seed(seed int64) {
	a.idle = 0
	if seed == 0 {
		a.rng = nil
		return
	}
	a.rng = rand.New(rand.NewSource(seed))
}

// Done reports whether the final route point has been reached.
func (a *Autopilot) Done() bool {
	return a.next >= len(a.route)
}

// Waypoints returns the remaining planned positions.
func (a *Autopilot) Waypoints() []geom.Vec {
	return a.waypoints
}

// Steer returns the player's acceleration for this tick.
func (a *Autopilot) Steer(w *World, npcLost bool) geom.Vec {
	pos := w.Player.Pos

	if npcLost {
		if !a.fetching {
			a.fetching = true
			a.waypoints = nil
		}
		acc := a.walk(w, pos, w.NPC.Pos)
		if acc.IsZero() && len(a.waypoints) == 0 && pos.DistanceTo(w.NPC.Pos) > a.reach {
			// the NPC stands in a cell the grid marks blocked
			acc = w.NPC.Pos.Sub(pos).Normalize()
		}
		return acc
	}
	if a.fetching {
		a.fetching = false
		a.waypoints = nil
	}

	if pos.DistanceTo(w.NPC.Pos) > a.leash {
		return geom.Vec{}
	}
	if a.Done() {
		return geom.Vec{}
	}
	if a.idle > 0 {
		a.idle--
		return geom.Vec{}
	}
	if a.rng != nil && a.rng.Float64() < dawdleChance {
		a.idle = dawdleMin + a.rng.Intn(dawdleMax-dawdleMin+1)
		return geom.Vec{}
	}

	acc := a.walk(w, pos, a.route[a.next])
	if acc.IsZero() && len(a.waypoints) == 0 {
		a.next++
	}
	return acc
}

// walk plans toward goal when no plan is held and steers at the first
// waypoint, dropping those already within reach.
func (a *Autopilot) walk(w *World, pos, goal geom.Vec) geom.Vec {
	if len(a.waypoints) == 0 {
		if pos.DistanceTo(goal) <= a.reach {
			return geom.Vec{}
		}
		a.waypoints = pathfind.PlanPath(pos, goal, w.Grid, w.Mapper, pathfind.Diagonal, w.cfg.Grid.BlockValue)
		if len(a.waypoints) == 0 {
			return geom.Vec{}
		}
	}

	for len(a.waypoints) > 0 && pos.DistanceTo(a.waypoints[0]) <= a.reach {
		a.waypoints = a.waypoints[1:]
	}
	if len(a.waypoints) == 0 {
		return geom.Vec{}
	}
	return a.waypoints[0].Sub(pos).Normalize()
}
