// Package pursuit decides how a follower moves toward a target each tick.
//
// With a clear line of sight the follower steers straight at the target.
// When an obstacle blocks the view it re-plans a grid path toward the last
// cell the target was seen standing on, at a throttled rate, and walks the
// resulting waypoints. Paths that are too long, or a target that cannot be
// reached at all, put the follower into the lost state until sight returns.
package pursuit

import (
	"github.com/christian-post/NPC-Escort-Mission/internal/geom"
	"github.com/christian-post/NPC-Escort-Mission/internal/grid"
	"github.com/christian-post/NPC-Escort-Mission/internal/pathfind"
)

// Settings tunes a Controller.
type Settings struct {
	ReplanInterval float64 // seconds between path requests while occluded
	MaxPathLength  int     // stripped path length at which the follower gives up
	DeadZone       float64 // no direct approach closer than this
	WaypointRadius float64 // a waypoint is reached within this distance
	SearchBudget   int     // expansions per tick; 0 solves each request at once
	Pattern        pathfind.Pattern
	BlockValue     int
}

// DefaultSettings returns the tuning used for a 16px tile map.
func DefaultSettings() Settings {
	return Settings{
		ReplanInterval: 0.5,
		MaxPathLength:  100,
		DeadZone:       32,
		WaypointRadius: 16,
		SearchBudget:   0,
		Pattern:        pathfind.Diagonal,
		BlockValue:     grid.DefaultBlockValue,
	}
}

// Mode is the follower's behaviour for the current tick.
type Mode int

const (
	DirectChase Mode = iota
	PathFollow
	Lost
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case DirectChase:
		return "chase"
	case PathFollow:
		return "path"
	case Lost:
		return "lost"
	default:
		return "unknown"
	}
}

// Agent is the follower's kinematic state.
type Agent struct {
	Pos geom.Vec
	Vel geom.Vec
}

// Target is what the follower pursues. LastCell is the most recent free cell
// the target occupied; it is the goal of every path request.
type Target struct {
	Pos      geom.Vec
	LastCell grid.Cell
}

// World is the static environment shared by all followers of a level.
type World struct {
	Obstacles []geom.Rect
	Grid      *grid.Occupancy
	Mapper    grid.Mapper
}

// Decision is the outcome of one Update.
type Decision struct {
	Accel     geom.Vec     // unit vector or zero
	Sight     bool         // line of sight to the target is clear
	Lost      bool         // follower has given up until sight returns
	Mode      Mode         // behaviour chosen this tick
	Path      []grid.Cell  // current stripped path, goal side first
	Waypoints []geom.Vec   // remaining waypoints, the next one last
	Replanned bool         // a new path was adopted this tick
	Line      geom.Segment // sight line, tagged blocked or clear
}

// Controller holds one follower's pursuit state across ticks.
type Controller struct {
	settings Settings

	cooldown    float64
	lost        bool
	unreachable bool
	path        []grid.Cell
	queue       []geom.Vec
	session     *pathfind.Search

	requests int
}

// NewController creates a controller. The re-plan cooldown starts full so
// the first occlusion plans immediately.
func NewController(s Settings) *Controller {
	return &Controller{
		settings: s,
		cooldown: s.ReplanInterval,
	}
}

// Settings returns the active tuning.
func (c *Controller) Settings() Settings {
	return c.settings
}

// SetSettings swaps the tuning without discarding the current path.
func (c *Controller) SetSettings(s Settings) {
	c.settings = s
}

// Reset clears all pursuit state.
func (c *Controller) Reset() {
	*c = Controller{settings: c.settings, cooldown: c.settings.ReplanInterval}
}

// Lost reports whether the follower has given up.
func (c *Controller) Lost() bool {
	return c.lost
}

// Requests returns how many path searches have been started.
func (c *Controller) Requests() int {
	return c.requests
}

// Pending reports whether a budgeted search is still in flight.
func (c *Controller) Pending() bool {
	return c.session != nil
}

// Update advances the controller by dt seconds and returns the steering
// decision for this tick.
func (c *Controller) Update(agent Agent, target Target, world World, dt float64) Decision {
	line := geom.Seg(agent.Pos, target.Pos)
	blocked := line.BlockedBy(world.Obstacles)

	d := Decision{Sight: !blocked}

	if blocked {
		line.Tag = geom.TagBlocked
		if !c.lost {
			d.Replanned = c.plan(agent, target, world, dt)
			d.Accel = c.follow(agent.Pos)
		}
		if len(c.path) >= c.settings.MaxPathLength || c.unreachable {
			c.lost = true
			c.queue = nil
			c.session = nil
			d.Accel = geom.Vec{}
		}
	} else {
		c.lost = false
		c.unreachable = false
		c.cooldown = c.settings.ReplanInterval
		c.path = nil
		c.queue = nil
		c.session = nil

		if to := target.Pos.Sub(agent.Pos); to.Len() > c.settings.DeadZone {
			d.Accel = to.Normalize()
		}
	}

	d.Line = line
	d.Lost = c.lost
	d.Path = append([]grid.Cell(nil), c.path...)
	d.Waypoints = append([]geom.Vec(nil), c.queue...)
	switch {
	case c.lost:
		d.Mode = Lost
	case blocked:
		d.Mode = PathFollow
	default:
		d.Mode = DirectChase
	}
	return d
}

// plan ticks the re-plan cooldown, starts a new search when it expires and
// advances any in-flight search. It reports whether a finished search was
// adopted this tick.
func (c *Controller) plan(agent Agent, target Target, world World, dt float64) bool {
	c.cooldown += dt
	if c.cooldown >= c.settings.ReplanInterval {
		c.cooldown = 0
		start := world.Mapper.ToGrid(agent.Pos)
		c.session = pathfind.New(start, target.LastCell, world.Grid, c.settings.Pattern, c.settings.BlockValue)
		c.requests++
	}
	if c.session == nil {
		return false
	}

	var (
		cells []grid.Cell
		done  bool
	)
	if c.settings.SearchBudget > 0 {
		cells, done = c.session.StepN(c.settings.SearchBudget)
	} else {
		cells, done = c.session.Solve(), true
	}
	if !done {
		return false
	}

	c.unreachable = c.session.Status() == pathfind.NoPath
	c.session = nil
	c.adopt(cells, world.Mapper)
	return true
}

// adopt keeps the interior of a goal-to-start path: the follower already
// stands on the start cell and the goal is only a last-known position.
func (c *Controller) adopt(cells []grid.Cell, m grid.Mapper) {
	if len(cells) <= 2 {
		c.path = nil
	} else {
		c.path = append([]grid.Cell(nil), cells[1:len(cells)-1]...)
	}
	c.queue = pathfind.CellsToWorld(c.path, m)
}

// follow steers at the waypoint nearest the start of the path and drops it
// once it is within reach.
func (c *Controller) follow(pos geom.Vec) geom.Vec {
	if len(c.queue) == 0 {
		return geom.Vec{}
	}
	next := c.queue[len(c.queue)-1]
	to := next.Sub(pos)
	if to.Len() > c.settings.WaypointRadius {
		return to.Normalize()
	}
	c.queue = c.queue[:len(c.queue)-1]
	return geom.Vec{}
}
