package escort

import (
	"github.com/christian-post/NPC-Escort-Mission/internal/geom"
	"github.com/christian-post/NPC-Escort-Mission/internal/grid"
	"github.com/christian-post/NPC-Escort-Mission/internal/physics"
	"github.com/christian-post/NPC-Escort-Mission/internal/pursuit"
)

// Player is the controllable character.
type Player struct {
	*physics.Body

	// LastCell is the most recent free cell the player stood on. The NPC
	// plans toward it, so it never points into a wall.
	LastCell grid.Cell
}

// Update moves the player by accel for one tick and records its cell.
func (p *Player) Update(accel geom.Vec, w *World, dt float64) {
	p.Acc = accel
	p.Step(dt, w.Walls)

	c := w.Mapper.ToGrid(p.Pos)
	if w.Grid.Value(c) == grid.Free {
		p.LastCell = c
	}
}

// Target returns the player as seen by a pursuer.
func (p *Player) Target() pursuit.Target {
	return pursuit.Target{Pos: p.Pos, LastCell: p.LastCell}
}

// NPC is the escorted character. It follows the player on its own.
type NPC struct {
	*physics.Body
	Controller *pursuit.Controller
}

// Update runs the pursuit controller against target and applies its
// steering.
func (n *NPC) Update(target pursuit.Target, w *World, dt float64) pursuit.Decision {
	d := n.Controller.Update(pursuit.Agent{Pos: n.Pos, Vel: n.Vel}, target, w.Pursuit(), dt)
	n.Acc = d.Accel
	n.Step(dt, w.Walls)
	return d
}
