package escort

import (
	"fmt"

	"github.com/christian-post/NPC-Escort-Mission/internal/core"
	"github.com/christian-post/NPC-Escort-Mission/internal/geom"
	"github.com/christian-post/NPC-Escort-Mission/internal/grid"
	"github.com/christian-post/NPC-Escort-Mission/internal/physics"
)

// Visual characters for rendering
const (
	WallChar     = '█'
	ExitChar     = '▒'
	BlockedChar  = '░'
	PlayerChar   = '@'
	NPCChar      = '&'
	LostChar     = '?'
	SightChar    = '·'
	WaypointChar = 'o'
	PilotChar    = '+'
)

// viewTop is the first screen row of the map view; row 0 holds the HUD.
const viewTop = 1

// Render draws the current game state to the screen buffer.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()

	if g.screenTooSmall {
		dst.DrawTextCentered(dst.Height()/2-1, "Screen too small!")
		dst.DrawTextCentered(dst.Height()/2+1, fmt.Sprintf("Need %dx%d", g.minScreenW, g.minScreenH))
		return
	}
	if g.world == nil {
		dst.DrawTextCentered(dst.Height()/2-1, "Level failed to load")
		if g.err != nil {
			dst.DrawTextCentered(dst.Height()/2+1, g.err.Error())
		}
		return
	}

	g.renderMap(dst)
	if g.debug {
		g.renderDebug(dst)
	}
	g.renderActors(dst)
	g.renderHUD(dst)
	g.renderOverlay(dst)
}

// plot draws r at world position p if it is inside the view.
func (g *Game) plot(dst *core.Screen, p geom.Vec, r rune, c core.Color) {
	if !g.camera.Visible(p.X, p.Y) {
		return
	}
	sx, sy := g.camera.ToScreen(p.X, p.Y)
	dst.SetColored(sx, sy+viewTop, r, c)
}

// renderMap samples the world at every view cell centre.
func (g *Game) renderMap(dst *core.Screen) {
	w := g.world
	mw, mh := w.Size()

	for sy := 0; sy < g.camera.ViewH; sy++ {
		for sx := 0; sx < g.camera.ViewW; sx++ {
			wx, wy := g.camera.ToWorld(sx, sy)
			p := geom.V(wx, wy)
			if wx >= mw || wy >= mh {
				continue
			}

			switch {
			case inAny(p, w.Walls):
				dst.SetColored(sx, sy+viewTop, WallChar, core.ColorWall)
			case w.HasExit() && w.Exit.ContainsPoint(p):
				dst.SetColored(sx, sy+viewTop, ExitChar, core.ColorExit)
			case g.debug && w.Grid.Blocked(w.Mapper.ToGrid(p), g.cfg.Grid.BlockValue):
				dst.SetColored(sx, sy+viewTop, BlockedChar, core.ColorFloor)
			}
		}
	}
}

func inAny(p geom.Vec, rects []geom.Rect) bool {
	for _, r := range rects {
		if r.ContainsPoint(p) {
			return true
		}
	}
	return false
}

// renderDebug draws the sight line, the NPC's waypoints and the
// autopilot's plan.
func (g *Game) renderDebug(dst *core.Screen) {
	d := g.decision
	w := g.world

	lineColor := core.ColorSightLine
	if !d.Sight {
		lineColor = core.ColorBlocked
	}
	x0, y0 := g.camera.ToScreen(w.NPC.Pos.X, w.NPC.Pos.Y)
	x1, y1 := g.camera.ToScreen(w.Player.Pos.X, w.Player.Pos.Y)
	dst.DrawLine(x0, y0+viewTop, x1, y1+viewTop, SightChar, lineColor, true)

	for _, p := range d.Waypoints {
		g.plot(dst, p, WaypointChar, core.ColorWaypoint)
	}
	if g.attract {
		for _, p := range g.pilot.Waypoints() {
			g.plot(dst, p, PilotChar, core.ColorDarkGray)
		}
	}
}

func (g *Game) renderActors(dst *core.Screen) {
	w := g.world

	npcColor := core.ColorEscort
	if g.decision.Lost {
		npcColor = core.ColorBlocked
		g.plot(dst, w.NPC.Pos.Sub(geom.V(0, CellH)), LostChar, core.ColorBlocked)
	}
	g.plot(dst, w.NPC.Pos, NPCChar, npcColor)
	g.plot(dst, w.Player.Pos, PlayerChar, core.ColorPlayer)
}

// renderHUD draws the status line on top and the key hints at the bottom.
func (g *Game) renderHUD(dst *core.Screen) {
	w := g.world
	focus := "player"
	if g.followNPC {
		focus = "npc"
	}

	hud := fmt.Sprintf(" %s | Score: %d | %.1fs | NPC: %s | cam: %s",
		w.Level.Name, g.score, g.elapsed, g.decision.Mode, focus)
	if g.debug {
		cell := w.Mapper.ToGrid(w.NPC.Pos)
		hud += fmt.Sprintf(" | cell %s goal %s path %d req %d",
			cell, w.Player.LastCell, len(g.decision.Path), g.stats.PathRequests)
	}
	dst.DrawTextColored(0, 0, hud, core.ColorHUD)

	hint := " WASD move | P pause | F12 debug | F1 camera | Q quit"
	if g.attract {
		hint = " attract mode | F12 debug | F1 camera | Q quit"
	}
	dst.DrawTextColored(0, dst.Height()-1, hint, core.ColorGray)
}

func (g *Game) renderOverlay(dst *core.Screen) {
	switch g.state {
	case StatePaused:
		g.drawCenteredBox(dst, "PAUSED", "Press P to continue")
	case StateWon:
		g.drawCenteredBox(dst, "ESCORTED!", fmt.Sprintf("Score: %d  R to restart", g.score))
	case StateFailed:
		g.drawCenteredBox(dst, "TIME IS UP", "Press R to restart")
	}
}

func (g *Game) drawCenteredBox(dst *core.Screen, title, subtitle string) {
	boxW := max(len(title), len(subtitle)) + 6
	boxH := 5
	x := (dst.Width() - boxW) / 2
	y := (dst.Height() - boxH) / 2
	r := core.NewRect(x, y, boxW, boxH)

	dst.DrawRect(r, ' ', core.ColorDefault)
	dst.DrawBox(r, core.ColorHUD)
	dst.DrawTextColored(x+(boxW-len(title))/2, y+1, title, core.ColorBrightYellow)
	dst.DrawTextColored(x+(boxW-len(subtitle))/2, y+3, subtitle, core.ColorWhite)
}

// facingRune is used by the ASCII map dump to show where actors look.
func facingRune(b *physics.Body) rune {
	if b.Facing() == physics.FacingLeft {
		return '<'
	}
	return '>'
}

// ASCII renders the whole map at one character per search cell, with
// actors and the NPC's path on top. Used by the CLI and tests.
func (g *Game) ASCII() string {
	if g.world == nil {
		return ""
	}
	w := g.world

	marks := make([]Mark, 0, len(g.decision.Path)+3)
	for _, c := range g.decision.Path {
		marks = append(marks, Mark{c, WaypointChar})
	}
	if w.HasExit() {
		marks = append(marks, Mark{w.Mapper.ToGrid(w.Exit.Center()), 'X'})
	}
	marks = append(marks,
		Mark{w.Mapper.ToGrid(w.NPC.Pos), facingRune(w.NPC.Body)},
		Mark{w.Mapper.ToGrid(w.Player.Pos), PlayerChar},
	)
	return w.CellMap(marks...)
}

// Mark is a character drawn over one cell of a CellMap.
type Mark struct {
	Cell grid.Cell
	Rune rune
}

// CellMap renders the occupancy grid as '#' and '.' rows. Marks are drawn
// in order, so later ones win; marks outside the grid are dropped.
func (w *World) CellMap(marks ...Mark) string {
	occ := w.Grid

	rows := make([][]rune, occ.Height())
	for y := range rows {
		rows[y] = make([]rune, occ.Width())
		for x := range rows[y] {
			rows[y][x] = '.'
			if occ.Blocked(grid.C(x, y), w.cfg.Grid.BlockValue) {
				rows[y][x] = '#'
			}
		}
	}
	for _, m := range marks {
		if occ.InBounds(m.Cell) {
			rows[m.Cell.Y][m.Cell.X] = m.Rune
		}
	}

	out := make([]byte, 0, occ.Height()*(occ.Width()+1))
	for y, row := range rows {
		if y > 0 {
			out = append(out, '\n')
		}
		out = append(out, string(row)...)
	}
	return string(out)
}
