package escort

import (
	"fmt"
	"strings"
	"testing"

	"github.com/christian-post/NPC-Escort-Mission/internal/config"
	"github.com/christian-post/NPC-Escort-Mission/internal/core"
	"github.com/christian-post/NPC-Escort-Mission/internal/geom"
	"github.com/christian-post/NPC-Escort-Mission/internal/level"
	"github.com/christian-post/NPC-Escort-Mission/internal/pursuit"
	"github.com/christian-post/NPC-Escort-Mission/internal/registry"
)

var testRuntime = core.RuntimeConfig{
	ScreenW:  80,
	ScreenH:  24,
	TickRate: 60,
	Seed:     0, // no autopilot dawdling
}

func testConfig() config.EscortConfig {
	cfg := config.DefaultEscortConfig()
	cfg.Difficulty.Enabled = false
	return cfg
}

func mustLevel(t *testing.T, src string) level.Level {
	t.Helper()
	lvl, err := level.ParseYAML([]byte(src))
	if err != nil {
		t.Fatalf("bad test level: %v", err)
	}
	return lvl
}

func newTestGame(t *testing.T, lvl level.Level, attract bool) *Game {
	t.Helper()
	g := New()
	if attract {
		g = NewAttract()
	}
	g.SetLevel(lvl)
	g.SetConfig(testConfig())
	g.Reset(testRuntime)
	if g.Err() != nil {
		t.Fatalf("Reset failed: %v", g.Err())
	}
	return g
}

func idle() core.InputFrame {
	return core.NewInputFrame()
}

const corridorLevel = `
id: corridor
layout:
  - "##########"
  - "#P......N#"
  - "##########"
`

const wallLevel = `
id: wall
layout:
  - "############"
  - "#P...#.....#"
  - "#....#.....#"
  - "#....#..N..#"
  - "#..........#"
  - "############"
`

const sealedLevel = `
id: sealed
layout:
  - "##########"
  - "#P#......#"
  - "###...N..#"
  - "##########"
`

const exitLevel = `
id: exit
layout:
  - "#######"
  - "#P.N..#"
  - "#######"
objects:
  - name: Exit
    x: 16
    y: 16
    w: 16
    h: 16
  - name: Torch
    x: 40
    y: 24
`

func TestBuildWorld(t *testing.T) {
	lvl := level.Default()
	w, err := BuildWorld(lvl, testConfig(), logger)
	if err != nil {
		t.Fatalf("BuildWorld failed: %v", err)
	}

	mw, mh := lvl.WorldSize()
	if w.Grid.Width() != int(mw/8) || w.Grid.Height() != int(mh/8) {
		t.Errorf("grid is %dx%d, expected %dx%d", w.Grid.Width(), w.Grid.Height(), int(mw/8), int(mh/8))
	}
	if len(w.Walls) == 0 {
		t.Error("expected walls")
	}
	if !w.HasExit() {
		t.Error("built-in level should have an exit")
	}
	if w.Player.HitW != 12 || w.NPC.HitW != 7 {
		t.Errorf("hitboxes %v/%v, expected 12/7", w.Player.HitW, w.NPC.HitW)
	}
	if w.NPC.Speed != w.Player.Speed*0.5 {
		t.Errorf("NPC speed = %v, expected half of %v", w.NPC.Speed, w.Player.Speed)
	}
}

func TestBuildWorldSkipsUnknownObjects(t *testing.T) {
	lvl := mustLevel(t, exitLevel)
	w, err := BuildWorld(lvl, testConfig(), logger)
	if err != nil {
		t.Fatalf("unknown objects should be skipped, got %v", err)
	}
	if w.Exit != geom.R(16, 16, 16, 16) {
		t.Errorf("exit = %v", w.Exit)
	}
}

func TestDirectChase(t *testing.T) {
	g := newTestGame(t, mustLevel(t, corridorLevel), false)
	startX := g.world.NPC.Pos.X

	for i := 0; i < 30; i++ {
		g.Step(idle())
	}

	d := g.Decision()
	if !d.Sight || d.Mode != pursuit.DirectChase {
		t.Errorf("decision = sight %v mode %s, expected a direct chase", d.Sight, d.Mode)
	}
	if g.world.NPC.Pos.X >= startX {
		t.Errorf("NPC should walk left toward the player, x %v -> %v", startX, g.world.NPC.Pos.X)
	}
	if g.Stats().SightTicks != 30 {
		t.Errorf("SightTicks = %d, expected 30", g.Stats().SightTicks)
	}
}

func TestPathAroundWall(t *testing.T) {
	g := newTestGame(t, mustLevel(t, wallLevel), false)
	start := g.world.NPC.Pos.DistanceTo(g.world.Player.Pos)

	g.Step(idle())
	d := g.Decision()
	if d.Sight || d.Mode != pursuit.PathFollow {
		t.Fatalf("first tick: sight %v mode %s, expected path following", d.Sight, d.Mode)
	}
	if len(d.Path) == 0 || g.Stats().PathRequests != 1 {
		t.Fatalf("expected one path request with a path, got %d cells / %d requests", len(d.Path), g.Stats().PathRequests)
	}

	for i := 0; i < 900; i++ {
		g.Step(idle())
	}

	end := g.world.NPC.Pos.DistanceTo(g.world.Player.Pos)
	if end >= 64 {
		t.Errorf("NPC ended %.1f px from the player (started %.1f), expected it to come around the wall", end, start)
	}
	if g.Decision().Lost {
		t.Error("NPC should not be lost")
	}
}

func TestLostWhenSealedOff(t *testing.T) {
	g := newTestGame(t, mustLevel(t, sealedLevel), false)
	start := g.world.NPC.Pos

	for i := 0; i < 10; i++ {
		g.Step(idle())
	}

	d := g.Decision()
	if !d.Lost || d.Mode != pursuit.Lost {
		t.Errorf("decision lost=%v mode=%s, expected lost", d.Lost, d.Mode)
	}
	if !d.Accel.IsZero() {
		t.Errorf("lost NPC should not steer, accel = %v", d.Accel)
	}
	if g.world.NPC.Pos != start {
		t.Errorf("lost NPC moved from %v to %v", start, g.world.NPC.Pos)
	}
	if g.Stats().LostEvents != 1 {
		t.Errorf("LostEvents = %d, expected 1", g.Stats().LostEvents)
	}
}

func TestEscortWinAndRestart(t *testing.T) {
	g := newTestGame(t, mustLevel(t, exitLevel), false)

	res := g.Step(idle())
	if !res.State.GameOver || !res.State.Won {
		t.Fatalf("state = %+v, expected a win", res.State)
	}
	if res.State.Score < testConfig().Escort.ExitBonus {
		t.Errorf("score %d should include the exit bonus", res.State.Score)
	}
	if !g.Stats().Escorted {
		t.Error("Stats().Escorted should be set")
	}

	// finished games ignore plain ticks
	g.Step(idle())
	if g.Stats().Ticks != 1 {
		t.Errorf("ticks advanced after the win: %d", g.Stats().Ticks)
	}

	restart := core.NewInputFrame()
	restart.Set(core.ActionRestart)
	g.Step(restart)
	if g.State().GameOver || g.Stats().Ticks != 0 {
		t.Errorf("restart should start over, state %+v ticks %d", g.State(), g.Stats().Ticks)
	}
}

func TestTimeLimit(t *testing.T) {
	g := New()
	g.SetLevel(mustLevel(t, sealedLevel))
	cfg := testConfig()
	cfg.Escort.TimeLimit = 0.5
	g.SetConfig(cfg)
	g.Reset(testRuntime)

	var res core.StepResult
	for i := 0; i < 40; i++ {
		res = g.Step(idle())
	}
	if !res.State.GameOver || res.State.Won {
		t.Errorf("state = %+v, expected failure after the time limit", res.State)
	}
}

func TestPlayerMovesAndTracksCell(t *testing.T) {
	g := newTestGame(t, mustLevel(t, corridorLevel), false)
	start := g.world.Player.Pos

	right := core.NewInputFrame()
	right.Set(core.ActionRight)
	for i := 0; i < 20; i++ {
		g.Step(right)
	}

	p := g.world.Player
	if p.Pos.X <= start.X || p.Pos.Y != start.Y {
		t.Errorf("player moved from %v to %v, expected straight right", start, p.Pos)
	}
	if got := g.world.Mapper.ToGrid(p.Pos); got != p.LastCell {
		t.Errorf("LastCell = %s, expected current free cell %s", p.LastCell, got)
	}
}

func TestPauseAndToggles(t *testing.T) {
	g := newTestGame(t, mustLevel(t, corridorLevel), false)

	pause := core.NewInputFrame()
	pause.Set(core.ActionPause)
	g.Step(pause)
	if !g.State().Paused {
		t.Fatal("expected paused")
	}
	g.Step(idle())
	if g.Stats().Ticks != 0 {
		t.Errorf("paused game advanced %d ticks", g.Stats().Ticks)
	}
	g.Step(pause)
	if g.State().Paused {
		t.Error("second pause should resume")
	}

	toggles := core.NewInputFrame()
	toggles.Set(core.ActionToggleDebug)
	toggles.Set(core.ActionToggleCamera)
	g.Step(toggles)
	if !g.Debug() || !g.followNPC {
		t.Error("debug and camera toggles should flip")
	}
}

func TestDeterminism(t *testing.T) {
	for _, seed := range []int64{0, 42} {
		t.Run(fmt.Sprintf("seed=%d", seed), func(t *testing.T) {
			run := func() Snapshot {
				g := newTestGame(t, level.Default(), true)
				rt := testRuntime
				rt.Seed = seed
				g.Reset(rt)
				for i := 0; i < 400; i++ {
					g.Step(idle())
				}
				return g.Snapshot()
			}

			snap1, snap2 := run(), run()
			if snap1.Hash() != snap2.Hash() {
				t.Errorf("Determinism failed: hashes differ. Run1=%d, Run2=%d", snap1.Hash(), snap2.Hash())
			}
			if snap1.Tick != 400 && snap1.State == StatePlaying {
				t.Errorf("expected 400 ticks, got %d", snap1.Tick)
			}
		})
	}
}

func TestAttractMovesPlayer(t *testing.T) {
	g := newTestGame(t, level.Default(), true)
	start := g.world.Player.Pos

	// movement keys are ignored in attract mode
	left := core.NewInputFrame()
	left.Set(core.ActionLeft)
	for i := 0; i < 120; i++ {
		g.Step(left)
	}

	if g.world.Player.Pos.Y <= start.Y+16 {
		t.Errorf("player at %v, expected the autopilot to walk down from %v", g.world.Player.Pos, start)
	}
}

func TestRender(t *testing.T) {
	g := newTestGame(t, mustLevel(t, wallLevel), false)
	g.Step(idle())

	s := core.NewScreen(testRuntime.ScreenW, testRuntime.ScreenH)
	g.Render(s)

	out := s.String()
	for _, want := range []string{"@", "&", "█", "Score"} {
		if !strings.Contains(out, want) {
			t.Errorf("render output missing %q", want)
		}
	}

	debug := core.NewInputFrame()
	debug.Set(core.ActionToggleDebug)
	g.Step(debug)
	g.Render(s)
	if !strings.Contains(s.Row(0), "path") {
		t.Errorf("debug HUD should show path info, got %q", s.Row(0))
	}
}

func TestRenderScreenTooSmall(t *testing.T) {
	g := New()
	g.SetLevel(mustLevel(t, corridorLevel))
	g.SetConfig(testConfig())
	g.Reset(core.RuntimeConfig{ScreenW: 20, ScreenH: 5, TickRate: 60})

	s := core.NewScreen(20, 5)
	g.Render(s)
	if !strings.Contains(s.String(), "too small") {
		t.Errorf("expected size warning, got %q", s.String())
	}
}

func TestResizeKeepsProgress(t *testing.T) {
	g := newTestGame(t, mustLevel(t, corridorLevel), false)
	for i := 0; i < 10; i++ {
		g.Step(idle())
	}
	npc := g.world.NPC.Pos

	g.Resize(20, 5)
	if !g.screenTooSmall {
		t.Error("20x5 should be too small")
	}
	g.Resize(100, 30)
	if g.screenTooSmall || g.camera.ViewW != 100 || g.camera.ViewH != 28 {
		t.Errorf("camera view = %dx%d, expected 100x28", g.camera.ViewW, g.camera.ViewH)
	}
	if g.Stats().Ticks != 10 || g.world.NPC.Pos != npc {
		t.Error("Resize should not restart the game")
	}
}

func TestASCII(t *testing.T) {
	g := newTestGame(t, mustLevel(t, wallLevel), false)
	g.Step(idle())

	out := g.ASCII()
	rows := strings.Split(out, "\n")
	if len(rows) != g.world.Grid.Height() || len(rows[0]) != g.world.Grid.Width() {
		t.Errorf("ASCII map is %dx%d, expected the grid size", len(rows[0]), len(rows))
	}
	for _, want := range []string{"@", "o", "#"} {
		if !strings.Contains(out, want) {
			t.Errorf("ASCII map missing %q:\n%s", want, out)
		}
	}
}

func TestApplyConfig(t *testing.T) {
	g := newTestGame(t, mustLevel(t, corridorLevel), false)

	cfg := testConfig()
	cfg.Pursuit.MaxPathLength = 7
	cfg.Player.Speed = 30
	g.ApplyConfig(cfg)

	if got := g.world.NPC.Controller.Settings().MaxPathLength; got != 7 {
		t.Errorf("controller MaxPathLength = %d, expected 7", got)
	}
	if g.world.Player.Speed != 30 {
		t.Errorf("player speed = %v, expected 30", g.world.Player.Speed)
	}

	g.Step(idle())
	if got := g.world.NPC.Speed; got != 15 {
		t.Errorf("NPC speed = %v, expected half of the new player speed", got)
	}
}

func TestRegistered(t *testing.T) {
	for _, id := range []string{"escort", "escort_attract"} {
		g, err := registry.Create(id)
		if err != nil {
			t.Fatalf("Create(%q) failed: %v", id, err)
		}
		if g.ID() != id {
			t.Errorf("ID() = %q, expected %q", g.ID(), id)
		}
	}
}
