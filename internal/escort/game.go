// Package escort is the NPC escort game: walk the player to the exit while
// the NPC follows on its own, chasing on sight and path-finding around walls.
package escort

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/christian-post/NPC-Escort-Mission/internal/config"
	"github.com/christian-post/NPC-Escort-Mission/internal/core"
	"github.com/christian-post/NPC-Escort-Mission/internal/geom"
	"github.com/christian-post/NPC-Escort-Mission/internal/level"
	"github.com/christian-post/NPC-Escort-Mission/internal/pursuit"
	"github.com/christian-post/NPC-Escort-Mission/internal/registry"
)

// Game state names.
const (
	StatePlaying = "playing"
	StatePaused  = "paused"
	StateWon     = "won"    // player and NPC reached the exit together
	StateFailed  = "failed" // time limit ran out
	StateBroken  = "broken" // level could not be built
)

// Camera scale: one terminal cell covers this many world pixels.
const (
	CellW = 4
	CellH = 8
)

// attractRestartTicks is how long attract mode shows the result before
// starting over.
const attractRestartTicks = 180

// leashTiles is how far ahead the autopilot walks before waiting.
const leashTiles = 5

var (
	// configPath stores the custom config path set via CLI
	configPath string

	// difficultyPreset stores the difficulty preset set via CLI
	difficultyPreset config.DifficultyPreset

	// defaultLevel is used by games without a level of their own
	defaultLevel *level.Level

	logger = log.New(io.Discard)
)

// SetConfigPath sets the custom config path for loading.
func SetConfigPath(path string) {
	configPath = path
}

// SetDifficultyPreset sets the difficulty preset. Unknown names clear it.
func SetDifficultyPreset(preset string) {
	p, ok := config.ParsePreset(preset)
	if !ok || preset == "" {
		difficultyPreset = ""
		return
	}
	difficultyPreset = p
}

// SetDefaultLevel selects the level new games start on.
func SetDefaultLevel(l level.Level) {
	defaultLevel = &l
}

// SetLogger routes game logging. Pass nil to silence it.
func SetLogger(l *log.Logger) {
	if l == nil {
		l = log.New(io.Discard)
	}
	logger = l
}

// Stats counts what happened during a run.
type Stats struct {
	Ticks        int
	SightTicks   int // ticks the NPC could see the player
	PathRequests int
	LostEvents   int // transitions into the lost state
	MaxPath      int
	Escorted     bool
}

// Game implements the escort game logic.
type Game struct {
	attract bool

	world *World
	lvl   *level.Level
	pilot *Autopilot

	// Configuration
	runtime     core.RuntimeConfig
	cfg         config.EscortConfig
	cfgOverride *config.EscortConfig
	difficulty  *config.DifficultyManager

	state    string
	score    int
	elapsed  float64
	stats    Stats
	decision pursuit.Decision
	endDelay int
	err      error

	camera    core.Camera
	followNPC bool
	debug     bool

	minScreenW     int
	minScreenH     int
	screenTooSmall bool
}

// New creates a new game driven by the player's input.
func New() *Game {
	return &Game{}
}

// NewAttract creates a self-playing game.
func NewAttract() *Game {
	return &Game{attract: true}
}

// ID returns the unique identifier for this game.
func (g *Game) ID() string {
	if g.attract {
		return "escort_attract"
	}
	return "escort"
}

// Title returns the display name for this game.
func (g *Game) Title() string {
	if g.attract {
		return "NPC Escort (Attract)"
	}
	return "NPC Escort"
}

// SetLevel pins the level for this instance. Takes effect on the next Reset.
func (g *Game) SetLevel(l level.Level) {
	g.lvl = &l
}

// SetConfig bypasses config file loading. Takes effect on the next Reset.
func (g *Game) SetConfig(cfg config.EscortConfig) {
	g.cfgOverride = &cfg
}

// Reset initializes or restarts the game.
func (g *Game) Reset(runtime core.RuntimeConfig) {
	g.runtime = runtime

	if g.cfgOverride != nil {
		g.cfg = *g.cfgOverride
	} else {
		cfg, err := config.Load(configPath)
		if err != nil {
			logger.Warn("using default config", "err", err)
			cfg = config.DefaultEscortConfig()
		}
		if difficultyPreset != "" {
			config.ApplyPreset(&cfg, difficultyPreset)
		}
		g.cfg = cfg
	}
	g.difficulty = config.NewDifficultyManager(g.cfg.Difficulty)

	g.state = StatePlaying
	g.score = 0
	g.elapsed = 0
	g.stats = Stats{}
	g.decision = pursuit.Decision{}
	g.endDelay = 0
	g.err = nil

	g.minScreenW = 30
	g.minScreenH = 10
	g.screenTooSmall = runtime.ScreenW < g.minScreenW || runtime.ScreenH < g.minScreenH
	g.camera = core.NewCamera(CellW, CellH, runtime.ScreenW, runtime.ScreenH-2)

	lvl := g.currentLevel()
	w, err := BuildWorld(lvl, g.cfg, logger)
	if err != nil {
		logger.Error("cannot build level", "level", lvl.ID, "err", err)
		g.err = err
		g.state = StateBroken
		g.world = nil
		return
	}
	g.world = w
	g.pilot = NewAutopilot(w, leashTiles*lvl.TileSize)
	g.pilot.Seed(runtime.Seed)
	g.followCamera()
}

func (g *Game) currentLevel() level.Level {
	switch {
	case g.lvl != nil:
		return *g.lvl
	case defaultLevel != nil:
		return *defaultLevel
	default:
		return level.Default()
	}
}

// Resize adapts the view to a new screen size without restarting.
func (g *Game) Resize(w, h int) {
	g.runtime.ScreenW, g.runtime.ScreenH = w, h
	g.screenTooSmall = w < g.minScreenW || h < g.minScreenH
	g.camera = core.NewCamera(CellW, CellH, w, h-2)
	g.followCamera()
}

// ApplyConfig swaps tuning mid-run, e.g. after the config file changed.
// Positions, paths and counters are kept.
// The difficulty preset, if any, is applied on top.
func (g *Game) ApplyConfig(cfg config.EscortConfig) {
	if difficultyPreset != "" {
		config.ApplyPreset(&cfg, difficultyPreset)
	}
	g.cfg = cfg
	g.cfgOverride = &cfg
	g.difficulty = config.NewDifficultyManager(cfg.Difficulty)
	if g.world == nil {
		return
	}
	g.world.cfg = cfg
	p := g.world.Player
	p.Speed, p.Friction = cfg.Player.Speed, cfg.Player.Friction
	p.HitW, p.HitH = cfg.Player.HitW, cfg.Player.HitH
	n := g.world.NPC
	n.Friction = cfg.NPC.Friction
	n.HitW, n.HitH = cfg.NPC.HitW, cfg.NPC.HitH
	n.Controller.SetSettings(cfg.PursuitSettings())
	logger.Info("config applied", "replan", cfg.Pursuit.ReplanInterval, "max_path", cfg.Pursuit.MaxPathLength)
}

// Step advances the game by one tick.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	if g.screenTooSmall || g.world == nil {
		return core.StepResult{State: g.State()}
	}

	ended := g.state == StateWon || g.state == StateFailed

	// Handle restart
	if in.Has(core.ActionRestart) && ended {
		g.Reset(g.runtime)
		return core.StepResult{State: g.State()}
	}

	if in.Has(core.ActionToggleDebug) {
		g.debug = !g.debug
	}
	if in.Has(core.ActionToggleCamera) {
		g.followNPC = !g.followNPC
		g.followCamera()
	}

	// Handle pause toggle
	if in.Has(core.ActionPause) {
		if g.state == StatePaused {
			g.state = StatePlaying
		} else if g.state == StatePlaying {
			g.state = StatePaused
		}
	}

	if ended && g.attract {
		g.endDelay++
		if g.endDelay >= attractRestartTicks {
			g.Reset(g.runtime)
		}
		return core.StepResult{State: g.State()}
	}
	if g.state != StatePlaying {
		return core.StepResult{State: g.State()}
	}

	var events []string
	dt := g.runtime.DT()
	g.stats.Ticks++
	g.elapsed += dt

	g.applyDifficulty()

	w := g.world
	prev := g.decision

	accel := g.inputAccel(in)
	if g.attract {
		accel = g.pilot.Steer(w, prev.Lost)
	}
	w.Player.Update(accel, w, dt)
	g.decision = w.NPC.Update(w.Player.Target(), w, dt)

	d := g.decision
	if d.Sight {
		g.stats.SightTicks++
	}
	if d.Mode != prev.Mode && g.stats.Ticks > 1 {
		logger.Debug("pursuit mode", "from", prev.Mode, "to", d.Mode, "tick", g.stats.Ticks)
	}
	if d.Lost && !prev.Lost {
		g.stats.LostEvents++
		events = append(events, "the NPC lost track of you")
	}
	if !d.Lost && prev.Lost {
		events = append(events, "the NPC found you again")
	}
	g.stats.PathRequests = w.NPC.Controller.Requests()
	if len(d.Path) > g.stats.MaxPath {
		g.stats.MaxPath = len(d.Path)
	}

	g.score = g.stats.SightTicks * g.cfg.Escort.SightPoints / max(g.runtime.TickRate, 1)

	switch {
	case w.Escorted(g.cfg.Escort.Radius):
		g.stats.Escorted = true
		g.score += g.cfg.Escort.ExitBonus
		g.state = StateWon
		events = append(events, "escort complete")
		logger.Info("escort complete", "level", w.Level.ID, "ticks", g.stats.Ticks, "score", g.score)
	case g.cfg.Escort.TimeLimit > 0 && g.elapsed >= g.cfg.Escort.TimeLimit:
		g.state = StateFailed
		events = append(events, "time is up")
	}

	g.followCamera()
	return core.StepResult{State: g.State(), Events: events}
}

// inputAccel maps held movement keys to a direction.
func (g *Game) inputAccel(in core.InputFrame) geom.Vec {
	x, y := in.Axis()
	return geom.V(x, y)
}

// applyDifficulty rescales pursuit tuning from elapsed ticks and score.
func (g *Game) applyDifficulty() {
	n := g.world.NPC
	ticks := g.stats.Ticks

	n.Speed = g.difficulty.NPCSpeed(g.cfg.Player.Speed*g.cfg.NPC.SpeedFactor, g.score, ticks)

	s := g.cfg.PursuitSettings()
	s.MaxPathLength = g.difficulty.MaxPathLength(s.MaxPathLength, g.score, ticks)
	s.ReplanInterval = g.difficulty.ReplanInterval(s.ReplanInterval, g.score, ticks)
	n.Controller.SetSettings(s)
}

func (g *Game) followCamera() {
	if g.world == nil {
		return
	}
	focus := g.world.Player.Pos
	if g.followNPC {
		focus = g.world.NPC.Pos
	}
	mw, mh := g.world.Size()
	g.camera.Follow(focus.X, focus.Y, mw, mh)
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	return core.GameState{
		Score:    g.score,
		GameOver: g.state == StateWon || g.state == StateFailed || g.state == StateBroken,
		Won:      g.state == StateWon,
		Paused:   g.state == StatePaused,
	}
}

// Stats returns the run counters.
func (g *Game) Stats() Stats {
	return g.stats
}

// Decision returns the NPC's most recent pursuit decision.
func (g *Game) Decision() pursuit.Decision {
	return g.decision
}

// World returns the loaded level, or nil if it failed to build.
func (g *Game) World() *World {
	return g.world
}

// LevelID returns the ID of the level being played.
func (g *Game) LevelID() string {
	if g.world != nil {
		return g.world.Level.ID
	}
	return g.currentLevel().ID
}

// Err returns why the level could not be built.
func (g *Game) Err() error {
	return g.err
}

// Debug reports whether the debug overlay is shown.
func (g *Game) Debug() bool {
	return g.debug
}

// Elapsed returns the simulated time in seconds.
func (g *Game) Elapsed() float64 {
	return g.elapsed
}

func (g *Game) String() string {
	return fmt.Sprintf("%s[%s %s]", g.ID(), g.LevelID(), g.state)
}

func init() {
	registry.Register("escort", func() registry.Game { return New() })
	registry.Register("escort_attract", func() registry.Game { return NewAttract() })
}
