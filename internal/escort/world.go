package escort

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/christian-post/NPC-Escort-Mission/internal/config"
	"github.com/christian-post/NPC-Escort-Mission/internal/geom"
	"github.com/christian-post/NPC-Escort-Mission/internal/grid"
	"github.com/christian-post/NPC-Escort-Mission/internal/level"
	"github.com/christian-post/NPC-Escort-Mission/internal/physics"
	"github.com/christian-post/NPC-Escort-Mission/internal/pursuit"
	"github.com/christian-post/NPC-Escort-Mission/internal/registry"
)

// World is one loaded level: static walls, the occupancy grid built from
// them, and the actors.
type World struct {
	Level  level.Level
	Walls  []geom.Rect
	Exit   geom.Rect
	Grid   *grid.Occupancy
	Mapper grid.Mapper
	Player *Player
	NPC    *NPC

	hasExit bool
	cfg     config.EscortConfig
}

// spawners builds map objects into a World by name.
var spawners = newSpawners()

func newSpawners() *registry.Factories[*World] {
	f := registry.NewFactories[*World]()
	f.Register(level.ObjWall, spawnWall)
	f.Register(level.ObjPlayer, spawnPlayer)
	f.Register(level.ObjNPC, spawnNPC)
	f.Register(level.ObjExit, spawnExit)
	return f
}

func spawnWall(w *World, obj registry.Object) error {
	if obj.W <= 0 || obj.H <= 0 {
		return fmt.Errorf("wall at (%v,%v) has size %vx%v", obj.X, obj.Y, obj.W, obj.H)
	}
	w.Walls = append(w.Walls, geom.R(obj.X, obj.Y, obj.W, obj.H))
	return nil
}

func spawnPlayer(w *World, obj registry.Object) error {
	c := w.cfg.Player
	body := physics.NewBody(geom.V(obj.X, obj.Y), c.Speed, c.Friction, c.HitW, c.HitH)
	body.MinSpeed = w.cfg.Physics.MinSpeed
	w.Player = &Player{Body: body}
	return nil
}

func spawnNPC(w *World, obj registry.Object) error {
	c := w.cfg.NPC
	body := physics.NewBody(geom.V(obj.X, obj.Y), w.cfg.Player.Speed*c.SpeedFactor, c.Friction, c.HitW, c.HitH)
	body.MinSpeed = w.cfg.Physics.MinSpeed
	w.NPC = &NPC{
		Body:       body,
		Controller: pursuit.NewController(w.cfg.PursuitSettings()),
	}
	return nil
}

func spawnExit(w *World, obj registry.Object) error {
	width, height := obj.W, obj.H
	if width <= 0 || height <= 0 {
		width, height = w.Level.TileSize, w.Level.TileSize
	}
	w.Exit = geom.R(obj.X, obj.Y, width, height)
	w.hasExit = true
	return nil
}

// BuildWorld spawns every object of lvl and builds the occupancy grid.
// Objects without a spawner are logged and skipped.
func BuildWorld(lvl level.Level, cfg config.EscortConfig, logger *log.Logger) (*World, error) {
	w := &World{
		Level:  lvl,
		Mapper: grid.NewMapper(cfg.Grid.CellSize),
		cfg:    cfg,
	}

	for _, obj := range lvl.Objects {
		err := spawners.Spawn(w, obj)
		var unknown *registry.ErrUnknownObject
		switch {
		case errors.As(err, &unknown):
			logger.Warn("skipping map object", "name", unknown.Name, "level", lvl.ID)
		case err != nil:
			return nil, fmt.Errorf("escort: level %s: %w", lvl.ID, err)
		}
	}
	if w.Player == nil || w.NPC == nil {
		return nil, fmt.Errorf("escort: level %s needs a player and an NPC", lvl.ID)
	}

	worldW, worldH := lvl.WorldSize()
	w.Grid = grid.BuildForBounds(w.Walls, worldW, worldH, w.Mapper)
	w.Player.LastCell = w.Mapper.ToGrid(w.Player.Pos)
	return w, nil
}

// Config returns the tuning the world was built with.
func (w *World) Config() config.EscortConfig {
	return w.cfg
}

// HasExit reports whether the level defines an exit tile.
func (w *World) HasExit() bool {
	return w.hasExit
}

// Size returns the world extent in pixels.
func (w *World) Size() (float64, float64) {
	return w.Level.WorldSize()
}

// Pursuit returns the static environment seen by the NPC controller.
func (w *World) Pursuit() pursuit.World {
	return pursuit.World{Obstacles: w.Walls, Grid: w.Grid, Mapper: w.Mapper}
}

// Escorted reports whether the player stands on the exit with the NPC
// within radius.
func (w *World) Escorted(radius float64) bool {
	if !w.hasExit {
		return false
	}
	return w.Exit.ContainsPoint(w.Player.Pos) && w.NPC.Pos.DistanceTo(w.Player.Pos) <= radius
}
