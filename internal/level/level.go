// Package level loads escort maps. A level is an ASCII layout plus optional
// placed objects; both are turned into registry.Object values the game
// spawns through its factory table.
package level

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/christian-post/NPC-Escort-Mission/internal/geom"
	"github.com/christian-post/NPC-Escort-Mission/internal/grid"
	"github.com/christian-post/NPC-Escort-Mission/internal/registry"
)

// Object names understood by the escort game.
const (
	ObjWall   = "Wall"
	ObjPlayer = "Player"
	ObjNPC    = "NPC"
	ObjExit   = "Exit"
)

// DefaultTileSize is used when a file omits tile_size.
const DefaultTileSize = 16

// Layout glyphs.
const (
	GlyphWall   = '#'
	GlyphPlayer = 'P'
	GlyphNPC    = 'N'
	GlyphExit   = 'X'
	GlyphFloor  = '.'
)

// Validation errors.
var (
	ErrNoID        = errors.New("level has no id")
	ErrEmptyLayout = errors.New("layout is empty")
	ErrRagged      = errors.New("layout rows differ in length")
	ErrNoPlayer    = errors.New("level has no player")
	ErrNoNPC       = errors.New("level has no NPC")
	ErrDuplicate   = errors.New("level places more than one")
)

// Level is a parsed, validated map.
type Level struct {
	ID       string
	Name     string
	TileSize float64
	Cols     int // tiles
	Rows     int
	Layout   []string
	Objects  []registry.Object
	Patrol   []grid.Cell // tile coordinates, attract mode route
	Metadata map[string]string
	FilePath string
}

// WorldSize returns the map extent in pixels.
func (l *Level) WorldSize() (w, h float64) {
	return float64(l.Cols) * l.TileSize, float64(l.Rows) * l.TileSize
}

// TileCenter returns the pixel centre of a tile.
func (l *Level) TileCenter(c grid.Cell) geom.Vec {
	return geom.V((float64(c.X)+0.5)*l.TileSize, (float64(c.Y)+0.5)*l.TileSize)
}

// Find returns the first object with the given name.
func (l *Level) Find(name string) (registry.Object, bool) {
	for _, o := range l.Objects {
		if o.Name == name {
			return o, true
		}
	}
	return registry.Object{}, false
}

// Count returns how many objects carry the given name.
func (l *Level) Count(name string) int {
	n := 0
	for _, o := range l.Objects {
		if o.Name == name {
			n++
		}
	}
	return n
}

// Walls returns the wall rectangles in world pixels.
func (l *Level) Walls() []geom.Rect {
	var walls []geom.Rect
	for _, o := range l.Objects {
		if o.Name == ObjWall {
			walls = append(walls, geom.R(o.X, o.Y, o.W, o.H))
		}
	}
	return walls
}

// yamlLevel is the on-disk form.
type yamlLevel struct {
	ID       string            `yaml:"id"`
	Name     string            `yaml:"name"`
	TileSize float64           `yaml:"tile_size,omitempty"`
	Layout   []string          `yaml:"layout"`
	Objects  []yamlObject      `yaml:"objects,omitempty"`
	Patrol   [][2]int          `yaml:"patrol,omitempty"`
	Metadata map[string]string `yaml:"metadata,omitempty"`
}

// yamlObject mirrors an object placed on a map object layer. Walls use x/y
// as the top-left corner, characters as their centre.
type yamlObject struct {
	Name       string            `yaml:"name"`
	X          float64           `yaml:"x"`
	Y          float64           `yaml:"y"`
	W          float64           `yaml:"w,omitempty"`
	H          float64           `yaml:"h,omitempty"`
	Properties map[string]string `yaml:"properties,omitempty"`
}

// ParseYAML parses and validates a level file.
func ParseYAML(data []byte) (Level, error) {
	var yl yamlLevel
	if err := yaml.Unmarshal(data, &yl); err != nil {
		return Level{}, fmt.Errorf("yaml unmarshal: %w", err)
	}

	tile := yl.TileSize
	if tile <= 0 {
		tile = DefaultTileSize
	}

	lvl := Level{
		ID:       yl.ID,
		Name:     yl.Name,
		TileSize: tile,
		Layout:   yl.Layout,
		Metadata: yl.Metadata,
	}
	if lvl.Name == "" {
		lvl.Name = lvl.ID
	}

	objs, err := parseLayout(yl.Layout, tile)
	if err != nil {
		return Level{}, err
	}
	lvl.Rows = len(yl.Layout)
	lvl.Cols = len(yl.Layout[0])
	lvl.Objects = objs

	for _, o := range yl.Objects {
		lvl.Objects = append(lvl.Objects, registry.Object{
			Name:       o.Name,
			X:          o.X,
			Y:          o.Y,
			W:          o.W,
			H:          o.H,
			Properties: o.Properties,
		})
	}
	for _, p := range yl.Patrol {
		lvl.Patrol = append(lvl.Patrol, grid.C(p[0], p[1]))
	}

	if err := lvl.Validate(); err != nil {
		return Level{}, err
	}
	return lvl, nil
}

// Validate checks the invariants the game relies on.
func (l *Level) Validate() error {
	if strings.TrimSpace(l.ID) == "" {
		return ErrNoID
	}
	switch n := l.Count(ObjPlayer); {
	case n == 0:
		return ErrNoPlayer
	case n > 1:
		return fmt.Errorf("%w %s", ErrDuplicate, ObjPlayer)
	}
	switch n := l.Count(ObjNPC); {
	case n == 0:
		return ErrNoNPC
	case n > 1:
		return fmt.Errorf("%w %s", ErrDuplicate, ObjNPC)
	}
	if l.Count(ObjExit) > 1 {
		return fmt.Errorf("%w %s", ErrDuplicate, ObjExit)
	}
	for _, p := range l.Patrol {
		if p.X < 0 || p.Y < 0 || p.X >= l.Cols || p.Y >= l.Rows {
			return fmt.Errorf("patrol point %s outside %dx%d map", p, l.Cols, l.Rows)
		}
	}
	return nil
}

// parseLayout turns the ASCII rows into objects. Horizontal wall runs
// become a single rectangle each.
func parseLayout(rows []string, tile float64) ([]registry.Object, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrEmptyLayout
	}
	width := len(rows[0])

	var objs []registry.Object
	for y, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has %d tiles, expected %d", ErrRagged, y, len(row), width)
		}

		runStart := -1
		flush := func(end int) {
			if runStart < 0 {
				return
			}
			objs = append(objs, registry.Object{
				Name: ObjWall,
				X:    float64(runStart) * tile,
				Y:    float64(y) * tile,
				W:    float64(end-runStart) * tile,
				H:    tile,
			})
			runStart = -1
		}

		for x := 0; x < width; x++ {
			ch := row[x]
			if ch == GlyphWall {
				if runStart < 0 {
					runStart = x
				}
				continue
			}
			flush(x)

			cx := (float64(x) + 0.5) * tile
			cy := (float64(y) + 0.5) * tile
			switch ch {
			case GlyphPlayer:
				objs = append(objs, registry.Object{Name: ObjPlayer, X: cx, Y: cy})
			case GlyphNPC:
				objs = append(objs, registry.Object{Name: ObjNPC, X: cx, Y: cy})
			case GlyphExit:
				objs = append(objs, registry.Object{
					Name: ObjExit,
					X:    float64(x) * tile,
					Y:    float64(y) * tile,
					W:    tile,
					H:    tile,
				})
			case GlyphFloor, ' ':
			default:
				return nil, fmt.Errorf("unknown glyph %q at (%d,%d)", ch, x, y)
			}
		}
		flush(width)
	}
	return objs, nil
}
