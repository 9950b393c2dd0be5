// Package config provides YAML-based tuning for the escort simulation and
// difficulty management for the pursuer.
package config

// EscortConfig contains all tuning for the escort game.
type EscortConfig struct {
	Grid       GridConfig       `yaml:"grid"`
	Player     PlayerConfig     `yaml:"player"`
	NPC        NPCConfig        `yaml:"npc"`
	Pursuit    PursuitConfig    `yaml:"pursuit"`
	Physics    PhysicsConfig    `yaml:"physics"`
	Escort     EscortRules      `yaml:"escort"`
	Difficulty DifficultyConfig `yaml:"difficulty"`
}

// GridConfig defines the occupancy grid.
type GridConfig struct {
	CellSize   float64 `yaml:"cell_size"`   // pixels per search cell
	BlockValue int     `yaml:"block_value"` // cells with value >= this are impassable
}

// PlayerConfig defines the controllable character.
type PlayerConfig struct {
	Speed    float64 `yaml:"speed"`
	Friction float64 `yaml:"friction"`
	HitW     float64 `yaml:"hit_w"`
	HitH     float64 `yaml:"hit_h"`
}

// NPCConfig defines the escorted character. Its speed is a fraction of the
// player's.
type NPCConfig struct {
	SpeedFactor float64 `yaml:"speed_factor"`
	Friction    float64 `yaml:"friction"`
	HitW        float64 `yaml:"hit_w"`
	HitH        float64 `yaml:"hit_h"`
}

// PursuitConfig mirrors pursuit.Settings.
type PursuitConfig struct {
	ReplanInterval float64 `yaml:"replan_interval"` // seconds between searches while occluded
	MaxPathLength  int     `yaml:"max_path_length"` // stripped path length at which the NPC gives up
	DeadZone       float64 `yaml:"dead_zone"`       // pixels; no direct chase inside this radius
	WaypointRadius float64 `yaml:"waypoint_radius"` // pixels; waypoint counts as reached
	SearchBudget   int     `yaml:"search_budget"`   // expansions per tick, 0 = solve at once
	Pattern        string  `yaml:"pattern"`         // "straight" or "diagonal"
}

// PhysicsConfig defines shared integration parameters.
type PhysicsConfig struct {
	MinSpeed float64 `yaml:"min_speed"`
}

// EscortRules defines the win condition and scoring.
type EscortRules struct {
	Radius      float64 `yaml:"radius"`       // NPC must be this close to the player at the exit
	TimeLimit   float64 `yaml:"time_limit"`   // seconds, 0 disables
	SightPoints int     `yaml:"sight_points"` // points per second the NPC keeps sight
	ExitBonus   int     `yaml:"exit_bonus"`
}

// DifficultyConfig defines the difficulty progression system.
type DifficultyConfig struct {
	Enabled      bool              `yaml:"enabled"`
	InitialLevel float64           `yaml:"initial_level"` // 0.0 = easy, 1.0 = hard
	Progression  ProgressionConfig `yaml:"progression"`
	Scaling      ScalingConfig     `yaml:"scaling"`
}

// ProgressionConfig defines how difficulty increases over time.
type ProgressionConfig struct {
	Type  string `yaml:"type"`   // "score", "time", or "none"
	MaxAt int    `yaml:"max_at"` // Score/ticks at which max difficulty is reached
}

// ScalingConfig defines the magnitude of difficulty changes.
type ScalingConfig struct {
	SpeedLoss      float64 `yaml:"speed_loss"`      // fraction of NPC speed lost at max difficulty
	PathReduction  int     `yaml:"path_reduction"`  // max path length reduction at max difficulty
	ReplanSlowdown float64 `yaml:"replan_slowdown"` // fraction added to the re-plan interval at max difficulty
}

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyFixed  DifficultyPreset = "fixed"
)

// ParsePreset validates a preset name. The empty string means normal.
func ParsePreset(s string) (DifficultyPreset, bool) {
	switch DifficultyPreset(s) {
	case "":
		return DifficultyNormal, true
	case DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyFixed:
		return DifficultyPreset(s), true
	}
	return "", false
}

// InitialLevelForPreset returns the initial_level for a difficulty preset.
func InitialLevelForPreset(preset DifficultyPreset) float64 {
	switch preset {
	case DifficultyEasy:
		return 0.0
	case DifficultyNormal:
		return 0.3
	case DifficultyHard:
		return 0.7
	default:
		return 0.0
	}
}

// IsFixedPreset returns true if the preset disables progression.
func IsFixedPreset(preset DifficultyPreset) bool {
	return preset == DifficultyFixed
}
