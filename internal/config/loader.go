package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/christian-post/NPC-Escort-Mission/internal/pathfind"
	"github.com/christian-post/NPC-Escort-Mission/internal/pursuit"
)

// FileName is the tuning file looked up in the config directories.
const FileName = "escort.yaml"

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid config")

// Load loads the escort configuration.
// Search order: customPath -> ~/.escort/configs/escort.yaml -> ./configs/escort.yaml -> embedded default
// Files only need to name the keys they change; everything else keeps its default.
func Load(customPath string) (EscortConfig, error) {
	// Try custom path first
	if customPath != "" {
		return LoadFile(customPath)
	}

	// Try user config directory
	if userCfgPath := UserConfigPath(FileName); userCfgPath != "" {
		if cfg, err := LoadFile(userCfgPath); err == nil {
			return cfg, nil
		}
	}

	// Try local configs directory
	if cfg, err := LoadFile(filepath.Join("configs", FileName)); err == nil {
		return cfg, nil
	}

	// Use embedded default YAML
	cfg := DefaultEscortConfig()
	if err := yaml.Unmarshal(defaultEscortYAML, &cfg); err != nil {
		return DefaultEscortConfig(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// Resolve returns the file Load would read, or "" when only the embedded
// defaults apply.
func Resolve(customPath string) string {
	if customPath != "" {
		return customPath
	}
	candidates := []string{UserConfigPath(FileName), filepath.Join("configs", FileName)}
	for _, p := range candidates {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// LoadFile reads and validates one tuning file layered over the defaults.
func LoadFile(path string) (EscortConfig, error) {
	cfg := DefaultEscortConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// UserConfigPath returns the path to user config file, or empty if home is unavailable.
func UserConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".escort", "configs", filename)
}

// ApplyPreset modifies the config based on a difficulty preset.
func ApplyPreset(cfg *EscortConfig, preset DifficultyPreset) {
	if preset == DifficultyFixed {
		cfg.Difficulty.Enabled = false
	} else {
		cfg.Difficulty.Enabled = true
		cfg.Difficulty.InitialLevel = InitialLevelForPreset(preset)
	}

	// Adjust the escort based on difficulty
	switch preset {
	case DifficultyEasy:
		cfg.NPC.SpeedFactor = 0.7
		cfg.Pursuit.MaxPathLength = 150
		cfg.Pursuit.ReplanInterval = 0.25
		cfg.Escort.Radius = 64
	case DifficultyHard:
		cfg.NPC.SpeedFactor = 0.4
		cfg.Pursuit.MaxPathLength = 40
		cfg.Pursuit.ReplanInterval = 1.0
		cfg.Escort.Radius = 32
	}
}

// Validate reports every out-of-range field, each wrapping ErrInvalid.
func (c EscortConfig) Validate() error {
	var errs []error
	check := func(ok bool, field string, v any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%s = %v: %w", field, v, ErrInvalid))
		}
	}

	check(c.Grid.CellSize > 0, "grid.cell_size", c.Grid.CellSize)
	check(c.Player.Speed > 0, "player.speed", c.Player.Speed)
	check(c.Player.Friction > 0 && c.Player.Friction <= 1, "player.friction", c.Player.Friction)
	check(c.Player.HitW > 0 && c.Player.HitH > 0, "player.hitbox", fmt.Sprintf("%vx%v", c.Player.HitW, c.Player.HitH))
	check(c.NPC.SpeedFactor > 0, "npc.speed_factor", c.NPC.SpeedFactor)
	check(c.NPC.Friction > 0 && c.NPC.Friction <= 1, "npc.friction", c.NPC.Friction)
	check(c.NPC.HitW > 0 && c.NPC.HitH > 0, "npc.hitbox", fmt.Sprintf("%vx%v", c.NPC.HitW, c.NPC.HitH))
	check(c.Pursuit.ReplanInterval > 0, "pursuit.replan_interval", c.Pursuit.ReplanInterval)
	check(c.Pursuit.MaxPathLength > 0, "pursuit.max_path_length", c.Pursuit.MaxPathLength)
	check(c.Pursuit.DeadZone >= 0, "pursuit.dead_zone", c.Pursuit.DeadZone)
	check(c.Pursuit.WaypointRadius > 0, "pursuit.waypoint_radius", c.Pursuit.WaypointRadius)
	check(c.Pursuit.SearchBudget >= 0, "pursuit.search_budget", c.Pursuit.SearchBudget)
	check(c.Physics.MinSpeed >= 0, "physics.min_speed", c.Physics.MinSpeed)
	check(c.Escort.Radius > 0, "escort.radius", c.Escort.Radius)
	check(c.Escort.TimeLimit >= 0, "escort.time_limit", c.Escort.TimeLimit)

	if _, err := pathfind.ParsePattern(c.Pursuit.Pattern); err != nil {
		errs = append(errs, fmt.Errorf("pursuit.pattern: %w: %w", err, ErrInvalid))
	}

	return errors.Join(errs...)
}

// PursuitSettings converts the pursuit section for the controller. An
// unknown pattern falls back to diagonal; Validate reports it.
func (c EscortConfig) PursuitSettings() pursuit.Settings {
	pattern, err := pathfind.ParsePattern(c.Pursuit.Pattern)
	if err != nil {
		pattern = pathfind.Diagonal
	}
	return pursuit.Settings{
		ReplanInterval: c.Pursuit.ReplanInterval,
		MaxPathLength:  c.Pursuit.MaxPathLength,
		DeadZone:       c.Pursuit.DeadZone,
		WaypointRadius: c.Pursuit.WaypointRadius,
		SearchBudget:   c.Pursuit.SearchBudget,
		Pattern:        pattern,
		BlockValue:     c.Grid.BlockValue,
	}
}
