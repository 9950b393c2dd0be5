package config

import (
	_ "embed"
)

//go:embed defaults/escort.yaml
var defaultEscortYAML []byte

// DefaultEscortConfig returns the default escort configuration.
func DefaultEscortConfig() EscortConfig {
	return EscortConfig{
		Grid: GridConfig{
			CellSize:   8, // half a tile
			BlockValue: 1,
		},
		Player: PlayerConfig{
			Speed:    20,
			Friction: 0.8,
			HitW:     12,
			HitH:     12,
		},
		NPC: NPCConfig{
			SpeedFactor: 0.5,
			Friction:    0.8,
			HitW:        7,
			HitH:        7,
		},
		Pursuit: PursuitConfig{
			ReplanInterval: 0.5,
			MaxPathLength:  100,
			DeadZone:       32, // two tiles
			WaypointRadius: 16, // one tile
			SearchBudget:   0,
			Pattern:        "diagonal",
		},
		Physics: PhysicsConfig{
			MinSpeed: 0.05,
		},
		Escort: EscortRules{
			Radius:      48,
			TimeLimit:   0,
			SightPoints: 10,
			ExitBonus:   500,
		},
		Difficulty: DifficultyConfig{
			Enabled:      true,
			InitialLevel: 0.0,
			Progression: ProgressionConfig{
				Type:  "time",
				MaxAt: 36000, // 10 minutes at 60fps
			},
			Scaling: ScalingConfig{
				SpeedLoss:      0.3,
				PathReduction:  60,
				ReplanSlowdown: 1.0,
			},
		},
	}
}

// GetDefaultYAML returns the embedded default YAML.
func GetDefaultYAML() []byte {
	return defaultEscortYAML
}
