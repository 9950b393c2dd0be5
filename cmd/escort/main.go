// escort is a terminal NPC escort game: walk to the exit while the NPC
// follows, chasing on sight and path-finding around walls.
//
// Usage:
//
//	escort levels                        - List available levels
//	escort play [level]                  - Play a level (menu when omitted)
//	escort plan <level> <sx,sy> <gx,gy>  - Print a planned path
//	escort run                           - Headless attract-mode runs
//	escort runs [level]                  - Show run history
//	escort serve                         - Start SSH server for remote play
//
// Global flags:
//
//	--fps <rate>         - Set tick rate (default: 60)
//	--seed <value>       - Set RNG seed for reproducible gameplay
//	--db <path>          - Set database path (default: ~/.escort/runs.db)
//	--levels <dir>       - Load levels from a directory instead of the built-in set
//	--log-level <level>  - debug, info, warn or error
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/christian-post/NPC-Escort-Mission/internal/core"
	"github.com/christian-post/NPC-Escort-Mission/internal/level"
)

var (
	// Global flags
	flagFPS      int
	flagSeed     int64
	flagDBPath   string
	flagLevels   string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "escort",
	Short: "NPC Escort - lead a companion through the maze",
	Long: `NPC Escort is a terminal game about a companion that follows you.
It chases you while it can see you and finds a path around walls when it
cannot. Lead it to the exit.

Available commands:
  levels   - Show all available levels
  play     - Play a level
  plan     - Print the path the NPC would take between two cells
  run      - Let the autopilot play and report how the NPC kept up
  runs     - View run history
  serve    - Start SSH server for remote play

Examples:
  escort levels
  escort play lvl01
  escort plan lvl02 2,2 40,20
  escort run --runs 10 --save
  escort serve --ssh :2222`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.escort/runs.db", "Path to runs database")
	rootCmd.PersistentFlags().StringVar(&flagLevels, "levels", "", "Directory with level YAML files (default: built-in levels)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(levelsCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(serveCmd)
}

// newLogger creates a stderr logger with the given prefix at --log-level.
func newLogger(prefix string) *log.Logger {
	lvl, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		lvl = log.InfoLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
		Level:           lvl,
	})
}

// loadLevels returns the levels from --levels, or the built-in ones.
func loadLevels() ([]level.Level, error) {
	levels, err := level.NewLoader(flagLevels).LoadAll()
	if err != nil {
		return nil, err
	}
	if len(levels) == 0 {
		return nil, fmt.Errorf("no levels found in %q", flagLevels)
	}
	return levels, nil
}

// findLevel loads one level by ID.
func findLevel(id string) (level.Level, error) {
	return level.NewLoader(flagLevels).LoadByID(id)
}

// runtimeConfig sizes the game to the terminal.
func runtimeConfig() core.RuntimeConfig {
	cfg := core.DefaultConfig()
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		cfg.ScreenW = w
		cfg.ScreenH = h
	}
	cfg.TickRate = flagFPS
	cfg.Seed = flagSeed
	return cfg
}

// fail prints an error and exits.
func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
