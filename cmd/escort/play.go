package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/christian-post/NPC-Escort-Mission/internal/config"
	"github.com/christian-post/NPC-Escort-Mission/internal/escort"
	"github.com/christian-post/NPC-Escort-Mission/internal/level"
	"github.com/christian-post/NPC-Escort-Mission/internal/platform/tui"
	"github.com/christian-post/NPC-Escort-Mission/internal/storage"
)

var (
	flagConfig     string
	flagDifficulty string
	flagAttract    bool
	flagLogFile    string
)

var playCmd = &cobra.Command{
	Use:   "play [level]",
	Short: "Play a level",
	Long: `Start playing the given level, or pick one from a menu.

Walk to the exit (X). The NPC follows you: it runs straight at you while it
can see you and finds a path around walls when it cannot. The escort ends
when you both reach the exit.

Controls:
  WASD/Arrows  - Move
  P            - Pause
  R            - Restart
  C/F1         - Toggle camera follow
  F12/` + "`" + `        - Toggle debug overlay (grid, path, sight line)
  Ctrl+S       - Save a screenshot
  Esc/B        - Back to menu (paused or after the run)
  Q/Ctrl+C     - Quit

Difficulty options:
  easy   - Start at lowest difficulty, progresses to max
  normal - Start at 30% difficulty, progresses to max
  hard   - Start at 70% difficulty, progresses to max
  fixed  - No progression, stays at config's initial level

The tuning file (--config, ~/.escort/escort.yaml or configs/escort.yaml) is
watched and reloaded while you play.

Examples:
  escort play
  escort play lvl01
  escort play lvl02 --difficulty hard
  escort play lvl03 --attract
  escort play lvl01 --config ./my-escort.yaml --log-file escort.log`,
	Args: cobra.MaximumNArgs(1),
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagConfig, "config", "", "Path to custom escort config YAML")
	playCmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")
	playCmd.Flags().BoolVar(&flagAttract, "attract", false, "Let the autopilot walk the player")
	playCmd.Flags().StringVar(&flagLogFile, "log-file", "", "Write game logs to this file")
}

func runPlay(_ *cobra.Command, args []string) {
	if flagDifficulty != "" {
		if _, ok := config.ParsePreset(flagDifficulty); !ok {
			fail("unknown difficulty %q (use easy, normal, hard or fixed)", flagDifficulty)
		}
	}
	escort.SetConfigPath(flagConfig)
	escort.SetDifficultyPreset(flagDifficulty)

	// The terminal belongs to the TUI, so logs only go to a file.
	if flagLogFile != "" {
		f, err := os.OpenFile(flagLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fail("cannot open log file: %v", err)
		}
		defer f.Close()
		lvl, err := log.ParseLevel(flagLogLevel)
		if err != nil {
			lvl = log.InfoLevel
		}
		escort.SetLogger(log.NewWithOptions(f, log.Options{
			ReportTimestamp: true,
			Prefix:          "escort",
			Level:           lvl,
		}))
	}

	levels, err := loadLevels()
	if err != nil {
		fail("%v", err)
	}

	var start *level.Level
	if len(args) == 1 {
		l, err := findLevel(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			fmt.Fprintln(os.Stderr, "Run 'escort levels' to see available levels.")
			os.Exit(1)
		}
		start = &l
	}

	// Open run storage
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open runs database: %v\n", err)
		// Continue without storage - the game still works
		store = nil
	}
	defer func() {
		if store != nil {
			store.Close()
		}
	}()

	var watcher *config.Watcher
	if path := config.Resolve(flagConfig); path != "" {
		watcher, err = config.NewWatcher(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: config reloading disabled: %v\n", err)
			watcher = nil
		} else {
			defer watcher.Close()
		}
	}

	cfg := runtimeConfig()

	// A level on the command line is played once.
	if start != nil {
		if _, err := tui.Run(newGame(*start, flagAttract), store, cfg, watcher); err != nil {
			fail("running game: %v", err)
		}
		return
	}

	// Menu loop
	for {
		res, err := tui.RunMenu(levels, store, cfg)
		if err != nil {
			fail("%v", err)
		}
		cfg = res.Config

		switch {
		case res.Quit:
			return

		case res.WantsRuns:
			back, err := tui.RunRuns(levels, store, cfg.ScreenW, cfg.ScreenH)
			if err != nil {
				fail("%v", err)
			}
			if !back {
				return
			}

		case res.Level != nil:
			back, err := tui.Run(newGame(*res.Level, res.Attract || flagAttract), store, cfg, watcher)
			if err != nil {
				fail("running game: %v", err)
			}
			if !back {
				return
			}
		}
	}
}

func newGame(l level.Level, attract bool) *escort.Game {
	var g *escort.Game
	if attract {
		g = escort.NewAttract()
	} else {
		g = escort.New()
	}
	g.SetLevel(l)
	return g
}
