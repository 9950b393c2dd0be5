package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/christian-post/NPC-Escort-Mission/internal/config"
	"github.com/christian-post/NPC-Escort-Mission/internal/escort"
	"github.com/christian-post/NPC-Escort-Mission/internal/headless"
	"github.com/christian-post/NPC-Escort-Mission/internal/level"
	"github.com/christian-post/NPC-Escort-Mission/internal/storage"
)

var (
	flagRuns      int
	flagTicks     int
	flagRunLevel  string
	flagSave      bool
	flagSeedStep  int64
	flagRunConfig string
	flagRunPreset string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Let the autopilot play and report how the NPC kept up",
	Long: `Play levels headless in attract mode: the autopilot walks the player
along the level's patrol route while the NPC follows. Each run uses its
own seed (--seed, then --seed-step apart), so runs differ only where the
autopilot dawdles.

Without --level every level is run.

Examples:
  escort run
  escort run --level lvl02 --runs 20 --save
  escort run --seed 100 --seed-step 7 --ticks 3600
  escort run --log-level debug`,
	Run: runRun,
}

func init() {
	runCmd.Flags().IntVar(&flagRuns, "runs", 5, "Runs per level")
	runCmd.Flags().IntVar(&flagTicks, "ticks", headless.DefaultTicks, "Tick limit per run")
	runCmd.Flags().StringVar(&flagRunLevel, "level", "", "Only run this level")
	runCmd.Flags().BoolVar(&flagSave, "save", false, "Store every run in the runs database")
	runCmd.Flags().Int64Var(&flagSeedStep, "seed-step", headless.DefaultSeedStep, "Seed distance between runs")
	runCmd.Flags().StringVar(&flagRunConfig, "config", "", "Path to custom escort config YAML")
	runCmd.Flags().StringVar(&flagRunPreset, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")
}

func runRun(_ *cobra.Command, _ []string) {
	logger := newLogger("escort-run")
	escort.SetLogger(logger.WithPrefix("escort"))
	escort.SetConfigPath(flagRunConfig)
	escort.SetDifficultyPreset(flagRunPreset)
	if path := config.Resolve(flagRunConfig); path != "" {
		logger.Info("using config", "path", path)
	}

	var levels []level.Level
	if flagRunLevel != "" {
		l, err := findLevel(flagRunLevel)
		if err != nil {
			fail("%v", err)
		}
		levels = []level.Level{l}
	} else {
		var err error
		if levels, err = loadLevels(); err != nil {
			fail("%v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := headless.Options{
		Ticks:    flagTicks,
		TickRate: flagFPS,
		Runs:     flagRuns,
		SeedBase: flagSeed,
		SeedStep: flagSeedStep,
		Logger:   logger,
	}
	if opts.SeedBase == 0 {
		opts.SeedBase = time.Now().UnixNano()
	}

	if flagSave {
		store, err := storage.Open(flagDBPath)
		if err != nil {
			fail("opening runs database: %v", err)
		}
		defer store.Close()
		opts.Store = store
	}

	var all []headless.Report
	for _, l := range levels {
		opts.Level = l
		start := time.Now()
		reports, err := headless.Run(ctx, opts)
		if err != nil {
			fail("level %s: %v", l.ID, err)
		}
		logger.Info("level done", "level", l.ID, "runs", len(reports), "took", time.Since(start).Round(time.Millisecond))

		printReports(l, reports)
		all = append(all, reports...)
	}

	if len(levels) > 1 {
		fmt.Println("All levels")
		printSummary(headless.Summarize(all))
	}
}

func printReports(l level.Level, reports []headless.Report) {
	fmt.Printf("%s - %s\n", l.ID, l.Name)
	fmt.Println()
	fmt.Printf("  %-20s  %-8s  %-7s  %-6s  %-7s  %-4s  %s\n", "Seed", "Result", "Ticks", "Sight", "Replans", "Lost", "Score")
	fmt.Printf("  %-20s  %-8s  %-7s  %-6s  %-7s  %-4s  %s\n", "----", "------", "-----", "-----", "-------", "----", "-----")
	for _, r := range reports {
		result := "timeout"
		if r.Escorted {
			result = "escorted"
		}
		fmt.Printf("  %-20d  %-8s  %-7d  %5.1f%%  %-7d  %-4d  %s\n",
			r.Seed, result, r.Ticks, r.SightRatio()*100, r.PathRequests, r.LostEvents, humanize.Comma(int64(r.Score)))
	}
	fmt.Println()
	printSummary(headless.Summarize(reports))
}

func printSummary(s headless.Summary) {
	fmt.Printf("  Escorted:      %d/%d\n", s.Escorts, s.Runs)
	fmt.Printf("  Avg ticks:     %s\n", humanize.FormatFloat("#,###.#", s.AvgTicks))
	fmt.Printf("  Avg sight:     %.1f%%\n", s.AvgSight*100)
	fmt.Printf("  Avg replans:   %.1f\n", s.AvgRequests)
	fmt.Printf("  Lost events:   %d\n", s.TotalLost)
	fmt.Printf("  Longest path:  %d cells\n", s.LongestPath)
	fmt.Printf("  Best score:    %s\n", humanize.Comma(int64(s.BestScore)))
	fmt.Printf("  Distinct runs: %d\n", s.DistinctRuns)
	fmt.Println()
}
