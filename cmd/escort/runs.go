package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/christian-post/NPC-Escort-Mission/internal/storage"
)

var (
	flagRunsLimit int
	flagClear     bool
)

var runsCmd = &cobra.Command{
	Use:   "runs [level]",
	Short: "Show run history",
	Long: `Display the best runs of a level, or the most recent runs of every
level when no level is given.

Examples:
  escort runs
  escort runs lvl01
  escort runs lvl01 --limit 25
  escort runs lvl02 --clear`,
	Args: cobra.MaximumNArgs(1),
	Run:  runRuns,
}

func init() {
	runsCmd.Flags().IntVar(&flagRunsLimit, "limit", 10, "Number of runs to show")
	runsCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete the stored runs instead of showing them")
}

func runRuns(_ *cobra.Command, args []string) {
	levelID := ""
	if len(args) == 1 {
		levelID = args[0]
		if _, err := findLevel(levelID); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			fmt.Fprintln(os.Stderr, "Run 'escort levels' to see available levels.")
			os.Exit(1)
		}
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		fail("opening runs database: %v", err)
	}
	defer store.Close()

	if flagClear {
		if err := store.ClearRuns(levelID); err != nil {
			fail("%v", err)
		}
		if levelID == "" {
			fmt.Println("Cleared all runs.")
		} else {
			fmt.Printf("Cleared runs of %s.\n", levelID)
		}
		return
	}

	var runs []storage.RunRecord
	if levelID == "" {
		fmt.Println("Recent runs")
		runs, err = store.RecentRuns(flagRunsLimit)
	} else {
		fmt.Printf("Best runs - %s\n", levelID)
		runs, err = store.TopRuns(levelID, flagRunsLimit)
	}
	if err != nil {
		fail("retrieving runs: %v", err)
	}
	fmt.Println()

	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		fmt.Println()
		fmt.Println("Play 'escort play' or 'escort run --save' to record some.")
		return
	}

	fmt.Printf("  %-4s  %-8s  %-8s  %-9s  %-7s  %-7s  %-4s  %-8s  %s\n", "#", "Level", "Mode", "Result", "Ticks", "Replans", "Lost", "Score", "When")
	fmt.Printf("  %-4s  %-8s  %-8s  %-9s  %-7s  %-7s  %-4s  %-8s  %s\n", "-", "-----", "----", "------", "-----", "-------", "----", "-----", "----")
	for i, r := range runs {
		result := "timeout"
		if r.Escorted {
			result = "escorted"
		}
		fmt.Printf("  %-4d  %-8s  %-8s  %-9s  %-7d  %-7d  %-4d  %-8s  %s\n",
			i+1, r.LevelID, r.Mode, result, r.Ticks, r.PathRequests, r.LostEvents,
			humanize.Comma(int64(r.Score)), humanize.Time(r.CreatedAt))
	}

	if levelID == "" {
		return
	}
	stats, err := store.LevelStats(levelID)
	if err != nil {
		fail("%v", err)
	}
	fmt.Println()
	fmt.Printf("Runs: %d  Escorted: %.0f%%  Best: %s  Avg: %s  Avg replans: %.1f\n",
		stats.Runs, stats.SuccessRate()*100,
		humanize.Comma(int64(stats.BestScore)),
		humanize.Comma(int64(stats.AvgScore)),
		stats.AvgRequests)
	if !stats.LastPlayed.IsZero() {
		fmt.Printf("Last played %s\n", humanize.Time(stats.LastPlayed))
	}
}
