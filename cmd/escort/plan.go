package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/christian-post/NPC-Escort-Mission/internal/config"
	"github.com/christian-post/NPC-Escort-Mission/internal/escort"
	"github.com/christian-post/NPC-Escort-Mission/internal/grid"
	"github.com/christian-post/NPC-Escort-Mission/internal/pathfind"
)

var (
	flagPattern    string
	flagPlanConfig string
)

var planCmd = &cobra.Command{
	Use:   "plan <level> <sx,sy> <gx,gy>",
	Short: "Print the path between two search cells",
	Long: `Build the occupancy grid of a level and run a complete path search
between two search cells, the same search the NPC uses to get around walls.

The grid is printed with '#' for blocked cells, 'o' for the path, and
S and G for the ends. Coordinates are search cells, not tiles.

Examples:
  escort plan lvl01 6,8 50,14
  escort plan lvl02 2,2 40,20 --pattern straight`,
	Args: cobra.ExactArgs(3),
	Run:  runPlan,
}

func init() {
	planCmd.Flags().StringVar(&flagPattern, "pattern", "", "Neighbour pattern: straight or diagonal (default: from config)")
	planCmd.Flags().StringVar(&flagPlanConfig, "config", "", "Path to custom escort config YAML")
}

func runPlan(_ *cobra.Command, args []string) {
	lvl, err := findLevel(args[0])
	if err != nil {
		fail("%v", err)
	}
	start, err := parseCell(args[1])
	if err != nil {
		fail("start: %v", err)
	}
	goal, err := parseCell(args[2])
	if err != nil {
		fail("goal: %v", err)
	}

	cfg, err := config.Load(flagPlanConfig)
	if err != nil {
		fail("%v", err)
	}
	name := cfg.Pursuit.Pattern
	if flagPattern != "" {
		name = flagPattern
	}
	pattern, err := pathfind.ParsePattern(name)
	if err != nil {
		fail("%v", err)
	}

	world, err := escort.BuildWorld(lvl, cfg, log.New(io.Discard))
	if err != nil {
		fail("%v", err)
	}
	occ := world.Grid
	for _, c := range []grid.Cell{start, goal} {
		if !occ.InBounds(c) {
			fail("cell %s is outside the %dx%d grid", c, occ.Width(), occ.Height())
		}
	}

	path := pathfind.PlanPath(world.Mapper.ToWorld(start), world.Mapper.ToWorld(goal),
		occ, world.Mapper, pattern, cfg.Grid.BlockValue)

	marks := make([]escort.Mark, 0, len(path)+2)
	for _, p := range path {
		marks = append(marks, escort.Mark{Cell: world.Mapper.ToGrid(p), Rune: escort.WaypointChar})
	}
	marks = append(marks, escort.Mark{Cell: start, Rune: 'S'}, escort.Mark{Cell: goal, Rune: 'G'})

	fmt.Println(world.CellMap(marks...))
	fmt.Println()
	if len(path) == 0 {
		fmt.Printf("No path from %s to %s (%s).\n", start, goal, pattern)
		return
	}
	fmt.Printf("Path from %s to %s: %d cells (%s)\n", start, goal, len(path), pattern)
}

// parseCell reads "x,y".
func parseCell(s string) (grid.Cell, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return grid.Cell{}, fmt.Errorf("expected x,y, got %q", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return grid.Cell{}, fmt.Errorf("bad x in %q", s)
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return grid.Cell{}, fmt.Errorf("bad y in %q", s)
	}
	return grid.C(x, y), nil
}
