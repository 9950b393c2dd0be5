package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var levelsCmd = &cobra.Command{
	Use:   "levels",
	Short: "List all available levels",
	Long:  `Shows the built-in levels, or the ones found under --levels.`,
	Run:   runLevels,
}

func runLevels(_ *cobra.Command, _ []string) {
	levels, err := loadLevels()
	if err != nil {
		fail("%v", err)
	}

	fmt.Println("Available levels:")
	fmt.Println()

	// Calculate column widths
	maxIDLen := 2 // "ID" header
	maxNameLen := 4
	for _, l := range levels {
		maxIDLen = max(maxIDLen, len(l.ID))
		maxNameLen = max(maxNameLen, len(l.Name))
	}

	fmt.Printf("  %-*s  %-*s  %s\n", maxIDLen, "ID", maxNameLen, "Name", "Size")
	fmt.Printf("  %-*s  %-*s  %s\n", maxIDLen, "--", maxNameLen, "----", "----")

	for _, l := range levels {
		fmt.Printf("  %-*s  %-*s  %dx%d\n", maxIDLen, l.ID, maxNameLen, l.Name, l.Cols, l.Rows)
	}

	fmt.Println()
	fmt.Println("Run 'escort play <id>' to play a level.")
}
