package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/twinworld/internal/registry"
)

var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "List all available scenarios",
	Long:  `Shows a list of all world populations the harness can build.`,
	Run:   runScenarios,
}

func runScenarios(cmd *cobra.Command, args []string) {
	scenarios := registry.List()

	if len(scenarios) == 0 {
		fmt.Println("No scenarios available.")
		return
	}

	fmt.Println("Available scenarios:")
	fmt.Println()

	maxIDLen := 2 // "ID" header
	for _, s := range scenarios {
		if len(s.ID) > maxIDLen {
			maxIDLen = len(s.ID)
		}
	}

	fmt.Printf("  %-*s  %s\n", maxIDLen, "ID", "Title")
	fmt.Printf("  %-*s  %s\n", maxIDLen, "--", "-----")
	for _, s := range scenarios {
		fmt.Printf("  %-*s  %s\n", maxIDLen, s.ID, s.Title)
	}

	fmt.Println()
	fmt.Println("Select one with 'scenario.name' in the harness config.")
}
