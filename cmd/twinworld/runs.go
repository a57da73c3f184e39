package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/twinworld/internal/platform/tui"
	"github.com/vovakirdan/twinworld/internal/storage"
)

var (
	flagPlain  bool
	flagLimit  int
	flagDelete string
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Browse stored runs",
	Long: `Show the runs saved with 'twinworld run --save'.

Examples:
  twinworld runs
  twinworld runs --plain --limit 50
  twinworld runs --delete 3f2a9c1d`,
	Run: runRuns,
}

func init() {
	runsCmd.Flags().BoolVar(&flagPlain, "plain", false, "Print a plain list instead of the interactive table")
	runsCmd.Flags().IntVar(&flagLimit, "limit", 20, "Number of runs in the plain list")
	runsCmd.Flags().StringVar(&flagDelete, "delete", "", "Delete the run with this ID (or unique prefix)")
}

func runRuns(cmd *cobra.Command, args []string) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening runs database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if flagDelete != "" {
		deleteRun(store, flagDelete)
		return
	}

	if !flagPlain {
		width, height := 80, 24 // Defaults
		if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
			width = w
			height = h
		}
		if err := tui.RunRuns(store, width, height); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	runs, err := store.RecentRuns(flagLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving runs: %v\n", err)
		os.Exit(1)
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		fmt.Println()
		fmt.Println("Use 'twinworld run --save' to record one.")
		return
	}

	fmt.Printf("  %-8s  %-10s  %-10s  %-6s  %-10s  %-8s  %s\n",
		"Run", "Scenario", "Variant", "Frames", "Max|dy|", "Diverged", "Date")
	fmt.Printf("  %-8s  %-10s  %-10s  %-6s  %-10s  %-8s  %s\n",
		"---", "--------", "-------", "------", "-------", "--------", "----")
	for _, r := range runs {
		diverged := "no"
		if r.Diverged() {
			diverged = fmt.Sprintf("@%d", r.FirstDivergence)
		}
		id := r.ID
		if len(id) > 8 {
			id = id[:8]
		}
		fmt.Printf("  %-8s  %-10s  %-10s  %-6d  %-10.3g  %-8s  %s\n",
			id, r.Scenario, r.Variant, r.Frames, r.MaxDiffY, diverged,
			r.CreatedAt.Format("2006-01-02 15:04"))
	}

	stats, err := store.AllScenarioStats()
	if err == nil && len(stats) > 0 {
		fmt.Println()
		for name, st := range stats {
			fmt.Printf("%s: %d runs, %d diverged\n", name, st.Runs, st.Diverged)
		}
	}
}

func deleteRun(store *storage.Store, prefix string) {
	run, err := store.FindRun(prefix)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if run == nil {
		fmt.Fprintf(os.Stderr, "Error: unknown run %q\n", prefix)
		os.Exit(1)
	}
	if err := store.DeleteRun(run.ID); err != nil {
		fmt.Fprintf(os.Stderr, "Error deleting run: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Deleted run %s\n", run.ID)
}
