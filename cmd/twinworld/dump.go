package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/twinworld/internal/storage"
)

var dumpCmd = &cobra.Command{
	Use:   "dump <run-id>",
	Short: "Reprint the bit dump of a stored run",
	Long: `Print the stored dump of a run in the same line format the harness
emits live. A unique prefix of the run ID is enough.

Examples:
  twinworld dump 3f2a9c1d
  twinworld dump 3f2a9c1d-6b0e-4f43-9a57-0c8d1e2f3a4b`,
	Args: cobra.ExactArgs(1),
	Run:  runDump,
}

func runDump(cmd *cobra.Command, args []string) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening runs database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	run, err := store.FindRun(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if run == nil {
		fmt.Fprintf(os.Stderr, "Error: unknown run %q\n", args[0])
		fmt.Fprintln(os.Stderr, "Run 'twinworld runs --plain' to see stored runs.")
		os.Exit(1)
	}

	rows, err := store.DumpRows(run.ID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving dump: %v\n", err)
		os.Exit(1)
	}
	if len(rows) == 0 {
		fmt.Fprintf(os.Stderr, "Run %s has no dump (capture buffers never filled)\n", run.ID)
		return
	}

	for _, r := range rows {
		fmt.Println(r.String())
	}
	if run.Diverged() {
		fmt.Fprintf(os.Stderr, "first divergence at bucket %d\n", run.FirstDivergence)
	}
}
