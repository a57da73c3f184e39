package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/twinworld/internal/core"
	"github.com/vovakirdan/twinworld/internal/harness"
	"github.com/vovakirdan/twinworld/internal/platform/tui"
)

var flagFPS int

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch both worlds live",
	Long: `Open a live view of the compared worlds, fed by the real frame clock.

Controls:
  W/A/S/D    - Push the avatar
  Left/Right - Spin the avatar
  1/2        - Density ÷10 / ×10
  3/4        - Friction ÷10 / ×10
  5/6        - Restitution ÷10 / ×10
  7/8        - Previous / next shape (resets)
  9/0        - Previous / next control mode
  G          - Toggle the divergence trend
  R          - Reset
  Q/Esc      - Quit

Examples:
  twinworld watch
  twinworld watch --variant inverted --fps 30
  twinworld watch --log-file watch.log --log-level debug`,
	Run: runWatch,
}

func init() {
	watchCmd.Flags().IntVar(&flagFPS, "fps", 60, "Frames per second")
}

func runWatch(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	hc, err := cfg.ToHarness()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Logs would tear the alternate screen; keep them unless redirected.
	logger, closeLog, err := newLogger("twinworld", io.Discard)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	h, err := harness.New(hc, logger, logger.StandardLog().Writer())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating harness: %v\n", err)
		os.Exit(1)
	}

	width, height := 80, 24 // Defaults
	if w, ht, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = ht
	}

	rc := core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: flagFPS,
		Seed:     cfg.Frames.Seed,
	}
	if err := tui.Run(h, rc); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
