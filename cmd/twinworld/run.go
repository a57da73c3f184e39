package main

import (
	"fmt"
	"math"
	"os"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/twinworld/internal/control"
	"github.com/vovakirdan/twinworld/internal/harness"
	"github.com/vovakirdan/twinworld/internal/storage"
)

var (
	flagFrames int
	flagPlot   bool
	flagSave   bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the harness headless",
	Long: `Advance the harness for a number of frames fed by a seeded, jittered
frame clock. The bit dump is printed to stdout once both capture buffers fill.

Examples:
  twinworld run
  twinworld run --frames 5000 --seed 7 --plot
  twinworld run --variant inverted --save`,
	Run: runRun,
}

func init() {
	runCmd.Flags().IntVar(&flagFrames, "frames", 0, "Number of frames (0 = config value)")
	runCmd.Flags().BoolVar(&flagPlot, "plot", false, "Plot log|diff-y| over the run")
	runCmd.Flags().BoolVar(&flagSave, "save", false, "Store the run in the runs database")
}

// runResult accumulates what a headless run reports and stores.
type runResult struct {
	frames   int
	last     harness.Comparison
	maxDiffY float64
	samples  []storage.Sample
	logDiffY []float64
}

func (r *runResult) add(c harness.Comparison) {
	r.frames++
	r.last = c
	r.maxDiffY = math.Max(r.maxDiffY, math.Abs(c.DiffY))
	r.samples = append(r.samples, storage.Sample{
		Frame:   c.Frame,
		DiffX:   c.DiffX,
		DiffY:   c.DiffY,
		CarDiff: c.CarDiff.X,
	})
	if !math.IsInf(c.LogDiffY, 0) && !math.IsNaN(c.LogDiffY) {
		r.logDiffY = append(r.logDiffY, c.LogDiffY)
	}
}

func runRun(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if flagFrames > 0 {
		cfg.Frames.Count = flagFrames
	}

	hc, err := cfg.ToHarness()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger, closeLog, err := newLogger("twinworld", os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	h, err := harness.New(hc, logger, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating harness: %v\n", err)
		os.Exit(1)
	}

	clock := cfg.Clock()
	var res runResult
	for i := 0; i < cfg.Frames.Count; i++ {
		c, err := h.Tick(clock.Next(), control.Command{})
		if err != nil {
			logger.Error("run halted", "frame", i, "error", err)
			break
		}
		res.add(c)
	}

	logger.Info("run finished",
		"frames", res.frames,
		"diff_y", res.last.DiffY,
		"max_diff_y", res.maxDiffY,
		"sim_time", res.last.Left.SimTime,
	)
	if h.Dump() == nil {
		logger.Warn("capture buffers did not fill; no dump", "buffer_size", hc.BufferSize)
	}

	if flagPlot && len(res.logDiffY) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(res.logDiffY,
			asciigraph.Height(12),
			asciigraph.Width(70),
			asciigraph.Caption("log|diff-y| per frame"),
		))
	}

	if !flagSave {
		return
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening runs database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	run := storage.Run{
		Scenario:      hc.Scenario,
		Variant:       hc.Variant.Name,
		LeftSchedule:  hc.Variant.Left.Name(),
		RightSchedule: hc.Variant.Right.Name(),
		Policy:        hc.Stepper.Attraction.Policy.String(),
		ClearPolicy:   hc.Stepper.ClearPolicy.String(),
		Frames:        res.frames,
		BitWidth:      hc.BitWidth,
		FinalDiffY:    res.last.DiffY,
		MaxDiffY:      res.maxDiffY,
	}
	id, err := store.SaveRun(run, h.Dump())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error saving run: %v\n", err)
		os.Exit(1)
	}
	if err := store.SaveSamples(id, res.samples); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving samples: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "Saved run %s\n", id)
}
