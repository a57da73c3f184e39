// twinworld steps two copies of a physics world under different frame-time
// schedules and reports where their trajectories stop being bit-identical.
//
// Usage:
//
//	twinworld run              - Run the harness headless and print the bit dump
//	twinworld watch            - Live terminal view with keyboard control
//	twinworld runs             - Browse stored runs
//	twinworld dump <run-id>    - Reprint a stored dump
//	twinworld scenarios        - List available scenarios
//	twinworld serve            - Start SSH server for remote viewing
//
// Global flags:
//
//	--config <path>     - Harness config YAML
//	--scenario <id>     - Scenario to build
//	--variant <name>    - frame-rate or inverted
//	--policy <name>     - Attraction policy: reject or clamp
//	--seed <value>      - Seed for the jittered frame clock
//	--db <path>         - Runs database (default: ~/.twinworld/runs.db)
//	--log-level <lvl>   - debug, info, warn or error
//	--log-file <path>   - Write logs to a file instead of stderr
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/twinworld/internal/config"
	"github.com/vovakirdan/twinworld/internal/storage"

	// Import scenarios to register them
	_ "github.com/vovakirdan/twinworld/internal/scenarios"
)

var (
	// Global flags
	flagConfig   string
	flagScenario string
	flagVariant  string
	flagPolicy   string
	flagClear    string
	flagSeed     int64
	flagDBPath   string
	flagLogLevel string
	flagLogFile  string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "twinworld",
	Short: "Twin-world determinism harness for a rigid-body engine",
	Long: `twinworld advances two instances of the same physics world with
different frame-time schedules and compares them bit for bit.

Available commands:
  run        - Headless run with a seeded, jittered frame clock
  watch      - Live terminal view with keyboard control
  runs       - Browse stored runs
  dump       - Reprint the bit dump of a stored run
  scenarios  - List available scenarios
  serve      - Start SSH server for remote viewing

Examples:
  twinworld run --frames 3000 --plot
  twinworld run --variant inverted --save
  twinworld run --clear frame          # reproduce the force leak
  twinworld watch --policy clamp
  twinworld dump 3f2a9c1d`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to harness config YAML")
	rootCmd.PersistentFlags().StringVar(&flagScenario, "scenario", "", "Scenario to build (see 'twinworld scenarios')")
	rootCmd.PersistentFlags().StringVar(&flagVariant, "variant", "", "Schedule variant: frame-rate, inverted")
	rootCmd.PersistentFlags().StringVar(&flagPolicy, "policy", "", "Attraction policy: reject, clamp")
	rootCmd.PersistentFlags().StringVar(&flagClear, "clear", "", "Force clear policy: micro_step, frame")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "Frame clock seed (0 = config value)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", storage.DefaultPath, "Path to runs database")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "Write logs to this file")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(scenariosCmd)
	rootCmd.AddCommand(serveCmd)
}

// loadConfig loads the harness config and applies flag overrides.
func loadConfig() (config.HarnessConfig, error) {
	cfg, err := config.LoadHarness(flagConfig)
	if err != nil {
		return cfg, err
	}
	if flagScenario != "" {
		cfg.Scenario.Name = flagScenario
	}
	if flagVariant != "" {
		cfg.Harness.Variant = flagVariant
	}
	if flagPolicy != "" {
		cfg.Attraction.Policy = flagPolicy
	}
	if flagClear != "" {
		cfg.Stepper.ClearPolicy = flagClear
	}
	if flagSeed != 0 {
		cfg.Frames.Seed = flagSeed
	}
	return cfg, nil
}

// newLogger builds the process logger. fallback receives records when no
// --log-file is given; interactive views pass io.Discard to keep the screen clean.
func newLogger(prefix string, fallback io.Writer) (*log.Logger, func(), error) {
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid --log-level: %w", err)
	}

	out, closeFn := fallback, func() {}
	if flagLogFile != "" {
		f, err := os.OpenFile(flagLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("cannot open log file: %w", err)
		}
		out, closeFn = f, func() { f.Close() }
	}

	logger := log.NewWithOptions(out, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
		Level:           level,
	})
	return logger, closeFn, nil
}
