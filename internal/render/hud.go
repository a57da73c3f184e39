package render

import (
	"fmt"
	"math"

	"github.com/vovakirdan/twinworld/internal/control"
	"github.com/vovakirdan/twinworld/internal/harness"
)

// SettingsLines formats the live-tunable constants.
func SettingsLines(s control.Settings) []string {
	return []string{
		"Shape: " + s.Shape.String(),
		"Controls: " + s.Mode.String(),
		fmt.Sprintf("Density: %4.3f", s.Density),
		fmt.Sprintf("Friction: %4.3f", s.Friction),
		fmt.Sprintf("Restitution: %4.3f", s.Restitution),
	}
}

// DiffLines formats the per-frame divergence between the compared sides.
func DiffLines(c harness.Comparison) []string {
	lines := []string{
		fmt.Sprintf("diff-pos: %g, %g", c.DiffX, c.DiffY),
		"log-diff-y: " + formatLog(c.LogDiffY),
		fmt.Sprintf("car-diff: %g, %g", c.CarDiff.X, c.CarDiff.Y),
	}
	if c.HasCatchUp {
		lines = append(lines, fmt.Sprintf("catch-up: %g, %g", c.Baseline.X, c.Baseline.Y))
	}
	return lines
}

func formatLog(v float64) string {
	if math.IsInf(v, -1) {
		return "-inf"
	}
	return fmt.Sprintf("%.3f", v)
}
