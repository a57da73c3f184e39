package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/twinworld/internal/control"
	"github.com/vovakirdan/twinworld/internal/force"
	"github.com/vovakirdan/twinworld/internal/harness"
	"github.com/vovakirdan/twinworld/internal/shape"
	"github.com/vovakirdan/twinworld/internal/stepper"

	_ "github.com/vovakirdan/twinworld/internal/scenarios"
)

func TestEmbeddedMatchesDefaults(t *testing.T) {
	var cfg HarnessConfig
	if err := yaml.Unmarshal(defaultHarnessYAML, &cfg); err != nil {
		t.Fatalf("embedded yaml: %v", err)
	}
	def := DefaultHarnessConfig()
	if cfg.Stepper != def.Stepper {
		t.Errorf("stepper = %+v, expected %+v", cfg.Stepper, def.Stepper)
	}
	if cfg.Scenario != def.Scenario {
		t.Errorf("scenario = %+v, expected %+v", cfg.Scenario, def.Scenario)
	}
	if cfg.Harness.Variant != def.Harness.Variant || cfg.Harness.BitWidth != def.Harness.BitWidth {
		t.Errorf("harness = %+v, expected %+v", cfg.Harness, def.Harness)
	}
}

func TestLoadHarnessCustomPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "h.yaml")
	data := []byte("stepper:\n  mini_step: 0.005\nattraction:\n  policy: clamp\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadHarness(path)
	if err != nil {
		t.Fatalf("LoadHarness() error = %v", err)
	}
	if cfg.Stepper.MiniStep != 0.005 {
		t.Errorf("MiniStep = %v, expected 0.005", cfg.Stepper.MiniStep)
	}
	if cfg.Attraction.Policy != "clamp" {
		t.Errorf("Policy = %q, expected clamp", cfg.Attraction.Policy)
	}
	// Untouched keys keep their defaults.
	if cfg.Harness.BufferSize != 1000 {
		t.Errorf("BufferSize = %d, expected 1000", cfg.Harness.BufferSize)
	}
}

func TestLoadHarnessMissingCustomPath(t *testing.T) {
	if _, err := LoadHarness(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("LoadHarness() error = nil, expected read error")
	}
}

func TestToHarness(t *testing.T) {
	hc, err := DefaultHarnessConfig().ToHarness()
	if err != nil {
		t.Fatalf("ToHarness() error = %v", err)
	}
	if hc.Stepper.ClearPolicy != stepper.ClearEachMicroStep {
		t.Errorf("ClearPolicy = %v, expected micro_step", hc.Stepper.ClearPolicy)
	}
	if hc.Stepper.Attraction.Policy != force.Reject {
		t.Errorf("Attraction.Policy = %v, expected reject", hc.Stepper.Attraction.Policy)
	}
	if hc.Params.Shape != shape.Ellipse {
		t.Errorf("Shape = %v, expected ellipse", hc.Params.Shape)
	}
	if hc.Variant.Name != harness.VariantFrameRate {
		t.Errorf("Variant = %q, expected %q", hc.Variant.Name, harness.VariantFrameRate)
	}
	if l, ok := hc.Variant.Right.(harness.Lagged); !ok || l.First != 0.015 {
		t.Errorf("Right = %#v, expected lagged 0.015", hc.Variant.Right)
	}
	if hc.Params.Mode != control.ModeForce {
		t.Errorf("Mode = %v, expected Force", hc.Params.Mode)
	}
}

func TestParamsControlMode(t *testing.T) {
	tests := []struct {
		control string
		want    control.Mode
	}{
		{"", control.ModeForce},
		{"velocity", control.ModeVelocity},
		{"Translate", control.ModeTranslate},
		{"none", control.ModeNone},
	}
	for _, tt := range tests {
		cfg := DefaultHarnessConfig()
		cfg.Scenario.Control = tt.control
		p, err := cfg.Params()
		if err != nil {
			t.Errorf("Params() with control %q error = %v", tt.control, err)
			continue
		}
		if p.Mode != tt.want {
			t.Errorf("Params() with control %q: Mode = %v, expected %v", tt.control, p.Mode, tt.want)
		}
	}
}

func TestVariantOverrides(t *testing.T) {
	cfg := DefaultHarnessConfig()
	cfg.Harness.Variant = "inverted"
	cfg.Harness.Left = "fixed:0.01"
	v, err := cfg.Variant()
	if err != nil {
		t.Fatalf("Variant() error = %v", err)
	}
	if v.Left != (harness.Fixed{Step: 0.01}) {
		t.Errorf("Left = %#v, expected fixed 0.01", v.Left)
	}
	if v.CatchUp != v.Left {
		t.Errorf("CatchUp = %#v, expected to follow left", v.CatchUp)
	}
	if v.Right != (harness.Hold{Frames: 30}) {
		t.Errorf("Right = %#v, expected hold 30", v.Right)
	}
}

func TestToHarnessRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*HarnessConfig)
	}{
		{"variant", func(c *HarnessConfig) { c.Harness.Variant = "sideways" }},
		{"policy", func(c *HarnessConfig) { c.Attraction.Policy = "ignore" }},
		{"clear", func(c *HarnessConfig) { c.Stepper.ClearPolicy = "never" }},
		{"shape", func(c *HarnessConfig) { c.Scenario.Shape = "hexagon" }},
		{"scenario", func(c *HarnessConfig) { c.Scenario.Name = "missing" }},
		{"bit width", func(c *HarnessConfig) { c.Harness.BitWidth = 16 }},
		{"jitter", func(c *HarnessConfig) { c.Frames.Jitter = 1 }},
		{"mini step", func(c *HarnessConfig) { c.Stepper.MiniStep = 0 }},
		{"schedule", func(c *HarnessConfig) { c.Harness.Right = "lagged:x" }},
		{"control", func(c *HarnessConfig) { c.Scenario.Control = "teleport" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultHarnessConfig()
			tt.mutate(&cfg)
			_, err := cfg.ToHarness()
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("ToHarness() error = %v, expected ErrInvalid", err)
			}
		})
	}
}
