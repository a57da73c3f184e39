package config

import (
	_ "embed"
)

//go:embed defaults/harness.yaml
var defaultHarnessYAML []byte

// DefaultHarnessConfig returns the built-in configuration.
func DefaultHarnessConfig() HarnessConfig {
	return HarnessConfig{
		Engine: EngineConfig{
			VelocityIterations: 2,
			PositionIterations: 2,
		},
		Stepper: StepperConfig{
			MiniStep:      0.003,
			ClearPolicy:   "micro_step",
			MaxMicroSteps: 10000,
		},
		Attraction: AttractionConfig{
			Policy:    "reject",
			MinRadius: 1e-6,
		},
		Harness: CompareConfig{
			Variant:       "frame-rate",
			OverrideDelta: 0.015,
			HoldFrames:    30,
			CatchUp:       true,
			BufferSize:    1000,
			BucketScale:   1000.0 / 3,
			BitWidth:      32,
		},
		Scenario: ScenarioConfig{
			Name:        "attraction",
			Shape:       "ellipse",
			Density:     1.0,
			Friction:    0.1,
			Restitution: 1.0,
			Width:       16,
			Height:      9,
			CarSpeed:    0.1,
			Control:     "force",
		},
		Frames: FramesConfig{
			Count:  600,
			Delta:  1.0 / 60,
			Jitter: 0.002,
			Seed:   1,
		},
	}
}
