package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vovakirdan/twinworld/internal/control"
	"github.com/vovakirdan/twinworld/internal/core"
	"github.com/vovakirdan/twinworld/internal/force"
	"github.com/vovakirdan/twinworld/internal/harness"
	"github.com/vovakirdan/twinworld/internal/registry"
	"github.com/vovakirdan/twinworld/internal/shape"
	"github.com/vovakirdan/twinworld/internal/stepper"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Validate checks the fields that do not depend on other packages' parsers.
func (c HarnessConfig) Validate() error {
	if c.Frames.Count < 0 {
		return fmt.Errorf("%w: frames.count must be non-negative, got %d", ErrInvalid, c.Frames.Count)
	}
	if !(c.Frames.Delta >= 0) || !core.IsFinite(c.Frames.Delta) {
		return fmt.Errorf("%w: frames.delta must be non-negative, got %v", ErrInvalid, c.Frames.Delta)
	}
	if !(c.Frames.Jitter >= 0) || c.Frames.Jitter > c.Frames.Delta {
		return fmt.Errorf("%w: frames.jitter must be in [0, delta], got %v", ErrInvalid, c.Frames.Jitter)
	}
	if !(c.Scenario.Width > 0) || !(c.Scenario.Height > 0) {
		return fmt.Errorf("%w: scenario size must be positive, got %vx%v",
			ErrInvalid, c.Scenario.Width, c.Scenario.Height)
	}
	if !(c.Attraction.MinRadius > 0) {
		return fmt.Errorf("%w: attraction.min_radius must be positive, got %v", ErrInvalid, c.Attraction.MinRadius)
	}
	if c.Harness.HoldFrames < 0 {
		return fmt.Errorf("%w: harness.hold_frames must be non-negative, got %d", ErrInvalid, c.Harness.HoldFrames)
	}
	if c.Stepper.MaxMicroSteps < 0 {
		return fmt.Errorf("%w: stepper.max_micro_steps must be non-negative, got %d", ErrInvalid, c.Stepper.MaxMicroSteps)
	}
	return nil
}

// Variant builds the schedule pair named by the harness section. Explicit
// left/right schedule strings override the preset's sides.
func (c HarnessConfig) Variant() (harness.Variant, error) {
	var v harness.Variant
	switch strings.ToLower(c.Harness.Variant) {
	case harness.VariantFrameRate, "":
		v = harness.FrameRateVariant(c.Harness.OverrideDelta)
	case harness.VariantInverted:
		v = harness.InvertedVariant(c.Harness.HoldFrames, c.Harness.CatchUp)
	default:
		return v, fmt.Errorf("%w: unknown variant %q", ErrInvalid, c.Harness.Variant)
	}
	if c.Harness.Left != "" {
		s, err := harness.ParseSchedule(c.Harness.Left)
		if err != nil {
			return v, fmt.Errorf("%w: harness.left: %v", ErrInvalid, err)
		}
		v.Left = s
		if v.CatchUp != nil {
			v.CatchUp = s
		}
	}
	if c.Harness.Right != "" {
		s, err := harness.ParseSchedule(c.Harness.Right)
		if err != nil {
			return v, fmt.Errorf("%w: harness.right: %v", ErrInvalid, err)
		}
		v.Right = s
	}
	return v, nil
}

// StepperConfig converts the engine, stepper and attraction sections.
func (c HarnessConfig) StepperConfig() (stepper.Config, error) {
	clearPolicy, err := stepper.ParseClearPolicy(c.Stepper.ClearPolicy)
	if err != nil {
		return stepper.Config{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	policy, err := force.ParsePolicy(c.Attraction.Policy)
	if err != nil {
		return stepper.Config{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return stepper.Config{
		Gravity:            core.V(c.Engine.Gravity[0], c.Engine.Gravity[1]),
		MiniStep:           c.Stepper.MiniStep,
		VelocityIterations: c.Engine.VelocityIterations,
		PositionIterations: c.Engine.PositionIterations,
		AutoClearForces:    c.Engine.AutoClearForces,
		ClearPolicy:        clearPolicy,
		MaxMicroSteps:      c.Stepper.MaxMicroSteps,
		Attraction: force.Attraction{
			Policy:    policy,
			MinRadius: c.Attraction.MinRadius,
		},
	}, nil
}

// Params converts the scenario section.
func (c HarnessConfig) Params() (registry.Params, error) {
	kind, err := shape.ParseKind(c.Scenario.Shape)
	if err != nil {
		return registry.Params{}, fmt.Errorf("%w: scenario.shape: %v", ErrInvalid, err)
	}
	mode := control.ModeForce
	if c.Scenario.Control != "" {
		if mode, err = control.ParseMode(c.Scenario.Control); err != nil {
			return registry.Params{}, fmt.Errorf("%w: scenario.control: %v", ErrInvalid, err)
		}
	}
	return registry.Params{
		Width:       c.Scenario.Width,
		Height:      c.Scenario.Height,
		Shape:       kind,
		Density:     c.Scenario.Density,
		Friction:    c.Scenario.Friction,
		Restitution: c.Scenario.Restitution,
		CarSpeed:    c.Scenario.CarSpeed,
		Mode:        mode,
	}, nil
}

// ToHarness validates the configuration and builds a harness config from it.
func (c HarnessConfig) ToHarness() (harness.Config, error) {
	if err := c.Validate(); err != nil {
		return harness.Config{}, err
	}
	sc, err := c.StepperConfig()
	if err != nil {
		return harness.Config{}, err
	}
	params, err := c.Params()
	if err != nil {
		return harness.Config{}, err
	}
	variant, err := c.Variant()
	if err != nil {
		return harness.Config{}, err
	}
	if !registry.Exists(c.Scenario.Name) {
		return harness.Config{}, fmt.Errorf("%w: %w: %q", ErrInvalid, registry.ErrUnknown, c.Scenario.Name)
	}
	hc := harness.Config{
		Stepper:     sc,
		Scenario:    c.Scenario.Name,
		Params:      params,
		Variant:     variant,
		BufferSize:  c.Harness.BufferSize,
		BucketScale: c.Harness.BucketScale,
		BitWidth:    c.Harness.BitWidth,
	}
	if err := hc.Validate(); err != nil {
		return harness.Config{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return hc, nil
}

// Clock returns the headless frame clock described by the frames section.
func (c HarnessConfig) Clock() *harness.Clock {
	return harness.NewClock(c.Frames.Delta, c.Frames.Jitter, c.Frames.Seed)
}
