package stepper

import (
	"fmt"
	"strings"

	"github.com/vovakirdan/twinworld/internal/core"
	"github.com/vovakirdan/twinworld/internal/force"
)

// ClearPolicy decides when the authoritative world's force accumulators are zeroed.
type ClearPolicy int

const (
	// ClearEachMicroStep zeroes every accumulator as the first action of each micro-step.
	ClearEachMicroStep ClearPolicy = iota
	// ClearEachFrame zeroes accumulators once per frame, before the first
	// micro-step. Forces applied inside the loop pile up across micro-steps
	// unless the engine clears them itself.
	ClearEachFrame
)

// String returns the config name of the policy.
func (p ClearPolicy) String() string {
	switch p {
	case ClearEachMicroStep:
		return "micro_step"
	case ClearEachFrame:
		return "frame"
	default:
		return fmt.Sprintf("ClearPolicy(%d)", int(p))
	}
}

// ParseClearPolicy resolves a config name.
func ParseClearPolicy(s string) (ClearPolicy, error) {
	switch strings.ToLower(s) {
	case "micro_step", "microstep", "":
		return ClearEachMicroStep, nil
	case "frame":
		return ClearEachFrame, nil
	}
	return ClearEachMicroStep, fmt.Errorf("stepper: unknown clear policy %q", s)
}

// Config holds the numeric parameters of one world.
type Config struct {
	Gravity            core.Vec2
	MiniStep           float64
	VelocityIterations int
	PositionIterations int
	// AutoClearForces lets the engine zero accumulators at the end of every
	// Step call. Off by default so the accumulator is entirely caller-managed.
	AutoClearForces bool
	ClearPolicy     ClearPolicy
	// MaxMicroSteps bounds the micro-steps one frame may run. Zero disables the bound.
	MaxMicroSteps int
	Attraction    force.Attraction
}

// DefaultConfig returns the parameters of the lab experiment.
func DefaultConfig() Config {
	return Config{
		MiniStep:           0.003,
		VelocityIterations: 2,
		PositionIterations: 2,
		ClearPolicy:        ClearEachMicroStep,
		MaxMicroSteps:      10000,
		Attraction:         force.DefaultAttraction(),
	}
}

// Validate reports the first invalid parameter.
func (c Config) Validate() error {
	if !(c.MiniStep > 0) || !core.IsFinite(c.MiniStep) {
		return fmt.Errorf("stepper: mini step must be positive and finite, got %v", c.MiniStep)
	}
	if c.VelocityIterations <= 0 || c.PositionIterations <= 0 {
		return fmt.Errorf("stepper: solver iterations must be positive, got %d/%d",
			c.VelocityIterations, c.PositionIterations)
	}
	if c.MaxMicroSteps < 0 {
		return fmt.Errorf("stepper: max micro steps must not be negative, got %d", c.MaxMicroSteps)
	}
	if c.ClearPolicy != ClearEachMicroStep && c.ClearPolicy != ClearEachFrame {
		return fmt.Errorf("stepper: invalid clear policy %d", int(c.ClearPolicy))
	}
	return nil
}
