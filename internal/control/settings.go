package control

import (
	"github.com/vovakirdan/twinworld/internal/shape"
)

// Bounds for the tunable constants.
const (
	MinDensity     = 0.1
	MaxDensity     = 1000.0
	MinFriction    = 0.001
	MaxFriction    = 100.0
	MinRestitution = 0.001
	MaxRestitution = 10.0
)

// Settings are the live-tunable constants shared by every harness side.
type Settings struct {
	Density     float64
	Friction    float64
	Restitution float64
	Shape       shape.Kind
	Mode        Mode
}

// DefaultSettings mirrors the scenario defaults.
func DefaultSettings() Settings {
	return Settings{
		Density:     1.0,
		Friction:    0.1,
		Restitution: 1.0,
		Shape:       shape.Ellipse,
		Mode:        ModeForce,
	}
}

// ChangeValue scales v by factor on a log scale and reports whether it changed.
//
// A factor of 0 or 1 leaves v alone. Increasing from zero jumps to lo. Results
// above hi clamp to hi and results below lo snap to zero.
func ChangeValue(v, factor, lo, hi float64) (float64, bool) {
	if factor == 0 || factor == 1 {
		return v, false
	}
	var next float64
	switch {
	case v == 0 && factor > 1:
		next = lo
	default:
		next = v * factor
	}
	if next > hi {
		next = hi
	} else if next < lo {
		next = 0
	}
	return next, next != v
}

// Changes reports which settings a command modified.
type Changes struct {
	Density     bool
	Friction    bool
	Restitution bool
	Shape       bool
	Mode        bool
}

// Physical reports whether any fixture property changed.
func (c Changes) Physical() bool {
	return c.Density || c.Friction || c.Restitution
}

// Apply folds the tuning part of cmd into s.
func (s *Settings) Apply(cmd Command) Changes {
	var ch Changes
	s.Density, ch.Density = ChangeValue(s.Density, cmd.DensityFactor, MinDensity, MaxDensity)
	s.Friction, ch.Friction = ChangeValue(s.Friction, cmd.FrictionFactor, MinFriction, MaxFriction)
	s.Restitution, ch.Restitution = ChangeValue(s.Restitution, cmd.RestitutionFactor, MinRestitution, MaxRestitution)
	if cmd.ShapeDelta != 0 {
		s.Shape = shape.Cycle(s.Shape, cmd.ShapeDelta)
		ch.Shape = true
	}
	if cmd.ControlDelta != 0 {
		s.Mode = CycleMode(s.Mode, cmd.ControlDelta)
		ch.Mode = true
	}
	return ch
}
