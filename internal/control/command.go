// Package control defines the per-frame command the stepper consumes and the
// live-tunable physical settings behind it.
package control

import (
	"fmt"
	"strings"

	"github.com/ByteArena/box2d"

	"github.com/vovakirdan/twinworld/internal/core"
)

// Mode selects how the player's control vector reaches the avatar.
type Mode int

const (
	ModeNone Mode = iota
	ModeForce
	ModeImpulse
	ModeVelocity
	ModeTranslate
)

// cyclable are the modes reachable through the control cycle.
var cyclable = []Mode{ModeForce, ModeImpulse, ModeVelocity, ModeTranslate}

// String returns the HUD name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "None"
	case ModeForce:
		return "Force"
	case ModeImpulse:
		return "Impulse"
	case ModeVelocity:
		return "Velocity"
	case ModeTranslate:
		return "Translate"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode resolves a case-insensitive mode name.
func ParseMode(s string) (Mode, error) {
	for _, m := range append([]Mode{ModeNone}, cyclable...) {
		if strings.EqualFold(m.String(), s) {
			return m, nil
		}
	}
	return ModeNone, fmt.Errorf("control: unknown mode %q", s)
}

// CycleMode steps delta positions through the cyclable modes.
// ModeNone enters the cycle at ModeForce.
func CycleMode(m Mode, delta int) Mode {
	idx := 0
	for i, c := range cyclable {
		if c == m {
			idx = i
			break
		}
	}
	n := len(cyclable)
	idx = ((idx+delta)%n + n) % n
	return cyclable[idx]
}

// TranslateScale converts a control vector into a per-frame displacement.
const TranslateScale = 1.0 / 50

// Command is the structured input for one frame.
//
// The three factors multiply the current density, friction and restitution on
// a log scale; 0 and 1 both mean "unchanged".
type Command struct {
	LinearForce  core.Vec2
	AngularForce float64
	Mode         Mode

	DensityFactor     float64
	FrictionFactor    float64
	RestitutionFactor float64
	ShapeDelta        int
	ControlDelta      int
	Reset             bool
}

// Continuous reports whether the command is a held force re-applied at every
// micro-step rather than a one-shot action.
func (c Command) Continuous() bool {
	return c.Mode == ModeForce
}

// Merge folds o into c: vectors and deltas add, factors multiply, Reset ors.
// The mode is taken from o when set.
func (c Command) Merge(o Command) Command {
	c.LinearForce = c.LinearForce.Add(o.LinearForce)
	c.AngularForce += o.AngularForce
	if o.Mode != ModeNone {
		c.Mode = o.Mode
	}
	c.DensityFactor = mergeFactor(c.DensityFactor, o.DensityFactor)
	c.FrictionFactor = mergeFactor(c.FrictionFactor, o.FrictionFactor)
	c.RestitutionFactor = mergeFactor(c.RestitutionFactor, o.RestitutionFactor)
	c.ShapeDelta += o.ShapeDelta
	c.ControlDelta += o.ControlDelta
	c.Reset = c.Reset || o.Reset
	return c
}

func mergeFactor(a, b float64) float64 {
	if a == 0 {
		return b
	}
	if b == 0 {
		return a
	}
	return a * b
}

// ApplyOnce performs the one-shot part of the command on body.
// Force mode contributes nothing here.
func ApplyOnce(body *box2d.B2Body, c Command) {
	if body == nil {
		return
	}
	lin := box2d.MakeB2Vec2(c.LinearForce.X, c.LinearForce.Y)
	switch c.Mode {
	case ModeImpulse:
		body.ApplyLinearImpulse(lin, body.GetPosition(), true)
		body.ApplyAngularImpulse(c.AngularForce, true)
	case ModeVelocity:
		body.SetLinearVelocity(lin)
		body.SetAngularVelocity(c.AngularForce)
	case ModeTranslate:
		pos := body.GetPosition()
		step := c.LinearForce.Scale(TranslateScale)
		body.SetTransform(box2d.MakeB2Vec2(pos.X+step.X, pos.Y+step.Y), body.GetAngle()+c.AngularForce)
	}
}

// ApplyContinuous adds the held force and torque of a Force-mode command.
func ApplyContinuous(body *box2d.B2Body, c Command) {
	if body == nil || !c.Continuous() {
		return
	}
	body.ApplyForce(box2d.MakeB2Vec2(c.LinearForce.X, c.LinearForce.Y), body.GetPosition(), true)
	body.ApplyTorque(c.AngularForce, true)
}
