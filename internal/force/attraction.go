// Package force implements the inverse-square attraction between a mobile
// entity and fixed anchors.
package force

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ByteArena/box2d"

	"github.com/vovakirdan/twinworld/internal/core"
	"github.com/vovakirdan/twinworld/internal/entity"
)

// ErrDegenerateAttraction is returned under the Reject policy when the mobile
// entity is closer to its anchor than the minimum radius.
var ErrDegenerateAttraction = errors.New("force: attraction radius below minimum")

// Policy selects how a radius below MinRadius is handled.
type Policy int

const (
	// Reject fails the computation.
	Reject Policy = iota
	// Clamp evaluates the force at MinRadius along the same direction.
	Clamp
)

// String returns the config name of the policy.
func (p Policy) String() string {
	switch p {
	case Reject:
		return "reject"
	case Clamp:
		return "clamp"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy resolves a config name.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(s) {
	case "reject", "":
		return Reject, nil
	case "clamp":
		return Clamp, nil
	}
	return Reject, fmt.Errorf("force: unknown attraction policy %q", s)
}

// DefaultMinRadius is the smallest radius evaluated without the policy kicking in.
const DefaultMinRadius = 1e-6

// Attraction computes normalize(anchor - mobile) / r².
type Attraction struct {
	Policy    Policy
	MinRadius float64
}

// DefaultAttraction rejects coincident bodies.
func DefaultAttraction() Attraction {
	return Attraction{Policy: Reject, MinRadius: DefaultMinRadius}
}

// Force returns the attraction felt at from towards anchor.
func (a Attraction) Force(from, anchor core.Vec2) (core.Vec2, error) {
	dir := anchor.Sub(from)
	r := dir.Len()
	if r < a.MinRadius || r == 0 {
		if a.Policy == Reject {
			return core.Vec2{}, fmt.Errorf("%w: r=%g at %v", ErrDegenerateAttraction, r, from)
		}
		if r == 0 {
			// No direction to pull along.
			return core.Vec2{}, nil
		}
		r = a.MinRadius
	}
	return dir.Normalize().Scale(1 / (r * r)), nil
}

// Link pairs a mobile entity with one fixed anchor.
type Link struct {
	Mobile *entity.Entity
	Anchor *entity.Entity
}

// Check evaluates the link between authoritative positions without applying
// anything. Under Clamp it never fails.
func (a Attraction) Check(l Link) error {
	_, err := a.Force(l.Mobile.Position(), l.Anchor.Position())
	return err
}

// ApplyPrimary adds the link's force to the mobile entity's authoritative body.
func (a Attraction) ApplyPrimary(l Link) error {
	f, err := a.Force(l.Mobile.Position(), l.Anchor.Position())
	if err != nil {
		return err
	}
	applyToCenter(l.Mobile.Body(), f)
	return nil
}

// ApplyShadow adds the link's force to the mobile entity's draw-world body,
// measured between draw positions.
func (a Attraction) ApplyShadow(l Link) error {
	f, err := a.Force(l.Mobile.DrawPosition(), l.Anchor.DrawPosition())
	if err != nil {
		return err
	}
	applyToCenter(l.Mobile.ShadowBody(), f)
	return nil
}

func applyToCenter(body *box2d.B2Body, f core.Vec2) {
	if body == nil {
		return
	}
	body.ApplyForceToCenter(box2d.MakeB2Vec2(f.X, f.Y), true)
}
