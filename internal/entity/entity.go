// Package entity wraps one rigid body and its shadow ("draw") twin.
//
// An Entity owns a primary body in the authoritative world and a shadow body in
// the draw world. Simulation code only ever touches the primary body; the shadow
// body receives a one-directional copy of the primary's kinematic state through
// SyncBodies and is never read back.
package entity

import (
	"errors"
	"fmt"

	"github.com/ByteArena/box2d"

	"github.com/vovakirdan/twinworld/internal/core"
	"github.com/vovakirdan/twinworld/internal/shape"
)

var (
	// ErrInitialized is returned when Initialize is called twice.
	ErrInitialized = errors.New("entity: already initialized")
	// ErrNoWorld is returned when Initialize receives a nil world.
	ErrNoWorld = errors.New("entity: nil world")
)

// Def describes an entity before it is placed in a world.
type Def struct {
	Name  string
	Kind  core.BodyKind
	Shape shape.Kind
	Size  core.Vec2 // full width and height in world units
	Color core.Color
}

// Entity is a rigid-body proxy. Setters may be called before Initialize; their
// values are buffered and applied when the bodies are created.
type Entity struct {
	name  string
	kind  core.BodyKind
	shape shape.Shape
	size  core.Vec2
	color core.Color

	density     float64
	friction    float64
	restitution float64

	// Buffered until Initialize.
	position core.Vec2
	angle    float64
	velocity core.Vec2

	body          *box2d.B2Body
	fixture       *box2d.B2Fixture
	shadow        *box2d.B2Body
	shadowFixture *box2d.B2Fixture
}

// New creates an uninitialized entity.
func New(def Def) (*Entity, error) {
	s, err := shape.New(def.Shape)
	if err != nil {
		return nil, fmt.Errorf("entity %q: %w", def.Name, err)
	}
	return &Entity{
		name:    def.Name,
		kind:    def.Kind,
		shape:   s,
		size:    def.Size,
		color:   def.Color,
		density: 1,
	}, nil
}

// Name returns the entity's identifier within its world.
func (e *Entity) Name() string { return e.name }

// Kind returns the body classification.
func (e *Entity) Kind() core.BodyKind { return e.kind }

// ShapeKind returns the shape the entity was created with.
func (e *Entity) ShapeKind() shape.Kind { return e.shape.Kind() }

// Size returns the full width and height.
func (e *Entity) Size() core.Vec2 { return e.size }

// Color returns the presentation color.
func (e *Entity) Color() core.Color { return e.color }

// Initialized reports whether the bodies exist.
func (e *Entity) Initialized() bool { return e.body != nil }

// Density returns the cached density.
func (e *Entity) Density() float64 { return e.density }

// Friction returns the cached friction.
func (e *Entity) Friction() float64 { return e.friction }

// Restitution returns the cached restitution.
func (e *Entity) Restitution() float64 { return e.restitution }

// SetDensity updates the density. On an initialized entity the primary body's
// mass data is recomputed; the shadow body is left alone.
func (e *Entity) SetDensity(v float64) {
	e.density = v
	if e.fixture == nil {
		return
	}
	e.fixture.SetDensity(v)
	e.body.ResetMassData()
}

// SetFriction updates the friction coefficient.
func (e *Entity) SetFriction(v float64) {
	e.friction = v
	if e.fixture != nil {
		e.fixture.SetFriction(v)
	}
}

// SetRestitution updates the restitution coefficient.
func (e *Entity) SetRestitution(v float64) {
	e.restitution = v
	if e.fixture != nil {
		e.fixture.SetRestitution(v)
	}
}

// SetPosition buffers the position before Initialize, or teleports the
// primary body afterwards.
func (e *Entity) SetPosition(p core.Vec2) {
	e.position = p
	if e.body != nil {
		e.body.SetTransform(toB2(p), e.body.GetAngle())
	}
}

// SetAngle buffers the angle before Initialize, or rotates the primary body afterwards.
func (e *Entity) SetAngle(a float64) {
	e.angle = a
	if e.body != nil {
		e.body.SetTransform(e.body.GetPosition(), a)
	}
}

// SetLinearVelocity buffers the initial velocity or sets it on the primary body.
func (e *Entity) SetLinearVelocity(v core.Vec2) {
	e.velocity = v
	if e.body != nil {
		e.body.SetLinearVelocity(toB2(v))
	}
}

// Initialize creates the primary body in world and the shadow body in
// shadowWorld, applying every buffered value.
func (e *Entity) Initialize(world, shadowWorld *box2d.B2World) error {
	if e.body != nil {
		return fmt.Errorf("%w: %q", ErrInitialized, e.name)
	}
	if world == nil || shadowWorld == nil {
		return fmt.Errorf("%w: %q", ErrNoWorld, e.name)
	}

	e.body, e.fixture = e.create(world)
	e.shadow, e.shadowFixture = e.create(shadowWorld)
	return nil
}

func (e *Entity) create(world *box2d.B2World) (*box2d.B2Body, *box2d.B2Fixture) {
	bd := box2d.MakeB2BodyDef()
	bd.Type = b2Type(e.kind)
	bd.Position = toB2(e.position)
	bd.Angle = e.angle
	if e.kind != core.Static {
		bd.LinearVelocity = toB2(e.velocity)
	}
	body := world.CreateBody(&bd)
	body.SetUserData(e)

	fd := box2d.MakeB2FixtureDef()
	fd.Shape = e.shape.FixtureGeometry(e.size)
	fd.Density = e.density
	fd.Friction = e.friction
	fd.Restitution = e.restitution
	fixture := body.CreateFixtureFromDef(&fd)
	return body, fixture
}
