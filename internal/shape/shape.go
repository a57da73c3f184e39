// Package shape provides the collision shapes an entity can be built from.
//
// Shapes are selected by Kind and resolved through a fixed registration table.
// Each Shape produces both the fixture geometry handed to the physics engine and
// an outline mesh for the presentation layer, always from the same size.
package shape

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ByteArena/box2d"

	"github.com/vovakirdan/twinworld/internal/core"
)

// ErrUnknownKind is returned when a kind or name does not map to a registered shape.
var ErrUnknownKind = errors.New("shape: unknown kind")

// Kind tags one of the supported shape variants.
type Kind int

const (
	Box Kind = iota
	Triangle
	Circle
	Ellipse
	kindCount
)

var kindNames = [...]string{
	Box:      "Box",
	Triangle: "Triangle",
	Circle:   "Circle",
	Ellipse:  "Ellipse",
}

// String returns the display name of the kind.
func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Valid reports whether k names a registered shape.
func (k Kind) Valid() bool {
	_, ok := registry[k]
	return ok
}

// Shape is the capability every shape variant provides.
type Shape interface {
	Kind() Kind
	// FixtureGeometry returns the engine shape for a body of the given size
	// (full width and height in world units), centered on the body origin.
	FixtureGeometry(size core.Vec2) box2d.B2ShapeInterface
	// RenderMesh returns the closed outline in body-local coordinates.
	RenderMesh(size core.Vec2) []core.Vec2
}

var registry = map[Kind]Shape{
	Box:      boxShape{},
	Triangle: triangleShape{},
	Circle:   circleShape{},
	Ellipse:  ellipseShape{},
}

// New returns the registered shape for kind.
func New(kind Kind) (Shape, error) {
	s, ok := registry[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(kind))
	}
	return s, nil
}

// Kinds returns all registered kinds in cycling order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(registry))
	for k := Kind(0); k < kindCount; k++ {
		if _, ok := registry[k]; ok {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// Cycle steps delta positions through the registered kinds, wrapping at both ends.
func Cycle(kind Kind, delta int) Kind {
	n := int(kindCount)
	i := (int(kind) + delta) % n
	if i < 0 {
		i += n
	}
	return Kind(i)
}

// ParseKind resolves a case-insensitive shape name.
func ParseKind(name string) (Kind, error) {
	for k := Kind(0); k < kindCount; k++ {
		if strings.EqualFold(kindNames[k], name) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

func toB2(pts []core.Vec2) []box2d.B2Vec2 {
	out := make([]box2d.B2Vec2, len(pts))
	for i, p := range pts {
		out[i] = box2d.MakeB2Vec2(p.X, p.Y)
	}
	return out
}

func polygon(pts []core.Vec2) box2d.B2ShapeInterface {
	poly := box2d.MakeB2PolygonShape()
	poly.Set(toB2(pts), len(pts))
	return &poly
}
