package shape

import (
	"math"

	"github.com/ByteArena/box2d"

	"github.com/vovakirdan/twinworld/internal/core"
)

const (
	// circleSegments is the number of edges in a circle or ellipse outline.
	circleSegments = 20

	// ellipseVertices is the polygon resolution used for ellipse fixtures.
	// The engine caps polygons at eight vertices.
	ellipseVertices = 8
)

type boxShape struct{}

func (boxShape) Kind() Kind { return Box }

func (boxShape) FixtureGeometry(size core.Vec2) box2d.B2ShapeInterface {
	poly := box2d.MakeB2PolygonShape()
	poly.SetAsBox(size.X/2, size.Y/2)
	return &poly
}

func (boxShape) RenderMesh(size core.Vec2) []core.Vec2 {
	hw, hh := size.X/2, size.Y/2
	return []core.Vec2{
		core.V(-hw, -hh),
		core.V(hw, -hh),
		core.V(hw, hh),
		core.V(-hw, hh),
	}
}

// triangleShape is an isosceles triangle whose centroid sits on the body origin.
type triangleShape struct{}

func (triangleShape) Kind() Kind { return Triangle }

func (t triangleShape) FixtureGeometry(size core.Vec2) box2d.B2ShapeInterface {
	return polygon(t.RenderMesh(size))
}

func (triangleShape) RenderMesh(size core.Vec2) []core.Vec2 {
	hw := size.X / 2
	alt := math.Sqrt(3) * size.Y / 2
	return []core.Vec2{
		core.V(-hw, alt/3),
		core.V(0, -2*alt/3),
		core.V(hw, alt/3),
	}
}

// circleShape uses the smaller of the two dimensions as its diameter.
type circleShape struct{}

func (circleShape) Kind() Kind { return Circle }

func (circleShape) FixtureGeometry(size core.Vec2) box2d.B2ShapeInterface {
	circle := box2d.MakeB2CircleShape()
	circle.M_radius = math.Min(size.X, size.Y) / 2
	return &circle
}

func (circleShape) RenderMesh(size core.Vec2) []core.Vec2 {
	r := math.Min(size.X, size.Y) / 2
	return ring(r, r, circleSegments)
}

type ellipseShape struct{}

func (ellipseShape) Kind() Kind { return Ellipse }

func (ellipseShape) FixtureGeometry(size core.Vec2) box2d.B2ShapeInterface {
	return polygon(ring(size.X/2, size.Y/2, ellipseVertices))
}

func (ellipseShape) RenderMesh(size core.Vec2) []core.Vec2 {
	return ring(size.X/2, size.Y/2, circleSegments)
}

func ring(rx, ry float64, n int) []core.Vec2 {
	pts := make([]core.Vec2, n)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = core.V(rx*math.Cos(a), ry*math.Sin(a))
	}
	return pts
}
