// Package render draws harness sides and HUD text into a core.Screen.
//
// All drawing goes through a Canvas, which enforces a Begin/End session:
// drawing outside a session and reconfiguring the canvas inside one are
// reported as errors rather than silently ignored.
package render

import (
	"errors"
	"math"

	"github.com/vovakirdan/twinworld/internal/core"
	"github.com/vovakirdan/twinworld/internal/entity"
)

var (
	// ErrNotDrawing is returned by draw calls made outside Begin/End.
	ErrNotDrawing = errors.New("render: not drawing")
	// ErrAlreadyDrawing is returned by Begin and by canvas mutations inside a session.
	ErrAlreadyDrawing = errors.New("render: already drawing")
)

// Viewport maps a world-space rectangle onto a block of screen cells.
// World y points up, cell y points down.
type Viewport struct {
	Cells core.Rect
	World core.Vec2 // world width and height in units, anchored at the origin
}

// ToCell converts a world position to cell coordinates. Points outside the
// world rectangle map outside Cells and are clipped by the screen.
func (v Viewport) ToCell(p core.Vec2) (int, int) {
	if v.World.X <= 0 || v.World.Y <= 0 {
		return v.Cells.X, v.Cells.Y
	}
	cx := v.Cells.X + int(math.Floor(p.X/v.World.X*float64(v.Cells.W)))
	cy := v.Cells.Y + v.Cells.H - 1 - int(math.Floor(p.Y/v.World.Y*float64(v.Cells.H)))
	return cx, cy
}

// Canvas is a render-session handle over a screen.
type Canvas struct {
	screen   *core.Screen
	viewport Viewport
	drawing  bool
}

// NewCanvas creates a canvas drawing into screen.
func NewCanvas(screen *core.Screen) *Canvas {
	return &Canvas{screen: screen}
}

// Screen returns the underlying buffer.
func (c *Canvas) Screen() *core.Screen { return c.screen }

// Drawing reports whether a session is open.
func (c *Canvas) Drawing() bool { return c.drawing }

// Viewport returns the active viewport.
func (c *Canvas) Viewport() Viewport { return c.viewport }

// Begin opens a session and clears the screen.
func (c *Canvas) Begin() error {
	if c.drawing {
		return ErrAlreadyDrawing
	}
	c.drawing = true
	c.screen.Clear()
	return nil
}

// End closes the session.
func (c *Canvas) End() error {
	if !c.drawing {
		return ErrNotDrawing
	}
	c.drawing = false
	return nil
}

// Resize changes the screen size. Not allowed mid-session.
func (c *Canvas) Resize(width, height int) error {
	if c.drawing {
		return ErrAlreadyDrawing
	}
	c.screen.Resize(width, height)
	return nil
}

// SetViewport selects the world-to-cell mapping for subsequent DrawEntity calls.
// Panels switch viewports between sides, so this is allowed inside a session.
func (c *Canvas) SetViewport(v Viewport) {
	c.viewport = v
}

// DrawEntity outlines the entity's render mesh at its draw transform.
func (c *Canvas) DrawEntity(e *entity.Entity) error {
	if !c.drawing {
		return ErrNotDrawing
	}
	mesh := e.Mesh()
	if len(mesh) == 0 {
		return nil
	}
	color := e.Color()
	x0, y0 := c.viewport.ToCell(mesh[len(mesh)-1])
	for _, p := range mesh {
		x1, y1 := c.viewport.ToCell(p)
		c.screen.DrawLine(x0, y0, x1, y1, '█', color)
		x0, y0 = x1, y1
	}
	// Mark the center so sub-cell bodies stay visible.
	cx, cy := c.viewport.ToCell(e.DrawPosition())
	c.screen.SetColored(cx, cy, '█', color)
	return nil
}

// Text writes a HUD line at cell (x, y).
func (c *Canvas) Text(x, y int, text string, color core.Color) error {
	if !c.drawing {
		return ErrNotDrawing
	}
	c.screen.DrawTextColored(x, y, text, color)
	return nil
}

// Box draws a panel border.
func (c *Canvas) Box(r core.Rect) error {
	if !c.drawing {
		return ErrNotDrawing
	}
	c.screen.DrawBox(r)
	return nil
}
