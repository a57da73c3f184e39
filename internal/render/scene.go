package render

import (
	"github.com/vovakirdan/twinworld/internal/core"
	"github.com/vovakirdan/twinworld/internal/harness"
)

// Layout reserves the bottom HUDRows rows for text and splits the rest into
// one panel per compared side.
type Layout struct {
	HUDRows int
}

// DefaultLayout leaves room for the settings and diff lines.
func DefaultLayout() Layout {
	return Layout{HUDRows: 6}
}

// Panels returns the left and right panel rectangles for a screen.
func (l Layout) Panels(width, height int) (left, right core.Rect) {
	h := max(height-l.HUDRows, 3)
	half := width / 2
	return core.NewRect(0, 0, half, h), core.NewRect(half, 0, width-half, h)
}

// DrawHarness draws both compared sides and the HUD. The left world sits at
// x offset 0 and the right world is offset by half the screen.
func (c *Canvas) DrawHarness(h *harness.Harness, l Layout) error {
	if !c.drawing {
		return ErrNotDrawing
	}
	w, ht := c.screen.Width(), c.screen.Height()
	leftRect, rightRect := l.Panels(w, ht)
	world := core.V(h.Config().Params.Width, h.Config().Params.Height)

	for _, p := range []struct {
		side *harness.Side
		rect core.Rect
	}{
		{h.Left(), leftRect},
		{h.Right(), rightRect},
	} {
		if err := c.drawSide(p.side, p.rect, world); err != nil {
			return err
		}
	}

	y := leftRect.Bottom()
	for _, line := range SettingsLines(h.Settings()) {
		if y >= ht {
			break
		}
		if err := c.Text(1, y, line, core.ColorWhite); err != nil {
			return err
		}
		y++
	}
	y = leftRect.Bottom()
	for _, line := range DiffLines(h.Last()) {
		if y >= ht {
			break
		}
		if err := c.Text(rightRect.X+1, y, line, core.ColorCyan); err != nil {
			return err
		}
		y++
	}
	return nil
}

func (c *Canvas) drawSide(s *harness.Side, rect core.Rect, world core.Vec2) error {
	if err := c.Box(rect); err != nil {
		return err
	}
	if err := c.Text(rect.X+2, rect.Y, " "+s.Name+" "+s.Schedule.Name()+" ", core.ColorGray); err != nil {
		return err
	}
	c.SetViewport(Viewport{
		Cells: core.NewRect(rect.X+1, rect.Y+1, max(rect.W-2, 1), max(rect.H-2, 1)),
		World: world,
	})
	for _, e := range s.Scene.All() {
		if err := c.DrawEntity(e); err != nil {
			return err
		}
	}
	return nil
}
