package render

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/vovakirdan/twinworld/internal/control"
	"github.com/vovakirdan/twinworld/internal/core"
	"github.com/vovakirdan/twinworld/internal/entity"
	"github.com/vovakirdan/twinworld/internal/harness"
	"github.com/vovakirdan/twinworld/internal/shape"

	_ "github.com/vovakirdan/twinworld/internal/scenarios"
)

func TestCanvasSession(t *testing.T) {
	c := NewCanvas(core.NewScreen(10, 5))

	if err := c.End(); !errors.Is(err, ErrNotDrawing) {
		t.Errorf("End() before Begin = %v, expected ErrNotDrawing", err)
	}
	if err := c.Text(0, 0, "x", core.ColorDefault); !errors.Is(err, ErrNotDrawing) {
		t.Errorf("Text() outside session = %v, expected ErrNotDrawing", err)
	}
	if err := c.Begin(); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if err := c.Begin(); !errors.Is(err, ErrAlreadyDrawing) {
		t.Errorf("second Begin() = %v, expected ErrAlreadyDrawing", err)
	}
	if err := c.Resize(20, 5); !errors.Is(err, ErrAlreadyDrawing) {
		t.Errorf("Resize() mid-draw = %v, expected ErrAlreadyDrawing", err)
	}
	if c.Screen().Width() != 10 {
		t.Errorf("Width() = %d after rejected resize, expected 10", c.Screen().Width())
	}
	if err := c.End(); err != nil {
		t.Fatalf("End() error = %v", err)
	}
	if err := c.Resize(20, 5); err != nil {
		t.Errorf("Resize() after End = %v", err)
	}
}

func TestBeginClears(t *testing.T) {
	c := NewCanvas(core.NewScreen(5, 1))
	c.Screen().DrawText(0, 0, "stale")
	if err := c.Begin(); err != nil {
		t.Fatal(err)
	}
	if got := c.Screen().Row(0); got != "     " {
		t.Errorf("Row(0) = %q, expected blank", got)
	}
}

func TestViewportToCell(t *testing.T) {
	v := Viewport{Cells: core.NewRect(2, 1, 16, 9), World: core.V(16, 9)}
	tests := []struct {
		p      core.Vec2
		cx, cy int
	}{
		{core.V(0, 0), 2, 9},
		{core.V(15.5, 8.5), 17, 1},
		{core.V(8, 4.5), 10, 5},
		{core.V(-1, 0), 1, 9},
	}
	for _, tt := range tests {
		cx, cy := v.ToCell(tt.p)
		if cx != tt.cx || cy != tt.cy {
			t.Errorf("ToCell(%v) = (%d, %d), expected (%d, %d)", tt.p, cx, cy, tt.cx, tt.cy)
		}
	}
}

func TestDrawEntity(t *testing.T) {
	e, err := entity.New(entity.Def{
		Name:  "box",
		Kind:  core.Static,
		Shape: shape.Box,
		Size:  core.V(4, 2),
		Color: core.ColorRed,
	})
	if err != nil {
		t.Fatal(err)
	}
	e.SetPosition(core.V(5, 5))

	c := NewCanvas(core.NewScreen(10, 10))
	c.SetViewport(Viewport{Cells: core.NewRect(0, 0, 10, 10), World: core.V(10, 10)})
	if err := c.DrawEntity(e); !errors.Is(err, ErrNotDrawing) {
		t.Errorf("DrawEntity() outside session = %v, expected ErrNotDrawing", err)
	}
	if err := c.Begin(); err != nil {
		t.Fatal(err)
	}
	if err := c.DrawEntity(e); err != nil {
		t.Fatalf("DrawEntity() error = %v", err)
	}
	cx, cy := c.Viewport().ToCell(core.V(5, 5))
	if cell := c.Screen().GetCell(cx, cy); cell.Color != core.ColorRed {
		t.Errorf("center cell color = %v, expected red", cell.Color)
	}
	// Corner (3, 4) of the outline maps to cell (3, 5).
	if got := c.Screen().Get(3, 5); got != '█' {
		t.Errorf("corner cell = %q, expected outline", got)
	}
}

func TestSettingsLines(t *testing.T) {
	lines := SettingsLines(control.Settings{
		Density:     1,
		Friction:    0.1,
		Restitution: 10,
		Shape:       shape.Ellipse,
		Mode:        control.ModeImpulse,
	})
	want := []string{
		"Shape: Ellipse",
		"Controls: Impulse",
		"Density: 1.000",
		"Friction: 0.100",
		"Restitution: 10.000",
	}
	if len(lines) != len(want) {
		t.Fatalf("SettingsLines() len = %d, expected %d", len(lines), len(want))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("SettingsLines()[%d] = %q, expected %q", i, lines[i], want[i])
		}
	}
}

func TestDiffLines(t *testing.T) {
	lines := DiffLines(harness.Comparison{DiffY: 0, LogDiffY: negInf()})
	if lines[1] != "log-diff-y: -inf" {
		t.Errorf("DiffLines()[1] = %q, expected -inf", lines[1])
	}
	if len(lines) != 3 {
		t.Errorf("DiffLines() len = %d, expected 3 without catch-up", len(lines))
	}
	lines = DiffLines(harness.Comparison{HasCatchUp: true})
	if !strings.HasPrefix(lines[len(lines)-1], "catch-up:") {
		t.Errorf("last line = %q, expected catch-up", lines[len(lines)-1])
	}
}

func TestDrawHarness(t *testing.T) {
	cfg := harness.DefaultConfig()
	cfg.BufferSize = 20
	h, err := harness.New(cfg, nil, nil)
	if err != nil {
		t.Fatalf("harness.New() error = %v", err)
	}
	if _, err := h.Tick(1.0/60, control.Command{}); err != nil {
		t.Fatal(err)
	}

	c := NewCanvas(core.NewScreen(80, 24))
	if err := c.DrawHarness(h, DefaultLayout()); !errors.Is(err, ErrNotDrawing) {
		t.Errorf("DrawHarness() outside session = %v, expected ErrNotDrawing", err)
	}
	if err := c.Begin(); err != nil {
		t.Fatal(err)
	}
	if err := c.DrawHarness(h, DefaultLayout()); err != nil {
		t.Fatalf("DrawHarness() error = %v", err)
	}
	if err := c.End(); err != nil {
		t.Fatal(err)
	}

	out := c.Screen().String()
	for _, want := range []string{"left literal", "right lagged:0.015", "Shape: Ellipse", "diff-pos:"} {
		if !strings.Contains(out, want) {
			t.Errorf("screen missing %q", want)
		}
	}
}

func negInf() float64 {
	return math.Inf(-1)
}
