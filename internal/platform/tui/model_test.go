package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/twinworld/internal/core"
	"github.com/vovakirdan/twinworld/internal/harness"

	_ "github.com/vovakirdan/twinworld/internal/scenarios"
)

func newTestModel(t *testing.T) (Model, *harness.Harness) {
	t.Helper()
	cfg := harness.DefaultConfig()
	cfg.BufferSize = 50
	h, err := harness.New(cfg, nil, nil)
	if err != nil {
		t.Fatalf("harness.New() error = %v", err)
	}
	return NewModel(h, core.RuntimeConfig{ScreenW: 80, ScreenH: 30, TickRate: 60}), h
}

func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update() returned %T, expected Model", next)
	}
	return nm
}

func TestModelTicksHarness(t *testing.T) {
	m, h := newTestModel(t)
	start := time.Unix(0, 0)
	m = step(t, m, TickMsg(start))
	m = step(t, m, TickMsg(start.Add(20*time.Millisecond)))

	if h.Frame() != 2 {
		t.Fatalf("Frame() = %d, expected 2", h.Frame())
	}
	if got := h.Last().Delta; got != 0.02 {
		t.Errorf("second frame delta = %v, expected 0.02", got)
	}
	if m.Err() != nil {
		t.Errorf("Err() = %v, expected nil", m.Err())
	}
}

func TestModelResetAfterHaltRestartsClock(t *testing.T) {
	m, h := newTestModel(t)
	start := time.Unix(0, 0)
	m = step(t, m, TickMsg(start))
	m = step(t, m, TickMsg(start.Add(time.Minute)))
	if m.Err() == nil {
		t.Fatal("a one-minute frame should exceed the micro-step budget")
	}

	m = step(t, m, runeKey('r'))
	if m.Err() != nil {
		t.Fatalf("Err() after reset = %v, expected nil", m.Err())
	}
	m = step(t, m, TickMsg(start.Add(2*time.Minute)))
	if m.Err() != nil {
		t.Fatalf("first tick after reset failed: %v", m.Err())
	}
	if h.Frame() != 1 {
		t.Errorf("Frame() = %d, expected 1", h.Frame())
	}
	if got, want := h.Last().Delta, 1.0/60; got != want {
		t.Errorf("first delta after reset = %v, expected %v", got, want)
	}
}

func TestModelKeysReachHarness(t *testing.T) {
	m, h := newTestModel(t)
	density := h.Settings().Density

	m = step(t, m, runeKey('2'))
	m = step(t, m, TickMsg(time.Unix(0, 0)))

	if got := h.Settings().Density; got != density*10 {
		t.Errorf("Density = %v, expected %v", got, density*10)
	}

	m = step(t, m, runeKey('r'))
	_ = step(t, m, TickMsg(time.Unix(1, 0)))
	if h.Frame() != 0 {
		t.Errorf("Frame() after reset = %d, expected 0", h.Frame())
	}
}

func TestModelView(t *testing.T) {
	m, _ := newTestModel(t)
	m = step(t, m, TickMsg(time.Unix(0, 0)))

	view := m.View()
	for _, want := range []string{"left", "right", "Density:"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}

	m = step(t, m, runeKey('g'))
	if !m.showPlot {
		t.Fatal("plot toggle did not enable the plot")
	}
	if m.canvas.Screen().Height() != 30-1-plotRows-1 {
		t.Errorf("screen height = %d, expected %d", m.canvas.Screen().Height(), 30-1-plotRows-1)
	}
	if !strings.Contains(m.View(), "no divergence yet") {
		t.Error("View() with empty trend missing placeholder")
	}
}

func TestModelQuit(t *testing.T) {
	m, _ := newTestModel(t)
	m = step(t, m, runeKey('q'))
	if m.View() != "" {
		t.Error("View() after quit is not empty")
	}
}
