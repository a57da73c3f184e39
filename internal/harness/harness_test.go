package harness

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/vovakirdan/twinworld/internal/control"
	"github.com/vovakirdan/twinworld/internal/shape"
	"github.com/vovakirdan/twinworld/internal/stepper"

	_ "github.com/vovakirdan/twinworld/internal/scenarios"
)

const frameDelta = 1.0 / 60

func newHarness(t *testing.T, mutate func(*Config)) (*Harness, *bytes.Buffer) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.BufferSize = 20
	if mutate != nil {
		mutate(&cfg)
	}
	var out bytes.Buffer
	h, err := New(cfg, nil, &out)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return h, &out
}

// runUntilDump ticks until both capture buffers are full.
func runUntilDump(t *testing.T, h *Harness, maxFrames int) []Comparison {
	t.Helper()
	var seen []Comparison
	for i := 0; i < maxFrames && h.Dump() == nil; i++ {
		c, err := h.Tick(frameDelta, control.Command{})
		if err != nil {
			t.Fatalf("Tick() failed at frame %d: %v", i, err)
		}
		seen = append(seen, c)
	}
	if h.Dump() == nil {
		t.Fatalf("no dump after %d frames", maxFrames)
	}
	return seen
}

func TestIdenticalSchedulesNeverDiverge(t *testing.T) {
	h, out := newHarness(t, func(c *Config) {
		c.Variant = Variant{Name: "same", Left: Literal{}, Right: Literal{}}
	})

	for _, c := range runUntilDump(t, h, 400) {
		if c.DiffX != 0 || c.DiffY != 0 {
			t.Fatalf("frame %d: diff = (%v, %v), expected zero", c.Frame, c.DiffX, c.DiffY)
		}
		if !math.IsInf(c.LogDiffY, -1) {
			t.Fatalf("frame %d: LogDiffY = %v, expected -Inf", c.Frame, c.LogDiffY)
		}
	}

	d := h.Dump()
	if d.Diverged() {
		t.Errorf("FirstDivergence = %d, expected none", d.FirstDivergence)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if got, want := len(lines), 2+20; got != want {
		t.Fatalf("output has %d lines, expected %d", got, want)
	}
	if !strings.HasPrefix(lines[0], "initial-y-pos:") {
		t.Errorf("first line = %q, expected initial-y-pos", lines[0])
	}
	if !strings.HasPrefix(lines[2], "time:0,left-pos:") || !strings.HasSuffix(lines[2], ",diff-pos:0") {
		t.Errorf("dump line = %q", lines[2])
	}
	if len(h.Trend()) != 0 {
		t.Errorf("Trend() has %d samples, expected none when sides agree", len(h.Trend()))
	}
}

// With clearing at every micro-step the per-frame positions differ while the
// schedules disagree on elapsed time, but the captures taken at the same
// micro-step index are bit identical.
func TestFrameRateVariantCapturesMatchUnderMicroStepClearing(t *testing.T) {
	h, _ := newHarness(t, nil)

	sawGap := false
	for _, c := range runUntilDump(t, h, 400) {
		if c.DiffY != 0 {
			sawGap = true
		}
	}
	if !sawGap {
		t.Error("expected a per-frame gap from the lagged schedule")
	}
	if d := h.Dump(); d.Diverged() {
		t.Errorf("FirstDivergence = %d, expected identical captures", d.FirstDivergence)
	}
	if len(h.Trend()) == 0 {
		t.Error("Trend() is empty, expected finite log-divergence samples")
	}
}

func TestFrameRateVariantDivergesUnderFrameClearing(t *testing.T) {
	h, _ := newHarness(t, func(c *Config) {
		c.Stepper.ClearPolicy = stepper.ClearEachFrame
	})

	runUntilDump(t, h, 400)
	if d := h.Dump(); !d.Diverged() {
		t.Error("expected captures to diverge when forces leak across micro-steps")
	}
}

func TestInvertedVariantWithCatchUp(t *testing.T) {
	h, _ := newHarness(t, func(c *Config) {
		c.Variant = InvertedVariant(10, true)
	})
	if h.CatchUp() == nil {
		t.Fatal("CatchUp() = nil, expected a catch-up side")
	}

	start := h.Right().Scene.Avatar.Position()
	for i := 0; i < 30; i++ {
		c, err := h.Tick(frameDelta, control.Command{})
		if err != nil {
			t.Fatalf("Tick() failed: %v", err)
		}
		if !c.HasCatchUp || !c.Baseline.IsZero() {
			t.Fatalf("frame %d: baseline = %v, expected exact zero", i, c.Baseline)
		}
		if i < 10 {
			if got := h.Right().Scene.Avatar.Position(); got != start {
				t.Fatalf("frame %d: held right side moved to %v", i, got)
			}
			if h.Right().LastDelta != 0 {
				t.Fatalf("frame %d: right delta = %v, expected 0 while held", i, h.Right().LastDelta)
			}
		}
	}
	if h.Last().DiffY == 0 {
		t.Error("expected the held side to trail the left side")
	}
}

func TestResetClearsEverything(t *testing.T) {
	h, _ := newHarness(t, nil)
	runUntilDump(t, h, 400)
	leftBuf, rightBuf := h.Left().Buffer, h.Right().Buffer

	if err := h.Reset(); err != nil {
		t.Fatalf("Reset() failed: %v", err)
	}
	if h.Frame() != 0 || h.Dump() != nil || len(h.Trend()) != 0 {
		t.Errorf("Reset left frame=%d dump=%v trend=%d", h.Frame(), h.Dump() != nil, len(h.Trend()))
	}
	for _, s := range []*Side{h.Left(), h.Right()} {
		if s.World.Remaining() != 0 || s.Buffer.Count() != 0 || s.World.MicroSteps() != 0 {
			t.Errorf("%s side not reset", s.Name)
		}
		if s.Buffer.Full() {
			t.Errorf("%s buffer still full after reset", s.Name)
		}
	}
	if h.Left().Buffer != leftBuf || h.Right().Buffer != rightBuf {
		t.Error("Reset() reallocated the capture buffers, expected them reused")
	}

	// A reset command behaves the same way.
	if _, err := h.Tick(frameDelta, control.Command{}); err != nil {
		t.Fatalf("Tick() failed: %v", err)
	}
	if _, err := h.Tick(frameDelta, control.Command{Reset: true}); err != nil {
		t.Fatalf("Tick(reset) failed: %v", err)
	}
	if h.Frame() != 0 {
		t.Errorf("Frame() = %d after reset command, expected 0", h.Frame())
	}
}

func TestSettingsReachBothSides(t *testing.T) {
	h, _ := newHarness(t, nil)

	if _, err := h.Tick(frameDelta, control.Command{DensityFactor: 10, FrictionFactor: 0.1}); err != nil {
		t.Fatalf("Tick() failed: %v", err)
	}
	if got := h.Settings().Density; math.Abs(got-10) > 1e-12 {
		t.Errorf("Settings().Density = %v, expected 10", got)
	}
	for _, s := range []*Side{h.Left(), h.Right()} {
		if got := s.Scene.Avatar.Density(); math.Abs(got-10) > 1e-12 {
			t.Errorf("%s avatar density = %v, expected 10", s.Name, got)
		}
		for _, p := range s.Scene.Props {
			if got := p.Friction(); math.Abs(got-0.01) > 1e-12 {
				t.Errorf("%s %s friction = %v, expected 0.01", s.Name, p.Name(), got)
			}
		}
	}

	if _, err := h.Tick(frameDelta, control.Command{ShapeDelta: 1}); err != nil {
		t.Fatalf("Tick() failed: %v", err)
	}
	if h.Frame() != 0 {
		t.Errorf("Frame() = %d after shape change, expected reset", h.Frame())
	}
	if got := h.Left().Scene.Props[0].ShapeKind(); got != shape.Box {
		t.Errorf("barrier shape = %v, expected Box after cycling past Ellipse", got)
	}
	if got := h.Left().Scene.Avatar.Density(); math.Abs(got-10) > 1e-12 {
		t.Errorf("density after reset = %v, expected settings to survive", got)
	}
}

func TestControlCycleStopsAvatars(t *testing.T) {
	h, _ := newHarness(t, func(c *Config) {
		c.Variant = Variant{Name: "same", Left: Literal{}, Right: Literal{}}
	})
	for i := 0; i < 20; i++ {
		if _, err := h.Tick(frameDelta, control.Command{}); err != nil {
			t.Fatalf("Tick() failed: %v", err)
		}
	}
	before := h.Settings().Mode
	if _, err := h.Tick(0, control.Command{ControlDelta: 1}); err != nil {
		t.Fatalf("Tick() failed: %v", err)
	}
	if h.Settings().Mode == before {
		t.Error("mode did not change")
	}
	for _, s := range []*Side{h.Left(), h.Right()} {
		if v := s.Scene.Avatar.LinearVelocity(); !v.IsZero() {
			t.Errorf("%s avatar velocity = %v, expected stopped", s.Name, v)
		}
	}
}

func TestTickInvalidDelta(t *testing.T) {
	h, _ := newHarness(t, nil)
	if _, err := h.Tick(math.NaN(), control.Command{}); !errors.Is(err, stepper.ErrInvalidDelta) {
		t.Errorf("Tick(NaN) error = %v, expected ErrInvalidDelta", err)
	}
}

func TestRejectedFrameKeepsSidesInStep(t *testing.T) {
	h, _ := newHarness(t, func(c *Config) {
		c.Variant = Variant{Name: "lopsided", Left: Literal{}, Right: Fixed{Step: 100}}
	})

	_, err := h.Tick(frameDelta, control.Command{})
	if !errors.Is(err, stepper.ErrStepBudget) {
		t.Fatalf("Tick() error = %v, expected ErrStepBudget", err)
	}
	for _, s := range []*Side{h.Left(), h.Right()} {
		if s.World.Frames() != 0 || s.World.MicroSteps() != 0 {
			t.Errorf("%s side advanced on a rejected frame: frames=%d steps=%d",
				s.Name, s.World.Frames(), s.World.MicroSteps())
		}
	}
	if h.Frame() != 0 {
		t.Errorf("Frame() = %d, expected 0", h.Frame())
	}
}

func TestInitialModeFromParams(t *testing.T) {
	h, _ := newHarness(t, func(c *Config) { c.Params.Mode = control.ModeVelocity })
	if got := h.Settings().Mode; got != control.ModeVelocity {
		t.Errorf("Settings().Mode = %v, expected Velocity", got)
	}
}

func TestSampleSimTime(t *testing.T) {
	h, _ := newHarness(t, func(c *Config) {
		c.Variant = Variant{Name: "same", Left: Literal{}, Right: Literal{}}
	})
	var c Comparison
	var err error
	for i := 0; i < 10; i++ {
		if c, err = h.Tick(frameDelta, control.Command{}); err != nil {
			t.Fatalf("Tick() failed: %v", err)
		}
	}
	want := float64(h.Left().World.MicroSteps()) * h.Config().Stepper.MiniStep
	if math.Abs(c.Left.SimTime-want) > 1e-12 {
		t.Errorf("Left.SimTime = %v, expected %v", c.Left.SimTime, want)
	}
	if c.Left.SimTime != c.Right.SimTime {
		t.Errorf("SimTime differs under identical schedules: %v vs %v", c.Left.SimTime, c.Right.SimTime)
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown scenario", func(c *Config) { c.Scenario = "nope" }},
		{"zero buffer", func(c *Config) { c.BufferSize = 0 }},
		{"bad width", func(c *Config) { c.BitWidth = 16 }},
		{"missing schedule", func(c *Config) { c.Variant.Right = nil }},
		{"bad scale", func(c *Config) { c.BucketScale = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if _, err := New(cfg, nil, nil); err == nil {
				t.Error("New() = nil error, expected failure")
			}
		})
	}
}
