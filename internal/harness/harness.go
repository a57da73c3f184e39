// Package harness runs two steppers side by side under different time-feed
// schedules and compares them.
//
// Both sides receive identical logical input each frame. Only the deltas fed to
// their steppers differ, so any gap between the tracked entities is caused by
// the schedule. Each side also captures the tracked entity's raw bit pattern at
// every micro-step, indexed by the reference car's quantized position, and the
// two captures are diffed bucket by bucket once both are complete.
package harness

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/twinworld/internal/control"
	"github.com/vovakirdan/twinworld/internal/core"
	"github.com/vovakirdan/twinworld/internal/entity"
	"github.com/vovakirdan/twinworld/internal/registry"
	"github.com/vovakirdan/twinworld/internal/stepper"
)

// trendSize is how many log-divergence samples are kept for display.
const trendSize = 240

// Config fully describes a harness.
type Config struct {
	Stepper  stepper.Config
	Scenario string
	Params   registry.Params
	Variant  Variant

	BufferSize  int     // number of capture buckets per side
	BucketScale float64 // buckets per unit of reference-car travel
	BitWidth    int     // 32 or 64
}

// DefaultConfig returns the frame-rate variant over the attraction scenario.
func DefaultConfig() Config {
	return Config{
		Stepper:     stepper.DefaultConfig(),
		Scenario:    "attraction",
		Params:      registry.DefaultParams(),
		Variant:     FrameRateVariant(0.015),
		BufferSize:  1000,
		BucketScale: 1000.0 / 3,
		BitWidth:    32,
	}
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if err := c.Stepper.Validate(); err != nil {
		return err
	}
	if c.Variant.Left == nil || c.Variant.Right == nil {
		return errors.New("harness: variant needs both left and right schedules")
	}
	if c.BufferSize <= 0 {
		return fmt.Errorf("harness: buffer size must be positive, got %d", c.BufferSize)
	}
	if !(c.BucketScale > 0) || !core.IsFinite(c.BucketScale) {
		return fmt.Errorf("harness: bucket scale must be positive, got %v", c.BucketScale)
	}
	if c.BitWidth != 32 && c.BitWidth != 64 {
		return fmt.Errorf("harness: bit width must be 32 or 64, got %d", c.BitWidth)
	}
	return nil
}

// Side is one stepped world and its schedule.
type Side struct {
	Name     string
	Schedule Schedule
	World    *stepper.World
	Scene    *registry.Scene
	// Buffer is nil for the catch-up side, which is never captured.
	Buffer *BitBuffer

	LastDelta float64
	LastStats stepper.FrameStats
}

// Sample is the observable state of one side after a frame.
type Sample struct {
	Avatar     core.Vec2
	DrawAvatar core.Vec2
	Car        core.Vec2
	Remaining  float64
	SimTime    float64
}

func (s *Side) sample() Sample {
	return Sample{
		Avatar:     s.Scene.Avatar.Position(),
		DrawAvatar: s.Scene.Avatar.DrawPosition(),
		Car:        s.Scene.Car.Position(),
		Remaining:  s.World.Remaining(),
		SimTime:    s.World.SimTime(),
	}
}

// Comparison is the per-frame output of the comparator.
type Comparison struct {
	Frame int
	Delta float64
	Left  Sample
	Right Sample

	DiffX    float64
	DiffY    float64
	LogDiffY float64 // log|DiffY|, -Inf when the sides agree exactly
	CarDiff  core.Vec2

	// Baseline is catch-up minus left; it is zero unless the engine itself
	// is non-deterministic under an identical schedule.
	HasCatchUp bool
	Baseline   core.Vec2
}

// Harness owns the compared sides and the capture state.
type Harness struct {
	cfg    Config
	logger *log.Logger
	out    io.Writer

	scenario registry.Scenario
	settings control.Settings

	left    *Side
	right   *Side
	catchUp *Side

	frame     int
	prevDelta float64
	last      Comparison
	trend     []float64
	dump      *Dump
}

// New builds a harness. Dump lines are written to out.
func New(cfg Config, logger *log.Logger, out io.Writer) (*Harness, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	scenario, err := registry.Create(cfg.Scenario)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if out == nil {
		out = io.Discard
	}

	settings := control.DefaultSettings()
	settings.Density = cfg.Params.Density
	settings.Friction = cfg.Params.Friction
	settings.Restitution = cfg.Params.Restitution
	settings.Shape = cfg.Params.Shape
	settings.Mode = cfg.Params.Mode

	h := &Harness{
		cfg:      cfg,
		logger:   logger,
		out:      out,
		scenario: scenario,
		settings: settings,
	}
	if err := h.Reset(); err != nil {
		return nil, err
	}
	return h, nil
}

// Reset tears down and rebuilds every side, clearing remainders, capture
// buffers, the delta cache and the dump.
func (h *Harness) Reset() error {
	params := h.cfg.Params
	params.Shape = h.settings.Shape
	params.Density = h.settings.Density
	params.Friction = h.settings.Friction
	params.Restitution = h.settings.Restitution

	var err error
	if h.left, err = h.newSide("left", h.cfg.Variant.Left, params, h.captureBuffer(h.left)); err != nil {
		return err
	}
	if h.right, err = h.newSide("right", h.cfg.Variant.Right, params, h.captureBuffer(h.right)); err != nil {
		return err
	}
	h.catchUp = nil
	if h.cfg.Variant.CatchUp != nil {
		if h.catchUp, err = h.newSide("catch-up", h.cfg.Variant.CatchUp, params, nil); err != nil {
			return err
		}
	}

	h.frame = 0
	h.prevDelta = 0
	h.trend = h.trend[:0]
	h.dump = nil
	h.last = h.compare(0)

	for _, s := range []*Side{h.left, h.right} {
		bits := Bits(s.Scene.Avatar.Position().Y, h.cfg.BitWidth)
		fmt.Fprintf(h.out, "initial-y-pos:%d\n", bits)
		h.logger.Debug("side ready", "side", s.Name, "schedule", s.Schedule.Name(), "y-bits", bits)
	}
	h.logger.Info("harness reset",
		"scenario", h.cfg.Scenario,
		"variant", h.cfg.Variant.Name,
		"shape", params.Shape,
	)
	return nil
}

// captureBuffer returns prev's buffer zeroed, or a new one on first use.
func (h *Harness) captureBuffer(prev *Side) *BitBuffer {
	if prev == nil || prev.Buffer == nil {
		return NewBitBuffer(h.cfg.BufferSize, h.cfg.BitWidth)
	}
	prev.Buffer.Reset()
	return prev.Buffer
}

// newSide builds one side. A nil buf leaves the side uncaptured.
func (h *Harness) newSide(name string, sched Schedule, params registry.Params, buf *BitBuffer) (*Side, error) {
	side := &Side{Name: name, Schedule: sched, Buffer: buf}
	var opts []stepper.Option
	if buf != nil {
		opts = append(opts, stepper.WithObserver(func(*stepper.World) {
			bucket := Bucket(side.Scene.Car.Position().X, h.cfg.BucketScale)
			side.Buffer.Record(bucket, side.Scene.Avatar.Position().Y)
		}))
	}
	w, err := stepper.New(h.cfg.Stepper, h.logger.WithPrefix(name), opts...)
	if err != nil {
		return nil, err
	}
	side.World = w
	if side.Scene, err = h.scenario.Build(w, params); err != nil {
		return nil, fmt.Errorf("harness: %s side: %w", name, err)
	}
	return side, nil
}

// Tick advances every side by one rendered frame of real length dt.
func (h *Harness) Tick(dt float64, cmd control.Command) (Comparison, error) {
	if cmd.Reset {
		return h.last, h.Reset()
	}

	ch := h.settings.Apply(cmd)
	if ch.Shape {
		h.logger.Info("shape changed", "shape", h.settings.Shape)
		return h.last, h.Reset()
	}
	if ch.Physical() {
		h.pushSettings()
	}
	if ch.Mode {
		for _, s := range h.sides() {
			if e := s.World.Controlled(); e != nil {
				e.Stop()
			}
		}
	}

	// The settings' control mode decides how player input reaches the avatar.
	cmd.Mode = h.settings.Mode

	// Every side is checked before any side moves, so a rejected frame
	// cannot leave the compared worlds out of step.
	f := Frame{Index: h.frame, Delta: dt, Previous: h.prevDelta}
	sides := h.sides()
	deltas := make([]float64, len(sides))
	for i, s := range sides {
		deltas[i] = s.Schedule.Delta(f)
		if err := s.World.Check(deltas[i]); err != nil {
			return h.last, fmt.Errorf("harness: %s side frame %d: %w", s.Name, h.frame, err)
		}
	}
	for i, s := range sides {
		stats, err := s.World.Tick(deltas[i], cmd)
		if err != nil {
			return h.last, fmt.Errorf("harness: %s side frame %d: %w", s.Name, h.frame, err)
		}
		s.LastDelta = deltas[i]
		s.LastStats = stats
	}

	h.last = h.compare(dt)
	if core.IsFinite(h.last.LogDiffY) {
		if len(h.trend) == trendSize {
			copy(h.trend, h.trend[1:])
			h.trend = h.trend[:trendSize-1]
		}
		h.trend = append(h.trend, h.last.LogDiffY)
	}

	h.prevDelta = dt
	h.frame++

	if h.dump == nil && h.left.Buffer.Full() && h.right.Buffer.Full() {
		if err := h.emitDump(); err != nil {
			return h.last, err
		}
	}
	return h.last, nil
}

func (h *Harness) pushSettings() {
	for _, s := range h.sides() {
		targets := append([]*entity.Entity{s.Scene.Avatar}, s.Scene.Props...)
		for _, e := range targets {
			e.SetDensity(h.settings.Density)
			e.SetFriction(h.settings.Friction)
			e.SetRestitution(h.settings.Restitution)
		}
	}
	h.logger.Debug("settings changed",
		"density", h.settings.Density,
		"friction", h.settings.Friction,
		"restitution", h.settings.Restitution,
	)
}

func (h *Harness) compare(dt float64) Comparison {
	l, r := h.left.sample(), h.right.sample()
	c := Comparison{
		Frame:   h.frame,
		Delta:   dt,
		Left:    l,
		Right:   r,
		DiffX:   l.Avatar.X - r.Avatar.X,
		DiffY:   l.Avatar.Y - r.Avatar.Y,
		CarDiff: l.Car.Sub(r.Car),
	}
	c.LogDiffY = math.Log(math.Abs(c.DiffY))
	if h.catchUp != nil {
		c.HasCatchUp = true
		c.Baseline = h.catchUp.sample().Avatar.Sub(l.Avatar)
	}
	return c
}

func (h *Harness) emitDump() error {
	h.dump = NewDump(h.frame, h.left.Buffer, h.right.Buffer)
	for _, row := range h.dump.Rows {
		if _, err := fmt.Fprintln(h.out, row.String()); err != nil {
			return fmt.Errorf("harness: write dump: %w", err)
		}
	}
	if h.dump.Diverged() {
		h.logger.Warn("sides diverged", "index", h.dump.FirstDivergence, "frame", h.frame)
	} else {
		h.logger.Info("sides identical", "buckets", len(h.dump.Rows), "frame", h.frame)
	}
	return nil
}

func (h *Harness) sides() []*Side {
	if h.catchUp != nil {
		return []*Side{h.left, h.right, h.catchUp}
	}
	return []*Side{h.left, h.right}
}

// Config returns the harness configuration.
func (h *Harness) Config() Config { return h.cfg }

// Settings returns the live-tunable settings.
func (h *Harness) Settings() control.Settings { return h.settings }

// Left returns the left side.
func (h *Harness) Left() *Side { return h.left }

// Right returns the right side.
func (h *Harness) Right() *Side { return h.right }

// CatchUp returns the catch-up side, or nil.
func (h *Harness) CatchUp() *Side { return h.catchUp }

// Frame returns the number of frames since the last reset.
func (h *Harness) Frame() int { return h.frame }

// Last returns the most recent comparison.
func (h *Harness) Last() Comparison { return h.last }

// Trend returns the recent finite log-divergence samples, oldest first.
func (h *Harness) Trend() []float64 {
	out := make([]float64, len(h.trend))
	copy(out, h.trend)
	return out
}

// Dump returns the emitted dump, or nil before both buffers are full.
func (h *Harness) Dump() *Dump { return h.dump }
