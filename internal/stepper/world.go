// Package stepper advances a pair of physics worlds frame by frame.
//
// A World owns an authoritative engine world and a shadow ("draw") engine
// world. Each frame the authoritative world is advanced in fixed micro-steps,
// the leftover fraction is carried to the next frame, and the shadow world is
// brought level with the authoritative one and stepped by that leftover so it
// can be drawn smoothly.
package stepper

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/ByteArena/box2d"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/twinworld/internal/control"
	"github.com/vovakirdan/twinworld/internal/entity"
	"github.com/vovakirdan/twinworld/internal/force"
)

var (
	// ErrInvalidDelta is returned for a negative or non-finite frame delta.
	ErrInvalidDelta = errors.New("stepper: invalid frame delta")
	// ErrStepBudget is returned when a frame needs more micro-steps than allowed.
	ErrStepBudget = errors.New("stepper: micro-step budget exceeded")
	// ErrDuplicateEntity is returned when an entity name is already in use.
	ErrDuplicateEntity = errors.New("stepper: duplicate entity")
)

// State is the stepper's position in the per-frame protocol.
type State int

const (
	// Idle is the state between ticks.
	Idle State = iota
	// Accumulating covers the one-shot player command at the start of a frame.
	Accumulating
	// MicroStepping is held while the authoritative world advances.
	MicroStepping
	// Settled follows the last micro-step, before the shadow world moves.
	Settled
	// DrawStepped follows the shadow world's remainder step.
	DrawStepped
)

var stateNames = [...]string{"idle", "accumulating", "micro-stepping", "settled", "draw-stepped"}

// String returns the lower-case state name.
func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// Observer is called on the authoritative world after every micro-step.
type Observer func(w *World)

// Option configures a World.
type Option func(*World)

// WithObserver installs a micro-step observer.
func WithObserver(o Observer) Option {
	return func(w *World) { w.observer = o }
}

// WithShadowSync toggles the authoritative-to-shadow copy. Disabling it is only
// useful to show that the shadow world never influences the authoritative one.
func WithShadowSync(enabled bool) Option {
	return func(w *World) { w.syncShadow = enabled }
}

// FrameStats summarizes one Tick.
type FrameStats struct {
	Delta      float64
	MicroSteps int
	Remaining  float64
}

// World is one harness side: two engine worlds, their entities and the
// carried remainder.
type World struct {
	cfg    Config
	logger *log.Logger

	world  *box2d.B2World
	shadow *box2d.B2World

	entities   []*entity.Entity
	byName     map[string]*entity.Entity
	links      []force.Link
	controlled *entity.Entity

	remaining  float64
	state      State
	observer   Observer
	syncShadow bool

	frames     int
	microSteps int
	simTime    float64
}

// New creates an empty world pair.
func New(cfg Config, logger *log.Logger, opts ...Option) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	w := &World{
		cfg:        cfg,
		logger:     logger,
		syncShadow: true,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.Reset()
	return w, nil
}

// Reset tears down both engine worlds and every entity and clears the remainder.
func (w *World) Reset() {
	w.world = w.newEngineWorld()
	w.shadow = w.newEngineWorld()
	w.entities = nil
	w.byName = make(map[string]*entity.Entity)
	w.links = nil
	w.controlled = nil
	w.remaining = 0
	w.state = Idle
	w.frames = 0
	w.microSteps = 0
	w.simTime = 0
}

func (w *World) newEngineWorld() *box2d.B2World {
	bw := box2d.MakeB2World(box2d.MakeB2Vec2(w.cfg.Gravity.X, w.cfg.Gravity.Y))
	bw.SetAutoClearForces(w.cfg.AutoClearForces)
	return &bw
}

// Spawn initializes e in both engine worlds and takes ownership of it.
func (w *World) Spawn(e *entity.Entity) error {
	if _, ok := w.byName[e.Name()]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateEntity, e.Name())
	}
	if err := e.Initialize(w.world, w.shadow); err != nil {
		return err
	}
	w.entities = append(w.entities, e)
	w.byName[e.Name()] = e
	return nil
}

// Attract registers a continuous attraction from mobile towards anchor.
func (w *World) Attract(mobile, anchor *entity.Entity) {
	w.links = append(w.links, force.Link{Mobile: mobile, Anchor: anchor})
}

// Control selects the entity that receives player commands.
func (w *World) Control(e *entity.Entity) {
	w.controlled = e
}

// snapTolerance is the relative distance to a micro-step boundary below which
// accumulated time is treated as sitting exactly on it. Subtracting a step
// that has no exact binary form leaves residues a few ulps either side of the
// boundary, and without snapping 0.009+0.009 would run one step fewer than 0.018.
const snapTolerance = 1e-9

// Check reports the error Tick(dt) would return before touching any body:
// an invalid delta, an exceeded step budget, or a degenerate attraction under
// the Reject policy. It changes nothing.
func (w *World) Check(dt float64) error {
	_, _, err := w.plan(dt)
	return err
}

// plan returns the number of micro-steps for a frame of dt and the remainder
// left after them.
func (w *World) plan(dt float64) (int, float64, error) {
	if dt < 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return 0, 0, fmt.Errorf("%w: %v", ErrInvalidDelta, dt)
	}
	mini := w.cfg.MiniStep
	total := w.remaining + dt
	budgetErr := func() error {
		return fmt.Errorf("%w: frame of %v needs more than %d micro-steps",
			ErrStepBudget, dt, w.cfg.MaxMicroSteps)
	}
	if w.cfg.MaxMicroSteps > 0 && total/mini > float64(w.cfg.MaxMicroSteps)+1 {
		return 0, 0, budgetErr()
	}

	steps := 0
	for total >= mini*(1-snapTolerance) {
		if w.cfg.MaxMicroSteps > 0 && steps == w.cfg.MaxMicroSteps {
			return 0, 0, budgetErr()
		}
		total -= mini
		steps++
	}
	if total < mini*snapTolerance {
		total = 0
	}

	for _, l := range w.links {
		if err := w.cfg.Attraction.Check(l); err != nil {
			return 0, 0, fmt.Errorf("stepper: %s -> %s: %w", l.Mobile.Name(), l.Anchor.Name(), err)
		}
	}
	return steps, total, nil
}

// Tick advances the world by one rendered frame of length dt. A frame that
// Check rejects leaves the world untouched.
func (w *World) Tick(dt float64, cmd control.Command) (FrameStats, error) {
	steps, remaining, err := w.plan(dt)
	if err != nil {
		return FrameStats{}, err
	}

	w.state = Accumulating
	if w.cfg.ClearPolicy == ClearEachFrame {
		w.world.ClearForces()
	}
	var body *box2d.B2Body
	if w.controlled != nil {
		body = w.controlled.Body()
		control.ApplyOnce(body, cmd)
	}

	for i := 0; i < steps; i++ {
		w.state = MicroStepping
		if w.cfg.ClearPolicy == ClearEachMicroStep {
			w.world.ClearForces()
		}
		if err := w.applyAttraction(false); err != nil {
			// The avatar collapsed onto an anchor mid-frame. Keep the
			// micro-steps already taken and drop the rest of the frame.
			w.remaining = 0
			w.state = Idle
			return FrameStats{}, err
		}
		if cmd.Continuous() {
			control.ApplyContinuous(body, cmd)
		}

		w.world.Step(w.cfg.MiniStep, w.cfg.VelocityIterations, w.cfg.PositionIterations)
		w.microSteps++
		w.simTime += w.cfg.MiniStep
		if w.observer != nil {
			w.observer(w)
		}
	}
	w.remaining = remaining
	w.state = Settled

	if w.syncShadow {
		for _, e := range w.entities {
			e.SyncBodies()
		}
	}
	w.shadow.ClearForces()
	if err := w.applyAttraction(true); err != nil {
		w.state = Idle
		return FrameStats{}, err
	}
	w.shadow.Step(w.remaining, w.cfg.VelocityIterations, w.cfg.PositionIterations)
	w.state = DrawStepped

	w.frames++
	stats := FrameStats{Delta: dt, MicroSteps: steps, Remaining: w.remaining}
	w.logger.Debug("frame", "frame", w.frames, "dt", dt, "steps", steps, "remaining", w.remaining)
	w.state = Idle
	return stats, nil
}

func (w *World) applyAttraction(shadow bool) error {
	for _, l := range w.links {
		var err error
		if shadow {
			err = w.cfg.Attraction.ApplyShadow(l)
		} else {
			err = w.cfg.Attraction.ApplyPrimary(l)
		}
		if err != nil {
			return fmt.Errorf("stepper: %s -> %s: %w", l.Mobile.Name(), l.Anchor.Name(), err)
		}
	}
	return nil
}

// Config returns the world's parameters.
func (w *World) Config() Config { return w.cfg }

// Remaining returns the leftover time carried into the next frame.
func (w *World) Remaining() float64 { return w.remaining }

// State returns the current protocol state. Outside Tick it is always Idle.
func (w *World) State() State { return w.state }

// Frames returns the number of completed ticks since the last reset.
func (w *World) Frames() int { return w.frames }

// MicroSteps returns the number of authoritative micro-steps since the last reset.
func (w *World) MicroSteps() int { return w.microSteps }

// SimTime returns the authoritative simulated time since the last reset.
func (w *World) SimTime() float64 { return w.simTime }

// Entities returns the owned entities in spawn order.
func (w *World) Entities() []*entity.Entity { return w.entities }

// Entity looks up an entity by name.
func (w *World) Entity(name string) (*entity.Entity, bool) {
	e, ok := w.byName[name]
	return e, ok
}

// Controlled returns the entity receiving player commands, if any.
func (w *World) Controlled() *entity.Entity { return w.controlled }
