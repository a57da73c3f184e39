// Package registry provides a global registry for scenario factories.
// Scenarios register themselves in init() functions, allowing the harness
// and CLI to discover and build world populations by ID.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/twinworld/internal/control"
	"github.com/vovakirdan/twinworld/internal/core"
	"github.com/vovakirdan/twinworld/internal/entity"
	"github.com/vovakirdan/twinworld/internal/shape"
	"github.com/vovakirdan/twinworld/internal/stepper"
)

// ErrUnknown is returned when a scenario ID is not registered.
var ErrUnknown = errors.New("registry: unknown scenario")

// Params are the knobs every scenario is built from.
type Params struct {
	Width       float64    // world width in units
	Height      float64    // world height in units
	Shape       shape.Kind // shape for barriers and the reference car
	Density     float64
	Friction    float64
	Restitution float64
	CarSpeed    float64 // reference car velocity along +x
	// Mode is the control mode the avatar starts in.
	Mode control.Mode
}

// DefaultParams returns the lab layout parameters.
func DefaultParams() Params {
	return Params{
		Width:       16,
		Height:      9,
		Shape:       shape.Ellipse,
		Density:     1.0,
		Friction:    0.1,
		Restitution: 1.0,
		CarSpeed:    0.1,
		Mode:        control.ModeForce,
	}
}

// Scene names the entities the comparator and views care about.
type Scene struct {
	// Avatar is the tracked entity whose position is diffed and captured.
	Avatar *entity.Entity
	// Car is the reference object whose x-position quantizes elapsed time.
	Car *entity.Entity
	// Props are every other entity, e.g. attraction anchors.
	Props []*entity.Entity
}

// All returns every entity in the scene, tracked ones first.
func (s *Scene) All() []*entity.Entity {
	out := make([]*entity.Entity, 0, len(s.Props)+2)
	if s.Avatar != nil {
		out = append(out, s.Avatar)
	}
	if s.Car != nil && s.Car != s.Avatar {
		out = append(out, s.Car)
	}
	return append(out, s.Props...)
}

// Scenario populates an empty world.
type Scenario interface {
	// ID returns the unique identifier used on the command line.
	ID() string

	// Title returns a human-readable name.
	Title() string

	// Build spawns the scenario's entities into w.
	Build(w *stepper.World, p Params) (*Scene, error)
}

// Info contains metadata about a registered scenario.
type Info struct {
	ID    string
	Title string
}

// Factory creates a new scenario instance.
type Factory func() Scenario

var (
	factories = make(map[string]Factory)
	titles    = make(map[string]string)
	mu        sync.RWMutex
)

// Register adds a scenario factory to the registry.
// Panics if a scenario with the same ID is already registered.
func Register(id string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[id]; exists {
		panic(fmt.Sprintf("registry: scenario %q already registered", id))
	}
	factories[id] = f
	titles[id] = f().Title()
}

// List returns all registered scenarios sorted by ID.
func List() []Info {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]Info, 0, len(factories))
	for id := range factories {
		result = append(result, Info{ID: id, Title: titles[id]})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result
}

// Create instantiates a scenario by ID.
func Create(id string) (Scenario, error) {
	mu.RLock()
	defer mu.RUnlock()

	f, ok := factories[id]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknown, id)
	}
	return f(), nil
}

// Exists checks if a scenario with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[id]
	return ok
}

// Spawn creates an entity from def, applies the scenario's fixture properties
// and position, and places it in w.
func Spawn(w *stepper.World, def entity.Def, p Params, pos core.Vec2) (*entity.Entity, error) {
	e, err := entity.New(def)
	if err != nil {
		return nil, err
	}
	e.SetDensity(p.Density)
	e.SetFriction(p.Friction)
	e.SetRestitution(p.Restitution)
	e.SetPosition(pos)
	if err := w.Spawn(e); err != nil {
		return nil, err
	}
	return e, nil
}
