// Package scenarios registers the world populations the harness can run.
package scenarios

import (
	"github.com/vovakirdan/twinworld/internal/core"
	"github.com/vovakirdan/twinworld/internal/entity"
	"github.com/vovakirdan/twinworld/internal/registry"
	"github.com/vovakirdan/twinworld/internal/shape"
	"github.com/vovakirdan/twinworld/internal/stepper"
)

func init() {
	registry.Register("attraction", func() registry.Scenario { return &Attraction{} })
}

// Layout constants for the attraction scenario.
const (
	AvatarWidth   = 1.0
	AvatarHeight  = 1.0
	BarrierWidth  = 5.655555
	BarrierHeight = 0.1333333

	// secondBarrierX places the second barrier off the world's symmetry axis
	// so the avatar never settles into a balanced orbit.
	secondBarrierX = 1.982478
)

// Attraction is a zero-gravity avatar pulled towards two static barriers while
// a kinematic reference car crawls along the bottom edge.
type Attraction struct{}

func (a *Attraction) ID() string    { return "attraction" }
func (a *Attraction) Title() string { return "Twin barrier attraction" }

func (a *Attraction) Build(w *stepper.World, p registry.Params) (*registry.Scene, error) {
	avatar, err := registry.Spawn(w, entity.Def{
		Name:  "avatar",
		Kind:  core.Dynamic,
		Shape: shape.Circle,
		Size:  core.V(AvatarWidth, AvatarHeight),
		Color: core.ColorRed,
	}, p, core.V(p.Width/2, p.Height/4))
	if err != nil {
		return nil, err
	}

	barrier, err := registry.Spawn(w, entity.Def{
		Name:  "barrier",
		Kind:  core.Static,
		Shape: p.Shape,
		Size:  core.V(BarrierWidth, BarrierHeight),
		Color: core.ColorYellow,
	}, p, core.V(5*p.Width/7, 3*p.Height/4))
	if err != nil {
		return nil, err
	}

	second, err := registry.Spawn(w, entity.Def{
		Name:  "second-barrier",
		Kind:  core.Static,
		Shape: p.Shape,
		Size:  core.V(BarrierWidth, BarrierHeight),
		Color: core.ColorSalmon,
	}, p, core.V(secondBarrierX*p.Width/7, 3*p.Height/4))
	if err != nil {
		return nil, err
	}

	car, err := spawnCar(w, p)
	if err != nil {
		return nil, err
	}

	w.Attract(avatar, barrier)
	w.Attract(avatar, second)
	w.Control(avatar)

	return &registry.Scene{
		Avatar: avatar,
		Car:    car,
		Props:  []*entity.Entity{barrier, second},
	}, nil
}

func spawnCar(w *stepper.World, p registry.Params) (*entity.Entity, error) {
	car, err := entity.New(entity.Def{
		Name:  "car",
		Kind:  core.Kinematic,
		Shape: p.Shape,
		Size:  core.V(AvatarWidth, AvatarHeight),
		Color: core.ColorGreen,
	})
	if err != nil {
		return nil, err
	}
	car.SetDensity(p.Density)
	car.SetFriction(p.Friction)
	car.SetRestitution(p.Restitution)
	car.SetLinearVelocity(core.V(p.CarSpeed, 0))
	if err := w.Spawn(car); err != nil {
		return nil, err
	}
	return car, nil
}
