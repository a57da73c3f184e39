package scenarios

import (
	"github.com/vovakirdan/twinworld/internal/registry"
	"github.com/vovakirdan/twinworld/internal/stepper"
)

func init() {
	registry.Register("clock", func() registry.Scenario { return &Clock{} })
}

// Clock contains only the reference car, which is also the tracked entity.
// After n micro-steps its x-position must equal speed * miniStep * n. Nothing
// is controlled, so player input cannot disturb the car.
type Clock struct{}

func (c *Clock) ID() string    { return "clock" }
func (c *Clock) Title() string { return "Reference clock" }

func (c *Clock) Build(w *stepper.World, p registry.Params) (*registry.Scene, error) {
	car, err := spawnCar(w, p)
	if err != nil {
		return nil, err
	}
	return &registry.Scene{Avatar: car, Car: car}, nil
}
