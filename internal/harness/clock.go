package harness

import "math/rand/v2"

// Clock produces the real frame deltas of a headless run: a nominal delta
// plus uniform jitter in [-Jitter, +Jitter], reproducible from a seed.
type Clock struct {
	Delta  float64
	Jitter float64

	rng *rand.Rand
}

// NewClock creates a seeded clock.
func NewClock(delta, jitter float64, seed int64) *Clock {
	return &Clock{
		Delta:  delta,
		Jitter: jitter,
		rng:    rand.New(rand.NewPCG(uint64(seed), 0x74776e)),
	}
}

// Next returns the next frame delta. It never goes below zero.
func (c *Clock) Next() float64 {
	if c.Jitter == 0 {
		return c.Delta
	}
	d := c.Delta + (c.rng.Float64()*2-1)*c.Jitter
	if d < 0 {
		return 0
	}
	return d
}
