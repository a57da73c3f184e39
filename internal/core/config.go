package core

// RuntimeConfig contains the presentation parameters handed to a harness view.
type RuntimeConfig struct {
	ScreenW  int   // Screen width in characters
	ScreenH  int   // Screen height in characters
	TickRate int   // Rendered frames per second (default 60)
	Seed     int64 // Seed for the jittered frame clock
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 60,
		Seed:     1,
	}
}

// BodyKind classifies how a rigid body participates in the simulation.
type BodyKind int

const (
	Static BodyKind = iota
	Kinematic
	Dynamic
)

// String returns a human-readable name for the kind.
func (k BodyKind) String() string {
	switch k {
	case Static:
		return "static"
	case Kinematic:
		return "kinematic"
	case Dynamic:
		return "dynamic"
	default:
		return "unknown"
	}
}
