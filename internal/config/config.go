// Package config provides YAML-based configuration loading for the twin
// harness and turns it into validated runtime parameters.
package config

// HarnessConfig contains everything needed to build and drive a harness.
type HarnessConfig struct {
	Engine     EngineConfig     `yaml:"engine"`
	Stepper    StepperConfig    `yaml:"stepper"`
	Attraction AttractionConfig `yaml:"attraction"`
	Harness    CompareConfig    `yaml:"harness"`
	Scenario   ScenarioConfig   `yaml:"scenario"`
	Frames     FramesConfig     `yaml:"frames"`
}

// EngineConfig defines the physics engine parameters shared by every world.
type EngineConfig struct {
	Gravity            [2]float64 `yaml:"gravity"`
	VelocityIterations int        `yaml:"velocity_iterations"`
	PositionIterations int        `yaml:"position_iterations"`
	AutoClearForces    bool       `yaml:"auto_clear_forces"` // let the engine zero forces after each step
}

// StepperConfig defines the micro-stepping loop.
type StepperConfig struct {
	MiniStep      float64 `yaml:"mini_step"`       // seconds per micro-step
	ClearPolicy   string  `yaml:"clear_policy"`    // "micro_step" or "frame"
	MaxMicroSteps int     `yaml:"max_micro_steps"` // per frame, 0 = unbounded
}

// AttractionConfig defines the degenerate-radius handling.
type AttractionConfig struct {
	Policy    string  `yaml:"policy"` // "reject" or "clamp"
	MinRadius float64 `yaml:"min_radius"`
}

// CompareConfig defines the schedules and capture buffers.
type CompareConfig struct {
	Variant       string  `yaml:"variant"`        // "frame-rate" or "inverted"
	OverrideDelta float64 `yaml:"override_delta"` // frame-rate: right side's first delta
	HoldFrames    int     `yaml:"hold_frames"`    // inverted: frames the right side is held
	CatchUp       bool    `yaml:"catch_up"`       // inverted: add a baseline world
	Left          string  `yaml:"left"`           // optional schedule override, e.g. "fixed:0.015"
	Right         string  `yaml:"right"`          // optional schedule override
	BufferSize    int     `yaml:"buffer_size"`
	BucketScale   float64 `yaml:"bucket_scale"`
	BitWidth      int     `yaml:"bit_width"` // 32 or 64
}

// ScenarioConfig selects and parameterizes the world population.
type ScenarioConfig struct {
	Name        string  `yaml:"name"`
	Shape       string  `yaml:"shape"`
	Density     float64 `yaml:"density"`
	Friction    float64 `yaml:"friction"`
	Restitution float64 `yaml:"restitution"`
	Width       float64 `yaml:"width"`
	Height      float64 `yaml:"height"`
	CarSpeed    float64 `yaml:"car_speed"`
	Control     string  `yaml:"control"` // initial control mode: force, impulse, velocity, translate, none
}

// FramesConfig defines the headless frame clock.
type FramesConfig struct {
	Count  int     `yaml:"count"`
	Delta  float64 `yaml:"delta"`  // nominal frame delta in seconds
	Jitter float64 `yaml:"jitter"` // uniform +/- jitter added to each delta
	Seed   int64   `yaml:"seed"`
}
