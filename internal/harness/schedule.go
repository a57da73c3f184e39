package harness

import (
	"fmt"
	"strconv"
	"strings"
)

// Frame is what a schedule sees of one rendered frame.
type Frame struct {
	Index    int     // zero-based frame number since reset
	Delta    float64 // the frame's real delta
	Previous float64 // the previous frame's real delta, 0 on the first frame
}

// Schedule maps a rendered frame to the delta fed to one side's stepper.
type Schedule interface {
	Name() string
	Delta(f Frame) float64
}

// Literal feeds each frame's own delta.
type Literal struct{}

func (Literal) Name() string { return "literal" }
func (Literal) Delta(f Frame) float64 { return f.Delta }

// Lagged feeds First on the first frame and the previous frame's delta afterwards.
type Lagged struct {
	First float64
}

func (l Lagged) Name() string { return "lagged:" + formatFloat(l.First) }

func (l Lagged) Delta(f Frame) float64 {
	if f.Index == 0 {
		return l.First
	}
	return f.Previous
}

// Hold feeds zero for the first Frames frames and the real delta afterwards.
type Hold struct {
	Frames int
}

func (h Hold) Name() string { return "hold:" + strconv.Itoa(h.Frames) }

func (h Hold) Delta(f Frame) float64 {
	if f.Index < h.Frames {
		return 0
	}
	return f.Delta
}

// Fixed feeds the same delta every frame regardless of the real one.
type Fixed struct {
	Step float64
}

func (x Fixed) Name() string { return "fixed:" + formatFloat(x.Step) }
func (x Fixed) Delta(Frame) float64 { return x.Step }

// ParseSchedule resolves "literal", "lagged:<dt>", "hold:<frames>" or "fixed:<dt>".
func ParseSchedule(s string) (Schedule, error) {
	name, arg, hasArg := strings.Cut(strings.TrimSpace(s), ":")
	switch strings.ToLower(name) {
	case "literal":
		if hasArg {
			return nil, fmt.Errorf("harness: schedule %q takes no argument", s)
		}
		return Literal{}, nil
	case "lagged", "fixed":
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil || v < 0 {
			return nil, fmt.Errorf("harness: schedule %q needs a non-negative delta", s)
		}
		if strings.EqualFold(name, "fixed") {
			return Fixed{Step: v}, nil
		}
		return Lagged{First: v}, nil
	case "hold":
		n, err := strconv.Atoi(arg)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("harness: schedule %q needs a non-negative frame count", s)
		}
		return Hold{Frames: n}, nil
	}
	return nil, fmt.Errorf("harness: unknown schedule %q", s)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Variant pairs the schedules of the two compared sides. CatchUp, when set,
// drives an extra uncompared world used as a same-schedule baseline.
type Variant struct {
	Name    string
	Left    Schedule
	Right   Schedule
	CatchUp Schedule
}

// Variant names.
const (
	VariantFrameRate = "frame-rate"
	VariantInverted  = "inverted"
)

// FrameRateVariant feeds the left side literal deltas and the right side
// override on the first frame followed by a one-frame lag.
func FrameRateVariant(override float64) Variant {
	return Variant{
		Name:  VariantFrameRate,
		Left:  Literal{},
		Right: Lagged{First: override},
	}
}

// InvertedVariant holds the right side for hold frames before feeding it
// current deltas. With catchUp, a third world follows the left schedule.
func InvertedVariant(hold int, catchUp bool) Variant {
	v := Variant{
		Name:  VariantInverted,
		Left:  Literal{},
		Right: Hold{Frames: hold},
	}
	if catchUp {
		v.CatchUp = v.Left
	}
	return v
}
