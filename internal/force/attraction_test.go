package force

import (
	"errors"
	"math"
	"testing"

	"github.com/ByteArena/box2d"

	"github.com/vovakirdan/twinworld/internal/core"
	"github.com/vovakirdan/twinworld/internal/entity"
	"github.com/vovakirdan/twinworld/internal/shape"
)

func TestForceInverseSquare(t *testing.T) {
	a := DefaultAttraction()
	tests := []struct {
		name   string
		from   core.Vec2
		anchor core.Vec2
		want   core.Vec2
	}{
		{"unit distance", core.V(0, 0), core.V(1, 0), core.V(1, 0)},
		{"distance two", core.V(0, 0), core.V(0, 2), core.V(0, 0.25)},
		{"pulls backwards", core.V(3, 0), core.V(1, 0), core.V(-0.25, 0)},
		{"diagonal 3-4-5", core.V(0, 0), core.V(3, 4), core.V(0.6/25, 0.8/25)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := a.Force(tt.from, tt.anchor)
			if err != nil {
				t.Fatalf("Force() failed: %v", err)
			}
			if math.Abs(got.X-tt.want.X) > 1e-12 || math.Abs(got.Y-tt.want.Y) > 1e-12 {
				t.Errorf("Force() = %v, expected %v", got, tt.want)
			}
		})
	}
}

func TestForceDegenerateRadius(t *testing.T) {
	p := core.V(1, 1)

	reject := Attraction{Policy: Reject, MinRadius: 0.01}
	if _, err := reject.Force(p, p); !errors.Is(err, ErrDegenerateAttraction) {
		t.Errorf("Reject coincident error = %v, expected ErrDegenerateAttraction", err)
	}
	if _, err := reject.Force(p, p.Add(core.V(0.001, 0))); !errors.Is(err, ErrDegenerateAttraction) {
		t.Errorf("Reject below minimum error = %v, expected ErrDegenerateAttraction", err)
	}

	clamp := Attraction{Policy: Clamp, MinRadius: 0.01}
	got, err := clamp.Force(p, p.Add(core.V(0.001, 0)))
	if err != nil {
		t.Fatalf("Clamp Force() failed: %v", err)
	}
	if math.Abs(got.X-1e4) > 1e-6 || got.Y != 0 {
		t.Errorf("Clamp Force() = %v, expected (1e4, 0)", got)
	}

	got, err = clamp.Force(p, p)
	if err != nil || !got.IsZero() {
		t.Errorf("Clamp coincident = %v, %v; expected zero force", got, err)
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{"reject", Reject, false},
		{"CLAMP", Clamp, false},
		{"", Reject, false},
		{"ignore", Reject, true},
	}

	for _, tt := range tests {
		got, err := ParsePolicy(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParsePolicy(%q) = %v, %v; expected %v, err=%v", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestApplyPrimaryAccumulates(t *testing.T) {
	world := box2d.MakeB2World(box2d.MakeB2Vec2(0, 0))
	shadowWorld := box2d.MakeB2World(box2d.MakeB2Vec2(0, 0))

	mobile, _ := entity.New(entity.Def{Name: "avatar", Kind: core.Dynamic, Shape: shape.Circle, Size: core.V(1, 1)})
	anchor, _ := entity.New(entity.Def{Name: "barrier", Kind: core.Static, Shape: shape.Box, Size: core.V(1, 1)})
	anchor.SetPosition(core.V(2, 0))
	for _, e := range []*entity.Entity{mobile, anchor} {
		if err := e.Initialize(&world, &shadowWorld); err != nil {
			t.Fatalf("Initialize() failed: %v", err)
		}
	}

	a := DefaultAttraction()
	l := Link{Mobile: mobile, Anchor: anchor}
	if err := a.ApplyPrimary(l); err != nil {
		t.Fatalf("ApplyPrimary() failed: %v", err)
	}
	if err := a.ApplyPrimary(l); err != nil {
		t.Fatalf("ApplyPrimary() failed: %v", err)
	}

	if got := mobile.Body().M_force.X; math.Abs(got-0.5) > 1e-12 {
		t.Errorf("accumulated force = %v, expected 0.5 after two applications", got)
	}
	if got := mobile.ShadowBody().M_force.X; got != 0 {
		t.Errorf("shadow force = %v, expected untouched", got)
	}

	if err := a.ApplyShadow(l); err != nil {
		t.Fatalf("ApplyShadow() failed: %v", err)
	}
	if got := mobile.ShadowBody().M_force.X; math.Abs(got-0.25) > 1e-12 {
		t.Errorf("shadow force = %v, expected 0.25", got)
	}
}
