package physics

import (
	"testing"

	"github.com/bresilla/muli/geo"
)

func TestFindTimeOfImpactHeadOnCircles(t *testing.T) {
	a := NewCircle(geo.Vec2{}, 1)
	b := NewCircle(geo.Vec2{}, 1)

	sweepA := geo.Sweep{T0: geo.Identity2(), T1: geo.NewTransform(geo.V2(10, 0), 0)}
	sweepB := geo.NewSweep(geo.NewTransform(geo.V2(5, 0), 0))

	toi, state := FindTimeOfImpact(a, sweepA, b, sweepB, 1, 0.005)
	if state != TOITouching {
		t.Fatalf("expected TOITouching, got state %v (t=%v)", state, toi)
	}
	if toi <= 0 || toi >= 1 {
		t.Errorf("expected fractional impact time, got %v", toi)
	}
}

func TestFindTimeOfImpactNeverMeet(t *testing.T) {
	a := NewCircle(geo.Vec2{}, 1)
	b := NewCircle(geo.Vec2{}, 1)

	sweepA := geo.NewSweep(geo.Identity2())
	sweepB := geo.NewSweep(geo.NewTransform(geo.V2(100, 0), 0))

	_, state := FindTimeOfImpact(a, sweepA, b, sweepB, 1, 0.005)
	if state != TOISeparated {
		t.Errorf("expected stationary far-apart circles to report separated, got %v", state)
	}
}
