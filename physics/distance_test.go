package physics

import (
	"testing"

	"github.com/bresilla/muli/geo"
)

func TestComputeDistanceSeparated(t *testing.T) {
	a := NewCircle(geo.Vec2{}, 1)
	b := NewCircle(geo.Vec2{}, 1)
	tfA := geo.Identity2()
	tfB := geo.NewTransform(geo.V2(5, 0), 0)

	_, _, sep := ComputeDistance(a, tfA, b, tfB)
	if !geo.Aeq(sep, 3) {
		t.Errorf("expected separation 3 (5 - 1 - 1), got %v", sep)
	}
}

func TestComputeDistanceOverlapping(t *testing.T) {
	a := NewCircle(geo.Vec2{}, 1)
	b := NewCircle(geo.Vec2{}, 1)
	tfA := geo.Identity2()
	tfB := geo.NewTransform(geo.V2(0.5, 0), 0)

	_, _, sep := ComputeDistance(a, tfA, b, tfB)
	if sep != 0 {
		t.Errorf("expected 0 separation for overlapping circles, got %v", sep)
	}
}

func TestShapeCastHeadOnCircles(t *testing.T) {
	a := NewCircle(geo.Vec2{}, 1)
	b := NewCircle(geo.Vec2{}, 1)
	tfA := geo.Identity2()
	tfB := geo.NewTransform(geo.V2(10, 0), 0)

	out, hit := ShapeCast(a, tfA, b, tfB, geo.V2(20, 0), geo.Vec2{}, 0.005, 0.005)
	if !hit {
		t.Fatal("expected circle moving toward a stationary circle to hit")
	}
	if out.T <= 0 || out.T >= 1 {
		t.Errorf("expected a fractional time of impact in (0,1), got %v", out.T)
	}
}
