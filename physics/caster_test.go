package physics

import (
	"testing"

	"github.com/bresilla/muli/geo"
)

func TestRayCastCircleThroughCenter(t *testing.T) {
	c := NewCircle(geo.Vec2{}, 1)
	tf := geo.Identity2()

	hit, ok := RayCastShape(c, tf, geo.V2(-5, 0), geo.V2(5, 0), 1)
	if !ok {
		t.Fatal("expected ray through a circle's center to hit")
	}
	if !geo.Aeq(hit.Fraction, 0.4) {
		t.Errorf("expected fraction 0.4 (hits at x=-1, 4/10 along the segment), got %v", hit.Fraction)
	}
	if !geo.Aeq(hit.Normal.X, -1) {
		t.Errorf("expected normal (-1,0), got %v", hit.Normal)
	}
}

func TestRayCastCircleMiss(t *testing.T) {
	c := NewCircle(geo.Vec2{}, 1)
	tf := geo.Identity2()

	_, ok := RayCastShape(c, tf, geo.V2(-5, 5), geo.V2(5, 5), 1)
	if ok {
		t.Fatal("expected a ray passing above the circle to miss")
	}
}

func TestRayCastBoxFace(t *testing.T) {
	box := NewBox(2, 2, 0)
	tf := geo.Identity2()

	hit, ok := RayCastShape(box, tf, geo.V2(-5, 0), geo.V2(5, 0), 1)
	if !ok {
		t.Fatal("expected ray through a box's center to hit its left face")
	}
	if !geo.Aeq(hit.Point.X, -1) {
		t.Errorf("expected hit at x=-1, got %v", hit.Point)
	}
}

func TestRayCastCapsuleEndCap(t *testing.T) {
	capsule := NewCapsule(geo.V2(-2, 0), geo.V2(2, 0), 1)
	tf := geo.Identity2()

	hit, ok := RayCastShape(capsule, tf, geo.V2(-6, 0), geo.V2(6, 0), 1)
	if !ok {
		t.Fatal("expected ray along a capsule's axis to hit its end cap")
	}
	if !geo.Aeq(hit.Point.X, -3) {
		t.Errorf("expected hit at the near cap, x=-3, got %v", hit.Point)
	}
}
