package physics

import (
	"testing"

	"github.com/bresilla/muli/geo"
)

func TestCircleVsCircleManifold(t *testing.T) {
	a := NewCircle(geo.Vec2{}, 1)
	b := NewCircle(geo.Vec2{}, 1)
	tfA := geo.Identity2()
	tfB := geo.NewTransform(geo.V2(1.5, 0), 0)

	m, hit := circleVsCircle(a, tfA, b, tfB)
	if !hit {
		t.Fatal("expected circles 1.5 apart with radius 1 each to overlap")
	}
	if m.NumPoints != 1 {
		t.Fatalf("expected 1 contact point, got %d", m.NumPoints)
	}
	if !geo.Aeq(m.Normal.X, 1) {
		t.Errorf("expected normal (1,0), got %v", m.Normal)
	}
}

func TestCircleVsCircleNoOverlap(t *testing.T) {
	a := NewCircle(geo.Vec2{}, 1)
	b := NewCircle(geo.Vec2{}, 1)
	tfA := geo.Identity2()
	tfB := geo.NewTransform(geo.V2(3, 0), 0)

	_, hit := circleVsCircle(a, tfA, b, tfB)
	if hit {
		t.Fatal("expected circles 3 apart with radius 1 each not to overlap")
	}
}

func TestPolygonVsCircleManifold(t *testing.T) {
	box := NewBox(2, 2, 0)
	circle := NewCircle(geo.Vec2{}, 1)
	tfBox := geo.Identity2()
	tfCircle := geo.NewTransform(geo.V2(1.5, 0), 0)

	m, hit := polygonVsCircle(box, tfBox, circle, tfCircle)
	if !hit {
		t.Fatal("expected circle 1.5 from box center (half-width 1, radius 1) to overlap")
	}
	if m.NumPoints != 1 {
		t.Fatalf("expected 1 contact point, got %d", m.NumPoints)
	}
}
