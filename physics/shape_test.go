package physics

import (
	"testing"

	"github.com/bresilla/muli/geo"
)

func TestCircleArea(t *testing.T) {
	c := NewCircle(geo.V2(0, 0), 2)
	if got, want := c.Area(), 4*3.141592653589793; !geo.Aeq(got, want) {
		t.Errorf("Area: got %f, want %f", got, want)
	}
}

func TestBoxCentroidAndArea(t *testing.T) {
	b := NewBox(2, 4, 0)
	if got, want := b.Area(), 8.0; !geo.Aeq(got, want) {
		t.Errorf("Area: got %f, want %f", got, want)
	}
	if got, want := b.Centroid(), geo.V2(0, 0); !got.Aeq(want) {
		t.Errorf("Centroid: got %v, want %v", got, want)
	}
}

func TestPolygonRejectsTooFewVertices(t *testing.T) {
	_, err := NewPolygon([]geo.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}}, 0)
	if err == nil {
		t.Errorf("expected error for a 2-vertex polygon")
	}
}

func TestPolygonRejectsNonConvex(t *testing.T) {
	// A non-convex quad (a dart shape).
	verts := []geo.Vec2{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 1, Y: 1}, {X: 4, Y: 4}}
	_, err := NewPolygon(verts, 0)
	if err == nil {
		t.Errorf("expected error for a non-convex polygon")
	}
}

func TestBoxSupport(t *testing.T) {
	b := NewBox(2, 2, 0)
	v, _ := b.Support(geo.V2(1, 1))
	if want := geo.V2(1, 1); !v.Aeq(want) {
		t.Errorf("Support: got %v, want %v", v, want)
	}
}

func TestCapsuleAABB(t *testing.T) {
	c := NewCapsule(geo.V2(-1, 0), geo.V2(1, 0), 0.5)
	box := c.AABB(geo.NewTransform(geo.V2(0, 0), 0), 0)
	if want := geo.V2(-1.5, -0.5); !box.Min.Aeq(want) {
		t.Errorf("AABB.Min: got %v, want %v", box.Min, want)
	}
	if want := geo.V2(1.5, 0.5); !box.Max.Aeq(want) {
		t.Errorf("AABB.Max: got %v, want %v", box.Max, want)
	}
}
