package physics

import (
	"testing"

	"github.com/bresilla/muli/geo"
)

func TestCollideCircleCircle(t *testing.T) {
	a := NewCircle(geo.Vec2{}, 1)
	b := NewCircle(geo.Vec2{}, 1)
	tfA := geo.Identity2()
	tfB := geo.NewTransform(geo.V2(1.5, 0), 0)

	m, hit := Collide(a, tfA, b, tfB)
	if !hit || m.NumPoints != 1 {
		t.Fatalf("expected one contact point, got hit=%v points=%d", hit, m.NumPoints)
	}
}

func TestCollideOrderIndependent(t *testing.T) {
	box := NewBox(2, 2, 0)
	circle := NewCircle(geo.Vec2{}, 1)
	tfBox := geo.Identity2()
	tfCircle := geo.NewTransform(geo.V2(1.5, 0), 0)

	mBoxFirst, hit1 := Collide(box, tfBox, circle, tfCircle)
	mCircleFirst, hit2 := Collide(circle, tfCircle, box, tfBox)
	if !hit1 || !hit2 {
		t.Fatal("expected both argument orders to detect the overlap")
	}
	if mBoxFirst.Normal.Add(mCircleFirst.Normal).Len() > 1e-9 {
		t.Errorf("expected normals to flip between orderings, got %v and %v", mBoxFirst.Normal, mCircleFirst.Normal)
	}
}

func TestCollidePolygonPolygonOverlap(t *testing.T) {
	a := NewBox(2, 2, 0)
	b := NewBox(2, 2, 0)
	tfA := geo.Identity2()
	tfB := geo.NewTransform(geo.V2(1.5, 0), 0)

	m, hit := Collide(a, tfA, b, tfB)
	if !hit {
		t.Fatal("expected overlapping boxes to collide")
	}
	if m.NumPoints == 0 {
		t.Error("expected at least one contact point from clipping")
	}
}

func TestCollideSeparatedNoCollision(t *testing.T) {
	a := NewBox(2, 2, 0)
	b := NewBox(2, 2, 0)
	tfA := geo.Identity2()
	tfB := geo.NewTransform(geo.V2(10, 0), 0)

	_, hit := Collide(a, tfA, b, tfB)
	if hit {
		t.Fatal("expected far-apart boxes not to collide")
	}
}
