package physics

import (
	"testing"

	"github.com/bresilla/muli/geo"
)

func newFallingCircle(t *testing.T, pos geo.Vec2, radius float64) *Body {
	t.Helper()
	b := NewBody(Dynamic)
	b.SetTransform(geo.NewTransform(pos, 0))
	b.AddCollider(NewCircle(geo.Vec2{}, radius), geo.Identity2(), DefaultMaterial)
	return b
}

func newGround(t *testing.T, verts []geo.Vec2) *Body {
	t.Helper()
	poly, err := NewPolygon(verts, 0)
	if err != nil {
		t.Fatalf("NewPolygon: %v", err)
	}
	b := NewBody(Static)
	b.AddCollider(poly, geo.Identity2(), DefaultMaterial)
	return b
}

func TestNewWorldRejectsMalformedSettings(t *testing.T) {
	s := DefaultWorldSettings()
	s.DT = 0
	if _, err := NewWorld(s); err == nil {
		t.Fatal("expected an error for DT <= 0")
	}
}

func TestWorldAddRemoveBodyRegistersProxies(t *testing.T) {
	w, err := NewWorld(DefaultWorldSettings())
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}
	b := newFallingCircle(t, geo.V2(0, 5), 0.5)
	w.AddBody(b)

	if len(w.Bodies()) != 1 {
		t.Fatalf("expected 1 body, got %d", len(w.Bodies()))
	}
	if b.colliders[0].proxy == invalidProxy {
		t.Fatal("expected AddBody to register a broad-phase proxy")
	}

	w.RemoveBody(b)
	if len(w.Bodies()) != 0 {
		t.Fatalf("expected 0 bodies after RemoveBody, got %d", len(w.Bodies()))
	}
	if b.colliders[0].proxy != invalidProxy {
		t.Fatal("expected RemoveBody to clear the proxy")
	}
}

// TestWorldStepSettlesCircleOnGround approximates spec.md's scenario S1: a
// circle falls under gravity and comes to rest on a static ground polygon
// rather than tunneling through or penetrating it.
func TestWorldStepSettlesCircleOnGround(t *testing.T) {
	settings := DefaultWorldSettings()
	w, err := NewWorld(settings)
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}

	ground := newGround(t, []geo.Vec2{
		geo.V2(-10, -1), geo.V2(10, -1), geo.V2(10, 0), geo.V2(-10, 0),
	})
	w.AddBody(ground)

	ball := newFallingCircle(t, geo.V2(0, 3), 0.5)
	ball.recomputeMass()
	w.AddBody(ball)

	for i := 0; i < 240; i++ {
		w.Step()
	}

	restY := ball.Position().Y
	if restY < -0.1 || restY > 1.0 {
		t.Fatalf("expected the ball to settle near y=0.5, got y=%v", restY)
	}
	if ball.Position().Y < -0.5 {
		t.Fatalf("ball tunneled through the ground, y=%v", restY)
	}
}

func TestWorldStepWakesSleepingBodyOnNewContact(t *testing.T) {
	settings := DefaultWorldSettings()
	w, err := NewWorld(settings)
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}

	ground := newGround(t, []geo.Vec2{
		geo.V2(-10, -1), geo.V2(10, -1), geo.V2(10, 0), geo.V2(-10, 0),
	})
	w.AddBody(ground)

	resting := newFallingCircle(t, geo.V2(0, 0.5), 0.5)
	resting.recomputeMass()
	w.AddBody(resting)
	resting.sleeping = true
	resting.sleepTime = settings.TimeToSleep

	faller := newFallingCircle(t, geo.V2(0.4, 4), 0.5)
	faller.recomputeMass()
	w.AddBody(faller)

	for i := 0; i < 120; i++ {
		w.Step()
	}

	if resting.sleepTime > settings.TimeToSleep && resting.IsSleeping() {
		t.Fatalf("expected the impact to wake the resting body")
	}
}

func TestWorldDistanceJointHoldsSeparation(t *testing.T) {
	settings := DefaultWorldSettings()
	settings.Gravity = geo.Vec2{}
	w, err := NewWorld(settings)
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}

	anchor := NewBody(Static)
	anchor.SetTransform(geo.NewTransform(geo.Vec2{}, 0))
	w.AddBody(anchor)

	bob := newFallingCircle(t, geo.V2(3, 0), 0.25)
	bob.recomputeMass()
	bob.SetLinearVelocity(geo.V2(0, 5))
	w.AddBody(bob)

	joint := NewDistanceJoint(anchor, bob, geo.Vec2{}, geo.V2(3, 0), 3, 0, 0, -1)
	w.AddJoint(joint)

	for i := 0; i < 120; i++ {
		w.Step()
	}

	dist := bob.Position().Len()
	if dist < 2.5 || dist > 3.5 {
		t.Fatalf("expected the distance joint to hold ~3 units of separation, got %v", dist)
	}
}

func TestWorldQueryPointFindsOverlappingCollider(t *testing.T) {
	w, err := NewWorld(DefaultWorldSettings())
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}
	b := newFallingCircle(t, geo.V2(2, 2), 1)
	w.AddBody(b)

	var hits int
	w.QueryPoint(geo.V2(2, 2), queryFunc(func(c *Collider) bool {
		hits++
		return true
	}))
	if hits == 0 {
		t.Fatal("expected QueryPoint to find the collider at its own center")
	}
}

type queryFunc func(c *Collider) bool

func (f queryFunc) QueryCallback(c *Collider) bool { return f(c) }
