package physics

import (
	"testing"

	"github.com/bresilla/muli/geo"
)

func newTestBodyWithCircle(kind BodyType, pos geo.Vec2, radius float64) *Body {
	b := NewBody(kind)
	b.SetTransform(geo.NewTransform(pos, 0))
	b.AddCollider(NewCircle(geo.Vec2{}, radius), geo.Identity2(), DefaultMaterial)
	return b
}

func TestContactUpdateDetectsTouching(t *testing.T) {
	a := newTestBodyWithCircle(Static, geo.Vec2{}, 1)
	b := newTestBodyWithCircle(Dynamic, geo.V2(1.5, 0), 1)

	c := newContact(a.colliders[0], b.colliders[0])
	c.update(false, 0)

	if !c.Touching() {
		t.Fatal("expected overlapping circles to be touching")
	}
	if c.manifold.NumPoints != 1 {
		t.Fatalf("expected 1 contact point, got %d", c.manifold.NumPoints)
	}
}

func TestContactUpdateNotTouching(t *testing.T) {
	a := newTestBodyWithCircle(Static, geo.Vec2{}, 1)
	b := newTestBodyWithCircle(Dynamic, geo.V2(10, 0), 1)

	c := newContact(a.colliders[0], b.colliders[0])
	c.update(false, 0)

	if c.Touching() {
		t.Fatal("expected far-apart circles not to be touching")
	}
}

func TestContactUpdateWarmStartsMatchingID(t *testing.T) {
	a := newTestBodyWithCircle(Static, geo.Vec2{}, 1)
	b := newTestBodyWithCircle(Dynamic, geo.V2(1.5, 0), 1)

	c := newContact(a.colliders[0], b.colliders[0])
	c.update(false, 0)
	c.normal[0].impulseSum = 5
	c.tangent[0].impulseSum = 2

	// Nudge B slightly; the single circle contact point keeps id 0, so the
	// accumulated impulse should carry over.
	b.SetTransform(geo.NewTransform(geo.V2(1.4, 0), 0))
	c.update(false, 0)

	if c.normal[0].impulseSum != 5 {
		t.Errorf("expected warm-started normal impulse 5, got %v", c.normal[0].impulseSum)
	}
	if c.tangent[0].impulseSum != 2 {
		t.Errorf("expected warm-started tangent impulse 2, got %v", c.tangent[0].impulseSum)
	}
}

func TestContactSolvePushesBodiesApart(t *testing.T) {
	a := newTestBodyWithCircle(Static, geo.Vec2{}, 1)
	b := newTestBodyWithCircle(Dynamic, geo.V2(1.5, 0), 1)
	b.recomputeMass()

	c := newContact(a.colliders[0], b.colliders[0])
	c.update(false, 0)

	settings := DefaultWorldSettings()
	c.prepare(settings.DT, settings.InvDT, settings)
	for i := 0; i < settings.VelocityIterations; i++ {
		c.solve(settings.ImpulseAccumulation)
	}

	if b.linearVelocity.X <= 0 {
		t.Errorf("expected the solver to push body B away from the static body along +x, got %v", b.linearVelocity)
	}
}
