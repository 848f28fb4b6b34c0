package physics

import (
	"testing"

	"github.com/bresilla/muli/geo"
)

func TestBodyIDsIncrement(t *testing.T) {
	b0, b1 := NewBody(Dynamic), NewBody(Dynamic)
	if b1.ID()-b0.ID() != 1 {
		t.Errorf("body ids should be incrementing, got %d then %d", b0.ID(), b1.ID())
	}
}

func TestStaticBodyHasZeroInverseMass(t *testing.T) {
	b := NewBody(Static)
	b.AddCollider(NewCircle(geo.V2(0, 0), 1), geo.Identity2(), DefaultMaterial)
	if b.InvMass() != 0 || b.InvInertia() != 0 {
		t.Errorf("static body should have zero invMass/invInertia, got %f/%f", b.InvMass(), b.InvInertia())
	}
}

func TestDynamicCircleMassAndInertia(t *testing.T) {
	b := NewBody(Dynamic)
	b.AddCollider(NewCircle(geo.V2(0, 0), 1), geo.Identity2(), Material{Density: 1})
	wantMass := 3.141592653589793
	if !geo.Aeq(b.Mass(), wantMass) {
		t.Errorf("mass: got %f, want %f", b.Mass(), wantMass)
	}
	if b.InvMass() <= 0 {
		t.Errorf("expected positive invMass, got %f", b.InvMass())
	}
	if wantInertia := wantMass / 2; !geo.Aeq(b.inertia, wantInertia) {
		t.Errorf("inertia: got %f, want %f", b.inertia, wantInertia)
	}
}

func TestApplyGravity(t *testing.T) {
	b := NewBody(Dynamic)
	b.AddCollider(NewCircle(geo.V2(0, 0), 1), geo.Identity2(), DefaultMaterial)
	b.applyGravity(geo.V2(0, -10))
	want := geo.V2(0, -10*b.Mass())
	if !b.force.Aeq(want) {
		t.Errorf("gravity force: got %v, want %v", b.force, want)
	}
}

func TestIntegrateVelocities(t *testing.T) {
	b := NewBody(Dynamic)
	b.AddCollider(NewCircle(geo.V2(0, 0), 1), geo.Identity2(), DefaultMaterial)
	b.force = geo.V2(1, 0).Scale(b.Mass())
	b.integrateVelocities(1.0)
	if !geo.Aeq(b.linearVelocity.X, 1.0) {
		t.Errorf("linear velocity: got %v, want x=1", b.linearVelocity)
	}
}

func TestApplyDamping(t *testing.T) {
	b := NewBody(Dynamic)
	b.AddCollider(NewCircle(geo.V2(0, 0), 1), geo.Identity2(), DefaultMaterial)
	b.linearVelocity = geo.V2(2, 2)
	b.linearDamping = 0.5
	b.applyDamping(0.2)
	if b.linearVelocity.X >= 2 {
		t.Errorf("expected damping to reduce velocity, got %v", b.linearVelocity)
	}
}

func TestIntegratePositions(t *testing.T) {
	b := NewBody(Dynamic)
	b.AddCollider(NewCircle(geo.V2(0, 0), 1), geo.Identity2(), DefaultMaterial)
	b.linearVelocity = geo.V2(1, 0)
	b.integratePositions(1.0)
	if want := geo.V2(1, 0); !b.Position().Aeq(want) {
		t.Errorf("position: got %v, want %v", b.Position(), want)
	}
}

func TestStaticBodyIgnoresVelocity(t *testing.T) {
	b := NewBody(Static)
	b.SetLinearVelocity(geo.V2(5, 5))
	if !b.LinearVelocity().Eq(geo.Vec2{}) {
		t.Errorf("static body should ignore SetLinearVelocity, got %v", b.LinearVelocity())
	}
}
