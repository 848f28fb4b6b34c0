package physics

import (
	"testing"

	"github.com/bresilla/muli/geo"
)

func newDynamicCircle(pos geo.Vec2) *Body {
	b := NewBody(Dynamic)
	b.SetTransform(geo.NewTransform(pos, 0))
	b.AddCollider(NewCircle(geo.Vec2{}, 0.5), geo.Identity2(), DefaultMaterial)
	b.recomputeMass()
	return b
}

const testDT = 1.0 / 60.0

func TestDistanceJointPullsTowardLength(t *testing.T) {
	a := newDynamicCircle(geo.Vec2{})
	a.invMass, a.invInertia = 0, 0 // anchor: treat as immovable for this check
	b := newDynamicCircle(geo.V2(5, 0))

	j := NewDistanceJoint(a, b, geo.Vec2{}, geo.V2(5, 0), 3, 0, 0, -1)
	settings := DefaultWorldSettings()
	j.prepare(settings.DT, settings.InvDT, settings)
	for i := 0; i < 20; i++ {
		j.solveVelocity()
	}

	if b.linearVelocity.X >= 0 {
		t.Fatalf("expected the joint to pull B toward A (negative x velocity), got %v", b.linearVelocity)
	}
}

func TestRevoluteJointZeroesRelativePointVelocity(t *testing.T) {
	a := NewBody(Static)
	a.SetTransform(geo.NewTransform(geo.Vec2{}, 0))
	b := newDynamicCircle(geo.V2(1, 0))
	b.SetLinearVelocity(geo.V2(0, 2))

	j := NewRevoluteJoint(a, b, geo.V2(1, 0), 0, 0, -1)
	settings := DefaultWorldSettings()
	for i := 0; i < 30; i++ {
		j.prepare(settings.DT, settings.InvDT, settings)
		j.solveVelocity()
	}

	pinVel := b.velocityAtWorldOffset(geo.V2(1, 0).Sub(b.transform.Position))
	if pinVel.Len2() > 1e-4 {
		t.Fatalf("expected the pinned point's velocity to converge to ~0, got %v (len2=%v)", pinVel, pinVel.Len2())
	}
}

func TestWeldJointLocksRelativeRotation(t *testing.T) {
	a := NewBody(Static)
	a.SetTransform(geo.NewTransform(geo.Vec2{}, 0))
	b := newDynamicCircle(geo.V2(1, 0))
	b.SetAngularVelocity(3)

	j := NewWeldJoint(a, b, geo.V2(0.5, 0), 0, 0, -1)
	settings := DefaultWorldSettings()
	for i := 0; i < 30; i++ {
		j.prepare(settings.DT, settings.InvDT, settings)
		j.solveVelocity()
	}

	if b.angularVelocity > 1e-3 || b.angularVelocity < -1e-3 {
		t.Fatalf("expected a weld joint against a static body to drive angular velocity to ~0, got %v", b.angularVelocity)
	}
}

func TestAddJointWiresIntrusiveEdges(t *testing.T) {
	w, err := NewWorld(DefaultWorldSettings())
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}
	a := newDynamicCircle(geo.Vec2{})
	b := newDynamicCircle(geo.V2(2, 0))
	w.AddBody(a)
	w.AddBody(b)

	j := NewDistanceJoint(a, b, geo.Vec2{}, geo.V2(2, 0), 2, 0, 0, -1)
	w.AddJoint(j)

	if len(a.jointEdges) != 1 || len(b.jointEdges) != 1 {
		t.Fatalf("expected both bodies to get one joint edge, got %d and %d", len(a.jointEdges), len(b.jointEdges))
	}

	w.RemoveJoint(j)
	if len(a.jointEdges) != 0 || len(b.jointEdges) != 0 {
		t.Fatalf("expected RemoveJoint to sever both edges, got %d and %d", len(a.jointEdges), len(b.jointEdges))
	}
	if !j.destroyed() {
		t.Fatal("expected RemoveJoint to mark the joint destroyed")
	}
}
