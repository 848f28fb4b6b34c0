package physics

import (
	"testing"

	"github.com/bresilla/muli/geo"
)

func TestEPAPenetrationDepth(t *testing.T) {
	a := NewBox(2, 2, 0)
	b := NewBox(2, 2, 0)
	tfA := geo.Identity2()
	tfB := geo.NewTransform(geo.V2(1.5, 0), 0)

	result := gjk(a, tfA, b, tfB, gjkMaxIteration, gjkTolerance)
	if result.state != gjkOverlap {
		t.Fatalf("expected overlap, got %v", result.state)
	}

	res := epa(a, tfA, b, tfB, result.simplex, epaMaxIteration, epaTolerance)
	// Half-widths 1 each, centers 1.5 apart: overlap depth is 2 - 1.5 = 0.5.
	if diff := res.penetration - 0.5; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("expected penetration ~0.5, got %v", res.penetration)
	}
	if res.normal.X <= 0 {
		t.Errorf("expected separating normal pointing toward +x (from A to B), got %v", res.normal)
	}
}
