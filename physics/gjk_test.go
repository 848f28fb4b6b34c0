package physics

import (
	"testing"

	"github.com/bresilla/muli/geo"
)

func TestGJKSeparatedCircles(t *testing.T) {
	a := NewCircle(geo.Vec2{}, 1)
	b := NewCircle(geo.Vec2{}, 1)
	tfA := geo.Identity2()
	tfB := geo.NewTransform(geo.V2(5, 0), 0)

	result := gjk(a, tfA, b, tfB, gjkMaxIteration, gjkTolerance)
	if result.state != gjkSeparated {
		t.Fatalf("expected separated, got state %v", result.state)
	}
	if result.distance <= 0 {
		t.Errorf("expected positive distance between centers 5 apart with r=1, got %v", result.distance)
	}
}

func TestGJKOverlappingBoxes(t *testing.T) {
	a := NewBox(2, 2, 0)
	b := NewBox(2, 2, 0)
	tfA := geo.Identity2()
	tfB := geo.NewTransform(geo.V2(0.5, 0), 0)

	result := gjk(a, tfA, b, tfB, gjkMaxIteration, gjkTolerance)
	if result.state != gjkOverlap {
		t.Fatalf("expected overlap for boxes offset by 0.5 with half-width 1, got state %v", result.state)
	}
}

func TestGJKSeparatedBoxesGapDistance(t *testing.T) {
	a := NewBox(2, 2, 0)
	b := NewBox(2, 2, 0)
	tfA := geo.Identity2()
	tfB := geo.NewTransform(geo.V2(3, 0), 0)

	result := gjk(a, tfA, b, tfB, gjkMaxIteration, gjkTolerance)
	if result.state != gjkSeparated {
		t.Fatalf("expected boxes 3 apart (edges 1 apart) to be separated, got %v", result.state)
	}
	if !geo.Aeq(result.distance, 1) {
		t.Errorf("expected gap distance 1, got %v", result.distance)
	}
}
