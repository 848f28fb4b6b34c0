package geo

import "testing"

func TestVec2Add(t *testing.T) {
	got := V2(1, 2).Add(V2(3, 4))
	if want := V2(4, 6); !got.Eq(want) {
		t.Errorf("Add: got %v, want %v", got, want)
	}
}

func TestVec2Dot(t *testing.T) {
	if got := V2(1, 0).Dot(V2(0, 1)); got != 0 {
		t.Errorf("Dot: got %f, want 0", got)
	}
	if got := V2(2, 3).Dot(V2(4, 5)); got != 23 {
		t.Errorf("Dot: got %f, want 23", got)
	}
}

func TestVec2Cross(t *testing.T) {
	if got := V2(1, 0).Cross(V2(0, 1)); got != 1 {
		t.Errorf("Cross: got %f, want 1", got)
	}
}

func TestVec2Perp(t *testing.T) {
	got := V2(1, 0).Perp()
	if want := V2(0, 1); !got.Eq(want) {
		t.Errorf("Perp: got %v, want %v", got, want)
	}
}

func TestVec2Unit(t *testing.T) {
	got := V2(3, 4).Unit()
	if want := V2(0.6, 0.8); !got.Aeq(want) {
		t.Errorf("Unit: got %v, want %v", got, want)
	}
	if got := (Vec2{}).Unit(); !got.Eq(V2(0, 0)) {
		t.Errorf("Unit of zero vector should stay zero, got %v", got)
	}
}

func TestCrossScalar(t *testing.T) {
	// omega x r for a pure rotation should be perpendicular to r.
	got := CrossScalar(1, V2(1, 0))
	if want := V2(0, 1); !got.Aeq(want) {
		t.Errorf("CrossScalar: got %v, want %v", got, want)
	}
}
