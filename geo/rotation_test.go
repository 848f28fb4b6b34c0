package geo

import (
	"math"
	"testing"
)

func TestFromAngleRoundTrip(t *testing.T) {
	for _, a := range []float64{0, 0.1, math.Pi / 4, math.Pi / 2, math.Pi, -math.Pi / 3} {
		r := FromAngle(a)
		if !Aeq(r.Angle(), a) {
			t.Errorf("angle round trip: got %f, want %f", r.Angle(), a)
		}
	}
}

func TestRotationApply(t *testing.T) {
	r := FromAngle(math.Pi / 2)
	got := r.Apply(V2(1, 0))
	if want := V2(0, 1); !got.Aeq(want) {
		t.Errorf("Apply: got %v, want %v", got, want)
	}
}

func TestRotationApplyInvIsInverse(t *testing.T) {
	r := FromAngle(0.7)
	v := V2(3, -2)
	got := r.ApplyInv(r.Apply(v))
	if !got.Aeq(v) {
		t.Errorf("ApplyInv(Apply(v)) = %v, want %v", got, v)
	}
}

func TestTransformRoundTrip(t *testing.T) {
	tf := NewTransform(V2(2, 3), 0.5)
	p := V2(5, -1)
	got := tf.MulT(tf.Mul(p))
	if !got.Aeq(p) {
		t.Errorf("transform round trip: got %v, want %v", got, p)
	}
}
