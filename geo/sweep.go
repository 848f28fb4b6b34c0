package geo

import "math"

// Sweep describes the motion of a transform over the course of one step,
// from T0 (the transform at the start of the step) to T1 (the predicted
// transform at the end of it). Continuous-collision code (shape casting,
// time-of-impact) interpolates through a Sweep instead of re-integrating
// the body, so TOI root-finding can freely sample any t in [0,1].
type Sweep struct {
	T0, T1 Transform
}

// NewSweep builds a Sweep that holds still at t, used when a body isn't
// actually moving but a sweep-shaped input is still required.
func NewSweep(t Transform) Sweep { return Sweep{T0: t, T1: t} }

// Transform returns the interpolated transform at time t in [0,1].
// Rotation is interpolated component-wise on (sin, cos) and renormalized,
// the same shape as Rotation.Integrate uses to stay on the unit circle.
func (s Sweep) Transform(t float64) Transform {
	pos := Lerp3(s.T0.Position, s.T1.Position, t)
	r := Rotation{
		Sin: Lerp(s.T0.Rotation.Sin, s.T1.Rotation.Sin, t),
		Cos: Lerp(s.T0.Rotation.Cos, s.T1.Rotation.Cos, t),
	}
	return Transform{Position: pos, Rotation: r.normalized()}
}

// Lerp3 linearly interpolates two 2D points.
func Lerp3(a, b Vec2, t float64) Vec2 {
	return Vec2{X: Lerp(a.X, b.X, t), Y: Lerp(a.Y, b.Y, t)}
}

// normalized rescales r back onto the unit circle, or returns the identity
// if r has collapsed to (near) zero.
func (r Rotation) normalized() Rotation {
	length := r.Sin*r.Sin + r.Cos*r.Cos
	if length < Epsilon {
		return Identity()
	}
	inv := 1.0
	if length != 1.0 {
		inv = 1.0 / math.Sqrt(length)
	}
	return Rotation{Sin: r.Sin * inv, Cos: r.Cos * inv}
}
