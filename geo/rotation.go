package geo

import "math"

// Rotation stores a 2D orientation as sin/cos rather than a bare angle, so
// that composing and applying rotations never needs a trig call on the hot
// path (only construction from/to an angle does).
type Rotation struct {
	Sin, Cos float64
}

// Identity is the zero rotation.
func Identity() Rotation { return Rotation{Sin: 0, Cos: 1} }

// FromAngle builds a Rotation from an angle in radians.
func FromAngle(angle float64) Rotation {
	return Rotation{Sin: math.Sin(angle), Cos: math.Cos(angle)}
}

// Angle recovers the angle in radians.
func (r Rotation) Angle() float64 { return math.Atan2(r.Sin, r.Cos) }

// Mul composes r then s: applying the result to a vector is the same as
// applying r then s.
func (r Rotation) Mul(s Rotation) Rotation {
	return Rotation{
		Sin: r.Sin*s.Cos + r.Cos*s.Sin,
		Cos: r.Cos*s.Cos - r.Sin*s.Sin,
	}
}

// Inv returns the inverse rotation.
func (r Rotation) Inv() Rotation { return Rotation{Sin: -r.Sin, Cos: r.Cos} }

// Apply rotates v by r.
func (r Rotation) Apply(v Vec2) Vec2 {
	return Vec2{X: r.Cos*v.X - r.Sin*v.Y, Y: r.Sin*v.X + r.Cos*v.Y}
}

// ApplyInv rotates v by the inverse of r without computing Inv explicitly.
func (r Rotation) ApplyInv(v Vec2) Vec2 {
	return Vec2{X: r.Cos*v.X + r.Sin*v.Y, Y: -r.Sin*v.X + r.Cos*v.Y}
}

// Integrate advances the rotation by an angular velocity omega over dt,
// renormalizing sin/cos so repeated integration does not drift off the
// unit circle.
func (r Rotation) Integrate(omega, dt float64) Rotation {
	angle := omega * dt
	nr := Rotation{Sin: r.Sin + angle*r.Cos, Cos: r.Cos - angle*r.Sin}
	length := math.Sqrt(nr.Sin*nr.Sin + nr.Cos*nr.Cos)
	if length < Epsilon {
		return r
	}
	return Rotation{Sin: nr.Sin / length, Cos: nr.Cos / length}
}
