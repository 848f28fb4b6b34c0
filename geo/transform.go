package geo

// Transform is a rigid transform: a rotation followed by a translation.
type Transform struct {
	Position Vec2
	Rotation Rotation
}

// NewTransform builds a transform from a position and angle.
func NewTransform(pos Vec2, angle float64) Transform {
	return Transform{Position: pos, Rotation: FromAngle(angle)}
}

// Identity2 returns the identity transform (origin, no rotation).
func Identity2() Transform { return Transform{Position: Vec2{}, Rotation: Identity()} }

// Mul transforms a local point p into world space.
func (t Transform) Mul(p Vec2) Vec2 {
	return t.Rotation.Apply(p).Add(t.Position)
}

// MulVec rotates (but does not translate) a local direction v into world
// space.
func (t Transform) MulVec(v Vec2) Vec2 { return t.Rotation.Apply(v) }

// MulT transforms a world point p into the local space of t — the inverse
// of Mul.
func (t Transform) MulT(p Vec2) Vec2 {
	return t.Rotation.ApplyInv(p.Sub(t.Position))
}

// MulTVec rotates (but does not translate) a world direction v into the
// local space of t.
func (t Transform) MulTVec(v Vec2) Vec2 { return t.Rotation.ApplyInv(v) }

// Mul2 composes two transforms: applying the result to a point is the same
// as applying b then a.
func Mul2(a, b Transform) Transform {
	return Transform{
		Position: a.Mul(b.Position),
		Rotation: a.Rotation.Mul(b.Rotation),
	}
}
