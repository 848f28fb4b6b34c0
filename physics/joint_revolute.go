package physics

import "github.com/bresilla/muli/geo"

// mat2 is a small row-major 2x2 matrix, just large enough for the
// revolute joint's effective-mass inversion; not exported since
// nothing outside the joint solvers needs 2x2 linear algebra.
type mat2 struct {
	m00, m01 float64
	m10, m11 float64
}

func (m mat2) inverse() mat2 {
	det := m.m00*m.m11 - m.m01*m.m10
	if det == 0 {
		return mat2{}
	}
	invDet := 1.0 / det
	return mat2{
		m00: m.m11 * invDet, m01: -m.m01 * invDet,
		m10: -m.m10 * invDet, m11: m.m00 * invDet,
	}
}

func (m mat2) mulVec(v geo.Vec2) geo.Vec2 {
	return geo.V2(m.m00*v.X+m.m01*v.Y, m.m10*v.X+m.m11*v.Y)
}

// RevoluteJoint pins a shared point on each body together, removing both
// translational degrees of freedom and leaving relative rotation free —
// a hinge.
type RevoluteJoint struct {
	jointBase

	localAnchorA, localAnchorB geo.Vec2

	ra, rb geo.Vec2
	mass   mat2
	bias   geo.Vec2

	impulseSum geo.Vec2
}

// NewRevoluteJoint builds a revolute (hinge) joint pinning a and b
// together at the shared world anchor point.
func NewRevoluteJoint(a, b *Body, anchor geo.Vec2, frequency, dampingRatio, jointMass float64) *RevoluteJoint {
	j := &RevoluteJoint{jointBase: newJointBase(a, b, frequency, dampingRatio, jointMass)}
	j.localAnchorA = a.transform.MulT(anchor)
	j.localAnchorB = b.transform.MulT(anchor)
	return j
}

func (j *RevoluteJoint) Type() JointType { return JointRevolute }

func (j *RevoluteJoint) prepare(dt, invDt float64, settings WorldSettings) {
	j.ra = j.bodyA.transform.Rotation.Apply(j.localAnchorA)
	j.rb = j.bodyB.transform.Rotation.Apply(j.localAnchorB)

	k00 := j.bodyA.invMass + j.bodyB.invMass + j.bodyA.invInertia*j.ra.Y*j.ra.Y + j.bodyB.invInertia*j.rb.Y*j.rb.Y
	k11 := j.bodyA.invMass + j.bodyB.invMass + j.bodyA.invInertia*j.ra.X*j.ra.X + j.bodyB.invInertia*j.rb.X*j.rb.X
	k01 := -j.bodyA.invInertia*j.ra.X*j.ra.Y - j.bodyB.invInertia*j.rb.X*j.rb.Y

	harmonicMean := 2.0 / geo.Max2(k00+k11, geo.Epsilon)
	j.computeSoftConstraint(harmonicMean, dt)
	k00 += j.gamma
	k11 += j.gamma

	j.mass = mat2{m00: k00, m01: k01, m10: k01, m11: k11}.inverse()

	pa := j.bodyA.transform.Position.Add(j.ra)
	pb := j.bodyB.transform.Position.Add(j.rb)
	errVec := pb.Sub(pa)
	j.bias = errVec.Scale(j.beta * invDt)

	if settings.WarmStarting {
		j.applyImpulse(j.impulseSum)
	}
}

func (j *RevoluteJoint) solveVelocity() {
	jv := relativeVelocity(j.bodyA, j.bodyB, j.ra, j.rb)
	rhs := jv.Add(j.bias).Add(j.impulseSum.Scale(j.gamma)).Neg()
	lambda := j.mass.mulVec(rhs)
	j.applyImpulse(lambda)
	j.impulseSum = j.impulseSum.Add(lambda)
}

func (j *RevoluteJoint) applyImpulse(lambda geo.Vec2) {
	applyImpulse(j.bodyA, j.bodyB, j.ra, j.rb, lambda)
}
