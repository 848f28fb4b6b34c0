package physics

import "github.com/bresilla/muli/geo"

// mat3 is a small row-major 3x3 matrix for the weld joint's effective
// mass, built the same way mat2 serves the revolute joint.
type mat3 [3][3]float64

func (m mat3) inverse() mat3 {
	a, b, c := m[0][0], m[0][1], m[0][2]
	d, e, f := m[1][0], m[1][1], m[1][2]
	g, h, i := m[2][0], m[2][1], m[2][2]

	det := a*(e*i-f*h) - b*(d*i-f*g) + c*(d*h-e*g)
	if det == 0 {
		return mat3{}
	}
	invDet := 1.0 / det
	return mat3{
		{(e*i - f*h) * invDet, (c*h - b*i) * invDet, (b*f - c*e) * invDet},
		{(f*g - d*i) * invDet, (a*i - c*g) * invDet, (c*d - a*f) * invDet},
		{(d*h - e*g) * invDet, (b*g - a*h) * invDet, (a*e - b*d) * invDet},
	}
}

func (m mat3) mulVec3(v [3]float64) [3]float64 {
	return [3]float64{
		m[0][0]*v[0] + m[0][1]*v[1] + m[0][2]*v[2],
		m[1][0]*v[0] + m[1][1]*v[1] + m[1][2]*v[2],
		m[2][0]*v[0] + m[2][1]*v[1] + m[2][2]*v[2],
	}
}

// WeldJoint rigidly fuses two bodies, removing all three relative
// degrees of freedom (both translation axes and relative rotation). Not
// present in original_source's retrieved joint set (only distance/
// revolute/line are there); built by generalizing RevoluteJoint's 2x2
// K-matrix assembly to 3x3, adding a locked-rotation row/column the same
// way Box2D's b2WeldJoint extends b2RevoluteJoint's K matrix, per
// SPEC_FULL.md §4's supplemented-feature note.
type WeldJoint struct {
	jointBase

	localAnchorA, localAnchorB geo.Vec2
	referenceAngle             float64

	ra, rb geo.Vec2
	mass   mat3
	bias   [3]float64

	impulseSum [3]float64
}

// NewWeldJoint fuses a and b at the shared world anchor, locking their
// current relative angle.
func NewWeldJoint(a, b *Body, anchor geo.Vec2, frequency, dampingRatio, jointMass float64) *WeldJoint {
	j := &WeldJoint{jointBase: newJointBase(a, b, frequency, dampingRatio, jointMass)}
	j.localAnchorA = a.transform.MulT(anchor)
	j.localAnchorB = b.transform.MulT(anchor)
	j.referenceAngle = b.transform.Rotation.Angle() - a.transform.Rotation.Angle()
	return j
}

func (j *WeldJoint) Type() JointType { return JointWeld }

func (j *WeldJoint) prepare(dt, invDt float64, settings WorldSettings) {
	j.ra = j.bodyA.transform.Rotation.Apply(j.localAnchorA)
	j.rb = j.bodyB.transform.Rotation.Apply(j.localAnchorB)

	iA, iB := j.bodyA.invInertia, j.bodyB.invInertia
	mA, mB := j.bodyA.invMass, j.bodyB.invMass

	k00 := mA + mB + iA*j.ra.Y*j.ra.Y + iB*j.rb.Y*j.rb.Y
	k11 := mA + mB + iA*j.ra.X*j.ra.X + iB*j.rb.X*j.rb.X
	k01 := -iA*j.ra.X*j.ra.Y - iB*j.rb.X*j.rb.Y
	k02 := -iA*j.ra.Y - iB*j.rb.Y
	k12 := iA*j.ra.X + iB*j.rb.X
	k22 := iA + iB

	harmonicMean := 3.0 / geo.Max2(k00+k11+k22, geo.Epsilon)
	j.computeSoftConstraint(harmonicMean, dt)
	k22 += j.gamma

	j.mass = mat3{
		{k00, k01, k02},
		{k01, k11, k12},
		{k02, k12, k22},
	}.inverse()

	pa := j.bodyA.transform.Position.Add(j.ra)
	pb := j.bodyB.transform.Position.Add(j.rb)
	linError := pb.Sub(pa)
	angError := j.bodyB.transform.Rotation.Angle() - j.bodyA.transform.Rotation.Angle() - j.referenceAngle

	j.bias = [3]float64{
		linError.X * j.beta * invDt,
		linError.Y * j.beta * invDt,
		angError * j.beta * invDt,
	}

	if settings.WarmStarting {
		j.applyImpulse(j.impulseSum)
	}
}

func (j *WeldJoint) solveVelocity() {
	jv := relativeVelocity(j.bodyA, j.bodyB, j.ra, j.rb)
	relAngular := j.bodyB.angularVelocity - j.bodyA.angularVelocity

	rhs := [3]float64{
		-(jv.X + j.bias[0] + j.impulseSum[0]*j.gamma),
		-(jv.Y + j.bias[1] + j.impulseSum[1]*j.gamma),
		-(relAngular + j.bias[2] + j.impulseSum[2]*j.gamma),
	}
	lambda := j.mass.mulVec3(rhs)
	j.applyImpulse(lambda)
	for i := range j.impulseSum {
		j.impulseSum[i] += lambda[i]
	}
}

func (j *WeldJoint) applyImpulse(lambda [3]float64) {
	linear := geo.V2(lambda[0], lambda[1])
	angular := lambda[2]

	applyImpulse(j.bodyA, j.bodyB, j.ra, j.rb, linear)
	j.bodyA.angularVelocity -= j.bodyA.invInertia * angular
	j.bodyB.angularVelocity += j.bodyB.invInertia * angular
}
