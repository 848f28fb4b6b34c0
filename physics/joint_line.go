package physics

import "github.com/bresilla/muli/geo"

// LineJoint constrains a point on bodyB to slide along an axis fixed in
// bodyA's frame, removing the one translational degree of freedom
// perpendicular to that axis (a prismatic joint without the angular
// lock weld adds). Grounded directly on
// original_source/src/dynamics/constraint/joint/line_joint.cpp.
type LineJoint struct {
	jointBase

	localAnchorA, localAnchorB geo.Vec2
	localYAxis                 geo.Vec2

	t      geo.Vec2
	sa, sb float64
	mass   float64
	bias   float64

	impulseSum float64
}

// NewLineJoint builds a line joint anchored at the shared world point,
// sliding along dir (in world space at construction time). A zero dir
// derives the axis from the bodies' current relative position, matching
// original_source's fallback.
func NewLineJoint(a, b *Body, anchor, dir geo.Vec2, frequency, dampingRatio, jointMass float64) *LineJoint {
	j := &LineJoint{jointBase: newJointBase(a, b, frequency, dampingRatio, jointMass)}
	j.localAnchorA = a.transform.MulT(anchor)
	j.localAnchorB = b.transform.MulT(anchor)

	var axisWorld geo.Vec2
	if dir.Len2() < geo.Epsilon {
		axisWorld = b.transform.Position.Sub(a.transform.Position).Unit()
	} else {
		axisWorld = dir.Unit()
	}
	localAxis := a.transform.Rotation.ApplyInv(axisWorld)
	j.localYAxis = geo.CrossScalar(1, localAxis)
	return j
}

func (j *LineJoint) Type() JointType { return JointLine }

func (j *LineJoint) prepare(dt, invDt float64, settings WorldSettings) {
	ra := j.bodyA.transform.Rotation.Apply(j.localAnchorA)
	rb := j.bodyB.transform.Rotation.Apply(j.localAnchorB)
	pa := j.bodyA.transform.Position.Add(ra)
	pb := j.bodyB.transform.Position.Add(rb)
	d := pb.Sub(pa)

	j.t = j.bodyA.transform.Rotation.Apply(j.localYAxis)
	j.sa = ra.Add(d).Cross(j.t)
	j.sb = rb.Cross(j.t)

	invMassSum := j.bodyA.invMass + j.bodyB.invMass +
		j.bodyA.invInertia*j.sa*j.sa + j.bodyB.invInertia*j.sb*j.sb
	j.computeSoftConstraint(1.0/geo.Max2(invMassSum, geo.Epsilon), dt)

	k := invMassSum + j.gamma
	if k != 0 {
		j.mass = 1.0 / k
	}

	errorLen := d.Dot(j.t)
	j.bias = errorLen * j.beta * invDt

	if settings.WarmStarting {
		j.applyImpulse(j.impulseSum)
	}
}

func (j *LineJoint) solveVelocity() {
	jv := j.t.Dot(j.bodyB.linearVelocity.Sub(j.bodyA.linearVelocity)) +
		j.sb*j.bodyB.angularVelocity - j.sa*j.bodyA.angularVelocity
	lambda := j.mass * -(jv + j.bias + j.impulseSum*j.gamma)
	j.applyImpulse(lambda)
	j.impulseSum += lambda
}

func (j *LineJoint) applyImpulse(lambda float64) {
	p := j.t.Scale(lambda)
	j.bodyA.linearVelocity = j.bodyA.linearVelocity.AddScaled(p, -j.bodyA.invMass)
	j.bodyA.angularVelocity -= lambda * j.sa * j.bodyA.invInertia
	j.bodyB.linearVelocity = j.bodyB.linearVelocity.AddScaled(p, j.bodyB.invMass)
	j.bodyB.angularVelocity += lambda * j.sb * j.bodyB.invInertia
}
