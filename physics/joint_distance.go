package physics

import "github.com/bresilla/muli/geo"

// DistanceJoint constrains the world-space distance between an anchor on
// each body to a fixed length, removing one translational degree of
// freedom along the line connecting them. Grounded on
// original_source/src/dynamics/constraint/joint/distance_joint.cpp.
type DistanceJoint struct {
	jointBase

	localAnchorA, localAnchorB geo.Vec2
	length                     float64

	ra, rb geo.Vec2
	u      geo.Vec2
	mass   float64
	bias   float64

	impulseSum float64
}

// NewDistanceJoint builds a distance joint between a and b pinned at the
// given world anchors. A negative length uses the anchors' current
// separation (original_source's `_length < 0` convention).
func NewDistanceJoint(a, b *Body, anchorA, anchorB geo.Vec2, length, frequency, dampingRatio, jointMass float64) *DistanceJoint {
	j := &DistanceJoint{jointBase: newJointBase(a, b, frequency, dampingRatio, jointMass)}
	j.localAnchorA = a.transform.MulT(anchorA)
	j.localAnchorB = b.transform.MulT(anchorB)
	if length < 0 {
		j.length = anchorB.Sub(anchorA).Len()
	} else {
		j.length = length
	}
	return j
}

func (j *DistanceJoint) Type() JointType { return JointDistance }

func (j *DistanceJoint) prepare(dt, invDt float64, settings WorldSettings) {
	j.ra = j.bodyA.transform.Rotation.Apply(j.localAnchorA)
	j.rb = j.bodyB.transform.Rotation.Apply(j.localAnchorB)

	pa := j.bodyA.transform.Position.Add(j.ra)
	pb := j.bodyB.transform.Position.Add(j.rb)

	j.u = pb.Sub(pa)
	currentLength := j.u.Len()
	if currentLength > geo.Epsilon {
		j.u = j.u.Scale(1 / currentLength)
	} else {
		j.u = geo.V2(1, 0)
	}

	invMassSum := j.bodyA.invMass + j.bodyB.invMass +
		j.bodyA.invInertia*squareCross(j.ra, j.u) +
		j.bodyB.invInertia*squareCross(j.rb, j.u)
	j.computeSoftConstraint(1.0/geo.Max2(invMassSum, geo.Epsilon), dt)

	k := invMassSum + j.gamma
	if k > geo.Epsilon {
		j.mass = 1.0 / k
	} else {
		j.mass = 0
	}

	errorLen := currentLength - j.length
	j.bias = errorLen * j.beta * invDt

	if settings.WarmStarting {
		j.applyImpulse(j.impulseSum)
	}
}

func (j *DistanceJoint) solveVelocity() {
	jv := relativeVelocity(j.bodyA, j.bodyB, j.ra, j.rb).Dot(j.u)
	lambda := j.mass * -(jv + j.bias + j.impulseSum*j.gamma)
	j.applyImpulse(lambda)
	j.impulseSum += lambda
}

func (j *DistanceJoint) applyImpulse(lambda float64) {
	applyImpulse(j.bodyA, j.bodyB, j.ra, j.rb, j.u.Scale(lambda))
}
