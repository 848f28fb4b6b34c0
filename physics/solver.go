package physics

import "github.com/bresilla/muli/geo"

// normalSolver is the per-contact-point non-penetration constraint:
// Jacobian row (normal direction, rA×n/rB×n terms), inverse effective
// mass, bias, and accumulated impulse. Grounded on spec.md §4.4's
// per-point solver description (no original_source body was retrieved
// for contact_solver.h, so this is written directly from the spec's
// equations, the same ones Box2D/the original's call sites imply).
type normalSolver struct {
	rA, rB        geo.Vec2
	normal        geo.Vec2
	effectiveMass float64
	bias          float64
	impulseSum    float64
}

func (s *normalSolver) prepare(bodyA, bodyB *Body, point, normal geo.Vec2, penetration, restitution, invDt float64, settings WorldSettings) {
	s.normal = normal
	s.rA = point.Sub(bodyA.transform.Position)
	s.rB = point.Sub(bodyB.transform.Position)

	invMassSum := bodyA.invMass + bodyB.invMass +
		bodyA.invInertia*squareCross(s.rA, normal) +
		bodyB.invInertia*squareCross(s.rB, normal)
	if invMassSum < geo.Epsilon {
		s.effectiveMass = 0
	} else {
		s.effectiveMass = 1.0 / invMassSum
	}

	s.bias = 0
	if settings.PositionCorrection {
		s.bias = settings.PositionCorrectionBeta * geo.Max2(0, penetration-settings.PenetrationSlop) * invDt
	}

	relVel := relativeVelocity(bodyA, bodyB, s.rA, s.rB).Dot(normal)
	if relVel < -settings.RestitutionSlop {
		s.bias += -restitution * relVel
	}

	if settings.WarmStarting && s.impulseSum != 0 {
		applyImpulse(bodyA, bodyB, s.rA, s.rB, normal.Scale(s.impulseSum))
	}
}

// solve runs one normal-impulse iteration. When accumulate is true
// (the classic sequential-impulse mode), the clamp is applied to the
// running sum across every iteration this step, and only the delta is
// applied to velocities. When false (spec.md §4/SPEC_FULL.md §4's
// Settings.IMPULSE_ACCUMULATION toggle), each iteration's raw impulse is
// applied directly and impulseSum only ever reflects the latest
// iteration, not a running total — original_source/src/physics/world.h
// exposes the flag but no retrieved file bodies its "off" branch, so
// this is the direct reading of spec.md's "sum vs delta" phrasing.
func (s *normalSolver) solve(bodyA, bodyB *Body, accumulate bool) {
	// s.bias is the desired minimum separating velocity along normal
	// (from Baumgarte position correction and/or restitution); the
	// constraint is relVel >= bias, so the Lagrange multiplier drives
	// relVel - bias toward zero from below.
	relVel := relativeVelocity(bodyA, bodyB, s.rA, s.rB).Dot(s.normal)
	lambda := -s.effectiveMass * (relVel - s.bias)

	if accumulate {
		newImpulse := geo.Max2(0, s.impulseSum+lambda)
		delta := newImpulse - s.impulseSum
		s.impulseSum = newImpulse
		applyImpulse(bodyA, bodyB, s.rA, s.rB, s.normal.Scale(delta))
		return
	}

	newImpulse := geo.Max2(0, lambda)
	s.impulseSum = newImpulse
	applyImpulse(bodyA, bodyB, s.rA, s.rB, s.normal.Scale(newImpulse))
}

// tangentSolver is the friction constraint paired with a normalSolver,
// sharing its Jacobian shape but along the tangent direction, clamped
// each iteration to the current normal accumulation times the friction
// coefficient (the Coulomb friction cone). Grounded on spec.md §4.4.
type tangentSolver struct {
	rA, rB        geo.Vec2
	tangent       geo.Vec2
	effectiveMass float64
	bias          float64
	impulseSum    float64
}

func (s *tangentSolver) prepare(bodyA, bodyB *Body, point, tangent geo.Vec2, surfaceSpeed, invDt float64, settings WorldSettings) {
	s.tangent = tangent
	s.rA = point.Sub(bodyA.transform.Position)
	s.rB = point.Sub(bodyB.transform.Position)

	invMassSum := bodyA.invMass + bodyB.invMass +
		bodyA.invInertia*squareCross(s.rA, tangent) +
		bodyB.invInertia*squareCross(s.rB, tangent)
	if invMassSum < geo.Epsilon {
		s.effectiveMass = 0
	} else {
		s.effectiveMass = 1.0 / invMassSum
	}

	s.bias = -surfaceSpeed

	if settings.WarmStarting && s.impulseSum != 0 {
		applyImpulse(bodyA, bodyB, s.rA, s.rB, tangent.Scale(s.impulseSum))
	}
}

func (s *tangentSolver) solve(bodyA, bodyB *Body, friction float64, normal *normalSolver, accumulate bool) {
	relVel := relativeVelocity(bodyA, bodyB, s.rA, s.rB).Dot(s.tangent)
	lambda := -s.effectiveMass * (relVel + s.bias)

	maxFriction := friction * normal.impulseSum
	if accumulate {
		newImpulse := geo.Clamp(s.impulseSum+lambda, -maxFriction, maxFriction)
		delta := newImpulse - s.impulseSum
		s.impulseSum = newImpulse
		applyImpulse(bodyA, bodyB, s.rA, s.rB, s.tangent.Scale(delta))
		return
	}

	newImpulse := geo.Clamp(lambda, -maxFriction, maxFriction)
	s.impulseSum = newImpulse
	applyImpulse(bodyA, bodyB, s.rA, s.rB, s.tangent.Scale(newImpulse))
}

// blockSolver jointly solves the two normal impulses of a 2-point
// manifold as a 2x2 LCP, enumerating the four feasibility sub-cases
// (both active, only point 1, only point 2, both inactive) in the same
// order Box2D's contact solver does; this eliminates the stacking drift
// a pure Gauss-Seidel per-point pass leaves behind on flat resting
// contacts. Grounded on spec.md §4.4's "Block solver" paragraph — no
// original_source file body was retrieved for block_solver.h, so the
// LCP case enumeration below is original code written to that
// paragraph's contract.
type blockSolver struct {
	enabled bool
	k       [2][2]float64
	invK    [2][2]float64
}

func (b *blockSolver) prepare(c *Contact) {
	n0, n1 := &c.normal[0], &c.normal[1]
	bodyA, bodyB := c.bodyA, c.bodyB

	k11 := bodyA.invMass + bodyB.invMass +
		bodyA.invInertia*squareCross(n0.rA, n0.normal) + bodyB.invInertia*squareCross(n0.rB, n0.normal)
	k22 := bodyA.invMass + bodyB.invMass +
		bodyA.invInertia*squareCross(n1.rA, n1.normal) + bodyB.invInertia*squareCross(n1.rB, n1.normal)
	k12 := bodyA.invMass + bodyB.invMass +
		bodyA.invInertia*n0.rA.Cross(n0.normal)*n1.rA.Cross(n1.normal) +
		bodyB.invInertia*n0.rB.Cross(n0.normal)*n1.rB.Cross(n1.normal)

	b.k = [2][2]float64{{k11, k12}, {k12, k22}}

	det := k11*k22 - k12*k12
	const maxConditionNumber = 1000.0
	if det == 0 || k11*k11 > maxConditionNumber*det {
		// Ill-conditioned: disable block mode, per-point solves still run.
		b.enabled = false
		return
	}
	invDet := 1.0 / det
	b.invK = [2][2]float64{
		{k22 * invDet, -k12 * invDet},
		{-k12 * invDet, k11 * invDet},
	}
	b.enabled = true
}

// solve runs one block-solved normal iteration, falling through the four
// LCP sub-cases in order: both-active (full 2x2 solve), point-1-only,
// point-2-only, both-inactive (separating).
func (b *blockSolver) solve(c *Contact) {
	n0, n1 := &c.normal[0], &c.normal[1]
	bodyA, bodyB := c.bodyA, c.bodyB

	a0, a1 := n0.impulseSum, n1.impulseSum

	v0 := relativeVelocity(bodyA, bodyB, n0.rA, n0.rB).Dot(n0.normal) - n0.bias
	v1 := relativeVelocity(bodyA, bodyB, n1.rA, n1.rB).Dot(n1.normal) - n1.bias

	// v0/v1 above are relative velocities under the *already-applied*
	// accumulated impulses a0/a1, but the LCP is solved for the new total
	// impulse x, so subtract K*a out of the right-hand side first (Box2D's
	// block solve): with r = v - K*a the post-solve velocity is K*x + r,
	// and every case below solves for x against that.
	r0 := v0 - (b.k[0][0]*a0 + b.k[0][1]*a1)
	r1 := v1 - (b.k[1][0]*a0 + b.k[1][1]*a1)

	// Case 1: both points active (x = -invK * r >= 0).
	x0 := -(b.invK[0][0]*r0 + b.invK[0][1]*r1)
	x1 := -(b.invK[1][0]*r0 + b.invK[1][1]*r1)
	if x0 >= 0 && x1 >= 0 {
		b.apply(c, x0-a0, x1-a1)
		n0.impulseSum, n1.impulseSum = x0, x1
		return
	}

	// Case 2: only point 1 active, point 2 clamped to zero.
	if b.k[0][0] > geo.Epsilon {
		x0 = -r0 / b.k[0][0]
		vn2 := b.k[1][0]*x0 + r1
		if x0 >= 0 && vn2 >= 0 {
			b.apply(c, x0-a0, -a1)
			n0.impulseSum, n1.impulseSum = x0, 0
			return
		}
	}

	// Case 3: only point 2 active, point 1 clamped to zero.
	if b.k[1][1] > geo.Epsilon {
		x1 = -r1 / b.k[1][1]
		vn1 := b.k[0][1]*x1 + r0
		if x1 >= 0 && vn1 >= 0 {
			b.apply(c, -a0, x1-a1)
			n0.impulseSum, n1.impulseSum = 0, x1
			return
		}
	}

	// Case 4: both clamped to zero (separating at both points).
	if r0 >= 0 && r1 >= 0 {
		b.apply(c, -a0, -a1)
		n0.impulseSum, n1.impulseSum = 0, 0
		return
	}

	// Fallback: the LCP has no feasible sub-case (shouldn't happen for a
	// well-conditioned 2x2 system); leave impulses unchanged this pass.
}

func (b *blockSolver) apply(c *Contact, d0, d1 float64) {
	n0, n1 := &c.normal[0], &c.normal[1]
	applyImpulse(c.bodyA, c.bodyB, n0.rA, n0.rB, n0.normal.Scale(d0))
	applyImpulse(c.bodyA, c.bodyB, n1.rA, n1.rB, n1.normal.Scale(d1))
}

// relativeVelocity returns the velocity of B's material point at rB
// minus A's material point at rA.
func relativeVelocity(bodyA, bodyB *Body, rA, rB geo.Vec2) geo.Vec2 {
	return bodyB.velocityAtWorldOffset(rB).Sub(bodyA.velocityAtWorldOffset(rA))
}

// applyImpulse applies impulse to B and -impulse to A at their
// respective moment arms rA/rB, the shared shape of every constraint
// solver's velocity update.
func applyImpulse(bodyA, bodyB *Body, rA, rB geo.Vec2, impulse geo.Vec2) {
	bodyA.linearVelocity = bodyA.linearVelocity.AddScaled(impulse, -bodyA.invMass)
	bodyA.angularVelocity -= bodyA.invInertia * rA.Cross(impulse)
	bodyB.linearVelocity = bodyB.linearVelocity.AddScaled(impulse, bodyB.invMass)
	bodyB.angularVelocity += bodyB.invInertia * rB.Cross(impulse)
}
