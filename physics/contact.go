package physics

import "github.com/bresilla/muli/geo"

// contactEdge is an intrusive list node linking a Body to one Contact it
// participates in, mirroring original_source/include/spe/contact.h's
// ContactEdge (other/contact/prev/next). Island assembly and per-body
// contact iteration walk these edges instead of a global contact map.
type contactEdge struct {
	other   *Body
	contact *Contact
}

// Contact is a persistent narrow-phase pairing between two colliders.
// It survives across steps so accumulated impulses can be warm-started;
// World destroys it once the broad phase no longer reports its pair and
// the two colliders' fat AABBs no longer overlap.
// Grounded on original_source/include/spe/contact.h's Contact class and
// the gated (APPLY_WARM_STARTING_THRESHOLD) variant of
// src/constraint/contact/contact.cpp's Contact::Update.
type Contact struct {
	colliderA, colliderB *Collider
	bodyA, bodyB         *Body

	edgeA, edgeB contactEdge

	touching   bool
	persistent bool
	refreshed  bool

	friction     float64
	restitution  float64
	surfaceSpeed float64

	manifold ContactManifold

	normal  [maxManifoldPoints]normalSolver
	tangent [maxManifoldPoints]tangentSolver
	block   blockSolver
}

func newContact(a, b *Collider) *Contact {
	c := &Contact{colliderA: a, colliderB: b, bodyA: a.body, bodyB: b.body}
	c.friction = combinedFriction(a.body, b.body)
	c.restitution = combinedRestitution(a.body, b.body)
	c.edgeA = contactEdge{other: b.body, contact: c}
	c.edgeB = contactEdge{other: a.body, contact: c}
	return c
}

// Touching reports whether the narrow phase currently finds these
// colliders overlapping.
func (c *Contact) Touching() bool { return c.touching }

// Manifold returns the current contact manifold (normal and points).
func (c *Contact) Manifold() ContactManifold { return c.manifold }

// ColliderA and ColliderB return the two colliders this contact pairs.
func (c *Contact) ColliderA() *Collider { return c.colliderA }
func (c *Contact) ColliderB() *Collider { return c.colliderB }

// update re-runs the narrow phase and carries over accumulated impulses
// for contact points whose feature id matches a point from the previous
// frame, optionally gated by a squared-distance threshold (spec.md's
// resolved Open Question: the gated variant of Contact::Update is the
// one this module implements, with the gate itself configurable via
// WorldSettings).
func (c *Contact) update(applyThreshold bool, thresholdSq float64) {
	old := c.manifold
	var oldNormalImpulse, oldTangentImpulse [maxManifoldPoints]float64
	for i := 0; i < old.NumPoints; i++ {
		oldNormalImpulse[i] = c.normal[i].impulseSum
		oldTangentImpulse[i] = c.tangent[i].impulseSum
	}

	tfA := c.colliderA.WorldTransform()
	tfB := c.colliderB.WorldTransform()
	manifold, hit := Collide(c.colliderA.shape, tfA, c.colliderB.shape, tfB)
	c.touching = hit
	c.manifold = manifold
	if !hit {
		c.manifold.NumPoints = 0
		return
	}

	for n := 0; n < manifold.NumPoints; n++ {
		matched := -1
		for o := 0; o < old.NumPoints; o++ {
			if manifold.Points[n].ID != old.Points[o].ID {
				continue
			}
			if applyThreshold && manifold.Points[n].Point.Dist2(old.Points[o].Point) >= thresholdSq {
				continue
			}
			matched = o
			break
		}
		if matched >= 0 {
			c.normal[n].impulseSum = oldNormalImpulse[matched]
			c.tangent[n].impulseSum = oldTangentImpulse[matched]
			c.persistent = true
		} else {
			c.normal[n].impulseSum = 0
			c.tangent[n].impulseSum = 0
		}
	}
}

// prepare computes each point solver's Jacobian/effective-mass/bias and
// applies the warm-start impulse, then (for a 2-point manifold with
// block solving enabled) also prepares the joint 2x2 block solve.
// Grounded on spec.md §4.4 and
// original_source/src/constraint/contact/contact.cpp's Contact::Prepare.
func (c *Contact) prepare(dt, invDt float64, settings WorldSettings) {
	tangent := c.manifold.Normal.Perp()
	for i := 0; i < c.manifold.NumPoints; i++ {
		point := c.manifold.Points[i].Point
		c.normal[i].prepare(c.bodyA, c.bodyB, point, c.manifold.Normal, c.manifold.Penetration, c.restitution, invDt, settings)
		c.tangent[i].prepare(c.bodyA, c.bodyB, point, tangent, c.surfaceSpeed, invDt, settings)
	}
	if c.manifold.NumPoints == 2 && settings.BlockSolve {
		c.block.prepare(c)
	} else {
		c.block.enabled = false
	}
}

// solve runs one velocity-iteration pass: tangent (friction) first using
// the current normal accumulation as the friction cone radius, then
// normal (via the block solver when prepared, else per point). Grounded
// on Contact::Solve.
func (c *Contact) solve(accumulate bool) {
	for i := 0; i < c.manifold.NumPoints; i++ {
		c.tangent[i].solve(c.bodyA, c.bodyB, c.friction, &c.normal[i], accumulate)
	}
	if c.block.enabled {
		c.block.solve(c)
	} else {
		for i := 0; i < c.manifold.NumPoints; i++ {
			c.normal[i].solve(c.bodyA, c.bodyB, accumulate)
		}
	}
}

// solvePosition runs one Non-Linear-Gauss-Seidel position-correction
// pass: re-detects separation from the bodies' current (post velocity-
// integration) transforms and pushes them apart along the manifold
// normal by a fraction of the remaining penetration, without touching
// velocity. Returns the minimum (most negative) separation seen, so the
// caller can stop iterating once every contact is within slop. Grounded
// on spec.md §4.4's "Position correction" paragraph.
func (c *Contact) solvePosition(beta, slop float64) float64 {
	if c.manifold.NumPoints == 0 {
		return 0
	}
	tfA := c.colliderA.WorldTransform()
	tfB := c.colliderB.WorldTransform()
	m, hit := Collide(c.colliderA.shape, tfA, c.colliderB.shape, tfB)
	if !hit {
		return 0
	}

	minSep := 0.0
	for i := 0; i < m.NumPoints; i++ {
		sep := m.Points[i].Separation
		if sep < minSep {
			minSep = sep
		}
		correction := beta * geo.Max2(0, -sep-slop)
		if correction <= 0 {
			continue
		}
		rA := m.Points[i].Point.Sub(c.bodyA.transform.Position)
		rB := m.Points[i].Point.Sub(c.bodyB.transform.Position)
		invMassSum := c.bodyA.invMass + c.bodyB.invMass +
			c.bodyA.invInertia*squareCross(rA, m.Normal) +
			c.bodyB.invInertia*squareCross(rB, m.Normal)
		if invMassSum < geo.Epsilon {
			continue
		}
		impulse := correction / invMassSum
		push := m.Normal.Scale(impulse)
		c.bodyA.transform.Position = c.bodyA.transform.Position.Sub(push.Scale(c.bodyA.invMass))
		c.bodyB.transform.Position = c.bodyB.transform.Position.Add(push.Scale(c.bodyB.invMass))
	}
	return minSep
}

func squareCross(r, n geo.Vec2) float64 {
	rn := r.Cross(n)
	return rn * rn
}
