package physics

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/bresilla/muli/geo"
)

// errMalformedSettings is returned by NewWorld when a WorldSettings
// snapshot is internally inconsistent (spec.md §7's construction-time
// contract-violation category).
var errMalformedSettings = fmt.Errorf("physics: malformed WorldSettings")

// World orchestrates the whole per-frame pipeline of spec.md §4.6: it
// owns the broad-phase tree, the live body/contact/joint sets, and runs
// Step in the fixed order integrate → broad-phase refresh → pair report →
// contact update → solver prepare → velocity iterate → integrate
// positions → position iterate → sleep → clear-moved.
type World struct {
	id string

	settings WorldSettings
	tree     *AABBTree

	bodies  []*Body
	bodyIDs map[uint32]*Body

	contacts map[pairKey]*Contact

	joints []Joint

	// scratch reused across steps to avoid reallocating every tick.
	reportedPairs map[pairKey]bool
}

// pairKey identifies an unordered collider pair by their (stable while
// registered) broad-phase proxy ids.
type pairKey struct{ lo, hi proxyID }

func newPairKey(a, b proxyID) pairKey {
	if a < b {
		return pairKey{a, b}
	}
	return pairKey{b, a}
}

// NewWorld builds a World from a settings snapshot. It returns an error
// only for settings that are internally inconsistent (DT<=0), matching
// spec.md §7's split between fatal construction-time contract violations
// (reported via error) and the in-Step numerical degeneracies reported
// via state enums.
func NewWorld(settings WorldSettings) (*World, error) {
	if settings.DT <= 0 || settings.InvDT <= 0 {
		return nil, errMalformedSettings
	}
	w := &World{
		id:            uuid.NewString(),
		settings:      settings,
		tree:          NewAABBTree(settings.AABBMargin, settings.AABBMultiplier, settings.SAH),
		bodyIDs:       make(map[uint32]*Body),
		contacts:      make(map[pairKey]*Contact),
		reportedPairs: make(map[pairKey]bool),
	}
	return w, nil
}

// ID returns the world's process-unique identifier, stamped at
// construction for log correlation across processes running several
// worlds at once (SPEC_FULL.md §3's telemetry/replay correlation use).
func (w *World) ID() string { return w.id }

// Settings returns the world's current settings snapshot. Mutate a copy
// and call SetSettings between steps — spec.md §5 forbids mutating
// settings mid-step.
func (w *World) Settings() WorldSettings { return w.settings }

// SetSettings replaces the world's settings snapshot wholesale.
func (w *World) SetSettings(s WorldSettings) { w.settings = s }

// Bodies returns every registered body. Do not mutate the slice.
func (w *World) Bodies() []*Body { return w.bodies }

// Joints returns every registered joint. Do not mutate the slice.
func (w *World) Joints() []Joint { return w.joints }

// Contacts returns every live contact (including non-touching ones still
// tracked because the broad phase still reports their pair).
func (w *World) Contacts() []*Contact {
	out := make([]*Contact, 0, len(w.contacts))
	for _, c := range w.contacts {
		out = append(out, c)
	}
	return out
}

// Tree exposes the broad-phase tree directly, for callers that want raw
// ray casts or region queries without going through a body.
func (w *World) Tree() *AABBTree { return w.tree }

// AddBody registers body with the world: every collider it already
// carries gets a broad-phase proxy. Colliders added to body afterward
// must be registered individually via AddCollider.
func (w *World) AddBody(b *Body) {
	if b.destroyed {
		panic("physics: AddBody on a destroyed body")
	}
	w.bodies = append(w.bodies, b)
	w.bodyIDs[b.id] = b
	for _, c := range b.colliders {
		w.registerCollider(c)
	}
}

// AddCollider attaches shape to body and registers its broad-phase
// proxy immediately — the entry point for adding colliders to a body
// that is already part of the world.
func (w *World) AddCollider(b *Body, shape Shape, local geo.Transform, material Material) *Collider {
	c := b.AddCollider(shape, local, material)
	if _, ok := w.bodyIDs[b.id]; ok {
		w.registerCollider(c)
	}
	return c
}

func (w *World) registerCollider(c *Collider) {
	aabb := c.AABB(0)
	c.proxy = w.tree.CreateProxy(c, aabb)
}

// RemoveBody destroys body: every collider's proxy is removed, every
// contact touching it is destroyed, and every joint anchored to it is
// destroyed (spec.md §3's "a body owns its colliders; destruction
// cascades", extended here to the contact/joint edges a registered body
// accumulates).
func (w *World) RemoveBody(b *Body) {
	if b.destroyed {
		return
	}
	for len(b.contactEdges) > 0 {
		w.destroyContact(b.contactEdges[0].contact)
	}
	for len(b.jointEdges) > 0 {
		w.RemoveJoint(b.jointEdges[0].joint)
	}
	for _, c := range b.colliders {
		if c.proxy != invalidProxy {
			w.tree.RemoveProxy(c.proxy)
			c.proxy = invalidProxy
		}
	}
	delete(w.bodyIDs, b.id)
	for i, other := range w.bodies {
		if other == b {
			w.bodies[i] = w.bodies[len(w.bodies)-1]
			w.bodies = w.bodies[:len(w.bodies)-1]
			break
		}
	}
	b.destroyed = true
}

// AddJoint registers a joint, wiring its intrusive body-edge lists.
func (w *World) AddJoint(j Joint) {
	edgeA, edgeB := jointEdges(j)
	a, b := j.BodyA(), j.BodyB()
	*edgeA = jointEdge{other: b, joint: j}
	*edgeB = jointEdge{other: a, joint: j}
	a.jointEdges = append(a.jointEdges, edgeA)
	b.jointEdges = append(b.jointEdges, edgeB)
	w.joints = append(w.joints, j)
}

// RemoveJoint destroys a joint and severs its body-edge links.
func (w *World) RemoveJoint(j Joint) {
	if j.destroyed() {
		return
	}
	edgeA, edgeB := jointEdges(j)
	removeJointEdge(j.BodyA(), edgeA)
	removeJointEdge(j.BodyB(), edgeB)
	for i, other := range w.joints {
		if other == j {
			w.joints[i] = w.joints[len(w.joints)-1]
			w.joints = w.joints[:len(w.joints)-1]
			break
		}
	}
	j.setDestroyed()
}

func removeJointEdge(b *Body, e *jointEdge) {
	for i, edge := range b.jointEdges {
		if edge == e {
			b.jointEdges[i] = b.jointEdges[len(b.jointEdges)-1]
			b.jointEdges = b.jointEdges[:len(b.jointEdges)-1]
			return
		}
	}
}

func (w *World) destroyContact(c *Contact) {
	removeContactEdge(c.bodyA, &c.edgeA)
	removeContactEdge(c.bodyB, &c.edgeB)
	delete(w.contacts, newPairKey(c.colliderA.proxy, c.colliderB.proxy))
}

func removeContactEdge(b *Body, e *contactEdge) {
	for i := range b.contactEdges {
		if b.contactEdges[i] == e {
			b.contactEdges[i] = b.contactEdges[len(b.contactEdges)-1]
			b.contactEdges = b.contactEdges[:len(b.contactEdges)-1]
			return
		}
	}
}

// Step runs exactly one fixed timestep of the pipeline described by
// spec.md §4.6.
func (w *World) Step() {
	s := w.settings

	w.integrateVelocities(s)
	w.refreshBroadPhase(s)
	w.updatePairsAndContacts(s)
	w.prepareConstraints(s)
	for i := 0; i < s.VelocityIterations; i++ {
		w.solveVelocityOnce(s.ImpulseAccumulation)
	}
	w.integratePositions(s)
	w.correctPositions(s)
	if s.Sleeping {
		w.updateSleeping(s)
	}
	w.clearMoved()
}

// integrateVelocities is spec.md §4.6 step 1.
func (w *World) integrateVelocities(s WorldSettings) {
	for _, b := range w.bodies {
		if b.kind != Dynamic || b.sleeping {
			continue
		}
		if s.ApplyGravity {
			b.applyGravity(s.Gravity)
		}
		b.integrateVelocities(s.DT)
		b.applyDamping(s.DT)
		b.clearForces()
	}
}

// refreshBroadPhase is spec.md §4.6 step 2: recompute each non-static,
// non-sleeping collider's tight AABB and move its proxy, using the
// body's current linear velocity scaled by dt as the displacement
// estimate the tree fattens the stored AABB toward.
func (w *World) refreshBroadPhase(s WorldSettings) {
	for _, b := range w.bodies {
		if b.kind == Static || b.sleeping {
			continue
		}
		displacement := b.linearVelocity.Scale(s.DT)
		for _, c := range b.colliders {
			if c.proxy == invalidProxy {
				continue
			}
			aabb := c.AABB(0)
			w.tree.MoveProxy(c.proxy, aabb, displacement, false)
		}
	}
}

// updatePairsAndContacts is spec.md §4.6 steps 3-4: query moved leaves
// against the tree for new/refreshed pairs, create missing contacts,
// destroy ones whose pair went unreported and whose colliders' fat AABBs
// no longer overlap, then re-run the narrow phase on every surviving
// contact, waking both bodies of any contact that starts touching.
func (w *World) updatePairsAndContacts(s WorldSettings) {
	for k := range w.reportedPairs {
		delete(w.reportedPairs, k)
	}

	for _, b := range w.bodies {
		for _, c := range b.colliders {
			if c.proxy == invalidProxy || !w.tree.Moved(c.proxy) {
				continue
			}
			fat := w.tree.FatAABB(c.proxy)
			w.tree.QueryAABB(fat, func(other *Collider) bool {
				w.reportPair(c, other)
				return true
			})
		}
	}

	for k, c := range w.contacts {
		if !w.reportedPairs[k] && !w.tree.FatAABB(c.colliderA.proxy).Overlaps(w.tree.FatAABB(c.colliderB.proxy)) {
			w.destroyContact(c)
		}
	}

	for _, c := range w.contacts {
		wasTouching := c.touching
		c.update(s.ApplyWarmStartingThreshold, s.WarmStartingThreshold)
		if c.touching && !wasTouching {
			wakeBody(c.bodyA)
			wakeBody(c.bodyB)
		}
	}
}

// reportPair is the moved-leaf pair callback of spec.md §4.6 step 3:
// canonicalizes ordering, rejects self-pairs/static-static pairs, and
// applies collision-group filtering before creating or refreshing a
// Contact.
func (w *World) reportPair(a, b *Collider) {
	if a == b {
		return
	}
	if a.body == b.body {
		return
	}
	if a.body.kind == Static && b.body.kind == Static {
		return
	}
	if !a.Filter().ShouldCollide(b.Filter()) {
		return
	}

	ca, cb := a, b
	if ca.body.id > cb.body.id {
		ca, cb = cb, ca
	}
	key := newPairKey(ca.proxy, cb.proxy)
	w.reportedPairs[key] = true
	if _, ok := w.contacts[key]; ok {
		return
	}
	w.contacts[key] = newContact(ca, cb)
	c := w.contacts[key]
	ca.body.contactEdges = append(ca.body.contactEdges, &c.edgeA)
	cb.body.contactEdges = append(cb.body.contactEdges, &c.edgeB)
}

// prepareConstraints is spec.md §4.6 step 6: joints first, then
// contacts, each computing its Jacobian/effective-mass/bias and
// applying its warm-start impulse. Constraints between two sleeping
// bodies, or a sleeping body and a static one, are skipped entirely.
func (w *World) prepareConstraints(s WorldSettings) {
	for _, j := range w.joints {
		if jointAsleep(j) {
			continue
		}
		j.prepare(s.DT, s.InvDT, s)
	}
	for _, c := range w.contacts {
		if !c.touching || bothAsleep(c.bodyA, c.bodyB) {
			continue
		}
		c.prepare(s.DT, s.InvDT, s)
	}
}

// solveVelocityOnce is one pass of spec.md §4.6 step 7: joints then
// contacts (each contact does tangent before normal internally, and
// uses the block solver where prepared).
func (w *World) solveVelocityOnce(accumulate bool) {
	for _, j := range w.joints {
		if jointAsleep(j) {
			continue
		}
		j.solveVelocity()
	}
	for _, c := range w.contacts {
		if !c.touching || bothAsleep(c.bodyA, c.bodyB) {
			continue
		}
		c.solve(accumulate)
	}
}

// integratePositions is spec.md §4.6 step 8.
func (w *World) integratePositions(s WorldSettings) {
	for _, b := range w.bodies {
		if b.sleeping {
			continue
		}
		b.integratePositions(s.DT)
	}
}

// correctPositions is spec.md §4.6 step 9: contacts only (joints fold
// their position error into the Baumgarte bias already applied during
// velocity solving, per original_source's joint Prepare()s, none of
// which carry a separate SolvePositionConstraint — see DESIGN.md).
func (w *World) correctPositions(s WorldSettings) {
	if !s.PositionCorrection {
		return
	}
	slopStop := s.PenetrationSlop * 3
	for i := 0; i < s.PositionIterations; i++ {
		minSep := 0.0
		for _, c := range w.contacts {
			if !c.touching || bothAsleep(c.bodyA, c.bodyB) {
				continue
			}
			sep := c.solvePosition(s.PositionCorrectionBeta, s.PenetrationSlop)
			if sep < minSep {
				minSep = sep
			}
		}
		if minSep > -slopStop {
			break
		}
	}
}

// updateSleeping is spec.md §4.6 step 10: per dynamic, non-static body
// accumulate sleepTime while below both speed tolerances; once every
// body in an island has slept long enough, zero their velocities and
// mark them sleeping. Waking happens in updatePairsAndContacts: a contact
// that starts touching wakes its two bodies. Only those two bodies wake;
// other sleeping bodies they rest against stay asleep, and joints wake
// no body.
func (w *World) updateSleeping(s WorldSettings) {
	islands := buildIslands(w.bodies, w.contactSlice(), w.joints)
	for _, island := range islands {
		allResting := true
		for _, b := range island.Bodies {
			linSlow := b.linearVelocity.Len2() < s.LinearSleepTolerance*s.LinearSleepTolerance
			angSlow := b.angularVelocity*b.angularVelocity < s.AngularSleepTolerance*s.AngularSleepTolerance
			if linSlow && angSlow {
				b.sleepTime += s.DT
			} else {
				b.sleepTime = 0
			}
			if b.sleepTime < s.TimeToSleep {
				allResting = false
			}
		}
		if allResting {
			for _, b := range island.Bodies {
				b.sleeping = true
				b.linearVelocity = geo.Vec2{}
				b.angularVelocity = 0
			}
		}
	}
}

func (w *World) contactSlice() []*Contact {
	out := make([]*Contact, 0, len(w.contacts))
	for _, c := range w.contacts {
		out = append(out, c)
	}
	return out
}

// clearMoved is spec.md §4.6 step 11.
func (w *World) clearMoved() {
	for _, b := range w.bodies {
		for _, c := range b.colliders {
			if c.proxy != invalidProxy {
				w.tree.ClearMoved(c.proxy)
			}
		}
	}
}

func wakeBody(b *Body) {
	if b.kind != Dynamic {
		return
	}
	b.sleeping = false
	b.sleepTime = 0
}

func bothAsleep(a, b *Body) bool {
	aAsleep := a.kind != Dynamic || a.sleeping
	bAsleep := b.kind != Dynamic || b.sleeping
	return aAsleep && bAsleep
}

func jointAsleep(j Joint) bool {
	return bothAsleep(j.BodyA(), j.BodyB())
}

// ----------------------------------------------------------------------------
// Queries, casts, and capability-object visitors (spec.md §6).

// QueryVisitor receives each collider a region/point query admits;
// returning false stops the traversal early, matching the boolean
// convention spec.md §6 mandates for query callbacks.
type QueryVisitor interface {
	QueryCallback(c *Collider) bool
}

// RayCastVisitor receives each collider the ray's conservative bounding
// test admits. Its return value controls the ray's remaining max
// fraction exactly as spec.md §6 specifies (0 terminates, <0 ignores
// this hit, >0 sets a new max fraction).
type RayCastVisitor interface {
	RayCastCallback(input RayCastInput, c *Collider) float64
}

// TraverseVisitor receives every tree node during a full traversal.
type TraverseVisitor interface {
	TraverseCallback(aabb geo.AABB, leaf bool, c *Collider)
}

// QueryAABB visits every collider whose *fat* broad-phase AABB overlaps
// aabb (spec.md §6's queryAABB).
func (w *World) QueryAABB(aabb geo.AABB, v QueryVisitor) {
	w.tree.QueryAABB(aabb, v.QueryCallback)
}

// QueryRegion additionally filters QueryAABB's fat-AABB hits down to
// colliders whose *tight* world AABB actually overlaps aabb —
// SPEC_FULL.md §4's supplemented World.QueryRegion, grounded on
// original_source/src/physics/world.h's distinct QueryRegion entry
// point (the fat-only `QueryPoint`/`QueryAABB` already cover spec.md §6).
func (w *World) QueryRegion(aabb geo.AABB, v QueryVisitor) {
	w.tree.QueryAABB(aabb, func(c *Collider) bool {
		if !c.AABB(0).Overlaps(aabb) {
			return true
		}
		return v.QueryCallback(c)
	})
}

// QueryPoint visits every collider whose fat AABB contains point.
func (w *World) QueryPoint(point geo.Vec2, v QueryVisitor) {
	w.tree.QueryPoint(point, v.QueryCallback)
}

// RayCast casts a segment against the broad phase, narrowing each
// admitted leaf with RayCastShape before invoking the visitor, so
// callers get an actual shape hit rather than just an AABB hit.
func (w *World) RayCast(input RayCastInput, v RayCastVisitor) {
	w.tree.RayCast(input, func(sub RayCastInput, c *Collider) float64 {
		hit, ok := RayCastShape(c.shape, c.WorldTransform(), sub.From, sub.To, sub.MaxFraction)
		if !ok {
			return -1
		}
		return v.RayCastCallback(RayCastInput{From: sub.From, To: sub.To, MaxFraction: hit.Fraction}, c)
	})
}

// Traverse visits every broad-phase tree node.
func (w *World) Traverse(v TraverseVisitor) {
	w.tree.Traverse(v.TraverseCallback)
}

// ShapeCast sweeps a's and b's shapes by the given translations and
// reports the first time of contact, delegating to the package-level
// ShapeCast conservative-advancement routine (spec.md §4.2/§6).
func (w *World) ShapeCast(a, b *Collider, translationA, translationB geo.Vec2) (ShapeCastOutput, bool) {
	return ShapeCast(a.shape, a.WorldTransform(), b.shape, b.WorldTransform(), translationA, translationB, w.settings.PenetrationSlop, w.settings.LinearSlop)
}

// jointEdges exposes a joint's two intrusive edge pointers; kept as a
// free function (rather than growing the public Joint interface) since
// only World's registration bookkeeping needs it.
func jointEdges(j Joint) (*jointEdge, *jointEdge) {
	type edgeHolder interface {
		edgesPtr() (*jointEdge, *jointEdge)
	}
	return j.(edgeHolder).edgesPtr()
}

func (j *jointBase) edgesPtr() (*jointEdge, *jointEdge) { return &j.edgeA, &j.edgeB }
