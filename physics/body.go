package physics

import (
	"math"
	"sync/atomic"

	"github.com/bresilla/muli/geo"
)

// BodyType selects how a body participates in the simulation.
type BodyType int

const (
	Static BodyType = iota
	Kinematic
	Dynamic
)

// Filter is a collision group/mask pair. Two colliders interact only when
// their masks both accept the other's group (standard broad-category
// collision filtering).
type Filter struct {
	Group uint32
	Mask  uint32
}

// DefaultFilter accepts every other filter.
var DefaultFilter = Filter{Group: 1, Mask: 0xffffffff}

// ShouldCollide reports whether a and b are allowed to generate a contact.
func (f Filter) ShouldCollide(o Filter) bool {
	return f.Mask&o.Group != 0 && o.Mask&f.Group != 0
}

// bodyUUID is a process-wide monotonically increasing id source, assigned
// via an atomic counter rather than a mutex since nothing else about body
// construction needs to hold a lock.
var bodyUUID uint32

// Body is a rigid body: a transform, its motion state, and the colliders
// attached to it. It is a concrete struct rather than an interface, since
// nothing needs to decouple this package from a caller's own scene-node
// types.
type Body struct {
	id   uint32
	kind BodyType

	transform geo.Transform
	guess     geo.Transform // predicted transform used while island/TOI queries are in flight

	linearVelocity  geo.Vec2
	angularVelocity float64
	force           geo.Vec2
	torque          float64

	linearDamping  float64
	angularDamping float64

	density     float64
	mass        float64
	invMass     float64
	inertia     float64
	invInertia  float64
	friction    float64
	restitution float64
	surfaceSpeed float64

	filter Filter

	colliders []*Collider

	sleeping    bool
	resting     bool
	sleepTime   float64
	islandID    int32

	destroyed bool

	// world-assigned scratch, owned by World; zero value until registered.
	contactEdges []*contactEdge
	jointEdges   []*jointEdge
}

// NewBody creates an unregistered body of the given type at the origin.
// Call World.AddBody to bring it into a simulation.
func NewBody(kind BodyType) *Body {
	b := &Body{
		id:          atomic.AddUint32(&bodyUUID, 1),
		kind:        kind,
		transform:   geo.Identity2(),
		guess:       geo.Identity2(),
		friction:    0.5,
		restitution: 0.0,
		filter:      DefaultFilter,
	}
	if kind == Static {
		b.invMass, b.invInertia = 0, 0
	}
	return b
}

// ID returns the body's unique, monotonically increasing identifier.
func (b *Body) ID() uint32 { return b.id }

// Type returns whether this is a static, kinematic, or dynamic body.
func (b *Body) Type() BodyType { return b.kind }

// Transform returns the body's current world transform.
func (b *Body) Transform() geo.Transform { return b.transform }

// Position returns the body's world position.
func (b *Body) Position() geo.Vec2 { return b.transform.Position }

// Rotation returns the body's world rotation.
func (b *Body) Rotation() geo.Rotation { return b.transform.Rotation }

// SetTransform directly places the body, bypassing integration. Each
// World.Step refits the broad-phase proxies of non-static, non-sleeping
// bodies from their current transform; a static or sleeping body's
// proxies are not refit after SetTransform.
func (b *Body) SetTransform(t geo.Transform) { b.transform = t; b.guess = t }

// LinearVelocity returns the current linear velocity.
func (b *Body) LinearVelocity() geo.Vec2 { return b.linearVelocity }

// AngularVelocity returns the current angular velocity (radians/second).
func (b *Body) AngularVelocity() float64 { return b.angularVelocity }

// SetLinearVelocity sets the linear velocity directly (static bodies
// ignore it).
func (b *Body) SetLinearVelocity(v geo.Vec2) {
	if b.kind == Static {
		return
	}
	b.linearVelocity = v
}

// SetAngularVelocity sets the angular velocity directly.
func (b *Body) SetAngularVelocity(w float64) {
	if b.kind == Static {
		return
	}
	b.angularVelocity = w
}

// Push adds v to the body's linear velocity (a velocity change, i.e. an
// impulse times invMass).
func (b *Body) Push(v geo.Vec2) { b.linearVelocity = b.linearVelocity.Add(v) }

// Turn adds to the body's angular velocity.
func (b *Body) Turn(w float64) { b.angularVelocity += w }

// Stop zeroes linear velocity.
func (b *Body) Stop() { b.linearVelocity = geo.Vec2{} }

// Rest zeroes angular velocity.
func (b *Body) Rest() { b.angularVelocity = 0 }

// ApplyForce adds a force (applied at the center of mass) for the next
// integration step.
func (b *Body) ApplyForce(f geo.Vec2) {
	if b.kind != Dynamic {
		return
	}
	b.force = b.force.Add(f)
}

// ApplyTorque adds a torque for the next integration step.
func (b *Body) ApplyTorque(t float64) {
	if b.kind != Dynamic {
		return
	}
	b.torque += t
}

// ApplyLinearImpulse applies an instantaneous impulse at a world point,
// updating both linear and angular velocity.
func (b *Body) ApplyLinearImpulse(impulse, worldPoint geo.Vec2) {
	if b.invMass == 0 {
		return
	}
	r := worldPoint.Sub(b.transform.Position)
	b.linearVelocity = b.linearVelocity.AddScaled(impulse, b.invMass)
	b.angularVelocity += b.invInertia * r.Cross(impulse)
}

// InvMass returns the inverse mass (0 for static/infinite-mass bodies).
func (b *Body) InvMass() float64 { return b.invMass }

// InvInertia returns the inverse moment of inertia.
func (b *Body) InvInertia() float64 { return b.invInertia }

// Mass returns the body's aggregate mass.
func (b *Body) Mass() float64 { return b.mass }

// SetFriction sets the body's surface friction coefficient.
func (b *Body) SetFriction(f float64) { b.friction = f }

// SetRestitution sets the body's bounciness coefficient.
func (b *Body) SetRestitution(r float64) { b.restitution = r }

// SetSurfaceSpeed sets a conveyor-belt-style tangential surface speed
// added as an extra bias during friction solving.
func (b *Body) SetSurfaceSpeed(s float64) { b.surfaceSpeed = s }

// SetDamping sets exponential linear/angular velocity damping factors.
func (b *Body) SetDamping(linear, angular float64) {
	b.linearDamping, b.angularDamping = linear, angular
}

// SetFilter sets the collision group/mask pair.
func (b *Body) SetFilter(f Filter) { b.filter = f }

// Filter returns the body's collision group/mask pair.
func (b *Body) Filter() Filter { return b.filter }

// IsSleeping reports whether the body is currently asleep.
func (b *Body) IsSleeping() bool { return b.sleeping }

// Colliders returns the colliders attached to this body. Do not mutate the
// returned slice.
func (b *Body) Colliders() []*Collider { return b.colliders }

// AddCollider attaches shape to this body with an optional local offset
// transform and returns the new Collider. A body exclusively owns its
// colliders; destroying the body destroys them.
func (b *Body) AddCollider(shape Shape, local geo.Transform, material Material) *Collider {
	c := &Collider{
		body:     b,
		shape:    shape,
		local:    local,
		material: material,
		proxy:    invalidProxy,
	}
	b.colliders = append(b.colliders, c)
	b.recomputeMass()
	return c
}

// recomputeMass aggregates mass/inertia across all colliders. Non-dynamic
// bodies always carry zero inverse mass/inertia so they never respond to
// forces or impulses.
func (b *Body) recomputeMass() {
	if b.kind != Dynamic {
		b.mass, b.invMass, b.inertia, b.invInertia = 0, 0, 0, 0
		return
	}
	var mass, inertia float64
	var weightedCentroid geo.Vec2
	for _, c := range b.colliders {
		density := c.material.Density
		if density <= 0 {
			density = 1
		}
		area := c.shape.Area()
		m := density * area
		centroid := c.local.Mul(c.shape.Centroid())
		mass += m
		weightedCentroid = weightedCentroid.AddScaled(centroid, m)
	}
	if mass < geo.Epsilon {
		// No colliders yet, or all zero-area: leave mass/inertia at zero
		// rather than dividing by it; a dynamic body only needs positive
		// mass once a collider gives it substance.
		return
	}
	com := weightedCentroid.Scale(1.0 / mass)
	for _, c := range b.colliders {
		density := c.material.Density
		if density <= 0 {
			density = 1
		}
		area := c.shape.Area()
		m := density * area
		centroid := c.local.Mul(c.shape.Centroid())
		localI := c.shape.Inertia(m)
		d2 := centroid.Dist2(com)
		inertia += localI + m*d2
	}
	b.mass = mass
	b.invMass = 1.0 / mass
	b.inertia = inertia
	if inertia < geo.Epsilon {
		b.invInertia = 0
	} else {
		b.invInertia = 1.0 / inertia
	}
}

// applyGravity adds gravity*mass worth of force for this step. Routing
// gravity through the force accumulator rather than directly into velocity
// keeps damping and integration in one place.
func (b *Body) applyGravity(gravity geo.Vec2) {
	if b.kind != Dynamic {
		return
	}
	b.force = b.force.AddScaled(gravity, b.mass)
}

// integrateVelocities advances linear/angular velocity by one step's worth
// of accumulated force/torque (symplectic Euler: velocity first, position
// later).
func (b *Body) integrateVelocities(dt float64) {
	if b.kind != Dynamic {
		return
	}
	b.linearVelocity = b.linearVelocity.AddScaled(b.force, b.invMass*dt)
	b.angularVelocity += b.invInertia * b.torque * dt
}

// applyDamping scales velocities by an exponential damping factor.
func (b *Body) applyDamping(dt float64) {
	b.linearVelocity = b.linearVelocity.Scale(math.Pow(1-b.linearDamping, dt))
	b.angularVelocity *= math.Pow(1-b.angularDamping, dt)
}

// clearForces zeroes the accumulated force/torque, called once per step
// after integrateVelocities has consumed them.
func (b *Body) clearForces() {
	b.force = geo.Vec2{}
	b.torque = 0
}

// integratePositions advances the body's transform by its current
// velocities over dt.
func (b *Body) integratePositions(dt float64) {
	if b.kind == Static {
		return
	}
	pos := b.transform.Position.AddScaled(b.linearVelocity, dt)
	rot := b.transform.Rotation.Integrate(b.angularVelocity, dt)
	b.transform = geo.Transform{Position: pos, Rotation: rot}
}

// velocityAtWorldOffset returns the linear velocity of the point r (given
// as an offset from the center of mass) due to both linear and angular
// motion.
func (b *Body) velocityAtWorldOffset(r geo.Vec2) geo.Vec2 {
	return geo.CrossScalar(b.angularVelocity, r).Add(b.linearVelocity)
}

// combinedFriction mixes two bodies' friction coefficients geometrically.
func combinedFriction(a, b *Body) float64 {
	return math.Sqrt(a.friction * b.friction)
}

// combinedRestitution mixes two bodies' restitution by simple product.
func combinedRestitution(a, b *Body) float64 {
	return a.restitution * b.restitution
}

// worldAABB returns the union AABB of all of the body's colliders' tight
// world AABBs, used by queries that operate per-body rather than per-
// collider.
func (b *Body) worldAABB() (geo.AABB, bool) {
	if len(b.colliders) == 0 {
		return geo.AABB{}, false
	}
	box := b.colliders[0].shape.AABB(worldOf(b, b.colliders[0]), 0)
	for _, c := range b.colliders[1:] {
		box = geo.Union(box, c.shape.AABB(worldOf(b, c), 0))
	}
	return box, true
}

func worldOf(b *Body, c *Collider) geo.Transform {
	return geo.Mul2(b.transform, c.local)
}
