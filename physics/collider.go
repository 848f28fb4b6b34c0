package physics

import "github.com/bresilla/muli/geo"

// Material overrides a shape's physical properties at the collider level
// (spec.md §3: "material override").
type Material struct {
	Density     float64
	Friction    float64
	Restitution float64
}

// DefaultMaterial is used when a caller does not specify one.
var DefaultMaterial = Material{Density: 1, Friction: 0.5, Restitution: 0}

// proxyID identifies a collider's single broad-phase tree node. Per
// spec.md §3, a collider has exactly one proxy while registered.
type proxyID int32

const invalidProxy proxyID = -1

// Collider ties a Shape to a Body with a local offset transform, a
// material override, and a broad-phase proxy handle.
type Collider struct {
	body     *Body
	shape    Shape
	local    geo.Transform
	material Material
	filter   Filter
	hasFilterOverride bool
	proxy    proxyID
}

// Body returns the owning body.
func (c *Collider) Body() *Body { return c.body }

// Shape returns the collider's shape.
func (c *Collider) Shape() Shape { return c.shape }

// Local returns the collider's local-space offset transform relative to
// its body.
func (c *Collider) Local() geo.Transform { return c.local }

// WorldTransform returns the collider's full world transform (body
// transform composed with the collider's local offset).
func (c *Collider) WorldTransform() geo.Transform {
	return geo.Mul2(c.body.transform, c.local)
}

// Material returns the collider's material.
func (c *Collider) Material() Material { return c.material }

// Filter returns the effective collision filter: the collider's own
// override if set, otherwise its body's filter.
func (c *Collider) Filter() Filter {
	if c.hasFilterOverride {
		return c.filter
	}
	return c.body.filter
}

// SetFilter overrides the collision filter for this collider specifically.
func (c *Collider) SetFilter(f Filter) {
	c.filter = f
	c.hasFilterOverride = true
}

// AABB returns the collider's tight world AABB expanded by margin.
func (c *Collider) AABB(margin float64) geo.AABB {
	return c.shape.AABB(c.WorldTransform(), margin)
}
