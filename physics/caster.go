package physics

import (
	"math"

	"github.com/bresilla/muli/geo"
)

// RayHit is the result of casting a ray against a single shape: the
// world-space hit point, outward surface normal, and the fraction along
// [from,to] the hit occurred at. Grounded on spec.md §3's ray-cast
// visitor contract ("0 = terminate, <0 = ignore this hit, >0 = new max
// fraction"), which this module's shape-level cast feeds.
type RayHit struct {
	Point    geo.Vec2
	Normal   geo.Vec2
	Fraction float64
}

// RayCastShape casts the segment [from,to] (in world space) against
// shape under transform t, stopping at maxFraction. No original_source
// file was retrieved with a per-shape ray-vs-shape body (only the
// broad-phase tree's conservative bounding test survives in
// aabb_tree.cpp), so the closed-form circle/capsule/polygon math below
// is original code written directly against each shape's definition.
func RayCastShape(s Shape, t geo.Transform, from, to geo.Vec2, maxFraction float64) (RayHit, bool) {
	localFrom := t.MulT(from)
	localTo := t.MulT(to)

	var hit RayHit
	var ok bool
	switch shape := s.(type) {
	case *Circle:
		hit, ok = rayCastCircle(shape, localFrom, localTo, maxFraction)
	case *Capsule:
		hit, ok = rayCastCapsule(shape, localFrom, localTo, maxFraction)
	case *Polygon:
		hit, ok = rayCastPolygon(shape, localFrom, localTo, maxFraction)
	default:
		return RayHit{}, false
	}
	if !ok {
		return RayHit{}, false
	}
	hit.Point = t.Mul(hit.Point)
	hit.Normal = t.MulVec(hit.Normal)
	return hit, true
}

// rayCastCircle solves the quadratic |p + t*d - center|^2 = r^2 and
// reports the smaller root if it lies in [0, maxFraction]; a ray that
// starts inside the circle reports no hit.
func rayCastCircle(c *Circle, from, to geo.Vec2, maxFraction float64) (RayHit, bool) {
	d := to.Sub(from)
	m := from.Sub(c.Center)

	b := m.Dot(d)
	cc := m.Dot(m) - c.R*c.R
	rr := d.Dot(d)
	if rr < geo.Epsilon {
		return RayHit{}, false
	}

	sigma := b*b - rr*cc
	if sigma < 0 {
		return RayHit{}, false
	}

	t := (-b - math.Sqrt(sigma)) / rr
	if t < 0 || t > maxFraction {
		return RayHit{}, false
	}

	point := from.AddScaled(d, t)
	normal := point.Sub(c.Center).Unit()
	return RayHit{Point: point, Normal: normal, Fraction: t}, true
}

// rayCastCapsule tests the segment against the capsule's rectangular
// body (two side planes plus the core segment) and its two round caps,
// keeping the smallest-fraction hit.
func rayCastCapsule(c *Capsule, from, to geo.Vec2, maxFraction float64) (RayHit, bool) {
	axis := c.Axis()
	normal := axis.Perp()

	best := RayHit{Fraction: maxFraction}
	found := false

	tryHit := func(h RayHit, ok bool) {
		if ok && h.Fraction < best.Fraction {
			best = h
			found = true
		}
	}

	// Two side faces, offset by +-R along normal, clipped to the segment span.
	for _, sign := range [2]float64{1, -1} {
		v1 := c.Va.AddScaled(normal, sign*c.R)
		v2 := c.Vb.AddScaled(normal, sign*c.R)
		h, ok := rayCastSegment(v1, v2, normal.Scale(sign), from, to, best.Fraction)
		tryHit(h, ok)
	}

	capA := &Circle{Center: c.Va, R: c.R}
	capB := &Circle{Center: c.Vb, R: c.R}
	tryHit(rayCastCircle(capA, from, to, best.Fraction))
	tryHit(rayCastCircle(capB, from, to, best.Fraction))

	return best, found
}

// rayCastSegment intersects the ray [from,to] with the infinite line
// through v1,v2 having the given outward normal, keeping only hits whose
// projection falls within [v1,v2] and whose approach is against normal.
func rayCastSegment(v1, v2, normal, from, to geo.Vec2, maxFraction float64) (RayHit, bool) {
	d := to.Sub(from)
	denom := normal.Dot(d)
	if denom >= 0 {
		return RayHit{}, false
	}
	t := normal.Dot(v1.Sub(from)) / denom
	if t < 0 || t > maxFraction {
		return RayHit{}, false
	}
	point := from.AddScaled(d, t)
	u := projectParam(v1, v2, point)
	if u < 0 || u > 1 {
		return RayHit{}, false
	}
	return RayHit{Point: point, Normal: normal, Fraction: t}, true
}

// rayCastPolygon tests every edge and keeps the smallest-fraction hit
// whose approach direction opposes the edge's outward normal (entering
// the polygon from outside).
func rayCastPolygon(p *Polygon, from, to geo.Vec2, maxFraction float64) (RayHit, bool) {
	best := RayHit{Fraction: maxFraction}
	found := false
	n := len(p.Verts)
	for i := 0; i < n; i++ {
		v1 := p.Verts[i]
		v2 := p.Verts[(i+1)%n]
		normal := p.Normals[i]
		if h, ok := rayCastSegment(v1, v2, normal, from, to, best.Fraction); ok {
			best = h
			found = true
		}
	}
	return best, found
}
