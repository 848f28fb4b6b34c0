package physics

import "github.com/bresilla/muli/geo"

const maxManifoldPoints = 2

// ManifoldPoint is one contact point: its world position, a feature id
// stable across frames (for warm starting), and the signed separation
// along the manifold normal (negative means penetrating).
type ManifoldPoint struct {
	Point      geo.Vec2
	ID         ID2
	Separation float64
}

// ContactManifold is the narrow phase's output: a shared separating
// normal (pointing from A to B) and up to two contact points. Grounded
// on original_source/include/muli/collision.h's ContactManifold.
type ContactManifold struct {
	Normal      geo.Vec2
	Points      [maxManifoldPoints]ManifoldPoint
	NumPoints   int
	Penetration float64
}

// circleVsCircle builds the (at most one point) manifold between two
// circles. Grounded on original_source/src/collision/collision.cpp's
// CircleVsCircle.
func circleVsCircle(a *Circle, tfA geo.Transform, b *Circle, tfB geo.Transform) (ContactManifold, bool) {
	pa := tfA.Mul(a.Center)
	pb := tfB.Mul(b.Center)
	d := pb.Sub(pa)
	dist := d.Len()
	radiusSum := a.R + b.R
	if dist >= radiusSum {
		return ContactManifold{}, false
	}

	var normal geo.Vec2
	if dist < geo.Epsilon {
		normal = geo.V2(1, 0)
	} else {
		normal = d.Scale(1 / dist)
	}
	point := pa.AddScaled(normal, a.R)
	m := ContactManifold{Normal: normal, Penetration: radiusSum - dist}
	m.Points[0] = ManifoldPoint{Point: point, ID: 0, Separation: dist - radiusSum}
	m.NumPoints = 1
	return m, true
}

// polygonVsCircle (also used for capsule vs circle, since a capsule's
// FeaturedEdge degenerates to its single segment) finds the closest
// point on the reference shape's boundary to the circle center. Grounded
// on original_source/src/collision/collision.cpp's PolygonVsCircle.
func polygonVsCircle(poly Shape, tfPoly geo.Transform, circle *Circle, tfCircle geo.Transform) (ContactManifold, bool) {
	centerWorld := tfCircle.Mul(circle.Center)
	centerLocal := tfPoly.MulT(centerWorld)

	n := poly.VertexCount()
	bestSep := negInf
	bestEdge := 0

	// Use the polygon's own edge list directly when available (Polygon),
	// falling back to a single segment for a Capsule's two-vertex shape.
	type edged interface{ edgeAt(i int) (geo.Vec2, geo.Vec2, geo.Vec2) }
	ed, ok := poly.(edged)
	if !ok {
		return ContactManifold{}, false
	}

	var refV1, refV2, refN geo.Vec2
	for i := 0; i < n; i++ {
		v1, v2, normal := ed.edgeAt(i)
		sep := normal.Dot(centerLocal.Sub(v1))
		if sep > bestSep {
			bestSep = sep
			bestEdge = i
			refV1, refV2, refN = v1, v2, normal
		}
	}
	_ = bestEdge

	radiusSum := poly.Radius() + circle.R
	if bestSep > radiusSum {
		return ContactManifold{}, false
	}

	var localPoint geo.Vec2
	var localNormal geo.Vec2
	if bestSep <= 0 {
		// Center projects inside the reference face: push straight out
		// along the face normal.
		localNormal = refN
		localPoint = centerLocal.Sub(refN.Scale(bestSep))
	} else {
		t := projectParam(refV1, refV2, centerLocal)
		switch {
		case t <= 0:
			localNormal = centerLocal.Sub(refV1).Unit()
			localPoint = refV1
		case t >= 1:
			localNormal = centerLocal.Sub(refV2).Unit()
			localPoint = refV2
		default:
			localNormal = refN
			localPoint = refV1.AddScaled(refV2.Sub(refV1), t)
		}
	}
	if localNormal.Len2() < geo.Epsilon {
		localNormal = refN
	}

	normalWorld := tfPoly.MulVec(localNormal)
	dist := centerLocal.Sub(localPoint).Dot(localNormal)
	if dist >= radiusSum {
		return ContactManifold{}, false
	}

	contact := tfPoly.Mul(localPoint).AddScaled(normalWorld, poly.Radius())
	m := ContactManifold{Normal: normalWorld, Penetration: radiusSum - dist}
	m.Points[0] = ManifoldPoint{Point: contact, ID: 0, Separation: dist - radiusSum}
	m.NumPoints = 1
	return m, true
}

const negInf = -1e30

// edgeAt implements the edged interface for Polygon: the i'th edge as
// (v1, v2, outward normal).
func (p *Polygon) edgeAt(i int) (geo.Vec2, geo.Vec2, geo.Vec2) {
	n := len(p.Verts)
	return p.Verts[i], p.Verts[(i+1)%n], p.Normals[i]
}

// edgeAt implements the edged interface for Capsule: its one segment,
// reported twice so the reference-edge scan above degenerates cleanly.
func (c *Capsule) edgeAt(i int) (geo.Vec2, geo.Vec2, geo.Vec2) {
	axis := c.Axis()
	normal := axis.Perp()
	if i == 1 {
		return c.Vb, c.Va, normal.Neg()
	}
	return c.Va, c.Vb, normal
}

// clipEdge implements Sutherland-Hodgman clipping of the incident edge
// against the two side planes of the reference edge, keeping points that
// remain within the reference edge's span. Grounded on
// original_source/src/collision/collision.cpp's ClipEdge.
func clipEdge(incident Edge, refV1, refV2 geo.Vec2, refTangent geo.Vec2) (Edge, bool) {
	v1, v2 := incident.V1, incident.V2
	id1, id2 := incident.ID1, incident.ID2v

	// Clip against the plane at refV1 facing along +tangent.
	dist1 := refTangent.Dot(v1.Sub(refV1))
	dist2 := refTangent.Dot(v2.Sub(refV1))
	if dist1 < 0 && dist2 < 0 {
		return Edge{}, false
	}
	if dist1 < 0 {
		t := dist1 / (dist1 - dist2)
		v1 = v1.AddScaled(v2.Sub(v1), t)
	} else if dist2 < 0 {
		t := dist2 / (dist2 - dist1)
		v2 = v2.AddScaled(v1.Sub(v2), t)
	}

	// Clip against the plane at refV2 facing along -tangent.
	dist1 = refTangent.Dot(refV2.Sub(v1))
	dist2 = refTangent.Dot(refV2.Sub(v2))
	if dist1 < 0 && dist2 < 0 {
		return Edge{}, false
	}
	if dist1 < 0 {
		t := dist1 / (dist1 - dist2)
		v1 = v1.AddScaled(v2.Sub(v1), t)
	} else if dist2 < 0 {
		t := dist2 / (dist2 - dist1)
		v2 = v2.AddScaled(v1.Sub(v2), t)
	}

	return Edge{V1: v1, V2: v2, ID1: id1, ID2v: id2}, true
}

// findContactPoints clips the incident edge (from whichever shape's
// featured edge is more parallel to normal) against the reference edge
// (from the shape whose featured edge is more perpendicular to normal), then
// keeps clipped points whose separation along normal is non-positive
// (within the combined radius). Grounded on
// original_source/src/collision/collision.cpp's FindContactPoints, used
// for the convex-vs-convex (polygon/capsule, non-circle) pairs.
func findContactPoints(normal geo.Vec2, a Shape, tfA geo.Transform, b Shape, tfB geo.Transform) ContactManifold {
	localNormalA := tfA.MulTVec(normal)
	localNormalB := tfB.MulTVec(normal.Neg())

	edgeA := a.FeaturedEdge(localNormalA)
	edgeB := b.FeaturedEdge(localNormalB)

	edgeADir := edgeA.V2.Sub(edgeA.V1).Unit()
	edgeBDir := edgeB.V2.Sub(edgeB.V1).Unit()

	flip := false
	var refEdge, incEdge Edge
	var refShape, incShape Shape
	var refTf, incTf geo.Transform
	var refTangent geo.Vec2

	if absDot(edgeADir, localNormalA) <= absDot(edgeBDir, localNormalB) {
		refEdge, incEdge = edgeA, edgeB
		refShape, incShape = a, b
		refTf, incTf = tfA, tfB
		refTangent = edgeADir
	} else {
		refEdge, incEdge = edgeB, edgeA
		refShape, incShape = b, a
		refTf, incTf = tfB, tfA
		refTangent = edgeBDir
		flip = true
	}

	refV1 := refTf.Mul(refEdge.V1)
	refV2 := refTf.Mul(refEdge.V2)
	incV1 := incTf.Mul(incEdge.V1)
	incV2 := incTf.Mul(incEdge.V2)
	worldTangent := refTf.MulVec(refTangent)

	worldIncident := Edge{V1: incV1, V2: incV2, ID1: incEdge.ID1, ID2v: incEdge.ID2v}
	clipped, ok := clipEdge(worldIncident, refV1, refV2, worldTangent)
	if !ok {
		return ContactManifold{}
	}

	refNormal := worldTangent.Perp().Neg()
	if refNormal.Dot(normal) < 0 {
		refNormal = refNormal.Neg()
	}

	radiusSum := refShape.Radius() + incShape.Radius()

	m := ContactManifold{Normal: normal}
	candidates := []struct {
		p  geo.Vec2
		id ID2
	}{
		{clipped.V1, clipped.ID1},
		{clipped.V2, clipped.ID2v},
	}
	for _, c := range candidates {
		sep := refNormal.Dot(c.p.Sub(refV1)) - radiusSum
		if sep <= 0 && m.NumPoints < maxManifoldPoints {
			id := c.id
			if flip {
				id = c.id | (1 << 8)
			}
			m.Points[m.NumPoints] = ManifoldPoint{Point: c.p, ID: id, Separation: sep}
			m.NumPoints++
		}
	}
	return m
}

func absDot(a, b geo.Vec2) float64 {
	d := a.Dot(b)
	if d < 0 {
		return -d
	}
	return d
}
