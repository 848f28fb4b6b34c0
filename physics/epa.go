package physics

import "github.com/bresilla/muli/geo"

// epaEdge is one edge of the expanding polytope, with its outward normal
// and distance from the origin precomputed so the closest-edge scan is
// a single pass. Grounded on original_source/src/collision/collision.cpp's
// EPA polytope bookkeeping (the older spe/polytope.cpp's Edge struct
// informs the field shape since no muli-namespace Polytope header was
// retrieved).
type epaEdge struct {
	p0, p1   supportPoint
	normal   geo.Vec2
	distance float64
	index    int // polytope index of p0; the new support point is inserted after it
}

func newEdge(p0, p1 supportPoint) epaEdge {
	e := p1.point.Sub(p0.point)
	var normal geo.Vec2
	if e.Len2() < geo.Epsilon {
		normal = geo.Vec2{}
	} else {
		// Rotate edge -90deg; this is only the outward normal if the
		// polytope is CCW-wound, which the terminal GJK simplex does not
		// guarantee. Flip below when it points inward instead.
		normal = geo.V2(e.Y, -e.X).Unit()
	}
	distance := normal.Dot(p0.point)
	if distance < 0 {
		// Polytope wound CW for this edge: the normal above points inward.
		// Grounded on original_source/src/collision/polytope.cpp's
		// Polytope::GetClosestEdge winding guard.
		normal = normal.Neg()
		distance = -distance
	}
	return epaEdge{p0: p0, p1: p1, normal: normal, distance: distance}
}

// epaResult is the penetration depth and separating normal/witness points
// recovered once EPA converges. Grounded on
// original_source/include/muli/collision.h's EPAResult.
type epaResult struct {
	normal       geo.Vec2
	penetration  float64
	contactA     geo.Vec2
	contactB     geo.Vec2
}

// epa expands the terminal GJK simplex (which must already enclose the
// origin, i.e. gjkResult.state == gjkOverlap) into the CSO boundary to
// find the minimum-translation separating normal and depth. Grounded on
// original_source/src/collision/collision.cpp's EPA.
func epa(a Shape, tfA geo.Transform, b Shape, tfB geo.Transform, s simplex, maxIter int, tolerance float64) epaResult {
	polytope := make([]supportPoint, 0, 8)
	for i := 0; i < s.count; i++ {
		polytope = append(polytope, s.verts[i])
	}
	// A 1- or 2-vertex simplex can't bound an area; pad it out along the
	// normal/perpendicular direction so the edge list below is well formed.
	for len(polytope) < 3 {
		dir := geo.V2(1, 0)
		if len(polytope) == 2 {
			edge := polytope[1].point.Sub(polytope[0].point)
			dir = edge.Perp().Unit()
			if dir.Len2() < geo.Epsilon {
				dir = geo.V2(0, 1)
			}
		}
		polytope = append(polytope, cso(a, tfA, b, tfB, dir))
	}

	for iter := 0; iter < maxIter; iter++ {
		closest, edgeIdx := closestEdge(polytope)

		support := cso(a, tfA, b, tfB, closest.normal)
		d := closest.normal.Dot(support.point)

		if d-closest.distance < tolerance {
			return finishEPA(closest)
		}

		// Insert the new support point after edgeIdx, expanding the polytope.
		polytope = insertAfter(polytope, edgeIdx, support)
	}

	closest, _ := closestEdge(polytope)
	return finishEPA(closest)
}

func closestEdge(polytope []supportPoint) (epaEdge, int) {
	n := len(polytope)
	best := newEdge(polytope[n-1], polytope[0])
	best.index = n - 1
	bestDist := best.distance

	for i := 0; i < n-1; i++ {
		e := newEdge(polytope[i], polytope[i+1])
		e.index = i
		if e.distance < bestDist {
			best = e
			bestDist = e.distance
		}
	}
	return best, best.index
}

func insertAfter(polytope []supportPoint, idx int, p supportPoint) []supportPoint {
	out := make([]supportPoint, 0, len(polytope)+1)
	out = append(out, polytope[:idx+1]...)
	out = append(out, p)
	out = append(out, polytope[idx+1:]...)
	return out
}

func finishEPA(e epaEdge) epaResult {
	t := projectParam(e.p0.point, e.p1.point, e.normal.Scale(e.distance))
	t = geo.Clamp(t, 0, 1)
	ca := lerpVec(e.p0.a.position, e.p1.a.position, t)
	cb := lerpVec(e.p0.b.position, e.p1.b.position, t)
	return epaResult{
		normal:      e.normal,
		penetration: e.distance,
		contactA:    ca,
		contactB:    cb,
	}
}
