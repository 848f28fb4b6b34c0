package physics

import "github.com/bresilla/muli/geo"

const (
	gjkMaxIteration = 20
	gjkTolerance    = 1e-17
	epaMaxIteration = 20
	epaTolerance    = 1e-13
)

// collideFunc detects collision between two shapes of a fixed, ordered
// type pair and returns their contact manifold. Grounded on
// original_source/src/collision/collision.cpp's DetectionFunction
// typedef and InitializeDetectionFunctionMap dispatch table.
type collideFunc func(a Shape, tfA geo.Transform, b Shape, tfB geo.Transform) (ContactManifold, bool)

var detectionTable [numShapeTypes][numShapeTypes]collideFunc

func init() {
	detectionTable[ShapeCircle][ShapeCircle] = collideCircleCircle
	detectionTable[ShapeCapsule][ShapeCircle] = collidePolyLikeCircle
	detectionTable[ShapePolygon][ShapeCircle] = collidePolyLikeCircle
	detectionTable[ShapeCapsule][ShapeCapsule] = collideConvexConvex
	detectionTable[ShapePolygon][ShapeCapsule] = collideConvexConvex
	detectionTable[ShapePolygon][ShapePolygon] = collideConvexConvex
}

// Collide detects collision between two arbitrary shapes, reordering the
// pair to the dispatch table's canonical (typeA >= typeB) slot and
// flipping the resulting manifold's normal back if needed (its contact
// points are left in the order computed). Grounded on
// original_source/src/collision/collision.cpp's DetectCollision.
func Collide(a Shape, tfA geo.Transform, b Shape, tfB geo.Transform) (ContactManifold, bool) {
	ta, tb := a.Type(), b.Type()
	if ta >= tb {
		fn := detectionTable[ta][tb]
		if fn == nil {
			return ContactManifold{}, false
		}
		return fn(a, tfA, b, tfB)
	}
	fn := detectionTable[tb][ta]
	if fn == nil {
		return ContactManifold{}, false
	}
	m, ok := fn(b, tfB, a, tfA)
	if !ok {
		return m, false
	}
	return flipManifold(m), true
}

func flipManifold(m ContactManifold) ContactManifold {
	m.Normal = m.Normal.Neg()
	return m
}

func collideCircleCircle(a Shape, tfA geo.Transform, b Shape, tfB geo.Transform) (ContactManifold, bool) {
	return circleVsCircle(a.(*Circle), tfA, b.(*Circle), tfB)
}

// collidePolyLikeCircle handles both polygon-vs-circle and
// capsule-vs-circle, since both reference shapes expose the edgeAt
// interface polygonVsCircle relies on.
func collidePolyLikeCircle(a Shape, tfA geo.Transform, b Shape, tfB geo.Transform) (ContactManifold, bool) {
	return polygonVsCircle(a, tfA, b.(*Circle), tfB)
}

// collideConvexConvex handles capsule-capsule, capsule-polygon and
// polygon-polygon via GJK for separation/overlap detection, EPA for
// penetration depth and normal when overlapping, and edge clipping for
// the final manifold. Grounded on
// original_source/src/collision/collision.cpp's ConvexVsConvex.
func collideConvexConvex(a Shape, tfA geo.Transform, b Shape, tfB geo.Transform) (ContactManifold, bool) {
	result := gjk(a, tfA, b, tfB, gjkMaxIteration, gjkTolerance)
	radiusSum := a.Radius() + b.Radius()

	if result.state == gjkSeparated {
		if result.distance >= radiusSum {
			return ContactManifold{}, false
		}
		// Separated cores but the skin radii bring the shapes into
		// contact: build the manifold directly from the GJK witness
		// points rather than running EPA (which needs an enclosing
		// simplex).
		wa, wb := result.simplex.getWitnessPoint()
		d := wb.Sub(wa)
		dist := d.Len()
		var normal geo.Vec2
		if dist < geo.Epsilon {
			normal = geo.V2(1, 0)
		} else {
			normal = d.Scale(1 / dist)
		}
		m := findContactPoints(normal, a, tfA, b, tfB)
		if m.NumPoints == 0 {
			point := wa.AddScaled(normal, a.Radius())
			m = ContactManifold{Normal: normal, NumPoints: 1}
			m.Points[0] = ManifoldPoint{Point: point, Separation: dist - radiusSum}
		}
		m.Penetration = radiusSum - dist
		return m, true
	}

	epaRes := epa(a, tfA, b, tfB, result.simplex, epaMaxIteration, epaTolerance)
	m := findContactPoints(epaRes.normal, a, tfA, b, tfB)
	if m.NumPoints == 0 {
		m = ContactManifold{Normal: epaRes.normal, NumPoints: 1}
		point := epaRes.contactA.AddScaled(epaRes.normal, a.Radius())
		m.Points[0] = ManifoldPoint{Point: point, Separation: -epaRes.penetration}
	}
	m.Penetration = epaRes.penetration + radiusSum
	return m, true
}
