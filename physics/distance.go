package physics

import "github.com/bresilla/muli/geo"

// ClosestFeatures reports which simplex vertices (feature witness points
// on each shape) GJK terminated with when two shapes are separated,
// letting callers (TOI's separation function) resume without rerunning
// GJK from scratch. Grounded on
// original_source/src/collision/distance.cpp's GetClosestFeatures.
type ClosestFeatures struct {
	FeaturesA   [maxSimplexVertices]geo.Vec2
	FeaturesB   [maxSimplexVertices]geo.Vec2
	FeatureIDsA [maxSimplexVertices]ID2
	FeatureIDsB [maxSimplexVertices]ID2
	Count       int
}

// GetClosestFeatures runs GJK and returns its terminal simplex's witness
// points, along with the distance (0 if the shapes already overlap).
func GetClosestFeatures(a Shape, tfA geo.Transform, b Shape, tfB geo.Transform) (ClosestFeatures, float64) {
	result := gjk(a, tfA, b, tfB, gjkMaxIteration, gjkTolerance)
	if result.state == gjkOverlap {
		return ClosestFeatures{}, 0
	}

	var f ClosestFeatures
	f.Count = result.simplex.count
	for i := 0; i < f.Count; i++ {
		f.FeaturesA[i] = result.simplex.verts[i].a.position
		f.FeaturesB[i] = result.simplex.verts[i].b.position
		f.FeatureIDsA[i] = result.simplex.verts[i].a.id
		f.FeatureIDsB[i] = result.simplex.verts[i].b.id
	}
	return f, result.distance
}

// ComputeDistance returns the separation between the skins of a and b
// (0 if they touch or overlap) along with the closest witness point on
// each shape's skin. Grounded on
// original_source/src/collision/distance.cpp's ComputeDistance.
func ComputeDistance(a Shape, tfA geo.Transform, b Shape, tfB geo.Transform) (pointA, pointB geo.Vec2, separation float64) {
	result := gjk(a, tfA, b, tfB, gjkMaxIteration, gjkTolerance)
	if result.state == gjkOverlap {
		return geo.Vec2{}, geo.Vec2{}, 0
	}

	radiusSum := a.Radius() + b.Radius()
	if result.distance < radiusSum {
		return geo.Vec2{}, geo.Vec2{}, 0
	}

	pointA, pointB = result.simplex.getWitnessPoint()
	pointA = pointA.AddScaled(result.direction, a.Radius())
	pointB = pointB.Sub(result.direction.Scale(b.Radius()))
	return pointA, pointB, result.distance - radiusSum
}

// ShapeCastOutput is the result of sweeping two shapes by their own
// translations and finding the first time of contact between their
// skins (not just their cores). Grounded on
// original_source/include/muli/distance.h's ShapeCastOutput.
type ShapeCastOutput struct {
	Point  geo.Vec2
	Normal geo.Vec2
	T      float64
}

// shapeCastIteration caps ShapeCast's conservative-advancement loop.
const shapeCastIteration = 20

// ShapeCast advances a and b along translationA/translationB and finds
// the first fraction t in [0,1] at which their skins touch, via
// conservative advancement (each iteration clips the ray by the support
// plane at the closest CSO feature). Grounded on
// original_source/src/collision/distance.cpp's ShapeCast.
func ShapeCast(a Shape, tfA geo.Transform, b Shape, tfB geo.Transform, translationA, translationB geo.Vec2, positionSolverThreshold, linearSlop float64) (ShapeCastOutput, bool) {
	out := ShapeCastOutput{T: 1}

	t := 0.0
	var n geo.Vec2
	radiusSum := a.Radius() + b.Radius()
	r := translationB.Sub(translationA)

	var s simplex

	dirA := tfA.MulTVec(r.Neg())
	va, idA := a.Support(dirA)
	pointA := tfA.Mul(va)
	dirB := tfB.MulTVec(r)
	vb, idB := b.Support(dirB)
	pointB := tfB.Mul(vb)
	v := pointA.Sub(pointB)

	target := geo.Max2(positionSolverThreshold, radiusSum-positionSolverThreshold)
	tolerance := linearSlop * 0.2

	iteration := 0
	for iteration < shapeCastIteration && v.Len()-target > tolerance {
		dirA = tfA.MulTVec(v.Neg())
		va, idA = a.Support(dirA)
		pointA = tfA.Mul(va)
		dirB = tfB.MulTVec(v)
		vb, idB = b.Support(dirB)
		pointB = tfB.Mul(vb)
		p := pointA.Sub(pointB)

		vUnit := v.Unit()

		vp := vUnit.Dot(p)
		vr := vUnit.Dot(r)
		if vp-target > t*vr {
			if vr <= 0 {
				return out, false
			}
			t = (vp - target) / vr
			if t > 1 {
				return out, false
			}
			n = vUnit.Neg()
			s.count = 0
		}

		shiftedB := pointB.Add(r.Scale(t))
		s.verts[s.count] = supportPoint{
			point: pointA.Sub(shiftedB),
			a:     contactPoint{position: pointA, id: idA},
			b:     contactPoint{position: shiftedB, id: idB},
		}
		s.count++

		s.advance(geo.Vec2{})

		if s.count == 3 {
			return out, false
		}

		v = s.closestPoint()
		iteration++
	}

	if iteration == 0 {
		return out, false
	}

	pointA, pointB = s.getWitnessPoint()
	if v.Len2() > 0 {
		n = v.Neg().Unit()
	}

	out.Point = pointA.AddScaled(n, a.Radius()).Add(translationA.Scale(t))
	out.Normal = n
	out.T = t
	return out, true
}
