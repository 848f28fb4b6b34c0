package physics

import "github.com/bresilla/muli/geo"

// separationType distinguishes which side of a GJK 2-point simplex
// degenerated into a single vertex versus which kept an edge, so the
// separation function can track the right local axis across the sweep.
type separationType int

const (
	sepPoints separationType = iota
	sepEdgeA
	sepEdgeB
)

// separationFunction tracks a separating axis across a continuous sweep
// so FindTimeOfImpact can re-evaluate separation at any t without
// rerunning GJK. Grounded on
// original_source/src/collision/time_of_impact.cpp's SeparationFunction.
type separationFunction struct {
	shapeA, shapeB Shape
	sweepA, sweepB geo.Sweep
	kind           separationType
	localPoint     geo.Vec2
	axis           geo.Vec2
}

func newSeparationFunction(cf ClosestFeatures, shapeA Shape, sweepA geo.Sweep, shapeB Shape, sweepB geo.Sweep, t1 float64) separationFunction {
	tfA := sweepA.Transform(t1)
	tfB := sweepB.Transform(t1)

	fn := separationFunction{shapeA: shapeA, shapeB: shapeB, sweepA: sweepA, sweepB: sweepB}

	if cf.Count == 1 {
		fn.kind = sepPoints
		fn.axis = cf.FeaturesB[0].Sub(cf.FeaturesA[0]).Unit()
		return fn
	}

	if cf.FeatureIDsA[0] == cf.FeatureIDsA[1] {
		fn.kind = sepEdgeB
		localB0 := shapeB.Vertex(int(cf.FeatureIDsB[0]))
		localB1 := shapeB.Vertex(int(cf.FeatureIDsB[1]))
		axis := geo.CrossVecScalar(localB1.Sub(localB0), 1).Unit()
		normal := tfB.MulVec(axis)
		pointB := cf.FeaturesB[0].Add(cf.FeaturesB[1]).Scale(0.5)
		pointA := cf.FeaturesA[0]
		if normal.Dot(pointA.Sub(pointB)) < 0 {
			axis = axis.Neg()
		}
		fn.axis = axis
		fn.localPoint = localB0.Add(localB1).Scale(0.5)
		return fn
	}

	fn.kind = sepEdgeA
	localA0 := shapeA.Vertex(int(cf.FeatureIDsA[0]))
	localA1 := shapeA.Vertex(int(cf.FeatureIDsA[1]))
	axis := geo.CrossVecScalar(localA1.Sub(localA0), 1).Unit()
	normal := tfA.MulVec(axis)
	pointA := cf.FeaturesA[0].Add(cf.FeaturesA[1]).Scale(0.5)
	pointB := cf.FeaturesB[0]
	if normal.Dot(pointB.Sub(pointA)) < 0 {
		axis = axis.Neg()
	}
	fn.axis = axis
	fn.localPoint = localA0.Add(localA1).Scale(0.5)
	return fn
}

func (fn *separationFunction) findMinSeparation(t float64) (separation float64, idA, idB ID2) {
	tfA := fn.sweepA.Transform(t)
	tfB := fn.sweepB.Transform(t)

	switch fn.kind {
	case sepPoints:
		localAxisA := tfA.MulTVec(fn.axis)
		localAxisB := tfB.MulTVec(fn.axis.Neg())
		_, idA = fn.shapeA.Support(localAxisA)
		_, idB = fn.shapeB.Support(localAxisB)
		pointA := tfA.Mul(fn.shapeA.Vertex(int(idA)))
		pointB := tfB.Mul(fn.shapeB.Vertex(int(idB)))
		return fn.axis.Dot(pointB.Sub(pointA)), idA, idB
	case sepEdgeA:
		normal := tfA.MulVec(fn.axis)
		pointA := tfA.Mul(fn.localPoint)
		localAxisB := tfB.MulTVec(normal.Neg())
		idA = -1
		_, idB = fn.shapeB.Support(localAxisB)
		pointB := tfB.Mul(fn.shapeB.Vertex(int(idB)))
		return normal.Dot(pointB.Sub(pointA)), idA, idB
	default: // sepEdgeB
		normal := tfB.MulVec(fn.axis)
		pointB := tfB.Mul(fn.localPoint)
		localAxisA := tfA.MulTVec(normal.Neg())
		_, idA = fn.shapeA.Support(localAxisA)
		idB = -1
		pointA := tfA.Mul(fn.shapeA.Vertex(int(idA)))
		return normal.Dot(pointA.Sub(pointB)), idA, idB
	}
}

func (fn *separationFunction) computeSeparation(idA, idB ID2, t float64) float64 {
	tfA := fn.sweepA.Transform(t)
	tfB := fn.sweepB.Transform(t)

	switch fn.kind {
	case sepPoints:
		pointA := tfA.Mul(fn.shapeA.Vertex(int(idA)))
		pointB := tfB.Mul(fn.shapeB.Vertex(int(idB)))
		return fn.axis.Dot(pointB.Sub(pointA))
	case sepEdgeA:
		normal := tfA.MulVec(fn.axis)
		pointA := tfA.Mul(fn.localPoint)
		pointB := tfB.Mul(fn.shapeB.Vertex(int(idB)))
		return normal.Dot(pointB.Sub(pointA))
	default: // sepEdgeB
		normal := tfB.MulVec(fn.axis)
		pointB := tfB.Mul(fn.localPoint)
		pointA := tfA.Mul(fn.shapeA.Vertex(int(idA)))
		return normal.Dot(pointA.Sub(pointB))
	}
}

// TOIState reports how FindTimeOfImpact's bounded root search concluded.
type TOIState int

const (
	TOIUnknown TOIState = iota
	TOIFailed
	TOIOverlapped
	TOITouching
	TOISeparated
)

const toiMaxIteration = 20
const toiRootMaxIteration = 50

// FindTimeOfImpact finds the first time t in [0, tMax] at which a (swept
// through sweepA) and b (swept through sweepB) come within target
// separation of each other, using the conservative-advancement-style
// separating-axis root search. Grounded on
// original_source/src/collision/time_of_impact.cpp's FindTimeOfImpact.
func FindTimeOfImpact(shapeA Shape, sweepA geo.Sweep, shapeB Shape, sweepB geo.Sweep, tMax, linearSlop float64) (float64, TOIState) {
	radiusSum := shapeA.Radius() + shapeB.Radius()
	target := geo.Max2(linearSlop, radiusSum-2*linearSlop)
	tolerance := 0.25 * linearSlop

	t1 := 0.0
	iteration := 0

	for {
		tfA := sweepA.Transform(t1)
		tfB := sweepB.Transform(t1)

		cf, distance := GetClosestFeatures(shapeA, tfA, shapeB, tfB)

		if distance == 0 {
			return 0, TOIOverlapped
		}

		if distance < target+tolerance {
			return t1, TOITouching
		}

		fn := newSeparationFunction(cf, shapeA, sweepA, shapeB, sweepB, t1)

		done := false
		state := TOIUnknown
		tOut := t1
		t2 := tMax

		for {
			s2, idA, idB := fn.findMinSeparation(t2)

			if s2 > target+tolerance {
				state, tOut, done = TOISeparated, tMax, true
				break
			}

			if s2 > target-tolerance {
				t1 = t2
				break
			}

			s1 := fn.computeSeparation(idA, idB, t1)

			if s1 < target-tolerance {
				state, tOut, done = TOIFailed, t1, true
				break
			}

			if s1 <= target+tolerance {
				state, tOut, done = TOITouching, t1, true
				break
			}

			a1, a2 := t1, t2
			i := 0
			for {
				var t float64
				if i&1 == 1 {
					t = a1 + (target-s1)*(a2-a1)/(s2-s1)
				} else {
					t = 0.5 * (a1 + a2)
				}
				i++

				s := fn.computeSeparation(idA, idB, t)

				if abs64(s-target) < tolerance {
					t2 = t
					break
				}
				if s > target {
					a1, s1 = t, s
				} else {
					a2, s2 = t, s
				}
				if i == toiRootMaxIteration {
					break
				}
			}
		}

		iteration++
		if done {
			return tOut, state
		}
		if iteration == toiMaxIteration {
			return t1, TOIFailed
		}
	}
}

func abs64(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
