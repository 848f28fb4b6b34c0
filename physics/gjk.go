package physics

import "github.com/bresilla/muli/geo"

// gjkState mirrors spec.md §7's "numerical degeneracies ... reported via
// a state enum" for GJK: the bounded iteration loop always terminates and
// reports which case it terminated on instead of panicking.
type gjkState int

const (
	gjkSeparated gjkState = iota
	gjkOverlap
)

// gjkResult is the outcome of running GJK between two shapes: the
// terminal simplex (so EPA/clipping can resume from it), the unit
// direction from A to B, and the distance between the (un-inflated)
// shapes. Grounded on original_source/include/muli/collision.h's
// GJKResult.
type gjkResult struct {
	simplex   simplex
	direction geo.Vec2
	distance  float64
	state     gjkState
}

// gjk runs the Gilbert-Johnson-Keerthi algorithm on the CSO of a and b,
// bounded to maxIter iterations. Grounded on
// original_source/src/collision/collision.cpp's GJK.
func gjk(a Shape, tfA geo.Transform, b Shape, tfB geo.Transform, maxIter int, tolerance float64) gjkResult {
	var s simplex

	direction := tfB.Position.Sub(tfA.Position)
	if direction.Len2() < geo.Epsilon {
		direction = geo.V2(1, 0)
	}
	support := cso(a, tfA, b, tfB, direction)
	s.add(support)

	for k := 0; k < maxIter; k++ {
		saved, savedCount := s.save()
		s.advance(geo.Vec2{})

		if s.count == 3 {
			break
		}

		direction = s.closestPoint().Neg()
		if direction.Len2() < geo.Epsilon {
			break
		}

		support = cso(a, tfA, b, tfB, direction)

		duplicate := false
		for i := 0; i < savedCount; i++ {
			if saved[i].Eq(support.point) {
				duplicate = true
				break
			}
		}
		if duplicate {
			break
		}
		s.add(support)
	}

	closest := s.closestPoint()
	dist := closest.Len()

	result := gjkResult{simplex: s, distance: dist}
	if dir := direction.Unit(); dir.Len2() > 0 {
		result.direction = dir
	} else {
		result.direction = geo.V2(1, 0)
	}
	if dist < tolerance {
		result.state = gjkOverlap
	} else {
		result.state = gjkSeparated
	}
	return result
}
