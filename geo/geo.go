// Package geo provides the 2D linear-algebra primitives the physics engine
// is built on: vectors, rotations, rigid transforms and small utility
// functions. It plays the same role for this module that math/lin plays
// for a 3D engine, reduced to two dimensions and to value semantics so it
// reads close to the operator-overloaded C++ it is ported from.
package geo

import "math"

// Epsilon is used to distinguish when a float is close enough to a number.
const Epsilon float64 = 1e-12

// Large is a convenience stand-in for "effectively infinite" in this package.
const Large float64 = math.MaxFloat64 / 2

// AeqZ (~=) almost-equals-zero returns true if x is close enough to zero
// that it makes no practical difference.
func AeqZ(x float64) bool { return math.Abs(x) < Epsilon }

// Aeq (~=) almost-equals returns true if a and b are close enough that the
// difference makes no practical difference.
func Aeq(a, b float64) bool { return math.Abs(a-b) < Epsilon }

// Clamp returns s restricted to the closed interval [lb, ub].
func Clamp(s, lb, ub float64) float64 {
	switch {
	case s < lb:
		return lb
	case s > ub:
		return ub
	}
	return s
}

// Lerp returns the linear interpolation of a to b by the given ratio.
func Lerp(a, b, ratio float64) float64 { return a + (b-a)*ratio }

// Max2 returns the largest of two floats.
func Max2(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// Min2 returns the smallest of two floats.
func Min2(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
