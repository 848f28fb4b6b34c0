package geo

// AABB is an axis-aligned bounding box in world coordinates.
type AABB struct {
	Min, Max Vec2
}

// NewAABB builds an AABB from two corners, fixing up min/max ordering.
func NewAABB(a, b Vec2) AABB {
	return AABB{Min: a.Min(b), Max: a.Max(b)}
}

// Union returns the smallest AABB containing both a and b.
func Union(a, b AABB) AABB {
	return AABB{Min: a.Min.Min(b.Min), Max: a.Max.Max(b.Max)}
}

// Contains returns true if b is entirely inside a.
func (a AABB) Contains(b AABB) bool {
	return a.Min.X <= b.Min.X && a.Min.Y <= b.Min.Y &&
		b.Max.X <= a.Max.X && b.Max.Y <= a.Max.Y
}

// ContainsPoint returns true if p lies within a (inclusive).
func (a AABB) ContainsPoint(p Vec2) bool {
	return p.X >= a.Min.X && p.X <= a.Max.X && p.Y >= a.Min.Y && p.Y <= a.Max.Y
}

// Overlaps returns true if a and b share any area.
func (a AABB) Overlaps(b AABB) bool {
	if a.Max.X < b.Min.X || b.Max.X < a.Min.X {
		return false
	}
	if a.Max.Y < b.Min.Y || b.Max.Y < a.Min.Y {
		return false
	}
	return true
}

// Extents returns the half-width/half-height of the box.
func (a AABB) Extents() Vec2 {
	return a.Max.Sub(a.Min).Scale(0.5)
}

// Center returns the midpoint of the box.
func (a AABB) Center() Vec2 {
	return a.Min.Add(a.Max).Scale(0.5)
}

// Perimeter returns the sum of the box's edge lengths — the classic
// surface-area heuristic cost in 2D.
func (a AABB) Perimeter() float64 {
	d := a.Max.Sub(a.Min)
	return 2 * (d.X + d.Y)
}

// Area returns the box's area, the alternate (and, per the source this
// engine follows, default) SAH cost surrogate in 2D.
func (a AABB) Area() float64 {
	d := a.Max.Sub(a.Min)
	return d.X * d.Y
}

// Expand returns a grown by margin on every side.
func (a AABB) Expand(margin float64) AABB {
	m := Vec2{margin, margin}
	return AABB{Min: a.Min.Sub(m), Max: a.Max.Add(m)}
}
