package physics

import "github.com/bresilla/muli/geo"

// contactPoint is a witness point on one shape's surface in world space,
// tagged with the local feature id it came from so warm starting and
// the separation function can recognize the same feature across frames.
// Grounded on original_source/include/muli/contact_point.h's ContactPoint
// (position + id).
type contactPoint struct {
	position geo.Vec2
	id       ID2
}

// supportPoint is one CSO (Minkowski-difference) vertex: the world-space
// difference point plus the witness points on A and B it was built from,
// so GJK's simplex can recover feature ids for the narrow-phase caller.
type supportPoint struct {
	point  geo.Vec2
	a, b   contactPoint
	weight float64
}

// cso computes one support point of the Minkowski difference A âŠ– B in
// world-space direction dir (which need not be normalized). Grounded on
// original_source/src/collision/collision.cpp's CSOSupport.
func cso(a Shape, tfA geo.Transform, b Shape, tfB geo.Transform, dir geo.Vec2) supportPoint {
	localDirA := tfA.MulTVec(dir)
	va, idA := a.Support(localDirA)
	localDirB := tfB.MulTVec(dir.Neg())
	vb, idB := b.Support(localDirB)

	wa := tfA.Mul(va)
	wb := tfB.Mul(vb)
	return supportPoint{
		point: wa.Sub(wb),
		a:     contactPoint{position: wa, id: idA},
		b:     contactPoint{position: wb, id: idB},
	}
}

const maxSimplexVertices = 3

// simplex is the GJK working set: 1-3 vertices of the CSO. Grounded on
// original_source's Simplex class (no header body was retrieved for it,
// so the sub-simplex reduction below is a fresh implementation of the
// barycentric-closest-point algorithm spec.md §4.2 describes).
type simplex struct {
	verts [maxSimplexVertices]supportPoint
	count int
}

func (s *simplex) add(p supportPoint) {
	s.verts[s.count] = p
	s.count++
}

func (s *simplex) save() (pts [maxSimplexVertices]geo.Vec2, n int) {
	n = s.count
	for i := 0; i < n; i++ {
		pts[i] = s.verts[i].point
	}
	return
}

// closestPoint returns the closest point on the simplex to the origin,
// without mutating the simplex (used by distance/TOI code after advance
// has already reduced it).
func (s *simplex) closestPoint() geo.Vec2 {
	switch s.count {
	case 1:
		return s.verts[0].point
	case 2:
		return closestOnSegment(s.verts[0].point, s.verts[1].point, geo.Vec2{})
	default:
		return geo.Vec2{}
	}
}

// advance reduces the simplex toward the origin: for 2 vertices it keeps
// either the whole edge or collapses to the closer vertex; for 3 vertices
// it determines which Voronoi region of the triangle contains the origin
// and keeps only the vertices bounding that region (2 vertices if origin
// is outside an edge, 1 if it's closest to a single vertex, or all 3 if
// the origin is inside the triangle — overlap).
func (s *simplex) advance(target geo.Vec2) {
	switch s.count {
	case 2:
		a, b := s.verts[0].point, s.verts[1].point
		t := projectParam(a, b, target)
		if t <= 0 {
			s.count = 1
		} else if t >= 1 {
			s.verts[0] = s.verts[1]
			s.count = 1
		}
	case 3:
		a, b, c := s.verts[0].point, s.verts[1].point, s.verts[2].point
		region := triangleRegion(a, b, c, target)
		switch region {
		case regionA:
			s.count = 1
		case regionB:
			s.verts[0] = s.verts[1]
			s.count = 1
		case regionC:
			s.verts[0] = s.verts[2]
			s.count = 1
		case regionAB:
			s.count = 2
		case regionBC:
			s.verts[0] = s.verts[1]
			s.verts[1] = s.verts[2]
			s.count = 2
		case regionCA:
			s.verts[1] = s.verts[0]
			s.verts[0] = s.verts[2]
			s.count = 2
		case regionInside:
			// Keep all three: contains target, GJK will stop here.
		}
	}
}

// getWitnessPoint recovers the witness points on A and B for the current
// (post-advance) simplex by barycentric-weighting the support points of
// whichever vertices remain.
func (s *simplex) getWitnessPoint() (a, b geo.Vec2) {
	switch s.count {
	case 1:
		return s.verts[0].a.position, s.verts[0].b.position
	case 2:
		p0, p1 := s.verts[0].point, s.verts[1].point
		t := projectParam(p0, p1, geo.Vec2{})
		t = geo.Clamp(t, 0, 1)
		a = lerpVec(s.verts[0].a.position, s.verts[1].a.position, t)
		b = lerpVec(s.verts[0].b.position, s.verts[1].b.position, t)
		return
	default:
		// Degenerate for distance purposes (shapes overlap); return the
		// first vertex's witnesses as a best-effort fallback.
		return s.verts[0].a.position, s.verts[0].b.position
	}
}

func lerpVec(a, b geo.Vec2, t float64) geo.Vec2 {
	return geo.Lerp3(a, b, t)
}

// projectParam returns the parameter t such that a+t*(b-a) is the
// projection of p onto the line through a,b (not clamped to [0,1]).
func projectParam(a, b, p geo.Vec2) float64 {
	ab := b.Sub(a)
	len2 := ab.Len2()
	if len2 < geo.Epsilon {
		return 0
	}
	return p.Sub(a).Dot(ab) / len2
}

func closestOnSegment(a, b, p geo.Vec2) geo.Vec2 {
	t := geo.Clamp(projectParam(a, b, p), 0, 1)
	return a.AddScaled(b.Sub(a), t)
}

type triRegion int

const (
	regionA triRegion = iota
	regionB
	regionC
	regionAB
	regionBC
	regionCA
	regionInside
)

// triangleRegion classifies which Voronoi region of triangle (a,b,c)
// contains p, using the standard barycentric-sign test (Ericson's
// "Real-Time Collision Detection" closest-point-on-triangle derivation).
func triangleRegion(a, b, c, p geo.Vec2) triRegion {
	ab := b.Sub(a)
	ac := c.Sub(a)
	ap := p.Sub(a)

	d1 := ab.Dot(ap)
	d2 := ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return regionA
	}

	bp := p.Sub(b)
	d3 := ab.Dot(bp)
	d4 := ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return regionB
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		return regionAB
	}

	cp := p.Sub(c)
	d5 := ab.Dot(cp)
	d6 := ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return regionC
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		return regionCA
	}

	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		return regionBC
	}

	return regionInside
}
