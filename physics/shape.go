package physics

import (
	"math"

	"github.com/bresilla/muli/geo"
)

// ShapeType enumerates the shape variants the narrow phase dispatch table
// is indexed by. Order matters: the dispatch table in collide.go is only
// populated for typeA >= typeB, matching the original source's canonical
// ordering convention.
type ShapeType int

const (
	ShapeCircle ShapeType = iota
	ShapeCapsule
	ShapePolygon
	numShapeTypes
)

// Edge is a shape feature used by manifold construction: two vertices with
// stable ids used to derive consistent contact point ids across frames.
type Edge struct {
	V1, V2 geo.Vec2
	ID1    ID2
	ID2v   ID2
}

// Shape is a tagged collision primitive in local space, centered so that
// Centroid() is meaningful for mass aggregation. Shapes never allocate on
// the query hot path: callers supply output structures where one is needed.
type Shape interface {
	Type() ShapeType
	Radius() float64
	Centroid() geo.Vec2
	Area() float64

	// Inertia returns the moment of inertia about the centroid for a shape
	// of the given mass.
	Inertia(mass float64) float64

	// AABB returns the shape's tight world-space AABB under transform,
	// expanded by margin on every side.
	AABB(t geo.Transform, margin float64) geo.AABB

	// Support returns the farthest vertex of the shape (in local space,
	// radius NOT included) in direction dir, and a stable id for it.
	Support(dir geo.Vec2) (v geo.Vec2, id ID2)

	// VertexCount returns the number of core vertices (1 for a circle's
	// single point, 2 for a capsule, N for a polygon).
	VertexCount() int

	// Vertex returns the i'th core vertex in local space.
	Vertex(i int) geo.Vec2

	// FeaturedEdge returns the local-space edge most perpendicular to dir,
	// used as the reference/incident edge during manifold clipping.
	FeaturedEdge(dir geo.Vec2) Edge
}

// ID2 identifies a shape feature (a vertex or an edge endpoint) so that
// contact point ids built from it stay stable across frames for warm
// starting, per spec.md's "ids are always derived from shape A's vertex
// ids" rule.
type ID2 int32

// ----------------------------------------------------------------------------
// Circle

// Circle is a disc of the given radius centered at Center.
type Circle struct {
	Center geo.Vec2
	R      float64
}

// NewCircle builds a Circle shape. Negative radii are made positive.
func NewCircle(center geo.Vec2, radius float64) *Circle {
	return &Circle{Center: center, R: math.Abs(radius)}
}

func (c *Circle) Type() ShapeType      { return ShapeCircle }
func (c *Circle) Radius() float64      { return c.R }
func (c *Circle) Centroid() geo.Vec2   { return c.Center }
func (c *Circle) Area() float64        { return math.Pi * c.R * c.R }
func (c *Circle) Inertia(m float64) float64 {
	return 0.5 * m * c.R * c.R
}

func (c *Circle) AABB(t geo.Transform, margin float64) geo.AABB {
	p := t.Mul(c.Center)
	r := c.R + margin
	return geo.AABB{Min: geo.V2(p.X-r, p.Y-r), Max: geo.V2(p.X+r, p.Y+r)}
}

func (c *Circle) Support(dir geo.Vec2) (geo.Vec2, ID2) { return c.Center, 0 }
func (c *Circle) VertexCount() int                     { return 1 }
func (c *Circle) Vertex(i int) geo.Vec2                { return c.Center }
func (c *Circle) FeaturedEdge(dir geo.Vec2) Edge {
	return Edge{V1: c.Center, V2: c.Center, ID1: 0, ID2v: 0}
}

// ----------------------------------------------------------------------------
// Capsule

// Capsule is the Minkowski sum of a segment [Va,Vb] and a disc of radius R.
type Capsule struct {
	Va, Vb geo.Vec2
	R      float64
}

// NewCapsule builds a Capsule shape between two local-space endpoints.
func NewCapsule(a, b geo.Vec2, radius float64) *Capsule {
	return &Capsule{Va: a, Vb: b, R: math.Abs(radius)}
}

func (c *Capsule) Type() ShapeType    { return ShapeCapsule }
func (c *Capsule) Radius() float64    { return c.R }
func (c *Capsule) Centroid() geo.Vec2 { return c.Va.Add(c.Vb).Scale(0.5) }

func (c *Capsule) Area() float64 {
	length := c.Va.Dist(c.Vb)
	return length*2*c.R + math.Pi*c.R*c.R
}

func (c *Capsule) Inertia(m float64) float64 {
	// Decompose into a rectangle (length x 2R) plus two half-disc caps,
	// aggregated about the segment midpoint.
	length := c.Va.Dist(c.Vb)
	if length < geo.Epsilon {
		return 0.5 * m * c.R * c.R
	}
	rectArea := length * 2 * c.R
	capArea := math.Pi * c.R * c.R
	total := rectArea + capArea
	rectMass := m * rectArea / total
	capMass := m * capArea / total
	rectI := rectMass * (length*length + (2*c.R)*(2*c.R)) / 12.0
	// The two half-disc caps together are treated as one solid disc offset
	// by length/2 from the centroid (solid disc inertia + parallel axis).
	capI := capMass*0.5*c.R*c.R + capMass*(length/2)*(length/2)
	return rectI + capI
}

func (c *Capsule) AABB(t geo.Transform, margin float64) geo.AABB {
	wa, wb := t.Mul(c.Va), t.Mul(c.Vb)
	box := geo.NewAABB(wa, wb)
	return box.Expand(c.R + margin)
}

func (c *Capsule) Support(dir geo.Vec2) (geo.Vec2, ID2) {
	if dir.Dot(c.Va) > dir.Dot(c.Vb) {
		return c.Va, 0
	}
	return c.Vb, 1
}

func (c *Capsule) VertexCount() int { return 2 }
func (c *Capsule) Vertex(i int) geo.Vec2 {
	if i == 0 {
		return c.Va
	}
	return c.Vb
}

func (c *Capsule) FeaturedEdge(dir geo.Vec2) Edge {
	return Edge{V1: c.Va, V2: c.Vb, ID1: 0, ID2v: 1}
}

// Axis returns the unit direction from Va to Vb, or the x-axis if the
// capsule is degenerate (a disc).
func (c *Capsule) Axis() geo.Vec2 {
	d := c.Vb.Sub(c.Va)
	if d.Len2() < geo.Epsilon {
		return geo.V2(1, 0)
	}
	return d.Unit()
}

// ----------------------------------------------------------------------------
// Polygon

// Polygon is a convex hull given as CCW vertices with precomputed outward
// edge normals, optionally inflated by a skin radius.
type Polygon struct {
	Verts    []geo.Vec2
	Normals  []geo.Vec2
	R        float64
	centroid geo.Vec2
}

// NewPolygon builds a convex Polygon from a CCW, convex vertex list. It
// returns an error (a contract violation per spec.md §7) if the hull is
// degenerate or not convex, since a polygon's edge normals and centroid
// are meaningless otherwise.
func NewPolygon(verts []geo.Vec2, radius float64) (*Polygon, error) {
	if len(verts) < 3 {
		return nil, errPolygonTooFewVerts
	}
	normals := make([]geo.Vec2, len(verts))
	n := len(verts)
	for i := 0; i < n; i++ {
		edge := verts[(i+1)%n].Sub(verts[i])
		if edge.Len2() < geo.Epsilon {
			return nil, errPolygonDegenerateEdge
		}
		normals[i] = edge.Perp().Neg().Unit()
	}
	if !convexCCW(verts, normals) {
		return nil, errPolygonNotConvex
	}
	p := &Polygon{Verts: verts, Normals: normals, R: math.Abs(radius)}
	p.centroid = polygonCentroid(verts)
	return p, nil
}

// convexCCW checks winding and convexity by verifying every vertex lies on
// the inside half-plane of every edge.
func convexCCW(verts []geo.Vec2, normals []geo.Vec2) bool {
	n := len(verts)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			if normals[i].Dot(verts[j].Sub(verts[i])) > 1e-6 {
				return false
			}
		}
	}
	return true
}

func polygonCentroid(verts []geo.Vec2) geo.Vec2 {
	var area, cx, cy float64
	n := len(verts)
	origin := verts[0]
	for i := 1; i < n-1; i++ {
		e1 := verts[i].Sub(origin)
		e2 := verts[i+1].Sub(origin)
		cross := e1.Cross(e2)
		triArea := 0.5 * cross
		area += triArea
		tc := origin.Add(e1.Add(e2).Scale(1.0 / 3.0))
		cx += tc.X * triArea
		cy += tc.Y * triArea
	}
	if math.Abs(area) < geo.Epsilon {
		return origin
	}
	return geo.V2(cx/area, cy/area)
}

// NewBox builds a rectangular Polygon centered at the origin with the
// given full width/height.
func NewBox(width, height, radius float64) *Polygon {
	hx, hy := width/2, height/2
	verts := []geo.Vec2{{X: -hx, Y: -hy}, {X: hx, Y: -hy}, {X: hx, Y: hy}, {X: -hx, Y: hy}}
	p, err := NewPolygon(verts, radius)
	if err != nil {
		panic(err) // a rectangle is always convex; a contract violation here is a bug.
	}
	return p
}

func (p *Polygon) Type() ShapeType    { return ShapePolygon }
func (p *Polygon) Radius() float64    { return p.R }
func (p *Polygon) Centroid() geo.Vec2 { return p.centroid }

func (p *Polygon) Area() float64 {
	var area float64
	n := len(p.Verts)
	for i := 0; i < n; i++ {
		area += p.Verts[i].Cross(p.Verts[(i+1)%n])
	}
	return math.Abs(area) * 0.5
}

func (p *Polygon) Inertia(mass float64) float64 {
	var numer, denom float64
	n := len(p.Verts)
	c := p.centroid
	for i := 0; i < n; i++ {
		v1 := p.Verts[i].Sub(c)
		v2 := p.Verts[(i+1)%n].Sub(c)
		cr := math.Abs(v1.Cross(v2))
		numer += cr * (v1.Dot(v1) + v1.Dot(v2) + v2.Dot(v2))
		denom += cr
	}
	if denom < geo.Epsilon {
		return 0
	}
	return mass / 6.0 * numer / denom
}

func (p *Polygon) AABB(t geo.Transform, margin float64) geo.AABB {
	w0 := t.Mul(p.Verts[0])
	box := geo.AABB{Min: w0, Max: w0}
	for _, v := range p.Verts[1:] {
		wv := t.Mul(v)
		box = geo.Union(box, geo.AABB{Min: wv, Max: wv})
	}
	return box.Expand(p.R + margin)
}

func (p *Polygon) Support(dir geo.Vec2) (geo.Vec2, ID2) {
	best := 0
	bestDot := p.Verts[0].Dot(dir)
	for i := 1; i < len(p.Verts); i++ {
		d := p.Verts[i].Dot(dir)
		if d > bestDot {
			bestDot = d
			best = i
		}
	}
	return p.Verts[best], ID2(best)
}

func (p *Polygon) VertexCount() int        { return len(p.Verts) }
func (p *Polygon) Vertex(i int) geo.Vec2   { return p.Verts[i] }

// FeaturedEdge returns the edge adjacent to the support vertex in
// direction dir whose normal is most parallel to dir.
func (p *Polygon) FeaturedEdge(dir geo.Vec2) Edge {
	n := len(p.Verts)
	_, id := p.Support(dir)
	i := int(id)
	prev := (i - 1 + n) % n
	// The two candidate edges are (prev,i) and (i,next); pick the one
	// whose normal is closer to dir.
	if p.Normals[prev].Dot(dir) > p.Normals[i].Dot(dir) {
		return Edge{V1: p.Verts[prev], V2: p.Verts[i], ID1: ID2(prev), ID2v: ID2(i)}
	}
	next := (i + 1) % n
	return Edge{V1: p.Verts[i], V2: p.Verts[next], ID1: ID2(i), ID2v: ID2(next)}
}
