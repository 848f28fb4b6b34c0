package physics

import "errors"

// Construction-time contract violations return error; numerical
// degeneracies discovered inside Step are instead reported via state enums
// rather than error values, since they are routine outcomes of a running
// simulation, not caller mistakes.
var (
	errPolygonTooFewVerts    = errors.New("physics: polygon needs at least 3 vertices")
	errPolygonDegenerateEdge = errors.New("physics: polygon has a zero-length edge")
	errPolygonNotConvex      = errors.New("physics: polygon vertices are not convex/CCW")
	errInvalidMass           = errors.New("physics: dynamic body requires positive mass")
	errInvalidProxy          = errors.New("physics: invalid broad-phase proxy")
	errBodyDestroyed         = errors.New("physics: use of a destroyed body")
)
