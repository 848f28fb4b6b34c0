// Package config parses a simulation scene and its WorldSettings from YAML
// bytes; reading the file is left to the caller. It never touches physics
// internals beyond
// the public WorldSettings struct and World/Body/Collider/Joint constructors.
package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/bresilla/muli/geo"
	"github.com/bresilla/muli/physics"
)

// bodyTypes maps the YAML body-type string to a physics.BodyType, following
// the teacher's load/shd.go pattern of a string->enum lookup table plus an
// explicit "unsupported X" error on miss.
var bodyTypes = map[string]physics.BodyType{
	"static":    physics.Static,
	"kinematic": physics.Kinematic,
	"dynamic":   physics.Dynamic,
}

var jointTypes = map[string]physics.JointType{
	"distance": physics.JointDistance,
	"revolute": physics.JointRevolute,
	"line":     physics.JointLine,
	"weld":     physics.JointWeld,
}

// Settings holds, via yaml tags, the subset of physics.WorldSettings a
// scene file can override. A field the file leaves out (nil) keeps the
// base value in Merge; a field given explicitly is applied even when it
// is false or 0 — see Merge.
type Settings struct {
	DT    *float64 `yaml:"dt"`
	Gravity *struct {
		X float64 `yaml:"x"`
		Y float64 `yaml:"y"`
	} `yaml:"gravity"`
	ImpulseAccumulation *bool `yaml:"impulseAccumulation"`
	WarmStarting        *bool `yaml:"warmStarting"`
	PositionCorrection  *bool `yaml:"positionCorrection"`
	BlockSolve          *bool `yaml:"blockSolve"`
	VelocityIterations  *int  `yaml:"velocityIterations"`
	PositionIterations  *int  `yaml:"positionIterations"`
	Sleeping            *bool `yaml:"sleeping"`
}

// Merge applies every non-nil field of s onto base and returns the result,
// leaving base's defaults untouched for anything the YAML document omitted.
func (s *Settings) Merge(base physics.WorldSettings) physics.WorldSettings {
	if s == nil {
		return base
	}
	if s.DT != nil && *s.DT > 0 {
		base.DT = *s.DT
		base.InvDT = 1.0 / *s.DT
	}
	if s.Gravity != nil {
		base.Gravity = geo.V2(s.Gravity.X, s.Gravity.Y)
	}
	if s.ImpulseAccumulation != nil {
		base.ImpulseAccumulation = *s.ImpulseAccumulation
	}
	if s.WarmStarting != nil {
		base.WarmStarting = *s.WarmStarting
	}
	if s.PositionCorrection != nil {
		base.PositionCorrection = *s.PositionCorrection
	}
	if s.BlockSolve != nil {
		base.BlockSolve = *s.BlockSolve
	}
	if s.VelocityIterations != nil {
		base.VelocityIterations = *s.VelocityIterations
	}
	if s.PositionIterations != nil {
		base.PositionIterations = *s.PositionIterations
	}
	if s.Sleeping != nil {
		base.Sleeping = *s.Sleeping
	}
	return base
}

// ShapeDesc describes one collider attached to a BodyDesc.
type ShapeDesc struct {
	Kind   string     `yaml:"kind"` // circle, capsule, polygon
	Center [2]float64 `yaml:"center"`
	Radius float64    `yaml:"radius"`
	// Capsule-only.
	A [2]float64 `yaml:"a"`
	B [2]float64 `yaml:"b"`
	// Polygon-only.
	Verts [][2]float64 `yaml:"verts"`

	Density     float64 `yaml:"density"`
	Friction    float64 `yaml:"friction"`
	Restitution float64 `yaml:"restitution"`
}

func v2(p [2]float64) geo.Vec2 { return geo.V2(p[0], p[1]) }

func (sd ShapeDesc) build() (physics.Shape, physics.Material, error) {
	material := physics.DefaultMaterial
	if sd.Density > 0 {
		material.Density = sd.Density
	}
	if sd.Friction > 0 {
		material.Friction = sd.Friction
	}
	if sd.Restitution > 0 {
		material.Restitution = sd.Restitution
	}

	switch sd.Kind {
	case "circle":
		return physics.NewCircle(v2(sd.Center), sd.Radius), material, nil
	case "capsule":
		return physics.NewCapsule(v2(sd.A), v2(sd.B), sd.Radius), material, nil
	case "polygon":
		verts := make([]geo.Vec2, len(sd.Verts))
		for i, v := range sd.Verts {
			verts[i] = v2(v)
		}
		poly, err := physics.NewPolygon(verts, sd.Radius)
		if err != nil {
			return nil, material, fmt.Errorf("config: polygon shape: %w", err)
		}
		return poly, material, nil
	default:
		return nil, material, fmt.Errorf("config: unsupported shape kind %q", sd.Kind)
	}
}

// BodyDesc describes one rigid body and its colliders.
type BodyDesc struct {
	Name     string      `yaml:"name"`
	Type     string      `yaml:"type"`
	Position [2]float64  `yaml:"position"`
	Angle    float64     `yaml:"angle"`
	Shapes   []ShapeDesc `yaml:"shapes"`
}

func (bd BodyDesc) build() (*physics.Body, error) {
	kind, ok := bodyTypes[bd.Type]
	if !ok {
		return nil, fmt.Errorf("config: body %q: unsupported type %q", bd.Name, bd.Type)
	}
	b := physics.NewBody(kind)
	b.SetTransform(geo.NewTransform(v2(bd.Position), bd.Angle))
	for i, sd := range bd.Shapes {
		shape, material, err := sd.build()
		if err != nil {
			return nil, fmt.Errorf("config: body %q: shape %d: %w", bd.Name, i, err)
		}
		b.AddCollider(shape, geo.Identity2(), material)
	}
	return b, nil
}

// JointDesc describes one joint between two named bodies.
type JointDesc struct {
	Type         string     `yaml:"type"`
	BodyA        string     `yaml:"bodyA"`
	BodyB        string     `yaml:"bodyB"`
	AnchorA      [2]float64 `yaml:"anchorA"`
	AnchorB      [2]float64 `yaml:"anchorB"`
	Length       float64    `yaml:"length"`
	Frequency    float64    `yaml:"frequency"`
	DampingRatio float64    `yaml:"dampingRatio"`
}

// Scene is the top-level YAML document: a settings overlay plus the bodies
// and joints that make up one scenario.
type Scene struct {
	Settings *Settings   `yaml:"settings"`
	Bodies   []BodyDesc  `yaml:"bodies"`
	Joints   []JointDesc `yaml:"joints"`
}

// LoadScene parses raw YAML into a Scene. It does not build a World; call
// Scene.Build for that once you have chosen a base WorldSettings.
func LoadScene(data []byte) (*Scene, error) {
	var scene Scene
	if err := yaml.Unmarshal(data, &scene); err != nil {
		return nil, fmt.Errorf("config: yaml: %w", err)
	}
	return &scene, nil
}

// Build constructs a physics.World from the scene, merging the scene's
// settings overlay onto base, then registering every described body and
// joint. Joints reference bodies by the Name field in Bodies; referencing an
// unknown name is an error.
func (s *Scene) Build(base physics.WorldSettings) (*physics.World, error) {
	w, err := physics.NewWorld(s.Settings.Merge(base))
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	named := make(map[string]*physics.Body, len(s.Bodies))
	for _, bd := range s.Bodies {
		b, err := bd.build()
		if err != nil {
			return nil, err
		}
		w.AddBody(b)
		if bd.Name != "" {
			named[bd.Name] = b
		}
	}

	for i, jd := range s.Joints {
		kind, ok := jointTypes[jd.Type]
		if !ok {
			return nil, fmt.Errorf("config: joint %d: unsupported type %q", i, jd.Type)
		}
		a, ok := named[jd.BodyA]
		if !ok {
			return nil, fmt.Errorf("config: joint %d: unknown bodyA %q", i, jd.BodyA)
		}
		b, ok := named[jd.BodyB]
		if !ok {
			return nil, fmt.Errorf("config: joint %d: unknown bodyB %q", i, jd.BodyB)
		}
		j, err := buildJoint(kind, a, b, jd)
		if err != nil {
			return nil, fmt.Errorf("config: joint %d: %w", i, err)
		}
		w.AddJoint(j)
	}

	return w, nil
}

func buildJoint(kind physics.JointType, a, b *physics.Body, jd JointDesc) (physics.Joint, error) {
	anchorA, anchorB := v2(jd.AnchorA), v2(jd.AnchorB)
	switch kind {
	case physics.JointDistance:
		return physics.NewDistanceJoint(a, b, anchorA, anchorB, jd.Length, jd.Frequency, jd.DampingRatio, -1), nil
	case physics.JointRevolute:
		return physics.NewRevoluteJoint(a, b, anchorA, jd.Frequency, jd.DampingRatio, -1), nil
	case physics.JointLine:
		dir := anchorB.Sub(anchorA)
		return physics.NewLineJoint(a, b, anchorA, dir, jd.Frequency, jd.DampingRatio, -1), nil
	case physics.JointWeld:
		return physics.NewWeldJoint(a, b, anchorA, jd.Frequency, jd.DampingRatio, -1), nil
	default:
		return nil, fmt.Errorf("unsupported joint kind %d", kind)
	}
}
