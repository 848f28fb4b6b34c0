package physics

import "github.com/bresilla/muli/geo"

// JointType enumerates the joint kinds spec.md §4.5 lists.
type JointType int

const (
	JointDistance JointType = iota
	JointRevolute
	JointLine
	JointWeld
)

// jointEdge is an intrusive list node linking a Body to one Joint it
// participates in, the joint-graph counterpart of contactEdge.
type jointEdge struct {
	other *Body
	joint Joint
}

// Joint is the shared contract every concrete joint kind implements:
// build its effective mass during prepare and consume one velocity-iteration
// pass; no joint kind has a separate position-correction pass.
// Grounded on original_source/src/dynamics/constraint/joint/
// revolute_joint.cpp's Prepare/SolveVelocityConstraint/ApplyImpulse shape,
// generalized across DoF counts per spec.md §4.5's table.
type Joint interface {
	Type() JointType
	BodyA() *Body
	BodyB() *Body
	prepare(dt, invDt float64, settings WorldSettings)
	solveVelocity()
	destroyed() bool
	setDestroyed()
}

// jointBase is the scaffold every concrete joint embeds: the body pair,
// soft-constraint parameters (frequency/dampingRatio → gamma/beta), and
// the intrusive edges World uses for island assembly and contact-edge-
// style iteration. Grounded on spec.md §4.5 ("local anchor frames ...
// soft parameters ... accumulated impulse") and
// original_source/src/dynamics/constraint/joint/distance_joint.cpp's
// constructor (localAnchorA/B captured via MulT at creation time).
type jointBase struct {
	bodyA, bodyB *Body
	edgeA, edgeB jointEdge

	frequency    float64
	dampingRatio float64
	jointMass    float64

	gamma float64
	beta  float64

	dead bool
}

func newJointBase(a, b *Body, frequency, dampingRatio, jointMass float64) jointBase {
	jb := jointBase{
		bodyA:        a,
		bodyB:        b,
		frequency:    frequency,
		dampingRatio: dampingRatio,
		jointMass:    jointMass,
	}
	jb.edgeA = jointEdge{other: b}
	jb.edgeB = jointEdge{other: a}
	return jb
}

func (j *jointBase) BodyA() *Body  { return j.bodyA }
func (j *jointBase) BodyB() *Body  { return j.bodyB }
func (j *jointBase) destroyed() bool { return j.dead }
func (j *jointBase) setDestroyed()    { j.dead = true }

// computeSoftConstraint derives gamma (constraint-force mixing) and beta
// (error-reduction parameter) from frequency/dampingRatio/jointMass the
// way Box2D's b2LinearStiffness and Erin Catto's soft-constraint notes
// do (angular frequency omega = 2*pi*f, spring stiffness k = mass*omega^2,
// damping coefficient c = 2*mass*dampingRatio*omega). No original_source
// header carried this derivation (only its consumption as a pair of
// scalar fields inside Prepare survives in the .cpp files retrieved), so
// it is written directly from the standard soft-constraint formula every
// joint's Prepare() in this pack's sources references by name.
func (j *jointBase) computeSoftConstraint(effectiveMass, dt float64) {
	if j.frequency <= 0 {
		j.gamma, j.beta = 0, 1
		return
	}
	mass := j.jointMass
	if mass < 0 {
		mass = effectiveMass
	}
	omega := 2 * 3.14159265358979323846 * j.frequency
	k := mass * omega * omega
	c := 2 * mass * j.dampingRatio * omega
	j.gamma = dt * (c + dt*k)
	if j.gamma > geo.Epsilon {
		j.gamma = 1.0 / j.gamma
	}
	j.beta = dt * k * j.gamma
}
