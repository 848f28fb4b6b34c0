package physics

import "github.com/bresilla/muli/geo"

// WorldSettings holds every tunable of the simulation, mirroring
// original_source/src/physics/world.h's Settings struct field-for-field
// (including its default values) so a caller reproducing a scene from
// the original project gets matching behavior.
type WorldSettings struct {
	DT    float64
	InvDT float64

	Gravity geo.Vec2

	ImpulseAccumulation bool
	WarmStarting        bool

	PositionCorrection     bool
	PositionCorrectionBeta float64
	PenetrationSlop        float64
	RestitutionSlop        float64
	LinearSlop             float64

	ApplyWarmStartingThreshold bool
	WarmStartingThreshold      float64

	BlockSolve bool

	VelocityIterations int
	PositionIterations int

	GJKMaxIteration int
	GJKTolerance    float64
	EPAMaxIteration int
	EPATolerance    float64

	ApplyGravity bool

	AABBMargin     float64
	AABBMultiplier float64

	Sleeping              bool
	LinearSleepTolerance  float64
	AngularSleepTolerance float64
	TimeToSleep           float64

	// SAH selects the broad-phase tree's cost function. spec.md §9
	// resolves the compile-time #if toggle in aabb_tree.h into this
	// settings field, defaulting to Area.
	SAH SAHMode
}

// DefaultWorldSettings matches original_source/src/physics/world.h's
// Settings defaults, plus spec.md §4.6's velocity/position iteration
// counts (8 and 3) which the original keeps as free function parameters
// rather than settings fields.
func DefaultWorldSettings() WorldSettings {
	return WorldSettings{
		DT:    1.0 / 60.0,
		InvDT: 60.0,

		Gravity: geo.V2(0, -10),

		ImpulseAccumulation: true,
		WarmStarting:        true,

		PositionCorrection:     true,
		PositionCorrectionBeta: 0.2,
		PenetrationSlop:        0.005,
		RestitutionSlop:        0.5,
		LinearSlop:             0.005,

		ApplyWarmStartingThreshold: true,
		WarmStartingThreshold:      0.005 * 0.005,

		BlockSolve: true,

		VelocityIterations: 8,
		PositionIterations: 3,

		GJKMaxIteration: gjkMaxIteration,
		GJKTolerance:    gjkTolerance,
		EPAMaxIteration: epaMaxIteration,
		EPATolerance:    epaTolerance,

		ApplyGravity: true,

		// No AABB-margin constant was retrieved from original_source (only
		// aabbtree.cpp's constructor-supplied aabbMargin default of 0.05f
		// for the older spe variant survives; the muli/aabb_tree.h header
		// pulled into the pack omits its own margin constant), so these
		// match Box2D's long-established b2_aabbExtension/
		// b2_aabbMultiplier defaults, the same fattening scheme spec.md
		// §4.1 describes.
		AABBMargin:     0.1,
		AABBMultiplier: 2.0,

		Sleeping:              true,
		LinearSleepTolerance:  0.01,
		AngularSleepTolerance: 2.0 / 180.0 * 3.14159265358979323846,
		TimeToSleep:           0.5,

		SAH: SAHArea,
	}
}
