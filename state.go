package post

import "gonum.org/v1/gonum/mat"

// State is the full record of one instant of simulated flight (spec §3). It
// is a plain value type: copied into the integrator's scratch on every RK4
// stage evaluation and copied again onto the output sink after each
// completed step.
type State struct {
	Time           float64 // s, monotonically nondecreasing within a phase
	TimeSinceEvent float64 // s, since the start of the current phase

	PositionInertial Vec3 // m
	VelocityInertial Vec3 // m/s

	PositionPlanet       Vec3 // m, Earth-rotating frame
	Altitude             float64
	AltitudeGeopotential float64
	VelocityPlanet       Vec3 // m/s
	VelocityAtmosphere   Vec3 // m/s, planet velocity minus static wind

	Mass           float64 // kg
	StructureMass  float64 // kg, constant within a phase
	PropellantMass float64 // kg, >= 0
	MassFlow       float64 // kg/s, <= 0

	ThrustForceBody         Vec3 // N, body frame
	AeroForceBody           Vec3 // N, body frame
	VehicleAccelerationBody Vec3 // m/s^2, sensed = (T+A)/m
	GravityAcceleration     Vec3 // m/s^2, inertial

	Temperature     float64 // K
	Pressure        float64 // Pa
	Density         float64 // kg/m^3
	MachNumber      float64
	DynamicPressure float64 // Pa

	Alpha      float64 // rad, angle of attack
	EulerRoll  float64 // rad
	EulerYaw   float64 // rad
	EulerPitch float64 // rad
	Throttle   float64 // in [0,1]

	IB *mat.Dense // inertial -> body direction cosine matrix, stage 4+

	StepIndex  uint64
	PhaseIndex int
}

// massInvariantOK reports whether Mass == StructureMass + PropellantMass to
// float precision, one of the invariants checked in state_test.go.
func (s State) massInvariantOK(tol float64) bool {
	diff := s.Mass - (s.StructureMass + s.PropellantMass)
	if diff < 0 {
		diff = -diff
	}
	return diff <= tol
}
