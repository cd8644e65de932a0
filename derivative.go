package post

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// PhaseModel bundles everything the derivative assembler needs that is
// constant within one phase: the planet, atmosphere, vehicle, steering
// program, and the phase's fixed inertial-to-launch-frame matrix (spec §4.H).
type PhaseModel struct {
	Planet           Planet
	Atmosphere       Atmosphere
	Vehicle          Vehicle
	Steering         Steering
	IL               *mat.Dense
	SteeringVariable string // state key used as the steering polynomials' independent variable
	PhaseStartTime   float64
}

// Derivative assembles a complete State at (t, y) through the fixed stage
// order of spec §4.H — kinematic, planet-relative, atmosphere, steering,
// forces, gravity, derivative — and returns both the assembled record and
// the time derivative of the 7-element state vector
// y = (rx, ry, rz, vx, vy, vz, propellant_mass).
func Derivative(t float64, y []float64, phaseIndex int, stepIndex uint64, ph *PhaseModel) ([]float64, State, error) {
	var s State
	r := Vec3{y[0], y[1], y[2]}
	v := Vec3{y[3], y[4], y[5]}
	propMass := y[6]

	// stage 1: kinematic
	s.Time = t
	s.TimeSinceEvent = t - ph.PhaseStartTime
	s.PositionInertial = r
	s.VelocityInertial = v
	s.StructureMass = ph.Vehicle.StructureMass
	s.PropellantMass = propMass
	s.Mass = s.StructureMass + s.PropellantMass
	s.StepIndex = stepIndex
	s.PhaseIndex = phaseIndex

	// stage 2: planet-relative
	s.PositionPlanet = ph.Planet.PositionPlanet(r, t)
	s.Altitude = ph.Planet.Altitude(r, t)
	s.AltitudeGeopotential = ph.Planet.AltitudeGeopotential(s.Altitude)
	omegaVec := Vec3{0, 0, ph.Planet.Omega}
	s.VelocityPlanet = MulVec3(Rz(-ph.Planet.Omega*t), v).Sub(Cross(omegaVec, s.PositionPlanet))
	s.VelocityAtmosphere = s.VelocityPlanet.Sub(ph.Atmosphere.WindPlanet)

	// stage 3: atmosphere
	atmo := ph.Atmosphere.sample(s.AltitudeGeopotential)
	s.Temperature, s.Pressure, s.Density = atmo.Temperature, atmo.Pressure, atmo.Density
	vAtmNorm := Norm(s.VelocityAtmosphere)
	if a := speedOfSound(s.Temperature); a > 0 {
		s.MachNumber = vAtmNorm / a
	}
	s.DynamicPressure = 0.5 * s.Density * vAtmNorm * vAtmNorm

	// stage 4: steering
	yVar := ReadStateKey(ph.SteeringVariable, &s)
	s.EulerRoll = ph.Steering.Roll.Evaluate(yVar)
	s.EulerYaw = ph.Steering.Yaw.Evaluate(yVar)
	s.EulerPitch = ph.Steering.Pitch.Evaluate(yVar)
	s.IB = ComposeIB(s.EulerRoll, s.EulerYaw, s.EulerPitch, ph.IL)

	// stage 5: forces
	vAtmBody := MulVec3(s.IB, s.VelocityAtmosphere)
	s.Alpha = AngleOfAttack(vAtmBody)
	cd := ph.Vehicle.DragTable.Lookup(&s)
	cl := ph.Vehicle.LiftTable.Lookup(&s)
	cy := ph.Vehicle.SideTable.Lookup(&s)
	s.AeroForceBody = AeroForceBody(s.DynamicPressure, ph.Vehicle.ReferenceArea, cd, cl, cy, s.Alpha)

	thrustFull, flowFull := ph.Vehicle.ThrustAndFlow(propMass, s.Pressure, 1.0)
	throttle := 1.0
	if ph.Vehicle.MaxAcceleration != nil {
		var err error
		throttle, err = AutoThrottle(thrustFull, s.AeroForceBody, s.Mass, *ph.Vehicle.MaxAcceleration)
		if err != nil {
			ne := err.(*NumericError)
			ne.Phase = phaseIndex
			ne.State = s
			if ph.Vehicle.logger != nil {
				ph.Vehicle.logger.Log("level", "critical", "msg", ne.Reason, "t", t)
			}
			return nil, s, ne
		}
	}
	ph.Vehicle.logThrottleTransition(throttle)
	s.Throttle = throttle
	s.ThrustForceBody = thrustFull.Scale(throttle)
	s.MassFlow = flowFull * throttle
	s.VehicleAccelerationBody = s.ThrustForceBody.Add(s.AeroForceBody).Scale(1 / s.Mass)

	// stage 6: gravity
	s.GravityAcceleration = ph.Planet.Gravity(r)

	// stage 7: derivative
	accelInertial := MulVec3(TransposeMat3(s.IB), s.VehicleAccelerationBody).Add(s.GravityAcceleration)
	dy := []float64{v[0], v[1], v[2], accelInertial[0], accelInertial[1], accelInertial[2], s.MassFlow}

	for _, d := range dy {
		if math.IsNaN(d) || math.IsInf(d, 0) {
			ne := &NumericError{Phase: phaseIndex, Reason: "non-finite derivative", State: s}
			if ph.Vehicle.logger != nil {
				ph.Vehicle.logger.Log("level", "critical", "msg", ne.Reason, "t", t)
			}
			return nil, s, ne
		}
	}
	return dy, s, nil
}
