package post

import "fmt"

// stateKeyEntry pairs a state-variable projection with the assembly stage
// (§4.H) at which it first becomes defined. A table axis or end criterion
// naming a key whose stage is later than the assembler's current stage
// reads zero — this is the documented limitation of §4.H/§9, made testable
// by carrying the stage alongside the projection instead of hard-coding it
// into every caller.
type stateKeyEntry struct {
	stage int
	read  func(*State) float64
}

func vecAxis(v Vec3, axis int) float64 { return v[axis] }

// stateKeys is the single point of dispatch for every state-variable tag in
// the closed set documented in spec §6. Adding a new tag means adding one
// entry here (§9 design notes).
var stateKeys = map[string]stateKeyEntry{
	"time":             {1, func(s *State) float64 { return s.Time }},
	"time_since_event": {1, func(s *State) float64 { return s.TimeSinceEvent }},

	"position1":            {1, func(s *State) float64 { return vecAxis(s.PositionInertial, 0) }},
	"position2":            {1, func(s *State) float64 { return vecAxis(s.PositionInertial, 1) }},
	"position3":            {1, func(s *State) float64 { return vecAxis(s.PositionInertial, 2) }},
	"position_norm":        {1, func(s *State) float64 { return Norm(s.PositionInertial) }},
	"position_planet1":     {2, func(s *State) float64 { return vecAxis(s.PositionPlanet, 0) }},
	"position_planet2":     {2, func(s *State) float64 { return vecAxis(s.PositionPlanet, 1) }},
	"position_planet3":     {2, func(s *State) float64 { return vecAxis(s.PositionPlanet, 2) }},
	"position_planet_norm": {2, func(s *State) float64 { return Norm(s.PositionPlanet) }},

	"altitude":              {2, func(s *State) float64 { return s.Altitude }},
	"altitude_geopotential": {2, func(s *State) float64 { return s.AltitudeGeopotential }},

	"velocity1":     {1, func(s *State) float64 { return vecAxis(s.VelocityInertial, 0) }},
	"velocity2":     {1, func(s *State) float64 { return vecAxis(s.VelocityInertial, 1) }},
	"velocity3":     {1, func(s *State) float64 { return vecAxis(s.VelocityInertial, 2) }},
	"velocity_norm": {1, func(s *State) float64 { return Norm(s.VelocityInertial) }},

	"velocity_planet1":     {2, func(s *State) float64 { return vecAxis(s.VelocityPlanet, 0) }},
	"velocity_planet2":     {2, func(s *State) float64 { return vecAxis(s.VelocityPlanet, 1) }},
	"velocity_planet3":     {2, func(s *State) float64 { return vecAxis(s.VelocityPlanet, 2) }},
	"velocity_planet_norm": {2, func(s *State) float64 { return Norm(s.VelocityPlanet) }},

	"velocity_atmosphere1":     {2, func(s *State) float64 { return vecAxis(s.VelocityAtmosphere, 0) }},
	"velocity_atmosphere2":     {2, func(s *State) float64 { return vecAxis(s.VelocityAtmosphere, 1) }},
	"velocity_atmosphere3":     {2, func(s *State) float64 { return vecAxis(s.VelocityAtmosphere, 2) }},
	"velocity_atmosphere_norm": {2, func(s *State) float64 { return Norm(s.VelocityAtmosphere) }},

	"gravity_acceleration1":     {6, func(s *State) float64 { return vecAxis(s.GravityAcceleration, 0) }},
	"gravity_acceleration2":     {6, func(s *State) float64 { return vecAxis(s.GravityAcceleration, 1) }},
	"gravity_acceleration3":     {6, func(s *State) float64 { return vecAxis(s.GravityAcceleration, 2) }},
	"gravity_acceleration_norm": {6, func(s *State) float64 { return Norm(s.GravityAcceleration) }},

	"thrust_force_body1":     {5, func(s *State) float64 { return vecAxis(s.ThrustForceBody, 0) }},
	"thrust_force_body2":     {5, func(s *State) float64 { return vecAxis(s.ThrustForceBody, 1) }},
	"thrust_force_body3":     {5, func(s *State) float64 { return vecAxis(s.ThrustForceBody, 2) }},
	"thrust_force_body_norm": {5, func(s *State) float64 { return Norm(s.ThrustForceBody) }},

	"aero_force_body1":     {5, func(s *State) float64 { return vecAxis(s.AeroForceBody, 0) }},
	"aero_force_body2":     {5, func(s *State) float64 { return vecAxis(s.AeroForceBody, 1) }},
	"aero_force_body3":     {5, func(s *State) float64 { return vecAxis(s.AeroForceBody, 2) }},
	"aero_force_body_norm": {5, func(s *State) float64 { return Norm(s.AeroForceBody) }},

	"vehicle_acceleration_body1":     {5, func(s *State) float64 { return vecAxis(s.VehicleAccelerationBody, 0) }},
	"vehicle_acceleration_body2":     {5, func(s *State) float64 { return vecAxis(s.VehicleAccelerationBody, 1) }},
	"vehicle_acceleration_body3":     {5, func(s *State) float64 { return vecAxis(s.VehicleAccelerationBody, 2) }},
	"vehicle_acceleration_body_norm": {5, func(s *State) float64 { return Norm(s.VehicleAccelerationBody) }},

	"mass":            {1, func(s *State) float64 { return s.Mass }},
	"propellant_mass":  {1, func(s *State) float64 { return s.PropellantMass }},
	"mass_flow":        {5, func(s *State) float64 { return s.MassFlow }},

	"temperature":       {3, func(s *State) float64 { return s.Temperature }},
	"pressure":          {3, func(s *State) float64 { return s.Pressure }},
	"density":           {3, func(s *State) float64 { return s.Density }},
	"mach_number":       {3, func(s *State) float64 { return s.MachNumber }},
	"dynamic_pressure":  {3, func(s *State) float64 { return s.DynamicPressure }},

	"alpha": {5, func(s *State) float64 { return s.Alpha }},

	"euler_angles_roll":  {4, func(s *State) float64 { return s.EulerRoll }},
	"euler_angles_yaw":   {4, func(s *State) float64 { return s.EulerYaw }},
	"euler_angles_pitch": {4, func(s *State) float64 { return s.EulerPitch }},

	"throttle": {5, func(s *State) float64 { return s.Throttle }},
}

// ValidateStateKey returns an error if key is not a member of the closed set
// of state-variable tags (spec §6); callers wrap it in a *ConfigError.
func ValidateStateKey(key string) error {
	if _, ok := stateKeys[key]; !ok {
		return fmt.Errorf("unknown state-variable key %q", key)
	}
	return nil
}

// readStateKey projects key out of s. Keys whose defining stage is later
// than stage read as zero (§4.H stage 4, §9): this is the documented
// limitation, not a bug, and is exercised directly by tests.
func readStateKey(key string, s *State, stage int) float64 {
	entry, ok := stateKeys[key]
	if !ok {
		return 0
	}
	if entry.stage > stage {
		return 0
	}
	return entry.read(s)
}

// ReadStateKey projects key out of a fully-assembled state (stage 7), for
// use by end-criteria and by any external caller that only ever sees
// completed per-step records.
func ReadStateKey(key string, s *State) float64 {
	return readStateKey(key, s, 7)
}
