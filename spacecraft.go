package post

import (
	"os"

	kitlog "github.com/go-kit/kit/log"
)

// Vehicle is the propulsion, aerodynamic, and mass configuration of one
// phase (spec §3 Phase, §4.F, §4.G).
type Vehicle struct {
	StructureMass   float64 // kg, constant
	ReferenceArea   float64 // m^2, for aerodynamic force assembly
	DragTable       Table
	LiftTable       Table
	SideTable       Table
	Engines         []Engine
	MaxAcceleration *float64 // sensed m/s^2; nil disables auto-throttle

	logger           kitlog.Logger
	throttleEngaged  bool
	exhaustionLogged bool
}

// VehicleLogInit initializes the logger for a phase's vehicle.
func VehicleLogInit(phase int) kitlog.Logger {
	klog := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	klog = kitlog.With(klog, "subsys", "vehicle", "phase", phase)
	return klog
}

// ThrustAndFlow sums every engine's ambient-corrected thrust into a single
// body-frame force and mass-flow rate, scaled by throttle (spec §4.F). If
// propellant is exhausted both are clamped to zero, per the documented
// clamp-then-zero policy (spec §7).
func (v *Vehicle) ThrustAndFlow(propellantMass, ambientPressure, throttle float64) (Vec3, float64) {
	if propellantMass <= 0 {
		v.logPropellantExhaustion()
		return Vec3{}, 0
	}
	var force Vec3
	var flow float64
	for _, e := range v.Engines {
		t := e.thrust(ambientPressure) * throttle
		force = force.Add(e.direction().Scale(t))
		flow += e.massFlow() * throttle
	}
	return force, flow
}

// logPropellantExhaustion logs once per phase when the propellant tank runs
// dry on a vehicle that still carries engines expecting thrust.
func (v *Vehicle) logPropellantExhaustion() {
	if v.logger == nil || v.exhaustionLogged || len(v.Engines) == 0 {
		return
	}
	v.exhaustionLogged = true
	v.logger.Log("level", "warning", "msg", "propellant exhausted")
}

// logThrottleTransition logs when the commanded throttle first drops below
// full (auto-throttle engages) and when it returns to full (disengages).
func (v *Vehicle) logThrottleTransition(throttle float64) {
	if v.logger == nil || v.MaxAcceleration == nil {
		return
	}
	engaged := throttle < 1.0
	if engaged == v.throttleEngaged {
		return
	}
	v.throttleEngaged = engaged
	if engaged {
		v.logger.Log("level", "warning", "msg", "auto-throttle engaged", "throttle", throttle)
	} else {
		v.logger.Log("level", "warning", "msg", "auto-throttle disengaged", "throttle", throttle)
	}
}
