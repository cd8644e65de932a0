package post

import (
	"testing"

	"gonum.org/v1/gonum/floats"
)

func TestThrustAndFlowExhaustedPropellantIsZero(t *testing.T) {
	v := &Vehicle{Engines: []Engine{{ThrustVac: 1e6, Isp: 300}}}
	force, flow := v.ThrustAndFlow(0, 0, 1.0)
	if force != (Vec3{}) || flow != 0 {
		t.Fatalf("exhausted propellant should give zero thrust and flow, got force=%v flow=%f", force, flow)
	}
}

func TestThrustAndFlowSingleEngineAlignedWithBodyX(t *testing.T) {
	v := &Vehicle{Engines: []Engine{{ThrustVac: 1e6, Isp: 300}}}
	force, flow := v.ThrustAndFlow(1000, 0, 1.0)
	if !floats.EqualWithinAbs(force[0], 1e6, 1e-6) {
		t.Fatalf("force.x = %f, want 1e6", force[0])
	}
	if flow >= 0 {
		t.Fatal("flow should be negative when burning propellant")
	}
}

func TestThrustAndFlowThrottleScalesLinearly(t *testing.T) {
	v := &Vehicle{Engines: []Engine{{ThrustVac: 1e6, Isp: 300}}}
	full, fullFlow := v.ThrustAndFlow(1000, 0, 1.0)
	half, halfFlow := v.ThrustAndFlow(1000, 0, 0.5)
	if !floats.EqualWithinAbs(half[0], full[0]/2, 1e-6) {
		t.Fatalf("half throttle force = %f, want %f", half[0], full[0]/2)
	}
	if !floats.EqualWithinAbs(halfFlow, fullFlow/2, 1e-9) {
		t.Fatalf("half throttle flow = %f, want %f", halfFlow, fullFlow/2)
	}
}

func TestThrustAndFlowMultipleEnginesSum(t *testing.T) {
	v := &Vehicle{Engines: []Engine{
		{ThrustVac: 1e6, Isp: 300},
		{ThrustVac: 2e6, Isp: 300},
	}}
	force, _ := v.ThrustAndFlow(1000, 0, 1.0)
	if !floats.EqualWithinAbs(force[0], 3e6, 1e-6) {
		t.Fatalf("summed force.x = %f, want 3e6", force[0])
	}
}
