package post

import (
	"testing"

	"gonum.org/v1/gonum/floats"
)

type nullSink struct{ states []State }

func (n *nullSink) WriteState(s State) error { n.states = append(n.states, s); return nil }
func (n *nullSink) Close() error             { return nil }

func twoPhaseOverlays() []PhasePartial {
	phase0 := PhasePartial{
		Planet:  &PlanetPartial{Variant: str("spherical"), Mu: f64(3.986004418e14), Re: f64(6378137.0)},
		Vehicle: &VehiclePartial{StructureMassKg: f64(1000), PropellantMassKg: f64(500), ReferenceAreaM2: f64(10)},
		EndCriterion: &EndCriterionPartial{
			Key: str("time_since_event"), Comparison: str(">="), Threshold: f64(1.0),
		},
		StepSize: f64(0.1),
		MaxSteps: u64(1000),
		LaunchGeodetic: &LaunchGeodeticPartial{
			LatitudeDeg: f64(28.5), LongitudeDeg: f64(-80.6), AltitudeM: f64(0), AzimuthDeg: f64(90),
		},
	}
	phase1 := PhasePartial{
		EndCriterion: &EndCriterionPartial{
			Key: str("time_since_event"), Comparison: str(">="), Threshold: f64(1.0),
		},
	}
	return []PhasePartial{phase0, phase1}
}

func TestRunMissionTwoPhaseContinuity(t *testing.T) {
	sink := &nullSink{}
	result, err := RunMission(twoPhaseOverlays(), RuntimeConfig{}, sink, func() bool { return false })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Phases) != 2 {
		t.Fatalf("resolved %d phases, want 2", len(result.Phases))
	}
	if len(sink.states) < 2 {
		t.Fatalf("expected at least 2 recorded states, got %d", len(sink.states))
	}

	var phase0Terminal, phase1First State
	for _, s := range sink.states {
		if s.PhaseIndex == 0 {
			phase0Terminal = s
		}
		if s.PhaseIndex == 1 && phase1First == (State{}) {
			phase1First = s
		}
	}

	if !floats.EqualWithinAbs(Norm(phase1First.PositionInertial.Sub(phase0Terminal.PositionInertial)), 0, 1.0) {
		t.Errorf("phase boundary position should be continuous, got delta %v", phase1First.PositionInertial.Sub(phase0Terminal.PositionInertial))
	}
	if !floats.EqualWithinAbs(phase1First.PropellantMass, phase0Terminal.PropellantMass, 1e-6) {
		t.Errorf("propellant mass should carry over: phase0=%f phase1=%f", phase0Terminal.PropellantMass, phase1First.PropellantMass)
	}
}

func TestRunMissionStopsOnConfigError(t *testing.T) {
	overlays := twoPhaseOverlays()
	overlays[0].Planet = nil
	sink := &nullSink{}
	_, err := RunMission(overlays, RuntimeConfig{}, sink, func() bool { return false })
	if err == nil {
		t.Fatal("expected a ConfigError when the first phase has no planet")
	}
	if _, ok := err.(*ConfigError); !ok {
		t.Fatalf("expected *ConfigError, got %T", err)
	}
}

func TestRunMissionPropagatesCancellation(t *testing.T) {
	overlays := twoPhaseOverlays()
	sink := &nullSink{}
	calls := 0
	cancel := func() bool { calls++; return calls > 1 }
	_, err := RunMission(overlays, RuntimeConfig{}, sink, cancel)
	if _, ok := err.(*Cancelled); !ok {
		t.Fatalf("expected *Cancelled, got %v (%T)", err, err)
	}
}
