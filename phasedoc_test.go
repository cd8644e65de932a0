package post

import (
	"encoding/json"
	"testing"

	"gonum.org/v1/gonum/floats"
)

func f64(v float64) *float64 { return &v }
func str(v string) *string   { return &v }
func u64(v uint64) *uint64   { return &v }

func firstPhaseOverlay() PhasePartial {
	return PhasePartial{
		Planet: &PlanetPartial{Variant: str("spherical"), Mu: f64(3.986004418e14), Re: f64(6378137.0)},
		Vehicle: &VehiclePartial{
			StructureMassKg:  f64(1000),
			PropellantMassKg: f64(500),
			ReferenceAreaM2:  f64(10),
		},
		EndCriterion: &EndCriterionPartial{Key: str("altitude"), Comparison: str(">="), Threshold: f64(100000)},
		StepSize:     f64(0.5),
		MaxSteps:     u64(1000),
		LaunchGeodetic: &LaunchGeodeticPartial{
			LatitudeDeg: f64(28.5), LongitudeDeg: f64(-80.6), AltitudeM: f64(0), AzimuthDeg: f64(90),
		},
	}
}

func TestParsePhaseDocumentRejectsEmptyArray(t *testing.T) {
	if _, err := ParsePhaseDocument([]byte(`[]`)); err == nil {
		t.Fatal("expected an error for an empty phase document")
	}
}

func TestParsePhaseDocumentRejectsInvalidJSON(t *testing.T) {
	if _, err := ParsePhaseDocument([]byte(`not json`)); err == nil {
		t.Fatal("expected an error for malformed JSON")
	}
}

func TestMergePhaseFirstPhaseRequiresPlanet(t *testing.T) {
	overlay := firstPhaseOverlay()
	overlay.Planet = nil
	_, err := mergePhase(0, nil, overlay, RuntimeConfig{}, [3]float64{})
	if err == nil {
		t.Fatal("expected a ConfigError when the first phase omits a planet")
	}
}

func TestMergePhaseFirstPhaseRequiresEndCriterion(t *testing.T) {
	overlay := firstPhaseOverlay()
	overlay.EndCriterion = nil
	_, err := mergePhase(0, nil, overlay, RuntimeConfig{}, [3]float64{})
	if err == nil {
		t.Fatal("expected a ConfigError when no end criterion is ever set")
	}
}

func TestMergePhaseInheritsUnsetFieldsFromParent(t *testing.T) {
	parent, err := mergePhase(0, nil, firstPhaseOverlay(), RuntimeConfig{}, [3]float64{})
	if err != nil {
		t.Fatalf("unexpected error resolving phase 0: %v", err)
	}
	overlay := PhasePartial{
		EndCriterion: &EndCriterionPartial{Key: str("velocity_norm"), Comparison: str(">="), Threshold: f64(7800)},
	}
	child, err := mergePhase(1, parent, overlay, RuntimeConfig{}, [3]float64{})
	if err != nil {
		t.Fatalf("unexpected error merging phase 1: %v", err)
	}
	if !floats.EqualWithinAbs(child.Vehicle.StructureMass, 1000, 1e-9) {
		t.Fatalf("inherited structure mass = %f, want 1000", child.Vehicle.StructureMass)
	}
	if !floats.EqualWithinAbs(child.Planet.Mu, parent.Planet.Mu, 1e-6) {
		t.Fatal("planet should be inherited unchanged")
	}
}

func TestMergePhaseExplicitNullAndMissingBothInherit(t *testing.T) {
	parent, _ := mergePhase(0, nil, firstPhaseOverlay(), RuntimeConfig{}, [3]float64{})

	var withNullVehicle PhasePartial
	if err := json.Unmarshal([]byte(`{"end_criterion":{"key":"velocity_norm","comparison":">=","threshold":7800},"vehicle":null}`), &withNullVehicle); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	childNull, err := mergePhase(1, parent, withNullVehicle, RuntimeConfig{}, [3]float64{})
	if err != nil {
		t.Fatalf("merge with explicit null vehicle: %v", err)
	}

	var missingVehicle PhasePartial
	if err := json.Unmarshal([]byte(`{"end_criterion":{"key":"velocity_norm","comparison":">=","threshold":7800}}`), &missingVehicle); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	childMissing, err := mergePhase(1, parent, missingVehicle, RuntimeConfig{}, [3]float64{})
	if err != nil {
		t.Fatalf("merge with missing vehicle field: %v", err)
	}

	if childNull.Vehicle.StructureMass != childMissing.Vehicle.StructureMass {
		t.Fatal("explicit JSON null and an absent field should resolve identically")
	}
}

func TestMergePhaseEngineListReplacedWholesale(t *testing.T) {
	overlay := firstPhaseOverlay()
	overlay.Vehicle.Engines = &[]EnginePartial{
		{ThrustVacN: f64(1e6), ExitAreaM2: f64(1), IspS: f64(300), IncidencePitchDeg: f64(0), IncidenceYawDeg: f64(0)},
	}
	ph, err := mergePhase(0, nil, overlay, RuntimeConfig{}, [3]float64{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ph.Vehicle.Engines) != 1 {
		t.Fatalf("engines = %d, want 1", len(ph.Vehicle.Engines))
	}

	child := PhasePartial{
		EndCriterion: overlay.EndCriterion,
		Vehicle: &VehiclePartial{
			Engines: &[]EnginePartial{
				{ThrustVacN: f64(2e6), ExitAreaM2: f64(2), IspS: f64(310), IncidencePitchDeg: f64(0), IncidenceYawDeg: f64(0)},
				{ThrustVacN: f64(2e6), ExitAreaM2: f64(2), IspS: f64(310), IncidencePitchDeg: f64(0), IncidenceYawDeg: f64(0)},
			},
		},
	}
	child2, err := mergePhase(1, ph, child, RuntimeConfig{}, [3]float64{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(child2.Vehicle.Engines) != 2 {
		t.Fatalf("engines after override = %d, want 2 (wholesale replace, not merge)", len(child2.Vehicle.Engines))
	}
}

func TestMergePhaseEngineMissingFieldIsError(t *testing.T) {
	overlay := firstPhaseOverlay()
	overlay.Vehicle.Engines = &[]EnginePartial{
		{ThrustVacN: f64(1e6), ExitAreaM2: f64(1), IspS: f64(300), IncidencePitchDeg: f64(0)}, // missing yaw
	}
	_, err := mergePhase(0, nil, overlay, RuntimeConfig{}, [3]float64{})
	if err == nil {
		t.Fatal("expected a ConfigError for an incomplete engine override")
	}
}

func TestMergePhaseMaxAccelerationNonPositiveDisablesAutoThrottle(t *testing.T) {
	overlay := firstPhaseOverlay()
	zero := 0.0
	overlay.Vehicle.MaxAccelerationMps2 = &zero
	ph, err := mergePhase(0, nil, overlay, RuntimeConfig{}, [3]float64{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ph.Vehicle.MaxAcceleration != nil {
		t.Fatal("max_acceleration_mps2 <= 0 should disable auto-throttle (nil pointer)")
	}
}

func TestMergePhaseRejectsUnknownEndCriterionKey(t *testing.T) {
	overlay := firstPhaseOverlay()
	overlay.EndCriterion.Key = str("not_a_real_key")
	_, err := mergePhase(0, nil, overlay, RuntimeConfig{}, [3]float64{})
	if err == nil {
		t.Fatal("expected a ConfigError for an unknown end-criterion key")
	}
}

func TestMergePhaseSteeringAnchorsZeroOnFirstPhase(t *testing.T) {
	overlay := firstPhaseOverlay()
	overlay.Steering = &SteeringPartial{
		Pitch: &SteeringAxisPartial{C1: f64(0.01)},
	}
	ph, err := mergePhase(0, nil, overlay, RuntimeConfig{}, [3]float64{99, 99, 99})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ph.Steering.Pitch.C0 != 0 {
		t.Fatalf("first phase pitch.c0 = %f, want 0", ph.Steering.Pitch.C0)
	}
}

func TestMergePhaseSteeringAnchorsToPreviousTerminalAngles(t *testing.T) {
	parent, _ := mergePhase(0, nil, firstPhaseOverlay(), RuntimeConfig{}, [3]float64{})
	child := PhasePartial{EndCriterion: firstPhaseOverlay().EndCriterion}
	ph, err := mergePhase(1, parent, child, RuntimeConfig{}, [3]float64{0.1, 0.2, 0.3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !floats.EqualWithinAbs(ph.Steering.Pitch.C0, 0.3, 1e-12) {
		t.Fatalf("pitch.c0 = %f, want 0.3 (inherited from previous terminal state)", ph.Steering.Pitch.C0)
	}
}

func TestInitialStateFirstPhaseRequiresLaunchGeodetic(t *testing.T) {
	overlay := firstPhaseOverlay()
	overlay.LaunchGeodetic = nil
	ph, _ := mergePhase(0, nil, overlay, RuntimeConfig{}, [3]float64{})
	_, _, err := initialState(0, ph, overlay, nil, nil)
	if err == nil {
		t.Fatal("expected a ConfigError when the first phase has no launch_geodetic block")
	}
}

func TestInitialStateLaterPhaseInheritsPropellantMass(t *testing.T) {
	overlay := firstPhaseOverlay()
	ph, _ := mergePhase(0, nil, overlay, RuntimeConfig{}, [3]float64{})
	y0, il, err := initialState(0, ph, overlay, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	prevTerminal := &State{
		PositionInertial: Vec3{y0[0], y0[1], y0[2]},
		VelocityInertial: Vec3{y0[3], y0[4], y0[5]},
		PropellantMass:   321,
	}
	y1, _, err := initialState(1, ph, PhasePartial{}, prevTerminal, il)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if y1[6] != 321 {
		t.Fatalf("inherited propellant mass = %f, want 321", y1[6])
	}
}

func TestInitialStatePropellantMassOverrideResetsConsumption(t *testing.T) {
	overlay := firstPhaseOverlay()
	ph, _ := mergePhase(0, nil, overlay, RuntimeConfig{}, [3]float64{})
	y0, il, _ := initialState(0, ph, overlay, nil, nil)
	prevTerminal := &State{
		PositionInertial: Vec3{y0[0], y0[1], y0[2]},
		VelocityInertial: Vec3{y0[3], y0[4], y0[5]},
		PropellantMass:   50,
	}
	reset := PhasePartial{Vehicle: &VehiclePartial{PropellantMassKg: f64(900)}}
	y1, _, err := initialState(1, ph, reset, prevTerminal, il)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if y1[6] != 900 {
		t.Fatalf("reset propellant mass = %f, want 900", y1[6])
	}
}

func TestEndCriterionSignedResidualDirection(t *testing.T) {
	gte := EndCriterion{Key: "altitude", Comparison: ">=", Threshold: 1000}
	if r := gte.signedResidual(&State{Altitude: 500}); r >= 0 {
		t.Fatalf(">= criterion unmet should be negative, got %f", r)
	}
	if r := gte.signedResidual(&State{Altitude: 1500}); r <= 0 {
		t.Fatalf(">= criterion met should be positive, got %f", r)
	}
	lte := EndCriterion{Key: "altitude", Comparison: "<=", Threshold: 1000}
	if r := lte.signedResidual(&State{Altitude: 500}); r <= 0 {
		t.Fatalf("<= criterion met should be positive, got %f", r)
	}
	if r := lte.signedResidual(&State{Altitude: 1500}); r >= 0 {
		t.Fatalf("<= criterion unmet should be negative, got %f", r)
	}
}
