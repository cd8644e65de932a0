package post

import (
	"encoding/json"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// EnginePartial is one engine entry in a phase document's engine list. Every
// field is required: the engine list is replaced wholesale on override, not
// merged element by element (spec §4.J).
type EnginePartial struct {
	ThrustVacN        *float64 `json:"thrust_vac_n"`
	ExitAreaM2        *float64 `json:"exit_area_m2"`
	IspS              *float64 `json:"isp_s"`
	IncidencePitchDeg *float64 `json:"incidence_pitch_deg"`
	IncidenceYawDeg   *float64 `json:"incidence_yaw_deg"`
}

func (e EnginePartial) build(phase int, i int) (Engine, error) {
	missing := func(field string) error {
		return &ConfigError{Phase: phase, Field: fmt.Sprintf("vehicle.engines[%d].%s", i, field), Msg: "required when the engine list is overridden"}
	}
	switch {
	case e.ThrustVacN == nil:
		return Engine{}, missing("thrust_vac_n")
	case e.ExitAreaM2 == nil:
		return Engine{}, missing("exit_area_m2")
	case e.IspS == nil:
		return Engine{}, missing("isp_s")
	case e.IncidencePitchDeg == nil:
		return Engine{}, missing("incidence_pitch_deg")
	case e.IncidenceYawDeg == nil:
		return Engine{}, missing("incidence_yaw_deg")
	}
	return Engine{
		ThrustVac:      *e.ThrustVacN,
		ExitArea:       *e.ExitAreaM2,
		Isp:            *e.IspS,
		IncidencePitch: Deg2rad(*e.IncidencePitchDeg),
		IncidenceYaw:   Deg2rad(*e.IncidenceYawDeg),
	}, nil
}

// SteeringAxisPartial is one axis of a phase document's steering overlay.
type SteeringAxisPartial struct {
	C0 *float64 `json:"c0"`
	C1 *float64 `json:"c1"`
	C2 *float64 `json:"c2"`
	C3 *float64 `json:"c3"`
}

func mergeSteeringAxis(parent SteeringPolynomial, o *SteeringAxisPartial) (SteeringPolynomial, bool) {
	explicitC0 := false
	if o == nil {
		return parent, explicitC0
	}
	if o.C0 != nil {
		parent.C0 = *o.C0
		explicitC0 = true
	}
	if o.C1 != nil {
		parent.C1 = *o.C1
	}
	if o.C2 != nil {
		parent.C2 = *o.C2
	}
	if o.C3 != nil {
		parent.C3 = *o.C3
	}
	return parent, explicitC0
}

// SteeringPartial overlays the three steering axes and the independent
// variable they are evaluated against.
type SteeringPartial struct {
	Variable *string               `json:"variable"`
	Roll     *SteeringAxisPartial  `json:"roll"`
	Yaw      *SteeringAxisPartial  `json:"yaw"`
	Pitch    *SteeringAxisPartial  `json:"pitch"`
}

// PlanetPartial overlays the planet/gravity model. Variant selects one of
// the named presets; Mu and Re are read by the "spherical" and "custom"
// variants, the remaining fields only by "custom".
type PlanetPartial struct {
	Variant *string  `json:"variant"`
	Mu      *float64 `json:"mu"`
	Re      *float64 `json:"re"`
	Rp      *float64 `json:"rp"`
	J2      *float64 `json:"j2"`
	J3      *float64 `json:"j3"`
	J4      *float64 `json:"j4"`
	Omega   *float64 `json:"omega"`
}

func (p *PlanetPartial) build(phase int) (Planet, error) {
	if p == nil || p.Variant == nil {
		return Planet{}, &ConfigError{Phase: phase, Field: "planet.variant", Msg: "required on the first phase"}
	}
	switch *p.Variant {
	case "spherical":
		if p.Mu == nil || p.Re == nil {
			return Planet{}, &ConfigError{Phase: phase, Field: "planet", Msg: "spherical variant requires mu and re"}
		}
		return NewSphericalPlanet(*p.Mu, *p.Re), nil
	case "fisher1960":
		return NewFisher1960Planet(), nil
	case "smithsonian":
		return NewSmithsonianPlanet(), nil
	case "custom":
		pl := Planet{Variant: CustomPlanet}
		for _, f := range []struct {
			dst *float64
			src *float64
		}{{&pl.Mu, p.Mu}, {&pl.Re, p.Re}, {&pl.Rp, p.Rp}, {&pl.J2, p.J2}, {&pl.J3, p.J3}, {&pl.J4, p.J4}, {&pl.Omega, p.Omega}} {
			if f.src != nil {
				*f.dst = *f.src
			}
		}
		return pl, nil
	default:
		return Planet{}, &ConfigError{Phase: phase, Field: "planet.variant", Msg: fmt.Sprintf("unknown variant %q", *p.Variant)}
	}
}

// AtmospherePartial overlays whether the atmosphere model is active and the
// static planet-frame wind vector.
type AtmospherePartial struct {
	Enabled    *bool      `json:"enabled"`
	WindPlanet *[3]float64 `json:"wind_planet_mps"`
}

// VehiclePartial overlays a phase's propulsion/aerodynamic/mass
// configuration (spec §4.F, §4.G, §4.J).
type VehiclePartial struct {
	StructureMassKg     *float64         `json:"structure_mass_kg"`
	PropellantMassKg    *float64         `json:"propellant_mass_kg"`
	ReferenceAreaM2     *float64         `json:"reference_area_m2"`
	DragTable           *Table           `json:"drag_table"`
	LiftTable           *Table           `json:"lift_table"`
	SideTable           *Table           `json:"side_table"`
	Engines             *[]EnginePartial `json:"engines"`
	MaxAccelerationMps2 *float64         `json:"max_acceleration_mps2"`
}

// EndCriterionPartial names the state-variable key, comparison, and
// threshold that end a phase (spec §4.I).
type EndCriterionPartial struct {
	Key        *string  `json:"key"`
	Comparison *string  `json:"comparison"` // ">", ">=", "<", "<="
	Threshold  *float64 `json:"threshold"`
}

// EndCriterion is a resolved, validated end-of-phase condition.
type EndCriterion struct {
	Key        string
	Comparison string
	Threshold  float64
}

// signedResidual returns a value that is negative while the criterion is
// unmet, positive once it is met, and zero exactly at the threshold,
// regardless of comparison direction, so the integrator's bracketing logic
// never needs to know which direction the crossing runs.
func (c EndCriterion) signedResidual(s *State) float64 {
	v := ReadStateKey(c.Key, s)
	switch c.Comparison {
	case ">", ">=":
		return v - c.Threshold
	case "<", "<=":
		return c.Threshold - v
	default:
		return v - c.Threshold
	}
}

// LaunchGeodeticPartial seeds phase 0's initial condition from a geodetic
// launch description (spec §4.C); ignored on later phases.
type LaunchGeodeticPartial struct {
	LatitudeDeg  *float64 `json:"latitude_deg"`
	LongitudeDeg *float64 `json:"longitude_deg"`
	AltitudeM    *float64 `json:"altitude_m"`
	AzimuthDeg   *float64 `json:"azimuth_deg"`
}

// PhasePartial is one element of the phase-document array (spec §3, §4.J). A
// missing or JSON-null field always means "inherit the previous phase's
// resolved value"; there is no separate tri-state, since both cases collapse
// to the same instruction.
type PhasePartial struct {
	Label          *string                `json:"label"`
	Planet         *PlanetPartial         `json:"planet"`
	Atmosphere     *AtmospherePartial     `json:"atmosphere"`
	Vehicle        *VehiclePartial        `json:"vehicle"`
	Steering       *SteeringPartial       `json:"steering"`
	EndCriterion   *EndCriterionPartial   `json:"end_criterion"`
	StepSize       *float64               `json:"step_size_s"`
	MaxSteps       *uint64                `json:"max_steps"`
	LaunchGeodetic *LaunchGeodeticPartial `json:"launch_geodetic"`
}

// ParsePhaseDocument decodes a phase document: a JSON array of phase
// overlays, the unit of configuration a mission is described in.
func ParsePhaseDocument(b []byte) ([]PhasePartial, error) {
	var phases []PhasePartial
	if err := json.Unmarshal(b, &phases); err != nil {
		return nil, &ConfigError{Phase: -1, Field: "phases", Msg: err.Error()}
	}
	if len(phases) == 0 {
		return nil, &ConfigError{Phase: -1, Field: "phases", Msg: "phase document must contain at least one phase"}
	}
	return phases, nil
}

// Phase is a fully resolved, self-contained phase ready to run: every
// overlay has been merged onto its predecessor and validated (spec §3).
type Phase struct {
	Label            string
	Planet           Planet
	Atmosphere       Atmosphere
	Vehicle          Vehicle
	Steering         Steering
	SteeringVariable string
	EndCriterion     EndCriterion
	StepSize         float64
	MaxSteps         uint64
}

// mergePhase resolves overlay on top of parent (nil parent means this is
// phase 0), applying the inherit-on-absence rule field by field and the
// steering anchoring rule of spec §4.E.
func mergePhase(idx int, parent *Phase, overlay PhasePartial, rt RuntimeConfig, prevEuler [3]float64) (*Phase, error) {
	ph := &Phase{StepSize: rt.DefaultStepSize, MaxSteps: rt.DefaultMaxSteps}
	if parent != nil {
		*ph = *parent
	}
	if overlay.Label != nil {
		ph.Label = *overlay.Label
	}
	if overlay.StepSize != nil {
		ph.StepSize = *overlay.StepSize
	}
	if overlay.MaxSteps != nil {
		ph.MaxSteps = *overlay.MaxSteps
	}

	if overlay.Planet != nil {
		pl, err := overlay.Planet.build(idx)
		if err != nil {
			return nil, err
		}
		ph.Planet = pl
	} else if parent == nil {
		return nil, &ConfigError{Phase: idx, Field: "planet", Msg: "required on the first phase"}
	}

	if overlay.Atmosphere != nil {
		if overlay.Atmosphere.Enabled != nil {
			ph.Atmosphere.Enabled = *overlay.Atmosphere.Enabled
		}
		if overlay.Atmosphere.WindPlanet != nil {
			w := *overlay.Atmosphere.WindPlanet
			ph.Atmosphere.WindPlanet = Vec3{w[0], w[1], w[2]}
		}
	}

	if overlay.Vehicle != nil {
		v := overlay.Vehicle
		if v.StructureMassKg != nil {
			ph.Vehicle.StructureMass = *v.StructureMassKg
		}
		if v.ReferenceAreaM2 != nil {
			ph.Vehicle.ReferenceArea = *v.ReferenceAreaM2
		}
		if v.DragTable != nil {
			ph.Vehicle.DragTable = *v.DragTable
		}
		if v.LiftTable != nil {
			ph.Vehicle.LiftTable = *v.LiftTable
		}
		if v.SideTable != nil {
			ph.Vehicle.SideTable = *v.SideTable
		}
		if v.Engines != nil {
			engines := make([]Engine, len(*v.Engines))
			for i, ep := range *v.Engines {
				e, err := ep.build(idx, i)
				if err != nil {
					return nil, err
				}
				engines[i] = e
			}
			ph.Vehicle.Engines = engines
		}
		if v.MaxAccelerationMps2 != nil {
			if *v.MaxAccelerationMps2 <= 0 {
				ph.Vehicle.MaxAcceleration = nil
			} else {
				a := *v.MaxAccelerationMps2
				ph.Vehicle.MaxAcceleration = &a
			}
		}
	}
	ph.Vehicle.logger = VehicleLogInit(idx)

	if overlay.Steering != nil {
		st := overlay.Steering
		if st.Variable != nil {
			ph.SteeringVariable = *st.Variable
		}
		var explicit [3]bool
		ph.Steering.Roll, explicit[0] = mergeSteeringAxis(ph.Steering.Roll, st.Roll)
		ph.Steering.Yaw, explicit[1] = mergeSteeringAxis(ph.Steering.Yaw, st.Yaw)
		ph.Steering.Pitch, explicit[2] = mergeSteeringAxis(ph.Steering.Pitch, st.Pitch)
		ph.Steering.AnchorC0(parent == nil, prevEuler[0], prevEuler[1], prevEuler[2], explicit)
	} else {
		ph.Steering.AnchorC0(parent == nil, prevEuler[0], prevEuler[1], prevEuler[2], [3]bool{})
	}

	if overlay.EndCriterion != nil {
		ec := overlay.EndCriterion
		if ec.Key != nil {
			ph.EndCriterion.Key = *ec.Key
		}
		if ec.Comparison != nil {
			ph.EndCriterion.Comparison = *ec.Comparison
		}
		if ec.Threshold != nil {
			ph.EndCriterion.Threshold = *ec.Threshold
		}
	}
	if ph.EndCriterion.Key == "" {
		return nil, &ConfigError{Phase: idx, Field: "end_criterion", Msg: "required"}
	}
	if err := ValidateStateKey(ph.EndCriterion.Key); err != nil {
		return nil, &ConfigError{Phase: idx, Field: "end_criterion.key", Msg: err.Error()}
	}

	return ph, nil
}

// initialState builds the 7-element integration vector and the inertial
// launch-frame matrix for phase 0 from its launch_geodetic block, or carries
// both forward from the previous phase's terminal record otherwise (spec
// §4.C, §4.J). propellant_mass_kg, when given explicitly in the overlay,
// resets the tracked consumption rather than inheriting the predecessor's
// remaining mass.
func initialState(idx int, ph *Phase, overlay PhasePartial, prevTerminal *State, prevIL *mat.Dense) ([]float64, *mat.Dense, error) {
	var r, v Vec3
	var il *mat.Dense

	if idx == 0 {
		lg := overlay.LaunchGeodetic
		if lg == nil || lg.LatitudeDeg == nil || lg.LongitudeDeg == nil || lg.AltitudeM == nil || lg.AzimuthDeg == nil {
			return nil, nil, &ConfigError{Phase: idx, Field: "launch_geodetic", Msg: "required on the first phase"}
		}
		r, v, il = ph.Planet.GeodeticToInertial(Deg2rad(*lg.LatitudeDeg), Deg2rad(*lg.LongitudeDeg), *lg.AltitudeM, Deg2rad(*lg.AzimuthDeg), 0)
	} else {
		if prevTerminal == nil || prevIL == nil {
			return nil, nil, &ConfigError{Phase: idx, Field: "launch_geodetic", Msg: "internal: missing predecessor state"}
		}
		r, v = prevTerminal.PositionInertial, prevTerminal.VelocityInertial
		il = prevIL
	}

	var propMass float64
	if overlay.Vehicle != nil && overlay.Vehicle.PropellantMassKg != nil {
		propMass = *overlay.Vehicle.PropellantMassKg
	} else if prevTerminal != nil {
		propMass = prevTerminal.PropellantMass
	} else {
		return nil, nil, &ConfigError{Phase: idx, Field: "vehicle.propellant_mass_kg", Msg: "required on the first phase"}
	}

	y := []float64{r[0], r[1], r[2], v[0], v[1], v[2], propMass}
	return y, il, nil
}
