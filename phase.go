package post

import (
	"fmt"
	"os"

	kitlog "github.com/go-kit/kit/log"
	"gonum.org/v1/gonum/mat"
)

// RunResult is the outcome of running a full mission: the fully resolved
// phases (for inspection/logging) and the terminal state of the last phase
// to complete.
type RunResult struct {
	Phases   []*Phase
	Terminal State
}

// RunMission resolves and runs a phase document one phase at a time,
// streaming each completed step's State to sink and logging a "Starting
// Phase" marker at each boundary (spec §3, §4.I, §4.J). Each phase is merged
// against its predecessor only once that predecessor has actually finished
// running, since steering anchoring (spec §4.E) and (absent an explicit
// override) the initial propellant mass both depend on the previous phase's
// terminal state, not just its configuration.
//
// RunMission stops at the first error: a *ConfigError from merge/validation,
// or a *NumericError / *Cancelled from a phase in progress.
func RunMission(overlays []PhasePartial, rt RuntimeConfig, sink Sink, cancel func() bool) (RunResult, error) {
	logger := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))

	// Merge every overlay once up front so that a *ConfigError in any phase
	// is reported before the first phase runs.
	var check *Phase
	for i, overlay := range overlays {
		ph, err := mergePhase(i, check, overlay, rt, [3]float64{})
		if err != nil {
			return RunResult{}, err
		}
		check = ph
	}

	var (
		resolved     []*Phase
		terminal     State
		il           *mat.Dense
		globalStep   uint64
		havePrevious bool
	)

	for i, overlay := range overlays {
		var parent *Phase
		var prevTerminalPtr *State
		var prevEuler [3]float64
		if havePrevious {
			parent = resolved[i-1]
			prevTerminalPtr = &terminal
			prevEuler = [3]float64{terminal.EulerRoll, terminal.EulerYaw, terminal.EulerPitch}
		}

		ph, err := mergePhase(i, parent, overlay, rt, prevEuler)
		if err != nil {
			return RunResult{Phases: resolved}, err
		}
		resolved = append(resolved, ph)

		y, phaseIL, err := initialState(i, ph, overlay, prevTerminalPtr, il)
		if err != nil {
			return RunResult{Phases: resolved}, err
		}
		il = phaseIL

		logger.Log("level", "notice", "msg", fmt.Sprintf("Starting Phase %d", i), "label", ph.Label)

		model := &PhaseModel{
			Planet:           ph.Planet,
			Atmosphere:       ph.Atmosphere,
			Vehicle:          ph.Vehicle,
			Steering:         ph.Steering,
			IL:               il,
			SteeringVariable: ph.SteeringVariable,
			PhaseStartTime:   startTimeOf(havePrevious, terminal),
		}
		phaseIdx := i
		localStep := uint64(0)

		f := func(t float64, y []float64) ([]float64, error) {
			dy, _, err := Derivative(t, y, phaseIdx, localStep, model)
			return dy, err
		}
		end := func(t float64, y []float64) float64 {
			_, s, _ := Derivative(t, y, phaseIdx, localStep, model)
			return ph.EndCriterion.signedResidual(&s)
		}
		snapshot := func(t float64, y []float64) State {
			_, s, _ := Derivative(t, y, phaseIdx, localStep, model)
			return s
		}
		onStep := func(t float64, y []float64) {
			_, s, err := Derivative(t, y, phaseIdx, localStep, model)
			s.StepIndex = globalStep
			if err == nil {
				if werr := sink.WriteState(s); werr != nil {
					logger.Log("level", "warning", "msg", "sink write failed", "err", werr)
				}
			}
			terminal = s
			localStep++
			globalStep++
		}

		_, _, err = Integrate(f, end, snapshot, startTimeOf(havePrevious, terminal), y, ph.StepSize, ph.MaxSteps, phaseIdx, cancel, onStep)
		if err != nil {
			if ne, ok := err.(*NumericError); ok {
				logger.Log("level", "critical", "msg", "phase terminated by a numeric error", "phase", phaseIdx, "reason", ne.Reason)
			}
			return RunResult{Phases: resolved, Terminal: terminal}, err
		}
		havePrevious = true
	}

	return RunResult{Phases: resolved, Terminal: terminal}, nil
}

// startTimeOf returns the mission time at which a phase begins: 0 for the
// first phase, otherwise the previous phase's terminal time.
func startTimeOf(havePrevious bool, prevTerminal State) float64 {
	if !havePrevious {
		return 0
	}
	return prevTerminal.Time
}
