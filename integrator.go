package post

import "math"

const (
	// DefaultEventTolAbs is the default absolute time tolerance for
	// bracketing a phase's end criterion (spec §4.I).
	DefaultEventTolAbs = 1e-3 // s
	// DefaultEventMinStepFraction sets h_min = fraction * h_nominal, the
	// shortest event sub-step bracketEvent takes: a refined sub-step shorter
	// than h_min is lengthened to h_min.
	DefaultEventMinStepFraction = 1e-6
	maxEventIter                = 64
)

// derivFunc evaluates the ODE right-hand side at (t, y).
type derivFunc func(t float64, y []float64) ([]float64, error)

// endCriterionFunc returns a signed value that crosses zero when a phase's
// end criterion is met.
type endCriterionFunc func(t float64, y []float64) float64

// onStepFunc is invoked once per completed (possibly event-bracketed) step.
type onStepFunc func(t float64, y []float64)

// rk4Step advances y by one fixed step h using the classical four-stage
// Runge-Kutta method.
func rk4Step(f derivFunc, t, h float64, y []float64) ([]float64, error) {
	n := len(y)
	tmp := make([]float64, n)

	k1, err := f(t, y)
	if err != nil {
		return nil, err
	}
	for i := range y {
		tmp[i] = y[i] + h*0.5*k1[i]
	}
	k2, err := f(t+h*0.5, tmp)
	if err != nil {
		return nil, err
	}
	for i := range y {
		tmp[i] = y[i] + h*0.5*k2[i]
	}
	k3, err := f(t+h*0.5, tmp)
	if err != nil {
		return nil, err
	}
	for i := range y {
		tmp[i] = y[i] + h*k3[i]
	}
	k4, err := f(t+h, tmp)
	if err != nil {
		return nil, err
	}
	out := make([]float64, n)
	for i := range y {
		out[i] = y[i] + h/6*(k1[i]+2*k2[i]+2*k3[i]+k4[i])
	}
	return out, nil
}

// Integrate runs fixed-step RK4 from (t0, y0) until the cancel flag is
// observed, the end criterion first crosses zero, or maxSteps steps elapse
// without a crossing (spec §4.I). On a crossing it refines the bracketing
// sub-step by regula falsi so the returned state lands within tolAbs of the
// true event time, rather than accepting the step that overshoots it.
func Integrate(f derivFunc, end endCriterionFunc, snapshot func(t float64, y []float64) State, t0 float64, y0 []float64, h float64, maxSteps uint64, phase int, cancel func() bool, onStep onStepFunc) (float64, []float64, error) {
	t, y := t0, y0
	g0 := end(t, y)
	if g0 == 0 {
		onStep(t, y)
		return t, y, nil
	}
	tolAbs := DefaultEventTolAbs
	hMin := math.Abs(h) * DefaultEventMinStepFraction

	for step := uint64(0); ; step++ {
		if cancel() {
			return t, y, &Cancelled{Phase: phase, Time: t}
		}
		if step >= maxSteps {
			return t, y, NewLimitReached(phase, maxSteps, snapshot(t, y))
		}

		yNext, err := rk4Step(f, t, h, y)
		if err != nil {
			return t, y, err
		}
		tNext := t + h
		gNext := end(tNext, yNext)

		if gNext == 0 || g0*gNext < 0 {
			hEvent, err := bracketEvent(f, end, t, y, g0, h, tolAbs, hMin)
			if err != nil {
				return t, y, err
			}
			yEvent, err := rk4Step(f, t, hEvent, y)
			if err != nil {
				return t, y, err
			}
			onStep(t+hEvent, yEvent)
			return t + hEvent, yEvent, nil
		}

		onStep(tNext, yNext)
		t, y, g0 = tNext, yNext, gNext
	}
}

// bracketEvent refines the crossing sub-step within [0, h] by regula falsi,
// stepping RK4 from the same (t, y) baseline with a shrinking sub-step.
func bracketEvent(f derivFunc, end endCriterionFunc, t float64, y []float64, g0, h, tolAbs, hMin float64) (float64, error) {
	scalar := func(hs float64) float64 {
		ys, err := rk4Step(f, t, hs, y)
		if err != nil {
			return math.NaN()
		}
		return end(t+hs, ys)
	}
	hEvent, err := regulaFalsi(scalar, 0, h, tolAbs, maxEventIter)
	if err != nil {
		return 0, err
	}
	if math.Abs(hEvent) < hMin {
		hEvent = math.Copysign(hMin, h)
	}
	return hEvent, nil
}
