package post

import "fmt"

// ConfigError reports a malformed phase configuration: bad JSON, an unknown
// state-variable key, a table whose data extents disagree with its axes, or
// non-monotonic breakpoints. RunMission merges and validates every phase
// overlay before the first phase runs, so it is reported before any record
// is emitted.
type ConfigError struct {
	Phase int    // index of the phase overlay that failed to merge/validate, or -1 if not phase-specific
	Field string // offending field or key
	Msg   string
}

func (e *ConfigError) Error() string {
	if e.Phase < 0 {
		return fmt.Sprintf("config error: %s: %s", e.Field, e.Msg)
	}
	return fmt.Sprintf("config error: phase %d: %s: %s", e.Phase, e.Field, e.Msg)
}

// NumericError reports a failure encountered while integrating a phase: a
// non-finite derivative, an infeasible auto-throttle solve, an end-event
// sub-step that regula falsi could not bracket, or (with LimitHit set) a
// phase that exceeded its step limit. Rotation matrices are not checked for
// singularity.
type NumericError struct {
	Phase   int
	Reason  string
	State   State
	LimitHit bool // true when this NumericError represents a LimitReached condition
}

func (e *NumericError) Error() string {
	if e.LimitHit {
		return fmt.Sprintf("numeric error: phase %d: step limit reached: %s", e.Phase, e.Reason)
	}
	return fmt.Sprintf("numeric error: phase %d: %s (t=%.6g, |r|=%.6g, |v|=%.6g, mass=%.6g)",
		e.Phase, e.Reason, e.State.Time, Norm(e.State.PositionInertial), Norm(e.State.VelocityInertial), e.State.Mass)
}

// Cancelled is returned by the phase runner when the caller's cancel flag
// was observed between integration steps. No record is emitted after the
// cancellation point; the CLI prints a short "cancelled" notice and exits
// with the same code as an I/O error.
type Cancelled struct {
	Phase int
	Time  float64
}

func (e *Cancelled) Error() string {
	return fmt.Sprintf("cancelled: phase %d at t=%.6g", e.Phase, e.Time)
}

// NewLimitReached builds the NumericError used when a phase exceeds its
// configured max-step-count without satisfying its end criterion.
func NewLimitReached(phase int, maxSteps uint64, s State) *NumericError {
	return &NumericError{
		Phase:    phase,
		Reason:   fmt.Sprintf("exceeded max_step_count=%d without reaching end criterion", maxSteps),
		State:    s,
		LimitHit: true,
	}
}
