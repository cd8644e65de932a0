package post

import "gonum.org/v1/gonum/mat"

// SteeringPolynomial is one axis of the steering law (spec §4.E): a cubic
// in the named state variable, α(y) = c0 + c1·y + c2·y² + c3·y³.
type SteeringPolynomial struct {
	Key    string
	C0     float64
	C1     float64
	C2     float64
	C3     float64
}

// Evaluate returns the polynomial's value at y.
func (p SteeringPolynomial) Evaluate(y float64) float64 {
	return p.C0 + y*(p.C1+y*(p.C2+y*p.C3))
}

// Steering holds the three independent per-axis polynomials.
type Steering struct {
	Roll, Yaw, Pitch SteeringPolynomial
}

// AnchorC0 resets each polynomial's c0 so orientation is continuous across
// a phase boundary (spec §4.E): for phase 0, c0=0; for later phases, c0 is
// the corresponding Euler angle carried over from the previous phase's
// terminal state, unless the overlay set it explicitly (handled by the
// config-merge layer before this is called — a non-nil override already
// sits in the polynomial's C0 field and is left untouched here).
func (s *Steering) AnchorC0(isFirstPhase bool, prevRoll, prevYaw, prevPitch float64, explicit [3]bool) {
	if explicit[0] {
		// overlay set roll.c0 explicitly; leave it.
	} else if isFirstPhase {
		s.Roll.C0 = 0
	} else {
		s.Roll.C0 = prevRoll
	}
	if explicit[1] {
	} else if isFirstPhase {
		s.Yaw.C0 = 0
	} else {
		s.Yaw.C0 = prevYaw
	}
	if explicit[2] {
	} else if isFirstPhase {
		s.Pitch.C0 = 0
	} else {
		s.Pitch.C0 = prevPitch
	}
}

// ComposeIB builds the inertial-to-body direction cosine matrix from the
// current Euler angles and the phase's launch-frame matrix [IL], in the
// documented roll-yaw-pitch order: [IB] = Rx(roll)·Rz(yaw)·Ry(pitch)·[IL]
// (spec §4.E).
func ComposeIB(roll, yaw, pitch float64, il *mat.Dense) *mat.Dense {
	return MulMat3(MulMat3(MulMat3(Rx(roll), Rz(yaw)), Ry(pitch)), il)
}
