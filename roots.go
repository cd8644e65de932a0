package post

import "math"

// regulaFalsi brackets a root of f on [hLo, hHi] (where f(hLo) and f(hHi)
// must have opposite signs) by the false-position method, refining until the
// bracket width is within tolAbs or maxIter is exhausted. It is used by the
// integrator to locate the sub-step at which a phase's end criterion first
// crosses zero (spec §4.I).
func regulaFalsi(f func(float64) float64, hLo, hHi, tolAbs float64, maxIter int) (float64, error) {
	fLo, fHi := f(hLo), f(hHi)
	if fLo == 0 {
		return hLo, nil
	}
	if fHi == 0 {
		return hHi, nil
	}
	if (fLo > 0) == (fHi > 0) {
		return 0, &NumericError{Reason: "regula falsi: endpoints do not bracket a root"}
	}
	for i := 0; i < maxIter; i++ {
		h := hLo - fLo*(hHi-hLo)/(fHi-fLo)
		fh := f(h)
		if math.Abs(hHi-hLo) < tolAbs {
			return h, nil
		}
		if (fh > 0) == (fLo > 0) {
			hLo, fLo = h, fh
		} else {
			hHi, fHi = h, fh
		}
	}
	return hLo - fLo*(hHi-hLo)/(fHi-fLo), nil
}
