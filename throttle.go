package post

import "math"

const collinearEpsilon = 1e-9 // rad, sin(alpha) below this is treated as collinear

// AutoThrottle solves for the throttle fraction that holds the vehicle's
// sensed acceleration at maxAccel, given the thrust force at full throttle
// and the current aerodynamic force (spec §4.F). It models the thrust and
// aero accelerations as two sides of a triangle closing on the target
// acceleration magnitude and solves the missing side by the law of sines.
//
// Returns a *NumericError when the configuration is infeasible: the aero
// acceleration alone already meets or exceeds maxAccel, or the triangle has
// no real solution.
func AutoThrottle(thrustForceFull, aeroForce Vec3, mass, maxAccel float64) (float64, error) {
	if mass <= 0 {
		return 0, &NumericError{Reason: "auto-throttle: non-positive mass"}
	}
	aT := Norm(thrustForceFull) / mass
	aA := Norm(aeroForce) / mass

	if aT == 0 {
		if aA > maxAccel {
			return 0, &NumericError{Reason: "auto-throttle: aero acceleration alone exceeds limit with no thrust available"}
		}
		return 0, nil
	}
	if aA == 0 {
		return clampUnit((maxAccel) / aT), nil
	}

	cosAlpha := Dot(thrustForceFull, aeroForce) / (Norm(thrustForceFull) * Norm(aeroForce))
	if cosAlpha > 1 {
		cosAlpha = 1
	} else if cosAlpha < -1 {
		cosAlpha = -1
	}
	alpha := math.Acos(cosAlpha)
	sinAlpha := math.Sin(alpha)

	if math.Abs(sinAlpha) < collinearEpsilon {
		if aA >= maxAccel {
			return 0, &NumericError{Reason: "auto-throttle: aero acceleration alone meets or exceeds limit"}
		}
		// Along one line the sensed acceleration is τ·aT + aA when thrust and
		// aero point the same way and τ·aT − aA when they are opposed.
		tau := (maxAccel - aA) / aT
		if cosAlpha < 0 {
			tau = (maxAccel + aA) / aT
		}
		return clampUnit(tau), nil
	}

	if aA >= maxAccel {
		return 0, &NumericError{Reason: "auto-throttle: aero acceleration alone meets or exceeds limit"}
	}

	sinBeta := aA * sinAlpha / maxAccel
	if sinBeta > 1 || sinBeta < -1 {
		return 0, &NumericError{Reason: "auto-throttle: triangle has no real solution"}
	}
	beta := math.Asin(sinBeta)
	// The angle opposite maxAccel is π−α, so the angle opposite τ·aT is α−β.
	gamma := alpha - beta
	tau := maxAccel * math.Sin(gamma) / sinAlpha
	if tau < 0 {
		return 0, &NumericError{Reason: "auto-throttle: triangle solution is negative"}
	}
	return clampUnit(tau), nil
}

func clampUnit(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
