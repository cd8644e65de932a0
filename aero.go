package post

import "math"

// AngleOfAttack returns the angle between the body-frame atmosphere-relative
// velocity and the body X axis, atan2(v_z, v_x) (spec §4.G).
func AngleOfAttack(vAtmBody Vec3) float64 {
	return math.Atan2(vAtmBody[2], vAtmBody[0])
}

// AeroForceBody assembles the aerodynamic force in body axes from dynamic
// pressure, reference area, and the table-driven axial/side/normal force
// coefficients, rotated by angle of attack (spec §4.G):
//
//	[C_A]   [cosα  -sinα] [C_D]
//	[C_N] = [sinα   cosα] [C_L]
//	F_A = q·S·(-C_A, C_Y, -C_N)
func AeroForceBody(q, refArea, cd, cl, cy, alpha float64) Vec3 {
	sinA, cosA := math.Sincos(alpha)
	cA := cosA*cd - sinA*cl
	cN := sinA*cd + cosA*cl
	return Vec3{-q * refArea * cA, q * refArea * cy, -q * refArea * cN}
}
