package post

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Rx returns the active rotation matrix about the first axis by angle x,
// right-hand-rule sign convention: Rx(x)·v is v rotated by x about X.
func Rx(x float64) *mat.Dense {
	s, c := math.Sincos(x)
	return mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, c, -s,
		0, s, c,
	})
}

// Ry returns the active rotation matrix about the second axis by angle y.
func Ry(y float64) *mat.Dense {
	s, c := math.Sincos(y)
	return mat.NewDense(3, 3, []float64{
		c, 0, s,
		0, 1, 0,
		-s, 0, c,
	})
}

// Rz returns the active rotation matrix about the third axis by angle z.
func Rz(z float64) *mat.Dense {
	s, c := math.Sincos(z)
	return mat.NewDense(3, 3, []float64{
		c, -s, 0,
		s, c, 0,
		0, 0, 1,
	})
}

// MulMat3 returns a*b for two 3x3 matrices.
func MulMat3(a, b *mat.Dense) *mat.Dense {
	var out mat.Dense
	out.Mul(a, b)
	return &out
}

// MulVec3 returns m*v.
func MulVec3(m *mat.Dense, v Vec3) Vec3 {
	vVec := mat.NewVecDense(3, v[:])
	var rVec mat.VecDense
	rVec.MulVec(m, vVec)
	return Vec3{rVec.AtVec(0), rVec.AtVec(1), rVec.AtVec(2)}
}

// TransposeMat3 returns the transpose of m. For an orthonormal direction
// cosine matrix this equals its inverse (§4.A).
func TransposeMat3(m *mat.Dense) *mat.Dense {
	var out mat.Dense
	out.CloneFrom(m.T())
	return &out
}

// Identity3 returns the 3x3 identity matrix.
func Identity3() *mat.Dense {
	return mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
}

// IsOrthonormal reports whether m*mᵀ = I and det(m) = +1 within tol, the
// invariant §3 requires of [IB].
func IsOrthonormal(m *mat.Dense, tol float64) bool {
	var prod mat.Dense
	prod.Mul(m, m.T())
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			if math.Abs(prod.At(i, j)-want) > tol {
				return false
			}
		}
	}
	return math.Abs(mat.Det(m)-1) <= tol
}
