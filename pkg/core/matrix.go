package core

import (
	"errors"
	"math"
)

// ErrSingularMatrix reports that a matrix has no inverse
var ErrSingularMatrix = errors.New("singular matrix")

// Matrix4 is a 4x4 matrix in row-major order
type Matrix4 struct {
	M [4][4]float64
}

// IdentityMatrix4 returns the identity matrix
func IdentityMatrix4() Matrix4 {
	return Matrix4{M: [4][4]float64{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}}
}

// NewMatrix4 creates a matrix from its 16 elements in row-major order
func NewMatrix4(
	m00, m01, m02, m03,
	m10, m11, m12, m13,
	m20, m21, m22, m23,
	m30, m31, m32, m33 float64,
) Matrix4 {
	return Matrix4{M: [4][4]float64{
		{m00, m01, m02, m03},
		{m10, m11, m12, m13},
		{m20, m21, m22, m23},
		{m30, m31, m32, m33},
	}}
}

// Mul returns the matrix product m * other
func (m Matrix4) Mul(other Matrix4) Matrix4 {
	var r Matrix4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			r.M[i][j] = m.M[i][0]*other.M[0][j] +
				m.M[i][1]*other.M[1][j] +
				m.M[i][2]*other.M[2][j] +
				m.M[i][3]*other.M[3][j]
		}
	}
	return r
}

// Transposed returns the transpose of the matrix
func (m Matrix4) Transposed() Matrix4 {
	var r Matrix4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			r.M[i][j] = m.M[j][i]
		}
	}
	return r
}

// DeterminantLinear returns the determinant of the upper-left 3x3 linear
// block. Its sign tells whether the transform swaps handedness.
func (m Matrix4) DeterminantLinear() float64 {
	return m.M[0][0]*(m.M[1][1]*m.M[2][2]-m.M[1][2]*m.M[2][1]) -
		m.M[0][1]*(m.M[1][0]*m.M[2][2]-m.M[1][2]*m.M[2][0]) +
		m.M[0][2]*(m.M[1][0]*m.M[2][1]-m.M[1][1]*m.M[2][0])
}

// Inverse returns the inverse of the matrix using Gauss-Jordan elimination
// with partial pivoting. A singular matrix yields ErrSingularMatrix.
func (m Matrix4) Inverse() (Matrix4, error) {
	a := m.M
	inv := IdentityMatrix4().M

	for col := 0; col < 4; col++ {
		// Pick the largest remaining pivot in this column
		pivot := col
		for row := col + 1; row < 4; row++ {
			if math.Abs(a[row][col]) > math.Abs(a[pivot][col]) {
				pivot = row
			}
		}
		if a[pivot][col] == 0 {
			return Matrix4{}, ErrSingularMatrix
		}
		a[col], a[pivot] = a[pivot], a[col]
		inv[col], inv[pivot] = inv[pivot], inv[col]

		// Scale the pivot row to put 1 on the diagonal
		scale := 1 / a[col][col]
		for j := 0; j < 4; j++ {
			a[col][j] *= scale
			inv[col][j] *= scale
		}

		// Eliminate the column from every other row
		for row := 0; row < 4; row++ {
			if row == col || a[row][col] == 0 {
				continue
			}
			factor := a[row][col]
			for j := 0; j < 4; j++ {
				a[row][j] -= factor * a[col][j]
				inv[row][j] -= factor * inv[col][j]
			}
		}
	}

	return Matrix4{M: inv}, nil
}
