package coords

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Matrix is a 4x4 row-major transform matrix using row vectors.
// Rows 0-2 hold the scaled X, Y and Z axes, row 3 the origin.
type Matrix [4][4]float64

// IdentityMatrix is the no-op transform
var IdentityMatrix = Matrix{
	{1, 0, 0, 0},
	{0, 1, 0, 0},
	{0, 0, 1, 0},
	{0, 0, 0, 1},
}

// MatrixFromSlice builds a matrix from 16 row-major values
func MatrixFromSlice(values []float64) (Matrix, error) {
	var m Matrix
	if len(values) != 16 {
		return m, fmt.Errorf("matrix needs 16 values, got %d", len(values))
	}
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return m, fmt.Errorf("matrix value %d is not finite", i)
		}
		m[i/4][i%4] = v
	}
	return m, nil
}

// Slice returns the 16 row-major values
func (m Matrix) Slice() []float64 {
	values := make([]float64, 0, 16)
	for row := 0; row < 4; row++ {
		values = append(values, m[row][:]...)
	}
	return values
}

// Origin returns the translation row
func (m Matrix) Origin() Vector {
	return Vector{X: m[3][0], Y: m[3][1], Z: m[3][2]}
}

// axis returns row i of the rotation/scale block
func (m Matrix) axis(i int) Vector {
	return Vector{X: m[i][0], Y: m[i][1], Z: m[i][2]}
}

func (m *Matrix) setAxis(i int, v Vector) {
	m[i][0], m[i][1], m[i][2] = v.X, v.Y, v.Z
}

// Determinant3 returns the determinant of the rotation/scale block
func (m Matrix) Determinant3() float64 {
	return r3.Dot(m.axis(0).Vec(), r3.Cross(m.axis(1).Vec(), m.axis(2).Vec()))
}

// Decompose splits the matrix into translation, rotation and scale.
// A negative determinant is folded into a negative X scale.
func (m Matrix) Decompose() Transform {
	work := m
	scale := work.extractScaling()

	if m.Determinant3() < 0 {
		scale.X = -scale.X
		work.setAxis(0, work.axis(0).Scale(-1))
	}

	rotation := Identity
	if math.Abs(scale.X) > smallNumber && math.Abs(scale.Y) > smallNumber && math.Abs(scale.Z) > smallNumber {
		rotation = work.quat().Normalize()
	}

	return Transform{
		Translation: m.Origin(),
		Rotation:    rotation,
		Scale:       scale,
	}
}

// extractScaling normalizes the three axis rows in place and returns their lengths
func (m *Matrix) extractScaling() Vector {
	var scale [3]float64
	for i := 0; i < 3; i++ {
		length := m.axis(i).Length()
		if length*length > smallNumber {
			scale[i] = length
			m.setAxis(i, m.axis(i).Scale(1.0/length))
		}
	}
	return Vector{X: scale[0], Y: scale[1], Z: scale[2]}
}

// quat converts a pure rotation block to a quaternion
func (m Matrix) quat() Quat {
	trace := m[0][0] + m[1][1] + m[2][2]

	if trace > 0 {
		invS := 1.0 / math.Sqrt(trace+1.0)
		s := 0.5 * invS
		return Quat{
			Imag: (m[1][2] - m[2][1]) * s,
			Jmag: (m[2][0] - m[0][2]) * s,
			Kmag: (m[0][1] - m[1][0]) * s,
			Real: 0.5 / invS,
		}
	}

	i := 0
	if m[1][1] > m[0][0] {
		i = 1
	}
	if m[2][2] > m[i][i] {
		i = 2
	}
	next := [3]int{1, 2, 0}
	j := next[i]
	k := next[j]

	invS := 1.0 / math.Sqrt(m[i][i]-m[j][j]-m[k][k]+1.0)
	s := 0.5 * invS

	var q [4]float64
	q[i] = 0.5 / invS
	q[3] = (m[j][k] - m[k][j]) * s
	q[j] = (m[i][j] + m[j][i]) * s
	q[k] = (m[i][k] + m[k][i]) * s

	return Quat{Imag: q[0], Jmag: q[1], Kmag: q[2], Real: q[3]}
}

// RotationMatrix builds the rotation-only matrix for a rotator
func RotationMatrix(r Rotator) Matrix {
	sp, cp := math.Sincos(r.Pitch * degToRad)
	sy, cy := math.Sincos(r.Yaw * degToRad)
	sr, cr := math.Sincos(r.Roll * degToRad)

	return Matrix{
		{cp * cy, cp * sy, sp, 0},
		{sr*sp*cy - cr*sy, sr*sp*sy + cr*cy, -sr * cp, 0},
		{-(cr*sp*cy + sr*sy), cy*sr - cr*sp*sy, cr * cp, 0},
		{0, 0, 0, 1},
	}
}

// Compose builds the scale-rotation-translation matrix of a transform.
// Row i is the rotated unit axis i scaled by the matching scale component.
func Compose(t Transform) Matrix {
	axes := [3]Vector{{X: 1}, {Y: 1}, {Z: 1}}
	scale := [3]float64{t.Scale.X, t.Scale.Y, t.Scale.Z}

	var m Matrix
	for i := 0; i < 3; i++ {
		m.setAxis(i, t.Rotation.Rotate(axes[i]).Scale(scale[i]))
	}
	m[3] = [4]float64{t.Translation.X, t.Translation.Y, t.Translation.Z, 1}
	return m
}
