// ============================================================================
// sceneBRIDGE - Remote scene editing bridge
// ============================================================================
//
// Package:     coords
// Description: Vector, quaternion and Euler rotator types in engine conventions
// Author:      Mike Stoffels
// Created:     2026-10-18
// License:     MIT
// ============================================================================

// Package coords converts rigid-body transforms between the external
// content tool's coordinate convention and the engine's.
//
// Engine conventions: angles in degrees, Rotator holds Pitch (around Y),
// Yaw (around Z) and Roll (around X); matrices are row-major with row
// vectors, so the translation lives in row 3.
package coords

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	degToRad = math.Pi / 180.0
	radToDeg = 180.0 / math.Pi

	// singularityThreshold detects pitch at +-90 degrees (gimbal lock)
	singularityThreshold = 0.4999995

	smallNumber = 1e-8
)

// Vector is a 3-component vector backed by r3.Vec
type Vector r3.Vec

// Vec returns the r3 form of v
func (v Vector) Vec() r3.Vec {
	return r3.Vec(v)
}

// Add returns v + o
func (v Vector) Add(o Vector) Vector {
	return Vector(r3.Add(r3.Vec(v), r3.Vec(o)))
}

// Scale returns v * s
func (v Vector) Scale(s float64) Vector {
	return Vector(r3.Scale(s, r3.Vec(v)))
}

// Dot returns the dot product
func (v Vector) Dot(o Vector) float64 {
	return r3.Dot(r3.Vec(v), r3.Vec(o))
}

// Length returns the euclidean length
func (v Vector) Length() float64 {
	return r3.Norm(r3.Vec(v))
}

// Equals compares component-wise within tolerance
func (v Vector) Equals(o Vector, tolerance float64) bool {
	d := r3.Sub(r3.Vec(v), r3.Vec(o))
	return math.Abs(d.X) <= tolerance &&
		math.Abs(d.Y) <= tolerance &&
		math.Abs(d.Z) <= tolerance
}

// One is the unit scale
var One = Vector{X: 1, Y: 1, Z: 1}

// Quat is a rotation quaternion. Imag, Jmag and Kmag carry the X, Y and
// Z parts, Real the scalar part.
type Quat quat.Number

// Identity is the no-rotation quaternion
var Identity = Quat{Real: 1}

// Number returns the gonum form of q
func (q Quat) Number() quat.Number {
	return quat.Number(q)
}

// Normalize returns the unit quaternion, or Identity for a degenerate input
func (q Quat) Normalize() Quat {
	n := quat.Abs(quat.Number(q))
	if n*n < smallNumber {
		return Identity
	}
	return Quat(quat.Scale(1.0/n, quat.Number(q)))
}

// Equals reports whether q and o describe the same rotation; q and -q are equal
func (q Quat) Equals(o Quat, tolerance float64) bool {
	a, b := quat.Number(q), quat.Number(o)
	return withinTolerance(quat.Sub(a, b), tolerance) || withinTolerance(quat.Add(a, b), tolerance)
}

// Rotate applies the rotation to v as q v q^-1
func (q Quat) Rotate(v Vector) Vector {
	n := quat.Number(q)
	p := quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}
	r := quat.Mul(quat.Mul(n, p), quat.Inv(n))
	return Vector{X: r.Imag, Y: r.Jmag, Z: r.Kmag}
}

func withinTolerance(d quat.Number, tolerance float64) bool {
	return math.Abs(d.Real) <= tolerance && math.Abs(d.Imag) <= tolerance &&
		math.Abs(d.Jmag) <= tolerance && math.Abs(d.Kmag) <= tolerance
}

// Rotator converts the quaternion to Euler angles
func (q Quat) Rotator() Rotator {
	x, y, z, w := q.Imag, q.Jmag, q.Kmag, q.Real
	singularityTest := z*x - w*y
	yawY := 2.0 * (w*z + x*y)
	yawX := 1.0 - 2.0*(y*y+z*z)

	var r Rotator
	r.Yaw = math.Atan2(yawY, yawX) * radToDeg

	switch {
	case singularityTest < -singularityThreshold:
		r.Pitch = -90.0
		r.Roll = NormalizeAxis(-r.Yaw - 2.0*math.Atan2(x, w)*radToDeg)
	case singularityTest > singularityThreshold:
		r.Pitch = 90.0
		r.Roll = NormalizeAxis(r.Yaw - 2.0*math.Atan2(x, w)*radToDeg)
	default:
		r.Pitch = math.Asin(2.0*singularityTest) * radToDeg
		r.Roll = math.Atan2(-2.0*(w*x+y*z), 1.0-2.0*(x*x+y*y)) * radToDeg
	}

	return r
}

// Rotator holds Euler angles in degrees
type Rotator struct {
	Pitch, Yaw, Roll float64
}

// Quaternion converts the Euler angles to a quaternion
func (r Rotator) Quaternion() Quat {
	sp, cp := math.Sincos(math.Mod(r.Pitch, 360.0) * degToRad * 0.5)
	sy, cy := math.Sincos(math.Mod(r.Yaw, 360.0) * degToRad * 0.5)
	sr, cr := math.Sincos(math.Mod(r.Roll, 360.0) * degToRad * 0.5)

	return Quat{
		Imag: cr*sp*sy - sr*cp*cy,
		Jmag: -cr*sp*cy - sr*cp*sy,
		Kmag: cr*cp*sy - sr*sp*cy,
		Real: cr*cp*cy + sr*sp*sy,
	}
}

// Normalize wraps every angle into (-180, 180]
func (r Rotator) Normalize() Rotator {
	return Rotator{
		Pitch: NormalizeAxis(r.Pitch),
		Yaw:   NormalizeAxis(r.Yaw),
		Roll:  NormalizeAxis(r.Roll),
	}
}

// Equals compares normalized angles within tolerance
func (r Rotator) Equals(o Rotator, tolerance float64) bool {
	a, b := r.Normalize(), o.Normalize()
	return angleDelta(a.Pitch, b.Pitch) <= tolerance &&
		angleDelta(a.Yaw, b.Yaw) <= tolerance &&
		angleDelta(a.Roll, b.Roll) <= tolerance
}

// NormalizeAxis wraps an angle into (-180, 180]
func NormalizeAxis(angle float64) float64 {
	angle = math.Mod(angle, 360.0)
	if angle < 0 {
		angle += 360.0
	}
	if angle > 180.0 {
		angle -= 360.0
	}
	return angle
}

func angleDelta(a, b float64) float64 {
	return math.Abs(NormalizeAxis(a - b))
}
