package coords

// Transform is a decomposed rigid-body transform with scale
type Transform struct {
	Translation Vector
	Rotation    Quat
	Scale       Vector
}

// IdentityTransform has no translation, no rotation and unit scale
var IdentityTransform = Transform{Rotation: Identity, Scale: One}

// Rotator returns the Euler form of the rotation
func (t Transform) Rotator() Rotator {
	return t.Rotation.Rotator()
}

// Equals compares two transforms within tolerance
func (t Transform) Equals(o Transform, tolerance float64) bool {
	return t.Translation.Equals(o.Translation, tolerance) &&
		t.Rotation.Equals(o.Rotation, tolerance) &&
		t.Scale.Equals(o.Scale, tolerance)
}

// flipTranslation mirrors a translation across the Y axis
func flipTranslation(v Vector) Vector {
	return Vector{X: v.X, Y: -v.Y, Z: v.Z}
}

// flipRotator negates roll and yaw and keeps pitch. The rule is its own
// inverse and must not be replaced by a uniform axis negation.
func flipRotator(r Rotator) Rotator {
	return Rotator{Pitch: r.Pitch, Yaw: -r.Yaw, Roll: -r.Roll}
}

// ToEngine decomposes a matrix in the external convention and converts
// it into engine coordinates
func ToEngine(m Matrix) Transform {
	t := m.Decompose()
	t.Translation = flipTranslation(t.Translation)
	t.Rotation = flipRotator(t.Rotation.Rotator()).Quaternion()
	return t
}

// FromEngine converts an engine transform back into an external matrix
func FromEngine(t Transform) Matrix {
	t.Translation = flipTranslation(t.Translation)
	t.Rotation = flipRotator(t.Rotation.Rotator()).Quaternion()
	return Compose(t)
}

// EulerToEngine converts external Euler angles (roll, pitch, yaw in
// degrees) to an engine rotator
func EulerToEngine(roll, pitch, yaw float64) Rotator {
	return flipRotator(Rotator{Pitch: pitch, Yaw: yaw, Roll: roll})
}

// Relative is a partial transform in the external convention. Nil parts
// leave the corresponding part of the target untouched.
type Relative struct {
	Translation *Vector
	// Rotation holds Euler degrees as X=roll, Y=pitch, Z=yaw
	Rotation *Vector
	Scale    *Vector
	// Matrix replaces the whole transform when set
	Matrix *Matrix
}

// IsZero reports whether the relative transform changes nothing
func (r Relative) IsZero() bool {
	return r.Translation == nil && r.Rotation == nil && r.Scale == nil && r.Matrix == nil
}

// Apply converts the relative parts to engine coordinates and overrides
// them on base
func (r Relative) Apply(base Transform) Transform {
	if r.Matrix != nil {
		return ToEngine(*r.Matrix)
	}
	out := base
	if r.Translation != nil {
		out.Translation = flipTranslation(*r.Translation)
	}
	if r.Rotation != nil {
		out.Rotation = EulerToEngine(r.Rotation.X, r.Rotation.Y, r.Rotation.Z).Quaternion()
	}
	if r.Scale != nil {
		out.Scale = *r.Scale
	}
	return out
}
