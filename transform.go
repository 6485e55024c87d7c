package trapeze

// Transform is the pose of a node: position, Euler rotation in radians
// and a uniform scale. It is a plain value; copy it freely.
type Transform struct {
	Position Vec3
	Rotation Vec3
	Scale    float32
}

// DefaultTransform returns a transform at the origin with no rotation
// and unit scale.
func DefaultTransform() Transform {
	return Transform{Scale: 1}
}

// ModelMatrix composes translate(Position), rotate X, Y, Z and
// scale(Scale) onto the identity in that order. Applied to a vertex the
// scale happens first and the translation last.
func (t Transform) ModelMatrix() Matrix4 {
	return Identity4().
		Translate(t.Position.X, t.Position.Y, t.Position.Z).
		RotateXYZ(t.Rotation.X, t.Rotation.Y, t.Rotation.Z).
		Scale(t.Scale, t.Scale, t.Scale)
}
