package scene

import "github.com/go-gl/mathgl/mgl32"

// Transform places an object in world space. Rotation holds Tait-Bryan
// angles in radians applied in Y, X, Z order.
type Transform struct {
	Translation mgl32.Vec3
	Scale       mgl32.Vec3
	Rotation    mgl32.Vec3
}

// NewTransform returns the identity transform.
func NewTransform() Transform {
	return Transform{Scale: mgl32.Vec3{1, 1, 1}}
}

// Mat4 returns translate * Ry * Rx * Rz * scale.
func (t Transform) Mat4() mgl32.Mat4 {
	m := mgl32.Translate3D(t.Translation[0], t.Translation[1], t.Translation[2])
	m = m.Mul4(mgl32.HomogRotate3DY(t.Rotation[1]))
	m = m.Mul4(mgl32.HomogRotate3DX(t.Rotation[0]))
	m = m.Mul4(mgl32.HomogRotate3DZ(t.Rotation[2]))
	return m.Mul4(mgl32.Scale3D(t.Scale[0], t.Scale[1], t.Scale[2]))
}

// NormalMatrix is the inverse transpose of the upper 3x3 of Mat4.
func (t Transform) NormalMatrix() mgl32.Mat3 {
	return t.Mat4().Mat3().Inv().Transpose()
}
