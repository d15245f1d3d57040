package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// DefaultUp points toward negative Y, matching Vulkan's downward clip-space Y.
var DefaultUp = mgl32.Vec3{0, -1, 0}

// Camera holds projection and view matrices for a Vulkan-style clip space:
// depth in [0, 1] and Y pointing down.
type Camera struct {
	projection  mgl32.Mat4
	view        mgl32.Mat4
	inverseView mgl32.Mat4
}

func NewCamera() *Camera {
	return &Camera{
		projection:  mgl32.Ident4(),
		view:        mgl32.Ident4(),
		inverseView: mgl32.Ident4(),
	}
}

// SetOrthographic sets an orthographic projection for the given box.
func (c *Camera) SetOrthographic(left, right, top, bottom, near, far float32) {
	p := mgl32.Ident4()
	p.Set(0, 0, 2/(right-left))
	p.Set(1, 1, 2/(bottom-top))
	p.Set(2, 2, 1/(far-near))
	p.Set(0, 3, -(right+left)/(right-left))
	p.Set(1, 3, -(bottom+top)/(bottom-top))
	p.Set(2, 3, -near/(far-near))
	c.projection = p
}

// SetPerspective sets a perspective projection. fovy is in radians.
func (c *Camera) SetPerspective(fovy, aspect, near, far float32) {
	if aspect <= mgl32.Epsilon {
		panic("scene: perspective aspect ratio must be positive")
	}
	tanHalf := float32(math.Tan(float64(fovy) / 2))
	var p mgl32.Mat4
	p.Set(0, 0, 1/(aspect*tanHalf))
	p.Set(1, 1, 1/tanHalf)
	p.Set(2, 2, far/(far-near))
	p.Set(3, 2, 1)
	p.Set(2, 3, -(far*near)/(far-near))
	c.projection = p
}

// SetViewDirection places the camera at position looking along direction.
func (c *Camera) SetViewDirection(position, direction, up mgl32.Vec3) {
	if direction.Len() < mgl32.Epsilon {
		panic("scene: view direction must be non-zero")
	}
	w := direction.Normalize()
	u := w.Cross(up).Normalize()
	v := w.Cross(u)
	c.setBasis(u, v, w, position)
}

// SetViewTarget places the camera at position looking at target.
func (c *Camera) SetViewTarget(position, target, up mgl32.Vec3) {
	c.SetViewDirection(position, target.Sub(position), up)
}

// SetViewYXZ places the camera at position with Tait-Bryan rotation applied
// in Y, X, Z order.
func (c *Camera) SetViewYXZ(position, rotation mgl32.Vec3) {
	c3 := float32(math.Cos(float64(rotation[2])))
	s3 := float32(math.Sin(float64(rotation[2])))
	c2 := float32(math.Cos(float64(rotation[0])))
	s2 := float32(math.Sin(float64(rotation[0])))
	c1 := float32(math.Cos(float64(rotation[1])))
	s1 := float32(math.Sin(float64(rotation[1])))
	u := mgl32.Vec3{c1*c3 + s1*s2*s3, c2 * s3, c1*s2*s3 - c3*s1}
	v := mgl32.Vec3{c3*s1*s2 - c1*s3, c2 * c3, c1*c3*s2 + s1*s3}
	w := mgl32.Vec3{c2 * s1, -s2, c1 * c2}
	c.setBasis(u, v, w, position)
}

// setBasis writes the view matrix for an orthonormal camera basis and its
// inverse.
func (c *Camera) setBasis(u, v, w, position mgl32.Vec3) {
	view := mgl32.Ident4()
	inv := mgl32.Ident4()
	for i := 0; i < 3; i++ {
		view.Set(0, i, u[i])
		view.Set(1, i, v[i])
		view.Set(2, i, w[i])
		inv.Set(i, 0, u[i])
		inv.Set(i, 1, v[i])
		inv.Set(i, 2, w[i])
		inv.Set(i, 3, position[i])
	}
	view.Set(0, 3, -u.Dot(position))
	view.Set(1, 3, -v.Dot(position))
	view.Set(2, 3, -w.Dot(position))
	c.view = view
	c.inverseView = inv
}

func (c *Camera) Projection() mgl32.Mat4  { return c.projection }
func (c *Camera) View() mgl32.Mat4        { return c.view }
func (c *Camera) InverseView() mgl32.Mat4 { return c.inverseView }

// Position returns the camera's world-space position.
func (c *Camera) Position() mgl32.Vec3 { return c.inverseView.Col(3).Vec3() }

// ViewProjection returns projection * view.
func (c *Camera) ViewProjection() mgl32.Mat4 { return c.projection.Mul4(c.view) }
