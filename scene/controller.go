package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"vkrender/core"
)

// KeyInput reports whether a key is currently held.
type KeyInput interface {
	IsKeyPressed(key int) bool
}

// KeyMappings binds controller actions to keys.
type KeyMappings struct {
	MoveLeft, MoveRight       int
	MoveForward, MoveBackward int
	MoveUp, MoveDown          int
	LookLeft, LookRight       int
	LookUp, LookDown          int
}

// DefaultKeyMappings uses WASD to move, E and Q for vertical motion and the
// arrow keys to look around.
func DefaultKeyMappings() KeyMappings {
	return KeyMappings{
		MoveLeft:     core.KeyA,
		MoveRight:    core.KeyD,
		MoveForward:  core.KeyW,
		MoveBackward: core.KeyS,
		MoveUp:       core.KeyE,
		MoveDown:     core.KeyQ,
		LookLeft:     core.KeyLeft,
		LookRight:    core.KeyRight,
		LookUp:       core.KeyUp,
		LookDown:     core.KeyDown,
	}
}

// KeyboardController moves a transform in the XZ plane, fly-camera style.
type KeyboardController struct {
	Keys      KeyMappings
	MoveSpeed float32
	LookSpeed float32
}

func NewKeyboardController() *KeyboardController {
	return &KeyboardController{
		Keys:      DefaultKeyMappings(),
		MoveSpeed: 3,
		LookSpeed: 1.5,
	}
}

// MoveInPlaneXZ applies one frame of input to t. Pitch is clamped so the
// view never flips and yaw is wrapped into [0, 2π).
func (k *KeyboardController) MoveInPlaneXZ(input KeyInput, dt float32, t *Transform) {
	var rotate mgl32.Vec3
	if input.IsKeyPressed(k.Keys.LookRight) {
		rotate[1]++
	}
	if input.IsKeyPressed(k.Keys.LookLeft) {
		rotate[1]--
	}
	if input.IsKeyPressed(k.Keys.LookUp) {
		rotate[0]++
	}
	if input.IsKeyPressed(k.Keys.LookDown) {
		rotate[0]--
	}
	if rotate.Dot(rotate) > mgl32.Epsilon {
		t.Rotation = t.Rotation.Add(rotate.Normalize().Mul(k.LookSpeed * dt))
	}

	t.Rotation[0] = mgl32.Clamp(t.Rotation[0], -1.5, 1.5)
	t.Rotation[1] = wrapAngle(t.Rotation[1])

	yaw := float64(t.Rotation[1])
	forward := mgl32.Vec3{float32(math.Sin(yaw)), 0, float32(math.Cos(yaw))}
	right := mgl32.Vec3{forward[2], 0, -forward[0]}
	up := DefaultUp

	var move mgl32.Vec3
	if input.IsKeyPressed(k.Keys.MoveForward) {
		move = move.Add(forward)
	}
	if input.IsKeyPressed(k.Keys.MoveBackward) {
		move = move.Sub(forward)
	}
	if input.IsKeyPressed(k.Keys.MoveRight) {
		move = move.Add(right)
	}
	if input.IsKeyPressed(k.Keys.MoveLeft) {
		move = move.Sub(right)
	}
	if input.IsKeyPressed(k.Keys.MoveUp) {
		move = move.Add(up)
	}
	if input.IsKeyPressed(k.Keys.MoveDown) {
		move = move.Sub(up)
	}
	if move.Dot(move) > mgl32.Epsilon {
		t.Translation = t.Translation.Add(move.Normalize().Mul(k.MoveSpeed * dt))
	}
}

func wrapAngle(a float32) float32 {
	const twoPi = 2 * math.Pi
	return float32(float64(a) - twoPi*math.Floor(float64(a)/twoPi))
}
