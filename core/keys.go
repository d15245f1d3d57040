package core

import "github.com/go-gl/glfw/v3.3/glfw"

// Key codes accepted by Window.IsKeyPressed.
const (
	KeySpace       = int(glfw.KeySpace)
	KeyA           = int(glfw.KeyA)
	KeyD           = int(glfw.KeyD)
	KeyE           = int(glfw.KeyE)
	KeyQ           = int(glfw.KeyQ)
	KeyS           = int(glfw.KeyS)
	KeyW           = int(glfw.KeyW)
	KeyEscape      = int(glfw.KeyEscape)
	KeyEnter       = int(glfw.KeyEnter)
	KeyTab         = int(glfw.KeyTab)
	KeyRight       = int(glfw.KeyRight)
	KeyLeft        = int(glfw.KeyLeft)
	KeyDown        = int(glfw.KeyDown)
	KeyUp          = int(glfw.KeyUp)
	KeyF1          = int(glfw.KeyF1)
	KeyLeftShift   = int(glfw.KeyLeftShift)
	KeyLeftControl = int(glfw.KeyLeftControl)
)
