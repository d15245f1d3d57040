package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"vkrender/core"
)

var (
	gridGray = mgl32.Vec3{0.35, 0.35, 0.35}
	gridRed  = mgl32.Vec3{0.8, 0.15, 0.15}
	gridBlue = mgl32.Vec3{0.15, 0.35, 0.9}
)

// GridLines builds a flat grid in the XZ plane as a line list.
//
//	size      total extent, from -size/2 to +size/2
//	divisions number of cells along each axis
//
// The line along the X axis is red, the one along the Z axis blue and the
// rest gray.
func GridLines(size float32, divisions int) ModelData {
	if divisions < 1 {
		divisions = 1
	}
	half := size / 2
	step := size / float32(divisions)

	var data ModelData
	addLine := func(a, b, c mgl32.Vec3) {
		base := uint32(len(data.Vertices))
		data.Vertices = append(data.Vertices,
			core.Vertex{Position: a, Color: c, Normal: DefaultUp},
			core.Vertex{Position: b, Color: c, Normal: DefaultUp},
		)
		data.Indices = append(data.Indices, base, base+1)
	}

	// Lines parallel to Z.
	for i := 0; i <= divisions; i++ {
		x := -half + float32(i)*step
		c := gridGray
		if i*2 == divisions {
			c = gridBlue
		}
		addLine(mgl32.Vec3{x, 0, -half}, mgl32.Vec3{x, 0, half}, c)
	}
	// Lines parallel to X.
	for i := 0; i <= divisions; i++ {
		z := -half + float32(i)*step
		c := gridGray
		if i*2 == divisions {
			c = gridRed
		}
		addLine(mgl32.Vec3{-half, 0, z}, mgl32.Vec3{half, 0, z}, c)
	}
	return data
}
