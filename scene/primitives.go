package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"vkrender/core"
)

type cubeFace struct {
	normal mgl32.Vec3
	color  mgl32.Vec3
	// corners in winding order; two triangles are built as 0-1-2 and 0-3-1
	corners [4]mgl32.Vec3
}

// Y points down, so the "top" face sits at y = -0.5.
var cubeFaces = [6]cubeFace{
	{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{.9, .9, .9}, [4]mgl32.Vec3{{-.5, -.5, -.5}, {-.5, .5, .5}, {-.5, -.5, .5}, {-.5, .5, -.5}}},
	{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{.8, .8, .1}, [4]mgl32.Vec3{{.5, -.5, -.5}, {.5, .5, .5}, {.5, -.5, .5}, {.5, .5, -.5}}},
	{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{.9, .6, .1}, [4]mgl32.Vec3{{-.5, -.5, -.5}, {.5, -.5, .5}, {-.5, -.5, .5}, {.5, -.5, -.5}}},
	{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{.8, .1, .1}, [4]mgl32.Vec3{{-.5, .5, -.5}, {.5, .5, .5}, {-.5, .5, .5}, {.5, .5, -.5}}},
	{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{.1, .1, .8}, [4]mgl32.Vec3{{-.5, -.5, .5}, {.5, .5, .5}, {-.5, .5, .5}, {.5, -.5, .5}}},
	{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{.1, .8, .1}, [4]mgl32.Vec3{{-.5, -.5, -.5}, {.5, .5, -.5}, {-.5, .5, -.5}, {.5, -.5, -.5}}},
}

// CubeData returns a unit cube centered on offset with one flat color per
// face: 24 vertices and 36 indices.
func CubeData(offset mgl32.Vec3) ModelData {
	data := ModelData{
		Vertices: make([]core.Vertex, 0, 24),
		Indices:  make([]uint32, 0, 36),
	}
	for _, face := range cubeFaces {
		base := uint32(len(data.Vertices))
		for _, c := range face.corners {
			data.Vertices = append(data.Vertices, core.Vertex{
				Position: c.Add(offset),
				Color:    face.color,
				Normal:   face.normal,
			})
		}
		data.Indices = append(data.Indices, base, base+1, base+2, base, base+3, base+1)
	}
	return data
}

// PlaneData generates a flat plane in the XZ plane, subdivided into a grid.
func PlaneData(width, depth float32, subdivisions int, color mgl32.Vec3) ModelData {
	if subdivisions < 1 {
		subdivisions = 1
	}

	var data ModelData
	halfW := width / 2
	halfD := depth / 2

	for z := 0; z <= subdivisions; z++ {
		for x := 0; x <= subdivisions; x++ {
			u := float32(x) / float32(subdivisions)
			v := float32(z) / float32(subdivisions)
			data.Vertices = append(data.Vertices, core.Vertex{
				Position: mgl32.Vec3{-halfW + u*width, 0, -halfD + v*depth},
				Color:    color,
				Normal:   DefaultUp,
				UV:       mgl32.Vec2{u, v},
			})
		}
	}

	for z := 0; z < subdivisions; z++ {
		for x := 0; x < subdivisions; x++ {
			topLeft := uint32(z*(subdivisions+1) + x)
			topRight := topLeft + 1
			bottomLeft := topLeft + uint32(subdivisions+1)
			bottomRight := bottomLeft + 1
			data.Indices = append(data.Indices,
				topLeft, bottomLeft, topRight,
				topRight, bottomLeft, bottomRight)
		}
	}
	return data
}

// SphereData generates a UV sphere.
func SphereData(radius float32, segments, rings int, color mgl32.Vec3) ModelData {
	if segments < 3 {
		segments = 3
	}
	if rings < 2 {
		rings = 2
	}

	var data ModelData
	for ring := 0; ring <= rings; ring++ {
		phi := float64(ring) * math.Pi / float64(rings)
		sinPhi, cosPhi := math.Sincos(phi)

		for seg := 0; seg <= segments; seg++ {
			theta := float64(seg) * 2 * math.Pi / float64(segments)
			sinTheta, cosTheta := math.Sincos(theta)

			normal := mgl32.Vec3{float32(sinPhi * cosTheta), float32(cosPhi), float32(sinPhi * sinTheta)}
			data.Vertices = append(data.Vertices, core.Vertex{
				Position: normal.Mul(radius),
				Color:    color,
				Normal:   normal,
				UV:       mgl32.Vec2{float32(seg) / float32(segments), float32(ring) / float32(rings)},
			})
		}
	}

	for ring := 0; ring < rings; ring++ {
		for seg := 0; seg < segments; seg++ {
			current := uint32(ring*(segments+1) + seg)
			next := current + uint32(segments+1)
			data.Indices = append(data.Indices,
				current, next, current+1,
				current+1, next, next+1)
		}
	}
	return data
}
