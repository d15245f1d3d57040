package core

import (
	"fmt"
	"strconv"
	"strings"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"

	"vkrender/render"
)

// Color is a linear RGBA color. In YAML it is either a palette name such as
// "black" or a flow sequence of three or four components.
type Color struct {
	R, G, B, A float32
}

var (
	ColorWhite  = Color{1, 1, 1, 1}
	ColorBlack  = Color{0, 0, 0, 1}
	ColorRed    = Color{1, 0, 0, 1}
	ColorGreen  = Color{0, 1, 0, 1}
	ColorBlue   = Color{0, 0, 1, 1}
	ColorYellow = Color{1, 1, 0, 1}
)

var palette = map[string]Color{
	"white":  ColorWhite,
	"black":  ColorBlack,
	"red":    ColorRed,
	"green":  ColorGreen,
	"blue":   ColorBlue,
	"yellow": ColorYellow,
}

// ColorFromArray is the inverse of Array.
func ColorFromArray(c [4]float32) Color {
	return Color{c[0], c[1], c[2], c[3]}
}

// RGB drops the alpha channel.
func (c Color) RGB() mgl32.Vec3 {
	return mgl32.Vec3{c.R, c.G, c.B}
}

// Array returns the color as RGBA components.
func (c Color) Array() [4]float32 {
	return [4]float32{c.R, c.G, c.B, c.A}
}

// UnmarshalYAML accepts a palette name, [r, g, b] or [r, g, b, a].
func (c *Color) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		named, ok := palette[strings.ToLower(node.Value)]
		if !ok {
			return fmt.Errorf("line %d: unknown color %q", node.Line, node.Value)
		}
		*c = named
		return nil
	}

	var components []float32
	if err := node.Decode(&components); err != nil {
		return err
	}
	switch len(components) {
	case 3:
		*c = Color{components[0], components[1], components[2], 1}
	case 4:
		*c = Color{components[0], components[1], components[2], components[3]}
	default:
		return fmt.Errorf("line %d: color needs 3 or 4 components; got %d", node.Line, len(components))
	}
	return nil
}

// MarshalYAML writes the color as a four component flow sequence.
func (c Color) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, v := range c.Array() {
		node.Content = append(node.Content, &yaml.Node{
			Kind:  yaml.ScalarNode,
			Value: strconv.FormatFloat(float64(v), 'g', -1, 32),
		})
	}
	return node, nil
}

// Vertex is the interleaved per-vertex record read by every pipeline.
type Vertex struct {
	Position mgl32.Vec3
	Color    mgl32.Vec3
	Normal   mgl32.Vec3
	UV       mgl32.Vec2
}

// VertexSize is the stride of one Vertex in a vertex buffer.
const VertexSize = uint32(unsafe.Sizeof(Vertex{}))

// VertexLayout describes Vertex as shader inputs at locations 0 to 3.
func VertexLayout() render.VertexLayout {
	return render.VertexLayout{
		Stride: VertexSize,
		Attributes: []render.VertexAttribute{
			{Location: 0, Format: render.FormatR32G32B32Sfloat, Offset: uint32(unsafe.Offsetof(Vertex{}.Position))},
			{Location: 1, Format: render.FormatR32G32B32Sfloat, Offset: uint32(unsafe.Offsetof(Vertex{}.Color))},
			{Location: 2, Format: render.FormatR32G32B32Sfloat, Offset: uint32(unsafe.Offsetof(Vertex{}.Normal))},
			{Location: 3, Format: render.FormatR32G32Sfloat, Offset: uint32(unsafe.Offsetof(Vertex{}.UV))},
		},
	}
}

// VertexBytes views vertices as raw bytes without copying.
func VertexBytes(vertices []Vertex) []byte {
	if len(vertices) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&vertices[0])), len(vertices)*int(VertexSize))
}

// IndexBytes views 32-bit indices as raw bytes without copying.
func IndexBytes(indices []uint32) []byte {
	if len(indices) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&indices[0])), len(indices)*4)
}
