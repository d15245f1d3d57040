package scene

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// triangleDocument builds a single-triangle glTF document with float
// positions and uint16 indices packed into one buffer.
func triangleDocument() *gltf.Document {
	positions := []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}
	indices := []uint16{0, 1, 2, 0} // last entry pads to 4-byte alignment

	buf := make([]byte, 0, len(positions)*4+len(indices)*2)
	for _, f := range positions {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
	}
	for _, i := range indices {
		buf = binary.LittleEndian.AppendUint16(buf, i)
	}

	return &gltf.Document{
		Buffers: []*gltf.Buffer{{ByteLength: len(buf), Data: buf}},
		BufferViews: []*gltf.BufferView{
			{Buffer: 0, ByteOffset: 0, ByteLength: 36},
			{Buffer: 0, ByteOffset: 36, ByteLength: 6},
		},
		Accessors: []*gltf.Accessor{
			{BufferView: gltf.Index(0), ComponentType: gltf.ComponentFloat, Count: 3, Type: gltf.AccessorVec3},
			{BufferView: gltf.Index(1), ComponentType: gltf.ComponentUshort, Count: 3, Type: gltf.AccessorScalar},
		},
		Materials: []*gltf.Material{{
			PBRMetallicRoughness: &gltf.PBRMetallicRoughness{BaseColorFactor: &[4]float64{1, 0.5, 0, 1}},
		}},
		Meshes: []*gltf.Mesh{{Primitives: []*gltf.Primitive{{
			Attributes: map[string]int{"POSITION": 0},
			Indices:    gltf.Index(1),
			Material:   gltf.Index(0),
		}}}},
		Nodes: []*gltf.Node{
			{Children: []int{1}, Translation: [3]float64{10, 0, 0}},
			{Mesh: gltf.Index(0), Scale: [3]float64{2, 2, 2}},
		},
		Scene:  gltf.Index(0),
		Scenes: []*gltf.Scene{{Nodes: []int{0}}},
	}
}

func TestModelFromDocumentBakesNodeTransforms(t *testing.T) {
	data, err := modelFromDocument(triangleDocument())
	require.NoError(t, err)

	require.Len(t, data.Vertices, 3)
	assert.Equal(t, []uint32{0, 1, 2}, data.Indices)
	assertVec3(t, mgl32.Vec3{10, 0, 0}, data.Vertices[0].Position)
	assertVec3(t, mgl32.Vec3{12, 0, 0}, data.Vertices[1].Position)
	assertVec3(t, mgl32.Vec3{10, 2, 0}, data.Vertices[2].Position)
	assert.Equal(t, mgl32.Vec3{1, 0.5, 0}, data.Vertices[0].Color)
}

func TestModelFromDocumentInstancesMeshPerNode(t *testing.T) {
	doc := triangleDocument()
	doc.Nodes = append(doc.Nodes, &gltf.Node{Mesh: gltf.Index(0)})
	doc.Scenes[0].Nodes = []int{0, 2}

	data, err := modelFromDocument(doc)
	require.NoError(t, err)
	assert.Len(t, data.Vertices, 6)
	assert.Equal(t, []uint32{0, 1, 2, 3, 4, 5}, data.Indices)
}

func TestModelFromDocumentWithoutGeometry(t *testing.T) {
	doc := triangleDocument()
	doc.Nodes[1].Mesh = nil
	_, err := modelFromDocument(doc)
	assert.Error(t, err)
}

func TestRootNodesWithoutScene(t *testing.T) {
	doc := triangleDocument()
	doc.Scene = nil
	assert.Equal(t, []int{0}, rootNodes(doc))
}
