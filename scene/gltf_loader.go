package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"vkrender/core"
)

var identityMatrix = [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}

// LoadGLTF opens a .glb or .gltf file and flattens the triangle primitives
// of its default scene into one model. Node transforms are baked into the
// vertices and each primitive's base color factor becomes its vertex color.
// Textures are not loaded.
func LoadGLTF(path string) (ModelData, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return ModelData{}, fmt.Errorf("gltf open %q: %w", path, err)
	}
	data, err := modelFromDocument(doc)
	if err != nil {
		return ModelData{}, fmt.Errorf("%q: %w", path, err)
	}
	return data, nil
}

func modelFromDocument(doc *gltf.Document) (ModelData, error) {
	var data ModelData

	var visit func(idx int, parent mgl32.Mat4) error
	visit = func(idx int, parent mgl32.Mat4) error {
		if idx < 0 || idx >= len(doc.Nodes) {
			return fmt.Errorf("node %d out of range", idx)
		}
		gn := doc.Nodes[idx]
		world := parent.Mul4(nodeMatrix(gn))
		if gn.Mesh != nil {
			if *gn.Mesh >= len(doc.Meshes) {
				return fmt.Errorf("node %d: mesh %d out of range", idx, *gn.Mesh)
			}
			for pi, prim := range doc.Meshes[*gn.Mesh].Primitives {
				if prim.Mode != gltf.PrimitiveTriangles {
					continue
				}
				if err := appendPrimitive(doc, prim, world, &data); err != nil {
					return fmt.Errorf("mesh %d primitive %d: %w", *gn.Mesh, pi, err)
				}
			}
		}
		for _, child := range gn.Children {
			if err := visit(child, world); err != nil {
				return err
			}
		}
		return nil
	}

	for _, root := range rootNodes(doc) {
		if err := visit(root, mgl32.Ident4()); err != nil {
			return ModelData{}, err
		}
	}
	if len(data.Vertices) == 0 {
		return ModelData{}, fmt.Errorf("no triangle geometry found")
	}
	return data, nil
}

// rootNodes returns the default scene's roots, or every parentless node
// when the document names no scene.
func rootNodes(doc *gltf.Document) []int {
	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		return doc.Scenes[*doc.Scene].Nodes
	}
	hasParent := make([]bool, len(doc.Nodes))
	for _, gn := range doc.Nodes {
		for _, c := range gn.Children {
			if c >= 0 && c < len(hasParent) {
				hasParent[c] = true
			}
		}
	}
	var roots []int
	for i := range doc.Nodes {
		if !hasParent[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

func nodeMatrix(gn *gltf.Node) mgl32.Mat4 {
	if m := gn.MatrixOrDefault(); m != identityMatrix {
		var out mgl32.Mat4
		for i, v := range m {
			out[i] = float32(v)
		}
		return out
	}
	t := gn.TranslationOrDefault()
	r := gn.RotationOrDefault() // x, y, z, w
	s := gn.ScaleOrDefault()
	q := mgl32.Quat{W: float32(r[3]), V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])}}
	return mgl32.Translate3D(float32(t[0]), float32(t[1]), float32(t[2])).
		Mul4(q.Mat4()).
		Mul4(mgl32.Scale3D(float32(s[0]), float32(s[1]), float32(s[2])))
}

func appendPrimitive(doc *gltf.Document, prim *gltf.Primitive, world mgl32.Mat4, data *ModelData) error {
	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return fmt.Errorf("no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return fmt.Errorf("positions: %w", err)
	}

	var normals [][3]float32
	if idx, ok := prim.Attributes["NORMAL"]; ok {
		if normals, err = modeler.ReadNormal(doc, doc.Accessors[idx], nil); err != nil {
			return fmt.Errorf("normals: %w", err)
		}
	}
	var uvs [][2]float32
	if idx, ok := prim.Attributes["TEXCOORD_0"]; ok {
		if uvs, err = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil); err != nil {
			return fmt.Errorf("texcoords: %w", err)
		}
	}

	color := mgl32.Vec3{1, 1, 1}
	if prim.Material != nil && *prim.Material < len(doc.Materials) {
		if pbr := doc.Materials[*prim.Material].PBRMetallicRoughness; pbr != nil {
			cf := pbr.BaseColorFactorOrDefault()
			color = mgl32.Vec3{float32(cf[0]), float32(cf[1]), float32(cf[2])}
		}
	}

	normalMatrix := world.Mat3().Inv().Transpose()
	base := uint32(len(data.Vertices))
	for i, p := range positions {
		v := core.Vertex{
			Position: world.Mul4x1(mgl32.Vec4{p[0], p[1], p[2], 1}).Vec3(),
			Color:    color,
		}
		if i < len(normals) {
			n := normalMatrix.Mul3x1(mgl32.Vec3{normals[i][0], normals[i][1], normals[i][2]})
			if n.Len() > mgl32.Epsilon {
				v.Normal = n.Normalize()
			}
		}
		if i < len(uvs) {
			v.UV = mgl32.Vec2{uvs[i][0], uvs[i][1]}
		}
		data.Vertices = append(data.Vertices, v)
	}

	if prim.Indices == nil {
		for i := range positions {
			data.Indices = append(data.Indices, base+uint32(i))
		}
		return nil
	}
	indices, err := modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
	if err != nil {
		return fmt.Errorf("indices: %w", err)
	}
	for _, idx := range indices {
		if int(idx) >= len(positions) {
			return fmt.Errorf("index %d out of range", idx)
		}
		data.Indices = append(data.Indices, base+idx)
	}
	return nil
}
