package scene

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"vkrender/core"
)

// objCorner is one face corner: 0-based position / UV / normal indices,
// -1 when absent.
type objCorner struct{ v, vt, vn int }

// LoadOBJ parses a Wavefront .obj file into a single indexed model. Objects
// and groups are merged; polygons are fan-triangulated. Material libraries
// are ignored.
func LoadOBJ(path string) (ModelData, error) {
	f, err := os.Open(path)
	if err != nil {
		return ModelData{}, fmt.Errorf("open obj %q: %w", path, err)
	}
	defer f.Close()

	data, err := ParseOBJ(f)
	if err != nil {
		return ModelData{}, fmt.Errorf("%q: %w", path, err)
	}
	return data, nil
}

// ParseOBJ reads .obj text from r. A "v" line may carry an RGB vertex color
// after the position.
func ParseOBJ(r io.Reader) (ModelData, error) {
	var (
		positions []mgl32.Vec3
		colors    []mgl32.Vec3
		normals   []mgl32.Vec3
		uvs       []mgl32.Vec2
		corners   []objCorner
	)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)

		switch fields[0] {
		case "v":
			p, err := parseFloats(fields[1:], 3)
			if err != nil {
				return ModelData{}, fmt.Errorf("line %d: %w", lineNo, err)
			}
			positions = append(positions, mgl32.Vec3{p[0], p[1], p[2]})
			color := mgl32.Vec3{1, 1, 1}
			if len(fields) >= 7 {
				c, err := parseFloats(fields[4:], 3)
				if err != nil {
					return ModelData{}, fmt.Errorf("line %d: %w", lineNo, err)
				}
				color = mgl32.Vec3{c[0], c[1], c[2]}
			}
			colors = append(colors, color)

		case "vn":
			n, err := parseFloats(fields[1:], 3)
			if err != nil {
				return ModelData{}, fmt.Errorf("line %d: %w", lineNo, err)
			}
			normals = append(normals, mgl32.Vec3{n[0], n[1], n[2]})

		case "vt":
			t, err := parseFloats(fields[1:], 2)
			if err != nil {
				return ModelData{}, fmt.Errorf("line %d: %w", lineNo, err)
			}
			uvs = append(uvs, mgl32.Vec2{t[0], t[1]})

		case "f":
			if len(fields) < 4 {
				return ModelData{}, fmt.Errorf("line %d: face needs at least 3 vertices", lineNo)
			}
			face := make([]objCorner, 0, len(fields)-1)
			for _, tok := range fields[1:] {
				c, err := parseCorner(tok, len(positions), len(uvs), len(normals))
				if err != nil {
					return ModelData{}, fmt.Errorf("line %d: %w", lineNo, err)
				}
				face = append(face, c)
			}
			// Fan triangulation: 0-1-2, 0-2-3, ...
			for i := 1; i+1 < len(face); i++ {
				corners = append(corners, face[0], face[i], face[i+1])
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return ModelData{}, fmt.Errorf("scan obj: %w", err)
	}
	if len(corners) == 0 {
		return ModelData{}, fmt.Errorf("no faces found")
	}

	var data ModelData
	seen := make(map[objCorner]uint32)
	for _, c := range corners {
		if idx, ok := seen[c]; ok {
			data.Indices = append(data.Indices, idx)
			continue
		}
		v := core.Vertex{Position: positions[c.v], Color: colors[c.v]}
		if c.vn >= 0 {
			v.Normal = normals[c.vn]
		}
		if c.vt >= 0 {
			v.UV = uvs[c.vt]
		}
		idx := uint32(len(data.Vertices))
		data.Vertices = append(data.Vertices, v)
		seen[c] = idx
		data.Indices = append(data.Indices, idx)
	}

	if len(normals) == 0 {
		generateNormals(data.Vertices, data.Indices)
	}
	return data, nil
}

// parseCorner parses "v", "v/vt", "v//vn" or "v/vt/vn". OBJ indices are
// 1-based; negative values count back from the end of each pool.
func parseCorner(tok string, nv, nvt, nvn int) (objCorner, error) {
	resolve := func(s string, n int) (int, error) {
		if s == "" {
			return -1, nil
		}
		i, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("bad index %q", s)
		}
		if i < 0 {
			i += n
		} else {
			i--
		}
		if i < 0 || i >= n {
			return 0, fmt.Errorf("index %s out of range", s)
		}
		return i, nil
	}

	parts := strings.Split(tok, "/")
	c := objCorner{v: -1, vt: -1, vn: -1}
	var err error
	if c.v, err = resolve(parts[0], nv); err != nil {
		return c, err
	}
	if c.v < 0 {
		return c, fmt.Errorf("face vertex %q has no position", tok)
	}
	if len(parts) > 1 {
		if c.vt, err = resolve(parts[1], nvt); err != nil {
			return c, err
		}
	}
	if len(parts) > 2 {
		if c.vn, err = resolve(parts[2], nvn); err != nil {
			return c, err
		}
	}
	return c, nil
}

func parseFloats(fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("expected %d values, got %d", n, len(fields))
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, fmt.Errorf("bad number %q", fields[i])
		}
		out[i] = float32(f)
	}
	return out, nil
}

// generateNormals writes area-weighted smooth normals into vertices.
func generateNormals(vertices []core.Vertex, indices []uint32) {
	accum := make([]mgl32.Vec3, len(vertices))
	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		p0 := vertices[i0].Position
		n := vertices[i1].Position.Sub(p0).Cross(vertices[i2].Position.Sub(p0))
		accum[i0] = accum[i0].Add(n)
		accum[i1] = accum[i1].Add(n)
		accum[i2] = accum[i2].Add(n)
	}
	for i := range vertices {
		if accum[i].Len() > mgl32.Epsilon {
			vertices[i].Normal = accum[i].Normalize()
		}
	}
}
