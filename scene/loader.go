package scene

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrModelLoad wraps every failure to read model geometry from disk.
var ErrModelLoad = errors.New("model load failed")

// LoadModelData reads geometry from an .obj, .gltf or .glb file.
func LoadModelData(path string) (ModelData, error) {
	var (
		data ModelData
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".obj":
		data, err = LoadOBJ(path)
	case ".gltf", ".glb":
		data, err = LoadGLTF(path)
	default:
		err = fmt.Errorf("unsupported model format %q", ext)
	}
	if err != nil {
		return ModelData{}, fmt.Errorf("%w: %w", ErrModelLoad, err)
	}
	if len(data.Vertices) < 3 {
		return ModelData{}, fmt.Errorf("%w: %s: %d vertices", ErrModelLoad, path, len(data.Vertices))
	}
	return data, nil
}
