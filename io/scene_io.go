package io

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"

	"vkrender/scene"
)

// SceneFileVersion is written by SaveScene and accepted by LoadScene.
const SceneFileVersion = "1"

// Built-in mesh names accepted in ObjectData.Mesh. Anything else is a model
// file path resolved against the scene file's directory.
const (
	MeshCube   = "cube"
	MeshPlane  = "plane"
	MeshSphere = "sphere"
)

// SceneFile is the top-level structure of a YAML scene description.
type SceneFile struct {
	Version string       `yaml:"version"`
	Name    string       `yaml:"name"`
	Camera  CameraData   `yaml:"camera"`
	Grid    GridData     `yaml:"grid,omitempty"`
	Objects []ObjectData `yaml:"objects"`
}

// GridData describes an optional reference grid in the XZ plane. Zero
// divisions disables it.
type GridData struct {
	Size      float32 `yaml:"size"`
	Divisions int     `yaml:"divisions"`
}

// Enabled reports whether a grid should be drawn.
func (g GridData) Enabled() bool { return g.Divisions > 0 && g.Size > 0 }

// CameraData stores the viewer's starting pose and lens.
type CameraData struct {
	Position [3]float32 `yaml:"position"`
	Rotation [3]float32 `yaml:"rotation"` // radians, applied Y, X, Z
	FOV      float32    `yaml:"fov"`      // vertical, degrees
	Near     float32    `yaml:"near"`
	Far      float32    `yaml:"far"`
}

// ObjectData stores one render object.
type ObjectData struct {
	Name     string     `yaml:"name"`
	Mesh     string     `yaml:"mesh"`
	Color    [3]float32 `yaml:"color"`
	Position [3]float32 `yaml:"position"`
	Rotation [3]float32 `yaml:"rotation"` // radians, applied Y, X, Z
	Scale    [3]float32 `yaml:"scale"`
}

// UnmarshalYAML defaults color and scale to one when omitted.
func (o *ObjectData) UnmarshalYAML(node *yaml.Node) error {
	type plain ObjectData
	p := plain{Color: [3]float32{1, 1, 1}, Scale: [3]float32{1, 1, 1}}
	if err := node.Decode(&p); err != nil {
		return err
	}
	*o = ObjectData(p)
	return nil
}

// Transform converts the stored pose into a scene transform.
func (o ObjectData) Transform() scene.Transform {
	return scene.Transform{
		Translation: mgl32.Vec3(o.Position),
		Rotation:    mgl32.Vec3(o.Rotation),
		Scale:       mgl32.Vec3(o.Scale),
	}
}

// Transform returns the camera pose as a transform for the viewer object.
func (c CameraData) Transform() scene.Transform {
	t := scene.NewTransform()
	t.Translation = mgl32.Vec3(c.Position)
	t.Rotation = mgl32.Vec3(c.Rotation)
	return t
}

// Validate reports every problem in the file at once.
func (f *SceneFile) Validate() error {
	var errs []error
	if f.Version != SceneFileVersion {
		errs = append(errs, fmt.Errorf("unsupported version %q", f.Version))
	}
	if f.Camera.FOV <= 0 || f.Camera.FOV >= 180 {
		errs = append(errs, fmt.Errorf("camera fov %v out of range (0, 180)", f.Camera.FOV))
	}
	if f.Camera.Near <= 0 || f.Camera.Far <= f.Camera.Near {
		errs = append(errs, fmt.Errorf("camera clip range [%v, %v] is invalid", f.Camera.Near, f.Camera.Far))
	}
	if f.Grid.Divisions < 0 || f.Grid.Size < 0 {
		errs = append(errs, fmt.Errorf("grid size and divisions must not be negative"))
	}
	for i, o := range f.Objects {
		if o.Mesh == "" {
			errs = append(errs, fmt.Errorf("object %d (%s): no mesh", i, o.Name))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid scene: %w", err)
	}
	return nil
}

// SaveScene writes the scene as YAML.
func SaveScene(path string, file *SceneFile) error {
	data, err := yaml.Marshal(file)
	if err != nil {
		return fmt.Errorf("failed to marshal scene: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadScene reads and validates a YAML scene file.
func LoadScene(path string) (*SceneFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene file: %w", err)
	}

	file := NewDefaultSceneFile("")
	file.Objects = nil
	if err := yaml.Unmarshal(data, file); err != nil {
		return nil, fmt.Errorf("failed to parse scene file %q: %w", path, err)
	}
	if err := file.Validate(); err != nil {
		return nil, fmt.Errorf("%q: %w", path, err)
	}
	return file, nil
}

// NewDefaultSceneFile describes a single colored cube in front of the viewer.
func NewDefaultSceneFile(name string) *SceneFile {
	return &SceneFile{
		Version: SceneFileVersion,
		Name:    name,
		Camera: CameraData{
			FOV:  50,
			Near: 0.1,
			Far:  10,
		},
		Grid: GridData{Size: 10, Divisions: 20},
		Objects: []ObjectData{{
			Name:     "cube",
			Mesh:     MeshCube,
			Color:    [3]float32{1, 1, 1},
			Position: [3]float32{0, 0, 2.5},
			Scale:    [3]float32{0.5, 0.5, 0.5},
		}},
	}
}
