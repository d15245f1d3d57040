package io

import (
	"fmt"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"

	"vkrender/log"
	"vkrender/scene"
)

var logger = log.New("io")

// ModelLoader resolves a mesh reference to geometry.
type ModelLoader func(mesh string) (scene.ModelData, error)

// FileModelLoader resolves built-in mesh names and loads anything else from
// disk relative to baseDir.
func FileModelLoader(baseDir string) ModelLoader {
	return func(mesh string) (scene.ModelData, error) {
		switch mesh {
		case MeshCube:
			return scene.CubeData(mgl32.Vec3{}), nil
		case MeshPlane:
			return scene.PlaneData(1, 1, 1, mgl32.Vec3{0.8, 0.8, 0.8}), nil
		case MeshSphere:
			return scene.SphereData(0.5, 24, 16, mgl32.Vec3{1, 1, 1}), nil
		}
		path := mesh
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		return scene.LoadModelData(path)
	}
}

// Instantiate uploads each distinct mesh once and creates one render object
// per entry. Objects that reference the same mesh share a model. On failure
// every model uploaded so far is released.
func Instantiate(file *SceneFile, load ModelLoader, alloc scene.BufferAllocator, ids *scene.IDAllocator) (*scene.ObjectSet, error) {
	models := make(map[string]*scene.Model)
	defer func() {
		// Objects hold their own references; drop the loader's.
		for _, m := range models {
			m.Release()
		}
	}()

	set := scene.NewObjectSet()
	for i, od := range file.Objects {
		model, ok := models[od.Mesh]
		if !ok {
			data, err := load(od.Mesh)
			if err != nil {
				set.Clear()
				return nil, fmt.Errorf("object %d (%s): %w", i, od.Name, err)
			}
			model, err = scene.NewModel(alloc, data)
			if err != nil {
				set.Clear()
				return nil, fmt.Errorf("object %d (%s): %w", i, od.Name, err)
			}
			models[od.Mesh] = model
			logger.Debugf("loaded mesh %q: %d vertices", od.Mesh, len(data.Vertices))
		}

		obj := scene.NewRenderObject(ids)
		obj.SetModel(model)
		obj.Color = mgl32.Vec3(od.Color)
		obj.Transform = od.Transform()
		set.Add(obj)
	}
	logger.Infof("scene %q: %d objects, %d models", file.Name, set.Len(), len(models))
	return set, nil
}
