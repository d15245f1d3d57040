// Package app wires the window, the Vulkan device, the frame orchestrator and
// a scene into the demo's main loop.
package app

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"vkrender/config"
	"vkrender/core"
	"vkrender/io"
	"vkrender/log"
	"vkrender/render"
	"vkrender/renderer"
	"vkrender/scene"
	"vkrender/vulkan"
)

var logger = log.New("app")

// MaxFrameTime caps the simulation step after a stall such as a window drag.
const MaxFrameTime = 250 * time.Millisecond

// Options are the per-run choices that do not belong in the config file.
type Options struct {
	// ScenePath is a YAML scene file. Empty runs the built-in scene.
	ScenePath string
}

// App owns every engine object for one run. Create it with New, drive it
// with Run and release it with Close, all on the main thread.
type App struct {
	cfg  config.Config
	opts Options

	window   *core.Window
	instance *vulkan.Instance
	device   *vulkan.Device
	renderer *render.Renderer

	simple *renderer.SimpleRenderSystem
	lines  *renderer.SimpleRenderSystem

	ids       scene.IDAllocator
	sceneFile *io.SceneFile
	objects   *scene.ObjectSet
	grid      *scene.ObjectSet

	camera     *scene.Camera
	viewer     scene.Transform
	controller *scene.KeyboardController

	frames uint64
}

// New opens the window and the device, builds the first frame chain and
// uploads the scene. On error everything created so far is released.
func New(cfg config.Config, opts Options) (a *App, err error) {
	a = &App{
		cfg:        cfg,
		opts:       opts,
		camera:     scene.NewCamera(),
		controller: scene.NewKeyboardController(),
	}
	defer func() {
		if err != nil {
			a.Close()
			a = nil
		}
	}()

	if err := a.loadScene(); err != nil {
		return a, err
	}

	a.window, a.instance, a.device, err = OpenDevice(cfg.CoreWindow(), cfg.Renderer.Validation)
	if err != nil {
		return a, err
	}

	rc, err := cfg.Render()
	if err != nil {
		return a, err
	}
	a.renderer, err = render.NewRenderer(a.window, a.device, rc)
	if err != nil {
		return a, fmt.Errorf("failed to create renderer: %w", err)
	}

	if err := a.createRenderSystems(); err != nil {
		return a, err
	}
	if err := a.uploadScene(); err != nil {
		return a, err
	}
	return a, nil
}

// OpenDevice creates a window, a Vulkan instance with the extensions the
// window needs, and a device that can present to it.
func OpenDevice(wc core.WindowConfig, validation bool) (*core.Window, *vulkan.Instance, *vulkan.Device, error) {
	window, err := core.NewWindow(wc)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := vulkan.Init(core.VulkanProcAddr()); err != nil {
		window.Destroy()
		return nil, nil, nil, err
	}
	instance, err := vulkan.NewInstance(wc.Title, window.RequiredInstanceExtensions(), validation)
	if err != nil {
		window.Destroy()
		return nil, nil, nil, err
	}
	surface, err := instance.CreateSurface(window)
	if err != nil {
		instance.Destroy()
		window.Destroy()
		return nil, nil, nil, err
	}
	device, err := vulkan.NewDevice(instance, surface)
	if err != nil {
		instance.DestroySurface(surface)
		instance.Destroy()
		window.Destroy()
		return nil, nil, nil, err
	}
	return window, instance, device, nil
}

func (a *App) loadScene() error {
	if a.opts.ScenePath == "" {
		a.sceneFile = io.NewDefaultSceneFile("default")
		return nil
	}
	file, err := io.LoadScene(a.opts.ScenePath)
	if err != nil {
		return err
	}
	a.sceneFile = file
	return nil
}

func (a *App) createRenderSystems() error {
	dir := a.cfg.Renderer.ShaderDir
	vert, err := renderer.LoadShader(dir, "simple", renderer.StageVertex, renderer.SimpleVertexShaderGLSL)
	if err != nil {
		return err
	}
	frag, err := renderer.LoadShader(dir, "simple", renderer.StageFragment, renderer.SimpleFragmentShaderGLSL)
	if err != nil {
		return err
	}

	a.simple, err = renderer.NewSimpleRenderSystem(a.renderer, vert, frag)
	if err != nil {
		return err
	}
	if a.sceneFile.Grid.Enabled() {
		a.lines, err = renderer.NewLineRenderSystem(a.renderer, vert, frag)
		if err != nil {
			return err
		}
	}
	return nil
}

func (a *App) uploadScene() error {
	baseDir := ""
	if a.opts.ScenePath != "" {
		baseDir = filepath.Dir(a.opts.ScenePath)
	}

	objects, err := io.Instantiate(a.sceneFile, io.FileModelLoader(baseDir), a.device, &a.ids)
	if err != nil {
		return fmt.Errorf("failed to load scene: %w", err)
	}
	a.objects = objects

	if a.sceneFile.Grid.Enabled() {
		model, err := scene.NewModel(a.device, scene.GridLines(a.sceneFile.Grid.Size, a.sceneFile.Grid.Divisions))
		if err != nil {
			return fmt.Errorf("failed to upload grid: %w", err)
		}
		grid := scene.NewRenderObject(&a.ids)
		grid.SetModel(model)
		model.Release()
		a.grid = scene.NewObjectSet()
		a.grid.Add(grid)
	}

	a.viewer = a.sceneFile.Camera.Transform()
	return nil
}

// Run drives the main loop until the window is closed, then waits for the
// device to go idle.
func (a *App) Run() error {
	logger.Infof("running scene %q with %d objects", a.sceneFile.Name, a.objects.Len())

	last := time.Now()
	for !a.window.ShouldClose() {
		a.window.PollEvents()

		now := time.Now()
		dt := min(now.Sub(last), MaxFrameTime)
		last = now

		a.controller.MoveInPlaneXZ(a.window, float32(dt.Seconds()), &a.viewer)
		a.camera.SetViewYXZ(a.viewer.Translation, a.viewer.Rotation)
		if aspect := a.renderer.AspectRatio(); aspect > 0 {
			lens := a.sceneFile.Camera
			a.camera.SetPerspective(mgl32.DegToRad(lens.FOV), aspect, lens.Near, lens.Far)
		}

		if err := a.drawFrame(); err != nil {
			return err
		}
	}
	return a.renderer.WaitIdle()
}

func (a *App) drawFrame() error {
	cmd, err := a.renderer.BeginFrame()
	if err != nil {
		return err
	}
	if cmd == nil {
		return nil
	}

	a.renderer.BeginRenderPass(cmd)
	a.simple.RenderObjects(cmd, a.objects, a.camera)
	if a.lines != nil {
		a.lines.RenderObjects(cmd, a.grid, a.camera)
	}
	a.renderer.EndRenderPass(cmd)

	if err := a.renderer.EndFrame(); err != nil {
		return err
	}
	a.frames++
	if a.frames%600 == 0 {
		s := a.simple.Stats()
		logger.Debugf("frame %d: %d objects drawn, %d culled", a.frames, s.Objects, s.Culled)
	}
	return nil
}

// Stats returns the orchestrator counters, or zero values before the
// renderer exists.
func (a *App) Stats() render.Stats {
	if a.renderer == nil {
		return render.Stats{}
	}
	return a.renderer.Stats()
}

// DrawStats returns what the object pass recorded in the last frame.
func (a *App) DrawStats() renderer.DrawStats {
	if a.simple == nil {
		return renderer.DrawStats{}
	}
	return a.simple.Stats()
}

// Close releases everything in reverse creation order. The renderer waits for
// the device before destroying its resources, so models are freed after it.
func (a *App) Close() {
	if a.renderer != nil {
		a.renderer.Close()
		a.renderer = nil
	}
	if a.grid != nil {
		a.grid.Clear()
		a.grid = nil
	}
	if a.objects != nil {
		a.objects.Clear()
		a.objects = nil
	}
	if a.device != nil {
		a.device.Destroy()
		a.device = nil
	}
	if a.instance != nil {
		a.instance.Destroy()
		a.instance = nil
	}
	if a.window != nil {
		a.window.Destroy()
		a.window = nil
	}
}
