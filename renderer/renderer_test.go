package renderer

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vkrender/core"
	"vkrender/render"
	"vkrender/scene"
)

// pipelineDevice implements the pipeline half of render.Device.
type pipelineDevice struct {
	render.Device
	config render.PipelineConfig
	ranges []render.PushConstantRange
}

func (d *pipelineDevice) CreatePipelineLayout(ranges []render.PushConstantRange) (render.PipelineLayout, error) {
	d.ranges = ranges
	return "layout", nil
}
func (d *pipelineDevice) CreateShaderModule([]uint32) (render.ShaderModule, error) {
	return "module", nil
}
func (d *pipelineDevice) DestroyShaderModule(render.ShaderModule) {}
func (d *pipelineDevice) CreateGraphicsPipeline(c render.PipelineConfig) (render.Pipeline, error) {
	d.config = c
	return "pipeline", nil
}

type buildingAttacher struct {
	device *pipelineDevice
	err    error
}

func (a *buildingAttacher) AttachPipeline(p *render.PipelineBinding) error {
	if a.err != nil {
		return a.err
	}
	return p.Build(a.device, "pass", render.SwapchainFormat{Color: render.FormatB8G8R8A8Srgb, Depth: render.FormatD32Sfloat})
}

type nullAllocator struct{ next int }

func (a *nullAllocator) CreateBuffer(uint64, render.BufferUsage, render.MemoryProperty) (render.Buffer, error) {
	a.next++
	return a.next, nil
}
func (a *nullAllocator) WriteBuffer(render.Buffer, []byte) error               { return nil }
func (a *nullAllocator) CopyBuffer(render.Buffer, render.Buffer, uint64) error { return nil }
func (a *nullAllocator) DestroyBuffer(render.Buffer)                           {}

type pushRecord struct {
	stages render.ShaderStage
	data   []byte
}

type recordingCommandBuffer struct {
	render.CommandBuffer
	calls  []string
	pushes []pushRecord
}

func (c *recordingCommandBuffer) BindPipeline(render.Pipeline) {
	c.calls = append(c.calls, "bindPipeline")
}
func (c *recordingCommandBuffer) PushConstants(_ render.PipelineLayout, stages render.ShaderStage, _ uint32, data []byte) {
	c.calls = append(c.calls, "pushConstants")
	c.pushes = append(c.pushes, pushRecord{stages, append([]byte(nil), data...)})
}
func (c *recordingCommandBuffer) BindVertexBuffers(...render.Buffer) {
	c.calls = append(c.calls, "bindVertexBuffers")
}
func (c *recordingCommandBuffer) BindIndexBuffer(render.Buffer) {
	c.calls = append(c.calls, "bindIndexBuffer")
}
func (c *recordingCommandBuffer) Draw(uint32, uint32, uint32, uint32) {
	c.calls = append(c.calls, "draw")
}
func (c *recordingCommandBuffer) DrawIndexed(uint32, uint32, uint32, int32, uint32) {
	c.calls = append(c.calls, "drawIndexed")
}

type decodedPush struct {
	transform mgl32.Mat4
	normal    mgl32.Mat3
	color     mgl32.Vec3
	lit       float32
}

func decodePush(t *testing.T, data []byte) decodedPush {
	t.Helper()
	require.Len(t, data, int(PushConstantSize))
	f := func(i int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:])) }
	var p decodedPush
	for i := range p.transform {
		p.transform[i] = f(i)
	}
	for col := 0; col < 3; col++ {
		for row := 0; row < 3; row++ {
			p.normal[col*3+row] = f(16 + col*4 + row)
		}
	}
	p.color = mgl32.Vec3{f(28), f(29), f(30)}
	p.lit = f(31)
	return p
}

func TestPushConstantLayout(t *testing.T) {
	assert.Equal(t, uint32(128), PushConstantSize, "must fit the guaranteed push constant budget")
	assert.Equal(t, uintptr(64), unsafe.Offsetof(PushConstantData{}.NormalMatrix))
	assert.Equal(t, uintptr(112), unsafe.Offsetof(PushConstantData{}.Color))
	assert.Equal(t, uintptr(124), unsafe.Offsetof(PushConstantData{}.Lit))
}

func TestSetNormalMatrixPadsColumns(t *testing.T) {
	var p PushConstantData
	p.SetNormalMatrix(mgl32.Mat3{1, 2, 3, 4, 5, 6, 7, 8, 9})
	assert.Equal(t, [3]mgl32.Vec4{{1, 2, 3, 0}, {4, 5, 6, 0}, {7, 8, 9, 0}}, p.NormalMatrix)
}

func TestNewSimpleRenderSystemConfiguresPipeline(t *testing.T) {
	device := &pipelineDevice{}
	sys, err := NewSimpleRenderSystem(&buildingAttacher{device: device}, []uint32{1}, []uint32{2})
	require.NoError(t, err)

	assert.True(t, sys.Pipeline().Built())
	assert.Equal(t, core.VertexLayout(), device.config.VertexLayout)
	require.Len(t, device.ranges, 1)
	assert.Equal(t, render.ShaderStageVertex|render.ShaderStageFragment, device.ranges[0].Stages)
	assert.Equal(t, PushConstantSize, device.ranges[0].Size)
}

func TestNewSimpleRenderSystemPropagatesAttachError(t *testing.T) {
	_, err := NewSimpleRenderSystem(&buildingAttacher{err: render.ErrPipelineCreationFailed}, nil, nil)
	assert.True(t, errors.Is(err, render.ErrPipelineCreationFailed))
}

func TestRenderObjectsPushesTransformAndColor(t *testing.T) {
	sys, err := NewSimpleRenderSystem(&buildingAttacher{device: &pipelineDevice{}}, nil, nil)
	require.NoError(t, err)

	model, err := scene.NewModel(&nullAllocator{}, scene.CubeData(mgl32.Vec3{}))
	require.NoError(t, err)
	defer model.Release()

	var ids scene.IDAllocator
	objects := scene.NewObjectSet()
	cube := scene.NewRenderObject(&ids)
	cube.SetModel(model)
	cube.Color = mgl32.Vec3{0.1, 0.2, 0.3}
	cube.Transform.Translation = mgl32.Vec3{0, 0, 2.5}
	objects.Add(cube)
	objects.Add(scene.NewRenderObject(&ids)) // no model: skipped

	camera := scene.NewCamera()
	camera.SetPerspective(mgl32.DegToRad(50), 4.0/3.0, 0.1, 10)

	cmd := &recordingCommandBuffer{}
	sys.RenderObjects(cmd, objects, camera)

	assert.Equal(t, []string{"bindPipeline", "pushConstants", "bindVertexBuffers", "bindIndexBuffer", "drawIndexed"}, cmd.calls)
	require.Len(t, cmd.pushes, 1)
	assert.Equal(t, render.ShaderStageVertex|render.ShaderStageFragment, cmd.pushes[0].stages)

	push := decodePush(t, cmd.pushes[0].data)
	want := camera.Projection().Mul4(cube.Transform.Mat4())
	assert.True(t, want.ApproxEqualThreshold(push.transform, 1e-6))
	assert.Equal(t, cube.Color, push.color)
	assert.Equal(t, float32(1), push.lit)

	assert.Equal(t, DrawStats{Objects: 1, Vertices: 24, Triangles: 12, Skipped: 1}, sys.Stats())
}

func TestRenderObjectsBeforeBuildPanics(t *testing.T) {
	sys := &SimpleRenderSystem{pipeline: render.NewPipelineBinding("unbuilt", nil, nil, nil, nil)}
	assert.Panics(t, func() {
		sys.RenderObjects(&recordingCommandBuffer{}, scene.NewObjectSet(), scene.NewCamera())
	})
}

func TestRenderObjectsCullsObjectsOutsideFrustum(t *testing.T) {
	sys, err := NewSimpleRenderSystem(&buildingAttacher{device: &pipelineDevice{}}, nil, nil)
	require.NoError(t, err)

	model, err := scene.NewModel(&nullAllocator{}, scene.CubeData(mgl32.Vec3{}))
	require.NoError(t, err)
	defer model.Release()

	var ids scene.IDAllocator
	objects := scene.NewObjectSet()
	for _, z := range []float32{3, -3, 50} {
		o := scene.NewRenderObject(&ids)
		o.SetModel(model)
		o.Transform.Translation = mgl32.Vec3{0, 0, z}
		objects.Add(o)
	}

	camera := scene.NewCamera()
	camera.SetPerspective(mgl32.DegToRad(50), 1, 0.1, 10)

	cmd := &recordingCommandBuffer{}
	sys.RenderObjects(cmd, objects, camera)

	require.Len(t, cmd.pushes, 1)
	assert.Equal(t, 1, sys.Stats().Objects)
	assert.Equal(t, 2, sys.Stats().Culled)
}

func TestLineRenderSystem(t *testing.T) {
	device := &pipelineDevice{}
	sys, err := NewLineRenderSystem(&buildingAttacher{device: device}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, render.TopologyLineList, device.config.Topology)
	assert.Equal(t, "lines", sys.Pipeline().Name())

	model, err := scene.NewModel(&nullAllocator{}, scene.GridLines(2, 2))
	require.NoError(t, err)
	defer model.Release()

	var ids scene.IDAllocator
	objects := scene.NewObjectSet()
	grid := scene.NewRenderObject(&ids)
	grid.SetModel(model)
	grid.Transform.Translation = mgl32.Vec3{0, 0.5, 3}
	objects.Add(grid)

	camera := scene.NewCamera()
	camera.SetPerspective(mgl32.DegToRad(50), 1, 0.1, 10)
	cmd := &recordingCommandBuffer{}
	sys.RenderObjects(cmd, objects, camera)

	assert.Equal(t, DrawStats{Objects: 1, Vertices: 12, Lines: 6}, sys.Stats())
	require.Len(t, cmd.pushes, 1)
	assert.Equal(t, float32(0), decodePush(t, cmd.pushes[0].data).lit, "lines are drawn unshaded")
}

func TestRenderObjectsPushesNormalMatrix(t *testing.T) {
	sys, err := NewSimpleRenderSystem(&buildingAttacher{device: &pipelineDevice{}}, nil, nil)
	require.NoError(t, err)

	model, err := scene.NewModel(&nullAllocator{}, scene.CubeData(mgl32.Vec3{}))
	require.NoError(t, err)
	defer model.Release()

	var ids scene.IDAllocator
	objects := scene.NewObjectSet()
	cube := scene.NewRenderObject(&ids)
	cube.SetModel(model)
	cube.Transform.Translation = mgl32.Vec3{0, 0, 4}
	cube.Transform.Rotation = mgl32.Vec3{0.3, 0.7, 0}
	cube.Transform.Scale = mgl32.Vec3{3, 1.5, 3}
	objects.Add(cube)

	camera := scene.NewCamera()
	camera.SetPerspective(mgl32.DegToRad(50), 1, 0.1, 10)

	cmd := &recordingCommandBuffer{}
	sys.RenderObjects(cmd, objects, camera)
	require.Len(t, cmd.pushes, 1)

	push := decodePush(t, cmd.pushes[0].data)
	assert.True(t, cube.Transform.NormalMatrix().ApproxEqualThreshold(push.normal, 1e-5))

	// Non-uniform scale: the pushed matrix keeps normals perpendicular to
	// transformed surface tangents.
	world := cube.Transform.Mat4().Mat3()
	tangent := world.Mul3x1(mgl32.Vec3{1, 0, 0})
	normal := push.normal.Mul3x1(mgl32.Vec3{0, 1, 0})
	assert.InDelta(t, 0, tangent.Dot(normal), 1e-5)
}
