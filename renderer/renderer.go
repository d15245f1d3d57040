package renderer

import (
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"

	"vkrender/core"
	"vkrender/log"
	"vkrender/render"
	"vkrender/scene"
)

var logger = log.New("renderer")

// PushConstantData is the per-draw block shared by both shader stages. Its
// layout follows std430: the mat3 occupies three 16-byte columns.
type PushConstantData struct {
	Transform    mgl32.Mat4
	NormalMatrix [3]mgl32.Vec4
	Color        mgl32.Vec3
	// Lit is 1 when the diffuse term applies and 0 for unshaded geometry.
	Lit float32
}

// PushConstantSize is the byte size of PushConstantData.
const PushConstantSize = uint32(unsafe.Sizeof(PushConstantData{}))

// SetNormalMatrix stores m column by column in the padded mat3 slot.
func (p *PushConstantData) SetNormalMatrix(m mgl32.Mat3) {
	for i := range p.NormalMatrix {
		p.NormalMatrix[i] = m.Col(i).Vec4(0)
	}
}

func (p *PushConstantData) bytes() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(p)), PushConstantSize)
}

// PipelineAttacher registers a pipeline so it is rebuilt along with the
// frame chain. *render.Renderer implements it.
type PipelineAttacher interface {
	AttachPipeline(p *render.PipelineBinding) error
}

// DrawStats counts the work recorded by the most recent RenderObjects call.
type DrawStats struct {
	Objects   int
	Vertices  int
	Triangles int
	Lines     int
	// Skipped objects have no model; Culled ones lie outside the view frustum.
	Skipped int
	Culled  int
}

// SimpleRenderSystem draws every render object with one pipeline, passing
// the object's transform, normal matrix and color as push constants.
// Triangle systems shade with a fixed directional light; line systems
// draw vertex colors unshaded.
type SimpleRenderSystem struct {
	pipeline *render.PipelineBinding
	topology render.Topology
	lit      bool
	stats    DrawStats
}

// NewSimpleRenderSystem creates a triangle-list pipeline and hands it to
// attacher, which owns it from then on.
func NewSimpleRenderSystem(attacher PipelineAttacher, vertexCode, fragmentCode []uint32) (*SimpleRenderSystem, error) {
	return newRenderSystem("simple", render.TopologyTriangleList, attacher, vertexCode, fragmentCode)
}

// NewLineRenderSystem is NewSimpleRenderSystem for models whose indices
// form a line list, such as scene.GridLines.
func NewLineRenderSystem(attacher PipelineAttacher, vertexCode, fragmentCode []uint32) (*SimpleRenderSystem, error) {
	return newRenderSystem("lines", render.TopologyLineList, attacher, vertexCode, fragmentCode)
}

func newRenderSystem(name string, topology render.Topology, attacher PipelineAttacher, vertexCode, fragmentCode []uint32) (*SimpleRenderSystem, error) {
	ranges := []render.PushConstantRange{{
		Stages: render.ShaderStageVertex | render.ShaderStageFragment,
		Offset: 0,
		Size:   PushConstantSize,
	}}
	p := render.NewPipelineBinding(name, vertexCode, fragmentCode, ranges, func(c *render.PipelineConfig) {
		c.VertexLayout = core.VertexLayout()
		c.Topology = topology
	})
	if err := attacher.AttachPipeline(p); err != nil {
		return nil, err
	}
	logger.Debugf("render system %q ready", name)
	return &SimpleRenderSystem{pipeline: p, topology: topology, lit: topology == render.TopologyTriangleList}, nil
}

// Pipeline returns the system's pipeline binding.
func (s *SimpleRenderSystem) Pipeline() *render.PipelineBinding { return s.pipeline }

// Stats returns the counters of the last RenderObjects call.
func (s *SimpleRenderSystem) Stats() DrawStats { return s.stats }

// RenderObjects records one draw per object with a model. Must be called
// inside the main render pass.
func (s *SimpleRenderSystem) RenderObjects(cmd render.CommandBuffer, objects *scene.ObjectSet, camera *scene.Camera) {
	s.pipeline.Bind(cmd)
	s.stats = DrawStats{}

	viewProj := camera.ViewProjection()
	frustum := scene.FrustumFromMatrix(viewProj)
	var push PushConstantData
	if s.lit {
		push.Lit = 1
	}
	objects.Each(func(o *scene.RenderObject) {
		model := o.Model()
		if model == nil {
			s.stats.Skipped++
			return
		}
		world := o.Transform.Mat4()
		if !model.Bounds().Transform(world).IntersectsFrustum(&frustum) {
			s.stats.Culled++
			return
		}

		push.Transform = viewProj.Mul4(world)
		push.SetNormalMatrix(o.Transform.NormalMatrix())
		push.Color = o.Color
		cmd.PushConstants(s.pipeline.Layout(), render.ShaderStageVertex|render.ShaderStageFragment, 0, push.bytes())

		model.Bind(cmd)
		model.Draw(cmd)

		s.stats.Objects++
		s.stats.Vertices += int(model.VertexCount())
		elements := int(model.VertexCount())
		if model.HasIndices() {
			elements = int(model.IndexCount())
		}
		if s.topology == render.TopologyLineList {
			s.stats.Lines += elements / 2
		} else {
			s.stats.Triangles += elements / 3
		}
	})
}
