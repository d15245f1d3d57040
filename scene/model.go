package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"vkrender/core"
	"vkrender/log"
	"vkrender/render"
)

var logger = log.New("scene")

// BufferAllocator is the slice of render.Device a Model needs to upload
// and free its geometry.
type BufferAllocator interface {
	CreateBuffer(size uint64, usage render.BufferUsage, properties render.MemoryProperty) (render.Buffer, error)
	WriteBuffer(buffer render.Buffer, data []byte) error
	CopyBuffer(src, dst render.Buffer, size uint64) error
	DestroyBuffer(buffer render.Buffer)
}

// ModelData is CPU-side geometry. Indices may be empty, in which case the
// vertices are drawn in order.
type ModelData struct {
	Vertices []core.Vertex
	Indices  []uint32
}

// Bounds returns the local-space box enclosing every vertex.
func (d ModelData) Bounds() AABB {
	points := make([]mgl32.Vec3, len(d.Vertices))
	for i, v := range d.Vertices {
		points[i] = v.Position
	}
	return BoundsOf(points)
}

// Model owns device-local vertex and index buffers. It is shared between
// render objects through explicit reference counting; the buffers are
// destroyed when the last reference is released.
type Model struct {
	allocator    BufferAllocator
	vertexBuffer render.Buffer
	vertexCount  uint32
	indexBuffer  render.Buffer
	indexCount   uint32
	bounds       AABB
	refs         int
}

// NewModel uploads data and returns a model holding one reference.
// Fewer than three vertices is a programming error.
func NewModel(allocator BufferAllocator, data ModelData) (*Model, error) {
	if len(data.Vertices) < 3 {
		panic(fmt.Sprintf("scene: model needs at least 3 vertices, got %d", len(data.Vertices)))
	}

	m := &Model{allocator: allocator, refs: 1, bounds: data.Bounds()}

	vb, err := uploadBuffer(allocator, core.VertexBytes(data.Vertices), render.BufferUsageVertex)
	if err != nil {
		return nil, fmt.Errorf("vertex buffer: %w", err)
	}
	m.vertexBuffer = vb
	m.vertexCount = uint32(len(data.Vertices))

	if len(data.Indices) > 0 {
		ib, err := uploadBuffer(allocator, core.IndexBytes(data.Indices), render.BufferUsageIndex)
		if err != nil {
			allocator.DestroyBuffer(vb)
			return nil, fmt.Errorf("index buffer: %w", err)
		}
		m.indexBuffer = ib
		m.indexCount = uint32(len(data.Indices))
	}

	logger.Debugf("uploaded model: %d vertices, %d indices", m.vertexCount, m.indexCount)
	return m, nil
}

// uploadBuffer copies data into a device-local buffer through a host-visible
// staging buffer.
func uploadBuffer(allocator BufferAllocator, data []byte, usage render.BufferUsage) (render.Buffer, error) {
	size := uint64(len(data))

	staging, err := allocator.CreateBuffer(size, render.BufferUsageTransferSrc,
		render.MemoryHostVisible|render.MemoryHostCoherent)
	if err != nil {
		return nil, fmt.Errorf("%w: staging buffer: %w", render.ErrResourceCreationFailed, err)
	}
	defer allocator.DestroyBuffer(staging)

	if err := allocator.WriteBuffer(staging, data); err != nil {
		return nil, fmt.Errorf("%w: write staging buffer: %w", render.ErrResourceCreationFailed, err)
	}

	buffer, err := allocator.CreateBuffer(size, usage|render.BufferUsageTransferDst, render.MemoryDeviceLocal)
	if err != nil {
		return nil, fmt.Errorf("%w: device buffer: %w", render.ErrResourceCreationFailed, err)
	}
	if err := allocator.CopyBuffer(staging, buffer, size); err != nil {
		allocator.DestroyBuffer(buffer)
		return nil, fmt.Errorf("%w: copy to device buffer: %w", render.ErrResourceCreationFailed, err)
	}
	return buffer, nil
}

func (m *Model) VertexCount() uint32 { return m.vertexCount }
func (m *Model) IndexCount() uint32  { return m.indexCount }
func (m *Model) HasIndices() bool    { return m.indexBuffer != nil }
func (m *Model) Refs() int           { return m.refs }

// Bounds returns the local-space bounding box of the uploaded vertices.
func (m *Model) Bounds() AABB { return m.bounds }

// Retain adds a reference.
func (m *Model) Retain() {
	if m.refs <= 0 {
		panic("scene: retain on released model")
	}
	m.refs++
}

// Release drops a reference and frees the buffers when none remain. The
// buffers are destroyed immediately, so the last reference must only be
// dropped once no submitted command buffer still reads them: after
// render.Renderer.WaitIdle or Close.
func (m *Model) Release() {
	if m.refs <= 0 {
		panic("scene: model released too many times")
	}
	m.refs--
	if m.refs > 0 {
		return
	}
	if m.indexBuffer != nil {
		m.allocator.DestroyBuffer(m.indexBuffer)
		m.indexBuffer = nil
	}
	m.allocator.DestroyBuffer(m.vertexBuffer)
	m.vertexBuffer = nil
}

// Bind binds the model's buffers on cmd. Binding a released model panics.
func (m *Model) Bind(cmd render.CommandBuffer) {
	if m.vertexBuffer == nil {
		panic("scene: bind on released model")
	}
	cmd.BindVertexBuffers(m.vertexBuffer)
	if m.indexBuffer != nil {
		cmd.BindIndexBuffer(m.indexBuffer)
	}
}

// Draw records one instance of the model.
func (m *Model) Draw(cmd render.CommandBuffer) {
	if m.indexBuffer != nil {
		cmd.DrawIndexed(m.indexCount, 1, 0, 0, 0)
		return
	}
	cmd.Draw(m.vertexCount, 1, 0, 0)
}
