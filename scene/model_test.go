package scene

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vkrender/core"
	"vkrender/render"
)

func triangle() ModelData {
	return ModelData{Vertices: []core.Vertex{
		{Position: mgl32.Vec3{0, -.5, 0}},
		{Position: mgl32.Vec3{.5, .5, 0}},
		{Position: mgl32.Vec3{-.5, .5, 0}},
	}}
}

func TestNewModelStagesVertexUpload(t *testing.T) {
	alloc := newFakeAllocator()
	m, err := NewModel(alloc, triangle())
	require.NoError(t, err)

	require.Len(t, alloc.created, 2)
	staging, device := alloc.created[0], alloc.created[1]
	assert.Equal(t, render.BufferUsageTransferSrc, staging.usage)
	assert.Equal(t, render.MemoryHostVisible|render.MemoryHostCoherent, staging.props)
	assert.Equal(t, render.BufferUsageVertex|render.BufferUsageTransferDst, device.usage)
	assert.Equal(t, render.MemoryDeviceLocal, device.props)
	assert.Equal(t, uint64(3*core.VertexSize), device.size)
	assert.Equal(t, staging.data, device.data)

	assert.Equal(t, 1, alloc.liveCount(), "staging buffer must be destroyed")
	assert.Equal(t, uint32(3), m.VertexCount())
	assert.False(t, m.HasIndices())
	assert.Equal(t, 1, m.Refs())
}

func TestNewModelWithIndices(t *testing.T) {
	alloc := newFakeAllocator()
	data := CubeData(mgl32.Vec3{})
	m, err := NewModel(alloc, data)
	require.NoError(t, err)

	assert.True(t, m.HasIndices())
	assert.Equal(t, uint32(36), m.IndexCount())
	assert.Equal(t, 2, alloc.liveCount())

	cmd := &fakeCommandBuffer{}
	m.Bind(cmd)
	m.Draw(cmd)
	assert.Equal(t, []string{"bindVertexBuffers(2)", "bindIndexBuffer(4)", "drawIndexed(36,1)"}, cmd.calls)

	assertVec3(t, mgl32.Vec3{-0.5, -0.5, -0.5}, m.Bounds().Min)
	assertVec3(t, mgl32.Vec3{0.5, 0.5, 0.5}, m.Bounds().Max)
}

func TestModelDrawWithoutIndices(t *testing.T) {
	m, err := NewModel(newFakeAllocator(), triangle())
	require.NoError(t, err)

	cmd := &fakeCommandBuffer{}
	m.Bind(cmd)
	m.Draw(cmd)
	assert.Equal(t, []string{"bindVertexBuffers(2)", "draw(3,1)"}, cmd.calls)
}

func TestNewModelRejectsTooFewVertices(t *testing.T) {
	data := triangle()
	data.Vertices = data.Vertices[:2]
	assert.Panics(t, func() { _, _ = NewModel(newFakeAllocator(), data) })
}

func TestNewModelUploadFailureLeaksNothing(t *testing.T) {
	for _, failAt := range []int{1, 2, 3, 4} {
		alloc := newFakeAllocator()
		alloc.failAfter = failAt
		_, err := NewModel(alloc, CubeData(mgl32.Vec3{}))
		require.Error(t, err, "fail at create %d", failAt)
		assert.True(t, errors.Is(err, render.ErrResourceCreationFailed))
		assert.Zero(t, alloc.liveCount(), "fail at create %d", failAt)
	}
}

func TestModelSharedBetweenObjects(t *testing.T) {
	alloc := newFakeAllocator()
	m, err := NewModel(alloc, triangle())
	require.NoError(t, err)

	var ids IDAllocator
	set := NewObjectSet()
	objects := make([]*RenderObject, 3)
	for i := range objects {
		objects[i] = NewRenderObject(&ids)
		objects[i].SetModel(m)
		set.Add(objects[i])
	}
	m.Release()
	assert.Equal(t, 3, m.Refs())

	require.True(t, set.Remove(objects[0].ID()))
	require.True(t, set.Remove(objects[2].ID()))
	assert.Equal(t, 1, m.Refs())
	assert.Equal(t, 1, alloc.liveCount(), "the survivor keeps the buffers alive")

	survivor, ok := set.Get(objects[1].ID())
	require.True(t, ok)
	cmd := &fakeCommandBuffer{}
	survivor.Model().Bind(cmd)
	survivor.Model().Draw(cmd)
	assert.Equal(t, []string{"bindVertexBuffers(2)", "draw(3,1)"}, cmd.calls)

	set.Clear()
	assert.Zero(t, alloc.liveCount())
	assert.Zero(t, set.Len())
}

func TestBindReleasedModelPanics(t *testing.T) {
	m, err := NewModel(newFakeAllocator(), triangle())
	require.NoError(t, err)
	m.Release()
	assert.Panics(t, func() { m.Bind(&fakeCommandBuffer{}) })
}

func TestModelReleaseTooManyTimesPanics(t *testing.T) {
	m, err := NewModel(newFakeAllocator(), triangle())
	require.NoError(t, err)
	m.Release()
	assert.Panics(t, m.Release)
	assert.Panics(t, m.Retain)
}
