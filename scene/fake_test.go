package scene

import (
	"errors"
	"fmt"

	"vkrender/render"
)

type fakeBuffer struct {
	id    int
	size  uint64
	usage render.BufferUsage
	props render.MemoryProperty
	data  []byte
}

type fakeAllocator struct {
	nextID    int
	live      map[*fakeBuffer]bool
	created   []*fakeBuffer
	copies    []string
	failAfter int // fail the Nth CreateBuffer call (1-based), 0 = never
	creates   int
}

func newFakeAllocator() *fakeAllocator {
	return &fakeAllocator{live: make(map[*fakeBuffer]bool)}
}

func (a *fakeAllocator) CreateBuffer(size uint64, usage render.BufferUsage, props render.MemoryProperty) (render.Buffer, error) {
	a.creates++
	if a.failAfter > 0 && a.creates == a.failAfter {
		return nil, errors.New("out of device memory")
	}
	a.nextID++
	b := &fakeBuffer{id: a.nextID, size: size, usage: usage, props: props}
	a.live[b] = true
	a.created = append(a.created, b)
	return b, nil
}

func (a *fakeAllocator) WriteBuffer(buffer render.Buffer, data []byte) error {
	b := buffer.(*fakeBuffer)
	if !a.live[b] {
		return fmt.Errorf("write to dead buffer %d", b.id)
	}
	b.data = append([]byte(nil), data...)
	return nil
}

func (a *fakeAllocator) CopyBuffer(src, dst render.Buffer, size uint64) error {
	s, d := src.(*fakeBuffer), dst.(*fakeBuffer)
	d.data = append([]byte(nil), s.data[:size]...)
	a.copies = append(a.copies, fmt.Sprintf("%d->%d", s.id, d.id))
	return nil
}

func (a *fakeAllocator) DestroyBuffer(buffer render.Buffer) {
	b := buffer.(*fakeBuffer)
	if !a.live[b] {
		panic(fmt.Sprintf("double destroy of buffer %d", b.id))
	}
	delete(a.live, b)
}

func (a *fakeAllocator) liveCount() int { return len(a.live) }

// fakeCommandBuffer records the calls made by Model.Bind and Model.Draw.
type fakeCommandBuffer struct {
	render.CommandBuffer
	calls []string
}

func (c *fakeCommandBuffer) BindVertexBuffers(buffers ...render.Buffer) {
	c.calls = append(c.calls, fmt.Sprintf("bindVertexBuffers(%d)", buffers[0].(*fakeBuffer).id))
}

func (c *fakeCommandBuffer) BindIndexBuffer(buffer render.Buffer) {
	c.calls = append(c.calls, fmt.Sprintf("bindIndexBuffer(%d)", buffer.(*fakeBuffer).id))
}

func (c *fakeCommandBuffer) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	c.calls = append(c.calls, fmt.Sprintf("draw(%d,%d)", vertexCount, instanceCount))
}

func (c *fakeCommandBuffer) DrawIndexed(indexCount, instanceCount, firstIndex uint32, vertexOffset int32, firstInstance uint32) {
	c.calls = append(c.calls, fmt.Sprintf("drawIndexed(%d,%d)", indexCount, instanceCount))
}

type fakeKeys map[int]bool

func (k fakeKeys) IsKeyPressed(key int) bool { return k[key] }
