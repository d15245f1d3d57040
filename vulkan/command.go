package vulkan

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"

	"vkrender/render"
)

type commandBuffer struct {
	handle vk.CommandBuffer
}

var _ render.CommandBuffer = (*commandBuffer)(nil)

func (d *Device) AllocateCommandBuffers(count int) ([]render.CommandBuffer, error) {
	allocInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		Level:              vk.CommandBufferLevelPrimary,
		CommandPool:        d.commandPool,
		CommandBufferCount: uint32(count),
	}
	handles := make([]vk.CommandBuffer, count)
	if err := newError("allocate command buffers", vk.AllocateCommandBuffers(d.handle, &allocInfo, handles)); err != nil {
		return nil, err
	}
	buffers := make([]render.CommandBuffer, count)
	for i, h := range handles {
		buffers[i] = &commandBuffer{handle: h}
	}
	return buffers, nil
}

func (d *Device) FreeCommandBuffers(buffers []render.CommandBuffer) {
	if len(buffers) == 0 {
		return
	}
	handles := make([]vk.CommandBuffer, len(buffers))
	for i, b := range buffers {
		handles[i] = b.(*commandBuffer).handle
	}
	vk.FreeCommandBuffers(d.handle, d.commandPool, uint32(len(handles)), handles)
}

func (c *commandBuffer) Begin() error {
	if err := newError("reset command buffer", vk.ResetCommandBuffer(c.handle, 0)); err != nil {
		return err
	}
	return newError("begin command buffer", vk.BeginCommandBuffer(c.handle, &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
	}))
}

func (c *commandBuffer) End() error {
	return newError("end command buffer", vk.EndCommandBuffer(c.handle))
}

func (c *commandBuffer) BeginRenderPass(pass render.RenderPass, fb render.Framebuffer, area render.Extent, clear render.ClearValues) {
	clearValues := []vk.ClearValue{
		vk.NewClearValue(clear.Color[:]),
		vk.NewClearDepthStencil(clear.Depth, clear.Stencil),
	}
	vk.CmdBeginRenderPass(c.handle, &vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  pass.(vk.RenderPass),
		Framebuffer: fb.(vk.Framebuffer),
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{X: 0, Y: 0},
			Extent: toVkExtent(area),
		},
		ClearValueCount: uint32(len(clearValues)),
		PClearValues:    clearValues,
	}, vk.SubpassContentsInline)
}

func (c *commandBuffer) EndRenderPass() {
	vk.CmdEndRenderPass(c.handle)
}

func (c *commandBuffer) SetViewport(area render.Extent) {
	vk.CmdSetViewport(c.handle, 0, 1, []vk.Viewport{{
		Width:    float32(area.Width),
		Height:   float32(area.Height),
		MinDepth: 0,
		MaxDepth: 1,
	}})
	vk.CmdSetScissor(c.handle, 0, 1, []vk.Rect2D{{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: toVkExtent(area),
	}})
}

func (c *commandBuffer) BindPipeline(p render.Pipeline) {
	vk.CmdBindPipeline(c.handle, vk.PipelineBindPointGraphics, p.(vk.Pipeline))
}

func (c *commandBuffer) PushConstants(layout render.PipelineLayout, stages render.ShaderStage, offset uint32, data []byte) {
	if len(data) == 0 {
		return
	}
	vk.CmdPushConstants(c.handle, layout.(vk.PipelineLayout), vk.ShaderStageFlags(stages),
		offset, uint32(len(data)), unsafe.Pointer(&data[0]))
}

func (c *commandBuffer) BindVertexBuffers(buffers ...render.Buffer) {
	handles := make([]vk.Buffer, len(buffers))
	offsets := make([]vk.DeviceSize, len(buffers))
	for i, b := range buffers {
		handles[i] = b.(*buffer).handle
	}
	vk.CmdBindVertexBuffers(c.handle, 0, uint32(len(handles)), handles, offsets)
}

func (c *commandBuffer) BindIndexBuffer(b render.Buffer) {
	vk.CmdBindIndexBuffer(c.handle, b.(*buffer).handle, 0, vk.IndexTypeUint32)
}

func (c *commandBuffer) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	vk.CmdDraw(c.handle, vertexCount, instanceCount, firstVertex, firstInstance)
}

func (c *commandBuffer) DrawIndexed(indexCount, instanceCount, firstIndex uint32, vertexOffset int32, firstInstance uint32) {
	vk.CmdDrawIndexed(c.handle, indexCount, instanceCount, firstIndex, vertexOffset, firstInstance)
}
