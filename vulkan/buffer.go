package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"

	"vkrender/render"
)

// buffer is a VkBuffer bound to a dedicated allocation.
type buffer struct {
	handle vk.Buffer
	memory vk.DeviceMemory
	size   uint64
}

func (d *Device) CreateBuffer(size uint64, usage render.BufferUsage, properties render.MemoryProperty) (render.Buffer, error) {
	createInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(size),
		Usage:       vk.BufferUsageFlags(usage),
		SharingMode: vk.SharingModeExclusive,
	}
	b := &buffer{size: size}
	if err := newError("create buffer", vk.CreateBuffer(d.handle, &createInfo, nil, &b.handle)); err != nil {
		return nil, fmt.Errorf("%w: %w", render.ErrResourceCreationFailed, err)
	}

	var req vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(d.handle, b.handle, &req)
	req.Deref()
	memory, err := d.allocate(req, properties)
	if err != nil {
		vk.DestroyBuffer(d.handle, b.handle, nil)
		return nil, err
	}
	b.memory = memory
	if err := newError("bind buffer memory", vk.BindBufferMemory(d.handle, b.handle, memory, 0)); err != nil {
		d.DestroyBuffer(b)
		return nil, fmt.Errorf("%w: %w", render.ErrResourceCreationFailed, err)
	}
	return b, nil
}

func (d *Device) WriteBuffer(buf render.Buffer, data []byte) error {
	b := buf.(*buffer)
	if uint64(len(data)) > b.size {
		panic(fmt.Sprintf("vulkan: writing %d bytes into a %d byte buffer", len(data), b.size))
	}
	if len(data) == 0 {
		return nil
	}
	var ptr unsafe.Pointer
	if err := newError("map memory", vk.MapMemory(d.handle, b.memory, 0, vk.DeviceSize(len(data)), 0, &ptr)); err != nil {
		return err
	}
	vk.Memcopy(ptr, data)
	vk.UnmapMemory(d.handle, b.memory)
	return nil
}

func (d *Device) CopyBuffer(src, dst render.Buffer, size uint64) error {
	return d.singleTimeCommands(func(cmd vk.CommandBuffer) {
		vk.CmdCopyBuffer(cmd, src.(*buffer).handle, dst.(*buffer).handle, 1,
			[]vk.BufferCopy{{Size: vk.DeviceSize(size)}})
	})
}

func (d *Device) DestroyBuffer(buf render.Buffer) {
	b, ok := buf.(*buffer)
	if !ok || b == nil {
		return
	}
	if b.handle != vk.NullBuffer {
		vk.DestroyBuffer(d.handle, b.handle, nil)
		b.handle = vk.NullBuffer
	}
	if b.memory != vk.NullDeviceMemory {
		vk.FreeMemory(d.handle, b.memory, nil)
		b.memory = vk.NullDeviceMemory
	}
}

// singleTimeCommands records fn into a throwaway command buffer, submits it
// and waits for the graphics queue to drain.
func (d *Device) singleTimeCommands(fn func(cmd vk.CommandBuffer)) error {
	allocInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		Level:              vk.CommandBufferLevelPrimary,
		CommandPool:        d.commandPool,
		CommandBufferCount: 1,
	}
	cmds := make([]vk.CommandBuffer, 1)
	if err := newError("allocate command buffer", vk.AllocateCommandBuffers(d.handle, &allocInfo, cmds)); err != nil {
		return err
	}
	defer vk.FreeCommandBuffers(d.handle, d.commandPool, 1, cmds)

	beginInfo := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	}
	if err := newError("begin command buffer", vk.BeginCommandBuffer(cmds[0], &beginInfo)); err != nil {
		return err
	}
	fn(cmds[0])
	if err := newError("end command buffer", vk.EndCommandBuffer(cmds[0])); err != nil {
		return err
	}

	submit := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    cmds,
	}
	if err := newError("queue submit", vk.QueueSubmit(d.graphicsQueue, 1, []vk.SubmitInfo{submit}, vk.NullFence)); err != nil {
		return err
	}
	return newError("queue wait idle", vk.QueueWaitIdle(d.graphicsQueue))
}
