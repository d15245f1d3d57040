package vulkan

import (
	"fmt"
	"time"

	vk "github.com/vulkan-go/vulkan"

	"vkrender/render"
)

func (d *Device) CreateSemaphore() (render.Semaphore, error) {
	var semaphore vk.Semaphore
	res := vk.CreateSemaphore(d.handle, &vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}, nil, &semaphore)
	if err := newError("create semaphore", res); err != nil {
		return nil, fmt.Errorf("%w: %w", render.ErrResourceCreationFailed, err)
	}
	return semaphore, nil
}

func (d *Device) DestroySemaphore(s render.Semaphore) {
	if semaphore, ok := s.(vk.Semaphore); ok && semaphore != vk.NullSemaphore {
		vk.DestroySemaphore(d.handle, semaphore, nil)
	}
}

func (d *Device) CreateFence(signaled bool) (render.Fence, error) {
	var flags vk.FenceCreateFlags
	if signaled {
		flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}
	var fence vk.Fence
	res := vk.CreateFence(d.handle, &vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
		Flags: flags,
	}, nil, &fence)
	if err := newError("create fence", res); err != nil {
		return nil, fmt.Errorf("%w: %w", render.ErrResourceCreationFailed, err)
	}
	return fence, nil
}

func (d *Device) DestroyFence(f render.Fence) {
	if fence, ok := f.(vk.Fence); ok && fence != vk.NullFence {
		vk.DestroyFence(d.handle, fence, nil)
	}
}

func toFences(in []render.Fence) []vk.Fence {
	out := make([]vk.Fence, len(in))
	for i, f := range in {
		out[i] = f.(vk.Fence)
	}
	return out
}

// WaitForFences waits for all fences. A timeout is reported as an error.
func (d *Device) WaitForFences(fences []render.Fence, timeout time.Duration) error {
	if len(fences) == 0 {
		return nil
	}
	res := vk.WaitForFences(d.handle, uint32(len(fences)), toFences(fences), vk.True, timeoutNanos(timeout))
	if res == vk.Timeout {
		return fmt.Errorf("fence wait timed out after %s", timeout)
	}
	return newError("wait for fences", res)
}

func (d *Device) ResetFences(fences ...render.Fence) error {
	if len(fences) == 0 {
		return nil
	}
	return newError("reset fences", vk.ResetFences(d.handle, uint32(len(fences)), toFences(fences)))
}

func (d *Device) Submit(cmd render.CommandBuffer, wait, signal render.Semaphore, fence render.Fence) error {
	submit := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vk.Semaphore{wait.(vk.Semaphore)},
		PWaitDstStageMask:    []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{cmd.(*commandBuffer).handle},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{signal.(vk.Semaphore)},
	}
	return newError("queue submit", vk.QueueSubmit(d.graphicsQueue, 1, []vk.SubmitInfo{submit}, fence.(vk.Fence)))
}
