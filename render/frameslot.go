package render

import "fmt"

// FrameSlot holds the per-frame-in-flight recording target and the
// primitives that order its submission. Slots are independent of swap images.
type FrameSlot struct {
	CommandBuffer  CommandBuffer
	ImageAvailable Semaphore
	RenderFinished Semaphore
	// InFlight is created signaled so the first wait on a fresh slot returns.
	InFlight Fence
}

func newFrameSlots(device Device, count int) ([]FrameSlot, error) {
	slots := make([]FrameSlot, count)
	for i := range slots {
		var err error
		if slots[i].ImageAvailable, err = device.CreateSemaphore(); err != nil {
			destroyFrameSlots(device, slots)
			return nil, fmt.Errorf("%w: create image-available semaphore %d: %w", ErrResourceCreationFailed, i, err)
		}
		if slots[i].RenderFinished, err = device.CreateSemaphore(); err != nil {
			destroyFrameSlots(device, slots)
			return nil, fmt.Errorf("%w: create render-finished semaphore %d: %w", ErrResourceCreationFailed, i, err)
		}
		if slots[i].InFlight, err = device.CreateFence(true); err != nil {
			destroyFrameSlots(device, slots)
			return nil, fmt.Errorf("%w: create in-flight fence %d: %w", ErrResourceCreationFailed, i, err)
		}
	}

	if err := allocateSlotCommandBuffers(device, slots); err != nil {
		destroyFrameSlots(device, slots)
		return nil, err
	}
	return slots, nil
}

func allocateSlotCommandBuffers(device Device, slots []FrameSlot) error {
	buffers, err := device.AllocateCommandBuffers(len(slots))
	if err != nil {
		return fmt.Errorf("%w: allocate command buffers: %w", ErrResourceCreationFailed, err)
	}
	for i := range slots {
		slots[i].CommandBuffer = buffers[i]
	}
	return nil
}

func freeSlotCommandBuffers(device Device, slots []FrameSlot) {
	buffers := make([]CommandBuffer, 0, len(slots))
	for i := range slots {
		if slots[i].CommandBuffer != nil {
			buffers = append(buffers, slots[i].CommandBuffer)
			slots[i].CommandBuffer = nil
		}
	}
	if len(buffers) > 0 {
		device.FreeCommandBuffers(buffers)
	}
}

func destroyFrameSlots(device Device, slots []FrameSlot) {
	freeSlotCommandBuffers(device, slots)
	for i := range slots {
		if slots[i].InFlight != nil {
			device.DestroyFence(slots[i].InFlight)
		}
		if slots[i].RenderFinished != nil {
			device.DestroySemaphore(slots[i].RenderFinished)
		}
		if slots[i].ImageAvailable != nil {
			device.DestroySemaphore(slots[i].ImageAvailable)
		}
		slots[i] = FrameSlot{}
	}
}
