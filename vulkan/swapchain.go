package vulkan

import (
	"fmt"
	"time"

	vk "github.com/vulkan-go/vulkan"

	"vkrender/render"
)

type swapchain struct {
	device *Device
	handle vk.Swapchain
	images []render.Image
	format render.SurfaceFormat
	extent render.Extent
}

var _ render.Swapchain = (*swapchain)(nil)

func (d *Device) CreateSwapchain(info render.SwapchainInfo) (render.Swapchain, error) {
	createInfo := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          d.surface,
		MinImageCount:    info.MinImageCount,
		ImageFormat:      vk.Format(info.Format.Format),
		ImageColorSpace:  vk.ColorSpace(info.Format.ColorSpace),
		ImageExtent:      toVkExtent(info.Extent),
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		PreTransform:     d.currentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      vk.PresentMode(info.PresentMode),
		Clipped:          vk.True,
		OldSwapchain:     vk.NullSwapchain,
	}
	if old, ok := info.Old.(*swapchain); ok && old != nil {
		createInfo.OldSwapchain = old.handle
	}
	if d.graphicsFamily != d.presentFamily {
		createInfo.ImageSharingMode = vk.SharingModeConcurrent
		createInfo.QueueFamilyIndexCount = 2
		createInfo.PQueueFamilyIndices = []uint32{d.graphicsFamily, d.presentFamily}
	} else {
		createInfo.ImageSharingMode = vk.SharingModeExclusive
	}

	var handle vk.Swapchain
	if err := newError("create swapchain", vk.CreateSwapchain(d.handle, &createInfo, nil, &handle)); err != nil {
		return nil, err
	}

	var count uint32
	vk.GetSwapchainImages(d.handle, handle, &count, nil)
	raw := make([]vk.Image, count)
	if err := newError("get swapchain images", vk.GetSwapchainImages(d.handle, handle, &count, raw)); err != nil {
		vk.DestroySwapchain(d.handle, handle, nil)
		return nil, err
	}
	images := make([]render.Image, len(raw))
	for i, img := range raw {
		images[i] = img
	}

	logger.Debugf("swapchain created: %d images, %s, %s, %s",
		len(images), info.Extent, info.Format.Format, info.PresentMode)
	return &swapchain{
		device: d,
		handle: handle,
		images: images,
		format: info.Format,
		extent: info.Extent,
	}, nil
}

func (d *Device) DestroySwapchain(sc render.Swapchain) {
	s, ok := sc.(*swapchain)
	if !ok || s == nil || s.handle == vk.NullSwapchain {
		return
	}
	vk.DestroySwapchain(d.handle, s.handle, nil)
	s.handle = vk.NullSwapchain
	s.images = nil
}

func (s *swapchain) Images() []render.Image { return s.images }

func (s *swapchain) AcquireNextImage(signal render.Semaphore, timeout time.Duration) (uint32, render.Status, error) {
	var index uint32
	res := vk.AcquireNextImage(s.device.handle, s.handle, timeoutNanos(timeout),
		signal.(vk.Semaphore), vk.NullFence, &index)
	switch res {
	case vk.Success:
		return index, render.StatusOK, nil
	case vk.Suboptimal:
		return index, render.StatusSuboptimal, nil
	case vk.ErrorOutOfDate:
		return 0, render.StatusStale, nil
	case vk.Timeout, vk.NotReady:
		return 0, render.StatusOK, fmt.Errorf("acquire timed out after %s", timeout)
	}
	return 0, render.StatusOK, newError("acquire next image", res)
}

func (s *swapchain) Present(imageIndex uint32, wait render.Semaphore) (render.Status, error) {
	res := vk.QueuePresent(s.device.presentQueue, &vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{wait.(vk.Semaphore)},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{s.handle},
		PImageIndices:      []uint32{imageIndex},
	})
	switch res {
	case vk.Success:
		return render.StatusOK, nil
	case vk.Suboptimal:
		return render.StatusSuboptimal, nil
	case vk.ErrorOutOfDate:
		return render.StatusStale, nil
	}
	return render.StatusOK, newError("queue present", res)
}
