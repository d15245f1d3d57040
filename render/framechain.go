package render

import (
	"fmt"

	"vkrender/log"
)

// SwapImage is one presentable image together with its color view.
type SwapImage struct {
	Image Image
	View  ImageView
}

type depthResource struct {
	image Image
	view  ImageView
}

// FrameChain owns a swapchain and every resource sized or formatted after it:
// swap image views, one depth attachment per image, the render pass and the
// framebuffers. It is rebuilt, never resized in place.
type FrameChain struct {
	device  Device
	surface Surface
	cfg     Config
	logger  log.Logger

	swapchain    Swapchain
	images       []SwapImage
	depth        []depthResource
	renderPass   RenderPass
	framebuffers []Framebuffer

	// imagesInFlight maps a swap image to the fence of the slot that last
	// submitted work targeting it.
	imagesInFlight []Fence

	format      SwapchainFormat
	extent      Extent
	presentMode PresentMode
	destroyed   bool
}

// BuildFrameChain creates a chain for the surface's current drawable size,
// blocking while the surface reports a zero extent. When previous is non-nil
// its swapchain is handed to the backend for image reuse; previous stays
// valid and must be destroyed by the caller once the hand-off is done.
func BuildFrameChain(device Device, surface Surface, previous *FrameChain, cfg Config) (*FrameChain, error) {
	caps, extent, err := waitForDrawable(device, surface)
	if err != nil {
		return nil, err
	}
	surfaceFormat, ok := chooseSurfaceFormat(caps.Formats)
	if !ok {
		return nil, fmt.Errorf("%w: surface reports no formats", ErrSurfaceLost)
	}
	depthFormat, ok := chooseDepthFormat(device, cfg.DepthFormats)
	if !ok {
		return nil, fmt.Errorf("%w: none of the depth formats %v is supported", ErrResourceCreationFailed, cfg.DepthFormats)
	}

	c := &FrameChain{
		device:      device,
		surface:     surface,
		cfg:         cfg,
		logger:      log.New("framechain"),
		format:      SwapchainFormat{Color: surfaceFormat.Format, Depth: depthFormat},
		extent:      extent,
		presentMode: choosePresentMode(caps.PresentModes, cfg.VSync),
	}

	info := SwapchainInfo{
		MinImageCount: chooseImageCount(caps),
		Format:        surfaceFormat,
		Extent:        c.extent,
		PresentMode:   c.presentMode,
	}
	if previous != nil {
		info.Old = previous.swapchain
	}

	if err := c.create(info); err != nil {
		c.release()
		return nil, err
	}

	c.logger.Debugf("built chain: extent %s, %d images, %s, present mode %s", c.extent, len(c.images), c.format, c.presentMode)
	return c, nil
}

// waitForExtent pumps window events until the surface has a non-zero area.
func waitForExtent(surface Surface) Extent {
	extent := surface.Extent()
	for extent.IsZero() {
		surface.WaitEvents()
		extent = surface.Extent()
	}
	return extent
}

// waitForDrawable blocks until both the window and the device agree on a
// non-zero swap extent. The device can still report 0x0 for a window that
// has just been minimized.
func waitForDrawable(device Device, surface Surface) (SurfaceCapabilities, Extent, error) {
	for {
		window := waitForExtent(surface)
		caps, err := device.SurfaceCapabilities()
		if err != nil {
			return caps, Extent{}, fmt.Errorf("%w: query surface capabilities: %w", ErrSurfaceLost, err)
		}
		if extent := chooseExtent(caps, window); !extent.IsZero() {
			return caps, extent, nil
		}
		surface.WaitEvents()
	}
}

func (c *FrameChain) create(info SwapchainInfo) error {
	swapchain, err := c.device.CreateSwapchain(info)
	if err != nil {
		return fmt.Errorf("%w: create swapchain: %w", ErrResourceCreationFailed, err)
	}
	c.swapchain = swapchain

	// Color views
	for i, image := range swapchain.Images() {
		view, err := c.device.CreateImageView(image, c.format.Color, AspectColor)
		if err != nil {
			return fmt.Errorf("%w: create view for swap image %d: %w", ErrResourceCreationFailed, i, err)
		}
		c.images = append(c.images, SwapImage{Image: image, View: view})
	}
	if len(c.images) == 0 {
		return fmt.Errorf("%w: swapchain has no images", ErrResourceCreationFailed)
	}
	c.imagesInFlight = make([]Fence, len(c.images))

	renderPass, err := c.device.CreateRenderPass(c.format.Color, c.format.Depth)
	if err != nil {
		return fmt.Errorf("%w: create render pass: %w", ErrResourceCreationFailed, err)
	}
	c.renderPass = renderPass

	// Depth attachments
	depthAspect := AspectDepth
	if c.format.Depth.HasStencil() {
		depthAspect |= AspectStencil
	}
	for i := range c.images {
		image, err := c.device.CreateImage(ImageInfo{
			Extent:     c.extent,
			Format:     c.format.Depth,
			Usage:      ImageUsageDepthStencilAttachment,
			Properties: MemoryDeviceLocal,
		})
		if err != nil {
			return fmt.Errorf("%w: create depth image %d: %w", ErrResourceCreationFailed, i, err)
		}
		view, err := c.device.CreateImageView(image, c.format.Depth, depthAspect)
		if err != nil {
			c.device.DestroyImage(image)
			return fmt.Errorf("%w: create depth view %d: %w", ErrResourceCreationFailed, i, err)
		}
		c.depth = append(c.depth, depthResource{image: image, view: view})
	}

	// Framebuffers
	for i := range c.images {
		framebuffer, err := c.device.CreateFramebuffer(c.renderPass, []ImageView{c.images[i].View, c.depth[i].view}, c.extent)
		if err != nil {
			return fmt.Errorf("%w: create framebuffer %d: %w", ErrResourceCreationFailed, i, err)
		}
		c.framebuffers = append(c.framebuffers, framebuffer)
	}
	return nil
}

// Extent returns the size of the swap images.
func (c *FrameChain) Extent() Extent { return c.extent }

// AspectRatio returns the width/height ratio of the swap images.
func (c *FrameChain) AspectRatio() float32 { return c.extent.AspectRatio() }

// Format returns the color and depth attachment formats.
func (c *FrameChain) Format() SwapchainFormat { return c.format }

func (c *FrameChain) PresentMode() PresentMode { return c.presentMode }

func (c *FrameChain) ImageCount() int { return len(c.images) }

func (c *FrameChain) RenderPass() RenderPass { return c.renderPass }

func (c *FrameChain) Framebuffer(imageIndex uint32) Framebuffer {
	return c.framebuffers[imageIndex]
}

// CompareFormats reports whether both chains render into the same color and
// depth formats, in which case pipelines built for one remain valid for the other.
func (c *FrameChain) CompareFormats(other *FrameChain) bool {
	return c.format == other.format
}

// AcquireNextImage waits until slot's previous submission has completed and
// then requests the next presentable image, signaling slot.ImageAvailable.
// StatusStale means nothing was acquired and the chain must be rebuilt.
func (c *FrameChain) AcquireNextImage(slot *FrameSlot) (uint32, Status, error) {
	if err := c.device.WaitForFences([]Fence{slot.InFlight}, c.cfg.FenceTimeout); err != nil {
		return 0, StatusOK, fmt.Errorf("%w: wait for frame fence: %w", ErrAcquireFailed, err)
	}

	imageIndex, status, err := c.swapchain.AcquireNextImage(slot.ImageAvailable, c.cfg.FenceTimeout)
	if err != nil {
		return 0, StatusOK, wrapFault(ErrAcquireFailed, err)
	}
	if status == StatusStale {
		return 0, StatusStale, nil
	}
	if int(imageIndex) >= len(c.images) {
		return 0, StatusOK, fmt.Errorf("%w: backend returned image %d of %d", ErrAcquireFailed, imageIndex, len(c.images))
	}
	return imageIndex, status, nil
}

// Submit queues cmd for execution after slot.ImageAvailable, fenced by
// slot.InFlight, and presents imageIndex once slot.RenderFinished is signaled.
// A suboptimal or out-of-date present, or a resize observed on the surface,
// is reported as StatusStale: the frame was still presented.
func (c *FrameChain) Submit(cmd CommandBuffer, slot *FrameSlot, imageIndex uint32) (Status, error) {
	// Another slot may still be rendering into this image.
	if pending := c.imagesInFlight[imageIndex]; pending != nil && pending != slot.InFlight {
		if err := c.device.WaitForFences([]Fence{pending}, c.cfg.FenceTimeout); err != nil {
			return StatusOK, fmt.Errorf("%w: wait for image %d: %w", ErrPresentFailed, imageIndex, err)
		}
	}
	c.imagesInFlight[imageIndex] = slot.InFlight

	if err := c.device.ResetFences(slot.InFlight); err != nil {
		return StatusOK, fmt.Errorf("%w: reset frame fence: %w", ErrPresentFailed, err)
	}
	if err := c.device.Submit(cmd, slot.ImageAvailable, slot.RenderFinished, slot.InFlight); err != nil {
		return StatusOK, fmt.Errorf("%w: submit draw command buffer: %w", ErrPresentFailed, err)
	}

	status, err := c.swapchain.Present(imageIndex, slot.RenderFinished)
	if err != nil {
		return StatusOK, wrapFault(ErrPresentFailed, err)
	}
	if status != StatusOK || c.surface.WasResized() {
		return StatusStale, nil
	}
	return StatusOK, nil
}

// Destroy waits for the device to go idle and releases every resource in
// reverse creation order. It is safe to call more than once.
func (c *FrameChain) Destroy() {
	if c.destroyed {
		return
	}
	if err := c.device.WaitIdle(); err != nil {
		c.logger.Errorf("wait idle before chain teardown: %v", err)
	}
	c.release()
}

func (c *FrameChain) release() {
	for _, framebuffer := range c.framebuffers {
		c.device.DestroyFramebuffer(framebuffer)
	}
	c.framebuffers = nil

	for i := len(c.depth) - 1; i >= 0; i-- {
		c.device.DestroyImageView(c.depth[i].view)
		c.device.DestroyImage(c.depth[i].image)
	}
	c.depth = nil

	if c.renderPass != nil {
		c.device.DestroyRenderPass(c.renderPass)
		c.renderPass = nil
	}

	for i := len(c.images) - 1; i >= 0; i-- {
		c.device.DestroyImageView(c.images[i].View)
	}
	c.images = nil
	c.imagesInFlight = nil

	if c.swapchain != nil {
		c.device.DestroySwapchain(c.swapchain)
		c.swapchain = nil
	}
	c.destroyed = true
}
