package render

import (
	"fmt"

	"vkrender/log"
)

// Renderer sequences frames one at a time over a FrameChain. It owns the
// FrameSlot ring, decides when the chain is rebuilt and keeps registered
// pipelines compatible with the chain's render pass.
type Renderer struct {
	surface Surface
	device  Device
	cfg     Config
	logger  log.Logger

	chain     *FrameChain
	slots     []FrameSlot
	pipelines []*PipelineBinding

	imageIndex   uint32
	frameIndex   int
	frameStarted bool
	closed       bool

	stats Stats
}

// NewRenderer creates the frame slots and builds the first FrameChain.
func NewRenderer(surface Surface, device Device, cfg Config) (*Renderer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &Renderer{
		surface: surface,
		device:  device,
		cfg:     cfg,
		logger:  log.New("renderer"),
	}

	slots, err := newFrameSlots(device, cfg.MaxFramesInFlight)
	if err != nil {
		return nil, err
	}
	r.slots = slots

	if err := r.rebuild(); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

// AttachPipeline registers p with the renderer, building it against the
// current chain. The renderer owns p from now on and destroys it on Close.
func (r *Renderer) AttachPipeline(p *PipelineBinding) error {
	if err := p.Build(r.device, r.chain.RenderPass(), r.chain.Format()); err != nil {
		p.Destroy(r.device)
		return err
	}
	r.pipelines = append(r.pipelines, p)
	return nil
}

// BeginFrame acquires the next swap image and starts recording the current
// slot's command buffer. A nil buffer with a nil error means the surface was
// stale: the chain has been rebuilt and the caller must skip this iteration.
func (r *Renderer) BeginFrame() (CommandBuffer, error) {
	if r.frameStarted {
		panic("render: BeginFrame called while a frame is already in progress")
	}
	if r.chain == nil {
		panic("render: BeginFrame called without a frame chain")
	}

	slot := &r.slots[r.frameIndex]
	imageIndex, status, err := r.chain.AcquireNextImage(slot)
	if err != nil {
		r.logger.Errorf("acquire failed: %v", err)
		return nil, err
	}
	if status == StatusStale {
		r.stats.FramesSkipped++
		return nil, r.rebuild()
	}

	if err := slot.CommandBuffer.Begin(); err != nil {
		return nil, fmt.Errorf("%w: begin command buffer: %w", ErrRecordFailed, err)
	}
	r.imageIndex = imageIndex
	r.frameStarted = true
	r.stats.FramesBegun++
	return slot.CommandBuffer, nil
}

// EndFrame finishes recording, submits and presents the frame. A stale
// surface or an observed resize rebuilds the chain after presentation.
func (r *Renderer) EndFrame() error {
	if !r.frameStarted {
		panic("render: EndFrame called while no frame is in progress")
	}
	defer func() {
		r.frameStarted = false
		r.frameIndex = (r.frameIndex + 1) % len(r.slots)
	}()

	slot := &r.slots[r.frameIndex]
	if err := slot.CommandBuffer.End(); err != nil {
		return fmt.Errorf("%w: end command buffer: %w", ErrRecordFailed, err)
	}

	status, err := r.chain.Submit(slot.CommandBuffer, slot, r.imageIndex)
	if err != nil {
		r.logger.Errorf("submit failed: %v", err)
		return err
	}
	r.stats.FramesPresented++

	if status == StatusStale || r.surface.WasResized() {
		r.surface.ResetResized()
		return r.rebuild()
	}
	return nil
}

// BeginRenderPass starts the chain's render pass on the acquired image and
// sets a viewport and scissor covering it.
func (r *Renderer) BeginRenderPass(cmd CommandBuffer) {
	r.checkRecording(cmd, "BeginRenderPass")

	extent := r.chain.Extent()
	cmd.BeginRenderPass(r.chain.RenderPass(), r.chain.Framebuffer(r.imageIndex), extent, ClearValues{
		Color: r.cfg.ClearColor,
		Depth: 1,
	})
	cmd.SetViewport(extent)
}

// EndRenderPass closes the render pass opened by BeginRenderPass.
func (r *Renderer) EndRenderPass(cmd CommandBuffer) {
	r.checkRecording(cmd, "EndRenderPass")
	cmd.EndRenderPass()
}

func (r *Renderer) checkRecording(cmd CommandBuffer, op string) {
	if !r.frameStarted {
		panic(fmt.Sprintf("render: %s called while no frame is in progress", op))
	}
	if cmd != r.slots[r.frameIndex].CommandBuffer {
		panic(fmt.Sprintf("render: %s called with a command buffer from a different frame", op))
	}
}

// rebuild replaces the chain: it waits for a drawable surface and an idle
// device, builds the new chain from the old one and then releases the old one.
func (r *Renderer) rebuild() error {
	waitForExtent(r.surface)
	if err := r.device.WaitIdle(); err != nil {
		return fmt.Errorf("%w: wait idle before rebuild: %w", ErrDeviceLost, err)
	}

	old := r.chain
	chain, err := BuildFrameChain(r.device, r.surface, old, r.cfg)
	if err != nil {
		r.logger.Errorf("chain build failed: %v", err)
		return err
	}
	r.chain = chain

	if old != nil {
		r.stats.Rebuilds++
		sameFormat := old.CompareFormats(chain)
		oldCount := old.ImageCount()
		oldFormat := old.Format()
		old.Destroy()

		if !sameFormat {
			r.logger.Errorf("format changed across rebuild: %s -> %s", oldFormat, chain.Format())
			return fmt.Errorf("%w: %s -> %s", ErrFormatChanged, oldFormat, chain.Format())
		}
		if chain.ImageCount() != oldCount {
			r.logger.Debugf("swap image count changed %d -> %d; reallocating command buffers", oldCount, chain.ImageCount())
			freeSlotCommandBuffers(r.device, r.slots)
			if err := allocateSlotCommandBuffers(r.device, r.slots); err != nil {
				return err
			}
		}
		r.logger.Infof("rebuilt frame chain: %s, %d images", chain.Extent(), chain.ImageCount())
	}

	for _, p := range r.pipelines {
		if p.Built() && p.Format() == chain.Format() {
			continue
		}
		if err := p.Build(r.device, chain.RenderPass(), chain.Format()); err != nil {
			return err
		}
	}

	r.stats.Extent = chain.Extent()
	r.stats.ImageCount = chain.ImageCount()
	r.stats.PresentMode = chain.PresentMode()
	return nil
}

// IsFrameInProgress reports whether BeginFrame has returned a buffer that has
// not yet been passed to EndFrame.
func (r *Renderer) IsFrameInProgress() bool { return r.frameStarted }

// CurrentCommandBuffer returns the buffer of the frame in progress.
func (r *Renderer) CurrentCommandBuffer() CommandBuffer {
	if !r.frameStarted {
		panic("render: cannot get command buffer when no frame is in progress")
	}
	return r.slots[r.frameIndex].CommandBuffer
}

// FrameIndex returns the slot index of the frame in progress.
func (r *Renderer) FrameIndex() int {
	if !r.frameStarted {
		panic("render: cannot get frame index when no frame is in progress")
	}
	return r.frameIndex
}

func (r *Renderer) Extent() Extent { return r.chain.Extent() }

func (r *Renderer) AspectRatio() float32 { return r.chain.AspectRatio() }

func (r *Renderer) RenderPass() RenderPass { return r.chain.RenderPass() }

func (r *Renderer) Format() SwapchainFormat { return r.chain.Format() }

func (r *Renderer) Stats() Stats { return r.stats }

// WaitIdle blocks until the device has finished all submitted work.
func (r *Renderer) WaitIdle() error {
	if err := r.device.WaitIdle(); err != nil {
		return fmt.Errorf("%w: %w", ErrDeviceLost, err)
	}
	return nil
}

// Close waits for the device and releases pipelines, the chain and the slots.
func (r *Renderer) Close() {
	if r.closed {
		return
	}
	r.closed = true

	if err := r.device.WaitIdle(); err != nil {
		r.logger.Errorf("wait idle on close: %v", err)
	}
	for _, p := range r.pipelines {
		p.Destroy(r.device)
	}
	r.pipelines = nil
	if r.chain != nil {
		r.chain.Destroy()
		r.chain = nil
	}
	destroyFrameSlots(r.device, r.slots)
	r.slots = nil
}
