package render

import (
	"errors"
	"fmt"
	"time"
)

// fakeHandle is the opaque handle type handed out by fakeDevice.
type fakeHandle struct {
	id   int
	kind string
}

func (h *fakeHandle) String() string { return fmt.Sprintf("%s#%d", h.kind, h.id) }

type fakeSurface struct {
	extent  Extent
	pending []Extent
	resized bool
	closed  bool
	waits   int
}

func newFakeSurface(width, height uint32) *fakeSurface {
	return &fakeSurface{extent: Extent{Width: width, Height: height}}
}

func (s *fakeSurface) Extent() Extent    { return s.extent }
func (s *fakeSurface) ShouldClose() bool { return s.closed }
func (s *fakeSurface) WasResized() bool  { return s.resized }
func (s *fakeSurface) ResetResized()     { s.resized = false }

func (s *fakeSurface) WaitEvents() {
	s.waits++
	if s.waits > 100 {
		panic("fakeSurface: WaitEvents called too often; surface never becomes drawable")
	}
	if len(s.pending) > 0 {
		s.extent = s.pending[0]
		s.pending = s.pending[1:]
	}
}

// resize simulates a framebuffer resize callback.
func (s *fakeSurface) resize(width, height uint32, later ...Extent) {
	s.extent = Extent{Width: width, Height: height}
	s.pending = later
	s.resized = true
}

type acquireResult struct {
	index  uint32
	status Status
	err    error
}

type presentResult struct {
	status Status
	err    error
}

type fakeSwapchain struct {
	device    *fakeDevice
	info      SwapchainInfo
	images    []Image
	next      uint32
	destroyed bool
	presented []uint32
}

func (s *fakeSwapchain) Images() []Image { return s.images }

func (s *fakeSwapchain) AcquireNextImage(signal Semaphore, _ time.Duration) (uint32, Status, error) {
	s.device.record("acquire")
	s.device.mustBeLive(signal)
	if len(s.device.acquireQueue) > 0 {
		res := s.device.acquireQueue[0]
		s.device.acquireQueue = s.device.acquireQueue[1:]
		return res.index, res.status, res.err
	}
	idx := s.next
	s.next = (s.next + 1) % uint32(len(s.images))
	return idx, StatusOK, nil
}

func (s *fakeSwapchain) Present(imageIndex uint32, wait Semaphore) (Status, error) {
	s.device.record("present")
	s.device.mustBeLive(wait)
	s.presented = append(s.presented, imageIndex)
	if len(s.device.presentQueue) > 0 {
		res := s.device.presentQueue[0]
		s.device.presentQueue = s.device.presentQueue[1:]
		return res.status, res.err
	}
	return StatusOK, nil
}

type fakeCommandBuffer struct {
	*fakeHandle
	recording bool
	begins    int
	calls     []string
}

func (c *fakeCommandBuffer) Begin() error {
	if c.recording {
		return errors.New("command buffer is already recording")
	}
	c.recording = true
	c.begins++
	c.calls = nil
	return nil
}

func (c *fakeCommandBuffer) End() error {
	if !c.recording {
		return errors.New("command buffer is not recording")
	}
	c.recording = false
	return nil
}

func (c *fakeCommandBuffer) BeginRenderPass(RenderPass, Framebuffer, Extent, ClearValues) {
	c.calls = append(c.calls, "beginRenderPass")
}
func (c *fakeCommandBuffer) EndRenderPass()        { c.calls = append(c.calls, "endRenderPass") }
func (c *fakeCommandBuffer) SetViewport(Extent)    { c.calls = append(c.calls, "setViewport") }
func (c *fakeCommandBuffer) BindPipeline(Pipeline) { c.calls = append(c.calls, "bindPipeline") }
func (c *fakeCommandBuffer) PushConstants(PipelineLayout, ShaderStage, uint32, []byte) {
	c.calls = append(c.calls, "pushConstants")
}
func (c *fakeCommandBuffer) BindVertexBuffers(...Buffer) {
	c.calls = append(c.calls, "bindVertexBuffers")
}
func (c *fakeCommandBuffer) BindIndexBuffer(Buffer) { c.calls = append(c.calls, "bindIndexBuffer") }
func (c *fakeCommandBuffer) Draw(uint32, uint32, uint32, uint32) {
	c.calls = append(c.calls, "draw")
}
func (c *fakeCommandBuffer) DrawIndexed(uint32, uint32, uint32, int32, uint32) {
	c.calls = append(c.calls, "drawIndexed")
}

// fakeDevice records every call and tracks live handles so tests can assert
// on ordering and on leaks.
type fakeDevice struct {
	surface *fakeSurface

	formats        []SurfaceFormat
	presentModes   []PresentMode
	minImages      uint32
	maxImages      uint32
	undefinedCurr  bool
	zeroCurrCalls  int
	depthSupported map[Format]bool

	capsErr     error
	pipelineErr error
	submitErr   error
	waitIdleErr error

	acquireQueue []acquireResult
	presentQueue []presentResult

	nextID     int
	live       map[*fakeHandle]bool
	swapchains []*fakeSwapchain
	events     []string

	allocCalls     int
	pipelinesBuilt int
	lastPipeline   PipelineConfig
	waitIdleCalls  int
	submitted      []*fakeCommandBuffer
	fenceSignaled  map[*fakeHandle]bool
}

func newFakeDevice(surface *fakeSurface) *fakeDevice {
	return &fakeDevice{
		surface:      surface,
		formats:      []SurfaceFormat{{Format: FormatB8G8R8A8Unorm}, {Format: FormatB8G8R8A8Srgb, ColorSpace: ColorSpaceSrgbNonlinear}},
		presentModes: []PresentMode{PresentModeFifo, PresentModeMailbox},
		minImages:    2,
		maxImages:    3,
		depthSupported: map[Format]bool{
			FormatD32Sfloat:      true,
			FormatD24UnormS8Uint: true,
		},
		live:          map[*fakeHandle]bool{},
		fenceSignaled: map[*fakeHandle]bool{},
	}
}

func (d *fakeDevice) record(event string) { d.events = append(d.events, event) }

func (d *fakeDevice) newHandle(kind string) *fakeHandle {
	d.nextID++
	h := &fakeHandle{id: d.nextID, kind: kind}
	d.live[h] = true
	return h
}

func (d *fakeDevice) mustBeLive(h interface{}) *fakeHandle {
	var fh *fakeHandle
	switch v := h.(type) {
	case *fakeHandle:
		fh = v
	case *fakeCommandBuffer:
		fh = v.fakeHandle
	default:
		panic(fmt.Sprintf("fakeDevice: foreign handle %T", h))
	}
	if !d.live[fh] {
		panic(fmt.Sprintf("fakeDevice: %s used after destruction", fh))
	}
	return fh
}

func (d *fakeDevice) destroy(h interface{}, kind string) {
	fh := d.mustBeLive(h)
	if fh.kind != kind {
		panic(fmt.Sprintf("fakeDevice: destroying %s as %s", fh, kind))
	}
	delete(d.live, fh)
	d.record("destroy " + kind)
}

// liveKinds summarizes the handles that have not been destroyed.
func (d *fakeDevice) liveKinds() map[string]int {
	kinds := map[string]int{}
	for h := range d.live {
		kinds[h.kind]++
	}
	return kinds
}

func (d *fakeDevice) count(event string) int {
	n := 0
	for _, e := range d.events {
		if e == event {
			n++
		}
	}
	return n
}

func (d *fakeDevice) SurfaceCapabilities() (SurfaceCapabilities, error) {
	d.record("caps")
	if d.capsErr != nil {
		return SurfaceCapabilities{}, d.capsErr
	}
	current := d.surface.extent
	if d.undefinedCurr {
		current = Extent{Width: ExtentUndefined, Height: ExtentUndefined}
	}
	if d.zeroCurrCalls > 0 {
		d.zeroCurrCalls--
		current = Extent{}
	}
	return SurfaceCapabilities{
		MinImageCount:  d.minImages,
		MaxImageCount:  d.maxImages,
		CurrentExtent:  current,
		MinImageExtent: Extent{Width: 1, Height: 1},
		MaxImageExtent: Extent{Width: 4096, Height: 4096},
		Formats:        d.formats,
		PresentModes:   d.presentModes,
	}, nil
}

func (d *fakeDevice) CreateSwapchain(info SwapchainInfo) (Swapchain, error) {
	d.record("createSwapchain")
	if info.Old != nil && info.Old.(*fakeSwapchain).destroyed {
		panic("fakeDevice: old swapchain handed over after destruction")
	}
	sc := &fakeSwapchain{device: d, info: info}
	for i := uint32(0); i < info.MinImageCount; i++ {
		sc.images = append(sc.images, &fakeHandle{id: -1, kind: "swapImage"})
	}
	d.swapchains = append(d.swapchains, sc)
	return sc, nil
}

func (d *fakeDevice) DestroySwapchain(swapchain Swapchain) {
	sc := swapchain.(*fakeSwapchain)
	if sc.destroyed {
		panic("fakeDevice: swapchain destroyed twice")
	}
	sc.destroyed = true
	d.record("destroy swapchain")
}

func (d *fakeDevice) SupportsDepthFormat(f Format) bool { return d.depthSupported[f] }

func (d *fakeDevice) CreateImage(ImageInfo) (Image, error) { return d.newHandle("image"), nil }
func (d *fakeDevice) DestroyImage(image Image)             { d.destroy(image, "image") }

func (d *fakeDevice) CreateImageView(Image, Format, Aspect) (ImageView, error) {
	return d.newHandle("imageView"), nil
}
func (d *fakeDevice) DestroyImageView(view ImageView) { d.destroy(view, "imageView") }

func (d *fakeDevice) CreateRenderPass(Format, Format) (RenderPass, error) {
	return d.newHandle("renderPass"), nil
}
func (d *fakeDevice) DestroyRenderPass(pass RenderPass) { d.destroy(pass, "renderPass") }

func (d *fakeDevice) CreateFramebuffer(pass RenderPass, attachments []ImageView, _ Extent) (Framebuffer, error) {
	d.mustBeLive(pass)
	for _, a := range attachments {
		d.mustBeLive(a)
	}
	return d.newHandle("framebuffer"), nil
}
func (d *fakeDevice) DestroyFramebuffer(fb Framebuffer) { d.destroy(fb, "framebuffer") }

func (d *fakeDevice) CreateBuffer(uint64, BufferUsage, MemoryProperty) (Buffer, error) {
	return d.newHandle("buffer"), nil
}
func (d *fakeDevice) WriteBuffer(b Buffer, _ []byte) error { d.mustBeLive(b); return nil }
func (d *fakeDevice) CopyBuffer(src, dst Buffer, _ uint64) error {
	d.mustBeLive(src)
	d.mustBeLive(dst)
	return nil
}
func (d *fakeDevice) DestroyBuffer(b Buffer) { d.destroy(b, "buffer") }

func (d *fakeDevice) AllocateCommandBuffers(count int) ([]CommandBuffer, error) {
	d.allocCalls++
	d.record("allocateCommandBuffers")
	buffers := make([]CommandBuffer, count)
	for i := range buffers {
		buffers[i] = &fakeCommandBuffer{fakeHandle: d.newHandle("commandBuffer")}
	}
	return buffers, nil
}

func (d *fakeDevice) FreeCommandBuffers(buffers []CommandBuffer) {
	for _, b := range buffers {
		d.destroy(b, "commandBuffer")
	}
}

func (d *fakeDevice) CreateSemaphore() (Semaphore, error) { return d.newHandle("semaphore"), nil }
func (d *fakeDevice) DestroySemaphore(s Semaphore)        { d.destroy(s, "semaphore") }

func (d *fakeDevice) CreateFence(signaled bool) (Fence, error) {
	h := d.newHandle("fence")
	d.fenceSignaled[h] = signaled
	return h, nil
}
func (d *fakeDevice) DestroyFence(f Fence) { d.destroy(f, "fence") }

func (d *fakeDevice) WaitForFences(fences []Fence, _ time.Duration) error {
	for _, f := range fences {
		h := d.mustBeLive(f)
		if !d.fenceSignaled[h] {
			panic(fmt.Sprintf("fakeDevice: waiting on unsignaled %s would block forever", h))
		}
		d.record("waitFence " + h.String())
	}
	return nil
}

func (d *fakeDevice) ResetFences(fences ...Fence) error {
	for _, f := range fences {
		h := d.mustBeLive(f)
		d.fenceSignaled[h] = false
		d.record("resetFence " + h.String())
	}
	return nil
}

// Submit completes the work immediately: the fence is signaled on return.
func (d *fakeDevice) Submit(cmd CommandBuffer, wait, signal Semaphore, fence Fence) error {
	d.record("submit")
	if d.submitErr != nil {
		return d.submitErr
	}
	cb := cmd.(*fakeCommandBuffer)
	d.mustBeLive(cb)
	d.mustBeLive(wait)
	d.mustBeLive(signal)
	if cb.recording {
		return errors.New("command buffer submitted while recording")
	}
	d.submitted = append(d.submitted, cb)
	d.fenceSignaled[d.mustBeLive(fence)] = true
	return nil
}

func (d *fakeDevice) WaitIdle() error {
	d.waitIdleCalls++
	d.record("waitIdle")
	return d.waitIdleErr
}

func (d *fakeDevice) CreateShaderModule([]uint32) (ShaderModule, error) {
	return d.newHandle("shaderModule"), nil
}
func (d *fakeDevice) DestroyShaderModule(m ShaderModule) { d.destroy(m, "shaderModule") }

func (d *fakeDevice) CreatePipelineLayout([]PushConstantRange) (PipelineLayout, error) {
	return d.newHandle("pipelineLayout"), nil
}
func (d *fakeDevice) DestroyPipelineLayout(l PipelineLayout) { d.destroy(l, "pipelineLayout") }

func (d *fakeDevice) CreateGraphicsPipeline(config PipelineConfig) (Pipeline, error) {
	d.record("createPipeline")
	if d.pipelineErr != nil {
		return nil, d.pipelineErr
	}
	d.mustBeLive(config.VertexShader)
	d.mustBeLive(config.FragmentShader)
	d.mustBeLive(config.Layout)
	d.mustBeLive(config.RenderPass)
	d.pipelinesBuilt++
	d.lastPipeline = config
	return d.newHandle("pipeline"), nil
}
func (d *fakeDevice) DestroyPipeline(p Pipeline) { d.destroy(p, "pipeline") }
