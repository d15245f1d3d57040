package render

import "time"

// Opaque backend handles. Only the Device that created a handle inspects it.
type (
	Image          interface{}
	ImageView      interface{}
	RenderPass     interface{}
	Framebuffer    interface{}
	Semaphore      interface{}
	Fence          interface{}
	Buffer         interface{}
	ShaderModule   interface{}
	PipelineLayout interface{}
	Pipeline       interface{}
)

// BufferUsage values match VkBufferUsageFlagBits.
type BufferUsage uint32

const (
	BufferUsageTransferSrc BufferUsage = 0x01
	BufferUsageTransferDst BufferUsage = 0x02
	BufferUsageUniform     BufferUsage = 0x10
	BufferUsageIndex       BufferUsage = 0x40
	BufferUsageVertex      BufferUsage = 0x80
)

// MemoryProperty values match VkMemoryPropertyFlagBits.
type MemoryProperty uint32

const (
	MemoryDeviceLocal  MemoryProperty = 0x01
	MemoryHostVisible  MemoryProperty = 0x02
	MemoryHostCoherent MemoryProperty = 0x04
)

// ImageUsage values match VkImageUsageFlagBits.
type ImageUsage uint32

const (
	ImageUsageColorAttachment        ImageUsage = 0x10
	ImageUsageDepthStencilAttachment ImageUsage = 0x20
)

// Aspect values match VkImageAspectFlagBits.
type Aspect uint32

const (
	AspectColor   Aspect = 0x1
	AspectDepth   Aspect = 0x2
	AspectStencil Aspect = 0x4
)

// ImageInfo describes an image allocation together with its backing memory.
type ImageInfo struct {
	Extent     Extent
	Format     Format
	Usage      ImageUsage
	Properties MemoryProperty
}

// SwapchainInfo is the negotiated description of a swapchain to create.
type SwapchainInfo struct {
	MinImageCount uint32
	Format        SurfaceFormat
	Extent        Extent
	PresentMode   PresentMode
	// Old is handed to the backend so it can recycle presentable images. May be nil.
	Old Swapchain
}

// Surface is the windowing collaborator a FrameChain presents into.
type Surface interface {
	// Extent reports the current drawable size.
	Extent() Extent
	ShouldClose() bool
	// WasResized reports whether a resize was observed since the last ResetResized.
	WasResized() bool
	ResetResized()
	// WaitEvents blocks until at least one window event has been processed.
	WaitEvents()
}

// Swapchain is a backend swapchain owning its presentable images.
type Swapchain interface {
	Images() []Image
	// AcquireNextImage signals the semaphore once the returned image may be written.
	AcquireNextImage(signal Semaphore, timeout time.Duration) (uint32, Status, error)
	// Present queues the image for display once wait is signaled.
	Present(imageIndex uint32, wait Semaphore) (Status, error)
}

// Device is the RenderDevice collaborator: a logical GPU context with a
// single command pool, a graphics queue and a present queue.
type Device interface {
	SurfaceCapabilities() (SurfaceCapabilities, error)
	CreateSwapchain(info SwapchainInfo) (Swapchain, error)
	DestroySwapchain(swapchain Swapchain)

	// SupportsDepthFormat reports whether f can be used as an optimal-tiling depth attachment.
	SupportsDepthFormat(f Format) bool
	CreateImage(info ImageInfo) (Image, error)
	DestroyImage(image Image)
	CreateImageView(image Image, format Format, aspect Aspect) (ImageView, error)
	DestroyImageView(view ImageView)

	// CreateRenderPass builds a single-subpass pass that clears color and depth
	// and leaves the color attachment ready for presentation.
	CreateRenderPass(color, depth Format) (RenderPass, error)
	DestroyRenderPass(pass RenderPass)
	CreateFramebuffer(pass RenderPass, attachments []ImageView, extent Extent) (Framebuffer, error)
	DestroyFramebuffer(framebuffer Framebuffer)

	CreateBuffer(size uint64, usage BufferUsage, properties MemoryProperty) (Buffer, error)
	// WriteBuffer maps host-visible memory, copies data and unmaps it.
	WriteBuffer(buffer Buffer, data []byte) error
	// CopyBuffer records, submits and waits for a one-shot transfer.
	CopyBuffer(src, dst Buffer, size uint64) error
	DestroyBuffer(buffer Buffer)

	AllocateCommandBuffers(count int) ([]CommandBuffer, error)
	FreeCommandBuffers(buffers []CommandBuffer)

	CreateSemaphore() (Semaphore, error)
	DestroySemaphore(semaphore Semaphore)
	CreateFence(signaled bool) (Fence, error)
	DestroyFence(fence Fence)
	WaitForFences(fences []Fence, timeout time.Duration) error
	ResetFences(fences ...Fence) error

	// Submit queues cmd on the graphics queue. Execution waits for wait at the
	// color attachment output stage, then signals signal and fence.
	Submit(cmd CommandBuffer, wait, signal Semaphore, fence Fence) error
	WaitIdle() error

	CreateShaderModule(code []uint32) (ShaderModule, error)
	DestroyShaderModule(module ShaderModule)
	CreatePipelineLayout(pushConstants []PushConstantRange) (PipelineLayout, error)
	DestroyPipelineLayout(layout PipelineLayout)
	CreateGraphicsPipeline(config PipelineConfig) (Pipeline, error)
	DestroyPipeline(pipeline Pipeline)
}

// CommandBuffer records GPU work for one frame.
type CommandBuffer interface {
	// Begin resets the buffer and starts recording.
	Begin() error
	End() error

	BeginRenderPass(pass RenderPass, framebuffer Framebuffer, area Extent, clear ClearValues)
	EndRenderPass()
	// SetViewport sets a viewport and scissor that cover area.
	SetViewport(area Extent)

	BindPipeline(pipeline Pipeline)
	PushConstants(layout PipelineLayout, stages ShaderStage, offset uint32, data []byte)
	BindVertexBuffers(buffers ...Buffer)
	BindIndexBuffer(buffer Buffer)
	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32)
	DrawIndexed(indexCount, instanceCount, firstIndex uint32, vertexOffset int32, firstInstance uint32)
}
