package vulkan

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"

	"vkrender/render"
)

func (d *Device) CreateRenderPass(color, depth render.Format) (render.RenderPass, error) {
	colorAttachment := vk.AttachmentDescription{
		Format:         vk.Format(color),
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutPresentSrc,
	}
	depthAttachment := vk.AttachmentDescription{
		Format:         vk.Format(depth),
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpDontCare,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutDepthStencilAttachmentOptimal,
	}
	depthRef := vk.AttachmentReference{
		Attachment: 1,
		Layout:     vk.ImageLayoutDepthStencilAttachmentOptimal,
	}
	subpass := vk.SubpassDescription{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: 1,
		PColorAttachments: []vk.AttachmentReference{{
			Attachment: 0,
			Layout:     vk.ImageLayoutColorAttachmentOptimal,
		}},
		PDepthStencilAttachment: &depthRef,
	}
	// The previous frame's attachment writes must finish before this frame clears.
	dependency := vk.SubpassDependency{
		SrcSubpass:    vk.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit | vk.PipelineStageEarlyFragmentTestsBit),
		DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit | vk.PipelineStageEarlyFragmentTestsBit),
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentWriteBit | vk.AccessDepthStencilAttachmentWriteBit),
	}
	createInfo := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: 2,
		PAttachments:    []vk.AttachmentDescription{colorAttachment, depthAttachment},
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
		DependencyCount: 1,
		PDependencies:   []vk.SubpassDependency{dependency},
	}
	var pass vk.RenderPass
	if err := newError("create render pass", vk.CreateRenderPass(d.handle, &createInfo, nil, &pass)); err != nil {
		return nil, fmt.Errorf("%w: %w", render.ErrResourceCreationFailed, err)
	}
	return pass, nil
}

func (d *Device) DestroyRenderPass(p render.RenderPass) {
	if pass, ok := p.(vk.RenderPass); ok && pass != vk.NullRenderPass {
		vk.DestroyRenderPass(d.handle, pass, nil)
	}
}

func (d *Device) CreateFramebuffer(p render.RenderPass, attachments []render.ImageView, extent render.Extent) (render.Framebuffer, error) {
	views := make([]vk.ImageView, len(attachments))
	for i, a := range attachments {
		views[i] = a.(vk.ImageView)
	}
	createInfo := vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      p.(vk.RenderPass),
		AttachmentCount: uint32(len(views)),
		PAttachments:    views,
		Width:           extent.Width,
		Height:          extent.Height,
		Layers:          1,
	}
	var fb vk.Framebuffer
	if err := newError("create framebuffer", vk.CreateFramebuffer(d.handle, &createInfo, nil, &fb)); err != nil {
		return nil, fmt.Errorf("%w: %w", render.ErrResourceCreationFailed, err)
	}
	return fb, nil
}

func (d *Device) DestroyFramebuffer(f render.Framebuffer) {
	if fb, ok := f.(vk.Framebuffer); ok && fb != vk.NullFramebuffer {
		vk.DestroyFramebuffer(d.handle, fb, nil)
	}
}
