package vulkan

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"

	"vkrender/render"
)

const shaderEntryPoint = "main\x00"

func (d *Device) CreateShaderModule(code []uint32) (render.ShaderModule, error) {
	createInfo := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(code) * 4),
		PCode:    code,
	}
	var module vk.ShaderModule
	if err := newError("create shader module", vk.CreateShaderModule(d.handle, &createInfo, nil, &module)); err != nil {
		return nil, err
	}
	return module, nil
}

func (d *Device) DestroyShaderModule(m render.ShaderModule) {
	if module, ok := m.(vk.ShaderModule); ok && module != vk.NullShaderModule {
		vk.DestroyShaderModule(d.handle, module, nil)
	}
}

func (d *Device) CreatePipelineLayout(pushConstants []render.PushConstantRange) (render.PipelineLayout, error) {
	ranges := make([]vk.PushConstantRange, len(pushConstants))
	for i, r := range pushConstants {
		ranges[i] = vk.PushConstantRange{
			StageFlags: vk.ShaderStageFlags(r.Stages),
			Offset:     r.Offset,
			Size:       r.Size,
		}
	}
	createInfo := vk.PipelineLayoutCreateInfo{
		SType:                  vk.StructureTypePipelineLayoutCreateInfo,
		PushConstantRangeCount: uint32(len(ranges)),
		PPushConstantRanges:    ranges,
	}
	var layout vk.PipelineLayout
	if err := newError("create pipeline layout", vk.CreatePipelineLayout(d.handle, &createInfo, nil, &layout)); err != nil {
		return nil, err
	}
	return layout, nil
}

func (d *Device) DestroyPipelineLayout(l render.PipelineLayout) {
	if layout, ok := l.(vk.PipelineLayout); ok && layout != vk.NullPipelineLayout {
		vk.DestroyPipelineLayout(d.handle, layout, nil)
	}
}

func vertexInputState(layout render.VertexLayout) vk.PipelineVertexInputStateCreateInfo {
	state := vk.PipelineVertexInputStateCreateInfo{
		SType: vk.StructureTypePipelineVertexInputStateCreateInfo,
	}
	if layout.Stride == 0 {
		return state
	}
	attributes := make([]vk.VertexInputAttributeDescription, len(layout.Attributes))
	for i, a := range layout.Attributes {
		attributes[i] = vk.VertexInputAttributeDescription{
			Location: a.Location,
			Binding:  0,
			Format:   vk.Format(a.Format),
			Offset:   a.Offset,
		}
	}
	state.VertexBindingDescriptionCount = 1
	state.PVertexBindingDescriptions = []vk.VertexInputBindingDescription{{
		Binding:   0,
		Stride:    layout.Stride,
		InputRate: vk.VertexInputRateVertex,
	}}
	state.VertexAttributeDescriptionCount = uint32(len(attributes))
	state.PVertexAttributeDescriptions = attributes
	return state
}

func (d *Device) CreateGraphicsPipeline(config render.PipelineConfig) (render.Pipeline, error) {
	stages := []vk.PipelineShaderStageCreateInfo{
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageVertexBit,
			Module: config.VertexShader.(vk.ShaderModule),
			PName:  shaderEntryPoint,
		},
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageFragmentBit,
			Module: config.FragmentShader.(vk.ShaderModule),
			PName:  shaderEntryPoint,
		},
	}

	vertexInput := vertexInputState(config.VertexLayout)
	inputAssembly := vk.PipelineInputAssemblyStateCreateInfo{
		SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology:               vk.PrimitiveTopology(config.Topology),
		PrimitiveRestartEnable: vk.False,
	}
	// Viewport and scissor are set per frame.
	viewportState := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		ScissorCount:  1,
	}
	dynamicStates := []vk.DynamicState{vk.DynamicStateViewport, vk.DynamicStateScissor}
	dynamicState := vk.PipelineDynamicStateCreateInfo{
		SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
		DynamicStateCount: uint32(len(dynamicStates)),
		PDynamicStates:    dynamicStates,
	}

	lineWidth := config.LineWidth
	if lineWidth <= 0 {
		lineWidth = 1
	}
	rasterizer := vk.PipelineRasterizationStateCreateInfo{
		SType:                   vk.StructureTypePipelineRasterizationStateCreateInfo,
		DepthClampEnable:        vk.False,
		RasterizerDiscardEnable: vk.False,
		PolygonMode:             vk.PolygonMode(config.PolygonMode),
		LineWidth:               lineWidth,
		CullMode:                vk.CullModeFlags(config.CullMode),
		FrontFace:               vk.FrontFace(config.FrontFace),
		DepthBiasEnable:         vk.False,
	}
	multisampling := vk.PipelineMultisampleStateCreateInfo{
		SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
		RasterizationSamples: vk.SampleCount1Bit,
		MinSampleShading:     1,
	}
	depthStencil := vk.PipelineDepthStencilStateCreateInfo{
		SType:            vk.StructureTypePipelineDepthStencilStateCreateInfo,
		DepthTestEnable:  vkBool(config.DepthTest),
		DepthWriteEnable: vkBool(config.DepthWrite),
		DepthCompareOp:   vk.CompareOp(config.DepthCompare),
		MinDepthBounds:   0,
		MaxDepthBounds:   1,
	}
	blendAttachment := vk.PipelineColorBlendAttachmentState{
		ColorWriteMask: vk.ColorComponentFlags(
			vk.ColorComponentRBit | vk.ColorComponentGBit | vk.ColorComponentBBit | vk.ColorComponentABit),
		BlendEnable:         vkBool(config.BlendEnable),
		SrcColorBlendFactor: vk.BlendFactorOne,
		DstColorBlendFactor: vk.BlendFactorZero,
		ColorBlendOp:        vk.BlendOpAdd,
		SrcAlphaBlendFactor: vk.BlendFactorOne,
		DstAlphaBlendFactor: vk.BlendFactorZero,
		AlphaBlendOp:        vk.BlendOpAdd,
	}
	if config.BlendEnable {
		blendAttachment.SrcColorBlendFactor = vk.BlendFactorSrcAlpha
		blendAttachment.DstColorBlendFactor = vk.BlendFactorOneMinusSrcAlpha
	}
	colorBlending := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		LogicOpEnable:   vk.False,
		LogicOp:         vk.LogicOpCopy,
		AttachmentCount: 1,
		PAttachments:    []vk.PipelineColorBlendAttachmentState{blendAttachment},
	}

	createInfo := vk.GraphicsPipelineCreateInfo{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:          uint32(len(stages)),
		PStages:             stages,
		PVertexInputState:   &vertexInput,
		PInputAssemblyState: &inputAssembly,
		PViewportState:      &viewportState,
		PRasterizationState: &rasterizer,
		PMultisampleState:   &multisampling,
		PDepthStencilState:  &depthStencil,
		PColorBlendState:    &colorBlending,
		PDynamicState:       &dynamicState,
		Layout:              config.Layout.(vk.PipelineLayout),
		RenderPass:          config.RenderPass.(vk.RenderPass),
		Subpass:             config.Subpass,
		BasePipelineHandle:  vk.NullPipeline,
		BasePipelineIndex:   -1,
	}

	pipelines := make([]vk.Pipeline, 1)
	res := vk.CreateGraphicsPipelines(d.handle, vk.PipelineCache(vk.NullHandle), 1,
		[]vk.GraphicsPipelineCreateInfo{createInfo}, nil, pipelines)
	if err := newError("create graphics pipeline", res); err != nil {
		return nil, fmt.Errorf("%w: %w", render.ErrPipelineCreationFailed, err)
	}
	return pipelines[0], nil
}

func (d *Device) DestroyPipeline(p render.Pipeline) {
	if pipeline, ok := p.(vk.Pipeline); ok && pipeline != vk.NullPipeline {
		vk.DestroyPipeline(d.handle, pipeline, nil)
	}
}
