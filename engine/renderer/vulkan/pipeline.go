package vulkan

import (
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/surfacepm/vkgfx/engine/core"
)

// Pipeline wraps one of the two fixed graphics pipelines (component design
// §4.5): Fill (no descriptor set, vertex+fragment push constants) or
// Texture (one push-descriptor combined-image-sampler, vertex-only push
// constants).
type Pipeline struct {
	dev    *Device
	Handle vk.Pipeline
	Layout vk.PipelineLayout

	// FragPushOffset is where the fragment push-constant range begins in
	// the shared push-constant block, named frag_push_offset in the
	// component design's shader-ABI note.
	FragPushOffset uint32

	DescriptorSetLayout vk.DescriptorSetLayout // nil for the fill pipeline
}

// Pipelines bundles both fixed pipelines plus the shared sampler, built
// once per renderer against a target color format (component design §4.5:
// "single dynamic-rendering color attachment with the framebuffer's
// format").
type Pipelines struct {
	Fill    *Pipeline
	Texture *Pipeline
	Sampler vk.Sampler
}

// CreatePipelines builds the fill and texture pipelines targeting
// colorFormat via vkCmdBeginRendering/vkCmdEndRendering rather than a
// VkRenderPass/VkFramebuffer pair (no swapchain exists to own one; see
// SPEC_FULL.md REDESIGN FLAGS).
func CreatePipelines(dev *Device, fillVert, fillFrag, texVert, texFrag []uint32, colorFormat vk.Format) (*Pipelines, error) {
	sampler, err := CreateTextureSampler(dev)
	if err != nil {
		return nil, err
	}

	fill, err := buildPipeline(dev, pipelineSpec{
		vertSpirv:      fillVert,
		fragSpirv:      fillFrag,
		colorFormat:    colorFormat,
		vertexPushSize: vertexQuadPushSize,
		fragPushSize:   fragColorPushSize,
	})
	if err != nil {
		vk.DestroySampler(dev.Logical, sampler, nil)
		return nil, err
	}

	descLayout, err := createTextureDescriptorSetLayout(dev)
	if err != nil {
		fill.Destroy()
		vk.DestroySampler(dev.Logical, sampler, nil)
		return nil, err
	}
	tex, err := buildPipeline(dev, pipelineSpec{
		vertSpirv:           texVert,
		fragSpirv:           texFrag,
		colorFormat:         colorFormat,
		vertexPushSize:      texVertexPushSize,
		descriptorSetLayout: descLayout,
	})
	if err != nil {
		vk.DestroyDescriptorSetLayout(dev.Logical, descLayout, nil)
		fill.Destroy()
		vk.DestroySampler(dev.Logical, sampler, nil)
		return nil, err
	}
	tex.DescriptorSetLayout = descLayout

	return &Pipelines{Fill: fill, Texture: tex, Sampler: sampler}, nil
}

type pipelineSpec struct {
	vertSpirv, fragSpirv []uint32
	colorFormat          vk.Format
	vertexPushSize       uint32
	fragPushSize         uint32
	descriptorSetLayout  vk.DescriptorSetLayout
}

func buildPipeline(dev *Device, spec pipelineSpec) (*Pipeline, error) {
	vertModule, err := createShaderModule(dev, spec.vertSpirv)
	if err != nil {
		return nil, err
	}
	defer vk.DestroyShaderModule(dev.Logical, vertModule, nil)
	fragModule, err := createShaderModule(dev, spec.fragSpirv)
	if err != nil {
		return nil, err
	}
	defer vk.DestroyShaderModule(dev.Logical, fragModule, nil)

	pushRanges := []vk.PushConstantRange{{
		StageFlags: vk.ShaderStageFlags(vk.ShaderStageVertexBit),
		Offset:     0,
		Size:       spec.vertexPushSize,
	}}
	fragPushOffset := spec.vertexPushSize
	if spec.fragPushSize > 0 {
		pushRanges = append(pushRanges, vk.PushConstantRange{
			StageFlags: vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
			Offset:     fragPushOffset,
			Size:       spec.fragPushSize,
		})
	}

	setLayouts := []vk.DescriptorSetLayout{}
	if spec.descriptorSetLayout != nil {
		setLayouts = append(setLayouts, spec.descriptorSetLayout)
	}

	layoutInfo := vk.PipelineLayoutCreateInfo{
		SType:                  vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount:         uint32(len(setLayouts)),
		PushConstantRangeCount: uint32(len(pushRanges)),
	}
	if len(setLayouts) > 0 {
		layoutInfo.PSetLayouts = setLayouts
	}
	if len(pushRanges) > 0 {
		layoutInfo.PPushConstantRanges = pushRanges
	}
	var layout vk.PipelineLayout
	if res := vk.CreatePipelineLayout(dev.Logical, &layoutInfo, nil, &layout); res != vk.Success {
		return nil, core.Wrap(core.ErrCreatePipelineLayout, vkResultError(res))
	}

	shaderStages := []vk.PipelineShaderStageCreateInfo{
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageVertexBit,
			Module: vertModule,
			PName:  "main\x00",
		},
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageFragmentBit,
			Module: fragModule,
			PName:  "main\x00",
		},
	}

	vertexInput := vk.PipelineVertexInputStateCreateInfo{
		SType: vk.StructureTypePipelineVertexInputStateCreateInfo,
	}
	inputAssembly := vk.PipelineInputAssemblyStateCreateInfo{
		SType:    vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology: vk.PrimitiveTopologyTriangleStrip,
	}
	viewportState := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		ScissorCount:  1,
	}
	rasterization := vk.PipelineRasterizationStateCreateInfo{
		SType:       vk.StructureTypePipelineRasterizationStateCreateInfo,
		PolygonMode: vk.PolygonModeFill,
		CullMode:    vk.CullModeFlags(vk.CullModeNone),
		FrontFace:   vk.FrontFaceCounterClockwise,
		LineWidth:   1.0,
	}
	multisample := vk.PipelineMultisampleStateCreateInfo{
		SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
		RasterizationSamples: vk.SampleCount1Bit,
	}
	blendAttachment := vk.PipelineColorBlendAttachmentState{
		BlendEnable:         vk.True,
		SrcColorBlendFactor: vk.BlendFactorOne,
		DstColorBlendFactor: vk.BlendFactorOneMinusSrcAlpha,
		ColorBlendOp:        vk.BlendOpAdd,
		SrcAlphaBlendFactor: vk.BlendFactorOne,
		DstAlphaBlendFactor: vk.BlendFactorOneMinusSrcAlpha,
		AlphaBlendOp:        vk.BlendOpAdd,
		ColorWriteMask: vk.ColorComponentFlags(
			vk.ColorComponentRBit | vk.ColorComponentGBit | vk.ColorComponentBBit | vk.ColorComponentABit,
		),
	}
	colorBlend := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		AttachmentCount: 1,
		PAttachments:    []vk.PipelineColorBlendAttachmentState{blendAttachment},
	}
	dynamicStates := []vk.DynamicState{vk.DynamicStateViewport, vk.DynamicStateScissor}
	dynamicState := vk.PipelineDynamicStateCreateInfo{
		SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
		DynamicStateCount: uint32(len(dynamicStates)),
		PDynamicStates:    dynamicStates,
	}

	colorFormats := []vk.Format{spec.colorFormat}
	renderingInfo := vk.PipelineRenderingCreateInfo{
		SType:                vk.StructureTypePipelineRenderingCreateInfo,
		ColorAttachmentCount: 1,
		PColorAttachmentFormats: colorFormats,
	}

	pipelineInfo := vk.GraphicsPipelineCreateInfo{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		PNext:               unsafe.Pointer(&renderingInfo),
		StageCount:          uint32(len(shaderStages)),
		PStages:             shaderStages,
		PVertexInputState:   &vertexInput,
		PInputAssemblyState: &inputAssembly,
		PViewportState:      &viewportState,
		PRasterizationState: &rasterization,
		PMultisampleState:   &multisample,
		PColorBlendState:    &colorBlend,
		PDynamicState:       &dynamicState,
		Layout:              layout,
	}

	pipelines := make([]vk.Pipeline, 1)
	if res := vk.CreateGraphicsPipelines(dev.Logical, nil, 1, []vk.GraphicsPipelineCreateInfo{pipelineInfo}, nil, pipelines); res != vk.Success {
		vk.DestroyPipelineLayout(dev.Logical, layout, nil)
		return nil, core.Wrap(core.ErrCreatePipeline, vkResultError(res))
	}

	return &Pipeline{dev: dev, Handle: pipelines[0], Layout: layout, FragPushOffset: fragPushOffset}, nil
}

func createShaderModule(dev *Device, spirv []uint32) (vk.ShaderModule, error) {
	createInfo := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(spirv) * 4),
		PCode:    spirv,
	}
	var mod vk.ShaderModule
	if res := vk.CreateShaderModule(dev.Logical, &createInfo, nil, &mod); res != vk.Success {
		return nil, core.Wrap(core.ErrCreateShaderModule, vkResultError(res))
	}
	return mod, nil
}

// Destroy releases the pipeline and its layout (and descriptor set layout,
// for the texture pipeline).
func (p *Pipeline) Destroy() {
	if p.DescriptorSetLayout != nil {
		vk.DestroyDescriptorSetLayout(p.dev.Logical, p.DescriptorSetLayout, nil)
	}
	vk.DestroyPipeline(p.dev.Logical, p.Handle, nil)
	vk.DestroyPipelineLayout(p.dev.Logical, p.Layout, nil)
}

// Destroy tears down both pipelines and the shared sampler.
func (p *Pipelines) Destroy() {
	p.Fill.Destroy()
	p.Texture.Destroy()
	vk.DestroySampler(p.dev().Logical, p.Sampler, nil)
}

func (p *Pipelines) dev() *Device { return p.Fill.dev }
