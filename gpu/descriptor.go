// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package gpu

// BufferDescriptor describes a GPU buffer creation request.
type BufferDescriptor struct {
	Label            string
	Size             uint64
	Usage            BufferUsage
	MappedAtCreation bool
}

// TextureDescriptor describes a GPU texture creation request.
type TextureDescriptor struct {
	Label         string
	Dimension     TextureDimension
	Size          Extent3D
	Format        TextureFormat
	Usage         TextureUsage
	MipLevelCount uint32
	SampleCount   uint32
}

// TextureViewDescriptor describes a view into a texture.
type TextureViewDescriptor struct {
	Format          TextureFormat
	Dimension       TextureDimension
	Aspect          TextureAspect
	BaseMipLevel    uint32
	MipLevelCount   uint32
	BaseArrayLayer  uint32
	ArrayLayerCount uint32
}

// SamplerDescriptor configures a texture sampler.
type SamplerDescriptor struct {
	Label         string
	MinFilter     int
	MagFilter     int
	MipmapFilter  int
	AddressModeU  int
	AddressModeV  int
	AddressModeW  int
	CompareFunc   CompareFunction
	MaxAnisotropy uint16
}

// ShaderModuleDescriptor describes shader source for CreateShaderModule.
type ShaderModuleDescriptor struct {
	Label string
	WGSL  string
	SPIRV []byte
}

// RenderPipelineDescriptor describes a graphics pipeline.
type RenderPipelineDescriptor struct {
	Label       string
	Layout      PipelineLayout
	Vertex      VertexState
	Fragment    *FragmentState
	Primitive   PrimitiveState
	Multisample MultisampleState
	DepthStencil *DepthStencilState
}

// VertexState describes the vertex shader stage.
type VertexState struct {
	Module     ShaderModule
	EntryPoint string
}

// FragmentState describes the fragment shader stage and its targets.
type FragmentState struct {
	Module     ShaderModule
	EntryPoint string
	Targets    []ColorTargetState
}

// ColorTargetState describes one color attachment's blend/write mask.
type ColorTargetState struct {
	Format    TextureFormat
	WriteMask uint32
}

// DepthStencilState describes depth/stencil test configuration.
type DepthStencilState struct {
	Format            TextureFormat
	DepthWriteEnabled bool
	DepthCompare      CompareFunction
}

// ComputePipelineDescriptor describes a compute pipeline.
type ComputePipelineDescriptor struct {
	Label      string
	Layout     PipelineLayout
	Module     ShaderModule
	EntryPoint string
}

// PipelineLayout is an opaque handle bundling bind group layouts and push
// constant ranges. shader.Module.PipelineLayout builds each one from the
// bindless table's single four-binding layout plus, only when the shader
// declares a push_constant struct, one range sized to that struct (at most
// 128 bytes) and visible to the stages the caller passes. It does not
// reserve a fixed 128-byte range visible to all stages.
type PipelineLayout interface {
	Resource
}

// PipelineLayoutDescriptor describes a pipeline layout.
type PipelineLayoutDescriptor struct {
	Label             string
	BindGroupLayouts  []BindGroupLayout
	PushConstantRanges []PushConstantRange
}

// PushConstantRange describes a push constant visibility range.
type PushConstantRange struct {
	Stages ShaderStages
	Offset uint32
	Size   uint32
}

// BindGroupLayout and BindGroup back the bindless descriptor table; the
// render graph core creates one layout and one bind group per buffered
// frame slot (see bindless.Table).
type BindGroupLayout interface {
	Resource
}

type BindGroup interface {
	Resource
}

// BindGroupLayoutDescriptor describes a bind group layout.
type BindGroupLayoutDescriptor struct {
	Label   string
	Entries []BindGroupLayoutEntry
}

// BindGroupLayoutEntry describes one binding slot.
type BindGroupLayoutEntry struct {
	Binding    uint32
	Visibility ShaderStages
	Kind       BindingKind
	Count      uint32 // array size for bindless bindings, 0 for non-arrays
}

// BindingKind enumerates the binding kinds the bindless layout uses.
type BindingKind int

const (
	BindingStorageImage BindingKind = iota
	BindingSampledImage
	BindingCombinedImageSampler
	BindingSampler
)

// BindGroupDescriptor describes a bind group instantiation.
type BindGroupDescriptor struct {
	Label   string
	Layout  BindGroupLayout
	Entries []BindGroupEntry
}

// BindGroupEntry binds a concrete resource to a binding slot.
type BindGroupEntry struct {
	Binding uint32
	Texture TextureView
	Sampler Sampler
	Buffer  Buffer
}

// CommandEncoderDescriptor describes a command encoder.
type CommandEncoderDescriptor struct {
	Label string
}

// RenderPassDescriptor describes a dynamic-rendering pass.
type RenderPassDescriptor struct {
	Label              string
	ColorAttachments   []RenderPassColorAttachment
	DepthStencil       *RenderPassDepthStencilAttachment
}

// RenderPassColorAttachment describes one color attachment.
type RenderPassColorAttachment struct {
	View       TextureView
	LoadOp     LoadOp
	StoreOp    StoreOp
	ClearValue Color
}

// RenderPassDepthStencilAttachment describes the depth/stencil attachment.
type RenderPassDepthStencilAttachment struct {
	View               TextureView
	DepthLoadOp        LoadOp
	DepthStoreOp       StoreOp
	DepthClearValue    float32
	StencilLoadOp      LoadOp
	StencilStoreOp     StoreOp
	StencilClearValue  uint32
}

// ComputePassDescriptor describes a compute pass.
type ComputePassDescriptor struct {
	Label string
}

// Extent3D is a 3D extent.
type Extent3D struct {
	Width              uint32
	Height             uint32
	DepthOrArrayLayers uint32
}

// Origin3D is a 3D origin.
type Origin3D struct {
	X, Y, Z uint32
}

// ImageDataLayout describes the layout of image data packed into a buffer.
type ImageDataLayout struct {
	Offset       uint64
	BytesPerRow  uint32
	RowsPerImage uint32
}

// ImageCopyTexture locates a texture region for a copy.
type ImageCopyTexture struct {
	Texture  Texture
	MipLevel uint32
	Origin   Origin3D
	Aspect   TextureAspect
}

// BufferCopy describes a buffer-to-buffer copy region.
type BufferCopy struct {
	SrcOffset uint64
	DstOffset uint64
	Size      uint64
}

// BufferTextureCopy describes a buffer<->texture copy region.
type BufferTextureCopy struct {
	BufferLayout ImageDataLayout
	TextureBase  ImageCopyTexture
	Size         Extent3D
}

// TextureCopy describes a texture-to-texture copy region.
type TextureCopy struct {
	SrcBase ImageCopyTexture
	DstBase ImageCopyTexture
	Size    Extent3D
}
