// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package gpu

// CommandEncoder records GPU commands. Encoders are single-use: after
// EndEncoding they cannot be reused. TransitionBuffers/TransitionTextures
// are the primitive the render graph's level executor calls once per
// dependency level with the batched barrier set it has computed (§4.6).
type CommandEncoder interface {
	BeginEncoding(label string) error
	EndEncoding() (CommandBuffer, error)
	DiscardEncoding()

	// TransitionBuffers applies a batch of buffer memory barriers.
	TransitionBuffers(barriers []BufferBarrier)
	// TransitionTextures applies a batch of texture memory/layout barriers.
	TransitionTextures(barriers []TextureBarrier)

	ClearBuffer(buffer Buffer, offset, size uint64)
	FillBuffer(buffer Buffer, offset, size uint64, value uint32)

	CopyBufferToBuffer(src, dst Buffer, regions []BufferCopy)
	CopyBufferToTexture(src Buffer, dst Texture, regions []BufferTextureCopy)
	CopyTextureToBuffer(src Texture, dst Buffer, regions []BufferTextureCopy)
	CopyTextureToTexture(src, dst Texture, regions []TextureCopy)

	BeginRenderPass(desc *RenderPassDescriptor) RenderPassEncoder
	BeginComputePass(desc *ComputePassDescriptor) ComputePassEncoder

	// BindBindlessSet binds group at index 0 for both the graphics and
	// compute pipeline bind points, the single bindless descriptor set
	// every pipeline this module creates shares. The frame orchestrator
	// calls this once at command-buffer start, before any pass is
	// recorded, rather than leaving every pass to rebind it.
	BindBindlessSet(group BindGroup)

	// PushDebugGroup/PopDebugGroup bracket a named debug region, used by
	// the level executor around each pass's execute callback.
	PushDebugGroup(label string)
	PopDebugGroup()

	// WriteTimestamp records a GPU timestamp into querySet at index, used
	// by the render graph's level executor for its per-level profiling
	// markers.
	WriteTimestamp(querySet QuerySet, index uint32)
}

// QuerySet is a pool of GPU queries (here, always timestamp queries).
type QuerySet interface {
	Resource
}

// RenderPassEncoder records draw commands within a render pass.
type RenderPassEncoder interface {
	End()
	SetPipeline(pipeline RenderPipeline)
	SetBindGroup(index uint32, group BindGroup, offsets []uint32)
	SetVertexBuffer(slot uint32, buffer Buffer, offset uint64)
	SetIndexBuffer(buffer Buffer, format IndexFormat, offset uint64)
	SetViewport(x, y, width, height, minDepth, maxDepth float32)
	SetScissorRect(x, y, width, height uint32)
	SetPushConstants(stages ShaderStages, offset uint32, data []byte)

	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32)
	DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32)
	DrawIndirect(buffer Buffer, offset uint64)
	DrawIndexedIndirect(buffer Buffer, offset uint64)
}

// ComputePassEncoder records dispatch commands within a compute pass.
type ComputePassEncoder interface {
	End()
	SetPipeline(pipeline ComputePipeline)
	SetBindGroup(index uint32, group BindGroup, offsets []uint32)
	SetPushConstants(stages ShaderStages, offset uint32, data []byte)
	Dispatch(x, y, z uint32)
	DispatchIndirect(buffer Buffer, offset uint64)
}

// BufferBarrier describes a buffer usage transition.
type BufferBarrier struct {
	Buffer Buffer
	Usage  BufferUsageTransition
}

// BufferUsageTransition carries the old/new usage a buffer barrier bridges.
type BufferUsageTransition struct {
	OldUsage BufferUsage
	NewUsage BufferUsage
}

// TextureBarrier describes a texture usage/layout transition over a range.
type TextureBarrier struct {
	Texture Texture
	Range   TextureRange
	Usage   TextureUsageTransition
}

// TextureUsageTransition carries the old/new usage a texture barrier bridges.
type TextureUsageTransition struct {
	OldUsage TextureUsage
	NewUsage TextureUsage
}

// TextureRange specifies a range of texture subresources a barrier applies to.
type TextureRange struct {
	Aspect          TextureAspect
	BaseMipLevel    uint32
	MipLevelCount   uint32
	BaseArrayLayer  uint32
	ArrayLayerCount uint32
}
