// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package track

import "github.com/gogpu/rendergraph/gpu"

// ResourceState is the cumulative access-intent bitmask a pass accumulates
// for a single subresource. Declarations OR together: one subresource may
// carry both StorageBuffer and Write within a single pass (spec.md §3).
// Unlike the teacher's split BufferUses/TextureUses, a single bitmask
// covers both resource kinds, since the render graph's barrier inference
// (graph package) treats them uniformly until the final HAL lowering step.
type ResourceState uint32

const (
	Undefined ResourceState = 0

	VertexBuffer ResourceState = 1 << iota
	IndexBuffer
	UniformBuffer
	StorageBuffer
	IndirectArg
	VertexShaderResource
	FragmentShaderResource
	ComputeShaderResource
	RenderTarget
	DepthRead
	DepthWrite
	CopySrc
	CopyDst
	ResolveSrc
	ResolveDst

	// Read and Write are direction bits ORed onto whichever access-intent
	// bits above describe what is being read or written.
	Read
	Write
)

// Contains reports whether all bits in other are set in s.
func (s ResourceState) Contains(other ResourceState) bool {
	return s&other == other
}

// IsEmpty reports whether no bits are set.
func (s ResourceState) IsEmpty() bool { return s == Undefined }

// IsReadOnly reports whether s carries no Write bit.
func (s ResourceState) IsReadOnly() bool {
	return s&Write == 0
}

// IsCompatible reports whether two accumulated states can coexist within
// the same dependency level without an intervening barrier between them:
// read-only states are always mutually compatible; anything carrying Write
// requires exclusivity (identity).
func (s ResourceState) IsCompatible(other ResourceState) bool {
	if s.IsEmpty() || other.IsEmpty() {
		return true
	}
	if s.IsReadOnly() && other.IsReadOnly() {
		return true
	}
	return s == other
}

// NeedsBarrier reports whether transitioning from 'from' to 'to' requires
// a pipeline barrier: no barrier if the state is unchanged, and none if
// both sides are read-only (spec.md §4.6 step 2).
func NeedsBarrier(from, to ResourceState) bool {
	if from == to {
		return false
	}
	if from.IsReadOnly() && to.IsReadOnly() {
		return false
	}
	return true
}

// ToBufferUsage lowers the access-intent bits to the gpu.BufferUsage flags
// a backend barrier call expects.
func (s ResourceState) ToBufferUsage() gpu.BufferUsage {
	var out gpu.BufferUsage
	if s.Contains(VertexBuffer) {
		out |= gpu.BufferUsageVertex
	}
	if s.Contains(IndexBuffer) {
		out |= gpu.BufferUsageIndex
	}
	if s.Contains(UniformBuffer) {
		out |= gpu.BufferUsageUniform
	}
	if s.Contains(StorageBuffer) {
		out |= gpu.BufferUsageStorage
	}
	if s.Contains(IndirectArg) {
		out |= gpu.BufferUsageIndirect
	}
	if s.Contains(CopySrc) {
		out |= gpu.BufferUsageCopySrc
	}
	if s.Contains(CopyDst) {
		out |= gpu.BufferUsageCopyDst
	}
	return out
}

// ToTextureUsage lowers the access-intent bits to the gpu.TextureUsage
// flags a backend barrier call expects.
func (s ResourceState) ToTextureUsage() gpu.TextureUsage {
	var out gpu.TextureUsage
	if s.Contains(VertexShaderResource) || s.Contains(FragmentShaderResource) || s.Contains(ComputeShaderResource) {
		if s.Contains(Write) {
			out |= gpu.TextureUsageStorageBinding
		} else {
			out |= gpu.TextureUsageTextureBinding
		}
	}
	if s.Contains(RenderTarget) || s.Contains(DepthRead) || s.Contains(DepthWrite) {
		out |= gpu.TextureUsageRenderAttachment
	}
	if s.Contains(CopySrc) {
		out |= gpu.TextureUsageCopySrc
	}
	if s.Contains(CopyDst) {
		out |= gpu.TextureUsageCopyDst
	}
	return out
}

// ImageLayout is the Vulkan-shaped image layout the executor derives from
// a ResourceState, per the mapping table in spec.md §4.6 step 2.
type ImageLayout int

const (
	LayoutUndefined ImageLayout = iota
	LayoutShaderReadOnlyOptimal
	LayoutGeneral
	LayoutColorAttachmentOptimal
	LayoutDepthStencilAttachmentOptimal
	LayoutTransferSrcOptimal
	LayoutTransferDstOptimal
)

// ToImageLayout maps an accumulated ResourceState to the image layout the
// backend barrier should transition to, following spec.md §4.6 step 2's
// fixed table exactly (including its default for read-only sampled access).
func (s ResourceState) ToImageLayout() ImageLayout {
	switch {
	case s.Contains(DepthRead) || s.Contains(DepthWrite):
		return LayoutDepthStencilAttachmentOptimal
	case s.Contains(RenderTarget):
		return LayoutColorAttachmentOptimal
	case s.Contains(CopySrc):
		return LayoutTransferSrcOptimal
	case s.Contains(CopyDst):
		return LayoutTransferDstOptimal
	case (s.Contains(ComputeShaderResource) || s.Contains(FragmentShaderResource) || s.Contains(VertexShaderResource)) && s.Contains(Write):
		return LayoutGeneral
	case s.Contains(ComputeShaderResource) || s.Contains(FragmentShaderResource) || s.Contains(VertexShaderResource):
		return LayoutShaderReadOnlyOptimal
	case s.IsEmpty():
		return LayoutUndefined
	default:
		return LayoutShaderReadOnlyOptimal
	}
}
