// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package gpu

import "github.com/gogpu/gputypes"

// Type aliases re-exporting the shared GPU vocabulary so that callers of
// this package never need to import gputypes directly, matching how the
// teacher's hal package re-exports PresentMode for backward compatibility.
type (
	BufferUsage        = gputypes.BufferUsage
	TextureUsage        = gputypes.TextureUsage
	TextureFormat       = gputypes.TextureFormat
	TextureDimension    = gputypes.TextureDimension
	TextureAspect       = gputypes.TextureAspect
	LoadOp              = gputypes.LoadOp
	StoreOp             = gputypes.StoreOp
	Color               = gputypes.Color
	IndexFormat         = gputypes.IndexFormat
	ShaderStages        = gputypes.ShaderStages
	CompareFunction     = gputypes.CompareFunction
	PrimitiveState      = gputypes.PrimitiveState
	MultisampleState    = gputypes.MultisampleState
	PresentMode         = gputypes.PresentMode
	CompositeAlphaMode  = gputypes.CompositeAlphaMode
)

const (
	BufferUsageVertex       = gputypes.BufferUsageVertex
	BufferUsageIndex        = gputypes.BufferUsageIndex
	BufferUsageUniform      = gputypes.BufferUsageUniform
	BufferUsageStorage      = gputypes.BufferUsageStorage
	BufferUsageIndirect     = gputypes.BufferUsageIndirect
	BufferUsageCopySrc      = gputypes.BufferUsageCopySrc
	BufferUsageCopyDst      = gputypes.BufferUsageCopyDst
	BufferUsageMapRead      = gputypes.BufferUsageMapRead
	BufferUsageMapWrite     = gputypes.BufferUsageMapWrite
	BufferUsageQueryResolve = gputypes.BufferUsageQueryResolve

	TextureUsageTextureBinding  = gputypes.TextureUsageTextureBinding
	TextureUsageStorageBinding  = gputypes.TextureUsageStorageBinding
	TextureUsageRenderAttachment = gputypes.TextureUsageRenderAttachment
	TextureUsageCopySrc         = gputypes.TextureUsageCopySrc
	TextureUsageCopyDst         = gputypes.TextureUsageCopyDst

	TextureDimension1D = gputypes.TextureDimension1D
	TextureDimension2D = gputypes.TextureDimension2D
	TextureDimension3D = gputypes.TextureDimension3D

	LoadOpClear = gputypes.LoadOpClear
	LoadOpLoad  = gputypes.LoadOpLoad

	StoreOpStore    = gputypes.StoreOpStore
	StoreOpDiscard  = gputypes.StoreOpDiscard

	PresentModeImmediate = gputypes.PresentModeImmediate
	PresentModeMailbox   = gputypes.PresentModeMailbox
	PresentModeFifo      = gputypes.PresentModeFifo

	ShaderStageVertex   = gputypes.ShaderStageVertex
	ShaderStageFragment = gputypes.ShaderStageFragment
	ShaderStageCompute  = gputypes.ShaderStageCompute
)

// MemoryPropertyFlags mirrors the Vulkan-style memory property bitmask this
// module's memory aliaser groups resources by: device-local vs. host
// visible/coherent. Modeled as its own type (rather than reusing a backend
// enum) because the aliaser's bucket-eligibility test (§4.3) compares these
// flags directly and must not depend on any one backend's numbering.
type MemoryPropertyFlags uint32

const (
	MemoryPropertyDeviceLocal MemoryPropertyFlags = 1 << iota
	MemoryPropertyHostVisible
	MemoryPropertyHostCoherent
)

// Contains reports whether all bits in other are set in f.
func (f MemoryPropertyFlags) Contains(other MemoryPropertyFlags) bool {
	return f&other == other
}

// MemoryRequirements is the backend's report of size/alignment/compatible
// memory types for a resource, as returned after creating its GPU object.
type MemoryRequirements struct {
	Size           uint64
	Alignment      uint64
	MemoryTypeBits uint32
}
