// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package gpu

// Resource is the base interface for all GPU resources. Resources must be
// explicitly destroyed to free GPU memory; calling Destroy twice is
// undefined behavior, which is why every caller that owns one routes
// destruction through a single deferred-deletion path.
type Resource interface {
	Destroy()
}

// Buffer is a contiguous GPU memory region.
type Buffer interface {
	Resource
}

// Texture is a multi-dimensional GPU image.
type Texture interface {
	Resource
}

// TextureView is a typed view into a texture (format, mip range, layer range).
type TextureView interface {
	Resource
}

// Sampler configures texture filtering and addressing.
type Sampler interface {
	Resource
}

// ShaderModule holds compiled shader code in backend-specific form.
type ShaderModule interface {
	Resource
}

// RenderPipeline is a fully configured graphics pipeline.
type RenderPipeline interface {
	Resource
}

// ComputePipeline is a fully configured compute pipeline.
type ComputePipeline interface {
	Resource
}

// CommandBuffer holds recorded GPU commands, immutable once encoded.
type CommandBuffer interface {
	Resource
}

// Fence is a GPU/CPU synchronization primitive tracking a monotonically
// increasing submitted value.
type Fence interface {
	Resource
}

// Allocation is an opaque handle to a region of backing GPU memory returned
// by MemoryAllocator.Allocate. It carries enough information for the
// backend to bind buffers/textures against it and to map it when the
// property flags allow host access.
type Allocation interface {
	// Size is the allocation size in bytes, as rounded up by the backend.
	Size() uint64
	// MemoryTypeBits is the bitmask of backend memory types this
	// allocation's underlying block is compatible with.
	MemoryTypeBits() uint32
	// PropertyFlags reports the memory properties actually bound
	// (device-local, host-visible, host-coherent, ...).
	PropertyFlags() MemoryPropertyFlags
}

// Surface is a platform presentation target.
type Surface interface {
	Resource
	Configure(device Device, config *SurfaceConfiguration) error
	Unconfigure(device Device)
	AcquireTexture(fence Fence) (*AcquiredSurfaceTexture, error)
	DiscardTexture(texture SurfaceTexture)
}

// SurfaceTexture is a texture acquired from a Surface. It carries special
// lifetime constraints: it never flows through the transient resource pool
// and must be presented or discarded before the next begin_frame.
type SurfaceTexture interface {
	Texture
}

// AcquiredSurfaceTexture bundles a surface texture with acquisition metadata.
type AcquiredSurfaceTexture struct {
	Texture    SurfaceTexture
	Suboptimal bool
}

// SurfaceConfiguration describes how a surface should present images.
type SurfaceConfiguration struct {
	Format      TextureFormat
	Usage       TextureUsage
	Width       uint32
	Height      uint32
	PresentMode PresentMode
}
