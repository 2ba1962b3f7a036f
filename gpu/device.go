// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package gpu

import "time"

// Device creates and destroys GPU resources. The render graph never owns a
// Device: it is handed one by the application at orchestrator construction
// time and treats it as the external collaborator described in
// SPEC_FULL.md §11 — everything outside topological scheduling, barrier
// inference, memory aliasing, and bindless allocation is this interface.
type Device interface {
	CreateBuffer(desc *BufferDescriptor) (Buffer, error)
	DestroyBuffer(buffer Buffer)

	CreateTexture(desc *TextureDescriptor) (Texture, error)
	DestroyTexture(texture Texture)

	CreateTextureView(texture Texture, desc *TextureViewDescriptor) (TextureView, error)
	DestroyTextureView(view TextureView)

	CreateSampler(desc *SamplerDescriptor) (Sampler, error)
	DestroySampler(sampler Sampler)

	CreateBindGroupLayout(desc *BindGroupLayoutDescriptor) (BindGroupLayout, error)
	DestroyBindGroupLayout(layout BindGroupLayout)

	CreateBindGroup(desc *BindGroupDescriptor) (BindGroup, error)
	// UpdateBindGroup writes new entries into an existing bind group
	// in-place, the operation the bindless descriptor table relies on to
	// publish a slot without reallocating its set (spec.md §4.1).
	UpdateBindGroup(group BindGroup, entries []BindGroupEntry)
	DestroyBindGroup(group BindGroup)

	CreatePipelineLayout(desc *PipelineLayoutDescriptor) (PipelineLayout, error)
	DestroyPipelineLayout(layout PipelineLayout)

	CreateShaderModule(desc *ShaderModuleDescriptor) (ShaderModule, error)
	DestroyShaderModule(module ShaderModule)

	CreateRenderPipeline(desc *RenderPipelineDescriptor) (RenderPipeline, error)
	DestroyRenderPipeline(pipeline RenderPipeline)

	CreateComputePipeline(desc *ComputePipelineDescriptor) (ComputePipeline, error)
	DestroyComputePipeline(pipeline ComputePipeline)

	CreateQuerySet(count uint32) (QuerySet, error)
	DestroyQuerySet(set QuerySet)

	CreateCommandEncoder(desc *CommandEncoderDescriptor) (CommandEncoder, error)

	CreateFence() (Fence, error)
	DestroyFence(fence Fence)
	Wait(fence Fence, value uint64, timeout time.Duration) (bool, error)

	// CreateSemaphore and DestroySemaphore manage the acquire/submit/present
	// wait-signal chain the frame orchestrator drives once per buffered
	// frame slot.
	CreateSemaphore() (Semaphore, error)
	DestroySemaphore(semaphore Semaphore)

	// Memory returns the device's memory allocator, the low-level knob the
	// resource memory aliaser (memalias.Aliaser) binds resources through.
	Memory() MemoryAllocator

	// BufferMemoryRequirements and TextureMemoryRequirements report the
	// size/alignment/memory-type-bits a freshly created resource needs, the
	// input the transient resource pool feeds into memalias.ResourceInfo
	// every time it (re)creates a pooled wrapper's underlying object.
	BufferMemoryRequirements(buffer Buffer) MemoryRequirements
	TextureMemoryRequirements(texture Texture) MemoryRequirements

	Destroy()
}

// MemoryAllocator is the external collaborator SPEC_FULL.md §6/§11 names
// explicitly: allocate_memory, free_memory, bind_buffer, bind_image,
// map/unmap. The render graph's memory aliaser calls exactly these
// operations when finalizing a memory bucket; it never talks to a native
// allocator API.
type MemoryAllocator interface {
	Allocate(requirements MemoryRequirements, properties MemoryPropertyFlags) (Allocation, error)
	// Free must be safe to call while the allocation may still be
	// referenced by an in-flight frame; callers route it through deferred
	// deletion rather than calling it directly on the hot path.
	Free(allocation Allocation)
	BindBuffer(buffer Buffer, allocation Allocation, offset uint64) error
	BindTexture(texture Texture, allocation Allocation, offset uint64) error
	Map(allocation Allocation) ([]byte, error)
	Unmap(allocation Allocation)
}

// Queue handles command submission and presentation.
type Queue interface {
	Submit(commandBuffers []CommandBuffer, waitSemaphore, signalSemaphore Semaphore, fence Fence, fenceValue uint64) error
	WriteBuffer(buffer Buffer, offset uint64, data []byte)
	Present(surface Surface, texture SurfaceTexture, waitSemaphore Semaphore) error
	GetTimestampPeriod() float32
}

// Semaphore is a GPU-side synchronization primitive used for the
// acquire/submit/present wait-signal chain the frame orchestrator drives.
type Semaphore interface {
	Resource
}
