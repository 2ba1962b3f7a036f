// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package noop

import (
	"time"

	"github.com/gogpu/rendergraph/gpu"
)

// Device implements gpu.Device by allocating lightweight placeholder
// objects. CreateTexture/CreateBuffer report deterministic memory
// requirements derived from the descriptor so the memory aliaser has
// something realistic to pack.
type Device struct {
	memory *MemoryAllocator
}

// NewDevice constructs a noop device with its own memory allocator.
func NewDevice() *Device {
	return &Device{memory: newMemoryAllocator()}
}

func (d *Device) CreateBuffer(desc *gpu.BufferDescriptor) (gpu.Buffer, error) {
	return &Buffer{Desc: *desc}, nil
}
func (d *Device) DestroyBuffer(buffer gpu.Buffer) { buffer.Destroy() }

func (d *Device) CreateTexture(desc *gpu.TextureDescriptor) (gpu.Texture, error) {
	return &Texture{Desc: *desc}, nil
}
func (d *Device) DestroyTexture(texture gpu.Texture) { texture.Destroy() }

func (d *Device) CreateTextureView(_ gpu.Texture, _ *gpu.TextureViewDescriptor) (gpu.TextureView, error) {
	return &TextureView{}, nil
}
func (d *Device) DestroyTextureView(view gpu.TextureView) { view.Destroy() }

func (d *Device) CreateSampler(_ *gpu.SamplerDescriptor) (gpu.Sampler, error) {
	return &Sampler{}, nil
}
func (d *Device) DestroySampler(s gpu.Sampler) { s.Destroy() }

func (d *Device) CreateBindGroupLayout(_ *gpu.BindGroupLayoutDescriptor) (gpu.BindGroupLayout, error) {
	return &BindGroupLayout{}, nil
}
func (d *Device) DestroyBindGroupLayout(l gpu.BindGroupLayout) { l.Destroy() }

func (d *Device) CreateBindGroup(_ *gpu.BindGroupDescriptor) (gpu.BindGroup, error) {
	return &BindGroup{}, nil
}
func (d *Device) UpdateBindGroup(_ gpu.BindGroup, _ []gpu.BindGroupEntry) {}
func (d *Device) DestroyBindGroup(g gpu.BindGroup)                        { g.Destroy() }

func (d *Device) CreatePipelineLayout(_ *gpu.PipelineLayoutDescriptor) (gpu.PipelineLayout, error) {
	return &PipelineLayout{}, nil
}
func (d *Device) DestroyPipelineLayout(l gpu.PipelineLayout) { l.Destroy() }

func (d *Device) CreateShaderModule(_ *gpu.ShaderModuleDescriptor) (gpu.ShaderModule, error) {
	return &ShaderModule{}, nil
}
func (d *Device) DestroyShaderModule(m gpu.ShaderModule) { m.Destroy() }

func (d *Device) CreateRenderPipeline(_ *gpu.RenderPipelineDescriptor) (gpu.RenderPipeline, error) {
	return &RenderPipeline{}, nil
}
func (d *Device) DestroyRenderPipeline(p gpu.RenderPipeline) { p.Destroy() }

func (d *Device) CreateComputePipeline(_ *gpu.ComputePipelineDescriptor) (gpu.ComputePipeline, error) {
	return &ComputePipeline{}, nil
}
func (d *Device) DestroyComputePipeline(p gpu.ComputePipeline) { p.Destroy() }

func (d *Device) CreateQuerySet(count uint32) (gpu.QuerySet, error) {
	return &QuerySet{Count: count}, nil
}
func (d *Device) DestroyQuerySet(s gpu.QuerySet) { s.Destroy() }

func (d *Device) CreateCommandEncoder(_ *gpu.CommandEncoderDescriptor) (gpu.CommandEncoder, error) {
	return &CommandEncoder{}, nil
}

func (d *Device) CreateFence() (gpu.Fence, error) { return &Fence{}, nil }
func (d *Device) DestroyFence(f gpu.Fence)         { f.Destroy() }

func (d *Device) CreateSemaphore() (gpu.Semaphore, error) { return &Semaphore{}, nil }
func (d *Device) DestroySemaphore(s gpu.Semaphore)        { s.Destroy() }

func (d *Device) Wait(fence gpu.Fence, value uint64, _ time.Duration) (bool, error) {
	nf, ok := fence.(*Fence)
	if !ok {
		return true, nil
	}
	return nf.Value >= value, nil
}

func (d *Device) Memory() gpu.MemoryAllocator { return d.memory }

// BufferMemoryRequirements derives a deterministic stub requirement from
// the descriptor so the memory aliaser has realistic sizes to pack
// against; 256-byte alignment matches common uniform/storage buffer
// offset alignment limits.
func (d *Device) BufferMemoryRequirements(buffer gpu.Buffer) gpu.MemoryRequirements {
	b, ok := buffer.(*Buffer)
	if !ok {
		return gpu.MemoryRequirements{Size: 1, Alignment: 1, MemoryTypeBits: 0x1}
	}
	return gpu.MemoryRequirements{Size: b.Desc.Size, Alignment: 256, MemoryTypeBits: 0x1}
}

// TextureMemoryRequirements estimates a byte size from the texture's
// extent and a fixed 4-bytes-per-texel assumption; real backends report
// exact values from the driver.
func (d *Device) TextureMemoryRequirements(texture gpu.Texture) gpu.MemoryRequirements {
	t, ok := texture.(*Texture)
	if !ok {
		return gpu.MemoryRequirements{Size: 1, Alignment: 1, MemoryTypeBits: 0x1}
	}
	texels := uint64(t.Desc.Size.Width) * uint64(t.Desc.Size.Height) * uint64(t.Desc.Size.DepthOrArrayLayers)
	if texels == 0 {
		texels = 1
	}
	mips := uint64(t.Desc.MipLevelCount)
	if mips == 0 {
		mips = 1
	}
	return gpu.MemoryRequirements{Size: texels * 4 * mips, Alignment: 256, MemoryTypeBits: 0x1}
}

func (d *Device) Destroy() {}
