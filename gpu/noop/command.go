// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package noop

import "github.com/gogpu/rendergraph/gpu"

// CommandEncoder implements gpu.CommandEncoder by recording nothing but
// counting the calls the graph executor makes, which the module's own
// tests use to assert barrier batching behavior without a real device.
type CommandEncoder struct {
	Labels           []string
	BufferBarriers   [][]gpu.BufferBarrier
	TextureBarriers  [][]gpu.TextureBarrier
	DebugGroups      []string
	BoundBindlessSet gpu.BindGroup
}

func (c *CommandEncoder) BeginEncoding(label string) error {
	c.Labels = append(c.Labels, label)
	return nil
}

func (c *CommandEncoder) EndEncoding() (gpu.CommandBuffer, error) {
	return &CommandBuffer{}, nil
}

func (c *CommandEncoder) DiscardEncoding() {}

func (c *CommandEncoder) TransitionBuffers(barriers []gpu.BufferBarrier) {
	if len(barriers) == 0 {
		return
	}
	c.BufferBarriers = append(c.BufferBarriers, barriers)
}

func (c *CommandEncoder) TransitionTextures(barriers []gpu.TextureBarrier) {
	if len(barriers) == 0 {
		return
	}
	c.TextureBarriers = append(c.TextureBarriers, barriers)
}

func (c *CommandEncoder) ClearBuffer(_ gpu.Buffer, _, _ uint64)                {}
func (c *CommandEncoder) FillBuffer(_ gpu.Buffer, _, _ uint64, _ uint32)       {}
func (c *CommandEncoder) CopyBufferToBuffer(_, _ gpu.Buffer, _ []gpu.BufferCopy) {}
func (c *CommandEncoder) CopyBufferToTexture(_ gpu.Buffer, _ gpu.Texture, _ []gpu.BufferTextureCopy) {
}
func (c *CommandEncoder) CopyTextureToBuffer(_ gpu.Texture, _ gpu.Buffer, _ []gpu.BufferTextureCopy) {
}
func (c *CommandEncoder) CopyTextureToTexture(_, _ gpu.Texture, _ []gpu.TextureCopy) {}

func (c *CommandEncoder) BeginRenderPass(desc *gpu.RenderPassDescriptor) gpu.RenderPassEncoder {
	return &RenderPassEncoder{Desc: desc}
}

func (c *CommandEncoder) BeginComputePass(_ *gpu.ComputePassDescriptor) gpu.ComputePassEncoder {
	return &ComputePassEncoder{}
}

func (c *CommandEncoder) BindBindlessSet(group gpu.BindGroup) {
	c.BoundBindlessSet = group
}

func (c *CommandEncoder) PushDebugGroup(label string) {
	c.DebugGroups = append(c.DebugGroups, label)
}

func (c *CommandEncoder) PopDebugGroup() {}

func (c *CommandEncoder) WriteTimestamp(_ gpu.QuerySet, _ uint32) {}

// RenderPassEncoder records the descriptor it was opened with and nothing
// else; draw calls are no-ops.
type RenderPassEncoder struct {
	Desc *gpu.RenderPassDescriptor
}

func (r *RenderPassEncoder) End()                                                  {}
func (r *RenderPassEncoder) SetPipeline(_ gpu.RenderPipeline)                      {}
func (r *RenderPassEncoder) SetBindGroup(_ uint32, _ gpu.BindGroup, _ []uint32)    {}
func (r *RenderPassEncoder) SetVertexBuffer(_ uint32, _ gpu.Buffer, _ uint64)      {}
func (r *RenderPassEncoder) SetIndexBuffer(_ gpu.Buffer, _ gpu.IndexFormat, _ uint64) {}
func (r *RenderPassEncoder) SetViewport(_, _, _, _, _, _ float32)                  {}
func (r *RenderPassEncoder) SetScissorRect(_, _, _, _ uint32)                      {}
func (r *RenderPassEncoder) SetPushConstants(_ gpu.ShaderStages, _ uint32, _ []byte) {}
func (r *RenderPassEncoder) Draw(_, _, _, _ uint32)                                {}
func (r *RenderPassEncoder) DrawIndexed(_, _, _ uint32, _ int32, _ uint32)         {}
func (r *RenderPassEncoder) DrawIndirect(_ gpu.Buffer, _ uint64)                   {}
func (r *RenderPassEncoder) DrawIndexedIndirect(_ gpu.Buffer, _ uint64)            {}

type ComputePassEncoder struct{}

func (c *ComputePassEncoder) End()                                               {}
func (c *ComputePassEncoder) SetPipeline(_ gpu.ComputePipeline)                  {}
func (c *ComputePassEncoder) SetBindGroup(_ uint32, _ gpu.BindGroup, _ []uint32) {}
func (c *ComputePassEncoder) SetPushConstants(_ gpu.ShaderStages, _ uint32, _ []byte) {}
func (c *ComputePassEncoder) Dispatch(_, _, _ uint32)                            {}
func (c *ComputePassEncoder) DispatchIndirect(_ gpu.Buffer, _ uint64)            {}
