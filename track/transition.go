// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package track

import "github.com/gogpu/rendergraph/gpu"

// StateTransition is a from→to ResourceState change for one subresource.
type StateTransition struct {
	From ResourceState
	To   ResourceState
}

// NeedsBarrier reports whether this transition requires a barrier.
func (t StateTransition) NeedsBarrier() bool {
	return NeedsBarrier(t.From, t.To)
}

// BufferPendingTransition is a StateTransition scoped to a tracked buffer,
// lowered to a gpu.BufferBarrier once the executor decides to emit it.
type BufferPendingTransition struct {
	Transition StateTransition
}

// IntoHAL lowers the pending transition to the barrier shape the backend's
// CommandEncoder.TransitionBuffers expects.
func (p BufferPendingTransition) IntoHAL(buffer gpu.Buffer) gpu.BufferBarrier {
	return gpu.BufferBarrier{
		Buffer: buffer,
		Usage: gpu.BufferUsageTransition{
			OldUsage: p.Transition.From.ToBufferUsage(),
			NewUsage: p.Transition.To.ToBufferUsage(),
		},
	}
}

// TexturePendingTransition is a StateTransition scoped to a tracked texture
// subresource range.
type TexturePendingTransition struct {
	Transition StateTransition
	Range      gpu.TextureRange
}

// IntoHAL lowers the pending transition to the barrier shape the backend's
// CommandEncoder.TransitionTextures expects.
func (p TexturePendingTransition) IntoHAL(texture gpu.Texture) gpu.TextureBarrier {
	return gpu.TextureBarrier{
		Texture: texture,
		Range:   p.Range,
		Usage: gpu.TextureUsageTransition{
			OldUsage: p.Transition.From.ToTextureUsage(),
			NewUsage: p.Transition.To.ToTextureUsage(),
		},
	}
}
