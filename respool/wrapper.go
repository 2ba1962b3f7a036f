// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package respool

import (
	"github.com/gogpu/rendergraph/gpu"
	"github.com/gogpu/rendergraph/track"
)

// TextureWrapper is a pooled texture plus per-subresource state tracking;
// the executor mutates States as it places barriers (spec.md §3: "The
// wrapper's state is mutated only by the executor").
type TextureWrapper[K comparable] struct {
	ID     K
	Name   string
	Desc   TextureDescriptor
	Handle gpu.Texture

	States map[uint32]track.ResourceState

	lastUsedFrame uint64

	// dedicatedAlloc is set only for force-no-aliasing textures, which get
	// their own memory allocation outside the RMA bucket packing instead
	// of sharing a bucket with another resource.
	dedicatedAlloc gpu.Allocation
}

// State returns the tracked state of a mip level, Undefined if never seen.
func (w *TextureWrapper[K]) State(mip uint32) track.ResourceState {
	return w.States[mip]
}

// SetState records the new tracked state of a mip level.
func (w *TextureWrapper[K]) SetState(mip uint32, s track.ResourceState) {
	w.States[mip] = s
}

// BufferWrapper is a pooled buffer plus its single tracked state (buffers
// have no subresources in this model, per spec.md §3's subresourceIndex
// being "0 for buffers").
type BufferWrapper[K comparable] struct {
	ID     K
	Name   string
	Desc   BufferDescriptor
	Handle gpu.Buffer

	State track.ResourceState

	lastUsedFrame uint64
}
