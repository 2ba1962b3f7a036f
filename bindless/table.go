// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package bindless implements the process-wide bindless descriptor table
// (spec.md §4.1): four independent index pools backing the single
// bindless pipeline layout (SPEC_FULL.md §11) every graphics/compute
// pipeline the render graph creates shares. Grounded on the teacher's
// Vulkan descriptor pool allocator (hal/vulkan/descriptor.go), adapted from
// pool-of-sets bookkeeping to per-slot index bookkeeping since a bindless
// layout hands out array indices, not whole descriptor sets, per publish.
package bindless

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/rendergraph/deferred"
	"github.com/gogpu/rendergraph/gpu"
	"github.com/gogpu/rendergraph/track"
)

// Binding identifies one of the four bindless array bindings.
type Binding int

const (
	BindingStorageImage Binding = iota
	BindingSampledImage
	BindingCombinedImageSampler
	BindingSampler
	bindingCount
)

// ErrInvalidArgument is returned by Publish when the image/sampler
// arguments required for the binding kind are missing (spec.md §4.1).
var ErrInvalidArgument = errors.New("bindless: invalid argument for binding")

// ImageInfo bundles the resources a Publish call needs; which fields are
// required depends on the binding (spec.md §4.1's "fails ... if image view
// absent for non-sampler bindings or sampler absent for sampler/combined
// bindings").
type ImageInfo struct {
	View    gpu.TextureView
	Sampler gpu.Sampler
}

// Config tunes pool growth, following the shape of the teacher's
// DescriptorAllocatorConfig/DefaultDescriptorAllocatorConfig.
type Config struct {
	// BufferedFrameCount is the number of in-flight frame slots, each
	// owning its own bind group. Defaults to 2.
	BufferedFrameCount uint32
	// Capacity is the initial array size for each binding. Defaults to 4096.
	Capacity uint32
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{BufferedFrameCount: 2, Capacity: 4096}
}

// Table is the bindless descriptor table. One Table is shared by every
// frame of a render graph's lifetime; it is the "bindless slot allocator"
// spec.md §5 calls out as one of only two pieces of cross-thread shared
// state guarded by a mutex (the other is the deferred deletion queue).
type Table struct {
	mu     sync.Mutex
	device gpu.Device
	layout gpu.BindGroupLayout
	sets   []gpu.BindGroup // one per buffered frame slot
	pools  [bindingCount]*track.Allocator
	del    *deferred.Queue
}

// New creates a bindless table with one bind group per buffered frame slot,
// all sharing a single layout with four array bindings (spec.md §6).
func New(device gpu.Device, del *deferred.Queue, cfg Config) (*Table, error) {
	if cfg.BufferedFrameCount == 0 {
		cfg.BufferedFrameCount = 2
	}
	if cfg.Capacity == 0 {
		cfg.Capacity = 4096
	}

	layout, err := device.CreateBindGroupLayout(&gpu.BindGroupLayoutDescriptor{
		Label: "bindless-layout",
		Entries: []gpu.BindGroupLayoutEntry{
			{Binding: uint32(BindingStorageImage), Visibility: gpu.ShaderStageCompute, Kind: gpu.BindingStorageImage, Count: cfg.Capacity},
			{Binding: uint32(BindingSampledImage), Visibility: gpu.ShaderStageFragment | gpu.ShaderStageCompute, Kind: gpu.BindingSampledImage, Count: cfg.Capacity},
			{Binding: uint32(BindingCombinedImageSampler), Visibility: gpu.ShaderStageFragment | gpu.ShaderStageCompute, Kind: gpu.BindingCombinedImageSampler, Count: cfg.Capacity},
			{Binding: uint32(BindingSampler), Visibility: gpu.ShaderStageFragment | gpu.ShaderStageCompute, Kind: gpu.BindingSampler, Count: cfg.Capacity},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("bindless: create layout: %w", err)
	}

	t := &Table{device: device, layout: layout, del: del}
	for i := range t.pools {
		t.pools[i] = track.NewAllocator()
	}

	for i := uint32(0); i < cfg.BufferedFrameCount; i++ {
		set, err := device.CreateBindGroup(&gpu.BindGroupDescriptor{Label: "bindless-set", Layout: layout})
		if err != nil {
			return nil, fmt.Errorf("bindless: create set %d: %w", i, err)
		}
		t.sets = append(t.sets, set)
	}
	return t, nil
}

// Layout returns the shared bindless layout every pipeline is built against.
func (t *Table) Layout() gpu.BindGroupLayout { return t.layout }

// Sets returns the per-frame-slot bind groups, in frame-slot order.
func (t *Table) Sets() []gpu.BindGroup {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]gpu.BindGroup, len(t.sets))
	copy(out, t.sets)
	return out
}

// Publish allocates the smallest free index for binding and writes the
// descriptor into every buffered frame's set, so the slot is safely
// readable starting with the next frame's command buffer (spec.md §4.1:
// "publishes complete before command recording of the frame in which the
// slot is first referenced").
func (t *Table) Publish(binding Binding, info ImageInfo) (track.Index, error) {
	if err := validate(binding, info); err != nil {
		return track.InvalidIndex, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	idx := t.pools[binding].Alloc()
	entry := gpu.BindGroupEntry{Binding: uint32(binding), Texture: info.View, Sampler: info.Sampler}
	for _, set := range t.sets {
		t.device.UpdateBindGroup(set, []gpu.BindGroupEntry{entry})
	}
	return idx, nil
}

// Release schedules slotIndex for recycling once bufferedFrameCount frames
// have elapsed from currentFrame, via the shared deferred deletion queue —
// spec.md §3's invariant that "every bindless slot released in frame F is
// not reused before frame F + buffered-frame-count" holds because the pool
// free-list push only happens when the deferred action actually runs.
func (t *Table) Release(binding Binding, slotIndex track.Index, currentFrame uint64) {
	t.del.Push(currentFrame, func() {
		t.mu.Lock()
		t.pools[binding].Free(slotIndex)
		t.mu.Unlock()
	})
}

func validate(binding Binding, info ImageInfo) error {
	switch binding {
	case BindingStorageImage, BindingSampledImage:
		if info.View == nil {
			return fmt.Errorf("%w: binding %d requires an image view", ErrInvalidArgument, binding)
		}
	case BindingCombinedImageSampler:
		if info.View == nil || info.Sampler == nil {
			return fmt.Errorf("%w: combined-image-sampler binding requires both a view and a sampler", ErrInvalidArgument)
		}
	case BindingSampler:
		if info.Sampler == nil {
			return fmt.Errorf("%w: sampler binding requires a sampler", ErrInvalidArgument)
		}
	default:
		return fmt.Errorf("%w: unknown binding %d", ErrInvalidArgument, binding)
	}
	return nil
}

// Destroy releases the layout and every frame-slot bind group.
func (t *Table) Destroy() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, set := range t.sets {
		t.device.DestroyBindGroup(set)
	}
	t.sets = nil
	t.device.DestroyBindGroupLayout(t.layout)
}
