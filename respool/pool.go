// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package respool

import (
	"fmt"

	"github.com/gogpu/rendergraph/deferred"
	"github.com/gogpu/rendergraph/gpu"
	"github.com/gogpu/rendergraph/memalias"
	"github.com/gogpu/rendergraph/track"
)

// Config tunes the pool's frame buffering depth, in the style of
// bindless.Config/DefaultConfig.
type Config struct {
	// BufferedFrameCount is the number of in-flight frame slots the host
	// and resizable-bar buffer vectors (and their aliasers) are replicated
	// across. Defaults to 2.
	BufferedFrameCount uint64
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config { return Config{BufferedFrameCount: 2} }

// Pool is the transient resource pool (spec.md §4.2). K is the caller's
// resource identity type, kept generic for the same reason memalias.Aliaser
// is: the graph package that will eventually own ResourceID must not be
// imported here.
type Pool[K comparable] struct {
	device gpu.Device
	del    *deferred.Queue
	cfg    Config

	currentFrame uint64

	deviceTextures []*TextureWrapper[K]
	deviceBuffers  []*BufferWrapper[K]
	hostBuffers    [][]*BufferWrapper[K]
	rebarBuffers   [][]*BufferWrapper[K]

	// DeviceRMA aliases every device-local texture and buffer; it is never
	// buffered per frame slot since device-local transients are reused
	// across frames without per-slot replication (spec.md §4.2).
	DeviceRMA *memalias.Aliaser[K]
	// HostRMA and RebarRMA hold one aliaser per buffered frame slot.
	HostRMA  []*memalias.Aliaser[K]
	RebarRMA []*memalias.Aliaser[K]
}

// New constructs an empty pool. del is the shared deferred deletion queue
// evicted GPU objects and superseded memory buckets are freed through.
func New[K comparable](device gpu.Device, del *deferred.Queue, cfg Config) *Pool[K] {
	if cfg.BufferedFrameCount == 0 {
		cfg.BufferedFrameCount = 2
	}
	p := &Pool[K]{
		device:       device,
		del:          del,
		cfg:          cfg,
		hostBuffers:  make([][]*BufferWrapper[K], cfg.BufferedFrameCount),
		rebarBuffers: make([][]*BufferWrapper[K], cfg.BufferedFrameCount),
		DeviceRMA:    memalias.New[K](device.Memory(), del),
		HostRMA:      make([]*memalias.Aliaser[K], cfg.BufferedFrameCount),
		RebarRMA:     make([]*memalias.Aliaser[K], cfg.BufferedFrameCount),
	}
	for i := range p.HostRMA {
		p.HostRMA[i] = memalias.New[K](device.Memory(), del)
		p.RebarRMA[i] = memalias.New[K](device.Memory(), del)
	}
	return p
}

func (p *Pool[K]) slot() uint64 { return p.currentFrame % p.cfg.BufferedFrameCount }

// AcquireTexture implements acquire_texture: reuse the first equivalent
// wrapper not already handed out this frame (lastUsedFrame < current
// frame), or create a fresh one. needsRebind reports
// whether the caller must re-register the wrapper with the device RMA
// because its underlying image was just (re)created.
func (p *Pool[K]) AcquireTexture(id K, name string, desc TextureDescriptor) (w *TextureWrapper[K], needsRebind bool, err error) {
	for _, entry := range p.deviceTextures {
		if entry.Desc.Equivalent(desc) && entry.lastUsedFrame < p.currentFrame {
			entry.lastUsedFrame = p.currentFrame
			entry.ID = id
			entry.Name = name
			if entry.Desc.Extent != desc.Extent {
				if err := p.recreateTexture(entry, desc); err != nil {
					return nil, false, err
				}
				entry.Desc = desc
				return entry, true, nil
			}
			return entry, false, nil
		}
	}

	handle, err := p.device.CreateTexture(textureHALDescriptor(name, desc))
	if err != nil {
		return nil, false, fmt.Errorf("respool: create texture %q: %w", name, err)
	}
	entry := &TextureWrapper[K]{
		ID: id, Name: name, Desc: desc, Handle: handle,
		States:        make(map[uint32]track.ResourceState),
		lastUsedFrame: p.currentFrame,
	}
	p.deviceTextures = append(p.deviceTextures, entry)
	return entry, true, nil
}

func (p *Pool[K]) recreateTexture(entry *TextureWrapper[K], desc TextureDescriptor) error {
	p.device.DestroyTexture(entry.Handle)
	if alloc := entry.dedicatedAlloc; alloc != nil {
		p.del.Push(p.currentFrame, func() { p.device.Memory().Free(alloc) })
		entry.dedicatedAlloc = nil
	}
	handle, err := p.device.CreateTexture(textureHALDescriptor(entry.Name, desc))
	if err != nil {
		return fmt.Errorf("respool: recreate texture %q: %w", entry.Name, err)
	}
	entry.Handle = handle
	entry.States = make(map[uint32]track.ResourceState)
	return nil
}

func textureHALDescriptor(name string, desc TextureDescriptor) *gpu.TextureDescriptor {
	return &gpu.TextureDescriptor{
		Label:         name,
		Dimension:     desc.Dimension,
		Size:          desc.Extent,
		Format:        desc.Format,
		Usage:         desc.Usage,
		MipLevelCount: desc.MipLevelCount,
		SampleCount:   desc.SampleCount,
	}
}

// AcquireBuffer implements acquire_buffer: dispatches to the device, host,
// or resizable-bar vector based on desc.ExtraFlags.
func (p *Pool[K]) AcquireBuffer(id K, name string, desc BufferDescriptor) (w *BufferWrapper[K], needsRebind bool, err error) {
	vec := p.bufferVector(desc.ExtraFlags.Class())

	for _, entry := range *vec {
		if entry.Desc.Equivalent(desc) && entry.lastUsedFrame < p.currentFrame {
			entry.lastUsedFrame = p.currentFrame
			entry.ID = id
			entry.Name = name
			if entry.Desc.byteSize() != desc.byteSize() {
				if err := p.recreateBuffer(entry, desc); err != nil {
					return nil, false, err
				}
				entry.Desc = desc
				return entry, true, nil
			}
			return entry, false, nil
		}
	}

	handle, err := p.device.CreateBuffer(&gpu.BufferDescriptor{Label: name, Size: desc.byteSize(), Usage: desc.Usage})
	if err != nil {
		return nil, false, fmt.Errorf("respool: create buffer %q: %w", name, err)
	}
	entry := &BufferWrapper[K]{ID: id, Name: name, Desc: desc, Handle: handle, lastUsedFrame: p.currentFrame}
	*vec = append(*vec, entry)
	return entry, true, nil
}

func (p *Pool[K]) recreateBuffer(entry *BufferWrapper[K], desc BufferDescriptor) error {
	p.device.DestroyBuffer(entry.Handle)
	handle, err := p.device.CreateBuffer(&gpu.BufferDescriptor{Label: entry.Name, Size: desc.byteSize(), Usage: desc.Usage})
	if err != nil {
		return fmt.Errorf("respool: recreate buffer %q: %w", entry.Name, err)
	}
	entry.Handle = handle
	entry.State = track.Undefined
	return nil
}

func (p *Pool[K]) bufferVector(class BufferClass) *[]*BufferWrapper[K] {
	switch class {
	case ClassHost:
		return &p.hostBuffers[p.slot()]
	case ClassResizableBar:
		return &p.rebarBuffers[p.slot()]
	default:
		return &p.deviceBuffers
	}
}

// rmaForBuffer returns the aliaser a buffer of the given class currently
// registers into.
func (p *Pool[K]) rmaForBuffer(class BufferClass) *memalias.Aliaser[K] {
	switch class {
	case ClassHost:
		return p.HostRMA[p.slot()]
	case ClassResizableBar:
		return p.RebarRMA[p.slot()]
	default:
		return p.DeviceRMA
	}
}

// RegisterTexture records a texture's memory requirements and effective
// lifetime with the device RMA, queuing a rebind when needsRebind is set.
func (p *Pool[K]) RegisterTexture(w *TextureWrapper[K], lifetime memalias.Lifetime, needsRebind bool, properties gpu.MemoryPropertyFlags, finalize func() error) {
	req := p.device.TextureMemoryRequirements(w.Handle)
	handle := w.Handle
	p.DeviceRMA.FillResourceInfo(w.ID, memalias.ResourceInfo{
		DebugName:    w.Name,
		Requirements: req,
		Properties:   properties,
		BindTexture: func(alloc gpu.Allocation, offset uint64) error {
			return p.device.Memory().BindTexture(handle, alloc, offset)
		},
		Finalize: finalize,
	}, lifetime, needsRebind)
}

// BindTextureDedicated allocates and binds w's own memory directly through
// the device allocator instead of feeding it into the device RMA's bucket
// packing — the force-no-aliasing path (spec.md §4.3, SPEC_FULL.md §12
// item 4), matching the original's guard of the whole FillResourceInfo call
// with `!bForceNoMemoryAliasing`. needsRebind mirrors RegisterTexture's
// meaning: the underlying image was just (re)created and needs a fresh
// allocation even if one already existed.
func (p *Pool[K]) BindTextureDedicated(w *TextureWrapper[K], needsRebind bool, properties gpu.MemoryPropertyFlags, finalize func() error) error {
	if w.dedicatedAlloc != nil && !needsRebind {
		return nil
	}
	req := p.device.TextureMemoryRequirements(w.Handle)
	alloc, err := p.device.Memory().Allocate(req, properties)
	if err != nil {
		return fmt.Errorf("respool: allocate dedicated memory for texture %q: %w", w.Name, err)
	}
	if err := p.device.Memory().BindTexture(w.Handle, alloc, 0); err != nil {
		p.device.Memory().Free(alloc)
		return fmt.Errorf("respool: bind dedicated texture %q: %w", w.Name, err)
	}
	w.dedicatedAlloc = alloc
	if finalize != nil {
		if err := finalize(); err != nil {
			return fmt.Errorf("respool: finalize dedicated texture %q: %w", w.Name, err)
		}
	}
	return nil
}

// RegisterBuffer records a buffer's memory requirements and effective
// lifetime with the RMA matching its class and current frame slot.
func (p *Pool[K]) RegisterBuffer(w *BufferWrapper[K], lifetime memalias.Lifetime, needsRebind bool, properties gpu.MemoryPropertyFlags, finalize func() error) {
	req := p.device.BufferMemoryRequirements(w.Handle)
	handle := w.Handle
	p.rmaForBuffer(w.Desc.ExtraFlags.Class()).FillResourceInfo(w.ID, memalias.ResourceInfo{
		DebugName:    w.Name,
		Requirements: req,
		Properties:   properties,
		BindBuffer: func(alloc gpu.Allocation, offset uint64) error {
			return p.device.Memory().BindBuffer(handle, alloc, offset)
		},
		Finalize: finalize,
	}, lifetime, needsRebind)
}

// Tick advances the frame index, evicts entries unused for more than
// BufferedFrameCount frames (destroying their GPU object through the
// deferred deletion queue), resets state tracking on retained entries, and
// clears the current frame slot's host/ReBAR RMA bookkeeping.
func (p *Pool[K]) Tick(frame uint64) {
	p.currentFrame = frame

	p.deviceTextures = evictTextures(p.deviceTextures, frame, p.cfg.BufferedFrameCount, func(w *TextureWrapper[K]) {
		handle := w.Handle
		p.del.Push(frame, func() { p.device.DestroyTexture(handle) })
		if alloc := w.dedicatedAlloc; alloc != nil {
			p.del.Push(frame, func() { p.device.Memory().Free(alloc) })
		}
	})
	for _, w := range p.deviceTextures {
		w.States = make(map[uint32]track.ResourceState)
	}

	p.deviceBuffers = evictBuffers(p.deviceBuffers, frame, p.cfg.BufferedFrameCount, func(w *BufferWrapper[K]) {
		handle := w.Handle
		p.del.Push(frame, func() { p.device.DestroyBuffer(handle) })
	})
	for _, w := range p.deviceBuffers {
		w.State = track.Undefined
	}

	slot := p.slot()
	p.hostBuffers[slot] = evictBuffers(p.hostBuffers[slot], frame, p.cfg.BufferedFrameCount, func(w *BufferWrapper[K]) {
		handle := w.Handle
		p.del.Push(frame, func() { p.device.DestroyBuffer(handle) })
	})
	for _, w := range p.hostBuffers[slot] {
		w.State = track.Undefined
	}
	p.rebarBuffers[slot] = evictBuffers(p.rebarBuffers[slot], frame, p.cfg.BufferedFrameCount, func(w *BufferWrapper[K]) {
		handle := w.Handle
		p.del.Push(frame, func() { p.device.DestroyBuffer(handle) })
	})
	for _, w := range p.rebarBuffers[slot] {
		w.State = track.Undefined
	}

	p.HostRMA[slot].ClearState()
	p.RebarRMA[slot].ClearState()
}

func evictTextures[K comparable](vec []*TextureWrapper[K], frame, buffered uint64, onEvict func(*TextureWrapper[K])) []*TextureWrapper[K] {
	out := vec[:0]
	for _, w := range vec {
		if w.lastUsedFrame+buffered < frame {
			onEvict(w)
			continue
		}
		out = append(out, w)
	}
	return out
}

func evictBuffers[K comparable](vec []*BufferWrapper[K], frame, buffered uint64, onEvict func(*BufferWrapper[K])) []*BufferWrapper[K] {
	out := vec[:0]
	for _, w := range vec {
		if w.lastUsedFrame+buffered < frame {
			onEvict(w)
			continue
		}
		out = append(out, w)
	}
	return out
}

// BindResourcesToMemoryRegions invokes RMA finalize on the device RMA and
// the current frame slot's host and ReBAR RMAs (spec.md §4.2).
func (p *Pool[K]) BindResourcesToMemoryRegions() error {
	if err := p.DeviceRMA.Rebuild(p.currentFrame); err != nil {
		return fmt.Errorf("respool: rebuild device RMA: %w", err)
	}
	if err := p.DeviceRMA.Finalize(); err != nil {
		return fmt.Errorf("respool: finalize device RMA: %w", err)
	}

	slot := p.slot()
	if err := p.HostRMA[slot].Rebuild(p.currentFrame); err != nil {
		return fmt.Errorf("respool: rebuild host RMA: %w", err)
	}
	if err := p.HostRMA[slot].Finalize(); err != nil {
		return fmt.Errorf("respool: finalize host RMA: %w", err)
	}
	if err := p.RebarRMA[slot].Rebuild(p.currentFrame); err != nil {
		return fmt.Errorf("respool: rebuild ReBAR RMA: %w", err)
	}
	if err := p.RebarRMA[slot].Finalize(); err != nil {
		return fmt.Errorf("respool: finalize ReBAR RMA: %w", err)
	}
	return nil
}
