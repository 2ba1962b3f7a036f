// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package respool

import (
	"testing"

	"github.com/gogpu/rendergraph/deferred"
	"github.com/gogpu/rendergraph/gpu"
	"github.com/gogpu/rendergraph/gpu/noop"
	"github.com/gogpu/rendergraph/memalias"
)

func newTestPool(t *testing.T) (*Pool[string], *noop.Device) {
	t.Helper()
	device := noop.NewDevice()
	del := deferred.New(2)
	return New[string](device, del, DefaultConfig()), device
}

func colorTarget() TextureDescriptor {
	return TextureDescriptor{
		Dimension: gpu.TextureDimension2D,
		Extent:    gpu.Extent3D{Width: 1920, Height: 1080, DepthOrArrayLayers: 1},
		Format:    gpu.TextureFormat(0),
		Usage:     gpu.TextureUsageRenderAttachment,
	}
}

func TestPool_AcquireTextureReusesAcrossFrames(t *testing.T) {
	p, _ := newTestPool(t)

	w1, needsRebind, err := p.AcquireTexture("gbuffer", "gbuffer", colorTarget())
	if err != nil {
		t.Fatalf("AcquireTexture() error = %v", err)
	}
	if !needsRebind {
		t.Fatalf("first acquire needsRebind = false, want true (freshly created)")
	}

	p.Tick(1)

	w2, needsRebind, err := p.AcquireTexture("gbuffer", "gbuffer", colorTarget())
	if err != nil {
		t.Fatalf("AcquireTexture() error = %v", err)
	}
	if needsRebind {
		t.Fatalf("reused acquire needsRebind = true, want false (same extent)")
	}
	if w1 != w2 {
		t.Fatalf("expected the same wrapper to be reused across frames")
	}
}

func TestPool_AcquireTextureRecreatesOnExtentMismatch(t *testing.T) {
	p, _ := newTestPool(t)

	w1, _, err := p.AcquireTexture("gbuffer", "gbuffer", colorTarget())
	if err != nil {
		t.Fatalf("AcquireTexture() error = %v", err)
	}
	originalHandle := w1.Handle

	p.Tick(1)

	resized := colorTarget()
	resized.Extent.Width = 3840
	w2, needsRebind, err := p.AcquireTexture("gbuffer", "gbuffer", resized)
	if err != nil {
		t.Fatalf("AcquireTexture() error = %v", err)
	}
	if !needsRebind {
		t.Fatalf("resized acquire needsRebind = false, want true")
	}
	if w2.Handle == originalHandle {
		t.Fatalf("expected the underlying image to be recreated on extent mismatch")
	}
}

func TestPool_AcquireBufferDispatchesByClass(t *testing.T) {
	p, _ := newTestPool(t)

	rebarDesc := BufferDescriptor{Capacity: 256, Usage: gpu.BufferUsageUniform, ExtraFlags: BufferDeviceLocal | BufferHost}
	if _, _, err := p.AcquireBuffer("ubo", "ubo", rebarDesc); err != nil {
		t.Fatalf("AcquireBuffer() error = %v", err)
	}
	if len(p.rebarBuffers[0]) != 1 {
		t.Fatalf("resizable-bar buffer landed in %d rebar slots, want 1 (device+host flags together must win as ReBAR)", len(p.rebarBuffers[0]))
	}
	if len(p.hostBuffers[0]) != 0 || len(p.deviceBuffers) != 0 {
		t.Fatalf("resizable-bar buffer leaked into host/device vectors")
	}
}

func TestPool_TickEvictsStaleEntriesAfterBufferedFrames(t *testing.T) {
	p, _ := newTestPool(t)

	if _, _, err := p.AcquireTexture("shadow", "shadow", colorTarget()); err != nil {
		t.Fatalf("AcquireTexture() error = %v", err)
	}
	if len(p.deviceTextures) != 1 {
		t.Fatalf("expected one pooled texture after acquire")
	}

	// lastUsedFrame=0, buffered=2: evicted once frame > 0+2.
	p.Tick(1)
	if len(p.deviceTextures) != 1 {
		t.Fatalf("texture evicted too early at frame 1")
	}
	p.Tick(2)
	if len(p.deviceTextures) != 1 {
		t.Fatalf("texture evicted too early at frame 2")
	}
	p.Tick(3)
	if len(p.deviceTextures) != 0 {
		t.Fatalf("texture still pooled at frame 3, want evicted")
	}
}

func TestPool_BindTextureDedicatedNeverEntersDeviceRMA(t *testing.T) {
	p, _ := newTestPool(t)

	desc := colorTarget()
	desc.CreateFlags = TextureForceNoAliasing
	w, needsRebind, err := p.AcquireTexture("history", "history", desc)
	if err != nil {
		t.Fatalf("AcquireTexture() error = %v", err)
	}

	if err := p.BindTextureDedicated(w, needsRebind, gpu.MemoryPropertyDeviceLocal, nil); err != nil {
		t.Fatalf("BindTextureDedicated() error = %v", err)
	}
	if err := p.BindResourcesToMemoryRegions(); err != nil {
		t.Fatalf("BindResourcesToMemoryRegions() error = %v", err)
	}

	if got := len(p.DeviceRMA.Buckets()); got != 0 {
		t.Fatalf("device RMA bucket count = %d, want 0 (force-no-aliasing texture must never enter bucket packing)", got)
	}
	if w.dedicatedAlloc == nil {
		t.Fatalf("expected a dedicated allocation to be recorded on the wrapper")
	}
}

func TestPool_BindTextureDedicatedSkipsReallocationWithoutRebind(t *testing.T) {
	p, _ := newTestPool(t)

	desc := colorTarget()
	desc.CreateFlags = TextureForceNoAliasing
	w, needsRebind, err := p.AcquireTexture("history", "history", desc)
	if err != nil {
		t.Fatalf("AcquireTexture() error = %v", err)
	}
	if err := p.BindTextureDedicated(w, needsRebind, gpu.MemoryPropertyDeviceLocal, nil); err != nil {
		t.Fatalf("BindTextureDedicated() error = %v", err)
	}
	first := w.dedicatedAlloc

	if err := p.BindTextureDedicated(w, false, gpu.MemoryPropertyDeviceLocal, nil); err != nil {
		t.Fatalf("BindTextureDedicated() error = %v", err)
	}
	if w.dedicatedAlloc != first {
		t.Fatalf("expected the dedicated allocation to be reused when needsRebind is false")
	}
}

func TestPool_BindResourcesToMemoryRegionsFinalizesAllThreeClasses(t *testing.T) {
	p, _ := newTestPool(t)

	bw, needsRebind, err := p.AcquireBuffer("ubo", "ubo", BufferDescriptor{Capacity: 256, Usage: gpu.BufferUsageUniform})
	if err != nil {
		t.Fatalf("AcquireBuffer() error = %v", err)
	}
	p.RegisterBuffer(bw, memalias.Lifetime{Begin: 0, End: 0}, needsRebind, gpu.MemoryPropertyDeviceLocal, nil)

	hw, hostRebind, err := p.AcquireBuffer("staging", "staging", BufferDescriptor{Capacity: 256, Usage: gpu.BufferUsageCopySrc, ExtraFlags: BufferHost})
	if err != nil {
		t.Fatalf("AcquireBuffer(host) error = %v", err)
	}
	p.RegisterBuffer(hw, memalias.Lifetime{Begin: 0, End: 0}, hostRebind, gpu.MemoryPropertyHostVisible|gpu.MemoryPropertyHostCoherent, nil)

	rw, rebarRebind, err := p.AcquireBuffer("params", "params", BufferDescriptor{Capacity: 256, Usage: gpu.BufferUsageUniform, ExtraFlags: BufferResizableBar})
	if err != nil {
		t.Fatalf("AcquireBuffer(rebar) error = %v", err)
	}
	p.RegisterBuffer(rw, memalias.Lifetime{Begin: 0, End: 0}, rebarRebind, gpu.MemoryPropertyDeviceLocal|gpu.MemoryPropertyHostVisible|gpu.MemoryPropertyHostCoherent, nil)

	if err := p.BindResourcesToMemoryRegions(); err != nil {
		t.Fatalf("BindResourcesToMemoryRegions() error = %v", err)
	}
	if got := len(p.DeviceRMA.Buckets()); got != 1 {
		t.Fatalf("device RMA bucket count = %d, want 1", got)
	}
	if got := len(p.HostRMA[0].Buckets()); got != 1 {
		t.Fatalf("host RMA bucket count = %d, want 1", got)
	}
	if got := len(p.RebarRMA[0].Buckets()); got != 1 {
		t.Fatalf("ReBAR RMA bucket count = %d, want 1", got)
	}
}
