// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package memalias

import (
	"testing"

	"github.com/gogpu/rendergraph/deferred"
	"github.com/gogpu/rendergraph/gpu"
	"github.com/gogpu/rendergraph/gpu/noop"
)

func newTestAliaser(t *testing.T) (*Aliaser[string], *noop.MemoryAllocator) {
	t.Helper()
	mem := noop.NewDevice().Memory().(*noop.MemoryAllocator)
	del := deferred.New(2)
	return New[string](mem, del), mem
}

func TestAliaser_DisjointLifetimesShareOneBucket(t *testing.T) {
	a, _ := newTestAliaser(t)

	req := gpu.MemoryRequirements{Size: 1024, Alignment: 256, MemoryTypeBits: 0x1}
	props := gpu.MemoryPropertyDeviceLocal

	a.FillResourceInfo("a", ResourceInfo{DebugName: "a", Requirements: req, Properties: props}, Lifetime{Begin: 0, End: 1}, true)
	a.FillResourceInfo("b", ResourceInfo{DebugName: "b", Requirements: req, Properties: props}, Lifetime{Begin: 2, End: 3}, true)

	if err := a.Rebuild(0); err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}
	if err := a.Finalize(); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	if got := len(a.Buckets()); got != 1 {
		t.Fatalf("bucket count = %d, want 1 (disjoint lifetimes should alias into one bucket)", got)
	}
	if got := a.Buckets()[0].Size(); got != req.Size {
		t.Fatalf("bucket size = %d, want %d (aliasing must not inflate memory)", got, req.Size)
	}
}

func TestAliaser_OverlappingLifetimesGetSeparateBuckets(t *testing.T) {
	a, _ := newTestAliaser(t)

	req := gpu.MemoryRequirements{Size: 512, Alignment: 256, MemoryTypeBits: 0x1}
	props := gpu.MemoryPropertyDeviceLocal

	a.FillResourceInfo("a", ResourceInfo{DebugName: "a", Requirements: req, Properties: props}, Lifetime{Begin: 0, End: 2}, true)
	a.FillResourceInfo("b", ResourceInfo{DebugName: "b", Requirements: req, Properties: props}, Lifetime{Begin: 1, End: 3}, true)

	if err := a.Rebuild(0); err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}
	if err := a.Finalize(); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	if got := len(a.Buckets()); got != 2 {
		t.Fatalf("bucket count = %d, want 2 (overlapping lifetimes must not alias)", got)
	}
}

func TestAliaser_FinalizeBindsEveryMember(t *testing.T) {
	a, _ := newTestAliaser(t)

	req := gpu.MemoryRequirements{Size: 256, Alignment: 64, MemoryTypeBits: 0x1}
	props := gpu.MemoryPropertyDeviceLocal

	var boundA, boundB bool
	a.FillResourceInfo("a", ResourceInfo{
		DebugName: "a", Requirements: req, Properties: props,
		BindBuffer: func(gpu.Allocation, uint64) error { boundA = true; return nil },
	}, Lifetime{Begin: 0, End: 0}, true)
	a.FillResourceInfo("b", ResourceInfo{
		DebugName: "b", Requirements: req, Properties: props,
		BindBuffer: func(gpu.Allocation, uint64) error { boundB = true; return nil },
	}, Lifetime{Begin: 1, End: 1}, true)

	if err := a.Rebuild(0); err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}
	if err := a.Finalize(); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	if !boundA || !boundB {
		t.Fatalf("BindBuffer called = (a:%v b:%v), want both true", boundA, boundB)
	}
}

func TestAliaser_RebuildFreesSupersededBucketsThroughDeferred(t *testing.T) {
	a, mem := newTestAliaser(t)
	del := deferred.New(2)
	a.del = del

	req := gpu.MemoryRequirements{Size: 128, Alignment: 64, MemoryTypeBits: 0x1}
	props := gpu.MemoryPropertyDeviceLocal

	a.FillResourceInfo("a", ResourceInfo{DebugName: "a", Requirements: req, Properties: props}, Lifetime{Begin: 0, End: 0}, true)
	if err := a.Rebuild(0); err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}
	if err := a.Finalize(); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	// Force a rebuild by adding a new resource.
	a.FillResourceInfo("b", ResourceInfo{DebugName: "b", Requirements: req, Properties: props}, Lifetime{Begin: 1, End: 1}, true)
	if !a.NeedsRebuild() {
		t.Fatalf("NeedsRebuild() = false after adding a resource, want true")
	}
	if err := a.Rebuild(1); err != nil {
		t.Fatalf("second Rebuild() error = %v", err)
	}
	if err := a.Finalize(); err != nil {
		t.Fatalf("second Finalize() error = %v", err)
	}

	del.Tick(1)
	del.Tick(2)
	del.Tick(3)

	_, freed := mem.Stats()
	if freed == 0 {
		t.Fatalf("expected the superseded bucket's allocation to be freed through the deferred queue")
	}
}

func TestAliaser_NeedsRebuildOnRequirementsDrift(t *testing.T) {
	a, _ := newTestAliaser(t)
	req := gpu.MemoryRequirements{Size: 64, Alignment: 64, MemoryTypeBits: 0x1}
	props := gpu.MemoryPropertyDeviceLocal

	a.FillResourceInfo("a", ResourceInfo{DebugName: "a", Requirements: req, Properties: props}, Lifetime{Begin: 0, End: 0}, true)
	if err := a.Rebuild(0); err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}
	if err := a.Finalize(); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	if a.NeedsRebuild() {
		t.Fatalf("NeedsRebuild() = true immediately after a clean Rebuild/Finalize, want false")
	}

	grown := req
	grown.Size = 128
	a.FillResourceInfo("a", ResourceInfo{DebugName: "a", Requirements: grown, Properties: props}, Lifetime{Begin: 0, End: 0}, false)
	if !a.NeedsRebuild() {
		t.Fatalf("NeedsRebuild() = false after requirements grew, want true")
	}
}
