// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package memalias implements the Resource Memory Aliaser (spec.md §4.3):
// packing transient GPU resources with non-overlapping effective lifetimes
// into shared memory allocations. Grounded on the original Radiant render
// graph's ResourceMemoryAliaser (original_source/Source/Render/RenderGraph.hpp,
// lines ~380-503, and the packing loop in RenderGraph.cpp's
// BindResourcesToMemoryRegions/FindBestMemoryRegion), generalized from C++
// pointer-heavy bucket vectors to a Go generic type parameterized over the
// resource key, and adapted to call through gpu.MemoryAllocator instead of
// a native Vulkan allocator.
package memalias

import (
	"fmt"
	"sort"

	"github.com/gogpu/rendergraph/deferred"
	"github.com/gogpu/rendergraph/gpu"
)

// ResourceInfo mirrors the original's RenderGraphResourceInfo: everything
// the aliaser needs about a resource besides its lifetime.
type ResourceInfo struct {
	DebugName    string
	Requirements gpu.MemoryRequirements
	Properties   gpu.MemoryPropertyFlags

	// BindBuffer/BindTexture perform the backend bind call once this
	// resource's bucket offset is known; exactly one should be set.
	BindBuffer  func(gpu.Allocation, uint64) error
	BindTexture func(gpu.Allocation, uint64) error
	// Finalize runs after binding: create views, publish bindless slots.
	Finalize func() error
}

// Lifetime is the closed [firstPassIndex, lastPassIndex] interval a
// resource is used within, in topological order (spec.md §3).
type Lifetime struct {
	Begin int
	End   int
}

// Intersects reports whether two lifetimes overlap, using the original's
// DoEffectiveLifetimesIntersect test: lhs.Begin <= rhs.End && rhs.Begin <= lhs.End.
func (l Lifetime) Intersects(o Lifetime) bool {
	return l.Begin <= o.End && o.Begin <= l.End
}

// member is one resource attached inside a bucket, named
// RenderGraphOverlappedResource in the original.
type member[K comparable] struct {
	id     K
	info   ResourceInfo
	offset uint64
}

// Bucket is a single memory allocation hosting one or more non-overlapping
// aliased resources.
type Bucket[K comparable] struct {
	properties   gpu.MemoryPropertyFlags
	requirements gpu.MemoryRequirements
	allocation   gpu.Allocation
	members      []member[K]
}

// Members exposes a bucket's aliased resource ids, for stats and tests.
func (b *Bucket[K]) Members() []K {
	out := make([]K, len(b.members))
	for i, m := range b.members {
		out[i] = m.id
	}
	return out
}

// Size returns the bucket's allocation size (0 before Finalize has run).
func (b *Bucket[K]) Size() uint64 {
	if b.allocation != nil {
		return b.allocation.Size()
	}
	return b.requirements.Size
}

// Aliaser packs resources of key type K into Buckets. One Aliaser instance
// backs each of the pool's three memory classes (device, host, ReBAR); host
// and ReBAR are buffered per frame slot per spec.md §4.2, so the transient
// pool owns one Aliaser per frame slot for those two classes and a single
// shared instance for the device class.
type Aliaser[K comparable] struct {
	allocator gpu.MemoryAllocator
	del       *deferred.Queue

	infos     map[K]ResourceInfo
	lifetimes map[K]Lifetime
	rebind    map[K]bool
	buckets   []*Bucket[K]

	// bucketOf tracks which bucket (if any) currently hosts each resource,
	// so defragmentation can free the old allocation through del.
	bucketOf map[K]*Bucket[K]
}

// New creates an empty aliaser. allocator is the backend memory allocator
// to bind through; del is the shared deferred deletion queue old bucket
// allocations are freed through (spec.md §4.3 step 1).
func New[K comparable](allocator gpu.MemoryAllocator, del *deferred.Queue) *Aliaser[K] {
	return &Aliaser[K]{
		allocator: allocator,
		del:       del,
		infos:     make(map[K]ResourceInfo),
		lifetimes: make(map[K]Lifetime),
		rebind:    make(map[K]bool),
		bucketOf:  make(map[K]*Bucket[K]),
	}
}

// FillResourceInfo records (or updates) a resource's memory requirements
// and effective lifetime ahead of a Rebuild. needsRebind marks a resource
// whose underlying GPU object was just (re)created this frame and
// therefore must be re-bound even if the bucket layout doesn't otherwise
// change (spec.md §4.2's "marked as needing rebind" on extent mismatch).
func (a *Aliaser[K]) FillResourceInfo(id K, info ResourceInfo, lifetime Lifetime, needsRebind bool) {
	a.infos[id] = info
	a.lifetimes[id] = lifetime
	if needsRebind {
		a.rebind[id] = true
	}
}

// Forget removes a resource from aliaser bookkeeping, e.g. when the
// transient pool evicts it. The resource's current bucket, if any, is left
// in place; the next Rebuild will notice the count mismatch and repack.
func (a *Aliaser[K]) Forget(id K) {
	delete(a.infos, id)
	delete(a.lifetimes, id)
	delete(a.rebind, id)
	delete(a.bucketOf, id)
}

// NeedsRebuild reports the defragmentation trigger from spec.md §4.3:
// rebuild when the tracked resource count differs from what buckets
// currently hold, when any resource's stored flags/requirements drifted
// from the live map entry, or when the rebind set is non-empty.
func (a *Aliaser[K]) NeedsRebuild() bool {
	if len(a.rebind) > 0 {
		return true
	}
	total := 0
	for _, b := range a.buckets {
		for _, m := range b.members {
			total++
			info, ok := a.infos[m.id]
			if !ok || info.Properties != m.info.Properties || info.Requirements != m.info.Requirements {
				return true
			}
		}
	}
	return total != len(a.infos)
}

// Rebuild runs the packing algorithm (spec.md §4.3 steps 1-5) only when
// NeedsRebuild reports true; it is always safe to call unconditionally.
func (a *Aliaser[K]) Rebuild(currentFrame uint64) error {
	if !a.NeedsRebuild() {
		return nil
	}

	// Step 1: free existing bucket allocations through deferred deletion.
	for _, b := range a.buckets {
		alloc := b.allocation
		if alloc != nil {
			a.del.Push(currentFrame, func() { a.allocator.Free(alloc) })
		}
	}
	a.buckets = nil
	a.bucketOf = make(map[K]*Bucket[K])

	// Step 2: resources not in the rebind set keep their cached
	// requirements; the rebind set is cleared once consumed since the
	// caller is expected to have already recreated those GPU objects and
	// refreshed their ResourceInfo via FillResourceInfo.
	a.rebind = make(map[K]bool)

	// Step 3: sort ids by memory size ascending, then pop largest-first.
	ids := make([]K, 0, len(a.infos))
	for id := range a.infos {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return a.infos[ids[i]].Requirements.Size < a.infos[ids[j]].Requirements.Size
	})

	for i := len(ids) - 1; i >= 0; i-- {
		id := ids[i]
		a.place(id)
	}

	return nil
}

// place runs step 4/5 of the packing algorithm for a single resource.
func (a *Aliaser[K]) place(id K) {
	info := a.infos[id]
	lifetime := a.lifetimes[id]

	var (
		bestBucket *Bucket[K]
		bestOffset uint64
		bestFit    uint64 = ^uint64(0)
	)

	for _, b := range a.buckets {
		if len(b.members) == 0 || b.properties != info.Properties {
			continue
		}
		seed := b.members[0]
		if a.lifetimes[seed.id].Intersects(lifetime) {
			continue
		}
		offset, fits := findGap(b, a.lifetimes, lifetime, info.Requirements)
		if !fits {
			continue
		}
		resultingSize := offset + info.Requirements.Size
		if resultingSize < bestFit {
			bestFit = resultingSize
			bestBucket = b
			bestOffset = offset
		}
	}

	if bestBucket == nil {
		bestBucket = &Bucket[K]{
			properties:   info.Properties,
			requirements: info.Requirements,
		}
		a.buckets = append(a.buckets, bestBucket)
		bestOffset = 0
	}

	bestBucket.members = append(bestBucket.members, member[K]{id: id, info: info, offset: bestOffset})
	if sz := bestOffset + info.Requirements.Size; sz > bestBucket.requirements.Size {
		bestBucket.requirements.Size = sz
	}
	a.bucketOf[id] = bestBucket
}

// point is a START/END event on the byte-offset sweep line.
type point struct {
	offset uint64
	kind   int // 0 = START, 1 = END
}

// findGap builds the sorted non-aliasable byte-interval list by sweeping
// every resource already in the bucket whose lifetime intersects
// candidateLifetime, then walks adjacent point pairs looking for a gap
// wide enough (after alignment) for candidateReq — the original's
// BuildNonAliasableMemoryOffsetList + tightest-fit loop.
func findGap[K comparable](b *Bucket[K], lifetimes map[K]Lifetime, candidateLifetime Lifetime, candidateReq gpu.MemoryRequirements) (uint64, bool) {
	// The sentinels are an END at 0 and a START at the bucket's end, and the
	// sweep starts at depth 1, so free space before the first and after the
	// last intersecting resource shows up as a depth-0 gap like any other.
	var points []point
	points = append(points, point{offset: 0, kind: 1})
	bucketEnd := b.requirements.Size
	for _, m := range b.members {
		if !lifetimes[m.id].Intersects(candidateLifetime) {
			continue
		}
		start := m.offset
		end := m.offset + m.info.Requirements.Size
		points = append(points, point{offset: start, kind: 0}, point{offset: end, kind: 1})
		if end > bucketEnd {
			bucketEnd = end
		}
	}
	points = append(points, point{offset: bucketEnd, kind: 0})
	sort.Slice(points, func(i, j int) bool {
		if points[i].offset != points[j].offset {
			return points[i].offset < points[j].offset
		}
		return points[i].kind < points[j].kind // START before END at same offset
	})

	depth := 1
	var gapStart uint64
	var best uint64
	found := false
	for i, p := range points {
		before := depth
		if p.kind == 0 {
			depth++
		} else {
			depth--
		}
		if before > 0 && depth == 0 && i+1 < len(points) {
			gapStart = p.offset
		}
		if depth == 0 && before == 0 {
			gapStart = p.offset
		}
		if depth == 0 && i+1 < len(points) {
			gapEnd := points[i+1].offset
			aligned := alignUp(gapStart, candidateReq.Alignment)
			if aligned+candidateReq.Size <= gapEnd {
				if !found || aligned < best {
					best = aligned
					found = true
				}
			}
		}
	}
	return best, found
}

func alignUp(v, alignment uint64) uint64 {
	if alignment == 0 {
		return v
	}
	return (v + alignment - 1) &^ (alignment - 1)
}

// Finalize folds each bucket's member requirements (max alignment,
// intersected memory-type bits, unioned property flags), allocates backing
// memory, binds every member at its assigned offset, and runs each
// resource's post-bind finalizer. Must be called after Rebuild.
func (a *Aliaser[K]) Finalize() error {
	for _, b := range a.buckets {
		if b.allocation != nil {
			continue // already bound and unchanged
		}

		req := gpu.MemoryRequirements{MemoryTypeBits: ^uint32(0)}
		var properties gpu.MemoryPropertyFlags
		for _, m := range b.members {
			if m.info.Requirements.Alignment > req.Alignment {
				req.Alignment = m.info.Requirements.Alignment
			}
			req.MemoryTypeBits &= m.info.Requirements.MemoryTypeBits
			properties |= m.info.Properties
		}
		req.Size = b.requirements.Size
		if req.MemoryTypeBits == 0 {
			return fmt.Errorf("memalias: bucket memory-type intersection empty for %d members", len(b.members))
		}

		alloc, err := a.allocator.Allocate(req, properties)
		if err != nil {
			return fmt.Errorf("memalias: allocate bucket of size %d: %w", req.Size, err)
		}
		b.allocation = alloc
		b.properties = properties
		b.requirements = req

		for _, m := range b.members {
			switch {
			case m.info.BindBuffer != nil:
				if err := m.info.BindBuffer(alloc, m.offset); err != nil {
					return fmt.Errorf("memalias: bind buffer %q: %w", m.info.DebugName, err)
				}
			case m.info.BindTexture != nil:
				if err := m.info.BindTexture(alloc, m.offset); err != nil {
					return fmt.Errorf("memalias: bind texture %q: %w", m.info.DebugName, err)
				}
			}
			if m.info.Finalize != nil {
				if err := m.info.Finalize(); err != nil {
					return fmt.Errorf("memalias: finalize %q: %w", m.info.DebugName, err)
				}
			}
		}
	}
	return nil
}

// Buckets exposes the current bucket list for tests and the orchestrator's
// profiling output.
func (a *Aliaser[K]) Buckets() []*Bucket[K] { return a.buckets }

// ClearState drops all bookkeeping without freeing allocations, used when
// the transient pool ticks to a new frame slot whose aliaser starts empty
// for the next build (spec.md §4.2 tick()'s "clears transient RMA
// bookkeeping for the current frame slot").
func (a *Aliaser[K]) ClearState() {
	a.infos = make(map[K]ResourceInfo)
	a.lifetimes = make(map[K]Lifetime)
	a.rebind = make(map[K]bool)
}
