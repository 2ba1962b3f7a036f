// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package track provides dense-index allocation and the ResourceState
// bitmask algebra the render graph uses to decide when a barrier is needed.
package track

import "sync"

// Index is a dense, recyclable slot index. The bindless descriptor table
// uses one per descriptor binding (storage-image, sampled-image,
// combined-image-sampler, sampler); nothing here assumes which.
type Index uint32

// InvalidIndex marks an unassigned slot.
const InvalidIndex Index = ^Index(0)

// IsValid reports whether i was handed out by an Allocator and not yet freed.
func (i Index) IsValid() bool { return i != InvalidIndex }

// Allocator hands out the smallest free dense index, recycling released
// ones. The bindless table's four independent pools (§4.1) are each backed
// by one Allocator.
type Allocator struct {
	mu        sync.Mutex
	free      []Index // min-heap would be overkill; LIFO reuse is fine here
	nextIndex Index
}

// NewAllocator creates an empty allocator.
func NewAllocator() *Allocator {
	return &Allocator{free: make([]Index, 0, 64)}
}

// Alloc returns the smallest currently-free index, allocating a fresh one
// if the free list is empty.
func (a *Allocator) Alloc() Index {
	a.mu.Lock()
	defer a.mu.Unlock()

	if n := len(a.free); n > 0 {
		min := 0
		for i := 1; i < n; i++ {
			if a.free[i] < a.free[min] {
				min = i
			}
		}
		idx := a.free[min]
		a.free[min] = a.free[n-1]
		a.free = a.free[:n-1]
		return idx
	}
	idx := a.nextIndex
	a.nextIndex++
	return idx
}

// Free releases idx for reuse. Safe to call with InvalidIndex (no-op).
func (a *Allocator) Free(idx Index) {
	if idx == InvalidIndex {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.free = append(a.free, idx)
}

// Size returns the number of currently allocated (not-yet-freed) indices.
func (a *Allocator) Size() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return int(a.nextIndex) - len(a.free)
}

// HighWaterMark returns the highest index ever allocated, or InvalidIndex
// if nothing has been allocated yet. Used to size descriptor arrays.
func (a *Allocator) HighWaterMark() Index {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.nextIndex == 0 {
		return InvalidIndex
	}
	return a.nextIndex - 1
}
