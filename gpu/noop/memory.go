// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package noop

import (
	"sync"

	"github.com/gogpu/rendergraph/gpu"
)

// allocation is a backing-store-free placeholder that still carries a
// backing []byte so Map/Unmap work for host-visible buckets in tests.
type allocation struct {
	size       uint64
	typeBits   uint32
	properties gpu.MemoryPropertyFlags
	backing    []byte
}

func (a *allocation) Size() uint64                          { return a.size }
func (a *allocation) MemoryTypeBits() uint32                { return a.typeBits }
func (a *allocation) PropertyFlags() gpu.MemoryPropertyFlags { return a.properties }

// MemoryAllocator implements gpu.MemoryAllocator by handing out in-process
// byte slices for host-visible memory and bare bookkeeping for
// device-local memory, enough for the memory aliaser's packing logic and
// its tests to exercise real Allocate/Free/Bind/Map/Unmap call sequences.
type MemoryAllocator struct {
	mu        sync.Mutex
	allocated uint64
	freed     uint64
}

func newMemoryAllocator() *MemoryAllocator { return &MemoryAllocator{} }

func (m *MemoryAllocator) Allocate(requirements gpu.MemoryRequirements, properties gpu.MemoryPropertyFlags) (gpu.Allocation, error) {
	if requirements.MemoryTypeBits == 0 {
		return nil, gpu.ErrNoSuitableMemoryType
	}
	m.mu.Lock()
	m.allocated += requirements.Size
	m.mu.Unlock()

	a := &allocation{
		size:       requirements.Size,
		typeBits:   requirements.MemoryTypeBits,
		properties: properties,
	}
	if properties.Contains(gpu.MemoryPropertyHostVisible) {
		a.backing = make([]byte, requirements.Size)
	}
	return a, nil
}

func (m *MemoryAllocator) Free(a gpu.Allocation) {
	m.mu.Lock()
	m.freed += a.Size()
	m.mu.Unlock()
}

func (m *MemoryAllocator) BindBuffer(_ gpu.Buffer, _ gpu.Allocation, _ uint64) error { return nil }
func (m *MemoryAllocator) BindTexture(_ gpu.Texture, _ gpu.Allocation, _ uint64) error {
	return nil
}

func (m *MemoryAllocator) Map(a gpu.Allocation) ([]byte, error) {
	na, ok := a.(*allocation)
	if !ok || na.backing == nil {
		return nil, gpu.ErrAllocationFailed
	}
	return na.backing, nil
}

func (m *MemoryAllocator) Unmap(_ gpu.Allocation) {}

// Stats reports cumulative allocate/free byte counts, useful for tests that
// assert the aliaser actually frees superseded buckets.
func (m *MemoryAllocator) Stats() (allocated, freed uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.allocated, m.freed
}
