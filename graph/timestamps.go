// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package graph

import (
	"fmt"

	"github.com/gogpu/rendergraph/deferred"
	"github.com/gogpu/rendergraph/gpu"
)

// Timestamps owns the timestamp query pool the level executor writes
// per-level start/end markers into (spec.md §4.6 step 5). It outlives any
// single Graph — the frame orchestrator constructs one and reuses it every
// frame, growing the underlying query set lazily to 2×passCount and
// retiring the old set through the deferred deletion queue
// (SPEC_FULL.md §12).
type Timestamps struct {
	device   gpu.Device
	del      *deferred.Queue
	set      gpu.QuerySet
	capacity uint32
}

// NewTimestamps constructs an empty timestamp pool; the first EnsureCapacity
// call allocates its backing query set.
func NewTimestamps(device gpu.Device, del *deferred.Queue) *Timestamps {
	return &Timestamps{device: device, del: del}
}

// EnsureCapacity grows the pool to 2*passCount queries if it is currently
// smaller, retiring the prior query set through deferred deletion so
// in-flight frames still reading from it finish first.
func (t *Timestamps) EnsureCapacity(currentFrame uint64, passCount int) error {
	need := uint32(2 * passCount)
	if need <= t.capacity {
		return nil
	}
	newSet, err := t.device.CreateQuerySet(need)
	if err != nil {
		return fmt.Errorf("graph: grow timestamp query pool to %d: %w", need, err)
	}
	if old := t.set; old != nil {
		t.del.Push(currentFrame, func() { t.device.DestroyQuerySet(old) })
	}
	t.set = newSet
	t.capacity = need
	return nil
}

// Set returns the current backing query set.
func (t *Timestamps) Set() gpu.QuerySet { return t.set }

// Capacity returns the number of queries the current set holds, 0 before
// the first EnsureCapacity call.
func (t *Timestamps) Capacity() uint32 { return t.capacity }
