// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package graph

import (
	"testing"

	"github.com/gogpu/rendergraph/deferred"
	"github.com/gogpu/rendergraph/gpu"
	"github.com/gogpu/rendergraph/gpu/noop"
	"github.com/gogpu/rendergraph/respool"
	"github.com/gogpu/rendergraph/track"
)

func TestGraph_ExecuteBatchesOneBarrierPerLevel(t *testing.T) {
	device := noop.NewDevice()
	del := deferred.New(2)
	pool := respool.New[ResourceID](device, del, respool.DefaultConfig())
	g := New(device, pool, nil, 0)

	var executed []string
	g.AddPass("produce", KindCompute, func(s *Scheduler) {
		s.CreateBuffer("a", bufferDesc(gpu.BufferUsageStorage))
	}, func(ctx *ExecuteContext) {
		executed = append(executed, "produce")
	})
	g.AddPass("consume", KindCompute, func(s *Scheduler) {
		s.ReadBuffer("a", track.StorageBuffer)
		s.WriteBuffer("a", track.StorageBuffer|track.Write, "")
	}, func(ctx *ExecuteContext) {
		executed = append(executed, "consume")
	})

	if err := g.Build(); err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	encoder := &noop.CommandEncoder{}
	if err := g.Execute(encoder, nil); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if len(executed) != 2 || executed[0] != "produce" || executed[1] != "consume" {
		t.Fatalf("execution order = %v, want [produce consume]", executed)
	}
	if len(encoder.DebugGroups) != 2 {
		t.Fatalf("debug group count = %d, want 2 (one per pass)", len(encoder.DebugGroups))
	}
	// consume's level transitions buffer "a" from Undefined to
	// StorageBuffer|Read|Write, so exactly one buffer-barrier batch is expected
	// at its level.
	if len(encoder.BufferBarriers) != 1 {
		t.Fatalf("buffer barrier batches = %d, want 1", len(encoder.BufferBarriers))
	}
	if got := len(encoder.BufferBarriers[0]); got != 1 {
		t.Fatalf("barriers in batch = %d, want 1", got)
	}
}

func TestGraph_ExecuteGrowsTimestampPool(t *testing.T) {
	device := noop.NewDevice()
	del := deferred.New(2)
	pool := respool.New[ResourceID](device, del, respool.DefaultConfig())
	g := New(device, pool, nil, 0)
	timestamps := NewTimestamps(device, del)

	g.AddPass("solo", KindCompute, func(s *Scheduler) {
		s.CreateBuffer("a", bufferDesc(gpu.BufferUsageStorage))
	}, func(ctx *ExecuteContext) {})

	if err := g.Build(); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	encoder := &noop.CommandEncoder{}
	if err := g.Execute(encoder, timestamps); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got, want := timestamps.Capacity(), uint32(2*len(g.Passes())); got != want {
		t.Fatalf("timestamp pool capacity = %d, want %d (2*passCount)", got, want)
	}
}
