// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package dot

import (
	"reflect"
	"testing"

	"github.com/gogpu/rendergraph/deferred"
	"github.com/gogpu/rendergraph/gpu"
	"github.com/gogpu/rendergraph/gpu/noop"
	"github.com/gogpu/rendergraph/graph"
	"github.com/gogpu/rendergraph/respool"
	"github.com/gogpu/rendergraph/track"
)

func buildDiamondGraph(t *testing.T) *graph.Graph {
	t.Helper()
	device := noop.NewDevice()
	del := deferred.New(2)
	pool := respool.New[graph.ResourceID](device, del, respool.DefaultConfig())
	g := graph.New(device, pool, nil, 0)

	desc := func() respool.BufferDescriptor {
		return respool.BufferDescriptor{Capacity: 256, Usage: gpu.BufferUsageStorage, ExtraFlags: respool.BufferDeviceLocal}
	}

	g.AddPass("A", graph.KindCompute, func(s *graph.Scheduler) {
		s.CreateBuffer("x", desc())
	}, nil)
	g.AddPass("B", graph.KindCompute, func(s *graph.Scheduler) {
		s.ReadBuffer("x", track.StorageBuffer)
		s.CreateBuffer("y", desc())
	}, nil)
	g.AddPass("C", graph.KindCompute, func(s *graph.Scheduler) {
		s.ReadBuffer("x", track.StorageBuffer)
		s.CreateBuffer("z", desc())
	}, nil)
	g.AddPass("D", graph.KindCompute, func(s *graph.Scheduler) {
		s.ReadBuffer("y", track.StorageBuffer)
		s.ReadBuffer("z", track.StorageBuffer)
	}, nil)

	if err := g.Build(); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return g
}

func TestDumpParseAdjacency_RoundTripsTheOriginalEdges(t *testing.T) {
	g := buildDiamondGraph(t)
	want := EdgesOf(g)

	dumped := Dump(g)
	parsed, err := Parse(dumped)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	got := parsed.Adjacency()

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round-tripped adjacency = %v, want %v", got, want)
	}
	if len(parsed.Nodes) != 4 {
		t.Fatalf("parsed node count = %d, want 4", len(parsed.Nodes))
	}
}

func TestParse_IgnoresUnrelatedLines(t *testing.T) {
	src := "digraph rendergraph {\n  // a comment\n  p0 [label=\"A\", level=0];\n  p1 [label=\"B\", level=1];\n  p0 -> p1;\n}\n"
	g, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(g.Nodes) != 2 || len(g.Edges) != 1 {
		t.Fatalf("Parse() = %+v, want 2 nodes and 1 edge", g)
	}
}
