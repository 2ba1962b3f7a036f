// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package graph

import (
	"errors"
	"testing"

	"github.com/gogpu/rendergraph/deferred"
	"github.com/gogpu/rendergraph/gpu"
	"github.com/gogpu/rendergraph/gpu/noop"
	"github.com/gogpu/rendergraph/respool"
	"github.com/gogpu/rendergraph/track"
)

func newTestGraph(t *testing.T) (*Graph, *noop.Device) {
	t.Helper()
	device := noop.NewDevice()
	del := deferred.New(2)
	pool := respool.New[ResourceID](device, del, respool.DefaultConfig())
	return New(device, pool, nil, 0), device
}

func bufferDesc(usage gpu.BufferUsage) respool.BufferDescriptor {
	return respool.BufferDescriptor{Capacity: 1024, Usage: usage, ExtraFlags: respool.BufferDeviceLocal}
}

func TestGraph_LinearChainOrdersByDependency(t *testing.T) {
	g, _ := newTestGraph(t)

	_, err := g.AddPass("produce", KindCompute, func(s *Scheduler) {
		s.CreateBuffer("a", bufferDesc(gpu.BufferUsageStorage))
	}, nil)
	if err != nil {
		t.Fatalf("AddPass(produce) error = %v", err)
	}
	_, err = g.AddPass("consume", KindCompute, func(s *Scheduler) {
		s.ReadBuffer("a", track.StorageBuffer)
		s.WriteBuffer("a", track.StorageBuffer|track.Write, "")
	}, nil)
	if err != nil {
		t.Fatalf("AddPass(consume) error = %v", err)
	}

	if err := g.Build(); err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if len(g.Order()) != 2 || g.Order()[0] != 0 || g.Order()[1] != 1 {
		t.Fatalf("Order() = %v, want [0 1]", g.Order())
	}
	if len(g.Levels()) != 2 {
		t.Fatalf("Levels() count = %d, want 2 (producer and consumer are dependent)", len(g.Levels()))
	}
}

func TestGraph_IndependentPassesShareALevel(t *testing.T) {
	g, _ := newTestGraph(t)

	g.AddPass("a", KindCompute, func(s *Scheduler) {
		s.CreateBuffer("bufA", bufferDesc(gpu.BufferUsageStorage))
	}, nil)
	g.AddPass("b", KindCompute, func(s *Scheduler) {
		s.CreateBuffer("bufB", bufferDesc(gpu.BufferUsageStorage))
	}, nil)

	if err := g.Build(); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(g.Levels()) != 1 {
		t.Fatalf("Levels() count = %d, want 1 (independent passes share a level)", len(g.Levels()))
	}
	if len(g.Levels()[0]) != 2 {
		t.Fatalf("level 0 pass count = %d, want 2", len(g.Levels()[0]))
	}
}

func TestGraph_CyclicDependencyIsRejected(t *testing.T) {
	g, _ := newTestGraph(t)

	g.AddPass("p0", KindCompute, func(s *Scheduler) {
		s.CreateBuffer("x", bufferDesc(gpu.BufferUsageStorage))
		s.CreateBuffer("y", bufferDesc(gpu.BufferUsageStorage))
	}, nil)
	// p1 reads y and writes x; p2 reads x and writes y. Besides p0->p1 and
	// p0->p2 this yields p1->p2 (via x) and p2->p1 (via y): a cycle.
	g.AddPass("p1", KindCompute, func(s *Scheduler) {
		s.ReadBuffer("y", track.StorageBuffer)
		s.WriteBuffer("x", track.StorageBuffer|track.Write, "")
	}, nil)
	g.AddPass("p2", KindCompute, func(s *Scheduler) {
		s.ReadBuffer("x", track.StorageBuffer)
		s.WriteBuffer("y", track.StorageBuffer|track.Write, "")
	}, nil)

	err := g.Build()
	if err == nil {
		t.Fatalf("Build() error = nil, want ErrCyclicGraph")
	}
	if !errors.Is(err, ErrCyclicGraph) {
		t.Fatalf("Build() error = %v, want wrapping ErrCyclicGraph", err)
	}
}

func TestGraph_ReadModifyWriteAliasResolvesToSameResource(t *testing.T) {
	g, _ := newTestGraph(t)

	g.AddPass("produce", KindCompute, func(s *Scheduler) {
		s.CreateBuffer("history", bufferDesc(gpu.BufferUsageStorage))
	}, nil)
	g.AddPass("update", KindCompute, func(s *Scheduler) {
		s.WriteBuffer("history", track.StorageBuffer|track.Write, "history-next")
	}, nil)
	g.AddPass("consume", KindCompute, func(s *Scheduler) {
		s.ReadBuffer("history-next", track.StorageBuffer)
	}, nil)

	if err := g.Build(); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	id, ok := g.resolveName("history-next")
	if !ok {
		t.Fatalf("resolveName(history-next) failed to resolve the alias")
	}
	orig, ok := g.resolveName("history")
	if !ok || orig != id {
		t.Fatalf("alias %v did not resolve to the original resource %v", id, orig)
	}
}

func TestGraph_EmptyGraphIsRejected(t *testing.T) {
	g, _ := newTestGraph(t)

	err := g.Build()
	if !errors.Is(err, ErrEmptyGraph) {
		t.Fatalf("Build() error = %v, want ErrEmptyGraph", err)
	}
}

func TestGraph_DuplicateAliasNameIsRejected(t *testing.T) {
	g, _ := newTestGraph(t)

	g.AddPass("produce", KindCompute, func(s *Scheduler) {
		s.CreateBuffer("history", bufferDesc(gpu.BufferUsageStorage))
		s.CreateBuffer("other", bufferDesc(gpu.BufferUsageStorage))
	}, nil)
	_, err := g.AddPass("update", KindCompute, func(s *Scheduler) {
		s.WriteBuffer("history", track.StorageBuffer|track.Write, "other")
	}, nil)
	if !errors.Is(err, ErrAliasInUse) {
		t.Fatalf("AddPass() error = %v, want ErrAliasInUse", err)
	}
}

func TestGraph_GraphicsPassMissingViewportIsRejected(t *testing.T) {
	g, _ := newTestGraph(t)

	g.AddPass("draw", KindGraphics, func(s *Scheduler) {
		s.CreateTexture("color", respool.TextureDescriptor{
			Dimension: gpu.TextureDimension2D,
			Extent:    gpu.Extent3D{Width: 64, Height: 64, DepthOrArrayLayers: 1},
			Usage:     gpu.TextureUsageRenderAttachment,
		})
		s.WriteRenderTarget("color", FirstMip(), gpu.LoadOpClear, gpu.StoreOpStore, gpu.Color{}, "")
	}, nil)

	err := g.Build()
	if !errors.Is(err, ErrMissingViewport) {
		t.Fatalf("Build() error = %v, want ErrMissingViewport", err)
	}
}

func TestGraph_GraphicsPassWithViewportAndScissorBuilds(t *testing.T) {
	g, _ := newTestGraph(t)

	g.AddPass("draw", KindGraphics, func(s *Scheduler) {
		s.CreateTexture("color", respool.TextureDescriptor{
			Dimension: gpu.TextureDimension2D,
			Extent:    gpu.Extent3D{Width: 64, Height: 64, DepthOrArrayLayers: 1},
			Usage:     gpu.TextureUsageRenderAttachment,
		})
		s.WriteRenderTarget("color", FirstMip(), gpu.LoadOpClear, gpu.StoreOpStore, gpu.Color{}, "")
		s.SetViewportScissor(Rect{Width: 64, Height: 64}, Rect{Width: 64, Height: 64})
	}, nil)

	if err := g.Build(); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
}

func TestGraph_ColorAttachmentCapacityExceeded(t *testing.T) {
	g, _ := newTestGraph(t)

	_, err := g.AddPass("too-many-targets", KindGraphics, func(s *Scheduler) {
		for i := 0; i < MaxColorAttachments+1; i++ {
			name := string(rune('a' + i))
			s.CreateTexture(name, respool.TextureDescriptor{
				Dimension: gpu.TextureDimension2D,
				Extent:    gpu.Extent3D{Width: 64, Height: 64, DepthOrArrayLayers: 1},
				Usage:     gpu.TextureUsageRenderAttachment,
			})
			s.WriteRenderTarget(name, FirstMip(), gpu.LoadOpClear, gpu.StoreOpStore, gpu.Color{}, "")
		}
	}, nil)
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("AddPass() error = %v, want ErrCapacityExceeded", err)
	}
}
