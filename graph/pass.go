// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package graph

import (
	"github.com/gogpu/rendergraph/gpu"
	"github.com/gogpu/rendergraph/track"
)

// Kind is the pass type (spec.md §3).
type Kind int

const (
	KindGraphics Kind = iota
	KindCompute
	KindTransfer
	KindAsyncCompute
	KindAsyncTransfer
)

// IsAsync reports whether the pass is scheduled on the async compute
// queue path the executor scaffolds (SPEC_FULL.md §14: the async lane
// never actually drives a second submission in this implementation).
func (k Kind) IsAsync() bool { return k == KindAsyncCompute || k == KindAsyncTransfer }

// MaxColorAttachments is the compile-time color-target limit spec.md §4.4
// enforces ("Fails with capacity-exceeded above the compile-time color
// attachment limit").
const MaxColorAttachments = 8

// Rect is a viewport or scissor rectangle.
type Rect struct {
	X, Y          float32
	Width, Height float32
}

// ColorTarget is one render-target attachment declared by write_render_target.
type ColorTarget struct {
	Resource   ResourceID
	Mip        uint32
	LoadOp     gpu.LoadOp
	StoreOp    gpu.StoreOp
	ClearValue gpu.Color
}

// DepthStencilTarget is the attachment declared by write_depth_stencil.
type DepthStencilTarget struct {
	Resource          ResourceID
	Mip               uint32
	DepthLoadOp       gpu.LoadOp
	DepthStoreOp      gpu.StoreOp
	DepthClearValue   float32
	StencilLoadOp     gpu.LoadOp
	StencilStoreOp    gpu.StoreOp
	StencilClearValue uint32
}

// ClearCommand is a pre-execute fill recorded by clear_on_execute.
type ClearCommand struct {
	Resource ResourceID
	Dword    uint32
	Size     uint64
	Offset   uint64
}

// SetupFunc declares a pass's resource accesses against a Scheduler.
type SetupFunc func(*Scheduler)

// ExecuteFunc records GPU commands for a pass once resources are bound.
type ExecuteFunc func(*ExecuteContext)

// Pass is one node of the render graph (spec.md §3).
type Pass struct {
	ID              PassID
	Name            string
	Kind            Kind
	DependencyLevel int

	Viewport *Rect
	Scissor  *Rect

	ColorTargets []ColorTarget
	DepthStencil *DepthStencilTarget
	Clears       []ClearCommand

	// Reads/Writes list every subresource this pass declared access to, in
	// declaration order; States accumulates the OR of every declared
	// ResourceState per subresource (spec.md §3: "The bitmask is
	// cumulative").
	Reads   []SubresourceKey
	Writes  []SubresourceKey
	States  map[SubresourceKey]track.ResourceState
	IsFirst map[SubresourceKey]bool // this pass is the resource's initial writer

	Setup   SetupFunc
	Execute ExecuteFunc
}

func newPass(id PassID, name string, kind Kind, setup SetupFunc, execute ExecuteFunc) *Pass {
	return &Pass{
		ID: id, Name: name, Kind: kind,
		States:  make(map[SubresourceKey]track.ResourceState),
		IsFirst: make(map[SubresourceKey]bool),
		Setup:   setup, Execute: execute,
	}
}

// accumulate ORs state into the pass's tracked bitmask for key and records
// key on the read/write lists it belongs to.
func (p *Pass) accumulate(key SubresourceKey, state track.ResourceState, isRead, isWrite bool) {
	p.States[key] |= state
	if isRead {
		p.Reads = append(p.Reads, key)
	}
	if isWrite {
		p.Writes = append(p.Writes, key)
	}
}

// ExecuteContext is handed to a pass's Execute callback: the current
// command encoder plus resolved GPU handles (spec.md §4.4: "Execute-phase
// operations delegate to the graph ... called from inside the execute
// callback, which also receives the current command buffer").
type ExecuteContext struct {
	Encoder     gpu.CommandEncoder
	RenderPass  gpu.RenderPassEncoder
	ComputePass gpu.ComputePassEncoder
	graph       *Graph
	pass        *Pass
}

// GetTexture resolves name (following aliases) to its live GPU handle.
func (c *ExecuteContext) GetTexture(name string) (gpu.Texture, error) {
	return c.graph.getTexture(name)
}

// GetBuffer resolves name (following aliases) to its live GPU handle.
func (c *ExecuteContext) GetBuffer(name string) (gpu.Buffer, error) {
	return c.graph.getBuffer(name)
}

// Pass returns the pass currently executing, useful for debug markers.
func (c *ExecuteContext) Pass() *Pass { return c.pass }
