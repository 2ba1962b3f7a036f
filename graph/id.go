// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package graph implements the render graph core: the resource scheduler
// (spec.md §4.4), the adjacency/topological-sort/dependency-level builder
// (spec.md §4.5), and the dependency-level barrier-batching executor
// (spec.md §4.6). Grounded on the teacher's generic ID[T Marker] pattern
// (core/id.go) for resource/pass identity, and on
// original_source/Source/Render/RenderGraph.cpp for the graph algorithms
// themselves.
package graph

import "fmt"

// Marker distinguishes ID type parameters at compile time, mirroring the
// teacher's core.Marker constraint without the epoch/generation machinery
// core/id.go carries: a graph instance lives for exactly one frame, so
// there is nothing to invalidate across a generation boundary.
type Marker interface {
	marker()
}

type resourceMarker struct{}

func (resourceMarker) marker() {}

type passMarker struct{}

func (passMarker) marker() {}

// ID is a type-safe, frame-scoped identifier.
type ID[T Marker] uint32

// String renders the id with its marker type for debug output; the
// Graphviz dump writes the bare numeric id instead.
func (id ID[T]) String() string {
	var zero T
	return fmt.Sprintf("%T(%d)", zero, uint32(id))
}

// ResourceID identifies a logically distinct resource declared within the
// current frame's graph (spec.md §3).
type ResourceID = ID[resourceMarker]

// PassID identifies a pass by its insertion index (spec.md §3: "id
// (insertion index)").
type PassID = ID[passMarker]

// InvalidResourceID is returned by alias resolution when a name has never
// been declared.
const InvalidResourceID = ^ResourceID(0)

// SubresourceKey names one subresource: a resource id plus a mip level (0
// for buffers and for untouched-mip texture accesses), matching spec.md
// §3's SubresourceID triple minus the human-readable name, which is kept
// only in the alias map.
type SubresourceKey struct {
	Resource ResourceID
	Mip      uint32
}
