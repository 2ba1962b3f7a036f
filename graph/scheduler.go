// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package graph

import (
	"fmt"

	"github.com/gogpu/rendergraph/gpu"
	"github.com/gogpu/rendergraph/respool"
	"github.com/gogpu/rendergraph/track"
)

// Scheduler is handed to a pass's setup callback; every method records a
// resource access against the owning pass and the owning graph (spec.md
// §4.4). It carries the first error encountered so setup callbacks can
// chain calls without checking every return value — AddPass surfaces it.
type Scheduler struct {
	graph *Graph
	pass  *Pass
	err   error
}

func (s *Scheduler) fail(err error) {
	if s.err == nil {
		s.err = err
	}
}

// CreateTexture allocates a fresh ResourceID for name and records the pass
// as its initial writer with state Undefined (spec.md §4.4).
func (s *Scheduler) CreateTexture(name string, desc respool.TextureDescriptor) ResourceID {
	id := s.graph.allocResourceID()
	s.graph.names[name] = id
	s.graph.kinds[id] = kindTexture
	s.graph.textureDescs[id] = desc
	s.graph.debugNames[id] = name

	key := SubresourceKey{Resource: id}
	s.pass.accumulate(key, track.Undefined, false, true)
	s.pass.IsFirst[key] = true
	s.graph.addUser(id, s.pass.ID)
	return id
}

// CreateBuffer is CreateTexture's buffer counterpart.
func (s *Scheduler) CreateBuffer(name string, desc respool.BufferDescriptor) ResourceID {
	id := s.graph.allocResourceID()
	s.graph.names[name] = id
	s.graph.kinds[id] = kindBuffer
	s.graph.bufferDescs[id] = desc
	s.graph.debugNames[id] = name

	key := SubresourceKey{Resource: id}
	s.pass.accumulate(key, track.Undefined, false, true)
	s.pass.IsFirst[key] = true
	s.graph.addUser(id, s.pass.ID)
	return id
}

// ReadTexture resolves name (following aliases), records one subresource
// per mip in mips, and ORs state|Read into the pass's accumulated state.
func (s *Scheduler) ReadTexture(name string, mips MipSet, state track.ResourceState) ResourceID {
	id, ok := s.graph.resolveName(name)
	if !ok {
		s.fail(fmt.Errorf("%w: read_texture %q", ErrUnknownResource, name))
		return InvalidResourceID
	}
	for _, mip := range mips.Resolve(s.graph.mipCount(id)) {
		key := SubresourceKey{Resource: id, Mip: mip}
		s.pass.accumulate(key, state|track.Read, true, false)
	}
	s.graph.addUser(id, s.pass.ID)
	return id
}

// ReadBuffer is ReadTexture's buffer counterpart (mip is always 0).
func (s *Scheduler) ReadBuffer(name string, state track.ResourceState) ResourceID {
	id, ok := s.graph.resolveName(name)
	if !ok {
		s.fail(fmt.Errorf("%w: read_buffer %q", ErrUnknownResource, name))
		return InvalidResourceID
	}
	key := SubresourceKey{Resource: id}
	s.pass.accumulate(key, state|track.Read, true, false)
	s.graph.addUser(id, s.pass.ID)
	return id
}

// WriteTexture records a write access; when newAlias is non-empty it also
// adds the original subresource to the pass's read list (read-modify-write)
// and records the alias so later passes resolve it to the same ResourceID
// (spec.md §4.4); the executor gives aliases no special treatment.
func (s *Scheduler) WriteTexture(name string, mips MipSet, state track.ResourceState, newAlias string) ResourceID {
	id, ok := s.graph.resolveName(name)
	if !ok {
		s.fail(fmt.Errorf("%w: write_texture %q", ErrUnknownResource, name))
		return InvalidResourceID
	}
	if newAlias != "" && s.graph.aliasNameInUse(newAlias) {
		s.fail(fmt.Errorf("%w: %q", ErrAliasInUse, newAlias))
		return InvalidResourceID
	}
	for _, mip := range mips.Resolve(s.graph.mipCount(id)) {
		key := SubresourceKey{Resource: id, Mip: mip}
		if newAlias != "" {
			s.pass.accumulate(key, state|track.Read, true, false)
		}
		s.pass.accumulate(key, state|track.Write|track.Read, false, true)
	}
	s.graph.addUser(id, s.pass.ID)
	if newAlias != "" {
		s.graph.registerAlias(name, newAlias, id)
	}
	return id
}

// WriteBuffer is WriteTexture's buffer counterpart.
func (s *Scheduler) WriteBuffer(name string, state track.ResourceState, newAlias string) ResourceID {
	id, ok := s.graph.resolveName(name)
	if !ok {
		s.fail(fmt.Errorf("%w: write_buffer %q", ErrUnknownResource, name))
		return InvalidResourceID
	}
	if newAlias != "" && s.graph.aliasNameInUse(newAlias) {
		s.fail(fmt.Errorf("%w: %q", ErrAliasInUse, newAlias))
		return InvalidResourceID
	}
	key := SubresourceKey{Resource: id}
	if newAlias != "" {
		s.pass.accumulate(key, state|track.Read, true, false)
	}
	s.pass.accumulate(key, state|track.Write|track.Read, false, true)
	s.graph.addUser(id, s.pass.ID)
	if newAlias != "" {
		s.graph.registerAlias(name, newAlias, id)
	}
	return id
}

// WriteDepthStencil delegates to WriteTexture with DepthRead|DepthWrite and
// records the depth-stencil attachment descriptor on the pass.
func (s *Scheduler) WriteDepthStencil(name string, mips MipSet, depthLoadOp gpu.LoadOp, depthStoreOp gpu.StoreOp, depthClear float32, stencilLoadOp gpu.LoadOp, stencilStoreOp gpu.StoreOp, stencilClear uint32, alias string) ResourceID {
	id := s.WriteTexture(name, mips, track.DepthRead|track.DepthWrite, alias)
	if id == InvalidResourceID {
		return id
	}
	mip := uint32(0)
	if resolved := mips.Resolve(s.graph.mipCount(id)); len(resolved) > 0 {
		mip = resolved[0]
	}
	s.pass.DepthStencil = &DepthStencilTarget{
		Resource: id, Mip: mip,
		DepthLoadOp: depthLoadOp, DepthStoreOp: depthStoreOp, DepthClearValue: depthClear,
		StencilLoadOp: stencilLoadOp, StencilStoreOp: stencilStoreOp, StencilClearValue: stencilClear,
	}
	return id
}

// WriteRenderTarget delegates to WriteTexture with RenderTarget and appends
// the color-attachment descriptor; fails with ErrCapacityExceeded above
// MaxColorAttachments (spec.md §4.4).
func (s *Scheduler) WriteRenderTarget(name string, mips MipSet, loadOp gpu.LoadOp, storeOp gpu.StoreOp, clear gpu.Color, alias string) ResourceID {
	if len(s.pass.ColorTargets) >= MaxColorAttachments {
		s.fail(fmt.Errorf("%w: pass %q already has %d color attachments", ErrCapacityExceeded, s.pass.Name, MaxColorAttachments))
		return InvalidResourceID
	}
	id := s.WriteTexture(name, mips, track.RenderTarget, alias)
	if id == InvalidResourceID {
		return id
	}
	mip := uint32(0)
	if resolved := mips.Resolve(s.graph.mipCount(id)); len(resolved) > 0 {
		mip = resolved[0]
	}
	s.pass.ColorTargets = append(s.pass.ColorTargets, ColorTarget{
		Resource: id, Mip: mip, LoadOp: loadOp, StoreOp: storeOp, ClearValue: clear,
	})
	return id
}

// ClearOnExecute requires the pass to also write name; records a
// pre-execute fill command.
func (s *Scheduler) ClearOnExecute(name string, dword uint32, size, offset uint64) {
	id, ok := s.graph.resolveName(name)
	if !ok {
		s.fail(fmt.Errorf("%w: clear_on_execute %q", ErrUnknownResource, name))
		return
	}
	key := SubresourceKey{Resource: id}
	if s.pass.States[key]&track.Write == 0 {
		s.fail(fmt.Errorf("%w: clear_on_execute %q: pass does not write this resource", ErrNotWriter, name))
		return
	}
	s.pass.Clears = append(s.pass.Clears, ClearCommand{Resource: id, Dword: dword, Size: size, Offset: offset})
}

// SetViewportScissor sets the pass's viewport/scissor; required for
// graphics passes (spec.md §4.4).
func (s *Scheduler) SetViewportScissor(viewport, scissor Rect) {
	v, sc := viewport, scissor
	s.pass.Viewport = &v
	s.pass.Scissor = &sc
}
