// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package graph

import (
	"fmt"

	"github.com/gogpu/rendergraph/gpu"
	"github.com/gogpu/rendergraph/track"
)

// Execute runs every dependency level's executor in order against encoder
// (spec.md §4.6), growing timestamps to 2×passCount first. Build must have
// already run.
func (g *Graph) Execute(encoder gpu.CommandEncoder, timestamps *Timestamps) error {
	if !g.built {
		return passErr("", fmt.Errorf("graph: Execute called before Build"))
	}
	if timestamps != nil {
		if err := timestamps.EnsureCapacity(g.currentFrame, len(g.passes)); err != nil {
			return err
		}
	}

	for levelIdx, level := range g.levels {
		if err := g.executeLevel(encoder, levelIdx, level, timestamps); err != nil {
			return err
		}
	}
	return nil
}

func (g *Graph) passByID(id PassID) *Pass { return g.passes[id] }

func (g *Graph) executeLevel(encoder gpu.CommandEncoder, levelIdx int, level []PassID, timestamps *Timestamps) error {
	if timestamps != nil && timestamps.Set() != nil {
		encoder.WriteTimestamp(timestamps.Set(), uint32(2*levelIdx))
	}

	var fills []func()
	bufferBarriers := make(map[ResourceID]*track.StateTransition)
	var bufferOrder []ResourceID
	textureBarriers := make(map[SubresourceKey]*track.StateTransition)
	var textureOrder []SubresourceKey

	recordBuffer := func(id ResourceID, old, to track.ResourceState) {
		if t, ok := bufferBarriers[id]; ok {
			t.To = to
			return
		}
		bufferOrder = append(bufferOrder, id)
		bufferBarriers[id] = &track.StateTransition{From: old, To: to}
	}
	recordTexture := func(key SubresourceKey, old, to track.ResourceState) {
		if t, ok := textureBarriers[key]; ok {
			t.To = to
			return
		}
		textureOrder = append(textureOrder, key)
		textureBarriers[key] = &track.StateTransition{From: old, To: to}
	}

	// Step 1: clear-on-execute preamble.
	for _, pid := range level {
		pass := g.passByID(pid)
		for _, c := range pass.Clears {
			wrapper := g.bufferWrappers[c.Resource]
			old := wrapper.State
			next := track.Write | track.CopyDst
			recordBuffer(c.Resource, old, next)
			wrapper.State = next
			c := c
			fills = append(fills, func() {
				encoder.FillBuffer(wrapper.Handle, c.Offset, c.Size, c.Dword)
			})
		}
	}

	// Step 2: resource state transitions, one per unique subresource key
	// touched by the level (the accumulated per-pass state already folds
	// read-modify-write into a single target state, so no separate
	// read-phase/write-phase pass is needed here).
	for _, pid := range level {
		pass := g.passByID(pid)
		processed := make(map[SubresourceKey]bool, len(pass.States))
		for key, state := range pass.States {
			if processed[key] || pass.IsFirst[key] {
				processed[key] = true
				continue
			}
			processed[key] = true
			if g.kinds[key.Resource] == kindBuffer {
				wrapper := g.bufferWrappers[key.Resource]
				old := wrapper.State
				if track.NeedsBarrier(old, state) {
					recordBuffer(key.Resource, old, state)
				}
				wrapper.State = state
				continue
			}
			wrapper := g.textureWrappers[key.Resource]
			old := wrapper.State(key.Mip)
			if old == state {
				continue
			}
			if old.IsReadOnly() && state.IsReadOnly() && old.ToImageLayout() == state.ToImageLayout() {
				wrapper.SetState(key.Mip, state)
				continue
			}
			recordTexture(key, old, state)
			wrapper.SetState(key.Mip, state)
		}
	}

	// Step 3: batched pipeline barrier.
	if len(bufferOrder) > 0 {
		barriers := make([]gpu.BufferBarrier, 0, len(bufferOrder))
		for _, id := range bufferOrder {
			t := bufferBarriers[id]
			pending := track.BufferPendingTransition{Transition: *t}
			barriers = append(barriers, pending.IntoHAL(g.bufferWrappers[id].Handle))
		}
		encoder.TransitionBuffers(barriers)
	}
	if len(textureOrder) > 0 {
		barriers := make([]gpu.TextureBarrier, 0, len(textureOrder))
		for _, key := range textureOrder {
			t := textureBarriers[key]
			pending := track.TexturePendingTransition{
				Transition: *t,
				Range:      gpu.TextureRange{BaseMipLevel: key.Mip, MipLevelCount: 1},
			}
			barriers = append(barriers, pending.IntoHAL(g.textureWrappers[key.Resource].Handle))
		}
		encoder.TransitionTextures(barriers)
	}
	for _, fill := range fills {
		fill()
	}

	// Step 4: pass recording.
	for _, pid := range level {
		pass := g.passByID(pid)
		encoder.PushDebugGroup(pass.Name)
		if err := g.recordPass(encoder, pass); err != nil {
			encoder.PopDebugGroup()
			return passErr(pass.Name, err)
		}
		encoder.PopDebugGroup()
	}

	if timestamps != nil && timestamps.Set() != nil {
		encoder.WriteTimestamp(timestamps.Set(), uint32(2*levelIdx+1))
	}
	return nil
}

func (g *Graph) recordPass(encoder gpu.CommandEncoder, pass *Pass) error {
	switch pass.Kind {
	case KindGraphics:
		return g.recordGraphicsPass(encoder, pass)
	case KindCompute, KindAsyncCompute:
		return g.recordComputePass(encoder, pass)
	default:
		ctx := &ExecuteContext{Encoder: encoder, graph: g, pass: pass}
		if pass.Execute != nil {
			pass.Execute(ctx)
		}
		return nil
	}
}

func (g *Graph) recordGraphicsPass(encoder gpu.CommandEncoder, pass *Pass) error {
	desc := &gpu.RenderPassDescriptor{Label: pass.Name}
	for _, ct := range pass.ColorTargets {
		view, err := g.attachmentView(ct.Resource, ct.Mip)
		if err != nil {
			return err
		}
		desc.ColorAttachments = append(desc.ColorAttachments, gpu.RenderPassColorAttachment{
			View: view, LoadOp: ct.LoadOp, StoreOp: ct.StoreOp, ClearValue: ct.ClearValue,
		})
	}
	if ds := pass.DepthStencil; ds != nil {
		view, err := g.attachmentView(ds.Resource, ds.Mip)
		if err != nil {
			return err
		}
		desc.DepthStencil = &gpu.RenderPassDepthStencilAttachment{
			View:              view,
			DepthLoadOp:       ds.DepthLoadOp,
			DepthStoreOp:      ds.DepthStoreOp,
			DepthClearValue:   ds.DepthClearValue,
			StencilLoadOp:     ds.StencilLoadOp,
			StencilStoreOp:    ds.StencilStoreOp,
			StencilClearValue: ds.StencilClearValue,
		}
	}

	rp := encoder.BeginRenderPass(desc)
	if pass.Viewport != nil {
		v := pass.Viewport
		rp.SetViewport(v.X, v.Y, v.Width, v.Height, 0, 1)
	}
	if pass.Scissor != nil {
		s := pass.Scissor
		rp.SetScissorRect(uint32(s.X), uint32(s.Y), uint32(s.Width), uint32(s.Height))
	}
	ctx := &ExecuteContext{Encoder: encoder, RenderPass: rp, graph: g, pass: pass}
	if pass.Execute != nil {
		pass.Execute(ctx)
	}
	rp.End()
	return nil
}

func (g *Graph) recordComputePass(encoder gpu.CommandEncoder, pass *Pass) error {
	cp := encoder.BeginComputePass(&gpu.ComputePassDescriptor{Label: pass.Name})
	ctx := &ExecuteContext{Encoder: encoder, ComputePass: cp, graph: g, pass: pass}
	if pass.Execute != nil {
		pass.Execute(ctx)
	}
	cp.End()
	return nil
}

// attachmentView returns the cached view for (resource, mip), creating it
// on first use; render-pass attachments always view exactly one mip level.
func (g *Graph) attachmentView(id ResourceID, mip uint32) (gpu.TextureView, error) {
	key := SubresourceKey{Resource: id, Mip: mip}
	if g.textureViews == nil {
		g.textureViews = make(map[SubresourceKey]gpu.TextureView)
	}
	if v, ok := g.textureViews[key]; ok {
		return v, nil
	}
	wrapper, ok := g.textureWrappers[id]
	if !ok {
		return nil, fmt.Errorf("%w: texture id %v", ErrUnknownResource, id)
	}
	desc := g.textureDescs[id]
	view, err := g.device.CreateTextureView(wrapper.Handle, &gpu.TextureViewDescriptor{
		Format: desc.Format, Dimension: desc.Dimension, BaseMipLevel: mip, MipLevelCount: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("graph: create attachment view for %q mip %d: %w", wrapper.Name, mip, err)
	}
	g.textureViews[key] = view
	return view, nil
}
