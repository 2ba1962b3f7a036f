// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package graph

import (
	"github.com/gogpu/rendergraph/gpu"
	"github.com/gogpu/rendergraph/memalias"
	"github.com/gogpu/rendergraph/respool"
)

// createResources walks every declared resource, computes its effective
// lifetime in final topological order, and acquires/registers its pooled
// wrapper with the transient pool — the per-resource-class creation path
// split out from Build so texture and buffer bookkeeping (whose descriptor
// maps live separately) stay independent (SPEC_FULL.md §12).
func (g *Graph) createResources() error {
	position := make(map[PassID]int, len(g.order))
	for i, id := range g.order {
		position[id] = i
	}

	for id, kind := range g.kinds {
		lifetime := g.effectiveLifetime(id, position)
		switch kind {
		case kindTexture:
			if err := g.createTextureResource(id, lifetime); err != nil {
				return err
			}
		case kindBuffer:
			if err := g.createBufferResource(id, lifetime); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *Graph) effectiveLifetime(id ResourceID, position map[PassID]int) memalias.Lifetime {
	first, last := len(g.order), -1
	for passID := range g.users[id] {
		pos, ok := position[passID]
		if !ok {
			continue
		}
		if pos < first {
			first = pos
		}
		if pos > last {
			last = pos
		}
	}
	if last < 0 {
		first, last = 0, 0
	}
	return memalias.Lifetime{Begin: first, End: last}
}

func (g *Graph) createTextureResource(id ResourceID, lifetime memalias.Lifetime) error {
	desc := g.textureDescs[id]
	name := g.debugNames[id]

	wrapper, needsRebind, err := g.pool.AcquireTexture(id, name, desc)
	if err != nil {
		return passErr(name, err)
	}
	g.textureWrappers[id] = wrapper

	if desc.CreateFlags&respool.TextureForceNoAliasing != 0 {
		// Bound directly through a dedicated allocation; never enters the
		// device RMA's bucket packing, so it never shares memory with
		// another resource (spec.md §4.3, SPEC_FULL.md §12 item 4).
		if err := g.pool.BindTextureDedicated(wrapper, needsRebind, gpu.MemoryPropertyDeviceLocal, func() error {
			return nil
		}); err != nil {
			return passErr(name, err)
		}
		return nil
	}

	g.pool.RegisterTexture(wrapper, lifetime, needsRebind, gpu.MemoryPropertyDeviceLocal, func() error {
		return nil
	})
	return nil
}

func (g *Graph) createBufferResource(id ResourceID, lifetime memalias.Lifetime) error {
	desc := g.bufferDescs[id]
	name := g.debugNames[id]

	wrapper, needsRebind, err := g.pool.AcquireBuffer(id, name, desc)
	if err != nil {
		return passErr(name, err)
	}
	g.bufferWrappers[id] = wrapper

	g.pool.RegisterBuffer(wrapper, lifetime, needsRebind, bufferMemoryProperties(desc.ExtraFlags), func() error {
		return nil
	})
	return nil
}

func bufferMemoryProperties(flags respool.BufferExtraFlags) gpu.MemoryPropertyFlags {
	var out gpu.MemoryPropertyFlags
	switch flags.Class() {
	case respool.ClassResizableBar:
		out = gpu.MemoryPropertyDeviceLocal | gpu.MemoryPropertyHostVisible | gpu.MemoryPropertyHostCoherent
	case respool.ClassHost:
		out = gpu.MemoryPropertyHostVisible | gpu.MemoryPropertyHostCoherent
	default:
		out = gpu.MemoryPropertyDeviceLocal
	}
	return out
}
