// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package graph

import (
	"fmt"

	"github.com/gogpu/rendergraph/bindless"
	"github.com/gogpu/rendergraph/gpu"
	"github.com/gogpu/rendergraph/respool"
)

type resourceKind int

const (
	kindTexture resourceKind = iota
	kindBuffer
)

// Graph is one frame's render graph instance: it lives only for the frame
// that built it (spec.md §3's Lifecycle). A new Graph is constructed every
// frame by the frame orchestrator and discarded after Execute returns.
type Graph struct {
	pool     *respool.Pool[ResourceID]
	bindless *bindless.Table
	device   gpu.Device

	nextResourceID uint32
	passes         []*Pass

	// names maps every declared name (including alias names) to the
	// concrete ResourceID it currently resolves to.
	names map[string]ResourceID
	// aliasOf records one hop of alias chaining: write_texture(..., newAlias)
	// maps newAlias -> the name it was derived from, so resolveName can walk
	// the chain to the original concrete declaration (spec.md §3).
	aliasOf map[string]string

	kinds        map[ResourceID]resourceKind
	textureDescs map[ResourceID]respool.TextureDescriptor
	bufferDescs  map[ResourceID]respool.BufferDescriptor
	debugNames   map[ResourceID]string

	// users is the per-resource set of passes that declared any access,
	// spec.md §4.4: "registers pass id in the resource's user set".
	users map[ResourceID]map[PassID]bool

	textureWrappers map[ResourceID]*respool.TextureWrapper[ResourceID]
	bufferWrappers  map[ResourceID]*respool.BufferWrapper[ResourceID]
	textureViews    map[SubresourceKey]gpu.TextureView

	// order is the execution order once Build has run: topological order
	// within dependency levels, insertion order as the tie-break.
	order     []PassID
	levels    [][]PassID
	edges     [][2]PassID
	edgeCount int

	currentFrame uint64
	built        bool

	Stats Stats
}

// Config tunes a Graph's construction.
type Config struct {
	PoolConfig respool.Config
}

// New constructs an empty graph for the current frame. pool and bindless
// are owned by the frame orchestrator and shared across every frame's
// Graph instance; device is used only to resolve handles during Execute.
func New(device gpu.Device, pool *respool.Pool[ResourceID], table *bindless.Table, currentFrame uint64) *Graph {
	return &Graph{
		pool: pool, bindless: table, device: device,
		currentFrame:    currentFrame,
		names:           make(map[string]ResourceID),
		aliasOf:         make(map[string]string),
		kinds:           make(map[ResourceID]resourceKind),
		textureDescs:    make(map[ResourceID]respool.TextureDescriptor),
		bufferDescs:     make(map[ResourceID]respool.BufferDescriptor),
		debugNames:      make(map[ResourceID]string),
		users:           make(map[ResourceID]map[PassID]bool),
		textureWrappers: make(map[ResourceID]*respool.TextureWrapper[ResourceID]),
		bufferWrappers:  make(map[ResourceID]*respool.BufferWrapper[ResourceID]),
	}
}

// AddPass registers a new pass, invoking setup immediately against a fresh
// Scheduler (spec.md §4.4: "The scheduler is constructed per pass per
// phase"). Pass id is the insertion index, per spec.md §3.
func (g *Graph) AddPass(name string, kind Kind, setup SetupFunc, execute ExecuteFunc) (*Pass, error) {
	id := PassID(len(g.passes))
	pass := newPass(id, name, kind, setup, execute)
	g.passes = append(g.passes, pass)

	sched := &Scheduler{graph: g, pass: pass}
	if setup != nil {
		setup(sched)
	}
	if sched.err != nil {
		return nil, passErr(name, sched.err)
	}
	return pass, nil
}

func (g *Graph) allocResourceID() ResourceID {
	id := ResourceID(g.nextResourceID)
	g.nextResourceID++
	return id
}

// resolveName walks the alias chain to the concrete ResourceID a name
// currently refers to (spec.md §3: "name resolution walks aliases until a
// concrete id is found").
func (g *Graph) resolveName(name string) (ResourceID, bool) {
	seen := make(map[string]bool)
	for {
		if seen[name] {
			return InvalidResourceID, false // alias cycle, defensively bail
		}
		seen[name] = true
		if id, ok := g.names[name]; ok {
			return id, true
		}
		parent, ok := g.aliasOf[name]
		if !ok {
			return InvalidResourceID, false
		}
		name = parent
	}
}

func (g *Graph) addUser(id ResourceID, pass PassID) {
	set, ok := g.users[id]
	if !ok {
		set = make(map[PassID]bool)
		g.users[id] = set
	}
	set[pass] = true
}

func (g *Graph) registerAlias(original, alias string, id ResourceID) {
	g.names[alias] = id
	g.aliasOf[alias] = original
}

// aliasNameInUse reports whether name already resolves to a declared
// resource or alias (spec.md §7: "alias name already in use" is a fatal
// declaration error).
func (g *Graph) aliasNameInUse(name string) bool {
	if _, ok := g.names[name]; ok {
		return true
	}
	_, ok := g.aliasOf[name]
	return ok
}

func (g *Graph) mipCount(id ResourceID) uint32 {
	if desc, ok := g.textureDescs[id]; ok {
		if desc.MipLevelCount == 0 {
			return 1
		}
		return desc.MipLevelCount
	}
	return 1
}

func (g *Graph) getTexture(name string) (gpu.Texture, error) {
	id, ok := g.resolveName(name)
	if !ok {
		return nil, passErr("", fmt.Errorf("%w: texture %q", ErrUnknownResource, name))
	}
	w, ok := g.textureWrappers[id]
	if !ok {
		return nil, passErr("", fmt.Errorf("%w: texture %q not yet bound", ErrUnknownResource, name))
	}
	return w.Handle, nil
}

func (g *Graph) getBuffer(name string) (gpu.Buffer, error) {
	id, ok := g.resolveName(name)
	if !ok {
		return nil, passErr("", fmt.Errorf("%w: buffer %q", ErrUnknownResource, name))
	}
	w, ok := g.bufferWrappers[id]
	if !ok {
		return nil, passErr("", fmt.Errorf("%w: buffer %q not yet bound", ErrUnknownResource, name))
	}
	return w.Handle, nil
}

// Passes exposes the declared passes in insertion order, primarily for
// the dot package's Graphviz dump.
func (g *Graph) Passes() []*Pass { return g.passes }

// Order returns the final execution order once Build has run.
func (g *Graph) Order() []PassID { return g.order }

// Edges returns the builder's adjacency as (from, to) pairs once Build has
// run, primarily for the dot package's Graphviz dump.
func (g *Graph) Edges() [][2]PassID { return g.edges }
