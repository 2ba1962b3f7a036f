// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package graph

import "sort"

// Build runs the graph builder (spec.md §4.5): adjacency construction,
// topological sort with cycle detection, and longest-path dependency-level
// assignment. It then creates/acquires every declared resource's pooled
// wrapper (SPEC_FULL.md §12's per-resource-class creation path) and binds
// the frame's memory buckets. Build must run exactly once per Graph.
func (g *Graph) Build() error {
	if len(g.passes) == 0 {
		return passErr("", ErrEmptyGraph)
	}
	if err := g.validateGraphicsPasses(); err != nil {
		return err
	}

	adjacency := g.buildAdjacency()
	for from, neighbors := range adjacency {
		g.edgeCount += len(neighbors)
		for to := range neighbors {
			g.edges = append(g.edges, [2]PassID{from, to})
		}
	}
	sort.Slice(g.edges, func(i, j int) bool {
		if g.edges[i][0] != g.edges[j][0] {
			return g.edges[i][0] < g.edges[j][0]
		}
		return g.edges[i][1] < g.edges[j][1]
	})

	order, err := g.topologicalSort(adjacency)
	if err != nil {
		return err
	}
	g.order = order

	levels := g.assignDependencyLevels(order, adjacency)
	g.groupByLevel(levels)

	if err := g.createResources(); err != nil {
		return err
	}
	if err := g.pool.BindResourcesToMemoryRegions(); err != nil {
		return passErr("", err)
	}

	g.built = true
	g.Stats = computeStats(g)
	return nil
}

// buildAdjacency adds edge p -> q iff some subresource key appears in both
// p's writes and q's reads (spec.md §4.5). Pure read-read relationships
// never induce edges; edges are deduplicated.
func (g *Graph) buildAdjacency() map[PassID]map[PassID]bool {
	writers := make(map[SubresourceKey][]PassID)
	readers := make(map[SubresourceKey][]PassID)
	for _, p := range g.passes {
		for _, key := range p.Writes {
			writers[key] = append(writers[key], p.ID)
		}
		for _, key := range p.Reads {
			readers[key] = append(readers[key], p.ID)
		}
	}

	adjacency := make(map[PassID]map[PassID]bool, len(g.passes))
	for _, p := range g.passes {
		adjacency[p.ID] = make(map[PassID]bool)
	}
	for key, wps := range writers {
		for _, w := range wps {
			for _, r := range readers[key] {
				if w == r {
					continue
				}
				adjacency[w][r] = true
			}
		}
	}
	return adjacency
}

type sortColor int

const (
	white sortColor = iota
	gray
	black
)

// topologicalSort runs a depth-first post-order traversal of the adjacency
// list; a gray (in-progress) neighbor is a fatal cyclic-graph error
// (spec.md §4.5). The post-order is reversed to obtain execution order.
func (g *Graph) topologicalSort(adjacency map[PassID]map[PassID]bool) ([]PassID, error) {
	color := make(map[PassID]sortColor, len(g.passes))
	var postOrder []PassID

	var visit func(id PassID) error
	visit = func(id PassID) error {
		color[id] = gray
		neighbors := sortedNeighbors(adjacency[id])
		for _, n := range neighbors {
			switch color[n] {
			case white:
				if err := visit(n); err != nil {
					return err
				}
			case gray:
				return passErr(g.passes[id].Name, ErrCyclicGraph)
			}
		}
		color[id] = black
		postOrder = append(postOrder, id)
		return nil
	}

	for _, p := range g.passes {
		if color[p.ID] == white {
			if err := visit(p.ID); err != nil {
				return nil, err
			}
		}
	}

	order := make([]PassID, len(postOrder))
	for i, id := range postOrder {
		order[len(postOrder)-1-i] = id
	}
	return order, nil
}

func sortedNeighbors(set map[PassID]bool) []PassID {
	out := make([]PassID, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// assignDependencyLevels computes the longest-path distance from a virtual
// root by relaxing edges in topological order (spec.md §4.5).
func (g *Graph) assignDependencyLevels(order []PassID, adjacency map[PassID]map[PassID]bool) map[PassID]int {
	level := make(map[PassID]int, len(order))
	for _, id := range order {
		level[id] = 0
	}
	for _, u := range order {
		for v := range adjacency[u] {
			if level[u]+1 > level[v] {
				level[v] = level[u] + 1
			}
		}
	}
	for _, p := range g.passes {
		p.DependencyLevel = level[p.ID]
	}
	return level
}

// groupByLevel buckets passes by dependency level; within a level, passes
// keep their original insertion order (spec.md §4.5's tie-break policy:
// "the only ordering that is stable against adjacency-iteration
// nondeterminism and yields reproducible barrier batches").
func (g *Graph) groupByLevel(level map[PassID]int) {
	maxLevel := 0
	for _, l := range level {
		if l > maxLevel {
			maxLevel = l
		}
	}
	levels := make([][]PassID, maxLevel+1)
	for _, p := range g.passes { // iterate in insertion order
		l := level[p.ID]
		levels[l] = append(levels[l], p.ID)
	}
	g.levels = levels
}

// Levels returns the final dependency-level grouping once Build has run.
func (g *Graph) Levels() [][]PassID { return g.levels }

// validateGraphicsPasses fails a build where a KindGraphics pass never
// called SetViewportScissor (spec.md §7: "missing viewport/scissor on a
// graphics pass" is a fatal declaration error, not a silently-undefined
// draw).
func (g *Graph) validateGraphicsPasses() error {
	for _, p := range g.passes {
		if p.Kind != KindGraphics {
			continue
		}
		if p.Viewport == nil || p.Scissor == nil {
			return passErr(p.Name, ErrMissingViewport)
		}
	}
	return nil
}
