// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package dot implements the Graphviz dump the original RenderGraph wrote
// unconditionally at the end of every Build (SPEC_FULL.md §12 item 2), and
// the parser that closes spec.md §8's round-trip law: "Graphviz dump →
// parse → rebuild-adjacency yields the original adjacency (edges, not
// attributes)".
package dot

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/gogpu/rendergraph/graph"
)

// Dump renders g's passes and builder-computed adjacency as a Graphviz
// digraph. Build must have already run on g.
func Dump(g *graph.Graph) string {
	var b strings.Builder
	b.WriteString("digraph rendergraph {\n")
	for _, p := range g.Passes() {
		fmt.Fprintf(&b, "  p%d [label=%q, level=%d];\n", uint32(p.ID), p.Name, p.DependencyLevel)
	}
	for _, e := range g.Edges() {
		fmt.Fprintf(&b, "  p%d -> p%d;\n", uint32(e[0]), uint32(e[1]))
	}
	b.WriteString("}\n")
	return b.String()
}

// Graph is the parsed form a round-trip reduces a dump to: node ids paired
// with their label, and the edge list between node ids. It deliberately
// carries none of the dump's cosmetic attributes (level, label content is
// kept only for naming, never compared by an adjacency round-trip).
type Graph struct {
	Nodes []Node
	Edges [][2]uint32
}

// Node is one parsed `pN [label="...", ...];` declaration.
type Node struct {
	ID    uint32
	Label string
}

var (
	nodeRE = regexp.MustCompile(`^\s*p(\d+)\s*\[label="((?:[^"\\]|\\.)*)"`)
	edgeRE = regexp.MustCompile(`^\s*p(\d+)\s*->\s*p(\d+)\s*;`)
)

// Parse reads back a digraph produced by Dump. It tolerates any ordering
// of node and edge lines and ignores attributes other than label.
func Parse(src string) (*Graph, error) {
	g := &Graph{}
	for _, line := range strings.Split(src, "\n") {
		if m := nodeRE.FindStringSubmatch(line); m != nil {
			id, err := strconv.ParseUint(m[1], 10, 32)
			if err != nil {
				return nil, fmt.Errorf("dot: parse node id %q: %w", m[1], err)
			}
			g.Nodes = append(g.Nodes, Node{ID: uint32(id), Label: strings.ReplaceAll(m[2], `\"`, `"`)})
			continue
		}
		if m := edgeRE.FindStringSubmatch(line); m != nil {
			from, err := strconv.ParseUint(m[1], 10, 32)
			if err != nil {
				return nil, fmt.Errorf("dot: parse edge source %q: %w", m[1], err)
			}
			to, err := strconv.ParseUint(m[2], 10, 32)
			if err != nil {
				return nil, fmt.Errorf("dot: parse edge target %q: %w", m[2], err)
			}
			g.Edges = append(g.Edges, [2]uint32{uint32(from), uint32(to)})
		}
	}
	return g, nil
}

// Adjacency rebuilds a sorted from->to pair list from the parsed graph, the
// form spec.md §8's round-trip law compares against the original builder
// adjacency (edges only, never attributes).
func (g *Graph) Adjacency() [][2]uint32 {
	out := make([][2]uint32, len(g.Edges))
	copy(out, g.Edges)
	sort.Slice(out, func(i, j int) bool {
		if out[i][0] != out[j][0] {
			return out[i][0] < out[j][0]
		}
		return out[i][1] < out[j][1]
	})
	return out
}

// EdgesOf converts a graph.Graph's builder adjacency into the same [][2]uint32
// shape Adjacency produces, so a round-trip test can compare the two
// directly without caring about PassID's underlying type.
func EdgesOf(g *graph.Graph) [][2]uint32 {
	src := g.Edges()
	out := make([][2]uint32, len(src))
	for i, e := range src {
		out[i] = [2]uint32{uint32(e[0]), uint32(e[1])}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i][0] != out[j][0] {
			return out[i][0] < out[j][0]
		}
		return out[i][1] < out[j][1]
	})
	return out
}
