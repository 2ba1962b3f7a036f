// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package graph

// Stats summarizes a built graph for profiling overlays and logging
// (SPEC_FULL.md §12): pass/resource counts, dependency-level depth, and
// how many resources the memory aliaser actually aliased versus gave
// dedicated buckets.
type Stats struct {
	PassCount          int
	TextureCount       int
	BufferCount        int
	DependencyLevels   int
	EdgeCount          int
	WidestLevel        int
	AliasedResources   int
	DedicatedResources int
}

func computeStats(g *Graph) Stats {
	s := Stats{
		PassCount:        len(g.passes),
		DependencyLevels: len(g.levels),
		EdgeCount:        g.edgeCount,
	}
	for _, kind := range g.kinds {
		switch kind {
		case kindTexture:
			s.TextureCount++
		case kindBuffer:
			s.BufferCount++
		}
	}
	for _, level := range g.levels {
		if len(level) > s.WidestLevel {
			s.WidestLevel = len(level)
		}
	}

	for _, bucket := range g.pool.DeviceRMA.Buckets() {
		if len(bucket.Members()) > 1 {
			s.AliasedResources += len(bucket.Members())
		} else {
			s.DedicatedResources += len(bucket.Members())
		}
	}
	return s
}
