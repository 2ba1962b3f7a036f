// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package noop

import "github.com/gogpu/rendergraph/gpu"

// Surface implements gpu.Surface. Back-buffer images never flow through
// the transient resource pool (SPEC_FULL.md §6), so AcquireTexture always
// returns a fresh SurfaceTexture rather than one drawn from any pool.
type Surface struct {
	Resource
	configured bool
	// FailAcquireWith lets tests force begin_frame's out-of-date/suboptimal
	// handling without a real swapchain.
	FailAcquireWith error
}

func (s *Surface) Configure(_ gpu.Device, _ *gpu.SurfaceConfiguration) error {
	s.configured = true
	return nil
}

func (s *Surface) Unconfigure(_ gpu.Device) { s.configured = false }

func (s *Surface) AcquireTexture(_ gpu.Fence) (*gpu.AcquiredSurfaceTexture, error) {
	if s.FailAcquireWith != nil {
		return nil, s.FailAcquireWith
	}
	return &gpu.AcquiredSurfaceTexture{Texture: &SurfaceTexture{}}, nil
}

func (s *Surface) DiscardTexture(_ gpu.SurfaceTexture) {}

// SurfaceTexture implements gpu.SurfaceTexture.
type SurfaceTexture struct {
	Texture
}
