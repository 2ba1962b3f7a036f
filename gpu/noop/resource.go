// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package noop implements gpu's interfaces as no-ops. It is the reference
// backend this module's own tests run against, and a starting point for
// smoke-testing graph wiring before a real backend is plugged in.
package noop

import "github.com/gogpu/rendergraph/gpu"

// Resource is a generic Destroy-only handle used for types that carry no
// state of their own (fences, query sets, pipelines, bind groups...).
type Resource struct {
	Destroyed bool
}

func (r *Resource) Destroy() { r.Destroyed = true }

// Buffer keeps its creation descriptor so tests can assert on what the
// render graph actually asked the backend to create.
type Buffer struct {
	Resource
	Desc gpu.BufferDescriptor
}

// Texture keeps its creation descriptor for the same reason.
type Texture struct {
	Resource
	Desc gpu.TextureDescriptor
}

type TextureView struct{ Resource }
type Sampler struct{ Resource }
type ShaderModule struct{ Resource }
type BindGroupLayout struct{ Resource }
type BindGroup struct{ Resource }
type PipelineLayout struct{ Resource }
type RenderPipeline struct{ Resource }
type ComputePipeline struct{ Resource }
type CommandBuffer struct{ Resource }
type QuerySet struct {
	Resource
	Count uint32
}

// Fence tracks the highest value passed to Signal, imitating the monotonic
// timeline semaphore semantics the real backends expose.
type Fence struct {
	Resource
	Value uint64
}

func (f *Fence) Signal(value uint64) {
	if value > f.Value {
		f.Value = value
	}
}

type Semaphore struct{ Resource }
