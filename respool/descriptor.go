// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package respool implements the transient resource pool (spec.md §4.2):
// per-resource-class vectors of pooled GPU wrappers, reused across frames
// when their descriptor is equivalent and they were not already handed out
// in the current frame.
// Grounded on the teacher's buffer/texture pooling conventions in
// core/resource.go and the lifetime bookkeeping in core/track/buffer.go,
// generalized to a declarative create/acquire model and parameterized over
// the caller's resource identity type to avoid importing the graph
// package that will eventually own ResourceID.
package respool

import "github.com/gogpu/rendergraph/gpu"

// TextureCreateFlags are the create-time flags spec.md §3 lists for a
// texture descriptor.
type TextureCreateFlags uint32

const (
	TextureExposeMips TextureCreateFlags = 1 << iota
	TextureCreateMips
	TextureMemoryControlled
	TextureForceNoAliasing
	TextureDoNotTouchSampledImages
)

// TextureDescriptor is the declarative texture request a pass hands the
// scheduler; everything except Extent and Label participates in reuse
// equivalence.
type TextureDescriptor struct {
	Label         string
	Dimension     gpu.TextureDimension
	Extent        gpu.Extent3D
	Format        gpu.TextureFormat
	Usage         gpu.TextureUsage
	LayerCount    uint32
	SampleCount   uint32
	MipLevelCount uint32
	CreateFlags   TextureCreateFlags
	Sampler       *gpu.SamplerDescriptor
}

// Equivalent reports whether two descriptors would be satisfied by the
// same pooled wrapper, ignoring extent and the debug label (spec.md §3:
// "Two texture descriptors are considered equivalent for reuse when
// everything except extent matches").
func (d TextureDescriptor) Equivalent(o TextureDescriptor) bool {
	return d.Dimension == o.Dimension &&
		d.Format == o.Format &&
		d.Usage == o.Usage &&
		d.LayerCount == o.LayerCount &&
		d.SampleCount == o.SampleCount &&
		d.MipLevelCount == o.MipLevelCount &&
		d.CreateFlags == o.CreateFlags &&
		samplerEqual(d.Sampler, o.Sampler)
}

func samplerEqual(a, b *gpu.SamplerDescriptor) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// BufferExtraFlags are the extra placement flags spec.md §3 lists for a
// buffer descriptor.
type BufferExtraFlags uint32

const (
	BufferAddressable BufferExtraFlags = 1 << iota
	BufferDeviceLocal
	BufferHost
	BufferResizableBar
)

// Class reports which pooled vector a buffer with these flags belongs in.
// ResizableBar wins when both device-local and host bits are set, per
// spec.md §4.2.
func (f BufferExtraFlags) Class() BufferClass {
	switch {
	case f&BufferResizableBar != 0, f&(BufferDeviceLocal|BufferHost) == BufferDeviceLocal|BufferHost:
		return ClassResizableBar
	case f&BufferHost != 0:
		return ClassHost
	default:
		return ClassDevice
	}
}

// BufferClass identifies which pooled vector (and memory aliaser) a
// buffer belongs to.
type BufferClass int

const (
	ClassDevice BufferClass = iota
	ClassHost
	ClassResizableBar
)

// BufferDescriptor is the declarative buffer request a pass hands the
// scheduler; capacity does not participate in reuse equivalence.
type BufferDescriptor struct {
	Label       string
	Capacity    uint64
	ElementSize uint32
	Usage       gpu.BufferUsage
	ExtraFlags  BufferExtraFlags
}

// Equivalent reports whether two buffer descriptors would be satisfied by
// the same pooled wrapper (spec.md §3: "usage and extra/create flags
// match; capacity can resize").
func (d BufferDescriptor) Equivalent(o BufferDescriptor) bool {
	return d.Usage == o.Usage && d.ExtraFlags == o.ExtraFlags && d.ElementSize == o.ElementSize
}

func (d BufferDescriptor) byteSize() uint64 {
	if d.ElementSize == 0 {
		return d.Capacity
	}
	return d.Capacity * uint64(d.ElementSize)
}
