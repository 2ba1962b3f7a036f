// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package gpu is the external GPU abstraction the render graph consumes.
//
// The render graph core never talks to a native graphics API directly: it
// is written against this package's interfaces, and a concrete backend
// (Vulkan, DX12, Metal, or the gpu/noop reference backend used by this
// module's own tests) supplies the implementation. gpu mirrors the shape of
// a real device/queue/command-encoder contract rather than inventing one,
// so that wiring a native backend in later is a matter of implementing
// these interfaces, not redesigning the core around them.
package gpu
