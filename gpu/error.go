// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package gpu

import "errors"

// Sentinel errors describing GPU-level conditions the frame orchestrator
// reacts to. Declaration and graph errors live in the graph package; these
// are the ones that can only originate from the backend.
var (
	// ErrDeviceOutOfMemory indicates the GPU has exhausted its memory.
	// Fatal: the application should reduce resource usage or terminate.
	ErrDeviceOutOfMemory = errors.New("gpu: device out of memory")

	// ErrDeviceLost indicates the GPU device has been lost (driver crash,
	// hardware disconnect, or driver timeout). Fatal: the device cannot be
	// recovered and must be recreated by the application.
	ErrDeviceLost = errors.New("gpu: device lost")

	// ErrSurfaceLost indicates the rendering surface has been destroyed,
	// typically because its window was closed. Fatal for that surface.
	ErrSurfaceLost = errors.New("gpu: surface lost")

	// ErrSurfaceOutdated indicates the surface configuration is stale
	// (resize, display change). Recoverable: reconfigure and retry.
	ErrSurfaceOutdated = errors.New("gpu: surface outdated")

	// ErrSurfaceSuboptimal indicates the surface can still be presented to
	// but should be reconfigured when convenient. Recoverable.
	ErrSurfaceSuboptimal = errors.New("gpu: surface suboptimal")

	// ErrTimeout indicates a wait operation timed out.
	ErrTimeout = errors.New("gpu: timeout")

	// ErrNoSuitableMemoryType indicates no memory type satisfies the
	// requested requirements and property flags together.
	ErrNoSuitableMemoryType = errors.New("gpu: no suitable memory type")

	// ErrAllocationFailed indicates a backend memory allocation failed.
	ErrAllocationFailed = errors.New("gpu: memory allocation failed")
)

// Recoverable reports whether err is a condition the frame orchestrator can
// recover from by skipping a frame and rebuilding swapchain-dependent
// state, as opposed to a fatal condition that should terminate the process.
func Recoverable(err error) bool {
	return errors.Is(err, ErrSurfaceOutdated) || errors.Is(err, ErrSurfaceSuboptimal) || errors.Is(err, ErrTimeout)
}
