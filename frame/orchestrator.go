// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package frame implements the frame orchestrator (spec.md §4.7): the
// begin/execute/end cycle that ticks the transient resource pool, acquires
// and presents the swapchain image, and drives the render graph's build and
// execute phases once per frame. It owns every piece of state that outlives
// a single Graph — the pool, the bindless table, the deferred deletion
// queue, the timestamp query pool, and the per-slot fences and semaphores —
// the way the teacher's render-loop demos own their device-level state
// across iterations of the window's event loop.
package frame

import (
	"fmt"
	"time"

	"github.com/gogpu/rendergraph/bindless"
	"github.com/gogpu/rendergraph/deferred"
	"github.com/gogpu/rendergraph/gpu"
	"github.com/gogpu/rendergraph/graph"
	"github.com/gogpu/rendergraph/respool"
)

// fenceWaitTimeout stands in for the "effectively infinite" fence wait
// spec.md §5 calls for: the only two CPU blocking points in the whole
// system are this wait and the queue-idle during swapchain invalidation.
const fenceWaitTimeout = 365 * 24 * time.Hour

// Config tunes the orchestrator's frame buffering depth and the pool,
// bindless table, and surface it constructs on the application's behalf.
type Config struct {
	// BufferedFrameCount is the number of frames allowed in flight at once;
	// it sizes the fence/semaphore ring and is forced onto Pool and
	// Bindless so every buffered ring stays in lockstep by frame slot.
	BufferedFrameCount uint64
	Pool               respool.Config
	Bindless           bindless.Config
	Surface            gpu.SurfaceConfiguration
}

// DefaultConfig returns a two-frame-buffered configuration.
func DefaultConfig() Config {
	return Config{
		BufferedFrameCount: 2,
		Pool:               respool.DefaultConfig(),
		Bindless:           bindless.DefaultConfig(),
	}
}

// Orchestrator drives the begin_frame/execute/end_frame cycle. One
// Orchestrator lives for the application's entire rendering session; it
// constructs a fresh graph.Graph every frame and discards it after
// Execute returns.
type Orchestrator struct {
	device  gpu.Device
	queue   gpu.Queue
	surface gpu.Surface

	del        *deferred.Queue
	pool       *respool.Pool[graph.ResourceID]
	bindless   *bindless.Table
	timestamps *graph.Timestamps

	bufferedFrameCount uint64
	fences             []gpu.Fence
	fenceValues        []uint64
	renderFinished     []gpu.Semaphore

	currentFrame uint64
	surfaceStale bool
	acquired     *gpu.AcquiredSurfaceTexture
}

// New configures the surface and constructs the pool, bindless table, and
// per-slot synchronization objects.
func New(device gpu.Device, queue gpu.Queue, surface gpu.Surface, cfg Config) (*Orchestrator, error) {
	if cfg.BufferedFrameCount == 0 {
		cfg.BufferedFrameCount = 2
	}
	cfg.Pool.BufferedFrameCount = cfg.BufferedFrameCount
	cfg.Bindless.BufferedFrameCount = uint32(cfg.BufferedFrameCount)

	if err := surface.Configure(device, &cfg.Surface); err != nil {
		return nil, fmt.Errorf("frame: configure surface: %w", err)
	}

	del := deferred.New(cfg.BufferedFrameCount)
	table, err := bindless.New(device, del, cfg.Bindless)
	if err != nil {
		return nil, err
	}

	o := &Orchestrator{
		device:             device,
		queue:              queue,
		surface:            surface,
		del:                del,
		pool:               respool.New[graph.ResourceID](device, del, cfg.Pool),
		bindless:           table,
		timestamps:         graph.NewTimestamps(device, del),
		bufferedFrameCount: cfg.BufferedFrameCount,
		fences:             make([]gpu.Fence, cfg.BufferedFrameCount),
		fenceValues:        make([]uint64, cfg.BufferedFrameCount),
		renderFinished:     make([]gpu.Semaphore, cfg.BufferedFrameCount),
	}
	for i := range o.fences {
		f, err := device.CreateFence()
		if err != nil {
			return nil, fmt.Errorf("frame: create fence %d: %w", i, err)
		}
		o.fences[i] = f
		s, err := device.CreateSemaphore()
		if err != nil {
			return nil, fmt.Errorf("frame: create render-finished semaphore %d: %w", i, err)
		}
		o.renderFinished[i] = s
	}
	return o, nil
}

func (o *Orchestrator) slot() uint64 { return o.currentFrame % o.bufferedFrameCount }

// BeginFrame ticks the transient pool and deferred deletion queue, waits on
// the in-flight fence for the slot about to be recycled, and acquires the
// next swapchain image (spec.md §4.7). ok is false when the surface is
// out-of-date or suboptimal — the caller should reconfigure it (via
// ReconfigureSurface) and retry on the next iteration; no frame-counter
// advance or submission happens in that case, only the pool tick already
// performed above.
func (o *Orchestrator) BeginFrame() (texture *gpu.AcquiredSurfaceTexture, ok bool, err error) {
	o.pool.Tick(o.currentFrame)
	o.del.Tick(o.currentFrame)

	slot := o.slot()
	if o.fenceValues[slot] > 0 {
		signaled, err := o.device.Wait(o.fences[slot], o.fenceValues[slot], fenceWaitTimeout)
		if err != nil {
			return nil, false, fmt.Errorf("frame: wait for in-flight fence: %w", err)
		}
		if !signaled {
			return nil, false, fmt.Errorf("frame: %w waiting on slot %d fence", gpu.ErrTimeout, slot)
		}
	}

	acquired, err := o.surface.AcquireTexture(o.fences[slot])
	if err != nil {
		if gpu.Recoverable(err) {
			o.surfaceStale = true
			gpu.Logger().Warn("frame: surface acquire recoverable, skipping frame", "error", err)
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("frame: acquire surface texture: %w", err)
	}
	if acquired.Suboptimal {
		o.surfaceStale = true
		o.surface.DiscardTexture(acquired.Texture)
		gpu.Logger().Warn("frame: surface acquire suboptimal, skipping frame")
		return nil, false, nil
	}
	o.acquired = acquired
	return acquired, true, nil
}

// NewGraph constructs this frame's render graph, wired to the
// orchestrator's shared pool and bindless table (spec.md §3's per-frame
// Graph lifecycle: one Graph per frame, discarded after Execute returns).
func (o *Orchestrator) NewGraph() *graph.Graph {
	return graph.New(o.device, o.pool, o.bindless, o.currentFrame)
}

// Execute builds g, binds the bindless descriptor set once at
// command-buffer start, records every dependency level, and submits the
// resulting command buffer signaling this slot's render-finished semaphore
// and fence (spec.md §4.7).
func (o *Orchestrator) Execute(g *graph.Graph) error {
	if err := g.Build(); err != nil {
		return err
	}

	label := fmt.Sprintf("frame-%d", o.currentFrame)
	encoder, err := o.device.CreateCommandEncoder(&gpu.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return fmt.Errorf("frame: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(label); err != nil {
		return fmt.Errorf("frame: begin encoding: %w", err)
	}

	slot := o.slot()
	encoder.BindBindlessSet(o.bindless.Sets()[slot])

	if err := g.Execute(encoder, o.timestamps); err != nil {
		encoder.DiscardEncoding()
		return err
	}

	cmd, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("frame: end encoding: %w", err)
	}

	o.fenceValues[slot]++
	if err := o.queue.Submit([]gpu.CommandBuffer{cmd}, nil, o.renderFinished[slot], o.fences[slot], o.fenceValues[slot]); err != nil {
		return fmt.Errorf("frame: submit: %w", err)
	}
	return nil
}

// EndFrame presents the acquired surface texture, waiting on this slot's
// render-finished semaphore, then rotates the frame index (spec.md §4.7).
// It is a programmer error to call EndFrame without a prior successful
// BeginFrame.
func (o *Orchestrator) EndFrame() error {
	if o.acquired == nil {
		return fmt.Errorf("frame: EndFrame called without a successful BeginFrame")
	}
	slot := o.slot()
	texture := o.acquired.Texture
	o.acquired = nil
	o.currentFrame++

	if err := o.queue.Present(o.surface, texture, o.renderFinished[slot]); err != nil {
		if gpu.Recoverable(err) {
			o.surfaceStale = true
			return nil
		}
		return fmt.Errorf("frame: present: %w", err)
	}
	return nil
}

// SurfaceStale reports whether the surface needs reconfiguration before the
// next BeginFrame, set by a recoverable acquire or present failure.
func (o *Orchestrator) SurfaceStale() bool { return o.surfaceStale }

// ReconfigureSurface reconfigures the surface, e.g. after a window resize
// or in response to SurfaceStale, and clears the stale flag.
func (o *Orchestrator) ReconfigureSurface(cfg gpu.SurfaceConfiguration) error {
	if err := o.surface.Configure(o.device, &cfg); err != nil {
		return fmt.Errorf("frame: reconfigure surface: %w", err)
	}
	o.surfaceStale = false
	return nil
}

// CurrentFrame returns the monotonic frame counter, incremented once per
// EndFrame call.
func (o *Orchestrator) CurrentFrame() uint64 { return o.currentFrame }

// Pool returns the shared transient resource pool, primarily so
// application code can construct respool descriptors against the same
// generic ResourceID instantiation the graph package uses.
func (o *Orchestrator) Pool() *respool.Pool[graph.ResourceID] { return o.pool }

// Bindless returns the shared bindless descriptor table.
func (o *Orchestrator) Bindless() *bindless.Table { return o.bindless }

// Timestamps returns the long-lived timestamp query pool the level
// executor writes per-level markers into every frame.
func (o *Orchestrator) Timestamps() *graph.Timestamps { return o.timestamps }

// Destroy waits for every in-flight frame to complete, then releases the
// fences, semaphores, bindless table, and surface.
func (o *Orchestrator) Destroy() {
	for i, f := range o.fences {
		if o.fenceValues[i] > 0 {
			_, _ = o.device.Wait(f, o.fenceValues[i], fenceWaitTimeout)
		}
		o.device.DestroyFence(f)
	}
	for _, s := range o.renderFinished {
		o.device.DestroySemaphore(s)
	}
	o.bindless.Destroy()
	o.surface.Unconfigure(o.device)
}
