// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package noop

import "github.com/gogpu/rendergraph/gpu"

// Queue implements gpu.Queue, signaling the fence passed to Submit
// immediately since there is no real GPU timeline to wait on.
type Queue struct {
	Submitted int
}

func (q *Queue) Submit(buffers []gpu.CommandBuffer, _, _ gpu.Semaphore, fence gpu.Fence, fenceValue uint64) error {
	q.Submitted += len(buffers)
	if f, ok := fence.(*Fence); ok {
		f.Signal(fenceValue)
	}
	return nil
}

func (q *Queue) WriteBuffer(_ gpu.Buffer, _ uint64, _ []byte) {}

func (q *Queue) Present(_ gpu.Surface, texture gpu.SurfaceTexture, _ gpu.Semaphore) error {
	texture.Destroy()
	return nil
}

func (q *Queue) GetTimestampPeriod() float32 { return 1.0 }
