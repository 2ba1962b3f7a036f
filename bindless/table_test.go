// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package bindless

import (
	"errors"
	"testing"

	"github.com/gogpu/rendergraph/deferred"
	"github.com/gogpu/rendergraph/gpu"
	"github.com/gogpu/rendergraph/gpu/noop"
)

func newTestTable(t *testing.T) (*Table, *deferred.Queue) {
	t.Helper()
	device := noop.NewDevice()
	del := deferred.New(2)
	table, err := New(device, del, DefaultConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return table, del
}

func TestTable_PublishAllocatesSmallestFreeIndex(t *testing.T) {
	table, _ := newTestTable(t)
	view := &noop.TextureView{}

	idx0, err := table.Publish(BindingSampledImage, ImageInfo{View: view})
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if idx0 != 0 {
		t.Fatalf("first Publish() index = %d, want 0", idx0)
	}
	idx1, _ := table.Publish(BindingSampledImage, ImageInfo{View: view})
	if idx1 != 1 {
		t.Fatalf("second Publish() index = %d, want 1", idx1)
	}
}

func TestTable_PublishValidatesArguments(t *testing.T) {
	table, _ := newTestTable(t)

	if _, err := table.Publish(BindingSampledImage, ImageInfo{}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Publish(sampled-image, no view) error = %v, want ErrInvalidArgument", err)
	}
	if _, err := table.Publish(BindingSampler, ImageInfo{}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Publish(sampler, no sampler) error = %v, want ErrInvalidArgument", err)
	}
	if _, err := table.Publish(BindingCombinedImageSampler, ImageInfo{View: &noop.TextureView{}}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Publish(combined, no sampler) error = %v, want ErrInvalidArgument", err)
	}
}

func TestTable_ReleaseDoesNotRecycleBeforeBufferedFrameCount(t *testing.T) {
	table, del := newTestTable(t)
	sampler := &noop.Sampler{}

	idx, err := table.Publish(BindingSampler, ImageInfo{Sampler: sampler})
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	table.Release(BindingSampler, idx, 0)
	del.Tick(0)
	del.Tick(1)

	reallocated, _ := table.Publish(BindingSampler, ImageInfo{Sampler: sampler})
	if reallocated == idx {
		t.Fatalf("slot %d was reused before buffered-frame-count elapsed", idx)
	}

	del.Tick(2) // 0 + bufferedFrameCount(2)
	recycled, _ := table.Publish(BindingSampler, ImageInfo{Sampler: sampler})
	if recycled != idx {
		t.Fatalf("Publish() after buffer elapsed = %d, want recycled index %d", recycled, idx)
	}
}

func TestTable_AllBindingPoolsIndependent(t *testing.T) {
	table, _ := newTestTable(t)
	view := &noop.TextureView{}
	sampler := &noop.Sampler{}

	storageIdx, _ := table.Publish(BindingStorageImage, ImageInfo{View: view})
	sampledIdx, _ := table.Publish(BindingSampledImage, ImageInfo{View: view})
	samplerIdx, _ := table.Publish(BindingSampler, ImageInfo{Sampler: sampler})

	if storageIdx != 0 || sampledIdx != 0 || samplerIdx != 0 {
		t.Fatalf("expected each binding pool to start at 0 independently, got %d %d %d", storageIdx, sampledIdx, samplerIdx)
	}
}

var _ gpu.Device = (*noop.Device)(nil)
