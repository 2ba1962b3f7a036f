// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package shader

import (
	"errors"
	"testing"

	"github.com/gogpu/rendergraph/bindless"
	"github.com/gogpu/rendergraph/deferred"
	"github.com/gogpu/rendergraph/gpu"
	"github.com/gogpu/rendergraph/gpu/noop"
)

const smallPushConstantWGSL = `
struct PushConstants {
	transform: mat4x4<f32>,
	tint: vec4<f32>,
}
var<push_constant> pc: PushConstants;

@fragment
fn fs_main() -> @location(0) vec4<f32> {
	return pc.tint;
}
`

const oversizedPushConstantWGSL = `
struct PushConstants {
	a: mat4x4<f32>,
	b: mat4x4<f32>,
	c: mat4x4<f32>,
}
var<push_constant> pc: PushConstants;

@fragment
fn fs_main() -> @location(0) vec4<f32> {
	return pc.a[0];
}
`

func TestReflectPushConstantSize_SumsDeclaredFields(t *testing.T) {
	size, err := reflectPushConstantSize(smallPushConstantWGSL)
	if err != nil {
		t.Fatalf("reflectPushConstantSize() error = %v", err)
	}
	want := uint32(64 + 16) // mat4x4<f32> + vec4<f32>
	if size != want {
		t.Fatalf("reflectPushConstantSize() = %d, want %d", size, want)
	}
}

func TestReflectPushConstantSize_NoDeclarationIsZero(t *testing.T) {
	size, err := reflectPushConstantSize("@fragment\nfn fs_main() -> @location(0) vec4<f32> { return vec4<f32>(0.0, 0.0, 0.0, 1.0); }")
	if err != nil {
		t.Fatalf("reflectPushConstantSize() error = %v", err)
	}
	if size != 0 {
		t.Fatalf("reflectPushConstantSize() = %d, want 0", size)
	}
}

func TestReflectPushConstantSize_UnsupportedFieldTypeErrors(t *testing.T) {
	wgsl := `
struct PushConstants {
	id: array<u32, 4>,
}
var<push_constant> pc: PushConstants;
`
	_, err := reflectPushConstantSize(wgsl)
	if !errors.Is(err, ErrUnsupportedPushConstantType) {
		t.Fatalf("reflectPushConstantSize() error = %v, want ErrUnsupportedPushConstantType", err)
	}
}

func TestModule_PipelineLayoutIncludesBindlessLayoutAndPushConstantRange(t *testing.T) {
	device := noop.NewDevice()
	del := deferred.New(2)
	table, err := bindless.New(device, del, bindless.DefaultConfig())
	if err != nil {
		t.Fatalf("bindless.New() error = %v", err)
	}

	m := &Module{Label: "test", PushConstantSize: 80}
	layout := m.PipelineLayout("test-layout", table, gpu.ShaderStageFragment)

	if len(layout.BindGroupLayouts) != 1 || layout.BindGroupLayouts[0] != table.Layout() {
		t.Fatalf("PipelineLayout() bind group layouts = %v, want [table.Layout()]", layout.BindGroupLayouts)
	}
	if len(layout.PushConstantRanges) != 1 {
		t.Fatalf("PipelineLayout() push constant ranges = %d, want 1", len(layout.PushConstantRanges))
	}
	if r := layout.PushConstantRanges[0]; r.Size != 80 || r.Offset != 0 || r.Stages != gpu.ShaderStageFragment {
		t.Fatalf("PipelineLayout() range = %+v, want {Stages:Fragment Offset:0 Size:80}", r)
	}
}

func TestModule_PipelineLayoutOmitsRangeWhenNoPushConstants(t *testing.T) {
	device := noop.NewDevice()
	del := deferred.New(2)
	table, err := bindless.New(device, del, bindless.DefaultConfig())
	if err != nil {
		t.Fatalf("bindless.New() error = %v", err)
	}

	m := &Module{Label: "test"}
	layout := m.PipelineLayout("test-layout", table, gpu.ShaderStageCompute)
	if len(layout.PushConstantRanges) != 0 {
		t.Fatalf("PipelineLayout() push constant ranges = %d, want 0", len(layout.PushConstantRanges))
	}
}
