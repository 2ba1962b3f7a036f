// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package shader wraps github.com/gogpu/naga the way the teacher's
// hal/gles and hal/dx12 backends do (naga.Parse then naga.Lower) to turn a
// pass's WGSL source into a gpu.ShaderModuleDescriptor, validating the
// shared bindless pipeline layout's 128-byte push-constant budget
// (spec.md §6) before any pipeline is ever created.
package shader

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/gogpu/naga"

	"github.com/gogpu/rendergraph/bindless"
	"github.com/gogpu/rendergraph/gpu"
)

// MaxPushConstantBytes is the size of the single push-constant block every
// bindless pipeline shares (spec.md §6: "a 128-byte push-constant block
// visible to all stages").
const MaxPushConstantBytes = 128

// ErrPushConstantBudgetExceeded reports that a shader's push_constant
// struct would not fit in the shared 128-byte block.
var ErrPushConstantBudgetExceeded = errors.New("shader: push-constant block exceeds 128-byte budget")

// ErrUnsupportedPushConstantType reports a push_constant struct field whose
// WGSL type this package's lightweight size reflection does not recognize.
var ErrUnsupportedPushConstantType = errors.New("shader: unsupported push-constant field type")

// Module is a WGSL shader validated against the render graph's shared
// layout constraints, ready to hand to gpu.Device.CreateShaderModule.
type Module struct {
	Label            string
	Descriptor       *gpu.ShaderModuleDescriptor
	PushConstantSize uint32
}

// Compile parses and lowers wgsl through naga (catching shader errors
// before a pipeline is ever created, the same validation point the
// teacher's backends use naga for) and reflects its push_constant struct
// size, rejecting shaders that would overflow the shared 128-byte block.
func Compile(label, wgsl string) (*Module, error) {
	ast, err := naga.Parse(wgsl)
	if err != nil {
		return nil, fmt.Errorf("shader: parse %q: %w", label, err)
	}
	if _, err := naga.Lower(ast); err != nil {
		return nil, fmt.Errorf("shader: lower %q: %w", label, err)
	}

	size, err := reflectPushConstantSize(wgsl)
	if err != nil {
		return nil, fmt.Errorf("shader: reflect push constants in %q: %w", label, err)
	}
	if size > MaxPushConstantBytes {
		return nil, fmt.Errorf("%w: %q declares %d bytes", ErrPushConstantBudgetExceeded, label, size)
	}

	return &Module{
		Label:            label,
		Descriptor:       &gpu.ShaderModuleDescriptor{Label: label, WGSL: wgsl},
		PushConstantSize: size,
	}, nil
}

// PipelineLayout builds the pipeline layout descriptor every graphics or
// compute pipeline in this module shares: the bindless table's single
// layout plus one push-constant range sized to this shader's declared
// struct, visible to the given stages.
func (m *Module) PipelineLayout(label string, table *bindless.Table, stages gpu.ShaderStages) *gpu.PipelineLayoutDescriptor {
	desc := &gpu.PipelineLayoutDescriptor{
		Label:            label,
		BindGroupLayouts: []gpu.BindGroupLayout{table.Layout()},
	}
	if m.PushConstantSize > 0 {
		desc.PushConstantRanges = []gpu.PushConstantRange{
			{Stages: stages, Offset: 0, Size: m.PushConstantSize},
		}
	}
	return desc
}

var (
	pushConstantVarRE = regexp.MustCompile(`var\s*<\s*push_constant\s*>\s*\w+\s*:\s*(\w+)`)
	structRE          = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)
	fieldRE           = regexp.MustCompile(`(\w+)\s*:\s*([\w<>,]+)`)
)

// reflectPushConstantSize does a best-effort textual scan for a
// `var<push_constant> name: Type;` declaration and sums the byte size of
// Type's fields. It understands the scalar, vector, and square-matrix
// types that show up in push-constant blocks in practice (transforms,
// draw indices, small color/parameter packs); it does not implement full
// WGSL struct layout rules (array stride, nested structs). A shader with
// no push_constant declaration reflects to size 0.
func reflectPushConstantSize(wgsl string) (uint32, error) {
	varMatch := pushConstantVarRE.FindStringSubmatch(wgsl)
	if varMatch == nil {
		return 0, nil
	}
	typeName := varMatch[1]

	structs := structRE.FindAllStringSubmatch(wgsl, -1)
	var body string
	found := false
	for _, s := range structs {
		if s[1] == typeName {
			body = s[2]
			found = true
			break
		}
	}
	if !found {
		return 0, fmt.Errorf("%w: no struct %q for push_constant declaration", ErrUnsupportedPushConstantType, typeName)
	}

	var total uint32
	for _, field := range fieldRE.FindAllStringSubmatch(body, -1) {
		size, err := wgslTypeSize(strings.TrimSuffix(field[2], ","))
		if err != nil {
			return 0, err
		}
		total += size
	}
	return total, nil
}

func wgslTypeSize(t string) (uint32, error) {
	switch strings.TrimSpace(t) {
	case "f32", "i32", "u32", "bool":
		return 4, nil
	case "vec2<f32>", "vec2<i32>", "vec2<u32>":
		return 8, nil
	case "vec3<f32>", "vec3<i32>", "vec3<u32>":
		return 12, nil
	case "vec4<f32>", "vec4<i32>", "vec4<u32>":
		return 16, nil
	case "mat2x2<f32>":
		return 16, nil
	case "mat3x3<f32>":
		return 48, nil
	case "mat4x4<f32>":
		return 64, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedPushConstantType, t)
	}
}
