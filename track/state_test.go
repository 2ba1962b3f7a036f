// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package track

import "testing"

func TestResourceState_IsCompatible(t *testing.T) {
	tests := []struct {
		name string
		a, b ResourceState
		want bool
	}{
		{"empty compatible with anything", Undefined, RenderTarget | Write, true},
		{"two reads compatible", FragmentShaderResource | Read, ComputeShaderResource | Read, true},
		{"identical writes compatible", RenderTarget | Write, RenderTarget | Write, true},
		{"distinct writes incompatible", RenderTarget | Write, CopyDst | Write, false},
		{"read vs write incompatible", FragmentShaderResource | Read, RenderTarget | Write, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.IsCompatible(tt.b); got != tt.want {
				t.Errorf("IsCompatible() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNeedsBarrier(t *testing.T) {
	tests := []struct {
		name     string
		from, to ResourceState
		want     bool
	}{
		{"identical states", RenderTarget | Write, RenderTarget | Write, false},
		{"read to read", FragmentShaderResource | Read, ComputeShaderResource | Read, false},
		{"write to read", RenderTarget | Write, FragmentShaderResource | Read, true},
		{"read to write", FragmentShaderResource | Read, RenderTarget | Write, true},
		{"undefined to write", Undefined, RenderTarget | Write, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NeedsBarrier(tt.from, tt.to); got != tt.want {
				t.Errorf("NeedsBarrier() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResourceState_ToImageLayout(t *testing.T) {
	tests := []struct {
		name  string
		state ResourceState
		want  ImageLayout
	}{
		{"undefined", Undefined, LayoutUndefined},
		{"render target", RenderTarget | Write, LayoutColorAttachmentOptimal},
		{"depth read+write", DepthRead | DepthWrite, LayoutDepthStencilAttachmentOptimal},
		{"fragment read", FragmentShaderResource | Read, LayoutShaderReadOnlyOptimal},
		{"compute write", ComputeShaderResource | Write, LayoutGeneral},
		{"copy src", CopySrc | Read, LayoutTransferSrcOptimal},
		{"copy dst", CopyDst | Write, LayoutTransferDstOptimal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.ToImageLayout(); got != tt.want {
				t.Errorf("ToImageLayout() = %v, want %v", got, tt.want)
			}
		})
	}
}
