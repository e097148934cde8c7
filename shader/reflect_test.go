// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

import (
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/glcmd/device"
)

const quadWGSL = `
struct Params {
    color: vec4<f32>,
    scale: f32,
}

@group(0) @binding(0) var<uniform> params: Params;

@vertex
fn vs_main(@location(0) position: vec2<f32>, @location(1) uv: vec2<f32>) -> @builtin(position) vec4<f32> {
    return vec4<f32>(position.x * params.scale, position.y * params.scale, 0.0, 1.0);
}

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return params.color;
}
`

func TestReflectSingleModule(t *testing.T) {
	r, err := Reflect(quadWGSL, quadWGSL)
	if err != nil {
		t.Fatalf("Reflect: %v", err)
	}

	wantAttrs := []device.AttributeInfo{
		{Name: "position", Location: 0, Format: gputypes.VertexFormatFloat32x2},
		{Name: "uv", Location: 1, Format: gputypes.VertexFormatFloat32x2},
	}
	if len(r.Attributes) != len(wantAttrs) {
		t.Fatalf("len(Attributes) = %d, want %d", len(r.Attributes), len(wantAttrs))
	}
	for i, want := range wantAttrs {
		if r.Attributes[i] != want {
			t.Errorf("Attributes[%d] = %+v, want %+v", i, r.Attributes[i], want)
		}
	}

	wantUniforms := map[string]device.UniformType{
		"color": device.UniformVec4,
		"scale": device.UniformFloat,
	}
	if len(r.Uniforms) != len(wantUniforms) {
		t.Fatalf("len(Uniforms) = %d, want %d", len(r.Uniforms), len(wantUniforms))
	}
	for _, u := range r.Uniforms {
		if want, ok := wantUniforms[u.Name]; !ok || u.Type != want {
			t.Errorf("uniform %s type = %v, want %v", u.Name, u.Type, want)
		}
		if u.Size != 1 {
			t.Errorf("uniform %s size = %d, want 1", u.Name, u.Size)
		}
	}
}

func TestReflectTexture(t *testing.T) {
	src := `
@group(0) @binding(0) var tex: texture_2d<f32>;
@group(0) @binding(1) var samp: sampler;

@vertex
fn vs_main(@location(0) position: vec2<f32>) -> @builtin(position) vec4<f32> {
    return vec4<f32>(position, 0.0, 1.0);
}

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return textureSample(tex, samp, vec2<f32>(0.5, 0.5));
}
`
	r, err := Reflect(src, src)
	if err != nil {
		t.Fatalf("Reflect: %v", err)
	}
	if len(r.Uniforms) != 1 {
		t.Fatalf("len(Uniforms) = %d, want 1 (sampler folded into texture)", len(r.Uniforms))
	}
	if u := r.Uniforms[0]; u.Name != "tex" || u.Type != device.UniformSampler2D {
		t.Errorf("uniform = %+v, want tex sampler2D", u)
	}
}

func TestReflectMissingEntryPoints(t *testing.T) {
	vertOnly := `
@vertex
fn vs_main(@location(0) p: vec4<f32>) -> @builtin(position) vec4<f32> {
    return p;
}
`
	fragOnly := `
@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0, 0.0, 0.0, 1.0);
}
`
	if _, err := Reflect(vertOnly, vertOnly); !errors.Is(err, ErrNoFragmentEntry) {
		t.Errorf("vertex-only: err = %v, want ErrNoFragmentEntry", err)
	}
	if _, err := Reflect(fragOnly, fragOnly); !errors.Is(err, ErrNoVertexEntry) {
		t.Errorf("fragment-only: err = %v, want ErrNoVertexEntry", err)
	}

	r, err := Reflect(vertOnly, fragOnly)
	if err != nil {
		t.Fatalf("split sources: %v", err)
	}
	if len(r.Attributes) != 1 || r.Attributes[0].Format != gputypes.VertexFormatFloat32x4 {
		t.Errorf("Attributes = %+v, want one vec4 attribute", r.Attributes)
	}
}

func TestReflectSyntaxError(t *testing.T) {
	_, err := Reflect("fn broken( {", "fn broken( {")
	if err == nil {
		t.Fatal("Reflect accepted invalid WGSL")
	}
	if !strings.Contains(err.Error(), "vertex") {
		t.Errorf("error %q does not name the stage", err)
	}
}

func TestToGLSL(t *testing.T) {
	src, err := ToGLSL(quadWGSL, StageVertex)
	if err != nil {
		t.Fatalf("ToGLSL vertex: %v", err)
	}
	if !strings.Contains(src, "#version 300 es") {
		t.Errorf("vertex GLSL missing ES 3.00 version line:\n%s", src)
	}
	if _, err := ToGLSL(quadWGSL, StageFragment); err != nil {
		t.Errorf("ToGLSL fragment: %v", err)
	}
}

func TestToGLSLTarget(t *testing.T) {
	src, err := ToGLSLTarget(quadWGSL, StageVertex, TargetCore330)
	if err != nil {
		t.Fatalf("ToGLSLTarget: %v", err)
	}
	if !strings.HasPrefix(src, "#version 330 core") {
		t.Errorf("vertex GLSL missing 3.30 core version line:\n%s", src)
	}
	if TargetCore330.String() != "330 core" || TargetES300.String() != "300 es" {
		t.Errorf("Target strings = %q, %q", TargetCore330, TargetES300)
	}
}

func TestIsGLSL(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"#version 330 core\nvoid main() {}", true},
		{"\n  #version 300 es\n", true},
		{quadWGSL, false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsGLSL(tt.src); got != tt.want {
			t.Errorf("IsGLSL(%.20q) = %v, want %v", tt.src, got, tt.want)
		}
	}
}

func TestStageString(t *testing.T) {
	if StageVertex.String() != "vertex" || StageFragment.String() != "fragment" {
		t.Errorf("Stage strings = %q, %q", StageVertex, StageFragment)
	}
}
