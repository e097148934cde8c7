// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package recorder

import (
	"slices"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/glcmd/device"
)

func TestNew(t *testing.T) {
	rec := New(800, 600)

	w, h := rec.DrawingBufferSize()
	if w != 800 || h != 600 {
		t.Errorf("DrawingBufferSize() = %d, %d, want 800, 600", w, h)
	}
	if !rec.Enabled(device.CapDither) {
		t.Error("dither should start enabled")
	}
	if rec.Enabled(device.CapDepthTest) {
		t.Error("depth test should start disabled")
	}
	if len(rec.Commands()) != 0 {
		t.Errorf("len(Commands()) = %d, want 0", len(rec.Commands()))
	}
}

func TestRecorderStateMirror(t *testing.T) {
	rec := New(100, 100)

	rec.Enable(device.CapBlend)
	rec.Viewport(device.Rect{Width: 10, Height: 20})
	rec.Viewport(device.Rect{Width: 30, Height: 40})
	rec.StencilOp(device.FaceBack, device.StencilOp{Fail: device.StencilZero})
	rec.Disable(device.CapBlend)

	if rec.Enabled(device.CapBlend) {
		t.Error("blend still enabled after Disable")
	}
	v, ok := rec.Value("Viewport")
	if !ok || v != (device.Rect{Width: 30, Height: 40}) {
		t.Errorf("Value(Viewport) = %v, %v", v, ok)
	}
	if got := rec.States("Viewport"); len(got) != 2 {
		t.Errorf("len(States(Viewport)) = %d, want 2", len(got))
	}
	if _, ok := rec.Value("StencilOpBack"); !ok {
		t.Error("StencilOp(FaceBack) not recorded as StencilOpBack")
	}
	if got := rec.StateCalls(); got != 5 {
		t.Errorf("StateCalls() = %d, want 5", got)
	}
	if rec.Count(CmdEnable) != 1 || rec.Count(CmdDisable) != 1 {
		t.Errorf("Enable/Disable counts = %d/%d, want 1/1", rec.Count(CmdEnable), rec.Count(CmdDisable))
	}
}

func TestRecorderDraws(t *testing.T) {
	rec := New(100, 100)
	prog := NewProgram(nil, nil)
	fb := NewFramebuffer(32, 16)
	el := NewElements(gputypes.PrimitiveTopologyLineList, 6)

	var seen []DrawCommand
	rec.OnDraw = func(d DrawCommand) { seen = append(seen, d) }

	rec.UseProgram(prog)
	rec.BindFramebuffer(fb)
	rec.DrawArrays(gputypes.PrimitiveTopologyTriangleList, 0, 3)
	rec.DrawElementsInstanced(gputypes.PrimitiveTopologyLineList, el, 2, 4, 5)

	draws := rec.Draws()
	if len(draws) != 2 || len(seen) != 2 {
		t.Fatalf("draws = %d, OnDraw calls = %d, want 2, 2", len(draws), len(seen))
	}
	if draws[0].Instanced() || draws[0].Elements != nil || draws[0].Count != 3 {
		t.Errorf("draws[0] = %+v", draws[0])
	}
	if !draws[1].Instanced() || draws[1].Instances != 5 || draws[1].First != 2 {
		t.Errorf("draws[1] = %+v", draws[1])
	}
	if draws[1].Program != prog || draws[1].Framebuffer != fb {
		t.Error("draw did not capture bindings")
	}

	rec.Reset()
	if rec.Count(CmdDraw) != 0 {
		t.Error("Reset kept counters")
	}
	if rec.Program() != prog {
		t.Error("Reset dropped bindings")
	}
}

func TestRecorderResources(t *testing.T) {
	fb := NewFramebuffer(64, 32)
	if fb.Width() != 64 || fb.Height() != 32 {
		t.Errorf("framebuffer size = %dx%d", fb.Width(), fb.Height())
	}
	if fb.ColorTexture() == nil || fb.ColorTexture().ID() == fb.ID() {
		t.Error("color texture must be a distinct resource")
	}

	ids := []uint64{NewBuffer(4).ID(), NewTexture(1, 1).ID(), fb.ID(), NewVertexArray(nil, 3).ID()}
	slices.Sort(ids)
	if len(slices.Compact(ids)) != 4 {
		t.Errorf("resource IDs not unique: %v", ids)
	}

	p := NewProgram(nil, []device.UniformInfo{{Name: "a"}, {Name: "b"}})
	if u := p.Uniforms(); u[1].Location != 1 || u[0].Size != 1 {
		t.Errorf("NewProgram uniforms = %+v", u)
	}
}

func TestRecorderCreateTexture(t *testing.T) {
	rec := New(10, 10)
	desc := device.TextureDescriptor{Label: "t", Width: 2, Height: 2}

	tex, err := rec.CreateTexture(desc, make([]byte, 16))
	if err != nil {
		t.Fatalf("CreateTexture: %v", err)
	}
	if tex.Width() != 2 || len(tex.(*Texture).Pixels()) != 16 {
		t.Errorf("texture = %dx%d, %d bytes", tex.Width(), tex.Height(), len(tex.(*Texture).Pixels()))
	}
	if _, err := rec.CreateTexture(desc, make([]byte, 3)); err == nil {
		t.Error("CreateTexture accepted a short pixel slice")
	}
	if rec.Count(CmdCreateTexture) != 1 {
		t.Errorf("Count(CreateTexture) = %d, want 1", rec.Count(CmdCreateTexture))
	}
}

func TestRecorderCreateProgram(t *testing.T) {
	const src = `
@group(0) @binding(0) var<uniform> tint: vec4<f32>;

@vertex
fn vs_main(@location(0) position: vec2<f32>) -> @builtin(position) vec4<f32> {
    return vec4<f32>(position, 0.0, 1.0);
}

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return tint;
}
`
	rec := New(10, 10)
	p, err := rec.CreateProgram(src, src)
	if err != nil {
		t.Fatalf("CreateProgram: %v", err)
	}
	if len(p.Attributes()) != 1 || p.Attributes()[0].Name != "position" {
		t.Errorf("Attributes() = %+v", p.Attributes())
	}
	if len(p.Uniforms()) != 1 || p.Uniforms()[0].Type != device.UniformVec4 {
		t.Errorf("Uniforms() = %+v", p.Uniforms())
	}

	if _, err := rec.CreateProgram("not wgsl", "not wgsl"); err == nil {
		t.Error("CreateProgram accepted invalid source")
	}

	rec.UseProgram(p)
	rec.DestroyProgram(p)
	if rec.Program() != nil {
		t.Error("DestroyProgram left the program in use")
	}
}

func TestRegistered(t *testing.T) {
	d, err := device.Open("recorder")
	if err != nil {
		t.Fatalf("Open(recorder): %v", err)
	}
	if _, ok := d.(*Recorder); !ok {
		t.Errorf("Open(recorder) = %T, want *Recorder", d)
	}
}

func TestCommandTypeString(t *testing.T) {
	if CmdDraw.String() != "Draw" || CommandType(200).String() != "Unknown" {
		t.Errorf("String() = %q, %q", CmdDraw, CommandType(200))
	}
}
