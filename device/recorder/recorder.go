// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package recorder

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/glcmd/device"
	"github.com/gogpu/glcmd/shader"
)

// Recorder is a device.Device that records every call.
//
// Besides the command list it keeps the last value of every state setter,
// the enabled capabilities, and the current bindings, so tests can check
// what the device would look like at any point.
//
// The Recorder is not safe for concurrent use.
type Recorder struct {
	width, height int
	commands      []Command
	counts        map[CommandType]int

	enabled map[device.Capability]bool
	values  map[string]any

	framebuffer device.Framebuffer
	program     device.Program
	vertexArray device.VertexArray
	textures    map[int]device.Texture
	uniforms    map[string]any

	// OnDraw, if set, is called for every draw after it is recorded.
	OnDraw func(DrawCommand)
}

var (
	_ device.Device           = (*Recorder)(nil)
	_ device.TextureCreator   = (*Recorder)(nil)
	_ device.ProgramDestroyer = (*Recorder)(nil)
)

// New creates a Recorder with a width x height drawing buffer. The
// mirrored state starts at the WebGL defaults: every capability except
// dither disabled.
func New(width, height int) *Recorder {
	r := &Recorder{width: width, height: height}
	r.Reset()
	r.enabled = map[device.Capability]bool{device.CapDither: true}
	r.values = make(map[string]any)
	return r
}

// Reset drops the recorded commands and counters. Mirrored state and
// bindings are kept.
func (r *Recorder) Reset() {
	r.commands = make([]Command, 0, 256)
	r.counts = make(map[CommandType]int)
	if r.textures == nil {
		r.textures = make(map[int]device.Texture)
		r.uniforms = make(map[string]any)
	}
}

// SetSize changes the drawing buffer size.
func (r *Recorder) SetSize(width, height int) {
	r.width, r.height = width, height
}

// Commands returns the recorded commands in call order.
func (r *Recorder) Commands() []Command { return r.commands }

// Count returns how many commands of type t were recorded.
func (r *Recorder) Count(t CommandType) int { return r.counts[t] }

// StateCalls returns the number of recorded Enable, Disable and state
// setter calls.
func (r *Recorder) StateCalls() int {
	return r.counts[CmdEnable] + r.counts[CmdDisable] + r.counts[CmdSetState]
}

// Draws returns the recorded draw commands.
func (r *Recorder) Draws() []DrawCommand {
	var out []DrawCommand
	for _, c := range r.commands {
		if d, ok := c.(DrawCommand); ok {
			out = append(out, d)
		}
	}
	return out
}

// States returns the recorded calls of one state setter, in order.
func (r *Recorder) States(name string) []any {
	var out []any
	for _, c := range r.commands {
		if s, ok := c.(SetStateCommand); ok && s.Name == name {
			out = append(out, s.Value)
		}
	}
	return out
}

// Enabled reports whether capability c is enabled on the device.
func (r *Recorder) Enabled(c device.Capability) bool { return r.enabled[c] }

// Value returns the last value passed to a state setter.
func (r *Recorder) Value(name string) (any, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Framebuffer returns the bound framebuffer (nil: default).
func (r *Recorder) Framebuffer() device.Framebuffer { return r.framebuffer }

// Program returns the program in use.
func (r *Recorder) Program() device.Program { return r.program }

// Texture returns the texture bound to unit.
func (r *Recorder) Texture(unit int) device.Texture { return r.textures[unit] }

// UniformValue returns the last value set for a uniform name.
func (r *Recorder) UniformValue(name string) (any, bool) {
	v, ok := r.uniforms[name]
	return v, ok
}

func (r *Recorder) record(c Command) {
	r.commands = append(r.commands, c)
	r.counts[c.Type()]++
}

func (r *Recorder) set(name string, v any) {
	r.values[name] = v
	r.record(SetStateCommand{Name: name, Value: v})
}

func (r *Recorder) Enable(c device.Capability) {
	r.enabled[c] = true
	r.record(EnableCommand{Cap: c, On: true})
}

func (r *Recorder) Disable(c device.Capability) {
	r.enabled[c] = false
	r.record(EnableCommand{Cap: c, On: false})
}

func (r *Recorder) BlendColor(c [4]float32)                { r.set("BlendColor", c) }
func (r *Recorder) BlendEquation(e device.BlendEquation)   { r.set("BlendEquation", e) }
func (r *Recorder) BlendFunc(f device.BlendFunc)           { r.set("BlendFunc", f) }
func (r *Recorder) DepthFunc(f gputypes.CompareFunction)   { r.set("DepthFunc", f) }
func (r *Recorder) DepthMask(write bool)                   { r.set("DepthMask", write) }
func (r *Recorder) DepthRange(d device.DepthRange)         { r.set("DepthRange", d) }
func (r *Recorder) ColorMask(m device.ColorMask)           { r.set("ColorMask", m) }
func (r *Recorder) CullFace(mode gputypes.CullMode)        { r.set("CullFace", mode) }
func (r *Recorder) FrontFace(face gputypes.FrontFace)      { r.set("FrontFace", face) }
func (r *Recorder) LineWidth(w float32)                    { r.set("LineWidth", w) }
func (r *Recorder) PolygonOffset(o device.PolygonOffset)   { r.set("PolygonOffset", o) }
func (r *Recorder) SampleCoverage(s device.SampleCoverage) { r.set("SampleCoverage", s) }
func (r *Recorder) StencilMask(mask uint32)                { r.set("StencilMask", mask) }
func (r *Recorder) StencilFunc(f device.StencilFunc)       { r.set("StencilFunc", f) }
func (r *Recorder) Scissor(rect device.Rect)               { r.set("Scissor", rect) }
func (r *Recorder) Viewport(rect device.Rect)              { r.set("Viewport", rect) }

func (r *Recorder) StencilOp(face device.Face, op device.StencilOp) {
	name := "StencilOpFront"
	if face == device.FaceBack {
		name = "StencilOpBack"
	}
	r.set(name, op)
}

func (r *Recorder) BindFramebuffer(fb device.Framebuffer) {
	r.framebuffer = fb
	r.record(BindFramebufferCommand{Framebuffer: fb})
}

func (r *Recorder) UseProgram(p device.Program) {
	r.program = p
	r.record(UseProgramCommand{Program: p})
}

func (r *Recorder) BindVertexArray(vao device.VertexArray) {
	r.vertexArray = vao
	r.record(BindVertexArrayCommand{VertexArray: vao})
}

func (r *Recorder) BindAttribute(location int, b device.AttributeBinding) {
	r.record(BindAttributeCommand{Location: location, Binding: b})
}

func (r *Recorder) ConstantAttribute(location int, v [4]float32) {
	r.record(ConstantAttributeCommand{Location: location, Value: v})
}

func (r *Recorder) Uniform(u device.UniformInfo, value any) {
	r.uniforms[u.Name] = value
	r.record(UniformCommand{Uniform: u, Value: value})
}

func (r *Recorder) BindTexture(unit int, tex device.Texture) {
	r.textures[unit] = tex
	r.record(BindTextureCommand{Unit: unit, Texture: tex})
}

func (r *Recorder) draw(mode gputypes.PrimitiveTopology, el device.Elements, first, count, instances int) {
	d := DrawCommand{
		Mode:        mode,
		Elements:    el,
		First:       first,
		Count:       count,
		Instances:   instances,
		Program:     r.program,
		Framebuffer: r.framebuffer,
	}
	r.record(d)
	if r.OnDraw != nil {
		r.OnDraw(d)
	}
}

func (r *Recorder) DrawArrays(mode gputypes.PrimitiveTopology, first, count int) {
	r.draw(mode, nil, first, count, -1)
}

func (r *Recorder) DrawElements(mode gputypes.PrimitiveTopology, el device.Elements, offset, count int) {
	r.draw(mode, el, offset, count, -1)
}

func (r *Recorder) DrawArraysInstanced(mode gputypes.PrimitiveTopology, first, count, instances int) {
	r.draw(mode, nil, first, count, instances)
}

func (r *Recorder) DrawElementsInstanced(mode gputypes.PrimitiveTopology, el device.Elements, offset, count, instances int) {
	r.draw(mode, el, offset, count, instances)
}

func (r *Recorder) Clear(c device.ClearRequest) {
	r.record(ClearCommand{Request: c})
}

// CreateProgram reflects WGSL vertex and fragment sources into a program.
func (r *Recorder) CreateProgram(vert, frag string) (device.Program, error) {
	refl, err := shader.Reflect(vert, frag)
	if err != nil {
		return nil, fmt.Errorf("recorder: %w", err)
	}
	p := NewProgram(refl.Attributes, refl.Uniforms)
	p.vert, p.frag = vert, frag
	r.record(CreateProgramCommand{Program: p})
	return p, nil
}

// CreateTexture stores a copy of pixels in a new texture.
func (r *Recorder) CreateTexture(desc device.TextureDescriptor, pixels []byte) (device.Texture, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return nil, fmt.Errorf("recorder: invalid texture size %dx%d", desc.Width, desc.Height)
	}
	if want := desc.Width * desc.Height * 4; len(pixels) != want {
		return nil, fmt.Errorf("recorder: texture %q: got %d bytes, want %d", desc.Label, len(pixels), want)
	}
	t := NewTexture(desc.Width, desc.Height)
	t.pixels = append([]byte(nil), pixels...)
	r.record(CreateTextureCommand{Texture: t, Descriptor: desc})
	return t, nil
}

func (r *Recorder) DestroyProgram(p device.Program) {
	if r.program != nil && r.program.ID() == p.ID() {
		r.program = nil
	}
	r.record(DestroyProgramCommand{Program: p})
}

func (r *Recorder) DrawingBufferSize() (int, int) { return r.width, r.height }
