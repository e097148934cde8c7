// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build opengl

package opengl

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/glcmd"
	"github.com/gogpu/glcmd/device"
	"github.com/gogpu/glcmd/shader"
)

// Device is a device.Device on the current OpenGL context.
type Device struct {
	width, height int

	vao         uint32
	boundVAO    *VertexArray
	program     *Program
	framebuffer *Framebuffer
	units       []uint32
}

// New initializes the GL function pointers of the current context and
// returns a device whose default framebuffer is width x height.
func New(width, height int) (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("opengl: init: %w", err)
	}
	var units int32
	gl.GetIntegerv(gl.MAX_COMBINED_TEXTURE_IMAGE_UNITS, &units)

	d := &Device{width: width, height: height, units: make([]uint32, max(units, 1))}
	// Core profiles draw nothing without a bound vertex array.
	gl.GenVertexArrays(1, &d.vao)
	gl.BindVertexArray(d.vao)

	glcmd.Logger().Info("opengl: device created",
		"version", gl.GoStr(gl.GetString(gl.VERSION)),
		"renderer", gl.GoStr(gl.GetString(gl.RENDERER)),
		"textureUnits", units)
	return d, nil
}

// Resize updates the size of the default framebuffer, e.g. after the
// window was resized.
func (d *Device) Resize(width, height int) {
	d.width, d.height = width, height
}

// DrawingBufferSize implements device.Device.
func (d *Device) DrawingBufferSize() (int, int) { return d.width, d.height }

// Release deletes the default vertex array. Resources created by the
// device are released by their own Release methods.
func (d *Device) Release() {
	if d.vao != 0 {
		gl.DeleteVertexArrays(1, &d.vao)
		d.vao = 0
	}
}

func (d *Device) Enable(c device.Capability) {
	if v, ok := capability(c); ok {
		gl.Enable(v)
	}
}

func (d *Device) Disable(c device.Capability) {
	if v, ok := capability(c); ok {
		gl.Disable(v)
	}
}

func (d *Device) BlendColor(c [4]float32) { gl.BlendColor(c[0], c[1], c[2], c[3]) }

func (d *Device) BlendEquation(e device.BlendEquation) {
	gl.BlendEquationSeparate(blendOperation(e.RGB), blendOperation(e.Alpha))
}

func (d *Device) BlendFunc(f device.BlendFunc) {
	gl.BlendFuncSeparate(blendFactor(f.SrcRGB), blendFactor(f.DstRGB), blendFactor(f.SrcAlpha), blendFactor(f.DstAlpha))
}

func (d *Device) DepthFunc(f gputypes.CompareFunction) { gl.DepthFunc(compareFunction(f)) }
func (d *Device) DepthMask(write bool)                 { gl.DepthMask(write) }

func (d *Device) DepthRange(r device.DepthRange) {
	gl.DepthRange(float64(r.Near), float64(r.Far))
}

func (d *Device) ColorMask(m device.ColorMask)         { gl.ColorMask(m[0], m[1], m[2], m[3]) }
func (d *Device) CullFace(mode gputypes.CullMode)      { gl.CullFace(cullFace(mode)) }
func (d *Device) FrontFace(face gputypes.FrontFace)    { gl.FrontFace(frontFace(face)) }
func (d *Device) PolygonOffset(o device.PolygonOffset) { gl.PolygonOffset(o.Factor, o.Units) }

// LineWidth sets the rasterized line width. Core profiles only guarantee
// a width of 1.
func (d *Device) LineWidth(w float32) { gl.LineWidth(w) }

func (d *Device) SampleCoverage(s device.SampleCoverage) { gl.SampleCoverage(s.Value, s.Invert) }
func (d *Device) StencilMask(mask uint32)                { gl.StencilMask(mask) }

func (d *Device) StencilFunc(f device.StencilFunc) {
	gl.StencilFunc(compareFunction(f.Compare), f.Ref, f.Mask)
}

func (d *Device) StencilOp(f device.Face, op device.StencilOp) {
	gl.StencilOpSeparate(face(f), stencilOperation(op.Fail), stencilOperation(op.ZFail), stencilOperation(op.ZPass))
}

func (d *Device) Scissor(r device.Rect) {
	gl.Scissor(int32(r.X), int32(r.Y), int32(r.Width), int32(r.Height))
}

func (d *Device) Viewport(r device.Rect) {
	gl.Viewport(int32(r.X), int32(r.Y), int32(r.Width), int32(r.Height))
}

func (d *Device) BindFramebuffer(fb device.Framebuffer) {
	d.framebuffer = nil
	if fb != nil {
		f, ok := fb.(*Framebuffer)
		if !ok {
			glcmd.Logger().Warn("opengl: foreign framebuffer bound as default", "type", fmt.Sprintf("%T", fb))
		}
		d.framebuffer = f
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, d.boundFramebuffer())
}

func (d *Device) boundFramebuffer() uint32 {
	if d.framebuffer == nil {
		return 0
	}
	return d.framebuffer.name
}

func (d *Device) UseProgram(p device.Program) {
	d.program = nil
	var name uint32
	if p != nil {
		prog, ok := p.(*Program)
		if !ok {
			glcmd.Logger().Warn("opengl: foreign program ignored", "type", fmt.Sprintf("%T", p))
		} else {
			d.program, name = prog, prog.name
		}
	}
	gl.UseProgram(name)
}

func (d *Device) BindVertexArray(vao device.VertexArray) {
	d.boundVAO = nil
	if vao != nil {
		v, ok := vao.(*VertexArray)
		if !ok {
			glcmd.Logger().Warn("opengl: foreign vertex array ignored", "type", fmt.Sprintf("%T", vao))
		}
		d.boundVAO = v
	}
	gl.BindVertexArray(d.vertexArray())
}

func (d *Device) vertexArray() uint32 {
	if d.boundVAO == nil {
		return d.vao
	}
	return d.boundVAO.name
}

func (d *Device) BindAttribute(location int, b device.AttributeBinding) {
	pointer(uint32(location), b)
}

// pointer sources attribute loc of the bound vertex array from b.
func pointer(loc uint32, b device.AttributeBinding) {
	var name uint32
	if buf, ok := b.Buffer.(*Buffer); ok {
		name = buf.name
	}
	l := vertexFormat(b.Format)
	gl.BindBuffer(gl.ARRAY_BUFFER, name)
	gl.EnableVertexAttribArray(loc)
	gl.VertexAttribPointer(loc, l.size, l.xtype, l.normalized || b.Normalized, int32(b.Stride), gl.PtrOffset(b.Offset))
	gl.VertexAttribDivisor(loc, uint32(b.Divisor))
}

func (d *Device) ConstantAttribute(location int, v [4]float32) {
	loc := uint32(location)
	gl.DisableVertexAttribArray(loc)
	gl.VertexAttrib4f(loc, v[0], v[1], v[2], v[3])
}

func (d *Device) Uniform(u device.UniformInfo, v any) {
	if d.program == nil {
		return
	}
	if err := d.program.set(u, v); err != nil {
		glcmd.Logger().Warn("opengl: uniform not set", "err", err)
	}
}

func (d *Device) BindTexture(unit int, tex device.Texture) {
	if unit < 0 || unit >= len(d.units) {
		glcmd.Logger().Warn("opengl: texture unit out of range", "unit", unit, "units", len(d.units))
		return
	}
	var name uint32
	if t, ok := tex.(*Texture); ok {
		name = t.name
	}
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	gl.BindTexture(gl.TEXTURE_2D, name)
	d.units[unit] = name
}

func (d *Device) DrawArrays(mode gputypes.PrimitiveTopology, first, count int) {
	d.flush()
	gl.DrawArrays(primitive(mode), int32(first), int32(count))
}

func (d *Device) DrawElements(mode gputypes.PrimitiveTopology, elements device.Elements, offset, count int) {
	xtype, start, ok := d.bindElements(elements, offset)
	if !ok {
		return
	}
	d.flush()
	gl.DrawElements(primitive(mode), int32(count), xtype, start)
}

func (d *Device) DrawArraysInstanced(mode gputypes.PrimitiveTopology, first, count, instances int) {
	d.flush()
	gl.DrawArraysInstanced(primitive(mode), int32(first), int32(count), int32(instances))
}

func (d *Device) DrawElementsInstanced(mode gputypes.PrimitiveTopology, elements device.Elements, offset, count, instances int) {
	xtype, start, ok := d.bindElements(elements, offset)
	if !ok {
		return
	}
	d.flush()
	gl.DrawElementsInstanced(primitive(mode), int32(count), xtype, start, int32(instances))
}

// bindElements binds the index buffer to the current vertex array and
// returns its index type and the byte offset of index offset.
func (d *Device) bindElements(elements device.Elements, offset int) (uint32, unsafe.Pointer, bool) {
	e, ok := elements.(*Elements)
	if !ok {
		glcmd.Logger().Warn("opengl: foreign elements ignored", "type", fmt.Sprintf("%T", elements))
		return 0, nil, false
	}
	xtype, size := indexType(e.format)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, e.name)
	return xtype, gl.PtrOffset(offset * size), true
}

// flush uploads the dirty uniform blocks of the current program.
func (d *Device) flush() {
	if d.program != nil {
		d.program.flush()
	}
}

func (d *Device) Clear(c device.ClearRequest) {
	var mask uint32
	if c.Color != nil {
		gl.ClearColor(c.Color[0], c.Color[1], c.Color[2], c.Color[3])
		mask |= gl.COLOR_BUFFER_BIT
	}
	if c.Depth != nil {
		gl.ClearDepth(float64(*c.Depth))
		mask |= gl.DEPTH_BUFFER_BIT
	}
	if c.Stencil != nil {
		gl.ClearStencil(*c.Stencil)
		mask |= gl.STENCIL_BUFFER_BIT
	}
	if mask != 0 {
		gl.Clear(mask)
	}
}

// CreateProgram implements device.Device. WGSL sources are translated to
// GLSL 3.30 core first.
func (d *Device) CreateProgram(vert, frag string) (device.Program, error) {
	vs, err := glslSource(vert, shader.StageVertex)
	if err != nil {
		return nil, err
	}
	fs, err := glslSource(frag, shader.StageFragment)
	if err != nil {
		return nil, err
	}
	return linkProgram(vs, fs)
}

func glslSource(src string, stage shader.Stage) (string, error) {
	if shader.IsGLSL(src) {
		return src, nil
	}
	return shader.ToGLSLTarget(src, stage, shader.TargetCore330)
}

// DestroyProgram implements device.ProgramDestroyer.
func (d *Device) DestroyProgram(p device.Program) {
	prog, ok := p.(*Program)
	if !ok {
		return
	}
	if d.program == prog {
		d.program = nil
		gl.UseProgram(0)
	}
	prog.Release()
}

var (
	_ device.Device           = (*Device)(nil)
	_ device.TextureCreator   = (*Device)(nil)
	_ device.ProgramDestroyer = (*Device)(nil)
)
