// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package device defines the immediate-mode graphics device consumed by the
// glcmd command compiler.
//
// The device mirrors the WebGL 2 state machine: fixed-function state setters,
// program and resource binds, and draw calls. Resource handles are opaque to
// the compiler; it relies only on their stable identity (ID) and, for
// programs, on the introspected attribute and uniform lists.
//
// Enumerated state values use github.com/gogpu/gputypes so the same values
// can be translated into WebGPU pipeline state without a mapping table per
// backend.
//
// Implementations register themselves by name (database/sql driver pattern):
//
//	func init() {
//	    device.Register("recorder", func() (device.Device, error) {
//	        return recorder.New(640, 480), nil
//	    })
//	}
package device

import "github.com/gogpu/gputypes"

// Device is a WebGL-like immediate-mode device.
//
// All methods are called from a single goroutine. State setters are only
// called when the tracked value changes, so implementations should apply
// them unconditionally.
type Device interface {
	Enable(c Capability)
	Disable(c Capability)

	BlendColor(c [4]float32)
	BlendEquation(e BlendEquation)
	BlendFunc(f BlendFunc)
	DepthFunc(f gputypes.CompareFunction)
	DepthMask(write bool)
	DepthRange(r DepthRange)
	ColorMask(m ColorMask)
	CullFace(mode gputypes.CullMode)
	FrontFace(face gputypes.FrontFace)
	LineWidth(w float32)
	PolygonOffset(o PolygonOffset)
	SampleCoverage(s SampleCoverage)
	StencilMask(mask uint32)
	StencilFunc(f StencilFunc)
	StencilOp(face Face, op StencilOp)
	Scissor(r Rect)
	Viewport(r Rect)

	// BindFramebuffer binds fb, or the default framebuffer when fb is nil.
	BindFramebuffer(fb Framebuffer)
	UseProgram(p Program)
	// BindVertexArray binds vao, or no vertex array when vao is nil.
	BindVertexArray(vao VertexArray)
	BindAttribute(location int, b AttributeBinding)
	ConstantAttribute(location int, v [4]float32)
	// Uniform sets a uniform of the currently used program. The value is
	// already converted to the Go type matching u.Type (see UniformType).
	Uniform(u UniformInfo, value any)
	BindTexture(unit int, tex Texture)

	DrawArrays(mode gputypes.PrimitiveTopology, first, count int)
	DrawElements(mode gputypes.PrimitiveTopology, elements Elements, offset, count int)
	DrawArraysInstanced(mode gputypes.PrimitiveTopology, first, count, instances int)
	DrawElementsInstanced(mode gputypes.PrimitiveTopology, elements Elements, offset, count, instances int)

	Clear(c ClearRequest)

	// CreateProgram compiles and links a program from vertex and fragment
	// sources and returns it with its attribute and uniform lists resolved.
	CreateProgram(vert, frag string) (Program, error)

	// DrawingBufferSize returns the size of the default framebuffer.
	DrawingBufferSize() (width, height int)
}

// TextureCreator is implemented by devices that can upload RGBA8 textures.
type TextureCreator interface {
	CreateTexture(desc TextureDescriptor, pixels []byte) (Texture, error)
}

// TextureDescriptor describes a 2D texture upload.
type TextureDescriptor struct {
	Label  string
	Width  int
	Height int

	// Format is the texel format. Only RGBA8Unorm uploads are produced by
	// glcmd itself.
	Format gputypes.TextureFormat

	// Mipmap requests mipmap generation after upload.
	Mipmap bool
}

// ProgramDestroyer is implemented by devices that release program objects.
type ProgramDestroyer interface {
	DestroyProgram(p Program)
}

// ClearRequest describes a clear of the bound framebuffer.
// Nil fields are left untouched.
type ClearRequest struct {
	Color   *[4]float32
	Depth   *float32
	Stencil *int32
}
