// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package device

import (
	"errors"

	"github.com/gogpu/gputypes"
)

// ErrNoShaderCompiler is returned by NullDevice.CreateProgram.
var ErrNoShaderCompiler = errors.New("device: null device cannot compile programs")

// NullDevice is a Device that ignores every call.
// Its drawing buffer is 0x0 and it cannot create programs.
type NullDevice struct{}

func (NullDevice) Enable(Capability)                   {}
func (NullDevice) Disable(Capability)                  {}
func (NullDevice) BlendColor([4]float32)               {}
func (NullDevice) BlendEquation(BlendEquation)         {}
func (NullDevice) BlendFunc(BlendFunc)                 {}
func (NullDevice) DepthFunc(gputypes.CompareFunction)  {}
func (NullDevice) DepthMask(bool)                      {}
func (NullDevice) DepthRange(DepthRange)               {}
func (NullDevice) ColorMask(ColorMask)                 {}
func (NullDevice) CullFace(gputypes.CullMode)          {}
func (NullDevice) FrontFace(gputypes.FrontFace)        {}
func (NullDevice) LineWidth(float32)                   {}
func (NullDevice) PolygonOffset(PolygonOffset)         {}
func (NullDevice) SampleCoverage(SampleCoverage)       {}
func (NullDevice) StencilMask(uint32)                  {}
func (NullDevice) StencilFunc(StencilFunc)             {}
func (NullDevice) StencilOp(Face, StencilOp)           {}
func (NullDevice) Scissor(Rect)                        {}
func (NullDevice) Viewport(Rect)                       {}
func (NullDevice) BindFramebuffer(Framebuffer)         {}
func (NullDevice) UseProgram(Program)                  {}
func (NullDevice) BindVertexArray(VertexArray)         {}
func (NullDevice) BindAttribute(int, AttributeBinding) {}
func (NullDevice) ConstantAttribute(int, [4]float32)   {}
func (NullDevice) Uniform(UniformInfo, any)            {}
func (NullDevice) BindTexture(int, Texture)            {}
func (NullDevice) Clear(ClearRequest)                  {}

func (NullDevice) DrawArrays(gputypes.PrimitiveTopology, int, int)                           {}
func (NullDevice) DrawElements(gputypes.PrimitiveTopology, Elements, int, int)               {}
func (NullDevice) DrawArraysInstanced(gputypes.PrimitiveTopology, int, int, int)             {}
func (NullDevice) DrawElementsInstanced(gputypes.PrimitiveTopology, Elements, int, int, int) {}

// CreateProgram always fails with ErrNoShaderCompiler.
func (NullDevice) CreateProgram(string, string) (Program, error) {
	return nil, ErrNoShaderCompiler
}

// DrawingBufferSize returns 0, 0.
func (NullDevice) DrawingBufferSize() (int, int) { return 0, 0 }

var _ Device = NullDevice{}
