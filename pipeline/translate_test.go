// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pipeline

import (
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/glcmd/device"
)

func TestTranslateDefaults(t *testing.T) {
	st := Translate(DefaultSnapshot(640, 480), gputypes.TextureFormatBGRA8Unorm)

	if st.Primitive.Topology != gputypes.PrimitiveTopologyTriangleList {
		t.Errorf("Topology = %v, want TriangleList", st.Primitive.Topology)
	}
	if st.Primitive.CullMode != gputypes.CullModeNone {
		t.Errorf("CullMode = %v, want None while culling is disabled", st.Primitive.CullMode)
	}
	if st.Primitive.StripIndexFormat != nil {
		t.Error("StripIndexFormat set for a list topology")
	}
	ds := st.DepthStencil
	if ds.Format != DepthFormat || ds.DepthCompare != gputypes.CompareFunctionLess || !ds.DepthWriteEnabled {
		t.Errorf("DepthStencil = %+v, want less with writes", ds)
	}
	if ds.StencilWriteMask != 0 {
		t.Errorf("StencilWriteMask = %#x, want 0 while stencil test is disabled", ds.StencilWriteMask)
	}
	if st.ColorTarget.Format != gputypes.TextureFormatBGRA8Unorm {
		t.Errorf("ColorTarget.Format = %v", st.ColorTarget.Format)
	}
	if st.ColorTarget.Blend != nil {
		t.Error("Blend set while blending is disabled")
	}
	if st.ColorTarget.WriteMask != gputypes.ColorWriteMaskAll {
		t.Errorf("WriteMask = %v, want All", st.ColorTarget.WriteMask)
	}
	if st.Multisample.Count != 1 || st.Multisample.Mask != 0xFFFFFFFF {
		t.Errorf("Multisample = %+v", st.Multisample)
	}
	if st.Dynamic.Viewport != (device.Rect{Width: 640, Height: 480}) {
		t.Errorf("Viewport = %v, want full target", st.Dynamic.Viewport)
	}
	if st.Dynamic.MinDepth != 0 || st.Dynamic.MaxDepth != 1 {
		t.Errorf("depth range = %v..%v, want 0..1", st.Dynamic.MinDepth, st.Dynamic.MaxDepth)
	}
}

func TestTranslateDepthDisabled(t *testing.T) {
	s := DefaultSnapshot(8, 8)
	s.DepthTest = false
	s.DepthFunc = gputypes.CompareFunctionGreater

	ds := Translate(s, OffscreenFormat).DepthStencil
	if ds.DepthCompare != gputypes.CompareFunctionAlways {
		t.Errorf("DepthCompare = %v, want Always", ds.DepthCompare)
	}
	if ds.DepthWriteEnabled {
		t.Error("depth writes enabled while the depth test is off")
	}
}

func TestTranslateStencil(t *testing.T) {
	s := DefaultSnapshot(8, 8)
	s.StencilTest = true
	s.StencilMask = 0x0F
	s.StencilFunc = device.StencilFunc{Compare: gputypes.CompareFunctionEqual, Ref: 3, Mask: 0xF0}
	s.StencilOpFront = device.StencilOp{Fail: device.StencilZero, ZFail: device.StencilIncrement, ZPass: device.StencilIncrementWrap}
	s.StencilOpBack = device.StencilOp{Fail: device.StencilInvert, ZFail: device.StencilDecrement, ZPass: device.StencilDecrementWrap}

	st := Translate(s, OffscreenFormat)
	ds := st.DepthStencil
	wantFront := hal.StencilFaceState{
		Compare:     gputypes.CompareFunctionEqual,
		FailOp:      hal.StencilOperationZero,
		DepthFailOp: hal.StencilOperationIncrementClamp,
		PassOp:      hal.StencilOperationIncrementWrap,
	}
	wantBack := hal.StencilFaceState{
		Compare:     gputypes.CompareFunctionEqual,
		FailOp:      hal.StencilOperationInvert,
		DepthFailOp: hal.StencilOperationDecrementClamp,
		PassOp:      hal.StencilOperationDecrementWrap,
	}
	if ds.StencilFront != wantFront {
		t.Errorf("StencilFront = %+v, want %+v", ds.StencilFront, wantFront)
	}
	if ds.StencilBack != wantBack {
		t.Errorf("StencilBack = %+v, want %+v", ds.StencilBack, wantBack)
	}
	if ds.StencilReadMask != 0xF0 || ds.StencilWriteMask != 0x0F {
		t.Errorf("masks = %#x/%#x, want 0xf0/0xf", ds.StencilReadMask, ds.StencilWriteMask)
	}
	if st.Dynamic.StencilReference != 3 {
		t.Errorf("StencilReference = %d, want 3", st.Dynamic.StencilReference)
	}
}

func TestStencilOperationTable(t *testing.T) {
	tests := []struct {
		in   device.StencilOperation
		want hal.StencilOperation
	}{
		{device.StencilKeep, hal.StencilOperationKeep},
		{device.StencilZero, hal.StencilOperationZero},
		{device.StencilReplace, hal.StencilOperationReplace},
		{device.StencilInvert, hal.StencilOperationInvert},
		{device.StencilIncrement, hal.StencilOperationIncrementClamp},
		{device.StencilDecrement, hal.StencilOperationDecrementClamp},
		{device.StencilIncrementWrap, hal.StencilOperationIncrementWrap},
		{device.StencilDecrementWrap, hal.StencilOperationDecrementWrap},
	}
	for _, tt := range tests {
		if got := stencilOperation(tt.in); got != tt.want {
			t.Errorf("stencilOperation(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestTranslateBlend(t *testing.T) {
	s := DefaultSnapshot(8, 8)
	s.Blend = true
	s.BlendColor = [4]float32{0.5, 0.25, 0, 1}
	s.BlendFunc = device.BlendFunc{
		SrcRGB: gputypes.BlendFactorSrcAlpha, DstRGB: gputypes.BlendFactorOneMinusSrcAlpha,
		SrcAlpha: gputypes.BlendFactorZero, DstAlpha: gputypes.BlendFactorZero,
	}
	s.BlendEquation = device.BlendEquation{RGB: gputypes.BlendOperationAdd, Alpha: gputypes.BlendOperationMax}

	st := Translate(s, OffscreenFormat)
	b := st.ColorTarget.Blend
	if b == nil {
		t.Fatal("Blend is nil while blending is enabled")
	}
	wantColor := gputypes.BlendComponent{
		SrcFactor: gputypes.BlendFactorSrcAlpha,
		DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
		Operation: gputypes.BlendOperationAdd,
	}
	if b.Color != wantColor {
		t.Errorf("Color = %+v, want %+v", b.Color, wantColor)
	}
	// Max ignores the factors, WebGPU wants them to be One.
	wantAlpha := gputypes.BlendComponent{
		SrcFactor: gputypes.BlendFactorOne,
		DstFactor: gputypes.BlendFactorOne,
		Operation: gputypes.BlendOperationMax,
	}
	if b.Alpha != wantAlpha {
		t.Errorf("Alpha = %+v, want %+v", b.Alpha, wantAlpha)
	}
	want := gputypes.Color{R: 0.5, G: 0.25, B: 0, A: 1}
	if st.Dynamic.BlendConstant != want {
		t.Errorf("BlendConstant = %+v, want %+v", st.Dynamic.BlendConstant, want)
	}
}

func TestWriteMask(t *testing.T) {
	tests := []struct {
		m    device.ColorMask
		want gputypes.ColorWriteMask
	}{
		{device.ColorMask{}, gputypes.ColorWriteMaskNone},
		{device.ColorMask{true, false, false, false}, gputypes.ColorWriteMaskRed},
		{device.ColorMask{false, true, true, false}, gputypes.ColorWriteMaskGreen | gputypes.ColorWriteMaskBlue},
		{device.ColorMask{true, true, true, true}, gputypes.ColorWriteMaskAll},
	}
	for _, tt := range tests {
		if got := writeMask(tt.m); got != tt.want {
			t.Errorf("writeMask(%v) = %v, want %v", tt.m, got, tt.want)
		}
	}
}

func TestTranslateCullAndStrip(t *testing.T) {
	s := DefaultSnapshot(8, 8)
	s.CullFace = true
	s.CullMode = gputypes.CullModeFront
	s.FrontFace = gputypes.FrontFaceCW
	s.Topology = gputypes.PrimitiveTopologyTriangleStrip
	s.IndexFormat = gputypes.IndexFormatUint16

	p := Translate(s, OffscreenFormat).Primitive
	if p.CullMode != gputypes.CullModeFront || p.FrontFace != gputypes.FrontFaceCW {
		t.Errorf("Primitive = %+v, want front culling with CW front faces", p)
	}
	if p.StripIndexFormat == nil || *p.StripIndexFormat != gputypes.IndexFormatUint16 {
		t.Errorf("StripIndexFormat = %v, want Uint16", p.StripIndexFormat)
	}
}

func TestTranslatePolygonOffset(t *testing.T) {
	s := DefaultSnapshot(8, 8)
	s.PolygonOffset = device.PolygonOffset{Factor: 1.5, Units: 2}

	if ds := Translate(s, OffscreenFormat).DepthStencil; ds.DepthBias != 0 || ds.DepthBiasSlopeScale != 0 {
		t.Errorf("depth bias applied while polygon offset fill is off: %+v", ds)
	}
	s.PolygonOffsetFill = true
	ds := Translate(s, OffscreenFormat).DepthStencil
	if ds.DepthBias != 2 || ds.DepthBiasSlopeScale != 1.5 {
		t.Errorf("DepthBias = %d, slope = %v, want 2, 1.5", ds.DepthBias, ds.DepthBiasSlopeScale)
	}
}

func TestTranslateSampleCoverage(t *testing.T) {
	tests := []struct {
		value  float32
		invert bool
		mask   uint64
	}{
		{1, false, 0xFFFFFFFF},
		{0, false, 0},
		{0, true, 0xFFFFFFFF},
		{1, true, 0},
	}
	for _, tt := range tests {
		s := DefaultSnapshot(8, 8)
		s.SampleCoverage = true
		s.Coverage = device.SampleCoverage{Value: tt.value, Invert: tt.invert}
		if got := Translate(s, OffscreenFormat).Multisample.Mask; got != tt.mask {
			t.Errorf("coverage %v invert=%v: Mask = %#x, want %#x", tt.value, tt.invert, got, tt.mask)
		}
	}

	s := DefaultSnapshot(8, 8)
	s.AlphaToCoverage = true
	if !Translate(s, OffscreenFormat).Multisample.AlphaToCoverageEnabled {
		t.Error("AlphaToCoverageEnabled not set")
	}
}

func TestTranslateFlipsRectangles(t *testing.T) {
	s := DefaultSnapshot(100, 50)
	s.Viewport = device.Rect{X: 10, Y: 5, Width: 20, Height: 10}
	s.ScissorTest = true
	s.Scissor = device.Rect{X: 90, Y: 40, Width: 20, Height: 20}

	d := Translate(s, OffscreenFormat).Dynamic
	if want := (device.Rect{X: 10, Y: 35, Width: 20, Height: 10}); d.Viewport != want {
		t.Errorf("Viewport = %v, want %v", d.Viewport, want)
	}
	// The scissor box hangs off the top-right corner and is clipped.
	if want := (device.Rect{X: 90, Y: 0, Width: 10, Height: 10}); d.Scissor != want {
		t.Errorf("Scissor = %v, want %v", d.Scissor, want)
	}

	s.Scissor = device.Rect{X: 200, Y: 200, Width: 5, Height: 5}
	if d := Translate(s, OffscreenFormat).Dynamic; d.Scissor.Width != 0 || d.Scissor.Height != 0 {
		t.Errorf("Scissor = %v, want empty", d.Scissor)
	}

	s.ScissorTest = false
	if d := Translate(s, OffscreenFormat).Dynamic; d.Scissor != (device.Rect{Width: 100, Height: 50}) {
		t.Errorf("Scissor = %v, want full target while the scissor test is off", d.Scissor)
	}
}

func TestTranslateClampsDepthRange(t *testing.T) {
	s := DefaultSnapshot(8, 8)
	s.DepthRange = device.DepthRange{Near: -1, Far: 2}
	d := Translate(s, OffscreenFormat).Dynamic
	if d.MinDepth != 0 || d.MaxDepth != 1 {
		t.Errorf("depth range = %v..%v, want 0..1", d.MinDepth, d.MaxDepth)
	}
}
