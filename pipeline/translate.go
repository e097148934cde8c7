// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pipeline

import (
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/glcmd/device"
)

// DepthFormat is the depth-stencil attachment format assumed for every
// render target. GL framebuffers with a depth buffer carry 8 stencil bits.
const DepthFormat = gputypes.TextureFormatDepth24PlusStencil8

// sampleCount is the multisample count of bridged render targets.
const sampleCount = 1

// Snapshot is the GL state relevant to a single draw call.
type Snapshot struct {
	Topology gputypes.PrimitiveTopology
	// IndexFormat is the index format of indexed draws, undefined otherwise.
	IndexFormat gputypes.IndexFormat

	Blend         bool
	BlendColor    [4]float32
	BlendEquation device.BlendEquation
	BlendFunc     device.BlendFunc
	ColorMask     device.ColorMask

	DepthTest  bool
	DepthFunc  gputypes.CompareFunction
	DepthMask  bool
	DepthRange device.DepthRange

	CullFace  bool
	CullMode  gputypes.CullMode
	FrontFace gputypes.FrontFace

	PolygonOffsetFill bool
	PolygonOffset     device.PolygonOffset

	AlphaToCoverage bool
	SampleCoverage  bool
	Coverage        device.SampleCoverage

	StencilTest    bool
	StencilMask    uint32
	StencilFunc    device.StencilFunc
	StencilOpFront device.StencilOp
	StencilOpBack  device.StencilOp

	ScissorTest bool
	Scissor     device.Rect
	Viewport    device.Rect

	// TargetWidth and TargetHeight are the size of the bound render target.
	// GL rectangles have a bottom-left origin and are flipped against them.
	TargetWidth, TargetHeight int
}

// DefaultSnapshot returns the GL initial state for a target of the given
// size. Depth testing starts enabled, matching the state the command
// compiler establishes on a fresh context.
func DefaultSnapshot(width, height int) Snapshot {
	full := device.Rect{Width: width, Height: height}
	return Snapshot{
		Topology:      gputypes.PrimitiveTopologyTriangleList,
		BlendEquation: device.BlendEquation{RGB: gputypes.BlendOperationAdd, Alpha: gputypes.BlendOperationAdd},
		BlendFunc: device.BlendFunc{
			SrcRGB: gputypes.BlendFactorOne, DstRGB: gputypes.BlendFactorZero,
			SrcAlpha: gputypes.BlendFactorOne, DstAlpha: gputypes.BlendFactorZero,
		},
		ColorMask:    device.ColorMask{true, true, true, true},
		DepthTest:    true,
		DepthFunc:    gputypes.CompareFunctionLess,
		DepthMask:    true,
		DepthRange:   device.DepthRange{Near: 0, Far: 1},
		CullMode:     gputypes.CullModeBack,
		FrontFace:    gputypes.FrontFaceCCW,
		StencilMask:  math.MaxUint32,
		StencilFunc:  device.StencilFunc{Compare: gputypes.CompareFunctionAlways, Mask: math.MaxUint32},
		Scissor:      full,
		Viewport:     full,
		TargetWidth:  width,
		TargetHeight: height,
	}
}

// State is the WebGPU form of a Snapshot.
//
// Everything except Dynamic is baked into the render pipeline; Dynamic is
// set on the render pass before each draw.
type State struct {
	Primitive    gputypes.PrimitiveState
	DepthStencil hal.DepthStencilState
	ColorTarget  gputypes.ColorTargetState
	Multisample  gputypes.MultisampleState
	Dynamic      DynamicState
}

// DynamicState is the per-draw state WebGPU sets on the render pass.
// Rectangles use a top-left origin.
type DynamicState struct {
	Viewport           device.Rect
	MinDepth, MaxDepth float32
	Scissor            device.Rect
	BlendConstant      gputypes.Color
	StencilReference   uint32
}

// Translate maps GL state onto WebGPU pipeline state for a color target of
// the given format.
func Translate(s Snapshot, format gputypes.TextureFormat) State {
	return State{
		Primitive:    primitiveState(s),
		DepthStencil: depthStencilState(s),
		ColorTarget:  colorTargetState(s, format),
		Multisample:  multisampleState(s),
		Dynamic:      dynamicState(s),
	}
}

func primitiveState(s Snapshot) gputypes.PrimitiveState {
	p := gputypes.PrimitiveState{
		Topology:  s.Topology,
		FrontFace: s.FrontFace,
		CullMode:  gputypes.CullModeNone,
	}
	if s.CullFace {
		p.CullMode = s.CullMode
	}
	if isStrip(s.Topology) && s.IndexFormat != gputypes.IndexFormatUndefined {
		f := s.IndexFormat
		p.StripIndexFormat = &f
	}
	return p
}

func isStrip(t gputypes.PrimitiveTopology) bool {
	return t == gputypes.PrimitiveTopologyLineStrip || t == gputypes.PrimitiveTopologyTriangleStrip
}

// depthStencilState follows GL semantics: a disabled depth test also
// disables depth writes, and a disabled stencil test leaves the buffer
// untouched.
func depthStencilState(s Snapshot) hal.DepthStencilState {
	ds := hal.DepthStencilState{
		Format:       DepthFormat,
		DepthCompare: gputypes.CompareFunctionAlways,
		StencilFront: keepFace(),
		StencilBack:  keepFace(),
	}
	if s.DepthTest {
		ds.DepthCompare = s.DepthFunc
		ds.DepthWriteEnabled = s.DepthMask
	}
	if s.StencilTest {
		ds.StencilFront = stencilFace(s.StencilFunc.Compare, s.StencilOpFront)
		ds.StencilBack = stencilFace(s.StencilFunc.Compare, s.StencilOpBack)
		ds.StencilReadMask = s.StencilFunc.Mask
		ds.StencilWriteMask = s.StencilMask
	}
	if s.PolygonOffsetFill {
		ds.DepthBias = int32(math.Round(float64(s.PolygonOffset.Units)))
		ds.DepthBiasSlopeScale = s.PolygonOffset.Factor
	}
	return ds
}

func keepFace() hal.StencilFaceState {
	return hal.StencilFaceState{
		Compare:     gputypes.CompareFunctionAlways,
		FailOp:      hal.StencilOperationKeep,
		DepthFailOp: hal.StencilOperationKeep,
		PassOp:      hal.StencilOperationKeep,
	}
}

func stencilFace(compare gputypes.CompareFunction, op device.StencilOp) hal.StencilFaceState {
	return hal.StencilFaceState{
		Compare:     compare,
		FailOp:      stencilOperation(op.Fail),
		DepthFailOp: stencilOperation(op.ZFail),
		PassOp:      stencilOperation(op.ZPass),
	}
}

// stencilOperation maps a GL stencil operation. GL INCR and DECR clamp.
func stencilOperation(op device.StencilOperation) hal.StencilOperation {
	switch op {
	case device.StencilZero:
		return hal.StencilOperationZero
	case device.StencilReplace:
		return hal.StencilOperationReplace
	case device.StencilInvert:
		return hal.StencilOperationInvert
	case device.StencilIncrement:
		return hal.StencilOperationIncrementClamp
	case device.StencilDecrement:
		return hal.StencilOperationDecrementClamp
	case device.StencilIncrementWrap:
		return hal.StencilOperationIncrementWrap
	case device.StencilDecrementWrap:
		return hal.StencilOperationDecrementWrap
	default:
		return hal.StencilOperationKeep
	}
}

func colorTargetState(s Snapshot, format gputypes.TextureFormat) gputypes.ColorTargetState {
	ct := gputypes.ColorTargetState{
		Format:    format,
		WriteMask: writeMask(s.ColorMask),
	}
	if s.Blend {
		ct.Blend = &gputypes.BlendState{
			Color: blendComponent(s.BlendFunc.SrcRGB, s.BlendFunc.DstRGB, s.BlendEquation.RGB),
			Alpha: blendComponent(s.BlendFunc.SrcAlpha, s.BlendFunc.DstAlpha, s.BlendEquation.Alpha),
		}
	}
	return ct
}

// blendComponent builds one blend component. GL ignores the factors of
// MIN and MAX; WebGPU requires them to be One.
func blendComponent(src, dst gputypes.BlendFactor, op gputypes.BlendOperation) gputypes.BlendComponent {
	if op == gputypes.BlendOperationMin || op == gputypes.BlendOperationMax {
		src, dst = gputypes.BlendFactorOne, gputypes.BlendFactorOne
	}
	return gputypes.BlendComponent{SrcFactor: src, DstFactor: dst, Operation: op}
}

func writeMask(m device.ColorMask) gputypes.ColorWriteMask {
	var w gputypes.ColorWriteMask
	if m[0] {
		w |= gputypes.ColorWriteMaskRed
	}
	if m[1] {
		w |= gputypes.ColorWriteMaskGreen
	}
	if m[2] {
		w |= gputypes.ColorWriteMaskBlue
	}
	if m[3] {
		w |= gputypes.ColorWriteMaskAlpha
	}
	return w
}

// multisampleState maps sample coverage onto the sample mask. With a single
// sample the coverage value either keeps or drops every fragment.
func multisampleState(s Snapshot) gputypes.MultisampleState {
	ms := gputypes.MultisampleState{
		Count:                  sampleCount,
		Mask:                   math.MaxUint32,
		AlphaToCoverageEnabled: s.AlphaToCoverage,
	}
	if s.SampleCoverage {
		covered := int(math.Round(float64(s.Coverage.Value)*sampleCount)) >= sampleCount
		if s.Coverage.Invert {
			covered = !covered
		}
		if !covered {
			ms.Mask = 0
		}
	}
	return ms
}

func dynamicState(s Snapshot) DynamicState {
	full := device.Rect{Width: s.TargetWidth, Height: s.TargetHeight}
	d := DynamicState{
		Viewport: flip(s.Viewport, s.TargetHeight),
		MinDepth: clamp01(s.DepthRange.Near),
		MaxDepth: clamp01(s.DepthRange.Far),
		Scissor:  full,
		BlendConstant: gputypes.Color{
			R: float64(s.BlendColor[0]),
			G: float64(s.BlendColor[1]),
			B: float64(s.BlendColor[2]),
			A: float64(s.BlendColor[3]),
		},
	}
	if s.ScissorTest {
		d.Scissor = intersect(flip(s.Scissor, s.TargetHeight), full)
	}
	if s.StencilTest && s.StencilFunc.Ref > 0 {
		d.StencilReference = uint32(s.StencilFunc.Ref)
	}
	return d
}

// flip converts a bottom-left origin rectangle to a top-left origin one.
func flip(r device.Rect, height int) device.Rect {
	r.Y = height - (r.Y + r.Height)
	return r
}

// intersect clips r to bounds. WebGPU rejects scissor rectangles that
// leave the render target.
func intersect(r, bounds device.Rect) device.Rect {
	x0, y0 := max(r.X, bounds.X), max(r.Y, bounds.Y)
	x1 := min(r.X+r.Width, bounds.X+bounds.Width)
	y1 := min(r.Y+r.Height, bounds.Y+bounds.Height)
	if x1 <= x0 || y1 <= y0 {
		return device.Rect{X: x0, Y: y0}
	}
	return device.Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

func clamp01(v float32) float32 {
	return min(max(v, 0), 1)
}
