// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package glstate is the registry of tracked fixed-function state.
//
// Every field has a name (the regl option spelling), an initial value, a
// parser from loosely typed option values, and an apply function issuing
// the device call. Values are stored in canonical comparable Go types so
// diffing is a single != per field.
package glstate

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/glcmd/device"
)

// Field indices. The order is the apply order used by Poll and Refresh.
const (
	Dither = iota
	BlendEnable
	BlendColor
	BlendEquation
	BlendFunc
	DepthEnable
	DepthFunc
	DepthRange
	DepthMask
	ColorMask
	CullEnable
	CullFace
	FrontFace
	LineWidth
	PolygonOffsetEnable
	PolygonOffset
	SampleAlpha
	SampleEnable
	SampleCoverage
	StencilEnable
	StencilMask
	StencilFunc
	StencilOpFront
	StencilOpBack
	ScissorEnable
	ScissorBox
	Viewport

	NumFields
)

// Field describes one tracked piece of state.
type Field struct {
	Name string

	// Flag marks boolean capabilities toggled with Enable/Disable.
	Flag bool
	Cap  device.Capability

	Init  any
	Parse func(v any) (any, error)
	Apply func(d device.Device, v any)
}

func flag(name string, c device.Capability, init bool) Field {
	return Field{
		Name:  name,
		Flag:  true,
		Cap:   c,
		Init:  init,
		Parse: parseBool,
		Apply: func(d device.Device, v any) {
			if v.(bool) {
				d.Enable(c)
			} else {
				d.Disable(c)
			}
		},
	}
}

var fields = [NumFields]Field{
	Dither:      flag("dither", device.CapDither, false),
	BlendEnable: flag("blend.enable", device.CapBlend, false),
	BlendColor: {
		Name: "blend.color", Init: [4]float32{}, Parse: parseColor,
		Apply: func(d device.Device, v any) { d.BlendColor(v.([4]float32)) },
	},
	BlendEquation: {
		Name:  "blend.equation",
		Init:  device.BlendEquation{RGB: gputypes.BlendOperationAdd, Alpha: gputypes.BlendOperationAdd},
		Parse: parseBlendEquation,
		Apply: func(d device.Device, v any) { d.BlendEquation(v.(device.BlendEquation)) },
	},
	BlendFunc: {
		Name: "blend.func",
		Init: device.BlendFunc{
			SrcRGB: gputypes.BlendFactorOne, DstRGB: gputypes.BlendFactorZero,
			SrcAlpha: gputypes.BlendFactorOne, DstAlpha: gputypes.BlendFactorZero,
		},
		Parse: parseBlendFunc,
		Apply: func(d device.Device, v any) { d.BlendFunc(v.(device.BlendFunc)) },
	},
	DepthEnable: flag("depth.enable", device.CapDepthTest, true),
	DepthFunc: {
		Name: "depth.func", Init: gputypes.CompareFunctionLess, Parse: parseCompare,
		Apply: func(d device.Device, v any) { d.DepthFunc(v.(gputypes.CompareFunction)) },
	},
	DepthRange: {
		Name: "depth.range", Init: device.DepthRange{Near: 0, Far: 1}, Parse: parseDepthRange,
		Apply: func(d device.Device, v any) { d.DepthRange(v.(device.DepthRange)) },
	},
	DepthMask: {
		Name: "depth.mask", Init: true, Parse: parseBool,
		Apply: func(d device.Device, v any) { d.DepthMask(v.(bool)) },
	},
	ColorMask: {
		Name: "colorMask", Init: device.ColorMask{true, true, true, true}, Parse: parseColorMask,
		Apply: func(d device.Device, v any) { d.ColorMask(v.(device.ColorMask)) },
	},
	CullEnable: flag("cull.enable", device.CapCullFace, false),
	CullFace: {
		Name: "cull.face", Init: gputypes.CullModeBack, Parse: parseCullFace,
		Apply: func(d device.Device, v any) { d.CullFace(v.(gputypes.CullMode)) },
	},
	FrontFace: {
		Name: "frontFace", Init: gputypes.FrontFaceCCW, Parse: parseFrontFace,
		Apply: func(d device.Device, v any) { d.FrontFace(v.(gputypes.FrontFace)) },
	},
	LineWidth: {
		Name: "lineWidth", Init: float32(1), Parse: parseLineWidth,
		Apply: func(d device.Device, v any) { d.LineWidth(v.(float32)) },
	},
	PolygonOffsetEnable: flag("polygonOffset.enable", device.CapPolygonOffsetFill, false),
	PolygonOffset: {
		Name: "polygonOffset.offset", Init: device.PolygonOffset{}, Parse: parsePolygonOffset,
		Apply: func(d device.Device, v any) { d.PolygonOffset(v.(device.PolygonOffset)) },
	},
	SampleAlpha:  flag("sample.alpha", device.CapSampleAlphaToCoverage, false),
	SampleEnable: flag("sample.enable", device.CapSampleCoverage, false),
	SampleCoverage: {
		Name: "sample.coverage", Init: device.SampleCoverage{Value: 1}, Parse: parseSampleCoverage,
		Apply: func(d device.Device, v any) { d.SampleCoverage(v.(device.SampleCoverage)) },
	},
	StencilEnable: flag("stencil.enable", device.CapStencilTest, false),
	StencilMask: {
		Name: "stencil.mask", Init: uint32(0xffffffff), Parse: parseStencilMask,
		Apply: func(d device.Device, v any) { d.StencilMask(v.(uint32)) },
	},
	StencilFunc: {
		Name:  "stencil.func",
		Init:  device.StencilFunc{Compare: gputypes.CompareFunctionAlways, Mask: 0xffffffff},
		Parse: parseStencilFunc,
		Apply: func(d device.Device, v any) { d.StencilFunc(v.(device.StencilFunc)) },
	},
	StencilOpFront: {
		Name: "stencil.opFront", Init: device.StencilOp{}, Parse: parseStencilOp,
		Apply: func(d device.Device, v any) { d.StencilOp(device.FaceFront, v.(device.StencilOp)) },
	},
	StencilOpBack: {
		Name: "stencil.opBack", Init: device.StencilOp{}, Parse: parseStencilOp,
		Apply: func(d device.Device, v any) { d.StencilOp(device.FaceBack, v.(device.StencilOp)) },
	},
	ScissorEnable: flag("scissor.enable", device.CapScissorTest, false),
	ScissorBox: {
		Name: "scissor.box", Init: device.Rect{}, Parse: parseRect,
		Apply: func(d device.Device, v any) { d.Scissor(v.(device.Rect)) },
	},
	Viewport: {
		Name: "viewport", Init: device.Rect{}, Parse: parseRect,
		Apply: func(d device.Device, v any) { d.Viewport(v.(device.Rect)) },
	},
}

// Fields returns the registry table.
func Fields() []Field { return fields[:] }

// Get returns the field at index i.
func Get(i int) Field { return fields[i] }

var byName = func() map[string]int {
	m := make(map[string]int, NumFields)
	for i := range fields {
		m[fields[i].Name] = i
	}
	return m
}()

// Lookup returns the index of the named field.
func Lookup(name string) (int, bool) {
	i, ok := byName[name]
	return i, ok
}

// Mask is a set of field indices.
type Mask uint32

// Has reports whether field i is in the set.
func (m Mask) Has(i int) bool { return m&(1<<uint(i)) != 0 }

// With returns m with field i added.
func (m Mask) With(i int) Mask { return m | 1<<uint(i) }

// Len returns the number of fields in the set.
func (m Mask) Len() int {
	n := 0
	for i := 0; i < NumFields; i++ {
		if m.Has(i) {
			n++
		}
	}
	return n
}
