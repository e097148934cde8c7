// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glstate

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/glcmd/device"
	"github.com/gogpu/glcmd/internal/value"
)

// Parse converts an option value into the canonical type of field i.
func Parse(i int, v any) (any, error) {
	return fields[i].Parse(v)
}

func typeError(want string, v any) error {
	return fmt.Errorf("expected %s, got %T", want, v)
}

func parseBool(v any) (any, error) {
	if b, ok := v.(bool); ok {
		return b, nil
	}
	return false, typeError("bool", v)
}

func parseColor(v any) (any, error) {
	if c, ok := v.(gputypes.Color); ok {
		return [4]float32{float32(c.R), float32(c.G), float32(c.B), float32(c.A)}, nil
	}
	c, ok := value.Vec4(v, 4)
	if !ok {
		return c, typeError("4-component color", v)
	}
	return c, nil
}

var blendOperations = map[string]gputypes.BlendOperation{
	"add":              gputypes.BlendOperationAdd,
	"subtract":         gputypes.BlendOperationSubtract,
	"reverse subtract": gputypes.BlendOperationReverseSubtract,
	"min":              gputypes.BlendOperationMin,
	"max":              gputypes.BlendOperationMax,
}

func blendOperation(v any) (gputypes.BlendOperation, error) {
	switch x := v.(type) {
	case gputypes.BlendOperation:
		return x, nil
	case string:
		if op, ok := blendOperations[x]; ok {
			return op, nil
		}
		return 0, fmt.Errorf("unknown blend equation %q", x)
	}
	return 0, typeError("blend equation", v)
}

func parseBlendEquation(v any) (any, error) {
	switch x := v.(type) {
	case device.BlendEquation:
		return x, nil
	case map[string]any:
		rgb, err := blendOperation(x["rgb"])
		if err != nil {
			return device.BlendEquation{}, fmt.Errorf("rgb: %w", err)
		}
		alpha, err := blendOperation(x["alpha"])
		if err != nil {
			return device.BlendEquation{}, fmt.Errorf("alpha: %w", err)
		}
		return device.BlendEquation{RGB: rgb, Alpha: alpha}, nil
	}
	op, err := blendOperation(v)
	if err != nil {
		return device.BlendEquation{}, err
	}
	return device.BlendEquation{RGB: op, Alpha: op}, nil
}

var blendFactors = map[string]gputypes.BlendFactor{
	"zero":                     gputypes.BlendFactorZero,
	"one":                      gputypes.BlendFactorOne,
	"src color":                gputypes.BlendFactorSrc,
	"one minus src color":      gputypes.BlendFactorOneMinusSrc,
	"src alpha":                gputypes.BlendFactorSrcAlpha,
	"one minus src alpha":      gputypes.BlendFactorOneMinusSrcAlpha,
	"dst color":                gputypes.BlendFactorDst,
	"one minus dst color":      gputypes.BlendFactorOneMinusDst,
	"dst alpha":                gputypes.BlendFactorDstAlpha,
	"one minus dst alpha":      gputypes.BlendFactorOneMinusDstAlpha,
	"constant color":           gputypes.BlendFactorConstant,
	"one minus constant color": gputypes.BlendFactorOneMinusConstant,
	"src alpha saturate":       gputypes.BlendFactorSrcAlphaSaturated,
}

func blendFactor(v any) (gputypes.BlendFactor, error) {
	switch x := v.(type) {
	case gputypes.BlendFactor:
		return x, nil
	case string:
		if f, ok := blendFactors[x]; ok {
			return f, nil
		}
		return 0, fmt.Errorf("unknown blend factor %q", x)
	}
	return 0, typeError("blend factor", v)
}

func parseBlendFunc(v any) (any, error) {
	switch x := v.(type) {
	case device.BlendFunc:
		return x, nil
	case map[string]any:
		keys := [4][2]string{
			{"srcRGB", "src"}, {"dstRGB", "dst"},
			{"srcAlpha", "src"}, {"dstAlpha", "dst"},
		}
		var out [4]gputypes.BlendFactor
		for i, k := range keys {
			raw, ok := x[k[0]]
			if !ok {
				raw, ok = x[k[1]]
			}
			if !ok {
				return device.BlendFunc{}, fmt.Errorf("missing %s", k[0])
			}
			f, err := blendFactor(raw)
			if err != nil {
				return device.BlendFunc{}, fmt.Errorf("%s: %w", k[0], err)
			}
			out[i] = f
		}
		return device.BlendFunc{SrcRGB: out[0], DstRGB: out[1], SrcAlpha: out[2], DstAlpha: out[3]}, nil
	}
	return device.BlendFunc{}, typeError("blend func record", v)
}

var compareFunctions = map[string]gputypes.CompareFunction{
	"never":    gputypes.CompareFunctionNever,
	"less":     gputypes.CompareFunctionLess,
	"<":        gputypes.CompareFunctionLess,
	"equal":    gputypes.CompareFunctionEqual,
	"=":        gputypes.CompareFunctionEqual,
	"==":       gputypes.CompareFunctionEqual,
	"lequal":   gputypes.CompareFunctionLessEqual,
	"<=":       gputypes.CompareFunctionLessEqual,
	"greater":  gputypes.CompareFunctionGreater,
	">":        gputypes.CompareFunctionGreater,
	"notequal": gputypes.CompareFunctionNotEqual,
	"!=":       gputypes.CompareFunctionNotEqual,
	"gequal":   gputypes.CompareFunctionGreaterEqual,
	">=":       gputypes.CompareFunctionGreaterEqual,
	"always":   gputypes.CompareFunctionAlways,
}

func compareFunction(v any) (gputypes.CompareFunction, error) {
	switch x := v.(type) {
	case gputypes.CompareFunction:
		return x, nil
	case string:
		if f, ok := compareFunctions[x]; ok {
			return f, nil
		}
		return 0, fmt.Errorf("unknown comparison %q", x)
	}
	return 0, typeError("comparison", v)
}

func parseCompare(v any) (any, error) {
	return compareFunction(v)
}

func parseDepthRange(v any) (any, error) {
	if r, ok := v.(device.DepthRange); ok {
		return r, nil
	}
	fs, ok := value.Floats(v)
	if !ok || len(fs) != 2 {
		return device.DepthRange{}, typeError("[near, far]", v)
	}
	return device.DepthRange{Near: fs[0], Far: fs[1]}, nil
}

func parseColorMask(v any) (any, error) {
	if m, ok := v.(device.ColorMask); ok {
		return m, nil
	}
	bs, ok := value.Bools(v)
	if !ok || len(bs) != 4 {
		return device.ColorMask{}, typeError("4 booleans", v)
	}
	return device.ColorMask{bs[0], bs[1], bs[2], bs[3]}, nil
}

func parseCullFace(v any) (any, error) {
	switch x := v.(type) {
	case gputypes.CullMode:
		return x, nil
	case string:
		switch x {
		case "front":
			return gputypes.CullModeFront, nil
		case "back":
			return gputypes.CullModeBack, nil
		}
		return gputypes.CullModeBack, fmt.Errorf("unknown cull face %q", x)
	}
	return gputypes.CullModeBack, typeError("cull face", v)
}

func parseFrontFace(v any) (any, error) {
	switch x := v.(type) {
	case gputypes.FrontFace:
		return x, nil
	case string:
		switch x {
		case "ccw":
			return gputypes.FrontFaceCCW, nil
		case "cw":
			return gputypes.FrontFaceCW, nil
		}
		return gputypes.FrontFaceCCW, fmt.Errorf("unknown front face %q", x)
	}
	return gputypes.FrontFaceCCW, typeError("front face", v)
}

func parseLineWidth(v any) (any, error) {
	f, ok := value.Float(v)
	if !ok {
		return float32(1), typeError("number", v)
	}
	if f <= 0 {
		return float32(1), fmt.Errorf("line width must be positive, got %v", f)
	}
	return f, nil
}

func parsePolygonOffset(v any) (any, error) {
	switch x := v.(type) {
	case device.PolygonOffset:
		return x, nil
	case map[string]any:
		factor, _ := value.Float(x["factor"])
		units, _ := value.Float(x["units"])
		return device.PolygonOffset{Factor: factor, Units: units}, nil
	}
	fs, ok := value.Floats(v)
	if !ok || len(fs) != 2 {
		return device.PolygonOffset{}, typeError("polygon offset", v)
	}
	return device.PolygonOffset{Factor: fs[0], Units: fs[1]}, nil
}

func parseSampleCoverage(v any) (any, error) {
	switch x := v.(type) {
	case device.SampleCoverage:
		return x, nil
	case map[string]any:
		f, ok := value.Float(x["value"])
		if !ok {
			f = 1
		}
		inv, _ := x["invert"].(bool)
		return device.SampleCoverage{Value: f, Invert: inv}, nil
	}
	return device.SampleCoverage{Value: 1}, typeError("sample coverage", v)
}

func stencilMask(v any) (uint32, bool) {
	n, ok := value.Int(v)
	if !ok {
		return 0, false
	}
	if n < 0 {
		return uint32(int32(n)), true
	}
	return uint32(n), true
}

func parseStencilMask(v any) (any, error) {
	m, ok := stencilMask(v)
	if !ok {
		return uint32(0xffffffff), typeError("integer mask", v)
	}
	return m, nil
}

func parseStencilFunc(v any) (any, error) {
	switch x := v.(type) {
	case device.StencilFunc:
		return x, nil
	case map[string]any:
		out := device.StencilFunc{Compare: gputypes.CompareFunctionAlways, Mask: 0xffffffff}
		if raw, ok := x["cmp"]; ok {
			c, err := compareFunction(raw)
			if err != nil {
				return out, fmt.Errorf("cmp: %w", err)
			}
			out.Compare = c
		}
		if raw, ok := x["ref"]; ok {
			n, ok := value.Int(raw)
			if !ok {
				return out, fmt.Errorf("ref: %w", typeError("integer", raw))
			}
			out.Ref = int32(n)
		}
		if raw, ok := x["mask"]; ok {
			m, ok := stencilMask(raw)
			if !ok {
				return out, fmt.Errorf("mask: %w", typeError("integer", raw))
			}
			out.Mask = m
		}
		return out, nil
	}
	return device.StencilFunc{}, typeError("stencil func record", v)
}

func stencilOperation(v any) (device.StencilOperation, error) {
	switch x := v.(type) {
	case device.StencilOperation:
		return x, nil
	case string:
		if op, ok := device.ParseStencilOperation(x); ok {
			return op, nil
		}
		return 0, fmt.Errorf("unknown stencil operation %q", x)
	}
	return 0, typeError("stencil operation", v)
}

func parseStencilOp(v any) (any, error) {
	switch x := v.(type) {
	case device.StencilOp:
		return x, nil
	case map[string]any:
		var out device.StencilOp
		for _, f := range []struct {
			key string
			dst *device.StencilOperation
		}{{"fail", &out.Fail}, {"zfail", &out.ZFail}, {"zpass", &out.ZPass}} {
			raw, ok := x[f.key]
			if !ok {
				continue
			}
			op, err := stencilOperation(raw)
			if err != nil {
				return device.StencilOp{}, fmt.Errorf("%s: %w", f.key, err)
			}
			*f.dst = op
		}
		return out, nil
	}
	return device.StencilOp{}, typeError("stencil op record", v)
}

func parseRect(v any) (any, error) {
	switch x := v.(type) {
	case device.Rect:
		return x, nil
	case map[string]any:
		var r device.Rect
		for _, f := range []struct {
			key string
			dst *int
		}{{"x", &r.X}, {"y", &r.Y}, {"width", &r.Width}, {"height", &r.Height}} {
			raw, ok := x[f.key]
			if !ok {
				continue
			}
			n, ok := value.Int(raw)
			if !ok {
				return device.Rect{}, fmt.Errorf("%s: %w", f.key, typeError("integer", raw))
			}
			*f.dst = n
		}
		return r, nil
	}
	fs, ok := value.Floats(v)
	if !ok || len(fs) != 4 {
		return device.Rect{}, typeError("rectangle", v)
	}
	return device.Rect{X: int(fs[0]), Y: int(fs[1]), Width: int(fs[2]), Height: int(fs[3])}, nil
}
