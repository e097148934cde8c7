// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package device

import "github.com/gogpu/gputypes"

// Capability is a boolean server-side capability toggled with Enable/Disable.
type Capability uint8

const (
	CapDither Capability = iota
	CapBlend
	CapDepthTest
	CapCullFace
	CapPolygonOffsetFill
	CapSampleAlphaToCoverage
	CapSampleCoverage
	CapStencilTest
	CapScissorTest
)

var capabilityNames = [...]string{
	CapDither:                "DITHER",
	CapBlend:                 "BLEND",
	CapDepthTest:             "DEPTH_TEST",
	CapCullFace:              "CULL_FACE",
	CapPolygonOffsetFill:     "POLYGON_OFFSET_FILL",
	CapSampleAlphaToCoverage: "SAMPLE_ALPHA_TO_COVERAGE",
	CapSampleCoverage:        "SAMPLE_COVERAGE",
	CapStencilTest:           "STENCIL_TEST",
	CapScissorTest:           "SCISSOR_TEST",
}

// String returns the GL name of the capability.
func (c Capability) String() string {
	if int(c) < len(capabilityNames) {
		return capabilityNames[c]
	}
	return "Unknown"
}

// Rect is an integer rectangle used by scissor and viewport.
type Rect struct {
	X, Y          int
	Width, Height int
}

// BlendEquation selects the blend operation for color and alpha.
type BlendEquation struct {
	RGB   gputypes.BlendOperation
	Alpha gputypes.BlendOperation
}

// BlendFunc selects the blend factors for color and alpha.
type BlendFunc struct {
	SrcRGB   gputypes.BlendFactor
	DstRGB   gputypes.BlendFactor
	SrcAlpha gputypes.BlendFactor
	DstAlpha gputypes.BlendFactor
}

// DepthRange maps normalized device depth to window depth.
type DepthRange struct {
	Near, Far float32
}

// ColorMask enables writes per channel (R, G, B, A).
type ColorMask [4]bool

// PolygonOffset is the depth offset applied when polygon offset is enabled.
type PolygonOffset struct {
	Factor, Units float32
}

// SampleCoverage configures multisample coverage.
type SampleCoverage struct {
	Value  float32
	Invert bool
}

// StencilFunc is the stencil test function with its reference and mask.
type StencilFunc struct {
	Compare gputypes.CompareFunction
	Ref     int32
	Mask    uint32
}

// StencilOperation is a GL stencil operation.
type StencilOperation uint8

const (
	StencilKeep StencilOperation = iota
	StencilZero
	StencilReplace
	StencilInvert
	StencilIncrement
	StencilDecrement
	StencilIncrementWrap
	StencilDecrementWrap
)

var stencilOperationNames = [...]string{
	StencilKeep:          "keep",
	StencilZero:          "zero",
	StencilReplace:       "replace",
	StencilInvert:        "invert",
	StencilIncrement:     "increment",
	StencilDecrement:     "decrement",
	StencilIncrementWrap: "increment wrap",
	StencilDecrementWrap: "decrement wrap",
}

// String returns the regl spelling of the operation.
func (o StencilOperation) String() string {
	if int(o) < len(stencilOperationNames) {
		return stencilOperationNames[o]
	}
	return "unknown"
}

// ParseStencilOperation parses a regl stencil operation name.
func ParseStencilOperation(s string) (StencilOperation, bool) {
	for i, name := range stencilOperationNames {
		if name == s {
			return StencilOperation(i), true
		}
	}
	return 0, false
}

// StencilOp holds the operations for stencil fail, depth fail and depth pass.
type StencilOp struct {
	Fail, ZFail, ZPass StencilOperation
}

// Face selects the polygon face for per-face stencil state.
type Face uint8

const (
	FaceFront Face = iota
	FaceBack
)

// String returns "front" or "back".
func (f Face) String() string {
	if f == FaceBack {
		return "back"
	}
	return "front"
}
