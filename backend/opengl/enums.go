// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build opengl

package opengl

import (
	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/glcmd/device"
)

var capabilities = [...]uint32{
	device.CapDither:                gl.DITHER,
	device.CapBlend:                 gl.BLEND,
	device.CapDepthTest:             gl.DEPTH_TEST,
	device.CapCullFace:              gl.CULL_FACE,
	device.CapPolygonOffsetFill:     gl.POLYGON_OFFSET_FILL,
	device.CapSampleAlphaToCoverage: gl.SAMPLE_ALPHA_TO_COVERAGE,
	device.CapSampleCoverage:        gl.SAMPLE_COVERAGE,
	device.CapStencilTest:           gl.STENCIL_TEST,
	device.CapScissorTest:           gl.SCISSOR_TEST,
}

func capability(c device.Capability) (uint32, bool) {
	if int(c) < len(capabilities) {
		return capabilities[c], true
	}
	return 0, false
}

func blendFactor(f gputypes.BlendFactor) uint32 {
	switch f {
	case gputypes.BlendFactorZero:
		return gl.ZERO
	case gputypes.BlendFactorSrc:
		return gl.SRC_COLOR
	case gputypes.BlendFactorOneMinusSrc:
		return gl.ONE_MINUS_SRC_COLOR
	case gputypes.BlendFactorSrcAlpha:
		return gl.SRC_ALPHA
	case gputypes.BlendFactorOneMinusSrcAlpha:
		return gl.ONE_MINUS_SRC_ALPHA
	case gputypes.BlendFactorDst:
		return gl.DST_COLOR
	case gputypes.BlendFactorOneMinusDst:
		return gl.ONE_MINUS_DST_COLOR
	case gputypes.BlendFactorDstAlpha:
		return gl.DST_ALPHA
	case gputypes.BlendFactorOneMinusDstAlpha:
		return gl.ONE_MINUS_DST_ALPHA
	case gputypes.BlendFactorSrcAlphaSaturated:
		return gl.SRC_ALPHA_SATURATE
	case gputypes.BlendFactorConstant:
		return gl.CONSTANT_COLOR
	case gputypes.BlendFactorOneMinusConstant:
		return gl.ONE_MINUS_CONSTANT_COLOR
	default:
		return gl.ONE
	}
}

func blendOperation(op gputypes.BlendOperation) uint32 {
	switch op {
	case gputypes.BlendOperationSubtract:
		return gl.FUNC_SUBTRACT
	case gputypes.BlendOperationReverseSubtract:
		return gl.FUNC_REVERSE_SUBTRACT
	case gputypes.BlendOperationMin:
		return gl.MIN
	case gputypes.BlendOperationMax:
		return gl.MAX
	default:
		return gl.FUNC_ADD
	}
}

func compareFunction(f gputypes.CompareFunction) uint32 {
	switch f {
	case gputypes.CompareFunctionNever:
		return gl.NEVER
	case gputypes.CompareFunctionLess:
		return gl.LESS
	case gputypes.CompareFunctionEqual:
		return gl.EQUAL
	case gputypes.CompareFunctionLessEqual:
		return gl.LEQUAL
	case gputypes.CompareFunctionGreater:
		return gl.GREATER
	case gputypes.CompareFunctionNotEqual:
		return gl.NOTEQUAL
	case gputypes.CompareFunctionGreaterEqual:
		return gl.GEQUAL
	default:
		return gl.ALWAYS
	}
}

func stencilOperation(op device.StencilOperation) uint32 {
	switch op {
	case device.StencilZero:
		return gl.ZERO
	case device.StencilReplace:
		return gl.REPLACE
	case device.StencilInvert:
		return gl.INVERT
	case device.StencilIncrement:
		return gl.INCR
	case device.StencilDecrement:
		return gl.DECR
	case device.StencilIncrementWrap:
		return gl.INCR_WRAP
	case device.StencilDecrementWrap:
		return gl.DECR_WRAP
	default:
		return gl.KEEP
	}
}

// cullFace maps a cull mode to the face argument of glCullFace. CullModeNone
// has no GL equivalent; culling is switched off with the capability.
func cullFace(m gputypes.CullMode) uint32 {
	if m == gputypes.CullModeFront {
		return gl.FRONT
	}
	return gl.BACK
}

func frontFace(f gputypes.FrontFace) uint32 {
	if f == gputypes.FrontFaceCW {
		return gl.CW
	}
	return gl.CCW
}

func face(f device.Face) uint32 {
	if f == device.FaceBack {
		return gl.BACK
	}
	return gl.FRONT
}

func primitive(t gputypes.PrimitiveTopology) uint32 {
	switch t {
	case gputypes.PrimitiveTopologyPointList:
		return gl.POINTS
	case gputypes.PrimitiveTopologyLineList:
		return gl.LINES
	case gputypes.PrimitiveTopologyLineStrip:
		return gl.LINE_STRIP
	case gputypes.PrimitiveTopologyTriangleStrip:
		return gl.TRIANGLE_STRIP
	default:
		return gl.TRIANGLES
	}
}

// indexType returns the GL index type and its size in bytes.
func indexType(f gputypes.IndexFormat) (uint32, int) {
	if f == gputypes.IndexFormatUint32 {
		return gl.UNSIGNED_INT, 4
	}
	return gl.UNSIGNED_SHORT, 2
}

// vertexLayout describes how glVertexAttribPointer reads a vertex format.
type vertexLayout struct {
	size       int32
	xtype      uint32
	normalized bool
}

func vertexFormat(f gputypes.VertexFormat) vertexLayout {
	switch f {
	case gputypes.VertexFormatFloat32:
		return vertexLayout{size: 1, xtype: gl.FLOAT}
	case gputypes.VertexFormatFloat32x2:
		return vertexLayout{size: 2, xtype: gl.FLOAT}
	case gputypes.VertexFormatFloat32x3:
		return vertexLayout{size: 3, xtype: gl.FLOAT}
	case gputypes.VertexFormatUint8x2:
		return vertexLayout{size: 2, xtype: gl.UNSIGNED_BYTE}
	case gputypes.VertexFormatUint8x4:
		return vertexLayout{size: 4, xtype: gl.UNSIGNED_BYTE}
	case gputypes.VertexFormatSint8x2:
		return vertexLayout{size: 2, xtype: gl.BYTE}
	case gputypes.VertexFormatSint8x4:
		return vertexLayout{size: 4, xtype: gl.BYTE}
	case gputypes.VertexFormatUnorm8x2:
		return vertexLayout{size: 2, xtype: gl.UNSIGNED_BYTE, normalized: true}
	case gputypes.VertexFormatUnorm8x4:
		return vertexLayout{size: 4, xtype: gl.UNSIGNED_BYTE, normalized: true}
	case gputypes.VertexFormatSnorm8x2:
		return vertexLayout{size: 2, xtype: gl.BYTE, normalized: true}
	case gputypes.VertexFormatSnorm8x4:
		return vertexLayout{size: 4, xtype: gl.BYTE, normalized: true}
	case gputypes.VertexFormatUint16x2:
		return vertexLayout{size: 2, xtype: gl.UNSIGNED_SHORT}
	case gputypes.VertexFormatUint16x4:
		return vertexLayout{size: 4, xtype: gl.UNSIGNED_SHORT}
	case gputypes.VertexFormatSint16x2:
		return vertexLayout{size: 2, xtype: gl.SHORT}
	case gputypes.VertexFormatSint16x4:
		return vertexLayout{size: 4, xtype: gl.SHORT}
	case gputypes.VertexFormatUnorm16x2:
		return vertexLayout{size: 2, xtype: gl.UNSIGNED_SHORT, normalized: true}
	case gputypes.VertexFormatUnorm16x4:
		return vertexLayout{size: 4, xtype: gl.UNSIGNED_SHORT, normalized: true}
	case gputypes.VertexFormatSnorm16x2:
		return vertexLayout{size: 2, xtype: gl.SHORT, normalized: true}
	case gputypes.VertexFormatSnorm16x4:
		return vertexLayout{size: 4, xtype: gl.SHORT, normalized: true}
	case gputypes.VertexFormatFloat16x2:
		return vertexLayout{size: 2, xtype: gl.HALF_FLOAT}
	case gputypes.VertexFormatFloat16x4:
		return vertexLayout{size: 4, xtype: gl.HALF_FLOAT}
	case gputypes.VertexFormatUint32:
		return vertexLayout{size: 1, xtype: gl.UNSIGNED_INT}
	case gputypes.VertexFormatUint32x2:
		return vertexLayout{size: 2, xtype: gl.UNSIGNED_INT}
	case gputypes.VertexFormatUint32x3:
		return vertexLayout{size: 3, xtype: gl.UNSIGNED_INT}
	case gputypes.VertexFormatUint32x4:
		return vertexLayout{size: 4, xtype: gl.UNSIGNED_INT}
	case gputypes.VertexFormatSint32:
		return vertexLayout{size: 1, xtype: gl.INT}
	case gputypes.VertexFormatSint32x2:
		return vertexLayout{size: 2, xtype: gl.INT}
	case gputypes.VertexFormatSint32x3:
		return vertexLayout{size: 3, xtype: gl.INT}
	case gputypes.VertexFormatSint32x4:
		return vertexLayout{size: 4, xtype: gl.INT}
	default:
		return vertexLayout{size: 4, xtype: gl.FLOAT}
	}
}

// attributeFormat maps the type of an active attribute to a vertex format.
func attributeFormat(xtype uint32) gputypes.VertexFormat {
	switch xtype {
	case gl.FLOAT:
		return gputypes.VertexFormatFloat32
	case gl.FLOAT_VEC2:
		return gputypes.VertexFormatFloat32x2
	case gl.FLOAT_VEC3:
		return gputypes.VertexFormatFloat32x3
	case gl.INT:
		return gputypes.VertexFormatSint32
	case gl.INT_VEC2:
		return gputypes.VertexFormatSint32x2
	case gl.INT_VEC3:
		return gputypes.VertexFormatSint32x3
	case gl.INT_VEC4:
		return gputypes.VertexFormatSint32x4
	case gl.UNSIGNED_INT:
		return gputypes.VertexFormatUint32
	case gl.UNSIGNED_INT_VEC2:
		return gputypes.VertexFormatUint32x2
	case gl.UNSIGNED_INT_VEC3:
		return gputypes.VertexFormatUint32x3
	case gl.UNSIGNED_INT_VEC4:
		return gputypes.VertexFormatUint32x4
	default:
		return gputypes.VertexFormatFloat32x4
	}
}

// uniformType maps the type of an active uniform. ok is false for types
// the device contract cannot express.
func uniformType(xtype uint32) (t device.UniformType, ok bool) {
	switch xtype {
	case gl.FLOAT:
		return device.UniformFloat, true
	case gl.FLOAT_VEC2:
		return device.UniformVec2, true
	case gl.FLOAT_VEC3:
		return device.UniformVec3, true
	case gl.FLOAT_VEC4:
		return device.UniformVec4, true
	case gl.INT, gl.UNSIGNED_INT:
		return device.UniformInt, true
	case gl.INT_VEC2, gl.UNSIGNED_INT_VEC2:
		return device.UniformIVec2, true
	case gl.INT_VEC3, gl.UNSIGNED_INT_VEC3:
		return device.UniformIVec3, true
	case gl.INT_VEC4, gl.UNSIGNED_INT_VEC4:
		return device.UniformIVec4, true
	case gl.BOOL:
		return device.UniformBool, true
	case gl.FLOAT_MAT2:
		return device.UniformMat2, true
	case gl.FLOAT_MAT3:
		return device.UniformMat3, true
	case gl.FLOAT_MAT4:
		return device.UniformMat4, true
	case gl.SAMPLER_2D, gl.SAMPLER_2D_SHADOW, gl.INT_SAMPLER_2D, gl.UNSIGNED_INT_SAMPLER_2D:
		return device.UniformSampler2D, true
	case gl.SAMPLER_CUBE, gl.SAMPLER_CUBE_SHADOW:
		return device.UniformSamplerCube, true
	default:
		return 0, false
	}
}

// textureFormat returns the internal format, pixel format and pixel type
// for a texture upload.
func textureFormat(f gputypes.TextureFormat) (internal int32, format, xtype uint32, ok bool) {
	switch f {
	case gputypes.TextureFormatRGBA8Unorm, gputypes.TextureFormatUndefined:
		return gl.RGBA8, gl.RGBA, gl.UNSIGNED_BYTE, true
	case gputypes.TextureFormatBGRA8Unorm:
		return gl.RGBA8, gl.BGRA, gl.UNSIGNED_BYTE, true
	default:
		return 0, 0, 0, false
	}
}
