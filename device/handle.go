// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package device

import "github.com/gogpu/gputypes"

// Handle is an opaque device resource with a stable identity.
// IDs are unique per process and never reused.
type Handle interface {
	ID() uint64
}

// Buffer is a vertex buffer.
type Buffer interface {
	Handle
	ByteLength() int
}

// Texture is a 2D texture.
type Texture interface {
	Handle
	Width() int
	Height() int
}

// Framebuffer is an off-screen render target.
type Framebuffer interface {
	Handle
	Width() int
	Height() int
	// ColorTexture returns the first color attachment, or nil.
	ColorTexture() Texture
}

// Elements is an index buffer with its primitive type and index count.
type Elements interface {
	Handle
	Primitive() gputypes.PrimitiveTopology
	Count() int
	Format() gputypes.IndexFormat
}

// VertexArray is a vertex array object with pre-bound attributes.
type VertexArray interface {
	Handle
	// Elements returns the index buffer bound to the VAO, or nil.
	Elements() Elements
	// Count returns the vertex count implied by the VAO, or 0 if unknown.
	Count() int
}

// Program is a linked shader program.
type Program interface {
	Handle
	Attributes() []AttributeInfo
	Uniforms() []UniformInfo
}

// AttributeInfo describes an active vertex attribute.
type AttributeInfo struct {
	Name     string
	Location int
	Format   gputypes.VertexFormat
}

// UniformType is the GL type of an active uniform.
type UniformType uint8

const (
	UniformFloat UniformType = iota
	UniformVec2
	UniformVec3
	UniformVec4
	UniformInt
	UniformIVec2
	UniformIVec3
	UniformIVec4
	UniformBool
	UniformMat2
	UniformMat3
	UniformMat4
	UniformSampler2D
	UniformSamplerCube
)

var uniformTypeNames = [...]string{
	UniformFloat:       "float",
	UniformVec2:        "vec2",
	UniformVec3:        "vec3",
	UniformVec4:        "vec4",
	UniformInt:         "int",
	UniformIVec2:       "ivec2",
	UniformIVec3:       "ivec3",
	UniformIVec4:       "ivec4",
	UniformBool:        "bool",
	UniformMat2:        "mat2",
	UniformMat3:        "mat3",
	UniformMat4:        "mat4",
	UniformSampler2D:   "sampler2D",
	UniformSamplerCube: "samplerCube",
}

// String returns the GLSL spelling of the type.
func (t UniformType) String() string {
	if int(t) < len(uniformTypeNames) {
		return uniformTypeNames[t]
	}
	return "unknown"
}

// IsSampler reports whether the uniform binds a texture unit.
func (t UniformType) IsSampler() bool {
	return t == UniformSampler2D || t == UniformSamplerCube
}

// Components returns the number of scalar components of the type.
// Samplers count as one.
func (t UniformType) Components() int {
	switch t {
	case UniformVec2, UniformIVec2:
		return 2
	case UniformVec3, UniformIVec3:
		return 3
	case UniformVec4, UniformIVec4, UniformMat2:
		return 4
	case UniformMat3:
		return 9
	case UniformMat4:
		return 16
	default:
		return 1
	}
}

// UniformInfo describes an active uniform. Size is the array length, 1 for
// non-array uniforms.
type UniformInfo struct {
	Name     string
	Location int
	Type     UniformType
	Size     int
}

// AttributeBinding sources a vertex attribute from a buffer.
type AttributeBinding struct {
	Buffer     Buffer
	Format     gputypes.VertexFormat
	Offset     int
	Stride     int
	Normalized bool
	Divisor    int
}

// FormatComponents returns the component count of a float vertex format.
func FormatComponents(f gputypes.VertexFormat) int {
	switch f {
	case gputypes.VertexFormatFloat32:
		return 1
	case gputypes.VertexFormatFloat32x2:
		return 2
	case gputypes.VertexFormatFloat32x3:
		return 3
	default:
		return 4
	}
}

// FloatFormat returns the float vertex format with n components.
func FloatFormat(n int) gputypes.VertexFormat {
	switch n {
	case 1:
		return gputypes.VertexFormatFloat32
	case 2:
		return gputypes.VertexFormatFloat32x2
	case 3:
		return gputypes.VertexFormatFloat32x3
	default:
		return gputypes.VertexFormatFloat32x4
	}
}
