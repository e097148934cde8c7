// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package recorder

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/glcmd/device"
)

// Buffer is a recorded vertex buffer.
type Buffer struct {
	id     uint64
	length int
}

// NewBuffer returns a buffer of byteLength bytes.
func NewBuffer(byteLength int) *Buffer {
	return &Buffer{id: device.NextID(), length: byteLength}
}

func (b *Buffer) ID() uint64      { return b.id }
func (b *Buffer) ByteLength() int { return b.length }

// Texture is a recorded 2D texture.
type Texture struct {
	id     uint64
	width  int
	height int
	pixels []byte
}

// NewTexture returns an empty width x height texture.
func NewTexture(width, height int) *Texture {
	return &Texture{id: device.NextID(), width: width, height: height}
}

func (t *Texture) ID() uint64  { return t.id }
func (t *Texture) Width() int  { return t.width }
func (t *Texture) Height() int { return t.height }

// Pixels returns the uploaded texel data, if any.
func (t *Texture) Pixels() []byte { return t.pixels }

// Framebuffer is a recorded render target with one color attachment.
type Framebuffer struct {
	id    uint64
	color *Texture
}

// NewFramebuffer returns a framebuffer with a width x height color
// texture.
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{id: device.NextID(), color: NewTexture(width, height)}
}

func (f *Framebuffer) ID() uint64                   { return f.id }
func (f *Framebuffer) Width() int                   { return f.color.width }
func (f *Framebuffer) Height() int                  { return f.color.height }
func (f *Framebuffer) ColorTexture() device.Texture { return f.color }

// Elements is a recorded index buffer.
type Elements struct {
	id        uint64
	primitive gputypes.PrimitiveTopology
	count     int
	format    gputypes.IndexFormat
}

// NewElements returns an index buffer of count 16-bit indices.
func NewElements(primitive gputypes.PrimitiveTopology, count int) *Elements {
	return &Elements{
		id:        device.NextID(),
		primitive: primitive,
		count:     count,
		format:    gputypes.IndexFormatUint16,
	}
}

func (e *Elements) ID() uint64                            { return e.id }
func (e *Elements) Primitive() gputypes.PrimitiveTopology { return e.primitive }
func (e *Elements) Count() int                            { return e.count }
func (e *Elements) Format() gputypes.IndexFormat          { return e.format }

// VertexArray is a recorded vertex array object.
type VertexArray struct {
	id       uint64
	elements device.Elements
	count    int
}

// NewVertexArray returns a vertex array. elements may be nil; count is
// the vertex count used when there are no elements.
func NewVertexArray(elements device.Elements, count int) *VertexArray {
	return &VertexArray{id: device.NextID(), elements: elements, count: count}
}

func (v *VertexArray) ID() uint64 { return v.id }

func (v *VertexArray) Elements() device.Elements { return v.elements }

func (v *VertexArray) Count() int { return v.count }

// Program is a recorded program with declared inputs.
type Program struct {
	id         uint64
	attributes []device.AttributeInfo
	uniforms   []device.UniformInfo
	vert, frag string
}

// NewProgram returns a program with the given inputs. Uniform locations
// left at zero are numbered in order.
func NewProgram(attributes []device.AttributeInfo, uniforms []device.UniformInfo) *Program {
	us := append([]device.UniformInfo(nil), uniforms...)
	for i := range us {
		if us[i].Location == 0 {
			us[i].Location = i
		}
		if us[i].Size == 0 {
			us[i].Size = 1
		}
	}
	return &Program{
		id:         device.NextID(),
		attributes: append([]device.AttributeInfo(nil), attributes...),
		uniforms:   us,
	}
}

func (p *Program) ID() uint64                         { return p.id }
func (p *Program) Attributes() []device.AttributeInfo { return p.attributes }
func (p *Program) Uniforms() []device.UniformInfo     { return p.uniforms }

// Sources returns the sources the program was created from, if any.
func (p *Program) Sources() (vert, frag string) { return p.vert, p.frag }
