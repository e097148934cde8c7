// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build opengl

package opengl

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/glcmd/device"
)

// ErrIncompleteFramebuffer is returned when a framebuffer fails the
// completeness check.
var ErrIncompleteFramebuffer = errors.New("opengl: incomplete framebuffer")

// Buffer is a GL array buffer.
type Buffer struct {
	id     uint64
	name   uint32
	length int
}

func (b *Buffer) ID() uint64      { return b.id }
func (b *Buffer) ByteLength() int { return b.length }

// Release deletes the GL buffer.
func (b *Buffer) Release() {
	if b.name != 0 {
		gl.DeleteBuffers(1, &b.name)
		b.name = 0
	}
}

// CreateBuffer uploads vertex data. data is a []float32, []uint8 or any
// other slice accepted by gl.Ptr; byteLength is its size in bytes.
func (d *Device) CreateBuffer(data any, byteLength int) *Buffer {
	b := &Buffer{id: device.NextID(), length: byteLength}
	gl.GenBuffers(1, &b.name)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.name)
	var ptr unsafe.Pointer
	if data != nil && byteLength > 0 {
		ptr = gl.Ptr(data)
	}
	gl.BufferData(gl.ARRAY_BUFFER, byteLength, ptr, gl.STATIC_DRAW)
	return b
}

// CreateFloatBuffer uploads float32 vertex data.
func (d *Device) CreateFloatBuffer(data []float32) *Buffer {
	if len(data) == 0 {
		return d.CreateBuffer(nil, 0)
	}
	return d.CreateBuffer(data, len(data)*4)
}

// Texture is a GL 2D texture.
type Texture struct {
	id            uint64
	name          uint32
	width, height int
}

func (t *Texture) ID() uint64  { return t.id }
func (t *Texture) Width() int  { return t.width }
func (t *Texture) Height() int { return t.height }

// Release deletes the GL texture.
func (t *Texture) Release() {
	if t.name != 0 {
		gl.DeleteTextures(1, &t.name)
		t.name = 0
	}
}

// CreateTexture implements device.TextureCreator. pixels may be nil to
// allocate an uninitialized texture.
func (d *Device) CreateTexture(desc device.TextureDescriptor, pixels []byte) (device.Texture, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return nil, fmt.Errorf("opengl: texture %q: invalid size %dx%d", desc.Label, desc.Width, desc.Height)
	}
	internal, format, xtype, ok := textureFormat(desc.Format)
	if !ok {
		return nil, fmt.Errorf("opengl: texture %q: unsupported format %v", desc.Label, desc.Format)
	}
	if pixels != nil && len(pixels) != desc.Width*desc.Height*4 {
		return nil, fmt.Errorf("opengl: texture %q: got %d bytes, want %d", desc.Label, len(pixels), desc.Width*desc.Height*4)
	}

	t := &Texture{id: device.NextID(), width: desc.Width, height: desc.Height}
	gl.GenTextures(1, &t.name)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, t.name)
	minFilter := int32(gl.LINEAR)
	if desc.Mipmap {
		minFilter = gl.LINEAR_MIPMAP_LINEAR
	}
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, minFilter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	var ptr unsafe.Pointer
	if pixels != nil {
		ptr = gl.Ptr(pixels)
	}
	gl.TexImage2D(gl.TEXTURE_2D, 0, internal, int32(desc.Width), int32(desc.Height), 0, format, xtype, ptr)
	if desc.Mipmap {
		gl.GenerateMipmap(gl.TEXTURE_2D)
	}
	// Restore unit 0; the context tracks texture units itself.
	gl.BindTexture(gl.TEXTURE_2D, d.units[0])
	return t, nil
}

// Framebuffer is a GL framebuffer with an RGBA8 color texture and a
// depth-stencil renderbuffer.
type Framebuffer struct {
	id      uint64
	name    uint32
	depth   uint32
	color   *Texture
	release bool
}

func (f *Framebuffer) ID() uint64                   { return f.id }
func (f *Framebuffer) Width() int                   { return f.color.width }
func (f *Framebuffer) Height() int                  { return f.color.height }
func (f *Framebuffer) ColorTexture() device.Texture { return f.color }

// Release deletes the framebuffer with its attachments.
func (f *Framebuffer) Release() {
	if f.depth != 0 {
		gl.DeleteRenderbuffers(1, &f.depth)
		f.depth = 0
	}
	if f.name != 0 {
		gl.DeleteFramebuffers(1, &f.name)
		f.name = 0
	}
	if f.release {
		f.color.Release()
	}
}

// CreateFramebuffer allocates an off-screen render target.
func (d *Device) CreateFramebuffer(width, height int) (*Framebuffer, error) {
	tex, err := d.CreateTexture(device.TextureDescriptor{
		Label: "framebuffer", Width: width, Height: height, Format: gputypes.TextureFormatRGBA8Unorm,
	}, nil)
	if err != nil {
		return nil, err
	}
	f := &Framebuffer{id: device.NextID(), color: tex.(*Texture), release: true}
	gl.GenFramebuffers(1, &f.name)
	gl.BindFramebuffer(gl.FRAMEBUFFER, f.name)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, f.color.name, 0)

	gl.GenRenderbuffers(1, &f.depth)
	gl.BindRenderbuffer(gl.RENDERBUFFER, f.depth)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH24_STENCIL8, int32(width), int32(height))
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_STENCIL_ATTACHMENT, gl.RENDERBUFFER, f.depth)

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, d.boundFramebuffer())
	if status != gl.FRAMEBUFFER_COMPLETE {
		f.Release()
		return nil, fmt.Errorf("%w: status 0x%x", ErrIncompleteFramebuffer, status)
	}
	return f, nil
}

// Elements is a GL element array buffer.
type Elements struct {
	id        uint64
	name      uint32
	primitive gputypes.PrimitiveTopology
	count     int
	format    gputypes.IndexFormat
}

func (e *Elements) ID() uint64                            { return e.id }
func (e *Elements) Primitive() gputypes.PrimitiveTopology { return e.primitive }
func (e *Elements) Count() int                            { return e.count }
func (e *Elements) Format() gputypes.IndexFormat          { return e.format }

// Release deletes the GL buffer.
func (e *Elements) Release() {
	if e.name != 0 {
		gl.DeleteBuffers(1, &e.name)
		e.name = 0
	}
}

// CreateElements uploads 16-bit indices.
func (d *Device) CreateElements(primitive gputypes.PrimitiveTopology, indices []uint16) *Elements {
	e := &Elements{id: device.NextID(), primitive: primitive, count: len(indices), format: gputypes.IndexFormatUint16}
	if len(indices) > 0 {
		e.upload(gl.Ptr(indices), len(indices)*2)
	} else {
		e.upload(nil, 0)
	}
	return e
}

// CreateElements32 uploads 32-bit indices.
func (d *Device) CreateElements32(primitive gputypes.PrimitiveTopology, indices []uint32) *Elements {
	e := &Elements{id: device.NextID(), primitive: primitive, count: len(indices), format: gputypes.IndexFormatUint32}
	if len(indices) > 0 {
		e.upload(gl.Ptr(indices), len(indices)*4)
	} else {
		e.upload(nil, 0)
	}
	return e
}

func (e *Elements) upload(ptr unsafe.Pointer, size int) {
	gl.GenBuffers(1, &e.name)
	// The element binding is vertex array state; upload through
	// ARRAY_BUFFER so the bound VAO keeps its binding.
	gl.BindBuffer(gl.ARRAY_BUFFER, e.name)
	gl.BufferData(gl.ARRAY_BUFFER, size, ptr, gl.STATIC_DRAW)
}

// VertexArray is a GL vertex array object.
type VertexArray struct {
	id       uint64
	name     uint32
	elements *Elements
	count    int
}

func (v *VertexArray) ID() uint64 { return v.id }

func (v *VertexArray) Elements() device.Elements {
	if v.elements == nil {
		return nil
	}
	return v.elements
}

func (v *VertexArray) Count() int { return v.count }

// Release deletes the GL vertex array.
func (v *VertexArray) Release() {
	if v.name != 0 {
		gl.DeleteVertexArrays(1, &v.name)
		v.name = 0
	}
}

// CreateVertexArray records attribute bindings and an optional index
// buffer in a vertex array object. count is the vertex count used when a
// draw names no count.
func (d *Device) CreateVertexArray(attributes map[int]device.AttributeBinding, elements *Elements, count int) *VertexArray {
	v := &VertexArray{id: device.NextID(), elements: elements, count: count}
	gl.GenVertexArrays(1, &v.name)
	gl.BindVertexArray(v.name)
	for loc, b := range attributes {
		pointer(uint32(loc), b)
	}
	if elements != nil {
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, elements.name)
	}
	gl.BindVertexArray(d.vertexArray())
	return v
}
