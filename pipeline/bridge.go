// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pipeline

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/glcmd/device"
)

// Bridge errors.
var (
	// ErrNilDevice is returned when NewBridge gets no inner device.
	ErrNilDevice = errors.New("pipeline: inner device is nil")

	// ErrNilProvider is returned when NewBridge gets no device provider.
	ErrNilProvider = errors.New("pipeline: device provider is nil")
)

// OffscreenFormat is the color format of framebuffer render targets and of
// the default framebuffer when the provider has no surface.
const OffscreenFormat = gputypes.TextureFormatRGBA8Unorm

// Bridge is a device.Device decorator that tracks GL state and resolves a
// WebGPU render pipeline for every draw before forwarding it.
//
// Calls not overridden here go straight to the inner device.
type Bridge struct {
	device.Device

	provider gpucontext.DeviceProvider
	factory  Factory
	cache    *Cache

	snap        Snapshot
	program     device.Program
	framebuffer device.Framebuffer
	attributes  map[int]device.AttributeBinding

	current hal.RenderPipeline
	state   State
	draws   int
	err     error
}

// NewBridge wraps inner. The provider is the host's GPU device; its
// surface format is the color target format of the default framebuffer.
func NewBridge(inner device.Device, provider gpucontext.DeviceProvider, factory Factory) (*Bridge, error) {
	if inner == nil {
		return nil, ErrNilDevice
	}
	if provider == nil {
		return nil, ErrNilProvider
	}
	w, h := inner.DrawingBufferSize()
	b := &Bridge{
		Device:     inner,
		provider:   provider,
		factory:    factory,
		cache:      NewCache(),
		snap:       DefaultSnapshot(w, h),
		attributes: make(map[int]device.AttributeBinding),
	}
	slogger().Info("pipeline: bridge created",
		"adapter", provider.AdapterInfo().Name,
		"format", provider.SurfaceFormat().String(),
		"width", w, "height", h)
	return b, nil
}

// Inner returns the wrapped device.
func (b *Bridge) Inner() device.Device { return b.Device }

// Cache returns the pipeline cache.
func (b *Bridge) Cache() *Cache { return b.cache }

// Snapshot returns the tracked GL state.
func (b *Bridge) Snapshot() Snapshot { return b.snap }

// Pipeline returns the pipeline resolved for the last draw and its state.
func (b *Bridge) Pipeline() (hal.RenderPipeline, State) { return b.current, b.state }

// Draws returns the number of draws that resolved a pipeline.
func (b *Bridge) Draws() int { return b.draws }

// Err returns the first pipeline resolution error, if any.
func (b *Bridge) Err() error { return b.err }

// Format returns the color target format for the bound framebuffer.
func (b *Bridge) Format() gputypes.TextureFormat {
	if b.framebuffer != nil {
		return OffscreenFormat
	}
	if f := b.provider.SurfaceFormat(); f != gputypes.TextureFormatUndefined {
		return f
	}
	return OffscreenFormat
}

func (b *Bridge) Enable(c device.Capability) {
	b.setCapability(c, true)
	b.Device.Enable(c)
}

func (b *Bridge) Disable(c device.Capability) {
	b.setCapability(c, false)
	b.Device.Disable(c)
}

func (b *Bridge) setCapability(c device.Capability, on bool) {
	switch c {
	case device.CapBlend:
		b.snap.Blend = on
	case device.CapDepthTest:
		b.snap.DepthTest = on
	case device.CapCullFace:
		b.snap.CullFace = on
	case device.CapPolygonOffsetFill:
		b.snap.PolygonOffsetFill = on
	case device.CapSampleAlphaToCoverage:
		b.snap.AlphaToCoverage = on
	case device.CapSampleCoverage:
		b.snap.SampleCoverage = on
	case device.CapStencilTest:
		b.snap.StencilTest = on
	case device.CapScissorTest:
		b.snap.ScissorTest = on
	}
}

func (b *Bridge) BlendColor(c [4]float32) {
	b.snap.BlendColor = c
	b.Device.BlendColor(c)
}

func (b *Bridge) BlendEquation(e device.BlendEquation) {
	b.snap.BlendEquation = e
	b.Device.BlendEquation(e)
}

func (b *Bridge) BlendFunc(f device.BlendFunc) {
	b.snap.BlendFunc = f
	b.Device.BlendFunc(f)
}

func (b *Bridge) DepthFunc(f gputypes.CompareFunction) {
	b.snap.DepthFunc = f
	b.Device.DepthFunc(f)
}

func (b *Bridge) DepthMask(write bool) {
	b.snap.DepthMask = write
	b.Device.DepthMask(write)
}

func (b *Bridge) DepthRange(r device.DepthRange) {
	b.snap.DepthRange = r
	b.Device.DepthRange(r)
}

func (b *Bridge) ColorMask(m device.ColorMask) {
	b.snap.ColorMask = m
	b.Device.ColorMask(m)
}

func (b *Bridge) CullFace(mode gputypes.CullMode) {
	b.snap.CullMode = mode
	b.Device.CullFace(mode)
}

func (b *Bridge) FrontFace(face gputypes.FrontFace) {
	b.snap.FrontFace = face
	b.Device.FrontFace(face)
}

func (b *Bridge) PolygonOffset(o device.PolygonOffset) {
	b.snap.PolygonOffset = o
	b.Device.PolygonOffset(o)
}

func (b *Bridge) SampleCoverage(s device.SampleCoverage) {
	b.snap.Coverage = s
	b.Device.SampleCoverage(s)
}

func (b *Bridge) StencilMask(mask uint32) {
	b.snap.StencilMask = mask
	b.Device.StencilMask(mask)
}

func (b *Bridge) StencilFunc(f device.StencilFunc) {
	b.snap.StencilFunc = f
	b.Device.StencilFunc(f)
}

func (b *Bridge) StencilOp(face device.Face, op device.StencilOp) {
	if face == device.FaceBack {
		b.snap.StencilOpBack = op
	} else {
		b.snap.StencilOpFront = op
	}
	b.Device.StencilOp(face, op)
}

func (b *Bridge) Scissor(r device.Rect) {
	b.snap.Scissor = r
	b.Device.Scissor(r)
}

func (b *Bridge) Viewport(r device.Rect) {
	b.snap.Viewport = r
	b.Device.Viewport(r)
}

func (b *Bridge) BindFramebuffer(fb device.Framebuffer) {
	b.framebuffer = fb
	if fb != nil {
		b.snap.TargetWidth, b.snap.TargetHeight = fb.Width(), fb.Height()
	} else {
		b.snap.TargetWidth, b.snap.TargetHeight = b.Device.DrawingBufferSize()
	}
	b.Device.BindFramebuffer(fb)
}

func (b *Bridge) UseProgram(p device.Program) {
	b.program = p
	b.Device.UseProgram(p)
}

func (b *Bridge) BindAttribute(location int, binding device.AttributeBinding) {
	b.attributes[location] = binding
	b.Device.BindAttribute(location, binding)
}

func (b *Bridge) ConstantAttribute(location int, v [4]float32) {
	delete(b.attributes, location)
	b.Device.ConstantAttribute(location, v)
}

func (b *Bridge) DrawArrays(mode gputypes.PrimitiveTopology, first, count int) {
	b.resolve(mode, gputypes.IndexFormatUndefined)
	b.Device.DrawArrays(mode, first, count)
}

func (b *Bridge) DrawElements(mode gputypes.PrimitiveTopology, elements device.Elements, offset, count int) {
	b.resolve(mode, indexFormat(elements))
	b.Device.DrawElements(mode, elements, offset, count)
}

func (b *Bridge) DrawArraysInstanced(mode gputypes.PrimitiveTopology, first, count, instances int) {
	b.resolve(mode, gputypes.IndexFormatUndefined)
	b.Device.DrawArraysInstanced(mode, first, count, instances)
}

func (b *Bridge) DrawElementsInstanced(mode gputypes.PrimitiveTopology, elements device.Elements, offset, count, instances int) {
	b.resolve(mode, indexFormat(elements))
	b.Device.DrawElementsInstanced(mode, elements, offset, count, instances)
}

// DestroyProgram evicts the pipelines of p and forwards the call when the
// inner device releases programs.
func (b *Bridge) DestroyProgram(p device.Program) {
	if n := b.cache.EvictProgram(p); n > 0 {
		slogger().Debug("pipeline: evicted", "program", p.ID(), "pipelines", n)
	}
	if sameProgram(b.program, p) {
		b.program = nil
	}
	if d, ok := b.Device.(device.ProgramDestroyer); ok {
		d.DestroyProgram(p)
	}
}

// CreateTexture forwards to the inner device.
func (b *Bridge) CreateTexture(desc device.TextureDescriptor, pixels []byte) (device.Texture, error) {
	tc, ok := b.Device.(device.TextureCreator)
	if !ok {
		return nil, fmt.Errorf("pipeline: inner device %T cannot create textures", b.Device)
	}
	return tc.CreateTexture(desc, pixels)
}

func (b *Bridge) resolve(mode gputypes.PrimitiveTopology, index gputypes.IndexFormat) {
	b.snap.Topology = mode
	b.snap.IndexFormat = index
	state := Translate(b.snap, b.Format())

	desc := &Descriptor{
		Program: b.program,
		Buffers: VertexBuffers(b.attributes),
		State:   state,
	}
	p, err := b.cache.GetOrCreate(desc, b.factory)
	if err != nil {
		if b.err == nil {
			b.err = fmt.Errorf("pipeline: resolve draw %d: %w", b.draws, err)
		}
		slogger().Warn("pipeline: resolve failed", "err", err)
		return
	}
	b.current, b.state = p, state
	b.draws++
}

func indexFormat(e device.Elements) gputypes.IndexFormat {
	if e == nil {
		return gputypes.IndexFormatUndefined
	}
	return e.Format()
}

func sameProgram(a, b device.Program) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.ID() == b.ID()
}
