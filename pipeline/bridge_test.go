// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pipeline

import (
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/glcmd"
	"github.com/gogpu/glcmd/device"
	"github.com/gogpu/glcmd/device/recorder"
)

// mockGPU implements gpucontext.Device for testing.
type mockGPU struct{}

// mockQueue implements gpucontext.Queue for testing.
type mockQueue struct{}

// mockAdapter implements gpucontext.Adapter for testing.
type mockAdapter struct{}

// mockProvider implements gpucontext.DeviceProvider for testing.
type mockProvider struct {
	format gputypes.TextureFormat
}

func (m *mockProvider) Device() gpucontext.Device             { return &mockGPU{} }
func (m *mockProvider) Queue() gpucontext.Queue               { return &mockQueue{} }
func (m *mockProvider) Adapter() gpucontext.Adapter           { return &mockAdapter{} }
func (m *mockProvider) SurfaceFormat() gputypes.TextureFormat { return m.format }
func (m *mockProvider) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Name: "mock", Type: gpucontext.AdapterTypeIntegrated}
}

func newTestBridge(t *testing.T, format gputypes.TextureFormat) (*Bridge, *recorder.Recorder, *countingFactory) {
	t.Helper()
	rec := recorder.New(64, 32)
	f := &countingFactory{}
	b, err := NewBridge(rec, &mockProvider{format: format}, f.create)
	if err != nil {
		t.Fatalf("NewBridge: %v", err)
	}
	return b, rec, f
}

func positionProgram() *recorder.Program {
	return recorder.NewProgram(
		[]device.AttributeInfo{{Name: "position", Location: 0, Format: gputypes.VertexFormatFloat32x2}},
		nil,
	)
}

func TestNewBridgeErrors(t *testing.T) {
	if _, err := NewBridge(nil, &mockProvider{}, nil); !errors.Is(err, ErrNilDevice) {
		t.Errorf("NewBridge(nil device) error = %v, want ErrNilDevice", err)
	}
	if _, err := NewBridge(recorder.New(1, 1), nil, nil); !errors.Is(err, ErrNilProvider) {
		t.Errorf("NewBridge(nil provider) error = %v, want ErrNilProvider", err)
	}
}

func TestBridgeFormat(t *testing.T) {
	b, _, _ := newTestBridge(t, gputypes.TextureFormatBGRA8Unorm)
	if b.Format() != gputypes.TextureFormatBGRA8Unorm {
		t.Errorf("Format() = %v, want surface format", b.Format())
	}
	b.BindFramebuffer(recorder.NewFramebuffer(16, 8))
	if b.Format() != OffscreenFormat {
		t.Errorf("Format() with framebuffer = %v, want %v", b.Format(), OffscreenFormat)
	}
	if s := b.Snapshot(); s.TargetWidth != 16 || s.TargetHeight != 8 {
		t.Errorf("target = %dx%d, want 16x8", s.TargetWidth, s.TargetHeight)
	}
	b.BindFramebuffer(nil)
	if s := b.Snapshot(); s.TargetWidth != 64 || s.TargetHeight != 32 {
		t.Errorf("target = %dx%d, want 64x32", s.TargetWidth, s.TargetHeight)
	}

	headless, _, _ := newTestBridge(t, gputypes.TextureFormatUndefined)
	if headless.Format() != OffscreenFormat {
		t.Errorf("headless Format() = %v, want %v", headless.Format(), OffscreenFormat)
	}
}

func TestBridgeShadowsState(t *testing.T) {
	b, rec, _ := newTestBridge(t, gputypes.TextureFormatBGRA8Unorm)

	b.Enable(device.CapStencilTest)
	b.StencilOp(device.FaceBack, device.StencilOp{ZPass: device.StencilReplace})
	b.ColorMask(device.ColorMask{true, false, true, false})
	b.Disable(device.CapDepthTest)

	s := b.Snapshot()
	if !s.StencilTest || s.DepthTest {
		t.Errorf("flags stencil=%v depth=%v, want true, false", s.StencilTest, s.DepthTest)
	}
	if s.StencilOpBack.ZPass != device.StencilReplace {
		t.Errorf("StencilOpBack = %+v", s.StencilOpBack)
	}
	if s.ColorMask != (device.ColorMask{true, false, true, false}) {
		t.Errorf("ColorMask = %v", s.ColorMask)
	}
	// Every call still reaches the inner device.
	if !rec.Enabled(device.CapStencilTest) || rec.Enabled(device.CapDepthTest) {
		t.Error("capability changes were not forwarded")
	}
	if v, ok := rec.Value("ColorMask"); !ok || v != (device.ColorMask{true, false, true, false}) {
		t.Errorf("inner ColorMask = %v, %v", v, ok)
	}
}

func TestBridgeResolvesPipelines(t *testing.T) {
	b, rec, f := newTestBridge(t, gputypes.TextureFormatBGRA8Unorm)
	ctx, err := glcmd.NewContext(b)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}

	prog := positionProgram()
	cmd, err := ctx.Compile(glcmd.Spec{
		Program:    prog,
		Attributes: map[string]any{"position": recorder.NewBuffer(24)},
		Count:      3,
		State: map[string]any{
			"blend.enable": glcmd.FromProp("blend"),
			"blend.func":   map[string]any{"src": "src alpha", "dst": "one minus src alpha"},
		},
	})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	for _, blend := range []bool{false, false, true} {
		if err := cmd.Draw(glcmd.Props{"blend": blend}); err != nil {
			t.Fatalf("Draw: %v", err)
		}
	}
	if err := b.Err(); err != nil {
		t.Fatalf("Err() = %v", err)
	}
	if b.Draws() != 3 || len(rec.Draws()) != 3 {
		t.Errorf("draws bridge=%d inner=%d, want 3, 3", b.Draws(), len(rec.Draws()))
	}
	if f.calls != 2 {
		t.Errorf("pipelines created = %d, want 2", f.calls)
	}
	if hits, misses := b.Cache().Stats(); hits != 1 || misses != 2 {
		t.Errorf("cache hits/misses = %d/%d, want 1/2", hits, misses)
	}

	p, st := b.Pipeline()
	if p == nil {
		t.Fatal("no pipeline for the last draw")
	}
	if st.ColorTarget.Blend == nil || st.ColorTarget.Blend.Color.SrcFactor != gputypes.BlendFactorSrcAlpha {
		t.Errorf("blend = %+v, want src alpha", st.ColorTarget.Blend)
	}
	if st.ColorTarget.Format != gputypes.TextureFormatBGRA8Unorm {
		t.Errorf("target format = %v", st.ColorTarget.Format)
	}
	if st.Primitive.Topology != gputypes.PrimitiveTopologyTriangleList {
		t.Errorf("Topology = %v", st.Primitive.Topology)
	}

	// Destroying the program through the context evicts its pipelines.
	ctx.DestroyProgram(prog)
	if b.Cache().Size() != 0 {
		t.Errorf("cache size after DestroyProgram = %d, want 0", b.Cache().Size())
	}
	if rec.Count(recorder.CmdDestroyProgram) != 1 {
		t.Errorf("inner DestroyProgram count = %d, want 1", rec.Count(recorder.CmdDestroyProgram))
	}
	for _, mp := range f.created {
		if !mp.destroyed {
			t.Errorf("pipeline %d not destroyed", mp.id)
		}
	}
}

func TestBridgeFramebufferViewport(t *testing.T) {
	b, _, f := newTestBridge(t, gputypes.TextureFormatBGRA8Unorm)
	ctx, err := glcmd.NewContext(b)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	cmd, err := ctx.Compile(glcmd.Spec{
		Program:     positionProgram(),
		Attributes:  map[string]any{"position": recorder.NewBuffer(24)},
		Count:       3,
		Framebuffer: recorder.NewFramebuffer(16, 8),
	})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if err := cmd.Draw(nil); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	_, st := b.Pipeline()
	if st.ColorTarget.Format != OffscreenFormat {
		t.Errorf("target format = %v, want %v", st.ColorTarget.Format, OffscreenFormat)
	}
	if st.Dynamic.Viewport != (device.Rect{Width: 16, Height: 8}) {
		t.Errorf("Viewport = %v, want 16x8", st.Dynamic.Viewport)
	}
	if f.calls != 1 {
		t.Errorf("pipelines created = %d, want 1", f.calls)
	}
}

func TestBridgeResolveError(t *testing.T) {
	rec := recorder.New(8, 8)
	f := &countingFactory{fail: errors.New("no adapter")}
	b, err := NewBridge(rec, &mockProvider{}, f.create)
	if err != nil {
		t.Fatalf("NewBridge: %v", err)
	}

	b.DrawArrays(gputypes.PrimitiveTopologyTriangleList, 0, 3)
	if !errors.Is(b.Err(), ErrNoProgram) {
		t.Errorf("Err() = %v, want ErrNoProgram", b.Err())
	}
	if len(rec.Draws()) != 1 {
		t.Error("draw was not forwarded after a resolve error")
	}

	b2, _ := NewBridge(recorder.New(8, 8), &mockProvider{}, f.create)
	b2.UseProgram(positionProgram())
	b2.DrawElements(gputypes.PrimitiveTopologyTriangleStrip, recorder.NewElements(gputypes.PrimitiveTopologyTriangleStrip, 4), 0, 4)
	if b2.Err() == nil || !strings.Contains(b2.Err().Error(), "no adapter") {
		t.Errorf("Err() = %v, want factory error", b2.Err())
	}
	if b2.Draws() != 0 {
		t.Errorf("Draws() = %d, want 0", b2.Draws())
	}
}

func TestBridgeCreateTexture(t *testing.T) {
	b, _, _ := newTestBridge(t, gputypes.TextureFormatBGRA8Unorm)
	tex, err := b.CreateTexture(device.TextureDescriptor{Width: 2, Height: 2, Format: gputypes.TextureFormatRGBA8Unorm}, make([]byte, 16))
	if err != nil {
		t.Fatalf("CreateTexture: %v", err)
	}
	if tex.Width() != 2 {
		t.Errorf("Width() = %d, want 2", tex.Width())
	}

	nb, err := NewBridge(device.NullDevice{}, &mockProvider{}, nil)
	if err != nil {
		t.Fatalf("NewBridge: %v", err)
	}
	if _, err := nb.CreateTexture(device.TextureDescriptor{Width: 1, Height: 1}, make([]byte, 4)); err == nil {
		t.Error("CreateTexture on a null device succeeded")
	}
}
