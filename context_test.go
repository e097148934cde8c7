// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glcmd

import (
	"errors"
	"testing"
	"time"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/glcmd/device"
	"github.com/gogpu/glcmd/device/recorder"
	"github.com/gogpu/glcmd/internal/glstate"
)

// newTestContext returns a context on a 640x480 recorder whose log has
// been cleared of the initial refresh.
func newTestContext(t *testing.T, opts ...ContextOption) (*Context, *recorder.Recorder) {
	t.Helper()
	rec := recorder.New(640, 480)
	ctx, err := NewContext(rec, opts...)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	rec.Reset()
	return ctx, rec
}

func colorProgram() *recorder.Program {
	return recorder.NewProgram(
		[]device.AttributeInfo{{Name: "position", Location: 0, Format: gputypes.VertexFormatFloat32x2}},
		[]device.UniformInfo{{Name: "color", Type: device.UniformVec4}},
	)
}

func TestNewContextNilDevice(t *testing.T) {
	if _, err := NewContext(nil); !errors.Is(err, ErrNilDevice) {
		t.Errorf("NewContext(nil) error = %v, want ErrNilDevice", err)
	}
}

func TestNewContextRefreshes(t *testing.T) {
	rec := recorder.New(320, 200)
	ctx, err := NewContext(rec)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}

	// The recorder starts with dither on; the initial refresh turns it off.
	if rec.Enabled(device.CapDither) {
		t.Error("dither still enabled after NewContext")
	}
	if !rec.Enabled(device.CapDepthTest) {
		t.Error("depth test not enabled after NewContext")
	}
	v, ok := rec.Value("Viewport")
	if !ok || v != (device.Rect{Width: 320, Height: 200}) {
		t.Errorf("Viewport = %v, %v, want full drawing buffer", v, ok)
	}
	if rec.Count(recorder.CmdBindFramebuffer) != 1 {
		t.Errorf("BindFramebuffer count = %d, want 1", rec.Count(recorder.CmdBindFramebuffer))
	}

	vars := ctx.Vars()
	for name, want := range map[string]any{
		"drawingBufferWidth":  320,
		"drawingBufferHeight": 200,
		"viewportWidth":       320,
		"framebufferHeight":   200,
		"tick":                0,
		"batchId":             0,
		"pixelRatio":          1.0,
	} {
		if vars[name] != want {
			t.Errorf("Vars()[%q] = %v, want %v", name, vars[name], want)
		}
	}
}

func TestPollAppliesOnlyDifferences(t *testing.T) {
	ctx, rec := newTestContext(t)

	ctx.Poll()
	if got := rec.StateCalls(); got != 0 {
		t.Errorf("StateCalls() after clean Poll = %d, want 0", got)
	}

	i, _ := lookupField(t, "blend.enable")
	ctx.state.SetNext(i, true)
	ctx.Poll()
	if got := rec.StateCalls(); got != 1 {
		t.Errorf("StateCalls() = %d, want 1", got)
	}
	if !rec.Enabled(device.CapBlend) {
		t.Error("blend not enabled")
	}
	if cur, _ := ctx.Current("blend.enable"); cur != true {
		t.Errorf("Current(blend.enable) = %v, want true", cur)
	}
}

func TestRefreshForcesEverything(t *testing.T) {
	ctx, rec := newTestContext(t)

	ctx.Refresh()
	if rec.StateCalls() == 0 {
		t.Error("Refresh issued no state calls")
	}
	if rec.Count(recorder.CmdBindFramebuffer) != 1 {
		t.Errorf("BindFramebuffer count = %d, want 1", rec.Count(recorder.CmdBindFramebuffer))
	}
}

func TestCurrentNextUnknown(t *testing.T) {
	ctx, _ := newTestContext(t)
	if _, ok := ctx.Current("bogus"); ok {
		t.Error("Current(bogus) reported ok")
	}
	if _, ok := ctx.Next("bogus"); ok {
		t.Error("Next(bogus) reported ok")
	}
}

func TestTick(t *testing.T) {
	now := time.Unix(1000, 0)
	clock := func() time.Time { return now }
	ctx, rec := newTestContext(t, WithClock(clock))

	now = now.Add(1500 * time.Millisecond)
	ctx.Tick()
	ctx.Tick()
	if got := ctx.Vars()["tick"]; got != 2 {
		t.Errorf("tick = %v, want 2", got)
	}
	if got := ctx.Vars()["time"]; got != 1.5 {
		t.Errorf("time = %v, want 1.5", got)
	}

	rec.SetSize(100, 50)
	ctx.Tick()
	if got := ctx.Vars()["drawingBufferWidth"]; got != 100 {
		t.Errorf("drawingBufferWidth = %v, want 100", got)
	}
	if got, _ := ctx.Next("viewport"); got != (device.Rect{Width: 100, Height: 50}) {
		t.Errorf("Next(viewport) = %v, want 100x50", got)
	}
}

func TestResizeKeepsOverriddenViewport(t *testing.T) {
	ctx, _ := newTestContext(t)

	i, _ := lookupField(t, "viewport")
	custom := device.Rect{X: 1, Y: 2, Width: 3, Height: 4}
	ctx.state.SetNext(i, custom)
	ctx.Resize(800, 600)

	if got, _ := ctx.Next("viewport"); got != custom {
		t.Errorf("Next(viewport) = %v, want %v", got, custom)
	}
	if got, _ := ctx.Next("scissor.box"); got != (device.Rect{Width: 800, Height: 600}) {
		t.Errorf("Next(scissor.box) = %v, want 800x600", got)
	}
	if got := ctx.Vars()["viewportWidth"]; got != 800 {
		t.Errorf("viewportWidth = %v, want 800", got)
	}
}

func TestClear(t *testing.T) {
	ctx, rec := newTestContext(t)
	fb := recorder.NewFramebuffer(16, 16)

	err := ctx.Clear(ClearOptions{Color: []float64{0, 0, 0, 1}, Depth: 1, Stencil: 0, Framebuffer: fb})
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if rec.Count(recorder.CmdClear) != 1 {
		t.Fatalf("Clear count = %d, want 1", rec.Count(recorder.CmdClear))
	}

	var clear recorder.ClearCommand
	for _, c := range rec.Commands() {
		if cc, ok := c.(recorder.ClearCommand); ok {
			clear = cc
		}
	}
	if rec.Framebuffer() != device.Framebuffer(fb) {
		t.Errorf("cleared framebuffer = %v, want %v", rec.Framebuffer(), fb)
	}
	if clear.Request.Color == nil || *clear.Request.Color != [4]float32{0, 0, 0, 1} {
		t.Errorf("clear color = %v", clear.Request.Color)
	}
	if ctx.fbNext != nil {
		t.Error("Clear left the framebuffer staged")
	}
}

func TestClearErrors(t *testing.T) {
	ctx, _ := newTestContext(t)
	tests := []struct {
		name string
		o    ClearOptions
		path string
	}{
		{"color", ClearOptions{Color: "red"}, "clear.color"},
		{"depth", ClearOptions{Depth: "far"}, "clear.depth"},
		{"stencil", ClearOptions{Stencil: 1.5}, "clear.stencil"},
		{"framebuffer", ClearOptions{Framebuffer: 3}, "clear.framebuffer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var se *SpecificationError
			err := ctx.Clear(tt.o)
			if !errors.As(err, &se) || se.Path != tt.path {
				t.Errorf("Clear error = %v, want SpecificationError at %s", err, tt.path)
			}
		})
	}
}

func TestProgramFromSourceIsShared(t *testing.T) {
	ctx, rec := newTestContext(t)

	s := Spec{Vert: quadWGSL, Frag: quadWGSL, Count: 3}
	a, err := ctx.Compile(s)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	b, err := ctx.Compile(s)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if got := ctx.Stats().Programs; got != 1 {
		t.Errorf("Stats().Programs = %d, want 1", got)
	}
	if rec.Count(recorder.CmdCreateProgram) != 1 {
		t.Errorf("CreateProgram count = %d, want 1", rec.Count(recorder.CmdCreateProgram))
	}
	if a.cmd.program.value != b.cmd.program.value {
		t.Error("commands with the same sources link different programs")
	}
}

func TestProgramFromSourceLinkError(t *testing.T) {
	ctx, _ := newTestContext(t)

	_, err := ctx.Compile(Spec{Vert: "not wgsl", Frag: "not wgsl", Count: 3})
	var se *SpecificationError
	if !errors.As(err, &se) || se.Path != "vert" {
		t.Fatalf("Compile error = %v, want SpecificationError at vert", err)
	}
}

func TestDestroyProgramEvicts(t *testing.T) {
	ctx, rec := newTestContext(t)

	p1, p2 := colorProgram(), colorProgram()
	cmd, err := ctx.Compile(Spec{
		Program:  FromProp("program"),
		Uniforms: map[string]any{"color": []float64{1, 1, 1, 1}},
		Count:    3,
	})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	for _, p := range []*recorder.Program{p1, p2, p1} {
		if err := cmd.Draw(Props{"program": p}); err != nil {
			t.Fatalf("Draw: %v", err)
		}
	}
	if s := cmd.Stats(); s.CacheMisses != 2 || s.CacheHits != 1 {
		t.Errorf("cache misses/hits = %d/%d, want 2/1", s.CacheMisses, s.CacheHits)
	}

	ctx.DestroyProgram(p1)
	if rec.Count(recorder.CmdDestroyProgram) != 1 {
		t.Errorf("DestroyProgram count = %d, want 1", rec.Count(recorder.CmdDestroyProgram))
	}
	if got := cmd.Stats().CachedBodies; got != 1 {
		t.Errorf("CachedBodies = %d, want 1", got)
	}
	if err := cmd.Draw(Props{"program": p1}); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if s := cmd.Stats(); s.CacheMisses != 3 {
		t.Errorf("CacheMisses = %d, want 3", s.CacheMisses)
	}
}

func TestCommandDestroy(t *testing.T) {
	ctx, _ := newTestContext(t)
	spec := Spec{Program: FromProp("program"), Count: 3}
	base := len(ctx.caches)

	for range 8 {
		cmd := mustCompile(t, ctx, spec)
		cmd.Destroy()
	}
	if got := len(ctx.caches); got != base {
		t.Errorf("registered caches = %d after compile and destroy, want %d", got, base)
	}

	p := colorProgram()
	cmd := mustCompile(t, ctx, spec)
	bound := cmd.Bind(struct{}{})
	if err := cmd.Draw(Props{"program": p}); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if got := cmd.Stats().CachedBodies; got != 1 {
		t.Errorf("CachedBodies = %d, want 1", got)
	}
	commands := ctx.Stats().Commands

	cmd.Destroy()
	cmd.Destroy()
	if got := cmd.Stats().CachedBodies; got != 0 {
		t.Errorf("CachedBodies after Destroy = %d, want 0", got)
	}
	if got := ctx.Stats().Commands; got != commands-1 {
		t.Errorf("Stats().Commands = %d, want %d", got, commands-1)
	}
	if len(ctx.caches) != base {
		t.Errorf("registered caches = %d, want %d", len(ctx.caches), base)
	}
	if err := cmd.Draw(Props{"program": p}); !errors.Is(err, ErrDestroyed) {
		t.Errorf("Draw error = %v, want ErrDestroyed", err)
	}
	if err := bound.Batch([]Props{{"program": p}}); !errors.Is(err, ErrDestroyed) {
		t.Errorf("bound Batch error = %v, want ErrDestroyed", err)
	}
	if err := cmd.Scope(nil, nil); !errors.Is(err, ErrDestroyed) {
		t.Errorf("Scope error = %v, want ErrDestroyed", err)
	}
}

func TestSameHandle(t *testing.T) {
	a, b := recorder.NewBuffer(4), recorder.NewBuffer(4)
	tests := []struct {
		x, y device.Handle
		want bool
	}{
		{nil, nil, true},
		{a, nil, false},
		{nil, a, false},
		{a, a, true},
		{a, b, false},
	}
	for _, tt := range tests {
		if got := sameHandle(tt.x, tt.y); got != tt.want {
			t.Errorf("sameHandle(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func lookupField(t *testing.T, name string) (int, bool) {
	t.Helper()
	i, ok := glstate.Lookup(name)
	if !ok {
		t.Fatalf("unknown state field %q", name)
	}
	return i, ok
}

const quadWGSL = `
struct Params {
    color: vec4<f32>,
}

@group(0) @binding(0) var<uniform> params: Params;

@vertex
fn vs_main(@location(0) position: vec2<f32>) -> @builtin(position) vec4<f32> {
    return vec4<f32>(position, 0.0, 1.0);
}

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return params.color;
}
`
