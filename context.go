// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glcmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gogpu/glcmd/device"
	"github.com/gogpu/glcmd/internal/emit"
	"github.com/gogpu/glcmd/internal/glstate"
	"github.com/gogpu/glcmd/internal/value"
)

// Context variable names.
const (
	varTick                = "tick"
	varTime                = "time"
	varViewportWidth       = "viewportWidth"
	varViewportHeight      = "viewportHeight"
	varFramebufferWidth    = "framebufferWidth"
	varFramebufferHeight   = "framebufferHeight"
	varDrawingBufferWidth  = "drawingBufferWidth"
	varDrawingBufferHeight = "drawingBufferHeight"
	varPixelRatio          = "pixelRatio"
	varBatchID             = "batchId"
)

// Context is a render context bound to one device. It owns the tracked
// device state shared by every command compiled against it.
//
// A Context and its commands must be used from a single goroutine.
type Context struct {
	dev  device.Device
	opts contextOptions
	log  *slog.Logger

	state *glstate.State
	vars  Vars
	start time.Time

	fbCurrent device.Framebuffer
	fbNext    device.Framebuffer

	// Values staged by enclosing scopes for commands that do not set them.
	program    device.Program
	uniforms   map[string]any
	attributes map[string]any

	// Device bindings outside the state table.
	bound device.Program
	vao   device.VertexArray
	units *textureUnits

	programs map[[2]string]device.Program
	caches   map[*programCache]struct{}

	poll    *emit.Procedure
	refresh *emit.Procedure

	stats contextStats
}

type contextStats struct {
	framebufferBinds uint64
	programBinds     uint64
	vaoBinds         uint64
	draws            uint64
	commands         int
}

// Stats reports device traffic caused by a Context.
type Stats struct {
	// StateApplies counts fixed-function state calls.
	StateApplies uint64
	// FramebufferBinds counts BindFramebuffer calls.
	FramebufferBinds uint64
	// ProgramBinds counts UseProgram calls.
	ProgramBinds uint64
	// VertexArrayBinds counts BindVertexArray calls.
	VertexArrayBinds uint64
	// TextureBinds and TextureUnbinds count sampler uniform bindings.
	TextureBinds   uint64
	TextureUnbinds uint64
	// TextureUploads counts BindTexture calls; resident textures are reused.
	TextureUploads uint64
	// Draws counts issued draw calls.
	Draws uint64
	// Programs is the number of programs linked from source.
	Programs int
	// Commands is the number of compiled commands not yet destroyed.
	Commands int
}

// NewContext creates a render context for dev and synchronizes the device
// with the initial state.
func NewContext(dev device.Device, opts ...ContextOption) (*Context, error) {
	if dev == nil {
		return nil, ErrNilDevice
	}
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	c := &Context{
		dev:        dev,
		opts:       options,
		log:        options.logger,
		state:      glstate.New(dev),
		start:      options.clock(),
		uniforms:   make(map[string]any),
		attributes: make(map[string]any),
		units:      newTextureUnits(dev, options.textureUnits),
		programs:   make(map[[2]string]device.Program),
	}
	if c.log == nil {
		c.log = Logger()
	}

	w, h := dev.DrawingBufferSize()
	c.vars = Vars{
		varTick:                0,
		varTime:                0.0,
		varViewportWidth:       w,
		varViewportHeight:      h,
		varFramebufferWidth:    w,
		varFramebufferHeight:   h,
		varDrawingBufferWidth:  w,
		varDrawingBufferHeight: h,
		varPixelRatio:          options.pixelRatio,
		varBatchID:             0,
	}

	c.compileCore()
	c.Refresh()
	c.log.Info("glcmd: context created",
		"width", w, "height", h,
		"textureUnits", options.textureUnits,
		"assertions", options.assertions)
	return c, nil
}

// compileCore emits the poll and refresh procedures shared by all
// commands.
func (c *Context) compileCore() {
	env := emit.New()

	poll := env.Proc("poll", 0).Entry
	poll.Call("pollFramebuffer", func([]any) { c.pollFramebuffer() })
	for i, f := range glstate.Fields() {
		emitDiff(poll, c.state, i, emit.Load(c.state.NextSlot(i)), f.Name)
	}
	poll.Store(dirtySlot{c}, emit.Lit(false))

	refresh := env.Proc("refresh", 0).Entry
	refresh.Call("bindFramebuffer", func([]any) { c.forceFramebuffer() })
	for i, f := range glstate.Fields() {
		refresh.Call("apply."+f.Name, func(a []any) { c.state.Force(i, a[0]) }, emit.Load(c.state.NextSlot(i)))
	}
	refresh.Store(dirtySlot{c}, emit.Lit(false))

	u := env.Compile()
	c.poll = u.Proc("poll")
	c.refresh = u.Proc("refresh")
}

// emitDiff appends a compare-gated apply of field i.
func emitDiff(b *emit.Block, st *glstate.State, i int, v emit.Expr, name string) {
	b.Call("diff."+name, func(a []any) { st.Diff(i, a[0]) }, v)
}

// Device returns the device the context drives.
func (c *Context) Device() device.Device { return c.dev }

// Poll brings the device in line with the staged state, applying only the
// fields that differ, and binds the staged framebuffer.
func (c *Context) Poll() {
	_ = c.poll.Call()
}

// Refresh reapplies all tracked state unconditionally. Use it after the
// device lost its state or after foreign code touched it.
func (c *Context) Refresh() {
	c.bound = nil
	c.vao = nil
	c.units.forget()
	_ = c.refresh.Call()
	c.log.Debug("glcmd: state refreshed", "applies", c.state.Applies())
}

// Tick advances the frame counter and the time variable, and picks up a
// new drawing buffer size.
func (c *Context) Tick() {
	tick, _ := c.vars[varTick].(int)
	c.vars[varTick] = tick + 1
	c.vars[varTime] = c.opts.clock().Sub(c.start).Seconds()

	w, h := c.dev.DrawingBufferSize()
	if w != c.vars[varDrawingBufferWidth] || h != c.vars[varDrawingBufferHeight] {
		c.Resize(w, h)
	}
}

// Resize updates the drawing buffer size. The default viewport and
// scissor box follow it unless a scope has overridden them.
func (c *Context) Resize(width, height int) {
	oldW, oldH := c.vars[varDrawingBufferWidth], c.vars[varDrawingBufferHeight]
	c.vars[varDrawingBufferWidth] = width
	c.vars[varDrawingBufferHeight] = height
	if c.fbNext == nil {
		c.vars[varFramebufferWidth] = width
		c.vars[varFramebufferHeight] = height
	}
	if c.vars[varViewportWidth] == oldW && c.vars[varViewportHeight] == oldH {
		c.vars[varViewportWidth] = width
		c.vars[varViewportHeight] = height
	}
	c.state.Resize(width, height)
}

// Vars returns the context variables. The map is live: scopes write into
// it while they run.
func (c *Context) Vars() Vars { return c.vars }

// Current returns the value last applied to the device for a state field.
func (c *Context) Current(name string) (any, bool) {
	i, ok := glstate.Lookup(name)
	if !ok {
		return nil, false
	}
	return c.state.Current(i), true
}

// Next returns the staged value of a state field.
func (c *Context) Next(name string) (any, bool) {
	i, ok := glstate.Lookup(name)
	if !ok {
		return nil, false
	}
	return c.state.Next(i), true
}

// Stats returns device traffic counters.
func (c *Context) Stats() Stats {
	return Stats{
		StateApplies:     c.state.Applies(),
		FramebufferBinds: c.stats.framebufferBinds,
		ProgramBinds:     c.stats.programBinds,
		VertexArrayBinds: c.stats.vaoBinds,
		TextureBinds:     c.units.binds,
		TextureUnbinds:   c.units.unbinds,
		TextureUploads:   c.units.uploads,
		Draws:            c.stats.draws,
		Programs:         len(c.programs),
		Commands:         c.stats.commands,
	}
}

// ClearOptions selects what Clear clears. Nil fields are left untouched.
type ClearOptions struct {
	// Color is a 4-component color (any numeric vector form).
	Color any
	// Depth is a number.
	Depth any
	// Stencil is an integer.
	Stencil any
	// Framebuffer is a device.Framebuffer or DefaultFramebuffer. Nil
	// clears the currently staged framebuffer.
	Framebuffer any
}

// Clear polls the staged state and clears the target framebuffer.
func (c *Context) Clear(o ClearOptions) error {
	var req device.ClearRequest
	if o.Color != nil {
		col, ok := value.Vec4(o.Color, 4)
		if !ok {
			return &SpecificationError{Path: "clear.color", Msg: fmt.Sprintf("expected 4 numbers, got %T", o.Color)}
		}
		req.Color = &col
	}
	if o.Depth != nil {
		d, ok := value.Float(o.Depth)
		if !ok {
			return &SpecificationError{Path: "clear.depth", Msg: fmt.Sprintf("expected number, got %T", o.Depth)}
		}
		req.Depth = &d
	}
	if o.Stencil != nil {
		s, ok := value.Int(o.Stencil)
		if !ok {
			return &SpecificationError{Path: "clear.stencil", Msg: fmt.Sprintf("expected integer, got %T", o.Stencil)}
		}
		s32 := int32(s)
		req.Stencil = &s32
	}

	prev := c.fbNext
	switch fb := o.Framebuffer.(type) {
	case nil:
	case defaultFramebuffer:
		c.fbNext = nil
	case device.Framebuffer:
		c.fbNext = fb
	default:
		return &SpecificationError{Path: "clear.framebuffer", Msg: fmt.Sprintf("expected device.Framebuffer, got %T", o.Framebuffer)}
	}
	c.Poll()
	c.dev.Clear(req)
	c.fbNext = prev
	return nil
}

// programFromSource links a program, reusing earlier links of the same
// source pair.
func (c *Context) programFromSource(vert, frag string) (device.Program, error) {
	key := [2]string{vert, frag}
	if p, ok := c.programs[key]; ok {
		return p, nil
	}
	p, err := c.dev.CreateProgram(vert, frag)
	if err != nil {
		return nil, err
	}
	c.programs[key] = p
	c.log.Debug("glcmd: program linked",
		"id", p.ID(),
		"attributes", len(p.Attributes()),
		"uniforms", len(p.Uniforms()))
	return p, nil
}

// DestroyProgram forgets p: procedures specialized for it are evicted and
// the device releases it when it implements device.ProgramDestroyer.
func (c *Context) DestroyProgram(p device.Program) {
	if p == nil {
		return
	}
	for k, lp := range c.programs {
		if lp.ID() == p.ID() {
			delete(c.programs, k)
		}
	}
	for pc := range c.caches {
		pc.evict(p.ID())
	}
	if sameHandle(c.bound, p) {
		c.bound = nil
	}
	if sameHandle(c.program, p) {
		c.program = nil
	}
	if d, ok := c.dev.(device.ProgramDestroyer); ok {
		d.DestroyProgram(p)
	}
}

func (c *Context) registerCache(pc *programCache) {
	if c.caches == nil {
		c.caches = make(map[*programCache]struct{})
	}
	c.caches[pc] = struct{}{}
}

func (c *Context) unregisterCache(pc *programCache) {
	delete(c.caches, pc)
}

// sameHandle compares two handles by identity. Nil equals nil only.
func sameHandle(a, b device.Handle) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.ID() == b.ID()
}

func (c *Context) pollFramebuffer() {
	if sameHandle(c.fbCurrent, c.fbNext) {
		return
	}
	c.forceFramebuffer()
}

func (c *Context) forceFramebuffer() {
	c.dev.BindFramebuffer(c.fbNext)
	c.fbCurrent = c.fbNext
	c.stats.framebufferBinds++
}

func (c *Context) useProgram(p device.Program) {
	c.dev.UseProgram(p)
	c.bound = p
	c.stats.programBinds++
}

func (c *Context) switchProgram(p device.Program) {
	if !sameHandle(c.bound, p) {
		c.useProgram(p)
	}
}

func (c *Context) bindVertexArray(v device.VertexArray) {
	if sameHandle(c.vao, v) {
		return
	}
	c.dev.BindVertexArray(v)
	c.vao = v
	c.stats.vaoBinds++
}
