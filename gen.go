// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glcmd

import (
	"time"

	"github.com/gogpu/glcmd/device"
	"github.com/gogpu/glcmd/internal/emit"
	"github.com/gogpu/glcmd/internal/glstate"
)

// gen emits the procedures of one command into an environment.
//
// Statements go to one of two blocks. Declarations that stay the same for
// every element of a batch go to outer, the others to inner; outside a
// batch both name the same block. A nil block skips its half, which lets a
// procedure emit only the part another procedure did not.
type gen struct {
	ctx *Context
	cmd *command
	env *emit.Env

	props emit.Expr
	this  emit.Expr
	batch emit.Expr
	vars  emit.Expr

	outer   *emit.Block
	inner   *emit.Block
	tail    *emit.Block
	batched bool

	// contextDynamic is set when the command writes context variables
	// from props, making every context read per-element in a batch.
	contextDynamic bool

	vao emit.Expr

	outerPost []func(*emit.Block)
	innerPost []func(*emit.Block)
}

func (c *Command) newGen(env *emit.Env, props, this, batch emit.Expr) *gen {
	ctx := c.ctx
	g := &gen{
		ctx:   ctx,
		cmd:   c.cmd,
		env:   env,
		props: props,
		this:  this,
		batch: batch,
		vars:  emit.Func("ctx", func(*emit.Frame) any { return ctx.vars }),
	}
	for _, nd := range c.cmd.context {
		if nd.decl.PropDep || nd.decl.batchDep {
			g.contextDynamic = true
		}
	}
	for _, d := range []*Declaration{c.cmd.framebuffer, c.cmd.state[glstate.Viewport]} {
		if d != nil && (d.PropDep || d.batchDep) {
			g.contextDynamic = true
		}
	}
	return g
}

// constant returns a literal for primitive values and a link otherwise.
func (g *gen) constant(v any) emit.Expr {
	switch v.(type) {
	case nil, bool, int, int32, int64, uint32, float32, float64, string:
		return emit.Lit(v)
	}
	return g.env.Link(v)
}

func (g *gen) isInner(d *Declaration) bool {
	return d.PropDep || d.batchDep || (d.ContextDep && g.contextDynamic)
}

// block returns the block d is emitted into, or nil if its half is
// skipped.
func (g *gen) block(d *Declaration) *emit.Block {
	if g.batched && g.isInner(d) {
		return g.inner
	}
	return g.outer
}

// after schedules fn to emit statements once the draw call is issued, in
// the half that d belongs to.
func (g *gen) after(d *Declaration, fn func(*emit.Block)) {
	if g.batched && g.isInner(d) {
		g.innerPost = append(g.innerPost, fn)
	} else {
		g.outerPost = append(g.outerPost, fn)
	}
}

// param returns an expression for a draw parameter. Dynamic values are
// evaluated once into a local of their half.
func (g *gen) param(d *Declaration) emit.Expr {
	if d.Static() {
		return g.constant(d.value)
	}
	b := g.block(d)
	return b.Def(d.emit(g, b))
}

// saveSlots saves every context slot a draw or batch procedure writes, so
// the procedure leaves the context as it found it.
func (g *gen) saveSlots(sc *emit.Scope) {
	sc.Save(varSlot{g.ctx, varBatchID})
	for _, nd := range g.cmd.context {
		sc.Save(varSlot{g.ctx, nd.name})
	}
	if g.cmd.framebuffer != nil {
		sc.Save(framebufferSlot{g.ctx})
		sc.Save(varSlot{g.ctx, varFramebufferWidth})
		sc.Save(varSlot{g.ctx, varFramebufferHeight})
	}
	if g.cmd.overrides.Has(glstate.Viewport) {
		sc.Save(varSlot{g.ctx, varViewportWidth})
		sc.Save(varSlot{g.ctx, varViewportHeight})
	}
}

func (g *gen) emitContext() {
	for _, nd := range g.cmd.context {
		if b := g.block(nd.decl); b != nil {
			b.Store(varSlot{g.ctx, nd.name}, nd.decl.emit(g, b))
		}
	}
}

func (g *gen) emitFramebuffer() {
	ctx := g.ctx
	fb := g.cmd.framebuffer
	if fb == nil {
		if g.outer != nil {
			g.outer.Call("pollFramebuffer", func([]any) { ctx.pollFramebuffer() })
		}
		return
	}
	b := g.block(fb)
	if b == nil {
		return
	}
	v := b.Def(fb.emit(g, b))
	if !fb.Static() {
		v = b.Def(emit.Apply("checkFramebuffer", ctx.checkFramebuffer, v))
	}
	g.storeFramebuffer(b, v, func(s emit.Slot, x emit.Expr) { b.Store(s, x) })
	b.Call("pollFramebuffer", func([]any) { ctx.pollFramebuffer() })
}

// storeFramebuffer writes the staged framebuffer and its size variables
// through set.
func (g *gen) storeFramebuffer(b *emit.Block, v emit.Expr, set func(emit.Slot, emit.Expr)) {
	ctx := g.ctx
	set(framebufferSlot{ctx}, v)
	set(varSlot{ctx, varFramebufferWidth}, emit.Apply("width", func(x any) any {
		w, _ := ctx.framebufferSize(x)
		return w
	}, v))
	set(varSlot{ctx, varFramebufferHeight}, emit.Apply("height", func(x any) any {
		_, h := ctx.framebufferSize(x)
		return h
	}, v))
}

// stateValue emits the value of an overridden field. Dynamic values are
// parsed at invocation time.
func (g *gen) stateValue(i int, d *Declaration, b *emit.Block) emit.Expr {
	v := d.emit(g, b)
	if d.Static() {
		return v
	}
	ctx := g.ctx
	return b.Def(emit.Apply("parse."+glstate.Get(i).Name, func(x any) any {
		return ctx.parseState(i, x)
	}, v))
}

func (g *gen) viewportVars(v emit.Expr, set func(emit.Slot, emit.Expr)) {
	set(varSlot{g.ctx, varViewportWidth}, emit.Apply("width", func(x any) any {
		return x.(device.Rect).Width
	}, v))
	set(varSlot{g.ctx, varViewportHeight}, emit.Apply("height", func(x any) any {
		return x.(device.Rect).Height
	}, v))
}

// emitState polls the fields the command leaves alone when the context is
// dirty, then applies the fields it overrides.
func (g *gen) emitState() {
	st := g.ctx.state
	dirty := dirtySlot{g.ctx}
	if g.outer != nil {
		poll := g.outer.If(emit.Load(dirty)).Then()
		for i, f := range glstate.Fields() {
			if !g.cmd.overrides.Has(i) {
				emitDiff(poll, st, i, emit.Load(st.NextSlot(i)), f.Name)
			}
		}
		if g.cmd.overrides == 0 {
			poll.Store(dirty, emit.Lit(false))
		}
	}
	for i, f := range glstate.Fields() {
		d := g.cmd.state[i]
		if d == nil {
			continue
		}
		b := g.block(d)
		if b == nil {
			continue
		}
		v := g.stateValue(i, d, b)
		emitDiff(b, st, i, v, f.Name)
		if i == glstate.Viewport {
			g.viewportVars(v, func(s emit.Slot, x emit.Expr) { b.Store(s, x) })
		}
	}
	if g.outer != nil && g.cmd.overrides != 0 {
		g.outer.Store(dirty, emit.Lit(true))
	}
}

func (g *gen) profileDecl() *Declaration {
	if g.cmd.profile != nil {
		return g.cmd.profile
	}
	return staticDecl(g.ctx.opts.profile)
}

// emitProfileStart records the start time when profiling is on. It returns
// an invalid Expr when profiling is statically off.
func (g *gen) emitProfileStart(b *emit.Block, stats *CommandStats) emit.Expr {
	d := g.profileDecl()
	if d.Static() && d.value != true {
		return emit.Expr{}
	}
	clock := g.ctx.opts.clock
	return b.Def(emit.Apply("profile.start", func(on any) any {
		if on != true {
			return nil
		}
		stats.Profiled++
		return clock()
	}, d.emit(g, b)))
}

func (g *gen) emitProfileEnd(b *emit.Block, start emit.Expr, stats *CommandStats) {
	if !start.Valid() {
		return
	}
	clock := g.ctx.opts.clock
	b.Call("profile.end", func(a []any) {
		if t, ok := a[0].(time.Time); ok {
			stats.CPUTime += clock().Sub(t)
		}
	}, start)
}

// programExpr evaluates the command's program. Commands without a program
// use the one staged by an enclosing scope.
func (g *gen) programExpr(b *emit.Block) emit.Expr {
	ctx := g.ctx
	var v emit.Expr
	if g.cmd.program != nil {
		v = g.cmd.program.emit(g, b)
	} else {
		v = emit.Load(programSlot{ctx})
	}
	return b.Def(emit.Apply("checkProgram", func(x any) any {
		p, ok := x.(device.Program)
		if !ok || p == nil {
			fail(ErrNoProgram)
		}
		return p
	}, v))
}

// programClass returns the declaration standing for the program's
// dependencies.
func (g *gen) programClass() *Declaration {
	if g.cmd.program != nil {
		return g.cmd.program
	}
	return &Declaration{ContextDep: true}
}

// staticProgram returns the program when it is known at compile time.
func (g *gen) staticProgram() (device.Program, bool) {
	if g.cmd.program == nil || !g.cmd.program.Static() {
		return nil, false
	}
	p, ok := g.cmd.program.value.(device.Program)
	return p, ok
}

// stagedDecl reads an input staged by an enclosing scope.
func stagedDecl(s emit.Slot) *Declaration {
	return &Declaration{
		ContextDep: true,
		produce: func(*gen, *emit.Block) emit.Expr {
			return emit.Load(s)
		},
	}
}

// emitBody binds the inputs of p, issues the draw call and releases
// textures. It reports static values that do not fit the program.
func (g *gen) emitBody(p device.Program) error {
	if err := g.emitVertexInputs(p); err != nil {
		return err
	}
	if err := g.emitUniforms(p); err != nil {
		return err
	}
	g.emitDraw()
	for _, fn := range g.innerPost {
		fn(g.inner)
	}
	for _, fn := range g.outerPost {
		fn(g.tail)
	}
	g.innerPost, g.outerPost = nil, nil
	return nil
}

func (g *gen) emitUniforms(p device.Program) error {
	ctx := g.ctx
	known := make(map[string]bool)
	for _, u := range p.Uniforms() {
		known[u.Name] = true
		d := g.cmd.uniform(u.Name)
		if d == nil {
			d = stagedDecl(ctx.uniformSlot(u.Name))
		}
		b := g.block(d)
		if b == nil {
			continue
		}
		path := "uniforms." + u.Name

		if u.Type.IsSampler() {
			tex := b.Def(emit.Apply("texture", func(x any) any {
				return ctx.checkSampler(path, x)
			}, d.emit(g, b)))
			unit := b.Def(emit.Apply("bindTexture", func(x any) any {
				t, ok := x.(device.Texture)
				if !ok {
					return nil
				}
				return int32(ctx.units.bind(t))
			}, tex))
			b.Call("uniform."+u.Name, func(a []any) {
				if a[0] != nil {
					ctx.dev.Uniform(u, a[0])
				}
			}, unit)
			g.after(d, func(pb *emit.Block) {
				pb.Call("unbindTexture", func(a []any) {
					if t, ok := a[0].(device.Texture); ok {
						ctx.units.unbind(t)
					}
				}, tex)
			})
			continue
		}

		if d.Static() {
			cv, err := convertUniform(u, d.value)
			if err != nil {
				return &SpecificationError{Path: path, Msg: err.Error(), Site: g.cmd.site, Err: err}
			}
			b.Call("uniform."+u.Name, func(a []any) { ctx.dev.Uniform(u, a[0]) }, g.constant(cv))
			continue
		}
		b.Call("uniform."+u.Name, func(a []any) { ctx.setUniform(u, path, a[0]) }, d.emit(g, b))
	}
	for _, nd := range g.cmd.uniforms {
		if !known[nd.name] {
			ctx.log.Warn("glcmd: uniform not used by program", "name", nd.name, "program", p.ID(), "site", g.cmd.site)
		}
	}
	return nil
}

func (g *gen) emitVertexInputs(p device.Program) error {
	ctx := g.ctx
	if vd := g.cmd.vao; vd != nil {
		g.vao = g.param(vd)
		b := g.block(vd)
		b.Call("bindVertexArray", func(a []any) {
			v, _ := a[0].(device.VertexArray)
			ctx.bindVertexArray(v)
		}, g.vao)
		return nil
	}

	attrs := p.Attributes()
	if len(attrs) > 0 && g.outer != nil {
		g.outer.Call("bindVertexArray", func([]any) { ctx.bindVertexArray(nil) }, emit.Lit(nil))
	}
	known := make(map[string]bool)
	for _, a := range attrs {
		known[a.Name] = true
		d := g.cmd.attribute(a.Name)
		if d == nil {
			d = stagedDecl(ctx.attributeSlot(a.Name))
		}
		b := g.block(d)
		if b == nil {
			continue
		}
		path := "attributes." + a.Name
		if d.Static() {
			in, err := convertAttribute(a, d.value)
			if err != nil {
				return &SpecificationError{Path: path, Msg: err.Error(), Site: g.cmd.site, Err: err}
			}
			b.Call("attribute."+a.Name, func(x []any) { ctx.bindAttribute(a, x[0].(attributeInput)) }, g.env.Link(in))
			continue
		}
		b.Call("attribute."+a.Name, func(x []any) { ctx.setAttribute(a, path, x[0]) }, d.emit(g, b))
	}
	for _, nd := range g.cmd.attributes {
		if !known[nd.name] {
			ctx.log.Warn("glcmd: attribute not used by program", "name", nd.name, "program", p.ID(), "site", g.cmd.site)
		}
	}
	return nil
}

// emitDraw issues the draw call in the inner half.
func (g *gen) emitDraw() {
	ctx := g.ctx
	c := g.cmd

	elements := emit.Lit(nil)
	switch {
	case c.elements != nil:
		elements = g.param(c.elements)
	case g.vao.Valid():
		elements = emit.Apply("elements", func(x any) any {
			if v, ok := x.(device.VertexArray); ok && v != nil {
				if e := v.Elements(); e != nil {
					return e
				}
			}
			return nil
		}, g.vao)
	}

	var count emit.Expr
	switch {
	case c.count != nil:
		count = g.param(c.count)
	case g.vao.Valid():
		count = emit.Apply2("count", func(e, v any) any {
			if el, ok := e.(device.Elements); ok {
				return el.Count()
			}
			if va, ok := v.(device.VertexArray); ok && va != nil {
				return va.Count()
			}
			return 0
		}, elements, g.vao)
	default:
		count = emit.Apply("count", func(e any) any {
			if el, ok := e.(device.Elements); ok {
				return el.Count()
			}
			return 0
		}, elements)
	}

	primitive := emit.Lit(nil)
	if c.primitive != nil {
		primitive = g.param(c.primitive)
	}
	offset := emit.Lit(0)
	if c.offset != nil {
		offset = g.param(c.offset)
	}
	instances := emit.Lit(nil)
	if c.instances != nil {
		instances = g.param(c.instances)
	}

	name := "draw"
	if c.elements != nil && c.elements.Static() {
		name += "Elements"
	} else if c.elements == nil && c.vao == nil {
		name += "Arrays"
	}
	if c.instances != nil {
		name += "Instanced"
	}
	g.inner.Call(name, func(a []any) {
		ctx.draw(a[0], a[1], a[2], a[3], a[4])
	}, primitive, elements, count, offset, instances)
}
