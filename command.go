// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glcmd

import (
	"fmt"
	"time"

	"github.com/gogpu/glcmd/device"
	"github.com/gogpu/glcmd/internal/emit"
	"github.com/gogpu/glcmd/internal/glstate"
)

// ScopeBody is run by Command.Scope with the command's overrides in
// effect. Commands invoked inside inherit them.
type ScopeBody func(vars Vars, props Props, batchID int) error

// CommandStats reports how often a command ran.
type CommandStats struct {
	Invocations uint64
	// Profiled counts invocations with profiling on; CPUTime is their
	// total wall time on the calling goroutine.
	Profiled uint64
	CPUTime  time.Duration
	// CacheHits and CacheMisses count lookups of procedures specialized
	// for dynamic programs.
	CacheHits   uint64
	CacheMisses uint64
	// CachedBodies is the number of specialized procedures held.
	CachedBodies int
}

// compiled is the part of a command shared by all its bindings.
type compiled struct {
	unit  *emit.Unit
	draw  *emit.Procedure
	batch *emit.Procedure
	scope *emit.Procedure

	drawCache  *programCache
	batchCache *programCache

	stats     CommandStats
	destroyed bool
}

// Command is a compiled draw command.
type Command struct {
	ctx  *Context
	cmd  *command
	this any
	*compiled
}

// Compile compiles s into a drawing command. Every option is checked here;
// invocations only fail on dynamic values when assertions are enabled.
func (c *Context) Compile(s Spec) (*Command, error) {
	return c.compile(s, callSite(1), true)
}

// CompileScope compiles s into a command that is only used as a scope.
// It does not require a vertex count.
func (c *Context) CompileScope(s Spec) (*Command, error) {
	return c.compile(s, callSite(1), false)
}

func (c *Context) compile(s Spec, site string, drawable bool) (*Command, error) {
	cmd, err := c.parseSpec(s, site)
	if err != nil {
		return nil, err
	}
	if drawable {
		if err := cmd.checkDrawable(); err != nil {
			return nil, err
		}
	}

	k := &Command{ctx: c, cmd: cmd, compiled: &compiled{}}
	k.drawCache = newProgramCache("drawBody", k.compileDrawBody)
	k.batchCache = newProgramCache("batchBody", k.compileBatchBody)
	c.registerCache(k.drawCache)
	c.registerCache(k.batchCache)

	env := emit.New()
	if drawable {
		if err := k.buildDraw(env); err != nil {
			return nil, err
		}
		if err := k.buildBatch(env); err != nil {
			return nil, err
		}
	}
	k.buildScope(env)

	k.unit = env.Compile()
	k.draw = k.unit.Proc("draw")
	k.batch = k.unit.Proc("batch")
	k.scope = k.unit.Proc("scope")
	c.stats.commands++

	c.log.Debug("glcmd: command compiled",
		"site", site,
		"procs", len(k.unit.Listing().Procs),
		"links", env.Links(),
		"overrides", cmd.overrides.Len())
	return k, nil
}

func (k *Command) buildDraw(env *emit.Env) error {
	sc := env.Proc("draw", 2)
	entry := sc.Entry
	g := k.newGen(env, emit.Arg(0), emit.Arg(1), emit.Lit(0))
	g.outer, g.inner, g.tail = entry, entry, entry

	g.saveSlots(sc)
	entry.Store(varSlot{k.ctx, varBatchID}, emit.Lit(0))
	g.emitContext()
	g.emitFramebuffer()
	g.emitState()
	start := g.emitProfileStart(entry, &k.stats)

	if p, ok := g.staticProgram(); ok {
		entry.Call("useProgram", k.useProgram, g.constant(p))
		if err := g.emitBody(p); err != nil {
			return err
		}
	} else {
		pv := g.programExpr(entry)
		entry.Call("useProgram", k.useProgram, pv)
		entry.Try("drawBody", k.callDrawBody, pv, g.props, g.this, g.batch)
	}
	g.emitProfileEnd(entry, start, &k.stats)
	return nil
}

func (k *Command) buildBatch(env *emit.Env) error {
	sc := env.Proc("batch", 3)
	entry := sc.Entry
	g := k.newGen(env, emit.Lit(nil), emit.Arg(2), emit.Lit(0))
	g.saveSlots(sc)

	outer := entry.Block()
	program := g.programClass()
	_, static := g.staticProgram()

	if !static && !g.isInner(program) {
		// The program is fixed for the whole batch but unknown until now:
		// the loop lives in a body specialized for it.
		g.outer, g.batched = outer, true
		g.emitContext()
		g.emitFramebuffer()
		g.emitState()
		start := g.emitProfileStart(outer, &k.stats)
		pv := g.programExpr(outer)
		outer.Call("useProgram", k.useProgram, pv)
		outer.Try("batchBody", k.callBatchBody, pv, emit.Arg(0), emit.Arg(1), emit.Arg(2))
		g.emitProfileEnd(outer, start, &k.stats)
		return nil
	}

	loop, idx := entry.Loop(emit.Arg(1))
	tail := entry.Block()
	g.props = loop.Def(emit.Apply2("props", propsAt, emit.Arg(0), idx))
	g.batch = idx
	loop.Store(varSlot{k.ctx, varBatchID}, idx)
	g.outer, g.inner, g.tail, g.batched = outer, loop, tail, true

	g.emitContext()
	g.emitFramebuffer()
	g.emitState()
	start := g.emitProfileStart(outer, &k.stats)

	if p, ok := g.staticProgram(); ok {
		outer.Call("useProgram", k.useProgram, g.constant(p))
		if err := g.emitBody(p); err != nil {
			return err
		}
	} else {
		pv := g.programExpr(loop)
		loop.Call("switchProgram", k.switchProgram, pv)
		loop.Try("drawBody", k.callDrawBody, pv, g.props, g.this, g.batch)
	}
	g.emitProfileEnd(tail, start, &k.stats)
	return nil
}

func (k *Command) buildScope(env *emit.Env) {
	ctx := k.ctx
	sc := env.Proc("scope", 4)
	entry := sc.Entry
	g := k.newGen(env, emit.Arg(0), emit.Arg(2), emit.Arg(3))
	g.outer, g.inner, g.tail = entry, entry, entry

	// Every slot is saved before any value is produced: a value that fails
	// leaves nothing half staged.
	k.saveScopeSlots(sc)
	set := func(s emit.Slot, v emit.Expr) { entry.Store(s, v) }

	set(varSlot{ctx, varBatchID}, emit.Arg(3))
	for _, nd := range k.cmd.context {
		set(varSlot{ctx, nd.name}, nd.decl.emit(g, entry))
	}
	if fb := k.cmd.framebuffer; fb != nil {
		v := entry.Def(fb.emit(g, entry))
		if !fb.Static() {
			v = entry.Def(emit.Apply("checkFramebuffer", ctx.checkFramebuffer, v))
		}
		g.storeFramebuffer(entry, v, set)
	}
	for i := range glstate.NumFields {
		d := k.cmd.state[i]
		if d == nil {
			continue
		}
		v := g.stateValue(i, d, entry)
		if i == glstate.Viewport {
			v = entry.Def(v)
			g.viewportVars(v, set)
		}
		set(ctx.state.NextSlot(i), v)
	}
	if k.cmd.framebuffer != nil || k.cmd.overrides != 0 {
		entry.Store(dirtySlot{ctx}, emit.Lit(true))
		sc.Exit.Store(dirtySlot{ctx}, emit.Lit(true))
	}
	if k.cmd.program != nil {
		set(programSlot{ctx}, g.programExpr(entry))
	}
	for _, nd := range k.cmd.uniforms {
		set(ctx.uniformSlot(nd.name), nd.decl.emit(g, entry))
	}
	for _, nd := range k.cmd.attributes {
		set(ctx.attributeSlot(nd.name), nd.decl.emit(g, entry))
	}

	start := g.emitProfileStart(entry, &k.stats)
	entry.Try("body", func(a []any) error {
		body, _ := a[0].(ScopeBody)
		if body == nil {
			return nil
		}
		return body(ctx.vars, asProps(a[1]), a[2].(int))
	}, emit.Arg(1), emit.Arg(0), emit.Arg(3))
	g.emitProfileEnd(entry, start, &k.stats)
}

// saveScopeSlots saves every slot the scope procedure writes.
func (k *Command) saveScopeSlots(sc *emit.Scope) {
	ctx := k.ctx
	sc.Save(varSlot{ctx, varBatchID})
	for _, nd := range k.cmd.context {
		sc.Save(varSlot{ctx, nd.name})
	}
	if k.cmd.framebuffer != nil {
		sc.Save(framebufferSlot{ctx})
		sc.Save(varSlot{ctx, varFramebufferWidth})
		sc.Save(varSlot{ctx, varFramebufferHeight})
	}
	for i := range glstate.NumFields {
		if k.cmd.state[i] == nil {
			continue
		}
		if i == glstate.Viewport {
			sc.Save(varSlot{ctx, varViewportWidth})
			sc.Save(varSlot{ctx, varViewportHeight})
		}
		sc.Save(ctx.state.NextSlot(i))
	}
	if k.cmd.program != nil {
		sc.Save(programSlot{ctx})
	}
	for _, nd := range k.cmd.uniforms {
		sc.Save(ctx.uniformSlot(nd.name))
	}
	for _, nd := range k.cmd.attributes {
		sc.Save(ctx.attributeSlot(nd.name))
	}
}

// compileDrawBody specializes the inputs and draw call for p. The body
// takes (props, this, batchId).
func (k *Command) compileDrawBody(p device.Program) *emit.Procedure {
	env := emit.New()
	entry := env.Proc("drawBody", 3).Entry
	g := k.newGen(env, emit.Arg(0), emit.Arg(1), emit.Arg(2))
	g.outer, g.inner, g.tail = entry, entry, entry
	if err := g.emitBody(p); err != nil {
		fail(err)
	}
	k.ctx.log.Debug("glcmd: draw body compiled", "program", p.ID(), "site", k.cmd.site)
	return env.Compile().Proc("drawBody")
}

// compileBatchBody specializes a batch loop for p. The body takes
// (propsList, n, this); the caller has already applied the batch-invariant
// context, framebuffer and state.
func (k *Command) compileBatchBody(p device.Program) *emit.Procedure {
	env := emit.New()
	entry := env.Proc("batchBody", 3).Entry
	g := k.newGen(env, emit.Lit(nil), emit.Arg(2), emit.Lit(0))

	outer := entry.Block()
	loop, idx := entry.Loop(emit.Arg(1))
	tail := entry.Block()
	g.props = loop.Def(emit.Apply2("props", propsAt, emit.Arg(0), idx))
	g.batch = idx
	loop.Store(varSlot{k.ctx, varBatchID}, idx)

	g.outer, g.inner, g.tail, g.batched = nil, loop, tail, true
	g.emitContext()
	g.emitFramebuffer()
	g.emitState()

	g.outer = outer
	if err := g.emitBody(p); err != nil {
		fail(err)
	}
	k.ctx.log.Debug("glcmd: batch body compiled", "program", p.ID(), "site", k.cmd.site)
	return env.Compile().Proc("batchBody")
}

func (k *Command) useProgram(a []any) {
	k.ctx.useProgram(a[0].(device.Program))
}

func (k *Command) switchProgram(a []any) {
	k.ctx.switchProgram(a[0].(device.Program))
}

func (k *Command) callDrawBody(a []any) error {
	body := k.drawCache.getOrCreate(a[0].(device.Program))
	return body.Call(a[1], a[2], a[3])
}

func (k *Command) callBatchBody(a []any) error {
	body := k.batchCache.getOrCreate(a[0].(device.Program))
	return body.Call(a[1], a[2], a[3])
}

func propsAt(list, i any) any {
	l, _ := list.([]Props)
	n := i.(int)
	if n < len(l) {
		return l[n]
	}
	return Props(nil)
}

// Draw runs the command once.
func (k *Command) Draw(props Props) (err error) {
	if k.destroyed {
		return ErrDestroyed
	}
	if k.draw == nil {
		return ErrNotDrawable
	}
	defer recoverInvocation(&err)
	k.stats.Invocations++
	return k.draw.Call(props, k.this)
}

// Batch runs the command once per element of list. Work that does not
// depend on the element is done once for the whole batch.
func (k *Command) Batch(list []Props) (err error) {
	if k.destroyed {
		return ErrDestroyed
	}
	if k.batch == nil {
		return ErrNotDrawable
	}
	if len(list) == 0 {
		return nil
	}
	defer recoverInvocation(&err)
	k.stats.Invocations++
	return k.batch.Call(list, len(list), k.this)
}

// BatchN runs the command n times without props. The batchId context
// variable counts the runs.
func (k *Command) BatchN(n int) (err error) {
	if k.destroyed {
		return ErrDestroyed
	}
	if k.batch == nil {
		return ErrNotDrawable
	}
	if n <= 0 {
		return nil
	}
	defer recoverInvocation(&err)
	k.stats.Invocations++
	return k.batch.Call([]Props(nil), n, k.this)
}

// Scope applies the command's options as defaults for everything body
// runs, then restores the previous values. It issues no draw call.
func (k *Command) Scope(props Props, body ScopeBody) error {
	return k.scopeAt(props, body, 0)
}

func (k *Command) scopeAt(props Props, body ScopeBody, batchID int) (err error) {
	if k.destroyed {
		return ErrDestroyed
	}
	defer recoverInvocation(&err)
	k.stats.Invocations++
	return k.scope.Call(props, body, k.this, batchID)
}

// Call dispatches on the shape of its arguments:
//
//	Call(), Call(props)          Draw
//	Call(n), Call([]Props)       BatchN, Batch
//	Call(body)                   Scope with no props
//	Call(props, body)            Scope
//	Call(n, body)                Scope n times, batchId 0..n-1
//	Call([]Props, body)          Scope once per element
//
// props may be Props, map[string]any or nil.
func (k *Command) Call(args ...any) error {
	switch len(args) {
	case 0:
		return k.Draw(nil)
	case 1:
		if body, ok := scopeBody(args[0]); ok {
			return k.Scope(nil, body)
		}
		switch x := args[0].(type) {
		case int:
			return k.BatchN(x)
		case []Props:
			return k.Batch(x)
		case []map[string]any:
			return k.Batch(propsList(x))
		}
		if props, ok := toProps(args[0]); ok {
			return k.Draw(props)
		}
	case 2:
		body, ok := scopeBody(args[1])
		if !ok {
			break
		}
		switch x := args[0].(type) {
		case int:
			for i := range x {
				if err := k.scopeAt(nil, body, i); err != nil {
					return err
				}
			}
			return nil
		case []Props:
			return k.scopeEach(x, body)
		case []map[string]any:
			return k.scopeEach(propsList(x), body)
		}
		if props, ok := toProps(args[0]); ok {
			return k.Scope(props, body)
		}
	}
	return fmt.Errorf("%w: %s", ErrBadArguments, argShapes(args))
}

func (k *Command) scopeEach(list []Props, body ScopeBody) error {
	for i, p := range list {
		if err := k.scopeAt(p, body, i); err != nil {
			return err
		}
	}
	return nil
}

func scopeBody(v any) (ScopeBody, bool) {
	switch f := v.(type) {
	case ScopeBody:
		return f, f != nil
	case func(Vars, Props, int) error:
		return f, f != nil
	case func() error:
		return func(Vars, Props, int) error { return f() }, f != nil
	}
	return nil, false
}

func toProps(v any) (Props, bool) {
	switch x := v.(type) {
	case nil:
		return nil, true
	case Props:
		return x, true
	case map[string]any:
		return Props(x), true
	}
	return nil, false
}

func propsList(l []map[string]any) []Props {
	out := make([]Props, len(l))
	for i, m := range l {
		out[i] = m
	}
	return out
}

func argShapes(args []any) string {
	s := "("
	for i, a := range args {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%T", a)
	}
	return s + ")"
}

// Bind returns a command sharing k's compiled procedures whose FromThis
// values read from this.
func (k *Command) Bind(this any) *Command {
	b := *k
	b.this = this
	return &b
}

// Listing returns the emitted procedures of the command.
func (k *Command) Listing() emit.Listing { return k.unit.Listing() }

// Stats returns invocation counters.
func (k *Command) Stats() CommandStats {
	s := k.stats
	dh, dm := k.drawCache.Stats()
	bh, bm := k.batchCache.Stats()
	s.CacheHits = dh + bh
	s.CacheMisses = dm + bm
	s.CachedBodies = k.drawCache.Len() + k.batchCache.Len()
	return s
}

// Destroy releases the procedures the command specialized for dynamic
// programs and detaches it from its context. It affects every binding
// made with Bind; later invocations return ErrDestroyed.
func (k *Command) Destroy() {
	if k.destroyed {
		return
	}
	k.destroyed = true
	k.drawCache.reset()
	k.batchCache.reset()
	k.ctx.unregisterCache(k.drawCache)
	k.ctx.unregisterCache(k.batchCache)
	k.ctx.stats.commands--
}
