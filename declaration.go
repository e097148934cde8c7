// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glcmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gogpu/glcmd/internal/emit"
)

// Declaration describes how to produce one option value and what the
// value depends on. A declaration with no dependency flags is static and
// carries its value.
type Declaration struct {
	ThisDep    bool
	ContextDep bool
	PropDep    bool

	// batchDep marks values that read the batch index, which changes on
	// every batch iteration even without props.
	batchDep bool

	value   any
	produce func(g *gen, b *emit.Block) emit.Expr
}

// Static reports whether the value is known at compile time.
func (d *Declaration) Static() bool {
	return !d.ThisDep && !d.ContextDep && !d.PropDep
}

// Value returns the compile-time value of a static declaration.
func (d *Declaration) Value() any { return d.value }

func (d *Declaration) emit(g *gen, b *emit.Block) emit.Expr {
	return d.produce(g, b)
}

func (d *Declaration) flags() string {
	var parts []string
	if d.ThisDep {
		parts = append(parts, "this")
	}
	if d.ContextDep {
		parts = append(parts, "context")
	}
	if d.PropDep {
		parts = append(parts, "props")
	}
	if len(parts) == 0 {
		return "static"
	}
	return strings.Join(parts, "|")
}

func staticDecl(v any) *Declaration {
	return &Declaration{
		value:   v,
		produce: func(g *gen, _ *emit.Block) emit.Expr { return g.constant(v) },
	}
}

// derive returns a declaration with the dependencies of d whose value is
// fn applied to d's value. Static inputs are folded at compile time.
func derive(d *Declaration, name string, fn func(any) any) *Declaration {
	if d.Static() {
		return staticDecl(fn(d.value))
	}
	return &Declaration{
		ThisDep:    d.ThisDep,
		ContextDep: d.ContextDep,
		PropDep:    d.PropDep,
		batchDep:   d.batchDep,
		produce: func(g *gen, b *emit.Block) emit.Expr {
			return emit.Apply(name, fn, d.emit(g, b))
		},
	}
}

// classify turns a raw option value into a Declaration.
func classify(v any) (*Declaration, error) {
	switch x := v.(type) {
	case constantSource:
		return staticDecl(x.v), nil
	case propSource:
		return propDecl(x), nil
	case contextSource:
		return contextDecl(x), nil
	case thisSource:
		return thisDecl(x), nil
	case funcSource:
		return funcDecl(x)
	case arraySource:
		return listDecl(x.elems)
	case []any:
		if containsDynamic(x) {
			return listDecl(x)
		}
	case map[string]any:
		if containsDynamic(x) {
			return recordDecl(x)
		}
	}
	return staticDecl(v), nil
}

func containsDynamic(v any) bool {
	switch x := v.(type) {
	case Dynamic:
		return true
	case []any:
		for _, e := range x {
			if containsDynamic(e) {
				return true
			}
		}
	case map[string]any:
		for _, e := range x {
			if containsDynamic(e) {
				return true
			}
		}
	}
	return false
}

func propDecl(s propSource) *Declaration {
	return &Declaration{
		PropDep: true,
		produce: func(g *gen, _ *emit.Block) emit.Expr {
			assert := g.ctx.opts.assertions
			return emit.Field(g.props, s.key, func(p any) any {
				v, ok := lookupPath(p, s.path)
				if !ok && assert {
					panic(&RuntimeAssertionError{Path: "props." + s.key, Msg: "missing"})
				}
				return v
			})
		},
	}
}

func contextDecl(s contextSource) *Declaration {
	return &Declaration{
		ContextDep: true,
		batchDep:   s.path[0] == varBatchID,
		produce: func(g *gen, _ *emit.Block) emit.Expr {
			vars := g.ctx.vars
			assert := g.ctx.opts.assertions
			return emit.Func("ctx."+s.key, func(*emit.Frame) any {
				v, ok := lookupPath(vars, s.path)
				if !ok && assert {
					panic(&RuntimeAssertionError{Path: "context." + s.key, Msg: "missing"})
				}
				return v
			})
		},
	}
}

func thisDecl(s thisSource) *Declaration {
	return &Declaration{
		ThisDep: true,
		produce: func(g *gen, _ *emit.Block) emit.Expr {
			assert := g.ctx.opts.assertions
			return emit.Field(g.this, s.key, func(this any) any {
				v, ok := lookupPath(this, s.path)
				if !ok && assert {
					panic(&RuntimeAssertionError{Path: "this." + s.key, Msg: "missing"})
				}
				return v
			})
		},
	}
}

func funcDecl(s funcSource) (*Declaration, error) {
	if s.arity < 0 {
		return nil, fmt.Errorf("unsupported function type %T", s.fn)
	}
	d := &Declaration{
		ThisDep:    true,
		ContextDep: s.arity >= 1,
		PropDep:    s.arity >= 2,
		batchDep:   s.arity >= 3,
	}
	d.produce = func(g *gen, _ *emit.Block) emit.Expr {
		name := g.env.Link(s.fn).String()
		switch fn := s.fn.(type) {
		case func() any:
			return emit.Func(name+"()", func(*emit.Frame) any { return fn() })
		case func(Vars) any:
			return emit.Apply(name, func(v any) any { return fn(v.(Vars)) }, g.vars)
		case func(Vars, Props) any:
			return emit.Apply2(name, func(v, p any) any {
				return fn(v.(Vars), asProps(p))
			}, g.vars, g.props)
		default:
			f3 := s.fn.(func(Vars, Props, int) any)
			return emit.ApplyN(name, func(a []any) any {
				return f3(a[0].(Vars), asProps(a[1]), a[2].(int))
			}, g.vars, g.props, g.batch)
		}
	}
	return d, nil
}

func asProps(v any) Props {
	switch p := v.(type) {
	case Props:
		return p
	case map[string]any:
		return Props(p)
	}
	return nil
}

func listDecl(elems []any) (*Declaration, error) {
	decls := make([]*Declaration, len(elems))
	d := &Declaration{}
	for i, e := range elems {
		ed, err := classify(e)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		decls[i] = ed
		d.union(ed)
	}
	if d.Static() {
		vals := make([]any, len(decls))
		for i, ed := range decls {
			vals[i] = ed.value
		}
		return staticDecl(vals), nil
	}
	d.produce = func(g *gen, b *emit.Block) emit.Expr {
		exprs := make([]emit.Expr, len(decls))
		for i, ed := range decls {
			exprs[i] = ed.emit(g, b)
		}
		return emit.ApplyN("array", func(vals []any) any { return vals }, exprs...)
	}
	return d, nil
}

func recordDecl(rec map[string]any) (*Declaration, error) {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	decls := make([]*Declaration, len(keys))
	d := &Declaration{}
	for i, k := range keys {
		ed, err := classify(rec[k])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		decls[i] = ed
		d.union(ed)
	}
	if d.Static() {
		m := make(map[string]any, len(keys))
		for i, k := range keys {
			m[k] = decls[i].value
		}
		return staticDecl(m), nil
	}
	d.produce = func(g *gen, b *emit.Block) emit.Expr {
		exprs := make([]emit.Expr, len(decls))
		for i, ed := range decls {
			exprs[i] = ed.emit(g, b)
		}
		return emit.ApplyN("record{"+strings.Join(keys, ",")+"}", func(vals []any) any {
			m := make(map[string]any, len(keys))
			for i, k := range keys {
				m[k] = vals[i]
			}
			return m
		}, exprs...)
	}
	return d, nil
}

func (d *Declaration) union(o *Declaration) {
	d.ThisDep = d.ThisDep || o.ThisDep
	d.ContextDep = d.ContextDep || o.ContextDep
	d.PropDep = d.PropDep || o.PropDep
	d.batchDep = d.batchDep || o.batchDep
}
