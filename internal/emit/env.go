// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package emit

import (
	"fmt"
	"reflect"
	"strconv"
)

// Env collects links, the global preamble, and procedures for one
// compilation. An Env is not safe for concurrent use.
type Env struct {
	links  []link
	global *Proc
	procs  []*Proc
}

type link struct {
	value any
	desc  string
}

// New returns an empty environment.
func New() *Env {
	e := &Env{}
	e.global = &Proc{name: "global", frame: &Frame{}}
	e.global.scope = newScope(e.global)
	return e
}

// Link returns a stable reference to v. Linking a value with the same
// identity twice returns the same reference.
func (e *Env) Link(v any) Expr {
	for i := range e.links {
		if sameIdentity(e.links[i].value, v) {
			return linkRef(i, v)
		}
	}
	e.links = append(e.links, link{value: v, desc: describe(v)})
	return linkRef(len(e.links)-1, v)
}

// Links returns the number of linked values.
func (e *Env) Links() int { return len(e.links) }

func linkRef(i int, v any) Expr {
	return Expr{text: "l" + strconv.Itoa(i), eval: func(*Frame) any { return v }}
}

// Global returns the preamble block. It runs once, when the Env is
// compiled; locals defined in it are visible to every procedure.
func (e *Env) Global() *Block { return e.global.scope.Entry }

// Proc declares a procedure with arity positional parameters and returns
// its body scope. Exit statements run after the body, including on panic.
func (e *Env) Proc(name string, arity int) *Scope {
	p := &Proc{name: name, arity: arity}
	p.scope = newScope(p)
	e.procs = append(e.procs, p)
	return p.scope
}

// Compile runs the preamble and returns the procedures as callables.
func (e *Env) Compile() *Unit {
	g := e.global
	g.frame.Locals = make([]any, g.nlocal)
	g.frame.saved = make([]bool, g.nsave)
	g.scope.run(g.frame)

	u := &Unit{procs: make(map[string]*Procedure, len(e.procs))}
	for _, p := range e.procs {
		u.procs[p.name] = &Procedure{proc: p}
	}
	u.listing = e.listing()
	return u
}

// Proc is a procedure under construction.
type Proc struct {
	name   string
	arity  int
	nlocal int
	nsave  int
	scope  *Scope

	// frame is set for the global preamble only.
	frame *Frame
}

func (p *Proc) local() (int, Expr) {
	idx := p.nlocal
	p.nlocal++
	if p.frame != nil {
		gf := p.frame
		return idx, Expr{
			text: localName("g", idx),
			eval: func(*Frame) any { return gf.Locals[idx] },
		}
	}
	return idx, Expr{
		text: localName("t", idx),
		eval: func(f *Frame) any { return f.Locals[idx] },
	}
}

func (p *Proc) locals(f *Frame) []any {
	if p.frame != nil {
		return p.frame.Locals
	}
	return f.Locals
}

func (p *Proc) saved(f *Frame) []bool {
	if p.frame != nil {
		return p.frame.saved
	}
	return f.saved
}

// Unit is a compiled environment.
type Unit struct {
	procs   map[string]*Procedure
	listing Listing
}

// Proc returns the named procedure, or nil.
func (u *Unit) Proc(name string) *Procedure { return u.procs[name] }

// Listing returns the printed form of the unit.
func (u *Unit) Listing() Listing { return u.listing }

// Procedure is a callable compiled procedure. Calls may nest (a procedure
// may be re-entered from inside one of its own statements).
type Procedure struct {
	proc *Proc
	free []*Frame
}

// Name returns the procedure name.
func (p *Procedure) Name() string { return p.proc.name }

// Call runs the procedure with the given arguments. It returns the error
// recorded by a Try statement, if any.
func (p *Procedure) Call(args ...any) error {
	if len(args) != p.proc.arity {
		return fmt.Errorf("emit: %s called with %d arguments, want %d", p.proc.name, len(args), p.proc.arity)
	}
	f := p.acquire()
	defer p.release(f)
	copy(f.Args, args)
	p.proc.scope.run(f)
	return f.Err
}

func (p *Procedure) acquire() *Frame {
	if n := len(p.free); n > 0 {
		f := p.free[n-1]
		p.free = p.free[:n-1]
		return f
	}
	return &Frame{
		Args:   make([]any, p.proc.arity),
		Locals: make([]any, p.proc.nlocal),
		saved:  make([]bool, p.proc.nsave),
	}
}

func (p *Procedure) release(f *Frame) {
	clear(f.Args)
	clear(f.Locals)
	clear(f.saved)
	f.Err = nil
	p.free = append(p.free, f)
}

// sameIdentity reports whether a and b denote the same runtime object.
// Reference kinds compare by pointer, comparable values by ==. Functions
// never compare equal: distinct closures may share a code pointer.
func sameIdentity(a, b any) bool {
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if !ra.IsValid() || !rb.IsValid() {
		return !ra.IsValid() && !rb.IsValid()
	}
	if ra.Type() != rb.Type() {
		return false
	}
	switch ra.Kind() {
	case reflect.Func:
		return false
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.UnsafePointer:
		return ra.Pointer() == rb.Pointer()
	case reflect.Slice:
		return ra.Pointer() == rb.Pointer() && ra.Len() == rb.Len()
	}
	if ra.Comparable() {
		return a == b
	}
	return false
}

type identified interface {
	ID() uint64
}

func describe(v any) string {
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return fmt.Sprintf("%T(nil)", v)
	}
	if h, ok := v.(identified); ok {
		return fmt.Sprintf("%T#%d", v, h.ID())
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Bool, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.String, reflect.Array, reflect.Struct:
		return fmt.Sprintf("%T(%v)", v, v)
	}
	return fmt.Sprintf("%T", v)
}
