// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package emit

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

// cell is a Slot backed by a plain variable.
type cell struct {
	name string
	v    any
}

func (c *cell) Load() any      { return c.v }
func (c *cell) Store(v any)    { c.v = v }
func (c *cell) String() string { return c.name }

type handle struct{ id uint64 }

func (h *handle) ID() uint64 { return h.id }

func TestLinkDedup(t *testing.T) {
	e := New()
	h := &handle{id: 7}
	a := e.Link(h)
	b := e.Link(h)
	c := e.Link(&handle{id: 7})

	if a.String() != b.String() {
		t.Errorf("same object linked as %s and %s", a, b)
	}
	if a.String() == c.String() {
		t.Errorf("distinct objects share link %s", a)
	}
	if e.Links() != 2 {
		t.Errorf("Links() = %d, want 2", e.Links())
	}
}

func TestLinkFunctionsNeverDedup(t *testing.T) {
	e := New()
	mk := func(n int) func() int { return func() int { return n } }
	e.Link(mk(1))
	e.Link(mk(2))
	if e.Links() != 2 {
		t.Errorf("Links() = %d, want 2 (closures must not be merged)", e.Links())
	}
}

func TestProcArgsAndLocals(t *testing.T) {
	e := New()
	s := e.Proc("sum", 2)
	add := func(a, b any) any { return a.(int) + b.(int) }
	t0 := s.Entry.Def(Apply2("add", add, Arg(0), Arg(1)))

	var got int
	s.Entry.Call("out", func(args []any) { got = args[0].(int) }, t0)

	u := e.Compile()
	if err := u.Proc("sum").Call(3, 4); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if got != 7 {
		t.Errorf("sum = %d, want 7", got)
	}
}

func TestCallArity(t *testing.T) {
	e := New()
	e.Proc("p", 1)
	u := e.Compile()
	if err := u.Proc("p").Call(); err == nil {
		t.Error("expected arity error")
	}
}

func TestCond(t *testing.T) {
	e := New()
	s := e.Proc("pick", 1)
	var got string
	c := s.Entry.If(Arg(0))
	c.Then().Do("then", func(*Frame) { got = "then" })
	c.Else().Do("else", func(*Frame) { got = "else" })
	u := e.Compile()

	_ = u.Proc("pick").Call(true)
	if got != "then" {
		t.Errorf("true branch ran %q", got)
	}
	_ = u.Proc("pick").Call(false)
	if got != "else" {
		t.Errorf("false branch ran %q", got)
	}
}

func TestLoop(t *testing.T) {
	e := New()
	s := e.Proc("loop", 1)
	var seen []int
	body, i := s.Entry.Loop(Arg(0))
	body.Call("visit", func(args []any) { seen = append(seen, args[0].(int)) }, i)
	u := e.Compile()

	_ = u.Proc("loop").Call(4)
	if len(seen) != 4 || seen[0] != 0 || seen[3] != 3 {
		t.Errorf("loop visited %v, want [0 1 2 3]", seen)
	}
}

func TestScopeRestoresLIFO(t *testing.T) {
	x := &cell{name: "x", v: 1}
	y := &cell{name: "y", v: "a"}

	e := New()
	s := e.Proc("scoped", 0)
	s.Set(x, Lit(2))
	s.Set(y, Lit("b"))
	s.Set(x, Lit(3))

	var during []any
	s.Entry.Do("observe", func(*Frame) { during = []any{x.v, y.v} })
	u := e.Compile()

	if err := u.Proc("scoped").Call(); err != nil {
		t.Fatal(err)
	}
	if during[0] != 3 || during[1] != "b" {
		t.Errorf("inside scope x, y = %v, want 3 b", during)
	}
	if x.v != 1 || y.v != "a" {
		t.Errorf("after scope x, y = %v %v, want 1 a", x.v, y.v)
	}
}

func TestScopeRestoresOnError(t *testing.T) {
	x := &cell{name: "x", v: 1}
	boom := errors.New("boom")

	e := New()
	s := e.Proc("fail", 0)
	s.Set(x, Lit(2))
	s.Entry.Try("body", func([]any) error { return boom })
	ran := false
	s.Entry.Do("after", func(*Frame) { ran = true })
	u := e.Compile()

	err := u.Proc("fail").Call()
	if !errors.Is(err, boom) {
		t.Errorf("Call error = %v, want boom", err)
	}
	if ran {
		t.Error("statement after failed Try ran")
	}
	if x.v != 1 {
		t.Errorf("x = %v after error, want 1", x.v)
	}
}

func TestScopeRestoresOnlySavedSlots(t *testing.T) {
	x := &cell{name: "x", v: 1}
	y := &cell{name: "y", v: "a"}
	boom := errors.New("boom")

	e := New()
	s := e.Proc("partial", 1)
	s.Set(x, Lit(2))
	s.Entry.Try("check", func(a []any) error {
		if a[0] == false {
			return boom
		}
		return nil
	}, Arg(0))
	s.Set(y, Lit("b"))
	u := e.Compile()

	if err := u.Proc("partial").Call(false); !errors.Is(err, boom) {
		t.Fatalf("Call error = %v, want boom", err)
	}
	if x.v != 1 || y.v != "a" {
		t.Errorf("after failed entry x, y = %v %v, want 1 a", x.v, y.v)
	}
	if err := u.Proc("partial").Call(true); err != nil {
		t.Fatal(err)
	}
	if x.v != 1 || y.v != "a" {
		t.Errorf("after scope x, y = %v %v, want 1 a", x.v, y.v)
	}
}

func TestScopeInLoopResetsSaves(t *testing.T) {
	x := &cell{name: "x", v: 0}

	e := New()
	s := e.Proc("loop", 1)
	body, i := s.Entry.Loop(Arg(0))
	inner := body.Scope()
	inner.Entry.Do("assert", func(f *Frame) {
		if f.Locals[0] == 1 {
			panic("second iteration")
		}
	})
	inner.Set(x, i)
	var seen []any
	inner.Entry.Do("observe", func(*Frame) { seen = append(seen, x.v) })
	body.Store(x, Lit(5))
	u := e.Compile()

	x.v = 7
	func() {
		defer func() { _ = recover() }()
		_ = u.Proc("loop").Call(2)
	}()
	if len(seen) != 1 || seen[0] != 0 {
		t.Errorf("seen = %v, want [0]", seen)
	}
	// The second entry failed before its save: x keeps the value written
	// after the first iteration.
	if x.v != 5 {
		t.Errorf("x = %v, want 5", x.v)
	}
}

func TestScopeRestoresOnPanic(t *testing.T) {
	x := &cell{name: "x", v: 1}

	e := New()
	s := e.Proc("panics", 0)
	s.Set(x, Lit(2))
	s.Entry.Do("panic", func(*Frame) { panic("assert") })
	u := e.Compile()

	func() {
		defer func() { _ = recover() }()
		_ = u.Proc("panics").Call()
	}()
	if x.v != 1 {
		t.Errorf("x = %v after panic, want 1", x.v)
	}
}

func TestNestedScope(t *testing.T) {
	x := &cell{name: "x", v: 0}
	e := New()
	s := e.Proc("nest", 0)
	s.Set(x, Lit(1))
	inner := s.Entry.Scope()
	inner.Set(x, Lit(2))
	var inInner, afterInner any
	inner.Entry.Do("probe", func(*Frame) { inInner = x.v })
	s.Entry.Do("probe", func(*Frame) { afterInner = x.v })
	u := e.Compile()

	_ = u.Proc("nest").Call()
	if inInner != 2 || afterInner != 1 || x.v != 0 {
		t.Errorf("inner=%v after inner=%v final=%v, want 2 1 0", inInner, afterInner, x.v)
	}
}

func TestReentrantCall(t *testing.T) {
	e := New()
	s := e.Proc("rec", 1)
	var u *Unit
	depth := s.Entry.Def(Arg(0))
	var trace []int
	s.Entry.Call("recurse", func(args []any) {
		d := args[0].(int)
		if d > 0 {
			_ = u.Proc("rec").Call(d - 1)
		}
		trace = append(trace, d)
	}, depth)
	u = e.Compile()

	_ = u.Proc("rec").Call(2)
	if len(trace) != 3 || trace[0] != 0 || trace[2] != 2 {
		t.Errorf("trace = %v, want [0 1 2]", trace)
	}
}

func TestGlobalPreamble(t *testing.T) {
	e := New()
	runs := 0
	g := e.Global().Def(Func("init()", func(*Frame) any { runs++; return 41 }))
	s := e.Proc("use", 0)
	var got any
	s.Entry.Call("read", func(args []any) { got = args[0] }, g)
	u := e.Compile()

	_ = u.Proc("use").Call()
	_ = u.Proc("use").Call()
	if runs != 1 {
		t.Errorf("preamble ran %d times, want 1", runs)
	}
	if got != 41 {
		t.Errorf("global = %v, want 41", got)
	}
	if !strings.HasPrefix(g.String(), "g") {
		t.Errorf("global local named %q, want g prefix", g)
	}
}

func build(h *handle) Listing {
	x := &cell{name: "ctx.x"}
	e := New()
	s := e.Proc("draw", 1)
	s.Set(x, Field(Arg(0), "x", func(v any) any { return v }))
	c := s.Entry.If(NotEqual(e.Link(h), Lit(nil)))
	c.Then().Call("bind", func([]any) {}, e.Link(h))
	body, i := s.Entry.Loop(Lit(3))
	body.Call("draw", func([]any) {}, i, Lit(1.5), Lit("tri"))
	return e.Compile().Listing()
}

func TestListingDeterministic(t *testing.T) {
	h := &handle{id: 3}
	a, b := build(h), build(h)
	if a.String() != b.String() {
		t.Errorf("listings differ:\n%s\n---\n%s", a, b)
	}
	ab, err := a.MarshalCanonical()
	if err != nil {
		t.Fatal(err)
	}
	bb, err := b.MarshalCanonical()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(ab, bb) {
		t.Error("canonical encodings differ")
	}

	back, err := UnmarshalListing(ab)
	if err != nil {
		t.Fatal(err)
	}
	if back.String() != a.String() {
		t.Error("decoded listing does not print the same")
	}
}

func TestListingText(t *testing.T) {
	l := build(&handle{id: 9})
	text := l.String()
	for _, want := range []string{
		"l0 = *emit.handle#9",
		"proc draw/1",
		"ctx.x = a0.x",
		"if l0 != nil {",
		"for t1 in 0..<3 {",
		"draw(t1, 1.5, \"tri\")",
		"} exit {",
		"ctx.x = t0",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("listing missing %q:\n%s", want, text)
		}
	}
	if _, ok := l.Proc("draw"); !ok {
		t.Error("Listing.Proc(draw) not found")
	}
}
