// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package emit

import "strconv"

type stmt interface {
	run(f *Frame)
	list(w *writer)
}

// Block is an ordered list of statements belonging to one procedure.
type Block struct {
	proc  *Proc
	stmts []stmt
}

func (b *Block) add(s stmt) { b.stmts = append(b.stmts, s) }

// Len returns the number of statements in the block.
func (b *Block) Len() int { return len(b.stmts) }

func (b *Block) run(f *Frame) {
	for _, s := range b.stmts {
		if f.Err != nil {
			return
		}
		s.run(f)
	}
}

// runAll runs every statement regardless of f.Err. Used for exit blocks.
func (b *Block) runAll(f *Frame) {
	for _, s := range b.stmts {
		s.run(f)
	}
}

func (b *Block) list(w *writer) {
	for _, s := range b.stmts {
		s.list(w)
	}
}

// Def allocates a local, initializes it with init, and returns an
// expression reading it.
func (b *Block) Def(init Expr) Expr {
	idx, ref := b.proc.local()
	ie := init.eval
	b.add(&simpleStmt{
		text: ref.text + " = " + init.text,
		fn:   func(f *Frame) { b.proc.locals(f)[idx] = ie(f) },
	})
	return ref
}

// Do appends a raw statement.
func (b *Block) Do(text string, fn func(*Frame)) {
	b.add(&simpleStmt{text: text, fn: fn})
}

// Call appends a call of fn with the evaluated args.
func (b *Block) Call(name string, fn func(args []any), args ...Expr) {
	evals := evaluators(args)
	b.add(&simpleStmt{
		text: name + "(" + joinExprs(args) + ")",
		fn: func(f *Frame) {
			fn(evalAll(evals, f))
		},
	})
}

// Try appends a call of fn whose error aborts the procedure.
func (b *Block) Try(name string, fn func(args []any) error, args ...Expr) {
	evals := evaluators(args)
	b.add(&simpleStmt{
		text: "try " + name + "(" + joinExprs(args) + ")",
		fn: func(f *Frame) {
			if err := fn(evalAll(evals, f)); err != nil {
				f.Err = err
			}
		},
	})
}

// Store writes v into slot s.
func (b *Block) Store(s Slot, v Expr) {
	ve := v.eval
	b.add(&simpleStmt{
		text: s.String() + " = " + v.text,
		fn:   func(f *Frame) { s.Store(ve(f)) },
	})
}

// Block appends a nested block at the current position and returns it.
func (b *Block) Block() *Block {
	nb := &Block{proc: b.proc}
	b.add(&blockStmt{body: nb})
	return nb
}

// If appends a conditional on the boolean expression cond.
func (b *Block) If(cond Expr) *Cond {
	c := &Cond{
		cond: cond,
		then: &Block{proc: b.proc},
		els:  &Block{proc: b.proc},
	}
	b.add(c)
	return c
}

// Loop appends a counted loop running body n times, where n evaluates to
// an int. It returns the body and an expression for the iteration index.
func (b *Block) Loop(n Expr) (*Block, Expr) {
	idx, ref := b.proc.local()
	l := &loopStmt{
		n:    n,
		idx:  idx,
		ref:  ref,
		body: &Block{proc: b.proc},
	}
	b.add(l)
	return l.body, ref
}

// Scope appends a nested scope whose exit runs when its entry finishes,
// including on panic.
func (b *Block) Scope() *Scope {
	s := newScope(b.proc)
	b.add(&scopeStmt{scope: s})
	return s
}

// Cond is an if/else construct.
type Cond struct {
	cond Expr
	then *Block
	els  *Block
}

// Then returns the block run when the condition holds.
func (c *Cond) Then() *Block { return c.then }

// Else returns the block run otherwise.
func (c *Cond) Else() *Block { return c.els }

func (c *Cond) run(f *Frame) {
	if c.cond.eval(f).(bool) {
		c.then.run(f)
	} else {
		c.els.run(f)
	}
}

func (c *Cond) list(w *writer) {
	w.line("if " + c.cond.text + " {")
	w.indent(c.then.list)
	if len(c.els.stmts) > 0 {
		w.line("} else {")
		w.indent(c.els.list)
	}
	w.line("}")
}

// Scope is an entry/exit pair. Save and Set record the prior value of a
// slot in entry and restore it in exit, last saved first. Only slots whose
// save ran are restored, so an entry that aborts partway leaves the slots
// it never reached untouched.
type Scope struct {
	Entry *Block
	Exit  *Block
	undo  []stmt
	saves []int
}

func newScope(p *Proc) *Scope {
	return &Scope{Entry: &Block{proc: p}, Exit: &Block{proc: p}}
}

// Save copies the current value of s into a local and schedules its
// restoration on exit.
func (s *Scope) Save(slot Slot) Expr {
	p := s.Entry.proc
	idx, prev := p.local()
	sid := p.nsave
	p.nsave++
	s.Entry.add(&simpleStmt{
		text: prev.text + " = " + slot.String(),
		fn: func(f *Frame) {
			p.locals(f)[idx] = slot.Load()
			p.saved(f)[sid] = true
		},
	})
	pe := prev.eval
	s.undo = append(s.undo, &simpleStmt{
		text: slot.String() + " = " + prev.text,
		fn:   func(f *Frame) { slot.Store(pe(f)) },
	})
	s.saves = append(s.saves, sid)
	return prev
}

// Set saves slot and then writes v into it.
func (s *Scope) Set(slot Slot, v Expr) {
	s.Save(slot)
	s.Entry.Store(slot, v)
}

func (s *Scope) run(f *Frame) {
	saved := s.Entry.proc.saved(f)
	for _, sid := range s.saves {
		saved[sid] = false
	}
	defer s.unwind(f)
	s.Entry.run(f)
}

func (s *Scope) unwind(f *Frame) {
	saved := s.Entry.proc.saved(f)
	for i := len(s.undo) - 1; i >= 0; i-- {
		if saved[s.saves[i]] {
			s.undo[i].run(f)
		}
	}
	s.Exit.runAll(f)
}

func (s *Scope) listExit(w *writer) {
	for i := len(s.undo) - 1; i >= 0; i-- {
		s.undo[i].list(w)
	}
	s.Exit.list(w)
}

type simpleStmt struct {
	text string
	fn   func(*Frame)
}

func (s *simpleStmt) run(f *Frame)   { s.fn(f) }
func (s *simpleStmt) list(w *writer) { w.line(s.text) }

type blockStmt struct {
	body *Block
}

func (s *blockStmt) run(f *Frame)   { s.body.run(f) }
func (s *blockStmt) list(w *writer) { s.body.list(w) }

type loopStmt struct {
	n    Expr
	idx  int
	ref  Expr
	body *Block
}

func (l *loopStmt) run(f *Frame) {
	n := l.n.eval(f).(int)
	locals := l.body.proc.locals(f)
	for i := 0; i < n && f.Err == nil; i++ {
		locals[l.idx] = i
		l.body.run(f)
	}
}

func (l *loopStmt) list(w *writer) {
	w.line("for " + l.ref.text + " in 0..<" + l.n.text + " {")
	w.indent(l.body.list)
	w.line("}")
}

type scopeStmt struct {
	scope *Scope
}

func (s *scopeStmt) run(f *Frame) { s.scope.run(f) }

func (s *scopeStmt) list(w *writer) {
	w.line("scope {")
	w.indent(s.scope.Entry.list)
	w.line("} exit {")
	w.indent(s.scope.listExit)
	w.line("}")
}

func evaluators(args []Expr) []func(*Frame) any {
	evals := make([]func(*Frame) any, len(args))
	for i, a := range args {
		evals[i] = a.eval
	}
	return evals
}

func evalAll(evals []func(*Frame) any, f *Frame) []any {
	if len(evals) == 0 {
		return nil
	}
	vals := make([]any, len(evals))
	for i, ev := range evals {
		vals[i] = ev(f)
	}
	return vals
}

// writer accumulates indented listing lines.
type writer struct {
	lines []string
	depth int
}

func (w *writer) line(s string) {
	pad := ""
	for range w.depth {
		pad += "  "
	}
	w.lines = append(w.lines, pad+s)
}

func (w *writer) indent(fn func(*writer)) {
	w.depth++
	fn(w)
	w.depth--
}

func localName(prefix string, i int) string { return prefix + strconv.Itoa(i) }
