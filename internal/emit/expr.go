// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package emit

import (
	"fmt"
	"strconv"
	"strings"
)

// Frame is one activation of a procedure.
type Frame struct {
	Args   []any
	Locals []any

	// Err aborts the remaining statements of the activation when set.
	// Exit blocks still run.
	Err error

	// saved marks the scope saves that have run.
	saved []bool
}

// Expr is a value-producing fragment: a printable form and an evaluator.
type Expr struct {
	text string
	eval func(*Frame) any
}

// String returns the printed form of the expression.
func (e Expr) String() string { return e.text }

// Eval evaluates the expression in frame f.
func (e Expr) Eval(f *Frame) any { return e.eval(f) }

// Valid reports whether e was built by this package.
func (e Expr) Valid() bool { return e.eval != nil }

// Func wraps an arbitrary evaluator under the given text.
func Func(text string, fn func(*Frame) any) Expr {
	return Expr{text: text, eval: fn}
}

// Lit returns a literal for a primitive value (bool, number, string, nil).
// Non-primitive values must be linked with Env.Link instead.
func Lit(v any) Expr {
	return Expr{text: formatLiteral(v), eval: func(*Frame) any { return v }}
}

// Arg refers to the i-th positional parameter of the enclosing procedure.
func Arg(i int) Expr {
	return Expr{
		text: "a" + strconv.Itoa(i),
		eval: func(f *Frame) any { return f.Args[i] },
	}
}

// Apply calls fn on the value of x.
func Apply(name string, fn func(any) any, x Expr) Expr {
	xe := x.eval
	return Expr{
		text: name + "(" + x.text + ")",
		eval: func(f *Frame) any { return fn(xe(f)) },
	}
}

// Apply2 calls fn on the values of x and y.
func Apply2(name string, fn func(a, b any) any, x, y Expr) Expr {
	xe, ye := x.eval, y.eval
	return Expr{
		text: name + "(" + x.text + ", " + y.text + ")",
		eval: func(f *Frame) any { return fn(xe(f), ye(f)) },
	}
}

// ApplyN calls fn on the values of xs, in order.
func ApplyN(name string, fn func([]any) any, xs ...Expr) Expr {
	evals := make([]func(*Frame) any, len(xs))
	for i, x := range xs {
		evals[i] = x.eval
	}
	return Expr{
		text: name + "(" + joinExprs(xs) + ")",
		eval: func(f *Frame) any {
			vals := make([]any, len(evals))
			for i, ev := range evals {
				vals[i] = ev(f)
			}
			return fn(vals)
		},
	}
}

// Field selects a named field of x through get. The text is "x.name".
func Field(x Expr, name string, get func(any) any) Expr {
	xe := x.eval
	return Expr{
		text: x.text + "." + name,
		eval: func(f *Frame) any { return get(xe(f)) },
	}
}

// NotEqual compares two comparable values.
func NotEqual(x, y Expr) Expr {
	xe, ye := x.eval, y.eval
	return Expr{
		text: x.text + " != " + y.text,
		eval: func(f *Frame) any { return xe(f) != ye(f) },
	}
}

// Not negates a boolean expression.
func Not(x Expr) Expr {
	xe := x.eval
	return Expr{
		text: "!" + x.text,
		eval: func(f *Frame) any { return !xe(f).(bool) },
	}
}

// Load reads a slot.
func Load(s Slot) Expr {
	return Expr{
		text: s.String(),
		eval: func(*Frame) any { return s.Load() },
	}
}

// Slot is a mutable location outside the frame, such as a field of the
// render context. Scopes save and restore slots.
type Slot interface {
	Load() any
	Store(v any)
	String() string
}

func joinExprs(xs []Expr) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = x.text
	}
	return strings.Join(parts, ", ")
}

func formatLiteral(v any) string {
	switch x := v.(type) {
	case nil:
		return "nil"
	case bool:
		return strconv.FormatBool(x)
	case string:
		return strconv.Quote(x)
	case int:
		return strconv.Itoa(x)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
