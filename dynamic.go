// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glcmd

import (
	"fmt"
	"strings"
)

// Dynamic marks an option value resolved at invocation time.
// The set of implementations is closed; use the constructors below.
type Dynamic interface {
	String() string
	isDynamic()
}

// Props is the per-invocation argument record.
type Props map[string]any

// Vars is the render context seen by dynamic sources: the built-in
// variables (tick, time, viewportWidth, ...) and any values staged by the
// Context option of enclosing scopes.
type Vars map[string]any

type constantSource struct{ v any }

type propSource struct {
	key  string
	path []string
}

type contextSource struct {
	key  string
	path []string
}

type thisSource struct {
	key  string
	path []string
}

type funcSource struct {
	fn    any
	arity int
}

type arraySource struct {
	elems []any
}

func (constantSource) isDynamic() {}
func (propSource) isDynamic()     {}
func (contextSource) isDynamic()  {}
func (thisSource) isDynamic()     {}
func (funcSource) isDynamic()     {}
func (arraySource) isDynamic()    {}

func (s constantSource) String() string { return fmt.Sprintf("constant(%v)", s.v) }
func (s propSource) String() string     { return "prop(" + s.key + ")" }
func (s contextSource) String() string  { return "context(" + s.key + ")" }
func (s thisSource) String() string     { return "this(" + s.key + ")" }
func (s funcSource) String() string     { return fmt.Sprintf("func/%d", s.arity) }
func (s arraySource) String() string    { return fmt.Sprintf("array(%d)", len(s.elems)) }

// Constant wraps a literal. It classifies exactly like the bare value.
func Constant(v any) Dynamic { return constantSource{v: v} }

// FromProp reads key from the props passed to the invocation. Dotted keys
// walk nested records.
func FromProp(key string) Dynamic { return propSource{key: key, path: splitPath(key)} }

// FromContext reads key from the render context.
func FromContext(key string) Dynamic { return contextSource{key: key, path: splitPath(key)} }

// FromThis reads key from the receiver bound with Command.Bind.
func FromThis(key string) Dynamic { return thisSource{key: key, path: splitPath(key)} }

// FromFunc calls fn at invocation time. fn must have one of the signatures
//
//	func() any
//	func(Vars) any
//	func(Vars, Props) any
//	func(Vars, Props, int) any   // the int is the batch index
//
// The dependencies of fn are inferred from its parameter count: one
// parameter makes the value context-dependent, two or more also
// prop-dependent. A function that ignores its parameters is still treated
// as dependent on them.
func FromFunc(fn any) Dynamic {
	arity := -1
	switch fn.(type) {
	case func() any:
		arity = 0
	case func(Vars) any:
		arity = 1
	case func(Vars, Props) any:
		arity = 2
	case func(Vars, Props, int) any:
		arity = 3
	}
	return funcSource{fn: fn, arity: arity}
}

// FromArray aggregates elements, each a literal or a Dynamic, into a []any
// produced at invocation time.
func FromArray(elems ...any) Dynamic { return arraySource{elems: elems} }

func splitPath(key string) []string { return strings.Split(key, ".") }

// lookupPath walks path through props, vars, or nested records.
func lookupPath(root any, path []string) (any, bool) {
	v := root
	for _, k := range path {
		var m map[string]any
		switch x := v.(type) {
		case Props:
			m = x
		case Vars:
			m = x
		case map[string]any:
			m = x
		default:
			return nil, false
		}
		var ok bool
		if v, ok = m[k]; !ok {
			return nil, false
		}
	}
	return v, true
}
