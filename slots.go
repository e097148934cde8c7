// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glcmd

import "github.com/gogpu/glcmd/device"

// Slots expose Context fields to compiled procedures so scopes can save
// and restore them.

type dirtySlot struct{ c *Context }

func (s dirtySlot) Load() any      { return s.c.state.Dirty }
func (s dirtySlot) Store(v any)    { s.c.state.Dirty = v.(bool) }
func (s dirtySlot) String() string { return "dirty" }

// varSlot is a context variable. Storing nil removes it.
type varSlot struct {
	c    *Context
	name string
}

func (s varSlot) Load() any { return s.c.vars[s.name] }

func (s varSlot) Store(v any) {
	if v == nil {
		delete(s.c.vars, s.name)
		return
	}
	s.c.vars[s.name] = v
}

func (s varSlot) String() string { return "ctx." + s.name }

type framebufferSlot struct{ c *Context }

func (s framebufferSlot) Load() any { return s.c.fbNext }

func (s framebufferSlot) Store(v any) {
	fb, _ := v.(device.Framebuffer)
	s.c.fbNext = fb
}

func (s framebufferSlot) String() string { return "framebuffer.next" }

type programSlot struct{ c *Context }

func (s programSlot) Load() any { return s.c.program }

func (s programSlot) Store(v any) {
	p, _ := v.(device.Program)
	s.c.program = p
}

func (s programSlot) String() string { return "scope.program" }

// inputSlot is a uniform or attribute staged by a scope. Storing nil
// removes it.
type inputSlot struct {
	m    map[string]any
	kind string
	name string
}

func (s inputSlot) Load() any { return s.m[s.name] }

func (s inputSlot) Store(v any) {
	if v == nil {
		delete(s.m, s.name)
		return
	}
	s.m[s.name] = v
}

func (s inputSlot) String() string { return "scope." + s.kind + "." + s.name }

func (c *Context) uniformSlot(name string) inputSlot {
	return inputSlot{m: c.uniforms, kind: "uniforms", name: name}
}

func (c *Context) attributeSlot(name string) inputSlot {
	return inputSlot{m: c.attributes, kind: "attributes", name: name}
}
