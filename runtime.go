// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glcmd

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/glcmd/device"
	"github.com/gogpu/glcmd/internal/glstate"
	"github.com/gogpu/glcmd/internal/value"
)

// Invocation-time helpers called from compiled procedures. Malformed
// dynamic values raise a *RuntimeAssertionError when assertions are on
// and fall back to a harmless default otherwise.

func (c *Context) assert(path, format string, args ...any) {
	if c.opts.assertions {
		panic(&RuntimeAssertionError{Path: path, Msg: fmt.Sprintf(format, args...)})
	}
}

// framebufferSize returns the size of a framebuffer value, or of the
// drawing buffer for nil.
func (c *Context) framebufferSize(v any) (int, int) {
	if fb, ok := v.(device.Framebuffer); ok && fb != nil {
		return fb.Width(), fb.Height()
	}
	w, _ := c.vars[varDrawingBufferWidth].(int)
	h, _ := c.vars[varDrawingBufferHeight].(int)
	return w, h
}

func (c *Context) checkFramebuffer(v any) any {
	switch x := v.(type) {
	case nil, defaultFramebuffer:
		return nil
	case device.Framebuffer:
		return x
	}
	c.assert("framebuffer", "expected device.Framebuffer, got %T", v)
	return nil
}

func (c *Context) parseState(i int, v any) any {
	out, err := glstate.Parse(i, v)
	if err != nil {
		c.assert("state."+glstate.Get(i).Name, "%v", err)
	}
	return out
}

func (c *Context) checkSampler(path string, v any) any {
	tex, ok := samplerTexture(v)
	if !ok {
		if v == nil {
			c.assert(path, "missing")
		} else {
			c.assert(path, "expected texture or framebuffer, got %T", v)
		}
		return nil
	}
	return tex
}

func (c *Context) setUniform(u device.UniformInfo, path string, v any) {
	if v == nil {
		c.assert(path, "missing")
		return
	}
	cv, err := convertUniform(u, v)
	if err != nil {
		c.assert(path, "%v", err)
		return
	}
	c.dev.Uniform(u, cv)
}

func (c *Context) setAttribute(a device.AttributeInfo, path string, v any) {
	if v == nil {
		c.assert(path, "missing")
		return
	}
	in, err := convertAttribute(a, v)
	if err != nil {
		c.assert(path, "%v", err)
		return
	}
	c.bindAttribute(a, in)
}

func (c *Context) bindAttribute(a device.AttributeInfo, in attributeInput) {
	if in.binding != nil {
		c.dev.BindAttribute(a.Location, *in.binding)
		return
	}
	c.dev.ConstantAttribute(a.Location, in.constant)
}

// draw issues one draw call. A zero count or zero instance count draws
// nothing; a negative instance count draws without instancing.
func (c *Context) draw(prim, elems, count, offset, instances any) {
	el, _ := elems.(device.Elements)
	if elems != nil && el == nil {
		c.assert("elements", "expected device.Elements, got %T", elems)
	}

	mode := gputypes.PrimitiveTopologyTriangleList
	switch {
	case prim != nil:
		p, err := parsePrimitive(prim)
		if err != nil {
			c.assert("primitive", "%v", err)
		}
		mode = p.(gputypes.PrimitiveTopology)
	case el != nil:
		mode = el.Primitive()
	}

	n, ok := value.Int(count)
	if !ok {
		c.assert("count", "expected integer, got %T", count)
		return
	}
	first, ok := value.Int(offset)
	if !ok {
		c.assert("offset", "expected integer, got %T", offset)
		first = 0
	}
	inst := -1
	if instances != nil {
		if inst, ok = value.Int(instances); !ok {
			c.assert("instances", "expected integer, got %T", instances)
			inst = -1
		}
	}
	if n <= 0 || inst == 0 {
		return
	}

	c.stats.draws++
	switch {
	case el != nil && inst > 0:
		c.dev.DrawElementsInstanced(mode, el, first, n, inst)
	case el != nil:
		c.dev.DrawElements(mode, el, first, n)
	case inst > 0:
		c.dev.DrawArraysInstanced(mode, first, n, inst)
	default:
		c.dev.DrawArrays(mode, first, n)
	}
}
