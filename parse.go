// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glcmd

import (
	"fmt"
	"sort"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/glcmd/device"
	"github.com/gogpu/glcmd/internal/emit"
	"github.com/gogpu/glcmd/internal/glstate"
	"github.com/gogpu/glcmd/internal/value"
)

type namedDecl struct {
	name string
	decl *Declaration
}

// command is the analysed form of a Spec.
type command struct {
	site string

	// program is nil when the program comes from an enclosing scope.
	program *Declaration

	framebuffer *Declaration
	state       [glstate.NumFields]*Declaration
	overrides   glstate.Mask

	context    []namedDecl
	uniforms   []namedDecl
	attributes []namedDecl

	primitive *Declaration
	count     *Declaration
	offset    *Declaration
	instances *Declaration
	elements  *Declaration
	vao       *Declaration
	profile   *Declaration
}

func (c *command) specError(path, msg string, err error) error {
	return &SpecificationError{Path: path, Msg: msg, Site: c.site, Err: err}
}

func (c *command) uniform(name string) *Declaration {
	return findDecl(c.uniforms, name)
}

func (c *command) attribute(name string) *Declaration {
	return findDecl(c.attributes, name)
}

func findDecl(list []namedDecl, name string) *Declaration {
	for _, nd := range list {
		if nd.name == name {
			return nd.decl
		}
	}
	return nil
}

// parseSpec classifies every option of s.
func (ctx *Context) parseSpec(s Spec, site string) (*command, error) {
	c := &command{site: site}

	steps := []func(*Context, Spec) error{
		c.parseProgram,
		c.parseFramebuffer,
		c.parseState,
		c.parseInputs,
		c.parseDraw,
	}
	for _, step := range steps {
		if err := step(ctx, s); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *command) classify(path string, v any) (*Declaration, error) {
	d, err := classify(v)
	if err != nil {
		return nil, c.specError(path, err.Error(), err)
	}
	return d, nil
}

func (c *command) parseProgram(ctx *Context, s Spec) error {
	switch {
	case s.Program != nil && (s.Vert != nil || s.Frag != nil):
		return c.specError("program", "cannot be combined with vert/frag", nil)

	case s.Program != nil:
		d, err := c.classify("program", s.Program)
		if err != nil {
			return err
		}
		if d.Static() {
			if _, ok := d.value.(device.Program); !ok {
				return c.specError("program", fmt.Sprintf("expected device.Program, got %T", d.value), nil)
			}
		}
		c.program = d

	case s.Vert != nil || s.Frag != nil:
		if s.Vert == nil || s.Frag == nil {
			return c.specError("vert", "vert and frag must be set together", nil)
		}
		vd, err := c.classify("vert", s.Vert)
		if err != nil {
			return err
		}
		fd, err := c.classify("frag", s.Frag)
		if err != nil {
			return err
		}
		for _, p := range []struct {
			path string
			d    *Declaration
		}{{"vert", vd}, {"frag", fd}} {
			if _, ok := p.d.value.(string); p.d.Static() && !ok {
				return c.specError(p.path, fmt.Sprintf("expected shader source, got %T", p.d.value), nil)
			}
		}
		if vd.Static() && fd.Static() {
			p, err := ctx.programFromSource(vd.value.(string), fd.value.(string))
			if err != nil {
				return c.specError("vert", "program link failed", err)
			}
			c.program = staticDecl(p)
			return nil
		}
		d := &Declaration{}
		d.union(vd)
		d.union(fd)
		d.produce = func(g *gen, b *emit.Block) emit.Expr {
			return emit.Apply2("program", func(v, f any) any {
				vs, _ := v.(string)
				fs, _ := f.(string)
				p, err := g.ctx.programFromSource(vs, fs)
				if err != nil {
					fail(fmt.Errorf("glcmd: dynamic program: %w", err))
				}
				return p
			}, vd.emit(g, b), fd.emit(g, b))
		}
		c.program = d
	}
	return nil
}

func (c *command) parseFramebuffer(_ *Context, s Spec) error {
	if s.Framebuffer == nil {
		return nil
	}
	if s.Framebuffer == DefaultFramebuffer {
		c.framebuffer = staticDecl(nil)
		return nil
	}
	d, err := c.classify("framebuffer", s.Framebuffer)
	if err != nil {
		return err
	}
	if d.Static() {
		if _, ok := d.value.(device.Framebuffer); !ok {
			return c.specError("framebuffer", fmt.Sprintf("expected device.Framebuffer, got %T", d.value), nil)
		}
	}
	c.framebuffer = d
	return nil
}

func (c *command) parseState(_ *Context, s Spec) error {
	keys := make([]string, 0, len(s.State))
	for k := range s.State {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		path := "state." + k
		i, ok := glstate.Lookup(k)
		if !ok {
			return c.specError(path, "unknown state field", nil)
		}
		d, err := c.classify(path, s.State[k])
		if err != nil {
			return err
		}
		if d.Static() {
			v, err := glstate.Parse(i, d.value)
			if err != nil {
				return c.specError(path, err.Error(), err)
			}
			d = staticDecl(v)
		}
		c.state[i] = d
		c.overrides = c.overrides.With(i)
	}

	// A framebuffer without an explicit viewport or scissor box renders to
	// its whole area.
	if c.framebuffer != nil {
		for _, i := range [...]int{glstate.Viewport, glstate.ScissorBox} {
			if c.state[i] == nil {
				c.state[i] = framebufferBox(c.framebuffer)
				c.overrides = c.overrides.With(i)
			}
		}
	}
	return nil
}

// framebufferBox derives the full-target rectangle of a framebuffer
// declaration. Dynamic framebuffers read the size variables staged with
// the framebuffer, so its value is produced once per invocation.
func framebufferBox(fb *Declaration) *Declaration {
	if fb.Static() {
		if f, ok := fb.value.(device.Framebuffer); ok {
			return staticDecl(device.Rect{Width: f.Width(), Height: f.Height()})
		}
	}
	d := &Declaration{ContextDep: true}
	d.union(fb)
	d.produce = func(g *gen, _ *emit.Block) emit.Expr {
		return emit.Apply2("box", func(w, h any) any {
			wi, _ := w.(int)
			hi, _ := h.(int)
			return device.Rect{Width: wi, Height: hi}
		}, emit.Load(varSlot{g.ctx, varFramebufferWidth}), emit.Load(varSlot{g.ctx, varFramebufferHeight}))
	}
	return d
}

func (c *command) parseInputs(_ *Context, s Spec) error {
	var err error
	if c.context, err = c.classifyAll("context", s.Context); err != nil {
		return err
	}
	if c.uniforms, err = c.classifyAll("uniforms", s.Uniforms); err != nil {
		return err
	}
	if c.attributes, err = c.classifyAll("attributes", s.Attributes); err != nil {
		return err
	}
	if len(c.attributes) > 0 && s.Vao != nil {
		return c.specError("attributes", "cannot be combined with vao", nil)
	}
	return nil
}

func (c *command) classifyAll(prefix string, m map[string]any) ([]namedDecl, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]namedDecl, 0, len(keys))
	for _, k := range keys {
		d, err := c.classify(prefix+"."+k, m[k])
		if err != nil {
			return nil, err
		}
		out = append(out, namedDecl{name: k, decl: d})
	}
	return out, nil
}

var primitives = map[string]gputypes.PrimitiveTopology{
	"points":         gputypes.PrimitiveTopologyPointList,
	"lines":          gputypes.PrimitiveTopologyLineList,
	"line strip":     gputypes.PrimitiveTopologyLineStrip,
	"triangles":      gputypes.PrimitiveTopologyTriangleList,
	"triangle strip": gputypes.PrimitiveTopologyTriangleStrip,
}

func parsePrimitive(v any) (any, error) {
	switch x := v.(type) {
	case gputypes.PrimitiveTopology:
		return x, nil
	case string:
		if p, ok := primitives[x]; ok {
			return p, nil
		}
		return gputypes.PrimitiveTopologyTriangleList, fmt.Errorf("unknown primitive %q", x)
	}
	return gputypes.PrimitiveTopologyTriangleList, fmt.Errorf("expected primitive, got %T", v)
}

func parseInt(v any) (any, error) {
	n, ok := value.Int(v)
	if !ok {
		return 0, fmt.Errorf("expected integer, got %T", v)
	}
	return n, nil
}

func parseBool(v any) (any, error) {
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("expected bool, got %T", v)
	}
	return b, nil
}

func parseElements(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	e, ok := v.(device.Elements)
	if !ok {
		return nil, fmt.Errorf("expected device.Elements, got %T", v)
	}
	return e, nil
}

func parseVertexArray(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	a, ok := v.(device.VertexArray)
	if !ok {
		return nil, fmt.Errorf("expected device.VertexArray, got %T", v)
	}
	return a, nil
}

// parseOption classifies a draw parameter and converts static values.
// Dynamic values are converted at invocation time by the builders.
func (c *command) parseOption(path string, v any, conv func(any) (any, error)) (*Declaration, error) {
	if v == nil {
		return nil, nil
	}
	d, err := c.classify(path, v)
	if err != nil {
		return nil, err
	}
	if !d.Static() {
		return d, nil
	}
	cv, err := conv(d.value)
	if err != nil {
		return nil, c.specError(path, err.Error(), err)
	}
	return staticDecl(cv), nil
}

func (c *command) parseDraw(_ *Context, s Spec) error {
	opts := []struct {
		path string
		raw  any
		conv func(any) (any, error)
		dst  **Declaration
	}{
		{"primitive", s.Primitive, parsePrimitive, &c.primitive},
		{"count", s.Count, parseInt, &c.count},
		{"offset", s.Offset, parseInt, &c.offset},
		{"instances", s.Instances, parseInt, &c.instances},
		{"elements", s.Elements, parseElements, &c.elements},
		{"vao", s.Vao, parseVertexArray, &c.vao},
		{"profile", s.Profile, parseBool, &c.profile},
	}
	for _, o := range opts {
		d, err := c.parseOption(o.path, o.raw, o.conv)
		if err != nil {
			return err
		}
		*o.dst = d
	}

	if c.elements != nil && c.vao != nil && c.vao.Static() {
		if vao, ok := c.vao.value.(device.VertexArray); ok && vao != nil && vao.Elements() != nil {
			return c.specError("elements", "vao already carries elements", nil)
		}
	}
	return nil
}

// checkDrawable reports a missing vertex count.
func (c *command) checkDrawable() error {
	if c.count == nil && c.elements == nil && c.vao == nil {
		return &UnresolvedValueError{Path: "count", Site: c.site}
	}
	return nil
}
