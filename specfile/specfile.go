// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package specfile loads glcmd command specifications from TOML files.
//
// A spec file has an optional [context] table configuring the render
// context and one [commands.<name>] table per command:
//
//	[context]
//	assertions = true
//	textureUnits = 8
//
//	[commands.triangle]
//	vert = { file = "triangle.wgsl" }
//	frag = { file = "triangle.wgsl" }
//	count = 3
//	attributes = { position = { resource = "positions" } }
//	uniforms = { color = { prop = "color" } }
//
//	[commands.triangle.state]
//	"depth.enable" = false
//	blend = { enable = true, func = { src = "src alpha", dst = "one minus src alpha" } }
//
// Inline tables with a single tag key are dynamic values: {prop = "k"},
// {context = "k"} and {this = "k"} become glcmd.FromProp, FromContext and
// FromThis; {resource = "name"} is replaced by a caller supplied handle;
// {file = "path"} reads a shader source relative to the spec file.
package specfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/BurntSushi/toml"

	"github.com/gogpu/glcmd"
	"github.com/gogpu/glcmd/internal/glstate"
)

var (
	// ErrUnknownCommand is returned for a command name not in the file.
	ErrUnknownCommand = errors.New("specfile: unknown command")

	// ErrUnknownResource is returned when {resource = "name"} names a
	// resource the caller did not supply.
	ErrUnknownResource = errors.New("specfile: unknown resource")
)

// File is a decoded spec file.
type File struct {
	Context  ContextConfig             `toml:"context"`
	Commands map[string]map[string]any `toml:"commands"`

	// Dir resolves {file = "..."} references (set at load time).
	Dir string `toml:"-"`
}

// ContextConfig configures the render context. Unset fields keep the
// glcmd defaults.
type ContextConfig struct {
	Assertions   *bool   `toml:"assertions"`
	TextureUnits int     `toml:"textureUnits"`
	PixelRatio   float64 `toml:"pixelRatio"`
	Profile      bool    `toml:"profile"`
}

// Resources maps resource names to device handles or other values
// referenced with {resource = "name"}.
type Resources map[string]any

// Load reads and decodes the spec file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("specfile: cannot read %s: %w", path, err)
	}
	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("specfile: cannot resolve path %s: %w", path, err)
	}
	f, err := Parse(data, dir)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes a spec file. dir resolves {file = "..."} references.
func Parse(data []byte, dir string) (*File, error) {
	var f File
	md, err := toml.Decode(string(data), &f)
	if err != nil {
		return nil, fmt.Errorf("specfile: parse error: %w", err)
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		return nil, fmt.Errorf("specfile: unknown key %s", keys[0])
	}
	f.Dir = dir
	glcmd.Logger().Debug("specfile: parsed", "commands", len(f.Commands), "dir", dir)
	return &f, nil
}

// Options returns the context options the [context] table configures.
func (f *File) Options() []glcmd.ContextOption {
	var opts []glcmd.ContextOption
	c := f.Context
	if c.Assertions != nil {
		opts = append(opts, glcmd.WithAssertions(*c.Assertions))
	}
	if c.TextureUnits > 0 {
		opts = append(opts, glcmd.WithTextureUnits(c.TextureUnits))
	}
	if c.PixelRatio > 0 {
		opts = append(opts, glcmd.WithPixelRatio(c.PixelRatio))
	}
	if c.Profile {
		opts = append(opts, glcmd.WithProfiling(true))
	}
	return opts
}

// Names returns the command names in sorted order.
func (f *File) Names() []string {
	names := make([]string, 0, len(f.Commands))
	for name := range f.Commands {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// IsScope reports whether the command is declared with scope = true and
// should be compiled with Context.CompileScope.
func (f *File) IsScope(name string) bool {
	b, _ := f.Commands[name]["scope"].(bool)
	return b
}

// Spec converts the named command table into a glcmd.Spec.
func (f *File) Spec(name string, res Resources) (glcmd.Spec, error) {
	table, ok := f.Commands[name]
	if !ok {
		return glcmd.Spec{}, fmt.Errorf("%w %q", ErrUnknownCommand, name)
	}
	c := converter{dir: f.Dir, res: res}
	var s glcmd.Spec
	for _, key := range sortedKeys(table) {
		raw := table[key]
		path := "commands." + name + "." + key
		var err error
		switch key {
		case "scope":
			if _, ok := raw.(bool); !ok {
				err = fmt.Errorf("%s: want a boolean, got %T", path, raw)
			}
		case "vert":
			s.Vert, err = c.value(path, raw)
		case "frag":
			s.Frag, err = c.value(path, raw)
		case "program":
			s.Program, err = c.value(path, raw)
		case "uniforms":
			s.Uniforms, err = c.table(path, raw)
		case "attributes":
			s.Attributes, err = c.table(path, raw)
		case "context":
			s.Context, err = c.table(path, raw)
		case "primitive":
			s.Primitive, err = c.value(path, raw)
		case "count":
			s.Count, err = c.value(path, raw)
		case "offset":
			s.Offset, err = c.value(path, raw)
		case "instances":
			s.Instances, err = c.value(path, raw)
		case "elements":
			s.Elements, err = c.value(path, raw)
		case "vao":
			s.Vao, err = c.value(path, raw)
		case "framebuffer":
			s.Framebuffer, err = c.framebuffer(path, raw)
		case "profile":
			s.Profile, err = c.value(path, raw)
		case "state":
			s.State, err = c.state(path, raw)
		default:
			err = fmt.Errorf("%s: unknown option", path)
		}
		if err != nil {
			return glcmd.Spec{}, fmt.Errorf("specfile: %w", err)
		}
	}
	return s, nil
}

// Compile compiles every command of the file in name order.
func (f *File) Compile(ctx *glcmd.Context, res Resources) (map[string]*glcmd.Command, error) {
	out := make(map[string]*glcmd.Command, len(f.Commands))
	for _, name := range f.Names() {
		s, err := f.Spec(name, res)
		if err != nil {
			return nil, err
		}
		var cmd *glcmd.Command
		if f.IsScope(name) {
			cmd, err = ctx.CompileScope(s)
		} else {
			cmd, err = ctx.Compile(s)
		}
		if err != nil {
			return nil, fmt.Errorf("specfile: command %q: %w", name, err)
		}
		out[name] = cmd
	}
	return out, nil
}

type converter struct {
	dir string
	res Resources
}

// tags are the single-key inline tables with special meaning.
var tags = []string{"prop", "context", "this", "resource", "file"}

func (c converter) value(path string, v any) (any, error) {
	switch x := v.(type) {
	case int64:
		return int(x), nil
	case map[string]any:
		if tag, arg, ok := tagged(x); ok {
			return c.tag(path, tag, arg)
		}
		return c.table(path, x)
	case []map[string]any:
		out := make([]any, len(x))
		for i, e := range x {
			cv, err := c.value(fmt.Sprintf("%s[%d]", path, i), e)
			if err != nil {
				return nil, err
			}
			out[i] = cv
		}
		return out, nil
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			cv, err := c.value(fmt.Sprintf("%s[%d]", path, i), e)
			if err != nil {
				return nil, err
			}
			out[i] = cv
		}
		return out, nil
	}
	return v, nil
}

func (c converter) table(path string, v any) (map[string]any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s: want a table, got %T", path, v)
	}
	out := make(map[string]any, len(m))
	for k, e := range m {
		cv, err := c.value(path+"."+k, e)
		if err != nil {
			return nil, err
		}
		out[k] = cv
	}
	return out, nil
}

func tagged(m map[string]any) (tag string, arg string, ok bool) {
	if len(m) != 1 {
		return "", "", false
	}
	for _, t := range tags {
		if raw, found := m[t]; found {
			s, isString := raw.(string)
			return t, s, isString
		}
	}
	return "", "", false
}

func (c converter) tag(path, tag, arg string) (any, error) {
	switch tag {
	case "prop":
		return glcmd.FromProp(arg), nil
	case "context":
		return glcmd.FromContext(arg), nil
	case "this":
		return glcmd.FromThis(arg), nil
	case "resource":
		r, ok := c.res[arg]
		if !ok {
			return nil, fmt.Errorf("%s: %w %q", path, ErrUnknownResource, arg)
		}
		return r, nil
	default:
		p := arg
		if !filepath.IsAbs(p) {
			p = filepath.Join(c.dir, p)
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return string(data), nil
	}
}

func (c converter) framebuffer(path string, v any) (any, error) {
	if s, ok := v.(string); ok {
		if s != "default" {
			return nil, fmt.Errorf("%s: unknown framebuffer %q", path, s)
		}
		return glcmd.DefaultFramebuffer, nil
	}
	return c.value(path, v)
}

// state flattens nested tables into dotted state names. A table whose
// dotted name is itself a state field is a value, not a group.
func (c converter) state(path string, v any) (map[string]any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s: want a table, got %T", path, v)
	}
	out := make(map[string]any)
	if err := c.flattenState(path, "", m, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c converter) flattenState(path, prefix string, m map[string]any, out map[string]any) error {
	for _, k := range sortedKeys(m) {
		name := k
		if prefix != "" {
			name = prefix + "." + k
		}
		raw := m[k]
		if sub, ok := raw.(map[string]any); ok {
			if _, known := glstate.Lookup(name); !known {
				if _, _, isTag := tagged(sub); !isTag {
					if err := c.flattenState(path, name, sub, out); err != nil {
						return err
					}
					continue
				}
			}
		}
		cv, err := c.value(path+"."+name, raw)
		if err != nil {
			return err
		}
		out[name] = cv
	}
	return nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// ParseProps decodes a TOML document into invocation props. Tagged
// inline tables are converted as in command tables.
func ParseProps(data string, res Resources) (glcmd.Props, error) {
	var m map[string]any
	if _, err := toml.Decode(data, &m); err != nil {
		return nil, fmt.Errorf("specfile: props: %w", err)
	}
	c := converter{res: res}
	out, err := c.table("props", m)
	if err != nil {
		return nil, fmt.Errorf("specfile: %w", err)
	}
	return glcmd.Props(out), nil
}
