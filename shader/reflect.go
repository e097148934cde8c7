// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"

	"github.com/gogpu/glcmd/device"
)

var (
	// ErrNoVertexEntry is returned when the vertex source has no @vertex
	// entry point.
	ErrNoVertexEntry = errors.New("shader: no @vertex entry point")

	// ErrNoFragmentEntry is returned when the fragment source has no
	// @fragment entry point.
	ErrNoFragmentEntry = errors.New("shader: no @fragment entry point")
)

// Reflection lists the active inputs of a program.
type Reflection struct {
	Attributes []device.AttributeInfo
	Uniforms   []device.UniformInfo
}

// Parse parses and lowers WGSL source.
func Parse(source string) (*ir.Module, error) {
	ast, err := naga.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("shader: %w", err)
	}
	module, err := naga.LowerWithSource(ast, source)
	if err != nil {
		return nil, fmt.Errorf("shader: %w", err)
	}
	return module, nil
}

// Reflect parses a vertex and a fragment source and lists their inputs.
func Reflect(vert, frag string) (*Reflection, error) {
	vm, err := Parse(vert)
	if err != nil {
		return nil, fmt.Errorf("vertex: %w", err)
	}
	fm := vm
	if frag != vert {
		if fm, err = Parse(frag); err != nil {
			return nil, fmt.Errorf("fragment: %w", err)
		}
	}
	return ReflectModules(vm, fm)
}

// ReflectModules lists the inputs of already lowered modules.
func ReflectModules(vert, frag *ir.Module) (*Reflection, error) {
	ve := entryPoint(vert, ir.StageVertex)
	if ve == nil {
		return nil, ErrNoVertexEntry
	}
	if entryPoint(frag, ir.StageFragment) == nil {
		return nil, ErrNoFragmentEntry
	}

	r := &Reflection{}
	if err := r.addAttributes(vert, ve); err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	for _, m := range []*ir.Module{vert, frag} {
		if err := r.addUniforms(m, seen); err != nil {
			return nil, err
		}
		if frag == vert {
			break
		}
	}
	return r, nil
}

func entryPoint(m *ir.Module, stage ir.ShaderStage) *ir.EntryPoint {
	for i := range m.EntryPoints {
		if m.EntryPoints[i].Stage == stage {
			return &m.EntryPoints[i]
		}
	}
	return nil
}

func (r *Reflection) addAttributes(m *ir.Module, ep *ir.EntryPoint) error {
	fn := &ep.Function
	for _, arg := range fn.Arguments {
		if loc, ok := location(arg.Binding); ok {
			f, err := vertexFormat(m, arg.Type)
			if err != nil {
				return fmt.Errorf("shader: attribute %s: %w", arg.Name, err)
			}
			r.Attributes = append(r.Attributes, device.AttributeInfo{Name: arg.Name, Location: loc, Format: f})
			continue
		}
		st, ok := m.Types[arg.Type].Inner.(ir.StructType)
		if !ok {
			continue
		}
		for _, mem := range st.Members {
			loc, ok := location(mem.Binding)
			if !ok {
				continue
			}
			f, err := vertexFormat(m, mem.Type)
			if err != nil {
				return fmt.Errorf("shader: attribute %s: %w", mem.Name, err)
			}
			r.Attributes = append(r.Attributes, device.AttributeInfo{Name: mem.Name, Location: loc, Format: f})
		}
	}
	return nil
}

func location(b *ir.Binding) (int, bool) {
	if b == nil {
		return 0, false
	}
	lb, ok := (*b).(ir.LocationBinding)
	if !ok {
		return 0, false
	}
	return int(lb.Location), true
}

func vertexFormat(m *ir.Module, t ir.TypeHandle) (gputypes.VertexFormat, error) {
	switch inner := m.Types[t].Inner.(type) {
	case ir.ScalarType:
		if inner.Kind == ir.ScalarFloat {
			return gputypes.VertexFormatFloat32, nil
		}
	case ir.VectorType:
		if inner.Scalar.Kind == ir.ScalarFloat {
			return device.FloatFormat(int(inner.Size)), nil
		}
	}
	return 0, fmt.Errorf("unsupported vertex input type %T", m.Types[t].Inner)
}

func (r *Reflection) addUniforms(m *ir.Module, seen map[string]bool) error {
	add := func(name string, t ir.TypeHandle) error {
		if seen[name] {
			return nil
		}
		typ, size, err := uniformType(m, t)
		if err != nil {
			return fmt.Errorf("shader: uniform %s: %w", name, err)
		}
		seen[name] = true
		r.Uniforms = append(r.Uniforms, device.UniformInfo{
			Name:     name,
			Location: len(r.Uniforms),
			Type:     typ,
			Size:     size,
		})
		return nil
	}

	for _, gv := range m.GlobalVariables {
		switch gv.Space {
		case ir.SpaceUniform:
			if st, ok := m.Types[gv.Type].Inner.(ir.StructType); ok {
				for _, mem := range st.Members {
					if err := add(mem.Name, mem.Type); err != nil {
						return err
					}
				}
				continue
			}
			if err := add(gv.Name, gv.Type); err != nil {
				return err
			}
		case ir.SpaceHandle:
			if _, ok := m.Types[gv.Type].Inner.(ir.ImageType); ok {
				if err := add(gv.Name, gv.Type); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func uniformType(m *ir.Module, t ir.TypeHandle) (device.UniformType, int, error) {
	switch inner := m.Types[t].Inner.(type) {
	case ir.ScalarType:
		switch inner.Kind {
		case ir.ScalarFloat:
			return device.UniformFloat, 1, nil
		case ir.ScalarSint, ir.ScalarUint:
			return device.UniformInt, 1, nil
		case ir.ScalarBool:
			return device.UniformBool, 1, nil
		}
	case ir.VectorType:
		base := device.UniformVec2
		if inner.Scalar.Kind != ir.ScalarFloat {
			base = device.UniformIVec2
		}
		return base + device.UniformType(inner.Size-2), 1, nil
	case ir.MatrixType:
		if inner.Columns == inner.Rows {
			return device.UniformMat2 + device.UniformType(inner.Columns-2), 1, nil
		}
	case ir.ArrayType:
		if inner.Size.Constant == nil {
			return 0, 0, errors.New("runtime-sized arrays cannot be uniforms")
		}
		elem, _, err := uniformType(m, inner.Base)
		if err != nil {
			return 0, 0, err
		}
		return elem, int(*inner.Size.Constant), nil
	case ir.ImageType:
		switch inner.Dim {
		case ir.Dim2D:
			return device.UniformSampler2D, 1, nil
		case ir.DimCube:
			return device.UniformSamplerCube, 1, nil
		}
	}
	return 0, 0, fmt.Errorf("unsupported type %T", m.Types[t].Inner)
}
