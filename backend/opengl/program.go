// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build opengl

package opengl

import (
	"fmt"
	"slices"
	"strings"

	"github.com/go-gl/gl/v3.3-core/gl"

	"github.com/gogpu/glcmd"
	"github.com/gogpu/glcmd/device"
)

// Program is a linked GL program with its introspected inputs.
type Program struct {
	id         uint64
	name       uint32
	attributes []device.AttributeInfo
	uniforms   []device.UniformInfo
	members    map[string]member
	blocks     []*uniformBlock
}

func (p *Program) ID() uint64                         { return p.id }
func (p *Program) Attributes() []device.AttributeInfo { return p.attributes }
func (p *Program) Uniforms() []device.UniformInfo     { return p.uniforms }

// Release deletes the program and its uniform buffers.
func (p *Program) Release() {
	for _, b := range p.blocks {
		if b.buffer != 0 {
			gl.DeleteBuffers(1, &b.buffer)
			b.buffer = 0
		}
	}
	if p.name != 0 {
		gl.DeleteProgram(p.name)
		p.name = 0
	}
}

func linkProgram(vert, frag string) (*Program, error) {
	vs, err := compileShader(gl.VERTEX_SHADER, vert)
	if err != nil {
		return nil, fmt.Errorf("opengl: vertex shader: %w", err)
	}
	defer gl.DeleteShader(vs)
	fs, err := compileShader(gl.FRAGMENT_SHADER, frag)
	if err != nil {
		return nil, fmt.Errorf("opengl: fragment shader: %w", err)
	}
	defer gl.DeleteShader(fs)

	name := gl.CreateProgram()
	gl.AttachShader(name, vs)
	gl.AttachShader(name, fs)
	gl.LinkProgram(name)

	var status int32
	gl.GetProgramiv(name, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(name, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(name, logLength, nil, gl.Str(log))
		gl.DeleteProgram(name)
		return nil, fmt.Errorf("opengl: link error: %s", strings.TrimRight(log, "\x00"))
	}

	p := &Program{id: device.NextID(), name: name, members: make(map[string]member)}
	p.introspectAttributes()
	p.introspectUniforms()
	glcmd.Logger().Debug("opengl: program linked",
		"program", p.id, "attributes", len(p.attributes), "uniforms", len(p.uniforms), "blocks", len(p.blocks))
	return p, nil
}

func compileShader(shaderType uint32, source string) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("compile error: %s", strings.TrimRight(log, "\x00"))
	}
	return shader, nil
}

// activeName reads the name of active resource i with get.
func activeName(buf []uint8, get func(length, size *int32, xtype *uint32, name *uint8)) (string, int32, uint32) {
	var length, size int32
	var xtype uint32
	get(&length, &size, &xtype, &buf[0])
	return string(buf[:length]), size, xtype
}

func (p *Program) introspectAttributes() {
	var n, maxLen int32
	gl.GetProgramiv(p.name, gl.ACTIVE_ATTRIBUTES, &n)
	gl.GetProgramiv(p.name, gl.ACTIVE_ATTRIBUTE_MAX_LENGTH, &maxLen)
	buf := make([]uint8, maxLen+1)
	for i := range uint32(n) {
		name, _, xtype := activeName(buf, func(length, size *int32, xtype *uint32, name *uint8) {
			gl.GetActiveAttrib(p.name, i, int32(len(buf)), length, size, xtype, name)
		})
		if strings.HasPrefix(name, "gl_") {
			continue
		}
		loc := gl.GetAttribLocation(p.name, gl.Str(name+"\x00"))
		p.attributes = append(p.attributes, device.AttributeInfo{
			Name:     name,
			Location: int(loc),
			Format:   attributeFormat(xtype),
		})
	}
	slices.SortFunc(p.attributes, func(a, b device.AttributeInfo) int { return a.Location - b.Location })
}

func (p *Program) introspectUniforms() {
	var nb int32
	gl.GetProgramiv(p.name, gl.ACTIVE_UNIFORM_BLOCKS, &nb)
	for i := range uint32(nb) {
		var size int32
		gl.GetActiveUniformBlockiv(p.name, i, gl.UNIFORM_BLOCK_DATA_SIZE, &size)
		gl.UniformBlockBinding(p.name, i, i)
		b := &uniformBlock{binding: i, data: make([]byte, size), dirty: true}
		gl.GenBuffers(1, &b.buffer)
		gl.BindBuffer(gl.UNIFORM_BUFFER, b.buffer)
		gl.BufferData(gl.UNIFORM_BUFFER, int(size), nil, gl.DYNAMIC_DRAW)
		p.blocks = append(p.blocks, b)
	}

	var n, maxLen int32
	gl.GetProgramiv(p.name, gl.ACTIVE_UNIFORMS, &n)
	gl.GetProgramiv(p.name, gl.ACTIVE_UNIFORM_MAX_LENGTH, &maxLen)
	buf := make([]uint8, maxLen+1)
	for i := range uint32(n) {
		raw, size, xtype := activeName(buf, func(length, size *int32, xtype *uint32, name *uint8) {
			gl.GetActiveUniform(p.name, i, int32(len(buf)), length, size, xtype, name)
		})
		t, ok := uniformType(xtype)
		if !ok {
			glcmd.Logger().Debug("opengl: uniform type not supported", "uniform", raw, "type", xtype)
			continue
		}
		blockIndex := p.uniformParam(i, gl.UNIFORM_BLOCK_INDEX)
		info := device.UniformInfo{Name: memberName(raw, blockIndex >= 0), Location: -1, Type: t, Size: int(size)}
		if blockIndex >= 0 {
			p.members[info.Name] = member{
				block:        int(blockIndex),
				offset:       int(p.uniformParam(i, gl.UNIFORM_OFFSET)),
				arrayStride:  int(p.uniformParam(i, gl.UNIFORM_ARRAY_STRIDE)),
				matrixStride: int(p.uniformParam(i, gl.UNIFORM_MATRIX_STRIDE)),
			}
		} else {
			loc := gl.GetUniformLocation(p.name, gl.Str(strings.TrimSuffix(raw, "[0]")+"\x00"))
			info.Location = int(loc)
		}
		p.uniforms = append(p.uniforms, info)
	}
	slices.SortFunc(p.uniforms, func(a, b device.UniformInfo) int { return strings.Compare(a.Name, b.Name) })
}

func (p *Program) uniformParam(index uint32, pname uint32) int32 {
	var v int32
	gl.GetActiveUniformsiv(p.name, 1, &index, pname, &v)
	return v
}

// set writes a uniform of the program, which must be in use.
func (p *Program) set(u device.UniformInfo, v any) error {
	if m, ok := p.members[u.Name]; ok {
		b := p.blocks[m.block]
		if err := writeMember(b.data, m, u, v); err != nil {
			return err
		}
		b.dirty = true
		return nil
	}

	loc := int32(u.Location)
	count := int32(max(u.Size, 1))
	switch x := v.(type) {
	case float32:
		gl.Uniform1f(loc, x)
	case [2]float32:
		gl.Uniform2f(loc, x[0], x[1])
	case [3]float32:
		gl.Uniform3f(loc, x[0], x[1], x[2])
	case [4]float32:
		if u.Type == device.UniformMat2 {
			gl.UniformMatrix2fv(loc, 1, false, &x[0])
		} else {
			gl.Uniform4f(loc, x[0], x[1], x[2], x[3])
		}
	case [9]float32:
		gl.UniformMatrix3fv(loc, 1, false, &x[0])
	case [16]float32:
		gl.UniformMatrix4fv(loc, 1, false, &x[0])
	case []float32:
		if len(x) == 0 {
			return nil
		}
		switch u.Type {
		case device.UniformVec2:
			gl.Uniform2fv(loc, count, &x[0])
		case device.UniformVec3:
			gl.Uniform3fv(loc, count, &x[0])
		case device.UniformVec4:
			gl.Uniform4fv(loc, count, &x[0])
		case device.UniformMat2:
			gl.UniformMatrix2fv(loc, count, false, &x[0])
		case device.UniformMat3:
			gl.UniformMatrix3fv(loc, count, false, &x[0])
		case device.UniformMat4:
			gl.UniformMatrix4fv(loc, count, false, &x[0])
		default:
			gl.Uniform1fv(loc, count, &x[0])
		}
	case int32:
		gl.Uniform1i(loc, x)
	case [2]int32:
		gl.Uniform2i(loc, x[0], x[1])
	case [3]int32:
		gl.Uniform3i(loc, x[0], x[1], x[2])
	case [4]int32:
		gl.Uniform4i(loc, x[0], x[1], x[2], x[3])
	case []int32:
		if len(x) == 0 {
			return nil
		}
		switch u.Type {
		case device.UniformIVec2:
			gl.Uniform2iv(loc, count, &x[0])
		case device.UniformIVec3:
			gl.Uniform3iv(loc, count, &x[0])
		case device.UniformIVec4:
			gl.Uniform4iv(loc, count, &x[0])
		default:
			gl.Uniform1iv(loc, count, &x[0])
		}
	case bool:
		var i int32
		if x {
			i = 1
		}
		gl.Uniform1i(loc, i)
	default:
		return fmt.Errorf("opengl: uniform %s: unsupported value %T", u.Name, v)
	}
	return nil
}

// flush uploads dirty uniform blocks and binds every block buffer to its
// binding point.
func (p *Program) flush() {
	for _, b := range p.blocks {
		if len(b.data) == 0 {
			continue
		}
		gl.BindBuffer(gl.UNIFORM_BUFFER, b.buffer)
		if b.dirty {
			gl.BufferSubData(gl.UNIFORM_BUFFER, 0, len(b.data), gl.Ptr(b.data))
			b.dirty = false
		}
		gl.BindBufferBase(gl.UNIFORM_BUFFER, b.binding, b.buffer)
	}
}
