// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package opengl

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/gogpu/glcmd/device"
)

// member locates a uniform inside a uniform block.
type member struct {
	block        int
	offset       int
	arrayStride  int
	matrixStride int
}

// uniformBlock is the CPU copy of a uniform block, uploaded before a draw
// when dirty.
type uniformBlock struct {
	binding uint32
	buffer  uint32
	data    []byte
	dirty   bool
}

// memberName returns the name an introspected uniform is reported under.
// Block members lose their block or instance prefix and array uniforms
// lose their "[0]" suffix.
func memberName(name string, inBlock bool) string {
	name = strings.TrimSuffix(name, "[0]")
	if inBlock {
		if i := strings.LastIndexByte(name, '.'); i >= 0 {
			name = name[i+1:]
		}
	}
	return name
}

// matrixShape returns the column and row counts of a uniform type.
// Non-matrix types are a single column.
func matrixShape(t device.UniformType) (cols, rows int) {
	switch t {
	case device.UniformMat2:
		return 2, 2
	case device.UniformMat3:
		return 3, 3
	case device.UniformMat4:
		return 4, 4
	default:
		return 1, t.Components()
	}
}

// writeMember stores a converted uniform value into block data using the
// std140 offsets reported by the driver.
func writeMember(data []byte, m member, u device.UniformInfo, v any) error {
	bits, err := scalarBits(v)
	if err != nil {
		return fmt.Errorf("opengl: uniform %s: %w", u.Name, err)
	}
	cols, rows := matrixShape(u.Type)
	per := cols * rows
	size := max(u.Size, 1)
	if len(bits) != per*size {
		return fmt.Errorf("opengl: uniform %s: got %d components, want %d", u.Name, len(bits), per*size)
	}
	matrixStride := m.matrixStride
	if matrixStride == 0 {
		matrixStride = rows * 4
	}
	for i := range size {
		for c := range cols {
			for r := range rows {
				at := m.offset + i*m.arrayStride + c*matrixStride + r*4
				if at < 0 || at+4 > len(data) {
					return fmt.Errorf("opengl: uniform %s: offset %d outside block of %d bytes", u.Name, at, len(data))
				}
				binary.LittleEndian.PutUint32(data[at:], bits[i*per+c*rows+r])
			}
		}
	}
	return nil
}

// scalarBits flattens a converted uniform value to 32-bit words.
func scalarBits(v any) ([]uint32, error) {
	switch x := v.(type) {
	case float32:
		return []uint32{math.Float32bits(x)}, nil
	case [2]float32:
		return floatBits(x[:]), nil
	case [3]float32:
		return floatBits(x[:]), nil
	case [4]float32:
		return floatBits(x[:]), nil
	case [9]float32:
		return floatBits(x[:]), nil
	case [16]float32:
		return floatBits(x[:]), nil
	case []float32:
		return floatBits(x), nil
	case int32:
		return []uint32{uint32(x)}, nil
	case [2]int32:
		return intBits(x[:]), nil
	case [3]int32:
		return intBits(x[:]), nil
	case [4]int32:
		return intBits(x[:]), nil
	case []int32:
		return intBits(x), nil
	case bool:
		if x {
			return []uint32{1}, nil
		}
		return []uint32{0}, nil
	default:
		return nil, fmt.Errorf("unsupported value %T", v)
	}
}

func floatBits(fs []float32) []uint32 {
	out := make([]uint32, len(fs))
	for i, f := range fs {
		out[i] = math.Float32bits(f)
	}
	return out
}

func intBits(is []int32) []uint32 {
	out := make([]uint32, len(is))
	for i, v := range is {
		out[i] = uint32(v)
	}
	return out
}
