// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glcmd

import (
	"fmt"

	"github.com/gogpu/glcmd/device"
	"github.com/gogpu/glcmd/internal/value"
)

// convertUniform converts v to the Go type the device expects for u.
//
//	float              float32
//	vec2, vec3, vec4   [2]float32, [3]float32, [4]float32
//	int                int32
//	ivec2..ivec4       [2]int32, [3]int32, [4]int32
//	bool               bool
//	mat2, mat3, mat4   [4]float32, [9]float32, [16]float32
//	arrays (Size > 1)  []float32 or []int32, flattened
func convertUniform(u device.UniformInfo, v any) (any, error) {
	n := u.Type.Components()
	if u.Size > 1 {
		n *= u.Size
	}
	switch u.Type {
	case device.UniformBool:
		if u.Size <= 1 {
			switch b := v.(type) {
			case bool:
				return b, nil
			default:
				if f, ok := value.Float(v); ok {
					return f != 0, nil
				}
			}
			return false, fmt.Errorf("expected bool, got %T", v)
		}
		fallthrough
	case device.UniformInt, device.UniformIVec2, device.UniformIVec3, device.UniformIVec4:
		fs, ok := value.Floats(v)
		if !ok || len(fs) != n {
			return nil, shapeError(u, n, v)
		}
		is := make([]int32, n)
		for i, f := range fs {
			is[i] = int32(f)
		}
		if u.Size > 1 {
			return is, nil
		}
		switch n {
		case 1:
			return is[0], nil
		case 2:
			return [2]int32(is), nil
		case 3:
			return [3]int32(is), nil
		default:
			return [4]int32(is), nil
		}
	}

	fs, ok := value.Floats(v)
	if !ok || len(fs) != n {
		return nil, shapeError(u, n, v)
	}
	if u.Size > 1 {
		return append([]float32(nil), fs...), nil
	}
	switch n {
	case 1:
		return fs[0], nil
	case 2:
		return [2]float32(fs), nil
	case 3:
		return [3]float32(fs), nil
	case 4:
		return [4]float32(fs), nil
	case 9:
		return [9]float32(fs), nil
	default:
		return [16]float32(fs), nil
	}
}

func shapeError(u device.UniformInfo, n int, v any) error {
	if fs, ok := value.Floats(v); ok {
		return fmt.Errorf("%s needs %d components, got %d", u.Type, n, len(fs))
	}
	return fmt.Errorf("%s cannot be set from %T", u.Type, v)
}

// attributeInput is a resolved attribute value: either a buffer binding or
// a constant vertex value.
type attributeInput struct {
	binding  *device.AttributeBinding
	constant [4]float32
}

func (in attributeInput) String() string {
	b := in.binding
	if b == nil {
		return fmt.Sprintf("constant%v", in.constant)
	}
	var id uint64
	if b.Buffer != nil {
		id = b.Buffer.ID()
	}
	return fmt.Sprintf("buffer#%d format=%d offset=%d stride=%d divisor=%d", id, b.Format, b.Offset, b.Stride, b.Divisor)
}

// convertAttribute accepts a device.Buffer, a device.AttributeBinding, a
// record {buffer, offset, stride, normalized, divisor, size}, or a constant
// number or vector of up to four components.
func convertAttribute(a device.AttributeInfo, v any) (attributeInput, error) {
	switch x := v.(type) {
	case device.Buffer:
		return attributeInput{binding: &device.AttributeBinding{Buffer: x, Format: a.Format}}, nil
	case device.AttributeBinding:
		if x.Format == 0 {
			x.Format = a.Format
		}
		return attributeInput{binding: &x}, nil
	case *device.AttributeBinding:
		b := *x
		if b.Format == 0 {
			b.Format = a.Format
		}
		return attributeInput{binding: &b}, nil
	case map[string]any:
		return attributeRecord(a, x)
	}
	c, ok := value.Vec4(v, 0)
	if !ok {
		return attributeInput{}, fmt.Errorf("cannot source attribute from %T", v)
	}
	return attributeInput{constant: c}, nil
}

func attributeRecord(a device.AttributeInfo, m map[string]any) (attributeInput, error) {
	if c, ok := m["constant"]; ok {
		v, ok := value.Vec4(c, 0)
		if !ok {
			return attributeInput{}, fmt.Errorf("constant: expected up to 4 numbers, got %T", c)
		}
		return attributeInput{constant: v}, nil
	}
	buf, ok := m["buffer"].(device.Buffer)
	if !ok {
		return attributeInput{}, fmt.Errorf("buffer: expected device.Buffer, got %T", m["buffer"])
	}
	b := &device.AttributeBinding{Buffer: buf, Format: a.Format}
	for _, f := range []struct {
		key string
		dst *int
	}{{"offset", &b.Offset}, {"stride", &b.Stride}, {"divisor", &b.Divisor}} {
		if v, ok := m[f.key]; ok {
			n, ok := value.Int(v)
			if !ok {
				return attributeInput{}, fmt.Errorf("%s: expected integer, got %T", f.key, v)
			}
			*f.dst = n
		}
	}
	if v, ok := m["size"]; ok {
		n, ok := value.Int(v)
		if !ok || n < 1 || n > 4 {
			return attributeInput{}, fmt.Errorf("size: expected 1..4, got %v", v)
		}
		b.Format = device.FloatFormat(n)
	}
	if v, ok := m["normalized"]; ok {
		nb, ok := v.(bool)
		if !ok {
			return attributeInput{}, fmt.Errorf("normalized: expected bool, got %T", v)
		}
		b.Normalized = nb
	}
	return attributeInput{binding: b}, nil
}
