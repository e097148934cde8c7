// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package value coerces loosely typed option values (numbers of any Go
// kind, slices, arrays, mgl32 vectors and matrices) into the concrete
// types the device expects.
package value

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Float returns v as a float32 if v is any Go number.
func Float(v any) (float32, bool) {
	switch x := v.(type) {
	case float32:
		return x, true
	case float64:
		return float32(x), true
	case int:
		return float32(x), true
	case int32:
		return float32(x), true
	case int64:
		return float32(x), true
	case uint32:
		return float32(x), true
	case uint8:
		return float32(x), true
	case uint64:
		return float32(x), true
	}
	return 0, false
}

// Int returns v as an int if v is an integral Go number. Floats are
// accepted only when they hold an integral value (TOML and JSON decoders
// produce them).
func Int(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case int32:
		return int(x), true
	case int64:
		return int(x), true
	case uint32:
		return int(x), true
	case uint8:
		return int(x), true
	case uint64:
		return int(x), true
	case float64:
		if x == float64(int(x)) {
			return int(x), true
		}
	case float32:
		if x == float32(int(x)) {
			return int(x), true
		}
	}
	return 0, false
}

// Floats flattens a numeric vector or matrix value.
// It returns a fresh slice when the input is not already []float32.
func Floats(v any) ([]float32, bool) {
	switch x := v.(type) {
	case []float32:
		return x, true
	case [2]float32:
		return x[:], true
	case [3]float32:
		return x[:], true
	case [4]float32:
		return x[:], true
	case [9]float32:
		return x[:], true
	case [16]float32:
		return x[:], true
	case mgl32.Vec2:
		return x[:], true
	case mgl32.Vec3:
		return x[:], true
	case mgl32.Vec4:
		return x[:], true
	case mgl32.Mat2:
		return x[:], true
	case mgl32.Mat3:
		return x[:], true
	case mgl32.Mat4:
		return x[:], true
	case []float64:
		out := make([]float32, len(x))
		for i, f := range x {
			out[i] = float32(f)
		}
		return out, true
	case []int:
		out := make([]float32, len(x))
		for i, n := range x {
			out[i] = float32(n)
		}
		return out, true
	case []int64:
		out := make([]float32, len(x))
		for i, n := range x {
			out[i] = float32(n)
		}
		return out, true
	case []any:
		out := make([]float32, len(x))
		for i, e := range x {
			f, ok := Float(e)
			if !ok {
				return nil, false
			}
			out[i] = f
		}
		return out, true
	}
	if f, ok := Float(v); ok {
		return []float32{f}, true
	}
	return nil, false
}

// Vec4 returns the first four components of v, requiring exactly n
// components when n > 0.
func Vec4(v any, n int) ([4]float32, bool) {
	var out [4]float32
	fs, ok := Floats(v)
	if !ok || len(fs) > 4 || (n > 0 && len(fs) != n) {
		return out, false
	}
	copy(out[:], fs)
	return out, true
}

// Bools flattens a boolean vector.
func Bools(v any) ([]bool, bool) {
	switch x := v.(type) {
	case []bool:
		return x, true
	case [4]bool:
		return x[:], true
	case []any:
		out := make([]bool, len(x))
		for i, e := range x {
			b, ok := e.(bool)
			if !ok {
				return nil, false
			}
			out[i] = b
		}
		return out, true
	}
	return nil, false
}

// Record returns v as a string-keyed record.
func Record(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

// Lookup walks a dotted path through nested records.
func Lookup(v any, path []string) (any, bool) {
	for _, k := range path {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, false
		}
		if v, ok = m[k]; !ok {
			return nil, false
		}
	}
	return v, true
}
