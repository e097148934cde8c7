// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package value

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestFloat(t *testing.T) {
	tests := []struct {
		in   any
		want float32
		ok   bool
	}{
		{1, 1, true},
		{2.5, 2.5, true},
		{float32(0.25), 0.25, true},
		{int64(-3), -3, true},
		{"1", 0, false},
		{nil, 0, false},
	}
	for _, tt := range tests {
		got, ok := Float(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Float(%v) = %v, %v, want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestInt(t *testing.T) {
	if n, ok := Int(3.0); !ok || n != 3 {
		t.Errorf("Int(3.0) = %d, %v", n, ok)
	}
	if _, ok := Int(3.5); ok {
		t.Error("Int(3.5) accepted a fractional value")
	}
}

func TestFloats(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int
	}{
		{"slice64", []float64{1, 2, 3}, 3},
		{"array", [4]float32{1, 2, 3, 4}, 4},
		{"mixed", []any{1, 2.5}, 2},
		{"vec3", mgl32.Vec3{1, 2, 3}, 3},
		{"mat4", mgl32.Ident4(), 16},
		{"scalar", 7, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Floats(tt.in)
			if !ok || len(got) != tt.want {
				t.Errorf("Floats(%v) = %v, %v, want %d components", tt.in, got, ok, tt.want)
			}
		})
	}
	if _, ok := Floats([]any{1, "x"}); ok {
		t.Error("Floats accepted a non-numeric element")
	}
}

func TestVec4(t *testing.T) {
	v, ok := Vec4([]float64{1, 0, 0, 1}, 4)
	if !ok || v != [4]float32{1, 0, 0, 1} {
		t.Errorf("Vec4 = %v, %v", v, ok)
	}
	if _, ok := Vec4([]float64{1, 0, 0}, 4); ok {
		t.Error("Vec4 accepted 3 components when 4 are required")
	}
}

func TestLookup(t *testing.T) {
	props := map[string]any{"a": map[string]any{"b": 2}}
	if v, ok := Lookup(props, []string{"a", "b"}); !ok || v != 2 {
		t.Errorf("Lookup(a.b) = %v, %v", v, ok)
	}
	if _, ok := Lookup(props, []string{"a", "c"}); ok {
		t.Error("Lookup found a missing key")
	}
}
