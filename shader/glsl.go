// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

import (
	"fmt"
	"strings"

	"github.com/gogpu/naga/glsl"
	"github.com/gogpu/naga/ir"
)

// Stage selects the entry point to translate.
type Stage uint8

const (
	StageVertex Stage = iota
	StageFragment
)

func (s Stage) String() string {
	if s == StageFragment {
		return "fragment"
	}
	return "vertex"
}

// Target is the GLSL dialect produced by translation.
type Target uint8

const (
	// TargetES300 is GLSL ES 3.00, accepted by WebGL 2 and GLES 3 contexts.
	TargetES300 Target = iota

	// TargetCore330 is GLSL 3.30 core, accepted by desktop GL 3.3 contexts.
	TargetCore330
)

func (t Target) String() string {
	if t == TargetCore330 {
		return "330 core"
	}
	return "300 es"
}

func (t Target) version() glsl.Version {
	if t == TargetCore330 {
		return glsl.Version330
	}
	return glsl.VersionES300
}

// IsGLSL reports whether source is already GLSL, i.e. starts with a
// #version directive, and needs no translation.
func IsGLSL(source string) bool {
	return strings.HasPrefix(strings.TrimSpace(source), "#version")
}

// ToGLSL translates the first entry point of the given stage in a WGSL
// source to GLSL ES 3.00.
func ToGLSL(source string, stage Stage) (string, error) {
	return ToGLSLTarget(source, stage, TargetES300)
}

// ToGLSLTarget is ToGLSL with an explicit dialect.
func ToGLSLTarget(source string, stage Stage, target Target) (string, error) {
	m, err := Parse(source)
	if err != nil {
		return "", err
	}
	return ModuleToGLSLTarget(m, stage, target)
}

// ModuleToGLSL translates a lowered module to GLSL ES 3.00.
func ModuleToGLSL(m *ir.Module, stage Stage) (string, error) {
	return ModuleToGLSLTarget(m, stage, TargetES300)
}

// ModuleToGLSLTarget translates a lowered module to the given dialect.
func ModuleToGLSLTarget(m *ir.Module, stage Stage, target Target) (string, error) {
	irStage := ir.StageVertex
	if stage == StageFragment {
		irStage = ir.StageFragment
	}
	ep := entryPoint(m, irStage)
	if ep == nil {
		if stage == StageFragment {
			return "", ErrNoFragmentEntry
		}
		return "", ErrNoVertexEntry
	}
	src, _, err := glsl.Compile(m, glsl.Options{
		LangVersion:        target.version(),
		EntryPoint:         ep.Name,
		ForceHighPrecision: true,
	})
	if err != nil {
		return "", fmt.Errorf("shader: %s entry %s (%s): %w", stage, ep.Name, target, err)
	}
	return src, nil
}
