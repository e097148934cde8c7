// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package shader reflects WGSL programs into the attribute and uniform
// lists a glcmd program exposes, and translates WGSL to GLSL ES 3.00 for
// OpenGL devices.
//
// WGSL is parsed and lowered with naga. A program is a vertex and a
// fragment source; both may be the same module holding two entry points.
//
// Attributes are the @location inputs of the vertex entry point, either
// plain arguments or members of a struct argument. Uniforms are the
// var<uniform> globals of both modules: struct-typed globals contribute
// one uniform per member, other globals one uniform under their own name.
// texture_2d and texture_cube globals become sampler2D and samplerCube
// uniforms; sampler globals are folded into them.
package shader
