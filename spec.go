// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glcmd

// Spec declares a command. Every field is optional; nil means "not set".
// Leaves are literals or Dynamic values. A []any or map[string]any that
// contains a Dynamic anywhere inside is resolved as one dynamic value.
type Spec struct {
	// Vert and Frag are shader sources (string or Dynamic). They must be
	// set together and exclude Program.
	Vert any
	Frag any

	// Program is a linked device.Program or a Dynamic producing one. When
	// neither Program nor Vert/Frag is set, the program staged by an
	// enclosing scope is used.
	Program any

	// Uniforms and Attributes are keyed by the names the program reports.
	// Program inputs not listed here are taken from enclosing scopes.
	Uniforms   map[string]any
	Attributes map[string]any

	// Context adds or overrides render-context variables for the duration
	// of the command (and, for scopes, of everything run inside).
	Context map[string]any

	// Primitive is a gputypes.PrimitiveTopology or one of "points",
	// "lines", "line strip", "triangles", "triangle strip".
	Primitive any
	Count     any
	Offset    any
	// Instances selects instanced drawing: > 0 draws that many instances,
	// 0 draws nothing, < 0 draws without instancing.
	Instances any
	// Elements is a device.Elements index buffer.
	Elements any
	// Vao is a device.VertexArray. It excludes Attributes.
	Vao any

	// Framebuffer is a device.Framebuffer or DefaultFramebuffer.
	Framebuffer any

	// Profile enables CPU-time profiling of the command (bool or Dynamic).
	Profile any

	// State overrides fixed-function state, keyed by regl option names
	// such as "depth.enable", "blend.func" or "viewport".
	State map[string]any
}

type defaultFramebuffer struct{}

// DefaultFramebuffer selects the drawing buffer as render target.
var DefaultFramebuffer any = defaultFramebuffer{}
