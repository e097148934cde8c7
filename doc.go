// Package glcmd compiles declarative draw commands for a WebGL-like
// immediate-mode device into specialized procedures.
//
// # Overview
//
// A command is described by a Spec: the shader program, its uniforms and
// attributes, draw parameters, and any subset of the fixed-function state
// (blend, depth, stencil, cull, scissor, viewport, ...). Each value is
// either a literal or a dynamic source resolved at invocation time:
//
//   - FromProp reads the per-call props record
//   - FromContext reads the render context (tick, viewport size, values
//     staged by enclosing scopes)
//   - FromThis reads the receiver bound with Command.Bind
//   - FromFunc calls a Go function
//
// Compile classifies every option by what it depends on and emits three
// procedures that share one analysis: draw (one call), batch (many calls
// with invariant work hoisted out of the loop) and scope (stage overrides,
// run nested commands, restore).
//
// # Quick Start
//
//	ctx, err := glcmd.NewContext(dev)
//	if err != nil {
//	    return err
//	}
//	cmd, err := ctx.Compile(glcmd.Spec{
//	    Vert:       vertSource,
//	    Frag:       fragSource,
//	    Attributes: map[string]any{"position": positions},
//	    Uniforms:   map[string]any{"color": glcmd.FromProp("color")},
//	    Count:      3,
//	    State:      map[string]any{"depth.enable": false},
//	})
//	if err != nil {
//	    return err
//	}
//	err = cmd.Draw(glcmd.Props{"color": []float32{1, 0, 0, 1}})
//
// # State tracking
//
// The Context keeps two copies of every state field: current (applied to
// the device) and next (staged by scopes). Compiled procedures set only the
// fields their command overrides and rely on a dirty-gated poll for the
// rest, so the device sees one call per field that actually changes.
//
// # Related packages
//
//   - device: the device contract, a null device and the driver registry
//   - device/recorder: a recording device for tests and tools
//   - shader: WGSL reflection and GLSL translation via naga
//   - pipeline: maps GL state onto cached WebGPU render pipelines
//   - specfile: commands declared in TOML files
//   - backend/opengl: a go-gl device (build tag opengl)
//
// # Threading
//
// A Context and its commands belong to one goroutine, like the device.
package glcmd
