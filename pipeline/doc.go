// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package pipeline bridges the WebGL-like device state model to WebGPU
// render pipelines.
//
// WebGL sets fixed-function state piecemeal and draws against whatever is
// current. WebGPU bakes most of that state into immutable render pipelines
// and leaves only a few values dynamic (viewport, scissor, blend constant,
// stencil reference). This package closes the gap in three layers:
//
//   - [Translate] maps a [Snapshot] of GL state onto gputypes and hal
//     pipeline state plus the dynamic remainder.
//   - [Cache] hashes pipeline descriptors with FNV-1a and creates each
//     distinct pipeline once through a caller supplied [Factory].
//   - [Bridge] decorates a [device.Device], shadows every state call and
//     resolves the pipeline for each draw before forwarding it.
//
// The bridge never creates a GPU device. The host passes its
// gpucontext.DeviceProvider, whose surface format selects the color target
// format of the default framebuffer.
//
// Some GL state has no WebGPU counterpart and is dropped by [Translate]:
// dithering, line width other than 1 and the depth range outside [0, 1].
package pipeline
