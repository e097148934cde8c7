// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package opengl implements device.Device on a desktop OpenGL 3.3 core
// context using github.com/go-gl/gl.
//
// The package is built only with the "opengl" build tag, since go-gl
// requires cgo and GL headers:
//
//	go build -tags opengl ./...
//
// The caller owns the window and must make a GL context current on the
// calling goroutine before New and for every later call:
//
//	runtime.LockOSThread()
//	// create a window and make its context current (GLFW, SDL, ...)
//	dev, err := opengl.New(width, height)
//	ctx, err := glcmd.NewContext(dev)
//
// Program sources are either GLSL (starting with a #version directive) or
// WGSL, which is translated to GLSL 3.30 core with the shader package.
// Active attributes and uniforms are introspected from the linked program.
// Uniforms declared inside a uniform block are reported without the block
// prefix and written through a per-block uniform buffer; WGSL uniform
// structs therefore expose their members by field name. A WGSL texture and
// sampler pair becomes one sampler uniform named "<texture>_<sampler>".
package opengl
