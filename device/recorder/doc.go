// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package recorder provides an in-memory device.Device that records every
// call as a typed command.
//
// The recorder never touches a GPU. It keeps a mirror of the device state
// it was told to set, counts commands by type, and hands out resources
// (buffers, textures, framebuffers, index buffers, vertex arrays) with
// stable identities. Programs are either declared directly with
// NewProgram or created from WGSL sources, whose inputs are reflected
// with the shader package.
//
// # Example
//
//	rec := recorder.New(640, 480)
//	ctx, _ := glcmd.NewContext(rec)
//	cmd, _ := ctx.Compile(spec)
//	_ = cmd.Draw(nil)
//	fmt.Println(rec.Count(recorder.CmdDraw))
//
// Importing the package registers the "recorder" device (640x480).
package recorder

import "github.com/gogpu/glcmd/device"

func init() {
	device.Register("recorder", func() (device.Device, error) {
		return New(640, 480), nil
	})
}
