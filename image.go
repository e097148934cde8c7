// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glcmd

import (
	"fmt"
	"image"
	"math/bits"

	"github.com/gogpu/gputypes"
	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/glcmd/device"
)

// TextureOptions controls TextureFromImage.
type TextureOptions struct {
	Label string
	// PowerOfTwo resamples the image up to the next power-of-two size,
	// which WebGL 1 style devices need for mipmaps and repeat wrapping.
	PowerOfTwo bool
	Mipmap     bool
}

// TextureFromImage uploads img as an RGBA8 texture. The device must
// implement device.TextureCreator.
func (c *Context) TextureFromImage(img image.Image, opts TextureOptions) (device.Texture, error) {
	tc, ok := c.dev.(device.TextureCreator)
	if !ok {
		return nil, ErrNoTextureCreator
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("glcmd: empty image %v", b)
	}
	if opts.PowerOfTwo {
		w, h = nextPowerOfTwo(w), nextPowerOfTwo(h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		xdraw.Draw(dst, dst.Bounds(), img, b.Min, xdraw.Src)
	} else {
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	}

	tex, err := tc.CreateTexture(device.TextureDescriptor{
		Label:  opts.Label,
		Width:  w,
		Height: h,
		Format: gputypes.TextureFormatRGBA8Unorm,
		Mipmap: opts.Mipmap,
	}, dst.Pix)
	if err != nil {
		return nil, fmt.Errorf("glcmd: texture %q: %w", opts.Label, err)
	}
	c.log.Debug("glcmd: texture uploaded", "label", opts.Label, "width", w, "height", h)
	return tex, nil
}

func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}
