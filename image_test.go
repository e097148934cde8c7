// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glcmd

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/glcmd/device"
	"github.com/gogpu/glcmd/device/recorder"
)

func TestTextureFromImage(t *testing.T) {
	ctx, rec := newTestContext(t)

	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	img.Set(1, 1, color.NRGBA{B: 255, A: 255})

	tex, err := ctx.TextureFromImage(img, TextureOptions{Label: "checker"})
	if err != nil {
		t.Fatalf("TextureFromImage: %v", err)
	}
	if tex.Width() != 2 || tex.Height() != 2 {
		t.Errorf("size = %dx%d, want 2x2", tex.Width(), tex.Height())
	}
	pix := tex.(*recorder.Texture).Pixels()
	if pix[0] != 255 || pix[3] != 255 {
		t.Errorf("first texel = %v, want opaque red", pix[:4])
	}
	if rec.Count(recorder.CmdCreateTexture) != 1 {
		t.Errorf("CreateTexture count = %d, want 1", rec.Count(recorder.CmdCreateTexture))
	}
}

func TestTextureFromImagePowerOfTwo(t *testing.T) {
	ctx, _ := newTestContext(t)

	img := image.NewRGBA(image.Rect(10, 10, 13, 15))
	tex, err := ctx.TextureFromImage(img, TextureOptions{PowerOfTwo: true})
	if err != nil {
		t.Fatalf("TextureFromImage: %v", err)
	}
	if tex.Width() != 4 || tex.Height() != 8 {
		t.Errorf("size = %dx%d, want 4x8", tex.Width(), tex.Height())
	}
}

func TestTextureFromImageErrors(t *testing.T) {
	ctx, _ := newTestContext(t)
	if _, err := ctx.TextureFromImage(image.NewRGBA(image.Rect(0, 0, 0, 0)), TextureOptions{}); err == nil {
		t.Error("empty image accepted")
	}

	nctx, err := NewContext(device.NullDevice{})
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	_, err = nctx.TextureFromImage(image.NewRGBA(image.Rect(0, 0, 1, 1)), TextureOptions{})
	if !errors.Is(err, ErrNoTextureCreator) {
		t.Errorf("error = %v, want ErrNoTextureCreator", err)
	}
}

func TestNextPowerOfTwo(t *testing.T) {
	for n, want := range map[int]int{0: 1, 1: 1, 2: 2, 3: 4, 5: 8, 64: 64, 65: 128} {
		if got := nextPowerOfTwo(n); got != want {
			t.Errorf("nextPowerOfTwo(%d) = %d, want %d", n, got, want)
		}
	}
}
