// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glcmd

import "github.com/gogpu/glcmd/device"

// textureUnit is one texture binding point.
type textureUnit struct {
	tex  device.Texture
	pins int
	used uint64
}

// textureUnits assigns textures to units for sampler uniforms. A texture
// stays resident after it is unbound so rebinding it costs nothing; its
// unit is recycled least recently used first.
type textureUnits struct {
	dev   device.Device
	units []textureUnit
	clock uint64

	binds   uint64
	unbinds uint64
	uploads uint64
}

func newTextureUnits(dev device.Device, n int) *textureUnits {
	return &textureUnits{dev: dev, units: make([]textureUnit, n)}
}

// bind makes tex resident, pins it, and returns its unit.
func (t *textureUnits) bind(tex device.Texture) int {
	t.clock++
	t.binds++

	free := -1
	for i := range t.units {
		u := &t.units[i]
		if u.tex != nil && u.tex.ID() == tex.ID() {
			u.pins++
			u.used = t.clock
			return i
		}
		if u.pins == 0 && (free < 0 || u.used < t.units[free].used) {
			free = i
		}
	}
	if free < 0 {
		fail(ErrTextureUnits)
	}
	u := &t.units[free]
	u.tex = tex
	u.pins = 1
	u.used = t.clock
	t.dev.BindTexture(free, tex)
	t.uploads++
	return free
}

// unbind releases one pin on tex.
func (t *textureUnits) unbind(tex device.Texture) {
	t.unbinds++
	for i := range t.units {
		u := &t.units[i]
		if u.tex != nil && u.tex.ID() == tex.ID() {
			if u.pins > 0 {
				u.pins--
			}
			return
		}
	}
}

// forget drops residency without unbinding, after device loss.
func (t *textureUnits) forget() {
	for i := range t.units {
		t.units[i] = textureUnit{}
	}
}

// samplerTexture returns the texture a sampler value refers to.
func samplerTexture(v any) (device.Texture, bool) {
	// Framebuffers satisfy device.Texture too, so they are matched first.
	switch x := v.(type) {
	case device.Framebuffer:
		tex := x.ColorTexture()
		return tex, tex != nil
	case device.Texture:
		return x, true
	}
	return nil, false
}
