// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glstate

import (
	"github.com/gogpu/glcmd/device"
	"github.com/gogpu/glcmd/internal/emit"
)

// State holds the applied (current) and staged (next) values of every
// field for one device. It is owned by a single render context and is not
// safe for concurrent use.
type State struct {
	dev     device.Device
	current [NumFields]any
	next    [NumFields]any

	// Dirty marks that current may differ from next for fields no command
	// is overriding, so the next Poll must compare them.
	Dirty bool

	applies uint64
	box     device.Rect
}

// New returns a State with every field at its initial value. Viewport and
// scissor box cover the drawing buffer. Nothing is applied to dev; call
// Refresh to synchronize the device.
func New(dev device.Device) *State {
	s := &State{dev: dev}
	for i := range fields {
		s.next[i] = fields[i].Init
	}
	w, h := dev.DrawingBufferSize()
	s.box = device.Rect{Width: w, Height: h}
	s.next[ScissorBox] = s.box
	s.next[Viewport] = s.box
	s.current = s.next
	return s
}

// Current returns the last value applied to the device for field i.
func (s *State) Current(i int) any { return s.current[i] }

// Next returns the staged value of field i.
func (s *State) Next(i int) any { return s.next[i] }

// SetNext stages v for field i.
func (s *State) SetNext(i int, v any) { s.next[i] = v }

// Diff applies v to field i if it differs from the current value.
// It reports whether a device call was issued.
func (s *State) Diff(i int, v any) bool {
	if v == s.current[i] {
		return false
	}
	fields[i].Apply(s.dev, v)
	s.current[i] = v
	s.applies++
	return true
}

// Poll brings every field outside skip from next into current, applying
// only the fields that differ. It returns the number of device calls.
func (s *State) Poll(skip Mask) int {
	n := 0
	for i := 0; i < NumFields; i++ {
		if skip.Has(i) {
			continue
		}
		if s.Diff(i, s.next[i]) {
			n++
		}
	}
	return n
}

// Refresh reapplies every field from next regardless of current, for use
// after the device lost its state.
func (s *State) Refresh() {
	for i := range fields {
		s.Force(i, s.next[i])
	}
	s.Dirty = false
}

// Force applies v to field i unconditionally.
func (s *State) Force(i int, v any) {
	fields[i].Apply(s.dev, v)
	s.current[i] = v
	s.applies++
}

// Resize moves the default viewport and scissor box to a new drawing
// buffer size. Staged values that differ from the old default are kept.
func (s *State) Resize(width, height int) {
	old := s.box
	s.box = device.Rect{Width: width, Height: height}
	for _, i := range [...]int{ScissorBox, Viewport} {
		if s.next[i] == old {
			s.next[i] = s.box
			s.Dirty = true
		}
	}
}

// Applies returns the number of state calls issued to the device.
func (s *State) Applies() uint64 { return s.applies }

// NextSlot returns field i of the staging buffer as an emit slot.
func (s *State) NextSlot(i int) emit.Slot { return nextSlot{s: s, i: i} }

type nextSlot struct {
	s *State
	i int
}

func (n nextSlot) Load() any      { return n.s.next[n.i] }
func (n nextSlot) Store(v any)    { n.s.next[n.i] = v }
func (n nextSlot) String() string { return "next." + fields[n.i].Name }
