// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glcmd

import (
	"testing"

	"github.com/gogpu/glcmd/device"
	"github.com/gogpu/glcmd/device/recorder"
	"github.com/gogpu/glcmd/internal/emit"
)

func TestProgramCache(t *testing.T) {
	compiled := 0
	c := newProgramCache("test", func(device.Program) *emit.Procedure {
		compiled++
		env := emit.New()
		env.Proc("body", 0)
		return env.Compile().Proc("body")
	})

	p1, p2 := recorder.NewProgram(nil, nil), recorder.NewProgram(nil, nil)
	a := c.getOrCreate(p1)
	b := c.getOrCreate(p1)
	c.getOrCreate(p2)
	if a != b {
		t.Error("second lookup returned a different procedure")
	}
	if compiled != 2 || c.Len() != 2 {
		t.Errorf("compiled = %d, Len() = %d, want 2, 2", compiled, c.Len())
	}
	hits, misses := c.Stats()
	if hits != 1 || misses != 2 {
		t.Errorf("Stats() = %d, %d, want 1, 2", hits, misses)
	}

	c.evict(p1.ID())
	if c.Len() != 1 {
		t.Errorf("Len() after evict = %d, want 1", c.Len())
	}
	c.getOrCreate(p1)
	if compiled != 3 {
		t.Errorf("compiled = %d after evict, want 3", compiled)
	}

	c.reset()
	if c.Len() != 0 {
		t.Errorf("Len() after reset = %d, want 0", c.Len())
	}
}
