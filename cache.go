// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glcmd

import (
	"github.com/gogpu/glcmd/device"
	"github.com/gogpu/glcmd/internal/emit"
)

// programCache holds procedures specialized for one program each. It is
// used when a command's program is only known at invocation time.
//
// The cache is keyed by program ID. Entries are built on first use by
// compile and live until the program is destroyed through
// Context.DestroyProgram.
type programCache struct {
	name    string
	entries map[uint64]*emit.Procedure
	compile func(p device.Program) *emit.Procedure

	hits   uint64
	misses uint64
}

func newProgramCache(name string, compile func(device.Program) *emit.Procedure) *programCache {
	return &programCache{
		name:    name,
		entries: make(map[uint64]*emit.Procedure),
		compile: compile,
	}
}

// getOrCreate returns the procedure for p, compiling it on a miss.
func (c *programCache) getOrCreate(p device.Program) *emit.Procedure {
	if proc, ok := c.entries[p.ID()]; ok {
		c.hits++
		return proc
	}
	proc := c.compile(p)
	c.entries[p.ID()] = proc
	c.misses++
	return proc
}

// evict drops the entry for a program ID.
func (c *programCache) evict(id uint64) {
	delete(c.entries, id)
}

// Len returns the number of cached procedures.
func (c *programCache) Len() int { return len(c.entries) }

// Stats returns cache hit and miss counts.
func (c *programCache) Stats() (hits, misses uint64) { return c.hits, c.misses }

// reset drops every entry.
func (c *programCache) reset() {
	clear(c.entries)
}
