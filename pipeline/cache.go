// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pipeline

import (
	"encoding/binary"
	"errors"
	"hash"
	"hash/fnv"
	"math"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/glcmd/device"
)

// Pipeline cache errors.
var (
	// ErrNilDescriptor is returned when resolving a nil descriptor.
	ErrNilDescriptor = errors.New("pipeline: descriptor is nil")

	// ErrNilFactory is returned when a cache miss has no factory to call.
	ErrNilFactory = errors.New("pipeline: factory is nil")

	// ErrNoProgram is returned when a descriptor has no program.
	ErrNoProgram = errors.New("pipeline: descriptor has no program")
)

// Descriptor identifies one render pipeline: the program, its vertex
// buffer layouts and the baked part of the translated state.
type Descriptor struct {
	Program device.Program
	Buffers []gputypes.VertexBufferLayout
	State   State
}

// Factory creates the pipeline for a descriptor on a cache miss.
type Factory func(desc *Descriptor) (hal.RenderPipeline, error)

// Stages holds the GPU objects a HAL pipeline descriptor references.
type Stages struct {
	Layout        hal.PipelineLayout
	Vertex        hal.ShaderModule
	VertexEntry   string
	Fragment      hal.ShaderModule
	FragmentEntry string
}

// HAL expands the descriptor into a hal.RenderPipelineDescriptor.
func (d *Descriptor) HAL(label string, st Stages) *hal.RenderPipelineDescriptor {
	ds := d.State.DepthStencil
	return &hal.RenderPipelineDescriptor{
		Label:  label,
		Layout: st.Layout,
		Vertex: hal.VertexState{
			Module:     st.Vertex,
			EntryPoint: st.VertexEntry,
			Buffers:    d.Buffers,
		},
		Primitive:    d.State.Primitive,
		DepthStencil: &ds,
		Multisample:  d.State.Multisample,
		Fragment: &hal.FragmentState{
			Module:     st.Fragment,
			EntryPoint: st.FragmentEntry,
			Targets:    []gputypes.ColorTargetState{d.State.ColorTarget},
		},
	}
}

// VertexBuffers builds one vertex buffer layout per bound attribute,
// ordered by shader location.
func VertexBuffers(bindings map[int]device.AttributeBinding) []gputypes.VertexBufferLayout {
	if len(bindings) == 0 {
		return nil
	}
	locs := make([]int, 0, len(bindings))
	for loc := range bindings {
		locs = append(locs, loc)
	}
	slices.Sort(locs)

	layouts := make([]gputypes.VertexBufferLayout, 0, len(locs))
	for _, loc := range locs {
		b := bindings[loc]
		step := gputypes.VertexStepModeVertex
		if b.Divisor > 0 {
			step = gputypes.VertexStepModeInstance
		}
		stride := b.Stride
		if stride == 0 {
			stride = 4 * device.FormatComponents(b.Format)
		}
		layouts = append(layouts, gputypes.VertexBufferLayout{
			ArrayStride: uint64(stride), //nolint:gosec // strides are small and non-negative
			StepMode:    step,
			Attributes: []gputypes.VertexAttribute{{
				Format:         b.Format,
				Offset:         uint64(b.Offset), //nolint:gosec // offsets are non-negative
				ShaderLocation: uint32(loc),      //nolint:gosec // locations are bounded by GPU limits
			}},
		})
	}
	return layouts
}

type cacheEntry struct {
	program  uint64
	pipeline hal.RenderPipeline
}

// Cache stores render pipelines indexed by descriptor hash.
//
// Cache is safe for concurrent use. Lookups take a read lock; creation
// double-checks under the write lock so each pipeline is created once.
type Cache struct {
	mu      sync.RWMutex
	entries map[uint64]cacheEntry

	hits   uint64
	misses uint64
}

// NewCache creates an empty pipeline cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[uint64]cacheEntry)}
}

// GetOrCreate returns the cached pipeline for desc, calling factory on a
// miss.
func (c *Cache) GetOrCreate(desc *Descriptor, factory Factory) (hal.RenderPipeline, error) {
	if desc == nil {
		return nil, ErrNilDescriptor
	}
	if desc.Program == nil {
		return nil, ErrNoProgram
	}
	key := Hash(desc)

	c.mu.RLock()
	if e, ok := c.entries[key]; ok {
		c.mu.RUnlock()
		atomic.AddUint64(&c.hits, 1)
		return e.pipeline, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		atomic.AddUint64(&c.hits, 1)
		return e.pipeline, nil
	}
	if factory == nil {
		return nil, ErrNilFactory
	}
	p, err := factory(desc)
	if err != nil {
		return nil, err
	}
	c.entries[key] = cacheEntry{program: desc.Program.ID(), pipeline: p}
	atomic.AddUint64(&c.misses, 1)
	slogger().Debug("pipeline: created", "program", desc.Program.ID(), "hash", key, "size", len(c.entries))
	return p, nil
}

// EvictProgram destroys and removes every pipeline built from program.
// It returns the number of pipelines removed.
func (c *Cache) EvictProgram(program device.Program) int {
	if program == nil {
		return 0
	}
	id := program.ID()
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for k, e := range c.entries {
		if e.program != id {
			continue
		}
		if e.pipeline != nil {
			e.pipeline.Destroy()
		}
		delete(c.entries, k)
		n++
	}
	return n
}

// Stats returns the number of cache hits and misses.
func (c *Cache) Stats() (hits, misses uint64) {
	return atomic.LoadUint64(&c.hits), atomic.LoadUint64(&c.misses)
}

// HitRate returns the cache hit rate (0.0 to 1.0), or 0 before any lookup.
func (c *Cache) HitRate() float64 {
	hits, misses := c.Stats()
	total := hits + misses
	if total == 0 {
		return 0.0
	}
	return float64(hits) / float64(total)
}

// Size returns the number of cached pipelines.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// DestroyAll destroys every cached pipeline and resets the statistics.
func (c *Cache) DestroyAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		if e.pipeline != nil {
			e.pipeline.Destroy()
		}
	}
	c.entries = make(map[uint64]cacheEntry)
	atomic.StoreUint64(&c.hits, 0)
	atomic.StoreUint64(&c.misses, 0)
}

// Hash computes the FNV-1a hash of the pipeline-relevant parts of desc.
// Dynamic state does not contribute.
func Hash(desc *Descriptor) uint64 {
	h := fnv.New64a()

	var program uint64
	if desc.Program != nil {
		program = desc.Program.ID()
	}
	hashWriteUint64(h, program)

	hashWriteUint32(h, uint32(len(desc.Buffers))) //nolint:gosec // bounded by GPU limits
	for i := range desc.Buffers {
		b := &desc.Buffers[i]
		hashWriteUint64(h, b.ArrayStride)
		hashWriteUint32(h, uint32(b.StepMode))
		hashWriteUint32(h, uint32(len(b.Attributes))) //nolint:gosec // bounded by GPU limits
		for _, a := range b.Attributes {
			hashWriteUint32(h, a.ShaderLocation)
			hashWriteUint32(h, uint32(a.Format))
			hashWriteUint64(h, a.Offset)
		}
	}

	s := &desc.State
	hashWriteUint32(h, uint32(s.Primitive.Topology))
	hashWriteUint32(h, uint32(s.Primitive.FrontFace))
	hashWriteUint32(h, uint32(s.Primitive.CullMode))
	if s.Primitive.StripIndexFormat != nil {
		hashWriteUint32(h, uint32(*s.Primitive.StripIndexFormat))
	} else {
		hashWriteUint32(h, 0)
	}

	ds := &s.DepthStencil
	hashWriteUint32(h, uint32(ds.Format))
	hashWriteBool(h, ds.DepthWriteEnabled)
	hashWriteUint32(h, uint32(ds.DepthCompare))
	for _, f := range [2]hal.StencilFaceState{ds.StencilFront, ds.StencilBack} {
		hashWriteUint32(h, uint32(f.Compare))
		hashWriteUint32(h, uint32(f.FailOp))
		hashWriteUint32(h, uint32(f.DepthFailOp))
		hashWriteUint32(h, uint32(f.PassOp))
	}
	hashWriteUint32(h, ds.StencilReadMask)
	hashWriteUint32(h, ds.StencilWriteMask)
	hashWriteUint32(h, uint32(ds.DepthBias)) //nolint:gosec // bit pattern only
	hashWriteUint32(h, math.Float32bits(ds.DepthBiasSlopeScale))
	hashWriteUint32(h, math.Float32bits(ds.DepthBiasClamp))

	ct := &s.ColorTarget
	hashWriteUint32(h, uint32(ct.Format))
	hashWriteUint32(h, uint32(ct.WriteMask))
	if ct.Blend != nil {
		hashWriteBool(h, true)
		hashWriteUint32(h, uint32(ct.Blend.Color.SrcFactor))
		hashWriteUint32(h, uint32(ct.Blend.Color.DstFactor))
		hashWriteUint32(h, uint32(ct.Blend.Color.Operation))
		hashWriteUint32(h, uint32(ct.Blend.Alpha.SrcFactor))
		hashWriteUint32(h, uint32(ct.Blend.Alpha.DstFactor))
		hashWriteUint32(h, uint32(ct.Blend.Alpha.Operation))
	} else {
		hashWriteBool(h, false)
	}

	hashWriteUint32(h, s.Multisample.Count)
	hashWriteUint64(h, s.Multisample.Mask)
	hashWriteBool(h, s.Multisample.AlphaToCoverageEnabled)

	return h.Sum64()
}

func hashWriteUint32(h hash.Hash64, v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, _ = h.Write(buf[:])
}

func hashWriteUint64(h hash.Hash64, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, _ = h.Write(buf[:])
}

func hashWriteBool(h hash.Hash64, v bool) {
	if v {
		_, _ = h.Write([]byte{1})
	} else {
		_, _ = h.Write([]byte{0})
	}
}
