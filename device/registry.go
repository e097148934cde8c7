// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package device

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
)

// Factory creates a new device instance.
// Factories are registered via Register() and called by Open().
type Factory func() (Device, error)

var (
	registryMu sync.RWMutex
	factories  = make(map[string]Factory)
)

// Register makes a device factory available by name. It is typically called
// from init() in a backend package.
//
// Register panics if factory is nil or the name is already taken.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if factory == nil {
		panic("device: Register factory is nil")
	}
	if _, dup := factories[name]; dup {
		panic("device: Register called twice for " + name)
	}
	factories[name] = factory
}

// Unregister removes a device factory. Used by tests.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(factories, name)
}

// Open creates a device by registered name.
func Open(name string) (Device, error) {
	registryMu.RLock()
	factory, ok := factories[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("device: unknown device %q (forgotten import?)", name)
	}
	d, err := factory()
	if err != nil {
		return nil, fmt.Errorf("device: open %q: %w", name, err)
	}
	return d, nil
}

// Names returns the registered device names in sorted order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var lastID atomic.Uint64

// NextID returns a fresh handle identity. Backends use it so that IDs are
// unique across devices.
func NextID() uint64 {
	return lastID.Add(1)
}

func init() {
	Register("null", func() (Device, error) { return NullDevice{}, nil })
}
