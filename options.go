// Copyright 2024 The Cockroach Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package radixmap

// option provide an interface to do work on Map while it is being created.
type option[V any] interface {
	apply(m *Map[V])
}

type destructorOption[V any] struct {
	destructor func(V)
}

func (op destructorOption[V]) apply(m *Map[V]) {
	m.destructor = op.destructor
}

// WithDestructor is an option to install a per-element cleanup function.
// The destructor is invoked exactly once for an element when its entry is
// deleted, and once for every element still present when the map is
// closed. It is the caller's release hook in reference mode, where the
// map stores pointers to values it does not own.
func WithDestructor[V any](destructor func(V)) option[V] {
	return destructorOption[V]{destructor}
}

// Allocator specifies an interface for allocating and releasing the slot
// tables used by a Map. The default allocator utilizes Go's builtin
// make() and allows the GC to reclaim memory.
//
// The map never resizes a table in place: every growth event is a fresh
// sub-table allocation, and no table is released before Close. If the
// allocator is manually managing memory then Map.Close must be called in
// order to ensure FreeSlots is called for every allocated table.
type Allocator[V any] interface {
	// AllocSlots should return a zeroed slice equivalent to
	// make([]Slot[V], n).
	AllocSlots(n int) []Slot[V]

	// FreeSlots can optionally release the memory associated with the
	// supplied slice that is guaranteed to have been allocated by
	// AllocSlots.
	FreeSlots(v []Slot[V])
}

type defaultAllocator[V any] struct{}

func (defaultAllocator[V]) AllocSlots(n int) []Slot[V] {
	return make([]Slot[V], n)
}

func (defaultAllocator[V]) FreeSlots(v []Slot[V]) {
}

type allocatorOption[V any] struct {
	allocator Allocator[V]
}

func (op allocatorOption[V]) apply(m *Map[V]) {
	m.allocator = op.allocator
}

// WithAllocator is an option for specify the Allocator to use for a Map[V].
func WithAllocator[V any](allocator Allocator[V]) option[V] {
	return allocatorOption[V]{allocator}
}
