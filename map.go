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

// Package radixmap implements a map from 128-bit keys to values built on a
// recursive, self-subdividing slot table. Rather than open-addressing or
// chaining, collisions are resolved by delegation: when two keys land on
// the same slot, the slot's occupant is re-homed into a freshly allocated
// sub-table of half the size and the slot becomes a pointer to that
// sub-table. Each level indexes the key with a bitmask and shifts the
// consumed bits away before descending, so the key is decomposed
// radix-style across the levels.
//
// # Layout
//
// A table is a contiguous slot array whose length is always a power of
// two, at least 4. Each slot is in one of three states:
//
//	empty:     no entry and no sub-table at this index
//	occupied:  a live entry; the slot holds the key and its element
//	delegated: the slot owns a sub-table holding every entry whose
//	           shifted key would have landed at this index
//
// Sub-table lengths halve at each level of delegation until they saturate
// at 4 slots, so even adversarial keys that collide at every level bottom
// out after a bounded number of levels: each level consumes at least 2
// bits of a 128-bit key. A collision costs one sub-table allocation and
// one extra indirection per level; the structure never rehashes, and a
// table never moves or shrinks once created.
//
// # Element storage
//
// Elements are stored inline in the slot record and copied by value. To
// store references to externally owned values instead, instantiate the
// map with a pointer type (e.g. Map[*T]); the map then owns only the
// pointer and the caller remains responsible for the pointee, typically
// via a destructor installed with WithDestructor.
package radixmap

import (
	"fmt"
	"math/bits"
	"strings"
)

const (
	debug      = false
	invariants = false

	// minLength is the slot count floor for every table. Sub-table lengths
	// halve per level of delegation until they saturate here.
	minLength = 4

	// defaultLength is the root slot count when no capacity is requested.
	defaultLength = 256
)

// slotState tags the three meanings of a slot. Punning empty/occupied
// against reserved values of the sub-table pointer word would shrink the
// slot but requires assuming heap pointers never equal the sentinels; the
// tag is kept explicit.
type slotState uint8

const (
	slotEmpty slotState = iota
	slotOccupied
	slotDelegated
)

// Slot is one record of a table: a key, a state tag, the inline element,
// and, when delegated, the exclusively owned sub-table. Slots appear in
// the public API only through the Allocator interface; the fields are not
// accessible to callers.
type Slot[V any] struct {
	key   Uint128
	state slotState
	sub   []Slot[V]
	elem  V
}

// Map is an unordered map from Uint128 keys to values of type V with Put,
// Get, and Delete operations. Collisions are handled by recursive
// sub-table delegation; see the package documentation for the design.
//
// A Map is NOT goroutine-safe.
type Map[V any] struct {
	// The allocator to use for the root and sub-table slot slices.
	allocator Allocator[V]
	// Invoked on an element when its entry is deleted and on every live
	// element when the map is closed. Nil means no cleanup.
	destructor func(V)
	// The root table. Allocated once by Init and never moved; growth only
	// ever allocates sub-tables below it.
	slots []Slot[V]
	// The number of live entries across all tables.
	used int
}

// New constructs a Map sized for the specified initial capacity. If
// initialCapacity is 0 the root table gets a default 256 slots; otherwise
// the root length is the largest power of two not exceeding the requested
// capacity, floored at 4. The zero value for a Map is not usable.
func New[V any](initialCapacity int, options ...option[V]) *Map[V] {
	m := &Map[V]{}
	m.Init(initialCapacity, options...)
	return m
}

// Init initializes a Map, allocating its root table. Useful to construct
// a Map without the pointer indirection New imposes; NewBytes uses it to
// initialize the embedded Map of a BytesMap.
func (m *Map[V]) Init(initialCapacity int, options ...option[V]) {
	*m = Map[V]{
		allocator: defaultAllocator[V]{},
	}
	for _, op := range options {
		op.apply(m)
	}

	length := defaultLength
	if initialCapacity > 0 {
		length = 1 << (bits.Len(uint(initialCapacity)) - 1)
		if length < minLength {
			length = minLength
		}
	}
	m.slots = m.allocator.AllocSlots(length)
}

// Put inserts an entry into the map. The key must not be present: slots
// are distinguished by occupancy alone, never by key comparison, so
// inserting a key equal to a live one is handled like any other collision
// and grows delegation chains without bound instead of overwriting the
// previous element. Delete the old entry first to replace it. A key whose
// entry has been deleted may be inserted again.
func (m *Map[V]) Put(key Uint128, elem V) {
	if debug {
		fmt.Printf("put(%016x%016x)\n", key.Hi, key.Lo)
	}
	m.put(m.slots, key, elem)
	m.used++
	if invariants {
		m.checkInvariants()
	}
}

func (m *Map[V]) put(slots []Slot[V], key Uint128, elem V) {
	s := &slots[key.Lo&uint64(len(slots)-1)]
	switch s.state {
	case slotEmpty:
		s.key = key
		s.elem = elem
		s.state = slotOccupied
	case slotOccupied:
		// Collision: re-home the occupant into a fresh sub-table, then fall
		// through to insert the new entry below it. Both descents shift by
		// the current length, not the sub-table's.
		sub := m.allocator.AllocSlots(nextLength(len(slots)))
		m.put(sub, shiftKey(s.key, len(slots)), s.elem)
		var zero V
		s.elem = zero
		s.sub = sub
		s.state = slotDelegated
		fallthrough
	case slotDelegated:
		m.put(s.sub, shiftKey(key, len(slots)), elem)
	}
}

// Get retrieves the element for the specified key, returning ok=false if
// the key is not present.
func (m *Map[V]) Get(key Uint128) (elem V, ok bool) {
	slots := m.slots
	for {
		s := &slots[key.Lo&uint64(len(slots)-1)]
		switch s.state {
		case slotOccupied:
			return s.elem, true
		case slotEmpty:
			return elem, false
		}
		key = shiftKey(key, len(slots))
		slots = s.sub
	}
}

// Delete removes the entry for the specified key, invoking the destructor
// on its element, and reports whether an entry was present. The slot
// becomes reusable, but no sub-table is merged or released before Close;
// delegation chains only ever grow.
func (m *Map[V]) Delete(key Uint128) bool {
	slots := m.slots
	for {
		s := &slots[key.Lo&uint64(len(slots)-1)]
		switch s.state {
		case slotOccupied:
			elem := s.elem
			*s = Slot[V]{}
			m.used--
			if m.destructor != nil {
				m.destructor(elem)
			}
			if invariants {
				m.checkInvariants()
			}
			return true
		case slotEmpty:
			return false
		}
		key = shiftKey(key, len(slots))
		slots = s.sub
	}
}

// Len returns the number of entries in the map.
func (m *Map[V]) Len() int {
	return m.used
}

// Close closes the map, invoking the destructor on every element still
// present and releasing every table back to the configured allocator. It
// is unnecessary to close a map using the default allocator unless a
// destructor needs to run. It is invalid to use a Map after it has been
// closed, though Close itself is idempotent.
func (m *Map[V]) Close() {
	if m.slots != nil {
		m.closeSlots(m.slots)
		m.slots = nil
	}
	m.used = 0
	m.allocator = nil
}

// closeSlots tears down a table depth-first in slot order, which is the
// order the destructor observes.
func (m *Map[V]) closeSlots(slots []Slot[V]) {
	for i := range slots {
		s := &slots[i]
		switch s.state {
		case slotOccupied:
			if m.destructor != nil {
				m.destructor(s.elem)
			}
		case slotDelegated:
			m.closeSlots(s.sub)
		}
	}
	m.allocator.FreeSlots(slots)
}

// nextLength returns the length of a sub-table delegated from a table of
// the given length.
func nextLength(length int) int {
	if length/2 < minLength {
		return minLength
	}
	return length / 2
}

// shiftKey discards the low bits a table of the given length indexes by,
// exposing the next run of key bits to the sub-table below. length must
// be a power of two.
func shiftKey(key Uint128, length int) Uint128 {
	return key.shr(uint(bits.Len(uint(length)) - 1))
}

// checkInvariants verifies the structure of every table reachable from
// the root: power-of-two lengths that never increase along a delegation
// chain, the 4-slot floor, state/sub-table consistency, and the live
// entry count.
func (m *Map[V]) checkInvariants() {
	if used := checkSlots(m.slots, len(m.slots)); used != m.used {
		panic(fmt.Sprintf("invariant failed: found %d live slots, but used count is %d\n%s",
			used, m.used, m.debugString()))
	}
}

func checkSlots[V any](slots []Slot[V], length int) int {
	if len(slots) != length {
		panic(fmt.Sprintf("invariant failed: table length %d, expected %d", len(slots), length))
	}
	if length < minLength || length&(length-1) != 0 {
		panic(fmt.Sprintf("invariant failed: table length %d is not a power of 2 >= %d",
			length, minLength))
	}
	var used int
	for i := range slots {
		s := &slots[i]
		switch s.state {
		case slotEmpty, slotOccupied:
			if s.sub != nil {
				panic(fmt.Sprintf("invariant failed: slot %d in state %d owns a sub-table",
					i, s.state))
			}
			if s.state == slotOccupied {
				used++
			}
		case slotDelegated:
			if s.sub == nil {
				panic(fmt.Sprintf("invariant failed: delegated slot %d has no sub-table", i))
			}
			used += checkSlots(s.sub, nextLength(length))
		default:
			panic(fmt.Sprintf("invariant failed: slot %d has state %d", i, s.state))
		}
	}
	return used
}

func (m *Map[V]) debugString() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "used=%d\n", m.used)
	var dump func(slots []Slot[V], depth int)
	dump = func(slots []Slot[V], depth int) {
		indent := strings.Repeat("  ", depth)
		for i := range slots {
			s := &slots[i]
			switch s.state {
			case slotOccupied:
				fmt.Fprintf(&buf, "%s%4d: %016x%016x\n", indent, i, s.key.Hi, s.key.Lo)
			case slotDelegated:
				fmt.Fprintf(&buf, "%s%4d: sub-table len=%d\n", indent, i, len(s.sub))
				dump(s.sub, depth+1)
			}
		}
	}
	dump(m.slots, 0)
	return buf.String()
}
