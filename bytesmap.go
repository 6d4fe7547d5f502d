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

// BytesMap is a Map keyed by arbitrary byte strings rather than Uint128
// values. Every keyed operation reduces the key bytes to their 128-bit
// FNV-1a digest with Hash128 and delegates to the embedded Map; the key
// bytes themselves are not retained. BytesMap adds no state of its own,
// and Len and Close are those of the embedded Map.
//
// A BytesMap is NOT goroutine-safe.
type BytesMap[V any] struct {
	Map[V]
}

// NewBytes constructs a BytesMap. The capacity and options are those of
// New.
func NewBytes[V any](initialCapacity int, options ...option[V]) *BytesMap[V] {
	m := &BytesMap[V]{}
	m.Map.Init(initialCapacity, options...)
	return m
}

// Put inserts an entry into the map. The key must not be present; see
// Map.Put.
func (m *BytesMap[V]) Put(key []byte, elem V) {
	m.Map.Put(Hash128(key), elem)
}

// Get retrieves the element for the specified key, returning ok=false if
// the key is not present.
func (m *BytesMap[V]) Get(key []byte) (V, bool) {
	return m.Map.Get(Hash128(key))
}

// Delete removes the entry for the specified key, invoking the destructor
// on its element, and reports whether an entry was present.
func (m *BytesMap[V]) Delete(key []byte) bool {
	return m.Map.Delete(Hash128(key))
}
