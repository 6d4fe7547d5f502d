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

import "math/bits"

// FNV-1a constants. See
// http://www.isthe.com/chongo/tech/comp/fnv/index.html.
const (
	fnvOffset32 uint32 = 0x811c9dc5
	fnvPrime32  uint32 = 0x01000193

	fnvOffset64 uint64 = 0xcbf29ce484222325
	fnvPrime64  uint64 = 0x00000100000001b3
)

var (
	fnvOffset128 = Uint128{Hi: 0x6c62272e07bb0142, Lo: 0x62b821756295c58d}
	fnvPrime128  = Uint128{Hi: 0x0000000001000000, Lo: 0x000000000000013b}
)

// Uint128 is an unsigned 128-bit integer, used as the key type for Map. The
// zero value is 0.
type Uint128 struct {
	Hi uint64
	Lo uint64
}

// mul128 returns u*v truncated to 128 bits. The low halves produce a full
// 128-bit product via Mul64; the cross products can only affect the high
// half and the u.Hi*v.Hi term falls off entirely.
func mul128(u, v Uint128) Uint128 {
	hi, lo := bits.Mul64(u.Lo, v.Lo)
	hi += u.Hi*v.Lo + u.Lo*v.Hi
	return Uint128{Hi: hi, Lo: lo}
}

// shr returns u>>n for 0 < n < 64.
func (u Uint128) shr(n uint) Uint128 {
	return Uint128{
		Hi: u.Hi >> n,
		Lo: u.Lo>>n | u.Hi<<(64-n),
	}
}

// Hash32 returns the 32-bit FNV-1a digest of key. Not cryptographically
// secure.
func Hash32(key []byte) uint32 {
	hash := fnvOffset32
	for _, b := range key {
		hash ^= uint32(b)
		hash *= fnvPrime32
	}
	return hash
}

// Hash64 returns the 64-bit FNV-1a digest of key. Not cryptographically
// secure.
func Hash64(key []byte) uint64 {
	hash := fnvOffset64
	for _, b := range key {
		hash ^= uint64(b)
		hash *= fnvPrime64
	}
	return hash
}

// Hash128 returns the 128-bit FNV-1a digest of key. This is the digest Map
// keys are derived from by BytesMap. Not cryptographically secure.
func Hash128(key []byte) Uint128 {
	hash := fnvOffset128
	for _, b := range key {
		hash.Lo ^= uint64(b)
		hash = mul128(hash, fnvPrime128)
	}
	return hash
}
