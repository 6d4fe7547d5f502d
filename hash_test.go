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

import (
	"hash/fnv"
	"math/big"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashVectors(t *testing.T) {
	key := []byte("I am the Walrus.")
	require.Equal(t, uint32(0x249f7959), Hash32(key))
	require.Equal(t, uint64(0x7a680bab8c51fa39), Hash64(key))
	require.Equal(t, Uint128{Hi: 0x67dc4bcbf73fe4e5, Lo: 0xb72b80a0168bcee1}, Hash128(key))
}

func TestHashEmpty(t *testing.T) {
	// Zero input bytes yield the offset basis.
	require.Equal(t, fnvOffset32, Hash32(nil))
	require.Equal(t, fnvOffset64, Hash64(nil))
	require.Equal(t, fnvOffset128, Hash128(nil))
	require.Equal(t, fnvOffset32, Hash32([]byte{}))
}

// The 32- and 64-bit variants must agree with the stdlib's FNV-1a.
func TestHashMatchesStdlib(t *testing.T) {
	for i := 0; i < 1000; i++ {
		key := make([]byte, rand.Intn(64))
		for j := range key {
			key[j] = byte(rand.Intn(256))
		}

		h32 := fnv.New32a()
		h32.Write(key)
		require.Equal(t, h32.Sum32(), Hash32(key))

		h64 := fnv.New64a()
		h64.Write(key)
		require.Equal(t, h64.Sum64(), Hash64(key))
	}
}

func bigUint128(u Uint128) *big.Int {
	v := new(big.Int).SetUint64(u.Hi)
	v.Lsh(v, 64)
	return v.Or(v, new(big.Int).SetUint64(u.Lo))
}

func TestMul128(t *testing.T) {
	mod := new(big.Int).Lsh(big.NewInt(1), 128)
	for i := 0; i < 1000; i++ {
		u := Uint128{Hi: rand.Uint64(), Lo: rand.Uint64()}
		v := Uint128{Hi: rand.Uint64(), Lo: rand.Uint64()}

		expected := new(big.Int).Mul(bigUint128(u), bigUint128(v))
		expected.Mod(expected, mod)
		require.Equal(t, expected, bigUint128(mul128(u, v)), "%v * %v", u, v)
	}
}

func TestShr(t *testing.T) {
	for i := 0; i < 1000; i++ {
		u := Uint128{Hi: rand.Uint64(), Lo: rand.Uint64()}
		n := uint(1 + rand.Intn(63))

		expected := new(big.Int).Rsh(bigUint128(u), n)
		require.Equal(t, expected, bigUint128(u.shr(n)), "%v >> %d", u, n)
	}
}

func TestHashDeterminism(t *testing.T) {
	key := make([]byte, 123)
	for j := range key {
		key[j] = byte(rand.Intn(256))
	}
	dup := append([]byte(nil), key...)
	require.Equal(t, Hash128(key), Hash128(dup))
}
