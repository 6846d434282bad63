// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package packed

import (
	"math/big"
	"math/bits"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

var namedLayouts = []struct {
	name   string
	layout Layout
	width  int
	count  int
}{
	{"bytes", Bytes, 8, 8},
	{"nonets", Nonets, 9, 8},
	{"septets", Septets, 7, 9},
}

func TestNamedLayouts(t *testing.T) {
	for _, tc := range namedLayouts {
		t.Run(tc.name, func(t *testing.T) {
			l, err := MakeLayout(tc.width, tc.count)
			require.NoError(t, err)
			require.Equal(t, l, tc.layout)
			require.Equal(t, tc.count, l.Count())
			require.Equal(t, tc.width*tc.count, l.Bits())
			require.Equal(t, tc.count, l.Sentinels().OnesCount())
			require.Equal(t, tc.count, l.Multiplier().OnesCount())
		})
	}
	require.Equal(t, "8x9", Nonets.String())
}

func TestMakeLayoutErrors(t *testing.T) {
	for _, tc := range [][2]int{{1, 8}, {10, 8}, {8, 0}, {9, 15}, {8, 17}} {
		_, err := MakeLayout(tc[0], tc[1])
		require.ErrorIs(t, err, ErrInvalidLayout, "width=%d count=%d", tc[0], tc[1])
	}
	l, err := MakeLayout(8, 16)
	require.NoError(t, err)
	require.Equal(t, 128, l.Bits())
	require.Equal(t, ^uint64(0), l.LowFields(16).Lo)
	require.Equal(t, ^uint64(0), l.LowFields(16).Hi)
}

func TestTile(t *testing.T) {
	layouts := []Layout{Bytes, Nonets, Septets}
	for w := 2; w <= 9; w++ {
		l, err := MakeLayout(w, 128/w)
		require.NoError(t, err)
		layouts = append(layouts, l)
	}
	for _, l := range layouts {
		t.Run(l.String(), func(t *testing.T) {
			for q := 0; q <= int(l.MaxPayload()); q++ {
				tiled := l.Tile(uint8(q))
				for i := 0; i < l.Count(); i++ {
					require.Equal(t, uint8(q), l.Payload(tiled, i), "field %d", i)
					require.True(t, l.Sentinel(tiled, i), "field %d", i)
				}
				require.Equal(t, tiled, tiled.And(l.LowFields(l.Count())))
				if l.Bits() <= 64 {
					require.Equal(t, tiled.Lo, l.Tile64(uint8(q)))
				}
			}
		})
	}
}

func TestTileBytes(t *testing.T) {
	require.Equal(t, uint64(0xe7e7e7e7e7e7e7e7), Bytes.Tile64(0b1100111))
	require.Equal(t, ByteSentinels, Bytes.Tile64(0))
	require.Equal(t, ^uint64(0), Bytes.Tile64(127))
}

func TestNonetPowersOfTwo(t *testing.T) {
	for i := 0; i < Nonets.Count(); i++ {
		require.Equal(t, uint64(1)<<i, Nonets.Field(NonetPowersOfTwo, i))
	}
	for v := 1; v < 256; v++ {
		rank := Nonets.Rank(uint8(v), NonetPowersOfTwo, Nonets.Count())
		require.Equal(t, bits.Len8(uint8(v)), rank, "v=%d", v)
	}
	require.Equal(t, 0, Nonets.Rank(0, NonetPowersOfTwo, Nonets.Count()))
}

func TestRankRandom(t *testing.T) {
	seed := uint64(time.Now().UnixNano())
	t.Logf("seed: %d", seed)
	rng := rand.New(rand.NewSource(seed))

	for _, tc := range namedLayouts {
		l := tc.layout
		t.Run(tc.name, func(t *testing.T) {
			for iter := 0; iter < 200; iter++ {
				n := rng.Intn(l.Count() + 1)
				entries := make([]uint8, n)
				var table Uint128
				for i := range entries {
					entries[i] = uint8(rng.Intn(int(l.MaxPayload()) + 1))
					table = table.Or(U128(uint64(entries[i])).Lsh(uint(i * l.Width())))
				}
				for q := 0; q <= int(l.MaxPayload()); q++ {
					var want int
					for _, e := range entries {
						if int(e) <= q {
							want++
						}
					}
					require.Equal(t, want, l.Rank(uint8(q), table, n), "entries=%v q=%d", entries, q)
					if l.Bits() <= 64 {
						require.Equal(t, want, l.Rank64(uint8(q), table.Lo, n))
					}
				}
			}
		})
	}
}

func TestStackSentinels64(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	words := []uint64{0, ^uint64(0), ByteSentinels, ByteOnes, 1 << 63}
	for i := 0; i < 1000; i++ {
		words = append(words, rng.Uint64())
	}
	for _, w := range words {
		require.Equal(t, bits.OnesCount64(w&ByteSentinels), StackSentinels64(w), "%#x", w)
	}
}

func TestGather64(t *testing.T) {
	for flags := 0; flags < 256; flags++ {
		var w uint64
		for i := 0; i < 8; i++ {
			if flags&(1<<i) != 0 {
				// Set the sentinel of byte i plus some noise below it.
				w |= (0x80 | uint64(i*13)&0x7f) << (8 * i)
			}
		}
		require.Equal(t, uint8(flags), Gather64(w), "%#x", w)
	}
}

// TestUint128 checks the wrapping and shifting behavior the layouts rely on:
// products and differences wrap modulo 2^128 and shifts of 128 or more bits
// clear the word.
func TestUint128(t *testing.T) {
	seed := uint64(time.Now().UnixNano())
	t.Logf("seed: %d", seed)
	rng := rand.New(rand.NewSource(seed))
	mod := new(big.Int).Lsh(big.NewInt(1), 128)
	toBig := func(u Uint128) *big.Int {
		b := new(big.Int).SetUint64(u.Hi)
		b.Lsh(b, 64)
		return b.Or(b, new(big.Int).SetUint64(u.Lo))
	}
	wrap := func(b *big.Int) *big.Int {
		return b.Mod(b, mod)
	}
	eq := func(want *big.Int, got Uint128, msgAndArgs ...interface{}) {
		require.Equal(t, want.Text(16), toBig(got).Text(16), msgAndArgs...)
	}
	for i := 0; i < 1000; i++ {
		a := Uint128{Hi: rng.Uint64(), Lo: rng.Uint64()}
		b := Uint128{Hi: rng.Uint64(), Lo: rng.Uint64()}
		v := rng.Uint64()
		n := uint(rng.Intn(140))

		eq(wrap(new(big.Int).Mul(toBig(a), new(big.Int).SetUint64(v))), a.MulWrap64(v))
		eq(wrap(new(big.Int).Sub(toBig(a), toBig(b))), a.SubWrap(b))
		eq(wrap(new(big.Int).Lsh(toBig(a), n)), a.Lsh(n), "n=%d", n)
		eq(new(big.Int).Rsh(toBig(a), n), a.Rsh(n), "n=%d", n)
		require.Equal(t, bits.OnesCount64(a.Hi)+bits.OnesCount64(a.Lo), a.OnesCount())
	}
	require.Equal(t, "0xff", Hex(U128(0xff)))
	require.Equal(t, "0x10000000000000000", Hex(U128(1).Lsh(64)))
	require.Equal(t, "0x800000000000000000", Hex(Nonets.Sentinels().And(U128(0).SubWrap64(1).Lsh(71))))
}

func BenchmarkRank(b *testing.B) {
	for _, tc := range namedLayouts {
		b.Run(tc.name, func(b *testing.B) {
			table := tc.layout.Multiplier().MulWrap64(uint64(tc.layout.MaxPayload() / 2))
			for i := 0; i < b.N; i++ {
				benchSink += tc.layout.Rank(uint8(i)&tc.layout.MaxPayload(), table, tc.layout.Count())
			}
		})
	}
}

func BenchmarkTile(b *testing.B) {
	for _, tc := range namedLayouts {
		b.Run(tc.name, func(b *testing.B) {
			var sink Uint128
			for i := 0; i < b.N; i++ {
				sink = sink.Or(tc.layout.Tile(uint8(i) & tc.layout.MaxPayload()))
			}
			benchSink += sink.OnesCount()
		})
	}
}

var benchSink int
