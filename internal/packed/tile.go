// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package packed

import (
	"math/bits"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/wordpar/internal/invariants"
)

// Tile replicates q into the payload of every field of l and sets every
// sentinel bit. q must fit in the layout's payload; the multiply only places
// one copy of q at the base of each field, so as long as q leaves the top bit
// of its field clear no copy can carry into the next field.
func (l Layout) Tile(q uint8) Uint128 {
	invariants.CheckField(q, l.Width()-1)
	tiled := l.multiplier.MulWrap64(uint64(q)).Or(l.sentinels)
	if invariants.Enabled {
		l.checkTiled(tiled, q)
	}
	return tiled
}

// Tile64 is Tile for layouts that fit in a single word.
func (l Layout) Tile64(q uint8) uint64 {
	if invariants.Enabled && l.multiplier.Hi|l.sentinels.Hi != 0 {
		panic(errors.AssertionFailedf("layout %s does not fit in %d bits", l, WordBits))
	}
	return l.Tile(q).Lo
}

func (l Layout) checkTiled(tiled Uint128, q uint8) {
	for i := 0; i < l.Count(); i++ {
		if p := l.Payload(tiled, i); p != q || !l.Sentinel(tiled, i) {
			panic(errors.AssertionFailedf("field %d of tiled %d is %#x", i, q, l.Field(tiled, i)))
		}
	}
	if rest := tiled.And(l.LowFields(l.Count())); rest != tiled {
		panic(errors.AssertionFailedf("tiled %d spills past %d bits: %s", q, l.Bits(), Hex(tiled)))
	}
}

// Rank returns the number of the low n fields of table whose payload is <= q.
// Every field of table must have its sentinel bit clear.
//
// The difference tile(q)-table is computed per field as (sentinel+q)-entry.
// It never borrows out of a field because the sentinel alone outweighs any
// payload, and the sentinel survives iff entry <= q.
func (l Layout) Rank(q uint8, table Uint128, n int) int {
	invariants.CheckBounds(n, l.Count()+1)
	if invariants.Enabled && !table.And(l.sentinels).IsZero() {
		panic(errors.AssertionFailedf("table %s has sentinel bits set", Hex(table)))
	}
	diff := l.Tile(q).SubWrap(table)
	return l.CountSentinels(diff.And(l.LowFields(n)))
}

// Rank64 is Rank for layouts that fit in a single word.
func (l Layout) Rank64(q uint8, table uint64, n int) int {
	invariants.CheckBounds(n, l.Count()+1)
	diff := l.Tile64(q) - table
	return bits.OnesCount64(diff & l.sentinels.Lo & l.LowFields(n).Lo)
}

// CountSentinels returns the number of sentinel bits set in w.
func (l Layout) CountSentinels(w Uint128) int {
	return w.And(l.sentinels).OnesCount()
}

// StackSentinels64 counts the byte-layout sentinel bits set in w without a
// population count. Each sentinel is moved down to the low bit of its byte and
// the multiply by ByteOnes sums all eight bytes into the top byte. The sum is
// at most 8 so it cannot overflow the byte.
func StackSentinels64(w uint64) int {
	return int(((w & ByteSentinels) >> 7) * ByteOnes >> 56)
}

// Gather64 packs the sentinel bit of every byte of w into a single byte: bit i
// of the result is the sentinel of byte i. The multiply by ByteGather shifts
// the flag of byte i by 56-7i places; the flags land on distinct bits of the
// top byte and the remaining partial products fall below it without carries.
func Gather64(w uint64) uint8 {
	return uint8(((w & ByteSentinels) >> 7) * ByteGather >> 56)
}
