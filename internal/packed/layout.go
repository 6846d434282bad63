// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package packed implements word-level parallel arithmetic over fixed-width
// fields. A packed word is split into equal fields; the top bit of every field
// is a sentinel that absorbs the borrow of a packed subtraction so that no
// field ever disturbs its neighbour.
//
// The central operation is a parallel compare. Tiling a query sets every
// sentinel and copies the query into every payload:
//
//	tiled: 1|qqqqqqq 1|qqqqqqq 1|qqqqqqq ... 1|qqqqqqq
//	table: 0|aaaaaaa 0|bbbbbbb 0|ccccccc ... 0|hhhhhhh
//
// Subtracting the table from the tiled query leaves a field's sentinel set iff
// the query is >= the table entry in that field. Counting the surviving
// sentinels is the rank of the query in the table.
package packed

import (
	"strconv"

	"github.com/cockroachdb/errors"
)

// WordBits is the width of the words the algorithms operate on. All
// arithmetic uses explicit uint64 values, so it does not depend on the
// platform's native word size.
const WordBits = 64

// Bit patterns of the byte layout: 8 fields of 8 bits.
const (
	// ByteOnes has the low bit of every byte set. Multiplying a byte by it
	// replicates the byte into all eight fields.
	ByteOnes uint64 = 0x0101010101010101
	// ByteSentinels has the top bit of every byte set.
	ByteSentinels uint64 = 0x8080808080808080
	// ByteGather moves bit 8*i of a word to bit 56+i when multiplied into it,
	// packing one flag per byte into the top byte.
	ByteGather uint64 = 0x0102040810204080
)

// Bit patterns of the nonet layout: 8 fields of 9 bits, 72 bits in total.
const (
	nonetOnes          uint64 = 0x8040201008040201
	nonetSentinelsHi   uint64 = 0x80
	nonetSentinelsLo   uint64 = 0x4020100804020100
	nonetPowersOfTwoHi uint64 = 0x40
	nonetPowersOfTwoLo uint64 = 0x1004010040100401
)

// Bit patterns of the septet layout: 9 fields of 7 bits, 63 bits in total.
const (
	septetOnes      uint64 = 0x0102040810204081
	septetSentinels uint64 = 0x4081020408102040
)

// ErrInvalidLayout is returned by MakeLayout for a field width or count that
// no packed word can hold.
var ErrInvalidLayout = errors.New("packed: invalid layout")

// Layout describes how a packed word is divided into fields. The zero value is
// not a usable layout.
type Layout struct {
	width      uint
	count      uint
	multiplier Uint128
	sentinels  Uint128
}

// Named layouts.
var (
	// Bytes is 8 fields of 8 bits with 7-bit payloads. It fills a 64-bit word.
	Bytes = Layout{
		width:      8,
		count:      8,
		multiplier: Uint128{Lo: ByteOnes},
		sentinels:  Uint128{Lo: ByteSentinels},
	}
	// Nonets is 8 fields of 9 bits with 8-bit payloads. It needs 72 bits, so
	// words in this layout are Uint128.
	Nonets = Layout{
		width:      9,
		count:      8,
		multiplier: Uint128{Lo: nonetOnes},
		sentinels:  Uint128{Hi: nonetSentinelsHi, Lo: nonetSentinelsLo},
	}
	// Septets is 9 fields of 7 bits with 6-bit payloads.
	Septets = Layout{
		width:      7,
		count:      9,
		multiplier: Uint128{Lo: septetOnes},
		sentinels:  Uint128{Lo: septetSentinels},
	}
)

// NonetPowersOfTwo is the Nonets table whose field i holds 1<<i. The rank of a
// nonzero byte in it is one more than the index of the byte's highest set bit.
var NonetPowersOfTwo = Uint128{Hi: nonetPowersOfTwoHi, Lo: nonetPowersOfTwoLo}

// MakeLayout returns the layout of count fields of width bits each. A field
// holds a payload of width-1 bits (at most a byte) plus its sentinel, and all
// fields must fit in 128 bits.
func MakeLayout(width, count int) (Layout, error) {
	if width < 2 || width > 9 {
		return Layout{}, errors.Wrapf(ErrInvalidLayout, "field width %d not in [2, 9]", width)
	}
	if count < 1 || width*count > 128 {
		return Layout{}, errors.Wrapf(ErrInvalidLayout, "%d fields of %d bits do not fit in 128 bits", count, width)
	}
	l := Layout{width: uint(width), count: uint(count)}
	for i := uint(0); i < l.count; i++ {
		l.multiplier = l.multiplier.Or(U128(1).Lsh(i * l.width))
	}
	l.sentinels = l.multiplier.Lsh(l.width - 1)
	return l, nil
}

// Width returns the width of a field in bits, sentinel included.
func (l Layout) Width() int { return int(l.width) }

// Count returns the number of fields.
func (l Layout) Count() int { return int(l.count) }

// Bits returns the number of bits spanned by all fields.
func (l Layout) Bits() int { return int(l.width * l.count) }

// MaxPayload returns the largest value a field's payload can hold.
func (l Layout) MaxPayload() uint8 {
	return uint8(uint64(1)<<(l.width-1) - 1)
}

// Multiplier returns the word with the low bit of every field set.
func (l Layout) Multiplier() Uint128 { return l.multiplier }

// Sentinels returns the word with the sentinel bit of every field set.
func (l Layout) Sentinels() Uint128 { return l.sentinels }

// LowFields returns a mask covering all bits of the low n fields.
func (l Layout) LowFields(n int) Uint128 {
	return U128(1).Lsh(uint(n) * l.width).SubWrap64(1)
}

// Field returns field i of w, sentinel included. Field 0 is the lowest.
func (l Layout) Field(w Uint128, i int) uint64 {
	return w.Rsh(uint(i)*l.width).Lo & (uint64(1)<<l.width - 1)
}

// Payload returns the payload of field i of w.
func (l Layout) Payload(w Uint128, i int) uint8 {
	return uint8(l.Field(w, i) & uint64(l.MaxPayload()))
}

// Sentinel reports whether the sentinel bit of field i of w is set.
func (l Layout) Sentinel(w Uint128, i int) bool {
	return l.Field(w, i)>>(l.width-1) != 0
}

// String returns a short description such as "8x9".
func (l Layout) String() string {
	return strconv.Itoa(int(l.count)) + "x" + strconv.Itoa(int(l.width))
}
