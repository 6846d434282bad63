// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package wordpar

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
	"github.com/cockroachdb/wordpar/internal/invariants"
	"github.com/cockroachdb/wordpar/internal/packed"
)

// numBlocks is the number of 8-bit blocks a word is routed through.
const numBlocks = 8

// MSBLocator finds the most significant set bit of a word in constant time
// without a lookup table. The word is split into 8 blocks of 8 bits. Block IDs
// count from the most significant end:
//
//	bit:    63       56 55       48       ...        7        0
//	block: [    0     ][     1    ]       ...       [    7     ]
//
// Block id starts at bit (7-id)*8 and its top bit is (7-id)*8+7.
//
// Building the locator computes a routing byte with one flag per nonzero
// block. The flag of the block starting at bit 8*j is bit j of the routing
// byte, so block 0 owns bit 7. The highest set routing bit names the block
// holding the answer, and the highest set bit of that block is the answer.
// Both "highest set bit of a byte" steps are the same parallel rank of the
// byte against the eight powers of two.
//
// The zero value is not usable; construct with BuildMSBLocator. MSB and
// BlockID panic on the zero value.
type MSBLocator struct {
	word   uint64
	blocks uint8
}

// BuildMSBLocator constructs the locator for word. It returns an error
// wrapping ErrZeroWord if word is 0.
func BuildMSBLocator(word uint64) (MSBLocator, error) {
	if word == 0 {
		return MSBLocator{}, errors.WithStack(ErrZeroWord)
	}
	return MSBLocator{word: word, blocks: activeBlocks(word)}, nil
}

// activeBlocks returns the routing byte of word: bit j is set iff byte j of
// word is nonzero. No byte is examined on its own.
func activeBlocks(word uint64) uint8 {
	// A byte is nonzero iff its top bit is set or its low 7 bits are nonzero.
	high := word & packed.ByteSentinels
	// Forcing each sentinel on and subtracting 1 from every byte keeps the
	// sentinel iff the low 7 bits are nonzero. The forced sentinel absorbs the
	// borrow, so the bytes do not interfere.
	low := ((word | packed.ByteSentinels) - packed.ByteOnes) & packed.ByteSentinels
	return packed.Gather64(high | low)
}

// msbOfByte returns the index of the highest set bit of a nonzero byte as its
// rank among the powers of two 1, 2, 4, ..., 128, minus one.
func msbOfByte(v uint8) int {
	if invariants.Enabled && v == 0 {
		panic(errors.AssertionFailedf("msb of zero byte"))
	}
	return packed.Nonets.Rank(v, packed.NonetPowersOfTwo, packed.Nonets.Count()) - 1
}

// MSB returns the index of the most significant set bit of the word, in
// [0, 63].
func (l MSBLocator) MSB() int {
	start := l.blockStart()
	return start + msbOfByte(uint8(l.word>>start))
}

// blockStart returns the offset of the lowest bit of the block holding the
// most significant bit.
func (l MSBLocator) blockStart() int {
	if l.blocks == 0 {
		panic(errors.AssertionFailedf("MSBLocator used without BuildMSBLocator"))
	}
	return msbOfByte(l.blocks) * 8
}

// BlockID returns the ID of the block holding the most significant bit; 0 is
// the most significant block.
func (l MSBLocator) BlockID() int {
	return numBlocks - 1 - l.blockStart()/8
}

// Active reports whether the block with the given ID is nonzero.
func (l MSBLocator) Active(id int) bool {
	if id < 0 || id >= numBlocks {
		panic(errors.AssertionFailedf("block %d out of range [0, %d)", id, numBlocks))
	}
	return l.blocks&(1<<(numBlocks-1-id)) != 0
}

// Blocks returns the routing byte: bit j is set iff the block starting at bit
// 8*j is nonzero.
func (l MSBLocator) Blocks() uint8 {
	return l.blocks
}

// Word returns the word the locator was built for.
func (l MSBLocator) Word() uint64 {
	return l.word
}

// String implements fmt.Stringer.
func (l MSBLocator) String() string {
	return redact.StringWithoutMarkers(l)
}

// SafeFormat implements redact.SafeFormatter.
func (l MSBLocator) SafeFormat(w redact.SafePrinter, _ rune) {
	if l.blocks == 0 {
		w.SafeString("<unbuilt>")
		return
	}
	w.Printf("word=%#x blocks=%08b block=%d msb=%d",
		redact.SafeUint(l.word), redact.SafeUint(l.blocks), redact.SafeInt(l.BlockID()), redact.SafeInt(l.MSB()))
}

// MSB returns the index of the most significant set bit of x, in [0, 63]. It
// returns an error wrapping ErrZeroWord if x is 0.
func MSB(x uint64) (int, error) {
	l, err := BuildMSBLocator(x)
	if err != nil {
		return 0, err
	}
	return l.MSB(), nil
}

// LCPLen returns the length in bits of the longest common prefix of a and b,
// in [0, 63]. It returns an error wrapping ErrEqualOperands if a == b: equal
// words share all 64 bits and have no first differing bit.
func LCPLen(a, b uint64) (int, error) {
	if a == b {
		return 0, errors.Wrapf(ErrEqualOperands, "%d", errors.Safe(a))
	}
	l, err := BuildMSBLocator(a ^ b)
	if err != nil {
		return 0, err
	}
	return packed.WordBits - 1 - l.MSB(), nil
}

// TopKBits returns x with all but its k most significant bits cleared, for k
// in [1, 64]. It returns an error wrapping ErrPrefixLength for any other k.
func TopKBits(x uint64, k int) (uint64, error) {
	if k < 1 || k > packed.WordBits {
		return 0, errors.Wrapf(ErrPrefixLength, "k=%d", errors.Safe(k))
	}
	// ^(1<<(64-k)) has a single zero at bit 64-k. Adding one carries through
	// the ones below it and stops at the zero, leaving exactly the top k bits
	// set.
	mask := ^(uint64(1) << (packed.WordBits - k)) + 1
	return x & mask, nil
}
