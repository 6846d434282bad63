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

const (
	// BucketCapacity is the number of keys a Bucket holds.
	BucketCapacity = 7
	// MaxKey is the largest key a Bucket holds: the top bit of every byte is
	// reserved for the sentinel used by Rank.
	MaxKey = 127
)

// Bucket is a node-sized set of small keys packed into a single word. It is
// meant to be embedded in a larger structure (a B-tree node, a trie level)
// whose search step needs rank(x), the number of keys <= x. Rank runs in
// constant time regardless of how many keys are held, without scanning or
// binary search.
//
// Keys occupy one byte each, the most recently added in the lowest byte:
//
//	       byte 7   byte 6   ...   byte 1   byte 0
//	keys: 00000000 0|k_1     ...   0|k_n-1  0|k_n
//
// The sentinel bit of every byte is kept clear. Keys need not be added in
// sorted order.
//
// The zero value is an empty Bucket ready for use. A Bucket is not safe for
// concurrent use.
type Bucket struct {
	keys uint64
	n    uint8
}

// Add appends key to the bucket. It returns an error wrapping ErrKeyOutOfRange
// if key > MaxKey, or ErrBucketFull if the bucket already holds
// BucketCapacity keys. The bucket is unchanged on error.
func (b *Bucket) Add(key uint8) error {
	if key > MaxKey {
		return keyOutOfRangef(uint64(key), MaxKey)
	}
	if b.n >= BucketCapacity {
		return errors.Wrapf(ErrBucketFull, "adding %d", errors.Safe(key))
	}
	b.keys = b.keys<<packed.Bytes.Width() | uint64(key&MaxKey)
	b.n++
	return nil
}

// Rank returns the number of keys in the bucket that are <= q. It returns an
// error wrapping ErrKeyOutOfRange if q > MaxKey.
func (b *Bucket) Rank(q uint8) (int, error) {
	if q > MaxKey {
		return 0, keyOutOfRangef(uint64(q), MaxKey)
	}
	rank := packed.Bytes.Rank64(q, b.keys, int(b.n))
	if invariants.Sometimes(25) {
		b.checkRank(q, rank)
	}
	return rank, nil
}

// checkRank recomputes a rank with the multiply-based sentinel count and with
// a scan of the keys.
func (b *Bucket) checkRank(q uint8, rank int) {
	diff := packed.Bytes.Tile64(q) - b.keys
	diff &= packed.Bytes.LowFields(int(b.n)).Lo
	if stacked := packed.StackSentinels64(diff); stacked != rank {
		panic(errors.AssertionFailedf("rank(%d) = %d but stacked count = %d in %s", q, rank, stacked, b))
	}
	var scanned int
	for i := 0; i < b.Len(); i++ {
		if b.At(i) <= q {
			scanned++
		}
	}
	if scanned != rank {
		panic(errors.AssertionFailedf("rank(%d) = %d but scan found %d in %s", q, rank, scanned, b))
	}
}

// Len returns the number of keys in the bucket.
func (b *Bucket) Len() int {
	return int(b.n)
}

// Cap returns the number of keys the bucket can hold.
func (b *Bucket) Cap() int {
	return BucketCapacity
}

// Full reports whether another Add would fail with ErrBucketFull.
func (b *Bucket) Full() bool {
	return b.n >= BucketCapacity
}

// At returns the i'th key added to the bucket, starting at 0 for the oldest.
func (b *Bucket) At(i int) uint8 {
	if i < 0 || i >= int(b.n) {
		panic(errors.AssertionFailedf("index %d out of range [0, %d)", i, b.n))
	}
	return packed.Bytes.Payload(packed.U128(b.keys), int(b.n)-1-i)
}

// Word returns the packed representation of the keys.
func (b *Bucket) Word() uint64 {
	return b.keys
}

// Reset empties the bucket.
func (b *Bucket) Reset() {
	*b = Bucket{}
}

// String implements fmt.Stringer.
func (b *Bucket) String() string {
	return redact.StringWithoutMarkers(b)
}

// SafeFormat implements redact.SafeFormatter. Keys are printed oldest first.
func (b *Bucket) SafeFormat(w redact.SafePrinter, _ rune) {
	w.SafeRune('{')
	for i := 0; i < b.Len(); i++ {
		if i > 0 {
			w.SafeRune(',')
		}
		w.Print(redact.SafeUint(b.At(i)))
	}
	w.SafeRune('}')
}
