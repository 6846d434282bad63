// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package wordpar

import "github.com/cockroachdb/wordpar/internal/packed"

// Uint128 is the 128-bit scratch word used by layouts wider than 64 bits.
type Uint128 = packed.Uint128

// Layout describes the division of a packed word into fields, each with one
// sentinel bit on top of its payload.
type Layout = packed.Layout

// Named layouts.
var (
	// BytesLayout is 8 fields of 8 bits; payloads are 0..127. Buckets use it.
	BytesLayout = packed.Bytes
	// NonetsLayout is 8 fields of 9 bits; payloads are 0..255. The MSB locator
	// uses it to rank a byte against the powers of two.
	NonetsLayout = packed.Nonets
	// SeptetsLayout is 9 fields of 7 bits; payloads are 0..63.
	SeptetsLayout = packed.Septets
)

// MakeLayout returns the layout of count fields of width bits each. It
// returns an error wrapping packed.ErrInvalidLayout unless 2 <= width <= 9
// and width*count <= 128.
func MakeLayout(width, count int) (Layout, error) {
	return packed.MakeLayout(width, count)
}

// Tile replicates q into every field of l and sets every field's sentinel
// bit. It returns an error wrapping ErrKeyOutOfRange if q does not fit in the
// payload of a field.
func Tile(q uint8, l Layout) (Uint128, error) {
	if q > l.MaxPayload() {
		return Uint128{}, keyOutOfRangef(uint64(q), l.MaxPayload())
	}
	return l.Tile(q), nil
}
