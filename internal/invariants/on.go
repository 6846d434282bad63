// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

//go:build invariants || race

package invariants

import "github.com/cockroachdb/errors"

// Enabled is true if we were built with the "invariants" or "race" build tags.
const Enabled = true

// CheckBounds panics if the index is not in the range [0, n).
func CheckBounds[T Integer](i T, n T) {
	if i < 0 || i >= n {
		panic(errors.AssertionFailedf("index %d out of bounds [0, %d)", i, n))
	}
}

// CheckField panics if v does not fit in a payload of the given number of
// bits.
func CheckField[T Integer](v T, payloadBits int) {
	if v < 0 || uint64(v)>>payloadBits != 0 {
		panic(errors.AssertionFailedf("value %d does not fit in %d payload bits", v, payloadBits))
	}
}
