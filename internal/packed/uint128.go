// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package packed

import (
	"fmt"

	"lukechampine.com/uint128"
)

// Uint128 is the scratch type for layouts wider than a machine word. Packed
// arithmetic relies on wrapping modulo 2^128, so callers use the Wrap
// variants (MulWrap64, SubWrap) rather than the overflow-checking ones.
type Uint128 = uint128.Uint128

// U128 widens a 64-bit word.
func U128(lo uint64) Uint128 {
	return uint128.From64(lo)
}

// Hex formats u as a hexadecimal number without leading zeros.
func Hex(u Uint128) string {
	if u.Hi == 0 {
		return fmt.Sprintf("%#x", u.Lo)
	}
	return fmt.Sprintf("%#x%016x", u.Hi, u.Lo)
}
