// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package wordpar

import "github.com/cockroachdb/errors"

// Every error returned by this package is a contract violation by the caller:
// none are transient and none are worth retrying. Use errors.Is to tell them
// apart; the returned errors wrap these values with the offending input.
var (
	// ErrKeyOutOfRange is returned when a key or query does not fit in the
	// payload of a packed field (0..127 for a Bucket).
	ErrKeyOutOfRange = errors.New("wordpar: key out of range")
	// ErrBucketFull is returned when adding to a Bucket that already holds
	// BucketCapacity keys.
	ErrBucketFull = errors.New("wordpar: bucket full")
	// ErrZeroWord is returned when asking for the most significant bit of 0.
	ErrZeroWord = errors.New("wordpar: most significant bit of zero is undefined")
	// ErrEqualOperands is returned when asking for the longest common prefix of
	// two equal words, which has no terminating bit.
	ErrEqualOperands = errors.New("wordpar: operands are equal")
	// ErrPrefixLength is returned for a prefix length outside [1, 64].
	ErrPrefixLength = errors.New("wordpar: prefix length out of range")
)

func keyOutOfRangef(v uint64, max uint8) error {
	return errors.Wrapf(ErrKeyOutOfRange, "%d > %d", errors.Safe(v), errors.Safe(max))
}
