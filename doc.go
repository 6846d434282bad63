// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package wordpar provides constant-time primitives for integer data
// structures built on word-level parallelism: several small integers are
// packed into one 64-bit word and a single subtraction compares all of them
// against a query at once.
//
// The trick shared by everything in the package is tiling. A query is copied
// into every field of a packed word with the top (sentinel) bit of every field
// set. Subtracting a packed table from the tiled query clears a field's
// sentinel iff the table entry is larger than the query, and the sentinel
// absorbs the borrow so that fields never interfere. The number of sentinels
// left standing is the rank of the query in the table.
//
// Bucket uses it to answer rank queries over up to seven 7-bit keys, the
// search step of a B-tree node holding small keys. MSBLocator uses it twice to
// find the most significant bit of a word: once to pick the highest nonzero
// byte and once to find the highest bit inside it. LCPLen and TopKBits build
// on it for the prefix operations of x-fast tries and similar structures.
//
// Every function validates its inputs in constant time and returns an error
// instead of a meaningless result; see ErrKeyOutOfRange, ErrBucketFull,
// ErrZeroWord, ErrEqualOperands and ErrPrefixLength.
package wordpar
