// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package wordpar_test

import (
	"fmt"
	"log"

	"github.com/cockroachdb/wordpar"
)

func Example() {
	var b wordpar.Bucket
	for _, k := range []uint8{3, 7, 9, 2} {
		if err := b.Add(k); err != nil {
			log.Fatal(err)
		}
	}
	rank, err := b.Rank(7)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("rank(7) in %s = %d\n", &b, rank)

	msb, err := wordpar.MSB(873)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("msb(873) = %d\n", msb)

	lcp, err := wordpar.LCPLen(0xff00, 0xff01)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("lcp(0xff00, 0xff01) = %d\n", lcp)
	// Output:
	// rank(7) in {3,7,9,2} = 3
	// msb(873) = 9
	// lcp(0xff00, 0xff01) = 63
}
