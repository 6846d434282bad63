// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package wordpar

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/cockroachdb/crlib/crstrings"
	"github.com/cockroachdb/datadriven"
	"github.com/cockroachdb/wordpar/internal/binfmt"
	"github.com/cockroachdb/wordpar/internal/packed"
	"github.com/cockroachdb/wordpar/internal/strparse"
)

func parseWord(t *testing.T, td *datadriven.TestData, s string) uint64 {
	v, err := strparse.ParseWord(s)
	if err != nil {
		td.Fatalf(t, "%v", err)
	}
	return v
}

func TestMSBDataDriven(t *testing.T) {
	datadriven.RunTest(t, "testdata/msb", func(t *testing.T, td *datadriven.TestData) string {
		var buf bytes.Buffer
		switch td.Cmd {
		case "msb":
			for _, line := range crstrings.Lines(td.Input) {
				msb, err := MSB(parseWord(t, td, line))
				if err != nil {
					fmt.Fprintf(&buf, "msb(%s): %v\n", line, err)
					continue
				}
				fmt.Fprintf(&buf, "msb(%s) = %d\n", line, msb)
			}
		case "locate":
			for _, line := range crstrings.Lines(td.Input) {
				l, err := BuildMSBLocator(parseWord(t, td, line))
				if err != nil {
					fmt.Fprintf(&buf, "%s: %v\n", line, err)
					continue
				}
				fmt.Fprintf(&buf, "%s\n", l)
			}
		case "lcp":
			for _, line := range crstrings.Lines(td.Input) {
				fields := strings.Fields(line)
				if len(fields) != 2 {
					td.Fatalf(t, "expected two words: %q", line)
				}
				n, err := LCPLen(parseWord(t, td, fields[0]), parseWord(t, td, fields[1]))
				if err != nil {
					fmt.Fprintf(&buf, "lcp(%s, %s): %v\n", fields[0], fields[1], err)
					continue
				}
				fmt.Fprintf(&buf, "lcp(%s, %s) = %d\n", fields[0], fields[1], n)
			}
		case "top-k":
			for _, line := range crstrings.Lines(td.Input) {
				fields := strings.Fields(line)
				if len(fields) != 2 {
					td.Fatalf(t, "expected a word and a length: %q", line)
				}
				k := int(parseWord(t, td, fields[1]))
				v, err := TopKBits(parseWord(t, td, fields[0]), k)
				if err != nil {
					fmt.Fprintf(&buf, "top-k(%s, %d): %v\n", fields[0], k, err)
					continue
				}
				fmt.Fprintf(&buf, "top-k(%s, %d) = %#x\n", fields[0], k, v)
			}
		default:
			td.Fatalf(t, "unknown command: %s", td.Cmd)
		}
		return buf.String()
	})
}

func TestBucketDataDriven(t *testing.T) {
	var b Bucket
	datadriven.RunTest(t, "testdata/bucket", func(t *testing.T, td *datadriven.TestData) string {
		var buf bytes.Buffer
		switch td.Cmd {
		case "add":
			for _, line := range crstrings.Lines(td.Input) {
				v := parseWord(t, td, line)
				if v > 255 {
					td.Fatalf(t, "%d is not a byte", v)
				}
				if err := b.Add(uint8(v)); err != nil {
					fmt.Fprintf(&buf, "add(%d): %v\n", v, err)
				}
			}
			fmt.Fprintf(&buf, "%s\nword=%016x\n", &b, b.Word())
		case "rank":
			for _, line := range crstrings.Lines(td.Input) {
				q := parseWord(t, td, line)
				if q > 255 {
					td.Fatalf(t, "%d is not a byte", q)
				}
				r, err := b.Rank(uint8(q))
				if err != nil {
					fmt.Fprintf(&buf, "rank(%d): %v\n", q, err)
					continue
				}
				fmt.Fprintf(&buf, "rank(%d) = %d\n", q, r)
			}
		case "reset":
			b.Reset()
			fmt.Fprintf(&buf, "%s\nword=%016x\n", &b, b.Word())
		default:
			td.Fatalf(t, "unknown command: %s", td.Cmd)
		}
		return buf.String()
	})
}

func TestTileDataDriven(t *testing.T) {
	datadriven.RunTest(t, "testdata/tile", func(t *testing.T, td *datadriven.TestData) string {
		switch td.Cmd {
		case "tile":
			var q, width, count int
			td.ScanArgs(t, "q", &q)
			td.ScanArgs(t, "width", &width)
			td.ScanArgs(t, "count", &count)
			l, err := MakeLayout(width, count)
			if err != nil {
				return fmt.Sprintf("error: %v\n", err)
			}
			tiled, err := Tile(uint8(q), l)
			if err != nil {
				return fmt.Sprintf("error: %v\n", err)
			}
			f := binfmt.New(tiled.Hi, tiled.Lo, l.Width(), l.Count())
			f.Comment("tile(%d) in %s = %s", q, l, packed.Hex(tiled))
			f.Fields(func(i int, sentinel bool, payload uint64) string {
				return fmt.Sprintf("field %d", i)
			})
			f.Padding("unused")
			return f.String()
		default:
			td.Fatalf(t, "unknown command: %s", td.Cmd)
			return ""
		}
	})
}
