// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package binfmt exposes utilities for formatting packed words one field per
// line, with descriptive comments.
package binfmt

import (
	"bytes"
	"fmt"
	"strings"
)

// New constructs a formatter for the word hi:lo divided into count fields of
// width bits each, field 0 being the lowest.
func New(hi, lo uint64, width, count int) *Formatter {
	if width < 1 || width > 64 || width*count > 128 {
		panic(fmt.Sprintf("binfmt: %d fields of %d bits do not fit in 128 bits", count, width))
	}
	return &Formatter{hi: hi, lo: lo, width: width, count: count}
}

// Formatter is a utility for formatting packed words with descriptive
// comments.
type Formatter struct {
	buf    bytes.Buffer
	lines  [][2]string // (binary data, comment) tuples
	hi, lo uint64
	width  int
	count  int

	linePrefix string
}

// SetLinePrefix sets a prefix for each line of formatted output.
func (f *Formatter) SetLinePrefix(prefix string) {
	f.linePrefix = prefix
}

// Bits returns field i of the word, sentinel included.
func (f *Formatter) Bits(i int) uint64 {
	return f.bitRange(uint(i*f.width), uint(f.width))
}

// Field formats field i on its own line. The sentinel (top) bit is separated
// from the payload:
//
//	071-063: 1 00000001 # comment
func (f *Formatter) Field(i int, format string, args ...interface{}) {
	if i < 0 || i >= f.count {
		panic(fmt.Sprintf("binfmt: field %d out of range [0, %d)", i, f.count))
	}
	start := i * f.width
	fmt.Fprintf(&f.buf, "%03d-%03d: ", start+f.width-1, start)
	v := f.Bits(i)
	fmt.Fprintf(&f.buf, "%d %0*b", v>>(f.width-1), f.width-1, v&(1<<(f.width-1)-1))
	f.newline(f.buf.String(), fmt.Sprintf(format, args...))
}

// Fields formats every field, most significant first, commenting each with
// the output of comment.
func (f *Formatter) Fields(comment func(i int, sentinel bool, payload uint64) string) {
	for i := f.count - 1; i >= 0; i-- {
		v := f.Bits(i)
		f.Field(i, "%s", comment(i, v>>(f.width-1) != 0, v&(1<<(f.width-1)-1)))
	}
}

// Padding formats the bits above the last field, if any.
func (f *Formatter) Padding(format string, args ...interface{}) {
	used := f.width * f.count
	top := 64
	if f.hi != 0 || used > 64 {
		top = 128
	}
	if used >= top {
		return
	}
	fmt.Fprintf(&f.buf, "%03d-%03d: %0*b", top-1, used, top-used, f.bitRange(uint(used), uint(top-used)))
	f.newline(f.buf.String(), fmt.Sprintf(format, args...))
}

// Comment adds a line holding only a comment.
func (f *Formatter) Comment(format string, args ...interface{}) {
	f.newline("", fmt.Sprintf(format, args...))
}

// String returns the current formatted output.
func (f *Formatter) String() string {
	f.buf.Reset()
	// Identify the max width of the binary data so that we can add padding to
	// align comments on the right.
	binaryLineWidth := 0
	for _, lineData := range f.lines {
		binaryLineWidth = max(binaryLineWidth, len(lineData[0]))
	}
	for _, lineData := range f.lines {
		fmt.Fprint(&f.buf, f.linePrefix)
		fmt.Fprint(&f.buf, lineData[0])
		if len(lineData[1]) > 0 {
			if len(lineData[0]) == 0 {
				// There's no binary data on this line, just a comment. Print
				// the comment left-aligned.
				fmt.Fprint(&f.buf, "# ")
			} else {
				// Align the comment to the right of the binary data.
				fmt.Fprint(&f.buf, strings.Repeat(" ", binaryLineWidth-len(lineData[0])))
				fmt.Fprint(&f.buf, " # ")
			}
			fmt.Fprint(&f.buf, lineData[1])
		}
		fmt.Fprintln(&f.buf)
	}
	return f.buf.String()
}

// bitRange returns n (<= 64) bits of the word starting at bit off.
func (f *Formatter) bitRange(off, n uint) uint64 {
	var v uint64
	switch {
	case off >= 64:
		v = f.hi >> (off - 64)
	case off == 0:
		v = f.lo
	default:
		v = f.lo>>off | f.hi<<(64-off)
	}
	if n < 64 {
		v &= 1<<n - 1
	}
	return v
}

func (f *Formatter) newline(binaryData, comment string) {
	f.lines = append(f.lines, [2]string{binaryData, comment})
	f.buf.Reset()
}
