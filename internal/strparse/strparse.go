// Copyright 2024 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package strparse provides facilities for parsing word expressions such as
// "2^56+13", "1<<63", "0xff" or "0b1100_0111", intended for use in tests and
// on the command line.
package strparse

import (
	"fmt"
	"math/bits"
	"strconv"
	"strings"
	"unicode"

	"github.com/cockroachdb/errors"
)

// Separators are the runes that always form tokens of their own in a word
// expression.
const Separators = "+-^<,"

// Parser is a helper used to implement parsing of word expressions.
//
// It takes a string and splits it into tokens. Tokens are separated by
// whitespace; in addition user-specified separators are also always separate
// tokens. For example, when passed the separators `+^` the string `2^56+13`
// results in tokens `2`, `^`, `56`, `+`, `13`.
//
// All Parser methods throw panics instead of returning errors. The code that
// uses a Parser can recover them and convert them to errors, as ParseWord
// does.
type Parser struct {
	original  string
	tokens    []token
	lastToken token
}

type token struct {
	tok    string
	offset int
}

// MakeParser constructs a new Parser that converts any instance of the runes
// contained in [separators] into separate tokens, and consumes the provided
// input string.
func MakeParser(separators string, input string) Parser {
	p := Parser{original: input}

	s := input
	off := 0
	for len(s) > 0 {
		nonWhiteSpacePos := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsSpace(r) })
		switch nonWhiteSpacePos {
		case -1:
			// Only whitespace.
			off += len(s)
			s = s[len(s):]
		case 0:
			// s is the beginning of a non-whitespace token. It might be a
			// separator, or it might be a number.
			wsPos := strings.IndexFunc(s, unicode.IsSpace)
			switch pos := strings.IndexAny(s, separators); pos {
			case -1:
				if wsPos == -1 {
					wsPos = len(s)
				}
				p.tokens = append(p.tokens, token{tok: s[:wsPos], offset: off})
				off += wsPos
				s = s[wsPos:]
			case 0:
				p.tokens = append(p.tokens, token{tok: s[:1], offset: off})
				off += 1
				s = s[1:]
			default:
				if wsPos != -1 && wsPos < pos {
					pos = wsPos
				}
				p.tokens = append(p.tokens, token{tok: s[:pos], offset: off})
				off += pos
				s = s[pos:]
			}
		default:
			// Whitespace.
			off += nonWhiteSpacePos
			s = s[nonWhiteSpacePos:]
		}
	}
	return p
}

// Done returns true if there are no more tokens.
func (p *Parser) Done() bool {
	return len(p.tokens) == 0
}

// Peek returns the next token, without consuming the token. Returns "" if there
// are no more tokens.
func (p *Parser) Peek() string {
	if p.Done() {
		p.lastToken = token{}
		return ""
	}
	p.lastToken = p.tokens[0]
	return p.tokens[0].tok
}

// Next returns the next token, or "" if there are no more tokens.
func (p *Parser) Next() string {
	res := p.Peek()
	if res != "" {
		p.tokens = p.tokens[1:]
	}
	return res
}

// Expect consumes the next tokens, verifying that they exactly match the
// arguments.
func (p *Parser) Expect(tokens ...string) {
	for _, tok := range tokens {
		if res := p.Next(); res != tok {
			p.Errf("expected %q, got %q", tok, res)
		}
	}
}

// Uint64 parses the next token as an unsigned integer literal. Prefixes 0x,
// 0o and 0b and digit-separating underscores are accepted.
func (p *Parser) Uint64() uint64 {
	tok := p.Next()
	if tok == "" {
		p.Errf("expected number")
	}
	x, err := strconv.ParseUint(tok, 0, 64)
	if err != nil {
		p.Errf("cannot parse number: %v", err)
	}
	return x
}

// Term parses a number optionally raised to a power (b^e) or shifted left
// (v<<n).
func (p *Parser) Term() uint64 {
	v := p.Uint64()
	switch p.Peek() {
	case "^":
		p.Next()
		e := p.Uint64()
		mul := func(a, b uint64) uint64 {
			hi, lo := bits.Mul64(a, b)
			if hi != 0 {
				p.Errf("%d^%d overflows 64 bits", v, e)
			}
			return lo
		}
		// Exponentiation by squaring: at most 64 rounds for any exponent.
		r := uint64(1)
		for b, n := v, e; n > 0; n >>= 1 {
			if n&1 == 1 {
				r = mul(r, b)
			}
			if n > 1 {
				b = mul(b, b)
			}
		}
		return r
	case "<":
		p.Expect("<", "<")
		n := p.Uint64()
		if n >= 64 || v<<n>>n != v {
			p.Errf("%d<<%d overflows 64 bits", v, n)
		}
		return v << n
	}
	return v
}

// Word parses a sum or difference of terms, e.g. 2^56+13 or 1<<63-1.
func (p *Parser) Word() uint64 {
	v := p.Term()
	for {
		switch p.Peek() {
		case "+":
			p.Next()
			var carry uint64
			v, carry = bits.Add64(v, p.Term(), 0)
			if carry != 0 {
				p.Errf("sum overflows 64 bits")
			}
		case "-":
			p.Next()
			var borrow uint64
			v, borrow = bits.Sub64(v, p.Term(), 0)
			if borrow != 0 {
				p.Errf("difference is negative")
			}
		default:
			return v
		}
	}
}

// Errf panics with an error which includes the original string and the last
// token.
func (p *Parser) Errf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	panic(errors.Errorf("error parsing %q at token %q: %s", p.original, p.lastToken.tok, msg))
}

// ParseWord parses a single word expression.
func ParseWord(s string) (v uint64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = toError(r)
		}
	}()
	p := MakeParser(Separators, s)
	v = p.Word()
	if !p.Done() {
		p.Errf("unexpected trailing input %q", p.Peek())
	}
	return v, nil
}

// ParseWords parses a comma separated list of word expressions. An empty
// string yields an empty list.
func ParseWords(s string) (vs []uint64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = toError(r)
		}
	}()
	p := MakeParser(Separators, s)
	for !p.Done() {
		vs = append(vs, p.Word())
		if !p.Done() {
			p.Expect(",")
		}
	}
	return vs, nil
}

func toError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return errors.Newf("%v", r)
}
