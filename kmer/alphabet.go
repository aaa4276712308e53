// Copyright © 2023-2024 Wei Shen <shenwei356@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package kmer

import "math/bits"

// Sentinel is the reserved code for the sentinel character ($), always 0.
const Sentinel uint8 = 0

// Alphabet maps a byte alphabet to compact codes in [0, len(Chars)).
// Code 0 is always the sentinel; Chars[0] is conventionally '$'.
type Alphabet struct {
	Chars       []byte
	code        [256]int8
	complement  [256]byte // only meaningful when HasComplement
	hasComplement bool
	BitsPerChar uint
}

// Encoding never fails: bytes outside the alphabet map to the sentinel.

// NewAlphabet builds an Alphabet from an ordered list of characters.
// chars[0] must be the sentinel character.
func NewAlphabet(chars []byte) *Alphabet {
	a := &Alphabet{Chars: append([]byte(nil), chars...)}
	for i := range a.code {
		a.code[i] = -1
	}
	for i, c := range a.Chars {
		a.code[c] = int8(i)
		a.code[lower(c)] = int8(i)
	}
	a.BitsPerChar = uint(bitsFor(len(a.Chars)))
	return a
}

func lower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + 32
	}
	return b
}

func bitsFor(n int) int {
	if n <= 1 {
		return 1
	}
	return bits.Len(uint(n - 1))
}

// WithComplement registers a base-pairing complement table (for canonical-mode
// reverse-complement extraction) and returns the alphabet for chaining.
func (a *Alphabet) WithComplement(pairs map[byte]byte) *Alphabet {
	a.hasComplement = true
	for i := range a.complement {
		a.complement[i] = byte(i)
	}
	for k, v := range pairs {
		a.complement[k] = v
		a.complement[lower(k)] = lower(v)
	}
	return a
}

// HasComplement reports whether reverse-complementing is supported.
func (a *Alphabet) HasComplement() bool { return a.hasComplement }

// Complement returns the complementary raw byte of b.
func (a *Alphabet) Complement(b byte) byte { return a.complement[b] }

// Sigma returns |Σ|, the alphabet size including the sentinel.
func (a *Alphabet) Sigma() int { return len(a.Chars) }

// Encode returns the code for a raw input byte, mapping unknown bytes to the sentinel.
func (a *Alphabet) Encode(b byte) uint8 {
	c := a.code[b]
	if c < 0 {
		return Sentinel
	}
	return uint8(c)
}

// Decode returns the display character for a code.
func (a *Alphabet) Decode(code uint8) byte {
	if int(code) >= len(a.Chars) {
		return '?'
	}
	return a.Chars[code]
}

// DNA5 is the nucleotide alphabet used throughout this module: sentinel plus A,C,G,T.
var DNA5 = NewAlphabet([]byte("$ACGT")).WithComplement(map[byte]byte{
	'A': 'T', 'C': 'G', 'G': 'C', 'T': 'A',
})

// Protein is the 20-amino-acid alphabet plus sentinel, no complement.
var Protein = NewAlphabet([]byte("$ACDEFGHIKLMNPQRSTVWY"))
