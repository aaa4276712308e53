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

import "fmt"

// Width identifies which fixed-word-count representation a (k+1)-mer needs.
type Width uint8

const (
	W64 Width = iota
	W128
	W256
)

func (w Width) String() string {
	switch w {
	case W64:
		return "64-bit"
	case W128:
		return "128-bit"
	case W256:
		return "256-bit"
	default:
		return "unknown-width"
	}
}

// NWords returns how many uint64 words back a kmer of this width.
func (w Width) NWords() int {
	switch w {
	case W64:
		return 1
	case W128:
		return 2
	case W256:
		return 4
	default:
		return 0
	}
}

// ErrWidthOverflow is returned when (k+1)*bitsPerChar exceeds 256 bits.
type ErrWidthOverflow struct {
	K           int
	BitsPerChar uint
}

func (e *ErrWidthOverflow) Error() string {
	return fmt.Sprintf("kmer: (k+1)*bits_per_char = %d exceeds the maximum supported width of 256 bits (k=%d, bits_per_char=%d)",
		(e.K+1)*int(e.BitsPerChar), e.K, e.BitsPerChar)
}

// SelectWidth chooses the narrowest of {64,128,256} bits that can hold a
// (k+1)-mer packed at bitsPerChar bits per character.
func SelectWidth(k int, bitsPerChar uint) (Width, error) {
	total := (k + 1) * int(bitsPerChar)
	switch {
	case total <= 64:
		return W64, nil
	case total <= 128:
		return W128, nil
	case total <= 256:
		return W256, nil
	default:
		return 0, &ErrWidthOverflow{K: k, BitsPerChar: bitsPerChar}
	}
}
