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

// bigint.go implements the handful of fixed-word-count unsigned-integer
// operations the 64/128/256-bit kmer widths share: a kmer is just a
// []uint64 of length 1, 2 or 4 with word 0 most significant, and all three
// widths route through the same bit-field get/set/shift/clear primitives
// so the width only has to be chosen once, at construction (see width.go).

func maskW(w uint) uint64 {
	if w >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << w) - 1
}

// cmpWords returns -1, 0, or 1 comparing a and b as equal-length big-endian
// unsigned integers.
func cmpWords(a, b []uint64) int {
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

func eqWords(a, b []uint64) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// shiftLeftN shifts the whole word array left by n bits (0<=n<64),
// zero-filling from the bottom; bits shifted out of word 0 are lost.
func shiftLeftN(words []uint64, n uint) {
	if n == 0 {
		return
	}
	nw := len(words)
	for i := 0; i < nw; i++ {
		words[i] <<= n
		if i+1 < nw {
			words[i] |= words[i+1] >> (64 - n)
		}
	}
}

// orWords ORs src into dst in place.
func orWords(dst, src []uint64) {
	for i := range dst {
		dst[i] |= src[i]
	}
}

// clearHighBits zeroes every bit at position >= keep, retaining only the
// lowest `keep` bits of words in place.
func clearHighBits(words []uint64, keep uint) {
	nw := len(words)
	full := int(keep / 64)
	rem := keep % 64
	for i := 0; i < nw-full; i++ {
		if rem > 0 && i == nw-full-1 {
			words[i] &= maskW(rem)
		} else {
			words[i] = 0
		}
	}
}

// clearLowBits zeroes the lowest n bits of words in place (n may exceed 64).
func clearLowBits(words []uint64, n uint) {
	nw := len(words)
	full := int(n / 64)
	for i := 0; i < full && i < nw; i++ {
		words[nw-1-i] = 0
	}
	rem := n % 64
	if rem > 0 && full < nw {
		words[nw-1-full] &^= maskW(rem)
	}
}

// getField reads w (<=64) bits at absolute bit-offset off, counted from the
// least-significant bit (bit 0) of the last word.
func getField(words []uint64, off, w uint) uint64 {
	nw := len(words)
	idx := nw - 1 - int(off/64)
	bitInWord := off % 64
	if bitInWord+w <= 64 {
		return (words[idx] >> bitInWord) & maskW(w)
	}
	lowWidth := 64 - bitInWord
	highWidth := w - lowWidth
	low := words[idx] >> bitInWord
	high := words[idx-1] & maskW(highWidth)
	return (high << lowWidth) | low
}

// setField ORs v's low w bits into the field at absolute bit-offset off.
// The field is assumed to be zero beforehand.
func setField(words []uint64, off, w uint, v uint64) {
	v &= maskW(w)
	nw := len(words)
	idx := nw - 1 - int(off/64)
	bitInWord := off % 64
	if bitInWord+w <= 64 {
		words[idx] |= v << bitInWord
		return
	}
	lowWidth := 64 - bitInWord
	words[idx] |= (v & maskW(lowWidth)) << bitInWord
	words[idx-1] |= v >> lowWidth
}

// highBitsEqual reports whether a and b agree on every bit at position
// >= fromBit (bits below fromBit are ignored). Both operands are assumed to
// have no set bits above their kmer's UsedBits width.
func highBitsEqual(a, b []uint64, fromBit uint) bool {
	ca := cloneWords(a)
	cb := cloneWords(b)
	clearLowBits(ca, fromBit)
	clearLowBits(cb, fromBit)
	return eqWords(ca, cb)
}

// lowBitsEqual reports whether a and b agree on every bit at position
// < toBit (bits at or above toBit are ignored). Both operands are assumed to
// have no set bits above their kmer's UsedBits width.
func lowBitsEqual(a, b []uint64, toBit uint) bool {
	ca := cloneWords(a)
	cb := cloneWords(b)
	clearHighBits(ca, toBit)
	clearHighBits(cb, toBit)
	return eqWords(ca, cb)
}

func cloneWords(words []uint64) []uint64 {
	out := make([]uint64, len(words))
	copy(out, words)
	return out
}
