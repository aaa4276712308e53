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

import "sort"

// Params carries the layout a packed (k+1)-mer needs to interpret its words:
// node length K, the alphabet, and the derived bit widths. All three
// concrete array widths (array64.go, array128.go, array256.go) share it.
type Params struct {
	K           int
	Alpha       *Alphabet
	BitsPerChar uint
	UsedBits    uint // (K+1)*BitsPerChar
	Width       Width
}

func newParams(k int, alpha *Alphabet) (Params, error) {
	bpc := alpha.BitsPerChar
	w, err := SelectWidth(k, bpc)
	if err != nil {
		return Params{}, err
	}
	return Params{
		K:           k,
		Alpha:       alpha,
		BitsPerChar: bpc,
		UsedBits:    uint(k+1) * bpc,
		Width:       w,
	}, nil
}

// charAt/setChar place character position i (0 = edge label .. K = last node
// character) at bit-offset i*BitsPerChar, so position K occupies the
// highest field and position 0 the lowest. This makes plain unsigned
// integer comparison of the packed words equal co-lexicographic order on
// the underlying character sequence (compare the last character first),
// which is the order BOSS construction (§4.4) requires for adjacent-kmer
// node-suffix comparisons and a monotonic F pass. See DESIGN.md.
func charAt(p *Params, words []uint64, i int) uint8 {
	return uint8(getField(words, uint(i)*p.BitsPerChar, p.BitsPerChar))
}

func setChar(p *Params, words []uint64, i int, code uint8) {
	setField(words, uint(i)*p.BitsPerChar, p.BitsPerChar, uint64(code))
}

func encodeInto(p *Params, words []uint64, seq []byte) {
	for i := 0; i <= p.K; i++ {
		setChar(p, words, i, p.Alpha.Encode(seq[i]))
	}
}

func decodeString(p *Params, words []uint64) string {
	buf := make([]byte, p.K+1)
	for i := 0; i <= p.K; i++ {
		buf[i] = p.Alpha.Decode(charAt(p, words, i))
	}
	return string(buf)
}

// compareSuffixWords checks positions offset..K — the high bits starting at
// bit offset*BitsPerChar — for equality.
func compareSuffixWords(p *Params, a, b []uint64, offset int) bool {
	return highBitsEqual(a, b, uint(offset)*p.BitsPerChar)
}

// compareSourceWords checks positions 0..K-1 — the low bits below bit
// K*BitsPerChar — for equality. This is the source-node grouping BOSS chunk
// construction's sink-dummy redundancy rule needs (SPEC_FULL.md §4.4 step 2),
// distinct from compareSuffixWords' target-node grouping used by steps 3/4.
func compareSourceWords(p *Params, a, b []uint64) bool {
	return lowBitsEqual(a, b, uint(p.K)*p.BitsPerChar)
}

// toPrevWords computes to_prev(x, c): y[0]=c (the new sentinel character
// takes the low field), y[i+1]=x[i] for i=0..K-1 (everything shifts up one
// field), dropping the old position K. See SPEC_FULL.md §4.3 / DESIGN.md for
// the bit-layout derivation.
func toPrevWords(p *Params, words []uint64, c uint8) []uint64 {
	bpc := p.BitsPerChar

	shifted := cloneWords(words)
	shiftLeftN(shifted, bpc)           // positions 0..k-1 move up to 1..k
	clearHighBits(shifted, p.UsedBits) // drop the old position k, now beyond UsedBits
	setField(shifted, 0, bpc, uint64(c)) // position 0's field is 0 after the shift

	return shifted
}

// Array is a sorted (or sortable) collection of same-width (k+1)-mers with
// optional saturating per-kmer counts. Exactly one of array64/128/256
// backs any given Array at runtime, chosen once by New via SelectWidth.
type Array interface {
	sort.Interface

	// Equal reports whether kmers i and j are identical (ignoring counts).
	Equal(i, j int) bool

	// CharAt returns the character at position pos (0=edge label, K=last
	// node character) of kmer i.
	CharAt(i, pos int) uint8

	// CompareSuffix reports whether kmers i and j share identical
	// characters at positions offset..K.
	CompareSuffix(i, j, offset int) bool

	// CompareSource reports whether kmers i and j share identical
	// characters at positions 0..K-1 (the source node).
	CompareSource(i, j int) bool

	Count(i int) uint8
	SetCount(i int, c uint8)

	// AppendToPrev appends to_prev(kmers[i], c) to the end of the array,
	// carrying over kmers[i]'s count, growing the backing storage as needed.
	AppendToPrev(i int, c uint8)

	// Truncate shrinks the array to the first n elements.
	Truncate(n int)

	// Decode renders kmer i as a string using the array's alphabet.
	Decode(i int) string

	K() int
	BitsPerChar() uint
	Alphabet() *Alphabet
	Width() Width

	// NewEmpty returns a new, empty Array of the same width/k/alphabet.
	NewEmpty(capacity int) Array

	// AppendFrom appends element j of src (which must share this array's
	// width) onto this array.
	AppendFrom(src Array, j int)
}

// Dedup collapses adjacent equal kmers in a sorted Array in place, summing
// their counts with saturation, and returns the new length. The caller is
// responsible for sorting first and truncating to the returned length.
func Dedup(a Array) int {
	n := a.Len()
	if n == 0 {
		return 0
	}
	w := 0
	for i := 1; i < n; i++ {
		if a.Equal(w, i) {
			a.SetCount(w, addSaturating(a.Count(w), a.Count(i)))
		} else {
			w++
			if w != i {
				a.Swap(w, i)
			}
		}
	}
	return w + 1
}

func addSaturating(a, b uint8) uint8 {
	sum := int(a) + int(b)
	if sum > 255 {
		return 255
	}
	return uint8(sum)
}

// AppendSeq encodes seq (length K+1) and appends it to a with the given
// saturating count, dispatching once on a's concrete width.
func AppendSeq(a Array, seq []byte, count uint8) {
	switch t := a.(type) {
	case *array64:
		t.Append(seq, count)
	case *array128:
		t.Append(seq, count)
	case *array256:
		t.Append(seq, count)
	}
}

// IsSourceDummy reports whether kmer i is a source dummy still needing
// further padding: position 0 (the leading, lowest-field character) is the
// sentinel but position 1 is real. A fully-padded source dummy (sentinel in
// every position) no longer satisfies this, which is what stops
// dummy.Run's recovery at round 0 for already-terminal seeds. See
// SPEC_FULL.md §4.3.
func IsSourceDummy(a Array, i int) bool {
	return a.CharAt(i, 0) == Sentinel && a.CharAt(i, 1) != Sentinel
}

// IsDummySink reports whether kmer i is a sink dummy: its node's last
// character (position K) is the sentinel but its edge label (position 0) is
// real (used by the BOSS chunk builder's redundancy rule, SPEC_FULL.md §4.4
// step 2).
func IsDummySink(a Array, i int) bool {
	return a.CharAt(i, a.K()) == Sentinel && a.CharAt(i, 0) != Sentinel
}

// New builds an Array of the narrowest width that can hold (k+1)-mers over
// alpha, with room for `capacity` elements.
func New(k int, alpha *Alphabet, capacity int) (Array, error) {
	p, err := newParams(k, alpha)
	if err != nil {
		return nil, err
	}
	switch p.Width {
	case W64:
		return newArray64(p, capacity), nil
	case W128:
		return newArray128(p, capacity), nil
	default:
		return newArray256(p, capacity), nil
	}
}
