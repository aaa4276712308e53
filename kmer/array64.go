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

// array64 packs (k+1)-mers into a single uint64 each, for
// (k+1)*bits_per_char <= 64 (e.g. k<=20 over the DNA5 alphabet).
type array64 struct {
	p      Params
	words  []uint64
	counts []uint8
}

func newArray64(p Params, capacity int) *array64 {
	return &array64{p: p, words: make([]uint64, 0, capacity), counts: make([]uint8, 0, capacity)}
}

func (a *array64) Len() int { return len(a.words) }

func (a *array64) Less(i, j int) bool { return a.words[i] < a.words[j] }

func (a *array64) Equal(i, j int) bool { return a.words[i] == a.words[j] }

func (a *array64) Swap(i, j int) {
	a.words[i], a.words[j] = a.words[j], a.words[i]
	a.counts[i], a.counts[j] = a.counts[j], a.counts[i]
}

func (a *array64) CharAt(i, pos int) uint8 {
	w := a.words[i : i+1]
	return charAt(&a.p, w, pos)
}

func (a *array64) CompareSuffix(i, j, offset int) bool {
	return compareSuffixWords(&a.p, a.words[i:i+1], a.words[j:j+1], offset)
}

func (a *array64) CompareSource(i, j int) bool {
	return compareSourceWords(&a.p, a.words[i:i+1], a.words[j:j+1])
}

func (a *array64) Count(i int) uint8 { return a.counts[i] }

func (a *array64) SetCount(i int, c uint8) { a.counts[i] = c }

func (a *array64) AppendToPrev(i int, c uint8) {
	result := toPrevWords(&a.p, a.words[i:i+1], c)
	a.words = append(a.words, result[0])
	a.counts = append(a.counts, a.counts[i])
}

func (a *array64) Truncate(n int) {
	a.words = a.words[:n]
	a.counts = a.counts[:n]
}

func (a *array64) Decode(i int) string { return decodeString(&a.p, a.words[i:i+1]) }

func (a *array64) K() int             { return a.p.K }
func (a *array64) BitsPerChar() uint  { return a.p.BitsPerChar }
func (a *array64) Alphabet() *Alphabet { return a.p.Alpha }
func (a *array64) Width() Width       { return a.p.Width }

func (a *array64) NewEmpty(capacity int) Array { return newArray64(a.p, capacity) }

func (a *array64) AppendFrom(src Array, j int) {
	o := src.(*array64)
	a.words = append(a.words, o.words[j])
	a.counts = append(a.counts, o.counts[j])
}

// Append adds a freshly-encoded (k+1)-mer with the given count.
func (a *array64) Append(seq []byte, count uint8) {
	var w [1]uint64
	encodeInto(&a.p, w[:], seq)
	a.words = append(a.words, w[0])
	a.counts = append(a.counts, count)
}

// AppendCode adds an already-encoded packed value directly.
func (a *array64) AppendCode(code uint64, count uint8) {
	a.words = append(a.words, code)
	a.counts = append(a.counts, count)
}

// Code returns the raw packed value of element i (used by callers that
// need the total order key directly, e.g. dedup comparisons across widths).
func (a *array64) Code(i int) uint64 { return a.words[i] }
