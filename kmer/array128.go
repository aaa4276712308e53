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

// array128 packs (k+1)-mers into two uint64 words each, for
// 64 < (k+1)*bits_per_char <= 128.
type array128 struct {
	p      Params
	words  [][2]uint64
	counts []uint8
}

func newArray128(p Params, capacity int) *array128 {
	return &array128{p: p, words: make([][2]uint64, 0, capacity), counts: make([]uint8, 0, capacity)}
}

func (a *array128) Len() int { return len(a.words) }

func (a *array128) Less(i, j int) bool { return cmpWords(a.words[i][:], a.words[j][:]) < 0 }

func (a *array128) Equal(i, j int) bool { return eqWords(a.words[i][:], a.words[j][:]) }

func (a *array128) Swap(i, j int) {
	a.words[i], a.words[j] = a.words[j], a.words[i]
	a.counts[i], a.counts[j] = a.counts[j], a.counts[i]
}

func (a *array128) CharAt(i, pos int) uint8 {
	return charAt(&a.p, a.words[i][:], pos)
}

func (a *array128) CompareSuffix(i, j, offset int) bool {
	return compareSuffixWords(&a.p, a.words[i][:], a.words[j][:], offset)
}

func (a *array128) CompareSource(i, j int) bool {
	return compareSourceWords(&a.p, a.words[i][:], a.words[j][:])
}

func (a *array128) Count(i int) uint8 { return a.counts[i] }

func (a *array128) SetCount(i int, c uint8) { a.counts[i] = c }

func (a *array128) AppendToPrev(i int, c uint8) {
	result := toPrevWords(&a.p, a.words[i][:], c)
	var w [2]uint64
	copy(w[:], result)
	a.words = append(a.words, w)
	a.counts = append(a.counts, a.counts[i])
}

func (a *array128) Truncate(n int) {
	a.words = a.words[:n]
	a.counts = a.counts[:n]
}

func (a *array128) Decode(i int) string { return decodeString(&a.p, a.words[i][:]) }

func (a *array128) K() int              { return a.p.K }
func (a *array128) BitsPerChar() uint   { return a.p.BitsPerChar }
func (a *array128) Alphabet() *Alphabet { return a.p.Alpha }
func (a *array128) Width() Width        { return a.p.Width }

func (a *array128) NewEmpty(capacity int) Array { return newArray128(a.p, capacity) }

func (a *array128) AppendFrom(src Array, j int) {
	o := src.(*array128)
	a.words = append(a.words, o.words[j])
	a.counts = append(a.counts, o.counts[j])
}

func (a *array128) Append(seq []byte, count uint8) {
	var w [2]uint64
	encodeInto(&a.p, w[:], seq)
	a.words = append(a.words, w)
	a.counts = append(a.counts, count)
}
