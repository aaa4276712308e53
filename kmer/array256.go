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

// array256 packs (k+1)-mers into four uint64 words each, for
// 128 < (k+1)*bits_per_char <= 256.
type array256 struct {
	p      Params
	words  [][4]uint64
	counts []uint8
}

func newArray256(p Params, capacity int) *array256 {
	return &array256{p: p, words: make([][4]uint64, 0, capacity), counts: make([]uint8, 0, capacity)}
}

func (a *array256) Len() int { return len(a.words) }

func (a *array256) Less(i, j int) bool { return cmpWords(a.words[i][:], a.words[j][:]) < 0 }

func (a *array256) Equal(i, j int) bool { return eqWords(a.words[i][:], a.words[j][:]) }

func (a *array256) Swap(i, j int) {
	a.words[i], a.words[j] = a.words[j], a.words[i]
	a.counts[i], a.counts[j] = a.counts[j], a.counts[i]
}

func (a *array256) CharAt(i, pos int) uint8 {
	return charAt(&a.p, a.words[i][:], pos)
}

func (a *array256) CompareSuffix(i, j, offset int) bool {
	return compareSuffixWords(&a.p, a.words[i][:], a.words[j][:], offset)
}

func (a *array256) CompareSource(i, j int) bool {
	return compareSourceWords(&a.p, a.words[i][:], a.words[j][:])
}

func (a *array256) Count(i int) uint8 { return a.counts[i] }

func (a *array256) SetCount(i int, c uint8) { a.counts[i] = c }

func (a *array256) AppendToPrev(i int, c uint8) {
	result := toPrevWords(&a.p, a.words[i][:], c)
	var w [4]uint64
	copy(w[:], result)
	a.words = append(a.words, w)
	a.counts = append(a.counts, a.counts[i])
}

func (a *array256) Truncate(n int) {
	a.words = a.words[:n]
	a.counts = a.counts[:n]
}

func (a *array256) Decode(i int) string { return decodeString(&a.p, a.words[i][:]) }

func (a *array256) K() int              { return a.p.K }
func (a *array256) BitsPerChar() uint   { return a.p.BitsPerChar }
func (a *array256) Alphabet() *Alphabet { return a.p.Alpha }
func (a *array256) Width() Width        { return a.p.Width }

func (a *array256) NewEmpty(capacity int) Array { return newArray256(a.p, capacity) }

func (a *array256) AppendFrom(src Array, j int) {
	o := src.(*array256)
	a.words = append(a.words, o.words[j])
	a.counts = append(a.counts, o.counts[j])
}

func (a *array256) Append(seq []byte, count uint8) {
	var w [4]uint64
	encodeInto(&a.p, w[:], seq)
	a.words = append(a.words, w)
	a.counts = append(a.counts, count)
}
