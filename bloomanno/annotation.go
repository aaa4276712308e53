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

package bloomanno

import "math/bits"

// Annotation is a packed row of the abstract n×L annotation matrix
// (SPEC_FULL.md §3): one bit per label/column, 64 columns per word. It backs
// both a Bloom lookup's raw result and the Corrector's running intersection.
type Annotation struct {
	words []uint64
	n     int
}

// NewAnnotation returns an all-zero row with n columns.
func NewAnnotation(n int) *Annotation {
	return &Annotation{words: make([]uint64, (n+63)/64), n: n}
}

// Len returns the number of columns this row covers.
func (a *Annotation) Len() int { return a.n }

// Set marks column col as present.
func (a *Annotation) Set(col int) { a.words[col/64] |= 1 << uint(col%64) }

// Test reports whether column col is set.
func (a *Annotation) Test(col int) bool {
	if col >= a.n {
		return false
	}
	return a.words[col/64]&(1<<uint(col%64)) != 0
}

// PopCount returns the number of set bits, the quantity the Corrector's
// monotone acceptance rule tracks each step (SPEC_FULL.md §4.7).
func (a *Annotation) PopCount() int {
	c := 0
	for _, w := range a.words {
		c += bits.OnesCount64(w)
	}
	return c
}

// And returns a new row holding the bitwise AND of a and b, truncated to the
// shorter of the two lengths. This is the `merge_and` step of the forward and
// backward walks.
func (a *Annotation) And(b *Annotation) *Annotation {
	n := a.n
	if b.n < n {
		n = b.n
	}
	out := NewAnnotation(n)
	for i := range out.words {
		out.words[i] = a.words[i] & b.words[i]
	}
	return out
}

// Clone returns an independent copy.
func (a *Annotation) Clone() *Annotation {
	out := &Annotation{words: make([]uint64, len(a.words)), n: a.n}
	copy(out.words, a.words)
	return out
}

// Grow returns a copy extended to n columns (n must be >= a.Len()),
// preserving all existing bits. Used by PreciseAnnotator when a later
// AddColumn call widens the matrix after rows already exist.
func (a *Annotation) Grow(n int) *Annotation {
	if n <= a.n {
		return a.Clone()
	}
	out := NewAnnotation(n)
	copy(out.words, a.words)
	return out
}

// Words exposes the packed backing words, e.g. for serialization or for
// correct.Result.Bits per SPEC_FULL.md §4.10's RowAt contract.
func (a *Annotation) Words() []uint64 { return a.words }
