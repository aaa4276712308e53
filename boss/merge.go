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

package boss

import "github.com/pkg/errors"

// ErrIncompatibleChunks is returned by Merge when chunks disagree on k,
// alphabet size, canonical flag, or weight width (SPEC_FULL.md §4.5 / §7
// IncompatibleChunks).
var ErrIncompatibleChunks = errors.New("boss: incompatible chunk metadata")

// Merge concatenates BOSS chunks built independently per suffix bucket
// (SPEC_FULL.md §4.5). Chunks store no head row, so every chunk
// contributes all of its entries in order; F arrays are added elementwise. Merge is associative: grouping
// the inputs differently yields the same pointwise (W, last, F).
func Merge(chunks ...*Chunk) (*Chunk, error) {
	if len(chunks) == 0 {
		return nil, errors.New("boss: no chunks to merge")
	}
	first := chunks[0]
	for _, c := range chunks[1:] {
		if c.K != first.K || c.AlphSize != first.AlphSize || c.Canonical != first.Canonical {
			return nil, ErrIncompatibleChunks
		}
		if (c.Weights == nil) != (first.Weights == nil) {
			return nil, ErrIncompatibleChunks
		}
		if c.Weights != nil && c.MaxWeight != first.MaxWeight {
			return nil, ErrIncompatibleChunks
		}
	}

	out := &Chunk{
		AlphSize:  first.AlphSize,
		K:         first.K,
		Canonical: first.Canonical,
		MaxWeight: first.MaxWeight,
		Alpha:     first.Alpha,
		F:         make([]uint64, first.AlphSize+1),
	}
	if first.Weights != nil {
		out.Weights = make([]uint8, 0)
	}

	n := 0
	for _, c := range chunks {
		n += len(c.W)
	}
	out.W = make([]uint32, 0, n)
	out.Last = make([]bool, 0, n)
	out.Kmers = make([]string, 0, n)
	out.LastChar = make([]uint8, 0, n)
	if out.Weights != nil {
		out.Weights = make([]uint8, 0, n)
	}

	for _, c := range chunks {
		out.W = append(out.W, c.W...)
		out.Last = append(out.Last, c.Last...)
		out.Kmers = append(out.Kmers, c.Kmers...)
		out.LastChar = append(out.LastChar, c.LastChar...)
		if out.Weights != nil {
			out.Weights = append(out.Weights, c.Weights...)
		}
		for a := 0; a <= c.AlphSize; a++ {
			out.F[a] += c.F[a]
		}
	}

	return out, nil
}
