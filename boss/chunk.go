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

// Package boss builds, merges, and traverses the succinct (W, last, F)
// representation of a de Bruijn graph (SPEC_FULL.md §4.4/§4.5/§4.9).
package boss

import (
	"github.com/bossgraph/dbgbuild/kmer"
)

// Chunk holds one independently-built (W, last, F, weights?) triple,
// SPEC_FULL.md §4.4. W entries in [0,AlphSize) carry their plain edge
// label; entries >= AlphSize are the same label with the high "duplicate"
// bit set, per §4.4 step 4.
type Chunk struct {
	W         []uint32
	Last      []bool
	F         []uint64
	Weights   []uint8     // nil if the source array carried no counts
	Kmers     []string    // decoded (k+1)-mer string behind each edge, same length as W
	LastChar  []uint8     // alphabet code at position K (the appended/last character), same length as W
	Alpha     *kmer.Alphabet
	AlphSize  int
	K         int
	Canonical bool
	MaxWeight uint8
}

// Build runs BossChunkBuilder (SPEC_FULL.md §4.4) over a sorted, distinct
// kmer.Array, producing the chunk's (W, last, F, weights) arrays in one
// linear pass. withWeights controls whether the weights array is emitted;
// maxWeight is the saturating cap applied to per-edge counts.
func Build(a kmer.Array, canonical bool, withWeights bool, maxWeight uint8) *Chunk {
	sigma := a.Alphabet().Sigma()
	n := a.Len()

	c := &Chunk{
		W:         make([]uint32, 0, n),
		Last:      make([]bool, 0, n),
		F:         make([]uint64, sigma+1),
		Kmers:     make([]string, 0, n),
		LastChar:  make([]uint8, 0, n),
		Alpha:     a.Alphabet(),
		AlphSize:  sigma,
		K:         a.K(),
		Canonical: canonical,
		MaxWeight: maxWeight,
	}
	if withWeights {
		c.Weights = make([]uint8, 0, n)
	}

	lastF := 0
	cur := 1 // edge numbers are 1-based (edge i is W[i-1]); no head row is stored.

	for i := 0; i < n; i++ {
		curW := uint32(a.CharAt(i, 0))
		curF := int(a.CharAt(i, a.K()))

		sameSuffixAsNext := i+1 < n && a.CompareSuffix(i, i+1, 1)
		sameSourceAsNext := i+1 < n && a.CompareSource(i, i+1)

		// Step 2: redundancy of dummy sink edges — a sink dummy (sentinel
		// edge label, real last node character) is dropped whenever another
		// edge leaves the same source node, since that real outgoing edge
		// already accounts for the node.
		if sameSourceAsNext && kmer.IsDummySink(a, i) {
			continue
		}

		isLast := true
		// Step 3: not the node's last outgoing edge if the next kmer
		// shares the full node suffix.
		if sameSuffixAsNext {
			isLast = false
		}

		// Step 4: W relabeling for duplicate edge labels at the same node.
		if curW != 0 {
			for j := i - 1; j >= 0 && a.CompareSuffix(i, j, 1); j-- {
				if uint32(a.CharAt(j, 0)) == curW {
					curW += uint32(sigma)
					break
				}
			}
		}

		// Step 5: advance F toward curF.
		for lastF < curF {
			lastF++
			c.F[lastF] = uint64(cur - 1)
		}

		// Step 6: weights.
		if withWeights {
			var w uint8
			if a.CharAt(i, 0) != kmer.Sentinel && a.CharAt(i, 1) != kmer.Sentinel {
				cnt := a.Count(i)
				if cnt > maxWeight {
					cnt = maxWeight
				}
				w = cnt
			}
			c.Weights = append(c.Weights, w)
		}

		c.W = append(c.W, curW)
		c.Last = append(c.Last, isLast)
		c.Kmers = append(c.Kmers, a.Decode(i))
		c.LastChar = append(c.LastChar, uint8(curF))
		cur++
	}

	for ch := lastF + 1; ch <= sigma; ch++ {
		c.F[ch] = uint64(cur - 1)
	}

	return c
}
