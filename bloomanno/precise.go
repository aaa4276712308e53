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

import "github.com/bossgraph/dbgbuild/kmer"

// PreciseAnnotator maps a single 64-bit hash of a (k+1)-mer to the packed
// bitvector of labels containing it (SPEC_FULL.md §3/§4.8). It exists only
// as an oracle for measuring the Bloom annotator's false-positive rate;
// hash collisions are an accepted, documented source of false negatives in
// that measurement, never corrected for.
type PreciseAnnotator struct {
	k          int
	alpha      *kmer.Alphabet
	seed       uint64
	numColumns int
	table      map[uint64]*Annotation
}

// NewPreciseAnnotator returns an oracle annotator for (k+1)-mers over alpha.
func NewPreciseAnnotator(k int, alpha *kmer.Alphabet, seed uint64) *PreciseAnnotator {
	return &PreciseAnnotator{k: k, alpha: alpha, seed: seed, table: make(map[uint64]*Annotation)}
}

// AddColumn registers a new label and returns its index. Already-inserted
// rows are not touched here; insert and AnnotationFromHash widen a shorter
// row to the current column count when they meet it.
func (p *PreciseAnnotator) AddColumn() int {
	idx := p.numColumns
	p.numColumns++
	return idx
}

// hashKmer returns the single (h=1) hash of codes, using the same rolling
// hasher construction the Bloom annotator's h-function hasher is built
// from, restricted to one function.
func (p *PreciseAnnotator) hashKmer(codes []uint8) uint64 {
	return kmer.NewRollingHasher(1, len(codes), p.seed).Init(codes)[0]
}

// AddSequence records every (k+1)-mer of seq as belonging to column,
// growing the table's rows lazily. Short sequences are silently skipped.
func (p *PreciseAnnotator) AddSequence(seq []byte, column int) {
	kp1 := p.k + 1
	if len(seq) < kp1 {
		return
	}
	if column >= p.numColumns {
		p.numColumns = column + 1
	}

	codes := encodeSeq(seq, p.alpha)
	hasher := kmer.NewRollingHasher(1, kp1, p.seed)
	hashes := hasher.Init(codes[:kp1])
	p.insert(hashes[0], column)
	for i := 1; i+kp1 <= len(seq); i++ {
		hashes = hasher.Update(codes[i-1], codes[i+kp1-1])
		p.insert(hashes[0], column)
	}
}

func (p *PreciseAnnotator) insert(hash uint64, column int) {
	row, ok := p.table[hash]
	if !ok {
		row = NewAnnotation(p.numColumns)
	} else if row.Len() < p.numColumns {
		row = row.Grow(p.numColumns)
	}
	row.Set(column)
	p.table[hash] = row
}

// AnnotationFromHash looks up a precomputed hash directly, for callers
// threading their own incremental hasher (mirroring `annotation_from_hasher`).
func (p *PreciseAnnotator) AnnotationFromHash(hash uint64) *Annotation {
	row, ok := p.table[hash]
	if !ok {
		return NewAnnotation(p.numColumns)
	}
	if row.Len() < p.numColumns {
		return row.Grow(p.numColumns)
	}
	return row
}

// AnnotationFromKmer hashes codes (length k+1) fresh and returns its row,
// or an all-zero row if the kmer was never inserted.
func (p *PreciseAnnotator) AnnotationFromKmer(codes []uint8) *Annotation {
	return p.AnnotationFromHash(p.hashKmer(codes))
}
