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

import (
	"fmt"

	"github.com/bossgraph/dbgbuild/kmer"
)

// Annotator holds one Bloom filter per label (column), all driven by the
// same h rolling hash functions over a (k+1)-character window (SPEC_FULL.md
// §4.6). Column identity is a small integer index into Columns, paired with
// a name — the expansion's "driven directly from a list of input file
// paths, one column per input source" — mirroring the teacher's `IDs
// [][]byte` pattern in lexicmap's index.Index.
type Annotator struct {
	h          int
	k          int
	alpha      *kmer.Alphabet
	sizeFactor float64
	seed       uint64

	filters []*BloomFilter
	names   [][]byte
}

// NewAnnotator returns an Annotator with h hash functions per column, k-mer
// size k (columns hold (k+1)-mers, one per BOSS edge), and bloomSizeFactor
// (α in `m ≈ α·n`). seed deterministically derives the hash bases so a build
// and a later query against the same .annot.dbg agree on hash values.
func NewAnnotator(h, k int, alpha *kmer.Alphabet, bloomSizeFactor float64, seed uint64) *Annotator {
	return &Annotator{h: h, k: k, alpha: alpha, sizeFactor: bloomSizeFactor, seed: seed}
}

func (a *Annotator) H() int                  { return a.h }
func (a *Annotator) K() int                  { return a.k }
func (a *Annotator) Alphabet() *kmer.Alphabet { return a.alpha }

// AddColumn appends a new, unsized column named name and returns its index.
func (a *Annotator) AddColumn(name string) int {
	a.filters = append(a.filters, &BloomFilter{})
	a.names = append(a.names, []byte(name))
	return len(a.filters) - 1
}

// NumColumns returns the number of labels registered so far.
func (a *Annotator) NumColumns() int { return len(a.filters) }

// Columns returns the registered column names in index order.
func (a *Annotator) Columns() []string {
	out := make([]string, len(a.names))
	for i, n := range a.names {
		out[i] = string(n)
	}
	return out
}

// Column returns the Bloom filter registered under label, and whether it
// exists (SPEC_FULL.md §4.10's conversion-driver contract boundary).
func (a *Annotator) Column(label string) (*BloomFilter, bool) {
	for i, n := range a.names {
		if string(n) == label {
			return a.filters[i], true
		}
	}
	return nil, false
}

// AddSequence inserts every (k+1)-mer of seq into column's Bloom filter,
// sizing the filter on the first insert (SPEC_FULL.md §4.6). Sequences
// shorter than k+1 are silently skipped per §7's BadInput policy.
func (a *Annotator) AddSequence(seq []byte, column int) error {
	if column < 0 || column >= len(a.filters) {
		return fmt.Errorf("bloomanno: column %d not registered", column)
	}
	kp1 := a.k + 1
	if len(seq) < kp1 {
		return nil
	}

	f := a.filters[column]
	f.ensureSized(len(seq)-a.k, a.sizeFactor)

	codes := encodeSeq(seq, a.alpha)
	hasher := kmer.NewRollingHasher(a.h, kp1, a.seed)
	hashes := hasher.Init(codes[:kp1])
	f.Set(hashes)
	for i := 1; i+kp1 <= len(seq); i++ {
		hashes = hasher.Update(codes[i-1], codes[i+kp1-1])
		f.Set(hashes)
	}
	return nil
}

// NewWalkHasher returns a fresh h-function rolling hasher over a (k+1)-wide
// window, seeded identically to the one AddSequence uses, so a query-time
// walk (bloomanno's own TestKmer, or correct.Corrector) reproduces the same
// hash values a build-time insert would have produced for the same kmer.
func (a *Annotator) NewWalkHasher() *kmer.RollingHasher {
	return kmer.NewRollingHasher(a.h, a.k+1, a.seed)
}

// TestKmer hashes codes (length k+1) fresh and tests every column, returning
// the packed raw (uncorrected) bitvector (SPEC_FULL.md §4.6 "lookup").
func (a *Annotator) TestKmer(codes []uint8) *Annotation {
	hashes := a.NewWalkHasher().Init(codes)
	return a.TestAll(hashes)
}

// TestAll tests a precomputed set of h hash values against every column.
// Used by correct.Corrector, which maintains hashes incrementally via
// Update/ReverseUpdate rather than rehashing from scratch at each step.
func (a *Annotator) TestAll(hashes []uint64) *Annotation {
	out := NewAnnotation(len(a.filters))
	for i, f := range a.filters {
		if f.Test(hashes) {
			out.Set(i)
		}
	}
	return out
}

// Rename changes the name of an existing column in place.
func (a *Annotator) Rename(oldName, newName string) error {
	for i, n := range a.names {
		if string(n) == oldName {
			a.names[i] = []byte(newName)
			return nil
		}
	}
	return fmt.Errorf("bloomanno: column %q not found", oldName)
}

// Drop removes a column and its Bloom filter entirely.
func (a *Annotator) Drop(name string) error {
	for i, n := range a.names {
		if string(n) == name {
			a.names = append(a.names[:i], a.names[i+1:]...)
			a.filters = append(a.filters[:i], a.filters[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("bloomanno: column %q not found", name)
}

// Merge folds src's Bloom filter into dst's via bitwise OR and drops src,
// the column-consolidation half of a transform-anno-style rewrite
// (SPEC_FULL.md §4.10's "no format conversion beyond the Bloom
// representation itself" carve-out — merging columns changes the matrix's
// shape, not its on-disk representation).
func (a *Annotator) Merge(dst, src string) error {
	dstF, ok := a.Column(dst)
	if !ok {
		return fmt.Errorf("bloomanno: column %q not found", dst)
	}
	srcF, ok := a.Column(src)
	if !ok {
		return fmt.Errorf("bloomanno: column %q not found", src)
	}
	merged, err := dstF.Or(srcF)
	if err != nil {
		return fmt.Errorf("bloomanno: merging %q into %q: %w", src, dst, err)
	}
	for i, n := range a.names {
		if string(n) == dst {
			a.filters[i] = merged
		}
	}
	return a.Drop(src)
}

// encodeSeq maps raw sequence bytes to alphabet codes.
func encodeSeq(seq []byte, alpha *kmer.Alphabet) []uint8 {
	codes := make([]uint8, len(seq))
	for i, b := range seq {
		codes[i] = alpha.Encode(b)
	}
	return codes
}
