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

package correct

import (
	"testing"

	"github.com/twotwotwo/sorts"

	"github.com/bossgraph/dbgbuild/bloomanno"
	"github.com/bossgraph/dbgbuild/boss"
	"github.com/bossgraph/dbgbuild/dummy"
	"github.com/bossgraph/dbgbuild/kmer"
)

func buildGraph(t *testing.T, k int, seqs ...string) (*boss.Graph, kmer.Array) {
	t.Helper()
	a, err := kmer.New(k, kmer.DNA5, len(seqs)+8)
	if err != nil {
		t.Fatal(err)
	}
	e := kmer.NewExtractor(k, kmer.DNA5, false, nil)
	for _, s := range seqs {
		e.Extract([]byte(s), a)
	}
	sorts.Quicksort(a)
	a.Truncate(kmer.Dedup(a))
	a = dummy.Run(a)
	c := boss.Build(a, false, false, 255)
	return boss.NewGraph(c), a
}

// TestCorrectDummyEdgeUntouched checks that a dummy edge's annotation is
// returned without walking: its raw lookup is whatever the annotator found,
// and no neighbor intersection should run against it.
func TestCorrectDummyEdgeUntouched(t *testing.T) {
	g, _ := buildGraph(t, 2, "ACGT", "CGTA")

	ann := bloomanno.NewAnnotator(4, 2, kmer.DNA5, 4.0, 7)
	col := ann.AddColumn("genomeA")
	if err := ann.AddSequence([]byte("ACGTACGT"), col); err != nil {
		t.Fatal(err)
	}

	cor := NewCorrector(g, ann, 4)

	for i := 1; i <= g.NumEdges(); i++ {
		codes := encodeKmer(g.Kmer(i), g.Alphabet())
		if !isDummyKmer(codes) {
			continue
		}
		raw := ann.TestKmer(codes)
		res := cor.Correct(i)
		for col := 0; col < raw.Len(); col++ {
			if res.Bits.Test(col) != raw.Test(col) {
				t.Errorf("dummy edge %d: bit %d = %v, want raw lookup's %v", i, col, res.Bits.Test(col), raw.Test(col))
			}
		}
	}
}

// TestCorrectNeverAddsBits checks the first invariant of SPEC_FULL.md §4.7:
// the corrected annotation at any edge is always a subset of the raw Bloom
// lookup at that same edge.
func TestCorrectNeverAddsBits(t *testing.T) {
	g, _ := buildGraph(t, 3, "ACGTACGT", "GGTACGTT")

	ann := bloomanno.NewAnnotator(5, 3, kmer.DNA5, 4.0, 11)
	colA := ann.AddColumn("genomeA")
	colB := ann.AddColumn("genomeB")
	if err := ann.AddSequence([]byte("ACGTACGT"), colA); err != nil {
		t.Fatal(err)
	}
	if err := ann.AddSequence([]byte("GGTACGTT"), colB); err != nil {
		t.Fatal(err)
	}

	cor := NewCorrector(g, ann, 4)

	for i := 1; i <= g.NumEdges(); i++ {
		codes := encodeKmer(g.Kmer(i), g.Alphabet())
		raw := ann.TestKmer(codes)

		res := cor.Correct(i)
		for col := 0; col < raw.Len(); col++ {
			if res.Bits.Test(col) && !raw.Test(col) {
				t.Errorf("edge %d: corrected bit %d set but absent from raw lookup", i, col)
			}
		}
	}
}

// TestCorrectNeverClearsATrueLabel checks the third invariant of SPEC_FULL.md
// §4.7: a label genuinely present along the full path a sequence was
// inserted with must survive correction at every one of that sequence's
// (k+1)-mers.
func TestCorrectNeverClearsATrueLabel(t *testing.T) {
	seq := "ACGTACGTTGCA"
	g, _ := buildGraph(t, 3, seq)

	ann := bloomanno.NewAnnotator(5, 3, kmer.DNA5, 8.0, 23)
	col := ann.AddColumn("genomeA")
	if err := ann.AddSequence([]byte(seq), col); err != nil {
		t.Fatal(err)
	}

	cor := NewCorrector(g, ann, 6)

	kp1 := 4
	for i := 0; i+kp1 <= len(seq); i++ {
		kmerStr := seq[i : i+kp1]
		for e := 1; e <= g.NumEdges(); e++ {
			if g.Kmer(e) != kmerStr {
				continue
			}
			res := cor.Correct(e)
			if !res.Bits.Test(col) {
				t.Errorf("kmer %q (edge %d): true label cleared by correction", kmerStr, e)
			}
		}
	}
}

// TestCorrectPopCountMonotoneNonIncreasing checks the second invariant of
// SPEC_FULL.md §4.7: correction only ever removes bits, so the corrected
// popcount can never exceed the raw lookup's popcount.
func TestCorrectPopCountMonotoneNonIncreasing(t *testing.T) {
	g, _ := buildGraph(t, 3, "ACGTACGT", "TTTTACGT", "GGGGACGT")

	ann := bloomanno.NewAnnotator(4, 3, kmer.DNA5, 4.0, 5)
	cols := make([]int, 3)
	for i, s := range []string{"ACGTACGT", "TTTTACGT", "GGGGACGT"} {
		cols[i] = ann.AddColumn(s)
		if err := ann.AddSequence([]byte(s), cols[i]); err != nil {
			t.Fatal(err)
		}
	}

	cor := NewCorrector(g, ann, 4)

	for i := 1; i <= g.NumEdges(); i++ {
		codes := encodeKmer(g.Kmer(i), g.Alphabet())
		raw := ann.TestKmer(codes)
		res := cor.Correct(i)
		if res.Bits.PopCount() > raw.PopCount() {
			t.Errorf("edge %d: corrected popcount %d exceeds raw popcount %d", i, res.Bits.PopCount(), raw.PopCount())
		}
	}
}

func TestResultRowAtReturnsBitsWords(t *testing.T) {
	a := bloomanno.NewAnnotation(3)
	a.Set(1)
	r := &Result{Bits: a}
	if got, want := r.RowAt(), a.Words(); len(got) != len(want) {
		t.Fatalf("RowAt() length = %d, want %d", len(got), len(want))
	}
}
