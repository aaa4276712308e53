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

import (
	"testing"

	"github.com/twotwotwo/sorts"

	"github.com/bossgraph/dbgbuild/dummy"
	"github.com/bossgraph/dbgbuild/kmer"
)

// buildSorted constructs a sorted, distinct, dummy-recovered kmer.Array
// from (k+1)-mer strings: each argument contributes its first k+1
// characters as one kmer, with no extraction or sentinel padding, before
// the sort, dedup and dummy.Run steps cmd/build applies after collection.
func buildSorted(t *testing.T, k int, seqs ...string) kmer.Array {
	t.Helper()
	a, err := kmer.New(k, kmer.DNA5, len(seqs)+8)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range seqs {
		kmer.AppendSeq(a, []byte(s), 1)
	}
	sorts.Quicksort(a)
	a.Truncate(kmer.Dedup(a))
	return dummy.Run(a)
}

// TestBuildProducesValidF checks the universal BOSS invariant (SPEC_FULL.md
// §8 property 3): F is non-decreasing and F[|Σ|] equals the number of edges.
func TestBuildProducesValidF(t *testing.T) {
	a := buildSorted(t, 2, "ACG", "CGT", "GTA")
	c := Build(a, false, false, 255)

	for i := 1; i < len(c.F); i++ {
		if c.F[i] < c.F[i-1] {
			t.Fatalf("F not non-decreasing at %d: %v", i, c.F)
		}
	}
	if got, want := int(c.F[len(c.F)-1]), len(c.W); got != want {
		t.Errorf("F[sigma] = %d, want %d (total edges)", got, want)
	}
}

// TestBuildLastFlagsPartitionEdges checks that the edges sharing a target
// node (positions 1..K) form a contiguous run terminated by exactly one
// last[i]==true (SPEC_FULL.md §8 property 3).
func TestBuildLastFlagsPartitionEdges(t *testing.T) {
	a := buildSorted(t, 2, "ACG", "ACT", "CGT", "CTT")
	c := Build(a, false, false, 255)

	if len(c.Last) == 0 {
		t.Fatal("no edges built")
	}
	for i := 0; i+1 < len(c.Last); i++ {
		if sameTarget := c.Kmers[i][1:] == c.Kmers[i+1][1:]; c.Last[i] == sameTarget {
			t.Errorf("last[%d] = %v for %q followed by %q", i, c.Last[i], c.Kmers[i], c.Kmers[i+1])
		}
	}
	if !c.Last[len(c.Last)-1] {
		t.Fatal("final edge must end a node (last[n-1] must be true)")
	}
}

// TestBuildDummyAndRealEdgeShareNode exercises step 4 of BossChunkBuilder
// indirectly: a dummy sink edge (sentinel label) and a real edge can land
// in the same node's run; both must survive as distinct W entries with
// distinct labels rather than being collapsed.
func TestBuildDummyAndRealEdgeShareNode(t *testing.T) {
	a := buildSorted(t, 2, "ACG", "CGT")
	c := Build(a, false, false, 255)
	if len(c.W) == 0 {
		t.Fatal("expected at least one edge")
	}
	for _, l := range c.Kmers {
		if len(l) != c.K+1 {
			t.Fatalf("unexpected kmer length in output: %q", l)
		}
	}
}

// TestBuildWeights checks step 6: weights are recorded for edges with
// neither a sentinel label nor a sentinel target character, and saturate at
// maxWeight.
func TestBuildWeights(t *testing.T) {
	a, err := kmer.New(2, kmer.DNA5, 4)
	if err != nil {
		t.Fatal(err)
	}
	kmer.AppendSeq(a, []byte("ACGT"), 5)
	sorts.Quicksort(a)
	a.Truncate(kmer.Dedup(a))
	c := Build(a, false, true, 3)

	if c.Weights == nil {
		t.Fatal("expected weights to be populated")
	}
	for i, w := range c.Weights {
		if w > 3 {
			t.Errorf("weight[%d] = %d exceeds maxWeight 3", i, w)
		}
	}
}

// TestBuildS1ExactEdgeSetAndF pins down SPEC_FULL.md §8 scenario S1. For the
// single sequence "ACGT" (k=2), kmer.Extractor's sentinel padding yields the
// four raw edges {$AC, ACG, CGT, GT$} (extractor_test.go covers the padding
// itself); dummy.Run must add exactly one more predecessor ($$A) so every
// node has an incoming edge, and BossChunkBuilder must place the resulting
// five edges in co-lexicographic order with F = [0,1,2,3,4,5].
func TestBuildS1ExactEdgeSetAndF(t *testing.T) {
	a := buildSorted(t, 2, "$AC", "ACG", "CGT", "GT$")
	c := Build(a, false, false, 255)

	wantKmers := []string{"GT$", "$$A", "$AC", "ACG", "CGT"}
	if len(c.Kmers) != len(wantKmers) {
		t.Fatalf("edge count = %d, want %d; got %v", len(c.Kmers), len(wantKmers), c.Kmers)
	}
	for i, want := range wantKmers {
		if c.Kmers[i] != want {
			t.Errorf("Kmers[%d] = %q, want %q (full set %v)", i, c.Kmers[i], want, c.Kmers)
		}
	}

	wantF := []uint64{0, 1, 2, 3, 4, 5}
	if len(c.F) != len(wantF) {
		t.Fatalf("len(F) = %d, want %d", len(c.F), len(wantF))
	}
	for i, want := range wantF {
		if c.F[i] != want {
			t.Errorf("F[%d] = %d, want %d (full F %v)", i, c.F[i], want, c.F)
		}
	}
}

// TestBuildS3DropsRedundantSinkDummy pins down SPEC_FULL.md §8 scenario S3:
// given both a sink dummy "CG$" and a real edge "CGA" leaving the same
// source node "CG", step 2 of BossChunkBuilder must drop the sink dummy and
// keep only the real edge.
func TestBuildS3DropsRedundantSinkDummy(t *testing.T) {
	a := buildSorted(t, 2, "CG$", "CGA")
	c := Build(a, false, false, 255)

	if len(c.Kmers) != 1 {
		t.Fatalf("edge count = %d, want 1 (sink dummy should be dropped); got %v", len(c.Kmers), c.Kmers)
	}
	if c.Kmers[0] != "CGA" {
		t.Errorf("surviving edge = %q, want %q", c.Kmers[0], "CGA")
	}
}

// TestBuildKmersAlignWithW checks that Chunk.Kmers has the same length as W
// and that each entry decodes the (k+1)-mer actually behind that edge — the
// invariant Graph's predecessor matching depends on.
func TestBuildKmersAlignWithW(t *testing.T) {
	a := buildSorted(t, 2, "ACG", "CGT")
	c := Build(a, false, false, 255)

	if len(c.Kmers) != len(c.W) {
		t.Fatalf("len(Kmers) = %d, len(W) = %d, want equal", len(c.Kmers), len(c.W))
	}
	for _, s := range c.Kmers {
		if len(s) != c.K+1 {
			t.Errorf("Kmers entry %q has length %d, want %d", s, len(s), c.K+1)
		}
	}
}
