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

import (
	"sort"
	"testing"
)

func TestSelectWidth(t *testing.T) {
	cases := []struct {
		k    int
		bpc  uint
		want Width
	}{
		{k: 20, bpc: 3, want: W64},  // 21*3=63
		{k: 21, bpc: 3, want: W128}, // 22*3=66
		{k: 42, bpc: 3, want: W256}, // 43*3=129
		{k: 30, bpc: 3, want: W128}, // 31*3=93
		{k: 70, bpc: 3, want: W256}, // 71*3=213
	}
	for _, c := range cases {
		got, err := SelectWidth(c.k, c.bpc)
		if err != nil {
			t.Fatalf("SelectWidth(%d,%d): %v", c.k, c.bpc, err)
		}
		if got != c.want {
			t.Errorf("SelectWidth(%d,%d) = %v, want %v", c.k, c.bpc, got, c.want)
		}
	}
}

func TestSelectWidthOverflow(t *testing.T) {
	if _, err := SelectWidth(200, 3); err == nil {
		t.Fatal("expected overflow error for k=200, bits_per_char=3")
	}
}

// TestEncodeDecodeRoundTrip checks S1-style extraction/encoding on the
// 64-bit path.
func TestEncodeDecodeRoundTrip(t *testing.T) {
	k := 2 // so k+1=3 chars, fits 64 bits trivially
	a, err := New(k, DNA5, 4)
	if err != nil {
		t.Fatal(err)
	}
	AppendSeq(a, []byte("ACG"), 1)
	AppendSeq(a, []byte("CGT"), 1)
	if got := a.Decode(0); got != "ACG" {
		t.Errorf("Decode(0) = %q, want ACG", got)
	}
	if got := a.Decode(1); got != "CGT" {
		t.Errorf("Decode(1) = %q, want CGT", got)
	}
}

func TestCharAt(t *testing.T) {
	k := 3
	a, err := New(k, DNA5, 1)
	if err != nil {
		t.Fatal(err)
	}
	AppendSeq(a, []byte("ACGT"), 1)
	want := []byte("ACGT")
	for i := 0; i <= k; i++ {
		got := a.Alphabet().Decode(a.CharAt(0, i))
		if got != want[i] {
			t.Errorf("CharAt(0,%d) = %c, want %c", i, got, want[i])
		}
	}
}

func TestCompareSuffix(t *testing.T) {
	k := 2
	a, err := New(k, DNA5, 4)
	if err != nil {
		t.Fatal(err)
	}
	AppendSeq(a, []byte("ACG"), 1) // node suffix "CG"
	AppendSeq(a, []byte("CCG"), 1) // node suffix "CG" too, different edge label
	AppendSeq(a, []byte("CGT"), 1) // node suffix "GT"

	if !a.CompareSuffix(0, 1, 1) {
		t.Error("expected kmers 0 and 1 to share node suffix CG")
	}
	if a.CompareSuffix(0, 2, 1) {
		t.Error("expected kmers 0 and 2 to have different node suffixes")
	}
	if !a.CompareSuffix(0, 0, 0) {
		t.Error("a kmer always shares its full suffix with itself")
	}
}

// TestCompareSource exercises the source-node grouping BossChunkBuilder's
// sink-dummy redundancy rule needs (SPEC_FULL.md §4.4 step 2), which groups
// by positions 0..K-1 rather than CompareSuffix's target-node positions
// 1..K.
func TestCompareSource(t *testing.T) {
	k := 2
	a, err := New(k, DNA5, 4)
	if err != nil {
		t.Fatal(err)
	}
	AppendSeq(a, []byte("CG$"), 1) // source "CG"
	AppendSeq(a, []byte("CGA"), 1) // source "CG" too, different last char
	AppendSeq(a, []byte("GT$"), 1) // source "GT"

	if !a.CompareSource(0, 1) {
		t.Error("expected kmers 0 and 1 to share source node CG")
	}
	if a.CompareSource(0, 2) {
		t.Error("expected kmers 0 and 2 to have different source nodes")
	}
}

// TestToPrev exercises the predecessor-synthesis rule of SPEC_FULL.md §4.3:
// to_prev(x, c) puts c at position 0 and shifts every other character up by
// one position, dropping the old last character.
func TestToPrev(t *testing.T) {
	k := 3
	a, err := New(k, DNA5, 4)
	if err != nil {
		t.Fatal(err)
	}
	AppendSeq(a, []byte("ACGT"), 7)
	a.AppendToPrev(0, Sentinel)
	got := a.Decode(1)
	want := "$ACG"
	if got != want {
		t.Errorf("to_prev(ACGT, $) = %q, want %q", got, want)
	}
	if a.Count(1) != 7 {
		t.Errorf("to_prev should carry over the count, got %d", a.Count(1))
	}
}

// TestToPrevChain checks that repeated to_prev calls grow the sentinel
// prefix one character at a time, as dummy.Run's iterative passes rely on
// (SPEC_FULL.md §4.3).
func TestToPrevChain(t *testing.T) {
	k := 4
	a, err := New(k, DNA5, 8)
	if err != nil {
		t.Fatal(err)
	}
	AppendSeq(a, []byte("ACGTA"), 1)
	a.AppendToPrev(0, Sentinel) // $ACGT
	a.AppendToPrev(1, Sentinel) // $$ACG
	a.AppendToPrev(2, Sentinel) // $$$AC
	want := []string{"ACGTA", "$ACGT", "$$ACG", "$$$AC"}
	for i, w := range want {
		if got := a.Decode(i); got != w {
			t.Errorf("Decode(%d) = %q, want %q", i, got, w)
		}
	}
}

// TestArrayIsSortInterface verifies Array satisfies sort.Interface and
// sorts into co-lexicographic order (last character most significant), as
// required for the collector's final sort+dedup pass and for
// BossChunkBuilder's adjacent-kmer node-suffix comparisons.
func TestArrayIsSortInterface(t *testing.T) {
	k := 2
	a, err := New(k, DNA5, 8)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range []string{"TGT", "ACG", "CGT", "AAA"} {
		AppendSeq(a, []byte(s), 1)
	}
	sort.Sort(a)
	var got []string
	for i := 0; i < a.Len(); i++ {
		got = append(got, a.Decode(i))
	}
	want := []string{"AAA", "ACG", "CGT", "TGT"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sorted order = %v, want %v", got, want)
		}
	}
}

// TestCoLexicographicOrder picks kmers that would sort differently under
// plain left-to-right lexicographic order than under co-lexicographic
// order, to pin down that the packed integer comparison is the latter:
// "TAA" and "CAG" share no prefix, but by last character A < G, so TAA
// sorts first even though T > C under a naive first-character comparison.
func TestCoLexicographicOrder(t *testing.T) {
	k := 2
	a, err := New(k, DNA5, 4)
	if err != nil {
		t.Fatal(err)
	}
	AppendSeq(a, []byte("CAG"), 1)
	AppendSeq(a, []byte("TAA"), 1)
	sort.Sort(a)
	want := []string{"TAA", "CAG"}
	for i, w := range want {
		if got := a.Decode(i); got != w {
			t.Fatalf("Decode(%d) = %q, want %q (co-lex order by last char)", i, got, w)
		}
	}
}

func TestIsSourceDummyAndSink(t *testing.T) {
	k := 2
	a, err := New(k, DNA5, 4)
	if err != nil {
		t.Fatal(err)
	}
	AppendSeq(a, []byte("$AC"), 1)  // source dummy: pos0=$, pos1=A!=$
	AppendSeq(a, []byte("A$C"), 1)  // not source dummy: pos0=A!=$
	AppendSeq(a, []byte("$$A"), 1)  // not source dummy: fully padded, pos1=$
	AppendSeq(a, []byte("GT$"), 1)  // dummy sink: posK=$, pos0=G!=$
	AppendSeq(a, []byte("$TG"), 1)  // not a dummy sink: posK=G!=$

	if !IsSourceDummy(a, 0) {
		t.Error("$AC should be a source dummy")
	}
	if IsSourceDummy(a, 1) {
		t.Error("A$C should not be a source dummy")
	}
	if IsSourceDummy(a, 2) {
		t.Error("$$A is fully padded and should not be a source dummy")
	}
	if !IsDummySink(a, 3) {
		t.Error("GT$ should be a dummy sink")
	}
	if IsDummySink(a, 4) {
		t.Error("$TG should not be a dummy sink")
	}
}
