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

// Package dummy implements source-dummy recovery (SPEC_FULL.md §4.3):
// given a sorted, distinct (k+1)-mer array, it synthesizes the
// sentinel-padded predecessor edges BOSS needs so that every node has an
// incoming edge.
package dummy

import (
	"github.com/twotwotwo/sorts"

	"github.com/bossgraph/dbgbuild/kmer"
)

// Run recovers source dummies over a in place and returns the resulting
// array (the same backing array as a, grown as needed; an empty a instead
// yields a fresh one-kmer array, see singleSentinelGraph), globally sorted
// and deduplicated. a must already be sorted and distinct, and already
// sentinel-padded at extraction time (kmer.Extractor pads one sentinel onto
// the front of every strand, see kmer/extractor.go), so a genuine
// 1-sentinel-prefixed seed already exists in a for every real path that
// starts a sequence.
//
// Round 0 finds every kmer i already in a for which kmer.IsSourceDummy(a, i)
// holds — a sentinel at position 0 with a real character at position 1,
// meaning the node is missing exactly one level of padding — and
// synthesizes its one-step predecessor via
// kmer.Array.AppendToPrev(i, kmer.Sentinel). This is the reference
// algorithm's literal round-0 test (SPEC_FULL.md §4.3): it is only able to
// find matches at all because extraction padding guarantees the seeds
// exist.
//
// Every round-0 seed starts with exactly one sentinel (extraction pads
// exactly one), so every kmer entering round c>=1 carries the same
// sentinel-run length and needs exactly the same number of further rounds
// to reach the K-sentinel root. Rounds 1..K-2 therefore apply AppendToPrev
// unconditionally to every member of the previous round's output,
// continuing the chain K-1 rounds in total (round 0 plus K-2 unconditional
// follow-ups). kmer.IsSourceDummy only distinguishes "one sentinel" from
// "two or more", so it cannot drive rounds beyond the first for K>2; that
// is why rounds >=1 run unconditionally instead of re-testing. Two kmers
// synthesizing the identical predecessor collapse in the per-round dedup
// pass, which is the "redundant, drop" rule of §4.3.
func Run(a kmer.Array) kmer.Array {
	if a.Len() == 0 {
		return singleSentinelGraph(a)
	}

	roundBegin, roundEnd := 0, a.Len()
	seedRound := true
	for pass := 0; pass < a.K()-1; pass++ {
		appendBegin := a.Len()
		for i := roundBegin; i < roundEnd; i++ {
			needsPredecessor := true
			if seedRound {
				needsPredecessor = kmer.IsSourceDummy(a, i)
			}
			if needsPredecessor {
				a.AppendToPrev(i, kmer.Sentinel)
			}
		}
		seedRound = false
		if a.Len() == appendBegin {
			break
		}

		sortWindow(a, appendBegin, a.Len())
		newEnd := dedupWindow(a, appendBegin, a.Len())
		a.Truncate(newEnd)
		if newEnd == appendBegin {
			break // the chain reached the all-sentinel node: no new entries
		}

		roundBegin, roundEnd = appendBegin, newEnd
	}

	sorts.Quicksort(a)
	a.Truncate(kmer.Dedup(a))
	return a
}

// singleSentinelGraph handles the empty-input edge case: a single
// all-sentinel (k+1)-mer represents the trivial size-1 BOSS.
func singleSentinelGraph(a kmer.Array) kmer.Array {
	sentinelChar := a.Alphabet().Decode(kmer.Sentinel)
	seq := make([]byte, a.K()+1)
	for i := range seq {
		seq[i] = sentinelChar
	}
	out := a.NewEmpty(1)
	kmer.AppendSeq(out, seq, 0)
	return out
}

// window adapts a slice [begin,end) of an Array to sort.Interface so
// sorts.Quicksort can sort just the newly appended dummy-tail range
// without touching the already-settled prefix (SPEC_FULL.md §4.3).
type window struct {
	a          kmer.Array
	begin, end int
}

func (w window) Len() int           { return w.end - w.begin }
func (w window) Less(i, j int) bool { return w.a.Less(i+w.begin, j+w.begin) }
func (w window) Swap(i, j int)      { w.a.Swap(i+w.begin, j+w.begin) }

func sortWindow(a kmer.Array, begin, end int) {
	sorts.Quicksort(window{a: a, begin: begin, end: end})
}

// dedupWindow collapses adjacent equal kmers within [begin,end), leaving
// [0,begin) untouched, and returns the new end of the (now shorter) range.
func dedupWindow(a kmer.Array, begin, end int) int {
	if end <= begin {
		return end
	}
	w := begin
	for i := begin + 1; i < end; i++ {
		if a.Equal(w, i) {
			sum := int(a.Count(w)) + int(a.Count(i))
			if sum > 255 {
				sum = 255
			}
			a.SetCount(w, uint8(sum))
		} else {
			w++
			if w != i {
				a.Swap(w, i)
			}
		}
	}
	return w + 1
}
