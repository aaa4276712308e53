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

// Extractor enumerates all (k+1)-mers of a sequence into a kmer.Array,
// optionally also those of the reverse complement (canonical mode), and
// optionally restricted to a bucket whose trailing characters match a
// suffix filter (used to partition out-of-core construction, SPEC_FULL.md
// §4.1/§4.2).
type Extractor struct {
	K         int
	Alpha     *Alphabet
	Canonical bool
	Suffix    []byte // nil/empty means no filtering
	Count     uint8  // count recorded for every extracted kmer (default 1)
}

// NewExtractor returns an Extractor with Count defaulted to 1.
func NewExtractor(k int, alpha *Alphabet, canonical bool, suffix []byte) *Extractor {
	return &Extractor{K: k, Alpha: alpha, Canonical: canonical, Suffix: suffix, Count: 1}
}

// Extract appends every (k+1)-mer of seq (and, in canonical mode, of its
// reverse complement) onto dst. Sequences shorter than k+1 produce nothing.
func (e *Extractor) Extract(seq []byte, dst Array) {
	kp1 := e.K + 1
	if len(seq) < kp1 {
		return
	}
	e.extractStrand(seq, dst)
	if e.Canonical {
		if !e.Alpha.HasComplement() {
			return
		}
		rc := ReverseComplement(e.Alpha, seq)
		e.extractStrand(rc, dst)
	}
}

// extractStrand slides a (k+1)-wide window across seq padded with one
// leading and one trailing sentinel, so the first window always carries a
// sentinel-prefixed node (a source-dummy seed for dummy.Run's round 0, see
// dummy/recovery.go) and the last window always carries a sentinel-labeled
// edge (a sink dummy, see kmer.IsDummySink and boss/chunk.go step 2). See
// SPEC_FULL.md §4.3/§4.4 and DESIGN.md.
func (e *Extractor) extractStrand(seq []byte, dst Array) {
	kp1 := e.K + 1
	suf := e.Suffix

	sentinel := e.Alpha.Chars[0]
	padded := make([]byte, 0, len(seq)+2)
	padded = append(padded, sentinel)
	padded = append(padded, seq...)
	padded = append(padded, sentinel)

	for start := 0; start+kp1 <= len(padded); start++ {
		window := padded[start : start+kp1]
		if len(suf) > 0 {
			if !hasSentinelSafeSuffix(e.Alpha, window, suf) {
				continue
			}
		}
		AppendSeq(dst, window, e.Count)
	}
}

// hasSentinelSafeSuffix checks the trailing len(suffix) raw characters of
// window against suffix (both compared through the alphabet's Encode, so
// unknown bytes are sentinel-normalized on both sides).
func hasSentinelSafeSuffix(alpha *Alphabet, window, suffix []byte) bool {
	n := len(suffix)
	if n > len(window) {
		return false
	}
	tail := window[len(window)-n:]
	for i := 0; i < n; i++ {
		if alpha.Encode(tail[i]) != alpha.Encode(suffix[i]) {
			return false
		}
	}
	return true
}

// ReverseComplement returns the reverse complement of seq under alpha.
// Characters with no complement entry complement to themselves, matching
// DNA5's convention of leaving the sentinel fixed.
func ReverseComplement(alpha *Alphabet, seq []byte) []byte {
	n := len(seq)
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[n-1-i] = alpha.Complement(seq[i])
	}
	return out
}
