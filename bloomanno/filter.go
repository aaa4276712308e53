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

// Package bloomanno implements the per-label Bloom-filter annotation scheme
// and its exact oracle counterpart (SPEC_FULL.md §4.6/§4.8): one Bloom
// filter per label, h shared rolling hash functions, and a precise hash-set
// annotator used only to measure false-positive rates.
package bloomanno

import "fmt"

// BloomFilter is a single column's bit-vector B of length m, tested and set
// by h independent hash values (SPEC_FULL.md §3 BloomFilter). m is zero
// until the column's first insert sizes it; it is never resized afterward —
// this mirrors the reference annotator, which sizes a column's filter only
// when it is still empty (`if annotation[column].size() == 0`) and leaves it
// fixed for every subsequent insert into that column. See DESIGN.md for why
// this reading of "grow" needed no actual resize-and-rehash path.
type BloomFilter struct {
	m    uint64
	bits []byte
}

// M returns the filter's bit length, or 0 if not yet sized.
func (f *BloomFilter) M() uint64 { return f.m }

// Bits exposes the packed bitset for serialization.
func (f *BloomFilter) Bits() []byte { return f.bits }

// Sized reports whether the filter has already been given its bit length.
func (f *BloomFilter) Sized() bool { return f.m > 0 }

// ensureSized sizes the filter to sizeFactor*nElements+1 bits the first time
// it is called on an unsized filter; later calls are no-ops (SPEC_FULL.md
// §3's `m ≈ α·n`, sized from the sequence that triggers the first insert).
func (f *BloomFilter) ensureSized(nElements int, sizeFactor float64) {
	if f.m > 0 {
		return
	}
	m := uint64(sizeFactor*float64(nElements)) + 1
	f.m = m
	f.bits = make([]byte, (m+7)/8)
}

// Set marks the bits addressed by hashes (one per hash function), modulo m.
// A no-op on an unsized filter — nothing has been inserted into it yet, so
// there is nothing to size it from.
func (f *BloomFilter) Set(hashes []uint64) {
	if f.m == 0 {
		return
	}
	for _, h := range hashes {
		bit := h % f.m
		f.bits[bit/8] |= 1 << (bit % 8)
	}
}

// Test reports whether every bit addressed by hashes is set. An unsized
// filter has had nothing inserted and so contains nothing.
func (f *BloomFilter) Test(hashes []uint64) bool {
	if f.m == 0 {
		return false
	}
	for _, h := range hashes {
		bit := h % f.m
		if f.bits[bit/8]&(1<<(bit%8)) == 0 {
			return false
		}
	}
	return true
}

// newBloomFilterFromBits reconstructs an already-sized filter from a
// deserialized bitset, used by ReadFrom.
func newBloomFilterFromBits(m uint64, bits []byte) *BloomFilter {
	return &BloomFilter{m: m, bits: bits}
}

// Or returns a new filter holding the bitwise union of f and g, the
// column-merge primitive a transform-anno-style rewrite uses to fold two
// labels into one. Both filters must share m (merging differently-sized
// filters would require rehashing every inserted element, which the filter
// itself has no record of).
func (f *BloomFilter) Or(g *BloomFilter) (*BloomFilter, error) {
	if f.m != g.m {
		return nil, fmt.Errorf("bloomanno: cannot merge filters of different sizes (%d vs %d bits)", f.m, g.m)
	}
	out := &BloomFilter{m: f.m, bits: make([]byte, len(f.bits))}
	for i := range out.bits {
		out.bits[i] = f.bits[i] | g.bits[i]
	}
	return out, nil
}
