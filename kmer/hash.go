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

import "github.com/zeebo/wyhash"

// RollingHasher maintains h independent polynomial (Rabin-fingerprint style)
// hash values over a fixed-length window of alphabet codes, with O(1)
// forward and backward updates as the window slides by one character.
// This backs BloomAnnotator's incremental insertion and Corrector's graph
// walk (SPEC_FULL.md §4.6/§4.7/§9).
type RollingHasher struct {
	l       int
	bases   []uint64 // per-hash odd multiplier
	invBase []uint64 // multiplicative inverse of bases[j] mod 2^64
	topPow  []uint64 // bases[j]^(l-1) mod 2^64
	hashes  []uint64
}

// NewRollingHasher builds a hasher for h hash functions over a window of l
// characters, deterministically seeded from seed via wyhash.
func NewRollingHasher(h int, l int, seed uint64) *RollingHasher {
	r := &RollingHasher{
		l:       l,
		bases:   make([]uint64, h),
		invBase: make([]uint64, h),
		topPow:  make([]uint64, h),
		hashes:  make([]uint64, h),
	}
	var buf [8]byte
	for j := 0; j < h; j++ {
		buf[0] = byte(j)
		buf[1] = byte(j >> 8)
		b := wyhash.Hash(buf[:], seed+uint64(j)*0x9E3779B97F4A7C15)
		b |= 1 // odd, hence invertible mod 2^64
		r.bases[j] = b
		r.invBase[j] = modInverseOdd(b)
		r.topPow[j] = powMod(b, l-1)
	}
	return r
}

// NumHashes returns h.
func (r *RollingHasher) NumHashes() int { return len(r.bases) }

// Init resets the hasher to the hash of the given length-l code sequence
// and returns the resulting hash values (owned by the caller).
func (r *RollingHasher) Init(codes []uint8) []uint64 {
	for j := range r.bases {
		var v uint64
		b := r.bases[j]
		for _, c := range codes {
			v = v*b + uint64(c)
		}
		r.hashes[j] = v
	}
	return r.Values()
}

// Values returns a copy of the current per-function hash values.
func (r *RollingHasher) Values() []uint64 {
	out := make([]uint64, len(r.hashes))
	copy(out, r.hashes)
	return out
}

// Update slides the window forward by one character: dropped was at the
// front, appended becomes the new last character.
func (r *RollingHasher) Update(dropped, appended uint8) []uint64 {
	for j, b := range r.bases {
		r.hashes[j] = (r.hashes[j]-uint64(dropped)*r.topPow[j])*b + uint64(appended)
	}
	return r.Values()
}

// ReverseUpdate slides the window backward by one character: dropped was at
// the back, appended becomes the new first character.
func (r *RollingHasher) ReverseUpdate(dropped, appended uint8) []uint64 {
	for j := range r.bases {
		r.hashes[j] = uint64(appended)*r.topPow[j] + (r.hashes[j]-uint64(dropped))*r.invBase[j]
	}
	return r.Values()
}

func powMod(b uint64, n int) uint64 {
	result := uint64(1)
	for i := 0; i < n; i++ {
		result *= b
	}
	return result
}

// modInverseOdd computes the multiplicative inverse of an odd b modulo 2^64
// via Newton-Raphson iteration (Hacker's Delight §10-16): it converges
// because every odd integer is its own inverse modulo 8 and doubles its
// correct low-order bits each step.
func modInverseOdd(b uint64) uint64 {
	x := b
	for i := 0; i < 6; i++ {
		x = x * (2 - b*x)
	}
	return x
}
