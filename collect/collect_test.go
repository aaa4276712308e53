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

package collect

import (
	"fmt"
	"testing"

	"github.com/bossgraph/dbgbuild/kmer"
)

// TestCollectorDedupSingleThread checks that repeated (k+1)-mers across
// several sequences collapse to one entry with a summed count.
func TestCollectorDedupSingleThread(t *testing.T) {
	k := 3
	c, err := NewCollector(k, kmer.DNA5, false, nil, Options{NumThreads: 1, ChunkKmers: 16})
	if err != nil {
		t.Fatal(err)
	}
	c.AddSequence([]byte("ACGTA"))
	c.AddSequence([]byte("ACGTA"))
	data, err := c.Join()
	if err != nil {
		t.Fatal(err)
	}

	// ACGTA contributes ACGT and CGTA once per call -> 2 distinct, each
	// with count 2 after dedup across the two identical sequences.
	if data.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", data.Len())
	}
	seen := map[string]uint8{}
	for i := 0; i < data.Len(); i++ {
		seen[data.Decode(i)] = data.Count(i)
	}
	if seen["ACGT"] != 2 || seen["CGTA"] != 2 {
		t.Errorf("counts = %v, want ACGT:2 CGTA:2", seen)
	}
}

// TestCollectorParallel exercises many concurrent AddSequence calls with a
// small flush threshold, forcing several local-buffer flushes and at least
// one shared-buffer growth.
func TestCollectorParallel(t *testing.T) {
	k := 4
	c, err := NewCollector(k, kmer.DNA5, true, nil, Options{
		NumThreads: 8,
		ChunkKmers: 4,
	})
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 200; i++ {
		c.AddSequence([]byte(fmt.Sprintf("ACGTACGTA%d", i%4)))
	}
	data, err := c.Join()
	if err != nil {
		t.Fatal(err)
	}
	if data.Len() == 0 {
		t.Fatal("expected a non-empty deduplicated result")
	}
	for i := 1; i < data.Len(); i++ {
		if data.Less(i, i-1) {
			t.Fatalf("result not sorted at %d", i)
		}
		if data.Equal(i, i-1) {
			t.Fatalf("duplicate entries survived dedup at %d", i)
		}
	}
}

// TestCollectorShortSequenceIgnored checks that sequences shorter than k+1
// contribute nothing and don't panic.
func TestCollectorShortSequenceIgnored(t *testing.T) {
	k := 10
	c, err := NewCollector(k, kmer.DNA5, false, nil, Options{NumThreads: 2})
	if err != nil {
		t.Fatal(err)
	}
	c.AddSequence([]byte("ACG"))
	data, err := c.Join()
	if err != nil {
		t.Fatal(err)
	}
	if data.Len() != 0 {
		t.Errorf("Len() = %d, want 0", data.Len())
	}
}

// TestCollectorMemoryPreallocated checks that a byte budget translates into
// a usable initial reservation rather than erroring out.
func TestCollectorMemoryPreallocated(t *testing.T) {
	k := 5
	c, err := NewCollector(k, kmer.DNA5, false, nil, Options{
		NumThreads:         2,
		MemoryPreallocated: 1 << 20,
		ChunkKmers:         8,
	})
	if err != nil {
		t.Fatal(err)
	}
	if c.cap < minFloorKmers {
		t.Errorf("cap = %d, want at least %d", c.cap, minFloorKmers)
	}
	c.AddSequence([]byte("ACGTACGTAC"))
	if _, err := c.Join(); err != nil {
		t.Fatal(err)
	}
}
