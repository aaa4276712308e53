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

// Package collect implements the out-of-core, parallel (k+1)-mer collector
// described in SPEC_FULL.md §4.2: many producer goroutines extract kmers
// from sequences concurrently into pooled local buffers, each buffer is
// sorted and deduplicated before being merged into a shared growable
// buffer, and the shared buffer itself grows (deduplicating first, to make
// room) only when a merge would overflow it.
package collect

import (
	"sync"

	"github.com/twotwotwo/sorts"

	"github.com/bossgraph/dbgbuild/kmer"
)

// defaultChunkKmers is the local-buffer flush threshold used when Options
// doesn't override it: a producer goroutine flushes its pooled buffer into
// the shared one once it holds this many kmers.
const defaultChunkKmers = 30_000_000

// minFloorKmers is the smallest reservation the collector will fall back to
// before giving up with ErrOutOfMemory.
const minFloorKmers = 1024

// Options configures a Collector.
type Options struct {
	// NumThreads bounds how many AddSequence calls run concurrently.
	NumThreads int

	// MemoryPreallocated, if positive, is a byte budget converted into an
	// initial shared-buffer capacity. Zero means start at ChunkKmers.
	MemoryPreallocated int64

	// ChunkKmers overrides the local-buffer flush threshold. Zero means
	// defaultChunkKmers.
	ChunkKmers int
}

// Collector accumulates the distinct (k+1)-mers of many sequences,
// deduplicating as it goes so the resident set stays bounded regardless of
// input size.
type Collector struct {
	k         int
	alpha     *kmer.Alphabet
	extractor *kmer.Extractor

	chunkKmers int

	// resizeMu serializes the decision to grow the shared buffer: only one
	// goroutine may be deciding "do we need more room" at a time.
	resizeMu sync.Mutex
	// dataMu lets many flushing goroutines append concurrently (RLock)
	// while a grower excludes all of them during reallocation (Lock).
	dataMu sync.RWMutex
	// appendMu serializes the actual append, since Go's growable slices
	// can't be written by multiple goroutines at once even under RLock.
	appendMu sync.Mutex

	data kmer.Array
	cap  int

	bufPool *sync.Pool

	tokens chan struct{}
	wg     sync.WaitGroup

	errMu sync.Mutex
	err   error
}

// NewCollector builds a Collector for (k+1)-mers over alpha. canonical and
// suffix are forwarded to the internal kmer.Extractor unchanged.
func NewCollector(k int, alpha *kmer.Alphabet, canonical bool, suffix []byte, opt Options) (*Collector, error) {
	chunkKmers := opt.ChunkKmers
	if chunkKmers <= 0 {
		chunkKmers = defaultChunkKmers
	}
	numThreads := opt.NumThreads
	if numThreads <= 0 {
		numThreads = 1
	}

	want := chunkKmers
	if opt.MemoryPreallocated > 0 {
		if n := int(opt.MemoryPreallocated / int64(elementSize(k, alpha))); n > minFloorKmers {
			want = n
		} else {
			want = minFloorKmers
		}
	}

	c := &Collector{
		k:          k,
		alpha:      alpha,
		extractor:  kmer.NewExtractor(k, alpha, canonical, suffix),
		chunkKmers: chunkKmers,
		tokens:     make(chan struct{}, numThreads),
	}

	data, got, err := c.reserve(want)
	if err != nil {
		return nil, err
	}
	c.data, c.cap = data, got

	c.bufPool = &sync.Pool{New: func() interface{} {
		a, _ := kmer.New(k, alpha, chunkKmers)
		return a
	}}
	return c, nil
}

func elementSize(k int, alpha *kmer.Alphabet) int {
	w, err := kmer.SelectWidth(k, alpha.BitsPerChar)
	if err != nil {
		return 8 + 1
	}
	return w.NWords()*8 + 1
}

// AddSequence extracts the (k+1)-mers of seq into the collector, running
// asynchronously. It blocks only when NumThreads producers are already in
// flight. The caller must eventually call Join before reading Data.
func (c *Collector) AddSequence(seq []byte) {
	if len(seq) < c.k+1 {
		return
	}
	cp := append([]byte(nil), seq...)

	c.tokens <- struct{}{}
	c.wg.Add(1)
	go func() {
		defer func() {
			<-c.tokens
			c.wg.Done()
		}()
		c.process(cp)
	}()
}

// AddSequences is a convenience wrapper calling AddSequence on each element.
func (c *Collector) AddSequences(seqs [][]byte) {
	for _, s := range seqs {
		c.AddSequence(s)
	}
}

func (c *Collector) process(seq []byte) {
	local := c.bufPool.Get().(kmer.Array)
	c.extractor.Extract(seq, local)

	if local.Len() >= c.chunkKmers*9/10 {
		c.flush(local)
		local.Truncate(0)
	}
	c.bufPool.Put(local)
}

// flush sorts and dedups local, then merges it into the shared buffer,
// growing the shared buffer first if necessary.
func (c *Collector) flush(local kmer.Array) {
	if local.Len() == 0 {
		return
	}
	sorts.Quicksort(local)
	local.Truncate(kmer.Dedup(local))

	c.resizeMu.Lock()
	if c.data.Len()+local.Len() > c.cap {
		if err := c.grow(local.Len()); err != nil {
			c.resizeMu.Unlock()
			c.setErr(err)
			return
		}
	}
	c.resizeMu.Unlock()

	c.dataMu.RLock()
	c.appendMu.Lock()
	for i := 0; i < local.Len(); i++ {
		c.data.AppendFrom(local, i)
	}
	c.appendMu.Unlock()
	c.dataMu.RUnlock()
}

// grow reallocates the shared buffer to make room for at least extra more
// kmers, first deduplicating the existing contents since that alone may be
// enough. Callers must hold resizeMu.
func (c *Collector) grow(extra int) error {
	c.dataMu.Lock()
	defer c.dataMu.Unlock()

	sorts.Quicksort(c.data)
	c.data.Truncate(kmer.Dedup(c.data))

	target := c.data.Len() + extra
	if byChunk := c.data.Len() + c.chunkKmers; byChunk > target {
		target = byChunk
	}
	if byHalf := c.data.Len() + c.data.Len()/2; byHalf > target {
		target = byHalf
	}

	grown, got, err := c.reserve(target)
	if err != nil {
		return err
	}
	for i := 0; i < c.data.Len(); i++ {
		grown.AppendFrom(c.data, i)
	}
	c.data = grown
	c.cap = got
	return nil
}

// reserve allocates an Array able to hold `want` kmers, shrinking by a
// third repeatedly on failure down to minFloorKmers before giving up.
func (c *Collector) reserve(want int) (kmer.Array, int, error) {
	n := want
	for n >= minFloorKmers {
		if a, ok := tryNewArray(c.k, c.alpha, n); ok {
			return a, n, nil
		}
		n = n * 2 / 3
	}
	if a, ok := tryNewArray(c.k, c.alpha, minFloorKmers); ok {
		return a, minFloorKmers, nil
	}
	return nil, 0, ErrOutOfMemory
}

func tryNewArray(k int, alpha *kmer.Alphabet, n int) (a kmer.Array, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			a, ok = nil, false
		}
	}()
	arr, err := kmer.New(k, alpha, n)
	if err != nil {
		return nil, false
	}
	return arr, true
}

func (c *Collector) setErr(err error) {
	c.errMu.Lock()
	if c.err == nil {
		c.err = err
	}
	c.errMu.Unlock()
}

// Join waits for all in-flight AddSequence calls to finish, performs a
// final sort+dedup pass over the shared buffer, and returns it. The
// collector must not be reused afterward; partial state from a failed
// grow is not queryable.
func (c *Collector) Join() (kmer.Array, error) {
	c.wg.Wait()

	c.errMu.Lock()
	err := c.err
	c.errMu.Unlock()
	if err != nil {
		return nil, err
	}

	sorts.Quicksort(c.data)
	c.data.Truncate(kmer.Dedup(c.data))
	return c.data, nil
}

// Data returns the shared buffer as it currently stands. Call Join first
// for a complete, deduplicated result.
func (c *Collector) Data() kmer.Array { return c.data }
