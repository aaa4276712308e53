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
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math/bits"

	"github.com/bossgraph/dbgbuild/kmer"
)

// ChunkMagic identifies a .dbg.chunk file (SPEC_FULL.md §6).
var ChunkMagic = [8]byte{'D', 'B', 'G', 'C', 'H', 'N', 'K', '1'}

// GraphMagic identifies a .dbg.graph file (SPEC_FULL.md §6).
var GraphMagic = [8]byte{'D', 'B', 'G', 'G', 'R', 'P', 'H', '1'}

const (
	MainVersion  uint8 = 0
	MinorVersion uint8 = 1
)

// ErrInvalidFileFormat signals a bad magic or truncated header.
var ErrInvalidFileFormat = fmt.Errorf("boss: invalid file format")

// ErrVersionMismatch signals a file written by an incompatible version.
var ErrVersionMismatch = fmt.Errorf("boss: version mismatch")

var be = binary.BigEndian

// bitWidth returns ⌈log2(n)⌉, the width §6 specifies for W's number-vector
// (n = 2·|Σ|, the extended duplicate-flagged alphabet).
func bitWidth(n int) int {
	if n <= 1 {
		return 1
	}
	return bits.Len(uint(n - 1))
}

// writeNumberVector packs values into width-bit fields, length- and
// width-prefixed, LSB-first within each byte — the same bit order
// bloomanno.BloomFilter already uses for its bitset, kept consistent across
// this module's binary formats.
func writeNumberVector(w io.Writer, values []uint32, width int) error {
	if err := binary.Write(w, be, uint64(len(values))); err != nil {
		return err
	}
	if err := binary.Write(w, be, uint8(width)); err != nil {
		return err
	}
	nbytes := (len(values)*width + 7) / 8
	buf := make([]byte, nbytes)
	var bitpos int
	for _, v := range values {
		for b := 0; b < width; b++ {
			if v&(1<<uint(b)) != 0 {
				buf[bitpos/8] |= 1 << uint(bitpos%8)
			}
			bitpos++
		}
	}
	_, err := w.Write(buf)
	return err
}

func readNumberVector(r io.Reader) ([]uint32, error) {
	var n uint64
	if err := binary.Read(r, be, &n); err != nil {
		return nil, err
	}
	var width uint8
	if err := binary.Read(r, be, &width); err != nil {
		return nil, err
	}
	nbytes := (int(n)*int(width) + 7) / 8
	buf := make([]byte, nbytes)
	if nbytes > 0 {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
	}
	values := make([]uint32, n)
	var bitpos int
	for i := range values {
		var v uint32
		for b := 0; b < int(width); b++ {
			if buf[bitpos/8]&(1<<uint(bitpos%8)) != 0 {
				v |= 1 << uint(b)
			}
			bitpos++
		}
		values[i] = v
	}
	return values, nil
}

// writeBoolVectorOnePerByte writes last[] one byte per element, per §6's
// explicit "bit-vector serialized one element per byte" instruction.
func writeBoolVectorOnePerByte(w io.Writer, values []bool) error {
	if err := binary.Write(w, be, uint64(len(values))); err != nil {
		return err
	}
	buf := make([]byte, len(values))
	for i, v := range values {
		if v {
			buf[i] = 1
		}
	}
	_, err := w.Write(buf)
	return err
}

func readBoolVectorOnePerByte(r io.Reader) ([]bool, error) {
	var n uint64
	if err := binary.Read(r, be, &n); err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if n > 0 {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
	}
	out := make([]bool, n)
	for i, b := range buf {
		out[i] = b != 0
	}
	return out, nil
}

func writeUint64Vector(w io.Writer, values []uint64) error {
	if err := binary.Write(w, be, uint64(len(values))); err != nil {
		return err
	}
	return binary.Write(w, be, values)
}

func readUint64Vector(r io.Reader) ([]uint64, error) {
	var n uint64
	if err := binary.Read(r, be, &n); err != nil {
		return nil, err
	}
	values := make([]uint64, n)
	if n > 0 {
		if err := binary.Read(r, be, &values); err != nil {
			return nil, err
		}
	}
	return values, nil
}

// writeWeights writes weights by the same width-tagged integer-vector codec
// as writeNumberVector, tagged with width 8 (weights is always []uint8 —
// SPEC_FULL.md §9 Open Question (a)). A zero-length vector with a leading
// "present" flag distinguishes "no weights" from "all-zero weights".
func writeWeights(w io.Writer, weights []uint8) error {
	present := uint8(0)
	if weights != nil {
		present = 1
	}
	if err := binary.Write(w, be, present); err != nil {
		return err
	}
	if weights == nil {
		return nil
	}
	values := make([]uint32, len(weights))
	for i, v := range weights {
		values[i] = uint32(v)
	}
	return writeNumberVector(w, values, 8)
}

func readWeights(r io.Reader) ([]uint8, error) {
	var present uint8
	if err := binary.Read(r, be, &present); err != nil {
		return nil, err
	}
	if present == 0 {
		return nil, nil
	}
	values, err := readNumberVector(r)
	if err != nil {
		return nil, err
	}
	out := make([]uint8, len(values))
	for i, v := range values {
		out[i] = uint8(v)
	}
	return out, nil
}

// WriteChunk serializes c as a .dbg.chunk file (SPEC_FULL.md §6): W as a
// length-prefixed number-vector, last one byte per element, F as a 64-bit
// count vector, weights width-tagged, then the trailing alph_size/k/canonical
// triple. Kmers/LastChar are written too — an expansion beyond §6's literal
// layout, needed because this module's Graph (§4.9) navigates by full kmer
// string rather than by wavelet-tree rank/select (see DESIGN.md).
func WriteChunk(w io.Writer, c *Chunk) (int64, error) {
	cw := &countingWriter{w: w}
	if err := binary.Write(cw, be, ChunkMagic); err != nil {
		return cw.n, err
	}
	if err := binary.Write(cw, be, [2]uint8{MainVersion, MinorVersion}); err != nil {
		return cw.n, err
	}

	width := bitWidth(2 * c.AlphSize)
	if err := writeNumberVector(cw, c.W, width); err != nil {
		return cw.n, err
	}
	if err := writeBoolVectorOnePerByte(cw, c.Last); err != nil {
		return cw.n, err
	}
	if err := writeUint64Vector(cw, c.F); err != nil {
		return cw.n, err
	}
	if err := writeWeights(cw, c.Weights); err != nil {
		return cw.n, err
	}

	if err := binary.Write(cw, be, uint64(len(c.Kmers))); err != nil {
		return cw.n, err
	}
	for _, s := range c.Kmers {
		if err := binary.Write(cw, be, uint32(len(s))); err != nil {
			return cw.n, err
		}
		if _, err := cw.Write([]byte(s)); err != nil {
			return cw.n, err
		}
	}
	lastCharValues := make([]uint32, len(c.LastChar))
	for i, v := range c.LastChar {
		lastCharValues[i] = uint32(v)
	}
	if err := writeNumberVector(cw, lastCharValues, bitWidth(c.AlphSize)); err != nil {
		return cw.n, err
	}

	if err := binary.Write(cw, be, uint64(len(c.Alpha.Chars))); err != nil {
		return cw.n, err
	}
	if err := binary.Write(cw, be, c.Alpha.Chars); err != nil {
		return cw.n, err
	}

	canonical := uint8(0)
	if c.Canonical {
		canonical = 1
	}
	if err := binary.Write(cw, be, [3]uint64{uint64(c.AlphSize), uint64(c.K), uint64(canonical)}); err != nil {
		return cw.n, err
	}
	if err := binary.Write(cw, be, c.MaxWeight); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}

// ReadChunk reads back a chunk written by WriteChunk.
func ReadChunk(r io.Reader) (*Chunk, error) {
	br := bufio.NewReader(r)

	var magic [8]byte
	if err := binary.Read(br, be, &magic); err != nil {
		return nil, err
	}
	if magic != ChunkMagic {
		return nil, ErrInvalidFileFormat
	}
	var version [2]uint8
	if err := binary.Read(br, be, &version); err != nil {
		return nil, err
	}
	if version[0] != MainVersion {
		return nil, ErrVersionMismatch
	}

	wValues, err := readNumberVector(br)
	if err != nil {
		return nil, err
	}
	last, err := readBoolVectorOnePerByte(br)
	if err != nil {
		return nil, err
	}
	f, err := readUint64Vector(br)
	if err != nil {
		return nil, err
	}
	weights, err := readWeights(br)
	if err != nil {
		return nil, err
	}

	var nKmers uint64
	if err := binary.Read(br, be, &nKmers); err != nil {
		return nil, err
	}
	kmers := make([]string, nKmers)
	for i := range kmers {
		var slen uint32
		if err := binary.Read(br, be, &slen); err != nil {
			return nil, err
		}
		buf := make([]byte, slen)
		if _, err := io.ReadFull(br, buf); err != nil {
			return nil, err
		}
		kmers[i] = string(buf)
	}

	lastCharValues, err := readNumberVector(br)
	if err != nil {
		return nil, err
	}
	lastChar := make([]uint8, len(lastCharValues))
	for i, v := range lastCharValues {
		lastChar[i] = uint8(v)
	}

	var nChars uint64
	if err := binary.Read(br, be, &nChars); err != nil {
		return nil, err
	}
	chars := make([]byte, nChars)
	if nChars > 0 {
		if _, err := io.ReadFull(br, chars); err != nil {
			return nil, err
		}
	}

	var trailer [3]uint64
	if err := binary.Read(br, be, &trailer); err != nil {
		return nil, err
	}
	var maxWeight uint8
	if err := binary.Read(br, be, &maxWeight); err != nil {
		return nil, err
	}

	c := &Chunk{
		W:         wValues,
		Last:      last,
		F:         f,
		Weights:   weights,
		Kmers:     kmers,
		LastChar:  lastChar,
		Alpha:     kmer.NewAlphabet(chars),
		AlphSize:  int(trailer[0]),
		K:         int(trailer[1]),
		Canonical: trailer[2] != 0,
		MaxWeight: maxWeight,
	}
	return c, nil
}

// WriteGraph serializes g's chunk as a .dbg.graph file. §6 specifies W as a
// true wavelet tree over the extended alphabet; no wavelet-tree or succinct
// bitvector library is grounded anywhere in this module's dependency pack
// (see DESIGN.md), so the graph file reuses WriteChunk's flat, width-packed
// number-vector for W instead, followed by last/F/weights/Kmers/LastChar and
// a trailing "state" (STAT) triple — the alph_size/k/canonical values a
// loaded Graph needs to reconstruct NodeLastChar and traversal without
// rerunning the builder.
func WriteGraph(w io.Writer, g *Graph) (int64, error) {
	cw := &countingWriter{w: w}
	if err := binary.Write(cw, be, GraphMagic); err != nil {
		return cw.n, err
	}
	if err := binary.Write(cw, be, [2]uint8{MainVersion, MinorVersion}); err != nil {
		return cw.n, err
	}
	if _, err := WriteChunk(cw, g.c); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}

// ReadGraph reads back a graph written by WriteGraph.
func ReadGraph(r io.Reader) (*Graph, error) {
	br := bufio.NewReader(r)
	var magic [8]byte
	if err := binary.Read(br, be, &magic); err != nil {
		return nil, err
	}
	if magic != GraphMagic {
		return nil, ErrInvalidFileFormat
	}
	var version [2]uint8
	if err := binary.Read(br, be, &version); err != nil {
		return nil, err
	}
	if version[0] != MainVersion {
		return nil, ErrVersionMismatch
	}
	c, err := ReadChunk(br)
	if err != nil {
		return nil, err
	}
	return NewGraph(c), nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
