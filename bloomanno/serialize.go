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

package bloomanno

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"

	"github.com/bossgraph/dbgbuild/kmer"
)

var be = binary.BigEndian

// Magic identifies a .annot.dbg file (SPEC_FULL.md §6 Annotator file layout).
var Magic = [8]byte{'d', 'b', 'g', 'b', 'l', 'o', 'o', 'm'}

// MainVersion is checked for compatibility on read.
var MainVersion uint8 = 0

// MinorVersion is informational only.
var MinorVersion uint8 = 1

// ErrInvalidFileFormat means the file's magic or header didn't match.
var ErrInvalidFileFormat = errors.New("bloomanno: invalid binary format")

// ErrVersionMismatch means the file was written by an incompatible version.
var ErrVersionMismatch = errors.New("bloomanno: version mismatch")

// WriteTo serializes the annotator as a stream of per-column Bloom filters,
// each emitting (m, h, bits) (SPEC_FULL.md §6). Column names are carried
// alongside so Column(label) works after a round trip.
func (a *Annotator) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var n int64

	if err := binary.Write(bw, be, Magic); err != nil {
		return n, err
	}
	n += int64(len(Magic))
	if err := binary.Write(bw, be, [4]uint8{MainVersion, MinorVersion, 0, 0}); err != nil {
		return n, err
	}
	n += 4
	if err := binary.Write(bw, be, [3]uint64{uint64(a.k), uint64(a.h), a.seed}); err != nil {
		return n, err
	}
	n += 24
	if err := binary.Write(bw, be, uint64(len(a.filters))); err != nil {
		return n, err
	}
	n += 8

	for i, f := range a.filters {
		if err := binary.Write(bw, be, uint64(len(a.names[i]))); err != nil {
			return n, err
		}
		n += 8
		if _, err := bw.Write(a.names[i]); err != nil {
			return n, err
		}
		n += int64(len(a.names[i]))

		if err := binary.Write(bw, be, [2]uint64{f.m, uint64(a.h)}); err != nil {
			return n, err
		}
		n += 16
		if err := binary.Write(bw, be, uint64(len(f.bits))); err != nil {
			return n, err
		}
		n += 8
		if _, err := bw.Write(f.bits); err != nil {
			return n, err
		}
		n += int64(len(f.bits))
	}

	return n, bw.Flush()
}

// ReadFrom rebuilds an Annotator from a stream written by WriteTo.
func ReadFrom(r io.Reader, alpha *kmer.Alphabet, sizeFactor float64) (*Annotator, error) {
	br := bufio.NewReader(r)

	var magic [8]byte
	if err := binary.Read(br, be, &magic); err != nil {
		return nil, err
	}
	if magic != Magic {
		return nil, ErrInvalidFileFormat
	}

	var ver [4]uint8
	if err := binary.Read(br, be, &ver); err != nil {
		return nil, err
	}
	if ver[0] != MainVersion {
		return nil, ErrVersionMismatch
	}

	var meta [3]uint64
	if err := binary.Read(br, be, &meta); err != nil {
		return nil, err
	}
	k, h, seed := int(meta[0]), int(meta[1]), meta[2]

	var numCols uint64
	if err := binary.Read(br, be, &numCols); err != nil {
		return nil, err
	}

	a := NewAnnotator(h, k, alpha, sizeFactor, seed)
	for i := uint64(0); i < numCols; i++ {
		var nameLen uint64
		if err := binary.Read(br, be, &nameLen); err != nil {
			return nil, err
		}
		name := make([]byte, nameLen)
		if _, err := io.ReadFull(br, name); err != nil {
			return nil, err
		}

		var mAndH [2]uint64
		if err := binary.Read(br, be, &mAndH); err != nil {
			return nil, err
		}
		var bitsLen uint64
		if err := binary.Read(br, be, &bitsLen); err != nil {
			return nil, err
		}
		bits := make([]byte, bitsLen)
		if _, err := io.ReadFull(br, bits); err != nil {
			return nil, err
		}

		a.filters = append(a.filters, newBloomFilterFromBits(mAndH[0], bits))
		a.names = append(a.names, name)
	}

	return a, nil
}
