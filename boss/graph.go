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

import "github.com/bossgraph/dbgbuild/kmer"

// Graph is a read-only, write-once-at-construction view over a Chunk's
// (W, last, F) arrays, with the traversal operations the corrector and
// query path need (SPEC_FULL.md §4.9). Edge indices are 1-based, matching
// Chunk.Build's numbering; edge 0 is never valid.
type Graph struct {
	c *Chunk
}

// NewGraph wraps a fully-built chunk (SPEC_FULL.md §4.9). The chunk must
// not be mutated afterward; Graph performs no locking because queries are
// read-only.
func NewGraph(c *Chunk) *Graph { return &Graph{c: c} }

func (g *Graph) Chunk() *Chunk { return g.c }

func (g *Graph) NumEdges() int { return len(g.c.W) }

// NumNodes returns the number of distinct nodes represented, counted as
// the number of edges i with last[i] == true (one per run of edges that
// share a target node, positions 1..K, in co-lex order).
func (g *Graph) NumNodes() int {
	n := 0
	for _, l := range g.c.Last {
		if l {
			n++
		}
	}
	return n
}

// plainLabel strips the duplicate-flag high bit W stores for a second
// occurrence of the same label at a node (SPEC_FULL.md §4.4 step 4).
func (g *Graph) plainLabel(w uint32) uint8 {
	if int(w) >= g.c.AlphSize {
		return uint8(int(w) - g.c.AlphSize)
	}
	return uint8(w)
}

// EdgeLabel returns the outgoing character of edge i (the character
// consumed walking forward along it), with the duplicate-flag bit masked
// off.
func (g *Graph) EdgeLabel(i int) uint8 {
	return g.plainLabel(g.c.W[i-1])
}

// nodeTarget returns the full K-character node string edge i targets
// (positions 1..K of its (k+1)-mer). Comparing this string, not just its
// last character, is what distinguishes two nodes that happen to share a
// last character — the F array alone cannot make that distinction.
func (g *Graph) nodeTarget(i int) string { return g.c.Kmers[i-1][1:] }

// nodeSource returns the full K-character node string edge i departs from
// (positions 0..K-1 of its (k+1)-mer).
func (g *Graph) nodeSource(i int) string { return g.c.Kmers[i-1][:g.c.K] }

// Successors returns every edge j that continues the path one step past
// edge i — i.e. every edge whose source node equals the node i targets.
// All such edges share a source; they differ only in AppendedChar(j), the
// newly appended character past that shared node (SPEC_FULL.md §4.9
// forward branch enumeration).
func (g *Graph) Successors(i int) []int {
	target := g.nodeTarget(i)
	var out []int
	for j := 1; j <= len(g.c.W); j++ {
		if g.nodeSource(j) == target {
			out = append(out, j)
		}
	}
	return out
}

// OutDegree returns the number of edges continuing the path past edge i.
func (g *Graph) OutDegree(i int) int { return len(g.Successors(i)) }

// AppendedChar returns the character newly appended past edge i's own
// target node — position K of edge i's (k+1)-mer, the character that
// discriminates among Successors of whatever edge targets i's source.
func (g *Graph) AppendedChar(i int) uint8 { return g.c.LastChar[i-1] }

// Successor returns the edge continuing the path past edge i whose
// AppendedChar is c, and whether one exists. SPEC_FULL.md §9 Open Question
// (b): the label compared here is the character the candidate edge newly
// appends, never an incoming one.
func (g *Graph) Successor(i int, c uint8) (int, bool) {
	for _, j := range g.Successors(i) {
		if g.AppendedChar(j) == c {
			return j, true
		}
	}
	return 0, false
}

// HasUniqueIncoming reports whether node i has exactly one incoming edge.
// Used by the corrector's backward-walk termination predicate
// (SPEC_FULL.md §4.7).
func (g *Graph) HasUniqueIncoming(i int) bool {
	return len(g.IncomingEdges(i)) == 1
}

// NodeLastChar returns the last character of the node edge i targets
// (i.e. the node edge i arrives at), found via the F array: F[a] < i <=
// F[a+1] identifies a as that character.
func (g *Graph) NodeLastChar(i int) uint8 {
	for a := 0; a < g.c.AlphSize; a++ {
		if uint64(i) > g.c.F[a] && uint64(i) <= g.c.F[a+1] {
			return uint8(a)
		}
	}
	return 0
}

// IncomingEdges returns every incoming edge of node i's node: every edge j
// whose target node string equals i's source node string, restricted to
// the edges in j's F-bucket (j's own last character, a cheap necessary
// condition since it must equal source(i)'s last character) and confirmed
// by full-string comparison against Chunk.Kmers.
func (g *Graph) IncomingEdges(i int) []int {
	source := g.nodeSource(i)
	wantLastChar := g.c.Alpha.Encode(source[len(source)-1])
	var out []int
	for j := 1; j <= len(g.c.W); j++ {
		if g.NodeLastChar(j) == wantLastChar && g.nodeTarget(j) == source {
			out = append(out, j)
		}
	}
	return out
}

// Predecessor returns one incoming edge of node i's node (the node edge i
// departs from), and whether one exists: the first of IncomingEdges(i),
// whether or not it is the only one. Predecessor only identifies the edge;
// callers needing the predecessor's full kmer read it with Kmer.
func (g *Graph) Predecessor(i int) (int, bool) {
	edges := g.IncomingEdges(i)
	if len(edges) == 0 {
		return 0, false
	}
	return edges[0], true
}

// Kmer returns the decoded (k+1)-mer string behind edge i, the same string
// a caller would get by decoding the sorted kmer.Array row Build consumed.
// correct and the query command hash this string rather than re-deriving it
// from W.
func (g *Graph) Kmer(i int) string { return g.c.Kmers[i-1] }

// Alphabet returns the alphabet the underlying chunk was built with, needed
// by callers that encode/decode characters against Kmer's raw bytes.
func (g *Graph) Alphabet() *kmer.Alphabet { return g.c.Alpha }

// Last reports whether edge i is the last of the run of edges that share
// its target node (positions 1..K).
func (g *Graph) Last(i int) bool { return g.c.Last[i-1] }

// Weight returns edge i's saturating weight, or 0 if the chunk carries no
// weights.
func (g *Graph) Weight(i int) uint8 {
	if g.c.Weights == nil {
		return 0
	}
	return g.c.Weights[i-1]
}
