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

import "testing"

// TestSuccessorRoundTrip checks that every edge returned by Successors(i)
// genuinely continues the path past edge i: its source node must equal the
// node i targets, and Successor(i, AppendedChar(j)) must find it back. This
// is the forward-traversal contract the corrector's forward walk relies on
// (SPEC_FULL.md §4.9).
func TestSuccessorRoundTrip(t *testing.T) {
	a := buildSorted(t, 2, "ACGT", "CGTA")
	c := Build(a, false, false, 255)
	g := NewGraph(c)

	for i := 1; i <= g.NumEdges(); i++ {
		succs := g.Successors(i)
		target := g.nodeTarget(i)
		for _, j := range succs {
			if got := g.nodeSource(j); got != target {
				t.Errorf("Successors(%d) returned edge %d whose source %q != target %q", i, j, got, target)
			}
			found, ok := g.Successor(i, g.AppendedChar(j))
			if !ok || found != j {
				t.Errorf("Successor(%d, %d) = (%d, %v), want (%d, true)", i, g.AppendedChar(j), found, ok, j)
			}
		}
	}
}

// TestIncomingEdgesMatchFullNode is the regression test for the bug this
// package's design note documents: two edges sharing a node's last
// character but not its full K-character target must not be confused as
// predecessors of each other's node.
func TestIncomingEdgesMatchFullNode(t *testing.T) {
	a := buildSorted(t, 2, "ACG", "CGT", "TCG")
	c := Build(a, false, false, 255)
	g := NewGraph(c)

	for i := 1; i <= g.NumEdges(); i++ {
		source := g.nodeSource(i)
		for _, j := range g.IncomingEdges(i) {
			if g.nodeTarget(j) != source {
				t.Errorf("IncomingEdges(%d) returned edge %d whose target %q != source %q",
					i, j, g.nodeTarget(j), source)
			}
			if g.nodeSource(i) != g.nodeTarget(j) {
				t.Errorf("edge %d (target %q) not actually a predecessor of node %q",
					j, g.nodeTarget(j), g.nodeSource(i))
			}
		}
	}
}

// TestHasUniqueIncomingAgreesWithCount checks that HasUniqueIncoming is
// exactly len(IncomingEdges)==1, the predicate the corrector's backward walk
// termination rule needs (SPEC_FULL.md §4.7).
func TestHasUniqueIncomingAgreesWithCount(t *testing.T) {
	a := buildSorted(t, 2, "ACG", "CGT", "TGA", "GAC")
	c := Build(a, false, false, 255)
	g := NewGraph(c)

	for i := 1; i <= g.NumEdges(); i++ {
		want := len(g.IncomingEdges(i)) == 1
		if got := g.HasUniqueIncoming(i); got != want {
			t.Errorf("HasUniqueIncoming(%d) = %v, want %v", i, got, want)
		}
	}
}

// TestPredecessorIsAnIncomingEdge checks that Predecessor, when it reports
// one exists, returns a member of IncomingEdges.
func TestPredecessorIsAnIncomingEdge(t *testing.T) {
	a := buildSorted(t, 2, "ACG", "CGT", "TGA")
	c := Build(a, false, false, 255)
	g := NewGraph(c)

	for i := 1; i <= g.NumEdges(); i++ {
		p, ok := g.Predecessor(i)
		if !ok {
			continue
		}
		found := false
		for _, j := range g.IncomingEdges(i) {
			if j == p {
				found = true
			}
		}
		if !found {
			t.Errorf("Predecessor(%d) = %d not in IncomingEdges(%d) = %v", i, p, i, g.IncomingEdges(i))
		}
	}
}
