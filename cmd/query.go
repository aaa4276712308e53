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

package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shenwei356/xopen"
	"github.com/spf13/cobra"

	"github.com/bossgraph/dbgbuild/bloomanno"
	"github.com/bossgraph/dbgbuild/boss"
	"github.com/bossgraph/dbgbuild/correct"
	"github.com/bossgraph/dbgbuild/kmer"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Look up corrected label sets for one or more (k+1)-mers",
	Long: `Look up corrected label sets for one or more (k+1)-mers

Loads a BOSS graph and its Bloom annotation, runs the Corrector
(SPEC_FULL.md §4.7) over every matching edge, and prints the surviving
label set per k-mer.
`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)
		var fhLog *os.File
		if opt.Log2File {
			fhLog = addLog(opt.LogFile, opt.Verbose)
		}
		timeStart := time.Now()
		defer func() {
			if opt.Verbose || opt.Log2File {
				log.Infof("elapsed time: %s", time.Since(timeStart))
			}
			if opt.Log2File {
				fhLog.Close()
			}
		}()

		if len(args) == 0 {
			checkError(fmt.Errorf("at least one (k+1)-mer to query is required"))
		}

		graphFile := getFlagString(cmd, "graph")
		annFile := getFlagString(cmd, "annotation")
		pathCutoff := getFlagPositiveInt(cmd, "path-cutoff")
		raw := getFlagBool(cmd, "raw")

		g := loadGraph(graphFile)
		ann := loadAnnotator(annFile, g.Alphabet())

		cor := correct.NewCorrector(g, ann, pathCutoff)

		for _, kmerStr := range args {
			kmerStr = strings.ToUpper(kmerStr)
			if len(kmerStr) != g.Chunk().K+1 {
				checkError(fmt.Errorf("%q is not a (k+1)-mer of length %d", kmerStr, g.Chunk().K+1))
			}

			edge, found := findEdge(g, kmerStr)
			if !found {
				fmt.Printf("%s\t-\tnot found\n", kmerStr)
				continue
			}

			var bits *bloomanno.Annotation
			if raw {
				codes := encodeQueryKmer(kmerStr, g.Alphabet())
				bits = ann.TestKmer(codes)
			} else {
				bits = cor.Correct(edge).Bits
			}

			fmt.Printf("%s\t%d\t%s\n", kmerStr, edge, labelsOf(ann, bits))
		}
	},
}

func loadGraph(path string) *boss.Graph {
	fh, err := xopen.Ropen(path)
	checkError(err)
	defer fh.Close()
	g, err := boss.ReadGraph(fh)
	checkError(err)
	return g
}

func loadAnnotator(path string, alpha *kmer.Alphabet) *bloomanno.Annotator {
	fh, err := xopen.Ropen(path)
	checkError(err)
	defer fh.Close()
	ann, err := bloomanno.ReadFrom(fh, alpha, 0)
	checkError(err)
	return ann
}

// findEdge linear-scans the graph for the edge whose kmer matches s exactly.
// A query load is expected to be small (a handful of k-mers from the CLI),
// so this avoids needing a separate on-disk kmer index just for lookup.
func findEdge(g *boss.Graph, s string) (int, bool) {
	for i := 1; i <= g.NumEdges(); i++ {
		if g.Kmer(i) == s {
			return i, true
		}
	}
	return 0, false
}

func encodeQueryKmer(s string, alpha *kmer.Alphabet) []uint8 {
	codes := make([]uint8, len(s))
	for i := 0; i < len(s); i++ {
		codes[i] = alpha.Encode(s[i])
	}
	return codes
}

func labelsOf(ann *bloomanno.Annotator, bits *bloomanno.Annotation) string {
	names := ann.Columns()
	var out []string
	for i, name := range names {
		if bits.Test(i) {
			out = append(out, name)
		}
	}
	if len(out) == 0 {
		return "(none)"
	}
	return strings.Join(out, ",")
}

func init() {
	RootCmd.AddCommand(queryCmd)

	queryCmd.Flags().StringP("graph", "g", "", "path to a .dbg.graph file")
	queryCmd.Flags().StringP("annotation", "a", "", "path to a .annot.dbg file")
	queryCmd.Flags().IntP("path-cutoff", "p", 4, "consecutive non-improving walk steps before giving up, per direction")
	queryCmd.Flags().BoolP("raw", "", false, "skip correction, report the raw Bloom lookup")
	queryCmd.MarkFlagRequired("graph")
	queryCmd.MarkFlagRequired("annotation")
}
