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
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/klauspost/pgzip"
	"github.com/shenwei356/bio/seqio/fastx"
	"github.com/shenwei356/util/pathutil"
	"github.com/shenwei356/xopen"
	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/bossgraph/dbgbuild/bloomanno"
	"github.com/bossgraph/dbgbuild/boss"
	"github.com/bossgraph/dbgbuild/collect"
	"github.com/bossgraph/dbgbuild/dummy"
	"github.com/bossgraph/dbgbuild/kmer"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build a BOSS graph and Bloom annotation from FASTA/Q sequences",
	Long: `Build a BOSS graph and Bloom annotation from FASTA/Q sequences

Each positional input file becomes one annotation column (label); the
column name defaults to the file's base name with extensions removed,
matching the genome-batch model of SPEC_FULL.md §4.6's expansion.
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
				log.Info()
				log.Infof("elapsed time: %s", time.Since(timeStart))
			}
			if opt.Log2File {
				fhLog.Close()
			}
		}()

		if len(args) == 0 {
			checkError(fmt.Errorf("at least one input FASTA/Q file is required"))
		}

		k := getFlagPositiveInt(cmd, "kmer")
		canonical := getFlagBool(cmd, "canonical")
		outDir := getFlagString(cmd, "out-dir")
		force := getFlagBool(cmd, "force")
		maxWeight := getFlagPositiveInt(cmd, "max-weight")
		if maxWeight > 255 {
			checkError(fmt.Errorf("--max-weight must fit in a byte (<=255)"))
		}
		withWeights := getFlagBool(cmd, "weights")
		gzipOut := getFlagBool(cmd, "gzip")
		hashes := getFlagPositiveInt(cmd, "hashes")
		bloomFactor := getFlagFloat64(cmd, "bloom-size-factor")
		seed := uint64(getFlagNonNegativeInt(cmd, "seed"))

		makeOutDir(outDir, force, "dbgbuild build", opt.Verbose)

		alpha := kmer.DNA5

		collector, err := collect.NewCollector(k, alpha, canonical, nil, collect.Options{
			NumThreads: opt.NumCPUs,
		})
		checkError(err)

		ann := bloomanno.NewAnnotator(hashes, k, alpha, bloomFactor, seed)
		cols := make([]int, len(args))
		for i, file := range args {
			cols[i] = ann.AddColumn(columnName(file))
		}

		var pbs *mpb.Progress
		var bar *mpb.Bar
		if opt.Verbose {
			pbs = mpb.New(mpb.WithWidth(40), mpb.WithOutput(os.Stderr))
			bar = pbs.AddBar(int64(len(args)),
				mpb.PrependDecorators(
					decor.Name("processed files: "),
					decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
				),
				mpb.AppendDecorators(
					decor.Name("ETA: "),
					decor.EwmaETA(decor.ET_STYLE_GO, 10),
					decor.OnComplete(decor.Name(""), ". done"),
				),
			)
		}

		tokens := make(chan struct{}, opt.NumCPUs)
		var wg sync.WaitGroup
		for i, file := range args {
			tokens <- struct{}{}
			wg.Add(1)
			go func(file string, col int) {
				defer func() {
					<-tokens
					wg.Done()
					if bar != nil {
						bar.Increment()
					}
				}()
				ingestFile(file, collector, ann, col, opt.Verbose)
			}(file, cols[i])
		}
		wg.Wait()
		if pbs != nil {
			pbs.Wait()
		}

		data, err := collector.Join()
		checkError(err)
		data = dummy.Run(data)

		chunk := boss.Build(data, canonical, withWeights, uint8(maxWeight))

		chunkFile := filepath.Join(outDir, "graph.dbg.chunk")
		writeFile(chunkFile, gzipOut, func(w io.Writer) (int64, error) { return boss.WriteChunk(w, chunk) })

		graphFile := filepath.Join(outDir, "graph.dbg.graph")
		g := boss.NewGraph(chunk)
		writeFile(graphFile, gzipOut, func(w io.Writer) (int64, error) { return boss.WriteGraph(w, g) })

		annFile := filepath.Join(outDir, "annotation.annot.dbg")
		writeFile(annFile, gzipOut, func(w io.Writer) (int64, error) { return ann.WriteTo(w) })

		if opt.Verbose {
			log.Infof("%s edges, %s nodes, %d columns written to %s",
				humanize.Comma(int64(g.NumEdges())), humanize.Comma(int64(g.NumNodes())), ann.NumColumns(), outDir)
		}
	},
}

// ingestFile streams one FASTA/Q file's records into both the global kmer
// collector (for the BOSS graph) and the annotator's column (for the Bloom
// filter), the per-file worker unit of SPEC_FULL.md §4.2's expansion.
func ingestFile(file string, collector *collect.Collector, ann *bloomanno.Annotator, col int, verbose bool) {
	reader, err := fastx.NewReader(nil, file, "")
	if err != nil {
		checkError(fmt.Errorf("opening %s: %w", file, err))
		return
	}
	defer reader.Close()

	for {
		record, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			checkError(fmt.Errorf("reading %s: %w", file, err))
			break
		}
		seq := append([]byte(nil), record.Seq.Seq...)
		collector.AddSequence(seq)
		if err := ann.AddSequence(seq, col); err != nil {
			checkError(err)
		}
	}
}

func columnName(file string) string {
	base := filepath.Base(file)
	for _, ext := range []string{".gz", ".xz", ".zst", ".bz2"} {
		base = strings.TrimSuffix(base, ext)
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// writeFile writes through write to path. With gzipOut, the file is written
// with a ".gz" suffix through pgzip's parallel gzip writer, trading memory
// for the multi-core throughput a single build's multi-gigabyte chunk/graph
// files benefit from. Without it, xopen.Wopen handles plain writes (and
// would transparently compress on a caller-chosen .gz/.xz/.bz2/.zst
// extension, the same convenience it gives transform-anno and query on the
// read side).
func writeFile(path string, gzipOut bool, write func(io.Writer) (int64, error)) {
	if gzipOut {
		fh, err := os.Create(path + ".gz")
		checkError(err)
		defer fh.Close()

		gz := pgzip.NewWriter(fh)
		_, err = write(gz)
		checkError(err)
		checkError(gz.Close())
		return
	}

	fh, err := xopen.Wopen(path)
	checkError(err)
	defer fh.Close()
	_, err = write(fh)
	checkError(err)
}

func makeOutDir(outDir string, force bool, logname string, verbose bool) {
	existed, err := pathutil.DirExists(outDir)
	checkError(err)
	if existed {
		empty, err := pathutil.IsEmpty(outDir)
		checkError(err)
		if !empty {
			if !force {
				checkError(fmt.Errorf("%s: output directory not empty: %s, use --force to overwrite", logname, outDir))
			}
			checkError(os.RemoveAll(outDir))
		} else {
			checkError(os.RemoveAll(outDir))
		}
	}
	checkError(os.MkdirAll(outDir, 0777))
}

func init() {
	RootCmd.AddCommand(buildCmd)

	buildCmd.Flags().IntP("kmer", "k", 31, "k-mer size (BOSS nodes are k characters, edges are k+1)")
	buildCmd.Flags().BoolP("canonical", "C", false, "extract canonical (strand-agnostic) k-mers")
	buildCmd.Flags().StringP("out-dir", "o", "dbgbuild-out", "output directory")
	buildCmd.Flags().BoolP("force", "f", false, "overwrite a non-empty output directory")
	buildCmd.Flags().IntP("max-weight", "", 255, "saturating cap on per-edge k-mer counts")
	buildCmd.Flags().BoolP("weights", "", false, "record per-edge k-mer counts")
	buildCmd.Flags().BoolP("gzip", "z", false, "gzip-compress output files with a parallel (pgzip) writer")
	buildCmd.Flags().IntP("hashes", "H", 4, "number of hash functions per Bloom filter column")
	buildCmd.Flags().Float64P("bloom-size-factor", "", 8.0, "Bloom filter bits per inserted k-mer")
	buildCmd.Flags().IntP("seed", "", 1, "seed for the rolling hash functions")
}
