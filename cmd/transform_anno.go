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
)

// transformAnnoCmd rewrites a .annot.dbg file's column set into the --out
// file, the
// sole post-build editing surface SPEC_FULL.md §4.10 allows: renaming,
// merging, and dropping labels, never touching the Bloom bit-packing
// itself.
var transformAnnoCmd = &cobra.Command{
	Use:   "transform-anno",
	Short: "Rename, merge, or drop columns of a Bloom annotation file",
	Long: `Rename, merge, or drop columns of a Bloom annotation file

  --rename old:new    rename a column
  --merge  dst:src     OR src's filter into dst, then drop src
  --drop   name         drop a column entirely

All renames are applied first, then all merges, then all drops; within
each group, values are applied in the order given.
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

		inFile := getFlagString(cmd, "annotation")
		outFile := getFlagString(cmd, "out")
		renames := getFlagStringSlice(cmd, "rename")
		merges := getFlagStringSlice(cmd, "merge")
		drops := getFlagStringSlice(cmd, "drop")

		fh, err := xopen.Ropen(inFile)
		checkError(err)
		ann, err := bloomanno.ReadFrom(fh, nil, 0)
		fh.Close()
		checkError(err)

		for _, spec := range renames {
			old, new_, ok := splitPair(spec)
			if !ok {
				checkError(fmt.Errorf("--rename expects old:new, got %q", spec))
			}
			checkError(ann.Rename(old, new_))
		}
		for _, spec := range merges {
			dst, src, ok := splitPair(spec)
			if !ok {
				checkError(fmt.Errorf("--merge expects dst:src, got %q", spec))
			}
			checkError(ann.Merge(dst, src))
		}
		for _, name := range drops {
			checkError(ann.Drop(name))
		}

		out, err := xopen.Wopen(outFile)
		checkError(err)
		defer out.Close()
		n, err := ann.WriteTo(out)
		checkError(err)

		if opt.Verbose {
			log.Infof("wrote %d columns (%d bytes) to %s", ann.NumColumns(), n, outFile)
		}
	},
}

func splitPair(s string) (a, b string, ok bool) {
	i := strings.IndexByte(s, ':')
	if i < 0 {
		return "", "", false
	}
	return s[:i], s[i+1:], true
}

func init() {
	RootCmd.AddCommand(transformAnnoCmd)

	transformAnnoCmd.Flags().StringP("annotation", "a", "", "path to the input .annot.dbg file")
	transformAnnoCmd.Flags().StringP("out", "o", "", "path to write the rewritten .annot.dbg file")
	transformAnnoCmd.Flags().StringSliceP("rename", "", nil, "old:new column rename, repeatable")
	transformAnnoCmd.Flags().StringSliceP("merge", "", nil, "dst:src column merge, repeatable")
	transformAnnoCmd.Flags().StringSliceP("drop", "", nil, "column name to drop, repeatable")
	transformAnnoCmd.MarkFlagRequired("annotation")
	transformAnnoCmd.MarkFlagRequired("out")
}
