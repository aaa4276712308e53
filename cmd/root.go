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

// Package cmd implements the dbgbuild command line, a cobra root command
// with build/query/transform-anno subcommands (SPEC_FULL.md §6).
package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

// RootCmd is the dbgbuild entry point; main.go calls Execute.
var RootCmd = &cobra.Command{
	Use:   "dbgbuild",
	Short: "Build and query a succinct de Bruijn graph with Bloom-filter annotations",
	Long: `dbgbuild

Build a BOSS (succinct de Bruijn graph) representation from FASTA/Q
sequences, annotate its edges with per-label Bloom filters, and query
corrected annotations via a graph-guided suppression walk.
`,
}

// Execute runs the root command, exiting with status 1 on any error, per
// the CLI exit-code contract of SPEC_FULL.md §6.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().IntP("threads", "j", 0, "number of CPUs to use, 0 for all available")
	RootCmd.PersistentFlags().BoolP("quiet", "q", false, "do not print any verbose progress/log information")
	RootCmd.PersistentFlags().StringP("log", "", "", "write log messages to this file instead of stderr")
}

// Options holds the flags shared by every subcommand.
type Options struct {
	NumCPUs int
	Verbose bool

	LogFile  string
	Log2File bool
}

func getOptions(cmd *cobra.Command) *Options {
	threads := getFlagNonNegativeInt(cmd, "threads")
	if threads == 0 {
		threads = runtime.NumCPU()
	}
	runtime.GOMAXPROCS(threads)

	logfile := getFlagString(cmd, "log")
	opt := &Options{
		NumCPUs: threads,
		Verbose: !getFlagBool(cmd, "quiet"),
		LogFile: logfile,
	}
	opt.Log2File = logfile != ""
	return opt
}
