// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "wordpar [command] (flags)",
	Short: "wordpar inspection/benchmarking tool",
	Long: `
Inspect and benchmark word-level parallel primitives: most significant bit
location, longest common prefixes, prefix masks, tiling and packed rank.

Words may be given as decimal, 0x, 0o or 0b literals, powers (2^56) or shifts
(1<<63), joined with + and -.
`,
	SilenceUsage: true,
}

func main() {
	log.SetFlags(0)

	cobra.EnableCommandSorting = false
	rootCmd.AddCommand(
		msbCmd,
		lcpCmd,
		topKCmd,
		tileCmd,
		rankCmd,
		benchCmd,
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose, "verbose", "v", false, "dump packed words field by field")

	tileCmd.Flags().IntVar(
		&tileConfig.width, "width", 8, "field width in bits, sentinel included")
	tileCmd.Flags().IntVar(
		&tileConfig.count, "count", 8, "number of fields")

	rankCmd.Flags().StringVarP(
		&rankConfig.keys, "keys", "k", "", "comma separated keys to add to the bucket, oldest first")

	benchCmd.Flags().IntVarP(
		&benchConfig.concurrency, "concurrency", "c", 1, "number of concurrent workers")
	benchCmd.Flags().DurationVarP(
		&benchConfig.duration, "duration", "d", benchConfig.duration, "the duration to run")
	benchCmd.Flags().IntVar(
		&benchConfig.batch, "batch", benchConfig.batch, "operations timed together as one sample")
	benchCmd.Flags().Float64Var(
		&benchConfig.rate, "rate", 0, "maximum operations per second across all workers (0 means unlimited)")
	benchCmd.Flags().StringVar(
		&benchConfig.ops, "ops", benchConfig.ops, "comma separated operations to run: msb, lcp, rank, top-k")
	benchCmd.Flags().BoolVar(
		&benchConfig.plot, "plot", false, "plot throughput over time")
	benchCmd.Flags().Uint64Var(
		&benchConfig.seed, "seed", 1, "random seed")

	if err := rootCmd.Execute(); err != nil {
		// Cobra has already printed the error message.
		os.Exit(1)
	}
}
