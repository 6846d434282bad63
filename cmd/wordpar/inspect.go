// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/wordpar"
	"github.com/cockroachdb/wordpar/internal/binfmt"
	"github.com/cockroachdb/wordpar/internal/packed"
	"github.com/cockroachdb/wordpar/internal/strparse"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var msbCmd = &cobra.Command{
	Use:   "msb <word>...",
	Short: "locate the most significant bit of words",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runMSB,
}

var lcpCmd = &cobra.Command{
	Use:   "lcp <word> <word>",
	Short: "length of the longest common prefix of two words",
	Args:  cobra.ExactArgs(2),
	RunE:  runLCP,
}

var topKCmd = &cobra.Command{
	Use:   "top-k <word> <k>",
	Short: "keep the k most significant bits of a word",
	Args:  cobra.ExactArgs(2),
	RunE:  runTopK,
}

var tileCmd = &cobra.Command{
	Use:   "tile <query>",
	Short: "replicate a query into every field of a packed word",
	Args:  cobra.ExactArgs(1),
	RunE:  runTile,
}

var rankCmd = &cobra.Command{
	Use:   "rank <query>...",
	Short: "rank queries against a bucket of small keys",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRank,
}

var tileConfig struct {
	width int
	count int
}

var rankConfig struct {
	keys string
}

func parseByte(s string) (uint8, error) {
	v, err := strparse.ParseWord(s)
	if err != nil {
		return 0, err
	}
	if v > 255 {
		return 0, errors.Newf("%d does not fit in a byte", v)
	}
	return uint8(v), nil
}

func runMSB(cmd *cobra.Command, args []string) error {
	stdout := cmd.OutOrStdout()
	tbl := tablewriter.NewWriter(stdout)
	tbl.SetHeader([]string{"Word", "Blocks", "Block", "MSB"})
	var locators []wordpar.MSBLocator
	for _, arg := range args {
		w, err := strparse.ParseWord(arg)
		if err != nil {
			return err
		}
		l, err := wordpar.BuildMSBLocator(w)
		if err != nil {
			return errors.Wrapf(err, "msb(%s)", arg)
		}
		locators = append(locators, l)
		tbl.Append([]string{
			fmt.Sprintf("%#x", w),
			fmt.Sprintf("%08b", l.Blocks()),
			strconv.Itoa(l.BlockID()),
			strconv.Itoa(l.MSB()),
		})
	}
	tbl.Render()
	if verbose {
		for _, l := range locators {
			dumpWord(stdout, fmt.Sprintf("word %#x", l.Word()), 0, l.Word(), wordpar.BytesLayout)
		}
	}
	return nil
}

func runLCP(cmd *cobra.Command, args []string) error {
	a, err := strparse.ParseWord(args[0])
	if err != nil {
		return err
	}
	b, err := strparse.ParseWord(args[1])
	if err != nil {
		return err
	}
	n, err := wordpar.LCPLen(a, b)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d\n", n)
	if verbose {
		fmt.Fprintf(cmd.OutOrStdout(), "%064b\n%064b\n", a, b)
	}
	return nil
}

func runTopK(cmd *cobra.Command, args []string) error {
	x, err := strparse.ParseWord(args[0])
	if err != nil {
		return err
	}
	k, err := strconv.Atoi(args[1])
	if err != nil {
		return errors.Wrapf(err, "parsing k")
	}
	v, err := wordpar.TopKBits(x, k)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%#x\n", v)
	if verbose {
		fmt.Fprintf(cmd.OutOrStdout(), "%064b\n", v)
	}
	return nil
}

func runTile(cmd *cobra.Command, args []string) error {
	q, err := parseByte(args[0])
	if err != nil {
		return err
	}
	l, err := wordpar.MakeLayout(tileConfig.width, tileConfig.count)
	if err != nil {
		return err
	}
	tiled, err := wordpar.Tile(q, l)
	if err != nil {
		return err
	}
	dumpWord(cmd.OutOrStdout(), fmt.Sprintf("tile(%d) in %s = %s", q, l, packed.Hex(tiled)), tiled.Hi, tiled.Lo, l)
	return nil
}

func runRank(cmd *cobra.Command, args []string) error {
	keys, err := strparse.ParseWords(rankConfig.keys)
	if err != nil {
		return errors.Wrapf(err, "parsing --keys")
	}
	var b wordpar.Bucket
	for _, k := range keys {
		if k > 255 {
			return errors.Newf("key %d does not fit in a byte", k)
		}
		if err := b.Add(uint8(k)); err != nil {
			return err
		}
	}
	stdout := cmd.OutOrStdout()
	tbl := tablewriter.NewWriter(stdout)
	tbl.SetHeader([]string{"Query", "Rank"})
	for _, arg := range args {
		q, err := parseByte(arg)
		if err != nil {
			return err
		}
		r, err := b.Rank(q)
		if err != nil {
			return err
		}
		tbl.Append([]string{strconv.Itoa(int(q)), strconv.Itoa(r)})
	}
	fmt.Fprintf(stdout, "bucket %s\n", &b)
	tbl.Render()
	if verbose {
		dumpWord(stdout, "bucket", 0, b.Word(), wordpar.BytesLayout)
	}
	return nil
}

// dumpWord writes the field by field rendering of a packed word.
func dumpWord(w io.Writer, title string, hi, lo uint64, l wordpar.Layout) {
	f := binfmt.New(hi, lo, l.Width(), l.Count())
	f.SetLinePrefix("  ")
	f.Comment("%s", title)
	f.Fields(func(i int, sentinel bool, payload uint64) string {
		return fmt.Sprintf("field %d: payload=%d", i, payload)
	})
	f.Padding("unused")
	fmt.Fprint(w, f.String())
}
