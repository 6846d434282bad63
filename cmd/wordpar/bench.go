// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/tokenbucket"
	"github.com/cockroachdb/wordpar"
	"github.com/guptarohit/asciigraph"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
)

const (
	// Latencies are recorded per operation, averaged over a batch.
	minLatency = time.Nanosecond
	maxLatency = time.Second
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "run a throughput benchmark of the primitives",
	Long: `
Run random msb, lcp, rank and top-k operations from concurrent workers and
report per-operation latency percentiles and throughput.
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		benchConfig.logger = makeLogger()
		return runBench(ctx, &benchConfig, cmd.OutOrStdout())
	},
}

var benchConfig = benchOptions{
	duration: 10 * time.Second,
	batch:    1000,
	ops:      "msb,lcp,rank,top-k",
}

// benchOptions configures a benchmark run.
type benchOptions struct {
	concurrency int
	duration    time.Duration
	// batch is the number of operations between two clock readings.
	batch int
	// rate limits operations per second across all workers; 0 disables it.
	rate float64
	ops  string
	plot bool
	seed uint64
	// tick is the interval between progress reports.
	tick   time.Duration
	logger Logger
}

// ensureDefaults fills in zero fields.
func (o *benchOptions) ensureDefaults() {
	if o.concurrency <= 0 {
		o.concurrency = 1
	}
	if o.duration <= 0 {
		o.duration = 10 * time.Second
	}
	if o.batch <= 0 {
		o.batch = 1000
	}
	if o.ops == "" {
		o.ops = "msb,lcp,rank,top-k"
	}
	if o.tick <= 0 {
		o.tick = time.Second
	}
	if o.logger == nil {
		o.logger = quietLogger{}
	}
}

// validate checks the options, which must have had defaults applied.
func (o *benchOptions) validate() error {
	if o.rate < 0 {
		return errors.Errorf("rate must be >= 0, got %f", o.rate)
	}
	if _, err := o.parseOps(); err != nil {
		return err
	}
	return nil
}

func (o *benchOptions) parseOps() ([]benchOp, error) {
	var ops []benchOp
	for _, name := range strings.Split(o.ops, ",") {
		name = strings.TrimSpace(name)
		op, ok := benchOps[name]
		if !ok {
			return nil, errors.Errorf("unknown operation %q", name)
		}
		ops = append(ops, op)
	}
	return ops, nil
}

// benchOp runs n operations on the worker's inputs starting at input i.
type benchOp struct {
	name string
	run  func(w *benchWorker, i, n int)
}

var benchOps = map[string]benchOp{
	"msb": {name: "msb", run: func(w *benchWorker, i, n int) {
		for j := 0; j < n; j++ {
			l, err := wordpar.BuildMSBLocator(w.word(i + j))
			if err == nil {
				w.sink += l.MSB()
			}
		}
	}},
	"lcp": {name: "lcp", run: func(w *benchWorker, i, n int) {
		for j := 0; j < n; j++ {
			v, _ := wordpar.LCPLen(w.word(i+j), w.word(i+j+1))
			w.sink += v
		}
	}},
	"rank": {name: "rank", run: func(w *benchWorker, i, n int) {
		for j := 0; j < n; j++ {
			v, _ := w.bucket.Rank(uint8(w.word(i+j)) & wordpar.MaxKey)
			w.sink += v
		}
	}},
	"top-k": {name: "top-k", run: func(w *benchWorker, i, n int) {
		for j := 0; j < n; j++ {
			v, _ := wordpar.TopKBits(w.word(i+j), int(w.word(i+j)>>58)+1)
			w.sink += int(v >> 63)
		}
	}},
}

const numInputs = 1 << 12

// benchWorker holds the state of one benchmark goroutine. Inputs are drawn
// ahead of time so that the random number generator stays out of the timed
// loop.
type benchWorker struct {
	inputs [numInputs]uint64
	bucket wordpar.Bucket
	sink   int
}

func newBenchWorker(rng *rand.Rand) (*benchWorker, error) {
	w := &benchWorker{}
	for i := range w.inputs {
		// Shift right by a random amount so that every bit position is a
		// likely most significant bit.
		w.inputs[i] = rng.Uint64()>>uint(rng.Intn(64)) | 1
	}
	for !w.bucket.Full() {
		if err := w.bucket.Add(uint8(rng.Intn(wordpar.MaxKey + 1))); err != nil {
			return nil, err
		}
	}
	return w, nil
}

func (w *benchWorker) word(i int) uint64 {
	return w.inputs[i&(numInputs-1)]
}

type namedHistogram struct {
	name string
	mu   struct {
		sync.Mutex
		current *hdrhistogram.Histogram
	}
}

func newHistogram() *hdrhistogram.Histogram {
	return hdrhistogram.New(minLatency.Nanoseconds(), maxLatency.Nanoseconds(), 2)
}

func newNamedHistogram(name string) *namedHistogram {
	w := &namedHistogram{name: name}
	w.mu.current = newHistogram()
	return w
}

// Record records n operations that took elapsed in total.
func (w *namedHistogram) Record(elapsed time.Duration, n int) {
	perOp := elapsed / time.Duration(n)
	if perOp < minLatency {
		perOp = minLatency
	} else if perOp > maxLatency {
		perOp = maxLatency
	}

	w.mu.Lock()
	err := w.mu.current.RecordValues(perOp.Nanoseconds(), int64(n))
	w.mu.Unlock()

	if err != nil {
		// Note that a histogram only drops recorded values that are out of range,
		// but we clamp the latency value to the configured range to prevent such
		// drops. This code path should never happen.
		panic(fmt.Sprintf(`%s: recording value: %s`, w.name, err))
	}
}

func (w *namedHistogram) tick(fn func(h *hdrhistogram.Histogram)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	h := w.mu.current
	w.mu.current = newHistogram()
	fn(h)
}

type histogramTick struct {
	// Name is the name given to the histograms represented by this tick.
	Name string
	// Hist is the merged result of the represented histograms for this tick.
	// Hist.TotalCount() is the number of operations that occurred for this tick.
	Hist *hdrhistogram.Histogram
	// Cumulative is the merged result of the represented histograms for all
	// time. Cumulative.TotalCount() is the total number of operations that have
	// occurred over all time.
	Cumulative *hdrhistogram.Histogram
	// Elapsed is the amount of time since the last tick.
	Elapsed time.Duration
}

type histogramRegistry struct {
	mu struct {
		sync.Mutex
		registered []*namedHistogram
	}

	start      time.Time
	names      []string
	cumulative map[string]*hdrhistogram.Histogram
	prevTick   map[string]time.Time
}

func newHistogramRegistry() *histogramRegistry {
	return &histogramRegistry{
		start:      time.Now(),
		cumulative: make(map[string]*hdrhistogram.Histogram),
		prevTick:   make(map[string]time.Time),
	}
}

func (w *histogramRegistry) Register(name string) *namedHistogram {
	hist := newNamedHistogram(name)

	w.mu.Lock()
	w.mu.registered = append(w.mu.registered, hist)
	w.mu.Unlock()

	return hist
}

// Tick merges the histograms registered under each name and calls fn once per
// name, in registration order.
func (w *histogramRegistry) Tick(fn func(histogramTick)) {
	w.mu.Lock()
	registered := append([]*namedHistogram(nil), w.mu.registered...)
	w.mu.Unlock()

	merged := make(map[string]*hdrhistogram.Histogram)
	for _, hist := range registered {
		hist.tick(func(h *hdrhistogram.Histogram) {
			if m, ok := merged[hist.name]; ok {
				m.Merge(h)
			} else {
				merged[hist.name] = h
				if _, ok := w.cumulative[hist.name]; !ok {
					w.names = append(w.names, hist.name)
				}
			}
		})
	}

	now := time.Now()
	for _, name := range w.names {
		mergedHist, ok := merged[name]
		if !ok {
			mergedHist = newHistogram()
		}
		if _, ok := w.cumulative[name]; !ok {
			w.cumulative[name] = newHistogram()
		}
		w.cumulative[name].Merge(mergedHist)

		prevTick, ok := w.prevTick[name]
		if !ok {
			prevTick = w.start
		}
		w.prevTick[name] = now
		fn(histogramTick{
			Name:       name,
			Hist:       mergedHist,
			Cumulative: w.cumulative[name],
			Elapsed:    now.Sub(prevTick),
		})
	}
}

// rateLimiter shares a token bucket between workers.
type rateLimiter struct {
	mu sync.Mutex
	tb tokenbucket.TokenBucket
}

func newRateLimiter(rate float64, batch int) *rateLimiter {
	if rate == 0 {
		return nil
	}
	r := &rateLimiter{}
	burst := max(tokenbucket.Tokens(rate*0.1), tokenbucket.Tokens(batch))
	r.tb.Init(tokenbucket.TokensPerSecond(rate), burst)
	return r
}

// wait blocks until n operations may run or ctx is done.
func (r *rateLimiter) wait(ctx context.Context, n int) error {
	if r == nil {
		return nil
	}
	for {
		r.mu.Lock()
		ok, d := r.tb.TryToFulfill(tokenbucket.Tokens(n))
		r.mu.Unlock()
		if ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(d):
		}
	}
}

func runBench(ctx context.Context, opts *benchOptions, stdout io.Writer) error {
	opts.ensureDefaults()
	if err := opts.validate(); err != nil {
		return err
	}
	ops, err := opts.parseOps()
	if err != nil {
		return err
	}
	opts.logger.Infof("running %s for %s with %d workers", opts.ops, opts.duration, opts.concurrency)

	reg := newHistogramRegistry()
	limiter := newRateLimiter(opts.rate, opts.batch)
	ctx, cancel := context.WithTimeout(ctx, opts.duration)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < opts.concurrency; i++ {
		rng := rand.New(rand.NewSource(opts.seed + uint64(i)))
		w, err := newBenchWorker(rng)
		if err != nil {
			return err
		}
		hists := make([]*namedHistogram, len(ops))
		for j, op := range ops {
			hists[j] = reg.Register(op.name)
		}
		g.Go(func() error {
			for n := 0; ; n++ {
				if ctx.Err() != nil {
					return nil
				}
				if err := limiter.wait(ctx, opts.batch); err != nil {
					return nil
				}
				j := n % len(ops)
				start := time.Now()
				ops[j].run(w, n*opts.batch, opts.batch)
				hists[j].Record(time.Since(start), opts.batch)
			}
		})
	}

	throughput := make(map[string][]float64)
	tick := func() {
		reg.Tick(func(t histogramTick) {
			opsPerSec := float64(t.Hist.TotalCount()) / t.Elapsed.Seconds()
			throughput[t.Name] = append(throughput[t.Name], opsPerSec)
			opts.logger.Infof("%-6s %12.0f ops/sec  p50 %4dns  p99 %4dns",
				t.Name, opsPerSec, t.Hist.ValueAtQuantile(50), t.Hist.ValueAtQuantile(99))
		})
	}

	ticker := time.NewTicker(opts.tick)
	defer ticker.Stop()
	done := make(chan error, 1)
	go func() { done <- g.Wait() }()
	for {
		select {
		case <-ticker.C:
			tick()
			continue
		case err := <-done:
			if err != nil {
				return err
			}
		}
		break
	}
	// Flush whatever was recorded since the last tick.
	tick()

	elapsed := time.Since(reg.start)
	tbl := tablewriter.NewWriter(stdout)
	tbl.SetHeader([]string{"Op", "Ops", "Ops/sec", "Mean(ns)", "P50(ns)", "P95(ns)", "P99(ns)", "Max(ns)"})
	for _, name := range reg.names {
		h := reg.cumulative[name]
		tbl.Append([]string{
			name,
			fmt.Sprintf("%d", h.TotalCount()),
			fmt.Sprintf("%.0f", float64(h.TotalCount())/elapsed.Seconds()),
			fmt.Sprintf("%.1f", h.Mean()),
			fmt.Sprintf("%d", h.ValueAtQuantile(50)),
			fmt.Sprintf("%d", h.ValueAtQuantile(95)),
			fmt.Sprintf("%d", h.ValueAtQuantile(99)),
			fmt.Sprintf("%d", h.Max()),
		})
	}
	tbl.Render()

	if opts.plot {
		for _, name := range reg.names {
			if samples := throughput[name]; len(samples) > 1 {
				fmt.Fprintln(stdout, asciigraph.Plot(samples,
					asciigraph.Height(10), asciigraph.Caption(name+" ops/sec")))
			}
		}
	}
	return nil
}
