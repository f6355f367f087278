// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

// Command obliv-bench benchmarks the oblivious algorithms.
//
// Usage:
//
//	obliv-bench [flags] real       run every sweep entry and verify it
//	obliv-bench [flags] analysis   calibrate unit costs and project run times
//	obliv-bench security           print the parameter sets
//	obliv-bench help
//
// With -queue the sweep entries of real mode are pushed to Redis for
// obliv-worker instead of being run locally.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/luxfi/oblivious/bench"
	"github.com/luxfi/oblivious/internal/queue"
	"github.com/luxfi/oblivious/tfhe"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	backend    string
	params     string
	queueAddr  string
	queueName  string
	cpuProfile string
	memProfile string
	verbose    bool
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	var opts options
	fs := flag.NewFlagSet("obliv-bench", flag.ContinueOnError)
	fs.SetOutput(stdout)
	fs.StringVar(&opts.backend, "backend", "tfhe", "backend: tfhe or clear")
	fs.StringVar(&opts.params, "params", "PN10QP27", "TFHE security set (STD128_LMKCDEY, ...) or engine parameters (PN10QP27, PN11QP54)")
	fs.StringVar(&opts.queueAddr, "queue", "", "Redis address; enqueue sweep entries instead of running them")
	fs.StringVar(&opts.queueName, "queue-name", "default", "queue name")
	fs.StringVar(&opts.cpuProfile, "cpuprofile", "", "write cpu profile to file")
	fs.StringVar(&opts.memProfile, "memprofile", "", "write memory profile to file")
	fs.BoolVar(&opts.verbose, "v", false, "log progress to stderr")
	fs.Usage = func() { usage(fs) }
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return err
	}

	mode := fs.Arg(0)
	switch mode {
	case "real", "analysis":
	case "security":
		return tfhe.WriteSecurityTable(stdout)
	default:
		usage(fs)
		return nil
	}

	backend, err := bench.NewBackend(opts.backend, opts.params)
	if err != nil {
		return err
	}
	cfg := bench.DefaultConfig(backend)
	if opts.verbose {
		cfg.Logger = log.New(os.Stderr, "obliv-bench: ", log.LstdFlags)
	}
	runner, err := bench.NewRunner(cfg)
	if err != nil {
		return err
	}

	if mode == "real" && opts.queueAddr != "" {
		return enqueue(ctx, cfg, opts, stdout)
	}

	profiler := bench.NewProfiler(bench.ProfileConfig{
		CPUProfile: opts.cpuProfile,
		MemProfile: opts.memProfile,
	}, cfg.Logger)
	if err := profiler.Start(); err != nil {
		return err
	}
	defer func() {
		if err := profiler.Stop(); err != nil {
			fmt.Fprintf(os.Stderr, "profile: %v\n", err)
		}
	}()

	fmt.Fprintf(stdout, "backend %s, parameters %s\n\n", backend.Name(), opts.params)
	if mode == "analysis" {
		analyses, err := runner.Analyze(ctx)
		if err != nil {
			return err
		}
		return bench.WriteAnalysis(stdout, analyses)
	}

	results, err := runner.Sweep(ctx, cfg.Entries())
	if werr := bench.WriteResults(stdout, results); werr != nil {
		return werr
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout)
	workloads, err := runner.Workloads(ctx)
	if werr := bench.WriteWorkloads(stdout, workloads); werr != nil {
		return werr
	}
	return err
}

func enqueue(ctx context.Context, cfg bench.Config, opts options, stdout io.Writer) error {
	q, err := queue.NewRedisQueue(queue.RedisConfig{Addr: opts.queueAddr}, opts.queueName)
	if err != nil {
		return fmt.Errorf("create queue: %w", err)
	}
	defer q.Close()

	return pushEntries(ctx, q, cfg, opts, stdout)
}

func pushEntries(ctx context.Context, q queue.Queue, cfg bench.Config, opts options, stdout io.Writer) error {
	for _, e := range cfg.Entries() {
		job := queue.NewJob(e.Algorithm, e.Size, e.Width, opts.backend, opts.params)
		if err := q.Push(ctx, job); err != nil {
			return fmt.Errorf("push %s: %w", e, err)
		}
		fmt.Fprintf(stdout, "%s\t%s\n", job.ID, e)
	}
	return nil
}

func usage(fs *flag.FlagSet) {
	out := fs.Output()
	fmt.Fprintf(out, "Usage: obliv-bench [flags] <mode>\n\n")
	fmt.Fprintf(out, "Modes:\n")
	fmt.Fprintf(out, "  real       run every sweep entry and verify it against the plaintext result\n")
	fmt.Fprintf(out, "  analysis   calibrate unit operation costs and project run times\n")
	fmt.Fprintf(out, "  security   print the available parameter sets\n")
	fmt.Fprintf(out, "  help       print this message\n\n")
	fmt.Fprintf(out, "Flags:\n")
	fs.PrintDefaults()
}
