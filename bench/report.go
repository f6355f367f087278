// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package bench

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/luxfi/oblivious/cost"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func round(d time.Duration) time.Duration {
	if d > time.Second {
		return d.Round(time.Millisecond)
	}
	return d.Round(time.Microsecond)
}

// WriteResults renders sweep results grouped by algorithm, in input order.
func WriteResults(w io.Writer, results []Result) error {
	tw := newTable(w)
	var last cost.Algorithm
	for i, r := range results {
		if i == 0 || r.Algorithm != last {
			if i > 0 {
				fmt.Fprintln(tw)
			}
			fmt.Fprintf(tw, "%s\n", r.Algorithm)
			fmt.Fprintf(tw, "%s\tWIDTH\tTIME\tOPS\tPREDICTED cp_mul/mul_cp\tSTATUS\n", r.Algorithm.SizeName())
			last = r.Algorithm
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d/%d\t%s\n",
			r.Size, r.Width, round(r.Elapsed), r.Operations, r.Predicted.CpMul, r.Predicted.MulCp, r.Marker())
	}
	return tw.Flush()
}

// WriteWorkloads renders workload results.
func WriteWorkloads(w io.Writer, results []WorkloadResult) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "WORKLOAD\tWIDTH\tRESULT\tTIME\tSTATUS")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", r.Kind, r.Width, r.Value, round(r.Elapsed), r.Marker())
	}
	return tw.Flush()
}

// WriteAnalysis renders calibrated unit times and the projected run time of
// every algorithm size.
func WriteAnalysis(w io.Writer, analyses []Analysis) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "WIDTH\tcp_mul\tmul_cp\tσ cp_mul\tσ mul_cp")
	for _, a := range analyses {
		c := a.Calibration
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.3fs\t%.3fs\n",
			c.Width, round(c.Units.CpMul), round(c.Units.MulCp), c.CpMulStdDev, c.MulCpStdDev)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(analyses) == 0 {
		return nil
	}

	for _, alg := range cost.Algorithms {
		fmt.Fprintf(w, "\n%s\n", alg)
		tw = newTable(w)
		fmt.Fprintf(tw, "%s\tcp_mul\tmul_cp", alg.SizeName())
		for _, a := range analyses {
			fmt.Fprintf(tw, "\t%s", a.Calibration.Width)
		}
		fmt.Fprintln(tw)
		for i, p := range analyses[0].Projections[alg] {
			fmt.Fprintf(tw, "%d\t%d\t%d", p.Size, p.Count.CpMul, p.Count.MulCp)
			for _, a := range analyses {
				fmt.Fprintf(tw, "\t%s", cost.FormatDuration(a.Projections[alg][i].Estimate))
			}
			fmt.Fprintln(tw)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}
