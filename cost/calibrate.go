// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package cost

import (
	"fmt"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/luxfi/oblivious"
)

// Calibration is the result of timing unit operations at one width.
type Calibration struct {
	Width oblivious.Width
	Units UnitTimes

	// Spread of the samples, in seconds.
	CpMulStdDev float64
	MulCpStdDev float64
}

// Calibrate measures one representative cp_mul (compare, cast, multiply)
// and one mul_cp (ciphertext multiply) at width w and returns the median
// of samples runs each. An unsupported width fails before any encryption.
func Calibrate(c oblivious.Capability, w oblivious.Width, samples int) (Calibration, error) {
	if err := w.Validate(); err != nil {
		return Calibration{}, err
	}
	if samples < 1 {
		samples = 1
	}

	// Operand values sit below the width's maximum so their product wraps.
	feature, err := c.Encrypt(w.MaxValue()/3, w)
	if err != nil {
		return Calibration{}, fmt.Errorf("calibrate: %w", err)
	}
	threshold, err := c.Encrypt(w.MaxValue()/2, w)
	if err != nil {
		return Calibration{}, fmt.Errorf("calibrate: %w", err)
	}
	weight, err := c.Encrypt(w.MaxValue()/5, w)
	if err != nil {
		return Calibration{}, fmt.Errorf("calibrate: %w", err)
	}

	cpMul := func() error {
		le, err := c.Le(feature, threshold)
		if err != nil {
			return err
		}
		cast, err := c.CastBool(le, w)
		if err != nil {
			return err
		}
		_, err = c.Mul(cast, weight)
		return err
	}
	mulCp := func() error {
		_, err := c.Mul(weight, feature)
		return err
	}

	cpSamples, err := sample(cpMul, samples)
	if err != nil {
		return Calibration{}, fmt.Errorf("calibrate cp_mul: %w", err)
	}
	mulSamples, err := sample(mulCp, samples)
	if err != nil {
		return Calibration{}, fmt.Errorf("calibrate mul_cp: %w", err)
	}

	cpMedian, cpStd, err := summarize(cpSamples)
	if err != nil {
		return Calibration{}, fmt.Errorf("calibrate cp_mul: %w", err)
	}
	mulMedian, mulStd, err := summarize(mulSamples)
	if err != nil {
		return Calibration{}, fmt.Errorf("calibrate mul_cp: %w", err)
	}

	return Calibration{
		Width: w,
		Units: UnitTimes{
			CpMul: seconds(cpMedian),
			MulCp: seconds(mulMedian),
		},
		CpMulStdDev: cpStd,
		MulCpStdDev: mulStd,
	}, nil
}

// summarize returns the median and standard deviation of data.
func summarize(data stats.Float64Data) (median, stdDev float64, err error) {
	if median, err = stats.Median(data); err != nil {
		return 0, 0, err
	}
	if stdDev, err = stats.StandardDeviation(data); err != nil {
		return 0, 0, err
	}
	return median, stdDev, nil
}

// sample runs f n times and returns the wall time of each run in seconds,
// measured with the monotonic clock.
func sample(f func() error, n int) (stats.Float64Data, error) {
	out := make(stats.Float64Data, 0, n)
	for i := 0; i < n; i++ {
		start := time.Now()
		if err := f(); err != nil {
			return nil, err
		}
		out = append(out, time.Since(start).Seconds())
	}
	return out, nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
