// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

// Package sorting sorts encrypted arrays with a fixed compare-exchange
// network. The network is bubble sort with every pass run in full.
package sorting

import (
	"fmt"
	"time"

	"github.com/luxfi/oblivious"
)

// Sort orders arr ascending in place. It performs n passes of n-1
// compare-exchanges regardless of the contents. On error arr is left
// partially sorted.
func Sort(ev *oblivious.Evaluator, arr []oblivious.Int) (time.Duration, error) {
	for i := 1; i < len(arr); i++ {
		if err := oblivious.SameWidth(arr[0], arr[i]); err != nil {
			return 0, fmt.Errorf("element %d: %w", i, err)
		}
	}

	start := time.Now()
	for pass := 0; pass < len(arr); pass++ {
		for j := 0; j+1 < len(arr); j++ {
			if err := exchange(ev, arr, j); err != nil {
				return 0, fmt.Errorf("pass %d: %w", pass, err)
			}
		}
	}
	return time.Since(start), nil
}

// exchange swaps arr[j] and arr[j+1] when arr[j] > arr[j+1].
func exchange(ev *oblivious.Evaluator, arr []oblivious.Int, j int) error {
	a, b := arr[j], arr[j+1]
	swap, err := ev.Capability().Gt(a, b)
	if err != nil {
		return fmt.Errorf("compare %d: %w", j, err)
	}
	lo, err := ev.Select(swap, b, a)
	if err != nil {
		return fmt.Errorf("exchange %d: %w", j, err)
	}
	hi, err := ev.Select(swap, a, b)
	if err != nil {
		return fmt.Errorf("exchange %d: %w", j, err)
	}
	arr[j], arr[j+1] = lo, hi
	return nil
}

// SortPlain returns a sorted copy of values after clamping each to w.
func SortPlain(values []uint64, w oblivious.Width) []uint64 {
	out := make([]uint64, len(values))
	for i, v := range values {
		out[i] = oblivious.Clamp(v, w)
	}
	for pass := 0; pass < len(out); pass++ {
		for j := 0; j+1 < len(out); j++ {
			if out[j] > out[j+1] {
				out[j], out[j+1] = out[j+1], out[j]
			}
		}
	}
	return out
}

// Reversed returns n-1, n-2, ..., 0.
func Reversed(n int) []uint64 {
	out := make([]uint64, n)
	for i := range out {
		out[i] = uint64(n - 1 - i)
	}
	return out
}

// Encrypt encrypts values at width w, clamping each.
func Encrypt(c oblivious.Capability, values []uint64, w oblivious.Width) ([]oblivious.Int, error) {
	out := make([]oblivious.Int, len(values))
	for i, v := range values {
		x, err := c.Encrypt(oblivious.Clamp(v, w), w)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = x
	}
	return out, nil
}

// Decrypt decrypts every element of arr.
func Decrypt(c oblivious.Capability, arr []oblivious.Int) ([]uint64, error) {
	out := make([]uint64, len(arr))
	for i, x := range arr {
		v, err := c.Decrypt(x)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}
