// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

// Package bench runs the oblivious algorithms over fixed size sweeps,
// checks every result against the plaintext oracle and renders reports.
//
// Each sweep entry gets a fresh session, so no key material is shared
// between runs. A failed entry is reported and the sweep moves on.
package bench

import (
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/luxfi/oblivious"
	"github.com/luxfi/oblivious/cost"
	"github.com/luxfi/oblivious/tfhe"
)

// ErrUnknownBackend is returned by NewBackend for an unknown backend name.
var ErrUnknownBackend = errors.New("unknown backend")

// Config configures a Runner. Sizes are public parameters; no flag sets
// them directly.
type Config struct {
	Backend oblivious.Backend

	Widths         []oblivious.Width
	AnalysisWidths []oblivious.Width

	TreeDepths []int
	GraphSizes []int
	SortSizes  []int
	Rows       []int

	// TreeFeatures is the length of the feature vector of generated trees.
	TreeFeatures int
	// Seed drives generated tree features.
	Seed int64
	// Samples is the number of calibration samples per unit operation.
	Samples int

	Logger *log.Logger
}

// DefaultConfig returns the standard sweeps over b.
func DefaultConfig(b oblivious.Backend) Config {
	return Config{
		Backend: b,
		Widths:  []oblivious.Width{oblivious.W6, oblivious.W8, oblivious.W12, oblivious.W16},
		AnalysisWidths: []oblivious.Width{
			oblivious.W6, oblivious.W8, oblivious.W12, oblivious.W16, oblivious.W24, oblivious.W32,
		},
		TreeDepths:   []int{2, 4, 6, 8},
		GraphSizes:   []int{16, 32, 64, 128},
		SortSizes:    []int{4, 8, 16, 32},
		Rows:         []int{8, 16, 32, 64},
		TreeFeatures: 4,
		Seed:         1,
		Samples:      3,
		Logger:       log.New(io.Discard, "", 0),
	}
}

// Validate checks that the configuration can run.
func (c Config) Validate() error {
	if c.Backend == nil {
		return fmt.Errorf("%w: none configured", ErrUnknownBackend)
	}
	for _, w := range append(append([]oblivious.Width(nil), c.Widths...), c.AnalysisWidths...) {
		if err := w.Validate(); err != nil {
			return err
		}
	}
	for _, alg := range cost.Algorithms {
		for _, size := range c.Sizes(alg) {
			if _, err := cost.Analyze(alg, size); err != nil {
				return err
			}
		}
	}
	if c.TreeFeatures < 1 {
		return fmt.Errorf("tree features: %d", c.TreeFeatures)
	}
	return nil
}

// Sizes returns the sweep for alg.
func (c Config) Sizes(alg cost.Algorithm) []int {
	switch alg {
	case cost.DecisionTree:
		return c.TreeDepths
	case cost.ShortestPath:
		return c.GraphSizes
	case cost.BubbleSort:
		return c.SortSizes
	case cost.PredicateFilter:
		return c.Rows
	}
	return nil
}

// Entry is one run of a sweep.
type Entry struct {
	Algorithm cost.Algorithm
	Size      int
	Width     oblivious.Width
}

func (e Entry) String() string {
	return fmt.Sprintf("%s %s=%d %s", e.Algorithm, e.Algorithm.SizeName(), e.Size, e.Width)
}

// Entries returns the sweep entries of algs, or of every algorithm if none
// are given.
func (c Config) Entries(algs ...cost.Algorithm) []Entry {
	if len(algs) == 0 {
		algs = cost.Algorithms
	}
	var out []Entry
	for _, alg := range algs {
		for _, size := range c.Sizes(alg) {
			for _, w := range c.Widths {
				out = append(out, Entry{Algorithm: alg, Size: size, Width: w})
			}
		}
	}
	return out
}

// NewBackend returns the named backend. params names a TFHE security set or
// engine parameter set and is ignored by the clear backend.
func NewBackend(name, params string) (oblivious.Backend, error) {
	switch name {
	case "clear":
		return oblivious.ClearBackend{}, nil
	case "tfhe":
		lit, err := tfhe.ResolveParameters(params)
		if err != nil {
			return nil, err
		}
		return tfhe.NewBackend(lit), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
}
