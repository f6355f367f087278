// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

// Package cost counts the homomorphic work each oblivious algorithm issues
// and projects its latency from measured unit-operation times.
//
// Two operation classes are counted. A cp_mul is a comparison whose result
// multiplies a ciphertext; a mul_cp is a ciphertext multiplication. Counts
// are derived from public sizes only, never from encrypted data.
package cost

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidSize is returned for negative sizes.
var ErrInvalidSize = errors.New("invalid size")

// ErrUnknownAlgorithm is returned for an algorithm without a counting rule.
var ErrUnknownAlgorithm = errors.New("unknown algorithm")

// Algorithm identifies an oblivious algorithm.
type Algorithm uint8

const (
	DecisionTree Algorithm = iota
	ShortestPath
	BubbleSort
	PredicateFilter
)

// Algorithms lists every algorithm with a counting rule.
var Algorithms = []Algorithm{DecisionTree, ShortestPath, BubbleSort, PredicateFilter}

func (a Algorithm) String() string {
	switch a {
	case DecisionTree:
		return "decision-tree"
	case ShortestPath:
		return "floyd-warshall"
	case BubbleSort:
		return "bubble-sort"
	case PredicateFilter:
		return "predicate-filter"
	}
	return fmt.Sprintf("algorithm(%d)", uint8(a))
}

// SizeName names the size parameter of a.
func (a Algorithm) SizeName() string {
	switch a {
	case DecisionTree:
		return "depth"
	case ShortestPath:
		return "nodes"
	case BubbleSort:
		return "elements"
	case PredicateFilter:
		return "rows"
	}
	return "size"
}

// ParseAlgorithm is the inverse of Algorithm.String.
func ParseAlgorithm(s string) (Algorithm, error) {
	for _, a := range Algorithms {
		if a.String() == s {
			return a, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, s)
}

// MarshalText implements encoding.TextMarshaler.
func (a Algorithm) MarshalText() ([]byte, error) {
	for _, known := range Algorithms {
		if a == known {
			return []byte(a.String()), nil
		}
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownAlgorithm, uint8(a))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Algorithm) UnmarshalText(text []byte) error {
	parsed, err := ParseAlgorithm(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// OperationCount is the number of cp_mul and mul_cp operations of one run.
type OperationCount struct {
	CpMul int
	MulCp int
}

// Analysis is the structural breakdown of one algorithm at one size.
type Analysis struct {
	Algorithm Algorithm
	Size      int

	// Nodes is the total node count of a decision tree.
	Nodes int
	// Comparisons and Assignments are the structural counts the operation
	// classes are derived from.
	Comparisons int
	Assignments int

	Count OperationCount
}

// Analyze returns the operation counts of alg at the given public size.
//
//	decision tree, depth d:  cp_mul = internal + leaves, mul_cp = internal
//	shortest path, n nodes:  cp_mul = 2n^3,              mul_cp = n^3
//	bubble sort, n elements: cp_mul = c + 2s,            mul_cp = 0
//	predicate filter, r rows: cp_mul = 4r,               mul_cp = 4r
//
// A complete tree of depth d has 2^(d-1)-1 internal nodes and 2^(d-1)
// leaves; depth 0 is a single leaf. Bubble sort has c = s = n(n-1)/2.
func Analyze(alg Algorithm, size int) (Analysis, error) {
	if size < 0 {
		return Analysis{}, fmt.Errorf("%w: %s %d", ErrInvalidSize, alg.SizeName(), size)
	}
	a := Analysis{Algorithm: alg, Size: size}

	switch alg {
	case DecisionTree:
		if size >= 63 {
			return Analysis{}, fmt.Errorf("%w: depth %d", ErrInvalidSize, size)
		}
		internal, leaves := 0, 1
		if size > 0 {
			internal = 1<<(size-1) - 1
			leaves = 1 << (size - 1)
		}
		a.Nodes = 1<<size - 1
		a.Comparisons = internal
		a.Assignments = leaves
		a.Count = OperationCount{CpMul: internal + leaves, MulCp: internal}

	case ShortestPath:
		n3 := size * size * size
		a.Comparisons = n3
		a.Assignments = n3
		a.Count = OperationCount{CpMul: 2 * n3, MulCp: n3}

	case BubbleSort:
		pairs := size * (size - 1) / 2
		a.Comparisons = pairs
		a.Assignments = pairs
		a.Count = OperationCount{CpMul: pairs + 2*pairs, MulCp: 0}

	case PredicateFilter:
		a.Comparisons = 4 * size
		a.Assignments = size
		a.Count = OperationCount{CpMul: 4 * size, MulCp: 4 * size}

	default:
		return Analysis{}, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, alg)
	}
	return a, nil
}

// UnitTimes are the measured latencies of one operation of each class.
type UnitTimes struct {
	CpMul time.Duration
	MulCp time.Duration
}

// EstimateTime projects the run time of the analysed algorithm. It is
// linear in each unit time.
func (a Analysis) EstimateTime(u UnitTimes) time.Duration {
	return time.Duration(a.Count.CpMul)*u.CpMul + time.Duration(a.Count.MulCp)*u.MulCp
}

// Projection is one row of a cost projection.
type Projection struct {
	Analysis
	Estimate time.Duration
}

// Project analyses alg at every size and estimates each run with u.
func Project(alg Algorithm, sizes []int, u UnitTimes) ([]Projection, error) {
	out := make([]Projection, 0, len(sizes))
	for _, size := range sizes {
		a, err := Analyze(alg, size)
		if err != nil {
			return nil, err
		}
		out = append(out, Projection{Analysis: a, Estimate: a.EstimateTime(u)})
	}
	return out, nil
}

// FormatDuration renders d with the coarsest unit that keeps it readable:
// seconds below a minute, then minutes, hours and days.
func FormatDuration(d time.Duration) string {
	secs := d.Seconds()
	switch {
	case secs < 60:
		return fmt.Sprintf("%.1fs", secs)
	case secs < 3600:
		return fmt.Sprintf("%.1fm", secs/60)
	case secs < 86400:
		return fmt.Sprintf("%.1fh", secs/3600)
	}
	return fmt.Sprintf("%.1fd", secs/86400)
}
