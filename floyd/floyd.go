// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

// Package floyd computes all-pairs shortest paths over an encrypted
// distance matrix. Every (k, i, j) step is evaluated, so the number of
// operations depends only on the number of vertices.
package floyd

import (
	"errors"
	"fmt"
	"time"

	"github.com/luxfi/oblivious"
)

// ErrNotSquare is returned for a matrix whose rows differ in length from
// the number of rows.
var ErrNotSquare = errors.New("distance matrix is not square")

// Matrix is an n x n matrix of encrypted distances of one width.
type Matrix [][]oblivious.Int

func (m Matrix) validate() error {
	n := len(m)
	var w oblivious.Width
	for i, row := range m {
		if len(row) != n {
			return fmt.Errorf("%w: row %d has %d entries, want %d", ErrNotSquare, i, len(row), n)
		}
		for j, d := range row {
			if i == 0 && j == 0 {
				w = d.Width()
				continue
			}
			if d.Width() != w {
				return fmt.Errorf("entry (%d,%d): %w: %s vs %s", i, j, oblivious.ErrWidthMismatch, d.Width(), w)
			}
		}
	}
	return nil
}

// Relax runs Floyd-Warshall in place. Path sums saturate at the width's
// maximum, which plays the role of infinity. On error the matrix is left
// partially relaxed and must be discarded.
func Relax(ev *oblivious.Evaluator, m Matrix) (time.Duration, error) {
	if err := m.validate(); err != nil {
		return 0, err
	}
	c := ev.Capability()
	n := len(m)

	start := time.Now()
	for k := 0; k < n; k++ {
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				candidate, err := c.AddSat(m[i][k], m[k][j])
				if err != nil {
					return 0, fmt.Errorf("k=%d i=%d j=%d: %w", k, i, j, err)
				}
				shorter, err := c.Lt(candidate, m[i][j])
				if err != nil {
					return 0, fmt.Errorf("k=%d i=%d j=%d: %w", k, i, j, err)
				}
				m[i][j], err = ev.Select(shorter, candidate, m[i][j])
				if err != nil {
					return 0, fmt.Errorf("k=%d i=%d j=%d: %w", k, i, j, err)
				}
			}
		}
	}
	return time.Since(start), nil
}

// RelaxPlain is the plaintext counterpart of Relax. Entries are clamped to
// the width before relaxation, as encryption would.
func RelaxPlain(d [][]uint64, w oblivious.Width) ([][]uint64, error) {
	n := len(d)
	out := make([][]uint64, n)
	for i, row := range d {
		if len(row) != n {
			return nil, fmt.Errorf("%w: row %d has %d entries, want %d", ErrNotSquare, i, len(row), n)
		}
		out[i] = make([]uint64, n)
		for j, v := range row {
			out[i][j] = oblivious.Clamp(v, w)
		}
	}
	for k := 0; k < n; k++ {
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if s := oblivious.SatAdd(out[i][k], out[k][j], w); s < out[i][j] {
					out[i][j] = s
				}
			}
		}
	}
	return out, nil
}

// Encrypt encrypts a plaintext distance matrix, clamping entries to w.
func Encrypt(c oblivious.Capability, d [][]uint64, w oblivious.Width) (Matrix, error) {
	m := make(Matrix, len(d))
	for i, row := range d {
		m[i] = make([]oblivious.Int, len(row))
		for j, v := range row {
			x, err := c.Encrypt(oblivious.Clamp(v, w), w)
			if err != nil {
				return nil, fmt.Errorf("entry (%d,%d): %w", i, j, err)
			}
			m[i][j] = x
		}
	}
	return m, nil
}

// Decrypt decrypts every entry of m.
func Decrypt(c oblivious.Capability, m Matrix) ([][]uint64, error) {
	out := make([][]uint64, len(m))
	for i, row := range m {
		out[i] = make([]uint64, len(row))
		for j, x := range row {
			v, err := c.Decrypt(x)
			if err != nil {
				return nil, fmt.Errorf("entry (%d,%d): %w", i, j, err)
			}
			out[i][j] = v
		}
	}
	return out, nil
}

// Infinity is the distance used for missing edges in SampleGraph, before
// clamping to the working width.
const Infinity = 99

// SampleGraph returns an n-vertex path graph with unit edges in both
// directions and two shortcuts: 0-2 of weight 3 (n >= 4) and 1-4 of
// weight 5 (n >= 6). Missing edges are Infinity.
func SampleGraph(n int) [][]uint64 {
	d := make([][]uint64, n)
	for i := range d {
		d[i] = make([]uint64, n)
		for j := range d[i] {
			switch {
			case i == j:
				d[i][j] = 0
			case i+1 == j || j+1 == i:
				d[i][j] = 1
			default:
				d[i][j] = Infinity
			}
		}
	}
	if n >= 4 {
		d[0][2], d[2][0] = 3, 3
	}
	if n >= 6 {
		d[1][4], d[4][1] = 5, 5
	}
	return d
}
