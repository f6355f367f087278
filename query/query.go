// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

// Package query runs a private range query over an encrypted table.
//
// For every row the filter computes salary*hours and salary+bonus, checks
// both against the query ranges and decrypts a single match bit. That bit
// is the only value revealed; everything before it is oblivious.
package query

import (
	"fmt"
	"time"

	"github.com/luxfi/oblivious"
)

// Column widths of the sample table. Fields are cast to the working width
// before any arithmetic.
const (
	SalaryWidth = oblivious.W8
	HoursWidth  = oblivious.W8
	BonusWidth  = oblivious.W16

	// WorkWidth holds salary*hours for every sample row.
	WorkWidth = oblivious.W16
)

// FilterWidth returns the arithmetic width for a filter requested at w.
// Narrower widths would truncate bonus, wrap salary*hours and clamp the
// bounds, answering a different query.
func FilterWidth(w oblivious.Width) oblivious.Width {
	return max(w, WorkWidth)
}

// Record is one encrypted row. The filter never modifies it.
type Record struct {
	ID     int
	Salary oblivious.Int
	Hours  oblivious.Int
	Bonus  oblivious.Int
}

// Row is the plaintext form of a Record.
type Row struct {
	ID     int
	Salary uint64
	Hours  uint64
	Bonus  uint64
}

// Query selects rows with Lo1 <= salary*hours <= Hi1 and
// Lo2 <= salary+bonus <= Hi2. Bounds are public.
type Query struct {
	Lo1, Hi1 uint64
	Lo2, Hi2 uint64
}

// DefaultQuery is the benchmark query.
var DefaultQuery = Query{Lo1: 5000, Hi1: 6000, Lo2: 700, Hi2: 800}

// Filter returns the IDs of matching records in input order. Arithmetic
// happens at width w; bounds are clamped to w and encrypted once per call.
// Exactly one decryption is made per record.
func Filter(ev *oblivious.Evaluator, records []Record, q Query, w oblivious.Width) ([]int, time.Duration, error) {
	if err := w.Validate(); err != nil {
		return nil, 0, err
	}
	c := ev.Capability()

	var bounds [4]oblivious.Int
	for i, v := range []uint64{q.Lo1, q.Hi1, q.Lo2, q.Hi2} {
		x, err := c.Encrypt(oblivious.Clamp(v, w), w)
		if err != nil {
			return nil, 0, fmt.Errorf("encrypt bound %d: %w", i, err)
		}
		bounds[i] = x
	}

	start := time.Now()
	var ids []int
	for _, r := range records {
		match, err := matchRecord(ev, r, bounds, w)
		if err != nil {
			return nil, 0, fmt.Errorf("record %d: %w", r.ID, err)
		}
		v, err := c.Decrypt(match)
		if err != nil {
			return nil, 0, fmt.Errorf("record %d: decrypt match: %w", r.ID, err)
		}
		if v != 0 {
			ids = append(ids, r.ID)
		}
	}
	return ids, time.Since(start), nil
}

func matchRecord(ev *oblivious.Evaluator, r Record, bounds [4]oblivious.Int, w oblivious.Width) (oblivious.Int, error) {
	c := ev.Capability()

	salary, err := c.Cast(r.Salary, w)
	if err != nil {
		return nil, fmt.Errorf("cast salary: %w", err)
	}
	hours, err := c.Cast(r.Hours, w)
	if err != nil {
		return nil, fmt.Errorf("cast hours: %w", err)
	}
	bonus, err := c.Cast(r.Bonus, w)
	if err != nil {
		return nil, fmt.Errorf("cast bonus: %w", err)
	}

	product, err := c.Mul(salary, hours)
	if err != nil {
		return nil, fmt.Errorf("salary*hours: %w", err)
	}
	sum, err := c.Add(salary, bonus)
	if err != nil {
		return nil, fmt.Errorf("salary+bonus: %w", err)
	}

	p1, err := ev.RangeCheck(product, bounds[0], bounds[1])
	if err != nil {
		return nil, err
	}
	p2, err := ev.RangeCheck(sum, bounds[2], bounds[3])
	if err != nil {
		return nil, err
	}
	return ev.And(p1, p2)
}

// FilterPlain is the plaintext counterpart of Filter. Fields are clamped
// to their column widths and wrapped to w exactly as Encrypt and Cast do.
func FilterPlain(rows []Row, q Query, w oblivious.Width) []int {
	in := func(x, lo, hi uint64) bool {
		return oblivious.Clamp(lo, w) <= x && x <= oblivious.Clamp(hi, w)
	}
	var ids []int
	for _, r := range rows {
		s := oblivious.Wrap(oblivious.Clamp(r.Salary, SalaryWidth), w)
		h := oblivious.Wrap(oblivious.Clamp(r.Hours, HoursWidth), w)
		b := oblivious.Wrap(oblivious.Clamp(r.Bonus, BonusWidth), w)
		if in(oblivious.Wrap(s*h, w), q.Lo1, q.Hi1) && in(oblivious.Wrap(s+b, w), q.Lo2, q.Hi2) {
			ids = append(ids, r.ID)
		}
	}
	return ids
}

// Encrypt encrypts rows at their column widths, clamping each field.
func Encrypt(c oblivious.Capability, rows []Row) ([]Record, error) {
	out := make([]Record, len(rows))
	for i, r := range rows {
		rec := Record{ID: r.ID}
		var err error
		if rec.Salary, err = c.Encrypt(oblivious.Clamp(r.Salary, SalaryWidth), SalaryWidth); err != nil {
			return nil, fmt.Errorf("row %d salary: %w", r.ID, err)
		}
		if rec.Hours, err = c.Encrypt(oblivious.Clamp(r.Hours, HoursWidth), HoursWidth); err != nil {
			return nil, fmt.Errorf("row %d hours: %w", r.ID, err)
		}
		if rec.Bonus, err = c.Encrypt(oblivious.Clamp(r.Bonus, BonusWidth), BonusWidth); err != nil {
			return nil, fmt.Errorf("row %d bonus: %w", r.ID, err)
		}
		out[i] = rec
	}
	return out, nil
}

// SampleDatabase returns n deterministic rows with IDs 0..n-1.
func SampleDatabase(n int) []Row {
	rows := make([]Row, n)
	for i := range rows {
		rows[i] = Row{
			ID:     i,
			Salary: uint64(20 + (i*7)%80),
			Hours:  uint64(40 + (i*11)%40),
			Bonus:  uint64(600 + (i*13)%200),
		}
	}
	return rows
}
