// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package oblivious

import (
	"fmt"
)

// Evaluator provides the oblivious primitives every algorithm is built from.
// None of them decrypt or inspect their inputs.
type Evaluator struct {
	cap  Capability
	ones map[Width]Int
}

// NewEvaluator creates an evaluator over the given capability.
func NewEvaluator(c Capability) *Evaluator {
	return &Evaluator{
		cap:  c,
		ones: make(map[Width]Int),
	}
}

// Capability returns the underlying capability.
func (ev *Evaluator) Capability() Capability {
	return ev.cap
}

// One returns the encrypted constant 1 of width w, encrypting it on first use.
func (ev *Evaluator) One(w Width) (Int, error) {
	if one, ok := ev.ones[w]; ok {
		return one, nil
	}
	one, err := ev.cap.Encrypt(1, w)
	if err != nil {
		return nil, fmt.Errorf("encrypt one: %w", err)
	}
	ev.ones[w] = one
	return one, nil
}

// Select returns a if cond is true and b otherwise, computed as
// c*a + (1-c)*b with c = cond cast to the operand width. The same
// operations are issued whichever branch is taken.
func (ev *Evaluator) Select(cond Bool, a, b Int) (Int, error) {
	if err := SameWidth(a, b); err != nil {
		return nil, fmt.Errorf("select: %w", err)
	}
	w := a.Width()

	one, err := ev.One(w)
	if err != nil {
		return nil, fmt.Errorf("select: %w", err)
	}
	c, err := ev.cap.CastBool(cond, w)
	if err != nil {
		return nil, fmt.Errorf("select: cast condition: %w", err)
	}
	notC, err := ev.cap.Sub(one, c)
	if err != nil {
		return nil, fmt.Errorf("select: 1-c: %w", err)
	}
	ta, err := ev.cap.Mul(c, a)
	if err != nil {
		return nil, fmt.Errorf("select: c*a: %w", err)
	}
	tb, err := ev.cap.Mul(notC, b)
	if err != nil {
		return nil, fmt.Errorf("select: (1-c)*b: %w", err)
	}
	r, err := ev.cap.Add(ta, tb)
	if err != nil {
		return nil, fmt.Errorf("select: sum: %w", err)
	}
	return r, nil
}

// RangeCheck returns an encrypted 0/1 of x's width that is 1 iff
// lo <= x <= hi. An empty range (lo > hi) yields 0 for every x.
func (ev *Evaluator) RangeCheck(x, lo, hi Int) (Int, error) {
	if err := SameWidth(x, lo); err != nil {
		return nil, fmt.Errorf("range check: %w", err)
	}
	if err := SameWidth(x, hi); err != nil {
		return nil, fmt.Errorf("range check: %w", err)
	}
	w := x.Width()

	geLo, err := ev.cap.Ge(x, lo)
	if err != nil {
		return nil, fmt.Errorf("range check: x >= lo: %w", err)
	}
	leHi, err := ev.cap.Le(x, hi)
	if err != nil {
		return nil, fmt.Errorf("range check: x <= hi: %w", err)
	}
	a, err := ev.cap.CastBool(geLo, w)
	if err != nil {
		return nil, fmt.Errorf("range check: %w", err)
	}
	b, err := ev.cap.CastBool(leHi, w)
	if err != nil {
		return nil, fmt.Errorf("range check: %w", err)
	}
	return ev.And(a, b)
}

// And multiplies two encrypted 0/1 values.
func (ev *Evaluator) And(a, b Int) (Int, error) {
	if err := SameWidth(a, b); err != nil {
		return nil, fmt.Errorf("and: %w", err)
	}
	r, err := ev.cap.Mul(a, b)
	if err != nil {
		return nil, fmt.Errorf("and: %w", err)
	}
	return r, nil
}
