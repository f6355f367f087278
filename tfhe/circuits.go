// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

// Integer circuits over vectors of encrypted bits, LSB at index 0. Every
// circuit is built from the bootstrapped AND, OR, XOR and XNOR gates and the
// free NOT; the gate sequence depends only on the bit width.

package tfhe

import (
	"fmt"
)

// fullAdder computes sum = a XOR b XOR cin and
// cout = (a AND b) OR (cin AND (a XOR b)).
func (eval *Evaluator) fullAdder(a, b, cin *Ciphertext) (sum, cout *Ciphertext, err error) {
	axorb, err := eval.XOR(a, b)
	if err != nil {
		return nil, nil, fmt.Errorf("xor(a,b): %w", err)
	}
	sum, err = eval.XOR(axorb, cin)
	if err != nil {
		return nil, nil, fmt.Errorf("xor(axorb,cin): %w", err)
	}
	aandb, err := eval.AND(a, b)
	if err != nil {
		return nil, nil, fmt.Errorf("and(a,b): %w", err)
	}
	cinAndAxorb, err := eval.AND(cin, axorb)
	if err != nil {
		return nil, nil, fmt.Errorf("and(cin,axorb): %w", err)
	}
	cout, err = eval.OR(aandb, cinAndAxorb)
	if err != nil {
		return nil, nil, fmt.Errorf("or: %w", err)
	}
	return sum, cout, nil
}

func (eval *Evaluator) halfAdder(a, b *Ciphertext) (sum, cout *Ciphertext, err error) {
	sum, err = eval.XOR(a, b)
	if err != nil {
		return nil, nil, err
	}
	cout, err = eval.AND(a, b)
	if err != nil {
		return nil, nil, err
	}
	return sum, cout, nil
}

// rippleAdd returns a+b truncated to len(a) bits and the carry out. A nil
// cin starts the chain with a half adder.
func (eval *Evaluator) rippleAdd(a, b []*Ciphertext, cin *Ciphertext) ([]*Ciphertext, *Ciphertext, error) {
	if len(a) != len(b) {
		return nil, nil, fmt.Errorf("bit count mismatch: %d vs %d", len(a), len(b))
	}

	sum := make([]*Ciphertext, len(a))
	carry := cin
	var err error
	for i := range a {
		if carry == nil {
			sum[i], carry, err = eval.halfAdder(a[i], b[i])
		} else {
			sum[i], carry, err = eval.fullAdder(a[i], b[i], carry)
		}
		if err != nil {
			return nil, nil, fmt.Errorf("bit %d: %w", i, err)
		}
	}
	return sum, carry, nil
}

func (eval *Evaluator) addBits(a, b []*Ciphertext) ([]*Ciphertext, error) {
	sum, _, err := eval.rippleAdd(a, b, nil)
	return sum, err
}

// addSatBits saturates on overflow by OR-ing the carry out into every bit.
func (eval *Evaluator) addSatBits(a, b []*Ciphertext) ([]*Ciphertext, error) {
	sum, carry, err := eval.rippleAdd(a, b, nil)
	if err != nil {
		return nil, err
	}
	for i := range sum {
		sum[i], err = eval.OR(sum[i], carry)
		if err != nil {
			return nil, fmt.Errorf("saturate bit %d: %w", i, err)
		}
	}
	return sum, nil
}

// subBits computes a + NOT(b) + 1 with the +1 as the initial carry.
func (eval *Evaluator) subBits(a, b []*Ciphertext) ([]*Ciphertext, error) {
	notB := make([]*Ciphertext, len(b))
	for i := range b {
		notB[i] = eval.NOT(b[i])
	}
	diff, _, err := eval.rippleAdd(a, notB, eval.constant(true))
	return diff, err
}

// mulBits is schoolbook shift-and-add truncated to len(a) bits.
func (eval *Evaluator) mulBits(a, b []*Ciphertext) ([]*Ciphertext, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("bit count mismatch: %d vs %d", len(a), len(b))
	}
	n := len(a)

	var acc []*Ciphertext
	for i := 0; i < n; i++ {
		row := make([]*Ciphertext, n)
		for j := 0; j < i; j++ {
			row[j] = eval.constant(false)
		}
		for j := i; j < n; j++ {
			r, err := eval.AND(a[j-i], b[i])
			if err != nil {
				return nil, fmt.Errorf("row %d bit %d: %w", i, j, err)
			}
			row[j] = r
		}

		if acc == nil {
			acc = row
			continue
		}
		var err error
		acc, err = eval.addBits(acc, row)
		if err != nil {
			return nil, fmt.Errorf("row %d add: %w", i, err)
		}
	}
	return acc, nil
}

// mulPlainBits adds a shifted copy of a for every set bit of p. The shape
// of the circuit depends on p, which is public.
func (eval *Evaluator) mulPlainBits(a []*Ciphertext, p uint64) ([]*Ciphertext, error) {
	n := len(a)
	var acc []*Ciphertext
	for i := 0; i < n; i++ {
		if (p>>i)&1 == 0 {
			continue
		}
		shifted := eval.shl(a, i)
		if acc == nil {
			acc = shifted
			continue
		}
		var err error
		acc, err = eval.addBits(acc, shifted)
		if err != nil {
			return nil, fmt.Errorf("shift %d add: %w", i, err)
		}
	}
	if acc == nil {
		return eval.zeros(n), nil
	}
	return acc, nil
}

func (eval *Evaluator) shl(a []*Ciphertext, shift int) []*Ciphertext {
	out := make([]*Ciphertext, len(a))
	for i := range out {
		if i < shift {
			out[i] = eval.constant(false)
		} else {
			out[i] = a[i-shift]
		}
	}
	return out
}

func (eval *Evaluator) zeros(n int) []*Ciphertext {
	out := make([]*Ciphertext, n)
	for i := range out {
		out[i] = eval.constant(false)
	}
	return out
}

// ltBits compares from MSB to LSB: a < b iff at the first differing bit
// a has 0 and b has 1.
func (eval *Evaluator) ltBits(a, b []*Ciphertext) (*Ciphertext, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("bit count mismatch: %d vs %d", len(a), len(b))
	}

	var isLess, isEqual *Ciphertext
	for i := len(a) - 1; i >= 0; i-- {
		bitLt, err := eval.AND(eval.NOT(a[i]), b[i])
		if err != nil {
			return nil, fmt.Errorf("bit %d lt: %w", i, err)
		}

		if isLess == nil {
			isLess = bitLt
			if i > 0 {
				isEqual, err = eval.XNOR(a[i], b[i])
				if err != nil {
					return nil, fmt.Errorf("bit %d eq: %w", i, err)
				}
			}
			continue
		}

		eqAndLt, err := eval.AND(isEqual, bitLt)
		if err != nil {
			return nil, fmt.Errorf("bit %d: %w", i, err)
		}
		isLess, err = eval.OR(isLess, eqAndLt)
		if err != nil {
			return nil, fmt.Errorf("bit %d: %w", i, err)
		}

		// the equality prefix is not needed after the last bit
		if i > 0 {
			bitEq, err := eval.XNOR(a[i], b[i])
			if err != nil {
				return nil, fmt.Errorf("bit %d eq: %w", i, err)
			}
			isEqual, err = eval.AND(isEqual, bitEq)
			if err != nil {
				return nil, fmt.Errorf("bit %d: %w", i, err)
			}
		}
	}
	return isLess, nil
}

// resize zero-extends or truncates a to n bits.
func (eval *Evaluator) resize(a []*Ciphertext, n int) []*Ciphertext {
	out := make([]*Ciphertext, n)
	for i := range out {
		if i < len(a) {
			out[i] = a[i]
		} else {
			out[i] = eval.constant(false)
		}
	}
	return out
}
