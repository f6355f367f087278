// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

// Package workload times three small compare/multiply circuits that
// isolate the two cost classes of the cost model.
//
//	MulCmp     (a*b) <= c        at 2W
//	CmpMul     (a <= b) * c      at W
//	MulCmpMul  (a*b) <= (c*d)    at 2W
package workload

import (
	"errors"
	"fmt"
	"time"

	"github.com/luxfi/oblivious"
)

// ErrUnknownWorkload is returned for an unknown Kind.
var ErrUnknownWorkload = errors.New("unknown workload")

// Kind names one workload.
type Kind uint8

const (
	MulCmp Kind = iota + 1
	CmpMul
	MulCmpMul
)

// Kinds lists every workload in report order.
var Kinds = []Kind{MulCmp, CmpMul, MulCmpMul}

func (k Kind) String() string {
	switch k {
	case MulCmp:
		return "(a*b) <= c"
	case CmpMul:
		return "(a <= b) * c"
	case MulCmpMul:
		return "(a*b) <= (c*d)"
	default:
		return fmt.Sprintf("workload(%d)", uint8(k))
	}
}

// Inputs are the plaintext operands; D is used by MulCmpMul only.
type Inputs struct {
	A, B, C, D uint64
}

// Double returns the width products are computed at.
func Double(w oblivious.Width) (oblivious.Width, error) {
	d := oblivious.Width(2 * uint8(w))
	if err := d.Validate(); err != nil {
		return 0, fmt.Errorf("no double width for %s: %w", w, err)
	}
	return d, nil
}

// Defaults returns the benchmark operands for k at width w.
func Defaults(k Kind, w oblivious.Width) Inputs {
	table := map[Kind]map[oblivious.Width]Inputs{
		MulCmp: {
			oblivious.W6:  {A: 3, B: 4, C: 15},
			oblivious.W8:  {A: 15, B: 16, C: 250},
			oblivious.W12: {A: 1000, B: 3, C: 2500},
			oblivious.W16: {A: 100, B: 200, C: 25000},
		},
		CmpMul: {
			oblivious.W6:  {A: 5, B: 8, C: 10},
			oblivious.W8:  {A: 20, B: 15, C: 25},
			oblivious.W12: {A: 1000, B: 2000, C: 3000},
			oblivious.W16: {A: 100, B: 200, C: 500},
		},
		MulCmpMul: {
			oblivious.W6:  {A: 3, B: 4, C: 2, D: 6},
			oblivious.W8:  {A: 15, B: 16, C: 12, D: 20},
			oblivious.W12: {A: 1000, B: 3, C: 50, D: 70},
			oblivious.W16: {A: 100, B: 200, C: 150, D: 130},
		},
	}
	if in, ok := table[k][w]; ok {
		return in
	}
	return Inputs{A: 1, B: 2, C: 3, D: 4}
}

// Run encrypts the inputs under c, evaluates k and decrypts the result.
// Comparison results decrypt to 0 or 1. The duration covers evaluation
// only; encryption, widening casts and decryption are excluded.
func Run(c oblivious.Capability, k Kind, in Inputs, w oblivious.Width) (uint64, time.Duration, error) {
	if err := w.Validate(); err != nil {
		return 0, 0, err
	}
	enc := func(v uint64, w oblivious.Width) (oblivious.Int, error) {
		return c.Encrypt(oblivious.Clamp(v, w), w)
	}
	widen := func(v uint64, to oblivious.Width) (oblivious.Int, error) {
		x, err := enc(v, w)
		if err != nil {
			return nil, err
		}
		return c.Cast(x, to)
	}

	switch k {
	case MulCmp:
		d, err := Double(w)
		if err != nil {
			return 0, 0, err
		}
		a, err := widen(in.A, d)
		if err != nil {
			return 0, 0, fmt.Errorf("%s: a: %w", k, err)
		}
		b, err := widen(in.B, d)
		if err != nil {
			return 0, 0, fmt.Errorf("%s: b: %w", k, err)
		}
		cc, err := enc(in.C, d)
		if err != nil {
			return 0, 0, fmt.Errorf("%s: c: %w", k, err)
		}

		start := time.Now()
		p, err := c.Mul(a, b)
		if err != nil {
			return 0, 0, fmt.Errorf("%s: %w", k, err)
		}
		le, err := c.Le(p, cc)
		if err != nil {
			return 0, 0, fmt.Errorf("%s: %w", k, err)
		}
		elapsed := time.Since(start)
		return decryptBool(c, k, le, elapsed)

	case CmpMul:
		a, err := enc(in.A, w)
		if err != nil {
			return 0, 0, fmt.Errorf("%s: a: %w", k, err)
		}
		b, err := enc(in.B, w)
		if err != nil {
			return 0, 0, fmt.Errorf("%s: b: %w", k, err)
		}
		cc, err := enc(in.C, w)
		if err != nil {
			return 0, 0, fmt.Errorf("%s: c: %w", k, err)
		}

		start := time.Now()
		le, err := c.Le(a, b)
		if err != nil {
			return 0, 0, fmt.Errorf("%s: %w", k, err)
		}
		bit, err := c.CastBool(le, w)
		if err != nil {
			return 0, 0, fmt.Errorf("%s: %w", k, err)
		}
		p, err := c.Mul(bit, cc)
		if err != nil {
			return 0, 0, fmt.Errorf("%s: %w", k, err)
		}
		elapsed := time.Since(start)

		v, err := c.Decrypt(p)
		if err != nil {
			return 0, 0, fmt.Errorf("%s: %w", k, err)
		}
		return v, elapsed, nil

	case MulCmpMul:
		d, err := Double(w)
		if err != nil {
			return 0, 0, err
		}
		var ops [4]oblivious.Int
		for i, v := range []uint64{in.A, in.B, in.C, in.D} {
			if ops[i], err = widen(v, d); err != nil {
				return 0, 0, fmt.Errorf("%s: operand %d: %w", k, i, err)
			}
		}

		start := time.Now()
		ab, err := c.Mul(ops[0], ops[1])
		if err != nil {
			return 0, 0, fmt.Errorf("%s: %w", k, err)
		}
		cd, err := c.Mul(ops[2], ops[3])
		if err != nil {
			return 0, 0, fmt.Errorf("%s: %w", k, err)
		}
		le, err := c.Le(ab, cd)
		if err != nil {
			return 0, 0, fmt.Errorf("%s: %w", k, err)
		}
		elapsed := time.Since(start)
		return decryptBool(c, k, le, elapsed)
	}
	return 0, 0, fmt.Errorf("%w: %d", ErrUnknownWorkload, uint8(k))
}

func decryptBool(c oblivious.Capability, k Kind, b oblivious.Bool, elapsed time.Duration) (uint64, time.Duration, error) {
	v, err := c.DecryptBool(b)
	if err != nil {
		return 0, 0, fmt.Errorf("%s: %w", k, err)
	}
	if v {
		return 1, elapsed, nil
	}
	return 0, elapsed, nil
}

// Plain is the plaintext counterpart of Run.
func Plain(k Kind, in Inputs, w oblivious.Width) (uint64, error) {
	if err := w.Validate(); err != nil {
		return 0, err
	}
	a, b := oblivious.Clamp(in.A, w), oblivious.Clamp(in.B, w)
	c, d := oblivious.Clamp(in.C, w), oblivious.Clamp(in.D, w)

	switch k {
	case MulCmp:
		dw, err := Double(w)
		if err != nil {
			return 0, err
		}
		return b2u(oblivious.Wrap(a*b, dw) <= oblivious.Clamp(in.C, dw)), nil
	case CmpMul:
		return oblivious.Wrap(b2u(a <= b)*c, w), nil
	case MulCmpMul:
		dw, err := Double(w)
		if err != nil {
			return 0, err
		}
		return b2u(oblivious.Wrap(a*b, dw) <= oblivious.Wrap(c*d, dw)), nil
	}
	return 0, fmt.Errorf("%w: %d", ErrUnknownWorkload, uint8(k))
}

func b2u(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
