// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package tfhe

import (
	"fmt"
	"sync/atomic"

	"github.com/luxfi/lattice/v7/core/rgsw/blindrot"
	"github.com/luxfi/lattice/v7/core/rlwe"
	"github.com/luxfi/lattice/v7/ring"
)

// Evaluator evaluates boolean gates on encrypted bits.
// It holds only the bootstrap key, never the secret key.
type Evaluator struct {
	params Parameters
	eval   *blindrot.Evaluator
	bsk    *BootstrapKey
	ringQ  *ring.Ring

	bootstraps atomic.Uint64
}

// NewEvaluator creates a new evaluator with bootstrap key.
func NewEvaluator(params Parameters, bsk *BootstrapKey) *Evaluator {
	return &Evaluator{
		params: params,
		eval:   blindrot.NewEvaluator(params.params, params.params),
		bsk:    bsk,
		ringQ:  params.params.RingQ(),
	}
}

// Bootstraps returns the number of bootstraps performed so far.
func (eval *Evaluator) Bootstraps() uint64 {
	return eval.bootstraps.Load()
}

// bootstrap performs programmable bootstrapping with the given test
// polynomial. LWE and blind rotation share a ring, so the slot-0 result is
// already a valid bit ciphertext under the client key.
func (eval *Evaluator) bootstrap(ct *Ciphertext, testPoly *ring.Poly) (*Ciphertext, error) {
	eval.bootstraps.Add(1)

	results, err := eval.eval.Evaluate(ct.Ciphertext, map[int]*ring.Poly{0: testPoly}, eval.bsk.BRK)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	out, ok := results[0]
	if !ok {
		return nil, fmt.Errorf("bootstrap: no result for slot 0")
	}
	return &Ciphertext{out.CopyNew()}, nil
}

func (eval *Evaluator) add(ct1, ct2 *Ciphertext) *Ciphertext {
	result := rlwe.NewCiphertext(eval.params.params, 1, ct1.Level())

	eval.ringQ.Add(ct1.Value[0], ct2.Value[0], result.Value[0])
	eval.ringQ.Add(ct1.Value[1], ct2.Value[1], result.Value[1])

	result.IsNTT = ct1.IsNTT

	return &Ciphertext{result}
}

// NOT negates a bit. It needs no bootstrap.
func (eval *Evaluator) NOT(ct *Ciphertext) *Ciphertext {
	result := rlwe.NewCiphertext(eval.params.params, 1, ct.Level())

	eval.ringQ.Neg(ct.Value[0], result.Value[0])
	eval.ringQ.Neg(ct.Value[1], result.Value[1])

	result.IsNTT = ct.IsNTT

	return &Ciphertext{result}
}

// AND computes the logical AND of two inputs
func (eval *Evaluator) AND(ct1, ct2 *Ciphertext) (*Ciphertext, error) {
	return eval.bootstrap(eval.add(ct1, ct2), eval.bsk.TestPolyAND)
}

// OR computes the logical OR of two inputs
func (eval *Evaluator) OR(ct1, ct2 *Ciphertext) (*Ciphertext, error) {
	return eval.bootstrap(eval.add(ct1, ct2), eval.bsk.TestPolyOR)
}

// XOR computes 2*(ct1+ct2) and bootstraps once; (T,T) wraps around to the
// same position as (F,F).
func (eval *Evaluator) XOR(ct1, ct2 *Ciphertext) (*Ciphertext, error) {
	sum := eval.add(ct1, ct2)
	return eval.bootstrap(eval.add(sum, sum), eval.bsk.TestPolyXOR)
}

// XNOR is XOR with the inverted test polynomial.
func (eval *Evaluator) XNOR(ct1, ct2 *Ciphertext) (*Ciphertext, error) {
	sum := eval.add(ct1, ct2)
	return eval.bootstrap(eval.add(sum, sum), eval.bsk.TestPolyXNOR)
}

// constant returns a noiseless encryption of a public bit (a = 0, b = m).
func (eval *Evaluator) constant(value bool) *Ciphertext {
	level := eval.params.params.MaxLevel()
	pt := rlwe.NewPlaintext(eval.params.params, level)
	pt.Value.Coeffs[0][0] = eval.params.encode(value)
	eval.ringQ.NTT(pt.Value, pt.Value)

	ct := rlwe.NewCiphertext(eval.params.params, 1, level)
	ct.Value[0] = *pt.Value.CopyNew()
	ct.IsNTT = true

	return &Ciphertext{ct}
}
