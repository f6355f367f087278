// Package tfhe evaluates oblivious integer circuits with TFHE gate
// bootstrapping.
//
// Encrypted integers are vectors of LWE-encrypted bits. Every binary gate is
// followed by a programmable bootstrap on luxfi/lattice blind rotations, so
// circuits of arbitrary depth can be evaluated without noise management by
// the caller.
//
// This implementation is built on luxfi/lattice primitives:
//   - LWE encryption for bits
//   - RGSW for bootstrap keys
//   - Blind rotations for programmable bootstrapping
//
// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause
package tfhe

import (
	"errors"
	"fmt"
	"sort"

	"github.com/luxfi/lattice/v7/core/rlwe"
	"github.com/luxfi/lattice/v7/utils"
)

// ErrUnknownParameters is returned for an unknown parameter set name.
var ErrUnknownParameters = errors.New("unknown parameter set")

// Parameters defines the FHE parameter set. LWE samples and blind rotation
// share one ring, so bootstrapping needs neither key switching nor
// modulus switching.
type Parameters struct {
	params    rlwe.Parameters
	evkParams rlwe.EvaluationKeyParameters
}

// ParametersLiteral is a user-friendly parameter specification
type ParametersLiteral struct {
	// LogN is log2 of the ring dimension
	LogN int
	// Q is the ciphertext modulus, an NTT-friendly prime
	Q uint64
	// BaseTwoDecomposition for the blind rotation keys (typically 5-10)
	BaseTwoDecomposition int
}

// Standard parameter sets
var (
	// PN10QP27 provides ~128-bit security with good performance.
	// N=1024, Q=134215681
	PN10QP27 = ParametersLiteral{
		LogN:                 10,
		Q:                    0x7fff801,
		BaseTwoDecomposition: 7,
	}

	// PN11QP54 provides ~128-bit security with higher precision.
	// N=2048, Q=~2^54
	PN11QP54 = ParametersLiteral{
		LogN:                 11,
		Q:                    0x3FFFFFFFFFC0001,
		BaseTwoDecomposition: 10,
	}
)

var literals = map[string]ParametersLiteral{
	"PN10QP27": PN10QP27,
	"PN11QP54": PN11QP54,
}

// LiteralByName returns the named parameter set.
func LiteralByName(name string) (ParametersLiteral, error) {
	lit, ok := literals[name]
	if !ok {
		return ParametersLiteral{}, fmt.Errorf("%w: %q", ErrUnknownParameters, name)
	}
	return lit, nil
}

// LiteralNames returns the names accepted by LiteralByName, sorted.
func LiteralNames() []string {
	names := make([]string, 0, len(literals))
	for name := range literals {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewParametersFromLiteral creates Parameters from a literal specification
func NewParametersFromLiteral(lit ParametersLiteral) (params Parameters, err error) {
	params.params, err = rlwe.NewParametersFromLiteral(rlwe.ParametersLiteral{
		LogN:    lit.LogN,
		Q:       []uint64{lit.Q},
		NTTFlag: true,
	})
	if err != nil {
		return
	}

	params.evkParams = rlwe.EvaluationKeyParameters{
		BaseTwoDecomposition: utils.Pointy(lit.BaseTwoDecomposition),
	}

	return
}

// N returns the ring dimension
func (p Parameters) N() int {
	return p.params.N()
}

// Q returns the ciphertext modulus
func (p Parameters) Q() uint64 {
	return p.params.Q()[0]
}

// encode maps a bit to its plaintext coefficient: +Q/8 for true, -Q/8 for false.
func (p Parameters) encode(value bool) uint64 {
	q := p.Q()
	if value {
		return q / 8
	}
	return q - q/8
}
