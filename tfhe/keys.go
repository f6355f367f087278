// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package tfhe

import (
	"github.com/luxfi/lattice/v7/core/rgsw/blindrot"
	"github.com/luxfi/lattice/v7/core/rlwe"
	"github.com/luxfi/lattice/v7/ring"
)

// SecretKey is the client key. It encrypts and decrypts bits.
type SecretKey struct {
	SK *rlwe.SecretKey
}

// BootstrapKey is the server key: the blind rotation key plus one test
// polynomial per gate.
type BootstrapKey struct {
	// BRK is the blind rotation key (RGSW encryptions of the secret key bits)
	BRK blindrot.BlindRotationEvaluationKeySet

	TestPolyAND  *ring.Poly
	TestPolyOR   *ring.Poly
	TestPolyXOR  *ring.Poly
	TestPolyXNOR *ring.Poly
}

// Ciphertext represents an encrypted bit
type Ciphertext struct {
	*rlwe.Ciphertext
}

// KeyGenerator generates FHE keys
type KeyGenerator struct {
	params Parameters
	kgen   *rlwe.KeyGenerator
	ringQ  *ring.Ring
	scale  float64
}

// NewKeyGenerator creates a new key generator
func NewKeyGenerator(params Parameters) *KeyGenerator {
	return &KeyGenerator{
		params: params,
		kgen:   rlwe.NewKeyGenerator(params.params),
		ringQ:  params.params.RingQ(),
		scale:  float64(params.Q()) / 8.0, // [-1, 1] -> [-Q/8, Q/8]
	}
}

// GenSecretKey generates a new client key
func (kg *KeyGenerator) GenSecretKey() *SecretKey {
	return &SecretKey{SK: kg.kgen.GenSecretKeyNew()}
}

// GenBootstrapKey generates the server key for sk
func (kg *KeyGenerator) GenBootstrapKey(sk *SecretKey) *BootstrapKey {
	brk := blindrot.GenEvaluationKeyNew(kg.params.params, sk.SK, kg.params.params, sk.SK, kg.params.evkParams)

	// With Q/8 encoding, after adding two bits the normalized positions are:
	// - true+true:   0.25
	// - true+false:  0
	// - false+false: -0.25
	and := func(x float64) float64 {
		if x >= 0.25 {
			return 1.0
		}
		return -1.0
	}
	or := func(x float64) float64 {
		if x > -0.25 {
			return 1.0
		}
		return -1.0
	}

	// XOR inputs are doubled first, so (T,T) wraps to -0.5 alongside (F,F)
	// and only the mixed case lands near 0. The 0.30 bound leaves margin
	// for carry chains.
	band := func(inside float64) func(x float64) float64 {
		return func(x float64) float64 {
			if x > -0.30 && x < 0.30 {
				return inside
			}
			return -inside
		}
	}

	scale := rlwe.NewScale(kg.scale)
	poly := func(f func(float64) float64) *ring.Poly {
		p := blindrot.InitTestPolynomial(f, scale, kg.ringQ, -1, 1)
		return &p
	}

	return &BootstrapKey{
		BRK:          brk,
		TestPolyAND:  poly(and),
		TestPolyOR:   poly(or),
		TestPolyXOR:  poly(band(1.0)),
		TestPolyXNOR: poly(band(-1.0)),
	}
}
