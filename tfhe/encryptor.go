// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package tfhe

import (
	"fmt"

	"github.com/luxfi/lattice/v7/core/rlwe"
	"github.com/luxfi/lattice/v7/ring"
)

// Encryptor encrypts bits under the client key.
type Encryptor struct {
	params    Parameters
	encryptor *rlwe.Encryptor
}

// NewEncryptor creates a new encryptor from secret key
func NewEncryptor(params Parameters, sk *SecretKey) *Encryptor {
	return &Encryptor{
		params:    params,
		encryptor: rlwe.NewEncryptor(params.params, sk.SK),
	}
}

// Encrypt encrypts a boolean value. Sums of two encrypted bits stay
// distinguishable: (0,0) -> -Q/4, (0,1) -> 0, (1,1) -> +Q/4.
func (enc *Encryptor) Encrypt(value bool) (*Ciphertext, error) {
	level := enc.params.params.MaxLevel()
	pt := rlwe.NewPlaintext(enc.params.params, level)
	pt.Value.Coeffs[0][0] = enc.params.encode(value)
	enc.params.params.RingQ().NTT(pt.Value, pt.Value)

	ct := rlwe.NewCiphertext(enc.params.params, 1, level)
	if err := enc.encryptor.Encrypt(pt, ct); err != nil {
		return nil, fmt.Errorf("encrypt bit: %w", err)
	}
	return &Ciphertext{ct}, nil
}

// EncryptUint encrypts the low bits of v, LSB first.
func (enc *Encryptor) EncryptUint(v uint64, bits int) ([]*Ciphertext, error) {
	cts := make([]*Ciphertext, bits)
	for i := range cts {
		ct, err := enc.Encrypt((v>>i)&1 == 1)
		if err != nil {
			return nil, fmt.Errorf("bit %d: %w", i, err)
		}
		cts[i] = ct
	}
	return cts, nil
}

// Decryptor decrypts bits with the client key.
type Decryptor struct {
	params    Parameters
	decryptor *rlwe.Decryptor
	ringQ     *ring.Ring
}

// NewDecryptor creates a new decryptor from secret key
func NewDecryptor(params Parameters, sk *SecretKey) *Decryptor {
	return &Decryptor{
		params:    params,
		decryptor: rlwe.NewDecryptor(params.params, sk.SK),
		ringQ:     params.params.RingQ(),
	}
}

// Decrypt decrypts a ciphertext to a boolean
func (dec *Decryptor) Decrypt(ct *Ciphertext) bool {
	pt := rlwe.NewPlaintext(dec.params.params, ct.Level())
	dec.decryptor.Decrypt(ct.Ciphertext, pt)

	if pt.IsNTT {
		dec.ringQ.INTT(pt.Value, pt.Value)
	}

	// true was encoded as Q/8 and false as 7Q/8
	return pt.Value.Coeffs[0][0] < dec.params.Q()>>1
}

// DecryptUint decrypts a little-endian bit vector.
func (dec *Decryptor) DecryptUint(cts []*Ciphertext) uint64 {
	var v uint64
	for i, ct := range cts {
		if dec.Decrypt(ct) {
			v |= 1 << i
		}
	}
	return v
}
