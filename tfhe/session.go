// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package tfhe

import (
	"fmt"

	"github.com/luxfi/oblivious"
)

// Uint is an encrypted unsigned integer of a fixed width.
type Uint struct {
	bits  []*Ciphertext
	width oblivious.Width
	owner *Session
}

// Width implements oblivious.Int.
func (u *Uint) Width() oblivious.Width {
	return u.width
}

// Bool is an encrypted comparison result.
type Bool struct {
	ct    *Ciphertext
	owner *Session
}

// EncryptedBool implements oblivious.Bool.
func (*Bool) EncryptedBool() {}

// Backend creates TFHE sessions from one parameter set.
type Backend struct {
	literal ParametersLiteral
}

// NewBackend returns a backend for the given parameter set.
func NewBackend(lit ParametersLiteral) *Backend {
	return &Backend{literal: lit}
}

// Name implements oblivious.Backend.
func (b *Backend) Name() string {
	return "tfhe"
}

// NewSession generates a fresh client key and server key.
func (b *Backend) NewSession() (oblivious.Capability, error) {
	params, err := NewParametersFromLiteral(b.literal)
	if err != nil {
		return nil, fmt.Errorf("parameters: %w", err)
	}
	return NewSession(params), nil
}

// Session implements oblivious.Capability with one client key and, unless
// created by NewClientSession, the matching server key.
type Session struct {
	params Parameters
	enc    *Encryptor
	dec    *Decryptor
	eval   *Evaluator
}

// NewSession generates a key pair and returns a session able to encrypt,
// evaluate and decrypt.
func NewSession(params Parameters) *Session {
	kg := NewKeyGenerator(params)
	sk := kg.GenSecretKey()
	bsk := kg.GenBootstrapKey(sk)

	s := NewClientSession(params, sk)
	s.eval = NewEvaluator(params, bsk)
	return s
}

// NewClientSession returns a session holding only the client key. Every
// evaluation fails with oblivious.ErrKeyNotSet.
func NewClientSession(params Parameters, sk *SecretKey) *Session {
	return &Session{
		params: params,
		enc:    NewEncryptor(params, sk),
		dec:    NewDecryptor(params, sk),
	}
}

// Bootstraps returns the number of gate bootstraps evaluated in this session.
func (s *Session) Bootstraps() uint64 {
	if s.eval == nil {
		return 0
	}
	return s.eval.Bootstraps()
}

func (s *Session) unwrapUint(x oblivious.Int) (*Uint, error) {
	u, ok := x.(*Uint)
	if !ok || u.owner != s {
		return nil, oblivious.ErrForeignCiphertext
	}
	return u, nil
}

func (s *Session) unwrapBool(b oblivious.Bool) (*Bool, error) {
	v, ok := b.(*Bool)
	if !ok || v.owner != s {
		return nil, oblivious.ErrForeignCiphertext
	}
	return v, nil
}

func (s *Session) evaluator() (*Evaluator, error) {
	if s.eval == nil {
		return nil, oblivious.ErrKeyNotSet
	}
	return s.eval, nil
}

// operands checks ownership, width and key presence for a binary operation.
func (s *Session) operands(a, b oblivious.Int) (*Evaluator, *Uint, *Uint, error) {
	eval, err := s.evaluator()
	if err != nil {
		return nil, nil, nil, err
	}
	x, err := s.unwrapUint(a)
	if err != nil {
		return nil, nil, nil, err
	}
	y, err := s.unwrapUint(b)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := oblivious.SameWidth(x, y); err != nil {
		return nil, nil, nil, err
	}
	return eval, x, y, nil
}

func (s *Session) wrap(bits []*Ciphertext, w oblivious.Width) *Uint {
	return &Uint{bits: bits, width: w, owner: s}
}

// Encrypt implements oblivious.Capability.
func (s *Session) Encrypt(v uint64, w oblivious.Width) (oblivious.Int, error) {
	if err := oblivious.CheckRange(v, w); err != nil {
		return nil, err
	}
	bits, err := s.enc.EncryptUint(v, w.Bits())
	if err != nil {
		return nil, err
	}
	return s.wrap(bits, w), nil
}

// Decrypt implements oblivious.Capability.
func (s *Session) Decrypt(x oblivious.Int) (uint64, error) {
	u, err := s.unwrapUint(x)
	if err != nil {
		return 0, err
	}
	return s.dec.DecryptUint(u.bits), nil
}

// DecryptBool implements oblivious.Capability.
func (s *Session) DecryptBool(b oblivious.Bool) (bool, error) {
	v, err := s.unwrapBool(b)
	if err != nil {
		return false, err
	}
	return s.dec.Decrypt(v.ct), nil
}

func (s *Session) binary(a, b oblivious.Int, op string, f func(eval *Evaluator, x, y []*Ciphertext) ([]*Ciphertext, error)) (oblivious.Int, error) {
	eval, x, y, err := s.operands(a, b)
	if err != nil {
		return nil, err
	}
	bits, err := f(eval, x.bits, y.bits)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.wrap(bits, x.width), nil
}

// Add implements oblivious.Capability.
func (s *Session) Add(a, b oblivious.Int) (oblivious.Int, error) {
	return s.binary(a, b, "add", (*Evaluator).addBits)
}

// AddSat implements oblivious.Capability.
func (s *Session) AddSat(a, b oblivious.Int) (oblivious.Int, error) {
	return s.binary(a, b, "add_sat", (*Evaluator).addSatBits)
}

// Sub implements oblivious.Capability.
func (s *Session) Sub(a, b oblivious.Int) (oblivious.Int, error) {
	return s.binary(a, b, "sub", (*Evaluator).subBits)
}

// Mul implements oblivious.Capability.
func (s *Session) Mul(a, b oblivious.Int) (oblivious.Int, error) {
	return s.binary(a, b, "mul", (*Evaluator).mulBits)
}

// MulPlain implements oblivious.Capability.
func (s *Session) MulPlain(a oblivious.Int, p uint64) (oblivious.Int, error) {
	eval, err := s.evaluator()
	if err != nil {
		return nil, err
	}
	x, err := s.unwrapUint(a)
	if err != nil {
		return nil, err
	}
	bits, err := eval.mulPlainBits(x.bits, oblivious.Wrap(p, x.width))
	if err != nil {
		return nil, fmt.Errorf("mul_plain: %w", err)
	}
	return s.wrap(bits, x.width), nil
}

func (s *Session) lt(a, b oblivious.Int, swap, negate bool) (oblivious.Bool, error) {
	eval, x, y, err := s.operands(a, b)
	if err != nil {
		return nil, err
	}
	if swap {
		x, y = y, x
	}
	ct, err := eval.ltBits(x.bits, y.bits)
	if err != nil {
		return nil, fmt.Errorf("compare: %w", err)
	}
	if negate {
		ct = eval.NOT(ct)
	}
	return &Bool{ct: ct, owner: s}, nil
}

// Lt implements oblivious.Capability.
func (s *Session) Lt(a, b oblivious.Int) (oblivious.Bool, error) {
	return s.lt(a, b, false, false)
}

// Le is NOT(b < a).
func (s *Session) Le(a, b oblivious.Int) (oblivious.Bool, error) {
	return s.lt(a, b, true, true)
}

// Gt is b < a.
func (s *Session) Gt(a, b oblivious.Int) (oblivious.Bool, error) {
	return s.lt(a, b, true, false)
}

// Ge is NOT(a < b).
func (s *Session) Ge(a, b oblivious.Int) (oblivious.Bool, error) {
	return s.lt(a, b, false, true)
}

// CastBool implements oblivious.Capability.
func (s *Session) CastBool(b oblivious.Bool, w oblivious.Width) (oblivious.Int, error) {
	eval, err := s.evaluator()
	if err != nil {
		return nil, err
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	v, err := s.unwrapBool(b)
	if err != nil {
		return nil, err
	}
	return s.wrap(eval.resize([]*Ciphertext{v.ct}, w.Bits()), w), nil
}

// Cast implements oblivious.Capability.
func (s *Session) Cast(x oblivious.Int, w oblivious.Width) (oblivious.Int, error) {
	eval, err := s.evaluator()
	if err != nil {
		return nil, err
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	u, err := s.unwrapUint(x)
	if err != nil {
		return nil, err
	}
	return s.wrap(eval.resize(u.bits, w.Bits()), w), nil
}
