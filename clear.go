// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package oblivious

import (
	"fmt"
	"sync/atomic"
)

// ClearBackend creates sessions that keep plaintexts behind the Int and Bool
// handles. It has the same semantics and error behavior as the TFHE backend
// and is orders of magnitude faster, which makes it the backend of choice
// for checking algorithm logic.
type ClearBackend struct {
	// NoServerKey creates sessions that can encrypt and decrypt but fail
	// every evaluation with ErrKeyNotSet.
	NoServerKey bool
}

var clearSessionID atomic.Uint64

// Name implements Backend.
func (ClearBackend) Name() string {
	return "clear"
}

// NewSession implements Backend.
func (b ClearBackend) NewSession() (Capability, error) {
	return &ClearSession{
		id:        clearSessionID.Add(1),
		serverKey: !b.NoServerKey,
	}, nil
}

// ClearSession is a plaintext-backed Capability.
type ClearSession struct {
	id        uint64
	serverKey bool
}

type clearInt struct {
	v       uint64
	w       Width
	session uint64
}

func (x clearInt) Width() Width { return x.w }

type clearBool struct {
	v       bool
	session uint64
}

func (clearBool) EncryptedBool() {}

func (s *ClearSession) unwrap(x Int) (clearInt, error) {
	ci, ok := x.(clearInt)
	if !ok || ci.session != s.id {
		return clearInt{}, ErrForeignCiphertext
	}
	return ci, nil
}

func (s *ClearSession) unwrapBool(b Bool) (clearBool, error) {
	cb, ok := b.(clearBool)
	if !ok || cb.session != s.id {
		return clearBool{}, ErrForeignCiphertext
	}
	return cb, nil
}

func (s *ClearSession) operands(a, b Int) (clearInt, clearInt, error) {
	if !s.serverKey {
		return clearInt{}, clearInt{}, ErrKeyNotSet
	}
	x, err := s.unwrap(a)
	if err != nil {
		return clearInt{}, clearInt{}, err
	}
	y, err := s.unwrap(b)
	if err != nil {
		return clearInt{}, clearInt{}, err
	}
	if x.w != y.w {
		return clearInt{}, clearInt{}, fmt.Errorf("%w: %s vs %s", ErrWidthMismatch, x.w, y.w)
	}
	return x, y, nil
}

func (s *ClearSession) Encrypt(v uint64, w Width) (Int, error) {
	if err := CheckRange(v, w); err != nil {
		return nil, err
	}
	return clearInt{v: v, w: w, session: s.id}, nil
}

func (s *ClearSession) Decrypt(x Int) (uint64, error) {
	ci, err := s.unwrap(x)
	if err != nil {
		return 0, err
	}
	return ci.v, nil
}

func (s *ClearSession) DecryptBool(b Bool) (bool, error) {
	cb, err := s.unwrapBool(b)
	if err != nil {
		return false, err
	}
	return cb.v, nil
}

func (s *ClearSession) arith(a, b Int, f func(x, y uint64, w Width) uint64) (Int, error) {
	x, y, err := s.operands(a, b)
	if err != nil {
		return nil, err
	}
	return clearInt{v: f(x.v, y.v, x.w), w: x.w, session: s.id}, nil
}

func (s *ClearSession) compare(a, b Int, f func(x, y uint64) bool) (Bool, error) {
	x, y, err := s.operands(a, b)
	if err != nil {
		return nil, err
	}
	return clearBool{v: f(x.v, y.v), session: s.id}, nil
}

func (s *ClearSession) Add(a, b Int) (Int, error) {
	return s.arith(a, b, func(x, y uint64, w Width) uint64 { return Wrap(x+y, w) })
}

func (s *ClearSession) AddSat(a, b Int) (Int, error) {
	return s.arith(a, b, SatAdd)
}

func (s *ClearSession) Sub(a, b Int) (Int, error) {
	return s.arith(a, b, func(x, y uint64, w Width) uint64 { return Wrap(x-y, w) })
}

func (s *ClearSession) Mul(a, b Int) (Int, error) {
	return s.arith(a, b, func(x, y uint64, w Width) uint64 { return Wrap(x*y, w) })
}

func (s *ClearSession) MulPlain(a Int, p uint64) (Int, error) {
	if !s.serverKey {
		return nil, ErrKeyNotSet
	}
	x, err := s.unwrap(a)
	if err != nil {
		return nil, err
	}
	return clearInt{v: Wrap(x.v*Wrap(p, x.w), x.w), w: x.w, session: s.id}, nil
}

func (s *ClearSession) Lt(a, b Int) (Bool, error) {
	return s.compare(a, b, func(x, y uint64) bool { return x < y })
}

func (s *ClearSession) Le(a, b Int) (Bool, error) {
	return s.compare(a, b, func(x, y uint64) bool { return x <= y })
}

func (s *ClearSession) Gt(a, b Int) (Bool, error) {
	return s.compare(a, b, func(x, y uint64) bool { return x > y })
}

func (s *ClearSession) Ge(a, b Int) (Bool, error) {
	return s.compare(a, b, func(x, y uint64) bool { return x >= y })
}

func (s *ClearSession) CastBool(b Bool, w Width) (Int, error) {
	if !s.serverKey {
		return nil, ErrKeyNotSet
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	cb, err := s.unwrapBool(b)
	if err != nil {
		return nil, err
	}
	var v uint64
	if cb.v {
		v = 1
	}
	return clearInt{v: v, w: w, session: s.id}, nil
}

func (s *ClearSession) Cast(x Int, w Width) (Int, error) {
	if !s.serverKey {
		return nil, ErrKeyNotSet
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	ci, err := s.unwrap(x)
	if err != nil {
		return nil, err
	}
	return clearInt{v: Wrap(ci.v, w), w: w, session: s.id}, nil
}
