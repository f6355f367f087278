// Package oblivious implements data-oblivious evaluation over encrypted
// fixed-width unsigned integers.
//
// Algorithms in the sub-packages (tree, floyd, sorting, query) are written
// against the Capability interface and never branch on, or decrypt, the
// values they compute with. Control flow depends only on public structure
// such as tree shape, matrix size, array length or row count.
//
// Two capabilities are provided:
//   - tfhe.Backend evaluates integers as vectors of gate-bootstrapped bits
//   - ClearBackend tracks plaintexts behind the same opaque handles and is
//     used to check algorithm logic quickly
//
// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause
package oblivious

import (
	"errors"
	"fmt"
)

// Errors returned by capabilities and primitives.
var (
	ErrUnsupportedWidth  = errors.New("unsupported bit width")
	ErrEncoding          = errors.New("value exceeds width range")
	ErrWidthMismatch     = errors.New("width mismatch")
	ErrKeyNotSet         = errors.New("server key not set")
	ErrForeignCiphertext = errors.New("ciphertext belongs to another session")
	ErrDecryptForbidden  = errors.New("decryption forbidden")
)

// Width is the bit width of an encrypted unsigned integer.
type Width uint8

// Supported widths
const (
	W6  Width = 6
	W8  Width = 8
	W12 Width = 12
	W16 Width = 16
	W24 Width = 24
	W32 Width = 32
)

// Widths lists every supported width in increasing order.
var Widths = []Width{W6, W8, W12, W16, W24, W32}

// Validate returns ErrUnsupportedWidth if w is not one of Widths.
func (w Width) Validate() error {
	switch w {
	case W6, W8, W12, W16, W24, W32:
		return nil
	}
	return fmt.Errorf("%w: %d", ErrUnsupportedWidth, uint8(w))
}

// Bits returns the number of bits.
func (w Width) Bits() int {
	return int(w)
}

// MaxValue returns 2^w - 1.
func (w Width) MaxValue() uint64 {
	return uint64(1)<<w - 1
}

func (w Width) String() string {
	return fmt.Sprintf("%d-bit", uint8(w))
}

// CheckRange returns ErrEncoding if v does not fit in w bits.
func CheckRange(v uint64, w Width) error {
	if err := w.Validate(); err != nil {
		return err
	}
	if v > w.MaxValue() {
		return fmt.Errorf("%w: %d > %d (%s)", ErrEncoding, v, w.MaxValue(), w)
	}
	return nil
}

// Clamp limits v to the largest value representable in w bits. Callers
// clamp before Encrypt; capabilities reject out-of-range plaintexts.
func Clamp(v uint64, w Width) uint64 {
	return min(v, w.MaxValue())
}

// Wrap reduces v modulo 2^w, matching encrypted Add, Sub and Mul.
func Wrap(v uint64, w Width) uint64 {
	return v & w.MaxValue()
}

// SatAdd returns a+b saturated at 2^w - 1, matching Capability.AddSat.
func SatAdd(a, b uint64, w Width) uint64 {
	s := a + b
	if s > w.MaxValue() || s < a {
		return w.MaxValue()
	}
	return s
}

// Int is an encrypted unsigned integer. Values are immutable.
type Int interface {
	Width() Width
}

// Bool is an encrypted comparison result. It must be cast with
// Capability.CastBool before it takes part in arithmetic.
type Bool interface {
	EncryptedBool()
}

// Capability is the encrypted integer engine. A Capability is bound to
// exactly one client key and one server key; ciphertexts from another
// Capability are rejected with ErrForeignCiphertext.
//
// Add, Sub, Mul and MulPlain wrap modulo 2^W. AddSat saturates at 2^W-1.
// All binary operations require operands of the same width.
type Capability interface {
	Encrypt(v uint64, w Width) (Int, error)
	Decrypt(x Int) (uint64, error)
	DecryptBool(b Bool) (bool, error)

	Add(a, b Int) (Int, error)
	AddSat(a, b Int) (Int, error)
	Sub(a, b Int) (Int, error)
	Mul(a, b Int) (Int, error)
	MulPlain(a Int, p uint64) (Int, error)

	Lt(a, b Int) (Bool, error)
	Le(a, b Int) (Bool, error)
	Gt(a, b Int) (Bool, error)
	Ge(a, b Int) (Bool, error)

	CastBool(b Bool, w Width) (Int, error)
	Cast(x Int, w Width) (Int, error)
}

// Backend creates sessions. Every benchmark run asks for a fresh session so
// no key material is shared between runs.
type Backend interface {
	Name() string
	NewSession() (Capability, error)
}

// SameWidth returns ErrWidthMismatch unless a and b have the same width.
func SameWidth(a, b Int) error {
	if a.Width() != b.Width() {
		return fmt.Errorf("%w: %s vs %s", ErrWidthMismatch, a.Width(), b.Width())
	}
	return nil
}
