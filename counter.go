// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package oblivious

import (
	"sync"
)

// Operation names recorded by Counter.
const (
	OpEncrypt     = "encrypt"
	OpDecrypt     = "decrypt"
	OpDecryptBool = "decrypt_bool"
	OpAdd         = "add"
	OpAddSat      = "add_sat"
	OpSub         = "sub"
	OpMul         = "mul"
	OpMulPlain    = "mul_plain"
	OpLt          = "lt"
	OpLe          = "le"
	OpGt          = "gt"
	OpGe          = "ge"
	OpCastBool    = "cast_bool"
	OpCast        = "cast"
)

// Counter wraps a Capability and records every call made through it. Two
// runs of an oblivious algorithm over inputs of the same public size must
// produce identical traces.
type Counter struct {
	Capability

	mu     sync.Mutex
	trace  []string
	counts map[string]int
}

// NewCounter wraps c.
func NewCounter(c Capability) *Counter {
	return &Counter{
		Capability: c,
		counts:     make(map[string]int),
	}
}

func (c *Counter) record(op string) {
	c.mu.Lock()
	c.trace = append(c.trace, op)
	c.counts[op]++
	c.mu.Unlock()
}

// Trace returns the recorded operation sequence.
func (c *Counter) Trace() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.trace...)
}

// Counts returns the number of calls per operation.
func (c *Counter) Counts() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int, len(c.counts))
	for k, v := range c.counts {
		out[k] = v
	}
	return out
}

// Count returns the number of calls to op.
func (c *Counter) Count(op string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[op]
}

// Total returns the number of recorded calls.
func (c *Counter) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.trace)
}

// Reset clears the trace.
func (c *Counter) Reset() {
	c.mu.Lock()
	c.trace = nil
	c.counts = make(map[string]int)
	c.mu.Unlock()
}

func (c *Counter) Encrypt(v uint64, w Width) (Int, error) {
	c.record(OpEncrypt)
	return c.Capability.Encrypt(v, w)
}

func (c *Counter) Decrypt(x Int) (uint64, error) {
	c.record(OpDecrypt)
	return c.Capability.Decrypt(x)
}

func (c *Counter) DecryptBool(b Bool) (bool, error) {
	c.record(OpDecryptBool)
	return c.Capability.DecryptBool(b)
}

func (c *Counter) Add(a, b Int) (Int, error) {
	c.record(OpAdd)
	return c.Capability.Add(a, b)
}

func (c *Counter) AddSat(a, b Int) (Int, error) {
	c.record(OpAddSat)
	return c.Capability.AddSat(a, b)
}

func (c *Counter) Sub(a, b Int) (Int, error) {
	c.record(OpSub)
	return c.Capability.Sub(a, b)
}

func (c *Counter) Mul(a, b Int) (Int, error) {
	c.record(OpMul)
	return c.Capability.Mul(a, b)
}

func (c *Counter) MulPlain(a Int, p uint64) (Int, error) {
	c.record(OpMulPlain)
	return c.Capability.MulPlain(a, p)
}

func (c *Counter) Lt(a, b Int) (Bool, error) {
	c.record(OpLt)
	return c.Capability.Lt(a, b)
}

func (c *Counter) Le(a, b Int) (Bool, error) {
	c.record(OpLe)
	return c.Capability.Le(a, b)
}

func (c *Counter) Gt(a, b Int) (Bool, error) {
	c.record(OpGt)
	return c.Capability.Gt(a, b)
}

func (c *Counter) Ge(a, b Int) (Bool, error) {
	c.record(OpGe)
	return c.Capability.Ge(a, b)
}

func (c *Counter) CastBool(b Bool, w Width) (Int, error) {
	c.record(OpCastBool)
	return c.Capability.CastBool(b, w)
}

func (c *Counter) Cast(x Int, w Width) (Int, error) {
	c.record(OpCast)
	return c.Capability.Cast(x, w)
}

// Sealed wraps a Capability and refuses every decryption. Algorithms that
// must not decrypt mid-computation are run against it in tests.
type Sealed struct {
	Capability
}

// Seal wraps c.
func Seal(c Capability) Sealed {
	return Sealed{Capability: c}
}

func (Sealed) Decrypt(Int) (uint64, error) {
	return 0, ErrDecryptForbidden
}

func (Sealed) DecryptBool(Bool) (bool, error) {
	return false, ErrDecryptForbidden
}
