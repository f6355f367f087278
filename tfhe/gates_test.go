// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package tfhe

import (
	"errors"
	"testing"
)

type gateFixture struct {
	params Parameters
	enc    *Encryptor
	dec    *Decryptor
	eval   *Evaluator
}

func newGateFixture(t testing.TB) *gateFixture {
	t.Helper()
	params, err := NewParametersFromLiteral(PN10QP27)
	if err != nil {
		t.Fatalf("NewParametersFromLiteral: %v", err)
	}

	kgen := NewKeyGenerator(params)
	sk := kgen.GenSecretKey()
	bsk := kgen.GenBootstrapKey(sk)

	return &gateFixture{
		params: params,
		enc:    NewEncryptor(params, sk),
		dec:    NewDecryptor(params, sk),
		eval:   NewEvaluator(params, bsk),
	}
}

func (f *gateFixture) encrypt(t testing.TB, v bool) *Ciphertext {
	t.Helper()
	ct, err := f.enc.Encrypt(v)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	return ct
}

func TestGates(t *testing.T) {
	f := newGateFixture(t)

	t.Run("EncryptDecrypt", func(t *testing.T) {
		if f.dec.Decrypt(f.encrypt(t, false)) {
			t.Error("expected false, got true")
		}
		if !f.dec.Decrypt(f.encrypt(t, true)) {
			t.Error("expected true, got false")
		}
	})

	t.Run("NOT", func(t *testing.T) {
		if !f.dec.Decrypt(f.eval.NOT(f.encrypt(t, false))) {
			t.Error("NOT(0) should be 1")
		}
		if f.dec.Decrypt(f.eval.NOT(f.encrypt(t, true))) {
			t.Error("NOT(1) should be 0")
		}
	})

	t.Run("Constant", func(t *testing.T) {
		if !f.dec.Decrypt(f.eval.constant(true)) {
			t.Error("constant(true) decrypted to false")
		}
		if f.dec.Decrypt(f.eval.constant(false)) {
			t.Error("constant(false) decrypted to true")
		}
	})

	gates := []struct {
		name string
		gate func(a, b *Ciphertext) (*Ciphertext, error)
		want func(a, b bool) bool
	}{
		{"AND", f.eval.AND, func(a, b bool) bool { return a && b }},
		{"OR", f.eval.OR, func(a, b bool) bool { return a || b }},
		{"XOR", f.eval.XOR, func(a, b bool) bool { return a != b }},
		{"XNOR", f.eval.XNOR, func(a, b bool) bool { return a == b }},
	}

	for _, g := range gates {
		t.Run(g.name, func(t *testing.T) {
			for _, a := range []bool{false, true} {
				for _, b := range []bool{false, true} {
					ct, err := g.gate(f.encrypt(t, a), f.encrypt(t, b))
					if err != nil {
						t.Fatalf("%s(%v, %v): %v", g.name, a, b, err)
					}
					if got := f.dec.Decrypt(ct); got != g.want(a, b) {
						t.Errorf("%s(%v, %v) = %v, want %v", g.name, a, b, got, g.want(a, b))
					}
				}
			}
		})
	}

	t.Run("BootstrapCount", func(t *testing.T) {
		before := f.eval.Bootstraps()
		if _, err := f.eval.AND(f.encrypt(t, true), f.encrypt(t, true)); err != nil {
			t.Fatalf("AND: %v", err)
		}
		f.eval.NOT(f.encrypt(t, true))
		if got := f.eval.Bootstraps() - before; got != 1 {
			t.Errorf("bootstraps = %d, want 1", got)
		}
	})
}

func TestLiteralByName(t *testing.T) {
	for _, name := range LiteralNames() {
		if _, err := LiteralByName(name); err != nil {
			t.Errorf("LiteralByName(%q): %v", name, err)
		}
	}
	if _, err := LiteralByName("PN99"); err == nil {
		t.Error("expected error for unknown parameter set")
	}
}

func TestResolveParameters(t *testing.T) {
	testCases := []struct {
		name string
		want ParametersLiteral
	}{
		{"PN10QP27", PN10QP27},
		{"PN11QP54", PN11QP54},
		{"STD128_LMKCDEY", PN10QP27},
		{"STD128Q_LMKCDEY", PN10QP27},
		{"STD192_LMKCDEY", PN11QP54},
		{"STD256_LMKCDEY", PN11QP54},
	}
	for _, tc := range testCases {
		got, err := ResolveParameters(tc.name)
		if err != nil {
			t.Fatalf("ResolveParameters(%q): %v", tc.name, err)
		}
		if got != tc.want {
			t.Errorf("ResolveParameters(%q) = %+v, want %+v", tc.name, got, tc.want)
		}
	}
	if _, err := ResolveParameters("STD512"); !errors.Is(err, ErrUnknownParameters) {
		t.Errorf("ResolveParameters(STD512) = %v, want ErrUnknownParameters", err)
	}
}

func TestSecurityParams(t *testing.T) {
	for _, sp := range AllSecurityParams() {
		lit, err := sp.Literal()
		if err != nil {
			t.Fatalf("%s: %v", sp.Name, err)
		}
		if 1<<lit.LogN != sp.RingDim {
			t.Errorf("%s: engine ring dimension %d, want %d", sp.Name, 1<<lit.LogN, sp.RingDim)
		}
		got, ok := GetSecurityParams(sp.Name)
		if !ok || got.Name != sp.Name {
			t.Errorf("GetSecurityParams(%q) failed", sp.Name)
		}
	}
	if _, ok := GetSecurityParams("nope"); ok {
		t.Error("expected lookup failure")
	}
}

func BenchmarkGates(b *testing.B) {
	f := newGateFixture(b)
	ct1 := f.encrypt(b, true)
	ct2 := f.encrypt(b, false)

	b.Run("AND", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = f.eval.AND(ct1, ct2)
		}
	})
	b.Run("XOR", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = f.eval.XOR(ct1, ct2)
		}
	})
}
