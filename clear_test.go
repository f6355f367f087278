// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package oblivious

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newClear(t *testing.T) Capability {
	t.Helper()
	c, err := ClearBackend{}.NewSession()
	require.NoError(t, err)
	return c
}

func TestClearRoundTrip(t *testing.T) {
	c := newClear(t)
	for _, w := range Widths {
		for _, v := range []uint64{0, 1, w.MaxValue() / 2, w.MaxValue()} {
			x, err := c.Encrypt(v, w)
			require.NoError(t, err)
			require.Equal(t, w, x.Width())
			got, err := c.Decrypt(x)
			require.NoError(t, err)
			require.Equal(t, v, got, "%s %d", w, v)
		}
	}
}

func TestClearEncodingError(t *testing.T) {
	c := newClear(t)
	_, err := c.Encrypt(64, W6)
	require.ErrorIs(t, err, ErrEncoding)
	_, err = c.Encrypt(1, Width(7))
	require.ErrorIs(t, err, ErrUnsupportedWidth)
}

func TestClearArithmetic(t *testing.T) {
	c := newClear(t)
	enc := func(v uint64) Int {
		x, err := c.Encrypt(v, W8)
		require.NoError(t, err)
		return x
	}
	dec := func(x Int, err error) uint64 {
		require.NoError(t, err)
		v, err := c.Decrypt(x)
		require.NoError(t, err)
		return v
	}

	require.Equal(t, uint64(44), dec(c.Add(enc(200), enc(100))))
	require.Equal(t, uint64(255), dec(c.AddSat(enc(200), enc(100))))
	require.Equal(t, uint64(251), dec(c.Sub(enc(5), enc(10))))
	require.Equal(t, uint64(200), dec(c.Mul(enc(20), enc(10))))
	require.Equal(t, uint64(44), dec(c.Mul(enc(30), enc(10))))
	require.Equal(t, uint64(90), dec(c.MulPlain(enc(30), 3)))

	wide, err := c.Cast(enc(200), W16)
	require.NoError(t, err)
	require.Equal(t, W16, wide.Width())
	require.Equal(t, uint64(200), dec(wide, nil))

	narrow, err := c.Cast(enc(200), W6)
	require.NoError(t, err)
	require.Equal(t, uint64(200&63), dec(narrow, nil))
}

func TestClearComparisons(t *testing.T) {
	c := newClear(t)
	a, err := c.Encrypt(3, W6)
	require.NoError(t, err)
	b, err := c.Encrypt(5, W6)
	require.NoError(t, err)

	testCases := []struct {
		name string
		op   func(Int, Int) (Bool, error)
		want bool
	}{
		{"lt", c.Lt, true},
		{"le", c.Le, true},
		{"gt", c.Gt, false},
		{"ge", c.Ge, false},
	}
	for _, tc := range testCases {
		r, err := tc.op(a, b)
		require.NoError(t, err, tc.name)
		got, err := c.DecryptBool(r)
		require.NoError(t, err, tc.name)
		require.Equal(t, tc.want, got, tc.name)

		asInt, err := c.CastBool(r, W12)
		require.NoError(t, err)
		v, err := c.Decrypt(asInt)
		require.NoError(t, err)
		if tc.want {
			require.Equal(t, uint64(1), v)
		} else {
			require.Equal(t, uint64(0), v)
		}
	}
}

func TestClearErrors(t *testing.T) {
	c := newClear(t)
	other := newClear(t)

	a, err := c.Encrypt(1, W6)
	require.NoError(t, err)
	b, err := c.Encrypt(1, W8)
	require.NoError(t, err)
	foreign, err := other.Encrypt(1, W6)
	require.NoError(t, err)

	_, err = c.Add(a, b)
	require.ErrorIs(t, err, ErrWidthMismatch)

	_, err = c.Add(a, foreign)
	require.ErrorIs(t, err, ErrForeignCiphertext)

	_, err = c.Decrypt(foreign)
	require.ErrorIs(t, err, ErrForeignCiphertext)

	keyless, err := ClearBackend{NoServerKey: true}.NewSession()
	require.NoError(t, err)
	x, err := keyless.Encrypt(1, W6)
	require.NoError(t, err)
	_, err = keyless.Add(x, x)
	require.ErrorIs(t, err, ErrKeyNotSet)
	_, err = keyless.Lt(x, x)
	require.ErrorIs(t, err, ErrKeyNotSet)
	v, err := keyless.Decrypt(x)
	require.NoError(t, err)
	require.Equal(t, uint64(1), v)
}
