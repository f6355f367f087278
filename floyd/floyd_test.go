// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package floyd

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/oblivious"
	"github.com/luxfi/oblivious/tfhe"
)

func relax(t *testing.T, c oblivious.Capability, d [][]uint64, w oblivious.Width) [][]uint64 {
	t.Helper()
	m, err := Encrypt(c, d, w)
	require.NoError(t, err)
	_, err = Relax(oblivious.NewEvaluator(c), m)
	require.NoError(t, err)
	got, err := Decrypt(c, m)
	require.NoError(t, err)
	return got
}

func TestSampleGraph4(t *testing.T) {
	c, err := oblivious.ClearBackend{}.NewSession()
	require.NoError(t, err)

	got := relax(t, c, SampleGraph(4), oblivious.W8)
	require.Equal(t, uint64(0), got[0][0])
	require.LessOrEqual(t, got[0][3], uint64(3))

	want, err := RelaxPlain(SampleGraph(4), oblivious.W8)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("encrypted relaxation differs from oracle (-want +got):\n%s", diff)
	}
	require.Equal(t, [][]uint64{
		{0, 1, 2, 3},
		{1, 0, 1, 2},
		{2, 1, 0, 1},
		{3, 2, 1, 0},
	}, got)
}

func TestSampleGraph4TFHE(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping encrypted Floyd-Warshall in short mode")
	}
	c, err := tfhe.NewBackend(tfhe.PN10QP27).NewSession()
	require.NoError(t, err)

	d := [][]uint64{
		{0, 1, 9},
		{1, 0, 1},
		{9, 1, 0},
	}
	got := relax(t, c, d, oblivious.W6)
	want, err := RelaxPlain(d, oblivious.W6)
	require.NoError(t, err)
	require.Equal(t, want, got)
	require.Equal(t, uint64(2), got[0][2])
}

func TestMatchesOracleAcrossWidths(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	c, err := oblivious.ClearBackend{}.NewSession()
	require.NoError(t, err)

	for _, w := range []oblivious.Width{oblivious.W6, oblivious.W8, oblivious.W12, oblivious.W16} {
		for _, n := range []int{1, 2, 5, 8} {
			d := make([][]uint64, n)
			for i := range d {
				d[i] = make([]uint64, n)
				for j := range d[i] {
					if i != j {
						d[i][j] = uint64(rng.Intn(200))
					}
				}
			}
			want, err := RelaxPlain(d, w)
			require.NoError(t, err)
			require.Equal(t, want, relax(t, c, d, w), "%s n=%d", w, n)
		}
	}
}

func TestSaturation(t *testing.T) {
	c, err := oblivious.ClearBackend{}.NewSession()
	require.NoError(t, err)

	// 40 + 40 overflows 6 bits; saturating keeps the direct edge.
	d := [][]uint64{
		{0, 40, 63},
		{40, 0, 40},
		{63, 40, 0},
	}
	got := relax(t, c, d, oblivious.W6)
	require.Equal(t, uint64(63), got[0][2])

	want, err := RelaxPlain(d, oblivious.W6)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestRelaxIsOblivious(t *testing.T) {
	trace := func(d [][]uint64) []string {
		inner, err := oblivious.ClearBackend{}.NewSession()
		require.NoError(t, err)
		m, err := Encrypt(inner, d, oblivious.W8)
		require.NoError(t, err)
		counter := oblivious.NewCounter(inner)
		_, err = Relax(oblivious.NewEvaluator(counter), m)
		require.NoError(t, err)
		return counter.Trace()
	}

	dense := SampleGraph(5)
	sparse := [][]uint64{
		{0, 99, 99, 99, 99},
		{99, 0, 99, 99, 99},
		{99, 99, 0, 99, 99},
		{99, 99, 99, 0, 99},
		{99, 99, 99, 99, 0},
	}
	first, second := trace(dense), trace(sparse)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("operation trace depends on distances (-dense +sparse):\n%s", diff)
	}

	counts := map[string]int{}
	for _, op := range first {
		counts[op]++
	}
	require.Equal(t, 125, counts[oblivious.OpAddSat])
	require.Equal(t, 125, counts[oblivious.OpLt])
	require.Equal(t, 250, counts[oblivious.OpMul])
}

func TestRelaxNeverDecrypts(t *testing.T) {
	inner, err := oblivious.ClearBackend{}.NewSession()
	require.NoError(t, err)
	m, err := Encrypt(inner, SampleGraph(6), oblivious.W8)
	require.NoError(t, err)

	_, err = Relax(oblivious.NewEvaluator(oblivious.Seal(inner)), m)
	require.NoError(t, err)

	got, err := Decrypt(inner, m)
	require.NoError(t, err)
	want, err := RelaxPlain(SampleGraph(6), oblivious.W8)
	require.NoError(t, err)
	require.Equal(t, want, got)
	require.Equal(t, uint64(3), got[1][4], "path 1-2-3-4 beats the weight 5 shortcut")
}

func TestRelaxErrors(t *testing.T) {
	c, err := oblivious.ClearBackend{}.NewSession()
	require.NoError(t, err)
	ev := oblivious.NewEvaluator(c)

	m, err := Encrypt(c, [][]uint64{{0, 1}, {1}}, oblivious.W8)
	require.NoError(t, err)
	_, err = Relax(ev, m)
	require.ErrorIs(t, err, ErrNotSquare)

	a, err := c.Encrypt(0, oblivious.W8)
	require.NoError(t, err)
	b, err := c.Encrypt(0, oblivious.W16)
	require.NoError(t, err)
	_, err = Relax(ev, Matrix{{a, a}, {a, b}})
	require.ErrorIs(t, err, oblivious.ErrWidthMismatch)

	_, err = RelaxPlain([][]uint64{{0, 1}}, oblivious.W8)
	require.ErrorIs(t, err, ErrNotSquare)

	keyless, err := oblivious.ClearBackend{NoServerKey: true}.NewSession()
	require.NoError(t, err)
	m, err = Encrypt(keyless, SampleGraph(3), oblivious.W8)
	require.NoError(t, err)
	_, err = Relax(oblivious.NewEvaluator(keyless), m)
	require.ErrorIs(t, err, oblivious.ErrKeyNotSet)
}

func TestSampleGraph(t *testing.T) {
	d := SampleGraph(6)
	require.Equal(t, uint64(0), d[3][3])
	require.Equal(t, uint64(1), d[2][3])
	require.Equal(t, uint64(3), d[2][0])
	require.Equal(t, uint64(5), d[4][1])
	require.Equal(t, uint64(Infinity), d[0][5])

	small := SampleGraph(3)
	require.Equal(t, uint64(Infinity), small[0][2])
}
