// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package bench

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/oblivious"
	"github.com/luxfi/oblivious/cost"
	"github.com/luxfi/oblivious/query"
	"github.com/luxfi/oblivious/tfhe"
	"github.com/luxfi/oblivious/workload"
)

// offByOne decrypts every value as one more than its plaintext.
type offByOne struct {
	oblivious.Capability
}

func (c offByOne) Decrypt(x oblivious.Int) (uint64, error) {
	v, err := c.Capability.Decrypt(x)
	return v + 1, err
}

type offByOneBackend struct{}

func (offByOneBackend) Name() string { return "off-by-one" }

func (offByOneBackend) NewSession() (oblivious.Capability, error) {
	c, err := oblivious.ClearBackend{}.NewSession()
	return offByOne{c}, err
}

type brokenBackend struct{}

func (brokenBackend) Name() string { return "broken" }

func (brokenBackend) NewSession() (oblivious.Capability, error) {
	return nil, errors.New("keygen failed")
}

func smallConfig(b oblivious.Backend) Config {
	cfg := DefaultConfig(b)
	cfg.Widths = []oblivious.Width{oblivious.W8, oblivious.W16}
	cfg.AnalysisWidths = []oblivious.Width{oblivious.W6, oblivious.W8}
	cfg.TreeDepths = []int{2, 4}
	cfg.GraphSizes = []int{3, 5}
	cfg.SortSizes = []int{0, 4}
	cfg.Rows = []int{8, 20}
	cfg.Samples = 2
	return cfg
}

func TestSweepClear(t *testing.T) {
	var logs bytes.Buffer
	cfg := smallConfig(oblivious.ClearBackend{})
	cfg.Logger = log.New(&logs, "", 0)
	r, err := NewRunner(cfg)
	require.NoError(t, err)

	entries := cfg.Entries()
	require.Len(t, entries, 4*2*2)

	results, err := r.Sweep(context.Background(), entries)
	require.NoError(t, err)
	require.Len(t, results, len(entries))

	ids := map[string]bool{}
	for i, res := range results {
		require.Equal(t, StatusOK, res.Status, "%s: %s", entries[i], res.Error)
		require.Equal(t, entries[i], res.Entry())
		require.Equal(t, "clear", res.Backend)
		require.Equal(t, "✓", res.Marker())
		require.NotEmpty(t, res.RunID)
		ids[res.RunID] = true

		a, err := cost.Analyze(res.Algorithm, res.Size)
		require.NoError(t, err)
		require.Equal(t, a.Count, res.Predicted)
	}
	require.Len(t, ids, len(results), "run IDs are unique")
	require.Contains(t, logs.String(), "floyd-warshall nodes=5 16-bit")
}

func TestSweepMarksFailures(t *testing.T) {
	r, err := NewRunner(smallConfig(oblivious.ClearBackend{NoServerKey: true}))
	require.NoError(t, err)

	entries := r.Config().Entries(cost.BubbleSort, cost.PredicateFilter)
	results, err := r.Sweep(context.Background(), entries)
	require.NoError(t, err)
	require.Len(t, results, len(entries))
	for _, res := range results {
		if res.Algorithm == cost.BubbleSort && res.Size == 0 {
			require.Equal(t, StatusOK, res.Status)
			continue
		}
		require.Equal(t, StatusFailed, res.Status)
		require.Contains(t, res.Error, oblivious.ErrKeyNotSet.Error())
		require.True(t, strings.HasPrefix(res.Marker(), "✗ "))
	}

	res := (&Runner{cfg: smallConfig(brokenBackend{}), log: log.Default()}).Run(Entry{Algorithm: cost.ShortestPath, Size: 3, Width: oblivious.W8})
	require.Equal(t, StatusFailed, res.Status)
	require.Contains(t, res.Marker(), "keygen failed")
}

func TestSweepMarksWrongResults(t *testing.T) {
	r, err := NewRunner(smallConfig(offByOneBackend{}))
	require.NoError(t, err)

	for _, alg := range cost.Algorithms {
		res := r.Run(Entry{Algorithm: alg, Size: r.Config().Sizes(alg)[1], Width: oblivious.W8})
		assert.Equal(t, StatusWrong, res.Status, "%s", alg)
		assert.Equal(t, "✗ Wrong", res.Marker())
	}
}

func TestFilterAnswersUnwrappedQuery(t *testing.T) {
	r, err := NewRunner(smallConfig(oblivious.ClearBackend{}))
	require.NoError(t, err)

	want := query.FilterPlain(query.SampleDatabase(64), query.DefaultQuery, query.WorkWidth)
	require.Equal(t, []int{7, 18, 34, 54}, want)
	for _, w := range []oblivious.Width{oblivious.W6, oblivious.W8, oblivious.W12, oblivious.W16, oblivious.W24} {
		res := r.Run(Entry{Algorithm: cost.PredicateFilter, Size: 64, Width: w})
		require.Equal(t, StatusOK, res.Status, "%s: %s", w, res.Error)
		require.Equal(t, want, res.Matches, "%s", w)
		require.Equal(t, w, res.Width)
	}
}

func TestSweepCancelled(t *testing.T) {
	r, err := NewRunner(smallConfig(oblivious.ClearBackend{}))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results, err := r.Sweep(ctx, r.Config().Entries())
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, results)
}

func TestRunTFHE(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping encrypted sweep entry in short mode")
	}
	cfg := smallConfig(tfhe.NewBackend(tfhe.PN10QP27))
	r, err := NewRunner(cfg)
	require.NoError(t, err)

	res := r.Run(Entry{Algorithm: cost.BubbleSort, Size: 2, Width: oblivious.W6})
	require.Equal(t, StatusOK, res.Status, res.Error)
	require.Positive(t, res.Elapsed)
}

func TestConfigValidate(t *testing.T) {
	cfg := smallConfig(oblivious.ClearBackend{})
	require.NoError(t, cfg.Validate())

	bad := cfg
	bad.Widths = []oblivious.Width{oblivious.Width(7)}
	require.ErrorIs(t, bad.Validate(), oblivious.ErrUnsupportedWidth)

	bad = cfg
	bad.GraphSizes = []int{-1}
	require.ErrorIs(t, bad.Validate(), cost.ErrInvalidSize)

	bad = cfg
	bad.Backend = nil
	require.ErrorIs(t, bad.Validate(), ErrUnknownBackend)

	_, err := NewRunner(bad)
	require.Error(t, err)
}

func TestNewBackend(t *testing.T) {
	b, err := NewBackend("clear", "")
	require.NoError(t, err)
	require.Equal(t, "clear", b.Name())

	b, err = NewBackend("tfhe", "PN10QP27")
	require.NoError(t, err)
	require.Equal(t, "tfhe", b.Name())

	b, err = NewBackend("tfhe", "STD192_LMKCDEY")
	require.NoError(t, err)
	require.Equal(t, "tfhe", b.Name())

	_, err = NewBackend("tfhe", "PN1")
	require.ErrorIs(t, err, tfhe.ErrUnknownParameters)
	_, err = NewBackend("ckks", "")
	require.ErrorIs(t, err, ErrUnknownBackend)
}

func TestWorkloads(t *testing.T) {
	cfg := smallConfig(oblivious.ClearBackend{})
	cfg.Widths = []oblivious.Width{oblivious.W8, oblivious.W24}
	r, err := NewRunner(cfg)
	require.NoError(t, err)

	results, err := r.Workloads(context.Background())
	require.NoError(t, err)
	require.Len(t, results, len(workload.Kinds))
	for _, res := range results {
		require.Equal(t, oblivious.W8, res.Width)
		require.Equal(t, StatusOK, res.Status, res.Error)
	}

	var buf bytes.Buffer
	require.NoError(t, WriteWorkloads(&buf, results))
	require.Contains(t, buf.String(), "(a <= b) * c")
}

func TestAnalyze(t *testing.T) {
	cfg := smallConfig(oblivious.ClearBackend{})
	r, err := NewRunner(cfg)
	require.NoError(t, err)

	analyses, err := r.Analyze(context.Background())
	require.NoError(t, err)
	require.Len(t, analyses, len(cfg.AnalysisWidths))
	for i, a := range analyses {
		require.Equal(t, cfg.AnalysisWidths[i], a.Calibration.Width)
		for _, alg := range cost.Algorithms {
			require.Len(t, a.Projections[alg], len(cfg.Sizes(alg)))
		}
	}

	var buf bytes.Buffer
	require.NoError(t, WriteAnalysis(&buf, analyses))
	out := buf.String()
	require.Contains(t, out, "decision-tree")
	require.Contains(t, out, "6-bit")

	keyless, err := NewRunner(smallConfig(oblivious.ClearBackend{NoServerKey: true}))
	require.NoError(t, err)
	_, err = keyless.Analyze(context.Background())
	require.ErrorIs(t, err, oblivious.ErrKeyNotSet)
}

func TestWriteResults(t *testing.T) {
	results := []Result{
		{Algorithm: cost.BubbleSort, Size: 4, Width: oblivious.W8, Status: StatusOK},
		{Algorithm: cost.BubbleSort, Size: 8, Width: oblivious.W8, Status: StatusWrong},
		{Algorithm: cost.PredicateFilter, Size: 8, Width: oblivious.W8, Status: StatusFailed, Error: "key not set"},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteResults(&buf, results))
	out := buf.String()
	require.Contains(t, out, "bubble-sort")
	require.Contains(t, out, "elements")
	require.Contains(t, out, "predicate-filter")
	require.Contains(t, out, "✓")
	require.Contains(t, out, "✗ Wrong")
	require.Contains(t, out, "✗ key not set")
}

func TestResultJSON(t *testing.T) {
	in := Result{RunID: "r", Backend: "clear", Algorithm: cost.DecisionTree, Size: 4, Width: oblivious.W12, Status: StatusOK}
	data, err := json.Marshal(in)
	require.NoError(t, err)
	require.Contains(t, string(data), `"algorithm":"decision-tree"`)

	var out Result
	require.NoError(t, json.Unmarshal(data, &out))
	require.Equal(t, in, out)
}
