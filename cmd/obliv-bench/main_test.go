// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/oblivious"
	"github.com/luxfi/oblivious/bench"
	"github.com/luxfi/oblivious/internal/queue"
)

func TestUsage(t *testing.T) {
	for _, args := range [][]string{nil, {"help"}, {"bogus"}, {"-backend", "clear", "nonsense"}} {
		var out bytes.Buffer
		require.NoError(t, run(context.Background(), args, &out), "%v", args)
		require.Contains(t, out.String(), "Usage: obliv-bench", "%v", args)
	}
}

func TestSecurity(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"security"}, &out))
	require.Contains(t, out.String(), "STD128")
	require.Contains(t, out.String(), "PN10QP27")
}

func TestUnknownBackend(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), []string{"-backend", "ckks", "real"}, &out)
	require.ErrorIs(t, err, bench.ErrUnknownBackend)
}

func TestAnalysisClear(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"-backend", "clear", "analysis"}, &out))
	s := out.String()
	require.Contains(t, s, "backend clear")
	require.Contains(t, s, "floyd-warshall")
	require.Contains(t, s, "32-bit")
}

func TestPushEntries(t *testing.T) {
	cfg := bench.DefaultConfig(oblivious.ClearBackend{})
	entries := cfg.Entries()
	q := queue.NewMemoryQueue(len(entries))
	defer q.Close()

	var out bytes.Buffer
	opts := options{backend: "clear", params: "PN10QP27"}
	require.NoError(t, pushEntries(context.Background(), q, cfg, opts, &out))
	require.Len(t, strings.Split(strings.TrimSpace(out.String()), "\n"), len(entries))

	job, err := q.Pop(context.Background())
	require.NoError(t, err)
	require.Equal(t, entries[0].Algorithm, job.Algorithm)
	require.Equal(t, entries[0].Size, job.Size)
	require.Equal(t, entries[0].Width, job.Width)
	require.Equal(t, "clear", job.Backend)
}
