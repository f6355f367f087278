// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package queue

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/oblivious"
	"github.com/luxfi/oblivious/cost"
)

func testQueue(t *testing.T, q Queue) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	first := NewJob(cost.ShortestPath, 16, oblivious.W8, "tfhe", "PN10QP27")
	second := NewJob(cost.BubbleSort, 4, oblivious.W6, "clear", "")
	require.NotEqual(t, first.ID, second.ID)

	require.NoError(t, q.Push(ctx, first))
	require.NoError(t, q.Push(ctx, second))
	require.Equal(t, StatusPending, first.Status)
	require.False(t, first.CreatedAt.IsZero())

	got, err := q.Pop(ctx)
	require.NoError(t, err)
	require.Equal(t, first.ID, got.ID)
	require.Equal(t, cost.ShortestPath, got.Algorithm)
	require.Equal(t, 16, got.Size)
	require.Equal(t, oblivious.W8, got.Width)
	require.Equal(t, "PN10QP27", got.Params)

	got.Status = StatusCompleted
	got.ReportHandle = "abc"
	require.NoError(t, q.Update(ctx, got))

	stored, err := q.Get(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, stored.Status)
	require.Equal(t, "abc", stored.ReportHandle)

	got, err = q.Pop(ctx)
	require.NoError(t, err)
	require.Equal(t, second.ID, got.ID)

	_, err = q.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrJobNotFound)
}

func TestMemoryQueue(t *testing.T) {
	q := NewMemoryQueue(8)
	defer q.Close()
	testQueue(t, q)
}

func TestMemoryQueuePopBlocks(t *testing.T) {
	q := NewMemoryQueue(1)
	defer q.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := q.Pop(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMemoryQueueFull(t *testing.T) {
	q := NewMemoryQueue(1)
	defer q.Close()
	ctx := context.Background()

	require.NoError(t, q.Push(ctx, NewJob(cost.DecisionTree, 2, oblivious.W8, "clear", "")))
	job := NewJob(cost.DecisionTree, 4, oblivious.W8, "clear", "")
	require.ErrorIs(t, q.Push(ctx, job), ErrQueueFull)
	_, err := q.Get(ctx, job.ID)
	require.ErrorIs(t, err, ErrJobNotFound)
}

func TestMemoryQueueClosed(t *testing.T) {
	q := NewMemoryQueue(1)
	require.NoError(t, q.Close())
	require.NoError(t, q.Close())

	_, err := q.Pop(context.Background())
	require.ErrorIs(t, err, ErrConnectionLost)
	err = q.Push(context.Background(), NewJob(cost.DecisionTree, 2, oblivious.W8, "clear", ""))
	require.ErrorIs(t, err, ErrConnectionLost)

	require.ErrorIs(t, q.Update(context.Background(), &Job{ID: "x"}), ErrJobNotFound)
}

func TestRedisQueue(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	q, err := NewRedisQueue(RedisConfig{Addr: addr}, "test-"+NewJob(0, 0, 0, "", "").ID)
	require.NoError(t, err)
	defer q.Close()
	testQueue(t, q)
}

func TestJobStatusString(t *testing.T) {
	require.Equal(t, "pending", StatusPending.String())
	require.Equal(t, "failed", StatusFailed.String())
	require.Equal(t, "status(9)", JobStatus(9).String())
}
