// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package queue

import (
	"context"
	"sync"
	"time"
)

// MemoryQueue implements Queue in process. Jobs are popped in push order.
type MemoryQueue struct {
	mu     sync.RWMutex
	jobs   map[string]Job
	ids    chan string
	closed chan struct{}
	once   sync.Once
}

// NewMemoryQueue creates a queue holding at most capacity pending jobs.
func NewMemoryQueue(capacity int) *MemoryQueue {
	return &MemoryQueue{
		jobs:   make(map[string]Job),
		ids:    make(chan string, capacity),
		closed: make(chan struct{}),
	}
}

func (q *MemoryQueue) Push(ctx context.Context, job *Job) error {
	select {
	case <-q.closed:
		return ErrConnectionLost
	default:
	}
	stampPending(job)

	q.mu.Lock()
	q.jobs[job.ID] = *job
	q.mu.Unlock()

	select {
	case q.ids <- job.ID:
		return nil
	default:
		q.mu.Lock()
		delete(q.jobs, job.ID)
		q.mu.Unlock()
		return ErrQueueFull
	}
}

func (q *MemoryQueue) Pop(ctx context.Context) (*Job, error) {
	select {
	case id := <-q.ids:
		return q.Get(ctx, id)
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-q.closed:
		return nil, ErrConnectionLost
	}
}

func (q *MemoryQueue) Update(ctx context.Context, job *Job) error {
	job.UpdatedAt = time.Now()

	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.jobs[job.ID]; !ok {
		return ErrJobNotFound
	}
	q.jobs[job.ID] = *job
	return nil
}

func (q *MemoryQueue) Get(ctx context.Context, id string) (*Job, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	job, ok := q.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	return &job, nil
}

func (q *MemoryQueue) Close() error {
	q.once.Do(func() { close(q.closed) })
	return nil
}
