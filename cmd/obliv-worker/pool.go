// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/luxfi/oblivious/bench"
	"github.com/luxfi/oblivious/internal/queue"
	"github.com/luxfi/oblivious/internal/storage"
)

// WorkerPool runs benchmark jobs concurrently. Every job gets its own
// session, so workers share nothing but the queue and the storage.
type WorkerPool struct {
	numWorkers   int
	queue        queue.Queue
	storage      storage.Storage
	log          *log.Logger
	wg           sync.WaitGroup
	cancel       context.CancelFunc
	stopTimeout  time.Duration
	running      atomic.Bool
	successCount atomic.Int64
	failureCount atomic.Int64
}

// NewWorkerPool creates a pool of n workers.
func NewWorkerPool(n int, q queue.Queue, s storage.Storage, logger *log.Logger) *WorkerPool {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &WorkerPool{
		numWorkers:  n,
		queue:       q,
		storage:     s,
		log:         logger,
		stopTimeout: 30 * time.Second,
	}
}

// Start starts the worker pool.
func (p *WorkerPool) Start(ctx context.Context) error {
	if p.running.Load() {
		return errors.New("pool already running")
	}

	ctx, p.cancel = context.WithCancel(ctx)
	p.running.Store(true)

	p.log.Printf("starting %d workers", p.numWorkers)

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}

	return nil
}

// Stop cancels the workers and waits for the jobs in flight. A running
// sweep entry cannot be interrupted, so Stop gives up after 30 seconds and
// leaves the pool marked stopped.
func (p *WorkerPool) Stop() error {
	if !p.running.Load() {
		return nil
	}

	p.log.Println("stopping worker pool")
	p.cancel()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	defer p.running.Store(false)
	select {
	case <-done:
		p.log.Println("worker pool stopped")
	case <-time.After(p.stopTimeout):
		return errors.New("shutdown timeout")
	}
	return nil
}

func (p *WorkerPool) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		job, err := p.queue.Pop(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			if errors.Is(err, queue.ErrConnectionLost) {
				p.log.Printf("worker %d: %v", id, err)
				return
			}
			p.log.Printf("worker %d: failed to pop job: %v", id, err)
			time.Sleep(time.Second)
			continue
		}

		p.processJob(ctx, id, job)
	}
}

func (p *WorkerPool) fail(ctx context.Context, job *queue.Job, err error) {
	job.Status = queue.StatusFailed
	job.Error = err.Error()
	if uerr := p.queue.Update(ctx, job); uerr != nil {
		p.log.Printf("job %s: failed to update status: %v", job.ID, uerr)
	}
	p.failureCount.Add(1)
}

func (p *WorkerPool) processJob(ctx context.Context, workerID int, job *queue.Job) {
	entry := bench.Entry{Algorithm: job.Algorithm, Size: job.Size, Width: job.Width}
	p.log.Printf("worker %d: job %s: %s", workerID, job.ID, entry)

	job.Status = queue.StatusProcessing
	if err := p.queue.Update(ctx, job); err != nil {
		p.log.Printf("worker %d: failed to update job status: %v", workerID, err)
	}

	backend, err := bench.NewBackend(job.Backend, job.Params)
	if err != nil {
		p.fail(ctx, job, err)
		return
	}
	cfg := bench.DefaultConfig(backend)
	cfg.Logger = p.log
	runner, err := bench.NewRunner(cfg)
	if err != nil {
		p.fail(ctx, job, err)
		return
	}

	result := runner.Run(entry)
	handle, err := storage.StoreJSON(ctx, p.storage, result)
	if err != nil {
		p.fail(ctx, job, fmt.Errorf("store report: %w", err))
		return
	}
	job.ReportHandle = string(handle)

	if result.Status != bench.StatusOK {
		p.fail(ctx, job, fmt.Errorf("%s: %s", entry, result.Marker()))
		return
	}

	job.Status = queue.StatusCompleted
	if err := p.queue.Update(ctx, job); err != nil {
		p.log.Printf("worker %d: failed to update job result: %v", workerID, err)
	}

	p.successCount.Add(1)
	p.log.Printf("worker %d: job %s %s in %s", workerID, job.ID, result.Marker(), result.Elapsed)
}

func (p *WorkerPool) writeMetrics(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintf(w, "# HELP oblivious_jobs_total Benchmark jobs processed\n")
	fmt.Fprintf(w, "# TYPE oblivious_jobs_total counter\n")
	fmt.Fprintf(w, "oblivious_jobs_total{status=\"success\"} %d\n", p.successCount.Load())
	fmt.Fprintf(w, "oblivious_jobs_total{status=\"failure\"} %d\n", p.failureCount.Load())
}
