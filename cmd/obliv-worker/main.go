// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

// Command obliv-worker runs queued benchmark sweep entries and stores their
// reports.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/luxfi/oblivious/internal/queue"
	"github.com/luxfi/oblivious/internal/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		numWorkers  = flag.Int("workers", 2, "number of worker goroutines")
		redisAddr   = flag.String("redis", "localhost:6379", "Redis address")
		redisDB     = flag.Int("redis-db", 0, "Redis database number")
		queueName   = flag.String("queue", "default", "queue name")
		storagePath = flag.String("storage", "/tmp/oblivious-reports", "report storage path; empty keeps reports in memory")
		storageMB   = flag.Int64("storage-mb", 64, "capacity of in-memory report storage in MB")
		metricsAddr = flag.String("metrics", ":9090", "metrics server address")
	)
	flag.Parse()

	logger := log.New(os.Stderr, "obliv-worker: ", log.LstdFlags)
	logger.Printf("starting")
	logger.Printf("  Workers: %d", *numWorkers)
	logger.Printf("  Redis: %s", *redisAddr)
	logger.Printf("  Storage: %s", *storagePath)
	logger.Printf("  Metrics: %s", *metricsAddr)

	// Queue.
	q, err := queue.NewRedisQueue(queue.RedisConfig{
		Addr: *redisAddr,
		DB:   *redisDB,
	}, *queueName)
	if err != nil {
		return fmt.Errorf("create queue: %w", err)
	}
	defer q.Close()

	// Storage.
	store, err := openStorage(*storagePath, *storageMB)
	if err != nil {
		return fmt.Errorf("create storage: %w", err)
	}
	defer store.Close()

	pool := NewWorkerPool(*numWorkers, q, store, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := pool.Start(ctx); err != nil {
		return fmt.Errorf("start workers: %w", err)
	}

	// Metrics server.
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", pool.writeMetrics)
	mux.HandleFunc("/reports/", reportHandler(store))

	server := &http.Server{
		Addr:    *metricsAddr,
		Handler: mux,
	}

	go func() {
		logger.Printf("metrics server starting on %s", *metricsAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Printf("metrics server error: %v", err)
		}
	}()

	// Wait for shutdown signal.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Printf("received signal: %s", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Printf("metrics server shutdown error: %v", err)
	}

	if err := pool.Stop(); err != nil {
		logger.Printf("worker pool shutdown error: %v", err)
	}

	logger.Println("shutdown complete")
	return nil
}

// openStorage returns file storage rooted at path, or memory storage when
// path is empty.
func openStorage(path string, capacityMB int64) (storage.Storage, error) {
	if path == "" {
		return storage.NewMemoryStorage(capacityMB), nil
	}
	s, err := storage.NewFileStorage(path)
	if err != nil {
		return nil, err
	}
	return s, nil
}
