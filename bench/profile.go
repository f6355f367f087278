// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package bench

import (
	"fmt"
	"log"
	"os"
	"runtime"
	"runtime/pprof"
	"time"
)

// ProfileConfig holds profiling configuration. Empty paths disable the
// corresponding profile.
type ProfileConfig struct {
	CPUProfile string
	MemProfile string
}

// Profiler writes pprof profiles around a benchmark run.
type Profiler struct {
	config    ProfileConfig
	log       *log.Logger
	cpuFile   *os.File
	startTime time.Time
}

// NewProfiler creates a profiler that reports to logger.
func NewProfiler(config ProfileConfig, logger *log.Logger) *Profiler {
	if logger == nil {
		logger = log.Default()
	}
	return &Profiler{config: config, log: logger}
}

// Start begins CPU profiling if configured.
func (p *Profiler) Start() error {
	p.startTime = time.Now()

	if p.config.CPUProfile != "" {
		f, err := os.Create(p.config.CPUProfile)
		if err != nil {
			return fmt.Errorf("create CPU profile: %w", err)
		}
		p.cpuFile = f
		if err := pprof.StartCPUProfile(f); err != nil {
			f.Close()
			p.cpuFile = nil
			return fmt.Errorf("start CPU profile: %w", err)
		}
	}

	return nil
}

// Stop ends profiling and writes the heap profile.
func (p *Profiler) Stop() error {
	p.log.Printf("profiled for %v", time.Since(p.startTime))

	if p.cpuFile != nil {
		pprof.StopCPUProfile()
		if err := p.cpuFile.Close(); err != nil {
			return fmt.Errorf("close CPU profile: %w", err)
		}
		p.cpuFile = nil
		p.log.Printf("CPU profile written to %s", p.config.CPUProfile)
	}

	if p.config.MemProfile != "" {
		f, err := os.Create(p.config.MemProfile)
		if err != nil {
			return fmt.Errorf("create memory profile: %w", err)
		}
		defer f.Close()
		runtime.GC() // Get up-to-date statistics
		if err := pprof.WriteHeapProfile(f); err != nil {
			return fmt.Errorf("write memory profile: %w", err)
		}
		p.log.Printf("memory profile written to %s", p.config.MemProfile)
	}

	return nil
}
