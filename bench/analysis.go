// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package bench

import (
	"context"
	"fmt"

	"github.com/luxfi/oblivious"
	"github.com/luxfi/oblivious/cost"
)

// Analysis is the cost projection of every algorithm at one width.
type Analysis struct {
	Calibration cost.Calibration
	Projections map[cost.Algorithm][]cost.Projection
}

// Analyze calibrates unit times at every analysis width and projects each
// algorithm over its sweep. Unsupported widths and capability errors are
// fatal: a projection from a failed calibration would be meaningless.
func (r *Runner) Analyze(ctx context.Context) ([]Analysis, error) {
	var out []Analysis
	for _, w := range r.cfg.AnalysisWidths {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		a, err := r.analyzeWidth(w)
		if err != nil {
			return out, fmt.Errorf("analyze %s: %w", w, err)
		}
		r.log.Printf("%s: cp_mul %s, mul_cp %s", w, a.Calibration.Units.CpMul, a.Calibration.Units.MulCp)
		out = append(out, a)
	}
	return out, nil
}

func (r *Runner) analyzeWidth(w oblivious.Width) (Analysis, error) {
	if err := w.Validate(); err != nil {
		return Analysis{}, err
	}
	session, err := r.cfg.Backend.NewSession()
	if err != nil {
		return Analysis{}, fmt.Errorf("new session: %w", err)
	}
	cal, err := cost.Calibrate(session, w, r.cfg.Samples)
	if err != nil {
		return Analysis{}, err
	}

	a := Analysis{
		Calibration: cal,
		Projections: make(map[cost.Algorithm][]cost.Projection, len(cost.Algorithms)),
	}
	for _, alg := range cost.Algorithms {
		p, err := cost.Project(alg, r.cfg.Sizes(alg), cal.Units)
		if err != nil {
			return Analysis{}, err
		}
		a.Projections[alg] = p
	}
	return a, nil
}
