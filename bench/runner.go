// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package bench

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/luxfi/oblivious"
	"github.com/luxfi/oblivious/cost"
	"github.com/luxfi/oblivious/floyd"
	"github.com/luxfi/oblivious/query"
	"github.com/luxfi/oblivious/sorting"
	"github.com/luxfi/oblivious/tree"
	"github.com/luxfi/oblivious/workload"
)

// errWrong marks a run whose decrypted output differs from the oracle.
var errWrong = errors.New("result differs from plaintext oracle")

// Status is the outcome of one run.
type Status string

const (
	StatusOK     Status = "ok"
	StatusWrong  Status = "wrong"
	StatusFailed Status = "failed"
)

// Result is the report of one sweep entry.
type Result struct {
	RunID     string          `json:"run_id"`
	Backend   string          `json:"backend"`
	Algorithm cost.Algorithm  `json:"algorithm"`
	Size      int             `json:"size"`
	Width     oblivious.Width `json:"width"`

	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`

	// Elapsed covers the encrypted evaluation only; key generation,
	// encryption and verification are excluded.
	Elapsed time.Duration `json:"elapsed"`
	// Operations is the number of capability calls the algorithm issued.
	Operations int                `json:"operations"`
	Predicted  cost.OperationCount `json:"predicted"`

	// Matches holds the record IDs selected by a predicate filter run.
	Matches []int `json:"matches,omitempty"`
}

// Entry returns the sweep entry r reports on.
func (r Result) Entry() Entry {
	return Entry{Algorithm: r.Algorithm, Size: r.Size, Width: r.Width}
}

// Marker is the status column of a report row.
func (r Result) Marker() string {
	switch r.Status {
	case StatusOK:
		return "✓"
	case StatusWrong:
		return "✗ Wrong"
	}
	return "✗ " + r.Error
}

// Runner executes sweep entries.
type Runner struct {
	cfg Config
	log *log.Logger
}

// NewRunner validates cfg and returns a Runner.
func NewRunner(cfg Config) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{cfg: cfg, log: logger}, nil
}

// Config returns the runner configuration.
func (r *Runner) Config() Config {
	return r.cfg
}

// Sweep runs entries in order and returns one result each. A failed entry
// does not stop the sweep; cancelling ctx stops it before the next entry.
func (r *Runner) Sweep(ctx context.Context, entries []Entry) ([]Result, error) {
	results := make([]Result, 0, len(entries))
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		r.log.Printf("running %s", e)
		res := r.Run(e)
		r.log.Printf("%s: %s in %s", e, res.Marker(), res.Elapsed)
		results = append(results, res)
	}
	return results, nil
}

// Run executes one entry in a fresh session.
func (r *Runner) Run(e Entry) Result {
	res := Result{
		RunID:     uuid.NewString(),
		Backend:   r.cfg.Backend.Name(),
		Algorithm: e.Algorithm,
		Size:      e.Size,
		Width:     e.Width,
	}
	if a, err := cost.Analyze(e.Algorithm, e.Size); err == nil {
		res.Predicted = a.Count
	}

	err := r.execute(e, &res)
	switch {
	case err == nil:
		res.Status = StatusOK
	case errors.Is(err, errWrong):
		res.Status = StatusWrong
	default:
		res.Status = StatusFailed
		res.Error = err.Error()
	}
	return res
}

func (r *Runner) execute(e Entry, res *Result) error {
	if err := e.Width.Validate(); err != nil {
		return err
	}
	session, err := r.cfg.Backend.NewSession()
	if err != nil {
		return fmt.Errorf("new session: %w", err)
	}
	counter := oblivious.NewCounter(session)
	ev := oblivious.NewEvaluator(counter)

	var elapsed time.Duration
	switch e.Algorithm {
	case cost.DecisionTree:
		elapsed, err = r.runTree(session, ev, e)
	case cost.ShortestPath:
		elapsed, err = runFloyd(session, ev, e)
	case cost.BubbleSort:
		elapsed, err = runSort(session, ev, e)
	case cost.PredicateFilter:
		res.Matches, elapsed, err = runFilter(session, ev, e)
	default:
		err = fmt.Errorf("%w: %s", cost.ErrUnknownAlgorithm, e.Algorithm)
	}
	res.Elapsed = elapsed
	res.Operations = counter.Total()
	return err
}

func (r *Runner) runTree(c oblivious.Capability, ev *oblivious.Evaluator, e Entry) (time.Duration, error) {
	t, err := tree.Complete(e.Size, r.cfg.TreeFeatures)
	if err != nil {
		return 0, err
	}
	rng := rand.New(rand.NewSource(r.cfg.Seed + int64(e.Size)))
	values := make([]uint64, r.cfg.TreeFeatures)
	features := make([]oblivious.Int, len(values))
	for i := range values {
		values[i] = uint64(rng.Intn(100))
		if features[i], err = c.Encrypt(oblivious.Clamp(values[i], e.Width), e.Width); err != nil {
			return 0, fmt.Errorf("feature %d: %w", i, err)
		}
	}

	out, elapsed, err := tree.Evaluate(ev, t, features)
	if err != nil {
		return 0, err
	}
	got, err := c.Decrypt(out)
	if err != nil {
		return 0, err
	}
	want, err := tree.EvaluatePlain(t, values, e.Width)
	if err != nil {
		return 0, err
	}
	if got != want {
		return elapsed, fmt.Errorf("%w: class %d, want %d", errWrong, got, want)
	}
	return elapsed, nil
}

func runFloyd(c oblivious.Capability, ev *oblivious.Evaluator, e Entry) (time.Duration, error) {
	graph := floyd.SampleGraph(e.Size)
	m, err := floyd.Encrypt(c, graph, e.Width)
	if err != nil {
		return 0, err
	}
	elapsed, err := floyd.Relax(ev, m)
	if err != nil {
		return 0, err
	}
	got, err := floyd.Decrypt(c, m)
	if err != nil {
		return 0, err
	}
	want, err := floyd.RelaxPlain(graph, e.Width)
	if err != nil {
		return 0, err
	}
	for i := range want {
		if !slices.Equal(got[i], want[i]) {
			return elapsed, fmt.Errorf("%w: row %d", errWrong, i)
		}
	}
	return elapsed, nil
}

func runSort(c oblivious.Capability, ev *oblivious.Evaluator, e Entry) (time.Duration, error) {
	values := sorting.Reversed(e.Size)
	arr, err := sorting.Encrypt(c, values, e.Width)
	if err != nil {
		return 0, err
	}
	elapsed, err := sorting.Sort(ev, arr)
	if err != nil {
		return 0, err
	}
	got, err := sorting.Decrypt(c, arr)
	if err != nil {
		return 0, err
	}
	if !slices.Equal(got, sorting.SortPlain(values, e.Width)) {
		return elapsed, errWrong
	}
	return elapsed, nil
}

// runFilter evaluates the filter at query.FilterWidth, so entries narrower
// than the query bounds still answer the unwrapped query.
func runFilter(c oblivious.Capability, ev *oblivious.Evaluator, e Entry) ([]int, time.Duration, error) {
	rows := query.SampleDatabase(e.Size)
	records, err := query.Encrypt(c, rows)
	if err != nil {
		return nil, 0, err
	}
	w := query.FilterWidth(e.Width)
	ids, elapsed, err := query.Filter(ev, records, query.DefaultQuery, w)
	if err != nil {
		return nil, 0, err
	}
	if want := query.FilterPlain(rows, query.DefaultQuery, w); !slices.Equal(ids, want) {
		return ids, elapsed, fmt.Errorf("%w: matched %v, want %v", errWrong, ids, want)
	}
	return ids, elapsed, nil
}

// WorkloadResult is the report of one workload run.
type WorkloadResult struct {
	Kind    workload.Kind
	Width   oblivious.Width
	Value   uint64
	Status  Status
	Error   string
	Elapsed time.Duration
}

// Marker is the status column of a report row.
func (r WorkloadResult) Marker() string {
	return Result{Status: r.Status, Error: r.Error}.Marker()
}

// Workloads runs every workload at every configured width that has a
// double width, one session per run.
func (r *Runner) Workloads(ctx context.Context) ([]WorkloadResult, error) {
	var results []WorkloadResult
	for _, k := range workload.Kinds {
		for _, w := range r.cfg.Widths {
			if _, err := workload.Double(w); err != nil {
				continue
			}
			if err := ctx.Err(); err != nil {
				return results, err
			}
			res := r.runWorkload(k, w)
			r.log.Printf("%s %s: %s", k, w, res.Marker())
			results = append(results, res)
		}
	}
	return results, nil
}

func (r *Runner) runWorkload(k workload.Kind, w oblivious.Width) WorkloadResult {
	res := WorkloadResult{Kind: k, Width: w}
	in := workload.Defaults(k, w)

	session, err := r.cfg.Backend.NewSession()
	if err != nil {
		res.Status, res.Error = StatusFailed, err.Error()
		return res
	}
	got, elapsed, err := workload.Run(session, k, in, w)
	if err != nil {
		res.Status, res.Error = StatusFailed, err.Error()
		return res
	}
	want, err := workload.Plain(k, in, w)
	if err != nil {
		res.Status, res.Error = StatusFailed, err.Error()
		return res
	}
	res.Value, res.Elapsed = got, elapsed
	res.Status = StatusOK
	if got != want {
		res.Status = StatusWrong
	}
	return res
}
