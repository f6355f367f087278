// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

// Package tree evaluates public decision trees over encrypted features.
//
// Both subtrees of every node are evaluated and the results are combined
// with an oblivious select, so the operations issued depend only on the
// shape of the tree.
package tree

import (
	"errors"
	"fmt"
	"time"

	"github.com/luxfi/oblivious"
)

// ErrInvalidTree is returned for malformed trees and feature vectors.
var ErrInvalidTree = errors.New("invalid decision tree")

// Branch is one side of a node: a leaf class or the index of a child node.
type Branch struct {
	Leaf  bool
	Class uint64
	Child int
}

// Leaf returns a leaf branch.
func Leaf(class uint64) Branch {
	return Branch{Leaf: true, Class: class}
}

// Child returns a branch to the node at index i.
func Child(i int) Branch {
	return Branch{Child: i}
}

// Node compares Feature against Threshold. Left is taken when the feature
// is strictly below the threshold.
type Node struct {
	Feature   int
	Threshold uint64
	Left      Branch
	Right     Branch
}

// Tree is an arena of nodes with the root at index 0. Children always have
// a larger index than their parent, so every tree is acyclic.
type Tree struct {
	Nodes []Node
}

// Validate checks the tree shape and that every feature index is below
// numFeatures.
func (t Tree) Validate(numFeatures int) error {
	if len(t.Nodes) == 0 {
		return fmt.Errorf("%w: no nodes", ErrInvalidTree)
	}
	for i, n := range t.Nodes {
		if n.Feature < 0 || n.Feature >= numFeatures {
			return fmt.Errorf("%w: node %d uses feature %d of %d", ErrInvalidTree, i, n.Feature, numFeatures)
		}
		for _, b := range []Branch{n.Left, n.Right} {
			if b.Leaf {
				continue
			}
			if b.Child <= i || b.Child >= len(t.Nodes) {
				return fmt.Errorf("%w: node %d has child %d", ErrInvalidTree, i, b.Child)
			}
		}
	}
	return nil
}

// Depth returns the number of levels including the leaf level.
func (t Tree) Depth() int {
	if len(t.Nodes) == 0 {
		return 0
	}
	return t.depth(0)
}

func (t Tree) depth(i int) int {
	n := t.Nodes[i]
	d := 1
	for _, b := range []Branch{n.Left, n.Right} {
		if !b.Leaf {
			d = max(d, t.depth(b.Child))
		}
	}
	return d + 1
}

// Evaluate classifies the encrypted features. Thresholds and leaf classes
// are clamped to the feature width and encrypted per node. The returned
// duration covers the encrypted evaluation only.
func Evaluate(ev *oblivious.Evaluator, t Tree, features []oblivious.Int) (oblivious.Int, time.Duration, error) {
	if err := t.Validate(len(features)); err != nil {
		return nil, 0, err
	}
	w := features[0].Width()
	for i, f := range features {
		if f.Width() != w {
			return nil, 0, fmt.Errorf("feature %d: %w: %s vs %s", i, oblivious.ErrWidthMismatch, f.Width(), w)
		}
	}

	start := time.Now()
	r, err := evalNode(ev, t, 0, features, w)
	if err != nil {
		return nil, 0, err
	}
	return r, time.Since(start), nil
}

func evalNode(ev *oblivious.Evaluator, t Tree, i int, features []oblivious.Int, w oblivious.Width) (oblivious.Int, error) {
	c := ev.Capability()
	n := t.Nodes[i]

	threshold, err := c.Encrypt(oblivious.Clamp(n.Threshold, w), w)
	if err != nil {
		return nil, fmt.Errorf("node %d: threshold: %w", i, err)
	}
	goLeft, err := c.Lt(features[n.Feature], threshold)
	if err != nil {
		return nil, fmt.Errorf("node %d: compare: %w", i, err)
	}

	left, err := evalBranch(ev, t, n.Left, features, w)
	if err != nil {
		return nil, err
	}
	right, err := evalBranch(ev, t, n.Right, features, w)
	if err != nil {
		return nil, err
	}

	r, err := ev.Select(goLeft, left, right)
	if err != nil {
		return nil, fmt.Errorf("node %d: %w", i, err)
	}
	return r, nil
}

func evalBranch(ev *oblivious.Evaluator, t Tree, b Branch, features []oblivious.Int, w oblivious.Width) (oblivious.Int, error) {
	if !b.Leaf {
		return evalNode(ev, t, b.Child, features, w)
	}
	leaf, err := ev.Capability().Encrypt(oblivious.Clamp(b.Class, w), w)
	if err != nil {
		return nil, fmt.Errorf("leaf %d: %w", b.Class, err)
	}
	return leaf, nil
}

// EvaluatePlain is the plaintext counterpart of Evaluate, with the same
// clamping of thresholds and classes.
func EvaluatePlain(t Tree, features []uint64, w oblivious.Width) (uint64, error) {
	if err := t.Validate(len(features)); err != nil {
		return 0, err
	}
	i := 0
	for {
		n := t.Nodes[i]
		b := n.Right
		if oblivious.Clamp(features[n.Feature], w) < oblivious.Clamp(n.Threshold, w) {
			b = n.Left
		}
		if b.Leaf {
			return oblivious.Clamp(b.Class, w), nil
		}
		i = b.Child
	}
}
