// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package tree

import (
	"fmt"
)

// Sample returns the two-level demo tree:
//
//	f0 < 50:  f1 < 30 ? class 0 : class 1
//	else:     f1 < 70 ? class 1 : class 0
func Sample() Tree {
	return Tree{Nodes: []Node{
		{Feature: 0, Threshold: 50, Left: Child(1), Right: Child(2)},
		{Feature: 1, Threshold: 30, Left: Leaf(0), Right: Leaf(1)},
		{Feature: 1, Threshold: 70, Left: Leaf(1), Right: Leaf(0)},
	}}
}

// Complete returns a complete binary tree of the given depth, counting the
// leaf level, laid out breadth first. Level k tests feature k mod
// numFeatures; leaves carry their left-to-right ordinal as class.
func Complete(depth, numFeatures int) (Tree, error) {
	if depth < 2 || depth > 24 {
		return Tree{}, fmt.Errorf("%w: depth %d", ErrInvalidTree, depth)
	}
	if numFeatures < 1 {
		return Tree{}, fmt.Errorf("%w: %d features", ErrInvalidTree, numFeatures)
	}

	internal := 1<<(depth-1) - 1
	nodes := make([]Node, internal)
	level := 0
	for i := range nodes {
		if i == 1<<(level+1)-1 {
			level++
		}
		nodes[i] = Node{
			Feature:   level % numFeatures,
			Threshold: uint64((i*37 + 11) % 100),
			Left:      branchAt(2*i+1, internal),
			Right:     branchAt(2*i+2, internal),
		}
	}
	return Tree{Nodes: nodes}, nil
}

func branchAt(pos, internal int) Branch {
	if pos < internal {
		return Child(pos)
	}
	return Leaf(uint64(pos - internal))
}
