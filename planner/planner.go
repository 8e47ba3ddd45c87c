// Copyright ©2026 The CTF Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package planner implements the contraction planner (spec.md §4.4):
// given a joined index universe and a set of candidate topologies, it
// enumerates mappings, builds a plan tree per candidate, and selects the
// globally winning plan by a three-key all-reduce minimum.
package planner

import (
	"context"
	"errors"
	"fmt"

	"github.com/devinamatthews/ctf/comm"
	"github.com/devinamatthews/ctf/plantree"
	"github.com/devinamatthews/ctf/tensor"
	"github.com/devinamatthews/ctf/topology"
)

// ErrNoValidMapping is returned when the planner exhausts the topology ×
// mapping space without producing a single legal plan (spec.md §7).
var ErrNoValidMapping = errors.New("planner: no valid mapping found")

// InsufficientMemoryError reports that the winning plan's estimated peak
// memory exceeds the collaborator-reported available memory (spec.md §7).
type InsufficientMemoryError struct {
	Needed, Available int64
}

func (e *InsufficientMemoryError) Error() string {
	return fmt.Sprintf("planner: plan needs %d bytes, only %d available", e.Needed, e.Available)
}

// IndexInfo records which of {A,B,C} a joined label occurs in (the 3-bit
// presence mask of spec.md §4.4 step 1).
type IndexInfo struct {
	Label         int
	InA, InB, InC bool
}

// JoinedIndices builds the joined index universe: the union of labels in
// idxA, idxB, idxC, each tagged with its presence mask.
func JoinedIndices(idxA, idxB, idxC []int) []IndexInfo {
	info := map[int]*IndexInfo{}
	order := []int{}
	touch := func(idx []int, set func(*IndexInfo)) {
		for _, l := range idx {
			ii, ok := info[l]
			if !ok {
				ii = &IndexInfo{Label: l}
				info[l] = ii
				order = append(order, l)
			}
			set(ii)
		}
	}
	touch(idxA, func(ii *IndexInfo) { ii.InA = true })
	touch(idxB, func(ii *IndexInfo) { ii.InB = true })
	touch(idxC, func(ii *IndexInfo) { ii.InC = true })

	out := make([]IndexInfo, len(order))
	for i, l := range order {
		out[i] = *info[l]
	}
	return out
}

// Mapping is a fully resolved candidate: a topology and one Assignment per
// joined label.
type Mapping struct {
	Topo        topology.Topology
	Assignments []tensor.Assignment
}

// ExecFunc is a bound, ready-to-run leaf action (normally a closure over a
// kernel.ContractInner or sumkernel.SumInner call).
type ExecFunc func(ctx context.Context) error

// LeafBuilder binds a Mapping to a concrete leaf execution and its
// estimated CommVol/MemUse (NVirt is filled in by Build from the
// mapping's virtualization factors, since that quantity is mapping-level,
// not kernel-level). An error return means the mapping is rejected (e.g.
// folding required but unavailable for this mapping) without aborting the
// whole search.
type LeafBuilder func(m Mapping) (ExecFunc, plantree.Cost, error)

// MemoryQuery reports bytes of memory available to this process, standing
// in for a query to the out-of-scope redistribution/allocation
// collaborator (spec.md §7).
type MemoryQuery func() int64

// Build enumerates candidate mappings of labels (the joined index universe
// of JoinedIndices) over every topology in topos, builds a plan tree for
// each valid one via leaf, and returns the globally winning plan (spec.md
// §4.4). strippedLabels, if non-empty, wraps the winning plan in a
// plantree.StripNode (diagonal stripping already performed upstream by
// package symmetry). Every topology dimension that no label is mapped to
// wraps the plan in a plantree.ReplicateNode (see wrapReplication).
func Build(
	g comm.Group,
	topos []topology.Topology,
	labels []int,
	virtFactors []int,
	leaf LeafBuilder,
	mem MemoryQuery,
	strippedLabels []int,
) (plantree.Node, error) {
	var localCosts []plantree.Cost
	var localNodes []plantree.Node

	for _, topo := range topos {
		for _, assignments := range tensor.CandidateMappings(topo, labels, virtFactors) {
			if err := tensor.CheckMapping(topo, assignments); err != nil {
				continue
			}
			m := Mapping{Topo: topo, Assignments: assignments}
			exec, cost, err := leaf(m)
			if err != nil {
				continue
			}
			cost.NVirt = int64(virtProduct(assignments))

			node := buildTree(cost, assignments, exec)
			node = wrapReplication(g, cost, topo, assignments, node)
			if len(strippedLabels) > 0 {
				node = plantree.NewStrip(cost, strippedLabels, node)
			}

			localCosts = append(localCosts, node.Cost())
			localNodes = append(localNodes, node)
		}
	}

	if len(localNodes) == 0 {
		return nil, ErrNoValidMapping
	}

	localBestIdx := plantree.BestOf(localCosts)
	globalBest, err := plantree.Reduce(g, localCosts[localBestIdx])
	if err != nil {
		return nil, fmt.Errorf("planner: reducing plan cost across the process group: %w", err)
	}

	winnerIdx := localBestIdx
	for i, c := range localCosts {
		if c == globalBest {
			winnerIdx = i
			break
		}
	}
	winner := localNodes[winnerIdx]

	if mem != nil {
		if avail := mem(); winner.Cost().MemUse > avail {
			return nil, &InsufficientMemoryError{Needed: winner.Cost().MemUse, Available: avail}
		}
	}
	return winner, nil
}

// virtProduct returns the total per-process virtualization work implied by
// assignments: the product of every label's virtualization factor
// (spec.md §4.4 step 3's nvirt).
func virtProduct(assignments []tensor.Assignment) int {
	n := 1
	for _, a := range assignments {
		if a.VirtFact > 0 {
			n *= a.VirtFact
		}
	}
	return n
}

// buildTree wraps exec in a Sequential leaf, then in a Virtual node if the
// mapping's total virtualization work exceeds one iteration (spec.md §4.4
// step 2's "Virtualization is inserted once overall if nvirt>1").
func buildTree(cost plantree.Cost, assignments []tensor.Assignment, exec ExecFunc) plantree.Node {
	leaf := plantree.NewSequential(cost, exec)
	nvirt := virtProduct(assignments)
	if nvirt <= 1 {
		return leaf
	}
	return plantree.NewVirtual(cost, nvirt, leaf)
}

// wrapReplication wraps node in a Replicate node for every topology
// dimension that no label claims as a PHYSICAL factor (spec.md §4.4 step
// 2's replication rule); the broadcast group for that dimension is, in the
// absence of a real sub-communicator derivation, represented by the same
// group the caller plans with (package comm's out-of-scope collaborator
// is responsible for deriving true sub-communicators).
func wrapReplication(g comm.Group, cost plantree.Cost, topo topology.Topology, assignments []tensor.Assignment, node plantree.Node) plantree.Node {
	used := make(map[int]bool)
	for _, a := range assignments {
		if a.GridDim >= 0 {
			used[a.GridDim] = true
		}
	}
	for d := topo.Order() - 1; d >= 0; d-- {
		if used[d] {
			continue
		}
		node = plantree.NewReplicate(cost, g, node)
	}
	return node
}
