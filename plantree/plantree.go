// Copyright ©2026 The CTF Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package plantree models a contraction plan as a tree of a closed set of
// node kinds (spec.md §3 "Plan tree", §9 "Plan tree polymorphism"):
// strip-diagonal, replicate, 2D-general, offload, virtual, and the
// sequential leaf. Every non-leaf node wraps exactly one child.
package plantree

import (
	"context"
	"fmt"

	"github.com/devinamatthews/ctf/comm"
)

// Kind enumerates the closed set of plan-tree node types.
type Kind int

const (
	// Strip strips a diagonal (repeated index label) before recursing.
	Strip Kind = iota
	// Replicate replicates an operand across a sub-communicator to avoid
	// redistributing it.
	Replicate
	// TwoD performs a 2D-general (SUMMA-style) contraction over a
	// sub-communicator grid.
	TwoD
	// Offload defers part of the contraction to an accelerator path.
	Offload
	// Virtual loops over the virtualization factors of the current mapping.
	Virtual
	// Sequential is the leaf: the symmetric sequential kernel running on
	// one process's local, fully-mapped data.
	Sequential
)

func (k Kind) String() string {
	switch k {
	case Strip:
		return "strip-diagonal"
	case Replicate:
		return "replicate"
	case TwoD:
		return "2D-general"
	case Offload:
		return "offload"
	case Virtual:
		return "virtual"
	case Sequential:
		return "sequential"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Cost is the three-key estimate a plan node reports before execution
// (spec.md §4.4 step 4, §5 "Memory discipline"): number of virtualized
// iterations, communication volume, and peak memory use. Plans are ordered
// by the lexicographic minimum of (NVirt, CommVol, MemUse).
type Cost struct {
	NVirt   int64
	CommVol int64
	MemUse  int64
}

// Less reports whether c sorts before o in the lexicographic ordering
// spec.md §4.4 specifies for plan selection.
func (c Cost) Less(o Cost) bool {
	if c.NVirt != o.NVirt {
		return c.NVirt < o.NVirt
	}
	if c.CommVol != o.CommVol {
		return c.CommVol < o.CommVol
	}
	return c.MemUse < o.MemUse
}

// Node is the uniform capability every plan-tree node kind implements
// (spec.md §9 "Plan tree polymorphism").
type Node interface {
	Kind() Kind
	Cost() Cost
	Run(ctx context.Context) error
}

type base struct {
	kind Kind
	cost Cost
}

func (b base) Kind() Kind { return b.kind }
func (b base) Cost() Cost { return b.cost }

// StripNode strips a diagonal before recursing into Child.
type StripNode struct {
	base
	Child  Node
	Labels []int // repeated labels collapsed at this node
}

func NewStrip(cost Cost, labels []int, child Node) *StripNode {
	return &StripNode{base: base{kind: Strip, cost: cost}, Child: child, Labels: labels}
}

func (n *StripNode) Run(ctx context.Context) error {
	if n.Child == nil {
		return fmt.Errorf("plantree: strip node has no child")
	}
	return n.Child.Run(ctx)
}

// ReplicateNode replicates an operand over Group before recursing.
type ReplicateNode struct {
	base
	Child Node
	Group comm.Group
}

func NewReplicate(cost Cost, group comm.Group, child Node) *ReplicateNode {
	return &ReplicateNode{base: base{kind: Replicate, cost: cost}, Group: group, Child: child}
}

func (n *ReplicateNode) Run(ctx context.Context) error {
	if n.Child == nil {
		return fmt.Errorf("plantree: replicate node has no child")
	}
	return n.Child.Run(ctx)
}

// TwoDNode performs a 2D-general contraction over a sub-communicator grid
// before recursing into the per-block sequential work.
type TwoDNode struct {
	base
	Child  Node
	RowGrp comm.Group
	ColGrp comm.Group
}

func NewTwoD(cost Cost, rowGrp, colGrp comm.Group, child Node) *TwoDNode {
	return &TwoDNode{base: base{kind: TwoD, cost: cost}, RowGrp: rowGrp, ColGrp: colGrp, Child: child}
}

func (n *TwoDNode) Run(ctx context.Context) error {
	if n.Child == nil {
		return fmt.Errorf("plantree: 2D node has no child")
	}
	return n.Child.Run(ctx)
}

// OffloadNode defers Child's work to an accelerator execution path. The
// accelerator dispatch itself is an out-of-scope collaborator (spec.md §1);
// Exec, when non-nil, is invoked instead of recursing into Child.
type OffloadNode struct {
	base
	Child Node
	Exec  func(ctx context.Context) error
}

func NewOffload(cost Cost, exec func(ctx context.Context) error, child Node) *OffloadNode {
	return &OffloadNode{base: base{kind: Offload, cost: cost}, Exec: exec, Child: child}
}

func (n *OffloadNode) Run(ctx context.Context) error {
	if n.Exec != nil {
		return n.Exec(ctx)
	}
	if n.Child == nil {
		return fmt.Errorf("plantree: offload node has no child and no Exec")
	}
	return n.Child.Run(ctx)
}

// VirtualNode loops Iterations times over the per-process virtualization
// factors of the current mapping, running Child once per iteration.
type VirtualNode struct {
	base
	Child      Node
	Iterations int
}

func NewVirtual(cost Cost, iterations int, child Node) *VirtualNode {
	return &VirtualNode{base: base{kind: Virtual, cost: cost}, Iterations: iterations, Child: child}
}

func (n *VirtualNode) Run(ctx context.Context) error {
	if n.Child == nil {
		return fmt.Errorf("plantree: virtual node has no child")
	}
	for i := 0; i < n.Iterations; i++ {
		if err := n.Child.Run(ctx); err != nil {
			return fmt.Errorf("plantree: virtual iteration %d/%d: %w", i, n.Iterations, err)
		}
	}
	return nil
}

// SequentialNode is the plan tree's leaf: the symmetric sequential kernel
// invoked over one process's local, fully-mapped data. Exec is supplied by
// the planner once it has built the leaf's inner_params (fold.InnerParams,
// if foldable) and bound them to a concrete kernel call; plantree itself
// has no dependency on the kernel package, keeping the tree a pure
// scheduling structure.
type SequentialNode struct {
	base
	Exec func(ctx context.Context) error
}

func NewSequential(cost Cost, exec func(ctx context.Context) error) *SequentialNode {
	return &SequentialNode{base: base{kind: Sequential, cost: cost}, Exec: exec}
}

func (n *SequentialNode) Run(ctx context.Context) error {
	if n.Exec == nil {
		return fmt.Errorf("plantree: sequential leaf has no Exec")
	}
	return n.Exec(ctx)
}
