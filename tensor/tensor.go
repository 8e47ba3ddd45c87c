// Copyright ©2026 The CTF Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tensor defines the tensor meta-model: order, per-mode edge
// lengths, per-mode symmetry marks, and per-mode mapping chains (spec.md
// §3), plus the packed-storage accounting for symmetric/antisymmetric
// mode groups.
package tensor

import (
	"fmt"

	"github.com/devinamatthews/ctf/semiring"
	"gonum.org/v1/gonum/combin"
)

// Sym is a per-adjacent-pair symmetry mark.
type Sym int

const (
	// NS marks no relation between a mode and its successor.
	NS Sym = iota
	// SY marks a symmetric pair: swapping the two modes leaves the value
	// unchanged.
	SY
	// AS marks an antisymmetric pair: swapping negates the value.
	AS
	// SH marks a symmetric-Hermitian pair, packed identically to SY.
	SH
)

func (s Sym) String() string {
	switch s {
	case NS:
		return "NS"
	case SY:
		return "SY"
	case AS:
		return "AS"
	case SH:
		return "SH"
	default:
		return fmt.Sprintf("Sym(%d)", int(s))
	}
}

// Factor is one link in a mode's mapping chain: either a PHYSICAL factor
// bound to a grid dimension, or a VIRTUAL (per-process loop) factor.
type Factor struct {
	Physical bool
	Dim      int // grid dimension id; meaningful only if Physical
	Extent   int
}

// Chain is a mode's mapping chain: the decomposition of its padded edge
// length into a sequence of PHYSICAL and VIRTUAL factors (spec.md §3,
// §4.2). The product of all factors' extents equals the mode's padded
// edge length divided by the tensor's block size.
type Chain []Factor

// PhysicalExtent returns the product of this chain's PHYSICAL factor
// extents (the number of grid processes this mode is spread across).
func (c Chain) PhysicalExtent() int {
	n := 1
	for _, f := range c {
		if f.Physical {
			n *= f.Extent
		}
	}
	return n
}

// VirtualExtent returns the product of this chain's VIRTUAL factor
// extents (the per-process loop count for this mode).
func (c Chain) VirtualExtent() int {
	n := 1
	for _, f := range c {
		if !f.Physical {
			n *= f.Extent
		}
	}
	return n
}

// TotalExtent is PhysicalExtent() * VirtualExtent().
func (c Chain) TotalExtent() int { return c.PhysicalExtent() * c.VirtualExtent() }

// Equal reports whether two chains describe the same sequence of factors.
func (c Chain) Equal(d Chain) bool {
	if len(c) != len(d) {
		return false
	}
	for i := range c {
		if c[i] != d[i] {
			return false
		}
	}
	return true
}

// Mode is one dimension of a Tensor.
type Mode struct {
	// RawLen is the mode's edge length as declared by the caller, before
	// padding.
	RawLen int
	// Len is RawLen padded up so it is evenly divisible by the mode's
	// Chain.TotalExtent() (spec.md §3: "edge_len always includes
	// padding").
	Len int
	// Sym is this mode's symmetry relation to the next mode in Order.
	Sym Sym
	// Chain is this mode's mapping chain.
	Chain Chain
}

// Tensor is the engine's core meta-model: order, edge lengths, symmetry
// marks, mapping chains, and the raw data buffer, plus the home-buffer
// bookkeeping used by the contraction lifecycle (spec.md §3, §4.8).
type Tensor[T any] struct {
	Modes []Mode
	Data  []T
	Ring  semiring.Semiring[T]

	// IsHome reports whether Data is still the tensor's original,
	// caller-provided buffer in its original layout.
	IsHome bool
	// HasHome reports whether a home buffer exists to restore into on
	// contraction exit (normally true whenever IsHome was true on entry
	// to some still-in-flight operation).
	HasHome bool
	// Home points to the descriptor of the original layout, non-nil only
	// while a surrogate created by the home-buffer lifecycle is live.
	Home *Tensor[T]

	// Child is the recursive inner tensor produced by folding (§4.5,
	// design note 9.1): an index into "the tensor this was folded from",
	// represented as a plain pointer since a folded tensor's lifetime is
	// always nested inside its parent's.
	Child *Tensor[T]
}

// Order returns the tensor's number of modes.
func (t *Tensor[T]) Order() int { return len(t.Modes) }

// HasZeroEdgeLen reports whether any mode has raw edge length zero, the
// short-circuit condition of spec.md §7.
func (t *Tensor[T]) HasZeroEdgeLen() bool {
	for _, m := range t.Modes {
		if m.RawLen == 0 {
			return true
		}
	}
	return false
}

// New constructs a Tensor with the given raw edge lengths and symmetry
// marks (len(lens) == len(syms) == order), unmapped (every mode's Chain is
// a single VIRTUAL factor of extent 1, Len == RawLen). Validate must be
// called (directly or via a mapping assignment) before the tensor
// participates in a contraction.
func New[T any](sr semiring.Semiring[T], lens []int, syms []Sym) (*Tensor[T], error) {
	if len(lens) != len(syms) {
		return nil, fmt.Errorf("tensor: len(lens)=%d != len(syms)=%d", len(lens), len(syms))
	}
	t := &Tensor[T]{
		Modes:   make([]Mode, len(lens)),
		Ring:    sr,
		IsHome:  true,
		HasHome: true,
	}
	for i := range lens {
		if lens[i] < 0 {
			return nil, fmt.Errorf("tensor: mode %d has negative edge length %d", i, lens[i])
		}
		t.Modes[i] = Mode{
			RawLen: lens[i],
			Len:    lens[i],
			Sym:    syms[i],
			Chain:  Chain{{Physical: false, Extent: 1}},
		}
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	n := 1
	for _, l := range lens {
		n *= l
	}
	t.Data = make([]T, n)
	return t, nil
}

// Validate checks the invariants of spec.md §3: symmetric pairs share an
// edge length and a mapping chain, symmetry runs are contiguous
// (terminated by NS or the tensor's last mode), and every mode's padded
// length is divisible by its chain's total extent.
func (t *Tensor[T]) Validate() error {
	n := t.Order()
	if n > 0 && t.Modes[n-1].Sym != NS {
		return fmt.Errorf("tensor: last mode cannot open a symmetry group (sym=%v)", t.Modes[n-1].Sym)
	}
	for i := 0; i < n; i++ {
		m := t.Modes[i]
		if m.Chain.TotalExtent() == 0 {
			return fmt.Errorf("tensor: mode %d has a zero-extent mapping chain", i)
		}
		if m.Len%m.Chain.TotalExtent() != 0 {
			return fmt.Errorf("tensor: mode %d padded length %d not divisible by chain extent %d", i, m.Len, m.Chain.TotalExtent())
		}
		if m.Sym != NS {
			if i+1 >= n {
				return fmt.Errorf("tensor: mode %d marked %v but has no successor", i, m.Sym)
			}
			next := t.Modes[i+1]
			if next.RawLen != m.RawLen {
				return fmt.Errorf("tensor: symmetric pair (%d,%d) has mismatched edge lengths %d!=%d", i, i+1, m.RawLen, next.RawLen)
			}
			if !m.Chain.Equal(next.Chain) {
				return fmt.Errorf("tensor: symmetric pair (%d,%d) must share a mapping chain", i, i+1)
			}
		}
	}
	return nil
}

// SymGroup is a maximal contiguous run of modes sharing a non-NS symmetry
// mark plus the terminating NS (or order boundary) mode, e.g. for
// sym=[SY,SY,NS,AS,NS] the groups are [0,3) (mark SY) and [3,5) (mark AS).
type SymGroup struct {
	Start, End int // half-open mode range [Start,End)
	Mark       Sym // the common mark of modes [Start,End-1); End-1's own mark is NS
}

// Len returns the group's width (End-Start).
func (g SymGroup) Len() int { return g.End - g.Start }

// SymGroups partitions the tensor's modes into maximal symmetric runs.
func (t *Tensor[T]) SymGroups() []SymGroup {
	var groups []SymGroup
	i := 0
	n := t.Order()
	for i < n {
		start := i
		mark := NS
		for i < n && t.Modes[i].Sym != NS {
			mark = t.Modes[i].Sym
			i++
		}
		// Consume the terminating mode (sym==NS), which belongs to this
		// group's packed block even though it carries no symmetry mark
		// itself, unless the group was a single unmarked mode.
		i++
		groups = append(groups, SymGroup{Start: start, End: i, Mark: mark})
	}
	return groups
}

// PackedSize returns the number of stored elements for a contiguous run
// of g.Len() modes sharing edge length L under mark: binomial(L+g-1,g)
// for SY/SH, binomial(L,g) for AS, L^g for NS (spec.md §3).
func PackedSize(mark Sym, L, g int) int {
	if g <= 0 {
		return 1
	}
	switch mark {
	case SY, SH:
		return combin.Binomial(L+g-1, g)
	case AS:
		return combin.Binomial(L, g)
	default:
		n := 1
		for i := 0; i < g; i++ {
			n *= L
		}
		return n
	}
}

// PackedSize returns the tensor's total packed storage count across all
// symmetry groups, i.e. the product of PackedSize over t.SymGroups().
func (t *Tensor[T]) PackedSize() int {
	n := 1
	for _, g := range t.SymGroups() {
		L := t.Modes[g.Start].RawLen
		n *= PackedSize(g.Mark, L, g.Len())
	}
	return n
}
