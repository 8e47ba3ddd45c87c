// Copyright ©2026 The CTF Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package redist declares the data-redistribution collaborator this
// engine consumes (spec.md §4's "Redistribution interface" and §6's
// remap_tensor(T, target_mapping, source_mapping) contract) and supplies
// a single-process reference implementation for it. A real, networked
// redistributor belongs to the out-of-scope collaborator named in
// spec.md §1; Local plays the same "correct, unoptimized default" role
// here that comm.Local plays for the messaging collaborator.
package redist

import (
	"fmt"

	"github.com/devinamatthews/ctf/tensor"
)

// Redistributor relays an operand's data to match a target per-mode
// mapping chain. Specialized per element type (like tensor.Tensor
// itself) since Go methods cannot be generic.
type Redistributor[T any] interface {
	// Remap mutates t in place so that every mode i's Chain equals
	// target[i], moving data as required by the change in distribution.
	Remap(t *tensor.Tensor[T], target []tensor.Chain) error
}

// Local is the single-process reference Redistributor. With only one
// process, "moving data" for a chain change can never be a real network
// transfer — it is, at most, a reshuffle of the same local buffer to a
// different padded layout (a virtual-factor change). Local performs that
// reshuffle directly rather than assuming the caller never changes
// padding, so it stays correct even though this module's planner
// (package planner via package ctf) only ever drives it with
// extent-1 chains.
type Local[T any] struct{}

var _ Redistributor[float64] = Local[float64]{}

// Remap applies target to t mode by mode (via tensor.Tensor.ApplyChain,
// which keeps symmetric mode groups in lockstep per spec.md §4.2) and, if
// that changes any mode's padded length, reallocates Data and copies every
// raw (unpadded) coordinate from the old layout into the new one.
func (Local[T]) Remap(t *tensor.Tensor[T], target []tensor.Chain) error {
	if len(target) != t.Order() {
		return fmt.Errorf("redist: target has %d modes, tensor has %d", len(target), t.Order())
	}

	oldStrides := modeStrides(t)
	rawLens := make([]int, t.Order())
	for i, m := range t.Modes {
		rawLens[i] = m.RawLen
	}

	for i, c := range target {
		if err := t.ApplyChain(i, c); err != nil {
			return fmt.Errorf("redist: applying target chain to mode %d: %w", i, err)
		}
	}

	newStrides := modeStrides(t)
	newTotal := 1
	for _, m := range t.Modes {
		newTotal *= m.Len
	}
	same := newTotal == len(t.Data)
	for i := range newStrides {
		same = same && newStrides[i] == oldStrides[i]
	}
	if same {
		// No mode's padded length changed, so the existing buffer's layout
		// already agrees with the new strides (a true no-op remap, e.g.
		// every chain's TotalExtent is 1 both before and after).
		return nil
	}

	newData := make([]T, newTotal)
	idx := make([]int, t.Order())
	var rec func(pos int)
	rec = func(pos int) {
		if pos == len(idx) {
			oldOff, newOff := 0, 0
			for i, v := range idx {
				oldOff += v * oldStrides[i]
				newOff += v * newStrides[i]
			}
			newData[newOff] = t.Data[oldOff]
			return
		}
		for v := 0; v < rawLens[pos]; v++ {
			idx[pos] = v
			rec(pos + 1)
		}
	}
	rec(0)
	t.Data = newData
	return nil
}

// modeStrides returns the column-major (mode 0 fastest) strides for a
// dense traversal of t's current padded-length data buffer.
func modeStrides[T any](t *tensor.Tensor[T]) []int {
	strides := make([]int, t.Order())
	s := 1
	for i := 0; i < t.Order(); i++ {
		strides[i] = s
		s *= t.Modes[i].Len
	}
	return strides
}
