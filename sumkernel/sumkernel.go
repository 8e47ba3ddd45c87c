// Copyright ©2026 The CTF Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sumkernel implements the symmetric sequential summation kernel
// (spec.md §4.6's two-operand specialization): B = alpha*A + beta*B, for a
// label map that need not be a permutation (A may have labels absent from
// B, meaning B broadcasts/reduces across those positions). Grounded on
// original_source/src/summation/sym_seq_sum_inner.cxx.
package sumkernel

import (
	"fmt"

	"github.com/devinamatthews/ctf/semiring"
	"github.com/devinamatthews/ctf/tensor"
)

type opMeta struct {
	IdxMap  []int
	Sym     []tensor.Sym
	RawLen  []int
	Strides []int
}

func meta[T any](t *tensor.Tensor[T], idxMap []int) opMeta {
	m := opMeta{IdxMap: idxMap, Sym: make([]tensor.Sym, t.Order()), RawLen: make([]int, t.Order())}
	for i, md := range t.Modes {
		m.Sym[i] = md.Sym
		m.RawLen[i] = md.RawLen
	}
	m.Strides = make([]int, t.Order())
	s := 1
	for i := 0; i < t.Order(); i++ {
		m.Strides[i] = s
		s *= t.Modes[i].Len
	}
	return m
}

func orderLabels(metas []opMeta) []int {
	var discovery []int
	seen := map[int]bool{}
	for _, m := range metas {
		for _, l := range m.IdxMap {
			if !seen[l] {
				seen[l] = true
				discovery = append(discovery, l)
			}
		}
	}
	discIndex := make(map[int]int, len(discovery))
	for i, l := range discovery {
		discIndex[l] = i
	}

	adj := map[int][]int{}
	inDeg := make(map[int]int, len(discovery))
	for _, l := range discovery {
		inDeg[l] = 0
	}
	for _, m := range metas {
		for p := 0; p+1 < len(m.IdxMap); p++ {
			if m.Sym[p] == tensor.NS {
				continue
			}
			earlier, later := m.IdxMap[p], m.IdxMap[p+1]
			if earlier == later {
				continue
			}
			adj[later] = append(adj[later], earlier)
			inDeg[earlier]++
		}
	}

	placed := make(map[int]bool, len(discovery))
	order := make([]int, 0, len(discovery))
	for len(order) < len(discovery) {
		best := -1
		for _, l := range discovery {
			if placed[l] || inDeg[l] > 0 {
				continue
			}
			if best == -1 || discIndex[l] < discIndex[best] {
				best = l
			}
		}
		if best == -1 {
			for _, l := range discovery {
				if !placed[l] {
					best = l
					break
				}
			}
		}
		order = append(order, best)
		placed[best] = true
		for _, dependent := range adj[best] {
			inDeg[dependent]--
		}
	}
	return order
}

// bounds computes the dynamic (min, max) for label from m's own mode
// structure. A label absent from m contributes no tightening at all: when
// A carries a label B lacks, B accumulates A's value at every value of
// that label (a broadcast/reduction, not a single pinned iteration) — the
// source's own "rev_idx_map[...] == -1" pin only applies within its
// B-only beta-scale pre-pass, reproduced here by restricting that pass's
// own odometer to B's labels (see SumInner) rather than by a clamp here.
func bounds(m opMeta, label int, idxGlb []int, imin, imax int) (int, int) {
	for p, l := range m.IdxMap {
		if l != label {
			continue
		}
		if ex := m.RawLen[p]; ex < imax {
			imax = ex
		}
		if p > 0 && m.Sym[p-1] != tensor.NS {
			partner := m.IdxMap[p-1]
			min := idxGlb[partner]
			if m.Sym[p-1] == tensor.AS {
				min++
			}
			if min > imin {
				imin = min
			}
		}
	}
	return imin, imax
}

func checkSym(m opMeta, idxGlb []int) bool {
	for p := 0; p+1 < len(m.IdxMap); p++ {
		if m.Sym[p] == tensor.NS {
			continue
		}
		earlier, later := m.IdxMap[p], m.IdxMap[p+1]
		if earlier == later {
			continue
		}
		if m.Sym[p] == tensor.AS {
			if idxGlb[later] <= idxGlb[earlier] {
				return false
			}
		} else if idxGlb[later] < idxGlb[earlier] {
			return false
		}
	}
	return true
}

func offset(m opMeta, idxGlb []int) int {
	off := 0
	for p, l := range m.IdxMap {
		off += idxGlb[l] * m.Strides[p]
	}
	return off
}

func advance(labels []int, idxGlb []int, metas []opMeta) bool {
	for _, label := range labels {
		imin, imax := 0, int(^uint(0)>>1)
		for _, m := range metas {
			imin, imax = bounds(m, label, idxGlb, imin, imax)
		}
		if idxGlb[label] < imin && imin < imax {
			idxGlb[label] = imin
			return false
		}
		idxGlb[label]++
		if idxGlb[label] >= imax {
			idxGlb[label] = imin
			if imin >= imax {
				idxGlb[label] = 0
			}
			continue
		}
		return false
	}
	return true
}

func maxLabel(labels []int) int {
	m := 0
	for _, l := range labels {
		if l > m {
			m = l
		}
	}
	return m
}

// SumInner runs the symmetric sequential summation kernel:
// B[idxB] = alpha*A[idxA] + beta*B[idxB]. innerStride is the length of the
// contiguous folded run at the tail of both index maps (1 when nothing
// folds); each visited point then axpys innerStride contiguous elements in
// one call instead of one element at a time, mirroring the source's
// inr_stride parameter.
func SumInner[T any](sr semiring.Semiring[T], alpha T, a *tensor.Tensor[T], idxA []int, beta T, b *tensor.Tensor[T], idxB []int, innerStride int) error {
	if innerStride <= 0 {
		return fmt.Errorf("sumkernel: innerStride must be positive")
	}
	ma, mb := meta(a, idxA), meta(b, idxB)
	metas := []opMeta{ma, mb}
	labels := orderLabels(metas)
	idxGlb := make([]int, maxLabel(labels)+1)

	// B's beta-scale is a separate prior pass over B's own index space only
	// (not a full-buffer scale): its odometer is ordered over B's own labels
	// alone, so labels only A carries take no part in it, and it scales
	// precisely the B region this call is about to accumulate into.
	if !semiring.IsMulID(sr, beta) {
		bIdxGlb := make([]int, maxLabel(labels)+1)
		bMetas := []opMeta{mb}
		bLabels := orderLabels(bMetas)
		for {
			if checkSym(mb, bIdxGlb) {
				off := offset(mb, bIdxGlb)
				sr.Scal(innerStride, beta, b.Data[off*innerStride:], 1)
			}
			if advance(bLabels, bIdxGlb, bMetas) {
				break
			}
		}
	}

	for {
		if checkSym(ma, idxGlb) && checkSym(mb, idxGlb) {
			offA := offset(ma, idxGlb)
			offB := offset(mb, idxGlb)
			sr.Axpy(innerStride, alpha, a.Data[offA*innerStride:], 1, b.Data[offB*innerStride:], 1)
		}
		if advance(labels, idxGlb, metas) {
			break
		}
	}
	return nil
}
