// Copyright ©2026 The CTF Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package kernel implements the symmetric sequential contraction kernel
// (spec.md §4.6): the innermost walk over a single process's local,
// fully-mapped data, with per-label loop bounds that depend on earlier
// labels through the operands' symmetry marks, a cross-operand symmetry
// predicate that skips points that would otherwise violate an operand's
// own packed ordering, and either a folded gemm or an unfolded elementwise
// accumulation per visited block. Grounded on
// original_source/src/contraction/sym_seq_ctr_inner.cxx.
package kernel

import (
	"fmt"

	"github.com/devinamatthews/ctf/fold"
	"github.com/devinamatthews/ctf/semiring"
	"github.com/devinamatthews/ctf/tensor"
)

// opMeta is the symmetry/shape bookkeeping the odometer walk needs for one
// operand, independent of its element type.
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
	m.Strides = modeStrides(t)
	return m
}

// modeStrides returns column-major (mode-0-fastest) strides over t's
// padded per-mode lengths, the layout the kernel addresses directly.
func modeStrides[T any](t *tensor.Tensor[T]) []int {
	strides := make([]int, t.Order())
	s := 1
	for i := 0; i < t.Order(); i++ {
		strides[i] = s
		s *= t.Modes[i].Len
	}
	return strides
}

// orderLabels returns the distinct labels across the operands' index maps
// in the order the odometer must visit them (fastest-varying first), such
// that for every symmetric adjacency (p,p+1) in any operand, the
// dependent later mode's label is always faster-varying than the earlier
// mode's label it is bounded by (spec.md §4.6 rule 1: "min_j = idx[i]" for
// a later label j bounded by an earlier label i requires j to be resolved,
// i.e. fully cycled, before i advances again). Ties (and any label not
// constrained by a symmetric adjacency) keep first-seen discovery order.
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
			// A cyclic ordering constraint between operands: fall back to
			// discovery order for whatever remains rather than stall.
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

// bounds computes the dynamic (min, max) for label, tightened by m's own
// mode structure: the label's own raw extent caps imax, and if the mode
// carrying label is the later half of a symmetric adjacency, its imin is
// the current value of the earlier mode's label (plus one for AS).
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

// checkSym reports whether the current idxGlb position respects m's own
// symmetric ordering convention on every adjacency: idx[later] >=
// idx[earlier] for SY/SH, idx[later] > idx[earlier] for AS. bounds alone
// only tightens the dependent (later) label's lower edge when it last
// advanced; once the earlier label itself advances past it, the pairing
// must be rejected here rather than silently double-counted (spec.md §4.6
// rule 2, CHECK_SYM).
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

// advance moves the odometer idxGlb forward by one step across labels (in
// the fastest-to-slowest order produced by orderLabels) and reports
// whether it wrapped all the way around (the walk is complete). A label
// currently below its freshly computed minimum is snapped up to it when
// that minimum lies inside the label's range — that snap is itself the
// step, not a prelude to also incrementing — otherwise it is incremented
// and, on overflow, reset to its minimum (or to 0 when that minimum lies
// past the range, as an AS partner at its last value makes it) with the
// carry continuing to the next (slower) label.
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

// ContractInner runs the symmetric sequential kernel for
// C[idxC] (+)= alpha*A[idxA]*B[idxB], beta*C[idxC], over a's, b's, and c's
// local packed data. If inner is non-nil, idxA/idxB/idxC must be empty
// (folding, per fold.CanFold, only ever succeeds when every label of every
// operand partitions cleanly into the gemm's M/N/K classes, leaving no
// reduced index space to walk — see fold.CanFold's doc) and the single
// visited block is computed with one sr.Gemm call sized by inner;
// otherwise every point of the full index space is visited and
// accumulated with the semiring's scalar multiply-add.
//
// overcount, when non-nil, is called once per accepted (non-skipped)
// point of the unfolded walk with that point's idxGlb snapshot (indexed
// by label, as passed to bounds/checkSym) and must return the exact
// ∏g! correction for that specific point — the per-point replacement for
// a single blanket scalar applied to every point alike, which
// overcorrects whenever a fully-contracted symmetric group's members
// collide (a diagonal point contracts fewer equivalent dense orderings
// than an all-distinct one). overcount is never consulted when inner is
// non-nil: a folded block already reads every element of its dense run
// directly, with no packed-half restriction to correct for.
func ContractInner[T any](sr semiring.Semiring[T], alpha T, a *tensor.Tensor[T], idxA []int, b *tensor.Tensor[T], idxB []int, beta T, c *tensor.Tensor[T], idxC []int, inner *fold.InnerParams, overcount func(idxGlb []int) int) error {
	if inner == nil && (len(idxA) != a.Order() || len(idxB) != b.Order() || len(idxC) != c.Order()) {
		return fmt.Errorf("kernel: index map length does not match tensor order")
	}
	if inner != nil && (len(idxA) != 0 || len(idxB) != 0 || len(idxC) != 0) {
		return fmt.Errorf("kernel: folded contraction requires empty index maps, got %v/%v/%v", idxA, idxB, idxC)
	}

	ma, mb, mc := meta(a, idxA), meta(b, idxB), meta(c, idxC)
	metas := []opMeta{ma, mb, mc}

	if semiring.IsMulID(sr, beta) {
		// Lazy, at-most-once scale: matches the source's single full-buffer
		// scal before the walk begins (sym_seq_ctr_inner.cxx's FIXME notes
		// this is wrong for iterators over a subset of C; this engine's
		// contractions always cover all of C, so the full-buffer scale is
		// exact here).
	} else {
		sr.Scal(len(c.Data), beta, c.Data, 1)
	}

	labels := orderLabels(metas)
	idxGlb := make([]int, maxLabel(labels)+1)

	strideA, strideB, strideC := 1, 1, 1
	if inner != nil {
		strideA = inner.M * inner.K
		strideB = inner.K * inner.N
		strideC = inner.M * inner.N
	}

	for {
		if checkSym(ma, idxGlb) && checkSym(mb, idxGlb) && checkSym(mc, idxGlb) {
			offA := offset(ma, idxGlb)
			offB := offset(mb, idxGlb)
			offC := offset(mc, idxGlb)
			if inner != nil {
				sr.Gemm(inner.TransA, inner.TransB, inner.M, inner.N, inner.K, alpha,
					a.Data[offA*strideA:], inner.LdA,
					b.Data[offB*strideB:], inner.LdB,
					sr.MulID(),
					c.Data[offC*strideC:], inner.LdC)
			} else {
				pointAlpha := alpha
				if overcount != nil {
					if n := overcount(idxGlb); n != 1 {
						pointAlpha = semiring.ScaleByInt(sr, alpha, n)
					}
				}
				c.Data[offC] = sr.Add(c.Data[offC], sr.Mul(pointAlpha, sr.Mul(a.Data[offA], b.Data[offB])))
			}
		}
		if advance(labels, idxGlb, metas) {
			break
		}
	}
	return nil
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
