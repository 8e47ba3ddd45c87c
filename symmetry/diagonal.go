// Copyright ©2026 The CTF Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package symmetry normalizes symmetric/antisymmetric index maps before
// planning: extracting repeated-label diagonals, aligning canonical
// orderings of contracted symmetric index sets, computing the
// overcounting correction, and enumerating the signed permutations that
// stand in for desymmetrization when it is unsafe (spec.md §4.3).
package symmetry

import (
	"fmt"

	"github.com/devinamatthews/ctf/tensor"
)

// ExtractDiag inspects idxMap for a repeated label and, if one is found,
// returns a reduced tensor with that mode collapsed (the diagonal read
// out) and the corresponding reduced index map. ok is false once idxMap
// has no repeats left; callers apply ExtractDiag iteratively until ok is
// false (spec.md §4.3).
//
// Both modes carrying the repeated label must be unmarked (NS): a
// repeated index label is an index-map phenomenon (e.g. einsum "ii->i"),
// distinct from a tensor's own declared symmetry marks, and the two are
// not combined here.
func ExtractDiag[T any](t *tensor.Tensor[T], idxMap []int) (reduced *tensor.Tensor[T], reducedIdx []int, ok bool, err error) {
	first := make(map[int]int)
	for pos, lbl := range idxMap {
		if prev, seen := first[lbl]; seen {
			reduced, err = extractPair(t, prev, pos)
			if err != nil {
				return nil, nil, false, err
			}
			reducedIdx = make([]int, 0, len(idxMap)-1)
			for k, l := range idxMap {
				if k != pos {
					reducedIdx = append(reducedIdx, l)
				}
			}
			return reduced, reducedIdx, true, nil
		}
		first[lbl] = pos
	}
	return t, idxMap, false, nil
}

// extractPair builds the tensor obtained from t by reading out the
// diagonal of modes i<j (both required to carry the same edge length)
// and dropping mode j.
func extractPair[T any](t *tensor.Tensor[T], i, j int) (*tensor.Tensor[T], error) {
	if t.Modes[i].Sym != tensor.NS || t.Modes[j].Sym != tensor.NS {
		return nil, fmt.Errorf("symmetry: diagonal extraction requires unmarked modes, got %v,%v at (%d,%d)", t.Modes[i].Sym, t.Modes[j].Sym, i, j)
	}
	if t.Modes[i].RawLen != t.Modes[j].RawLen {
		return nil, fmt.Errorf("symmetry: repeated label at modes %d,%d has mismatched edge lengths %d!=%d", i, j, t.Modes[i].RawLen, t.Modes[j].RawLen)
	}

	keep := make([]int, 0, t.Order()-1)
	posOfI := -1
	for k := 0; k < t.Order(); k++ {
		if k == j {
			continue
		}
		if k == i {
			posOfI = len(keep)
		}
		keep = append(keep, k)
	}

	out := &tensor.Tensor[T]{Ring: t.Ring, Modes: make([]tensor.Mode, len(keep))}
	for p, k := range keep {
		out.Modes[p] = t.Modes[k]
	}
	outLen := 1
	for _, m := range out.Modes {
		outLen *= m.Len
	}
	out.Data = make([]T, outLen)

	srcStrides := modeStrides(t)
	outStrides := modeStrides(out)

	idx := make([]int, len(keep))
	var rec func(pos int)
	rec = func(pos int) {
		if pos == len(keep) {
			srcOff, outOff := 0, 0
			for p, k := range keep {
				srcOff += idx[p] * srcStrides[k]
				outOff += idx[p] * outStrides[p]
			}
			srcOff += idx[posOfI] * srcStrides[j]
			out.Data[outOff] = t.Data[srcOff]
			return
		}
		limit := t.Modes[keep[pos]].RawLen
		for v := 0; v < limit; v++ {
			idx[pos] = v
			rec(pos + 1)
		}
	}
	rec(0)
	return out, nil
}

// modeStrides returns the column-major (mode 0 fastest) strides for a
// dense traversal of t's padded-length data buffer.
func modeStrides[T any](t *tensor.Tensor[T]) []int {
	strides := make([]int, t.Order())
	s := 1
	for i := 0; i < t.Order(); i++ {
		strides[i] = s
		s *= t.Modes[i].Len
	}
	return strides
}
