// Copyright ©2026 The CTF Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ctf

import (
	"fmt"

	"github.com/devinamatthews/ctf/semiring"
	"github.com/devinamatthews/ctf/sumkernel"
	"github.com/devinamatthews/ctf/tensor"
)

// Sum evaluates B[idxB] = beta*B[idxB] + alpha*A[idxA] (spec.md §4.7, the
// two-operand specialization of Contract). idxB need not be a permutation
// of idxA: a label A carries that B lacks is a broadcast/reduction across
// that axis, handled directly by sumkernel.SumInner.
func Sum[T any](w *World, sr semiring.Semiring[T], alpha T, A *tensor.Tensor[T], idxA []int, beta T, B *tensor.Tensor[T], idxB []int) error {
	if len(idxA) != A.Order() || len(idxB) != B.Order() {
		return &InvalidArgumentError{Op: "Sum", Err: fmt.Errorf("index map length does not match operand order")}
	}

	if A.HasZeroEdgeLen() || B.HasZeroEdgeLen() {
		if !semiring.IsMulID(sr, beta) && len(B.Data) > 0 {
			sr.Scal(len(B.Data), beta, B.Data, 1)
		}
		return nil
	}

	aHome, bHome := homeSurrogate(A), homeSurrogate(B)
	ra, rb := redistributorFor[T](w), redistributorFor[T](w)
	defer func() {
		restoreHome(ra, aHome)
		restoreHome(rb, bHome)
	}()

	a, idxA2, _ := extractDiagsAll(aHome, append([]int(nil), idxA...), nil)
	b, idxB2 := bHome, append([]int(nil), idxB...)

	// Folding (spec.md §4.5's axpy specialization, §4.7): when idxA2 and
	// idxB2 agree position for position, the whole buffer is one
	// contiguous stripe and the odometer collapses to a single Axpy call
	// (the same "reduced index space" idea fold.CanFold/MapFold apply to
	// gemm, specialized to the full-match case since summation has no
	// three-operand class structure to fold a partial run out of).
	innerStride := 1
	foldIdxA, foldIdxB := idxA2, idxB2
	if sameIndexMap(idxA2, idxB2) {
		innerStride = len(a.Data)
		foldIdxA, foldIdxB = nil, nil
	}

	return sumkernel.SumInner(sr, alpha, a, foldIdxA, beta, b, foldIdxB, innerStride)
}

func sameIndexMap(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
