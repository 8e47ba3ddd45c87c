// Copyright ©2026 The CTF Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kernel

import (
	"testing"

	"github.com/devinamatthews/ctf/fold"
	"github.com/devinamatthews/ctf/semiring"
	"github.com/devinamatthews/ctf/symmetry"
	"github.com/devinamatthews/ctf/tensor"
	"gonum.org/v1/gonum/blas"
)

func newMat(t *testing.T, rows, cols int, colMajor []float64) *tensor.Tensor[float64] {
	t.Helper()
	tn, err := tensor.New[float64](semiring.Float64{}, []int{rows, cols}, []tensor.Sym{tensor.NS, tensor.NS})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	copy(tn.Data, colMajor)
	return tn
}

// TestContractInnerUnfoldedMatmul exercises the plain (unfolded) walk on
// spec.md §8 scenario S1: A[2,3]=[[1,2,3],[4,5,6]], B[3,2]=[[1,0],[0,1],[1,1]].
func TestContractInnerUnfoldedMatmul(t *testing.T) {
	a := newMat(t, 2, 3, []float64{1, 4, 2, 5, 3, 6}) // column-major: A[i][j] at i+2j
	b := newMat(t, 3, 2, []float64{1, 0, 1, 0, 1, 1}) // B[j][k] at j+3k
	c := newMat(t, 2, 2, []float64{0, 0, 0, 0})

	err := ContractInner[float64](semiring.Float64{}, 1, a, []int{0, 1}, b, []int{1, 2}, 0, c, []int{0, 2}, nil, nil)
	if err != nil {
		t.Fatalf("ContractInner: %v", err)
	}
	want := []float64{4, 10, 5, 11} // C=[[4,5],[10,11]] column-major
	for i, w := range want {
		if c.Data[i] != w {
			t.Errorf("C.Data[%d] = %v, want %v (full C=%v)", i, c.Data[i], w, c.Data)
		}
	}
}

func TestContractInnerBetaScalesExistingC(t *testing.T) {
	a := newMat(t, 1, 1, []float64{2})
	b := newMat(t, 1, 1, []float64{3})
	c := newMat(t, 1, 1, []float64{10})

	if err := ContractInner[float64](semiring.Float64{}, 1, a, []int{0, 1}, b, []int{1, 2}, 2, c, []int{0, 2}, nil, nil); err != nil {
		t.Fatalf("ContractInner: %v", err)
	}
	// C = 2*10(beta) + 1*2*3(alpha*A*B) = 26.
	if got, want := c.Data[0], 26.0; got != want {
		t.Errorf("C.Data[0] = %v, want %v", got, want)
	}
}

// TestContractInnerFoldedMatchesUnfolded runs S1 again through the folded
// (gemm) path — the entire contraction folds into one m=2,n=2,k=3 gemm
// with an empty reduced index space — and checks it agrees with the
// unfolded accumulation (spec.md §8 property 7, "folding fidelity").
func TestContractInnerFoldedMatchesUnfolded(t *testing.T) {
	a := newMat(t, 2, 3, []float64{1, 4, 2, 5, 3, 6})
	b := newMat(t, 3, 2, []float64{1, 0, 1, 0, 1, 1})
	c := newMat(t, 2, 2, []float64{0, 0, 0, 0})

	inner := &fold.InnerParams{TransA: blas.NoTrans, TransB: blas.NoTrans, M: 2, N: 2, K: 3, LdA: 2, LdB: 3, LdC: 2}
	if err := ContractInner[float64](semiring.Float64{}, 1, a, nil, b, nil, 0, c, nil, inner, nil); err != nil {
		t.Fatalf("ContractInner (folded): %v", err)
	}
	want := []float64{4, 10, 5, 11}
	for i, w := range want {
		if c.Data[i] != w {
			t.Errorf("folded C.Data[%d] = %v, want %v", i, c.Data[i], w)
		}
	}
}

// TestContractInnerSymmetricPackedBound exercises the SY partner bound
// (rule 1 of spec.md §4.6): a fully-contracted symmetric pair is visited
// only at j>=i, each visited block contributing once (overcount is nil
// here, so every visited point contributes with a bare multiplier of 1 —
// the correction itself, when needed, is the caller's overcount callback,
// not anything this kernel computes on its own).
func TestContractInnerSymmetricPackedBound(t *testing.T) {
	a, err := tensor.New[float64](semiring.Float64{}, []int{2, 2}, []tensor.Sym{tensor.SY, tensor.NS})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// Dense-filled symmetric matrix [[1,2],[2,3]], column-major.
	a.Data = []float64{1, 2, 2, 3}
	b, err := tensor.New[float64](semiring.Float64{}, []int{2, 2}, []tensor.Sym{tensor.SY, tensor.NS})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	b.Data = []float64{1, 2, 2, 3}
	scalar, err := tensor.New[float64](semiring.Float64{}, nil, nil)
	if err != nil {
		t.Fatalf("New scalar: %v", err)
	}

	if err := ContractInner[float64](semiring.Float64{}, 1, a, []int{0, 1}, b, []int{0, 1}, 0, scalar, nil, nil, nil); err != nil {
		t.Fatalf("ContractInner: %v", err)
	}
	// Packed positions visited: (0,0)=1*1, (0,1)=2*2, (1,1)=3*3 -> 1+4+9=14.
	if got, want := scalar.Data[0], 14.0; got != want {
		t.Errorf("scalar = %v, want %v", got, want)
	}
}

// TestContractInnerPerPointOvercount runs the same SY self-contraction as
// TestContractInnerSymmetricPackedBound, this time with a non-nil overcount
// callback built from symmetry.PointOvercount, and checks it reproduces the
// true dense answer rather than the raw packed sum: the dense sum over all
// four entries of [[1,2],[2,3]]*[[1,2],[2,3]] elementwise is
// 1*1+2*2+2*2+3*3=18, but the packed walk only ever visits the upper
// triangle (0,0), (0,1), (1,1) once each, so the off-diagonal (0,1) point
// must contribute with a factor of 2 (recovering the (1,0) point it never
// visits) while the diagonal points (0,0) and (1,1) contribute with a
// factor of 1 (they have no distinct mirror point to recover).
func TestContractInnerPerPointOvercount(t *testing.T) {
	a, err := tensor.New[float64](semiring.Float64{}, []int{2, 2}, []tensor.Sym{tensor.SY, tensor.NS})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	a.Data = []float64{1, 2, 2, 3}
	b, err := tensor.New[float64](semiring.Float64{}, []int{2, 2}, []tensor.Sym{tensor.SY, tensor.NS})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	b.Data = []float64{1, 2, 2, 3}
	scalar, err := tensor.New[float64](semiring.Float64{}, nil, nil)
	if err != nil {
		t.Fatalf("New scalar: %v", err)
	}

	idxMap := []int{0, 1}
	contracted := map[int]bool{0: true, 1: true}
	overcount := func(idxGlb []int) int {
		return symmetry.PointOvercount(a, idxMap, contracted, idxGlb)
	}

	if err := ContractInner[float64](semiring.Float64{}, 1, a, idxMap, b, idxMap, 0, scalar, nil, nil, overcount); err != nil {
		t.Fatalf("ContractInner: %v", err)
	}
	// (0,0): factor 1, 1*1=1. (0,1): factor 2, 2*(2*2)=8. (1,1): factor 1, 3*3=9.
	// Total: 1+8+9=18, matching the true dense elementwise sum.
	if got, want := scalar.Data[0], 18.0; got != want {
		t.Errorf("scalar = %v, want %v", got, want)
	}
}
