// Copyright ©2026 The CTF Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sumkernel

import (
	"testing"

	"github.com/devinamatthews/ctf/semiring"
	"github.com/devinamatthews/ctf/tensor"
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

func TestSumInnerElementwiseAxpy(t *testing.T) {
	a := newMat(t, 2, 2, []float64{1, 2, 3, 4})
	b := newMat(t, 2, 2, []float64{0, 0, 0, 0})

	if err := SumInner[float64](semiring.Float64{}, 2, a, []int{0, 1}, 0, b, []int{0, 1}, 1); err != nil {
		t.Fatalf("SumInner: %v", err)
	}
	want := []float64{2, 4, 6, 8}
	for i, w := range want {
		if b.Data[i] != w {
			t.Errorf("B.Data[%d] = %v, want %v (full B=%v)", i, b.Data[i], w, b.Data)
		}
	}
}

func TestSumInnerBetaScalesExistingB(t *testing.T) {
	a := newMat(t, 1, 1, []float64{5})
	b := newMat(t, 1, 1, []float64{10})

	if err := SumInner[float64](semiring.Float64{}, 1, a, []int{0, 1}, 3, b, []int{0, 1}, 1); err != nil {
		t.Fatalf("SumInner: %v", err)
	}
	// B = 3*10(beta) + 1*5(alpha*A) = 35.
	if got, want := b.Data[0], 35.0; got != want {
		t.Errorf("B.Data[0] = %v, want %v", got, want)
	}
}

// TestSumInnerBroadcastsOverAOnlyLabel exercises B = alpha*A summed over a
// label A carries that B lacks: B[j] = sum_i A[i,j], a reduction rather
// than a pinned single iteration.
func TestSumInnerBroadcastsOverAOnlyLabel(t *testing.T) {
	a := newMat(t, 2, 2, []float64{1, 2, 3, 4}) // column-major A[i][j] at i+2j
	b, err := tensor.New[float64](semiring.Float64{}, []int{2}, []tensor.Sym{tensor.NS})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// idxA = {i:0, j:1}, idxB = {j:1} — i appears only in A.
	if err := SumInner[float64](semiring.Float64{}, 1, a, []int{0, 1}, 0, b, []int{1}, 1); err != nil {
		t.Fatalf("SumInner: %v", err)
	}
	// B[0] = A[0,0]+A[1,0] = 1+2 = 3; B[1] = A[0,1]+A[1,1] = 3+4 = 7.
	want := []float64{3, 7}
	for i, w := range want {
		if b.Data[i] != w {
			t.Errorf("B.Data[%d] = %v, want %v", i, b.Data[i], w)
		}
	}
}

func TestSumInnerRejectsNonPositiveStride(t *testing.T) {
	a := newMat(t, 1, 1, []float64{1})
	b := newMat(t, 1, 1, []float64{1})
	if err := SumInner[float64](semiring.Float64{}, 1, a, []int{0, 1}, 0, b, []int{0, 1}, 0); err == nil {
		t.Errorf("expected an error for innerStride=0")
	}
}
