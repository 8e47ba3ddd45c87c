// Copyright ©2026 The CTF Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package semiring

import (
	"testing"

	"gonum.org/v1/gonum/blas"
)

func TestFloat64Identities(t *testing.T) {
	var sr Float64
	if !IsMulID[float64](sr, 1) {
		t.Errorf("IsMulID(1) = false, want true")
	}
	if IsMulID[float64](sr, 2) {
		t.Errorf("IsMulID(2) = true, want false")
	}
	if !IsAddID[float64](sr, 0) {
		t.Errorf("IsAddID(0) = false, want true")
	}
}

func TestFloat64Neg(t *testing.T) {
	var sr Float64
	if got, want := sr.Neg(3.5), -3.5; got != want {
		t.Errorf("Neg(3.5) = %v, want %v", got, want)
	}
	if got, want := sr.Neg(sr.Neg(3.5)), 3.5; got != want {
		t.Errorf("Neg(Neg(3.5)) = %v, want %v", got, want)
	}
}

func TestFloat64Gemm(t *testing.T) {
	var sr Float64
	// A = [[1,2,3],[4,5,6]] (2x3), B = [[1,0],[0,1],[1,1]] (3x2)
	// C = A*B = [[4,5],[10,11]]
	a := []float64{1, 4, 2, 5, 3, 6} // column-major 2x3
	b := []float64{1, 0, 1, 0, 1, 1} // column-major 3x2
	c := make([]float64, 4)
	sr.Gemm(blas.NoTrans, blas.NoTrans, 2, 2, 3, 1, a, 2, b, 3, 0, c, 2)
	want := []float64{4, 10, 5, 11} // column-major 2x2
	for i, v := range want {
		if c[i] != v {
			t.Errorf("c[%d] = %v, want %v", i, c[i], v)
		}
	}
}

func TestFloat64AxpyScal(t *testing.T) {
	var sr Float64
	x := []float64{1, 2, 3}
	y := []float64{10, 10, 10}
	sr.Axpy(3, 2, x, 1, y, 1)
	want := []float64{12, 14, 16}
	for i, v := range want {
		if y[i] != v {
			t.Errorf("y[%d] = %v, want %v", i, y[i], v)
		}
	}
	sr.Scal(3, 0.5, y, 1)
	want = []float64{6, 7, 8}
	for i, v := range want {
		if y[i] != v {
			t.Errorf("y[%d] = %v, want %v", i, y[i], v)
		}
	}
}
