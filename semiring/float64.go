// Copyright ©2026 The CTF Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package semiring

import (
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
)

// Float64 is the ordinary (+, ×) semiring over float64, backed directly by
// the current blas64 implementation.
type Float64 struct{}

var _ Semiring[float64] = Float64{}

func (Float64) MulID() float64 { return 1 }
func (Float64) AddID() float64 { return 0 }

func (Float64) Equal(a, b float64) bool { return a == b }
func (Float64) Add(a, b float64) float64 { return a + b }
func (Float64) Mul(a, b float64) float64 { return a * b }
func (Float64) Neg(a float64) float64    { return -a }

func (Float64) Scal(n int, alpha float64, x []float64, incx int) {
	if n == 0 {
		return
	}
	blas64.Implementation().Dscal(n, alpha, x, incx)
}

func (Float64) Axpy(n int, alpha float64, x []float64, incx int, y []float64, incy int) {
	if n == 0 {
		return
	}
	blas64.Implementation().Daxpy(n, alpha, x, incx, y, incy)
}

// Gemm dispatches to blas64.Implementation().Dgemm, which (like the rest
// of gonum's native blas/gonum backend) has no Order parameter: it is
// always row-major. The rest of this engine addresses operand data with
// column-major strides (package kernel, package fold), so this swaps A
// and B (and m/n with them) rather than the trans flags or strides
// themselves: a column-major (m,k)×(k,n)=(m,n) product is byte-identical
// to the row-major (n,k)×(k,m)=(n,m) product of the same two buffers with
// the operands swapped, since transposing a column-major matrix of shape
// (p,q) and leading dimension ld is exactly the same bytes as a row-major
// matrix of shape (q,p) and the same ld.
func (Float64) Gemm(tA, tB blas.Transpose, m, n, k int, alpha float64, a []float64, lda int, b []float64, ldb int, beta float64, c []float64, ldc int) {
	if m == 0 || n == 0 {
		return
	}
	blas64.Implementation().Dgemm(tB, tA, n, m, k, alpha, b, ldb, a, lda, beta, c, ldc)
}
