// Copyright ©2026 The CTF Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package semiring

import (
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/cblas128"
)

// Complex128 is the ordinary (+, ×) semiring over complex128, backed
// directly by the current cblas128 implementation.
type Complex128 struct{}

var _ Semiring[complex128] = Complex128{}

func (Complex128) MulID() complex128 { return 1 }
func (Complex128) AddID() complex128 { return 0 }

func (Complex128) Equal(a, b complex128) bool { return a == b }
func (Complex128) Add(a, b complex128) complex128 { return a + b }
func (Complex128) Mul(a, b complex128) complex128 { return a * b }
func (Complex128) Neg(a complex128) complex128    { return -a }

func (Complex128) Scal(n int, alpha complex128, x []complex128, incx int) {
	if n == 0 {
		return
	}
	cblas128.Implementation().Zscal(n, alpha, x, incx)
}

func (Complex128) Axpy(n int, alpha complex128, x []complex128, incx int, y []complex128, incy int) {
	if n == 0 {
		return
	}
	cblas128.Implementation().Zaxpy(n, alpha, x, incx, y, incy)
}

// Gemm dispatches to cblas128.Implementation().Zgemm, which has no Order
// parameter and is always row-major; see semiring.Float64.Gemm for the
// column-major/row-major swap this relies on to preserve the column-major
// semantics the rest of the engine assumes.
func (Complex128) Gemm(tA, tB blas.Transpose, m, n, k int, alpha complex128, a []complex128, lda int, b []complex128, ldb int, beta complex128, c []complex128, ldc int) {
	if m == 0 || n == 0 {
		return
	}
	cblas128.Implementation().Zgemm(tB, tA, n, m, k, alpha, b, ldb, a, lda, beta, c, ldc)
}
