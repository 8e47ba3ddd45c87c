// Copyright ©2026 The CTF Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package semiring abstracts the scalar element type that the rest of the
// engine is parametric over: its additive and multiplicative identities,
// elementwise combination, and the BLAS-like primitives (scal, axpy, gemm)
// the sequential kernels issue against packed blocks. It has no element
// size query.
package semiring

import "gonum.org/v1/gonum/blas"

// Semiring is the element-type contract every other package in this module
// is parametric over. A value of Semiring[T] never carries state that
// depends on a particular tensor; it is a handle to the arithmetic of T,
// analogous to how blas64.Implementation is a handle to a BLAS backend.
type Semiring[T any] interface {
	// MulID returns the multiplicative identity (1 for ordinary rings).
	MulID() T
	// AddID returns the additive identity (0 for ordinary rings).
	AddID() T
	// Equal reports whether a and b are the same element.
	Equal(a, b T) bool
	// Add returns a+b.
	Add(a, b T) T
	// Mul returns a*b.
	Mul(a, b T) T
	// Neg returns the additive inverse of a. Used to fold a sign (e.g. the
	// parity correction of symmetry.AlignSymmetricIndices) directly into a
	// scalar coefficient without requiring every caller to special-case the
	// concrete element type.
	Neg(a T) T

	// Scal scales x[0:n*incx:incx] by alpha in place.
	Scal(n int, alpha T, x []T, incx int)
	// Axpy computes y += alpha*x over strided slices.
	Axpy(n int, alpha T, x []T, incx int, y []T, incy int)
	// Gemm computes C = alpha*op(A)*op(B) + beta*C where op(.) is the
	// identity or transpose according to tA, tB.
	Gemm(tA, tB blas.Transpose, m, n, k int, alpha T, a []T, lda int, b []T, ldb int, beta T, c []T, ldc int)
}

// IsMulID reports whether alpha equals sr's multiplicative identity. The
// sequential kernels use this to decide whether a beta-scale of C (or a
// scale of the accumulation itself) can be skipped.
func IsMulID[T any](sr Semiring[T], alpha T) bool {
	return sr.Equal(alpha, sr.MulID())
}

// IsAddID reports whether alpha equals sr's additive identity.
func IsAddID[T any](sr Semiring[T], alpha T) bool {
	return sr.Equal(alpha, sr.AddID())
}

// ScaleByInt returns n*x (for n<0, -|n|*x) using only sr's Add and Neg,
// the seam that lets an integer correction (a sign, a combinatorial
// overcounting factor) be folded into an effective coefficient regardless
// of which concrete type T is.
func ScaleByInt[T any](sr Semiring[T], x T, n int) T {
	if n == 0 {
		return sr.AddID()
	}
	neg := n < 0
	if neg {
		n = -n
	}
	out := x
	for i := 1; i < n; i++ {
		out = sr.Add(out, x)
	}
	if neg {
		out = sr.Neg(out)
	}
	return out
}
