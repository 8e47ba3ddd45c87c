// Copyright ©2026 The CTF Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fold detects when the sequential inner problem of a contraction
// reduces to a single dense matrix multiply and computes the parameters of
// that multiply (spec.md §4.5). Folding never changes what gets computed;
// it only rewrites how the innermost loop nest is executed.
package fold

import (
	"fmt"

	"github.com/devinamatthews/ctf/tensor"
	"gonum.org/v1/gonum/blas"
)

// class identifies which pair of operands an index label belongs to. A
// foldable contraction's indices partition into exactly these three kinds:
// contracted (A∩B, becomes the gemm k dimension), A-external (A∩C, becomes
// m), and B-external (B∩C, becomes n).
type class int

const (
	classK class = iota // contracted: in A and B, not C
	classM              // A-external: in A and C, not B
	classN              // B-external: in B and C, not A
)

// CanFold reports whether the contraction described by idxA, idxB, idxC
// (and the symmetry marks of A, B, C) admits folding into a single gemm:
// every index label touches exactly two of {A,B,C}, and for each operand
// the labels of a given class form one contiguous run that does not split
// any symmetry group.
func CanFold(a, b, c idxSyms) bool {
	classes, ok := classify(a.idx, b.idx, c.idx)
	if !ok {
		return false
	}
	return contiguousByClass(a.idx, classes) && respectsSymmetry(a.idx, a.sym, classes) &&
		contiguousByClass(b.idx, classes) && respectsSymmetry(b.idx, b.sym, classes) &&
		contiguousByClass(c.idx, classes) && respectsSymmetry(c.idx, c.sym, classes)
}

// idxSyms bundles one operand's index map and symmetry marks, the minimal
// shape CanFold and MapFold need without importing a concrete Tensor[T]
// element type.
type idxSyms struct {
	idx []int
	sym []tensor.Sym
}

// Operand wraps a Tensor[T] and its contraction index map into an idxSyms
// view for CanFold/MapFold.
func Operand[T any](t *tensor.Tensor[T], idx []int) idxSyms {
	sym := make([]tensor.Sym, len(t.Modes))
	for i, m := range t.Modes {
		sym[i] = m.Sym
	}
	return idxSyms{idx: idx, sym: sym}
}

func classify(idxA, idxB, idxC []int) (map[int]class, bool) {
	inA, inB, inC := map[int]bool{}, map[int]bool{}, map[int]bool{}
	for _, l := range idxA {
		inA[l] = true
	}
	for _, l := range idxB {
		inB[l] = true
	}
	for _, l := range idxC {
		inC[l] = true
	}
	classes := make(map[int]class)
	all := map[int]bool{}
	for l := range inA {
		all[l] = true
	}
	for l := range inB {
		all[l] = true
	}
	for l := range inC {
		all[l] = true
	}
	for l := range all {
		switch {
		case inA[l] && inB[l] && !inC[l]:
			classes[l] = classK
		case inA[l] && inC[l] && !inB[l]:
			classes[l] = classM
		case inB[l] && inC[l] && !inA[l]:
			classes[l] = classN
		default:
			return nil, false
		}
	}
	return classes, true
}

// contiguousByClass reports whether, for every class value appearing in
// idx, the positions carrying that class form one contiguous block.
func contiguousByClass(idx []int, classes map[int]class) bool {
	first := map[class]int{}
	last := map[class]int{}
	for pos, l := range idx {
		cl := classes[l]
		if _, seen := first[cl]; !seen {
			first[cl] = pos
		}
		last[cl] = pos
	}
	for cl, lo := range first {
		hi := last[cl]
		for p := lo; p <= hi; p++ {
			if classes[idx[p]] != cl {
				return false
			}
		}
	}
	return true
}

func respectsSymmetry(idx []int, sym []tensor.Sym, classes map[int]class) bool {
	i := 0
	for i < len(idx) {
		j := i
		for j < len(sym) && sym[j] != tensor.NS {
			j++
		}
		// group spans modes [i, j]; all labels in it must share one class.
		if j < len(idx) {
			cl := classes[idx[i]]
			for k := i; k <= j && k < len(idx); k++ {
				if classes[idx[k]] != cl {
					return false
				}
			}
		}
		i = j + 1
	}
	return true
}

// InnerParams is the folded matrix-multiply descriptor that becomes a
// sequential leaf's inner_params (spec.md §4.5): gemm(tA, tB, m, n, k, ...)
// with the strides needed to address each operand's folded run directly.
type InnerParams struct {
	TransA, TransB blas.Transpose
	M, N, K        int
	LdA, LdB, LdC  int
}

// MapFold computes the folded gemm triple for a contraction already known
// to CanFold. An A whose index order starts with its contracted run, or a B
// whose index order starts with its B-external run, is handled with a
// transpose flag. C cannot be transposed, so a C whose index order starts
// with its B-external run is rejected with an error, as are labels that do
// not partition into the three classes and contracted extents that differ
// between A and B. Each leading dimension is the product of the padded
// extents of the operand's leading run.
func MapFold[TA, TB, TC any](a *tensor.Tensor[TA], idxA []int, b *tensor.Tensor[TB], idxB []int, c *tensor.Tensor[TC], idxC []int) (*InnerParams, error) {
	classes, ok := classify(idxA, idxB, idxC)
	if !ok {
		return nil, fmt.Errorf("fold: index %v/%v/%v does not partition into exactly-two-operand classes", idxA, idxB, idxC)
	}

	m := runExtent(a, idxA, classes, classM)
	n := runExtent(b, idxB, classes, classN)
	k := runExtent(a, idxA, classes, classK)
	if kb := runExtent(b, idxB, classes, classK); kb != k {
		return nil, fmt.Errorf("fold: contracted extent mismatch A=%d B=%d", k, kb)
	}
	if runStartsWith(idxC, classes, classN) {
		return nil, fmt.Errorf("fold: C index order %v starts with its B-external run", idxC)
	}

	transA := blas.NoTrans
	if runStartsWith(idxA, classes, classK) {
		transA = blas.Trans
	}
	transB := blas.NoTrans
	if runStartsWith(idxB, classes, classN) {
		transB = blas.Trans
	}

	return &InnerParams{
		TransA: transA,
		TransB: transB,
		M:      m,
		N:      n,
		K:      k,
		LdA:    leadingExtent(a, idxA, classes),
		LdB:    leadingExtent(b, idxB, classes),
		LdC:    leadingExtent(c, idxC, classes),
	}, nil
}

func runExtent[T any](t *tensor.Tensor[T], idx []int, classes map[int]class, want class) int {
	n := 1
	for pos, l := range idx {
		if classes[l] == want {
			n *= t.Modes[pos].RawLen
		}
	}
	return n
}

func runStartsWith(idx []int, classes map[int]class, want class) bool {
	return len(idx) > 0 && classes[idx[0]] == want
}

func leadingExtent[T any](t *tensor.Tensor[T], idx []int, classes map[int]class) int {
	if len(idx) == 0 {
		return 1
	}
	lead := classes[idx[0]]
	ld := 1
	for pos, l := range idx {
		if classes[l] != lead {
			break
		}
		ld *= t.Modes[pos].Len
	}
	return ld
}
