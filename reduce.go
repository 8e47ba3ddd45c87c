// Copyright ©2026 The CTF Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ctf

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/devinamatthews/ctf/tensor"
)

// ReduceOp names the global scalar reductions spec.md §6's Reduce
// operation supports.
type ReduceOp int

const (
	// ReduceSum computes the sum of every raw element.
	ReduceSum ReduceOp = iota
	// ReduceSumAbs computes the sum of absolute values.
	ReduceSumAbs
	// ReduceNorm2 computes the Euclidean (2-)norm.
	ReduceNorm2
	// ReduceMax computes the maximum element.
	ReduceMax
	// ReduceMin computes the minimum element.
	ReduceMin
	// ReduceMaxAbs computes the maximum absolute value.
	ReduceMaxAbs
	// ReduceMinAbs computes the minimum absolute value.
	ReduceMinAbs
)

// Reduce computes a global scalar reduction of t's stored elements
// (spec.md §6, §9 "Asymmetric reductions"). Reduce is defined only for
// float64: a semiring's abstract element type carries no ordering or
// absolute value, so max/min/norm reductions need the concrete type this
// module's BLAS-backed Float64 semiring wraps (package semiring), the
// same restriction gonum/floats itself operates under.
//
// Reduce runs over every element of t.Data. Tensor storage is dense
// (package tensor stores both halves of a symmetric or antisymmetric pair),
// so for an AS-marked tensor ReduceMin is the plain minimum over all
// entries, mirror entries included; no symmetry-based substitution is
// made for any op.
func Reduce(w *World, t *tensor.Tensor[float64], op ReduceOp) (float64, error) {
	if w.Group.Size() > 1 {
		return 0, &CollaboratorFailureError{Op: "Reduce", Err: fmt.Errorf("reduction across %d ranks requires a networked messaging collaborator, which this module does not ship", w.Group.Size())}
	}
	if len(t.Data) == 0 {
		return identityFor(op), nil
	}

	switch op {
	case ReduceSum:
		return floats.Sum(t.Data), nil
	case ReduceSumAbs:
		return floats.Norm(t.Data, 1), nil
	case ReduceNorm2:
		return floats.Norm(t.Data, 2), nil
	case ReduceMax:
		return floats.Max(t.Data), nil
	case ReduceMin:
		return floats.Min(t.Data), nil
	case ReduceMaxAbs:
		m := math.Abs(t.Data[0])
		for _, v := range t.Data[1:] {
			if a := math.Abs(v); a > m {
				m = a
			}
		}
		return m, nil
	case ReduceMinAbs:
		m := math.Abs(t.Data[0])
		for _, v := range t.Data[1:] {
			if a := math.Abs(v); a < m {
				m = a
			}
		}
		return m, nil
	default:
		return 0, &InvalidArgumentError{Op: "Reduce", Err: fmt.Errorf("unknown reduce op %d", op)}
	}
}

func identityFor(op ReduceOp) float64 {
	switch op {
	case ReduceMax, ReduceMaxAbs:
		return math.Inf(-1)
	case ReduceMin, ReduceMinAbs:
		return math.Inf(1)
	default:
		return 0
	}
}
