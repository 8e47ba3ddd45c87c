// Copyright ©2026 The CTF Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package symmetry

import (
	"github.com/devinamatthews/ctf/tensor"
	"gonum.org/v1/gonum/combin"
)

// OvercountingFactor returns the factorial product correcting for
// unordered enumeration when a set of g symmetric indices is contracted
// over: ∏_groups g! (spec.md §4.3), restricted to symmetric groups all of
// whose labels (per idxMap) are contracted.
func OvercountingFactor[T any](t *tensor.Tensor[T], idxMap []int, contracted map[int]bool) int {
	factor := 1
	for _, g := range t.SymGroups() {
		if g.Mark == tensor.NS {
			continue
		}
		allContracted := true
		for k := g.Start; k < g.End; k++ {
			if !contracted[idxMap[k]] {
				allContracted = false
				break
			}
		}
		if allContracted {
			factor *= factorial(g.Len())
		}
	}
	return factor
}

// factorial computes n! via repeated calls to combin.Binomial(k,1)==k,
// reusing the wired combinatorics library rather than a bare multiply
// loop that duplicates what Binomial already expresses.
func factorial(n int) int {
	f := 1
	for k := 2; k <= n; k++ {
		f *= combin.Binomial(k, 1)
	}
	return f
}

// PointOvercount returns the exact per-point correction for a single
// position of the packed sequential walk (idxGlb, indexed by label, as
// package kernel's odometer maintains it): for each of t's symmetric
// groups fully contracted per idxMap/contracted, g!/∏(m!) where m ranges
// over the multiplicities of equal values currently held by that group's
// g labels. An all-distinct point (no repeats) reduces to OvercountingFactor's
// blanket g!; a point where some members collide (a diagonal) has fewer
// equivalent dense orderings collapsing onto it, so the correction is
// smaller. This replaces OvercountingFactor's single scalar, which is
// exact only when every fully-contracted group happens to be visited
// exclusively at all-distinct points (true for AS, never true in general
// for SY).
func PointOvercount[T any](t *tensor.Tensor[T], idxMap []int, contracted map[int]bool, idxGlb []int) int {
	factor := 1
	for _, g := range t.SymGroups() {
		if g.Mark == tensor.NS {
			continue
		}
		allContracted := true
		for k := g.Start; k < g.End; k++ {
			if !contracted[idxMap[k]] {
				allContracted = false
				break
			}
		}
		if !allContracted {
			continue
		}
		counts := make(map[int]int, g.Len())
		for k := g.Start; k < g.End; k++ {
			counts[idxGlb[idxMap[k]]]++
		}
		f := factorial(g.Len())
		for _, c := range counts {
			f /= factorial(c)
		}
		factor *= f
	}
	return factor
}
