// Copyright ©2026 The CTF Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package symmetry

import "github.com/devinamatthews/ctf/tensor"

// AlignSymmetricIndices returns the multiplicative sign factor that
// compensates for choosing a canonical (ascending-label) ordering of the
// contracted symmetric index sets shared between a and b, per spec.md
// §4.3. A and B's contracted symmetric group must be permutations of one
// another (same labels, possibly reordered); the returned sign is -1 per
// transposition required to go from A's order to B's order when the
// shared group is antisymmetric, and +1 for SY/SH groups regardless of
// order (and for any group with 0 or 1 contracted label).
func AlignSymmetricIndices[TA, TB any](a *tensor.Tensor[TA], idxA []int, b *tensor.Tensor[TB], idxB []int) int {
	sign := 1
	for _, ga := range a.SymGroups() {
		if ga.Mark != tensor.AS {
			continue
		}
		labelsA := idxA[ga.Start:ga.End]
		// Find the matching labels' positions within idxB to count the
		// permutation parity needed to align them.
		posInB := make([]int, len(labelsA))
		found := true
		for i, lbl := range labelsA {
			posInB[i] = -1
			for j, l2 := range idxB {
				if l2 == lbl {
					posInB[i] = j
					break
				}
			}
			if posInB[i] == -1 {
				found = false
				break
			}
		}
		if !found {
			continue
		}
		sign *= permutationParity(posInB)
	}
	return sign
}

// permutationParity returns +1 if the permutation that sorts vals into
// ascending order is even, -1 if odd (a bubble-sort inversion count
// parity, adequate for the small symmetric-group widths this engine
// deals with).
func permutationParity(vals []int) int {
	v := append([]int(nil), vals...)
	parity := 1
	for i := 0; i < len(v); i++ {
		for j := 0; j < len(v)-i-1; j++ {
			if v[j] > v[j+1] {
				v[j], v[j+1] = v[j+1], v[j]
				parity = -parity
			}
		}
	}
	return parity
}
