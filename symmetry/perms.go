// Copyright ©2026 The CTF Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package symmetry

import "github.com/devinamatthews/ctf/tensor"

// SignedPerm is one term of a sum-of-permutations expansion: idxMap is a
// relabeling of the original index map for one operand, and Sign is the
// coefficient (the original α times ±1) to contract with.
type SignedPerm struct {
	IdxMap []int
	Sign   int
}

// GetSymPerms enumerates the minimal set of signed permutations of the
// labels in group g of idxMap that, when applied as independent
// contractions and summed, recover the symmetric result without
// desymmetrizing t (spec.md §4.3). For SY/SH groups every permutation has
// sign +1; for AS groups the sign is the parity of the permutation
// relative to the group's natural order.
func GetSymPerms(mark tensor.Sym, idxMap []int, g tensor.SymGroup) []SignedPerm {
	labels := append([]int(nil), idxMap[g.Start:g.End]...)
	var perms [][]int
	permute(labels, 0, &perms)

	out := make([]SignedPerm, 0, len(perms))
	for _, p := range perms {
		sign := 1
		if mark == tensor.AS {
			sign = parityRelativeTo(labels, p)
		}
		full := append([]int(nil), idxMap...)
		copy(full[g.Start:g.End], p)
		out = append(out, SignedPerm{IdxMap: full, Sign: sign})
	}
	return out
}

func permute(a []int, k int, out *[][]int) {
	if k == len(a) {
		cp := append([]int(nil), a...)
		*out = append(*out, cp)
		return
	}
	for i := k; i < len(a); i++ {
		a[k], a[i] = a[i], a[k]
		permute(a, k+1, out)
		a[k], a[i] = a[i], a[k]
	}
}

// parityRelativeTo returns +1/-1 for whether perm is an even/odd
// rearrangement of base (both are permutations of the same multiset).
func parityRelativeTo(base, perm []int) int {
	pos := make(map[int][]int, len(base))
	for i, v := range base {
		pos[v] = append(pos[v], i)
	}
	idx := make([]int, len(perm))
	for i, v := range perm {
		choices := pos[v]
		idx[i] = choices[0]
		pos[v] = choices[1:]
	}
	return permutationParity(idx)
}
