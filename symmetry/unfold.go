// Copyright ©2026 The CTF Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package symmetry

import "github.com/devinamatthews/ctf/tensor"

// ResymmetrizeRule describes how to restore a symmetry invariant on an
// operand (normally C) after contracting against a surrogate whose
// symmetry mark was downgraded to NS at one position, per
// unfold_broken_sym (spec.md §4.3).
type ResymmetrizeRule struct {
	// GroupStart, GroupEnd is the half-open mode range of the symmetry
	// group that must be restored (tensor.SymGroup's range).
	GroupStart, GroupEnd int
	Mark                 tensor.Sym
}

// UnfoldBrokenSym inspects t's symmetry groups against idxMap: whenever a
// group's labels are not all simultaneously contracted or all
// simultaneously free (the index map treats the symmetric partners
// asymmetrically), it returns a surrogate tensor whose Sym marks in that
// group are downgraded to NS, plus the rule that restores the invariant
// on the result once the desymmetrized contraction has been carried out.
//
// broken is false, surrogate == t, and rules == nil when every group in t
// is treated uniformly by idxMap (nothing to unfold).
func UnfoldBrokenSym[T any](t *tensor.Tensor[T], idxMap []int, contracted map[int]bool) (surrogate *tensor.Tensor[T], rules []ResymmetrizeRule, broken bool) {
	groups := t.SymGroups()
	needsUnfold := false
	for _, g := range groups {
		if g.Mark == tensor.NS {
			continue
		}
		if mixedContraction(idxMap, contracted, g) {
			needsUnfold = true
			break
		}
	}
	if !needsUnfold {
		return t, nil, false
	}

	out := &tensor.Tensor[T]{Ring: t.Ring, Modes: make([]tensor.Mode, t.Order()), Data: t.Data}
	copy(out.Modes, t.Modes)
	for _, g := range groups {
		if g.Mark == tensor.NS || !mixedContraction(idxMap, contracted, g) {
			continue
		}
		for k := g.Start; k < g.End; k++ {
			out.Modes[k].Sym = tensor.NS
		}
		rules = append(rules, ResymmetrizeRule{GroupStart: g.Start, GroupEnd: g.End, Mark: g.Mark})
	}
	return out, rules, true
}

func mixedContraction(idxMap []int, contracted map[int]bool, g tensor.SymGroup) bool {
	allIn, allOut := true, true
	for k := g.Start; k < g.End; k++ {
		if contracted[idxMap[k]] {
			allOut = false
		} else {
			allIn = false
		}
	}
	return !allIn && !allOut
}
