// Copyright ©2026 The CTF Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tensor

// PadLen rounds rawLen up to the nearest multiple of chainExtent, the
// cyclic-distribution padding rule of spec.md §3: "a mode's edge_len
// always includes padding so that it is divisible by that mode's total
// physical × virtual factor."
func PadLen(rawLen, chainExtent int) int {
	if chainExtent <= 0 {
		return rawLen
	}
	if rawLen%chainExtent == 0 {
		return rawLen
	}
	return ((rawLen / chainExtent) + 1) * chainExtent
}

// ApplyChain assigns chain to mode i (and, if the mode opens a symmetry
// group, to every mode in that group, per spec.md §4.2's "modes in the
// group must share identical chains") and recomputes Len via PadLen.
func (t *Tensor[T]) ApplyChain(i int, chain Chain) error {
	grp := t.groupContaining(i)
	extent := chain.TotalExtent()
	for j := grp.Start; j < grp.End; j++ {
		t.Modes[j].Chain = chain
		t.Modes[j].Len = PadLen(t.Modes[j].RawLen, extent)
	}
	return t.Validate()
}

// groupContaining returns the SymGroup that mode i belongs to.
func (t *Tensor[T]) groupContaining(i int) SymGroup {
	for _, g := range t.SymGroups() {
		if i >= g.Start && i < g.End {
			return g
		}
	}
	return SymGroup{Start: i, End: i + 1, Mark: NS}
}
