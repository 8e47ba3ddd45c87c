// Copyright ©2026 The CTF Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ctf

import (
	"fmt"

	"github.com/devinamatthews/ctf/redist"
	"github.com/devinamatthews/ctf/tensor"
)

// homeSurrogate clones t's descriptor (not its data) into a working
// tensor that contraction/summation proceeds on, retaining the same Data
// slice and mapping chains, per spec.md §4.8: "avoid copying user data on
// contraction entry — only on exit, and only if the mapping changed." A
// tensor that was not IsHome on entry is returned unchanged: only
// operands presenting their original, caller-owned layout need this
// bookkeeping.
func homeSurrogate[T any](t *tensor.Tensor[T]) *tensor.Tensor[T] {
	if !t.IsHome {
		return t
	}
	cp := *t
	cp.Modes = append([]tensor.Mode(nil), t.Modes...)
	cp.IsHome = false
	cp.HasHome = true
	cp.Home = t
	return &cp
}

// restoreHome runs one operand's exit-side home-buffer restoration
// (spec.md §4.8): if the surrogate's per-mode mapping differs from the
// home tensor's, remap the surrogate back to the home mapping and copy
// its data into the home buffer; otherwise alias the home buffer to the
// surrogate's data without copying. A surrogate with no Home (t was never
// IsHome, or restoreHome already ran for it) is a no-op.
func restoreHome[T any](r redist.Redistributor[T], surrogate *tensor.Tensor[T]) error {
	home := surrogate.Home
	if home == nil {
		return nil
	}
	defer func() { surrogate.Home = nil }()

	if chainsEqual(surrogate.Modes, home.Modes) {
		home.Data = surrogate.Data
		return nil
	}

	target := make([]tensor.Chain, len(home.Modes))
	for i, m := range home.Modes {
		target[i] = m.Chain
	}
	if err := r.Remap(surrogate, target); err != nil {
		return fmt.Errorf("ctf: restoring home layout: %w", err)
	}
	if len(home.Data) != len(surrogate.Data) {
		home.Data = make([]T, len(surrogate.Data))
	}
	copy(home.Data, surrogate.Data)
	return nil
}

func chainsEqual(a, b []tensor.Mode) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Chain.Equal(b[i].Chain) {
			return false
		}
	}
	return true
}

// restoreHomes runs restoreHome for a, b, then c in that order — spec.md
// §4.8's "C's home restore runs after A's and B's, so that a contraction
// of the form C += A·A (A aliased) is handled safely": A's restoration
// (a read-only operand) can never observe C's buffer being swapped out
// from under it if C is restored last.
func restoreHomes[TA, TB, TC any](ra redist.Redistributor[TA], a *tensor.Tensor[TA], rb redist.Redistributor[TB], b *tensor.Tensor[TB], rc redist.Redistributor[TC], c *tensor.Tensor[TC]) error {
	if err := restoreHome(ra, a); err != nil {
		return err
	}
	if err := restoreHome(rb, b); err != nil {
		return err
	}
	return restoreHome(rc, c)
}
