// Copyright ©2026 The CTF Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ctf

import (
	"fmt"

	"github.com/devinamatthews/ctf/semiring"
	"github.com/devinamatthews/ctf/tensor"
)

// Scale evaluates T[idxT] = alpha*T[idxT] in place (spec.md §6's third
// operation). idxT is accepted for symmetry with Contract/Sum's signature
// and validated against t's order, but scaling is elementwise and needs no
// label information: every raw element of t is touched exactly once
// regardless of any symmetry mark, since a uniform scalar multiple of a
// packed tensor's stored half equals the same multiple of its full
// antisymmetric/symmetric expansion.
func Scale[T any](sr semiring.Semiring[T], alpha T, t *tensor.Tensor[T], idxT []int) error {
	if len(idxT) != t.Order() {
		return &InvalidArgumentError{Op: "Scale", Err: fmt.Errorf("index map length does not match operand order")}
	}
	if semiring.IsMulID(sr, alpha) || len(t.Data) == 0 {
		return nil
	}
	sr.Scal(len(t.Data), alpha, t.Data, 1)
	return nil
}
