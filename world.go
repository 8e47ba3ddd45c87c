// Copyright ©2026 The CTF Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ctf

import (
	"github.com/devinamatthews/ctf/comm"
	"github.com/devinamatthews/ctf/redist"
)

// World is the process group a contraction, summation, scale, or reduce
// runs over; the redistribution collaborator used to restore home buffers
// (spec.md §4.8) is not stored in it but chosen by redistributorFor. Grounded on ctf_world.h's world object, the
// handle every top-level tensor operation in the original source takes.
type World struct {
	Group comm.Group
}

// NewWorld returns a World over g. A nil g defaults to comm.Local{}, the
// single-process reference collaborator.
func NewWorld(g comm.Group) *World {
	if g == nil {
		g = comm.Local{}
	}
	return &World{Group: g}
}

// redistributorFor returns the Redistributor[T] this World uses to
// restore home buffers and to honor any mapping change a plan's execution
// requires. Only the single-process reference implementation is shipped
// in this module (package redist); a real networked redistributor is the
// out-of-scope collaborator named in spec.md §1.
func redistributorFor[T any](w *World) redist.Redistributor[T] {
	return redist.Local[T]{}
}
