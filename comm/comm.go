// Copyright ©2026 The CTF Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package comm declares the messaging collaborator this engine consumes.
// The distributed messaging layer itself (collectives over process
// subgroups) is out of scope for this module (spec.md §1); Group is the
// seam the planner and plan-tree nodes program against, the same role
// blas.Float64 plays for package semiring.
package comm

import "fmt"

// Op names a reduction operator applied elementwise across ranks.
type Op int

const (
	// Min reduces by taking the elementwise minimum across ranks.
	Min Op = iota
	// Sum reduces by taking the elementwise sum across ranks.
	Sum
)

func (op Op) String() string {
	switch op {
	case Min:
		return "min"
	case Sum:
		return "sum"
	default:
		return fmt.Sprintf("Op(%d)", int(op))
	}
}

// Group is a process (sub)group capable of collective operations. Every
// call is a blocking barrier (spec.md §5): it does not return on any rank
// until all ranks in the group have entered the call.
type Group interface {
	// Size returns the number of ranks in the group.
	Size() int
	// Rank returns this process's rank within the group, in [0, Size()).
	Rank() int

	// AllReduceInt64 reduces buf elementwise across all ranks in the group
	// using op, and leaves the result in buf on every rank.
	AllReduceInt64(op Op, buf []int64) error

	// Broadcast sends buf from root to every other rank in the group,
	// overwriting buf in place on receivers.
	Broadcast(root int, buf []byte) error
}

// ErrorAllReduce combines a possibly-nil local error across every rank of
// g so that either every rank observes the same error or every rank
// observes success (spec.md §7 propagation rule). A nil localErr reduces
// to a nil error unless some other rank's localErr was non-nil.
func ErrorAllReduce(g Group, localErr error) error {
	var flag int64
	if localErr != nil {
		flag = 1
	}
	buf := []int64{flag}
	if err := g.AllReduceInt64(Sum, buf); err != nil {
		return err
	}
	if buf[0] == 0 {
		return nil
	}
	if localErr != nil {
		return localErr
	}
	return fmt.Errorf("comm: a peer rank reported an error")
}
