// Copyright ©2026 The CTF Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package comm

// Local is the single-rank reference Group: every collective is a no-op
// because there is only one participant. It plays the same role for
// package comm that native.Implementation plays for blas64 when no
// optimized backend is linked in — a correct, unoptimized default used
// directly by single-process callers and as the baseline in tests.
type Local struct{}

var _ Group = Local{}

func (Local) Size() int { return 1 }
func (Local) Rank() int { return 0 }

func (Local) AllReduceInt64(op Op, buf []int64) error {
	// A single rank's reduction is the identity: min(x) == sum(x) == x.
	return nil
}

func (Local) Broadcast(root int, buf []byte) error {
	if root != 0 {
		return nil
	}
	return nil
}
