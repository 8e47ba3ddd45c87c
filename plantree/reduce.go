// Copyright ©2026 The CTF Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package plantree

import "github.com/devinamatthews/ctf/comm"

// Reduce combines this process's locally best Cost with every other
// process's in g through one all-reduce that takes the minimum of each of
// NVirt, CommVol and MemUse separately. When every rank proposes the same
// triple the result is that triple. When ranks propose different triples
// the result is the per-field minimum, which is not the lexicographic
// (NVirt, CommVol, MemUse) minimum and need not equal any rank's triple.
//
// Reduce alone does not pick a winning plan identity: since every rank's
// candidate enumeration is built from identical inputs in the same
// deterministic order (spec.md §5), a rank recovers the globally agreed
// plan by rescanning its own local candidate list for the first entry
// whose Cost equals the value Reduce returns. No second round of
// communication is needed to break ties.
func Reduce(g comm.Group, local Cost) (Cost, error) {
	buf := []int64{local.NVirt, local.CommVol, local.MemUse}
	if err := g.AllReduceInt64(comm.Min, buf); err != nil {
		return Cost{}, err
	}
	return Cost{NVirt: buf[0], CommVol: buf[1], MemUse: buf[2]}, nil
}

// BestOf scans candidates (built from a deterministic, input-only
// enumeration) and returns the index of the lexicographically smallest
// Cost, breaking exact ties by lowest index — the canonical tie-break
// spec.md §9 calls for once Reduce has identified the winning triple.
func BestOf(candidates []Cost) int {
	best := 0
	for i := 1; i < len(candidates); i++ {
		if candidates[i].Less(candidates[best]) {
			best = i
		}
	}
	return best
}
