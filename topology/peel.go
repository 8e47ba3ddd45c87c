// Copyright ©2026 The CTF Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package topology

// Peel returns the deduplicated set of all topologies reachable from topo
// by iterated fusion of adjacent dimensions, starting with topo itself.
//
// Fusion is literally additive: fusing dimensions i and i+1 produces one
// dimension of length lens[i]+lens[i+1] (mapping/topology.cxx's
// peel_torus), not lens[i]*lens[i+1]. This does not preserve the total
// process count — see SPEC_FULL.md's Open Question resolution. Callers
// must re-check Topology.Size() against the actual world size before
// accepting a peeled topology as a mapping candidate; Peel itself performs
// no such filtering; it only enumerates.
//
// globalRank is used to re-derive each peeled topology's per-dimension
// Rank/Stride fields.
func Peel(topo Topology, globalRank int) []Topology {
	topos := []Topology{topo}
	peelInto(topo, globalRank, &topos)
	return topos
}

func peelInto(topo Topology, globalRank int, topos *[]Topology) {
	if topo.Order() <= 1 {
		return
	}
	lens := make([]int, topo.Order())
	for i, d := range topo.Dims {
		lens[i] = d.NP
	}

	for i := 0; i < len(lens)-1; i++ {
		fused := make([]int, 0, len(lens)-1)
		fused = append(fused, lens[:i]...)
		fused = append(fused, lens[i]+lens[i+1])
		fused = append(fused, lens[i+2:]...)

		newTopo, err := fromLens(fused, globalRank)
		if err != nil {
			// A fused length can only be non-positive if an input length
			// was; BuildPhysical guarantees positive lengths, so this is
			// unreachable for topologies produced by this package.
			continue
		}
		if findTopology(newTopo, *topos) != -1 {
			continue
		}
		*topos = append(*topos, newTopo)
		peelInto(newTopo, globalRank, topos)
	}
}

// findTopology returns the index of a topology in topos with the same
// per-dimension extents as topo, or -1 if none matches.
func findTopology(topo Topology, topos []Topology) int {
	for i, t := range topos {
		if Equal(t, topo) {
			return i
		}
	}
	return -1
}
