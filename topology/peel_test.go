// Copyright ©2026 The CTF Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package topology

import (
	"strconv"
	"testing"
)

func TestPeelIncludesOriginal(t *testing.T) {
	topo, _ := BuildPhysical(Generic, 12, 0)
	topos := Peel(topo, 0)
	if !Equal(topos[0], topo) {
		t.Errorf("Peel()[0] != original topology")
	}
}

func TestPeelFusesAdjacentAdditively(t *testing.T) {
	// A 3x2x2 topology should peel to include a 5x2 (3+2 fused) and a
	// 3x4 (2+2 fused), among others -- additive, not multiplicative.
	topo := Topology{Dims: []Dim{{NP: 3}, {NP: 2}, {NP: 2}}}
	topos := Peel(topo, 0)

	want := []Topology{
		{Dims: []Dim{{NP: 5}, {NP: 2}}},
		{Dims: []Dim{{NP: 3}, {NP: 4}}},
	}
	for _, w := range want {
		if findTopology(w, topos) == -1 {
			t.Errorf("Peel() missing fused topology with extents %v", dimLens(w))
		}
	}
}

func TestPeelDeduplicates(t *testing.T) {
	// A 2x2x2 topology peels (2,2)+(2) and (2)+(2,2) to the same 4x2 /
	// 2x4 multiset of extents from different fusion paths; verify no
	// duplicate (same ordered extents) topology appears twice.
	topo := Topology{Dims: []Dim{{NP: 2}, {NP: 2}, {NP: 2}}}
	topos := Peel(topo, 0)
	seen := make(map[string]bool)
	for _, tp := range topos {
		key := fmtLens(dimLens(tp))
		if seen[key] {
			t.Errorf("Peel() produced duplicate topology %s", key)
		}
		seen[key] = true
	}
}

func TestPeelSingleDimUnchanged(t *testing.T) {
	topo := Topology{Dims: []Dim{{NP: 8}}}
	topos := Peel(topo, 0)
	if len(topos) != 1 {
		t.Errorf("Peel() on 1-D topology = %d results, want 1", len(topos))
	}
}

func dimLens(t Topology) []int {
	lens := make([]int, len(t.Dims))
	for i, d := range t.Dims {
		lens[i] = d.NP
	}
	return lens
}

func fmtLens(lens []int) string {
	s := ""
	for _, l := range lens {
		s += strconv.Itoa(l) + ","
	}
	return s
}
