// Copyright ©2026 The CTF Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package planner

import (
	"context"
	"testing"

	"github.com/devinamatthews/ctf/comm"
	"github.com/devinamatthews/ctf/plantree"
	"github.com/devinamatthews/ctf/topology"
)

func TestJoinedIndicesPresenceMask(t *testing.T) {
	info := JoinedIndices([]int{0, 1}, []int{1, 2}, []int{0, 2})
	got := map[int]IndexInfo{}
	for _, ii := range info {
		got[ii.Label] = ii
	}
	if len(got) != 3 {
		t.Fatalf("len(info) = %d, want 3", len(got))
	}
	if ii := got[0]; !ii.InA || ii.InB || !ii.InC {
		t.Errorf("label 0 mask = %+v, want {InA,InC}", ii)
	}
	if ii := got[1]; !ii.InA || !ii.InB || ii.InC {
		t.Errorf("label 1 mask = %+v, want {InA,InB}", ii)
	}
	if ii := got[2]; ii.InA || !ii.InB || !ii.InC {
		t.Errorf("label 2 mask = %+v, want {InB,InC}", ii)
	}
}

func TestBuildSingleProcessRunsWinningLeaf(t *testing.T) {
	topo, err := topology.BuildPhysical(topology.SingleDim, 1, 0)
	if err != nil {
		t.Fatalf("BuildPhysical: %v", err)
	}
	ran := false
	leaf := func(m Mapping) (ExecFunc, plantree.Cost, error) {
		return func(ctx context.Context) error {
			ran = true
			return nil
		}, plantree.Cost{CommVol: 0, MemUse: 64}, nil
	}
	node, err := Build(comm.Local{}, []topology.Topology{topo}, []int{0, 1, 2}, []int{1}, leaf, nil, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := node.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !ran {
		t.Errorf("expected the winning plan's leaf to run")
	}
}

func TestBuildNoValidMapping(t *testing.T) {
	topo, err := topology.BuildPhysical(topology.SingleDim, 1, 0)
	if err != nil {
		t.Fatalf("BuildPhysical: %v", err)
	}
	leaf := func(m Mapping) (ExecFunc, plantree.Cost, error) {
		return nil, plantree.Cost{}, errRejected
	}
	_, err = Build(comm.Local{}, []topology.Topology{topo}, []int{0}, []int{1}, leaf, nil, nil)
	if err != ErrNoValidMapping {
		t.Fatalf("Build error = %v, want ErrNoValidMapping", err)
	}
}

func TestBuildInsufficientMemory(t *testing.T) {
	topo, err := topology.BuildPhysical(topology.SingleDim, 1, 0)
	if err != nil {
		t.Fatalf("BuildPhysical: %v", err)
	}
	leaf := func(m Mapping) (ExecFunc, plantree.Cost, error) {
		return func(ctx context.Context) error { return nil }, plantree.Cost{MemUse: 1 << 20}, nil
	}
	_, err = Build(comm.Local{}, []topology.Topology{topo}, []int{0}, []int{1}, leaf, func() int64 { return 1024 }, nil)
	if _, ok := err.(*InsufficientMemoryError); !ok {
		t.Fatalf("Build error = %v (%T), want *InsufficientMemoryError", err, err)
	}
}

func TestBuildPicksLowerCommVolCandidate(t *testing.T) {
	topo, err := topology.BuildPhysical(topology.SingleDim, 1, 0)
	if err != nil {
		t.Fatalf("BuildPhysical: %v", err)
	}
	calls := 0
	leaf := func(m Mapping) (ExecFunc, plantree.Cost, error) {
		calls++
		cv := int64(100)
		if m.Assignments[0].GridDim == 0 {
			cv = 10
		}
		return func(ctx context.Context) error { return nil }, plantree.Cost{CommVol: cv}, nil
	}
	node, err := Build(comm.Local{}, []topology.Topology{topo}, []int{0}, []int{1, 2}, leaf, nil, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if node.Cost().CommVol != 10 {
		t.Errorf("winning plan CommVol = %d, want 10 (the lower-cost grid-mapped candidate at NVirt=1)", node.Cost().CommVol)
	}
}

var errRejected = testErr("rejected")

type testErr string

func (e testErr) Error() string { return string(e) }
