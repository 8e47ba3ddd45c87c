// Copyright ©2026 The CTF Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tensor

import (
	"fmt"

	"github.com/devinamatthews/ctf/topology"
)

// Operand names one of the three tensors a contraction or summation
// operates on.
type Operand int

const (
	OperandA Operand = iota
	OperandB
	OperandC
)

// IndexOccurrence records, for one contraction index label, which modes of
// which operands carry it (spec.md §4.4 step 1's "3-bit presence mask",
// generalized to carry the mode positions needed to build mapping chains
// and plan-tree nodes).
type IndexOccurrence struct {
	Label    int
	Operands []Operand
	Modes    []int // Modes[k] is the mode index within Operands[k]
}

// Assignment is one candidate mapping: for each contraction index label, a
// grid dimension id (or -1 if the label is not given a PHYSICAL factor)
// and a virtualization factor.
type Assignment struct {
	Label    int
	GridDim  int // -1 if purely virtual
	VirtFact int // >=1
}

// BuildChain constructs the mapping chain a label's Assignment implies,
// given gridExtent, the extent of the assigned grid dimension: one
// PHYSICAL factor (if GridDim>=0) of that extent, followed by one VIRTUAL
// factor of VirtFact.
func (a Assignment) BuildChain(gridExtent int) Chain {
	var chain Chain
	if a.GridDim >= 0 {
		chain = append(chain, Factor{Physical: true, Dim: a.GridDim, Extent: gridExtent})
	}
	v := a.VirtFact
	if v < 1 {
		v = 1
	}
	chain = append(chain, Factor{Physical: false, Extent: v})
	return chain
}

// CheckMapping validates a candidate assignment of grid dimensions to
// index labels. It checks only that every assigned grid dimension exists
// in topo and that no grid dimension is claimed by two different labels.
// It does not look at symmetry groups: labels of one symmetric group with
// different Assignments are not rejected here. Whether each mode's
// factorization divides its padded edge length is checked by
// Tensor.Validate via ApplyChain, not here.
func CheckMapping(topo topology.Topology, assignments []Assignment) error {
	usedDims := make(map[int]int) // gridDim -> label that claimed it
	for _, a := range assignments {
		if a.GridDim < 0 {
			continue
		}
		if a.GridDim >= topo.Order() {
			return fmt.Errorf("mapping: label %d assigned grid dim %d, topology only has %d dims", a.Label, a.GridDim, topo.Order())
		}
		if owner, ok := usedDims[a.GridDim]; ok && owner != a.Label {
			return fmt.Errorf("mapping: grid dim %d claimed by both label %d and label %d", a.GridDim, owner, a.Label)
		}
		usedDims[a.GridDim] = a.Label
	}
	return nil
}

// CandidateMappings enumerates assignments of topo's grid dimensions to
// the given index labels, one grid dimension per label at most (including
// the all-virtual assignment), plus a virtualization factor per index
// chosen from virtFactors. This is a simple product enumeration; the
// planner (package planner) is responsible for scoring and selecting
// among the candidates CheckMapping accepts (spec.md §4.4's "enumerates
// candidate mappings ... passes each to check_mapping").
func CandidateMappings(topo topology.Topology, labels []int, virtFactors []int) [][]Assignment {
	if len(virtFactors) == 0 {
		virtFactors = []int{1}
	}
	var out [][]Assignment
	var rec func(i int, used map[int]bool, cur []Assignment)
	rec = func(i int, used map[int]bool, cur []Assignment) {
		if i == len(labels) {
			cp := make([]Assignment, len(cur))
			copy(cp, cur)
			out = append(out, cp)
			return
		}
		for _, v := range virtFactors {
			// Unmapped (purely virtual) choice.
			rec(i+1, used, append(cur, Assignment{Label: labels[i], GridDim: -1, VirtFact: v}))
			for d := 0; d < topo.Order(); d++ {
				if used[d] {
					continue
				}
				used[d] = true
				rec(i+1, used, append(cur, Assignment{Label: labels[i], GridDim: d, VirtFact: v}))
				delete(used, d)
			}
		}
	}
	rec(0, map[int]bool{}, nil)
	return out
}
