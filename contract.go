// Copyright ©2026 The CTF Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ctf

import (
	"context"
	"fmt"

	"github.com/devinamatthews/ctf/fold"
	"github.com/devinamatthews/ctf/kernel"
	"github.com/devinamatthews/ctf/planner"
	"github.com/devinamatthews/ctf/plantree"
	"github.com/devinamatthews/ctf/semiring"
	"github.com/devinamatthews/ctf/symmetry"
	"github.com/devinamatthews/ctf/tensor"
	"github.com/devinamatthews/ctf/topology"
)

// Contract evaluates C[idxC] = beta*C[idxC] + alpha*A[idxA]*B[idxB]
// (spec.md §1, §6), driving the full pipeline of §2's data flow: diagonal
// normalization, symmetry alignment/desymmetrization, mapping search,
// plan tree construction and execution, and home-buffer restoration.
func Contract[T any](ctx context.Context, w *World, sr semiring.Semiring[T], alpha T, A *tensor.Tensor[T], idxA []int, B *tensor.Tensor[T], idxB []int, beta T, C *tensor.Tensor[T], idxC []int) error {
	if len(idxA) != A.Order() || len(idxB) != B.Order() || len(idxC) != C.Order() {
		return &InvalidArgumentError{Op: "Contract", Err: fmt.Errorf("index map length does not match operand order")}
	}

	// Zero-edge-length short-circuit (spec.md §7): scale C by beta and
	// return without touching A or B at all.
	if A.HasZeroEdgeLen() || B.HasZeroEdgeLen() || C.HasZeroEdgeLen() {
		if !semiring.IsMulID(sr, beta) && len(C.Data) > 0 {
			sr.Scal(len(C.Data), beta, C.Data, 1)
		}
		return nil
	}

	aHome, bHome, cHome := homeSurrogate(A), homeSurrogate(B), homeSurrogate(C)
	ra, rb, rc := redistributorFor[T](w), redistributorFor[T](w), redistributorFor[T](w)
	defer func() { restoreHomes(ra, aHome, rb, bHome, rc, cHome) }()

	a, idxA2, stripped := extractDiagsAll(aHome, append([]int(nil), idxA...), nil)
	b, idxB2, stripped := extractDiagsAll(bHome, append([]int(nil), idxB...), stripped)
	c, idxC2 := cHome, append([]int(nil), idxC...)

	contracted := contractedLabels(idxA2, idxB2, idxC2)

	// Selection policy (spec.md §4.3): a symmetry group whose labels are
	// mixed between contracted and free is desymmetrized; a group whose
	// labels are all contracted or all free keeps its mark, and the kernel
	// walks its packed half with the per-point overcounting correction below.
	// Tensor storage is dense regardless of symmetry marks (package
	// tensor), so downgrading a broken group's mark to NS on the surrogate
	// is enough by itself to make the kernel visit that group's full range
	// rather than its packed half — no separate resymmetrize pass over C
	// is needed afterward.
	aUnf, _, _ := symmetry.UnfoldBrokenSym(a, idxA2, contracted)
	bUnf, _, _ := symmetry.UnfoldBrokenSym(b, idxB2, contracted)

	sign := symmetry.AlignSymmetricIndices(aUnf, idxA2, bUnf, idxB2)
	effAlpha := scaleByInt(sr, alpha, sign)

	// The overcounting correction (spec.md §4.3/§8 invariant 4) is exact
	// only when applied per visited point, not as a single blanket scalar:
	// a fully-contracted symmetric group overcounts by g! at an
	// all-distinct point but by less at a diagonal one. Which operand's
	// groups matter is decided structurally, once, the same way the old
	// blanket scalar picked a side (A's groups unless they contribute no
	// correction at all, in which case B's); the correction itself is then
	// evaluated fresh at every point kernel.ContractInner visits.
	overcountOperand, overcountIdx := aUnf, idxA2
	if symmetry.OvercountingFactor(aUnf, idxA2, contracted) == 1 {
		overcountOperand, overcountIdx = bUnf, idxB2
	}
	overcountFn := func(idxGlb []int) int {
		return symmetry.PointOvercount(overcountOperand, overcountIdx, contracted, idxGlb)
	}

	joined := planner.JoinedIndices(idxA2, idxB2, idxC2)
	labels := make([]int, len(joined))
	for i, ii := range joined {
		labels[i] = ii.Label
	}

	topos, err := candidateTopologies(w)
	if err != nil {
		return &CollaboratorFailureError{Op: "Contract", Err: err}
	}

	leaf := func(m planner.Mapping) (planner.ExecFunc, plantree.Cost, error) {
		aCand, bCand, cCand := cloneModes(aUnf), cloneModes(bUnf), cloneModes(c)
		if err := applyAssignment(aCand, idxA2, m.Topo, m.Assignments); err != nil {
			return nil, plantree.Cost{}, err
		}
		if err := applyAssignment(bCand, idxB2, m.Topo, m.Assignments); err != nil {
			return nil, plantree.Cost{}, err
		}
		if err := applyAssignment(cCand, idxC2, m.Topo, m.Assignments); err != nil {
			return nil, plantree.Cost{}, err
		}

		var inner *fold.InnerParams
		if fold.CanFold(fold.Operand(aCand, idxA2), fold.Operand(bCand, idxB2), fold.Operand(cCand, idxC2)) {
			if ip, ferr := fold.MapFold(aCand, idxA2, bCand, idxB2, cCand, idxC2); ferr == nil {
				inner = ip
			}
		}

		exec := func(ctx context.Context) error {
			// A folded block (inner != nil) covers a whole dense run with
			// one gemm, so kernel.ContractInner requires empty index maps
			// for it (fold.CanFold only ever succeeds when every label
			// partitions cleanly into the gemm's M/N/K classes, leaving
			// nothing for an outer walk to iterate) and never needs a
			// per-point overcounting correction: the dense run it reads
			// already contains every element, packed-half restriction and
			// all, so there is no overcounting to correct for.
			ia, ib, ic, oc := idxA2, idxB2, idxC2, overcountFn
			if inner != nil {
				ia, ib, ic, oc = nil, nil, nil, nil
			}
			return kernel.ContractInner(sr, effAlpha, aCand, ia, bCand, ib, beta, cCand, ic, inner, oc)
		}
		cost := plantree.Cost{
			CommVol: 0,
			MemUse:  int64(len(aCand.Data) + len(bCand.Data) + len(cCand.Data)),
		}
		return exec, cost, nil
	}

	plan, err := planner.Build(w.Group, topos, labels, []int{1}, leaf, nil, stripped)
	if err != nil {
		return err
	}
	if err := plan.Run(ctx); err != nil {
		return fmt.Errorf("ctf: running contraction plan: %w", err)
	}
	return nil
}

// candidateTopologies builds the topology search space of spec.md §4.1
// for w's process group: the single-dim physical topology plus every
// peeling of it whose dimension-extent product still matches the actual
// process count (SPEC_FULL.md's "Peeling extent rule" resolution: a
// peeled topology that fails that check is excluded from the candidate
// set rather than causing an error).
func candidateTopologies(w *World) ([]topology.Topology, error) {
	np, rank := w.Group.Size(), w.Group.Rank()
	base, err := topology.BuildPhysical(topology.SingleDim, np, rank)
	if err != nil {
		return nil, err
	}
	var valid []topology.Topology
	for _, t := range topology.Peel(base, rank) {
		if t.Size() == np {
			valid = append(valid, t)
		}
	}
	return valid, nil
}

// extractDiagsAll applies symmetry.ExtractDiag repeatedly until idx has no
// repeated labels left, returning the fully reduced tensor/index map and
// stripped appended with each repeated label collapsed along the way
// (spec.md §4.3's iterative diagonal normalization).
func extractDiagsAll[T any](t *tensor.Tensor[T], idx []int, stripped []int) (*tensor.Tensor[T], []int, []int) {
	for {
		lbl, has := firstRepeat(idx)
		if !has {
			return t, idx, stripped
		}
		reduced, ridx, ok, err := symmetry.ExtractDiag(t, idx)
		if err != nil || !ok {
			return t, idx, stripped
		}
		stripped = append(stripped, lbl)
		t, idx = reduced, ridx
	}
}

func firstRepeat(idx []int) (int, bool) {
	seen := make(map[int]bool, len(idx))
	for _, l := range idx {
		if seen[l] {
			return l, true
		}
		seen[l] = true
	}
	return 0, false
}

// contractedLabels returns the labels appearing in both idxA and idxB but
// not idxC: the standard presence-mask reading of "contracted" (spec.md
// §4.4 step 1's joined index universe, restricted to the two-of-three
// {A,B} mask fold.classK also uses).
func contractedLabels(idxA, idxB, idxC []int) map[int]bool {
	inA, inB, inC := toSet(idxA), toSet(idxB), toSet(idxC)
	out := map[int]bool{}
	for l := range inA {
		if inB[l] && !inC[l] {
			out[l] = true
		}
	}
	return out
}

func toSet(idx []int) map[int]bool {
	s := make(map[int]bool, len(idx))
	for _, l := range idx {
		s[l] = true
	}
	return s
}

// scaleByInt returns n*x, the local name kept for call-site readability
// around symmetry.AlignSymmetricIndices' sign; the implementation itself
// is semiring.ScaleByInt, shared with kernel.ContractInner's per-point
// overcounting correction.
func scaleByInt[T any](sr semiring.Semiring[T], x T, n int) T {
	return semiring.ScaleByInt(sr, x, n)
}

// cloneModes returns a shallow copy of t with an independently
// mutable Modes slice (same Data, same Ring), so that planner.Build can
// evaluate many candidate mappings against the same base tensor without
// one candidate's tensor.ApplyChain calls corrupting another's.
func cloneModes[T any](t *tensor.Tensor[T]) *tensor.Tensor[T] {
	cp := *t
	cp.Modes = append([]tensor.Mode(nil), t.Modes...)
	return &cp
}

// applyAssignment applies a Mapping's per-label Assignment to every mode
// of t that carries that label (spec.md §4.2), building each mode's chain
// via tensor.Assignment.BuildChain against the grid dimension's actual
// extent in topo.
func applyAssignment[T any](t *tensor.Tensor[T], idx []int, topo topology.Topology, assignments []tensor.Assignment) error {
	byLabel := make(map[int]tensor.Assignment, len(assignments))
	for _, asn := range assignments {
		byLabel[asn.Label] = asn
	}
	for pos, lbl := range idx {
		asn, ok := byLabel[lbl]
		if !ok {
			continue
		}
		gridExtent := 1
		if asn.GridDim >= 0 {
			if asn.GridDim >= topo.Order() {
				return fmt.Errorf("ctf: assignment references grid dim %d, topology has %d dims", asn.GridDim, topo.Order())
			}
			gridExtent = topo.Dims[asn.GridDim].NP
		}
		if err := t.ApplyChain(pos, asn.BuildChain(gridExtent)); err != nil {
			return err
		}
	}
	return nil
}
