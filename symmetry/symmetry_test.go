// Copyright ©2026 The CTF Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package symmetry

import (
	"testing"

	"github.com/devinamatthews/ctf/semiring"
	"github.com/devinamatthews/ctf/tensor"
)

func denseNS(lens ...int) *tensor.Tensor[float64] {
	syms := make([]tensor.Sym, len(lens))
	for i := range syms {
		syms[i] = tensor.NS
	}
	tn, err := tensor.New[float64](semiring.Float64{}, lens, syms)
	if err != nil {
		panic(err)
	}
	return tn
}

func TestExtractDiagNoRepeat(t *testing.T) {
	tn := denseNS(2, 3)
	_, _, ok, err := ExtractDiag(tn, []int{0, 1})
	if err != nil {
		t.Fatalf("ExtractDiag: %v", err)
	}
	if ok {
		t.Fatalf("expected ok=false when idxMap has no repeated label")
	}
}

func TestExtractDiagSquare(t *testing.T) {
	tn := denseNS(3, 3)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			tn.Data[i+j*3] = float64(i*10 + j)
		}
	}
	reduced, idx, ok, err := ExtractDiag(tn, []int{0, 0})
	if err != nil {
		t.Fatalf("ExtractDiag: %v", err)
	}
	if !ok {
		t.Fatalf("expected ok=true for repeated label")
	}
	if len(idx) != 1 || idx[0] != 0 {
		t.Fatalf("reducedIdx = %v, want [0]", idx)
	}
	if reduced.Order() != 1 || reduced.Modes[0].RawLen != 3 {
		t.Fatalf("reduced tensor shape wrong: %+v", reduced.Modes)
	}
	for i := 0; i < 3; i++ {
		want := float64(i*10 + i)
		if reduced.Data[i] != want {
			t.Errorf("diag[%d] = %v, want %v", i, reduced.Data[i], want)
		}
	}
}

func TestExtractDiagRejectsSymmetricModes(t *testing.T) {
	tn, err := tensor.New[float64](semiring.Float64{}, []int{3, 3}, []tensor.Sym{tensor.SY, tensor.NS})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, _, _, err := ExtractDiag(tn, []int{0, 0}); err == nil {
		t.Fatalf("expected error extracting diagonal over a symmetric pair")
	}
}

func TestOvercountingFactorSymmetricPair(t *testing.T) {
	tn, err := tensor.New[float64](semiring.Float64{}, []int{4, 4}, []tensor.Sym{tensor.SY, tensor.NS})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	contracted := map[int]bool{0: true, 1: true}
	got := OvercountingFactor(tn, []int{0, 1}, contracted)
	if got != 2 {
		t.Errorf("OvercountingFactor = %d, want 2 (2!)", got)
	}
}

func TestOvercountingFactorPartialNotCounted(t *testing.T) {
	tn, err := tensor.New[float64](semiring.Float64{}, []int{4, 4, 5}, []tensor.Sym{tensor.SY, tensor.NS, tensor.NS})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// Only one of the two symmetric labels is contracted: no overcount.
	contracted := map[int]bool{0: true}
	got := OvercountingFactor(tn, []int{0, 1, 2}, contracted)
	if got != 1 {
		t.Errorf("OvercountingFactor = %d, want 1 when group is only partially contracted", got)
	}
}

func TestOvercountingFactorThreeWayGroup(t *testing.T) {
	tn, err := tensor.New[float64](semiring.Float64{}, []int{4, 4, 4}, []tensor.Sym{tensor.SY, tensor.SY, tensor.NS})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	contracted := map[int]bool{0: true, 1: true, 2: true}
	got := OvercountingFactor(tn, []int{0, 1, 2}, contracted)
	if got != 6 {
		t.Errorf("OvercountingFactor = %d, want 6 (3!)", got)
	}
}

func TestAlignSymmetricIndicesIdentityOrder(t *testing.T) {
	a, err := tensor.New[float64](semiring.Float64{}, []int{4, 4}, []tensor.Sym{tensor.AS, tensor.NS})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	b, err := tensor.New[float64](semiring.Float64{}, []int{4, 4}, []tensor.Sym{tensor.AS, tensor.NS})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	sign := AlignSymmetricIndices(a, []int{0, 1}, b, []int{0, 1})
	if sign != 1 {
		t.Errorf("AlignSymmetricIndices identity order = %d, want 1", sign)
	}
}

func TestAlignSymmetricIndicesSwappedOrder(t *testing.T) {
	a, err := tensor.New[float64](semiring.Float64{}, []int{4, 4}, []tensor.Sym{tensor.AS, tensor.NS})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	b, err := tensor.New[float64](semiring.Float64{}, []int{4, 4}, []tensor.Sym{tensor.AS, tensor.NS})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	sign := AlignSymmetricIndices(a, []int{0, 1}, b, []int{1, 0})
	if sign != -1 {
		t.Errorf("AlignSymmetricIndices swapped order = %d, want -1", sign)
	}
}

func TestAlignSymmetricIndicesSymmetricIgnoresOrder(t *testing.T) {
	a, err := tensor.New[float64](semiring.Float64{}, []int{4, 4}, []tensor.Sym{tensor.SY, tensor.NS})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	b, err := tensor.New[float64](semiring.Float64{}, []int{4, 4}, []tensor.Sym{tensor.SY, tensor.NS})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	sign := AlignSymmetricIndices(a, []int{0, 1}, b, []int{1, 0})
	if sign != 1 {
		t.Errorf("AlignSymmetricIndices SY swapped = %d, want 1 (SY ignores order)", sign)
	}
}

func TestUnfoldBrokenSymNoneWhenUniform(t *testing.T) {
	tn, err := tensor.New[float64](semiring.Float64{}, []int{4, 4}, []tensor.Sym{tensor.SY, tensor.NS})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	contracted := map[int]bool{0: true, 1: true}
	surrogate, rules, broken := UnfoldBrokenSym(tn, []int{0, 1}, contracted)
	if broken {
		t.Fatalf("expected broken=false when both symmetric labels are contracted together")
	}
	if surrogate != tn {
		t.Errorf("expected surrogate == t when nothing is broken")
	}
	if rules != nil {
		t.Errorf("expected nil rules when nothing is broken")
	}
}

func TestUnfoldBrokenSymMixedDowngrades(t *testing.T) {
	tn, err := tensor.New[float64](semiring.Float64{}, []int{4, 4, 5}, []tensor.Sym{tensor.SY, tensor.NS, tensor.NS})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// Label 0 contracted, label 1 free: the SY pair is treated asymmetrically.
	contracted := map[int]bool{0: true}
	surrogate, rules, broken := UnfoldBrokenSym(tn, []int{0, 1, 2}, contracted)
	if !broken {
		t.Fatalf("expected broken=true for a mixed symmetric group")
	}
	if len(rules) != 1 || rules[0].Mark != tensor.SY || rules[0].GroupStart != 0 || rules[0].GroupEnd != 2 {
		t.Fatalf("unexpected rules: %+v", rules)
	}
	if surrogate.Modes[0].Sym != tensor.NS || surrogate.Modes[1].Sym != tensor.NS {
		t.Fatalf("surrogate modes not downgraded to NS: %+v", surrogate.Modes)
	}
	// The original tensor must be untouched.
	if tn.Modes[0].Sym != tensor.SY {
		t.Fatalf("original tensor's symmetry mark was mutated")
	}
}

func TestGetSymPermsSYAllPositive(t *testing.T) {
	g := tensor.SymGroup{Start: 0, End: 2, Mark: tensor.SY}
	perms := GetSymPerms(tensor.SY, []int{7, 8}, g)
	if len(perms) != 2 {
		t.Fatalf("len(perms) = %d, want 2 for a 2-label SY group", len(perms))
	}
	for _, p := range perms {
		if p.Sign != 1 {
			t.Errorf("SY perm sign = %d, want 1", p.Sign)
		}
	}
}

func TestGetSymPermsASSigned(t *testing.T) {
	g := tensor.SymGroup{Start: 0, End: 2, Mark: tensor.AS}
	perms := GetSymPerms(tensor.AS, []int{7, 8}, g)
	if len(perms) != 2 {
		t.Fatalf("len(perms) = %d, want 2", len(perms))
	}
	seenPos, seenNeg := false, false
	for _, p := range perms {
		switch p.Sign {
		case 1:
			seenPos = true
			if p.IdxMap[0] != 7 || p.IdxMap[1] != 8 {
				t.Errorf("positive perm IdxMap = %v, want identity order", p.IdxMap)
			}
		case -1:
			seenNeg = true
			if p.IdxMap[0] != 8 || p.IdxMap[1] != 7 {
				t.Errorf("negative perm IdxMap = %v, want swapped order", p.IdxMap)
			}
		default:
			t.Errorf("unexpected sign %d", p.Sign)
		}
	}
	if !seenPos || !seenNeg {
		t.Fatalf("expected one +1 and one -1 permutation, got perms=%+v", perms)
	}
}

func TestGetSymPermsThreeWayAS(t *testing.T) {
	g := tensor.SymGroup{Start: 0, End: 3, Mark: tensor.AS}
	perms := GetSymPerms(tensor.AS, []int{1, 2, 3}, g)
	if len(perms) != 6 {
		t.Fatalf("len(perms) = %d, want 6 (3!)", len(perms))
	}
	pos, neg := 0, 0
	for _, p := range perms {
		if p.Sign == 1 {
			pos++
		} else if p.Sign == -1 {
			neg++
		}
	}
	if pos != 3 || neg != 3 {
		t.Errorf("pos=%d neg=%d, want 3/3 for S3's even/odd split", pos, neg)
	}
}
