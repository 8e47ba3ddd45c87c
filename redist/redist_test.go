// Copyright ©2026 The CTF Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package redist

import (
	"testing"

	"github.com/devinamatthews/ctf/semiring"
	"github.com/devinamatthews/ctf/tensor"
)

func TestLocalRemapNoOpSameChain(t *testing.T) {
	tn, err := tensor.New[float64](semiring.Float64{}, []int{2, 3}, []tensor.Sym{tensor.NS, tensor.NS})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	copy(tn.Data, []float64{1, 2, 3, 4, 5, 6})

	target := []tensor.Chain{tn.Modes[0].Chain, tn.Modes[1].Chain}
	var r Local[float64]
	if err := r.Remap(tn, target); err != nil {
		t.Fatalf("Remap: %v", err)
	}
	want := []float64{1, 2, 3, 4, 5, 6}
	for i, w := range want {
		if tn.Data[i] != w {
			t.Errorf("Data[%d] = %v, want %v", i, tn.Data[i], w)
		}
	}
}

func TestLocalRemapPadsAndPreservesRawData(t *testing.T) {
	tn, err := tensor.New[float64](semiring.Float64{}, []int{3}, []tensor.Sym{tensor.NS})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	copy(tn.Data, []float64{7, 8, 9})

	// Virtualize by 2: padded length becomes 4 (next multiple of 2 above 3).
	target := []tensor.Chain{{{Physical: false, Extent: 2}}}
	var r Local[float64]
	if err := r.Remap(tn, target); err != nil {
		t.Fatalf("Remap: %v", err)
	}
	if got, want := tn.Modes[0].Len, 4; got != want {
		t.Fatalf("Modes[0].Len = %d, want %d", got, want)
	}
	if got, want := len(tn.Data), 4; got != want {
		t.Fatalf("len(Data) = %d, want %d", got, want)
	}
	for i, w := range []float64{7, 8, 9} {
		if tn.Data[i] != w {
			t.Errorf("Data[%d] = %v, want %v", i, tn.Data[i], w)
		}
	}
}

func TestLocalRemapRejectsModeCountMismatch(t *testing.T) {
	tn, err := tensor.New[float64](semiring.Float64{}, []int{2}, []tensor.Sym{tensor.NS})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var r Local[float64]
	if err := r.Remap(tn, nil); err == nil {
		t.Fatalf("expected an error for a target with the wrong mode count")
	}
}
