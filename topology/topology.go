// Copyright ©2026 The CTF Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package topology builds and coarsens the Cartesian process grid that
// tensors are distributed over. A Topology is an ordered list of
// dimension descriptors whose extents multiply to the global process
// count; Peel expands the candidate set by fusing adjacent dimensions
// (spec.md §4.1).
package topology

import "fmt"

// Dim describes one dimension of a Cartesian process grid: its extent
// (number of ranks along it), this process's coordinate along it, and the
// leading-dimension product (stride) used to decompose a global rank into
// per-dimension coordinates.
type Dim struct {
	NP     int // extent of this dimension
	Rank   int // this process's coordinate along this dimension, in [0,NP)
	Stride int // leading-dimension product: global rank = sum(coord_i * stride_i)
}

// Topology is a Cartesian grid over the global process group.
type Topology struct {
	Dims []Dim
}

// Size returns the product of all dimension extents.
func (t Topology) Size() int {
	n := 1
	for _, d := range t.Dims {
		n *= d.NP
	}
	return n
}

// Order returns the number of grid dimensions.
func (t Topology) Order() int { return len(t.Dims) }

// Kind selects one of the hand-tabulated physical topology shapes
// build_physical can produce (spec.md §4.1).
type Kind int

const (
	// SingleDim places every process along one grid dimension.
	SingleDim Kind = iota
	// Generic performs a greedy descending-prime factorization of np.
	Generic
	// FiveDPlus requires at least 5 grid dimensions, used for very large
	// torus-shaped machines whose natural layout is 5-or-more-dimensional.
	FiveDPlus
	// ThreeDPow2 is a hand-tabulated 3D shape used when np is a power of two.
	ThreeDPow2
	// EightDPow2 is a hand-tabulated 8D shape used when np is a power of two.
	EightDPow2
)

// maxPow2Log bounds the hand-tabulated power-of-two shapes: 2^15, per
// spec.md §4.1 ("up to np=2^15").
const maxPow2Log = 15

// BuildPhysical returns a Topology matching kind for a global process
// count np. Ranks within each dimension's communicator are derived from
// globalRank by the mixed-radix decomposition used in
// mapping/topology.cxx's topology constructor: dimension i (0-indexed,
// outermost first in the returned Dims) takes its coordinate from
// (globalRank / stride) % lens[i], and stride is updated by *= lens[i]
// after each dimension is consumed.
func BuildPhysical(kind Kind, np, globalRank int) (Topology, error) {
	if np <= 0 {
		return Topology{}, fmt.Errorf("topology: process count must be positive, got %d", np)
	}
	if globalRank < 0 || globalRank >= np {
		return Topology{}, fmt.Errorf("topology: rank %d out of range [0,%d)", globalRank, np)
	}

	var lens []int
	switch kind {
	case SingleDim:
		lens = []int{np}
	case Generic:
		lens = factorizeDescending(np)
	case FiveDPlus:
		lens = factorizeDescending(np)
		for len(lens) < 5 {
			lens = append(lens, 1)
		}
	case ThreeDPow2:
		shape, err := pow2Shape(np, 3)
		if err != nil {
			return Topology{}, err
		}
		lens = shape
	case EightDPow2:
		shape, err := pow2Shape(np, 8)
		if err != nil {
			return Topology{}, err
		}
		lens = shape
	default:
		return Topology{}, fmt.Errorf("topology: unknown kind %d", kind)
	}

	return fromLens(lens, globalRank)
}

// fromLens builds a Topology whose dimension extents are lens, deriving
// per-dimension rank and stride from globalRank the way
// mapping/topology.cxx's constructor does: outermost dimension first,
// each dimension's rank is (globalRank/stride)%len, and stride *= len
// after consuming that dimension.
func fromLens(lens []int, globalRank int) (Topology, error) {
	prod := 1
	for _, l := range lens {
		if l <= 0 {
			return Topology{}, fmt.Errorf("topology: non-positive dimension length %d", l)
		}
		prod *= l
	}
	t := Topology{Dims: make([]Dim, len(lens))}
	stride := 1
	for i, l := range lens {
		t.Dims[i] = Dim{
			NP:     l,
			Rank:   (globalRank / stride) % l,
			Stride: stride,
		}
		stride *= l
	}
	return t, nil
}

// factorizeDescending returns the prime factorization of np in descending
// order, e.g. 60 -> [5,3,2,2]. This mirrors the greedy descending-prime
// factorize() used by get_phys_topo's TOPOLOGY_GENERIC case; no retrieved
// example package provides integer factorization, so it is hand-rolled
// here rather than wired to a library (see DESIGN.md).
func factorizeDescending(np int) []int {
	var factors []int
	n := np
	for p := 2; p*p <= n; p++ {
		for n%p == 0 {
			factors = append(factors, p)
			n /= p
		}
	}
	if n > 1 {
		factors = append(factors, n)
	}
	// Sort descending; factors are discovered ascending above.
	for i, j := 0, len(factors)-1; i < j; i, j = i+1, j-1 {
		factors[i], factors[j] = factors[j], factors[i]
	}
	if len(factors) == 0 {
		factors = []int{1}
	}
	return factors
}

// pow2Shape returns a hand-tabulated shape of the given order for a
// power-of-two process count, splitting log2(np) as evenly as possible
// across order dimensions. Real CTF deployments hand-tabulate specific
// torus-friendly shapes per machine; absent a target machine description,
// an even split of the bit-width is the literal, reproducible rule.
func pow2Shape(np, order int) ([]int, error) {
	log2 := 0
	for v := np; v > 1; v >>= 1 {
		log2++
	}
	if 1<<uint(log2) != np {
		return nil, fmt.Errorf("topology: %d is not a power of two", np)
	}
	if log2 > maxPow2Log {
		return nil, fmt.Errorf("topology: power-of-two tables only cover up to 2^%d, got 2^%d", maxPow2Log, log2)
	}
	lens := make([]int, order)
	for i := range lens {
		lens[i] = 1
	}
	// Distribute log2 bits across dimensions, one bit at a time, filling
	// the leading dimensions first so the shape is as square as possible.
	for b := 0; b < log2; b++ {
		lens[b%order] *= 2
	}
	return lens, nil
}

// Equal reports whether s and t have the same dimension extents in the
// same order (used by Peel's dedup, matching find_topology's comparison
// of dim_comm[i].np across positions — rank/stride are derived, not
// compared).
func Equal(s, t Topology) bool {
	if len(s.Dims) != len(t.Dims) {
		return false
	}
	for i := range s.Dims {
		if s.Dims[i].NP != t.Dims[i].NP {
			return false
		}
	}
	return true
}
