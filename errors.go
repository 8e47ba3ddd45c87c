// Copyright ©2026 The CTF Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ctf wires together the topology, tensor, symmetry, planner,
// folding, and sequential-kernel packages into the tensor-level
// operations spec.md §6 exposes: Contract, Sum, Scale, and Reduce. It is
// the only package in this module that assembles a complete contraction
// or summation end to end; every other package is a collaborator it
// consumes.
package ctf

import (
	"errors"
	"fmt"

	"github.com/devinamatthews/ctf/planner"
)

// ErrNoValidMapping is returned when the planner exhausts the topology ×
// mapping space without producing a legal plan (spec.md §7). It is the
// same sentinel planner.Build returns; re-exported here so callers of
// package ctf need not import package planner to check for it.
var ErrNoValidMapping = planner.ErrNoValidMapping

// InsufficientMemoryError reports that the winning plan's estimated peak
// memory exceeds the reported available memory (spec.md §7). Re-exported
// from package planner for the same reason as ErrNoValidMapping.
type InsufficientMemoryError = planner.InsufficientMemoryError

// InvalidArgumentError reports a shape/symmetry mismatch across operand
// indices, or a repeated label inside a single operand the planner cannot
// reduce (spec.md §7).
type InvalidArgumentError struct {
	Op  string
	Err error
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("ctf: invalid argument to %s: %v", e.Op, e.Err)
}

func (e *InvalidArgumentError) Unwrap() error { return e.Err }

// CollaboratorFailureError reports that an out-of-scope collaborator
// (redistribution or messaging) returned an error, or that this module's
// own reference implementation of a collaborator cannot honor a request
// that genuinely requires a real multi-rank backend (spec.md §7).
type CollaboratorFailureError struct {
	Op  string
	Err error
}

func (e *CollaboratorFailureError) Error() string {
	return fmt.Sprintf("ctf: collaborator failure during %s: %v", e.Op, e.Err)
}

func (e *CollaboratorFailureError) Unwrap() error { return e.Err }

// ErrUnsupported is returned for an operation not implemented for the
// given scalar type or reduction, e.g. an asymmetric reduction path that
// requires signed arithmetic unavailable from the abstract semiring
// (spec.md §7, §9 "Asymmetric reductions").
var ErrUnsupported = errors.New("ctf: unsupported operation")
