// Package errors provides error handling for ifcgeom.
//
// This package re-exports github.com/cockroachdb/errors so that every
// error carries a stack trace and can be wrapped with context or user
// hints, and declares the sentinel errors shared across the pipeline.
//
// Usage:
//
//	if err := k.Mesh(shape, tol); err != nil {
//	    return errors.Wrapf(err, "meshing item #%d", id)
//	}
//
//	if errors.Is(err, errors.ErrNotSupported) {
//	    // the kernel cannot answer this query
//	}
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
	Mark         = crdb.Mark
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
	GetAllHints = crdb.GetAllHints
)

// Error inspection
var (
	Is        = crdb.Is
	IsAny     = crdb.IsAny
	As        = crdb.As
	Unwrap    = crdb.Unwrap
	UnwrapAll = crdb.UnwrapAll
)

// Sentinel errors. Callers test for these with Is; producers wrap them
// with Wrapf or Mark so the context survives.
var (
	// ErrNotSupported is returned by kernel queries and taxonomy
	// comparisons that have no implementation. It never stands in for a
	// fabricated result.
	ErrNotSupported = New("not supported")

	// ErrInvalidFilter reports a malformed or conflicting filter.
	ErrInvalidFilter = New("invalid filter")

	// ErrInvalidConfig reports settings that cannot be used together or
	// are out of range.
	ErrInvalidConfig = New("invalid configuration")

	// ErrNothingToConvert is returned when no product survives filtering.
	ErrNothingToConvert = New("no products to convert")

	// ErrNoGeometryProduced is returned when candidates existed but every
	// conversion failed or yielded no geometry.
	ErrNoGeometryProduced = New("no geometry produced")

	// ErrParse reports malformed input files.
	ErrParse = New("parse error")
)
