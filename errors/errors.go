// Package errors provides error handling for randconst.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - Hints shown to the user next to a failure
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := doSomething(); err != nil {
//	    return errors.Wrap(err, "failed to do something")
//	}
//
//	// Add hints for users
//	return errors.WithHint(err, "check that /dev/urandom is readable")
//
//	// Check errors
//	if errors.Is(err, errors.ErrEntropy) {
//	    // environment failure, not a source error
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
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
	WithHint           = crdb.WithHint
	WithHintf          = crdb.WithHintf
	WithDetail         = crdb.WithDetail
	WithDetailf        = crdb.WithDetailf
	WithSecondaryError = crdb.WithSecondaryError
	CombineErrors      = crdb.CombineErrors
)

// Error inspection
var (
	Is             = crdb.Is
	IsAny          = crdb.IsAny
	As             = crdb.As
	Unwrap         = crdb.Unwrap
	UnwrapOnce     = crdb.UnwrapOnce
	UnwrapAll      = crdb.UnwrapAll
	GetAllHints    = crdb.GetAllHints
	GetAllDetails  = crdb.GetAllDetails
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
)

// AssertionFailedf reports a broken internal invariant.
var AssertionFailedf = crdb.AssertionFailedf

// Sentinel errors for the failure taxonomy of a generation run.
// Use these with errors.Is(); wrap them to add context while preserving the type.
var (
	// ErrMalformedRequest indicates a request that does not follow the grammar:
	// missing type annotation, missing separator, bad array length, bad brackets.
	ErrMalformedRequest = New("malformed request")

	// ErrUnsupportedType indicates a type name outside the integer vocabulary,
	// or an array shape that is not a single level of integers.
	ErrUnsupportedType = New("unsupported type")

	// ErrUnsupportedConstruct indicates a directive or marker in a position
	// that cannot receive a literal (functions, type declarations, array constants...).
	ErrUnsupportedConstruct = New("unsupported construct")

	// ErrEntropy indicates the operating system's secure random source failed.
	// It is never retried and never replaced by a weaker source.
	ErrEntropy = New("entropy source unavailable")

	// ErrStale indicates a generated companion is missing or out of date
	ErrStale = New("generated output is stale")
)

// IsDiagnostic reports whether err is a source-level failure (as opposed to an
// environment failure such as ErrEntropy).
func IsDiagnostic(err error) bool {
	return err != nil && IsAny(err, ErrMalformedRequest, ErrUnsupportedType, ErrUnsupportedConstruct)
}

// WrapEntropy marks err as an entropy failure and attaches a hint for the user.
func WrapEntropy(err error, context string) error {
	if err == nil {
		return nil
	}
	err = Mark(Wrap(err, context), ErrEntropy)
	return WithHint(err, "the secure random source of the operating system is required; randconst never falls back to a weaker generator")
}
