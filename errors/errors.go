// Package errors provides error handling for witforge.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - User-facing hints and details for generator diagnostics
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := analyze(project); err != nil {
//	    return errors.Wrapf(err, "processing project %s", project)
//	}
//
//	// Attach a fix suggestion for the developer running the generator
//	return errors.WithHint(err, "rename the field to 'value-count'")
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
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is             = crdb.Is
	IsAny          = crdb.IsAny
	As             = crdb.As
	Unwrap         = crdb.Unwrap
	GetAllHints    = crdb.GetAllHints
	GetAllDetails  = crdb.GetAllDetails
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
)

// Sentinel errors for the generation pipeline. Each one marks a class from
// the generator's failure taxonomy; wrap them with errors.Wrap to add the
// offending identifier and file while preserving the class for errors.Is.
var (
	// ErrNamingViolation indicates an identifier that cannot be expressed in WIT
	// (contains a digit, contains "stream", or similar).
	ErrNamingViolation = New("naming violation")

	// ErrUnsupportedType indicates a source type shape WIT cannot represent
	// (tuple structs, struct-like enum variants, maps, ...).
	ErrUnsupportedType = New("unsupported type shape")

	// ErrMissingMetadata indicates a malformed process definition: no declared
	// world name, no explicit return type, or an unclassified method.
	ErrMissingMetadata = New("missing required metadata")

	// ErrIncompleteClosure indicates used types with no discoverable definition
	// anywhere in the project's source files.
	ErrIncompleteClosure = New("incomplete type closure")
)

// IsFatalGeneration reports whether err belongs to any of the fatal
// generation classes. Skip conditions and cycle warnings are not errors and
// never reach this check.
func IsFatalGeneration(err error) bool {
	return err != nil && IsAny(err,
		ErrNamingViolation,
		ErrUnsupportedType,
		ErrMissingMetadata,
		ErrIncompleteClosure,
	)
}

// NamingViolationf creates a naming-violation error with a formatted message.
func NamingViolationf(format string, args ...interface{}) error {
	return Wrap(ErrNamingViolation, Newf(format, args...).Error())
}

// UnsupportedTypef creates an unsupported-type error with a formatted message.
func UnsupportedTypef(format string, args ...interface{}) error {
	return Wrap(ErrUnsupportedType, Newf(format, args...).Error())
}

// MissingMetadataf creates a missing-metadata error with a formatted message.
func MissingMetadataf(format string, args ...interface{}) error {
	return Wrap(ErrMissingMetadata, Newf(format, args...).Error())
}

// IncompleteClosuref creates an incomplete-closure error with a formatted message.
func IncompleteClosuref(format string, args ...interface{}) error {
	return Wrap(ErrIncompleteClosure, Newf(format, args...).Error())
}
