// Package errors provides error handling for qntx-ags.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - Hints and details for users
//
// Usage:
//
//	if err := tx.Commit(); err != nil {
//	    return errors.Wrap(err, "commit import")
//	}
//
//	return errors.WithHint(err, "check import.encoding in am.toml")
//
// Data-quality problems found in an AGS file are NOT errors: they are recorded as
// ingestion issues and the parse continues. Errors are reserved for I/O failures and
// caller contract violations.
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
	WithHint           = crdb.WithHint
	WithHintf          = crdb.WithHintf
	WithDetail         = crdb.WithDetail
	WithDetailf        = crdb.WithDetailf
	WithSecondaryError = crdb.WithSecondaryError
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

// Assertions
var (
	AssertionFailedf   = crdb.AssertionFailedf
	IsAssertionFailure = crdb.IsAssertionFailure
)

// Sentinel errors. Wrap these with errors.Wrap() to add context while preserving the type.
var (
	// ErrNotFound indicates the requested record does not exist
	ErrNotFound = New("not found")

	// ErrInvalidRequest indicates malformed input from a caller (bad flag, bad key)
	ErrInvalidRequest = New("invalid request")

	// ErrContractViolation indicates a programmer error: a required collaborator
	// (table, reporter, linked collection) was not supplied
	ErrContractViolation = New("contract violation")

	// ErrUnrecognizedUnit indicates a unit string outside the supported vocabulary
	ErrUnrecognizedUnit = New("unrecognized unit")
)

// IsNotFoundError checks if an error is or wraps ErrNotFound.
func IsNotFoundError(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// IsInvalidRequestError checks if an error is or wraps ErrInvalidRequest
func IsInvalidRequestError(err error) bool {
	return err != nil && Is(err, ErrInvalidRequest)
}

// IsContractViolation checks if an error is or wraps ErrContractViolation
func IsContractViolation(err error) bool {
	return err != nil && Is(err, ErrContractViolation)
}

// NewNotFoundError creates a not-found error with a formatted message
func NewNotFoundError(format string, args ...interface{}) error {
	return Wrap(ErrNotFound, Newf(format, args...).Error())
}

// NewInvalidRequestError creates an invalid-request error with a formatted message
func NewInvalidRequestError(format string, args ...interface{}) error {
	return Wrap(ErrInvalidRequest, Newf(format, args...).Error())
}

// NewContractViolation creates a contract-violation error naming the missing collaborator
func NewContractViolation(format string, args ...interface{}) error {
	return Wrap(ErrContractViolation, Newf(format, args...).Error())
}
