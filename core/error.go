// Copyright (c) 2018 ContentBox Authors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package core

import (
	"fmt"

	"github.com/BOXFoundation/ledgerd/crypto"
	"github.com/pkg/errors"
)

// RejectReason classifies why a transaction or block was refused.
type RejectReason int

// reject reasons
const (
	Malformed RejectReason = iota
	ProofInvalid
	StateConflict
	DuplicateOrExpired
)

var rejectReasonNames = [...]string{
	Malformed:          "Malformed",
	ProofInvalid:       "ProofInvalid",
	StateConflict:      "StateConflict",
	DuplicateOrExpired: "DuplicateOrExpired",
}

func (r RejectReason) String() string {
	if int(r) < len(rejectReasonNames) {
		return rejectReasonNames[r]
	}
	return fmt.Sprintf("RejectReason(%d)", int(r))
}

// ValidationError reports input that failed validation. It is never fatal.
type ValidationError struct {
	Reason RejectReason
	Detail string
}

// RejectError is the name the mempool uses for a validation failure.
type RejectError = ValidationError

// NewValidationError creates a ValidationError.
func NewValidationError(reason RejectReason, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %s", e.Reason, e.Detail)
}

// ProtocolViolation reports a peer breaking the wire protocol.
type ProtocolViolation struct {
	Peer   string
	Detail string
}

func (e *ProtocolViolation) Error() string {
	return fmt.Sprintf("protocol violation by %s: %s", e.Peer, e.Detail)
}

// ConflictError reports that the committed head moved under the caller.
type ConflictError struct {
	Height uint64
	Head   crypto.HashType
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict with committed head %v at height %d", e.Head, e.Height)
}

// StorageError wraps a failure of the storage engine. It is fatal to the
// component that hits it.
type StorageError struct {
	Err error
}

// NewStorageError wraps err with a message.
func NewStorageError(err error, msg string) *StorageError {
	return &StorageError{Err: errors.Wrap(err, msg)}
}

func (e *StorageError) Error() string {
	return "storage failure: " + e.Err.Error()
}

// IsConflict reports whether the cause of err is a ConflictError.
func IsConflict(err error) bool {
	_, ok := errors.Cause(err).(*ConflictError)
	return ok
}

// IsStorage reports whether the cause of err is a StorageError.
func IsStorage(err error) bool {
	_, ok := errors.Cause(err).(*StorageError)
	return ok
}

// IsValidation reports whether the cause of err is a ValidationError.
func IsValidation(err error) bool {
	_, ok := errors.Cause(err).(*ValidationError)
	return ok
}

// RejectReasonOf returns the reason of a validation error.
func RejectReasonOf(err error) (RejectReason, bool) {
	if verr, ok := errors.Cause(err).(*ValidationError); ok {
		return verr.Reason, true
	}
	return 0, false
}

// IsProtocolViolation reports whether the cause of err is a ProtocolViolation.
func IsProtocolViolation(err error) bool {
	_, ok := errors.Cause(err).(*ProtocolViolation)
	return ok
}
