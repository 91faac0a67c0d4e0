// Package services contains the transactional engagement processors:
// check-in, tool purchase/use, reward status and profile state. Each call
// maps to exactly one store transaction; all numeric logic is delegated to
// the pure state package.
package services

import (
	"errors"
	"fmt"

	"github.com/programeryk/stateful-engagement-backend/store"
)

// NotFoundError covers missing prior state and unknown catalog ids.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string { return e.Msg }

// ConflictError covers every losing outcome of a concurrent or invalid
// mutation: duplicate check-in, capacity reached, insufficient loyalty,
// missing inventory, or a store-aborted transaction. Retryable marks the
// last case, where the caller may simply try again.
type ConflictError struct {
	Msg       string
	Retryable bool
}

func (e *ConflictError) Error() string { return e.Msg }

func notFound(format string, args ...interface{}) error {
	return &NotFoundError{Msg: fmt.Sprintf(format, args...)}
}

func conflict(format string, args ...interface{}) error {
	return &ConflictError{Msg: fmt.Sprintf(format, args...)}
}

func retryableConflict(format string, args ...interface{}) error {
	return &ConflictError{Msg: fmt.Sprintf(format, args...), Retryable: true}
}

// IsNotFound reports whether err is a domain NotFound.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsConflict reports whether err is a domain Conflict.
func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}

// translateStoreError maps classified store failures that escaped a
// transaction into domain errors. Domain errors raised inside the
// transaction pass through untouched.
func translateStoreError(err error) error {
	if err == nil || IsNotFound(err) || IsConflict(err) {
		return err
	}
	switch f := store.Classify(err); f.Kind {
	case store.FailureSerialization:
		return retryableConflict("concurrent modification detected, retry")
	case store.FailureUnique:
		return conflict("conflicting concurrent write on %s", f.Constraint)
	default:
		return err
	}
}
