package lmdiskann

import (
	"errors"
	"fmt"
)

// ErrNotFound is the sentinel wrapped by every "no such entry" error so
// callers can test with errors.Is(err, lmdiskann.ErrNotFound) without
// caring about the exact shape of the underlying failure.
var ErrNotFound = errors.New("lmdiskann: not found")

// ErrInvalidTopK is returned when Search is called with a non-positive topk.
var ErrInvalidTopK = errors.New("lmdiskann: topk must be positive")

// ErrDimensionMismatch indicates a vector whose length does not match the
// index's configured dimension.
//
// The original underlying error, if any, can be accessed via errors.Unwrap.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
	cause    error
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("lmdiskann: dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }

// ErrInvalidID indicates an external ID that is out of range, or that
// refers to an already-tombstoned slot. Create also returns it, with ID 0,
// for a non-positive dimension.
//
// The original underlying error, if any, can be accessed via errors.Unwrap.
type ErrInvalidID struct {
	ID     int64
	Reason string
	cause  error
}

func (e *ErrInvalidID) Error() string {
	return fmt.Sprintf("lmdiskann: invalid id %d: %s", e.ID, e.Reason)
}

func (e *ErrInvalidID) Unwrap() error { return e.cause }

// ErrCorrupted indicates the on-disk metadata snapshot could not be
// parsed, or is inconsistent with the mapped vector/adjacency files.
//
// The original underlying error, if any, can be accessed via errors.Unwrap.
type ErrCorrupted struct {
	Detail string
	cause  error
}

func (e *ErrCorrupted) Error() string {
	return fmt.Sprintf("lmdiskann: corrupted index: %s", e.Detail)
}

func (e *ErrCorrupted) Unwrap() error { return e.cause }

func wrapNotFound(err error) error {
	return fmt.Errorf("%w: %w", ErrNotFound, err)
}
