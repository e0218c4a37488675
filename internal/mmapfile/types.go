package mmapfile

import "errors"

var (
	// ErrClosed is returned when attempting to access a closed mapping.
	ErrClosed = errors.New("mmapfile: mapping is closed")
	// ErrInvalidSize is returned when a requested size is invalid.
	ErrInvalidSize = errors.New("mmapfile: invalid size")
)
