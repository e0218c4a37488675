// Package keystore provides the bidirectional string-key <-> internal-ID
// dictionary the index uses as an external collaborator (see the forward
// and reverse database prefixes in the index's public interface). Any
// ordered key-value store can back it; this package ships an embedded
// LSM-tree implementation for production use and an in-memory map
// implementation for tests and key-less workloads.
package keystore

import "errors"

// ErrNotFound is returned when a lookup finds no matching entry.
var ErrNotFound = errors.New("keystore: not found")

// Store is the forward (key -> internal ID) and reverse (internal ID ->
// key) dictionary the index keeps in lockstep with its own mutations. The
// index always updates both directions together; Store implementations
// need not provide their own transactional guarantee across the two.
type Store interface {
	// PutForward records that key maps to id, overwriting any prior entry.
	PutForward(key string, id uint32) error
	// PutReverse records that id maps to key, overwriting any prior entry.
	PutReverse(id uint32, key string) error
	// Forward resolves a key to its internal ID.
	Forward(key string) (uint32, error)
	// Reverse resolves an internal ID to its key.
	Reverse(id uint32) (string, error)
	// DeleteForward removes key's entry, if any.
	DeleteForward(key string) error
	// DeleteReverse removes id's entry, if any.
	DeleteReverse(id uint32) error
	// Close releases underlying resources.
	Close() error
}
