package keystore

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// Badger is a Store backed by two independent embedded LSM-tree
// databases, one per direction, matching the two on-disk directories the
// index's public interface names (forward/reverse). Keeping them as
// separate databases rather than one with a prefix byte lets either side
// be opened, compacted, or garbage-collected independently.
type Badger struct {
	forward *badger.DB
	reverse *badger.DB
}

var _ Store = (*Badger)(nil)

// OpenBadger opens (creating if absent) the forward and reverse
// directories rooted at forwardDir and reverseDir.
func OpenBadger(forwardDir, reverseDir string) (*Badger, error) {
	fwd, err := badger.Open(badger.DefaultOptions(forwardDir).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("keystore: open forward db: %w", err)
	}

	rev, err := badger.Open(badger.DefaultOptions(reverseDir).WithLogger(nil))
	if err != nil {
		fwd.Close()
		return nil, fmt.Errorf("keystore: open reverse db: %w", err)
	}

	return &Badger{forward: fwd, reverse: rev}, nil
}

func (b *Badger) PutForward(key string, id uint32) error {
	return b.forward.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), encodeID(id))
	})
}

func (b *Badger) PutReverse(id uint32, key string) error {
	return b.reverse.Update(func(txn *badger.Txn) error {
		return txn.Set(encodeID(id), []byte(key))
	})
}

func (b *Badger) Forward(key string) (uint32, error) {
	var id uint32
	err := b.forward.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			id = decodeID(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, ErrNotFound
	}
	return id, err
}

func (b *Badger) Reverse(id uint32) (string, error) {
	var key string
	err := b.reverse.View(func(txn *badger.Txn) error {
		item, err := txn.Get(encodeID(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			key = string(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", ErrNotFound
	}
	return key, err
}

func (b *Badger) DeleteForward(key string) error {
	return b.forward.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

func (b *Badger) DeleteReverse(id uint32) error {
	return b.reverse.Update(func(txn *badger.Txn) error {
		return txn.Delete(encodeID(id))
	})
}

// Close closes both underlying databases, returning the first error
// encountered (after attempting to close both so a failure on one side
// never leaks the other's file lock).
func (b *Badger) Close() error {
	err1 := b.forward.Close()
	err2 := b.reverse.Close()
	if err1 != nil {
		return err1
	}
	return err2
}

func encodeID(id uint32) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, id)
	return buf
}

func decodeID(buf []byte) uint32 {
	return binary.LittleEndian.Uint32(buf)
}
