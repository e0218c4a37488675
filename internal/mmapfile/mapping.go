package mmapfile

import (
	"os"
	"sync/atomic"
)

// File is a writable memory-mapped file that can grow in place.
//
// It owns both the *os.File handle and the mapped region for its lifetime.
// Bytes returns a view into the current mapping; that view is only valid
// until the next call to Grow or Close.
type File struct {
	f      *os.File
	data   []byte
	closed atomic.Bool
	unmap  func([]byte) error
}

// OpenOrCreate opens path for read-write, creating it if absent, and maps
// at least minSize bytes (extending the file with zero bytes if it is
// currently smaller).
func OpenOrCreate(path string, minSize int) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, err
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	size := int(fi.Size())
	if size < minSize {
		size = minSize
	}
	if size == 0 {
		// mmap of a zero-length file is not portable; keep a 1-page floor.
		size = pageSize
	}

	if err := f.Truncate(int64(size)); err != nil {
		f.Close()
		return nil, err
	}

	data, unmap, err := osMap(f, size)
	if err != nil {
		f.Close()
		return nil, err
	}

	return &File{f: f, data: data, unmap: unmap}, nil
}

// Bytes returns the current mapped region. The slice is only valid until
// the next Grow or Close call; callers must not retain it across either.
func (m *File) Bytes() []byte {
	if m.closed.Load() {
		return nil
	}
	return m.data
}

// Len returns the size in bytes of the current mapping.
func (m *File) Len() int {
	if m.closed.Load() {
		return 0
	}
	return len(m.data)
}

// Grow ensures the mapping is at least newSize bytes, unmapping, truncating
// and remapping if necessary. It is a no-op if the mapping is already large
// enough. Any slice returned by a prior Bytes call must be discarded by the
// caller before calling Grow.
func (m *File) Grow(newSize int) error {
	if m.closed.Load() {
		return ErrClosed
	}
	if newSize <= len(m.data) {
		return nil
	}

	if m.unmap != nil && m.data != nil {
		if err := m.unmap(m.data); err != nil {
			return err
		}
	}
	m.data = nil

	if err := m.f.Truncate(int64(newSize)); err != nil {
		return err
	}

	data, unmap, err := osMap(m.f, newSize)
	if err != nil {
		return err
	}
	m.data = data
	m.unmap = unmap
	return nil
}

// Sync flushes dirty pages to the backing file.
func (m *File) Sync() error {
	if m.closed.Load() {
		return ErrClosed
	}
	if len(m.data) == 0 {
		return nil
	}
	return osSync(m.data)
}

// Close unmaps the memory and closes the underlying file. Idempotent.
func (m *File) Close() error {
	if m.closed.Swap(true) {
		return nil
	}
	var err error
	if m.unmap != nil && m.data != nil {
		err = m.unmap(m.data)
	}
	if cerr := m.f.Close(); err == nil {
		err = cerr
	}
	return err
}
