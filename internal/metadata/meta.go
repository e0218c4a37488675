// Package metadata implements the small, self-describing snapshot file
// that records an index's logical state — point count, entrypoint, free
// list and shape parameters — independent of the bulk vector/adjacency
// mappings. It follows the magic+version+checksum header convention used
// elsewhere in this codebase's on-disk formats.
package metadata

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"os"
)

// Magic identifies a metadata snapshot file ("LMDA").
const Magic uint32 = 0x4C4D4441

// Version is the current snapshot format version.
const Version uint32 = 1

// Meta is the durable state of an index that is not implicit in the shape
// of the mapped vector/adjacency files.
type Meta struct {
	Dimension  uint32
	MaxDegree  uint32
	NumPoints  uint32
	Entrypoint int64 // -1 means "no live node"
	FreeList   []uint32
}

var (
	// ErrCorrupted is returned when a metadata file is truncated or fails
	// its magic, version, or checksum check.
	ErrCorrupted = errors.New("metadata: corrupted snapshot")
)

// Load reads and validates a metadata snapshot from path.
func Load(path string) (*Meta, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadFrom(f)
}

// ReadFrom decodes a Meta from r, validating its magic/version/checksum.
func ReadFrom(r io.Reader) (*Meta, error) {
	var fixed [28]byte
	if _, err := io.ReadFull(r, fixed[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: truncated header: %w", ErrCorrupted, err)
		}
		return nil, fmt.Errorf("metadata: read header: %w", err)
	}

	magic := binary.LittleEndian.Uint32(fixed[0:4])
	version := binary.LittleEndian.Uint32(fixed[4:8])
	if magic != Magic {
		return nil, fmt.Errorf("%w: bad magic 0x%08X", ErrCorrupted, magic)
	}
	if version != Version {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorrupted, version)
	}

	m := &Meta{
		Dimension:  binary.LittleEndian.Uint32(fixed[8:12]),
		MaxDegree:  binary.LittleEndian.Uint32(fixed[12:16]),
		NumPoints:  binary.LittleEndian.Uint32(fixed[16:20]),
		Entrypoint: int64(int32(binary.LittleEndian.Uint32(fixed[20:24]))),
	}
	freeListLen := binary.LittleEndian.Uint32(fixed[24:28])

	body := make([]byte, int(freeListLen)*4+4)
	if _, err := io.ReadFull(r, body); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: truncated body: %w", ErrCorrupted, err)
		}
		return nil, fmt.Errorf("metadata: read body: %w", err)
	}

	m.FreeList = make([]uint32, freeListLen)
	for i := range m.FreeList {
		m.FreeList[i] = binary.LittleEndian.Uint32(body[i*4:])
	}
	wantChecksum := binary.LittleEndian.Uint32(body[len(body)-4:])

	gotChecksum := crc32.ChecksumIEEE(append(append([]byte{}, fixed[:]...), body[:len(body)-4]...))
	if gotChecksum != wantChecksum {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrCorrupted)
	}

	return m, nil
}

// Save atomically writes m to path: it writes to a sibling temp file and
// renames it into place, so a crash mid-write cannot leave a torn file at
// path — the rename either happens completely or not at all.
func (m *Meta) Save(path string) error {
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}

	if _, err := m.WriteTo(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// WriteTo encodes m to w.
func (m *Meta) WriteTo(w io.Writer) (int64, error) {
	var fixed [28]byte
	binary.LittleEndian.PutUint32(fixed[0:4], Magic)
	binary.LittleEndian.PutUint32(fixed[4:8], Version)
	binary.LittleEndian.PutUint32(fixed[8:12], m.Dimension)
	binary.LittleEndian.PutUint32(fixed[12:16], m.MaxDegree)
	binary.LittleEndian.PutUint32(fixed[16:20], m.NumPoints)
	binary.LittleEndian.PutUint32(fixed[20:24], uint32(int32(m.Entrypoint)))
	binary.LittleEndian.PutUint32(fixed[24:28], uint32(len(m.FreeList)))

	body := make([]byte, len(m.FreeList)*4+4)
	for i, id := range m.FreeList {
		binary.LittleEndian.PutUint32(body[i*4:], id)
	}
	checksum := crc32.ChecksumIEEE(append(append([]byte{}, fixed[:]...), body[:len(body)-4]...))
	binary.LittleEndian.PutUint32(body[len(body)-4:], checksum)

	n1, err := w.Write(fixed[:])
	if err != nil {
		return int64(n1), err
	}
	n2, err := w.Write(body)
	return int64(n1 + n2), err
}
