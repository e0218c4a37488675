// Package lmdiskann implements a disk-resident, graph-based approximate
// nearest neighbor index in the LM-DiskANN style: adjacency lists and
// vector payloads live in growable memory-mapped files so that working-set
// RAM stays small even over very large point sets, while a small separate
// metadata snapshot tracks point count, entrypoint and free list.
//
// An Index is not safe for concurrent use; callers must serialize their
// own access, and at most one process may hold a given prefix open at a
// time (enforced by an advisory lock file).
package lmdiskann

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"unsafe"

	"github.com/bits-and-blooms/bitset"

	"github.com/mantzaris/lmdiskann/internal/metadata"
	"github.com/mantzaris/lmdiskann/internal/mmapfile"
	"github.com/mantzaris/lmdiskann/internal/pqueue"
	"github.com/mantzaris/lmdiskann/internal/visited"
	"github.com/mantzaris/lmdiskann/keystore"
	"github.com/mantzaris/lmdiskann/metric"
)

const emptySlot int32 = -1

// Index is a disk-resident ANN graph index over vectors of element type T.
type Index[T metric.Scalar] struct {
	prefix    string
	dim       int
	elemSize  int
	maxDegree int
	opts      Options

	vecFile *mmapfile.File
	adjFile *mmapfile.File
	lock    *os.File

	meta *metadata.Meta
	keys keystore.Store

	dist metric.Func[T]

	// frontier, result and seen are traversal scratch state reused across
	// every traverse call, matching the source's reusable-search-context
	// pattern: a fresh traversal over a large capacity must not pay an
	// O(capacity) allocation-and-zero cost just to reset visited state.
	frontier *pqueue.Queue
	result   *pqueue.Queue
	seen     *visited.Set

	// live tracks tombstoned vs. live slots, the same role the source's
	// deleted *bitset.BitSet plays for its own soft-deletes, with the bit
	// meaning inverted so a Set bit means "present" everywhere.
	live *bitset.BitSet
}

// Create initializes a brand-new index rooted at prefix with the given
// dimension, using element type T. opts.MaxDegree (or its default) bounds
// the adjacency row width. Create fails if any of the index's files
// already exist.
func Create[T metric.Scalar](prefix string, dim int, opts ...Option) (*Index[T], error) {
	if dim <= 0 {
		return nil, &ErrInvalidID{Reason: "dimension must be positive"}
	}
	o := buildOptions(opts...)

	lockPath := prefix + ".lock"
	lock, err := os.OpenFile(lockPath, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("lmdiskann: index already open or lock file present: %w", err)
	}

	for _, suffix := range []string{".vec", ".adj", ".meta"} {
		if _, err := os.Stat(prefix + suffix); err == nil {
			lock.Close()
			os.Remove(lockPath)
			return nil, fmt.Errorf("lmdiskann: index file %s already exists", prefix+suffix)
		}
	}

	idx, err := openFiles[T](prefix, dim, o.MaxDegree, o, lock, true)
	if err != nil {
		lock.Close()
		os.Remove(lockPath)
		return nil, err
	}
	return idx, nil
}

// Open reopens a previously created index rooted at prefix, with element
// type T matching the one it was created with.
func Open[T metric.Scalar](prefix string, opts ...Option) (*Index[T], error) {
	o := buildOptions(opts...)

	lockPath := prefix + ".lock"
	lock, err := os.OpenFile(lockPath, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("lmdiskann: index already open or lock file present: %w", err)
	}

	m, err := metadata.Load(prefix + ".meta")
	if err != nil {
		lock.Close()
		os.Remove(lockPath)
		return nil, &ErrCorrupted{Detail: "metadata snapshot", cause: err}
	}

	required := []string{".vec", ".adj"}
	if o.KeyStore == nil {
		required = append(required, "forward_db", "reverse_db")
	}
	for _, suffix := range required {
		if _, err := os.Stat(prefix + suffix); err != nil {
			lock.Close()
			os.Remove(lockPath)
			return nil, &ErrCorrupted{Detail: "missing " + suffix + " file", cause: err}
		}
	}

	idx, err := openFiles[T](prefix, int(m.Dimension), int(m.MaxDegree), o, lock, false)
	if err != nil {
		lock.Close()
		os.Remove(lockPath)
		return nil, err
	}
	if uint32(idx.capacity()) < m.NumPoints || idx.adjFile.Len() < int(m.NumPoints)*idx.maxDegree*4 {
		idx.Close()
		return nil, &ErrCorrupted{Detail: "mapped files smaller than the metadata point count"}
	}
	idx.meta = m
	idx.rebuildLiveBitset()
	return idx, nil
}

// rebuildLiveBitset repopulates the live-slot bitset from meta after a
// fresh Load, marking every slot below NumPoints live except those named
// in FreeList.
func (idx *Index[T]) rebuildLiveBitset() {
	idx.live = bitset.New(uint(idx.meta.NumPoints))
	for i := uint32(0); i < idx.meta.NumPoints; i++ {
		idx.live.Set(uint(i))
	}
	for _, f := range idx.meta.FreeList {
		idx.live.Clear(uint(f))
	}
}

func openFiles[T metric.Scalar](prefix string, dim, maxDegree int, o Options, lock *os.File, fresh bool) (*Index[T], error) {
	var zero T
	elemSize := int(unsafe.Sizeof(zero))

	if err := os.MkdirAll(filepath.Dir(prefix), 0o755); err != nil && !os.IsExist(err) {
		return nil, err
	}

	initialSlots := 1
	if !fresh {
		initialSlots = 0 // actual size comes from existing file contents
	}

	vecFile, err := mmapfile.OpenOrCreate(prefix+".vec", dim*elemSize*initialSlots)
	if err != nil {
		return nil, fmt.Errorf("lmdiskann: open vector file: %w", err)
	}
	adjFile, err := mmapfile.OpenOrCreate(prefix+".adj", maxDegree*4*initialSlots)
	if err != nil {
		vecFile.Close()
		return nil, fmt.Errorf("lmdiskann: open adjacency file: %w", err)
	}

	keys := o.KeyStore
	if keys == nil {
		forwardDir := prefix + "forward_db"
		reverseDir := prefix + "reverse_db"
		badgerKeys, err := keystore.OpenBadger(forwardDir, reverseDir)
		if err != nil {
			vecFile.Close()
			adjFile.Close()
			return nil, fmt.Errorf("lmdiskann: open key store: %w", err)
		}
		keys = badgerKeys
	}

	var m *metadata.Meta
	if fresh {
		m = &metadata.Meta{
			Dimension:  uint32(dim),
			MaxDegree:  uint32(maxDegree),
			NumPoints:  0,
			Entrypoint: -1,
			FreeList:   nil,
		}
	}

	initialEF := o.EFConstruction
	if o.EFSearch > initialEF {
		initialEF = o.EFSearch
	}

	idx := &Index[T]{
		prefix:    prefix,
		dim:       dim,
		elemSize:  elemSize,
		maxDegree: maxDegree,
		opts:      o,
		vecFile:   vecFile,
		adjFile:   adjFile,
		lock:      lock,
		meta:      m,
		keys:      keys,
		dist:      metric.SquaredL2[T](),
		frontier:  pqueue.NewMin(initialEF * 2),
		result:    pqueue.NewMax(initialEF),
		seen:      visited.New(initialEF * 2),
		live:      bitset.New(0),
	}

	if fresh {
		if err := idx.commitMeta(); err != nil {
			idx.Close()
			return nil, err
		}
	}

	return idx, nil
}

// Close flushes pending state and releases the mapped files, key store
// handles, and the advisory lock. Close is not idempotent: calling it
// twice will error on the second call.
func (idx *Index[T]) Close() error {
	var firstErr error
	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	record(idx.vecFile.Sync())
	record(idx.adjFile.Sync())
	record(idx.vecFile.Close())
	record(idx.adjFile.Close())
	record(idx.keys.Close())

	lockPath := idx.lock.Name()
	record(idx.lock.Close())
	record(os.Remove(lockPath))

	return firstErr
}

// Stats reports point counters, the entrypoint and the index's shape
// parameters, for monitoring and tests. It carries no edge counters.
type Stats struct {
	NumPoints  int
	LivePoints int
	FreeSlots  int
	Entrypoint int64
	Dimension  int
	MaxDegree  int
}

// Stats returns a snapshot of the index's current counters.
func (idx *Index[T]) Stats() Stats {
	return Stats{
		NumPoints:  int(idx.meta.NumPoints),
		LivePoints: int(idx.meta.NumPoints) - len(idx.meta.FreeList),
		FreeSlots:  len(idx.meta.FreeList),
		Entrypoint: idx.meta.Entrypoint,
		Dimension:  idx.dim,
		MaxDegree:  idx.maxDegree,
	}
}

// capacity returns the number of slots the mapped files currently have
// room for (which may exceed meta.NumPoints).
func (idx *Index[T]) capacity() int {
	if idx.elemSize == 0 || idx.dim == 0 {
		return 0
	}
	return idx.vecFile.Len() / (idx.dim * idx.elemSize)
}

// ensureCapacity grows the vector and adjacency files so slot id is
// addressable, per the double-and-floor-at-growth-floor policy.
func (idx *Index[T]) ensureCapacity(ctx context.Context, id uint32) error {
	needed := int(id) + 1
	cur := idx.capacity()
	if needed <= cur {
		return nil
	}

	growth := idx.opts.GrowthFloor
	if cur > growth {
		growth = cur
	}
	newCap := cur + growth
	if newCap < needed {
		newCap = needed
	}

	if err := idx.vecFile.Grow(newCap * idx.dim * idx.elemSize); err != nil {
		return fmt.Errorf("lmdiskann: grow vector file: %w", err)
	}
	if err := idx.adjFile.Grow(newCap * idx.maxDegree * 4); err != nil {
		return fmt.Errorf("lmdiskann: grow adjacency file: %w", err)
	}

	idx.opts.Logger.LogGrow(ctx, cur, newCap)
	return nil
}

// vectorAt returns a zero-copy view of slot id's vector payload. The
// slice is only valid until the next mutating call on idx (which may grow
// and thus remap the backing file).
func (idx *Index[T]) vectorAt(id uint32) []T {
	raw := idx.vecFile.Bytes()
	start := int(id) * idx.dim * idx.elemSize
	return unsafe.Slice((*T)(unsafe.Pointer(&raw[start])), idx.dim)
}

// writeVector overwrites slot id's vector payload with v (len(v) == dim).
func (idx *Index[T]) writeVector(id uint32, v []T) {
	dst := idx.vectorAt(id)
	copy(dst, v)
}

// zeroVector overwrites slot id's vector payload with zero values.
func (idx *Index[T]) zeroVector(id uint32) {
	dst := idx.vectorAt(id)
	var zero T
	for i := range dst {
		dst[i] = zero
	}
}

// adjRowRaw returns the raw max_degree-wide int32 cells for slot id.
// -1 marks an empty cell. The slice is only valid until the next
// mutating call on idx.
func (idx *Index[T]) adjRowRaw(id uint32) []int32 {
	raw := idx.adjFile.Bytes()
	start := int(id) * idx.maxDegree * 4
	n := idx.maxDegree
	return unsafe.Slice((*int32)(unsafe.Pointer(&raw[start])), n)
}

// neighbors returns the live neighbor IDs of slot id, in stored order.
func (idx *Index[T]) neighbors(id uint32) []uint32 {
	row := idx.adjRowRaw(id)
	out := make([]uint32, 0, len(row))
	for _, v := range row {
		if v != emptySlot {
			out = append(out, uint32(v))
		}
	}
	return out
}

// setNeighbors writes ids (len(ids) <= maxDegree) as slot id's neighbor
// row, padding remaining cells with the empty sentinel.
func (idx *Index[T]) setNeighbors(id uint32, ids []uint32) {
	row := idx.adjRowRaw(id)
	i := 0
	for ; i < len(ids) && i < len(row); i++ {
		row[i] = int32(ids[i])
	}
	for ; i < len(row); i++ {
		row[i] = emptySlot
	}
}

// isLive reports whether internal id is currently a live (non-tombstoned)
// node within [0, NumPoints).
func (idx *Index[T]) isLive(id uint32) bool {
	if id >= idx.meta.NumPoints {
		return false
	}
	return idx.live.Test(uint(id))
}

func (idx *Index[T]) commitMeta() error {
	// Flush the mapped tables first so the committed snapshot never
	// describes bytes that are not yet on disk.
	if err := idx.vecFile.Sync(); err != nil {
		return fmt.Errorf("lmdiskann: sync vector file: %w", err)
	}
	if err := idx.adjFile.Sync(); err != nil {
		return fmt.Errorf("lmdiskann: sync adjacency file: %w", err)
	}
	return idx.meta.Save(idx.prefix + ".meta")
}

func (idx *Index[T]) keyOrDefault(key string, id uint32) string {
	if key != "" {
		return key
	}
	return strconv.FormatUint(uint64(id)+1, 10)
}

func externalID(internal uint32) int64 { return int64(internal) + 1 }

func toInternalID(external int64) (uint32, error) {
	if external <= 0 {
		return 0, &ErrInvalidID{ID: external, Reason: "external id must be positive"}
	}
	return uint32(external - 1), nil
}
