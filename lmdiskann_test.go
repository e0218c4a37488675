package lmdiskann

import (
	"context"
	"math"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mantzaris/lmdiskann/keystore"
)

func newTestIndex(t *testing.T, dim int, opts ...Option) *Index[float32] {
	t.Helper()
	prefix := filepath.Join(t.TempDir(), "idx")
	idx, err := Create[float32](prefix, dim, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx
}

func randomUnitVector(t *testing.T, rng *rand.Rand, dim int) []float32 {
	t.Helper()
	v := make([]float32, dim)
	var norm float32
	for i := range v {
		v[i] = rng.Float32()*2 - 1
		norm += v[i] * v[i]
	}
	scale := float32(1 / math.Sqrt(float64(norm)))
	for i := range v {
		v[i] *= scale
	}
	return v
}

// S1: empty search.
func TestEmptySearch(t *testing.T) {
	idx := newTestIndex(t, 4)
	res, err := idx.Search(context.Background(), []float32{0, 0, 0, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, res)
}

// S2: first insert.
func TestFirstInsert(t *testing.T) {
	idx := newTestIndex(t, 4)
	key, id, err := idx.Insert(context.Background(), []float32{1, 0, 0, 0}, "")
	require.NoError(t, err)
	assert.Equal(t, "1", key)
	assert.Equal(t, int64(1), id)

	stats := idx.Stats()
	assert.Equal(t, 1, stats.NumPoints)
	assert.Equal(t, int64(0), stats.Entrypoint)
	assert.Empty(t, idx.neighbors(0))
}

// S3: two-point recall.
func TestTwoPointRecall(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t, 4)

	_, id1, err := idx.Insert(ctx, []float32{1, 0, 0, 0}, "")
	require.NoError(t, err)
	_, id2, err := idx.Insert(ctx, []float32{0, 1, 0, 0}, "")
	require.NoError(t, err)

	res, err := idx.Search(ctx, []float32{1, 0, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, id1, res[0].ExternalID)
	ids := map[int64]bool{res[0].ExternalID: true, res[1].ExternalID: true}
	assert.True(t, ids[id1])
	assert.True(t, ids[id2])
}

// S4/S5: delete-by-ID then slot reuse.
func TestDeleteAndSlotReuse(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t, 10)
	rng := rand.New(rand.NewSource(1))

	var ids []int64
	var vecs [][]float32
	for i := 0; i < 20; i++ {
		v := randomUnitVector(t, rng, 10)
		_, id, err := idx.Insert(ctx, v, "")
		require.NoError(t, err)
		ids = append(ids, id)
		vecs = append(vecs, v)
	}

	targetID := ids[4] // external id 5
	require.NoError(t, idx.DeleteByID(ctx, targetID))

	res, err := idx.Search(ctx, vecs[4], 20)
	require.NoError(t, err)
	for _, r := range res {
		assert.NotEqual(t, targetID, r.ExternalID)
	}

	internalDeleted := uint32(targetID - 1)
	for i := uint32(0); i < idx.meta.NumPoints; i++ {
		if !idx.isLive(i) {
			continue
		}
		for _, n := range idx.neighbors(i) {
			assert.NotEqual(t, internalDeleted, n)
		}
	}

	_, reusedID, err := idx.Insert(ctx, randomUnitVector(t, rng, 10), "")
	require.NoError(t, err)
	assert.Equal(t, targetID, reusedID)
	assert.Empty(t, idx.meta.FreeList)
}

// S6: entrypoint repair.
func TestEntrypointRepair(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t, 4)
	rng := rand.New(rand.NewSource(2))

	for i := 0; i < 5; i++ {
		_, _, err := idx.Insert(ctx, randomUnitVector(t, rng, 4), "")
		require.NoError(t, err)
	}

	oldEntry := idx.meta.Entrypoint
	require.NoError(t, idx.DeleteByID(ctx, externalID(uint32(oldEntry))))

	assert.NotEqual(t, oldEntry, idx.meta.Entrypoint)
	if idx.meta.Entrypoint != -1 {
		assert.True(t, idx.isLive(uint32(idx.meta.Entrypoint)))
	}
}

// S7: reopen round-trip.
func TestReopenRoundTrip(t *testing.T) {
	ctx := context.Background()
	prefix := filepath.Join(t.TempDir(), "idx")

	idx, err := Create[float32](prefix, 4)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(3))
	var last []float32
	var lastID int64
	for i := 0; i < 5; i++ {
		v := randomUnitVector(t, rng, 4)
		_, id, err := idx.Insert(ctx, v, "")
		require.NoError(t, err)
		last, lastID = v, id
	}
	require.NoError(t, idx.DeleteByID(ctx, 2))

	statsBefore := idx.Stats()
	require.NoError(t, idx.Close())

	reopened, err := Open[float32](prefix)
	require.NoError(t, err)
	defer reopened.Close()

	statsAfter := reopened.Stats()
	assert.Equal(t, statsBefore, statsAfter)

	res, err := reopened.Search(ctx, last, 1)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, lastID, res[0].ExternalID)
}

func TestDeleteByKeyUnknownIsNoop(t *testing.T) {
	idx := newTestIndex(t, 4)
	found, err := idx.DeleteByKey(context.Background(), "does-not-exist")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDeleteByIDDoubleDeleteErrors(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t, 4)
	_, id, err := idx.Insert(ctx, []float32{1, 2, 3, 4}, "")
	require.NoError(t, err)

	require.NoError(t, idx.DeleteByID(ctx, id))
	err = idx.DeleteByID(ctx, id)
	assert.Error(t, err)
}

func TestInsertDimensionMismatch(t *testing.T) {
	idx := newTestIndex(t, 4)
	_, _, err := idx.Insert(context.Background(), []float32{1, 2, 3}, "")
	var dimErr *ErrDimensionMismatch
	assert.ErrorAs(t, err, &dimErr)
}

func TestKeyedInsertAndLookup(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t, 3)

	key, id, err := idx.Insert(ctx, []float32{1, 2, 3}, "my-key")
	require.NoError(t, err)
	assert.Equal(t, "my-key", key)

	v, err := idx.GetVectorByKey("my-key")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3}, v)

	v2, err := idx.GetVectorByID(id)
	require.NoError(t, err)
	assert.Equal(t, v, v2)
}

func TestGrowthAcrossManyInserts(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t, 8, WithGrowthFloor(4))
	rng := rand.New(rand.NewSource(4))

	for i := 0; i < 50; i++ {
		_, _, err := idx.Insert(ctx, randomUnitVector(t, rng, 8), "")
		require.NoError(t, err)
	}

	stats := idx.Stats()
	assert.Equal(t, 50, stats.NumPoints)
	assert.GreaterOrEqual(t, idx.capacity(), 50)
}

func TestNoSelfLoops(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t, 6, WithMaxDegree(4))
	rng := rand.New(rand.NewSource(5))

	for i := 0; i < 30; i++ {
		_, _, err := idx.Insert(ctx, randomUnitVector(t, rng, 6), "")
		require.NoError(t, err)
	}

	for i := uint32(0); i < idx.meta.NumPoints; i++ {
		if !idx.isLive(i) {
			continue
		}
		neighbors := idx.neighbors(i)
		assert.NotContains(t, neighbors, i)

		seen := make(map[uint32]bool)
		for _, n := range neighbors {
			assert.False(t, seen[n], "duplicate neighbor in row")
			seen[n] = true
		}
		assert.LessOrEqual(t, len(neighbors), idx.maxDegree)
	}
}

func TestWithMemoryKeyStore(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t, 3, WithKeyStore(keystore.NewMemory()))

	key, id, err := idx.Insert(ctx, []float32{1, 2, 3}, "mem-key")
	require.NoError(t, err)
	assert.Equal(t, "mem-key", key)

	v, err := idx.GetVectorByKey("mem-key")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3}, v)

	require.NoError(t, idx.DeleteByID(ctx, id))
	_, err = idx.GetVectorByKey("mem-key")
	assert.Error(t, err)
}

// Recall property: self-query should find the exact vector.
func TestSelfQueryRecall(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t, 16)
	rng := rand.New(rand.NewSource(6))

	var ids []int64
	var vecs [][]float32
	for i := 0; i < 200; i++ {
		v := randomUnitVector(t, rng, 16)
		_, id, err := idx.Insert(ctx, v, "")
		require.NoError(t, err)
		ids = append(ids, id)
		vecs = append(vecs, v)
	}

	hits := 0
	for i, v := range vecs {
		res, err := idx.Search(ctx, v, 1)
		require.NoError(t, err)
		if len(res) == 1 && res[0].ExternalID == ids[i] {
			hits++
		}
	}

	recall := float64(hits) / float64(len(vecs))
	assert.GreaterOrEqual(t, recall, 0.9)
}
