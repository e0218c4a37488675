package metadata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.meta")

	m := &Meta{
		Dimension:  128,
		MaxDegree:  48,
		NumPoints:  10,
		Entrypoint: 3,
		FreeList:   []uint32{1, 4, 7},
	}
	require.NoError(t, m.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, m.Dimension, got.Dimension)
	assert.Equal(t, m.MaxDegree, got.MaxDegree)
	assert.Equal(t, m.NumPoints, got.NumPoints)
	assert.Equal(t, m.Entrypoint, got.Entrypoint)
	assert.Equal(t, m.FreeList, got.FreeList)
}

func TestSaveLoadEmptyFreeList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.meta")

	m := &Meta{Dimension: 4, MaxDegree: 8, NumPoints: 0, Entrypoint: -1}
	require.NoError(t, m.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(-1), got.Entrypoint)
	assert.Empty(t, got.FreeList)
}

func TestLoadCorrupted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.meta")
	require.NoError(t, os.WriteFile(path, []byte("not a valid metadata file"), 0o644))

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrCorrupted)
}
