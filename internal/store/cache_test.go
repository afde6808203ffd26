package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vinylapi/internal/catalog"
)

func TestCacheRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.json")
	cache := NewCache(path)

	records := []catalog.RawRecord{
		{ID: "rec1", Fields: map[string]any{"Album Name": "Nevermind", "Rating": float64(5)}},
		{ID: "rec2", Fields: map[string]any{"Artist": "The Cure"}},
	}
	require.NoError(t, cache.Save(records))

	loaded, fetchedAt, err := cache.Load()
	require.NoError(t, err)
	assert.Equal(t, records, loaded)
	assert.False(t, fetchedAt.IsZero())
}

func TestCacheLoadMissingFile(t *testing.T) {
	cache := NewCache(filepath.Join(t.TempDir(), "absent.json"))

	_, _, err := cache.Load()
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestCacheLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, _, err := NewCache(path).Load()
	assert.Error(t, err)
}

func TestCacheSaveCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "records.json")
	cache := NewCache(path)

	require.NoError(t, cache.Save(nil))
	_, err := os.Stat(path)
	assert.NoError(t, err)
}
