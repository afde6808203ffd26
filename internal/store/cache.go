package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"vinylapi/internal/catalog"
)

// Cache keeps the last good raw record set on disk so the service can come
// up with a catalog when the hosted store is unreachable at startup.
type Cache struct {
	path string
}

// NewCache creates a snapshot cache at a target path.
func NewCache(path string) *Cache {
	return &Cache{path: path}
}

type cachePayload struct {
	FetchedAt string              `json:"fetchedAt"`
	Records   []catalog.RawRecord `json:"records"`
}

// Load reads the cached record set. If the file does not exist,
// os.ErrNotExist is returned.
func (c *Cache) Load() ([]catalog.RawRecord, time.Time, error) {
	b, err := os.ReadFile(c.path)
	if err != nil {
		return nil, time.Time{}, err
	}

	var p cachePayload
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, time.Time{}, fmt.Errorf("parse record cache %s: %w", c.path, err)
	}

	var fetchedAt time.Time
	if p.FetchedAt != "" {
		parsed, err := time.Parse(time.RFC3339, p.FetchedAt)
		if err != nil {
			return nil, time.Time{}, fmt.Errorf("parse fetchedAt in record cache %s: %w", c.path, err)
		}
		fetchedAt = parsed
	}

	return p.Records, fetchedAt, nil
}

// Save writes the record set atomically: a temp file in the same directory
// renamed over the target, so a crash never leaves a torn snapshot.
func (c *Cache) Save(records []catalog.RawRecord) error {
	p := cachePayload{
		FetchedAt: time.Now().UTC().Format(time.RFC3339),
		Records:   records,
	}
	b, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal record cache: %w", err)
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create record cache parent dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(c.path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("create temporary record cache file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write temporary record cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temporary record cache file: %w", err)
	}

	if err := os.Rename(tmpPath, c.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace record cache file: %w", err)
	}
	return nil
}
