package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Store persists the cache as a single JSON file. Writes are whole-file
// overwrites; a failed write leaves the previous file intact only if the
// write never started, which is why persistence failures are surfaced to
// the user rather than silently dropped.
type Store struct {
	path string
}

// NewStore creates a store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the cache file. A missing file yields an empty cache, which
// the refresher treats as "everything needs extraction".
func (s *Store) Load() (*Cache, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewCache(), nil
		}
		return nil, err
	}

	cache := NewCache()
	if err := json.Unmarshal(data, cache); err != nil {
		return nil, err
	}
	return cache, nil
}

// Save writes the cache file.
func (s *Store) Save(c *Cache) error {
	if dir := filepath.Dir(s.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0644)
}
