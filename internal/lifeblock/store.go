package lifeblock

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Store persists life blocks as a JSON file.
type Store struct {
	path string
}

// NewStore creates a store backed by the given path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the block configuration. A missing or unreadable file yields an
// empty configuration, not an error: bad user data must not abort scheduling.
func (s *Store) Load() Blocks {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return Blocks{}
	}

	var blocks Blocks
	if err := json.Unmarshal(data, &blocks); err != nil {
		return Blocks{}
	}
	return blocks
}

// Save writes the block configuration atomically (temp file + rename).
func (s *Store) Save(blocks Blocks) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating blocks directory: %w", err)
	}

	data, err := json.MarshalIndent(blocks, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling blocks: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".life_blocks-*.json")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing blocks: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replacing blocks file: %w", err)
	}
	return nil
}
