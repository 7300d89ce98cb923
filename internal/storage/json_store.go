package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// Snapshot persists a whole value of type T as one JSON file. It is the
// durability layer behind the in-memory stores when no database is configured.
type Snapshot[T any] struct {
	mu   sync.Mutex
	path string
}

// NewSnapshot prepares dataDir/filename, creating the directory if needed.
func NewSnapshot[T any](dataDir, filename string) (*Snapshot[T], error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	return &Snapshot[T]{path: filepath.Join(dataDir, filename)}, nil
}

// Path returns the backing file.
func (s *Snapshot[T]) Path() string {
	return s.path
}

// Load returns the stored value. A missing file yields the zero value.
func (s *Snapshot[T]) Load() (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out T
	b, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return out, nil
	}
	if err != nil {
		return out, err
	}
	if len(b) == 0 {
		return out, nil
	}
	err = json.Unmarshal(b, &out)
	return out, err
}

// Save writes v to a temp file and renames it over the snapshot.
func (s *Snapshot[T]) Save(v T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
