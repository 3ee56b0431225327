package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore persists the cache as a single JSON document on disk. Every
// mutation rewrites the file synchronously, so a crash right after Put never
// loses the entry and a crash right after an eviction never resurrects it.
type FileStore struct {
	mu   sync.Mutex
	path string
	data map[string]Entry
}

// NewFileStore creates a file-backed store at path. The file is created
// lazily on the first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load(ctx context.Context) (map[string]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.data = make(map[string]Entry)
			return map[string]Entry{}, nil
		}
		s.data = make(map[string]Entry)
		return nil, fmt.Errorf("read cache file: %w", err)
	}

	entries := make(map[string]Entry)
	if err := json.Unmarshal(raw, &entries); err != nil {
		s.data = make(map[string]Entry)
		return nil, fmt.Errorf("parse cache file: %w", err)
	}

	s.data = entries

	// Hand out a copy; entries are owned by the cache, not shared by reference.
	out := make(map[string]Entry, len(entries))
	for k, v := range entries {
		out[k] = v
	}
	return out, nil
}

func (s *FileStore) Put(ctx context.Context, key string, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		s.data = make(map[string]Entry)
	}
	s.data[key] = e
	return s.flush()
}

func (s *FileStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return nil
	}
	delete(s.data, key)
	return s.flush()
}

func (s *FileStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make(map[string]Entry)
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove cache file: %w", err)
	}
	return nil
}

func (s *FileStore) flush() error {
	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create cache directory: %w", err)
		}
	}

	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0644); err != nil {
		return fmt.Errorf("write cache file: %w", err)
	}
	return nil
}
