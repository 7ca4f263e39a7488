package refs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// LocalStore implements Store on a JSON file, normally refs.terrain.json.
type LocalStore struct {
	mu       sync.RWMutex
	filePath string
}

// NewLocalStore creates a file-backed store at filePath.
func NewLocalStore(filePath string) *LocalStore {
	return &LocalStore{
		filePath: filePath,
	}
}

// Get reads the book from disk.
func (s *LocalStore) Get(ctx context.Context) (Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.filePath == "" {
		return nil, nil
	}

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read refs file: %w", err)
	}

	var book Book
	if err := json.Unmarshal(data, &book); err != nil {
		return nil, fmt.Errorf("failed to parse refs file: %w", err)
	}

	return book, nil
}

// Set writes the book to disk.
func (s *LocalStore) Set(ctx context.Context, book Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.filePath == "" {
		return nil
	}

	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create refs directory: %w", err)
	}

	data, err := json.MarshalIndent(book, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal refs: %w", err)
	}

	// Write atomically using temp file + rename
	tmpFile := s.filePath + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0o644); err != nil {
		return fmt.Errorf("failed to write refs file: %w", err)
	}
	if err := os.Rename(tmpFile, s.filePath); err != nil {
		_ = os.Remove(tmpFile)
		return fmt.Errorf("failed to rename refs file: %w", err)
	}

	return nil
}

// Close is a no-op for the local store.
func (s *LocalStore) Close() error {
	return nil
}
