// Package state persists the last-seen content and hash of every traced file
// so change detection survives watcher restarts.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// FileState is the snapshot recorded after an accepted change.
type FileState struct {
	Hash      string `json:"hash"`
	Content   string `json:"content"`
	UpdatedAt string `json:"updated_at"`
}

// Store maps root-relative paths to their last accepted FileState.
type Store struct {
	path  string
	mu    sync.RWMutex
	files map[string]FileState
}

// Load reads the state file at path. A missing or corrupt file yields an
// empty store; the corruption is reported through the second return value so
// callers can log it.
func Load(path string) (*Store, error) {
	s := &Store{path: path, files: make(map[string]FileState)}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("failed to read state: %w", err)
	}

	var files map[string]FileState
	if err := json.Unmarshal(data, &files); err != nil {
		return s, fmt.Errorf("failed to parse state: %w", err)
	}
	if files != nil {
		s.files = files
	}
	return s, nil
}

// Path returns the state file location.
func (s *Store) Path() string {
	return s.path
}

// Get returns the recorded state for rel.
func (s *Store) Get(rel string) (FileState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fs, ok := s.files[rel]
	return fs, ok
}

// Put records fs for rel in memory. Call Save to persist.
func (s *Store) Put(rel string, fs FileState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[rel] = fs
}

// Len returns the number of tracked files.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}

// Paths returns the tracked relative paths, sorted.
func (s *Store) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.files))
	for p := range s.files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Save rewrites the whole state file atomically.
func (s *Store) Save() error {
	s.mu.RLock()
	// encoding/json sorts map keys
	data, err := json.MarshalIndent(s.files, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create state directory: %w", err)
		}
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write state: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename state: %w", err)
	}
	return nil
}
