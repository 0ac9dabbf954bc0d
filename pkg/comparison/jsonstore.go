package comparison

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// JSONStore is a MemoryStore persisted to a single JSON file. Every mutation
// rewrites the file atomically (temp file + rename).
type JSONStore struct {
	*MemoryStore
	path string
}

// storeData is the on-disk layout.
type storeData struct {
	Version     int           `json:"version"`
	UpdatedAt   string        `json:"updated_at"`
	Comparisons []*Comparison `json:"comparisons"`
}

const currentVersion = 1

// NewJSONStore opens the store at path, loading it if the file exists.
// The file is created on first save.
func NewJSONStore(path string) (*JSONStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	s := &JSONStore{MemoryStore: NewMemoryStore(), path: path}
	if _, err := os.Stat(path); err == nil {
		if err := s.load(); err != nil {
			return nil, fmt.Errorf("failed to load store: %w", err)
		}
	}
	s.MemoryStore.onChange = s.save
	return s, nil
}

// Path returns the file path of the store.
func (s *JSONStore) Path() string {
	return s.path
}

func (s *JSONStore) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	var stored storeData
	if err := json.Unmarshal(data, &stored); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}
	if stored.Version > currentVersion {
		return fmt.Errorf("store version %d is newer than supported %d", stored.Version, currentVersion)
	}

	for _, c := range stored.Comparisons {
		if c == nil || c.ID == "" {
			continue
		}
		s.items[c.ID] = *c
	}
	return nil
}

func (s *JSONStore) save(items map[string]Comparison) error {
	list := make([]*Comparison, 0, len(items))
	for _, c := range items {
		c := c
		list = append(list, &c)
	}
	sortNewestFirst(list)

	stored := storeData{
		Version:     currentVersion,
		UpdatedAt:   time.Now().UTC().Format(time.RFC3339),
		Comparisons: list,
	}

	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
