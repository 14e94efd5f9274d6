package state

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// FileStore persists state as a single JSON object keyed by tracking
// number.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore writing to the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the state file. A missing file means a first run and yields
// an empty mapping, not an error.
func (s *FileStore) Load(_ context.Context) (map[string]Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]Record{}, nil
		}
		return nil, fmt.Errorf("reading state file: %w", err)
	}

	states := map[string]Record{}
	if err := json.Unmarshal(data, &states); err != nil {
		return nil, fmt.Errorf("parsing state file %s: %w", s.path, err)
	}
	return states, nil
}

// Save overwrites the state file with the full mapping.
func (s *FileStore) Save(_ context.Context, states map[string]Record) error {
	data, err := json.MarshalIndent(states, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("writing state file: %w", err)
	}
	return nil
}
