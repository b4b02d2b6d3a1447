package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// LoadHistory reads a JSON history file written by [FileStore].
//
// A missing file or a file containing only whitespace yields an empty
// history and no error. Malformed content is reported as an error; callers
// decide whether to degrade.
func LoadHistory(path string) ([]Observation, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	var history []Observation
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("failed to parse history file %s: %w", path, err)
	}
	return history, nil
}

// writeHistory replaces the history file with the full sequence.
//
// The data is written to a temporary file in the same directory and renamed
// over the target, so readers never observe a partially written file.
func writeHistory(path string, history []Observation) error {
	if history == nil {
		history = []Observation{}
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary history file: %w", err)
	}
	tmpName := tmp.Name()
	// no-op once the rename succeeded
	defer func() { _ = os.Remove(tmpName) }()

	enc := json.NewEncoder(tmp)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(history); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to encode history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write history file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("failed to set history file mode: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace history file: %w", err)
	}
	return nil
}
