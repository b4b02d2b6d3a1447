package store

import (
	"fmt"
	"log/slog"
	"time"
)

// FileStore is a [MemoryStore] mirrored to two files: a JSON history file
// holding the whole sequence and an append-only CSV table.
//
// Every [FileStore.Record] rewrites the history file and appends one table
// row before subscribers are notified. If either write fails the in-memory
// sequence is left unchanged.
type FileStore struct {
	*MemoryStore
	historyPath string
	tablePath   string
}

// OpenFileStore loads the history at historyPath and returns a store that
// persists to historyPath and tablePath.
//
// A missing or empty history file starts an empty store. A malformed history
// file is logged as a warning and also starts an empty store; it is
// overwritten on the first new observation.
func OpenFileStore(historyPath, tablePath string, logger *slog.Logger) *FileStore {
	history, err := LoadHistory(historyPath)
	if err != nil {
		logger.Warn("failed to load history, starting empty", "path", historyPath, "error", err)
		history = nil
	} else if len(history) == 0 {
		logger.Info("no previous history, a new file will be created", "path", historyPath)
	} else {
		logger.Info("history loaded", "path", historyPath, "records", len(history))
	}

	return &FileStore{
		MemoryStore: NewMemoryStore(history),
		historyPath: historyPath,
		tablePath:   tablePath,
	}
}

// Record prepends a new [Observation], persists it to both files and
// notifies all subscribers.
func (f *FileStore) Record(value string, at time.Time) (Observation, error) {
	m := f.MemoryStore

	m.mu.Lock()
	obs := m.prependLocked(value, at)

	if err := writeHistory(f.historyPath, m.observations); err != nil {
		m.observations = m.observations[1:]
		m.mu.Unlock()
		return Observation{}, err
	}
	if err := appendRow(f.tablePath, obs); err != nil {
		m.observations = m.observations[1:]
		m.mu.Unlock()
		// the history file already holds obs; rewrite it so both files agree
		if rbErr := writeHistory(f.historyPath, m.GetAll()); rbErr != nil {
			return Observation{}, fmt.Errorf("%w (history rollback failed: %v)", err, rbErr)
		}
		return Observation{}, err
	}
	m.mu.Unlock()

	m.notifySubscribers(obs)
	return obs, nil
}

// HistoryPath returns the path of the JSON history file.
func (f *FileStore) HistoryPath() string {
	return f.historyPath
}

// TablePath returns the path of the CSV table file.
func (f *FileStore) TablePath() string {
	return f.tablePath
}
