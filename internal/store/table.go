package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
)

// TableHeader is the header row of the tabular file.
var TableHeader = []string{"ID", "Crash Value", "Timestamp"}

// appendRow appends one observation to the CSV file at path, writing
// [TableHeader] first when the file is absent or empty.
func appendRow(path string, obs Observation) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open table file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to stat table file: %w", err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(TableHeader); err != nil {
			_ = f.Close()
			return fmt.Errorf("failed to write table header: %w", err)
		}
	}
	if err := w.Write([]string{strconv.FormatInt(obs.ID, 10), obs.Value, obs.Timestamp}); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write table row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to flush table file: %w", err)
	}
	return f.Close()
}

// ReadTable reads a CSV file written by [FileStore].
//
// Rows are returned in file order (oldest first). A missing file yields an
// empty result. The header row is skipped when present.
func ReadTable(path string) ([]Observation, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open table file: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(TableHeader)

	var rows []Observation
	for line := 1; ; line++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read table file: %w", err)
		}
		if line == 1 && record[0] == TableHeader[0] {
			continue
		}

		id, err := strconv.ParseInt(record[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("table line %d: invalid id %q", line, record[0])
		}
		rows = append(rows, Observation{ID: id, Value: record[1], Timestamp: record[2]})
	}
	return rows, nil
}
