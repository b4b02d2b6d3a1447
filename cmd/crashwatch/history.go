package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jpalmerr/crashwatch/internal/store"
	"github.com/spf13/cobra"
)

// historyCmd prints recorded observations as a table.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded crash values",
	Long: `Render the recorded observations as a table, newest first.

Both the JSON history file and the CSV table can be read; the format is
chosen by the file extension.

Example:
  crashwatch history
  crashwatch history -n 10
  crashwatch history --file crash_records.csv`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringP("file", "f", "crash_records.json", "history file (.json) or table file (.csv)")
	historyCmd.Flags().IntP("limit", "n", 0, "show at most this many observations (0 shows all)")
}

// loadObservations reads a history or table file, newest first.
func loadObservations(path string) ([]store.Observation, error) {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		rows, err := store.ReadTable(path)
		if err != nil {
			return nil, err
		}
		// the table is append-only, oldest first
		for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
			rows[i], rows[j] = rows[j], rows[i]
		}
		return rows, nil
	}
	return store.LoadHistory(path)
}

// renderHistory writes observations as a table. A positive limit keeps
// only the newest entries.
func renderHistory(w io.Writer, observations []store.Observation, limit int) {
	total := len(observations)
	if limit > 0 && limit < total {
		observations = observations[:limit]
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{store.TableHeader[0], store.TableHeader[1], store.TableHeader[2]})
	for _, o := range observations {
		t.AppendRow(table.Row{o.ID, o.Value, o.Timestamp})
	}
	t.AppendFooter(table.Row{"", "Shown", fmt.Sprintf("%d of %d", len(observations), total)})
	t.SetStyle(table.StyleRounded)
	t.Render()
}

func runHistory(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("file")
	limit, _ := cmd.Flags().GetInt("limit")
	if limit < 0 {
		return fmt.Errorf("--limit cannot be negative, got %d", limit)
	}

	observations, err := loadObservations(path)
	if err != nil {
		return err
	}

	if len(observations) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No observations recorded in %s\n", path)
		return nil
	}

	renderHistory(cmd.OutOrStdout(), observations, limit)
	return nil
}
