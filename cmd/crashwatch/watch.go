package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jpalmerr/crashwatch/internal/store"
	"github.com/spf13/cobra"
)

// watchCmd follows the history file written by a running monitor.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print new crash values as they are recorded",
	Long: `Follow the JSON history file and print each new observation as a
running monitor writes it. Stops on Ctrl+C.

Example:
  crashwatch watch
  crashwatch watch --file /data/crash_records.json --all`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringP("file", "f", "crash_records.json", "history file to follow")
	watchCmd.Flags().Duration("debounce", 200*time.Millisecond, "debounce window for batching file events")
	watchCmd.Flags().Bool("all", false, "print the existing history before following")
}

func runWatch(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("file")
	debounce, _ := cmd.Flags().GetDuration("debounce")
	all, _ := cmd.Flags().GetBool("all")

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return watchHistory(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), path, debounce, all)
}

// watchHistory prints observations appended to the history file at path
// until ctx is done.
//
// The history is replaced by rename on every write, so the parent
// directory is watched rather than the file itself.
func watchHistory(ctx context.Context, out, errOut io.Writer, path string, debounce time.Duration, all bool) error {
	path = filepath.Clean(path)

	existing, err := store.LoadHistory(path)
	if err != nil {
		fmt.Fprintf(errOut, "watch: %v\n", err)
	}

	var lastID int64
	if all {
		lastID = printNew(out, existing, 0)
	} else if len(existing) > 0 {
		lastID = existing[0].ID
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	fmt.Fprintf(out, "Watching %s for new observations...\n", path)

	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isHistoryEvent(event, path) {
				continue
			}
			if !pending {
				timer.Reset(debounce)
				pending = true
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(errOut, "watch error: %v\n", err)
		case <-timer.C:
			pending = false
			history, err := store.LoadHistory(path)
			if err != nil {
				fmt.Fprintf(errOut, "watch: %v\n", err)
				continue
			}
			lastID = printNew(out, history, lastID)
		}
	}
}

func isHistoryEvent(event fsnotify.Event, path string) bool {
	if filepath.Clean(event.Name) != path {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

// printNew prints observations newer than lastID, oldest first, and
// returns the newest ID seen.
func printNew(out io.Writer, history []store.Observation, lastID int64) int64 {
	newest := lastID
	for i := len(history) - 1; i >= 0; i-- {
		o := history[i]
		if o.ID <= lastID {
			continue
		}
		fmt.Fprintf(out, "[%s] %s\n", o.Timestamp, o.Value)
		if o.ID > newest {
			newest = o.ID
		}
	}
	return newest
}
