package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jpalmerr/crashwatch"
)

func main() {
	// start mock crash page (see mock_server.go)
	go StartMockCrashServer(":9999")
	time.Sleep(100 * time.Millisecond)

	// the mock page is server-rendered, so no browser is needed
	target, err := crashwatch.NewTarget("Mock Crash", "http://localhost:9999/crash", crashwatch.DefaultSelector,
		crashwatch.WithDriver(crashwatch.DriverStatic),
		crashwatch.WithReadTimeout(2*time.Second),
	)
	if err != nil {
		slog.Error("failed to create target", "error", err)
		os.Exit(1)
	}

	m, err := crashwatch.New(
		crashwatch.WithTarget(target),
		crashwatch.WithDuration(2*time.Minute),
		crashwatch.WithPollInterval(time.Second),
		crashwatch.WithErrorBackoff(time.Second),
		crashwatch.WithHistoryFile("example_records.json"),
		crashwatch.WithTableFile("example_records.csv"),
		crashwatch.WithDashboardPort(8080),
		crashwatch.WithObservationCallback(func(o crashwatch.Observation) {
			fmt.Printf("  -> %s at %s\n", o.Value, o.Timestamp)
		}),
	)
	if err != nil {
		slog.Error("failed to create monitor", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("  ╔═══════════════════════════════════════════════════════╗")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   crashwatch Demo                                     ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Open http://localhost:8080 in your browser          ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Watching a mock crash page for 2 minutes            ║")
	fmt.Println("  ║   Records: example_records.json / .csv                ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Press Ctrl+C to stop                                ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ╚═══════════════════════════════════════════════════════╝")
	fmt.Println()

	// set up context with signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := m.Run(ctx); err != nil {
		slog.Error("crashwatch error", "error", err)
		os.Exit(1)
	}
}
