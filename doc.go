// Package crashwatch watches one element of a web page for a bounded time
// and records every change of its value.
//
// A [Monitor] opens the page in a browser session, reads the element on a
// fixed cadence and appends each new value to two files: a JSON history
// (newest first) and a CSV table (append-only). Reads that fail are counted
// and trigger a page reload once a threshold is exceeded; a timed-out read
// reloads at once.
//
// # Quick Start
//
// Watch the default crash page for six minutes:
//
//	m, _ := crashwatch.New()
//
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	if err := m.Run(ctx); err != nil { // blocks until the duration elapses
//	    log.Fatal(err)
//	}
//
// # Configuration
//
// Monitor uses the functional options pattern:
//
//	target, err := crashwatch.NewTarget("Crash", "https://faucetpay.io/crash", "#crash-payout-text",
//	    crashwatch.WithNavigationTimeout(90 * time.Second),
//	    crashwatch.WithHeaders("User-Agent", "crashwatch"),
//	)
//	m, err := crashwatch.New(
//	    crashwatch.WithTarget(target),
//	    crashwatch.WithDuration(30 * time.Minute),
//	    crashwatch.WithHistoryFile("data/crash_records.json"),
//	    crashwatch.WithTableFile("data/crash_records.csv"),
//	    crashwatch.WithDashboardPort(8080),
//	)
//
// # Extractors
//
// An [Extractor] turns the element text into the recorded value:
//
//   - [PrefixExtractor]: strips a label such as "Crashed @"
//   - [RegexExtractor]: takes the first capture group of a pattern
//   - [TextExtractor]: records the whole text
//   - [FirstMatch]: tries several extractors in order
//   - [DefaultExtractor]: [PrefixExtractor] with "Crashed @"
//
// # Architecture
//
// The internal packages are:
//
//   - internal/browser: Playwright and plain-HTTP page sessions
//   - internal/poller: The read loop, change detection and reload recovery
//   - internal/store: History in memory with pub/sub, mirrored to JSON and CSV files
//   - internal/server: Dashboard HTTP server with REST API and Server-Sent Events
//   - dashboard: Embedded web UI assets
//
// The internal packages are not part of the public API and may change
// without notice.
package crashwatch
