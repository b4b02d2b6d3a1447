package crashwatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jpalmerr/crashwatch/dashboard"
	"github.com/jpalmerr/crashwatch/internal/browser"
	"github.com/jpalmerr/crashwatch/internal/poller"
	"github.com/jpalmerr/crashwatch/internal/server"
	"github.com/jpalmerr/crashwatch/internal/store"
)

const (
	defaultTitle       = "Crash Monitor"
	defaultDuration    = 6 * time.Minute
	defaultHistoryFile = "crash_records.json"
	defaultTableFile   = "crash_records.csv"
)

// Monitor watches one page element for a bounded time and records every
// change of its value.
//
// Monitor coordinates the browser session, the polling loop, the history
// files and the optional live dashboard. It is created using [New] with
// functional options and started with [Monitor.Run].
//
// The typical lifecycle is:
//
//	m, err := crashwatch.New(crashwatch.WithDuration(10 * time.Minute))
//	if err != nil {
//	    slog.Error("failed to create monitor", "error", err)
//	    os.Exit(1)
//	}
//
//	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer cancel()
//
//	if err := m.Run(ctx); err != nil { // blocks until the duration elapses
//	    os.Exit(1)
//	}
type Monitor struct {
	title         string
	target        Target
	duration      time.Duration
	pollerConfig  poller.Config
	historyFile   string
	tableFile     string
	dashboardPort int
	logger        *slog.Logger
	callbacks     []func(Observation)
	launch        browser.Launcher
}

// New creates a new [Monitor] instance with the given options.
//
// All options have defaults:
//   - Target: [DefaultTarget]
//   - Duration: 6 minutes
//   - Poll interval: 3 seconds, error backoff: 5 seconds
//   - Reload thresholds: 10 (missing element), 5 (read errors)
//   - Files: crash_records.json and crash_records.csv
//   - Dashboard: disabled
//
// Returns an error if any option is invalid.
func New(opts ...Option) (*Monitor, error) {
	cfg := &monitorConfig{
		title:            defaultTitle,
		duration:         defaultDuration,
		pollInterval:     poller.DefaultInterval,
		errorBackoff:     poller.DefaultErrorBackoff,
		missingThreshold: poller.DefaultMissingThreshold,
		errorThreshold:   poller.DefaultErrorThreshold,
		historyFile:      defaultHistoryFile,
		tableFile:        defaultTableFile,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	target := DefaultTarget()
	if cfg.target != nil {
		target = *cfg.target
	}
	if target.name == "" {
		return nil, errors.New("target must be created with NewTarget")
	}

	launch := cfg.launcher
	if launch == nil {
		l, err := browser.LauncherFor(target.driver)
		if err != nil {
			return nil, err
		}
		launch = l
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	extractor := target.extractor
	if extractor == nil {
		extractor = DefaultExtractor
	}

	return &Monitor{
		title:    cfg.title,
		target:   target,
		duration: cfg.duration,
		pollerConfig: poller.Config{
			Selector:         target.selector,
			Extractor:        poller.Extractor(extractor),
			Interval:         cfg.pollInterval,
			ErrorBackoff:     cfg.errorBackoff,
			MissingThreshold: cfg.missingThreshold,
			ErrorThreshold:   cfg.errorThreshold,
		},
		historyFile:   cfg.historyFile,
		tableFile:     cfg.tableFile,
		dashboardPort: cfg.dashboardPort,
		logger:        logger,
		callbacks:     cfg.callbacks,
		launch:        launch,
	}, nil
}

// Run loads the history, opens the page and polls it until the configured
// duration has elapsed or ctx is cancelled.
//
// Each new value is written to the history and table files before the
// observation callbacks run. The browser session is closed on every exit
// path.
//
// Returns nil when the duration elapses or ctx is cancelled. Returns an
// error if the dashboard cannot start, the page cannot be opened, or a
// recovery reload fails.
func (m *Monitor) Run(ctx context.Context) error {
	if ctx.Err() != nil {
		return nil
	}

	logger := m.logger.With("run_id", uuid.NewString())
	started := time.Now()

	ctx, cancel := context.WithTimeout(ctx, m.duration)
	defer cancel()

	records := store.OpenFileStore(m.historyFile, m.tableFile, logger)
	loaded := records.Len()

	logger.Info("crashwatch starting",
		"target", m.target.name,
		"url", m.target.url,
		"selector", m.target.selector,
		"driver", m.target.driver,
		"duration", m.duration.String(),
		"records", loaded,
	)
	defer func() {
		logger.Info("crashwatch stopped",
			"records", records.Len(),
			"new_records", records.Len()-loaded,
			"elapsed_minutes", fmt.Sprintf("%.1f", time.Since(started).Minutes()),
		)
	}()

	if m.dashboardPort > 0 {
		httpServer := server.NewServer(records, m.dashboardPort, dashboard.Assets, m.title, logger)
		if err := httpServer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		logger.Info("dashboard available", "url", fmt.Sprintf("http://localhost:%d", m.dashboardPort))
	}

	session, err := m.launch(ctx, m.target.sessionOptions())
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("failed to start browser session: %w", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			logger.Warn("failed to close browser session", "error", err)
		}
	}()

	if err := session.Goto(ctx, m.target.url); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("failed to open %s: %w", m.target.url, err)
	}
	logger.Info("page loaded", "url", m.target.url)

	p := poller.New(session, m.pollerConfig, m.recordFunc(records, logger), logger)
	if err := p.Run(ctx); err != nil {
		return fmt.Errorf("monitoring aborted: %w", err)
	}

	stats := p.Stats()
	logger.Debug("poller finished",
		"reads", stats.Reads,
		"changes", stats.Changes,
		"missing", stats.Missing,
		"errors", stats.Errors,
		"timeouts", stats.Timeouts,
		"reloads", stats.Reloads,
	)
	return nil
}

// recordFunc persists each new value and then notifies the callbacks.
func (m *Monitor) recordFunc(records *store.FileStore, logger *slog.Logger) poller.ChangeFunc {
	return func(ctx context.Context, value string, at time.Time) error {
		obs, err := records.Record(value, at)
		if err != nil {
			return err
		}

		logger.Info("new crash value",
			"value", obs.Value,
			"id", obs.ID,
			"records", records.Len(),
		)

		if len(m.callbacks) > 0 {
			public := fromStoreObservation(obs, at)
			for _, cb := range m.callbacks {
				invokeCallbackSafe(cb, public, logger)
			}
		}
		return nil
	}
}

// Target returns the watched target.
func (m *Monitor) Target() Target {
	return m.target
}

// Duration returns how long [Monitor.Run] polls.
func (m *Monitor) Duration() time.Duration {
	return m.duration
}

// PollInterval returns the wait between reads.
func (m *Monitor) PollInterval() time.Duration {
	return m.pollerConfig.Interval
}

// HistoryFile returns the path of the JSON history file.
func (m *Monitor) HistoryFile() string {
	return m.historyFile
}

// TableFile returns the path of the CSV table file.
func (m *Monitor) TableFile() string {
	return m.tableFile
}

// DashboardPort returns the dashboard port, or 0 if the dashboard is disabled.
func (m *Monitor) DashboardPort() int {
	return m.dashboardPort
}

// invokeCallbackSafe calls an observation callback with panic recovery.
// Panics are logged but do not propagate.
func invokeCallbackSafe(cb func(Observation), obs Observation, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("observation callback panicked",
				"panic", r,
				"value", obs.Value,
			)
		}
	}()
	cb(obs)
}
