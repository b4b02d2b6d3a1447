package crashwatch

import (
	"errors"
	"log/slog"
	"time"

	"github.com/jpalmerr/crashwatch/internal/browser"
)

// monitorConfig holds mutable state during Monitor construction.
type monitorConfig struct {
	title            string
	target           *Target
	duration         time.Duration
	pollInterval     time.Duration
	errorBackoff     time.Duration
	missingThreshold int
	errorThreshold   int
	historyFile      string
	tableFile        string
	dashboardPort    int
	logger           *slog.Logger
	callbacks        []func(Observation)
	launcher         browser.Launcher
}

// Option is a function that configures a [Monitor] instance during construction.
//
// Option implements the functional options pattern, allowing optional
// configuration to be passed to [New] in a type-safe, extensible way.
// Options return an error if validation fails.
type Option func(*monitorConfig) error

// WithTarget sets the page element to watch. Defaults to [DefaultTarget].
func WithTarget(t Target) Option {
	return func(cfg *monitorConfig) error {
		cfg.target = &t
		return nil
	}
}

// WithDuration sets how long [Monitor.Run] keeps polling before it stops.
// Defaults to 6 minutes.
//
// Returns an error if the duration is zero or negative.
func WithDuration(d time.Duration) Option {
	return func(cfg *monitorConfig) error {
		if d <= 0 {
			return errors.New("duration must be positive")
		}
		cfg.duration = d
		return nil
	}
}

// WithPollInterval sets the wait between reads. Defaults to 3 seconds.
//
// Returns an error if the interval is zero or negative.
func WithPollInterval(d time.Duration) Option {
	return func(cfg *monitorConfig) error {
		if d <= 0 {
			return errors.New("poll interval must be positive")
		}
		cfg.pollInterval = d
		return nil
	}
}

// WithErrorBackoff sets the wait after a failed read. Defaults to 5 seconds.
//
// Returns an error if the duration is zero or negative.
func WithErrorBackoff(d time.Duration) Option {
	return func(cfg *monitorConfig) error {
		if d <= 0 {
			return errors.New("error backoff must be positive")
		}
		cfg.errorBackoff = d
		return nil
	}
}

// WithMissingThreshold sets how many consecutive failures are tolerated
// before a missing element triggers a page reload. Defaults to 10.
//
// Returns an error if n is negative.
func WithMissingThreshold(n int) Option {
	return func(cfg *monitorConfig) error {
		if n < 0 {
			return errors.New("missing threshold cannot be negative")
		}
		cfg.missingThreshold = n
		return nil
	}
}

// WithErrorThreshold sets how many consecutive failures are tolerated
// before a read error triggers a page reload. Defaults to 5.
//
// Returns an error if n is negative.
func WithErrorThreshold(n int) Option {
	return func(cfg *monitorConfig) error {
		if n < 0 {
			return errors.New("error threshold cannot be negative")
		}
		cfg.errorThreshold = n
		return nil
	}
}

// WithHistoryFile sets the path of the JSON history file.
// Defaults to "crash_records.json".
func WithHistoryFile(path string) Option {
	return func(cfg *monitorConfig) error {
		if path == "" {
			return errors.New("history file path cannot be empty")
		}
		cfg.historyFile = path
		return nil
	}
}

// WithTableFile sets the path of the CSV table file.
// Defaults to "crash_records.csv".
func WithTableFile(path string) Option {
	return func(cfg *monitorConfig) error {
		if path == "" {
			return errors.New("table file path cannot be empty")
		}
		cfg.tableFile = path
		return nil
	}
}

// WithDashboardPort serves the live dashboard on the given port while the
// monitor runs. The dashboard is disabled by default; a port of 0 keeps it
// disabled.
//
// Returns an error if the port is outside the valid range (0-65535).
func WithDashboardPort(port int) Option {
	return func(cfg *monitorConfig) error {
		if port < 0 || port > 65535 {
			return errors.New("port must be between 0 and 65535")
		}
		cfg.dashboardPort = port
		return nil
	}
}

// WithTitle sets the dashboard title. Defaults to "Crash Monitor".
func WithTitle(title string) Option {
	return func(cfg *monitorConfig) error {
		cfg.title = title
		return nil
	}
}

// WithLogger sets a custom [slog.Logger] for the Monitor instance.
// If not specified, [slog.Default] is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *monitorConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithObservationCallback registers a function called with every new
// [Observation] once it has been written to both files.
//
// Multiple callbacks run in registration order on the polling goroutine,
// so they must not block. Panics are recovered and logged.
//
// Example:
//
//	m, err := crashwatch.New(
//	    crashwatch.WithObservationCallback(func(o crashwatch.Observation) {
//	        fmt.Println("crashed at", o.Value)
//	    }),
//	)
//
// Nil callbacks are silently ignored.
func WithObservationCallback(cb func(Observation)) Option {
	return func(cfg *monitorConfig) error {
		if cb == nil {
			return nil
		}
		cfg.callbacks = append(cfg.callbacks, cb)
		return nil
	}
}

// withLauncher replaces the session launcher chosen by the target driver.
func withLauncher(l browser.Launcher) Option {
	return func(cfg *monitorConfig) error {
		if l == nil {
			return errors.New("launcher cannot be nil")
		}
		cfg.launcher = l
		return nil
	}
}
