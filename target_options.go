package crashwatch

import (
	"errors"
	"fmt"
	"time"

	"github.com/jpalmerr/crashwatch/internal/browser"
)

// targetConfig holds mutable state during target construction.
type targetConfig struct {
	extractor         Extractor
	driver            string
	waitUntil         string
	navigationTimeout time.Duration
	readTimeout       time.Duration
	headless          bool
	browserArgs       []string
	headers           map[string]string
}

// TargetOption is a function that configures a [Target] during construction.
//
// Options return an error if validation fails.
type TargetOption func(*targetConfig) error

// WithExtractor sets the [Extractor] that turns the element text into a value.
// If not specified, [DefaultExtractor] is used.
//
// Example:
//
//	target, err := crashwatch.NewTarget("Crash", url, "#payout",
//	    crashwatch.WithExtractor(crashwatch.MustRegexExtractor(`(\d+\.\d+)x`)),
//	)
func WithExtractor(e Extractor) TargetOption {
	return func(cfg *targetConfig) error {
		cfg.extractor = e
		return nil
	}
}

// WithDriver selects how the page is loaded: [DriverPlaywright] (default)
// renders it in Chromium, [DriverStatic] fetches the HTML over plain HTTP
// on every read and only suits server-rendered pages.
//
// Returns an error for an unknown driver.
func WithDriver(driver string) TargetOption {
	return func(cfg *targetConfig) error {
		if _, err := browser.LauncherFor(driver); err != nil {
			return err
		}
		if driver == "" {
			driver = DriverPlaywright
		}
		cfg.driver = driver
		return nil
	}
}

// WithWaitUntil sets the load state that navigation waits for:
// "load", "domcontentloaded", "networkidle" (default) or "commit".
//
// Returns an error for any other value.
func WithWaitUntil(state string) TargetOption {
	return func(cfg *targetConfig) error {
		if state == "" || !browser.ValidWaitUntil(state) {
			return fmt.Errorf("invalid wait_until %q (expected load, domcontentloaded, networkidle or commit)", state)
		}
		cfg.waitUntil = state
		return nil
	}
}

// WithNavigationTimeout sets the limit for loading and reloading the page.
// Defaults to 60 seconds. The limit is further clamped to the time left in
// the run.
//
// Returns an error if the duration is zero or negative.
func WithNavigationTimeout(d time.Duration) TargetOption {
	return func(cfg *targetConfig) error {
		if d <= 0 {
			return errors.New("navigation timeout must be positive")
		}
		cfg.navigationTimeout = d
		return nil
	}
}

// WithReadTimeout sets the limit for a single element read. Defaults to
// 30 seconds. A read that exceeds it triggers an immediate page reload.
//
// Returns an error if the duration is zero or negative.
func WithReadTimeout(d time.Duration) TargetOption {
	return func(cfg *targetConfig) error {
		if d <= 0 {
			return errors.New("read timeout must be positive")
		}
		cfg.readTimeout = d
		return nil
	}
}

// WithHeadless controls whether the browser runs without a window.
// Defaults to true. Ignored by [DriverStatic].
func WithHeadless(headless bool) TargetOption {
	return func(cfg *targetConfig) error {
		cfg.headless = headless
		return nil
	}
}

// WithBrowserArgs replaces the Chromium command-line flags. The default is
// --no-sandbox, --disable-dev-shm-usage and --disable-gpu.
// Ignored by [DriverStatic].
func WithBrowserArgs(args ...string) TargetOption {
	return func(cfg *targetConfig) error {
		cfg.browserArgs = append([]string(nil), args...)
		return nil
	}
}

// WithHeaders adds request headers sent with every page load.
//
// Accepts variadic key-value pairs. The number of arguments must be even.
//
// Example:
//
//	target, err := crashwatch.NewTarget("Crash", url, "#payout",
//	    crashwatch.WithHeaders("User-Agent", "crashwatch/1.0"),
//	)
//
// Returns an error if an odd number of arguments is provided.
func WithHeaders(keyValues ...string) TargetOption {
	return func(cfg *targetConfig) error {
		if len(keyValues)%2 != 0 {
			return errors.New("WithHeaders requires an even number of arguments (key-value pairs)")
		}
		for i := 0; i < len(keyValues); i += 2 {
			cfg.headers[keyValues[i]] = keyValues[i+1]
		}
		return nil
	}
}
