package browser

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned by [Session.Text] when no element matches the selector.
	ErrNotFound = errors.New("element not found")

	// ErrTimeout wraps failures caused by an operation exceeding its timeout.
	ErrTimeout = errors.New("browser operation timed out")
)

// Driver names accepted by [Launch].
const (
	DriverPlaywright = "playwright"
	DriverStatic     = "static"
)

// Default values for [Options].
const (
	DefaultNavigationTimeout = 60 * time.Second
	DefaultActionTimeout     = 30 * time.Second
	DefaultWaitUntil         = "networkidle"
)

// DefaultBrowserArgs are the Chromium flags used when none are configured.
var DefaultBrowserArgs = []string{"--no-sandbox", "--disable-dev-shm-usage", "--disable-gpu"}

// Session is an open page that can be navigated, read and reloaded.
//
// Implementations are not required to be safe for concurrent use; the poller
// drives a session from a single goroutine.
type Session interface {
	// Goto navigates to url and waits for the configured load state.
	Goto(ctx context.Context, url string) error

	// Text returns the rendered text of the first element matching selector.
	// It returns an error wrapping ErrNotFound when nothing matches.
	Text(ctx context.Context, selector string) (string, error)

	// Reload reloads the current page and waits for the configured load state.
	Reload(ctx context.Context) error

	// Close releases every resource held by the session. Safe to call twice.
	Close() error
}

// Options configures a new [Session].
type Options struct {
	// Headless runs the browser without a window (playwright only).
	Headless bool

	// Args are extra browser command-line flags (playwright only).
	Args []string

	// WaitUntil is the load state navigation waits for:
	// "load", "domcontentloaded", "networkidle" or "commit".
	WaitUntil string

	// NavigationTimeout bounds Goto and Reload.
	NavigationTimeout time.Duration

	// ActionTimeout bounds element queries.
	ActionTimeout time.Duration

	// Headers are sent with every request the session makes.
	Headers map[string]string
}

// Launcher opens a new [Session].
type Launcher func(ctx context.Context, opts Options) (Session, error)

// launchers maps driver names to their implementations.
var launchers = map[string]Launcher{
	DriverPlaywright: LaunchPlaywright,
	DriverStatic:     LaunchStatic,
}

// Drivers returns the registered driver names, sorted.
func Drivers() []string {
	names := make([]string, 0, len(launchers))
	for name := range launchers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LauncherFor returns the [Launcher] registered under driver.
// An empty driver selects playwright.
func LauncherFor(driver string) (Launcher, error) {
	if driver == "" {
		driver = DriverPlaywright
	}
	l, ok := launchers[driver]
	if !ok {
		return nil, fmt.Errorf("unknown driver %q (expected one of: %s)", driver, strings.Join(Drivers(), ", "))
	}
	return l, nil
}

// Launch opens a session with the named driver.
func Launch(ctx context.Context, driver string, opts Options) (Session, error) {
	l, err := LauncherFor(driver)
	if err != nil {
		return nil, err
	}
	return l(ctx, opts)
}

// ValidWaitUntil reports whether s is an accepted [Options.WaitUntil] value.
func ValidWaitUntil(s string) bool {
	switch s {
	case "", "load", "domcontentloaded", "networkidle", "commit":
		return true
	default:
		return false
	}
}

// withDefaults fills zero-valued fields of opts.
func (o Options) withDefaults() Options {
	if o.NavigationTimeout <= 0 {
		o.NavigationTimeout = DefaultNavigationTimeout
	}
	if o.ActionTimeout <= 0 {
		o.ActionTimeout = DefaultActionTimeout
	}
	if o.WaitUntil == "" {
		o.WaitUntil = DefaultWaitUntil
	}
	return o
}

// effectiveTimeout clamps limit to the time remaining before ctx's deadline.
// The result is never below one millisecond so engines that treat zero as
// "no timeout" still give up.
func effectiveTimeout(ctx context.Context, limit time.Duration) time.Duration {
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < limit {
			limit = remaining
		}
	}
	if limit < time.Millisecond {
		limit = time.Millisecond
	}
	return limit
}

// headerValue looks up a header case-insensitively.
func headerValue(headers map[string]string, key string) (string, bool) {
	for k, v := range headers {
		if http.CanonicalHeaderKey(k) == http.CanonicalHeaderKey(key) {
			return v, true
		}
	}
	return "", false
}
