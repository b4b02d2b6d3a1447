package crashwatch

import (
	"slices"
	"testing"
	"time"
)

func TestNewTarget_Valid(t *testing.T) {
	target, err := NewTarget("Crash", "https://faucetpay.io/crash", "#crash-payout-text")
	if err != nil {
		t.Fatalf("NewTarget() error = %v", err)
	}

	if target.Name() != "Crash" {
		t.Errorf("Name() = %v, want %v", target.Name(), "Crash")
	}
	if target.URL() != "https://faucetpay.io/crash" {
		t.Errorf("URL() = %v", target.URL())
	}
	if target.Selector() != "#crash-payout-text" {
		t.Errorf("Selector() = %v", target.Selector())
	}
	if target.Driver() != DriverPlaywright {
		t.Errorf("Driver() = %v, want %v", target.Driver(), DriverPlaywright)
	}
	if target.WaitUntil() != "networkidle" {
		t.Errorf("WaitUntil() = %v, want networkidle", target.WaitUntil())
	}
	if target.NavigationTimeout() != 60*time.Second {
		t.Errorf("NavigationTimeout() = %v, want 60s", target.NavigationTimeout())
	}
	if target.ReadTimeout() != 30*time.Second {
		t.Errorf("ReadTimeout() = %v, want 30s", target.ReadTimeout())
	}
	if !target.Headless() {
		t.Error("Headless() = false, want true")
	}
	wantArgs := []string{"--no-sandbox", "--disable-dev-shm-usage", "--disable-gpu"}
	if !slices.Equal(target.BrowserArgs(), wantArgs) {
		t.Errorf("BrowserArgs() = %v, want %v", target.BrowserArgs(), wantArgs)
	}
	if target.Extractor() != nil {
		t.Error("Extractor() should be nil when not set")
	}
}

func TestNewTarget_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		tName    string
		url      string
		selector string
	}{
		{"empty name", "", "https://example.com", "#x"},
		{"empty selector", "Crash", "https://example.com", ""},
		{"blank selector", "Crash", "https://example.com", "   "},
		{"no scheme", "Crash", "example.com/crash", "#x"},
		{"empty url", "Crash", "", "#x"},
		{"just path", "Crash", "/crash", "#x"},
		{"ftp scheme", "Crash", "ftp://example.com/crash", "#x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewTarget(tt.tName, tt.url, tt.selector); err == nil {
				t.Errorf("NewTarget(%q, %q, %q) expected error, got nil", tt.tName, tt.url, tt.selector)
			}
		})
	}
}

func TestDefaultTarget(t *testing.T) {
	target := DefaultTarget()
	if target.URL() != DefaultURL || target.Selector() != DefaultSelector || target.Name() != DefaultTargetName {
		t.Errorf("DefaultTarget() = %q %q %q", target.Name(), target.URL(), target.Selector())
	}
}

func TestWithDriver(t *testing.T) {
	target, err := NewTarget("Crash", "http://localhost/crash", "#x", WithDriver(DriverStatic))
	if err != nil {
		t.Fatalf("NewTarget() error = %v", err)
	}
	if target.Driver() != DriverStatic {
		t.Errorf("Driver() = %v, want %v", target.Driver(), DriverStatic)
	}

	target, err = NewTarget("Crash", "http://localhost/crash", "#x", WithDriver(""))
	if err != nil {
		t.Fatalf("NewTarget() error = %v", err)
	}
	if target.Driver() != DriverPlaywright {
		t.Errorf("Driver() = %v, want %v", target.Driver(), DriverPlaywright)
	}

	if _, err := NewTarget("Crash", "http://localhost/crash", "#x", WithDriver("chromedp")); err == nil {
		t.Error("WithDriver() expected error for unknown driver")
	}
}

func TestWithWaitUntil(t *testing.T) {
	for _, state := range []string{"load", "domcontentloaded", "networkidle", "commit"} {
		target, err := NewTarget("Crash", "https://example.com", "#x", WithWaitUntil(state))
		if err != nil {
			t.Fatalf("WithWaitUntil(%q) error = %v", state, err)
		}
		if target.WaitUntil() != state {
			t.Errorf("WaitUntil() = %v, want %v", target.WaitUntil(), state)
		}
	}

	for _, state := range []string{"", "idle", "LOAD"} {
		if _, err := NewTarget("Crash", "https://example.com", "#x", WithWaitUntil(state)); err == nil {
			t.Errorf("WithWaitUntil(%q) expected error", state)
		}
	}
}

func TestWithTimeouts(t *testing.T) {
	target, err := NewTarget("Crash", "https://example.com", "#x",
		WithNavigationTimeout(90*time.Second),
		WithReadTimeout(5*time.Second),
	)
	if err != nil {
		t.Fatalf("NewTarget() error = %v", err)
	}
	if target.NavigationTimeout() != 90*time.Second {
		t.Errorf("NavigationTimeout() = %v", target.NavigationTimeout())
	}
	if target.ReadTimeout() != 5*time.Second {
		t.Errorf("ReadTimeout() = %v", target.ReadTimeout())
	}

	tests := []struct {
		name string
		opt  TargetOption
	}{
		{"zero navigation", WithNavigationTimeout(0)},
		{"negative navigation", WithNavigationTimeout(-time.Second)},
		{"zero read", WithReadTimeout(0)},
		{"negative read", WithReadTimeout(-time.Second)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewTarget("Crash", "https://example.com", "#x", tt.opt); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestWithHeadlessAndBrowserArgs(t *testing.T) {
	target, err := NewTarget("Crash", "https://example.com", "#x",
		WithHeadless(false),
		WithBrowserArgs("--mute-audio"),
	)
	if err != nil {
		t.Fatalf("NewTarget() error = %v", err)
	}
	if target.Headless() {
		t.Error("Headless() = true, want false")
	}
	if !slices.Equal(target.BrowserArgs(), []string{"--mute-audio"}) {
		t.Errorf("BrowserArgs() = %v", target.BrowserArgs())
	}

	target, err = NewTarget("Crash", "https://example.com", "#x", WithBrowserArgs())
	if err != nil {
		t.Fatalf("NewTarget() error = %v", err)
	}
	if len(target.BrowserArgs()) != 0 {
		t.Errorf("BrowserArgs() = %v, want none", target.BrowserArgs())
	}
}

func TestWithHeaders(t *testing.T) {
	target, err := NewTarget("Crash", "https://example.com", "#x",
		WithHeaders("User-Agent", "crashwatch", "Accept-Language", "en"),
	)
	if err != nil {
		t.Fatalf("NewTarget() error = %v", err)
	}

	headers := target.Headers()
	if headers["User-Agent"] != "crashwatch" || headers["Accept-Language"] != "en" {
		t.Errorf("Headers() = %v", headers)
	}

	if _, err := NewTarget("Crash", "https://example.com", "#x", WithHeaders("User-Agent")); err == nil {
		t.Error("WithHeaders() expected error for odd number of arguments")
	}
}

func TestTarget_Immutability(t *testing.T) {
	target, err := NewTarget("Crash", "https://example.com", "#x",
		WithHeaders("User-Agent", "crashwatch"),
		WithBrowserArgs("--no-sandbox"),
	)
	if err != nil {
		t.Fatalf("NewTarget() error = %v", err)
	}

	headers := target.Headers()
	headers["User-Agent"] = "modified"
	headers["X-New"] = "value"

	args := target.BrowserArgs()
	args[0] = "--modified"

	if target.Headers()["User-Agent"] != "crashwatch" {
		t.Error("mutating Headers() result affected the target")
	}
	if _, ok := target.Headers()["X-New"]; ok {
		t.Error("mutating Headers() result added a header to the target")
	}
	if target.BrowserArgs()[0] != "--no-sandbox" {
		t.Error("mutating BrowserArgs() result affected the target")
	}
}

func TestTarget_SessionOptions(t *testing.T) {
	target, err := NewTarget("Crash", "https://example.com", "#x",
		WithHeaders("User-Agent", "crashwatch"),
		WithReadTimeout(2*time.Second),
	)
	if err != nil {
		t.Fatalf("NewTarget() error = %v", err)
	}

	opts := target.sessionOptions()
	if !opts.Headless || opts.WaitUntil != "networkidle" {
		t.Errorf("sessionOptions() = %+v", opts)
	}
	if opts.ActionTimeout != 2*time.Second || opts.NavigationTimeout != 60*time.Second {
		t.Errorf("sessionOptions() timeouts = %v, %v", opts.NavigationTimeout, opts.ActionTimeout)
	}

	opts.Headers["User-Agent"] = "modified"
	if target.Headers()["User-Agent"] != "crashwatch" {
		t.Error("sessionOptions() shares the header map with the target")
	}
}
