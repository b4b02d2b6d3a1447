package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParse_MinimalConfig(t *testing.T) {
	cfg, err := Parse([]byte(``))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Duration.Duration() != DefaultDuration {
		t.Errorf("Duration = %v, want %v", cfg.Duration.Duration(), DefaultDuration)
	}
	if cfg.PollInterval.Duration() != DefaultPollInterval {
		t.Errorf("PollInterval = %v, want %v", cfg.PollInterval.Duration(), DefaultPollInterval)
	}
	if cfg.ErrorBackoff.Duration() != DefaultErrorBackoff {
		t.Errorf("ErrorBackoff = %v, want %v", cfg.ErrorBackoff.Duration(), DefaultErrorBackoff)
	}
	if *cfg.MissingThreshold != 10 {
		t.Errorf("MissingThreshold = %d, want 10", *cfg.MissingThreshold)
	}
	if *cfg.ErrorThreshold != 5 {
		t.Errorf("ErrorThreshold = %d, want 5", *cfg.ErrorThreshold)
	}
	if cfg.HistoryFile != "crash_records.json" {
		t.Errorf("HistoryFile = %q", cfg.HistoryFile)
	}
	if cfg.TableFile != "crash_records.csv" {
		t.Errorf("TableFile = %q", cfg.TableFile)
	}
	if cfg.DashboardPort != 0 {
		t.Errorf("DashboardPort = %d, want 0", cfg.DashboardPort)
	}
	if cfg.Target.URL != "https://faucetpay.io/crash" {
		t.Errorf("Target.URL = %q", cfg.Target.URL)
	}
	if cfg.Target.Selector != "#crash-payout-text" {
		t.Errorf("Target.Selector = %q", cfg.Target.Selector)
	}
	if cfg.Target.Name != "FaucetPay Crash" {
		t.Errorf("Target.Name = %q", cfg.Target.Name)
	}
}

func TestParse_FullConfig(t *testing.T) {
	yaml := `
title: Night Shift
duration: 30m
poll_interval: 2s
error_backoff: 10s
missing_threshold: 20
error_threshold: 0
history_file: out/history.json
table_file: out/table.csv
dashboard_port: 8090
target:
  name: Mirror
  url: https://mirror.example.com/crash
  selector: ".payout"
  extractor: "regex:([0-9.]+)x"
  driver: static
  wait_until: load
  navigation_timeout: 90s
  read_timeout: 15s
  headless: false
  browser_args: [--no-sandbox]
  headers:
    User-Agent: crashwatch-test
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Title != "Night Shift" {
		t.Errorf("Title = %q", cfg.Title)
	}
	if cfg.Duration.Duration() != 30*time.Minute {
		t.Errorf("Duration = %v", cfg.Duration.Duration())
	}
	if cfg.PollInterval.Duration() != 2*time.Second {
		t.Errorf("PollInterval = %v", cfg.PollInterval.Duration())
	}
	if cfg.ErrorBackoff.Duration() != 10*time.Second {
		t.Errorf("ErrorBackoff = %v", cfg.ErrorBackoff.Duration())
	}
	if *cfg.MissingThreshold != 20 {
		t.Errorf("MissingThreshold = %d, want 20", *cfg.MissingThreshold)
	}
	// explicit zero must survive defaulting
	if *cfg.ErrorThreshold != 0 {
		t.Errorf("ErrorThreshold = %d, want 0", *cfg.ErrorThreshold)
	}
	if cfg.DashboardPort != 8090 {
		t.Errorf("DashboardPort = %d", cfg.DashboardPort)
	}

	tc := cfg.Target
	if tc.Name != "Mirror" || tc.Selector != ".payout" || tc.Driver != "static" || tc.WaitUntil != "load" {
		t.Errorf("Target = %+v", tc)
	}
	if tc.NavigationTimeout.Duration() != 90*time.Second {
		t.Errorf("NavigationTimeout = %v", tc.NavigationTimeout.Duration())
	}
	if tc.ReadTimeout.Duration() != 15*time.Second {
		t.Errorf("ReadTimeout = %v", tc.ReadTimeout.Duration())
	}
	if tc.Headless == nil || *tc.Headless {
		t.Errorf("Headless = %v, want false", tc.Headless)
	}
	if len(tc.BrowserArgs) != 1 || tc.BrowserArgs[0] != "--no-sandbox" {
		t.Errorf("BrowserArgs = %v", tc.BrowserArgs)
	}
	if tc.Headers["User-Agent"] != "crashwatch-test" {
		t.Errorf("Headers = %v", tc.Headers)
	}
	if tc.Extractor.Type != "regex" || tc.Extractor.Pattern != "([0-9.]+)x" {
		t.Errorf("Extractor = %+v", tc.Extractor)
	}
}

func TestParse_ExtractorShorthand(t *testing.T) {
	tests := []struct {
		name        string
		yaml        string
		wantType    string
		wantPrefix  string
		wantPattern string
	}{
		{
			name:       "prefix",
			yaml:       `extractor: "prefix:Crashed @"`,
			wantType:   "prefix",
			wantPrefix: "Crashed @",
		},
		{
			name:        "regex",
			yaml:        `extractor: "regex:(\\d+)x"`,
			wantType:    "regex",
			wantPattern: `(\d+)x`,
		},
		{
			name:        "regex containing a colon",
			yaml:        `extractor: "regex:at: (\\d+)"`,
			wantType:    "regex",
			wantPattern: `at: (\d+)`,
		},
		{
			name:     "text",
			yaml:     `extractor: text`,
			wantType: "text",
		},
		{
			name:     "default",
			yaml:     `extractor: default`,
			wantType: "default",
		},
		{
			name:     "empty (uses default)",
			yaml:     ``,
			wantType: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fullYaml := `
target:
  url: https://example.com
  ` + tt.yaml

			cfg, err := Parse([]byte(fullYaml))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}

			e := cfg.Target.Extractor
			if e.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", e.Type, tt.wantType)
			}
			if e.Prefix != tt.wantPrefix {
				t.Errorf("Prefix = %q, want %q", e.Prefix, tt.wantPrefix)
			}
			if e.Pattern != tt.wantPattern {
				t.Errorf("Pattern = %q, want %q", e.Pattern, tt.wantPattern)
			}
		})
	}
}

func TestParse_ExtractorStructured(t *testing.T) {
	yaml := `
target:
  url: https://example.com
  extractor:
    type: prefix
    prefix: "Busted @"
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	e := cfg.Target.Extractor
	if e.Type != "prefix" {
		t.Errorf("Type = %q, want prefix", e.Type)
	}
	if e.Prefix != "Busted @" {
		t.Errorf("Prefix = %q, want 'Busted @'", e.Prefix)
	}
}

func TestParse_EnvVarSubstitution(t *testing.T) {
	t.Setenv("TEST_CRASH_HOST", "crash.test.com")
	t.Setenv("TEST_CRASH_UA", "agent/1.0")

	yaml := `
target:
  url: https://${TEST_CRASH_HOST}/crash
  headers:
    User-Agent: "${TEST_CRASH_UA}"
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Target.URL != "https://crash.test.com/crash" {
		t.Errorf("URL = %q, want https://crash.test.com/crash", cfg.Target.URL)
	}
	if cfg.Target.Headers["User-Agent"] != "agent/1.0" {
		t.Errorf("Headers[User-Agent] = %q, want agent/1.0", cfg.Target.Headers["User-Agent"])
	}
}

func TestParse_EnvVarDefault(t *testing.T) {
	yaml := `
target:
  url: https://${UNSET_VAR:-fallback.example.com}/crash
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Target.URL != "https://fallback.example.com/crash" {
		t.Errorf("URL = %q, want https://fallback.example.com/crash", cfg.Target.URL)
	}
}

func TestParse_EnvVarMissing(t *testing.T) {
	// MISSING_VAR is expected to not exist in the environment
	yaml := `
target:
  url: https://${MISSING_VAR}/crash
`
	_, err := Parse([]byte(yaml))
	if err == nil {
		t.Fatal("Parse() expected error for missing env var, got nil")
	}
	if !strings.Contains(err.Error(), "MISSING_VAR") {
		t.Errorf("error should mention MISSING_VAR: %v", err)
	}
}

func TestParse_ValidationErrors(t *testing.T) {
	tests := []struct {
		name        string
		yaml        string
		wantErrLike string
	}{
		{
			name:        "bad scheme",
			yaml:        "target:\n  url: ftp://example.com",
			wantErrLike: "url scheme must be http or https",
		},
		{
			name:        "no scheme",
			yaml:        "target:\n  url: example.com/crash",
			wantErrLike: "url must have a scheme",
		},
		{
			name:        "blank selector",
			yaml:        "target:\n  selector: \"   \"",
			wantErrLike: "selector cannot be blank",
		},
		{
			name:        "unknown driver",
			yaml:        "target:\n  driver: selenium",
			wantErrLike: "driver must be",
		},
		{
			name:        "bad wait_until",
			yaml:        "target:\n  wait_until: idle",
			wantErrLike: "wait_until must be",
		},
		{
			name:        "short navigation timeout",
			yaml:        "target:\n  navigation_timeout: 100ms",
			wantErrLike: "navigation_timeout must be at least 1s",
		},
		{
			name:        "short read timeout",
			yaml:        "target:\n  read_timeout: 10ms",
			wantErrLike: "read_timeout must be at least 100ms",
		},
		{
			name:        "poll interval too small",
			yaml:        "poll_interval: 10ms",
			wantErrLike: "poll_interval must be at least",
		},
		{
			name:        "negative duration",
			yaml:        "duration: -1m",
			wantErrLike: "duration must be positive",
		},
		{
			name:        "negative error backoff",
			yaml:        "error_backoff: -1s",
			wantErrLike: "error_backoff cannot be negative",
		},
		{
			name:        "negative missing threshold",
			yaml:        "missing_threshold: -1",
			wantErrLike: "missing_threshold cannot be negative",
		},
		{
			name:        "negative error threshold",
			yaml:        "error_threshold: -3",
			wantErrLike: "error_threshold cannot be negative",
		},
		{
			name:        "port out of range",
			yaml:        "dashboard_port: 70000",
			wantErrLike: "dashboard_port must be between 0 and 65535",
		},
		{
			name:        "same output file twice",
			yaml:        "history_file: out.txt\ntable_file: out.txt",
			wantErrLike: "history_file and table_file must differ",
		},
		{
			name:        "empty prefix",
			yaml:        "target:\n  extractor:\n    type: prefix",
			wantErrLike: "requires a prefix",
		},
		{
			name:        "empty pattern",
			yaml:        "target:\n  extractor:\n    type: regex",
			wantErrLike: "requires a pattern",
		},
		{
			name:        "invalid pattern",
			yaml:        "target:\n  extractor: \"regex:([\"",
			wantErrLike: "invalid extractor pattern",
		},
		{
			name:        "unknown extractor shorthand",
			yaml:        "target:\n  extractor: json:status",
			wantErrLike: "unknown extractor type",
		},
		{
			name:        "unknown extractor word",
			yaml:        "target:\n  extractor: magic",
			wantErrLike: "unknown extractor",
		},
		{
			name:        "unknown structured type",
			yaml:        "target:\n  extractor:\n    type: xpath",
			wantErrLike: "unknown extractor type",
		},
		{
			name:        "invalid duration",
			yaml:        "poll_interval: soon",
			wantErrLike: "invalid duration",
		},
		{
			name:        "malformed yaml",
			yaml:        "target: [",
			wantErrLike: "failed to parse YAML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("Parse() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErrLike) {
				t.Errorf("error = %q, want containing %q", err.Error(), tt.wantErrLike)
			}
		})
	}
}

func TestParse_ErrorsNameTheTarget(t *testing.T) {
	_, err := Parse([]byte("target:\n  name: Mirror\n  url: ftp://example.com"))
	if err == nil {
		t.Fatal("Parse() expected error, got nil")
	}
	if !strings.HasPrefix(err.Error(), "target (Mirror): ") {
		t.Errorf("error = %q, want prefix 'target (Mirror): '", err.Error())
	}
}

func TestDuration_UnmarshalYAML(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
	}{
		{"3s", 3 * time.Second},
		{"500ms", 500 * time.Millisecond},
		{"6m", 6 * time.Minute},
		{"1h30m", 90 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			cfg, err := Parse([]byte("duration: " + tt.input))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if cfg.Duration.Duration() != tt.want {
				t.Errorf("Duration = %v, want %v", cfg.Duration.Duration(), tt.want)
			}
		})
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_VAR", "value")
	t.Setenv("EMPTY_VAR", "") // set but empty

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"no vars", "plain text", "plain text", false},
		{"simple var", "${TEST_VAR}", "value", false},
		{"var in text", "prefix ${TEST_VAR} suffix", "prefix value suffix", false},
		{"multiple vars", "${TEST_VAR}-${TEST_VAR}", "value-value", false},
		{"with default (var set)", "${TEST_VAR:-default}", "value", false},
		{"with default (var unset)", "${UNSET:-default}", "default", false},
		{"missing required", "${MISSING}", "", true},
		{"empty default (var unset)", "${UNSET:-}", "", false},
		{"set but empty var", "${EMPTY_VAR}", "", false},
		{"set but empty with default", "${EMPTY_VAR:-fallback}", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := expandEnvVars(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expandEnvVars() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("expandEnvVars() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("expandEnvVars() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crashwatch.yaml")
	if err := os.WriteFile(path, []byte("title: From File\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Title != "From File" {
		t.Errorf("Title = %q, want From File", cfg.Title)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("Load() expected error, got nil")
	}
	if !strings.Contains(err.Error(), "failed to read config file") {
		t.Errorf("error = %v", err)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	parsed, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse(nil) error = %v", err)
	}
	if cfg.Duration != parsed.Duration || cfg.HistoryFile != parsed.HistoryFile || cfg.Target.URL != parsed.Target.URL {
		t.Errorf("Default() = %+v, want %+v", cfg, parsed)
	}
}

func TestParseMonitorDuration(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Duration
		wantErr bool
	}{
		{"6", 6 * time.Minute, false},
		{" 15 ", 15 * time.Minute, false},
		{"1", time.Minute, false},
		{"0", 0, true},
		{"-2", 0, true},
		{"6m", 0, true},
		{"1.5", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMonitorDuration(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseMonitorDuration(%q) expected error, got %v", tt.input, got)
				}
				if !strings.Contains(err.Error(), EnvMonitorDuration) {
					t.Errorf("error should name %s: %v", EnvMonitorDuration, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMonitorDuration(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseMonitorDuration(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestMonitorDurationFromEnv(t *testing.T) {
	t.Run("unset", func(t *testing.T) {
		t.Setenv(EnvMonitorDuration, "")
		d, set, err := MonitorDurationFromEnv()
		if err != nil || set || d != 0 {
			t.Errorf("MonitorDurationFromEnv() = %v, %v, %v; want 0, false, nil", d, set, err)
		}
	})

	t.Run("set", func(t *testing.T) {
		t.Setenv(EnvMonitorDuration, "2")
		d, set, err := MonitorDurationFromEnv()
		if err != nil || !set || d != 2*time.Minute {
			t.Errorf("MonitorDurationFromEnv() = %v, %v, %v; want 2m, true, nil", d, set, err)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		t.Setenv(EnvMonitorDuration, "soon")
		_, set, err := MonitorDurationFromEnv()
		if err == nil || !set {
			t.Errorf("MonitorDurationFromEnv() set = %v, err = %v; want true and an error", set, err)
		}
	})
}
