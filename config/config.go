// Package config provides YAML configuration parsing for crashwatch.
//
// This package enables running crashwatch as a standalone binary with a
// configuration file, as an alternative to the programmatic SDK approach.
//
// Example configuration:
//
//	duration: 6m
//	poll_interval: 3s
//	history_file: crash_records.json
//
//	target:
//	  name: FaucetPay Crash
//	  url: https://faucetpay.io/crash
//	  selector: "#crash-payout-text"
//	  extractor: "prefix:Crashed @"
//	  headers:
//	    User-Agent: ${CRASHWATCH_UA:-crashwatch}
package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jpalmerr/crashwatch"
)

// minPollInterval is the minimum allowed polling interval for configs.
const minPollInterval = 500 * time.Millisecond

// Defaults applied by [Parse] to fields left unset.
const (
	DefaultDuration         = 6 * time.Minute
	DefaultPollInterval     = 3 * time.Second
	DefaultErrorBackoff     = 5 * time.Second
	DefaultMissingThreshold = 10
	DefaultErrorThreshold   = 5
	DefaultHistoryFile      = "crash_records.json"
	DefaultTableFile        = "crash_records.csv"
)

// EnvMonitorDuration names the environment variable holding the run
// duration in whole minutes.
const EnvMonitorDuration = "MONITOR_DURATION"

// Config is the root configuration structure for crashwatch.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// Title is the dashboard title. Defaults to "Crash Monitor" if not set.
	Title string `yaml:"title"`

	// Duration is how long a run lasts. Defaults to 6m.
	Duration Duration `yaml:"duration"`

	// PollInterval is the wait between reads. Defaults to 3s.
	PollInterval Duration `yaml:"poll_interval"`

	// ErrorBackoff is the wait after a failed read. Defaults to 5s.
	ErrorBackoff Duration `yaml:"error_backoff"`

	// MissingThreshold is the number of consecutive failures tolerated
	// while the element is absent before the page is reloaded.
	MissingThreshold *int `yaml:"missing_threshold"`

	// ErrorThreshold is the number of consecutive failures tolerated
	// after read errors before the page is reloaded.
	ErrorThreshold *int `yaml:"error_threshold"`

	// HistoryFile is the JSON history path.
	HistoryFile string `yaml:"history_file"`

	// TableFile is the CSV table path.
	TableFile string `yaml:"table_file"`

	// DashboardPort enables the dashboard when non-zero.
	DashboardPort int `yaml:"dashboard_port"`

	// Target describes the watched page element.
	Target TargetConfig `yaml:"target"`
}

// TargetConfig defines the watched page and element.
type TargetConfig struct {
	// Name is the display name used in logs. Defaults to "FaucetPay Crash".
	Name string `yaml:"name"`

	// URL is the page address.
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	URL string `yaml:"url"`

	// Selector is the CSS selector of the element holding the value.
	Selector string `yaml:"selector"`

	// Extractor determines how the value is pulled out of the element text.
	// Can be shorthand ("prefix:Crashed @", "regex:...") or structured.
	Extractor ExtractorConfig `yaml:"extractor"`

	// Driver is "playwright" (default) or "static".
	Driver string `yaml:"driver"`

	// WaitUntil is the navigation load state.
	WaitUntil string `yaml:"wait_until"`

	// NavigationTimeout bounds page loads and reloads.
	NavigationTimeout Duration `yaml:"navigation_timeout"`

	// ReadTimeout bounds a single element read.
	ReadTimeout Duration `yaml:"read_timeout"`

	// Headless runs the browser without a window. Defaults to true.
	Headless *bool `yaml:"headless"`

	// BrowserArgs replaces the default Chromium launch flags when set.
	BrowserArgs []string `yaml:"browser_args"`

	// Headers are extra HTTP headers sent with every page request.
	// Values support environment variable substitution.
	Headers map[string]string `yaml:"headers"`
}

// ExtractorConfig specifies how the value is read from the element text.
//
// It supports two formats in YAML:
//
// Shorthand string:
//
//	extractor: "prefix:Crashed @"
//	extractor: "regex:([0-9.]+)x"
//	extractor: text
//	extractor: default
//
// Structured object:
//
//	extractor:
//	  type: regex
//	  pattern: "([0-9.]+)x"
type ExtractorConfig struct {
	// Type is the extractor type: "default", "text", "prefix", "regex".
	Type string

	// Prefix is the marker stripped from the text (for type: prefix).
	Prefix string

	// Pattern is the regular expression (for type: regex).
	Pattern string
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// UnmarshalYAML implements yaml.Unmarshaler for ExtractorConfig.
func (e *ExtractorConfig) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		return e.parseShorthand(s)
	}

	if node.Kind == yaml.MappingNode {
		// temporary struct to avoid infinite recursion
		var raw struct {
			Type    string `yaml:"type"`
			Prefix  string `yaml:"prefix"`
			Pattern string `yaml:"pattern"`
		}
		if err := node.Decode(&raw); err != nil {
			return err
		}
		e.Type = raw.Type
		e.Prefix = raw.Prefix
		e.Pattern = raw.Pattern
		return nil
	}

	return fmt.Errorf("extractor must be a string or object, got %v", node.Kind)
}

// parseShorthand parses extractor shorthand syntax.
//
// Supported formats:
//   - "default" → strip "Crashed @"
//   - "text" → use the whole element text
//   - "prefix:<text>" → strip a custom marker
//   - "regex:<pattern>" → first capture group of a pattern
func (e *ExtractorConfig) parseShorthand(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	if idx := strings.Index(s, ":"); idx != -1 {
		e.Type = s[:idx]
		value := s[idx+1:]

		switch e.Type {
		case "prefix":
			e.Prefix = value
		case "regex":
			e.Pattern = value
		default:
			return fmt.Errorf("unknown extractor type %q", e.Type)
		}
		return nil
	}

	switch s {
	case "default", "text":
		e.Type = s
	default:
		return fmt.Errorf("unknown extractor %q (expected 'default', 'text', 'prefix:<text>', or 'regex:<pattern>')", s)
	}
	return nil
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// Environment variables in the file are expanded before parsing.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in the target URL and header values.
// Unset fields take the defaults listed in the package constants.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Duration == 0 {
		c.Duration = Duration(DefaultDuration)
	}
	if c.PollInterval == 0 {
		c.PollInterval = Duration(DefaultPollInterval)
	}
	if c.ErrorBackoff == 0 {
		c.ErrorBackoff = Duration(DefaultErrorBackoff)
	}
	if c.MissingThreshold == nil {
		n := DefaultMissingThreshold
		c.MissingThreshold = &n
	}
	if c.ErrorThreshold == nil {
		n := DefaultErrorThreshold
		c.ErrorThreshold = &n
	}
	if c.HistoryFile == "" {
		c.HistoryFile = DefaultHistoryFile
	}
	if c.TableFile == "" {
		c.TableFile = DefaultTableFile
	}

	t := &c.Target
	if t.Name == "" {
		t.Name = crashwatch.DefaultTargetName
	}
	if t.URL == "" {
		t.URL = crashwatch.DefaultURL
	}
	if t.Selector == "" {
		t.Selector = crashwatch.DefaultSelector
	}
}

// expandAndValidate expands environment variables and validates the config.
func (c *Config) expandAndValidate() error {
	if c.Duration.Duration() <= 0 {
		return fmt.Errorf("duration must be positive, got %s", c.Duration.Duration())
	}
	if c.PollInterval.Duration() < minPollInterval {
		return fmt.Errorf("poll_interval must be at least %s, got %s", minPollInterval, c.PollInterval.Duration())
	}
	if c.ErrorBackoff.Duration() < 0 {
		return fmt.Errorf("error_backoff cannot be negative, got %s", c.ErrorBackoff.Duration())
	}
	if *c.MissingThreshold < 0 {
		return fmt.Errorf("missing_threshold cannot be negative, got %d", *c.MissingThreshold)
	}
	if *c.ErrorThreshold < 0 {
		return fmt.Errorf("error_threshold cannot be negative, got %d", *c.ErrorThreshold)
	}
	if c.DashboardPort < 0 || c.DashboardPort > 65535 {
		return fmt.Errorf("dashboard_port must be between 0 and 65535, got %d", c.DashboardPort)
	}
	if c.HistoryFile == c.TableFile {
		return fmt.Errorf("history_file and table_file must differ, both are %q", c.HistoryFile)
	}

	return c.Target.expandAndValidate()
}

func (t *TargetConfig) expandAndValidate() error {
	expanded, err := expandEnvVars(t.URL)
	if err != nil {
		return fmt.Errorf("target (%s): url: %w", t.Name, err)
	}
	t.URL = expanded

	parsedURL, err := url.Parse(t.URL)
	if err != nil {
		return fmt.Errorf("target (%s): invalid url: %w", t.Name, err)
	}
	if parsedURL.Scheme == "" {
		return fmt.Errorf("target (%s): url must have a scheme (http:// or https://)", t.Name)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("target (%s): url scheme must be http or https, got %q", t.Name, parsedURL.Scheme)
	}

	if strings.TrimSpace(t.Selector) == "" {
		return fmt.Errorf("target (%s): selector cannot be blank", t.Name)
	}

	for k, v := range t.Headers {
		expanded, err := expandEnvVars(v)
		if err != nil {
			return fmt.Errorf("target (%s): headers[%s]: %w", t.Name, k, err)
		}
		t.Headers[k] = expanded
	}

	switch t.Driver {
	case "", crashwatch.DriverPlaywright, crashwatch.DriverStatic:
	default:
		return fmt.Errorf("target (%s): driver must be %s or %s, got %q",
			t.Name, crashwatch.DriverPlaywright, crashwatch.DriverStatic, t.Driver)
	}

	switch t.WaitUntil {
	case "", "load", "domcontentloaded", "networkidle", "commit":
	default:
		return fmt.Errorf("target (%s): wait_until must be load, domcontentloaded, networkidle, or commit, got %q",
			t.Name, t.WaitUntil)
	}

	if t.NavigationTimeout != 0 && t.NavigationTimeout.Duration() < time.Second {
		return fmt.Errorf("target (%s): navigation_timeout must be at least 1s if specified, got %s",
			t.Name, t.NavigationTimeout.Duration())
	}
	if t.ReadTimeout != 0 && t.ReadTimeout.Duration() < 100*time.Millisecond {
		return fmt.Errorf("target (%s): read_timeout must be at least 100ms if specified, got %s",
			t.Name, t.ReadTimeout.Duration())
	}

	return validateExtractor(&t.Extractor, fmt.Sprintf("target (%s)", t.Name))
}

// validateExtractor validates an extractor configuration.
func validateExtractor(e *ExtractorConfig, context string) error {
	if e.Type == "" {
		return nil // empty means default, which is valid
	}

	switch e.Type {
	case "default", "text":
	case "prefix":
		if strings.TrimSpace(e.Prefix) == "" {
			return fmt.Errorf("%s: extractor type 'prefix' requires a prefix", context)
		}
	case "regex":
		if e.Pattern == "" {
			return fmt.Errorf("%s: extractor type 'regex' requires a pattern", context)
		}
		if _, err := regexp.Compile(e.Pattern); err != nil {
			return fmt.Errorf("%s: invalid extractor pattern: %w", context, err)
		}
	default:
		return fmt.Errorf("%s: unknown extractor type %q", context, e.Type)
	}

	return nil
}

// ParseMonitorDuration parses a run duration given in whole minutes.
func ParseMonitorDuration(s string) (time.Duration, error) {
	minutes, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%s: expected whole minutes, got %q", EnvMonitorDuration, s)
	}
	if minutes <= 0 {
		return 0, fmt.Errorf("%s: must be positive, got %d", EnvMonitorDuration, minutes)
	}
	return time.Duration(minutes) * time.Minute, nil
}

// MonitorDurationFromEnv reads [EnvMonitorDuration]. The boolean reports
// whether the variable was set.
func MonitorDurationFromEnv() (time.Duration, bool, error) {
	raw, ok := os.LookupEnv(EnvMonitorDuration)
	if !ok || strings.TrimSpace(raw) == "" {
		return 0, false, nil
	}
	d, err := ParseMonitorDuration(raw)
	if err != nil {
		return 0, true, err
	}
	return d, true, nil
}
