package crashwatch

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/jpalmerr/crashwatch/internal/browser"
)

// Defaults for the page watched when no [Target] is configured.
const (
	DefaultTargetName = "FaucetPay Crash"
	DefaultURL        = "https://faucetpay.io/crash"
	DefaultSelector   = "#crash-payout-text"
)

// Driver names accepted by [WithDriver].
const (
	// DriverPlaywright renders the page in headless Chromium.
	DriverPlaywright = browser.DriverPlaywright

	// DriverStatic fetches server-rendered HTML without a browser.
	DriverStatic = browser.DriverStatic
)

// Target is the page element to watch.
//
// Target is immutable after creation via [NewTarget]. All fields are
// private with getter methods that return copies of mutable data, so a
// target cannot be modified after construction.
//
// Targets are configured using [TargetOption] functions such as
// [WithExtractor], [WithDriver], [WithHeaders] and [WithNavigationTimeout].
type Target struct {
	name              string
	url               string
	selector          string
	extractor         Extractor
	driver            string
	waitUntil         string
	navigationTimeout time.Duration
	readTimeout       time.Duration
	headless          bool
	browserArgs       []string
	headers           map[string]string
}

// Name returns the target's display name.
func (t Target) Name() string {
	return t.name
}

// URL returns the page URL.
func (t Target) URL() string {
	return t.url
}

// Selector returns the CSS selector of the watched element.
func (t Target) Selector() string {
	return t.selector
}

// Extractor returns the target's [Extractor].
// Returns nil if none was specified, in which case [DefaultExtractor] is used.
func (t Target) Extractor() Extractor {
	return t.extractor
}

// Driver returns the session driver, [DriverPlaywright] or [DriverStatic].
func (t Target) Driver() string {
	return t.driver
}

// WaitUntil returns the load state navigation waits for.
func (t Target) WaitUntil() string {
	return t.waitUntil
}

// NavigationTimeout returns the limit for loading and reloading the page.
func (t Target) NavigationTimeout() time.Duration {
	return t.navigationTimeout
}

// ReadTimeout returns the limit for a single element read.
func (t Target) ReadTimeout() time.Duration {
	return t.readTimeout
}

// Headless reports whether the browser runs without a window.
func (t Target) Headless() bool {
	return t.headless
}

// BrowserArgs returns a copy of the extra browser flags.
func (t Target) BrowserArgs() []string {
	return append([]string(nil), t.browserArgs...)
}

// Headers returns a copy of the extra request headers.
// Returns nil if no headers are set.
func (t Target) Headers() map[string]string {
	return copyMap(t.headers)
}

// NewTarget creates a [Target] for the element matching selector on the
// page at rawURL.
//
// The rawURL parameter must be a valid URL with a scheme (http:// or https://).
// Unless overridden, the page is rendered with [DriverPlaywright] in headless
// Chromium, navigation waits for network idle with a 60 second limit, and
// values are read with [DefaultExtractor].
//
// Returns an error if the name or selector is empty or the URL is invalid.
//
// Example:
//
//	target, err := crashwatch.NewTarget("Crash", "https://faucetpay.io/crash", "#crash-payout-text",
//	    crashwatch.WithNavigationTimeout(90 * time.Second),
//	)
func NewTarget(name, rawURL, selector string, opts ...TargetOption) (Target, error) {
	if name == "" {
		return Target{}, errors.New("target name cannot be empty")
	}
	if strings.TrimSpace(selector) == "" {
		return Target{}, errors.New("target selector cannot be empty")
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return Target{}, errors.New("invalid URL: " + err.Error())
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return Target{}, errors.New("URL must have a scheme (http:// or https://)")
	}

	cfg := &targetConfig{
		driver:            DriverPlaywright,
		waitUntil:         browser.DefaultWaitUntil,
		navigationTimeout: browser.DefaultNavigationTimeout,
		readTimeout:       browser.DefaultActionTimeout,
		headless:          true,
		browserArgs:       append([]string(nil), browser.DefaultBrowserArgs...),
		headers:           make(map[string]string),
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return Target{}, err
		}
	}

	return Target{
		name:              name,
		url:               rawURL,
		selector:          selector,
		extractor:         cfg.extractor,
		driver:            cfg.driver,
		waitUntil:         cfg.waitUntil,
		navigationTimeout: cfg.navigationTimeout,
		readTimeout:       cfg.readTimeout,
		headless:          cfg.headless,
		browserArgs:       cfg.browserArgs,
		headers:           cfg.headers,
	}, nil
}

// DefaultTarget returns the FaucetPay crash page target with default options.
func DefaultTarget() Target {
	t, err := NewTarget(DefaultTargetName, DefaultURL, DefaultSelector)
	if err != nil {
		panic("crashwatch: invalid default target: " + err.Error())
	}
	return t
}

// sessionOptions converts the target to browser session options.
func (t Target) sessionOptions() browser.Options {
	return browser.Options{
		Headless:          t.headless,
		Args:              t.BrowserArgs(),
		WaitUntil:         t.waitUntil,
		NavigationTimeout: t.navigationTimeout,
		ActionTimeout:     t.readTimeout,
		Headers:           t.Headers(),
	}
}

// copyMap returns a shallow copy of the map.
func copyMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	cp := make(map[string]string, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}
