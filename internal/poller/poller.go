package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jpalmerr/crashwatch/internal/browser"
)

// Default values for [Config].
const (
	DefaultInterval         = 3 * time.Second
	DefaultErrorBackoff     = 5 * time.Second
	DefaultMissingThreshold = 10
	DefaultErrorThreshold   = 5
)

// Extractor turns the trimmed element text into the value to record.
// It returns false when the text does not carry a value yet.
type Extractor func(text string) (value string, ok bool)

// Page is the subset of a browser session the poller drives.
type Page interface {
	Text(ctx context.Context, selector string) (string, error)
	Reload(ctx context.Context) error
}

// ChangeFunc is called with each value that differs from the previous one.
// A returned error is handled like a read error and the value is offered
// again on the next read.
type ChangeFunc func(ctx context.Context, value string, at time.Time) error

// Config controls what the poller reads and how it recovers.
type Config struct {
	// Selector identifies the element to read.
	Selector string

	// Extractor derives the value from the element text.
	// If nil, the whole trimmed text is the value.
	Extractor Extractor

	// Interval is the wait between reads.
	Interval time.Duration

	// ErrorBackoff is the wait after a read error.
	ErrorBackoff time.Duration

	// MissingThreshold is the number of consecutive failures tolerated
	// before a missing element triggers a reload.
	MissingThreshold int

	// ErrorThreshold is the number of consecutive failures tolerated
	// before a read error triggers a reload.
	ErrorThreshold int
}

// DefaultConfig returns a Config with the default cadence and thresholds
// for the given selector.
func DefaultConfig(selector string) Config {
	return Config{
		Selector:         selector,
		Interval:         DefaultInterval,
		ErrorBackoff:     DefaultErrorBackoff,
		MissingThreshold: DefaultMissingThreshold,
		ErrorThreshold:   DefaultErrorThreshold,
	}
}

// Stats counts what happened during a run.
type Stats struct {
	Reads    int
	Changes  int
	Missing  int
	Errors   int
	Timeouts int
	Reloads  int
}

// Poller reads one element in a loop and reports value changes.
//
// A Poller is driven by a single goroutine via [Poller.Run] and is not safe
// for concurrent use.
type Poller struct {
	page     Page
	cfg      Config
	onChange ChangeFunc
	logger   *slog.Logger
	now      func() time.Time

	lastValue string
	hasLast   bool
	failures  int
	stats     Stats

	lastProgress int
}

// New creates a [Poller]. Zero Interval and ErrorBackoff take their defaults.
func New(page Page, cfg Config, onChange ChangeFunc, logger *slog.Logger) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.ErrorBackoff <= 0 {
		cfg.ErrorBackoff = DefaultErrorBackoff
	}
	return &Poller{
		page:         page,
		cfg:          cfg,
		onChange:     onChange,
		logger:       logger,
		now:          time.Now,
		lastProgress: -1,
	}
}

// Run reads the element until ctx is done.
//
// Run returns nil when ctx is cancelled or its deadline passes, including
// while a wait or a page operation is in progress. It returns an error only
// when a recovery reload fails; the caller owns the session and must still
// close it.
func (p *Poller) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		wait, err := p.step(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		p.logProgress(ctx)

		if wait <= 0 {
			continue
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

// Failures returns the current consecutive-failure count.
func (p *Poller) Failures() int {
	return p.failures
}

// Stats returns the counters accumulated so far.
func (p *Poller) Stats() Stats {
	return p.stats
}

// LastValue returns the most recently recorded value.
func (p *Poller) LastValue() (string, bool) {
	return p.lastValue, p.hasLast
}

// step performs one read and returns how long to wait before the next one.
// A non-nil error is fatal to the run.
func (p *Poller) step(ctx context.Context) (time.Duration, error) {
	p.stats.Reads++

	text, err := p.page.Text(ctx, p.cfg.Selector)
	switch {
	case err == nil:
		return p.handleText(ctx, text)
	case ctx.Err() != nil:
		return 0, nil
	case errors.Is(err, browser.ErrNotFound):
		return p.handleMissing(ctx)
	case errors.Is(err, browser.ErrTimeout):
		return p.handleTimeout(ctx, err)
	default:
		return p.handleError(ctx, err)
	}
}

func (p *Poller) handleText(ctx context.Context, text string) (time.Duration, error) {
	value, ok, err := p.extract(strings.TrimSpace(text))
	if err != nil {
		return p.handleError(ctx, err)
	}
	if !ok || (p.hasLast && value == p.lastValue) {
		return p.cfg.Interval, nil
	}

	if err := p.onChange(ctx, value, p.now()); err != nil {
		return p.handleError(ctx, fmt.Errorf("failed to record value: %w", err))
	}

	p.lastValue, p.hasLast = value, true
	p.failures = 0
	p.stats.Changes++
	return p.cfg.Interval, nil
}

func (p *Poller) handleMissing(ctx context.Context) (time.Duration, error) {
	p.failures++
	p.stats.Missing++
	p.logger.Debug("element not found", "selector", p.cfg.Selector, "failures", p.failures)

	if p.failures > p.cfg.MissingThreshold {
		p.logger.Warn("element not found, reloading page",
			"selector", p.cfg.Selector,
			"failures", p.failures,
		)
		if err := p.reload(ctx); err != nil {
			return p.handleError(ctx, err)
		}
		p.failures = 0
	}
	return p.cfg.Interval, nil
}

func (p *Poller) handleTimeout(ctx context.Context, cause error) (time.Duration, error) {
	p.stats.Timeouts++
	p.logger.Warn("page operation timed out, reloading page", "error", cause)

	if err := p.reload(ctx); err != nil {
		return 0, fmt.Errorf("reload after timeout failed: %w", err)
	}
	return 0, nil
}

func (p *Poller) handleError(ctx context.Context, cause error) (time.Duration, error) {
	p.failures++
	p.stats.Errors++
	p.logger.Warn("read failed", "failures", p.failures, "error", cause)

	if p.failures > p.cfg.ErrorThreshold {
		p.logger.Warn("too many consecutive failures, reloading page", "failures", p.failures)
		if err := p.reload(ctx); err != nil {
			return 0, fmt.Errorf("reload after %d consecutive failures failed: %w", p.failures, err)
		}
		p.failures = 0
	}
	return p.cfg.ErrorBackoff, nil
}

func (p *Poller) reload(ctx context.Context) error {
	if err := p.page.Reload(ctx); err != nil {
		return err
	}
	p.stats.Reloads++
	return nil
}

// extract calls the configured extractor with panic recovery.
// If the extractor panics, it logs the full stack trace with a correlation ID
// and returns an error containing the ID.
func (p *Poller) extract(text string) (value string, ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()
			p.logger.Error("extractor panic",
				"correlation_id", correlationID,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
			value, ok = "", false
			err = fmt.Errorf("extractor panic (correlation_id: %s)", correlationID)
		}
	}()

	if p.cfg.Extractor == nil {
		return text, text != "", nil
	}
	value, ok = p.cfg.Extractor(text)
	return value, ok && value != "", nil
}

// logProgress logs the remaining run time once per even minute.
func (p *Poller) logProgress(ctx context.Context) {
	deadline, ok := ctx.Deadline()
	if !ok {
		return
	}
	remaining := int(time.Until(deadline) / time.Minute)
	if remaining == p.lastProgress || remaining%2 != 0 {
		return
	}
	p.lastProgress = remaining
	p.logger.Info("monitoring", "remaining_minutes", remaining, "changes", p.stats.Changes)
}
