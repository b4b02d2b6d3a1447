package browser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

// staticSession is a [Session] that fetches server-rendered HTML over plain
// HTTP. Every Text call fetches the page again, so it observes changes the
// server makes between polls.
type staticSession struct {
	opts   Options
	client *resty.Client
	url    string
	closed bool
}

// LaunchStatic returns a [Session] that reads pages without a browser.
//
// Headless, Args and WaitUntil are ignored. NavigationTimeout bounds Goto and
// Reload, ActionTimeout bounds Text.
func LaunchStatic(ctx context.Context, opts Options) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()

	client := resty.New()
	client.SetHeader("Accept", "text/html,application/xhtml+xml")
	client.SetHeaders(opts.Headers)

	return &staticSession{opts: opts, client: client}, nil
}

// Goto implements [Session].
func (s *staticSession) Goto(ctx context.Context, url string) error {
	if _, err := s.fetch(ctx, url, effectiveTimeout(ctx, s.opts.NavigationTimeout)); err != nil {
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}
	s.url = url
	return nil
}

// Text implements [Session].
func (s *staticSession) Text(ctx context.Context, selector string) (string, error) {
	if s.url == "" {
		return "", errors.New("no page loaded")
	}
	doc, err := s.fetch(ctx, s.url, effectiveTimeout(ctx, s.opts.ActionTimeout))
	if err != nil {
		return "", err
	}

	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return "", fmt.Errorf("%w: %s", ErrNotFound, selector)
	}
	return sel.Text(), nil
}

// Reload implements [Session].
func (s *staticSession) Reload(ctx context.Context) error {
	if s.url == "" {
		return errors.New("no page loaded")
	}
	if _, err := s.fetch(ctx, s.url, effectiveTimeout(ctx, s.opts.NavigationTimeout)); err != nil {
		return fmt.Errorf("reload failed: %w", err)
	}
	return nil
}

// Close implements [Session].
func (s *staticSession) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.client.GetClient().CloseIdleConnections()
	return nil
}

// fetch GETs url and parses the response body as HTML.
func (s *staticSession) fetch(ctx context.Context, url string, timeout time.Duration) (*goquery.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res, err := s.client.R().SetContext(reqCtx).Get(url)
	if err != nil {
		// the parent context ending is a shutdown, not a page timeout
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: %w", ErrTimeout, err)
		}
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("unexpected status %s", strings.TrimSpace(res.Status()))
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}
	return doc, nil
}

// isTimeout reports whether err comes from a deadline or a network timeout.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
