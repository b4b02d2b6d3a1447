package browser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/playwright-community/playwright-go"
)

// playwrightSession is a [Session] backed by a headless Chromium page.
type playwrightSession struct {
	opts    Options
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
	closed  bool
}

// Install downloads the playwright driver and the Chromium browser.
//
// Output from the installer is written to out; pass io.Discard to silence it.
func Install(out io.Writer) error {
	opts := &playwright.RunOptions{
		Browsers: []string{"chromium"},
		Verbose:  out != io.Discard,
		Stdout:   out,
		Stderr:   out,
	}
	if err := playwright.Install(opts); err != nil {
		return fmt.Errorf("failed to install playwright: %w", err)
	}
	return nil
}

// LaunchPlaywright starts playwright, launches Chromium and opens a page.
//
// The driver and browser must already be installed (see [Install]). On any
// failure the resources acquired so far are released before returning.
func LaunchPlaywright(ctx context.Context, opts Options) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()

	pw, err := playwright.Run(&playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	args := opts.Args
	if args == nil {
		args = DefaultBrowserArgs
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args:     args,
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	contextOpts := playwright.BrowserNewContextOptions{}
	if ua, ok := headerValue(opts.Headers, "User-Agent"); ok {
		contextOpts.UserAgent = playwright.String(ua)
	}
	if len(opts.Headers) > 0 {
		contextOpts.ExtraHttpHeaders = opts.Headers
	}
	bctx, err := browser.NewContext(contextOpts)
	if err != nil {
		_ = browser.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		_ = browser.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	page.SetDefaultTimeout(milliseconds(opts.ActionTimeout))

	return &playwrightSession{
		opts:    opts,
		pw:      pw,
		browser: browser,
		context: bctx,
		page:    page,
	}, nil
}

// Goto implements [Session].
func (s *playwrightSession) Goto(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	waitUntil := playwright.WaitUntilState(s.opts.WaitUntil)
	_, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: &waitUntil,
		Timeout:   playwright.Float(milliseconds(effectiveTimeout(ctx, s.opts.NavigationTimeout))),
	})
	if err != nil {
		return classify(fmt.Errorf("navigation to %s failed: %w", url, err))
	}
	return nil
}

// Text implements [Session].
func (s *playwrightSession) Text(ctx context.Context, selector string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.page.SetDefaultTimeout(milliseconds(effectiveTimeout(ctx, s.opts.ActionTimeout)))

	element, err := s.page.QuerySelector(selector)
	if err != nil {
		return "", classify(fmt.Errorf("selector query failed: %w", err))
	}
	if element == nil {
		return "", fmt.Errorf("%w: %s", ErrNotFound, selector)
	}
	defer func() { _ = element.Dispose() }()

	text, err := element.InnerText()
	if err != nil {
		return "", classify(fmt.Errorf("text extraction failed: %w", err))
	}
	return text, nil
}

// Reload implements [Session].
func (s *playwrightSession) Reload(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	waitUntil := playwright.WaitUntilState(s.opts.WaitUntil)
	_, err := s.page.Reload(playwright.PageReloadOptions{
		WaitUntil: &waitUntil,
		Timeout:   playwright.Float(milliseconds(effectiveTimeout(ctx, s.opts.NavigationTimeout))),
	})
	if err != nil {
		return classify(fmt.Errorf("reload failed: %w", err))
	}
	return nil
}

// Close implements [Session]. Every resource is released even if an
// earlier step fails; the errors are joined.
func (s *playwrightSession) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	if err := s.context.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close context: %w", err))
	}
	if err := s.browser.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close browser: %w", err))
	}
	if err := s.pw.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("stop playwright: %w", err))
	}
	return errors.Join(errs...)
}

// classify marks playwright timeouts with [ErrTimeout].
func classify(err error) error {
	if errors.Is(err, playwright.ErrTimeout) && !errors.Is(err, ErrTimeout) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return err
}

func milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
