// Package browser provides the page sessions the poller reads from.
//
// This package is internal to crashwatch and hides the browser-automation
// engine behind the small [Session] interface. Two drivers are available:
//
//   - "playwright": a headless Chromium page driven by playwright-go, for
//     pages that render their content with JavaScript
//   - "static": plain HTTP fetches resolved with goquery, for pages whose
//     element text is present in the server-rendered HTML
//
// Failures are classified with the sentinel errors [ErrNotFound] and
// [ErrTimeout] so callers can pick a recovery path with errors.Is.
package browser
