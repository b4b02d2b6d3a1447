// Package poller provides the polling loop for crashwatch.
//
// This package is internal to crashwatch and handles periodic reads of a
// single page element. It detects value changes, hands each new value to a
// [ChangeFunc], and recovers from failures by reloading the page.
//
// The main components are:
//
//   - [Poller]: Runs the read loop until its context ends
//   - [Page]: The page operations the poller needs (read text, reload)
//   - [Config]: Cadence, thresholds and the value extractor
//
// Recovery uses one consecutive-failure counter. A missing element and a
// read error increment it; each kind has its own threshold. A timeout
// reloads immediately. Users of the crashwatch library should not need to
// interact with this package directly.
package poller
