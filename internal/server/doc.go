// Package server provides the HTTP server for the crashwatch dashboard and API.
//
// This package is internal to crashwatch and handles all HTTP concerns:
//
//   - Dashboard serving: Serves the embedded HTML dashboard at "/"
//   - REST API: JSON history at "/api/observations"
//   - Server-Sent Events: New observations as they are recorded at "/api/sse"
//
// The server supports graceful shutdown via context cancellation, with a
// 5-second timeout for in-flight requests. It is started by
// Monitor.Run when a dashboard port is configured.
package server
