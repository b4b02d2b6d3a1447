// Package dashboard provides the embedded web UI assets for crashwatch.
//
// This package uses Go's embed directive to include the dashboard HTML, CSS,
// and JavaScript at compile time, so the binary needs no external asset
// files. The assets are served by the server package at "/".
package dashboard

import "embed"

// Assets is an embedded filesystem containing the dashboard web UI.
//
// The filesystem structure is:
//
//	assets/
//	  index.html    - Live crash history with inline CSS and JavaScript
//
//go:embed assets/*
var Assets embed.FS
